package storage

import (
	"context"
	"encoding/base64"
	"encoding/json"
	"errors"
	"fmt"
	"path"
	"sort"
	"strings"

	"github.com/dgallion1/faqdesk/internal/pathstore"
)

const pathstorePrefix = "faqdesk/"

// pathstoreValue is the JSON value stored under each key.
type pathstoreValue struct {
	Content string `json:"content"` // base64
	Hash    string `json:"hash"`
	Message string `json:"message,omitempty"`
}

// Pathstore keeps blobs as nodes in a pathstore server. The stored hash
// is the version token.
type Pathstore struct {
	client *pathstore.Client
}

func NewPathstore(client *pathstore.Client) *Pathstore {
	return &Pathstore{client: client}
}

func (p *Pathstore) Get(ctx context.Context, name string) (*Blob, error) {
	key, err := CleanPath(name)
	if err != nil {
		return nil, err
	}
	value, err := p.get(ctx, key)
	if err != nil {
		return nil, err
	}
	if value == nil {
		return nil, fmt.Errorf("%w: %s", ErrNotFound, key)
	}
	data, err := base64.StdEncoding.DecodeString(value.Content)
	if err != nil {
		return nil, fmt.Errorf("decode %s: %w", key, err)
	}
	return &Blob{Path: key, Data: data, Version: value.Hash}, nil
}

func (p *Pathstore) Put(ctx context.Context, name string, data []byte, opts PutOptions) (string, error) {
	key, err := CleanPath(name)
	if err != nil {
		return "", err
	}
	current, err := p.get(ctx, key)
	if err != nil {
		return "", err
	}
	version := ""
	if current != nil {
		version = current.Hash
	}
	if err := checkPut(key, current != nil, version, opts); err != nil {
		return "", err
	}

	value := pathstoreValue{
		Content: base64.StdEncoding.EncodeToString(data),
		Hash:    Hash(data),
		Message: opts.Message,
	}
	req := pathstore.NodeRequest{Value: value, MergeMode: "replace", Source: "faqdesk"}
	if err := p.client.PutNode(ctx, pathstorePrefix+key, req); err != nil {
		return "", classifyPathstore("put "+key, err)
	}
	return value.Hash, nil
}

func (p *Pathstore) List(ctx context.Context, dir string) ([]Entry, error) {
	prefix := strings.Trim(dir, "/")
	nodes, err := p.client.ListChildren(ctx, strings.TrimSuffix(pathstorePrefix+prefix, "/"), 0)
	if err != nil {
		return nil, classifyPathstore("list "+dir, err)
	}
	if prefix != "" {
		prefix += "/"
	}
	entries := []Entry{}
	for _, n := range nodes {
		key := strings.TrimPrefix(n.Key, pathstorePrefix)
		rest, ok := strings.CutPrefix(key, prefix)
		if !ok || rest == "" || strings.Contains(rest, "/") {
			continue
		}
		entries = append(entries, Entry{Name: path.Base(key), Path: key, URL: "pathstore://" + n.Key})
	}
	sort.Slice(entries, func(i, j int) bool { return entries[i].Name < entries[j].Name })
	return entries, nil
}

func (p *Pathstore) get(ctx context.Context, key string) (*pathstoreValue, error) {
	node, err := p.client.GetNode(ctx, pathstorePrefix+key)
	if err != nil {
		return nil, classifyPathstore("get "+key, err)
	}
	if node == nil {
		return nil, nil
	}
	var value pathstoreValue
	if err := json.Unmarshal(node.Value, &value); err != nil {
		return nil, fmt.Errorf("decode node %s: %w", key, err)
	}
	return &value, nil
}

func classifyPathstore(op string, err error) error {
	var statusErr *pathstore.StatusError
	if errors.As(err, &statusErr) {
		if statusErr.Temporary() {
			return unavailable(op, err)
		}
		return fmt.Errorf("%s: %w", op, err)
	}
	if transient(err) {
		return unavailable(op, err)
	}
	return fmt.Errorf("%s: %w", op, err)
}
