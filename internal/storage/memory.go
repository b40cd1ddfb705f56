package storage

import (
	"context"
	"fmt"
	"path"
	"sort"
	"strings"
	"sync"
)

// Memory keeps blobs in a map. It backs tests and demo servers.
type Memory struct {
	mu    sync.RWMutex
	blobs map[string][]byte
}

func NewMemory() *Memory {
	return &Memory{blobs: make(map[string][]byte)}
}

func (m *Memory) Get(ctx context.Context, p string) (*Blob, error) {
	key, err := CleanPath(p)
	if err != nil {
		return nil, err
	}
	m.mu.RLock()
	defer m.mu.RUnlock()
	data, ok := m.blobs[key]
	if !ok {
		return nil, fmt.Errorf("%w: %s", ErrNotFound, key)
	}
	return &Blob{Path: key, Data: append([]byte(nil), data...), Version: Hash(data)}, nil
}

func (m *Memory) Put(ctx context.Context, p string, data []byte, opts PutOptions) (string, error) {
	key, err := CleanPath(p)
	if err != nil {
		return "", err
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	current, exists := m.blobs[key]
	if err := checkPut(key, exists, Hash(current), opts); err != nil {
		return "", err
	}
	m.blobs[key] = append([]byte(nil), data...)
	return Hash(data), nil
}

func (m *Memory) List(ctx context.Context, dir string) ([]Entry, error) {
	prefix := strings.Trim(dir, "/")
	if prefix != "" {
		prefix += "/"
	}
	m.mu.RLock()
	defer m.mu.RUnlock()
	entries := []Entry{}
	for key := range m.blobs {
		rest, ok := strings.CutPrefix(key, prefix)
		if !ok || strings.Contains(rest, "/") {
			continue
		}
		entries = append(entries, Entry{Name: path.Base(key), Path: key, URL: "memory://" + key})
	}
	sort.Slice(entries, func(i, j int) bool { return entries[i].Name < entries[j].Name })
	return entries, nil
}
