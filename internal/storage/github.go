package storage

import (
	"bytes"
	"context"
	"encoding/base64"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"sort"
	"strings"
	"time"
)

// GitHubOptions configure a repository-backed store.
type GitHubOptions struct {
	Token  string
	Owner  string
	Repo   string
	Branch string
	APIURL string
}

// GitHub stores blobs as files in a repository through the contents API.
// Every Put is a commit; the blob SHA is the version token.
type GitHub struct {
	opts       GitHubOptions
	httpClient *http.Client
}

func NewGitHub(opts GitHubOptions) *GitHub {
	if opts.APIURL == "" {
		opts.APIURL = "https://api.github.com"
	}
	opts.APIURL = strings.TrimRight(opts.APIURL, "/")
	if opts.Branch == "" {
		opts.Branch = "main"
	}
	return &GitHub{
		opts: opts,
		httpClient: &http.Client{
			Timeout: 30 * time.Second,
		},
	}
}

type githubContent struct {
	Type        string `json:"type"`
	Name        string `json:"name"`
	Path        string `json:"path"`
	SHA         string `json:"sha"`
	Content     string `json:"content"`
	Encoding    string `json:"encoding"`
	DownloadURL string `json:"download_url"`
}

type githubPutRequest struct {
	Message string `json:"message"`
	Content string `json:"content"`
	SHA     string `json:"sha,omitempty"`
	Branch  string `json:"branch"`
}

func (g *GitHub) Get(ctx context.Context, p string) (*Blob, error) {
	key, err := CleanPath(p)
	if err != nil {
		return nil, err
	}
	item, err := g.stat(ctx, key)
	if err != nil {
		return nil, err
	}
	if item == nil {
		return nil, fmt.Errorf("%w: %s", ErrNotFound, key)
	}
	if item.Encoding != "base64" {
		return nil, fmt.Errorf("get %s: unsupported encoding %q", key, item.Encoding)
	}
	// The API wraps base64 content at 60 columns.
	data, err := base64.StdEncoding.DecodeString(strings.ReplaceAll(item.Content, "\n", ""))
	if err != nil {
		return nil, fmt.Errorf("decode %s: %w", key, err)
	}
	return &Blob{Path: key, Data: data, Version: item.SHA}, nil
}

func (g *GitHub) Put(ctx context.Context, p string, data []byte, opts PutOptions) (string, error) {
	key, err := CleanPath(p)
	if err != nil {
		return "", err
	}
	item, err := g.stat(ctx, key)
	if err != nil {
		return "", err
	}
	current := ""
	if item != nil {
		current = item.SHA
	}
	if err := checkPut(key, item != nil, current, opts); err != nil {
		return "", err
	}

	message := opts.Message
	if message == "" {
		message = "Update " + key
	}
	body, err := json.Marshal(githubPutRequest{
		Message: message,
		Content: base64.StdEncoding.EncodeToString(data),
		SHA:     current,
		Branch:  g.opts.Branch,
	})
	if err != nil {
		return "", fmt.Errorf("marshal commit: %w", err)
	}
	req, err := http.NewRequestWithContext(ctx, http.MethodPut, g.contentsURL(key), bytes.NewReader(body))
	if err != nil {
		return "", fmt.Errorf("create request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := g.do(req)
	if err != nil {
		return "", classifyTransport("put "+key, err)
	}
	defer resp.Body.Close()
	switch {
	case resp.StatusCode == http.StatusOK || resp.StatusCode == http.StatusCreated:
	case resp.StatusCode == http.StatusConflict || resp.StatusCode == http.StatusUnprocessableEntity:
		return "", fmt.Errorf("%w: %s changed upstream: %s", ErrConflict, key, readSnippet(resp.Body))
	default:
		return "", githubStatus("put "+key, resp)
	}

	var result struct {
		Content githubContent `json:"content"`
	}
	if err := json.NewDecoder(resp.Body).Decode(&result); err != nil {
		return "", fmt.Errorf("decode commit result: %w", err)
	}
	return result.Content.SHA, nil
}

// List returns the files directly under dir. A missing directory lists as
// empty.
func (g *GitHub) List(ctx context.Context, dir string) ([]Entry, error) {
	prefix := strings.Trim(dir, "/")
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, g.contentsURL(prefix), nil)
	if err != nil {
		return nil, fmt.Errorf("create request: %w", err)
	}
	resp, err := g.do(req)
	if err != nil {
		return nil, classifyTransport("list "+dir, err)
	}
	defer resp.Body.Close()
	if resp.StatusCode == http.StatusNotFound {
		return []Entry{}, nil
	}
	if resp.StatusCode != http.StatusOK {
		return nil, githubStatus("list "+dir, resp)
	}

	var items []githubContent
	if err := json.NewDecoder(resp.Body).Decode(&items); err != nil {
		return nil, fmt.Errorf("decode listing %s: %w", dir, err)
	}
	entries := []Entry{}
	for _, item := range items {
		if item.Type != "" && item.Type != "file" {
			continue
		}
		entries = append(entries, Entry{Name: item.Name, Path: item.Path, URL: item.DownloadURL})
	}
	sort.Slice(entries, func(i, j int) bool { return entries[i].Name < entries[j].Name })
	return entries, nil
}

// stat fetches the contents record for key, or nil when it does not exist.
func (g *GitHub) stat(ctx context.Context, key string) (*githubContent, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, g.contentsURL(key), nil)
	if err != nil {
		return nil, fmt.Errorf("create request: %w", err)
	}
	resp, err := g.do(req)
	if err != nil {
		return nil, classifyTransport("get "+key, err)
	}
	defer resp.Body.Close()
	if resp.StatusCode == http.StatusNotFound {
		return nil, nil
	}
	if resp.StatusCode != http.StatusOK {
		return nil, githubStatus("get "+key, resp)
	}
	var item githubContent
	if err := json.NewDecoder(resp.Body).Decode(&item); err != nil {
		return nil, fmt.Errorf("decode %s: %w", key, err)
	}
	if item.Type != "" && item.Type != "file" {
		return nil, fmt.Errorf("get %s: not a file", key)
	}
	return &item, nil
}

func (g *GitHub) contentsURL(key string) string {
	escaped := make([]string, 0, 4)
	for _, part := range strings.Split(key, "/") {
		if part != "" {
			escaped = append(escaped, url.PathEscape(part))
		}
	}
	u := fmt.Sprintf("%s/repos/%s/%s/contents/%s", g.opts.APIURL,
		url.PathEscape(g.opts.Owner), url.PathEscape(g.opts.Repo), strings.Join(escaped, "/"))
	return u + "?ref=" + url.QueryEscape(g.opts.Branch)
}

func (g *GitHub) do(req *http.Request) (*http.Response, error) {
	req.Header.Set("Authorization", "Bearer "+g.opts.Token)
	req.Header.Set("Accept", "application/vnd.github+json")
	req.Header.Set("X-GitHub-Api-Version", "2022-11-28")
	return g.httpClient.Do(req)
}

func githubStatus(op string, resp *http.Response) error {
	err := fmt.Errorf("%s: status %d: %s", op, resp.StatusCode, readSnippet(resp.Body))
	if resp.StatusCode >= 500 || resp.StatusCode == http.StatusTooManyRequests {
		return unavailable(op, err)
	}
	return err
}

func classifyTransport(op string, err error) error {
	if transient(err) {
		return unavailable(op, err)
	}
	return fmt.Errorf("%s: %w", op, err)
}

func readSnippet(r io.Reader) string {
	body, _ := io.ReadAll(io.LimitReader(r, 1024))
	return strings.TrimSpace(string(body))
}
