package storage

import (
	"context"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path"
	"path/filepath"
	"sort"
	"sync"
)

// Local stores blobs as files under a root directory. The version token
// is the SHA-256 of the file content.
type Local struct {
	root string
	mu   sync.Mutex // serializes compare-and-write within this process
}

func NewLocal(root string) *Local {
	return &Local{root: root}
}

func (l *Local) file(key string) string {
	return filepath.Join(l.root, filepath.FromSlash(key))
}

func (l *Local) Get(ctx context.Context, p string) (*Blob, error) {
	key, err := CleanPath(p)
	if err != nil {
		return nil, err
	}
	data, err := os.ReadFile(l.file(key))
	if errors.Is(err, fs.ErrNotExist) {
		return nil, fmt.Errorf("%w: %s", ErrNotFound, key)
	}
	if err != nil {
		return nil, fmt.Errorf("read %s: %w", key, err)
	}
	return &Blob{Path: key, Data: data, Version: Hash(data)}, nil
}

func (l *Local) Put(ctx context.Context, p string, data []byte, opts PutOptions) (string, error) {
	key, err := CleanPath(p)
	if err != nil {
		return "", err
	}
	l.mu.Lock()
	defer l.mu.Unlock()

	target := l.file(key)
	current, err := os.ReadFile(target)
	exists := err == nil
	if err != nil && !errors.Is(err, fs.ErrNotExist) {
		return "", fmt.Errorf("read %s: %w", key, err)
	}
	if err := checkPut(key, exists, Hash(current), opts); err != nil {
		return "", err
	}

	if err := os.MkdirAll(filepath.Dir(target), 0o755); err != nil {
		return "", fmt.Errorf("create directory for %s: %w", key, err)
	}
	tmp, err := os.CreateTemp(filepath.Dir(target), ".faqdesk-*")
	if err != nil {
		return "", fmt.Errorf("create temp file: %w", err)
	}
	tmpPath := tmp.Name()
	if _, err := tmp.Write(data); err != nil {
		tmp.Close()
		os.Remove(tmpPath)
		return "", fmt.Errorf("write %s: %w", key, err)
	}
	if err := tmp.Close(); err != nil {
		os.Remove(tmpPath)
		return "", fmt.Errorf("close %s: %w", key, err)
	}
	if err := os.Rename(tmpPath, target); err != nil {
		os.Remove(tmpPath)
		return "", fmt.Errorf("replace %s: %w", key, err)
	}
	return Hash(data), nil
}

// List returns the regular files directly under dir. A missing directory
// lists as empty.
func (l *Local) List(ctx context.Context, dir string) ([]Entry, error) {
	prefix := ""
	if dir != "" && dir != "." && dir != "/" {
		cleaned, err := CleanPath(dir)
		if err != nil {
			return nil, err
		}
		prefix = cleaned
	}
	abs := l.file(prefix)
	items, err := os.ReadDir(abs)
	if errors.Is(err, fs.ErrNotExist) {
		return []Entry{}, nil
	}
	if err != nil {
		return nil, fmt.Errorf("list %s: %w", dir, err)
	}
	entries := []Entry{}
	for _, item := range items {
		if !item.Type().IsRegular() || item.Name()[0] == '.' {
			continue
		}
		key := path.Join(prefix, item.Name())
		entries = append(entries, Entry{
			Name: item.Name(),
			Path: key,
			URL:  "file://" + filepath.ToSlash(filepath.Join(abs, item.Name())),
		})
	}
	sort.Slice(entries, func(i, j int) bool { return entries[i].Name < entries[j].Name })
	return entries, nil
}
