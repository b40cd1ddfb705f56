// Package storage is the blob store behind the FAQ workspace: named
// blobs with optimistic-concurrency version tokens, plus directory
// listings.
package storage

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"errors"
	"fmt"
	"io"
	"net"
	"path"
	"strings"
)

var (
	// ErrNotFound indicates the blob (or directory) does not exist.
	ErrNotFound = errors.New("blob not found")

	// ErrConflict indicates the stored version no longer matches the one
	// the caller read. It must be surfaced, never retried.
	ErrConflict = errors.New("version conflict")

	// ErrUnavailable wraps transient failures (network, 5xx) that are
	// safe to retry.
	ErrUnavailable = errors.New("storage unavailable")
)

// Blob is the content of one stored file with its version token.
type Blob struct {
	Path    string
	Data    []byte
	Version string
}

// Entry is one item of a directory listing.
type Entry struct {
	Name string `json:"name"`
	Path string `json:"path"`
	URL  string `json:"url"`
}

// PutOptions control a write.
type PutOptions struct {
	// CreateIfMissing allows creating a blob that does not exist yet.
	CreateIfMissing bool
	// Version, when set, must equal the current version or the write
	// fails with ErrConflict. An empty Version overwrites unconditionally.
	Version string
	// Message describes the change for backends that keep history.
	Message string
}

// Gateway is implemented by every storage backend.
type Gateway interface {
	Get(ctx context.Context, path string) (*Blob, error)
	Put(ctx context.Context, path string, data []byte, opts PutOptions) (version string, err error)
	List(ctx context.Context, dir string) ([]Entry, error)
}

// Hash returns the hex SHA-256 of data, the version token of backends
// without a native one.
func Hash(data []byte) string {
	h := sha256.Sum256(data)
	return hex.EncodeToString(h[:])
}

// CleanPath normalizes a slash-separated blob path and rejects paths that
// escape the store root.
func CleanPath(p string) (string, error) {
	slashed := strings.ReplaceAll(p, "\\", "/")
	for _, part := range strings.Split(slashed, "/") {
		if part == ".." {
			return "", fmt.Errorf("invalid blob path %q", p)
		}
	}
	cleaned := strings.TrimPrefix(path.Clean("/"+slashed), "/")
	if cleaned == "" {
		return "", fmt.Errorf("invalid blob path %q", p)
	}
	return cleaned, nil
}

// checkPut applies the shared PutOptions rules given what is currently
// stored. exists reports whether the blob is present and current is its
// version.
func checkPut(p string, exists bool, current string, opts PutOptions) error {
	if !exists {
		if opts.Version != "" {
			return fmt.Errorf("%w: %s was removed since version %s", ErrConflict, p, opts.Version)
		}
		if !opts.CreateIfMissing {
			return fmt.Errorf("%w: %s", ErrNotFound, p)
		}
		return nil
	}
	if opts.Version != "" && opts.Version != current {
		return fmt.Errorf("%w: %s is at %s, expected %s", ErrConflict, p, short(current), short(opts.Version))
	}
	return nil
}

func short(v string) string {
	if len(v) > 12 {
		return v[:12]
	}
	return v
}

// transient reports whether err is a network failure worth retrying.
// Cancellation by the caller is not.
func transient(err error) bool {
	if errors.Is(err, context.Canceled) || errors.Is(err, context.DeadlineExceeded) {
		return false
	}
	var netErr net.Error
	return errors.As(err, &netErr) || errors.Is(err, io.ErrUnexpectedEOF)
}

// unavailable wraps a transient error.
func unavailable(op string, err error) error {
	return fmt.Errorf("%s: %w: %v", op, ErrUnavailable, err)
}
