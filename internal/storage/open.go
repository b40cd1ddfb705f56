package storage

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/dgallion1/faqdesk/internal/config"
	"github.com/dgallion1/faqdesk/internal/pathstore"
)

// Open builds the gateway selected by cfg.StorageBackend. Remote backends
// are wrapped in a read-through cache when cfg.CacheTTL is positive.
func Open(ctx context.Context, cfg config.Config, log *slog.Logger) (Gateway, error) {
	var (
		gw     Gateway
		remote = true
	)
	switch cfg.StorageBackend {
	case config.BackendLocal:
		gw, remote = NewLocal(cfg.StorageRoot), false
	case config.BackendMemory:
		gw, remote = NewMemory(), false
	case config.BackendGitHub:
		gw = NewGitHub(GitHubOptions{
			Token:  cfg.GitHubToken,
			Owner:  cfg.GitHubOwner,
			Repo:   cfg.GitHubRepo,
			Branch: cfg.GitHubBranch,
			APIURL: cfg.GitHubAPIURL,
		})
	case config.BackendS3:
		s3, err := NewS3(ctx, S3Options{
			Endpoint:  cfg.S3Endpoint,
			AccessID:  cfg.S3AccessID,
			AccessKey: cfg.S3AccessKey,
			Bucket:    cfg.S3Bucket,
			Region:    cfg.S3Region,
			UseSSL:    cfg.S3UseSSL,
		}, log)
		if err != nil {
			return nil, fmt.Errorf("open s3 storage: %w", err)
		}
		gw = s3
	case config.BackendPathstore:
		gw = NewPathstore(pathstore.NewClient(cfg.PathstoreURL, cfg.PathstoreAPIKey))
	default:
		return nil, fmt.Errorf("unknown storage backend %q", cfg.StorageBackend)
	}

	if remote && cfg.CacheTTL > 0 {
		log.Info("storage cache enabled", "backend", cfg.StorageBackend, "ttl", cfg.CacheTTL)
		gw = NewCached(gw, cfg.CacheTTL)
	}
	log.Info("storage opened", "backend", cfg.StorageBackend)
	return gw, nil
}
