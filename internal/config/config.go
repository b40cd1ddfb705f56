package config

import (
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
)

// Storage backends.
const (
	BackendLocal     = "local"
	BackendMemory    = "memory"
	BackendGitHub    = "github"
	BackendS3        = "s3"
	BackendPathstore = "pathstore"
)

type Config struct {
	Port string

	// Auth
	APIKey string

	// Logging
	AppEnv    string
	LogFormat string

	// Storage
	StorageBackend string
	StorageRoot    string
	CacheTTL       time.Duration

	GitHubToken  string
	GitHubOwner  string
	GitHubRepo   string
	GitHubBranch string
	GitHubAPIURL string

	S3Endpoint  string
	S3AccessID  string
	S3AccessKey string
	S3Bucket    string
	S3Region    string
	S3UseSSL    bool

	PathstoreURL    string
	PathstoreAPIKey string

	// Dataset layout
	Languages []string
	DataDir   string
	ImageDir  string
	ExportDir string

	// Worker pool
	WorkerCount  int
	MaxQueueSize int
	MaxRetries   int

	// Upload limits
	MaxUploadBytes int64

	// State lifetimes
	JobTTL     time.Duration
	SessionTTL time.Duration

	// PDF
	PDFFallbackPdftotext bool

	MCPEnabled bool
}

// Load reads configuration from the environment. Values in a .env file
// in the working directory fill in variables that are not already set.
func Load() Config {
	_ = godotenv.Load()

	cfg := Config{
		Port: envOr("PORT", "8090"),

		APIKey: os.Getenv("FAQDESK_API_KEY"),

		AppEnv:    envOr("APP_ENV", "dev"),
		LogFormat: os.Getenv("LOG_FORMAT"),

		StorageBackend: strings.ToLower(envOr("STORAGE_BACKEND", BackendLocal)),
		StorageRoot:    envOr("STORAGE_ROOT", "."),
		CacheTTL:       envDuration("CACHE_TTL", 30*time.Second),

		GitHubToken:  os.Getenv("GITHUB_TOKEN"),
		GitHubOwner:  os.Getenv("GITHUB_OWNER"),
		GitHubRepo:   os.Getenv("GITHUB_REPO"),
		GitHubBranch: envOr("GITHUB_BRANCH", "main"),
		GitHubAPIURL: envOr("GITHUB_API_URL", "https://api.github.com"),

		S3Endpoint:  os.Getenv("S3_ENDPOINT"),
		S3AccessID:  os.Getenv("S3_ACCESS_ID"),
		S3AccessKey: os.Getenv("S3_ACCESS_KEY"),
		S3Bucket:    os.Getenv("S3_BUCKET"),
		S3Region:    os.Getenv("S3_REGION"),
		S3UseSSL:    envBool("S3_USE_SSL", true),

		PathstoreURL:    envOr("PATHSTORE_URL", "http://localhost:8080"),
		PathstoreAPIKey: os.Getenv("PATHSTORE_API_KEY"),

		Languages: envList("LANGUAGES", []string{"zh", "zh-CN", "en", "th"}),
		DataDir:   envOr("DATA_DIR", "assets/data"),
		ImageDir:  envOr("IMAGE_DIR", "assets/images"),
		ExportDir: envOr("EXPORT_DIR", "exports"),

		WorkerCount:  envInt("WORKER_COUNT", 4),
		MaxQueueSize: envInt("MAX_QUEUE_SIZE", 100),
		MaxRetries:   envInt("MAX_RETRIES", 3),

		MaxUploadBytes: envInt64("MAX_UPLOAD_BYTES", 52428800), // 50MB

		JobTTL:     envDuration("JOB_TTL", 1*time.Hour),
		SessionTTL: envDuration("SESSION_TTL", 2*time.Hour),

		PDFFallbackPdftotext: envBool("PDF_FALLBACK_PDFTOTEXT", true),

		MCPEnabled: envBool("MCP_ENABLED", true),
	}

	if cfg.WorkerCount <= 0 {
		cfg.WorkerCount = 4
	}
	if cfg.MaxQueueSize <= 0 {
		cfg.MaxQueueSize = 100
	}
	if cfg.MaxRetries < 0 {
		cfg.MaxRetries = 0
	}
	if cfg.MaxUploadBytes <= 0 {
		cfg.MaxUploadBytes = 52428800
	}
	if cfg.JobTTL <= 0 {
		cfg.JobTTL = 1 * time.Hour
	}
	if cfg.SessionTTL <= 0 {
		cfg.SessionTTL = 2 * time.Hour
	}

	return cfg
}

// Validate checks the settings the selected storage backend needs. The
// API key is checked separately by ValidateServer since the CLI runs
// without one.
func (c Config) Validate() error {
	if len(c.Languages) == 0 {
		return fmt.Errorf("LANGUAGES must list at least one language")
	}
	switch c.StorageBackend {
	case BackendLocal:
		if c.StorageRoot == "" {
			return fmt.Errorf("STORAGE_ROOT is required for the local backend")
		}
	case BackendMemory:
	case BackendGitHub:
		if c.GitHubToken == "" || c.GitHubOwner == "" || c.GitHubRepo == "" {
			return fmt.Errorf("GITHUB_TOKEN, GITHUB_OWNER and GITHUB_REPO are required for the github backend")
		}
	case BackendS3:
		if c.S3Endpoint == "" || c.S3Bucket == "" {
			return fmt.Errorf("S3_ENDPOINT and S3_BUCKET are required for the s3 backend")
		}
	case BackendPathstore:
		if c.PathstoreAPIKey == "" {
			return fmt.Errorf("PATHSTORE_API_KEY is required for the pathstore backend")
		}
	default:
		return fmt.Errorf("unknown STORAGE_BACKEND %q", c.StorageBackend)
	}
	return nil
}

// ValidateServer is Validate plus the settings only the HTTP server needs.
func (c Config) ValidateServer() error {
	if err := c.Validate(); err != nil {
		return err
	}
	if c.APIKey == "" {
		return fmt.Errorf("FAQDESK_API_KEY is required")
	}
	return nil
}

// JSONLogs reports whether logs should be written as JSON.
func (c Config) JSONLogs() bool {
	return strings.EqualFold(c.LogFormat, "json") || strings.EqualFold(c.AppEnv, "prod")
}

func envOr(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}

func envInt(key string, fallback int) int {
	if v := os.Getenv(key); v != "" {
		if n, err := strconv.Atoi(v); err == nil {
			return n
		}
	}
	return fallback
}

func envInt64(key string, fallback int64) int64 {
	if v := os.Getenv(key); v != "" {
		if n, err := strconv.ParseInt(v, 10, 64); err == nil {
			return n
		}
	}
	return fallback
}

func envBool(key string, fallback bool) bool {
	if v := os.Getenv(key); v != "" {
		if b, err := strconv.ParseBool(v); err == nil {
			return b
		}
	}
	return fallback
}

func envDuration(key string, fallback time.Duration) time.Duration {
	if v := os.Getenv(key); v != "" {
		if d, err := time.ParseDuration(v); err == nil {
			return d
		}
	}
	return fallback
}

// envList splits a comma-separated variable, dropping blank entries.
func envList(key string, fallback []string) []string {
	v := os.Getenv(key)
	if v == "" {
		return fallback
	}
	var out []string
	for _, item := range strings.Split(v, ",") {
		if item = strings.TrimSpace(item); item != "" {
			out = append(out, item)
		}
	}
	if len(out) == 0 {
		return fallback
	}
	return out
}
