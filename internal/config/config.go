package config

import (
	"os"
	"strconv"
	"time"

	"github.com/joho/godotenv"
	"gopkg.in/yaml.v3"
)

// Config holds all configuration for the recipient sync service.
type Config struct {
	Server   ServerConfig   `yaml:"server"`
	Drive    DriveConfig    `yaml:"drive"`
	Sync     SyncConfig     `yaml:"sync"`
	Database DatabaseConfig `yaml:"database"`
	Redis    RedisConfig    `yaml:"redis"`
	Archive  ArchiveConfig  `yaml:"archive"`
}

// ServerConfig holds HTTP server configuration.
type ServerConfig struct {
	Port int    `yaml:"port"`
	Host string `yaml:"host"`
}

// GetHost returns the server host, with ECS detection.
func (c ServerConfig) GetHost() string {
	// On ECS/container, listen on all interfaces
	if os.Getenv("ECS_CONTAINER_METADATA_URI") != "" || os.Getenv("AWS_EXECUTION_ENV") != "" {
		return "0.0.0.0"
	}
	if host := os.Getenv("SERVER_HOST"); host != "" {
		return host
	}
	return c.Host
}

// FolderConfig identifies one syncable Drive folder.
type FolderConfig struct {
	ID          string `yaml:"id"`
	DisplayName string `yaml:"display_name"`
}

// DriveConfig holds Google Drive API configuration. Exactly one credential
// (APIKey or OAuthToken) must be present; the Drive client enforces that at
// construction time.
type DriveConfig struct {
	APIKey         string                  `yaml:"api_key"`
	OAuthToken     string                  `yaml:"oauth_token"`
	BaseURL        string                  `yaml:"base_url"`
	TimeoutSeconds int                     `yaml:"timeout_seconds"`
	MaxRetries     int                     `yaml:"max_retries"`
	Folders        map[string]FolderConfig `yaml:"folders"`
	DefaultFolder  string                  `yaml:"default_folder"`
}

// Timeout returns the per-request timeout as a duration.
func (c DriveConfig) Timeout() time.Duration {
	return time.Duration(c.TimeoutSeconds) * time.Second
}

// SyncConfig holds coordinator and persistence pacing configuration.
type SyncConfig struct {
	RecipientBatchSize int `yaml:"recipient_batch_size"`
	MaxRuntimeSeconds  int `yaml:"max_runtime_seconds"`
	InterFileDelayMs   int `yaml:"inter_file_delay_ms"`
	InterBatchDelayMs  int `yaml:"inter_batch_delay_ms"`
}

// MaxRuntime returns the default per-invocation runtime budget.
func (c SyncConfig) MaxRuntime() time.Duration {
	return time.Duration(c.MaxRuntimeSeconds) * time.Second
}

// InterFileDelay returns the pause between consecutive file downloads.
func (c SyncConfig) InterFileDelay() time.Duration {
	return time.Duration(c.InterFileDelayMs) * time.Millisecond
}

// InterBatchDelay returns the pause between consecutive persistence batches.
func (c SyncConfig) InterBatchDelay() time.Duration {
	return time.Duration(c.InterBatchDelayMs) * time.Millisecond
}

// DatabaseConfig holds the campaign database connection settings.
type DatabaseConfig struct {
	URL string `yaml:"url"`
}

// RedisConfig holds the sync session store settings.
type RedisConfig struct {
	Enabled bool   `yaml:"enabled"`
	Addr    string `yaml:"addr"`
}

// ArchiveConfig holds the optional S3 raw-file archive settings.
type ArchiveConfig struct {
	Enabled  bool   `yaml:"enabled"`
	S3Bucket string `yaml:"s3_bucket"`
	S3Region string `yaml:"s3_region"`
}

// Load reads and parses the configuration file and applies defaults.
func Load(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}

	var cfg Config
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return nil, err
	}

	applyDefaults(&cfg)
	return &cfg, nil
}

func applyDefaults(cfg *Config) {
	if cfg.Server.Port == 0 {
		cfg.Server.Port = 8080
	}
	if cfg.Server.Host == "" {
		cfg.Server.Host = "localhost"
	}
	if cfg.Drive.BaseURL == "" {
		cfg.Drive.BaseURL = "https://www.googleapis.com/drive/v3"
	}
	if cfg.Drive.TimeoutSeconds == 0 {
		cfg.Drive.TimeoutSeconds = 30
	}
	if cfg.Drive.MaxRetries == 0 {
		cfg.Drive.MaxRetries = 3
	}
	if cfg.Sync.RecipientBatchSize == 0 {
		cfg.Sync.RecipientBatchSize = 250
	}
	if cfg.Sync.MaxRuntimeSeconds == 0 {
		cfg.Sync.MaxRuntimeSeconds = 240
	}
	if cfg.Sync.InterFileDelayMs == 0 {
		cfg.Sync.InterFileDelayMs = 500
	}
	if cfg.Sync.InterBatchDelayMs == 0 {
		cfg.Sync.InterBatchDelayMs = 200
	}
	if cfg.Redis.Addr == "" {
		cfg.Redis.Addr = "localhost:6379"
	}
	if cfg.Archive.S3Region == "" {
		cfg.Archive.S3Region = "us-east-1"
	}
}

// LoadFromEnv loads configuration with environment variable overrides.
// It automatically loads a .env file (if present) before reading env vars,
// so secrets can live in .env locally and in real env vars on ECS.
func LoadFromEnv(path string) (*Config, error) {
	_ = godotenv.Load()

	cfg, err := Load(path)
	if err != nil {
		return nil, err
	}

	if v := os.Getenv("DRIVE_API_KEY"); v != "" {
		cfg.Drive.APIKey = v
	}
	if v := os.Getenv("DRIVE_OAUTH_TOKEN"); v != "" {
		cfg.Drive.OAuthToken = v
	}
	if v := os.Getenv("DRIVE_BASE_URL"); v != "" {
		cfg.Drive.BaseURL = v
	}
	if v := os.Getenv("DATABASE_URL"); v != "" {
		cfg.Database.URL = v
	}
	if v := os.Getenv("REDIS_ADDR"); v != "" {
		cfg.Redis.Addr = v
		cfg.Redis.Enabled = true
	}
	if v := os.Getenv("ARCHIVE_S3_BUCKET"); v != "" {
		cfg.Archive.S3Bucket = v
		cfg.Archive.Enabled = true
	}
	if v := os.Getenv("ARCHIVE_S3_REGION"); v != "" {
		cfg.Archive.S3Region = v
	}
	if v := os.Getenv("SYNC_MAX_RUNTIME_SECONDS"); v != "" {
		if n, err := strconv.Atoi(v); err == nil && n > 0 {
			cfg.Sync.MaxRuntimeSeconds = n
		}
	}

	return cfg, nil
}
