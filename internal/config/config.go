package config

import (
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"
)

// Config aggregates runtime configuration for the file sync service.
type Config struct {
	Server   ServerConfig
	Postgres PostgresConfig
	MinIO    MinIOConfig
	Remote   RemoteConfig
	Queue    QueueConfig
	Metrics  MetricsConfig
}

// ServerConfig parameterizes the HTTP server.
type ServerConfig struct {
	Host         string
	Port         int
	ReadTimeout  time.Duration
	WriteTimeout time.Duration
	IdleTimeout  time.Duration
}

// Address returns the listen address in host:port form.
func (s ServerConfig) Address() string {
	return fmt.Sprintf("%s:%d", s.Host, s.Port)
}

// PostgresConfig contains PostgreSQL connection details.
type PostgresConfig struct {
	Host     string
	Port     int
	User     string
	Password string
	Database string
	SSLMode  string
}

// DSN returns the PostgreSQL DSN string.
func (p PostgresConfig) DSN() string {
	return fmt.Sprintf("postgres://%s:%s@%s:%d/%s?sslmode=%s",
		p.User, p.Password, p.Host, p.Port, p.Database, p.SSLMode)
}

// MinIOConfig carries object store connection and bucket information.
type MinIOConfig struct {
	Endpoint        string
	AccessKeyID     string
	SecretAccessKey string
	Bucket          string
	UseSSL          bool
	Region          string
}

// RemoteConfig parameterizes the connector API client.
type RemoteConfig struct {
	BaseURL string
	APIKey  string
	Timeout time.Duration
}

// QueueConfig tunes the sync queue and its consumer workers.
type QueueConfig struct {
	Workers      int
	PollInterval time.Duration
	Visibility   time.Duration
	RetryBackoff time.Duration
	MaxAttempts  int
}

// MetricsConfig groups observability settings.
type MetricsConfig struct {
	PrometheusPath string
}

// Load reads configuration values from environment variables, applying defaults.
func Load() (Config, error) {
	cfg := Config{
		Server: ServerConfig{
			Host:         getString("FILESYNC_API_HOST", "0.0.0.0"),
			Port:         getInt("FILESYNC_API_PORT", 8080),
			ReadTimeout:  getDuration("FILESYNC_API_READ_TIMEOUT", 15*time.Second),
			WriteTimeout: getDuration("FILESYNC_API_WRITE_TIMEOUT", 15*time.Second),
			IdleTimeout:  getDuration("FILESYNC_API_IDLE_TIMEOUT", 60*time.Second),
		},
		Postgres: PostgresConfig{
			Host:     getString("POSTGRES_HOST", "localhost"),
			Port:     getInt("POSTGRES_PORT", 5432),
			User:     getString("POSTGRES_USER", "filesync_app"),
			Password: getString("POSTGRES_PASSWORD", "change-me"),
			Database: getString("POSTGRES_DB", "filesync"),
			SSLMode:  strings.ToLower(getString("POSTGRES_SSL_MODE", "disable")),
		},
		MinIO: MinIOConfig{
			Endpoint:        getString("MINIO_ENDPOINT", "localhost:9000"),
			AccessKeyID:     getString("MINIO_ROOT_USER", "filesync"),
			SecretAccessKey: getString("MINIO_ROOT_PASSWORD", "change-me-strong-password"),
			Bucket:          getString("MINIO_BUCKET", "filesync"),
			UseSSL:          getBool("MINIO_USE_SSL", false),
			Region:          getString("MINIO_REGION", ""),
		},
		Remote: RemoteConfig{
			BaseURL: getString("REMOTE_API_BASE_URL", "https://api-eu.merge.dev/api"),
			APIKey:  getString("REMOTE_API_KEY", ""),
			Timeout: getDuration("REMOTE_API_TIMEOUT", 5*time.Minute),
		},
		Queue: loadQueueConfig(),
		Metrics: MetricsConfig{
			PrometheusPath: getString("FILESYNC_METRICS_PATH", "/metrics"),
		},
	}

	return cfg, nil
}

func loadQueueConfig() QueueConfig {
	workers := getInt("FILESYNC_QUEUE_WORKERS", 4)
	if workers < 1 {
		workers = 1
	}

	attempts := getInt("FILESYNC_QUEUE_MAX_ATTEMPTS", 5)
	if attempts < 1 {
		attempts = 1
	}

	return QueueConfig{
		Workers:      workers,
		PollInterval: getDuration("FILESYNC_QUEUE_POLL_INTERVAL", 500*time.Millisecond),
		Visibility:   getDuration("FILESYNC_QUEUE_VISIBILITY", 10*time.Minute),
		RetryBackoff: getDuration("FILESYNC_QUEUE_RETRY_BACKOFF", 30*time.Second),
		MaxAttempts:  attempts,
	}
}

func getString(key, fallback string) string {
	if val, ok := os.LookupEnv(key); ok {
		return val
	}
	return fallback
}

func getInt(key string, fallback int) int {
	if val, ok := os.LookupEnv(key); ok {
		if parsed, err := strconv.Atoi(val); err == nil {
			return parsed
		}
	}
	return fallback
}

func getBool(key string, fallback bool) bool {
	if val, ok := os.LookupEnv(key); ok {
		val = strings.ToLower(strings.TrimSpace(val))
		switch val {
		case "1", "true", "t", "yes", "y":
			return true
		case "0", "false", "f", "no", "n":
			return false
		}
	}
	return fallback
}

func getDuration(key string, fallback time.Duration) time.Duration {
	if val, ok := os.LookupEnv(key); ok {
		if parsed, err := time.ParseDuration(val); err == nil {
			return parsed
		}
	}
	return fallback
}
