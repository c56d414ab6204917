package config

import (
	"errors"
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"gopkg.in/yaml.v3"
)

// ConfigPath is the default config file location.
const ConfigPath = "config.yaml"

// FileConfig represents configuration loaded from YAML.
type FileConfig struct {
	LogLevel string `yaml:"logLevel"`

	// Document store.
	PostgresDSN string `yaml:"postgresDSN"`

	// Change feed: redis by default, amqp when set.
	RedisAddr     string `yaml:"redisAddr"`
	RedisPassword string `yaml:"redisPassword"`
	AMQPURL       string `yaml:"amqpURL"`

	// Blob store: MinIO when an endpoint is set, local disk otherwise.
	MinioEndpoint  string `yaml:"minioEndpoint"`
	MinioAccessKey string `yaml:"minioAccessKey"`
	MinioSecretKey string `yaml:"minioSecretKey"`
	MinioBucket    string `yaml:"minioBucket"`
	MinioUseSSL    bool   `yaml:"minioUseSSL"`
	MinioURLExpiry string `yaml:"minioURLExpiry"`
	BlobDir        string `yaml:"blobDir"`
	BlobBaseURL    string `yaml:"blobBaseURL"`

	// Sessions.
	SessionSecret string `yaml:"sessionSecret"`
	SessionTTL    string `yaml:"sessionTTL"`
	SessionToken  string `yaml:"sessionToken"`

	// Cover pipeline.
	CoverQuality int `yaml:"coverQuality"`
	CoverMaxDim  int `yaml:"coverMaxDim"`
}

// Load reads config from path (defaults to config.yaml) and applies
// SHELF_* environment overrides.
func Load(path string) (FileConfig, error) {
	cfg := FileConfig{}
	if path == "" {
		path = ConfigPath
	}
	data, err := os.ReadFile(path)
	if err != nil {
		return cfg, fmt.Errorf("read config: %w", err)
	}
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return cfg, fmt.Errorf("parse config: %w", err)
	}
	if v := os.Getenv("SHELF_LOG_LEVEL"); v != "" {
		cfg.LogLevel = strings.TrimSpace(v)
	}
	if v := os.Getenv("SHELF_POSTGRES_DSN"); v != "" {
		cfg.PostgresDSN = v
	}
	if v := os.Getenv("SHELF_REDIS_ADDR"); v != "" {
		cfg.RedisAddr = strings.TrimSpace(v)
	}
	if v := os.Getenv("SHELF_REDIS_PASSWORD"); v != "" {
		cfg.RedisPassword = v
	}
	if v := os.Getenv("SHELF_AMQP_URL"); v != "" {
		cfg.AMQPURL = strings.TrimSpace(v)
	}
	if v := os.Getenv("SHELF_MINIO_ENDPOINT"); v != "" {
		cfg.MinioEndpoint = strings.TrimSpace(v)
	}
	if v := os.Getenv("SHELF_MINIO_ACCESS_KEY"); v != "" {
		cfg.MinioAccessKey = v
	}
	if v := os.Getenv("SHELF_MINIO_SECRET_KEY"); v != "" {
		cfg.MinioSecretKey = v
	}
	if v := os.Getenv("SHELF_MINIO_BUCKET"); v != "" {
		cfg.MinioBucket = strings.TrimSpace(v)
	}
	if v := os.Getenv("SHELF_MINIO_USE_SSL"); v != "" {
		if b, err := strconv.ParseBool(strings.TrimSpace(v)); err == nil {
			cfg.MinioUseSSL = b
		}
	}
	if v := os.Getenv("SHELF_SESSION_SECRET"); v != "" {
		cfg.SessionSecret = v
	}
	if v := os.Getenv("SHELF_SESSION_TOKEN"); v != "" {
		cfg.SessionToken = strings.TrimSpace(v)
	}
	return cfg, cfg.validate()
}

func (c FileConfig) validate() error {
	if c.PostgresDSN == "" {
		return errors.New("postgresDSN is required")
	}
	if c.RedisAddr == "" && c.AMQPURL == "" {
		return errors.New("a change feed is required: set redisAddr or amqpURL")
	}
	if c.MinioEndpoint == "" && c.BlobDir == "" {
		return errors.New("a blob store is required: set minioEndpoint or blobDir")
	}
	if c.SessionSecret == "" {
		return errors.New("sessionSecret is required")
	}
	return nil
}

// ParseSessionTTL parses the session TTL, defaulting to 24h.
func ParseSessionTTL(raw string) (time.Duration, error) {
	return parseDuration(raw, 24*time.Hour)
}

// ParseMinioURLExpiry parses the presigned URL expiry, defaulting to 7 days.
func ParseMinioURLExpiry(raw string) (time.Duration, error) {
	return parseDuration(raw, 7*24*time.Hour)
}

func parseDuration(raw string, def time.Duration) (time.Duration, error) {
	raw = strings.TrimSpace(raw)
	if raw == "" {
		return def, nil
	}
	d, err := time.ParseDuration(raw)
	if err != nil {
		return 0, fmt.Errorf("parse duration %q: %w", raw, err)
	}
	if d <= 0 {
		return 0, fmt.Errorf("duration must be positive, got %q", raw)
	}
	return d, nil
}
