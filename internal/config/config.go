// Package config loads the server and CLI configuration from .env and the environment.
package config

import (
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"github.com/spf13/viper"
)

const (
	defaultJWTSecret = "change-me-in-production"

	StoreMongo  = "mongo"
	StoreMemory = "memory"

	StorageLocal = "local"
	StorageMinio = "minio"
)

// Config holds the application settings.
type Config struct {
	Env      string `mapstructure:"APP_ENV"`
	Port     string `mapstructure:"PORT"`
	LogLevel string `mapstructure:"LOG_LEVEL"`

	MongoURI    string        `mapstructure:"MONGO_URI"`
	MongoDB     string        `mapstructure:"MONGO_DB"`
	DBTimeout   time.Duration `mapstructure:"DB_TIMEOUT"`
	StoreDriver string        `mapstructure:"STORE_DRIVER"`

	JWTSecret     string        `mapstructure:"JWT_SECRET"`
	JWTExpiresIn  time.Duration `mapstructure:"JWT_EXPIRES_IN"`
	RedisURL      string        `mapstructure:"REDIS_URL"`
	AuthRateLimit int           `mapstructure:"AUTH_RATE_LIMIT"`

	StorageDriver   string `mapstructure:"STORAGE_DRIVER"`
	UploadDir       string `mapstructure:"UPLOAD_DIR"`
	UploadPublicURL string `mapstructure:"UPLOAD_PUBLIC_URL"`
	UploadMaxBytes  int64  `mapstructure:"UPLOAD_MAX_BYTES"`

	MinioEndpoint  string `mapstructure:"MINIO_ENDPOINT"`
	MinioAccessKey string `mapstructure:"MINIO_ACCESS_KEY"`
	MinioSecretKey string `mapstructure:"MINIO_SECRET_KEY"`
	MinioBucket    string `mapstructure:"MINIO_BUCKET"`
	MinioUseSSL    bool   `mapstructure:"MINIO_USE_SSL"`
	MinioPublicURL string `mapstructure:"MINIO_PUBLIC_URL"`

	AllowedOrigins string `mapstructure:"ALLOWED_ORIGINS"`

	// APIURL is where CLI client commands send requests.
	APIURL string `mapstructure:"CMS_API_URL"`
	// SessionFile is where the CLI caches the signed-in session.
	SessionFile string `mapstructure:"CMS_SESSION_FILE"`
}

var defaults = map[string]any{
	"APP_ENV":           "development",
	"PORT":              "8080",
	"LOG_LEVEL":         "info",
	"MONGO_URI":         "mongodb://localhost:27017",
	"MONGO_DB":          "consultcms",
	"DB_TIMEOUT":        "10s",
	"STORE_DRIVER":      StoreMongo,
	"JWT_SECRET":        defaultJWTSecret,
	"JWT_EXPIRES_IN":    "24h",
	"REDIS_URL":         "",
	"AUTH_RATE_LIMIT":   20,
	"STORAGE_DRIVER":    StorageLocal,
	"UPLOAD_DIR":        "./uploads",
	"UPLOAD_PUBLIC_URL": "/uploads",
	"UPLOAD_MAX_BYTES":  10 << 20,
	"MINIO_ENDPOINT":    "localhost:9000",
	"MINIO_ACCESS_KEY":  "minioadmin",
	"MINIO_SECRET_KEY":  "minioadmin",
	"MINIO_BUCKET":      "consultcms",
	"MINIO_USE_SSL":     false,
	"MINIO_PUBLIC_URL":  "http://localhost:9000",
	"ALLOWED_ORIGINS":   "http://localhost:3000",
	"CMS_API_URL":       "http://localhost:8080",
	"CMS_SESSION_FILE":  "",
}

// Load reads .env (when present) and the environment into a validated Config.
func Load() (*Config, error) {
	_ = godotenv.Load()
	return load(viper.New())
}

func load(v *viper.Viper) (*Config, error) {
	for key, value := range defaults {
		v.SetDefault(key, value)
		if err := v.BindEnv(key); err != nil {
			return nil, fmt.Errorf("bind %s: %w", key, err)
		}
	}

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("unable to decode config into struct: %w", err)
	}

	cfg.StoreDriver = strings.ToLower(strings.TrimSpace(cfg.StoreDriver))
	cfg.StorageDriver = strings.ToLower(strings.TrimSpace(cfg.StorageDriver))
	cfg.UploadPublicURL = strings.TrimRight(cfg.UploadPublicURL, "/")
	cfg.MinioPublicURL = strings.TrimRight(cfg.MinioPublicURL, "/")

	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid configuration: %w", err)
	}
	return &cfg, nil
}

// IsProduction reports whether APP_ENV names a production deployment.
func (c *Config) IsProduction() bool {
	return c.Env == "production" || c.Env == "prod"
}

// Origins splits ALLOWED_ORIGINS into its entries.
func (c *Config) Origins() []string {
	var out []string
	for _, o := range strings.Split(c.AllowedOrigins, ",") {
		if o = strings.TrimSpace(o); o != "" {
			out = append(out, o)
		}
	}
	return out
}

// Validate ensures required values are present and production settings are safe.
func (c *Config) Validate() error {
	if c.Port == "" {
		return errors.New("PORT is required")
	}
	if c.JWTSecret == "" {
		return errors.New("JWT_SECRET is required")
	}
	if c.JWTExpiresIn <= 0 {
		return errors.New("JWT_EXPIRES_IN must be positive")
	}
	if c.DBTimeout <= 0 {
		return errors.New("DB_TIMEOUT must be positive")
	}
	if c.UploadMaxBytes <= 0 {
		return errors.New("UPLOAD_MAX_BYTES must be positive")
	}

	switch c.StoreDriver {
	case StoreMongo:
		if c.MongoURI == "" || c.MongoDB == "" {
			return errors.New("MONGO_URI and MONGO_DB are required for the mongo store")
		}
	case StoreMemory:
	default:
		return fmt.Errorf("unknown STORE_DRIVER %q", c.StoreDriver)
	}

	switch c.StorageDriver {
	case StorageLocal:
		if c.UploadDir == "" {
			return errors.New("UPLOAD_DIR is required for local storage")
		}
	case StorageMinio:
		if c.MinioEndpoint == "" || c.MinioBucket == "" {
			return errors.New("MINIO_ENDPOINT and MINIO_BUCKET are required for minio storage")
		}
	default:
		return fmt.Errorf("unknown STORAGE_DRIVER %q", c.StorageDriver)
	}

	if c.IsProduction() {
		if c.JWTSecret == defaultJWTSecret {
			return errors.New("JWT_SECRET must be changed from the default value in production")
		}
		if len(c.JWTSecret) < 32 {
			return errors.New("JWT_SECRET must be at least 32 characters in production")
		}
		if c.StoreDriver == StoreMemory {
			return errors.New("the memory store cannot be used in production")
		}
	}
	return nil
}
