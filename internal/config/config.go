package config

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
)

const (
	defaultHTTPAddr      = ":8080"
	defaultDatabaseURL   = "videofield.db"
	defaultJWTSecret     = "change-me-jwt-secret"
	defaultJWTTTL        = "24h"
	defaultPublicBaseURL = "http://localhost:8080"
	defaultStorageDriver = "local"
	defaultStorageDir    = "./filedir"
	defaultMinioBucket   = "videofield"
	defaultMinioUseSSL   = "false"
	defaultMaxBytes      = "104857600" // 100 MB
	defaultDraftTTL      = "96h"
	defaultLogLevel      = "info"
	defaultLogFormat     = "json"

	// DefaultVideoTypes is the "web video" group offered by the upload widget.
	DefaultVideoTypes = ".avi, .flv, .f4v, .fmp4, .mov, .mp4, .m4v, .mpeg, .mpe, .mpg, .ogv, .qt, .ts, .webm"
)

type StorageConfig struct {
	Driver         string
	Dir            string
	MinioEndpoint  string
	MinioAccessKey string
	MinioSecretKey string
	MinioBucket    string
	MinioUseSSL    bool
}

type Config struct {
	AppEnv             string
	HTTPAddr           string
	DatabaseURL        string
	JWTSecret          string
	JWTTTL             time.Duration
	PublicBaseURL      string
	Storage            StorageConfig
	VideoAcceptedTypes []string
	DefaultMaxBytes    int64
	DraftTTL           time.Duration
	LogLevel           string
	LogFormat          string
}

// Load reads configuration from the environment. A .env file in the working
// directory is applied first when present; real env vars take precedence.
func Load() (*Config, error) {
	if err := godotenv.Load(); err != nil && !errors.Is(err, fs.ErrNotExist) {
		return nil, fmt.Errorf("load .env: %w", err)
	}

	cfg := &Config{}
	appEnv := strings.TrimSpace(os.Getenv("APP_ENV"))
	if appEnv == "" {
		appEnv = strings.TrimSpace(os.Getenv("ENV"))
	}
	if appEnv == "" {
		appEnv = "dev"
	}
	cfg.AppEnv = strings.ToLower(appEnv)

	cfg.HTTPAddr = strings.TrimSpace(getEnv("HTTP_ADDR", defaultHTTPAddr))
	cfg.DatabaseURL = strings.TrimSpace(getEnv("DATABASE_URL", defaultDatabaseURL))
	cfg.JWTSecret = strings.TrimSpace(getEnv("JWT_SECRET", defaultJWTSecret))
	cfg.PublicBaseURL = strings.TrimRight(strings.TrimSpace(getEnv("PUBLIC_BASE_URL", defaultPublicBaseURL)), "/")
	cfg.LogLevel = strings.ToLower(strings.TrimSpace(getEnv("LOG_LEVEL", defaultLogLevel)))
	cfg.LogFormat = strings.ToLower(strings.TrimSpace(getEnv("LOG_FORMAT", defaultLogFormat)))

	cfg.Storage = StorageConfig{
		Driver:         strings.ToLower(strings.TrimSpace(getEnv("STORAGE_DRIVER", defaultStorageDriver))),
		Dir:            strings.TrimSpace(getEnv("STORAGE_DIR", defaultStorageDir)),
		MinioEndpoint:  strings.TrimSpace(os.Getenv("MINIO_ENDPOINT")),
		MinioAccessKey: strings.TrimSpace(os.Getenv("MINIO_ACCESS_KEY")),
		MinioSecretKey: strings.TrimSpace(os.Getenv("MINIO_SECRET_KEY")),
		MinioBucket:    strings.TrimSpace(getEnv("MINIO_BUCKET", defaultMinioBucket)),
		MinioUseSSL:    parseBoolEnv("MINIO_USE_SSL", defaultMinioUseSSL),
	}

	cfg.VideoAcceptedTypes = ParseTypeList(getEnv("VIDEO_ACCEPTED_TYPES", DefaultVideoTypes))

	var err error
	cfg.JWTTTL, err = parseDurationEnv("JWT_TTL", defaultJWTTTL)
	if err != nil {
		return nil, err
	}
	cfg.DraftTTL, err = parseDurationEnv("DRAFT_TTL", defaultDraftTTL)
	if err != nil {
		return nil, err
	}
	cfg.DefaultMaxBytes, err = parseInt64Env("DEFAULT_MAX_BYTES", defaultMaxBytes)
	if err != nil {
		return nil, err
	}

	if err := validateConfig(cfg); err != nil {
		return nil, err
	}

	return cfg, nil
}

// ParseTypeList splits a comma separated extension list into normalized
// lower-case ".ext" entries. "*" is kept as is.
func ParseTypeList(raw string) []string {
	parts := strings.Split(raw, ",")
	out := make([]string, 0, len(parts))
	for _, p := range parts {
		p = strings.ToLower(strings.TrimSpace(p))
		if p == "" {
			continue
		}
		if p != "*" && !strings.HasPrefix(p, ".") {
			p = "." + p
		}
		out = append(out, p)
	}
	return out
}

func validateConfig(cfg *Config) error {
	if cfg.HTTPAddr == "" {
		return fmt.Errorf("HTTP_ADDR must not be empty")
	}
	if cfg.DatabaseURL == "" {
		return fmt.Errorf("DATABASE_URL must not be empty")
	}
	if cfg.JWTTTL <= 0 {
		return fmt.Errorf("JWT_TTL must be > 0")
	}
	if cfg.DraftTTL <= 0 {
		return fmt.Errorf("DRAFT_TTL must be > 0")
	}
	if cfg.DefaultMaxBytes <= 0 {
		return fmt.Errorf("DEFAULT_MAX_BYTES must be > 0")
	}
	if len(cfg.VideoAcceptedTypes) == 0 {
		return fmt.Errorf("VIDEO_ACCEPTED_TYPES must not be empty")
	}

	switch cfg.Storage.Driver {
	case "local":
		if cfg.Storage.Dir == "" {
			return fmt.Errorf("STORAGE_DIR must not be empty when STORAGE_DRIVER=local")
		}
	case "minio":
		if cfg.Storage.MinioEndpoint == "" {
			return fmt.Errorf("MINIO_ENDPOINT must be set when STORAGE_DRIVER=minio")
		}
		if cfg.Storage.MinioBucket == "" {
			return fmt.Errorf("MINIO_BUCKET must be set when STORAGE_DRIVER=minio")
		}
	default:
		return fmt.Errorf("STORAGE_DRIVER must be one of: local, minio")
	}

	switch cfg.LogFormat {
	case "json", "console":
	default:
		return fmt.Errorf("LOG_FORMAT must be one of: json, console")
	}

	if isProdLike(cfg.AppEnv) {
		if isEmptyOrDefault(cfg.JWTSecret, defaultJWTSecret) {
			return fmt.Errorf("in prod/release JWT_SECRET must be set and not default")
		}
	}

	return nil
}

// IsProduction reports whether the service runs in a prod-like environment.
func (c *Config) IsProduction() bool {
	return isProdLike(c.AppEnv)
}

func isProdLike(env string) bool {
	env = strings.ToLower(strings.TrimSpace(env))
	return env == "prod" || env == "production" || env == "release"
}

func isEmptyOrDefault(v, def string) bool {
	trimmed := strings.TrimSpace(v)
	return trimmed == "" || trimmed == def
}

func parseDurationEnv(name, fallback string) (time.Duration, error) {
	value := strings.TrimSpace(getEnv(name, fallback))
	d, err := time.ParseDuration(value)
	if err != nil {
		return 0, fmt.Errorf("invalid %s value %q: %w", name, value, err)
	}
	return d, nil
}

func parseInt64Env(name, fallback string) (int64, error) {
	value := strings.TrimSpace(getEnv(name, fallback))
	n, err := strconv.ParseInt(value, 10, 64)
	if err != nil {
		return 0, fmt.Errorf("invalid %s value %q: %w", name, value, err)
	}
	return n, nil
}

func parseBoolEnv(name, fallback string) bool {
	value := strings.ToLower(strings.TrimSpace(getEnv(name, fallback)))
	return value == "1" || value == "true" || value == "yes" || value == "on"
}

func getEnv(name, fallback string) string {
	if v := os.Getenv(name); v != "" {
		return v
	}
	return fallback
}
