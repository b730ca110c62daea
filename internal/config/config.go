// Package config loads service settings from the environment (and an
// optional .env file) with viper defaults.
package config

import (
	"fmt"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"github.com/spf13/viper"
)

const (
	StorageMinIO = "minio"
	StorageDir   = "dir"

	RosterPostgres = "postgres"
	RosterHTTP     = "http"
	RosterXLSX     = "xlsx"
)

type MinIO struct {
	Endpoint        string
	AccessKeyID     string
	SecretAccessKey string
	UseSSL          bool
	Bucket          string
}

type Config struct {
	Port           string
	Environment    string
	LogLevel       string
	Timezone       string
	StorageBackend string
	DataDir        string
	MinIO          MinIO
	RedisAddr      string
	BlobCacheTTL   time.Duration
	DatabaseURL    string
	RosterSource   string
	RosterAPIURL   string
	RosterXLSXPath string
	// ChecklistPath is the self-checklist question catalog (JSON).
	ChecklistPath  string
	// FloorTokens maps a floor label to its filename-safe token.
	FloorTokens    map[string]string
	StartupTimeout time.Duration
}

func setDefaults(v *viper.Viper) {
	v.SetDefault("PORT", "8080")
	v.SetDefault("ENVIRONMENT", "local")
	v.SetDefault("LOG_LEVEL", "info")
	v.SetDefault("TIMEZONE", "Asia/Tokyo")
	v.SetDefault("STORAGE_BACKEND", StorageMinIO)
	v.SetDefault("DATA_DIR", "data")
	v.SetDefault("MINIO_ENDPOINT", "localhost:9000")
	v.SetDefault("MINIO_USE_SSL", false)
	v.SetDefault("MINIO_BUCKET", "analysis-data")
	v.SetDefault("BLOB_CACHE_TTL", "5m")
	v.SetDefault("ROSTER_SOURCE", RosterPostgres)
	v.SetDefault("FLOOR_TOKENS", "小規模多機能=shokibo")
	v.SetDefault("STARTUP_TIMEOUT", "30s")
}

// Load reads .env when present, then the process environment.
func Load() (*Config, error) {
	_ = godotenv.Load()
	v := viper.New()
	v.AutomaticEnv()
	setDefaults(v)
	return fromViper(v)
}

func fromViper(v *viper.Viper) (*Config, error) {
	tokens, err := ParseFloorTokens(v.GetString("FLOOR_TOKENS"))
	if err != nil {
		return nil, err
	}
	cfg := &Config{
		Port:           v.GetString("PORT"),
		Environment:    v.GetString("ENVIRONMENT"),
		LogLevel:       v.GetString("LOG_LEVEL"),
		Timezone:       v.GetString("TIMEZONE"),
		StorageBackend: strings.ToLower(v.GetString("STORAGE_BACKEND")),
		DataDir:        v.GetString("DATA_DIR"),
		MinIO: MinIO{
			Endpoint:        v.GetString("MINIO_ENDPOINT"),
			AccessKeyID:     v.GetString("MINIO_ACCESS_KEY_ID"),
			SecretAccessKey: v.GetString("MINIO_SECRET_ACCESS_KEY"),
			UseSSL:          v.GetBool("MINIO_USE_SSL"),
			Bucket:          v.GetString("MINIO_BUCKET"),
		},
		RedisAddr:      v.GetString("REDIS_ADDR"),
		BlobCacheTTL:   v.GetDuration("BLOB_CACHE_TTL"),
		DatabaseURL:    v.GetString("DATABASE_URL"),
		RosterSource:   strings.ToLower(v.GetString("ROSTER_SOURCE")),
		RosterAPIURL:   v.GetString("ROSTER_API_URL"),
		RosterXLSXPath: v.GetString("ROSTER_XLSX_PATH"),
		ChecklistPath:  v.GetString("CHECKLIST_CATALOG_PATH"),
		FloorTokens:    tokens,
		StartupTimeout: v.GetDuration("STARTUP_TIMEOUT"),
	}
	return cfg, cfg.Validate()
}

func (c *Config) Validate() error {
	switch c.StorageBackend {
	case StorageMinIO:
		if c.MinIO.Endpoint == "" || c.MinIO.Bucket == "" {
			return fmt.Errorf("config: MINIO_ENDPOINT and MINIO_BUCKET are required for the minio backend")
		}
	case StorageDir:
		if c.DataDir == "" {
			return fmt.Errorf("config: DATA_DIR is required for the dir backend")
		}
	default:
		return fmt.Errorf("config: unknown STORAGE_BACKEND %q", c.StorageBackend)
	}
	switch c.RosterSource {
	case RosterPostgres:
		if c.DatabaseURL == "" {
			return fmt.Errorf("config: DATABASE_URL is required for the postgres roster")
		}
	case RosterHTTP:
		if c.RosterAPIURL == "" {
			return fmt.Errorf("config: ROSTER_API_URL is required for the http roster")
		}
	case RosterXLSX:
		if c.RosterXLSXPath == "" {
			return fmt.Errorf("config: ROSTER_XLSX_PATH is required for the xlsx roster")
		}
	default:
		return fmt.Errorf("config: unknown ROSTER_SOURCE %q", c.RosterSource)
	}
	return nil
}

// Location resolves the facility time zone.
func (c *Config) Location() (*time.Location, error) {
	loc, err := time.LoadLocation(c.Timezone)
	if err != nil {
		return nil, fmt.Errorf("config: timezone %q: %w", c.Timezone, err)
	}
	return loc, nil
}

// ParseFloorTokens parses "label=token,label=token".
func ParseFloorTokens(s string) (map[string]string, error) {
	out := map[string]string{}
	for _, pair := range strings.Split(s, ",") {
		pair = strings.TrimSpace(pair)
		if pair == "" {
			continue
		}
		label, token, ok := strings.Cut(pair, "=")
		label, token = strings.TrimSpace(label), strings.TrimSpace(token)
		if !ok || label == "" || token == "" {
			return nil, fmt.Errorf("config: bad FLOOR_TOKENS entry %q", pair)
		}
		out[label] = token
	}
	return out, nil
}
