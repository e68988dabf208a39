package config

import (
	"fmt"
	"os"
	"strings"
	"time"

	"gopkg.in/yaml.v3"
)

// Config holds every runtime setting. It is built once at process start and
// passed by reference into the components that need it.
type Config struct {
	TikTokClientKey    string
	TikTokClientSecret string
	TikTokRedirectURI  string
	SessionSecret      string
	CronSecret         string
	DatabasePath       string
	Host               string
	Port               string
	SyncInterval       time.Duration
}

// fileConfig is the optional YAML form of the same settings. Environment
// variables always win over file values.
type fileConfig struct {
	TikTokClientKey    string `yaml:"tiktok_client_key"`
	TikTokClientSecret string `yaml:"tiktok_client_secret"`
	TikTokRedirectURI  string `yaml:"tiktok_redirect_uri"`
	SessionSecret      string `yaml:"session_secret"`
	CronSecret         string `yaml:"cron_secret"`
	DatabasePath       string `yaml:"database_path"`
	Host               string `yaml:"host"`
	Port               string `yaml:"port"`
	SyncInterval       string `yaml:"sync_interval"`
}

// Load builds the configuration from an optional YAML file plus environment
// overrides. Required values missing from both sources fail here, before
// anything touches the network or the database.
func Load() (*Config, error) {
	var fc fileConfig
	path := os.Getenv("CONFIG_FILE")
	explicit := path != ""
	if path == "" {
		path = "config.yaml"
	}
	if data, err := os.ReadFile(path); err == nil {
		if err := yaml.Unmarshal(data, &fc); err != nil {
			return nil, fmt.Errorf("parse %s: %w", path, err)
		}
	} else if explicit {
		return nil, fmt.Errorf("read %s: %w", path, err)
	}

	cfg := &Config{
		TikTokClientKey:    override("TIKTOK_CLIENT_KEY", fc.TikTokClientKey),
		TikTokClientSecret: override("TIKTOK_CLIENT_SECRET", fc.TikTokClientSecret),
		TikTokRedirectURI:  override("TIKTOK_REDIRECT_URI", fc.TikTokRedirectURI),
		SessionSecret:      override("SESSION_SECRET", fc.SessionSecret),
		CronSecret:         override("CRON_SECRET", fc.CronSecret),
		DatabasePath:       override("DATABASE_PATH", fc.DatabasePath),
		Host:               override("HOST", fc.Host),
		Port:               override("PORT", fc.Port),
	}
	if cfg.DatabasePath == "" {
		cfg.DatabasePath = "collabtok.db"
	}
	if cfg.Host == "" {
		cfg.Host = "127.0.0.1" // set HOST=0.0.0.0 for LAN access
	}
	if cfg.Port == "" {
		cfg.Port = "8080"
	}

	if raw := override("SYNC_INTERVAL", fc.SyncInterval); raw != "" {
		d, err := time.ParseDuration(raw)
		if err != nil {
			return nil, fmt.Errorf("invalid SYNC_INTERVAL %q: %w", raw, err)
		}
		cfg.SyncInterval = d
	}

	var missing []string
	for _, req := range []struct{ name, value string }{
		{"TIKTOK_CLIENT_KEY", cfg.TikTokClientKey},
		{"TIKTOK_CLIENT_SECRET", cfg.TikTokClientSecret},
		{"TIKTOK_REDIRECT_URI", cfg.TikTokRedirectURI},
		{"SESSION_SECRET", cfg.SessionSecret},
	} {
		if req.value == "" {
			missing = append(missing, req.name)
		}
	}
	if len(missing) > 0 {
		return nil, fmt.Errorf("missing required configuration: %s", strings.Join(missing, ", "))
	}

	return cfg, nil
}

func override(key, fileValue string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fileValue
}
