// Package config loads the gateway configuration from environment variables.
//
// Environment Variables:
//   - SONARR_URL: base URL of the Sonarr instance (required)
//   - SONARR_API_KEY: Sonarr API key (required)
//   - REDIS_ADDR: Redis address host:port (default: localhost:6379)
//   - CACHE_TTL_MINUTES: metadata cache TTL in minutes (default: 30)
//   - ALLOWED_IPS: comma-separated caller allowlist (default: 127.0.0.1)
//   - LISTEN_ADDR: HTTP listen address (default: :8080)
//   - LOG_FILE: rotating log file path (default: stderr only)
package config

import (
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"
)

// Config holds all gateway configuration.
type Config struct {
	SonarrURL    string
	SonarrAPIKey string
	RedisAddr    string
	CacheTTL     time.Duration
	AllowedIPs   []string
	ListenAddr   string
	LogFile      string
}

// Load reads configuration from the environment. Missing required values
// produce an error rather than a half-configured gateway.
func Load() (*Config, error) {
	cfg := &Config{
		SonarrURL:    strings.TrimSpace(os.Getenv("SONARR_URL")),
		SonarrAPIKey: strings.TrimSpace(os.Getenv("SONARR_API_KEY")),
		RedisAddr:    getEnv("REDIS_ADDR", "localhost:6379"),
		CacheTTL:     time.Duration(getEnvInt("CACHE_TTL_MINUTES", 30)) * time.Minute,
		ListenAddr:   getEnv("LISTEN_ADDR", ":8080"),
		LogFile:      strings.TrimSpace(os.Getenv("LOG_FILE")),
	}

	for _, ip := range strings.Split(getEnv("ALLOWED_IPS", "127.0.0.1"), ",") {
		if ip = strings.TrimSpace(ip); ip != "" {
			cfg.AllowedIPs = append(cfg.AllowedIPs, ip)
		}
	}

	if cfg.SonarrURL == "" {
		return nil, fmt.Errorf("SONARR_URL is required")
	}
	if cfg.SonarrAPIKey == "" {
		return nil, fmt.Errorf("SONARR_API_KEY is required")
	}
	if len(cfg.AllowedIPs) == 0 {
		return nil, fmt.Errorf("ALLOWED_IPS must list at least one address")
	}
	return cfg, nil
}

func getEnv(key, fallback string) string {
	if v := strings.TrimSpace(os.Getenv(key)); v != "" {
		return v
	}
	return fallback
}

func getEnvInt(key string, fallback int) int {
	v := strings.TrimSpace(os.Getenv(key))
	if v == "" {
		return fallback
	}
	n, err := strconv.Atoi(v)
	if err != nil || n < 1 {
		return fallback
	}
	return n
}
