// Package config reads service configuration from the environment.
package config

import (
	"log/slog"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/openheritage/arscale/internal/cache"
	"github.com/openheritage/arscale/internal/fetch"
	"github.com/openheritage/arscale/internal/scaling"
)

type Config struct {
	Port                string
	LogLevel            slog.Level
	DefaultMaxDimension float64
	AllowedHosts        []string
	FetchTimeout        time.Duration
	FetchMaxBytes       int64
	CacheTTL            time.Duration
	CacheSweepThreshold int
	RateLimitRPS        float64
	RateLimitBurst      int
	Storage             StorageConfig
}

// StorageConfig configures the optional S3 origin for mirrored assets.
type StorageConfig struct {
	Endpoint        string
	AccessKeyID     string
	SecretAccessKey string
	UseSSL          bool
}

// Enabled reports whether an S3 origin was configured at all.
func (s StorageConfig) Enabled() bool {
	return s.Endpoint != ""
}

func Load() *Config {
	return &Config{
		Port:                getEnv("PORT", "8080"),
		LogLevel:            parseLogLevel(getEnv("LOG_LEVEL", "info")),
		DefaultMaxDimension: getEnvFloat("AR_DEFAULT_MAX_DIMENSION", scaling.DefaultMaxDimension),
		AllowedHosts:        parseHosts(getEnv("AR_ALLOWED_HOSTS", "")),
		FetchTimeout:        getEnvSeconds("FETCH_TIMEOUT", fetch.DefaultTimeout),
		FetchMaxBytes:       getEnvInt64("FETCH_MAX_BYTES", fetch.DefaultMaxPayloadSize),
		CacheTTL:            getEnvSeconds("CACHE_TTL", cache.DefaultTTL),
		CacheSweepThreshold: getEnvInt("CACHE_SWEEP_THRESHOLD", cache.DefaultSweepThreshold),
		RateLimitRPS:        getEnvFloat("RATE_LIMIT_RPS", 0),
		RateLimitBurst:      getEnvInt("RATE_LIMIT_BURST", 10),
		Storage: StorageConfig{
			Endpoint:        getEnv("S3_ENDPOINT", ""),
			AccessKeyID:     getEnv("S3_ACCESS_KEY", "minioadmin"),
			SecretAccessKey: getEnv("S3_SECRET_KEY", "minioadmin"),
			UseSSL:          getEnv("S3_USE_SSL", "false") == "true",
		},
	}
}

// HostAllowed reports whether a source host passed the allow list. An
// empty list allows every host.
func (c *Config) HostAllowed(host string) bool {
	if len(c.AllowedHosts) == 0 {
		return true
	}
	for _, allowed := range c.AllowedHosts {
		if strings.EqualFold(host, allowed) {
			return true
		}
	}
	return false
}

func parseHosts(raw string) []string {
	if raw == "" {
		return nil
	}
	var hosts []string
	for _, h := range strings.Split(raw, ",") {
		if h = strings.TrimSpace(h); h != "" {
			hosts = append(hosts, h)
		}
	}
	return hosts
}

func parseLogLevel(raw string) slog.Level {
	switch strings.ToLower(raw) {
	case "debug":
		return slog.LevelDebug
	case "warn":
		return slog.LevelWarn
	case "error":
		return slog.LevelError
	default:
		return slog.LevelInfo
	}
}

func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

func getEnvFloat(key string, defaultValue float64) float64 {
	if value := os.Getenv(key); value != "" {
		if f, err := strconv.ParseFloat(value, 64); err == nil {
			return f
		}
	}
	return defaultValue
}

func getEnvInt(key string, defaultValue int) int {
	if value := os.Getenv(key); value != "" {
		if n, err := strconv.Atoi(value); err == nil {
			return n
		}
	}
	return defaultValue
}

func getEnvInt64(key string, defaultValue int64) int64 {
	if value := os.Getenv(key); value != "" {
		if n, err := strconv.ParseInt(value, 10, 64); err == nil && n > 0 {
			return n
		}
	}
	return defaultValue
}

func getEnvSeconds(key string, defaultValue time.Duration) time.Duration {
	if value := os.Getenv(key); value != "" {
		if n, err := strconv.Atoi(value); err == nil && n > 0 {
			return time.Duration(n) * time.Second
		}
	}
	return defaultValue
}
