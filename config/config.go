// Package config reads the indexer settings from the environment.
package config

import (
	"fmt"
	"os"
	"strconv"
	"time"

	str2duration "github.com/xhit/go-str2duration/v2"
)

type Config struct {
	Port        string
	MetricsPort string

	RedisHost     string
	RedisPort     string
	RedisPassword string

	FlareSolverrAddress string
	MeilisearchAddress  string
	MeilisearchKey      string
	MeilisearchIndex    string

	ShortLivedCacheExpiration time.Duration
	LongLivedCacheExpiration  time.Duration

	LafaBaseURL       string
	RequestsPerSecond float64
	PageConcurrency   int
}

// Load builds a Config from environment variables, falling back to defaults
// for anything unset. Durations accept str2duration syntax such as "7d12h".
func Load() (*Config, error) {
	c := &Config{
		Port:                getEnv("PORT", "7006"),
		MetricsPort:         getEnv("METRICS_PORT", "8081"),
		RedisHost:           getEnv("REDIS_HOST", "localhost"),
		RedisPort:           getEnv("REDIS_PORT", "6379"),
		RedisPassword:       os.Getenv("REDIS_PASSWORD"),
		FlareSolverrAddress: os.Getenv("FLARESOLVERR_ADDRESS"),
		MeilisearchAddress:  os.Getenv("MEILISEARCH_ADDRESS"),
		MeilisearchKey:      os.Getenv("MEILISEARCH_KEY"),
		MeilisearchIndex:    getEnv("MEILISEARCH_INDEX", "lafa"),
		LafaBaseURL:         getEnv("LAFA_BASE_URL", "https://top.lafa.site"),
	}

	var err error
	if c.ShortLivedCacheExpiration, err = getDuration("SHORT_LIVED_CACHE_EXPIRATION", 30*time.Minute); err != nil {
		return nil, err
	}
	if c.LongLivedCacheExpiration, err = getDuration("LONG_LIVED_CACHE_EXPIRATION", 7*24*time.Hour); err != nil {
		return nil, err
	}
	if c.RequestsPerSecond, err = getFloat("REQUESTS_PER_SECOND", 5); err != nil {
		return nil, err
	}
	if c.PageConcurrency, err = getInt("PAGE_CONCURRENCY", 4); err != nil {
		return nil, err
	}
	if c.PageConcurrency < 1 {
		return nil, fmt.Errorf("PAGE_CONCURRENCY must be positive, got %d", c.PageConcurrency)
	}

	return c, nil
}

// RedisAddr returns host:port for the redis client.
func (c *Config) RedisAddr() string {
	return fmt.Sprintf("%s:%s", c.RedisHost, c.RedisPort)
}

func getEnv(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}

func getDuration(key string, fallback time.Duration) (time.Duration, error) {
	v := os.Getenv(key)
	if v == "" {
		return fallback, nil
	}
	d, err := str2duration.ParseDuration(v)
	if err != nil {
		return 0, fmt.Errorf("invalid %s %q: %w", key, v, err)
	}
	return d, nil
}

func getFloat(key string, fallback float64) (float64, error) {
	v := os.Getenv(key)
	if v == "" {
		return fallback, nil
	}
	f, err := strconv.ParseFloat(v, 64)
	if err != nil {
		return 0, fmt.Errorf("invalid %s %q: %w", key, v, err)
	}
	return f, nil
}

func getInt(key string, fallback int) (int, error) {
	v := os.Getenv(key)
	if v == "" {
		return fallback, nil
	}
	i, err := strconv.Atoi(v)
	if err != nil {
		return 0, fmt.Errorf("invalid %s %q: %w", key, v, err)
	}
	return i, nil
}
