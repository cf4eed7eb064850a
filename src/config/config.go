// Package config provides configuration management for trendwatch.
package config

import (
	"fmt"
	"os"
	"strings"
	"time"
)

// Config holds the application configuration. Provider tokens are loaded
// lazily against need: a Buildkite URL only requires BUILDKITE_API_TOKEN.
type Config struct {
	// BuildkiteAPIToken authenticates against the Buildkite API.
	BuildkiteAPIToken string

	// GitHubToken authenticates against the GitHub API.
	GitHubToken string

	// DatabaseURL is the Postgres connection string. Empty means builds
	// are kept in memory only.
	DatabaseURL string

	// RedpandaBrokers lists Kafka-protocol broker addresses. Empty means
	// events stay on an in-process broker.
	RedpandaBrokers []string

	// PollInterval is how often the watcher checks for new builds.
	PollInterval time.Duration
}

// LoadFromEnv loads configuration from environment variables.
func LoadFromEnv() (*Config, error) {
	cfg := &Config{
		BuildkiteAPIToken: os.Getenv("BUILDKITE_API_TOKEN"),
		GitHubToken:       os.Getenv("GITHUB_TOKEN"),
		DatabaseURL:       os.Getenv("DATABASE_URL"),
	}

	if brokers := os.Getenv("REDPANDA_BROKERS"); brokers != "" {
		for _, addr := range strings.Split(brokers, ",") {
			addr = strings.TrimSpace(addr)
			if addr != "" {
				cfg.RedpandaBrokers = append(cfg.RedpandaBrokers, addr)
			}
		}
	}

	if raw := os.Getenv("TRENDWATCH_POLL_INTERVAL"); raw != "" {
		interval, err := time.ParseDuration(raw)
		if err != nil {
			return nil, fmt.Errorf("invalid TRENDWATCH_POLL_INTERVAL %q: %w", raw, err)
		}
		if interval <= 0 {
			return nil, fmt.Errorf("TRENDWATCH_POLL_INTERVAL must be positive, got %q", raw)
		}
		cfg.PollInterval = interval
	}

	return cfg, nil
}

// MustLoadFromEnv loads configuration from environment variables and panics on error.
// This is useful for initialization in main() where configuration errors should be fatal.
func MustLoadFromEnv() *Config {
	cfg, err := LoadFromEnv()
	if err != nil {
		panic(fmt.Sprintf("failed to load configuration: %v", err))
	}
	return cfg
}

// TokenFor returns the API token for a provider name, or an error naming
// the environment variable that has to be set.
func (c *Config) TokenFor(providerName string) (string, error) {
	switch providerName {
	case "buildkite":
		if c.BuildkiteAPIToken == "" {
			return "", fmt.Errorf("BUILDKITE_API_TOKEN environment variable is required")
		}
		return c.BuildkiteAPIToken, nil
	case "github":
		if c.GitHubToken == "" {
			return "", fmt.Errorf("GITHUB_TOKEN environment variable is required")
		}
		return c.GitHubToken, nil
	default:
		return "", fmt.Errorf("no token configured for provider %q", providerName)
	}
}
