package config

import (
	"errors"
	"fmt"
	"net/url"
	"time"

	sharedcfg "github.com/couchcryptid/storm-data-shared/config"
)

// DefaultSourceURL is the published Alpe d'Huez ascent dataset.
const DefaultSourceURL = "https://raw.githubusercontent.com/freeCodeCamp/ProjectReferenceData/master/cyclist-data.json"

// Config holds all service settings, populated from environment variables.
type Config struct {
	SourceURL      string
	SourceTimeout  time.Duration
	SourceCacheTTL time.Duration

	HTTPAddr        string
	LogLevel        string
	LogFormat       string
	ShutdownTimeout time.Duration

	// Publishing is disabled when KafkaBrokers is empty.
	KafkaBrokers []string
	KafkaTopic   string
}

// PublishEnabled reports whether normalized records should go to Kafka.
func (c *Config) PublishEnabled() bool {
	return len(c.KafkaBrokers) > 0
}

// Load reads configuration from environment variables, applying defaults where unset.
func Load() (*Config, error) {
	shutdownTimeout, err := sharedcfg.ParseShutdownTimeout()
	if err != nil {
		return nil, err
	}

	sourceTimeout, err := parseDuration("SOURCE_TIMEOUT", "10s")
	if err != nil {
		return nil, err
	}
	if sourceTimeout <= 0 {
		return nil, errors.New("SOURCE_TIMEOUT must be positive")
	}

	cacheTTL, err := parseDuration("SOURCE_CACHE_TTL", "0s")
	if err != nil {
		return nil, err
	}
	if cacheTTL < 0 {
		return nil, errors.New("SOURCE_CACHE_TTL must not be negative")
	}

	var brokers []string
	if raw := sharedcfg.EnvOrDefault("KAFKA_BROKERS", ""); raw != "" {
		brokers = sharedcfg.ParseBrokers(raw)
	}

	cfg := &Config{
		SourceURL:       sharedcfg.EnvOrDefault("SOURCE_URL", DefaultSourceURL),
		SourceTimeout:   sourceTimeout,
		SourceCacheTTL:  cacheTTL,
		HTTPAddr:        sharedcfg.EnvOrDefault("HTTP_ADDR", ":8080"),
		LogLevel:        sharedcfg.EnvOrDefault("LOG_LEVEL", "info"),
		LogFormat:       sharedcfg.EnvOrDefault("LOG_FORMAT", "json"),
		ShutdownTimeout: shutdownTimeout,
		KafkaBrokers:    brokers,
		KafkaTopic:      sharedcfg.EnvOrDefault("KAFKA_TOPIC", "cyclist-records"),
	}

	u, err := url.Parse(cfg.SourceURL)
	if err != nil || (u.Scheme != "http" && u.Scheme != "https") || u.Host == "" {
		return nil, fmt.Errorf("invalid SOURCE_URL %q", cfg.SourceURL)
	}
	switch cfg.LogFormat {
	case "json", "text":
	default:
		return nil, fmt.Errorf("invalid LOG_FORMAT %q", cfg.LogFormat)
	}

	return cfg, nil
}

func parseDuration(key, def string) (time.Duration, error) {
	d, err := time.ParseDuration(sharedcfg.EnvOrDefault(key, def))
	if err != nil {
		return 0, fmt.Errorf("invalid %s: %w", key, err)
	}
	return d, nil
}
