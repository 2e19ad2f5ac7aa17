package config

import (
	"errors"
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
)

// Config holds all service settings, populated from environment variables.
type Config struct {
	// Easee cloud endpoints and credentials.
	EaseeAPIURL     string
	EaseeStreamURL  string
	EaseeAPIToken   string
	EaseeAPITimeout time.Duration

	// Chargers this instance ingests.
	ChargerIDs []string

	StreamEnabled bool
	RestEnabled   bool
	PollInterval  time.Duration

	KafkaBrokers   []string
	KafkaSinkTopic string

	HTTPAddr        string
	LogLevel        string
	LogFormat       string
	ShutdownTimeout time.Duration

	BatchSize    int
	SourceBuffer int

	// Site enrichment.
	SiteEnrichmentEnabled bool
	SiteCacheSize         int
}

// Load reads configuration from environment variables, applying defaults
// where unset. A .env file in the working directory is honored when present.
func Load() (*Config, error) {
	_ = godotenv.Load()

	shutdownTimeout, err := durationOrDefault("SHUTDOWN_TIMEOUT", 10*time.Second)
	if err != nil {
		return nil, err
	}
	pollInterval, err := durationOrDefault("POLL_INTERVAL", 30*time.Second)
	if err != nil {
		return nil, err
	}
	apiTimeout, err := durationOrDefault("EASEE_API_TIMEOUT", 5*time.Second)
	if err != nil {
		return nil, err
	}
	batchSize, err := intOrDefault("BATCH_SIZE", 50)
	if err != nil {
		return nil, err
	}
	sourceBuffer, err := intOrDefault("SOURCE_BUFFER", 256)
	if err != nil {
		return nil, err
	}
	siteCacheSize, err := intOrDefault("SITE_CACHE_SIZE", 1000)
	if err != nil {
		return nil, err
	}

	token := os.Getenv("EASEE_API_TOKEN")
	siteEnrichment := token != ""
	if v := os.Getenv("SITE_ENRICHMENT_ENABLED"); v != "" {
		siteEnrichment = v == "true"
	}

	cfg := &Config{
		EaseeAPIURL:     envOrDefault("EASEE_API_URL", "https://api.easee.com"),
		EaseeStreamURL:  envOrDefault("EASEE_STREAM_URL", "wss://streams.easee.com/hubs/chargers"),
		EaseeAPIToken:   token,
		EaseeAPITimeout: apiTimeout,

		ChargerIDs: splitList(os.Getenv("CHARGER_IDS")),

		StreamEnabled: envOrDefault("STREAM_ENABLED", "true") == "true",
		RestEnabled:   envOrDefault("REST_ENABLED", "true") == "true",
		PollInterval:  pollInterval,

		KafkaBrokers:   splitList(envOrDefault("KAFKA_BROKERS", "localhost:9092")),
		KafkaSinkTopic: envOrDefault("KAFKA_SINK_TOPIC", "charger-observations"),

		HTTPAddr:        envOrDefault("HTTP_ADDR", ":8080"),
		LogLevel:        envOrDefault("LOG_LEVEL", "info"),
		LogFormat:       envOrDefault("LOG_FORMAT", "json"),
		ShutdownTimeout: shutdownTimeout,

		BatchSize:    batchSize,
		SourceBuffer: sourceBuffer,

		SiteEnrichmentEnabled: siteEnrichment,
		SiteCacheSize:         siteCacheSize,
	}

	if len(cfg.KafkaBrokers) == 0 {
		return nil, errors.New("KAFKA_BROKERS is required")
	}
	if cfg.KafkaSinkTopic == "" {
		return nil, errors.New("KAFKA_SINK_TOPIC is required")
	}
	if len(cfg.ChargerIDs) == 0 && (cfg.StreamEnabled || cfg.RestEnabled) {
		return nil, errors.New("CHARGER_IDS is required when a transport is enabled")
	}
	if cfg.EaseeAPIToken == "" && (cfg.StreamEnabled || cfg.RestEnabled) {
		return nil, errors.New("EASEE_API_TOKEN is required when a transport is enabled")
	}
	if cfg.SiteEnrichmentEnabled && cfg.EaseeAPIToken == "" {
		return nil, errors.New("SITE_ENRICHMENT_ENABLED is true but EASEE_API_TOKEN is not set")
	}

	return cfg, nil
}

func envOrDefault(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}

func durationOrDefault(key string, fallback time.Duration) (time.Duration, error) {
	v := os.Getenv(key)
	if v == "" {
		return fallback, nil
	}
	d, err := time.ParseDuration(v)
	if err != nil || d <= 0 {
		return 0, fmt.Errorf("invalid %s: %q", key, v)
	}
	return d, nil
}

func intOrDefault(key string, fallback int) (int, error) {
	v := os.Getenv(key)
	if v == "" {
		return fallback, nil
	}
	n, err := strconv.Atoi(v)
	if err != nil || n <= 0 {
		return 0, fmt.Errorf("invalid %s: %q", key, v)
	}
	return n, nil
}

// splitList parses a comma-separated env value, trimming whitespace and
// dropping empty entries.
func splitList(v string) []string {
	if v == "" {
		return nil
	}
	parts := strings.Split(v, ",")
	out := make([]string, 0, len(parts))
	for _, p := range parts {
		if p = strings.TrimSpace(p); p != "" {
			out = append(out, p)
		}
	}
	return out
}
