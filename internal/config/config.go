// Package config loads service settings from environment variables with
// sensible defaults and fail-fast validation.
package config

import (
	"errors"
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"
)

// Config holds all service settings, populated from environment variables.
type Config struct {
	// Run definition.
	Family    string
	StartDate time.Time
	EndDate   time.Time
	Method    string
	RsoType   string
	Surface   string
	GapPolicy string
	Workers   int

	// IncludeWeather adds derived meteorology to each published record.
	IncludeWeather bool

	// WindHeight overrides the family's wind measurement height in meters;
	// zero keeps the family default.
	WindHeight float64

	// Archive access.
	ArchiveURL        string
	ArchiveTimeout    time.Duration
	ArchiveMaxElapsed time.Duration

	// Sinks.
	KafkaBrokers   []string
	KafkaSinkTopic string
	SQLitePath     string

	// Operational surface.
	HTTPAddr        string
	LogLevel        string
	LogFormat       string
	ShutdownTimeout time.Duration
}

// Load reads configuration from environment variables, applying defaults
// where unset.
func Load() (*Config, error) {
	startDate, err := parseDate("START_DATE")
	if err != nil {
		return nil, err
	}
	endDate, err := parseDate("END_DATE")
	if err != nil {
		return nil, err
	}

	archiveTimeout, err := parseDuration("ARCHIVE_TIMEOUT", "30s")
	if err != nil {
		return nil, err
	}
	archiveMaxElapsed, err := parseDuration("ARCHIVE_MAX_ELAPSED", "2m")
	if err != nil {
		return nil, err
	}
	shutdownTimeout, err := parseDuration("SHUTDOWN_TIMEOUT", "10s")
	if err != nil {
		return nil, err
	}

	workers, err := parsePositiveInt("WORKERS", 4)
	if err != nil {
		return nil, err
	}

	windHeight := 0.0
	if s := os.Getenv("WIND_HEIGHT"); s != "" {
		windHeight, err = strconv.ParseFloat(s, 64)
		if err != nil || windHeight <= 0 {
			return nil, errors.New("invalid WIND_HEIGHT")
		}
	}

	cfg := &Config{
		Family:         envOrDefault("SOURCE_FAMILY", "gridmet"),
		StartDate:      startDate,
		EndDate:        endDate,
		Method:         envOrDefault("ET_METHOD", "asce"),
		RsoType:        os.Getenv("RSO_TYPE"),
		Surface:        envOrDefault("REFERENCE_SURFACE", "grass"),
		GapPolicy:      envOrDefault("GAP_POLICY", "fail"),
		Workers:        workers,
		IncludeWeather: os.Getenv("INCLUDE_WEATHER") == "true",
		WindHeight:     windHeight,

		ArchiveURL:        os.Getenv("ARCHIVE_URL"),
		ArchiveTimeout:    archiveTimeout,
		ArchiveMaxElapsed: archiveMaxElapsed,

		KafkaBrokers:   parseBrokers(envOrDefault("KAFKA_BROKERS", "localhost:9092")),
		KafkaSinkTopic: envOrDefault("KAFKA_SINK_TOPIC", "reference-et-daily"),
		SQLitePath:     os.Getenv("SQLITE_PATH"),

		HTTPAddr:        envOrDefault("HTTP_ADDR", ":8080"),
		LogLevel:        envOrDefault("LOG_LEVEL", "info"),
		LogFormat:       envOrDefault("LOG_FORMAT", "json"),
		ShutdownTimeout: shutdownTimeout,
	}

	if cfg.ArchiveURL == "" {
		return nil, errors.New("ARCHIVE_URL is required")
	}
	if len(cfg.KafkaBrokers) == 0 {
		return nil, errors.New("KAFKA_BROKERS is required")
	}
	if cfg.KafkaSinkTopic == "" {
		return nil, errors.New("KAFKA_SINK_TOPIC is required")
	}
	if !cfg.StartDate.Before(cfg.EndDate) {
		return nil, errors.New("START_DATE must be before END_DATE")
	}

	return cfg, nil
}

func envOrDefault(key, def string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return def
}

func parseBrokers(s string) []string {
	var brokers []string
	for _, b := range strings.Split(s, ",") {
		if b = strings.TrimSpace(b); b != "" {
			brokers = append(brokers, b)
		}
	}
	return brokers
}

func parseDate(key string) (time.Time, error) {
	s := os.Getenv(key)
	if s == "" {
		return time.Time{}, fmt.Errorf("%s is required", key)
	}
	t, err := time.ParseInLocation("2006-01-02", s, time.UTC)
	if err != nil {
		return time.Time{}, fmt.Errorf("invalid %s: %w", key, err)
	}
	return t, nil
}

func parseDuration(key, def string) (time.Duration, error) {
	d, err := time.ParseDuration(envOrDefault(key, def))
	if err != nil || d <= 0 {
		return 0, fmt.Errorf("invalid %s", key)
	}
	return d, nil
}

func parsePositiveInt(key string, def int) (int, error) {
	s := os.Getenv(key)
	if s == "" {
		return def, nil
	}
	n, err := strconv.Atoi(s)
	if err != nil || n <= 0 {
		return 0, fmt.Errorf("invalid %s", key)
	}
	return n, nil
}
