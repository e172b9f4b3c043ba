package config

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const defaultBroker = "localhost:9092"

// setRequiredEnv sets the variables Load cannot default.
func setRequiredEnv(t *testing.T) {
	t.Helper()
	t.Setenv("ARCHIVE_URL", "http://archive.internal:9000")
	t.Setenv("START_DATE", "2021-06-01")
	t.Setenv("END_DATE", "2021-07-01")
}

func TestLoad_Defaults(t *testing.T) {
	setRequiredEnv(t)

	cfg, err := Load()
	require.NoError(t, err)

	assert.Equal(t, "gridmet", cfg.Family)
	assert.Equal(t, time.Date(2021, 6, 1, 0, 0, 0, 0, time.UTC), cfg.StartDate)
	assert.Equal(t, time.Date(2021, 7, 1, 0, 0, 0, 0, time.UTC), cfg.EndDate)
	assert.Equal(t, "asce", cfg.Method)
	assert.Empty(t, cfg.RsoType)
	assert.Equal(t, "grass", cfg.Surface)
	assert.Equal(t, "fail", cfg.GapPolicy)
	assert.Equal(t, 4, cfg.Workers)
	assert.False(t, cfg.IncludeWeather)
	assert.Zero(t, cfg.WindHeight)
	assert.Equal(t, 30*time.Second, cfg.ArchiveTimeout)
	assert.Equal(t, 2*time.Minute, cfg.ArchiveMaxElapsed)
	assert.Equal(t, []string{defaultBroker}, cfg.KafkaBrokers)
	assert.Equal(t, "reference-et-daily", cfg.KafkaSinkTopic)
	assert.Empty(t, cfg.SQLitePath)
	assert.Equal(t, ":8080", cfg.HTTPAddr)
	assert.Equal(t, "info", cfg.LogLevel)
	assert.Equal(t, "json", cfg.LogFormat)
	assert.Equal(t, 10*time.Second, cfg.ShutdownTimeout)
}

func TestLoad_CustomEnv(t *testing.T) {
	setRequiredEnv(t)
	t.Setenv("SOURCE_FAMILY", "era5land")
	t.Setenv("ET_METHOD", "refet")
	t.Setenv("RSO_TYPE", "full")
	t.Setenv("REFERENCE_SURFACE", "alfalfa")
	t.Setenv("GAP_POLICY", "skip")
	t.Setenv("WORKERS", "8")
	t.Setenv("INCLUDE_WEATHER", "true")
	t.Setenv("WIND_HEIGHT", "2")
	t.Setenv("ARCHIVE_TIMEOUT", "10s")
	t.Setenv("ARCHIVE_MAX_ELAPSED", "1m")
	t.Setenv("KAFKA_BROKERS", "broker1:9092,broker2:9092")
	t.Setenv("KAFKA_SINK_TOPIC", "custom-sink")
	t.Setenv("SQLITE_PATH", "/var/lib/refet/et.db")
	t.Setenv("HTTP_ADDR", ":9090")
	t.Setenv("LOG_LEVEL", "debug")
	t.Setenv("LOG_FORMAT", "text")
	t.Setenv("SHUTDOWN_TIMEOUT", "30s")

	cfg, err := Load()
	require.NoError(t, err)

	assert.Equal(t, "era5land", cfg.Family)
	assert.Equal(t, "refet", cfg.Method)
	assert.Equal(t, "full", cfg.RsoType)
	assert.Equal(t, "alfalfa", cfg.Surface)
	assert.Equal(t, "skip", cfg.GapPolicy)
	assert.Equal(t, 8, cfg.Workers)
	assert.True(t, cfg.IncludeWeather)
	assert.Equal(t, 2.0, cfg.WindHeight)
	assert.Equal(t, 10*time.Second, cfg.ArchiveTimeout)
	assert.Equal(t, time.Minute, cfg.ArchiveMaxElapsed)
	assert.Equal(t, []string{"broker1:9092", "broker2:9092"}, cfg.KafkaBrokers)
	assert.Equal(t, "custom-sink", cfg.KafkaSinkTopic)
	assert.Equal(t, "/var/lib/refet/et.db", cfg.SQLitePath)
	assert.Equal(t, ":9090", cfg.HTTPAddr)
	assert.Equal(t, "debug", cfg.LogLevel)
	assert.Equal(t, "text", cfg.LogFormat)
	assert.Equal(t, 30*time.Second, cfg.ShutdownTimeout)
}

func TestLoad_MissingArchiveURL(t *testing.T) {
	t.Setenv("START_DATE", "2021-06-01")
	t.Setenv("END_DATE", "2021-07-01")

	_, err := Load()
	require.Error(t, err)
	assert.Contains(t, err.Error(), "ARCHIVE_URL")
}

func TestLoad_MissingDates(t *testing.T) {
	t.Setenv("ARCHIVE_URL", "http://archive.internal:9000")

	_, err := Load()
	require.Error(t, err)
	assert.Contains(t, err.Error(), "START_DATE")
}

func TestLoad_InvalidDate(t *testing.T) {
	setRequiredEnv(t)
	t.Setenv("END_DATE", "July 1st")

	_, err := Load()
	require.Error(t, err)
	assert.Contains(t, err.Error(), "END_DATE")
}

func TestLoad_InvertedDateRange(t *testing.T) {
	setRequiredEnv(t)
	t.Setenv("START_DATE", "2021-07-01")
	t.Setenv("END_DATE", "2021-06-01")

	_, err := Load()
	require.Error(t, err)
	assert.Contains(t, err.Error(), "START_DATE must be before END_DATE")
}

func TestLoad_InvalidShutdownTimeout(t *testing.T) {
	setRequiredEnv(t)
	t.Setenv("SHUTDOWN_TIMEOUT", "not-a-duration")

	_, err := Load()
	require.Error(t, err)
	assert.Contains(t, err.Error(), "SHUTDOWN_TIMEOUT")
}

func TestLoad_InvalidWorkers(t *testing.T) {
	setRequiredEnv(t)
	t.Setenv("WORKERS", "0")

	_, err := Load()
	require.Error(t, err)
	assert.Contains(t, err.Error(), "WORKERS")
}

func TestLoad_InvalidWindHeight(t *testing.T) {
	setRequiredEnv(t)
	t.Setenv("WIND_HEIGHT", "-2")

	_, err := Load()
	require.Error(t, err)
	assert.Contains(t, err.Error(), "WIND_HEIGHT")
}
