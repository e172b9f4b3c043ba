package main

import (
	"context"
	"database/sql"
	"errors"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"

	_ "modernc.org/sqlite"

	"github.com/pacs27/refet-etl/internal/adapter/archive"
	httpadapter "github.com/pacs27/refet-etl/internal/adapter/http"
	kafkaadapter "github.com/pacs27/refet-etl/internal/adapter/kafka"
	"github.com/pacs27/refet-etl/internal/config"
	"github.com/pacs27/refet-etl/internal/observability"
	"github.com/pacs27/refet-etl/internal/pipeline"
	"github.com/pacs27/refet-etl/internal/refet"
	"github.com/pacs27/refet-etl/internal/source"
	"github.com/pacs27/refet-etl/internal/store"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		slog.Error("failed to load config", "error", err)
		os.Exit(1)
	}

	logger := observability.NewLogger(cfg.LogLevel, cfg.LogFormat)
	metrics := observability.NewMetrics()

	opts, err := buildOptions(cfg)
	if err != nil {
		logger.Error("invalid run configuration", "error", err)
		os.Exit(1)
	}

	gapPolicy, err := pipeline.ParseGapPolicy(cfg.GapPolicy)
	if err != nil {
		logger.Error("invalid run configuration", "error", err)
		os.Exit(1)
	}

	src, err := source.New(cfg.Family)
	if err != nil {
		logger.Error("invalid run configuration", "error", err)
		os.Exit(1)
	}

	fetcher := archive.NewClient(cfg.ArchiveURL, cfg.ArchiveTimeout, cfg.ArchiveMaxElapsed, logger)
	writer := kafkaadapter.NewWriter(cfg.KafkaBrokers, cfg.KafkaSinkTopic, logger)
	sinks := []pipeline.RecordSink{writer}

	var db *sql.DB
	if cfg.SQLitePath != "" {
		db, err = sql.Open("sqlite", cfg.SQLitePath)
		if err != nil {
			logger.Error("open sqlite", "path", cfg.SQLitePath, "error", err)
			os.Exit(1)
		}
		st := store.New(db)
		if err := st.Migrate(); err != nil {
			logger.Error("migrate sqlite", "error", err)
			os.Exit(1)
		}
		sinks = append(sinks, st)
		logger.Info("sqlite sink enabled", "path", cfg.SQLitePath)
	}

	driver, err := pipeline.NewDriver(pipeline.Config{
		Fetcher:        fetcher,
		Source:         src,
		Options:        opts,
		Sinks:          sinks,
		Logger:         logger,
		Metrics:        metrics,
		Workers:        cfg.Workers,
		GapPolicy:      gapPolicy,
		IncludeWeather: cfg.IncludeWeather,
	})
	if err != nil {
		logger.Error("build driver", "error", err)
		os.Exit(1)
	}

	srv := httpadapter.NewServer(cfg.HTTPAddr, driver, httpadapter.Status{
		Family:    cfg.Family,
		StartDate: cfg.StartDate.Format("2006-01-02"),
		EndDate:   cfg.EndDate.Format("2006-01-02"),
		Method:    cfg.Method,
	}, logger)

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	// Start HTTP server.
	go func() {
		if err := srv.Start(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			logger.Error("http server error", "error", err)
		}
	}()

	// Run the date range, then wait for shutdown so operators can scrape
	// final metrics.
	runErr := make(chan error, 1)
	go func() {
		res, err := driver.Run(ctx, cfg.StartDate, cfg.EndDate)
		logger.Info("run complete",
			"records", len(res.Records),
			"failures", len(res.Failures),
		)
		runErr <- err
	}()

	exitCode := 0
	select {
	case <-ctx.Done():
		logger.Info("shutting down")
	case err := <-runErr:
		if err != nil {
			logger.Error("driver error", "error", err)
			exitCode = 1
		}
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), cfg.ShutdownTimeout)
	defer cancel()

	if err := srv.Shutdown(shutdownCtx); err != nil {
		logger.Error("http server shutdown error", "error", err)
	}
	if err := writer.Close(); err != nil {
		logger.Error("kafka writer close error", "error", err)
	}
	if db != nil {
		if err := db.Close(); err != nil {
			logger.Error("sqlite close error", "error", err)
		}
	}

	logger.Info("shutdown complete")
	os.Exit(exitCode)
}

// buildOptions translates run configuration into adapter options.
func buildOptions(cfg *config.Config) (source.Options, error) {
	method, err := refet.ParseMethod(cfg.Method)
	if err != nil {
		return source.Options{}, err
	}
	rsoType, err := refet.ParseRsoType(cfg.RsoType)
	if err != nil {
		return source.Options{}, err
	}
	return source.Options{
		Zw:      cfg.WindHeight,
		Method:  method,
		RsoType: rsoType,
	}, nil
}
