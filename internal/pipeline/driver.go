// Package pipeline drives reference ET evaluation over a calendar date
// range: fetch one day of upstream imagery, normalize it through the family
// adapter, evaluate the engine, and deliver the record to the configured
// sinks. Days are processed by a bounded worker pool; output order is
// restored by day index so sinks always observe strictly increasing dates.
package pipeline

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"sync"
	"sync/atomic"
	"time"

	"github.com/pacs27/refet-etl/internal/field"
	"github.com/pacs27/refet-etl/internal/observability"
	"github.com/pacs27/refet-etl/internal/refet"
	"github.com/pacs27/refet-etl/internal/source"
)

const defaultWorkers = 4

// Config assembles a Driver.
type Config struct {
	Fetcher Fetcher
	Source  source.Source
	Options source.Options
	Sinks   []RecordSink
	Logger  *slog.Logger
	Metrics *observability.Metrics

	// Workers bounds the per-day fan-out; zero selects a small default.
	Workers int

	GapPolicy GapPolicy

	// IncludeWeather adds the derived meteorology outputs to each record
	// alongside eto and etr.
	IncludeWeather bool
}

// Driver orchestrates the per-day evaluation loop.
type Driver struct {
	fetcher        Fetcher
	src            source.Source
	opts           source.Options
	sinks          []RecordSink
	logger         *slog.Logger
	metrics        *observability.Metrics
	workers        int
	gapPolicy      GapPolicy
	includeWeather bool
	ready          atomic.Bool
}

// NewDriver validates cfg and creates a Driver.
func NewDriver(cfg Config) (*Driver, error) {
	if cfg.Fetcher == nil {
		return nil, fmt.Errorf("%w: driver requires a fetcher", refet.ErrInvalidConfiguration)
	}
	if cfg.Source == nil {
		return nil, fmt.Errorf("%w: driver requires a source adapter", refet.ErrInvalidConfiguration)
	}
	if cfg.Logger == nil || cfg.Metrics == nil {
		return nil, fmt.Errorf("%w: driver requires logger and metrics", refet.ErrInvalidConfiguration)
	}
	workers := cfg.Workers
	if workers <= 0 {
		workers = defaultWorkers
	}
	return &Driver{
		fetcher:        cfg.Fetcher,
		src:            cfg.Source,
		opts:           cfg.Options,
		sinks:          cfg.Sinks,
		logger:         cfg.Logger,
		metrics:        cfg.Metrics,
		workers:        workers,
		gapPolicy:      cfg.GapPolicy,
		includeWeather: cfg.IncludeWeather,
	}, nil
}

// CheckReadiness returns nil once the driver has produced at least one
// record, or an error describing why the service is not yet ready.
func (d *Driver) CheckReadiness(_ context.Context) error {
	if !d.ready.Load() {
		return errors.New("driver has not produced any records yet")
	}
	return nil
}

// outcome is the per-day result slot filled by workers.
type outcome struct {
	rec *DayRecord
	err error
}

// Run evaluates every calendar day in [start, end), fanning days out to the
// worker pool and emitting records to the sinks in date order. Day-level
// failures obey the gap policy; configuration errors and sink errors abort.
func (d *Driver) Run(ctx context.Context, start, end time.Time) (Result, error) {
	start = midnightUTC(start)
	end = midnightUTC(end)
	if !start.Before(end) {
		return Result{}, fmt.Errorf("%w: empty date range [%s, %s)",
			refet.ErrInvalidConfiguration, start.Format("2006-01-02"), end.Format("2006-01-02"))
	}

	var days []time.Time
	for day := start; day.Before(end); day = day.AddDate(0, 0, 1) {
		days = append(days, day)
	}

	d.logger.Info("driver started",
		"family", d.src.Name(),
		"start", start.Format("2006-01-02"),
		"end", end.Format("2006-01-02"),
		"days", len(days),
		"workers", d.workers,
		"gap_policy", d.gapPolicy.String(),
	)
	d.metrics.PipelineRunning.Set(1)
	defer d.metrics.PipelineRunning.Set(0)

	anc, err := d.fetchAncillary(ctx)
	if err != nil {
		return Result{}, err
	}

	outcomes := make([]outcome, len(days))
	jobs := make(chan int)
	var wg sync.WaitGroup
	for w := 0; w < d.workers; w++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for i := range jobs {
				outcomes[i] = d.evaluateDay(ctx, anc, days[i])
			}
		}()
	}
	for i := range days {
		select {
		case jobs <- i:
		case <-ctx.Done():
		}
		if ctx.Err() != nil {
			break
		}
	}
	close(jobs)
	wg.Wait()

	if ctx.Err() != nil {
		d.logger.Info("driver stopping", "reason", ctx.Err())
		return Result{}, ctx.Err()
	}

	return d.collect(ctx, days, outcomes)
}

// collect walks the outcomes in day order, applying the gap policy and
// publishing records.
func (d *Driver) collect(ctx context.Context, days []time.Time, outcomes []outcome) (Result, error) {
	var res Result
	for i, oc := range outcomes {
		date := days[i].Format("2006-01-02")
		if oc.err != nil {
			if errors.Is(oc.err, refet.ErrInvalidConfiguration) {
				return res, fmt.Errorf("day %s: %w", date, oc.err)
			}
			d.metrics.DayFailures.Inc()
			if d.gapPolicy == GapFail {
				return res, fmt.Errorf("day %s: %w", date, oc.err)
			}
			d.logger.Warn("day skipped", "date", date, "error", oc.err)
			res.Failures = append(res.Failures, DayFailure{Date: days[i], Err: oc.err})
			continue
		}

		for _, sink := range d.sinks {
			if err := sink.Publish(ctx, *oc.rec); err != nil {
				return res, fmt.Errorf("publish day %s: %w", date, err)
			}
		}
		d.metrics.DaysComputed.Inc()
		d.metrics.RecordsPublished.Inc()
		res.Records = append(res.Records, *oc.rec)
		d.ready.Store(true)
	}

	d.logger.Info("driver finished",
		"records", len(res.Records),
		"failures", len(res.Failures),
	)
	return res, nil
}

// evaluateDay runs one fetch-normalize-evaluate cycle.
func (d *Driver) evaluateDay(ctx context.Context, anc source.Ancillary, day time.Time) outcome {
	if ctx.Err() != nil {
		return outcome{err: ctx.Err()}
	}
	begin := time.Now()

	coll, err := d.fetchDay(ctx, day)
	if err != nil {
		return outcome{err: err}
	}

	eng, err := d.src.Daily(coll, anc, d.opts)
	if err != nil {
		return outcome{err: err}
	}

	fields := map[string]field.Field{
		"eto": eng.ETo(),
		"etr": eng.ETr(),
	}
	if d.includeWeather {
		fields["etw"] = eng.ETw()
		fields["eto_fs1"] = eng.EToFS1()
		fields["eto_fs2"] = eng.EToFS2()
		fields["pet_hargreaves"] = eng.PETHargreaves()
		fields["tmean"] = eng.Tmean()
		fields["vpd"] = eng.VPD()
		fields["rn"] = eng.Rn()
		fields["u2"] = eng.U2()
		fields["ea"] = eng.Ea()
		fields["rs"] = eng.Rs()
	}

	rec := DayRecord{
		Date:       day,
		Family:     d.src.Name(),
		Fields:     fields,
		ComputedAt: clock.Now().UTC(),
	}
	d.metrics.DayComputeDuration.Observe(time.Since(begin).Seconds())
	return outcome{rec: &rec}
}

func (d *Driver) fetchDay(ctx context.Context, day time.Time) (source.Collection, error) {
	begin := time.Now()
	coll, err := d.fetcher.FetchDay(ctx, d.src.Name(), day)
	d.metrics.FetchDuration.WithLabelValues("day").Observe(time.Since(begin).Seconds())
	d.metrics.FetchRequests.WithLabelValues("day", fetchOutcome(err)).Inc()
	return coll, err
}

func (d *Driver) fetchAncillary(ctx context.Context) (source.Ancillary, error) {
	begin := time.Now()
	anc, err := d.fetcher.FetchAncillary(ctx, d.src.Name())
	d.metrics.FetchDuration.WithLabelValues("ancillary").Observe(time.Since(begin).Seconds())
	d.metrics.FetchRequests.WithLabelValues("ancillary", fetchOutcome(err)).Inc()
	if err != nil {
		return source.Ancillary{}, fmt.Errorf("fetch ancillary: %w", err)
	}
	return anc, nil
}

func fetchOutcome(err error) string {
	switch {
	case err == nil:
		return "success"
	case errors.Is(err, source.ErrNoSamples), errors.Is(err, source.ErrMissingBand):
		return "missing"
	default:
		return "error"
	}
}

func midnightUTC(t time.Time) time.Time {
	t = t.UTC()
	return time.Date(t.Year(), t.Month(), t.Day(), 0, 0, 0, 0, time.UTC)
}
