package pipeline

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/pacs27/refet-etl/internal/field"
	"github.com/pacs27/refet-etl/internal/refet"
	"github.com/pacs27/refet-etl/internal/source"
)

// GapPolicy controls how the driver reacts to a day that cannot be
// evaluated because upstream data is missing.
type GapPolicy int

const (
	// GapFail aborts the run on the first missing day.
	GapFail GapPolicy = iota
	// GapSkip records the failure and continues with the next day.
	GapSkip
)

// ParseGapPolicy maps a config string to a GapPolicy, case-insensitively.
func ParseGapPolicy(s string) (GapPolicy, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "fail":
		return GapFail, nil
	case "skip":
		return GapSkip, nil
	default:
		return 0, fmt.Errorf("%w: gap policy %q (want fail or skip)", refet.ErrInvalidConfiguration, s)
	}
}

func (g GapPolicy) String() string {
	switch g {
	case GapFail:
		return "fail"
	case GapSkip:
		return "skip"
	default:
		return fmt.Sprintf("gap(%d)", int(g))
	}
}

// DayRecord is one evaluated calendar day: the ET outputs and any requested
// weather fields, keyed by output name.
type DayRecord struct {
	Date       time.Time
	Family     string
	Fields     map[string]field.Field
	ComputedAt time.Time
}

// DayFailure is one calendar day the driver could not evaluate.
type DayFailure struct {
	Date time.Time
	Err  error
}

// Result aggregates a completed run: records in strict date order, plus the
// failures tolerated under GapSkip.
type Result struct {
	Records  []DayRecord
	Failures []DayFailure
}

// Fetcher retrieves upstream imagery and static terrain grids.
type Fetcher interface {
	FetchDay(ctx context.Context, family string, day time.Time) (source.Collection, error)
	FetchAncillary(ctx context.Context, family string) (source.Ancillary, error)
}

// RecordSink delivers evaluated day records downstream.
type RecordSink interface {
	Publish(ctx context.Context, rec DayRecord) error
}
