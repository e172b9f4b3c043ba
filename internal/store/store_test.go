package store

import (
	"context"
	"database/sql"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	_ "modernc.org/sqlite"

	"github.com/pacs27/refet-etl/internal/field"
	"github.com/pacs27/refet-etl/internal/pipeline"
)

func setupTestStore(t *testing.T) *Store {
	t.Helper()
	db, err := sql.Open("sqlite", ":memory:")
	require.NoError(t, err)
	t.Cleanup(func() { db.Close() })

	s := New(db)
	require.NoError(t, s.Migrate())
	return s
}

func dayRecord(day time.Time, eto, etr float64) pipeline.DayRecord {
	return pipeline.DayRecord{
		Date:   day,
		Family: "gridmet",
		Fields: map[string]field.Field{
			"eto": field.FromSlice(1, 2, []float64{eto, eto + 0.5}),
			"etr": field.FromSlice(1, 2, []float64{etr, etr + 0.5}),
		},
		ComputedAt: time.Date(2021, 7, 1, 12, 0, 0, 0, time.UTC),
	}
}

func TestPublishAndGetRange(t *testing.T) {
	s := setupTestStore(t)
	ctx := context.Background()

	start := time.Date(2021, 6, 1, 0, 0, 0, 0, time.UTC)
	for i := 0; i < 3; i++ {
		require.NoError(t, s.Publish(ctx, dayRecord(start.AddDate(0, 0, i), 5.0+float64(i), 7.0+float64(i))))
	}

	records, err := s.GetRange(ctx, "gridmet", start, start.AddDate(0, 0, 3))
	require.NoError(t, err)
	require.Len(t, records, 3)

	for i, rec := range records {
		assert.Equal(t, start.AddDate(0, 0, i), rec.Date)
		assert.Equal(t, "gridmet", rec.Family)

		eto, ok := rec.Fields["eto"]
		require.True(t, ok)
		assert.Equal(t, []float64{5.0 + float64(i), 5.5 + float64(i)}, eto.Values())
		_, ok = rec.Fields["etr"]
		assert.True(t, ok)
	}
}

func TestPublishIsIdempotent(t *testing.T) {
	s := setupTestStore(t)
	ctx := context.Background()
	day := time.Date(2021, 6, 1, 0, 0, 0, 0, time.UTC)

	require.NoError(t, s.Publish(ctx, dayRecord(day, 5.0, 7.0)))
	// Re-run with revised values: the record is replaced, not duplicated.
	require.NoError(t, s.Publish(ctx, dayRecord(day, 6.0, 8.0)))

	records, err := s.GetRange(ctx, "gridmet", day, day.AddDate(0, 0, 1))
	require.NoError(t, err)
	require.Len(t, records, 1)
	assert.Equal(t, []float64{6.0, 6.5}, records[0].Fields["eto"].Values())
}

func TestGetRangeBounds(t *testing.T) {
	s := setupTestStore(t)
	ctx := context.Background()
	start := time.Date(2021, 6, 1, 0, 0, 0, 0, time.UTC)

	for i := 0; i < 5; i++ {
		require.NoError(t, s.Publish(ctx, dayRecord(start.AddDate(0, 0, i), 5.0, 7.0)))
	}

	// Half-open range: end date excluded.
	records, err := s.GetRange(ctx, "gridmet", start.AddDate(0, 0, 1), start.AddDate(0, 0, 3))
	require.NoError(t, err)
	require.Len(t, records, 2)
	assert.Equal(t, start.AddDate(0, 0, 1), records[0].Date)
	assert.Equal(t, start.AddDate(0, 0, 2), records[1].Date)

	// Unknown family yields nothing.
	records, err = s.GetRange(ctx, "maca", start, start.AddDate(0, 0, 5))
	require.NoError(t, err)
	assert.Empty(t, records)
}

func TestScalarFieldRoundTrip(t *testing.T) {
	s := setupTestStore(t)
	ctx := context.Background()
	day := time.Date(2021, 6, 1, 0, 0, 0, 0, time.UTC)

	rec := pipeline.DayRecord{
		Date:       day,
		Family:     "gridmet",
		Fields:     map[string]field.Field{"eto": field.Scalar(5.69)},
		ComputedAt: time.Now().UTC(),
	}
	require.NoError(t, s.Publish(ctx, rec))

	records, err := s.GetRange(ctx, "gridmet", day, day.AddDate(0, 0, 1))
	require.NoError(t, err)
	require.Len(t, records, 1)

	eto := records[0].Fields["eto"]
	assert.True(t, eto.IsScalar())
	assert.InDelta(t, 5.69, eto.At(0, 0), 1e-9)
}
