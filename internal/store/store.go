// Package store persists evaluated day records to SQLite so downstream
// export jobs can read ET series without replaying the archive.
package store

import (
	"context"
	"database/sql"
	"encoding/json"
	"fmt"
	"time"

	"github.com/pacs27/refet-etl/internal/field"
	"github.com/pacs27/refet-etl/internal/pipeline"
)

// Store is a SQLite-backed sink for day records.
// It implements pipeline.RecordSink.
type Store struct {
	db *sql.DB
}

// New wraps an open database handle. Callers own the handle lifecycle.
func New(db *sql.DB) *Store {
	return &Store{db: db}
}

// Migrate creates the schema if it does not exist.
func (s *Store) Migrate() error {
	_, err := s.db.Exec(`
CREATE TABLE IF NOT EXISTS day_fields (
    date TEXT NOT NULL,
    family TEXT NOT NULL,
    field TEXT NOT NULL,
    mean REAL NOT NULL,
    min REAL NOT NULL,
    max REAL NOT NULL,
    rows INTEGER NOT NULL,
    cols INTEGER NOT NULL,
    samples TEXT NOT NULL,
    computed_at DATETIME NOT NULL,
    PRIMARY KEY (date, family, field)
);

CREATE INDEX IF NOT EXISTS idx_day_fields_family_date ON day_fields (family, date);
`)
	if err != nil {
		return fmt.Errorf("migrate: %w", err)
	}
	return nil
}

// Publish upserts every field of the record. Re-running a date range
// overwrites rather than duplicates.
func (s *Store) Publish(ctx context.Context, rec pipeline.DayRecord) error {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("begin: %w", err)
	}
	defer tx.Rollback()

	for name, f := range rec.Fields {
		samples, err := json.Marshal(f.Values())
		if err != nil {
			return fmt.Errorf("encode samples %s: %w", name, err)
		}
		sum := f.Summarize()
		_, err = tx.ExecContext(ctx, `
		INSERT INTO day_fields (date, family, field, mean, min, max, rows, cols, samples, computed_at)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
		ON CONFLICT(date, family, field) DO UPDATE SET
			mean = excluded.mean,
			min = excluded.min,
			max = excluded.max,
			rows = excluded.rows,
			cols = excluded.cols,
			samples = excluded.samples,
			computed_at = excluded.computed_at
		`, rec.Date.Format("2006-01-02"), rec.Family, name,
			sum.Mean, sum.Min, sum.Max, f.Rows(), f.Cols(), string(samples), rec.ComputedAt.UTC())
		if err != nil {
			return fmt.Errorf("upsert %s/%s: %w", rec.Date.Format("2006-01-02"), name, err)
		}
	}
	return tx.Commit()
}

// GetRange reads the records for a family over [start, end), ordered by
// date.
func (s *Store) GetRange(ctx context.Context, family string, start, end time.Time) ([]pipeline.DayRecord, error) {
	rows, err := s.db.QueryContext(ctx, `
		SELECT date, field, rows, cols, samples, computed_at
		FROM day_fields
		WHERE family = ? AND date >= ? AND date < ?
		ORDER BY date ASC, field ASC
	`, family, start.UTC().Format("2006-01-02"), end.UTC().Format("2006-01-02"))
	if err != nil {
		return nil, fmt.Errorf("query range: %w", err)
	}
	defer rows.Close()

	var records []pipeline.DayRecord
	var current *pipeline.DayRecord
	for rows.Next() {
		var (
			dateStr, name, samples string
			nrows, ncols           int
			computedAt             time.Time
		)
		if err := rows.Scan(&dateStr, &name, &nrows, &ncols, &samples, &computedAt); err != nil {
			return nil, fmt.Errorf("scan row: %w", err)
		}
		date, err := time.ParseInLocation("2006-01-02", dateStr, time.UTC)
		if err != nil {
			return nil, fmt.Errorf("parse date %q: %w", dateStr, err)
		}

		f, err := decodeField(nrows, ncols, samples)
		if err != nil {
			return nil, fmt.Errorf("decode %s/%s: %w", dateStr, name, err)
		}

		if current == nil || !current.Date.Equal(date) {
			records = append(records, pipeline.DayRecord{
				Date:       date,
				Family:     family,
				Fields:     map[string]field.Field{},
				ComputedAt: computedAt,
			})
			current = &records[len(records)-1]
		}
		current.Fields[name] = f
	}
	return records, rows.Err()
}

func decodeField(rows, cols int, samples string) (field.Field, error) {
	var data []float64
	if err := json.Unmarshal([]byte(samples), &data); err != nil {
		return field.Field{}, err
	}
	if rows == 0 && cols == 0 {
		if len(data) != 1 {
			return field.Field{}, fmt.Errorf("scalar field with %d samples", len(data))
		}
		return field.Scalar(data[0]), nil
	}
	if len(data) != rows*cols {
		return field.Field{}, fmt.Errorf("%d samples for %dx%d grid", len(data), rows, cols)
	}
	return field.FromSlice(rows, cols, data), nil
}
