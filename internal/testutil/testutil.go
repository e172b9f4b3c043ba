// Package testutil provides shared fixtures for package tests: a discard
// logger, terrain grids, and synthetic upstream days with plausible summer
// meteorology.
package testutil

import (
	"log/slog"
	"time"

	"github.com/pacs27/refet-etl/internal/field"
	"github.com/pacs27/refet-etl/internal/source"
)

// Logger returns a logger that drops everything.
func Logger() *slog.Logger {
	return slog.New(slog.DiscardHandler)
}

// Terrain returns a 2x2 ancillary grid around a mid-latitude station.
func Terrain() source.Ancillary {
	return source.Ancillary{
		Elev: field.FromSlice(2, 2, []float64{100, 120, 140, 160}),
		Lat:  field.FromSlice(2, 2, []float64{36.4, 36.4, 36.6, 36.6}),
	}
}

// GridmetDay returns a one-image gridmet collection for the given day with
// uniform clear-summer-day values.
func GridmetDay(family string, day time.Time) source.Collection {
	grid := func(v float64) field.Field { return field.Full(2, 2, v) }
	return source.Collection{
		Family: family,
		Date:   day,
		Images: []source.Image{{
			Timestamp: day,
			Bands: map[string]field.Field{
				"tmmx": grid(303.15),
				"tmmn": grid(288.15),
				"sph":  grid(0.008),
				"srad": grid(254.6),
				"vs":   grid(3.0),
			},
		}},
	}
}
