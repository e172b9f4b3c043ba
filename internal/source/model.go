// Package source normalizes gridded meteorological products into the
// canonical inputs of the reference ET engine. Each supported product family
// has an adapter encoding its band names, units and sub-daily compositing
// rules; missing upstream data is always an error, never a silent default.
package source

import (
	"errors"
	"fmt"
	"time"

	"github.com/pacs27/refet-etl/internal/field"
)

var (
	// ErrMissingBand marks a required band absent from upstream imagery.
	ErrMissingBand = errors.New("missing upstream band")

	// ErrNoSamples marks a day with no upstream imagery at all.
	ErrNoSamples = errors.New("no upstream samples")
)

// Image is one upstream observation: a set of named bands sharing a grid
// domain, stamped with its observation time.
type Image struct {
	Timestamp time.Time
	Bands     map[string]field.Field
}

// Band returns the named band or ErrMissingBand.
func (img Image) Band(name string) (field.Field, error) {
	f, ok := img.Bands[name]
	if !ok {
		return field.Field{}, fmt.Errorf("%w: %s", ErrMissingBand, name)
	}
	return f, nil
}

// Collection holds the time-ordered imagery covering one calendar day for
// one product family. Daily composite products carry a single image;
// sub-daily products carry one image per step.
type Collection struct {
	Family string
	Date   time.Time
	Images []Image
}

// First returns the sole or earliest image, or ErrNoSamples when the day is
// empty.
func (c Collection) First() (Image, error) {
	if len(c.Images) == 0 {
		return Image{}, fmt.Errorf("%w: %s %s", ErrNoSamples, c.Family, c.Date.Format("2006-01-02"))
	}
	return c.Images[0], nil
}

// bandFields gathers the named band from every image, failing if the day is
// empty or any image lacks the band.
func (c Collection) bandFields(name string) ([]field.Field, error) {
	if len(c.Images) == 0 {
		return nil, fmt.Errorf("%w: %s %s", ErrNoSamples, c.Family, c.Date.Format("2006-01-02"))
	}
	fs := make([]field.Field, len(c.Images))
	for i, img := range c.Images {
		f, err := img.Band(name)
		if err != nil {
			return nil, fmt.Errorf("image %d (%s): %w", i, img.Timestamp.Format(time.RFC3339), err)
		}
		fs[i] = f
	}
	return fs, nil
}

// Max composites the named band by elementwise maximum across the day.
func (c Collection) Max(name string) (field.Field, error) {
	fs, err := c.bandFields(name)
	if err != nil {
		return field.Field{}, err
	}
	return field.MaxOf(fs...), nil
}

// Min composites the named band by elementwise minimum across the day.
func (c Collection) Min(name string) (field.Field, error) {
	fs, err := c.bandFields(name)
	if err != nil {
		return field.Field{}, err
	}
	return field.MinOf(fs...), nil
}

// Mean composites the named band by elementwise mean across the day.
func (c Collection) Mean(name string) (field.Field, error) {
	fs, err := c.bandFields(name)
	if err != nil {
		return field.Field{}, err
	}
	return field.MeanOf(fs...), nil
}

// Sum composites the named band by elementwise sum across the day.
func (c Collection) Sum(name string) (field.Field, error) {
	fs, err := c.bandFields(name)
	if err != nil {
		return field.Field{}, err
	}
	return field.SumOf(fs...), nil
}

// MeanMagnitude composites a vector band pair into the daily mean of the
// per-step magnitudes.
func (c Collection) MeanMagnitude(uBand, vBand string) (field.Field, error) {
	us, err := c.bandFields(uBand)
	if err != nil {
		return field.Field{}, err
	}
	vs, err := c.bandFields(vBand)
	if err != nil {
		return field.Field{}, err
	}
	mags := make([]field.Field, len(us))
	for i := range us {
		mags[i] = field.Hypot(us[i], vs[i])
	}
	return field.MeanOf(mags...), nil
}

// Ancillary carries the static per-family grids delivered alongside daily
// imagery: terrain elevation in meters and latitude in decimal degrees.
type Ancillary struct {
	Elev field.Field
	Lat  field.Field
}
