package archive

import (
	"fmt"
	"time"

	"github.com/pacs27/refet-etl/internal/field"
	"github.com/pacs27/refet-etl/internal/source"
)

// Wire types for the gridded-weather archive API. Grids travel as row-major
// float64 slices plus an explicit shape; the fixture generator and validator
// share these types with the client.

// Shape is the grid dimensions of every band in a payload.
type Shape struct {
	Rows int `json:"rows"`
	Cols int `json:"cols"`
}

// ImagePayload is one observation: a timestamp and its bands.
type ImagePayload struct {
	Timestamp time.Time            `json:"timestamp"`
	Bands     map[string][]float64 `json:"bands"`
}

// DayPayload is the archive response for one family-day.
type DayPayload struct {
	Family string         `json:"family"`
	Date   string         `json:"date"`
	Shape  Shape          `json:"shape"`
	Images []ImagePayload `json:"images"`
}

// AncillaryPayload carries the static terrain grids for a family.
type AncillaryPayload struct {
	Shape     Shape     `json:"shape"`
	Elevation []float64 `json:"elevation"`
	Latitude  []float64 `json:"latitude"`
}

// DateFormat is the calendar-day layout used in URLs and payloads.
const DateFormat = "2006-01-02"

// Collection decodes the payload into the upstream data model.
func (p DayPayload) Collection() (source.Collection, error) {
	date, err := time.ParseInLocation(DateFormat, p.Date, time.UTC)
	if err != nil {
		return source.Collection{}, fmt.Errorf("parse date %q: %w", p.Date, err)
	}
	c := source.Collection{Family: p.Family, Date: date}
	for i, img := range p.Images {
		bands := make(map[string]field.Field, len(img.Bands))
		for name, data := range img.Bands {
			if len(data) != p.Shape.Rows*p.Shape.Cols {
				return source.Collection{}, fmt.Errorf("image %d band %s: %d samples for %dx%d grid",
					i, name, len(data), p.Shape.Rows, p.Shape.Cols)
			}
			bands[name] = field.FromSlice(p.Shape.Rows, p.Shape.Cols, data)
		}
		c.Images = append(c.Images, source.Image{Timestamp: img.Timestamp, Bands: bands})
	}
	return c, nil
}

// Ancillary decodes the payload into terrain fields.
func (p AncillaryPayload) Ancillary() (source.Ancillary, error) {
	n := p.Shape.Rows * p.Shape.Cols
	if len(p.Elevation) != n || len(p.Latitude) != n {
		return source.Ancillary{}, fmt.Errorf("ancillary grids do not match %dx%d shape",
			p.Shape.Rows, p.Shape.Cols)
	}
	return source.Ancillary{
		Elev: field.FromSlice(p.Shape.Rows, p.Shape.Cols, p.Elevation),
		Lat:  field.FromSlice(p.Shape.Rows, p.Shape.Cols, p.Latitude),
	}, nil
}
