package source

import (
	"fmt"

	"github.com/pacs27/refet-etl/internal/field"
	"github.com/pacs27/refet-etl/internal/refet"
)

// maca adapts the daily MACA downscaled climate product. Like GRIDMET it is
// a single composite per day, but wind arrives as eastward/northward
// components that must be combined into a speed.
type maca struct{}

func (maca) Name() string { return "maca" }

func (m maca) Daily(day Collection, anc Ancillary, opts Options) (*refet.Daily, error) {
	img, err := day.First()
	if err != nil {
		return nil, err
	}
	bs, err := imageBands(m.Name(), img, "tasmax", "tasmin", "huss", "rsds", "uas", "vas")
	if err != nil {
		return nil, err
	}

	ea, err := eaFromSpecificHumidity(bs["huss"], anc, opts)
	if err != nil {
		return nil, fmt.Errorf("maca: %w", err)
	}

	return assemble(day, anc, opts,
		bs["tasmax"].SubS(kelvinOffset),
		bs["tasmin"].SubS(kelvinOffset),
		ea,
		bs["rsds"].MulS(wattsToMJDay),
		field.Hypot(bs["uas"], bs["vas"]),
	)
}
