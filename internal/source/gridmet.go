package source

import (
	"fmt"

	"github.com/pacs27/refet-etl/internal/refet"
)

// gridmet adapts the daily GRIDMET surface meteorology product: one
// composite image per day, temperatures in Kelvin, solar radiation as mean
// W/m², wind already a scalar speed at 10 m.
type gridmet struct{}

func (gridmet) Name() string { return "gridmet" }

func (g gridmet) Daily(day Collection, anc Ancillary, opts Options) (*refet.Daily, error) {
	img, err := day.First()
	if err != nil {
		return nil, err
	}
	bs, err := imageBands(g.Name(), img, "tmmx", "tmmn", "sph", "srad", "vs")
	if err != nil {
		return nil, err
	}

	ea, err := eaFromSpecificHumidity(bs["sph"], anc, opts)
	if err != nil {
		return nil, fmt.Errorf("gridmet: %w", err)
	}

	return assemble(day, anc, opts,
		bs["tmmx"].SubS(kelvinOffset),
		bs["tmmn"].SubS(kelvinOffset),
		ea,
		bs["srad"].MulS(wattsToMJDay),
		bs["vs"],
	)
}
