package source

import (
	"fmt"

	"github.com/pacs27/refet-etl/internal/refet"
)

// era5 adapts the hourly ERA5 and ERA5-Land reanalysis products. Both carry
// Kelvin temperatures and dewpoint, accumulate solar radiation in J/m², and
// report wind as 10 m components; they differ only in the radiation band
// name.
type era5 struct {
	land bool
}

func (e era5) Name() string {
	if e.land {
		return "era5land"
	}
	return "era5"
}

func (e era5) rsBand() string {
	if e.land {
		return "surface_solar_radiation_downwards_hourly"
	}
	return "surface_solar_radiation_downwards"
}

func (e era5) Daily(day Collection, anc Ancillary, opts Options) (*refet.Daily, error) {
	name := e.Name()

	tmaxK, err := day.Max("temperature_2m")
	if err != nil {
		return nil, fmt.Errorf("%s: %w", name, err)
	}
	tminK, err := day.Min("temperature_2m")
	if err != nil {
		return nil, fmt.Errorf("%s: %w", name, err)
	}
	tdewK, err := day.Mean("dewpoint_temperature_2m")
	if err != nil {
		return nil, fmt.Errorf("%s: %w", name, err)
	}
	rsSum, err := day.Sum(e.rsBand())
	if err != nil {
		return nil, fmt.Errorf("%s: %w", name, err)
	}
	uz, err := day.MeanMagnitude("u_component_of_wind_10m", "v_component_of_wind_10m")
	if err != nil {
		return nil, fmt.Errorf("%s: %w", name, err)
	}

	// Vapor pressure from dewpoint: saturation pressure at Tdew.
	ea := refet.SatVaporPressure(tdewK.SubS(kelvinOffset))

	return assemble(day, anc, opts,
		tmaxK.SubS(kelvinOffset),
		tminK.SubS(kelvinOffset),
		ea,
		rsSum.MulS(joulesToMJ),
		uz,
	)
}
