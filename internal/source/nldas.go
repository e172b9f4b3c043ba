package source

import (
	"fmt"

	"github.com/pacs27/refet-etl/internal/refet"
)

// nldas adapts the hourly NLDAS land data assimilation product: 24 images
// per day, temperatures already Celsius, radiation an hourly W/m² flux, wind
// as per-hour components.
type nldas struct{}

func (nldas) Name() string { return "nldas" }

func (n nldas) Daily(day Collection, anc Ancillary, opts Options) (*refet.Daily, error) {
	tmax, err := day.Max("temperature")
	if err != nil {
		return nil, fmt.Errorf("nldas: %w", err)
	}
	tmin, err := day.Min("temperature")
	if err != nil {
		return nil, fmt.Errorf("nldas: %w", err)
	}
	q, err := day.Mean("specific_humidity")
	if err != nil {
		return nil, fmt.Errorf("nldas: %w", err)
	}
	rsSum, err := day.Sum("shortwave_radiation")
	if err != nil {
		return nil, fmt.Errorf("nldas: %w", err)
	}
	uz, err := day.MeanMagnitude("wind_u", "wind_v")
	if err != nil {
		return nil, fmt.Errorf("nldas: %w", err)
	}

	ea, err := eaFromSpecificHumidity(q, anc, opts)
	if err != nil {
		return nil, fmt.Errorf("nldas: %w", err)
	}

	return assemble(day, anc, opts,
		tmax,
		tmin,
		ea,
		rsSum.MulS(wattsToMJHour),
		uz,
	)
}
