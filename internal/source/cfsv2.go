package source

import (
	"fmt"

	"github.com/pacs27/refet-etl/internal/refet"
)

// CFSv2 band identifiers, as published.
const (
	cfsv2TMaxBand = "Maximum_temperature_height_above_ground_6_Hour_Interval"
	cfsv2TMinBand = "Minimum_temperature_height_above_ground_6_Hour_Interval"
	cfsv2QBand    = "Specific_humidity_height_above_ground"
	cfsv2RsBand   = "Downward_Short-Wave_Radiation_Flux_surface_6_Hour_Average"
	cfsv2UBand    = "u-component_of_wind_height_above_ground"
	cfsv2VBand    = "v-component_of_wind_height_above_ground"
)

// cfsv2 adapts the 6-hourly CFSv2 forecast product: four images per day,
// interval max/min temperatures in Kelvin, radiation as an interval-average
// W/m² flux.
type cfsv2 struct{}

func (cfsv2) Name() string { return "cfsv2" }

func (c cfsv2) Daily(day Collection, anc Ancillary, opts Options) (*refet.Daily, error) {
	tmaxK, err := day.Max(cfsv2TMaxBand)
	if err != nil {
		return nil, fmt.Errorf("cfsv2: %w", err)
	}
	tminK, err := day.Min(cfsv2TMinBand)
	if err != nil {
		return nil, fmt.Errorf("cfsv2: %w", err)
	}
	q, err := day.Mean(cfsv2QBand)
	if err != nil {
		return nil, fmt.Errorf("cfsv2: %w", err)
	}
	rsMean, err := day.Mean(cfsv2RsBand)
	if err != nil {
		return nil, fmt.Errorf("cfsv2: %w", err)
	}
	uz, err := day.MeanMagnitude(cfsv2UBand, cfsv2VBand)
	if err != nil {
		return nil, fmt.Errorf("cfsv2: %w", err)
	}

	ea, err := eaFromSpecificHumidity(q, anc, opts)
	if err != nil {
		return nil, fmt.Errorf("cfsv2: %w", err)
	}

	return assemble(day, anc, opts,
		tmaxK.SubS(kelvinOffset),
		tminK.SubS(kelvinOffset),
		ea,
		rsMean.MulS(wattsToMJDay),
		uz,
	)
}
