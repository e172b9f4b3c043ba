package source

import (
	"fmt"

	"github.com/pacs27/refet-etl/internal/refet"
)

// rtma adapts the hourly RTMA analysis product. RTMA carries no solar
// radiation band, so the caller must supply a measured rs field via Options;
// leaving it unset is a configuration error rather than a silent default.
type rtma struct{}

func (rtma) Name() string { return "rtma" }

func (r rtma) Daily(day Collection, anc Ancillary, opts Options) (*refet.Daily, error) {
	if opts.Rs == nil {
		return nil, fmt.Errorf("%w: rtma requires a solar radiation field", refet.ErrInvalidConfiguration)
	}

	tmax, err := day.Max("TMP")
	if err != nil {
		return nil, fmt.Errorf("rtma: %w", err)
	}
	tmin, err := day.Min("TMP")
	if err != nil {
		return nil, fmt.Errorf("rtma: %w", err)
	}
	q, err := day.Mean("SPFH")
	if err != nil {
		return nil, fmt.Errorf("rtma: %w", err)
	}
	uz, err := day.Mean("WIND")
	if err != nil {
		return nil, fmt.Errorf("rtma: %w", err)
	}

	ea, err := eaFromSpecificHumidity(q, anc, opts)
	if err != nil {
		return nil, fmt.Errorf("rtma: %w", err)
	}

	return assemble(day, anc, opts, tmax, tmin, ea, *opts.Rs, uz)
}
