package source

import (
	"fmt"
	"sort"

	"github.com/pacs27/refet-etl/internal/field"
	"github.com/pacs27/refet-etl/internal/refet"
)

// Wind products in this catalog observe at 10 m unless overridden.
const defaultWindHeight = 10.0

// Options adjusts how an adapter assembles engine input. Zero values defer
// to family defaults and ancillary grids; explicit fields win.
type Options struct {
	// Zw overrides the family's wind measurement height (m).
	Zw float64

	// Elev and Lat override the ancillary grids.
	Elev *field.Field
	Lat  *field.Field

	Method  refet.Method
	RsoType refet.RsoType

	// Rso supplies the literal clear-sky field for RsoTypeArray.
	Rso *field.Field

	// Rs supplies measured solar radiation for families that do not carry
	// it (RTMA).
	Rs *field.Field
}

// Source normalizes one product family's imagery into a ready ET engine.
type Source interface {
	// Name returns the family identifier used in config and records.
	Name() string

	// Daily converts one day of imagery plus ancillary grids into a
	// constructed engine.
	Daily(day Collection, anc Ancillary, opts Options) (*refet.Daily, error)
}

var families = map[string]func() Source{
	"gridmet":  func() Source { return gridmet{} },
	"maca":     func() Source { return maca{} },
	"nldas":    func() Source { return nldas{} },
	"cfsv2":    func() Source { return cfsv2{} },
	"rtma":     func() Source { return rtma{} },
	"era5":     func() Source { return era5{land: false} },
	"era5land": func() Source { return era5{land: true} },
}

// New returns the adapter for a family name.
func New(family string) (Source, error) {
	ctor, ok := families[family]
	if !ok {
		return nil, fmt.Errorf("%w: unknown source family %q (known: %v)",
			refet.ErrInvalidConfiguration, family, Families())
	}
	return ctor(), nil
}

// Families lists the known family names, sorted.
func Families() []string {
	names := make([]string, 0, len(families))
	for name := range families {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// resolveTerrain picks elevation and latitude from overrides or ancillary
// grids, failing when neither is present.
func resolveTerrain(anc Ancillary, opts Options) (elev, lat field.Field, err error) {
	elev = anc.Elev
	if opts.Elev != nil {
		elev = *opts.Elev
	}
	lat = anc.Lat
	if opts.Lat != nil {
		lat = *opts.Lat
	}
	if elev.IsZero() {
		return field.Field{}, field.Field{}, fmt.Errorf("%w: elevation", ErrMissingBand)
	}
	if lat.IsZero() {
		return field.Field{}, field.Field{}, fmt.Errorf("%w: latitude", ErrMissingBand)
	}
	return elev, lat, nil
}

// assemble builds the engine from already-normalized canonical inputs.
func assemble(day Collection, anc Ancillary, opts Options, tmax, tmin, ea, rs, uz field.Field) (*refet.Daily, error) {
	elev, lat, err := resolveTerrain(anc, opts)
	if err != nil {
		return nil, err
	}
	zw := opts.Zw
	if zw == 0 {
		zw = defaultWindHeight
	}
	return refet.NewDaily(refet.Input{
		TMax:    tmax,
		TMin:    tmin,
		Ea:      ea,
		Rs:      rs,
		Uz:      uz,
		Zw:      zw,
		Elev:    elev,
		Lat:     lat,
		Doy:     day.Date.YearDay(),
		Date:    day.Date,
		Method:  opts.Method,
		RsoType: opts.RsoType,
		Rso:     opts.Rso,
	})
}

// eaFromSpecificHumidity converts a specific humidity band (kg/kg) to actual
// vapor pressure using elevation-derived air pressure.
func eaFromSpecificHumidity(q field.Field, anc Ancillary, opts Options) (field.Field, error) {
	elev, _, err := resolveTerrain(anc, opts)
	if err != nil {
		return field.Field{}, err
	}
	pair := refet.AirPressure(elev, opts.Method)
	return refet.ActVaporPressure(q, pair), nil
}

// imageBands pulls the named bands from one image, prefixing errors with the
// family name.
func imageBands(family string, img Image, names ...string) (map[string]field.Field, error) {
	bs := make(map[string]field.Field, len(names))
	for _, name := range names {
		f, err := img.Band(name)
		if err != nil {
			return nil, fmt.Errorf("%s: %w", family, err)
		}
		bs[name] = f
	}
	return bs, nil
}

const kelvinOffset = 273.15

// Flux-to-energy conversions: W/m² over a day, J/m² per hour, and J to MJ.
const (
	wattsToMJDay  = 0.0864
	wattsToMJHour = 0.0036
	joulesToMJ    = 1e-6
)
