package refet

import (
	"fmt"
	"math"
	"sync"
	"time"

	"github.com/pacs27/refet-etl/internal/field"
)

// Combination equation coefficients for the two standardized surfaces.
const (
	cnGrass   = 900.0
	cdGrass   = 0.34
	cnAlfalfa = 1600.0
	cdAlfalfa = 0.38

	// Priestley-Taylor alpha and latent heat scaling for open water.
	ptAlpha  = 1.26
	ptLambda = 2453.0
)

// Input carries one day of canonical meteorology for engine construction.
// TMax and TMin are °C, Ea kPa, Rs MJ m⁻² d⁻¹, Uz m s⁻¹ measured at Zw
// meters, Elev meters, Lat decimal degrees. Rso supplies the measured
// clear-sky field and is required if and only if RsoType is RsoTypeArray.
type Input struct {
	TMax, TMin field.Field
	Ea         field.Field
	Rs         field.Field
	Uz         field.Field
	Zw         float64
	Elev       field.Field
	Lat        field.Field
	Doy        int
	Date       time.Time
	Method     Method
	RsoType    RsoType
	Rso        *field.Field
}

// Daily evaluates standardized reference ET for a single day. All derived
// meteorology is computed at construction; ET outputs are computed on first
// request and cached. A Daily is immutable after construction and safe for
// concurrent readers.
type Daily struct {
	method Method
	doy    int
	date   time.Time

	tmax, tmin, ea, rs field.Field
	tmean, esSlope     field.Field
	pair, psy          field.Field
	es, vpd            field.Field
	ra, rso, fcd       field.Field
	rnl, rn            field.Field
	u2                 field.Field

	mu   sync.Mutex
	memo map[string]field.Field
}

// NewDaily validates in and computes the derived meteorology cascade. All
// configuration errors surface here, before any output is requested.
func NewDaily(in Input) (*Daily, error) {
	if !in.Method.valid() {
		return nil, fmt.Errorf("%w: method %d", ErrInvalidConfiguration, int(in.Method))
	}
	if !in.RsoType.valid() {
		return nil, fmt.Errorf("%w: rso type %d", ErrInvalidConfiguration, int(in.RsoType))
	}
	if in.RsoType == RsoTypeArray && in.Rso == nil {
		return nil, fmt.Errorf("%w: rso type array requires an rso field", ErrInvalidConfiguration)
	}
	if in.Doy < 1 || in.Doy > 366 {
		return nil, fmt.Errorf("%w: day of year %d", ErrInvalidConfiguration, in.Doy)
	}
	if in.Zw <= 0 {
		return nil, fmt.Errorf("%w: wind measurement height %.2f m", ErrInvalidConfiguration, in.Zw)
	}
	for _, r := range []struct {
		name string
		f    field.Field
	}{
		{"tmax", in.TMax}, {"tmin", in.TMin}, {"ea", in.Ea},
		{"rs", in.Rs}, {"uz", in.Uz}, {"elev", in.Elev}, {"lat", in.Lat},
	} {
		if r.f.IsZero() {
			return nil, fmt.Errorf("%w: missing input %s", ErrInvalidConfiguration, r.name)
		}
	}
	grids := []field.Field{in.TMax, in.TMin, in.Ea, in.Rs, in.Uz, in.Elev, in.Lat}
	if in.Rso != nil {
		grids = append(grids, *in.Rso)
	}
	for _, g := range grids[1:] {
		if !grids[0].SameDomain(g) {
			return nil, fmt.Errorf("%w: input fields span different grid domains", ErrInvalidConfiguration)
		}
	}

	d := &Daily{
		method: in.Method,
		doy:    in.Doy,
		date:   in.Date,
		tmax:   in.TMax,
		tmin:   in.TMin,
		ea:     in.Ea,
		rs:     in.Rs,
		memo:   make(map[string]field.Field),
	}

	lat := in.Lat.MulS(math.Pi / 180)
	doy := float64(in.Doy)

	d.pair = AirPressure(in.Elev, in.Method)
	d.psy = PsyConst(d.pair)
	d.tmean = in.TMax.Add(in.TMin).DivS(2)
	d.esSlope = EsSlope(d.tmean, in.Method)
	d.es = SatVaporPressure(in.TMax).Add(SatVaporPressure(in.TMin)).DivS(2)
	d.vpd = VPD(d.es, in.Ea)
	d.ra = RaDaily(lat, doy, in.Method)

	rsoType := in.RsoType
	if rsoType == RsoTypeDefault {
		if in.Method == MethodRefET {
			rsoType = RsoTypeFull
		} else {
			rsoType = RsoTypeSimple
		}
	}
	switch rsoType {
	case RsoTypeSimple:
		d.rso = RsoSimple(d.ra, in.Elev)
	case RsoTypeFull:
		d.rso = RsoDaily(in.Ea, d.ra, d.pair, doy, lat)
	case RsoTypeArray:
		d.rso = *in.Rso
	}

	d.fcd = FcdDaily(in.Rs, d.rso)
	d.rnl = RnlDaily(in.TMax, in.TMin, in.Ea, d.fcd)
	d.rn = Rn(in.Rs, d.rnl)
	d.u2 = WindHeightAdjust(in.Uz, in.Zw)

	return d, nil
}

// cached computes the named output once and returns the cached field on
// later calls.
func (d *Daily) cached(name string, compute func() field.Field) field.Field {
	d.mu.Lock()
	defer d.mu.Unlock()
	if f, ok := d.memo[name]; ok {
		return f
	}
	f := compute()
	d.memo[name] = f
	return f
}

// combination evaluates the standardized equation for the given numerator
// and denominator wind coefficients.
func (d *Daily) combination(cn, cd float64) field.Field {
	num := d.esSlope.Mul(d.rn).MulS(0.408).
		Add(d.psy.MulS(cn).Mul(d.u2).Mul(d.vpd).Div(d.tmean.AddS(273)))
	den := d.esSlope.Add(d.psy.Mul(d.u2.MulS(cd).AddS(1)))
	return num.Div(den)
}

// ETo returns grass reference ET (mm d⁻¹).
func (d *Daily) ETo() field.Field {
	return d.cached("eto", func() field.Field {
		return d.combination(cnGrass, cdGrass)
	})
}

// ETr returns alfalfa reference ET (mm d⁻¹).
func (d *Daily) ETr() field.Field {
	return d.cached("etr", func() field.Field {
		return d.combination(cnAlfalfa, cdAlfalfa)
	})
}

// ETsz dispatches on a reference surface name: alfalfa, etr and tall select
// ETr; grass, eto and short select ETo. Names are case-insensitive.
func (d *Daily) ETsz(surface string) (field.Field, error) {
	switch normalizeSurface(surface) {
	case "alfalfa", "etr", "tall":
		return d.ETr(), nil
	case "grass", "eto", "short":
		return d.ETo(), nil
	default:
		return field.Field{}, fmt.Errorf("%w: %q", ErrUnsupportedSurface, surface)
	}
}

// ETw returns open-water evaporation (mm d⁻¹) by the Priestley-Taylor
// formulation.
func (d *Daily) ETw() field.Field {
	return d.cached("etw", func() field.Field {
		return d.esSlope.Div(d.esSlope.Add(d.psy)).Mul(d.rn).MulS(ptAlpha * 1000 / ptLambda)
	})
}

// EToFS1 returns the radiation component of ETo (mm d⁻¹).
func (d *Daily) EToFS1() field.Field {
	return d.cached("eto_fs1", func() field.Field {
		den := d.esSlope.Add(d.psy.Mul(d.u2.MulS(cdGrass).AddS(1)))
		return d.esSlope.Mul(d.rn).MulS(0.408).Div(den)
	})
}

// EToFS2 returns the aerodynamic (wind) component of ETo (mm d⁻¹). The
// components sum to ETo.
func (d *Daily) EToFS2() field.Field {
	return d.cached("eto_fs2", func() field.Field {
		den := d.esSlope.Add(d.psy.Mul(d.u2.MulS(cdGrass).AddS(1)))
		return d.psy.MulS(cnGrass).Mul(d.u2).Mul(d.vpd).Div(d.tmean.AddS(273)).Div(den)
	})
}

// PETHargreaves returns potential ET (mm d⁻¹) by the temperature-only
// Hargreaves-Samani estimate.
func (d *Daily) PETHargreaves() field.Field {
	return d.cached("pet_hargreaves", func() field.Field {
		return d.tmean.AddS(17.8).MulS(0.0023).
			Mul(d.tmax.Sub(d.tmin).Sqrt()).
			Mul(d.ra).MulS(0.408)
	})
}

// Derived meteorology accessors for record assembly and diagnostics.

// Date returns the day this engine evaluates.
func (d *Daily) Date() time.Time { return d.date }

// Doy returns the day of year.
func (d *Daily) Doy() int { return d.doy }

// Method returns the coefficient set in effect.
func (d *Daily) Method() Method { return d.method }

// Tmean returns mean air temperature (°C).
func (d *Daily) Tmean() field.Field { return d.tmean }

// VPD returns the vapor pressure deficit (kPa).
func (d *Daily) VPD() field.Field { return d.vpd }

// Rn returns daily net radiation (MJ m⁻² d⁻¹).
func (d *Daily) Rn() field.Field { return d.rn }

// Ra returns extraterrestrial radiation (MJ m⁻² d⁻¹).
func (d *Daily) Ra() field.Field { return d.ra }

// Rso returns the clear-sky radiation in effect (MJ m⁻² d⁻¹).
func (d *Daily) Rso() field.Field { return d.rso }

// U2 returns wind speed normalized to 2 m (m s⁻¹).
func (d *Daily) U2() field.Field { return d.u2 }

// Pair returns mean atmospheric pressure (kPa).
func (d *Daily) Pair() field.Field { return d.pair }

// Ea returns actual vapor pressure (kPa).
func (d *Daily) Ea() field.Field { return d.ea }

// Es returns mean saturation vapor pressure (kPa).
func (d *Daily) Es() field.Field { return d.es }

// Rs returns measured solar radiation (MJ m⁻² d⁻¹).
func (d *Daily) Rs() field.Field { return d.rs }

// TMax returns daily maximum air temperature (°C).
func (d *Daily) TMax() field.Field { return d.tmax }

// TMin returns daily minimum air temperature (°C).
func (d *Daily) TMin() field.Field { return d.tmin }
