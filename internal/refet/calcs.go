// Package refet implements the ASCE-EWRI (2005) standardized reference
// evapotranspiration equation and its supporting meteorology on gridded
// fields. Two coefficient sets are supported: the published standard and the
// RefET software variant. Units follow the standard throughout: temperature
// °C, vapor pressure kPa, radiation MJ m⁻² d⁻¹, wind m s⁻¹, pressure kPa.
package refet

import (
	"math"

	"github.com/pacs27/refet-etl/internal/field"
)

// AirPressure computes mean atmospheric pressure (kPa) from elevation (m),
// ASCE-EWRI eq. 3.
func AirPressure(elev field.Field, method Method) field.Field {
	base := 293.0
	if method == MethodRefET {
		base = 293.15
	}
	return elev.MulS(-0.0065).AddS(base).DivS(base).PowS(5.26).MulS(101.3)
}

// PsyConst computes the psychrometric constant (kPa °C⁻¹) from air pressure,
// eq. 4.
func PsyConst(pair field.Field) field.Field {
	return pair.MulS(0.000665)
}

// SatVaporPressure computes saturation vapor pressure (kPa) at temperature t
// (°C), eq. 7.
func SatVaporPressure(t field.Field) field.Field {
	return t.MulS(17.27).Div(t.AddS(237.3)).Exp().MulS(0.6108)
}

// EsSlope computes the slope of the saturation vapor pressure curve
// (kPa °C⁻¹) at tmean, eq. 5.
func EsSlope(tmean field.Field, method Method) field.Field {
	num := 2503.0
	if method == MethodRefET {
		num = 4098.8879 * 0.6108
	}
	d := tmean.AddS(237.3)
	return tmean.MulS(17.27).Div(d).Exp().MulS(num).Div(d.Mul(d))
}

// ActVaporPressure computes actual vapor pressure (kPa) from specific
// humidity (kg kg⁻¹) and air pressure, eq. D.10.
func ActVaporPressure(q, pair field.Field) field.Field {
	return q.Mul(pair).Div(q.MulS(0.378).AddS(0.622))
}

// VPD computes the vapor pressure deficit (kPa), floored at zero.
func VPD(es, ea field.Field) field.Field {
	return es.Sub(ea).MaxS(0)
}

// DoyFraction converts a day of year to its annual angle (radians).
func DoyFraction(doy float64) float64 {
	return doy * 2 * math.Pi / 365
}

// InvRelDistance computes the inverse relative earth-sun distance factor,
// eq. 23.
func InvRelDistance(doyFrac float64) float64 {
	return 1 + 0.033*math.Cos(doyFrac)
}

// Declination computes solar declination (radians), eq. 24.
func Declination(doyFrac float64, method Method) float64 {
	if method == MethodRefET {
		return 0.40928 * math.Sin(doyFrac-1.39435)
	}
	return 0.409 * math.Sin(doyFrac-1.39)
}

// OmegaSunset computes the sunset hour angle (radians) from latitude
// (radians), eq. 27.
func OmegaSunset(lat field.Field, delta float64) field.Field {
	return lat.Tan().MulS(-math.Tan(delta)).Acos()
}

// RaDaily computes daily extraterrestrial radiation (MJ m⁻² d⁻¹) from
// latitude (radians) and day of year, eq. 21.
func RaDaily(lat field.Field, doy float64, method Method) field.Field {
	gsc := 4.92
	if method == MethodRefET {
		gsc = 1367 * 0.0036
	}
	frac := DoyFraction(doy)
	dr := InvRelDistance(frac)
	delta := Declination(frac, method)
	omegas := OmegaSunset(lat, delta)
	theta := omegas.MulS(math.Sin(delta)).Mul(lat.Sin()).
		Add(lat.Cos().MulS(math.Cos(delta)).Mul(omegas.Sin()))
	return theta.MulS((24 / math.Pi) * gsc * dr)
}

// RsoSimple computes clear-sky radiation (MJ m⁻² d⁻¹) from the elevation
// model, eq. 19.
func RsoSimple(ra, elev field.Field) field.Field {
	return ra.Mul(elev.MulS(2e-5).AddS(0.75))
}

// RsoDaily computes clear-sky radiation (MJ m⁻² d⁻¹) using the full
// Appendix D model with turbidity and precipitable water terms.
func RsoDaily(ea, ra, pair field.Field, doy float64, lat field.Field) field.Field {
	frac := DoyFraction(doy)

	// 24-hour weighted sun angle, floored to keep kb bounded near the poles.
	sinB24 := lat.MulS(0.3 * math.Sin(frac-1.39)).AddS(0.85).
		Sub(lat.Mul(lat).MulS(0.42)).Sin().MaxS(0.1)

	w := ea.Mul(pair).MulS(0.14).AddS(2.1)
	kb := pair.MulS(-0.00146).Div(sinB24).
		Sub(w.Div(sinB24).PowS(0.4).MulS(0.075)).
		Exp().MulS(0.98)
	kd := kb.MulS(-0.36).AddS(0.35).Min(kb.MulS(0.82).AddS(0.18))
	return ra.Mul(kb.Add(kd))
}

// FcdDaily computes the cloudiness function from measured and clear-sky
// solar radiation, eq. 18.
func FcdDaily(rs, rso field.Field) field.Field {
	return rs.Div(rso).Clamp(0.3, 1.0).MulS(1.35).SubS(0.35)
}

// RnlDaily computes daily net long-wave radiation (MJ m⁻² d⁻¹), eq. 17.
func RnlDaily(tmax, tmin, ea, fcd field.Field) field.Field {
	tk4 := tmax.AddS(273.16).PowS(4).Add(tmin.AddS(273.16).PowS(4)).DivS(2)
	return fcd.Mul(ea.Sqrt().MulS(-0.14).AddS(0.34)).Mul(tk4).MulS(4.901e-9)
}

// Rn computes daily net radiation (MJ m⁻² d⁻¹) from short-wave input and
// long-wave loss, eqs. 15-16 with albedo 0.23.
func Rn(rs, rnl field.Field) field.Field {
	return rs.MulS(0.77).Sub(rnl)
}

// WindHeightAdjust translates wind speed measured at zw meters to the 2 m
// standard, eq. 33. Wind already at 2 m passes through unchanged so repeated
// normalization is bitwise stable.
func WindHeightAdjust(uz field.Field, zw float64) field.Field {
	if zw == 2 {
		return uz
	}
	return uz.MulS(4.87 / math.Log(67.8*zw-5.42))
}
