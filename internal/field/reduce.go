package field

import (
	"fmt"

	"gonum.org/v1/gonum/floats"
	"gonum.org/v1/gonum/stat"
)

// Reductions across a set of same-domain fields, used to composite sub-daily
// samples into daily values, and whole-field summary statistics for sinks.

func mustNonEmpty(fs []Field) {
	if len(fs) == 0 {
		panic("field: reduction over zero fields")
	}
	for _, f := range fs[1:] {
		if !fs[0].SameDomain(f) {
			panic(fmt.Sprintf("field: reduction domain mismatch %dx%d vs %dx%d",
				fs[0].rows, fs[0].cols, f.rows, f.cols))
		}
	}
}

// MaxOf returns the elementwise maximum across fs.
func MaxOf(fs ...Field) Field {
	mustNonEmpty(fs)
	out := fs[0]
	for _, f := range fs[1:] {
		out = out.Max(f)
	}
	return out
}

// MinOf returns the elementwise minimum across fs.
func MinOf(fs ...Field) Field {
	mustNonEmpty(fs)
	out := fs[0]
	for _, f := range fs[1:] {
		out = out.Min(f)
	}
	return out
}

// SumOf returns the elementwise sum across fs.
func SumOf(fs ...Field) Field {
	mustNonEmpty(fs)
	out := fs[0]
	for _, f := range fs[1:] {
		out = out.Add(f)
	}
	return out
}

// MeanOf returns the elementwise mean across fs.
func MeanOf(fs ...Field) Field {
	return SumOf(fs...).DivS(float64(len(fs)))
}

// Hypot returns sqrt(u² + v²) elementwise, the magnitude of a vector field
// given its components.
func Hypot(u, v Field) Field {
	return u.Mul(u).Add(v.Mul(v)).Sqrt()
}

// Summary holds whole-field statistics of a single Field.
type Summary struct {
	Mean float64 `json:"mean"`
	Min  float64 `json:"min"`
	Max  float64 `json:"max"`
}

// Summarize computes mean, min and max over all samples of f.
func (f Field) Summarize() Summary {
	return Summary{
		Mean: stat.Mean(f.data, nil),
		Min:  floats.Min(f.data),
		Max:  floats.Max(f.data),
	}
}
