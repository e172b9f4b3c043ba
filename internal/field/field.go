// Package field provides the dense numeric grid type the ET calculations
// operate on. A Field is either a rectangular grid of float64 samples or a
// broadcastable scalar; all arithmetic is elementwise, with scalars
// broadcasting against grids. Two grids participating in one operation must
// share the same dimensions; a mismatch is a programming error and panics,
// the same contract gonum's floats package applies to mismatched slice
// lengths.
package field

import (
	"fmt"
	"math"

	"gonum.org/v1/gonum/floats"
)

// Field is an immutable elementwise value: either a scalar or a rows×cols
// grid. The zero value is not usable; construct via Scalar, Full or
// FromSlice.
type Field struct {
	rows, cols int
	scalar     bool
	data       []float64
}

// Scalar returns a Field that broadcasts v against any grid.
func Scalar(v float64) Field {
	return Field{scalar: true, data: []float64{v}}
}

// Full returns a rows×cols grid with every sample set to v.
func Full(rows, cols int, v float64) Field {
	if rows <= 0 || cols <= 0 {
		panic(fmt.Sprintf("field: invalid dimensions %dx%d", rows, cols))
	}
	data := make([]float64, rows*cols)
	for i := range data {
		data[i] = v
	}
	return Field{rows: rows, cols: cols, data: data}
}

// FromSlice builds a rows×cols grid from data in row-major order. The slice
// is copied; len(data) must equal rows*cols.
func FromSlice(rows, cols int, data []float64) Field {
	if rows <= 0 || cols <= 0 {
		panic(fmt.Sprintf("field: invalid dimensions %dx%d", rows, cols))
	}
	if len(data) != rows*cols {
		panic(fmt.Sprintf("field: %dx%d grid needs %d samples, got %d", rows, cols, rows*cols, len(data)))
	}
	cp := make([]float64, len(data))
	copy(cp, data)
	return Field{rows: rows, cols: cols, data: cp}
}

// IsScalar reports whether f broadcasts.
func (f Field) IsScalar() bool { return f.scalar }

// IsZero reports whether f is the unusable zero value.
func (f Field) IsZero() bool { return f.data == nil }

// Rows returns the grid height, or 0 for a scalar.
func (f Field) Rows() int { return f.rows }

// Cols returns the grid width, or 0 for a scalar.
func (f Field) Cols() int { return f.cols }

// Len returns the number of stored samples.
func (f Field) Len() int { return len(f.data) }

// At returns the sample at (row, col); a scalar returns its value for any
// index.
func (f Field) At(row, col int) float64 {
	if f.scalar {
		return f.data[0]
	}
	return f.data[row*f.cols+col]
}

// Values returns a copy of the samples in row-major order.
func (f Field) Values() []float64 {
	cp := make([]float64, len(f.data))
	copy(cp, f.data)
	return cp
}

// SameDomain reports whether f and g can combine elementwise: scalars match
// anything, grids must agree on dimensions.
func (f Field) SameDomain(g Field) bool {
	if f.scalar || g.scalar {
		return true
	}
	return f.rows == g.rows && f.cols == g.cols
}

func mustSameDomain(f, g Field) {
	if !f.SameDomain(g) {
		panic(fmt.Sprintf("field: domain mismatch %dx%d vs %dx%d", f.rows, f.cols, g.rows, g.cols))
	}
}

// zip applies op elementwise over f and g, broadcasting scalars.
func zip(f, g Field, op func(a, b float64) float64) Field {
	mustSameDomain(f, g)
	switch {
	case f.scalar && g.scalar:
		return Scalar(op(f.data[0], g.data[0]))
	case f.scalar:
		out := Field{rows: g.rows, cols: g.cols, data: make([]float64, len(g.data))}
		a := f.data[0]
		for i, b := range g.data {
			out.data[i] = op(a, b)
		}
		return out
	case g.scalar:
		out := Field{rows: f.rows, cols: f.cols, data: make([]float64, len(f.data))}
		b := g.data[0]
		for i, a := range f.data {
			out.data[i] = op(a, b)
		}
		return out
	default:
		out := Field{rows: f.rows, cols: f.cols, data: make([]float64, len(f.data))}
		for i, a := range f.data {
			out.data[i] = op(a, g.data[i])
		}
		return out
	}
}

// apply maps op over every sample of f.
func (f Field) apply(op func(float64) float64) Field {
	out := Field{rows: f.rows, cols: f.cols, scalar: f.scalar, data: make([]float64, len(f.data))}
	for i, v := range f.data {
		out.data[i] = op(v)
	}
	return out
}

// gridOp runs the gonum fast path when both operands are grids, falling back
// to zip for broadcasts.
func gridOp(f, g Field, fast func(dst, s []float64), slow func(a, b float64) float64) Field {
	if !f.scalar && !g.scalar {
		mustSameDomain(f, g)
		out := Field{rows: f.rows, cols: f.cols, data: make([]float64, len(f.data))}
		copy(out.data, f.data)
		fast(out.data, g.data)
		return out
	}
	return zip(f, g, slow)
}

// Add returns f + g.
func (f Field) Add(g Field) Field {
	return gridOp(f, g, floats.Add, func(a, b float64) float64 { return a + b })
}

// Sub returns f - g.
func (f Field) Sub(g Field) Field {
	return gridOp(f, g, floats.Sub, func(a, b float64) float64 { return a - b })
}

// Mul returns f * g elementwise.
func (f Field) Mul(g Field) Field {
	return gridOp(f, g, floats.Mul, func(a, b float64) float64 { return a * b })
}

// Div returns f / g elementwise.
func (f Field) Div(g Field) Field {
	return gridOp(f, g, floats.Div, func(a, b float64) float64 { return a / b })
}

// Pow returns f raised elementwise to g.
func (f Field) Pow(g Field) Field { return zip(f, g, math.Pow) }

// Min returns the elementwise minimum of f and g.
func (f Field) Min(g Field) Field { return zip(f, g, math.Min) }

// Max returns the elementwise maximum of f and g.
func (f Field) Max(g Field) Field { return zip(f, g, math.Max) }

// Scalar-operand conveniences for formula code.

// AddS returns f + v.
func (f Field) AddS(v float64) Field { return f.Add(Scalar(v)) }

// SubS returns f - v.
func (f Field) SubS(v float64) Field { return f.Sub(Scalar(v)) }

// MulS returns f * v.
func (f Field) MulS(v float64) Field { return f.Mul(Scalar(v)) }

// DivS returns f / v.
func (f Field) DivS(v float64) Field { return f.Div(Scalar(v)) }

// PowS returns f^v elementwise.
func (f Field) PowS(v float64) Field {
	return f.apply(func(a float64) float64 { return math.Pow(a, v) })
}

// MinS caps every sample at v.
func (f Field) MinS(v float64) Field {
	return f.apply(func(a float64) float64 { return math.Min(a, v) })
}

// MaxS floors every sample at v.
func (f Field) MaxS(v float64) Field {
	return f.apply(func(a float64) float64 { return math.Max(a, v) })
}

// Clamp limits every sample to [lo, hi].
func (f Field) Clamp(lo, hi float64) Field {
	return f.apply(func(a float64) float64 {
		return math.Min(math.Max(a, lo), hi)
	})
}

// Neg returns -f.
func (f Field) Neg() Field { return f.apply(func(a float64) float64 { return -a }) }

// Abs returns |f|.
func (f Field) Abs() Field { return f.apply(math.Abs) }

// Sqrt returns the elementwise square root.
func (f Field) Sqrt() Field { return f.apply(math.Sqrt) }

// Exp returns e^f elementwise.
func (f Field) Exp() Field { return f.apply(math.Exp) }

// Log returns the elementwise natural logarithm.
func (f Field) Log() Field { return f.apply(math.Log) }

// Sin returns the elementwise sine.
func (f Field) Sin() Field { return f.apply(math.Sin) }

// Cos returns the elementwise cosine.
func (f Field) Cos() Field { return f.apply(math.Cos) }

// Tan returns the elementwise tangent.
func (f Field) Tan() Field { return f.apply(math.Tan) }

// Acos returns the elementwise arccosine.
func (f Field) Acos() Field { return f.apply(math.Acos) }

// HasNaN reports whether any sample is NaN.
func (f Field) HasNaN() bool {
	for _, v := range f.data {
		if math.IsNaN(v) {
			return true
		}
	}
	return false
}

// Finite reports whether every sample is finite.
func (f Field) Finite() bool {
	for _, v := range f.data {
		if math.IsNaN(v) || math.IsInf(v, 0) {
			return false
		}
	}
	return true
}

// Equal reports exact samplewise equality, including shape.
func (f Field) Equal(g Field) bool {
	if f.scalar != g.scalar || f.rows != g.rows || f.cols != g.cols {
		return false
	}
	return floats.Equal(f.data, g.data)
}
