package field

import (
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestFromSlice(t *testing.T) {
	t.Run("copies input data", func(t *testing.T) {
		src := []float64{1, 2, 3, 4}
		f := FromSlice(2, 2, src)
		src[0] = 99

		assert.Equal(t, 1.0, f.At(0, 0))
	})

	t.Run("panics on length mismatch", func(t *testing.T) {
		assert.Panics(t, func() { FromSlice(2, 2, []float64{1, 2, 3}) })
	})

	t.Run("panics on invalid dimensions", func(t *testing.T) {
		assert.Panics(t, func() { FromSlice(0, 2, nil) })
	})
}

func TestArithmetic(t *testing.T) {
	a := FromSlice(2, 2, []float64{1, 2, 3, 4})
	b := FromSlice(2, 2, []float64{10, 20, 30, 40})

	tests := []struct {
		name string
		got  Field
		want []float64
	}{
		{"grid add", a.Add(b), []float64{11, 22, 33, 44}},
		{"grid sub", b.Sub(a), []float64{9, 18, 27, 36}},
		{"grid mul", a.Mul(b), []float64{10, 40, 90, 160}},
		{"grid div", b.Div(a), []float64{10, 10, 10, 10}},
		{"scalar broadcast left", Scalar(100).Sub(a), []float64{99, 98, 97, 96}},
		{"scalar broadcast right", a.MulS(2), []float64{2, 4, 6, 8}},
		{"pow scalar", a.PowS(2), []float64{1, 4, 9, 16}},
		{"clamp", b.Clamp(15, 35), []float64{15, 20, 30, 35}},
		{"max floor", a.MaxS(2.5), []float64{2.5, 2.5, 3, 4}},
		{"neg", a.Neg(), []float64{-1, -2, -3, -4}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, tt.got.Values())
		})
	}
}

func TestArithmeticDomainMismatch(t *testing.T) {
	a := FromSlice(2, 2, []float64{1, 2, 3, 4})
	b := FromSlice(1, 4, []float64{1, 2, 3, 4})

	assert.Panics(t, func() { a.Add(b) })
	assert.Panics(t, func() { a.Div(b) })
}

func TestScalarArithmetic(t *testing.T) {
	got := Scalar(3).Mul(Scalar(4))

	require.True(t, got.IsScalar())
	assert.Equal(t, 12.0, got.At(0, 0))
}

func TestTranscendentals(t *testing.T) {
	f := FromSlice(1, 2, []float64{0, 1})

	assert.InDelta(t, 1.0, f.Exp().At(0, 0), 1e-12)
	assert.InDelta(t, math.E, f.Exp().At(0, 1), 1e-12)
	assert.InDelta(t, math.Pi/2, Scalar(0).Acos().At(0, 0), 1e-12)
	assert.InDelta(t, 2.0, Scalar(4).Sqrt().At(0, 0), 1e-12)
}

func TestReductions(t *testing.T) {
	a := FromSlice(1, 3, []float64{1, 5, 3})
	b := FromSlice(1, 3, []float64{4, 2, 3})

	t.Run("elementwise max", func(t *testing.T) {
		assert.Equal(t, []float64{4, 5, 3}, MaxOf(a, b).Values())
	})

	t.Run("elementwise min", func(t *testing.T) {
		assert.Equal(t, []float64{1, 2, 3}, MinOf(a, b).Values())
	})

	t.Run("elementwise sum", func(t *testing.T) {
		assert.Equal(t, []float64{5, 7, 6}, SumOf(a, b).Values())
	})

	t.Run("elementwise mean", func(t *testing.T) {
		assert.Equal(t, []float64{2.5, 3.5, 3}, MeanOf(a, b).Values())
	})

	t.Run("empty reduction panics", func(t *testing.T) {
		assert.Panics(t, func() { MaxOf() })
	})

	t.Run("mismatched domains panic", func(t *testing.T) {
		assert.Panics(t, func() { SumOf(a, FromSlice(3, 1, []float64{1, 2, 3})) })
	})
}

func TestHypot(t *testing.T) {
	u := FromSlice(1, 2, []float64{3, 0})
	v := FromSlice(1, 2, []float64{4, 5})

	assert.Equal(t, []float64{5, 5}, Hypot(u, v).Values())
}

func TestSummarize(t *testing.T) {
	f := FromSlice(2, 2, []float64{1, 2, 3, 10})
	s := f.Summarize()

	assert.Equal(t, 4.0, s.Mean)
	assert.Equal(t, 1.0, s.Min)
	assert.Equal(t, 10.0, s.Max)
}

func TestFinite(t *testing.T) {
	assert.True(t, FromSlice(1, 2, []float64{1, 2}).Finite())
	assert.False(t, FromSlice(1, 2, []float64{1, math.NaN()}).Finite())
	assert.False(t, FromSlice(1, 2, []float64{1, math.Inf(1)}).Finite())
	assert.True(t, FromSlice(1, 2, []float64{1, math.NaN()}).HasNaN())
}

func TestEqual(t *testing.T) {
	a := FromSlice(2, 2, []float64{1, 2, 3, 4})

	assert.True(t, a.Equal(FromSlice(2, 2, []float64{1, 2, 3, 4})))
	assert.False(t, a.Equal(FromSlice(4, 1, []float64{1, 2, 3, 4})))
	assert.False(t, a.Equal(Scalar(1)))
}
