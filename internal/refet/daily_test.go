package refet

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/pacs27/refet-etl/internal/field"
)

// A clear midsummer day at a mid-latitude station, hand-checked against the
// standardized equation: tmax 30°C, tmin 15°C, ea 1.2 kPa, rs 22 MJ/m²/d,
// wind 2 m/s measured at 2 m, 100 m elevation, 36.5°N, day 180.
func goldenInput() Input {
	return Input{
		TMax:   field.Scalar(30),
		TMin:   field.Scalar(15),
		Ea:     field.Scalar(1.2),
		Rs:     field.Scalar(22),
		Uz:     field.Scalar(2),
		Zw:     2,
		Elev:   field.Scalar(100),
		Lat:    field.Scalar(36.5),
		Doy:    180,
		Date:   time.Date(2021, 6, 29, 0, 0, 0, 0, time.UTC),
		Method: MethodASCE,
	}
}

func goldenGridInput(rows, cols int) Input {
	in := goldenInput()
	fill := func(f field.Field) field.Field {
		return field.Full(rows, cols, f.At(0, 0))
	}
	in.TMax = fill(in.TMax)
	in.TMin = fill(in.TMin)
	in.Ea = fill(in.Ea)
	in.Rs = fill(in.Rs)
	in.Uz = fill(in.Uz)
	in.Elev = fill(in.Elev)
	in.Lat = fill(in.Lat)
	return in
}

func TestNewDailyValidation(t *testing.T) {
	t.Run("bad method", func(t *testing.T) {
		in := goldenInput()
		in.Method = Method(42)
		_, err := NewDaily(in)
		assert.ErrorIs(t, err, ErrInvalidConfiguration)
	})

	t.Run("bad rso type", func(t *testing.T) {
		in := goldenInput()
		in.RsoType = RsoType(42)
		_, err := NewDaily(in)
		assert.ErrorIs(t, err, ErrInvalidConfiguration)
	})

	t.Run("array rso without field", func(t *testing.T) {
		in := goldenInput()
		in.RsoType = RsoTypeArray
		_, err := NewDaily(in)
		assert.ErrorIs(t, err, ErrInvalidConfiguration)
	})

	t.Run("missing input field", func(t *testing.T) {
		in := goldenInput()
		in.Ea = field.Field{}
		_, err := NewDaily(in)
		assert.ErrorIs(t, err, ErrInvalidConfiguration)
		assert.ErrorContains(t, err, "ea")
	})

	t.Run("day of year out of range", func(t *testing.T) {
		in := goldenInput()
		in.Doy = 400
		_, err := NewDaily(in)
		assert.ErrorIs(t, err, ErrInvalidConfiguration)
	})

	t.Run("non-positive wind height", func(t *testing.T) {
		in := goldenInput()
		in.Zw = 0
		_, err := NewDaily(in)
		assert.ErrorIs(t, err, ErrInvalidConfiguration)
	})

	t.Run("mismatched grid domains", func(t *testing.T) {
		in := goldenGridInput(2, 3)
		in.Rs = field.Full(3, 2, 22)
		_, err := NewDaily(in)
		assert.ErrorIs(t, err, ErrInvalidConfiguration)
	})
}

func TestDailyGoldenScenario(t *testing.T) {
	d, err := NewDaily(goldenInput())
	require.NoError(t, err)

	t.Run("eto", func(t *testing.T) {
		assert.InDelta(t, 5.69, scalarVal(d.ETo()), 0.05)
	})

	t.Run("etr", func(t *testing.T) {
		assert.InDelta(t, 7.57, scalarVal(d.ETr()), 0.07)
	})

	t.Run("etr exceeds eto", func(t *testing.T) {
		assert.Greater(t, scalarVal(d.ETr()), scalarVal(d.ETo()))
	})

	t.Run("etw", func(t *testing.T) {
		assert.InDelta(t, 4.66, scalarVal(d.ETw()), 0.05)
	})

	t.Run("hargreaves", func(t *testing.T) {
		assert.InDelta(t, 6.09, scalarVal(d.PETHargreaves()), 0.06)
	})

	t.Run("components sum to eto", func(t *testing.T) {
		sum := d.EToFS1().Add(d.EToFS2())
		assert.InDelta(t, scalarVal(d.ETo()), scalarVal(sum), 1e-9)
	})

	t.Run("all outputs finite", func(t *testing.T) {
		for name, f := range map[string]field.Field{
			"eto":        d.ETo(),
			"etr":        d.ETr(),
			"etw":        d.ETw(),
			"fs1":        d.EToFS1(),
			"fs2":        d.EToFS2(),
			"hargreaves": d.PETHargreaves(),
			"rn":         d.Rn(),
			"vpd":        d.VPD(),
		} {
			assert.True(t, f.Finite(), "output %s not finite", name)
		}
	})
}

func TestDailyGridOutputs(t *testing.T) {
	d, err := NewDaily(goldenGridInput(3, 4))
	require.NoError(t, err)

	eto := d.ETo()
	require.Equal(t, 3, eto.Rows())
	require.Equal(t, 4, eto.Cols())

	// Uniform inputs produce a uniform field matching the scalar run.
	scalarD, err := NewDaily(goldenInput())
	require.NoError(t, err)
	for _, v := range eto.Values() {
		assert.InDelta(t, scalarVal(scalarD.ETo()), v, 1e-9)
	}
}

func TestETszAliases(t *testing.T) {
	d, err := NewDaily(goldenInput())
	require.NoError(t, err)

	for _, alias := range []string{"grass", "eto", "short", "GRASS", " ETo "} {
		t.Run(alias, func(t *testing.T) {
			got, err := d.ETsz(alias)
			require.NoError(t, err)
			assert.True(t, got.Equal(d.ETo()))
		})
	}

	for _, alias := range []string{"alfalfa", "etr", "tall", "Alfalfa"} {
		t.Run(alias, func(t *testing.T) {
			got, err := d.ETsz(alias)
			require.NoError(t, err)
			assert.True(t, got.Equal(d.ETr()))
		})
	}

	t.Run("unknown surface", func(t *testing.T) {
		_, err := d.ETsz("corn")
		assert.ErrorIs(t, err, ErrUnsupportedSurface)
	})
}

func TestOutputMemoization(t *testing.T) {
	d, err := NewDaily(goldenInput())
	require.NoError(t, err)

	first := d.ETo()
	second := d.ETo()
	assert.True(t, first.Equal(second))

	// Concurrent readers all observe the same cached value.
	results := make(chan field.Field, 8)
	for i := 0; i < 8; i++ {
		go func() { results <- d.ETo() }()
	}
	for i := 0; i < 8; i++ {
		assert.True(t, first.Equal(<-results))
	}
}

func TestRsoTypeSelection(t *testing.T) {
	t.Run("default follows method", func(t *testing.T) {
		in := goldenInput()
		asce, err := NewDaily(in)
		require.NoError(t, err)

		in.RsoType = RsoTypeSimple
		simple, err := NewDaily(in)
		require.NoError(t, err)
		assert.True(t, asce.Rso().Equal(simple.Rso()))

		in.Method = MethodRefET
		in.RsoType = RsoTypeDefault
		refet, err := NewDaily(in)
		require.NoError(t, err)
		in.RsoType = RsoTypeFull
		full, err := NewDaily(in)
		require.NoError(t, err)
		assert.True(t, refet.Rso().Equal(full.Rso()))
	})

	t.Run("array uses the literal field", func(t *testing.T) {
		in := goldenInput()
		rso := field.Scalar(29.5)
		in.RsoType = RsoTypeArray
		in.Rso = &rso
		d, err := NewDaily(in)
		require.NoError(t, err)
		assert.True(t, d.Rso().Equal(rso))
	})
}

func TestParseMethod(t *testing.T) {
	tests := []struct {
		in      string
		want    Method
		wantErr bool
	}{
		{"asce", MethodASCE, false},
		{"ASCE", MethodASCE, false},
		{" refet ", MethodRefET, false},
		{"penman", 0, true},
		{"", 0, true},
	}

	for _, tt := range tests {
		t.Run(tt.in, func(t *testing.T) {
			got, err := ParseMethod(tt.in)
			if tt.wantErr {
				assert.ErrorIs(t, err, ErrInvalidConfiguration)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestParseRsoType(t *testing.T) {
	tests := []struct {
		in      string
		want    RsoType
		wantErr bool
	}{
		{"", RsoTypeDefault, false},
		{"simple", RsoTypeSimple, false},
		{"Full", RsoTypeFull, false},
		{"ARRAY", RsoTypeArray, false},
		{"fancy", 0, true},
	}

	for _, tt := range tests {
		t.Run(tt.in, func(t *testing.T) {
			got, err := ParseRsoType(tt.in)
			if tt.wantErr {
				assert.ErrorIs(t, err, ErrInvalidConfiguration)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}
}
