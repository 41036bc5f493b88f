package encoding

import (
	"math"
	"testing"

	"github.com/arloliu/eclio/errs"
	"github.com/stretchr/testify/require"
)

func TestAppendTextInt(t *testing.T) {
	require.Equal(t, "           1", string(AppendTextInt(nil, 1)))
	require.Equal(t, " -2147483648", string(AppendTextInt(nil, math.MinInt32)))
}

func TestAppendTextReal(t *testing.T) {
	tests := []struct {
		value float32
		want  string
	}{
		{1.5, "   0.15000000E+01"},
		{0, "   0.00000000E+00"},
		{-0.25, "  -0.25000000E+00"},
		{100, "   0.10000000E+03"},
	}

	for _, tt := range tests {
		t.Run(tt.want, func(t *testing.T) {
			got := string(AppendTextReal(nil, tt.value))
			require.Equal(t, tt.want, got)
			require.Len(t, got, 17)
		})
	}
}

func TestAppendTextDouble(t *testing.T) {
	got := string(AppendTextDouble(nil, 1.5))
	require.Equal(t, "   0.15000000000000D+01", got)
	require.Len(t, got, 23)
}

func TestTextFloat_RoundTrip(t *testing.T) {
	t.Run("reals", func(t *testing.T) {
		values := []float32{1.5, -3.1415927, 1.0 / 3.0, math.MaxFloat32, math.SmallestNonzeroFloat32, 1e-30, 123456.79}
		for _, v := range values {
			tok := trimCell(AppendTextReal(nil, v))
			got, err := ParseTextReal(tok)
			require.NoError(t, err)
			require.Equal(t, math.Float32bits(v), math.Float32bits(got), "value %v token %s", v, tok)
		}
	})

	t.Run("doubles", func(t *testing.T) {
		values := []float64{math.Pi, -math.E, 1.0 / 3.0, math.MaxFloat64, 5e-324, 0.1, -1e-300}
		for _, v := range values {
			tok := trimCell(AppendTextDouble(nil, v))
			got, err := ParseTextDouble(tok)
			require.NoError(t, err)
			require.Equal(t, math.Float64bits(v), math.Float64bits(got), "value %v token %s", v, tok)
		}
	})

	t.Run("special values", func(t *testing.T) {
		nan, err := ParseTextDouble(trimCell(AppendTextDouble(nil, math.NaN())))
		require.NoError(t, err)
		require.True(t, math.IsNaN(nan))

		inf, err := ParseTextReal(trimCell(AppendTextReal(nil, float32(math.Inf(-1)))))
		require.NoError(t, err)
		require.True(t, math.IsInf(float64(inf), -1))

		require.Len(t, AppendTextReal(nil, float32(math.Inf(1))), 17)
		require.Len(t, AppendTextDouble(nil, math.NaN()), 23)
	})

	t.Run("negative zero", func(t *testing.T) {
		got, err := ParseTextDouble(trimCell(AppendTextDouble(nil, math.Copysign(0, -1))))
		require.NoError(t, err)
		require.True(t, math.Signbit(got))
	})
}

func TestParseText_Invalid(t *testing.T) {
	_, err := ParseTextInt([]byte("1.5"))
	require.ErrorIs(t, err, errs.ErrInvalidFormat)

	_, err = ParseTextReal([]byte("abc"))
	require.ErrorIs(t, err, errs.ErrInvalidFormat)

	_, err = ParseTextLogical([]byte("X"))
	require.ErrorIs(t, err, errs.ErrInvalidFormat)
}

func TestParseTextLogical(t *testing.T) {
	v, err := ParseTextLogical([]byte("T"))
	require.NoError(t, err)
	require.True(t, v)

	v, err = ParseTextLogical([]byte("F"))
	require.NoError(t, err)
	require.False(t, v)
}

func TestAppendTextString(t *testing.T) {
	got, err := AppendTextString(nil, "er >'<", 8)
	require.NoError(t, err)
	require.Equal(t, " 'er >'<  '", string(got))

	_, err = AppendTextString(nil, "toolongvalue", 8)
	require.ErrorIs(t, err, errs.ErrStringTooLong)
}

func TestTextCursor(t *testing.T) {
	t.Run("tokens across lines", func(t *testing.T) {
		data := []byte("           1           2\n           3\n")
		c := NewTextCursor(data, 0)
		for _, want := range []string{"1", "2", "3"} {
			tok, err := c.Token()
			require.NoError(t, err)
			require.Equal(t, want, string(tok))
		}
		_, err := c.Token()
		require.ErrorIs(t, err, errs.ErrInvalidFormat)
	})

	t.Run("quoted cells with embedded quotes", func(t *testing.T) {
		data := []byte(" 'er >'<  ' '        '\n 'a string'\n")
		c := NewTextCursor(data, 0)

		v, err := c.Quoted(8)
		require.NoError(t, err)
		require.Equal(t, "er >'<", v)

		v, err = c.Quoted(8)
		require.NoError(t, err)
		require.Empty(t, v)

		v, err = c.Quoted(8)
		require.NoError(t, err)
		require.Equal(t, "a string", v)
	})

	t.Run("skip", func(t *testing.T) {
		data := []byte("  T  F  T\n 'X'")
		c := NewTextCursor(data, 0)
		require.NoError(t, c.Skip(3, 0))
		require.NoError(t, c.Skip(1, 1))
		require.Equal(t, len(data), c.Pos())
		require.Error(t, c.Skip(1, 0))
	})

	t.Run("malformed quoted", func(t *testing.T) {
		c := NewTextCursor([]byte(" xabcdefghx"), 0)
		_, err := c.Quoted(8)
		require.ErrorIs(t, err, errs.ErrInvalidFormat)
	})
}

func trimCell(cell []byte) []byte {
	c := NewTextCursor(cell, 0)
	tok, _ := c.Token()

	return tok
}
