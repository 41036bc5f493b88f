package encoding

import (
	"math"
	"testing"

	"github.com/arloliu/eclio/endian"
	"github.com/arloliu/eclio/errs"
	"github.com/stretchr/testify/require"
)

func TestBinaryInts_RoundTrip(t *testing.T) {
	engine := endian.GetBigEndianEngine()
	values := []int32{0, 1, -1, math.MaxInt32, math.MinInt32, 42}

	payload := AppendInts(nil, engine, values)
	require.Len(t, payload, 4*len(values))
	require.Equal(t, []byte{0, 0, 0, 1}, payload[4:8], "big-endian wire order")

	require.Equal(t, values, DecodeInts(nil, engine, payload))
}

func TestBinaryReals_RoundTrip(t *testing.T) {
	engine := endian.GetBigEndianEngine()
	values := []float32{0, 1.5, -2.25, float32(math.NaN()), float32(math.Inf(1)), float32(math.Inf(-1)), math.SmallestNonzeroFloat32}

	got := DecodeReals(nil, engine, AppendReals(nil, engine, values))
	require.Len(t, got, len(values))
	for i := range values {
		require.Equal(t, math.Float32bits(values[i]), math.Float32bits(got[i]), "element %d", i)
	}
}

func TestBinaryDoubles_RoundTrip(t *testing.T) {
	engine := endian.GetLittleEndianEngine()
	values := []float64{0, math.Pi, -1e300, math.NaN(), math.Inf(1), math.Copysign(0, -1)}

	got := DecodeDoubles(nil, engine, AppendDoubles(nil, engine, values))
	require.Len(t, got, len(values))
	for i := range values {
		require.Equal(t, math.Float64bits(values[i]), math.Float64bits(got[i]), "element %d", i)
	}
}

func TestBinaryLogicals(t *testing.T) {
	engine := endian.GetBigEndianEngine()
	payload := AppendLogicals(nil, engine, []bool{true, false, true})
	require.Equal(t, []byte{0xff, 0xff, 0xff, 0xff}, payload[:4])
	require.Equal(t, []byte{0, 0, 0, 0}, payload[4:8])

	require.Equal(t, []bool{true, false, true}, DecodeLogicals(nil, engine, payload))

	t.Run("any non-zero value is true", func(t *testing.T) {
		require.Equal(t, []bool{true}, DecodeLogicals(nil, engine, []byte{0, 0, 0, 1}))
	})
}

func TestBinaryStrings(t *testing.T) {
	values := []string{"This", "is", "", "er >'<", "  DAYS"}

	payload, err := AppendStrings(nil, values, 8)
	require.NoError(t, err)
	require.Len(t, payload, 40)
	require.Equal(t, "This    ", string(payload[:8]))

	require.Equal(t, values, DecodeStrings(nil, payload, 8))

	t.Run("too long", func(t *testing.T) {
		_, err := AppendStrings(nil, []string{"123456789"}, 8)
		require.ErrorIs(t, err, errs.ErrStringTooLong)
	})

	t.Run("zero width", func(t *testing.T) {
		require.Empty(t, DecodeStrings(nil, []byte("abc"), 0))
	})
}
