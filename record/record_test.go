package record

import (
	"bytes"
	"strings"
	"testing"

	"github.com/arloliu/eclio/encoding"
	"github.com/arloliu/eclio/endian"
	"github.com/arloliu/eclio/errs"
	"github.com/arloliu/eclio/format"
	"github.com/stretchr/testify/require"
)

func mustHeader(t *testing.T, name string, typ format.ArrayType, width int, count int64) Header {
	t.Helper()
	h, err := NewHeader(name, typ, width, count)
	require.NoError(t, err)

	return h
}

func intBlock(values []int32, engine endian.EndianEngine) BlockFunc {
	return func(dst []byte, start int64, n int) ([]byte, error) {
		return encoding.AppendInts(dst, engine, values[start:start+int64(n)]), nil
	}
}

func TestNewHeader(t *testing.T) {
	t.Run("fixes widths", func(t *testing.T) {
		h := mustHeader(t, "ZCORN", format.TypeReal, 0, 10)
		require.Equal(t, 4, h.Width)
		require.Equal(t, "REAL", h.Tag())

		h = mustHeader(t, "WGNAMES", format.TypeChar, 0, 3)
		require.Equal(t, 8, h.Width)

		h = mustHeader(t, "NAMES", format.TypeC0nn, 16, 3)
		require.Equal(t, "C016", h.Tag())
		require.Equal(t, 16, h.ElementSize())
	})

	t.Run("rejects long names", func(t *testing.T) {
		_, err := NewHeader("TOOLONGNAME", format.TypeInte, 0, 1)
		require.ErrorIs(t, err, errs.ErrInvalidArgument)
		require.ErrorIs(t, err, errs.ErrNameTooLong)
	})

	t.Run("rejects bad widths", func(t *testing.T) {
		_, err := NewHeader("X", format.TypeC0nn, 0, 1)
		require.ErrorIs(t, err, errs.ErrInvalidArgument)
		_, err = NewHeader("X", format.TypeC0nn, 1000, 1)
		require.ErrorIs(t, err, errs.ErrInvalidArgument)
	})

	t.Run("mess has no elements", func(t *testing.T) {
		h := mustHeader(t, "ENDGRID", format.TypeMess, 0, 5)
		require.Zero(t, h.Count)
	})
}

func TestSplit(t *testing.T) {
	require.Nil(t, Split(0, format.TypeInte))
	require.Nil(t, Split(10, format.TypeMess))
	require.Equal(t, []int{999}, Split(999, format.TypeReal))
	require.Equal(t, []int{1000, 1000, 1}, Split(2001, format.TypeDoub))
	require.Equal(t, []int{105, 105, 10}, Split(220, format.TypeChar))
	require.Equal(t, []int{105}, Split(105, format.TypeC0nn))
}

func TestDataSize(t *testing.T) {
	h := mustHeader(t, "PORO", format.TypeReal, 0, 2001)
	require.Equal(t, int64(2001*4+3*8), DataSize(h))
	require.Equal(t, int64(24)+DataSize(h), Size(h))

	h = mustHeader(t, "ENDLGR", format.TypeMess, 0, 0)
	require.Zero(t, DataSize(h))
}

func TestColumns(t *testing.T) {
	require.Equal(t, 6, Columns(format.TypeInte, 0))
	require.Equal(t, 4, Columns(format.TypeReal, 0))
	require.Equal(t, 3, Columns(format.TypeDoub, 0))
	require.Equal(t, 25, Columns(format.TypeLogi, 0))
	require.Equal(t, 7, Columns(format.TypeChar, 8))
	require.Equal(t, 6, Columns(format.TypeC0nn, 10))
	require.Equal(t, 1, Columns(format.TypeC0nn, 200))
}

func TestBinaryHeader_RoundTrip(t *testing.T) {
	engine := endian.GetBigEndianEngine()

	t.Run("plain", func(t *testing.T) {
		h := mustHeader(t, "SEQNUM", format.TypeInte, 0, 1)
		data := h.AppendBinary(nil, engine)
		require.Len(t, data, HeaderRecordSize)
		require.Equal(t, "SEQNUM  ", string(data[4:12]))
		require.Equal(t, "INTE", string(data[16:20]))

		r := NewReader(bytes.NewReader(data), int64(len(data)), engine)
		got, next, err := r.ReadHeader(0)
		require.NoError(t, err)
		require.Equal(t, h, got)
		require.Equal(t, int64(len(data)), next)
	})

	t.Run("X231 sentinel", func(t *testing.T) {
		h := Header{Name: "BIG", Type: format.TypeReal, Width: 4, Count: 5*x231Unit + 17}
		data := h.AppendBinary(nil, engine)
		require.Len(t, data, 2*HeaderRecordSize)
		require.Equal(t, "X231", string(data[16:20]))
		require.Equal(t, int32(-5), int32(engine.Uint32(data[12:16])))

		r := NewReader(bytes.NewReader(data), int64(len(data)), engine)
		got, next, err := r.ReadHeader(0)
		require.NoError(t, err)
		require.Equal(t, h, got)
		require.Equal(t, int64(2*HeaderRecordSize), next)
		require.Equal(t, int64(2*HeaderRecordSize), Size(Header{Name: "BIG", Type: format.TypeMess, Count: x231Unit}))
	})

	t.Run("unknown type", func(t *testing.T) {
		data := appendHeaderRecord(nil, engine, "BAD", 1, "XXXX")
		r := NewReader(bytes.NewReader(data), int64(len(data)), engine)
		_, _, err := r.ReadHeader(0)
		require.ErrorIs(t, err, errs.ErrInvalidFormat)
		require.ErrorIs(t, err, errs.ErrUnknownArrayType)
	})
}

func TestFormattedHeader_RoundTrip(t *testing.T) {
	h := mustHeader(t, "ZCORN", format.TypeReal, 0, 4800)
	line := h.AppendFormatted(nil)
	require.Equal(t, " 'ZCORN   '        4800 'REAL'\n", string(line))
	require.Len(t, line, 31)

	got, next, err := ParseFormattedHeader(line, 0)
	require.NoError(t, err)
	require.Equal(t, h, got)
	require.Equal(t, len(line), next)

	t.Run("X231", func(t *testing.T) {
		big := Header{Name: "BIG", Type: format.TypeInte, Width: 4, Count: 3*x231Unit + 1}
		data := big.AppendFormatted(nil)
		got, next, err := ParseFormattedHeader(data, 0)
		require.NoError(t, err)
		require.Equal(t, big, got)
		require.Equal(t, len(data), next)
	})

	t.Run("malformed", func(t *testing.T) {
		for _, bad := range []string{" garbage\n", " 'SHORT\n", " 'NAME    '  12 'INTE\n", " 'NAME    '  xx 'INTE'\n"} {
			_, _, err := ParseFormattedHeader([]byte(bad), 0)
			require.ErrorIs(t, err, errs.ErrInvalidFormat, bad)
		}
	})
}

func TestReader_Record(t *testing.T) {
	engine := endian.GetBigEndianEngine()

	t.Run("marker mismatch", func(t *testing.T) {
		data := []byte{0, 0, 0, 4, 1, 2, 3, 4, 0, 0, 0, 5}
		r := NewReader(bytes.NewReader(data), int64(len(data)), engine)
		_, err := r.Record(0)
		require.ErrorIs(t, err, errs.ErrInvalidFormat)
		require.ErrorIs(t, err, errs.ErrRecordMarkerMismatch)
	})

	t.Run("truncated", func(t *testing.T) {
		data := []byte{0, 0, 0, 8, 1, 2, 3, 4}
		r := NewReader(bytes.NewReader(data), int64(len(data)), engine)
		_, err := r.Record(0)
		require.ErrorIs(t, err, errs.ErrTruncatedRecord)
	})

	t.Run("payload", func(t *testing.T) {
		data := []byte{0, 0, 0, 2, 7, 9, 0, 0, 0, 2}
		r := NewReader(bytes.NewReader(data), int64(len(data)), engine)
		rec, err := r.Record(0)
		require.NoError(t, err)
		require.Equal(t, int64(10), rec.End())

		payload, err := r.Payload(rec, nil)
		require.NoError(t, err)
		require.Equal(t, []byte{7, 9}, payload)
	})
}

func TestAppendBinary_ReadData(t *testing.T) {
	engine := endian.GetBigEndianEngine()
	values := make([]int32, 2500)
	for i := range values {
		values[i] = int32(i * 3)
	}

	h := mustHeader(t, "ACTNUM", format.TypeInte, 0, int64(len(values)))
	data, err := AppendBinary(nil, engine, h, intBlock(values, engine))
	require.NoError(t, err)
	require.Equal(t, Size(h), int64(len(data)))

	r := NewReader(bytes.NewReader(data), int64(len(data)), engine)
	got, off, err := r.ReadHeader(0)
	require.NoError(t, err)
	require.Equal(t, h, got)

	var lengths []int64
	end, err := r.Blocks(got, off, func(rec Record) error {
		lengths = append(lengths, rec.Length)
		return nil
	})
	require.NoError(t, err)
	require.Equal(t, int64(len(data)), end)
	require.Equal(t, []int64{4000, 4000, 2000}, lengths)

	payload, err := r.ReadData(got, off)
	require.NoError(t, err)
	require.Equal(t, values, encoding.DecodeInts(nil, engine, payload))

	t.Run("wrong block length", func(t *testing.T) {
		short := mustHeader(t, "ACTNUM", format.TypeInte, 0, 2600)
		_, err := r.Blocks(short, off, nil)
		require.ErrorIs(t, err, errs.ErrInvalidFormat)
	})

	t.Run("block encoder size check", func(t *testing.T) {
		_, err := AppendBinary(nil, engine, h, func(dst []byte, _ int64, _ int) ([]byte, error) {
			return append(dst, 1), nil
		})
		require.ErrorIs(t, err, errs.ErrInvalidArgument)
	})
}

func TestAppendFormatted_Layout(t *testing.T) {
	values := make([]int32, 1003)
	h := mustHeader(t, "NUMS", format.TypeInte, 0, int64(len(values)))

	data, err := AppendFormatted(nil, h, func(dst []byte, i int64) ([]byte, error) {
		return encoding.AppendTextInt(dst, values[i]), nil
	})
	require.NoError(t, err)

	lines := strings.Split(strings.TrimSuffix(string(data), "\n"), "\n")
	// header + ceil(1000/6) lines for the first block + 1 line for the second
	require.Len(t, lines, 1+167+1)
	require.Len(t, lines[1], 6*12)
	require.Len(t, lines[167], 4*12, "last line of the first block is short")
	require.Len(t, lines[168], 3*12)

	got, pos, err := ParseFormattedHeader(data, 0)
	require.NoError(t, err)
	end, err := SkipFormatted(data, pos, got)
	require.NoError(t, err)
	require.Equal(t, len(data)-1, end)
}

func TestSkipFormatted_Strings(t *testing.T) {
	values := []string{"This", "is", "a test.", "", "charact", "er >'<", "can be", "part of", "a string"}
	h := mustHeader(t, "TEST", format.TypeChar, 0, int64(len(values)))

	data, err := AppendFormatted(nil, h, func(dst []byte, i int64) ([]byte, error) {
		return encoding.AppendTextString(dst, values[i], 8)
	})
	require.NoError(t, err)

	_, pos, err := ParseFormattedHeader(data, 0)
	require.NoError(t, err)
	end, err := SkipFormatted(data, pos, h)
	require.NoError(t, err)
	require.Equal(t, len(data)-1, end)

	_, err = SkipFormatted(data[:len(data)-5], pos, h)
	require.ErrorIs(t, err, errs.ErrInvalidFormat)
}

func TestDetect(t *testing.T) {
	formatted, engine, err := Detect([]byte{0, 0, 0, 16, 'F'})
	require.NoError(t, err)
	require.False(t, formatted)
	require.Equal(t, endian.GetBigEndianEngine(), engine)

	formatted, engine, err = Detect([]byte{16, 0, 0, 0, 'F'})
	require.NoError(t, err)
	require.False(t, formatted)
	require.Equal(t, endian.GetLittleEndianEngine(), engine)

	formatted, _, err = Detect([]byte(" 'FILEHEAD'"))
	require.NoError(t, err)
	require.True(t, formatted)

	formatted, _, err = Detect(nil)
	require.NoError(t, err)
	require.False(t, formatted)

	_, _, err = Detect([]byte("hello world"))
	require.ErrorIs(t, err, errs.ErrInvalidFormat)
}
