package encoding

import (
	"fmt"
	"math"
	"strings"

	"github.com/arloliu/eclio/endian"
	"github.com/arloliu/eclio/errs"
)

const (
	logicalTrue  = 0xFFFFFFFF
	logicalFalse = 0
)

// AppendInts appends values as 4-byte integers.
func AppendInts(dst []byte, engine endian.EndianEngine, values []int32) []byte {
	for _, v := range values {
		dst = engine.AppendUint32(dst, uint32(v))
	}

	return dst
}

// AppendReals appends values as IEEE single precision bit patterns.
func AppendReals(dst []byte, engine endian.EndianEngine, values []float32) []byte {
	for _, v := range values {
		dst = engine.AppendUint32(dst, math.Float32bits(v))
	}

	return dst
}

// AppendDoubles appends values as IEEE double precision bit patterns.
func AppendDoubles(dst []byte, engine endian.EndianEngine, values []float64) []byte {
	for _, v := range values {
		dst = engine.AppendUint64(dst, math.Float64bits(v))
	}

	return dst
}

// AppendLogicals appends values as 4-byte logicals.
func AppendLogicals(dst []byte, engine endian.EndianEngine, values []bool) []byte {
	for _, v := range values {
		if v {
			dst = engine.AppendUint32(dst, logicalTrue)
		} else {
			dst = engine.AppendUint32(dst, logicalFalse)
		}
	}

	return dst
}

// AppendStrings appends values as space padded fields of width bytes.
//
// Returns errs.ErrStringTooLong if a value does not fit the width.
func AppendStrings(dst []byte, values []string, width int) ([]byte, error) {
	for i, v := range values {
		if len(v) > width {
			return dst, fmt.Errorf("%w: element %d %q exceeds width %d", errs.ErrStringTooLong, i, v, width)
		}
		dst = append(dst, v...)
		for range width - len(v) {
			dst = append(dst, ' ')
		}
	}

	return dst, nil
}

// DecodeInts decodes 4-byte integers from payload and appends them to dst.
func DecodeInts(dst []int32, engine endian.EndianEngine, payload []byte) []int32 {
	for off := 0; off+4 <= len(payload); off += 4 {
		dst = append(dst, int32(engine.Uint32(payload[off:])))
	}

	return dst
}

// DecodeReals decodes single precision values from payload and appends them to dst.
func DecodeReals(dst []float32, engine endian.EndianEngine, payload []byte) []float32 {
	for off := 0; off+4 <= len(payload); off += 4 {
		dst = append(dst, math.Float32frombits(engine.Uint32(payload[off:])))
	}

	return dst
}

// DecodeDoubles decodes double precision values from payload and appends them to dst.
func DecodeDoubles(dst []float64, engine endian.EndianEngine, payload []byte) []float64 {
	for off := 0; off+8 <= len(payload); off += 8 {
		dst = append(dst, math.Float64frombits(engine.Uint64(payload[off:])))
	}

	return dst
}

// DecodeLogicals decodes 4-byte logicals from payload and appends them to dst.
func DecodeLogicals(dst []bool, engine endian.EndianEngine, payload []byte) []bool {
	for off := 0; off+4 <= len(payload); off += 4 {
		dst = append(dst, engine.Uint32(payload[off:]) != logicalFalse)
	}

	return dst
}

// DecodeStrings splits payload into fields of width bytes, trims trailing
// blanks and appends the values to dst. Leading blanks are kept.
func DecodeStrings(dst []string, payload []byte, width int) []string {
	if width <= 0 {
		return dst
	}

	for off := 0; off+width <= len(payload); off += width {
		dst = append(dst, strings.TrimRight(string(payload[off:off+width]), " "))
	}

	return dst
}
