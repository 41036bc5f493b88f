package record

import (
	"fmt"

	"github.com/arloliu/eclio/encoding"
	"github.com/arloliu/eclio/endian"
	"github.com/arloliu/eclio/errs"
	"github.com/arloliu/eclio/format"
)

// BlockFunc appends the encoded elements [start, start+n) of an array to dst.
type BlockFunc func(dst []byte, start int64, n int) ([]byte, error)

// CellFunc appends the formatted cell of element i to dst.
type CellFunc func(dst []byte, i int64) ([]byte, error)

// AppendBinary appends the complete unformatted representation of an array,
// header and data records, to dst. block is called once per data record.
func AppendBinary(dst []byte, engine endian.EndianEngine, h Header, block BlockFunc) ([]byte, error) {
	dst = h.AppendBinary(dst, engine)

	var start int64
	elem := h.ElementSize()
	for _, n := range Split(h.Count, h.Type) {
		length := uint32(n * elem)
		dst = engine.AppendUint32(dst, length)

		before := len(dst)
		var err error
		dst, err = block(dst, start, n)
		if err != nil {
			return dst, err
		}
		if got := len(dst) - before; got != int(length) {
			return dst, fmt.Errorf("%w: block of %s encoded to %d bytes, want %d", errs.ErrInvalidArgument, h.Name, got, length)
		}

		dst = engine.AppendUint32(dst, length)
		start += int64(n)
	}

	return dst, nil
}

// AppendFormatted appends the complete formatted representation of an array,
// header line and data lines, to dst. cell is called once per element.
func AppendFormatted(dst []byte, h Header, cell CellFunc) ([]byte, error) {
	dst = h.AppendFormatted(dst)

	cols := Columns(h.Type, h.Width)
	var idx int64
	for _, n := range Split(h.Count, h.Type) {
		for i := range n {
			var err error
			dst, err = cell(dst, idx)
			if err != nil {
				return dst, err
			}
			idx++

			if (i+1)%cols == 0 || i == n-1 {
				dst = append(dst, '\n')
			}
		}
	}

	return dst, nil
}

// SkipFormatted advances past the data lines of h starting at pos.
func SkipFormatted(data []byte, pos int, h Header) (int, error) {
	if h.Count <= 0 || h.Type == format.TypeMess {
		return pos, nil
	}

	width := 0
	if h.Type.IsString() {
		width = h.Width
	}

	cursor := encoding.NewTextCursor(data, pos)
	if err := cursor.Skip(h.Count, width); err != nil {
		return pos, fmt.Errorf("data of %s: %w", h.Name, err)
	}

	return cursor.Pos(), nil
}

// Detect inspects the first bytes of a file and reports whether it is
// formatted and, for unformatted files, its byte order.
//
// Returns:
//   - bool: true for formatted files
//   - endian.EndianEngine: byte order of unformatted files, nil otherwise
//   - error: errs.ErrInvalidFormat if the content is neither
func Detect(prefix []byte) (bool, endian.EndianEngine, error) {
	if len(prefix) == 0 {
		return false, endian.GetDefaultEngine(), nil
	}

	if engine, ok := endian.DetectFromMarker(prefix, HeaderPayloadSize); ok {
		return false, engine, nil
	}

	for _, b := range prefix {
		if isBlank(b) {
			continue
		}
		if b == '\'' {
			return true, nil, nil
		}

		break
	}

	return false, nil, fmt.Errorf("%w: not a keyword file", errs.ErrInvalidFormat)
}
