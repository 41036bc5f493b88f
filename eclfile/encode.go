package eclfile

import (
	"fmt"

	"github.com/arloliu/eclio/encoding"
	"github.com/arloliu/eclio/endian"
	"github.com/arloliu/eclio/errs"
	"github.com/arloliu/eclio/record"
)

// appendArray appends the complete on-disk representation of a to dst.
func appendArray(dst []byte, name string, a Array, formatted bool, engine endian.EndianEngine) ([]byte, error) {
	if a == nil {
		return dst, fmt.Errorf("%w: nil array for %s", errs.ErrInvalidArgument, name)
	}

	width := 0
	if s, ok := a.(Strings); ok {
		width = s.Width
	}

	h, err := record.NewHeader(name, a.Type(), width, int64(a.Len()))
	if err != nil {
		return dst, err
	}

	if formatted {
		dst, err = record.AppendFormatted(dst, h, cellFunc(a, h.Width))
	} else {
		dst, err = record.AppendBinary(dst, engine, h, blockFunc(a, h.Width, engine))
	}
	if err != nil {
		return dst, fmt.Errorf("%w: %s: %w", errs.ErrInvalidArgument, name, err)
	}

	return dst, nil
}

func blockFunc(a Array, width int, engine endian.EndianEngine) record.BlockFunc {
	switch v := a.(type) {
	case Ints:
		return func(dst []byte, start int64, n int) ([]byte, error) {
			return encoding.AppendInts(dst, engine, v[start:start+int64(n)]), nil
		}
	case Reals:
		return func(dst []byte, start int64, n int) ([]byte, error) {
			return encoding.AppendReals(dst, engine, v[start:start+int64(n)]), nil
		}
	case Doubles:
		return func(dst []byte, start int64, n int) ([]byte, error) {
			return encoding.AppendDoubles(dst, engine, v[start:start+int64(n)]), nil
		}
	case Logicals:
		return func(dst []byte, start int64, n int) ([]byte, error) {
			return encoding.AppendLogicals(dst, engine, v[start:start+int64(n)]), nil
		}
	case Strings:
		return func(dst []byte, start int64, n int) ([]byte, error) {
			return encoding.AppendStrings(dst, v.Values[start:start+int64(n)], width)
		}
	default:
		return func(dst []byte, _ int64, _ int) ([]byte, error) { return dst, nil }
	}
}

func cellFunc(a Array, width int) record.CellFunc {
	switch v := a.(type) {
	case Ints:
		return func(dst []byte, i int64) ([]byte, error) { return encoding.AppendTextInt(dst, v[i]), nil }
	case Reals:
		return func(dst []byte, i int64) ([]byte, error) { return encoding.AppendTextReal(dst, v[i]), nil }
	case Doubles:
		return func(dst []byte, i int64) ([]byte, error) { return encoding.AppendTextDouble(dst, v[i]), nil }
	case Logicals:
		return func(dst []byte, i int64) ([]byte, error) { return encoding.AppendTextLogical(dst, v[i]), nil }
	case Strings:
		return func(dst []byte, i int64) ([]byte, error) { return encoding.AppendTextString(dst, v.Values[i], width) }
	default:
		return func(dst []byte, _ int64) ([]byte, error) { return dst, nil }
	}
}
