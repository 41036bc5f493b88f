package eclfile

import (
	"fmt"

	"github.com/arloliu/eclio/encoding"
	"github.com/arloliu/eclio/endian"
	"github.com/arloliu/eclio/errs"
	"github.com/arloliu/eclio/format"
	"github.com/arloliu/eclio/internal/hash"
	"github.com/arloliu/eclio/record"
)

// Array returns the decoded array of entry i, decoding it on first access.
// The returned value is shared with the cache and must not be modified.
func (f *File) Array(i int) (Array, error) {
	if err := f.checkIndex(i); err != nil {
		return nil, err
	}

	c := &f.cache[i]
	if c.state == stateDecoded {
		return c.value, nil
	}

	value, err := f.decode(i)
	if err != nil {
		return nil, err
	}
	c.value = value
	c.state = stateDecoded

	return value, nil
}

// IsLoaded reports whether entry i is currently decoded.
func (f *File) IsLoaded(i int) bool {
	return i >= 0 && i < len(f.cache) && f.cache[i].state == stateDecoded
}

// Load decodes the given entries.
func (f *File) Load(indices ...int) error {
	for _, i := range indices {
		if _, err := f.Array(i); err != nil {
			return err
		}
	}

	return nil
}

// LoadAll decodes every entry.
func (f *File) LoadAll() error {
	for i := range f.entries {
		if _, err := f.Array(i); err != nil {
			return err
		}
	}

	return nil
}

// Release drops the decoded payloads of the given entries, or of every entry
// when called without arguments. The entries are decoded again on next access.
func (f *File) Release(indices ...int) {
	if len(indices) == 0 {
		for i := range f.cache {
			f.cache[i] = cell{}
		}

		return
	}

	for _, i := range indices {
		if i >= 0 && i < len(f.cache) {
			f.cache[i] = cell{}
		}
	}
}

func (f *File) decode(i int) (Array, error) {
	h := f.entries[i].header()
	sp := f.spans[i]

	var (
		value Array
		err   error
	)
	if f.formatted {
		value, err = decodeFormatted(h, f.text, int(sp.data))
	} else {
		var payload []byte
		payload, err = f.reader.ReadData(h, sp.data)
		if err == nil {
			value, err = decodeBinary(h, payload, f.engine)
		}
	}
	if err != nil {
		return nil, fmt.Errorf("decode %s (entry %d): %w", h.Name, i, err)
	}

	if int64(value.Len()) != h.Count {
		return nil, fmt.Errorf("%w: %s decoded %d elements, header declares %d", errs.ErrInvalidFormat, h.Name, value.Len(), h.Count)
	}

	f.logger.Debug("decoded keyword", "name", h.Name, "type", h.Tag(), "count", h.Count)

	return value, nil
}

func decodeBinary(h record.Header, payload []byte, engine endian.EndianEngine) (Array, error) {
	n := int(h.Count)
	switch h.Type {
	case format.TypeInte:
		return Ints(encoding.DecodeInts(make([]int32, 0, n), engine, payload)), nil
	case format.TypeReal:
		return Reals(encoding.DecodeReals(make([]float32, 0, n), engine, payload)), nil
	case format.TypeDoub:
		return Doubles(encoding.DecodeDoubles(make([]float64, 0, n), engine, payload)), nil
	case format.TypeLogi:
		return Logicals(encoding.DecodeLogicals(make([]bool, 0, n), engine, payload)), nil
	case format.TypeChar, format.TypeC0nn:
		values := encoding.DecodeStrings(make([]string, 0, n), payload, h.Width)
		return Strings{Values: values, Width: h.Width, Fixed: h.Type == format.TypeC0nn}, nil
	case format.TypeMess:
		return Message{}, nil
	default:
		return nil, fmt.Errorf("%w: %s", errs.ErrUnknownArrayType, h.Type)
	}
}

func decodeFormatted(h record.Header, text []byte, pos int) (Array, error) {
	cursor := encoding.NewTextCursor(text, pos)
	n := int(h.Count)

	switch h.Type {
	case format.TypeInte:
		return decodeTokens(cursor, n, encoding.ParseTextInt, func(v []int32) Array { return Ints(v) })
	case format.TypeReal:
		return decodeTokens(cursor, n, encoding.ParseTextReal, func(v []float32) Array { return Reals(v) })
	case format.TypeDoub:
		return decodeTokens(cursor, n, encoding.ParseTextDouble, func(v []float64) Array { return Doubles(v) })
	case format.TypeLogi:
		return decodeTokens(cursor, n, encoding.ParseTextLogical, func(v []bool) Array { return Logicals(v) })
	case format.TypeChar, format.TypeC0nn:
		values := make([]string, n)
		for i := range values {
			v, err := cursor.Quoted(h.Width)
			if err != nil {
				return nil, err
			}
			values[i] = v
		}

		return Strings{Values: values, Width: h.Width, Fixed: h.Type == format.TypeC0nn}, nil
	case format.TypeMess:
		return Message{}, nil
	default:
		return nil, fmt.Errorf("%w: %s", errs.ErrUnknownArrayType, h.Type)
	}
}

func decodeTokens[T any](cursor *encoding.TextCursor, n int, parse func([]byte) (T, error), wrap func([]T) Array) (Array, error) {
	values := make([]T, n)
	for i := range values {
		tok, err := cursor.Token()
		if err != nil {
			return nil, err
		}
		if values[i], err = parse(tok); err != nil {
			return nil, err
		}
	}

	return wrap(values), nil
}

// Checksum returns the xxHash64 of the on-disk bytes of entry i, header
// included. Two entries with equal checksums and equal layouts hold the same data.
func (f *File) Checksum(i int) (uint64, error) {
	if err := f.checkIndex(i); err != nil {
		return 0, err
	}

	sp := f.spans[i]
	if f.formatted {
		return hash.Sum(f.text[sp.header:sp.end]), nil
	}

	buf := make([]byte, sp.end-sp.header)
	if _, err := f.src.readerAt().ReadAt(buf, sp.header); err != nil {
		return 0, fmt.Errorf("%w: checksum of entry %d: %w", errs.ErrInvalidFormat, i, err)
	}

	return hash.Sum(buf), nil
}
