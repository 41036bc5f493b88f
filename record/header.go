package record

import (
	"bytes"
	"fmt"
	"strconv"
	"strings"

	"github.com/arloliu/eclio/endian"
	"github.com/arloliu/eclio/errs"
	"github.com/arloliu/eclio/format"
)

// Header describes one logical keyword array.
type Header struct {
	// Name is the keyword name with trailing blanks removed.
	Name string
	// Type is the element type. Never format.TypeX231 after parsing.
	Type format.ArrayType
	// Width is the element width of string arrays (8 for CHAR).
	Width int
	// Count is the total number of elements.
	Count int64
}

// NewHeader validates and builds a Header.
//
// Returns:
//   - error: errs.ErrInvalidArgument for a name longer than 8 characters, a
//     negative count or a string width outside 1..999
func NewHeader(name string, t format.ArrayType, width int, count int64) (Header, error) {
	if len(name) > NameWidth {
		return Header{}, fmt.Errorf("%w: %w: %q", errs.ErrInvalidArgument, errs.ErrNameTooLong, name)
	}
	if count < 0 {
		return Header{}, fmt.Errorf("%w: negative element count %d for %s", errs.ErrInvalidArgument, count, name)
	}

	switch t {
	case format.TypeChar:
		width = format.CharWidth
	case format.TypeC0nn:
		if width < 1 || width > MaxC0nnWidth {
			return Header{}, fmt.Errorf("%w: string width %d for %s", errs.ErrInvalidArgument, width, name)
		}
	case format.TypeInte, format.TypeReal, format.TypeDoub, format.TypeLogi:
		width = t.ElementSize(0)
	case format.TypeMess:
		width, count = 0, 0
	default:
		return Header{}, fmt.Errorf("%w: %w: %s", errs.ErrInvalidArgument, errs.ErrUnknownArrayType, t)
	}

	return Header{Name: strings.TrimRight(name, " "), Type: t, Width: width, Count: count}, nil
}

// ElementSize returns the on-disk size of one element.
func (h Header) ElementSize() int {
	return h.Type.ElementSize(h.Width)
}

// Tag returns the 4-character type tag.
func (h Header) Tag() string {
	return h.Type.Tag(h.Width)
}

// splitCount returns the X231 multiplier and the count carried by the final header.
func (h Header) splitCount() (int64, int32) {
	if h.Count <= MaxHeaderCount {
		return 0, int32(h.Count)
	}

	return h.Count / x231Unit, int32(h.Count % x231Unit)
}

// AppendBinary appends the header record(s) of h to dst.
func (h Header) AppendBinary(dst []byte, engine endian.EndianEngine) []byte {
	high, low := h.splitCount()
	if high > 0 {
		dst = appendHeaderRecord(dst, engine, h.Name, int32(-high), format.TypeX231.String())
	}

	return appendHeaderRecord(dst, engine, h.Name, low, h.Tag())
}

func appendHeaderRecord(dst []byte, engine endian.EndianEngine, name string, count int32, tag string) []byte {
	dst = engine.AppendUint32(dst, HeaderPayloadSize)
	dst = fmt.Appendf(dst, "%-8s", name)
	dst = engine.AppendUint32(dst, uint32(count))
	dst = fmt.Appendf(dst, "%-4s", tag)

	return engine.AppendUint32(dst, HeaderPayloadSize)
}

// AppendFormatted appends the header line(s) of h to dst.
func (h Header) AppendFormatted(dst []byte) []byte {
	high, low := h.splitCount()
	if high > 0 {
		dst = fmt.Appendf(dst, formattedHdrFmt, h.Name, -high, format.TypeX231.String())
	}

	return fmt.Appendf(dst, formattedHdrFmt, h.Name, low, h.Tag())
}

// rawHeader is one header as it appears on disk, before X231 folding.
type rawHeader struct {
	name  string
	count int64
	tag   string
}

func parseBinaryPayload(payload []byte, engine endian.EndianEngine) (rawHeader, error) {
	if len(payload) != HeaderPayloadSize {
		return rawHeader{}, fmt.Errorf("%w: %w: %d bytes", errs.ErrInvalidFormat, errs.ErrInvalidHeaderSize, len(payload))
	}

	return rawHeader{
		name:  string(bytes.TrimRight(payload[:NameWidth], " ")),
		count: int64(int32(engine.Uint32(payload[NameWidth:]))),
		tag:   string(payload[NameWidth+4:]),
	}, nil
}

// resolve turns one raw header, or an X231 sentinel plus its follow-up, into a Header.
func resolve(first rawHeader, next func() (rawHeader, error)) (Header, error) {
	raw := first
	var high int64
	if first.tag == format.TypeX231.String() {
		if first.count >= 0 {
			return Header{}, fmt.Errorf("%w: X231 header for %s has non-negative count %d", errs.ErrInvalidFormat, first.name, first.count)
		}

		second, err := next()
		if err != nil {
			return Header{}, err
		}
		if second.name != first.name {
			return Header{}, fmt.Errorf("%w: X231 header %s followed by %s", errs.ErrInvalidFormat, first.name, second.name)
		}

		high = -first.count
		raw = second
	}

	t, width, ok := format.ParseTag(raw.tag)
	if !ok || t == format.TypeX231 {
		return Header{}, fmt.Errorf("%w: %w: %q for %s", errs.ErrInvalidFormat, errs.ErrUnknownArrayType, raw.tag, raw.name)
	}
	if raw.count < 0 {
		return Header{}, fmt.Errorf("%w: negative element count %d for %s", errs.ErrInvalidFormat, raw.count, raw.name)
	}

	return Header{
		Name:  raw.name,
		Type:  t,
		Width: width,
		Count: high*x231Unit + raw.count,
	}, nil
}

// ParseFormattedHeader parses the header line(s) starting at or after pos.
//
// Returns:
//   - Header: the parsed header
//   - int: offset just past the header line
//   - error: errs.ErrInvalidFormat for malformed lines
func ParseFormattedHeader(data []byte, pos int) (Header, int, error) {
	first, next, err := parseFormattedLine(data, pos)
	if err != nil {
		return Header{}, pos, err
	}

	h, err := resolve(first, func() (rawHeader, error) {
		raw, after, lineErr := parseFormattedLine(data, next)
		if lineErr == nil {
			next = after
		}

		return raw, lineErr
	})
	if err != nil {
		return Header{}, pos, err
	}

	return h, next, nil
}

func parseFormattedLine(data []byte, pos int) (rawHeader, int, error) {
	for pos < len(data) && isBlank(data[pos]) {
		pos++
	}

	start := pos
	end := bytes.IndexByte(data[pos:], '\n')
	if end < 0 {
		end = len(data)
	} else {
		end += pos
	}
	line := data[start:end]

	// 'NAME    '  count 'TYPE'
	if len(line) < NameWidth+2 || line[0] != '\'' || line[NameWidth+1] != '\'' {
		return rawHeader{}, pos, fmt.Errorf("%w: malformed header line at offset %d", errs.ErrInvalidFormat, start)
	}

	name := string(bytes.TrimRight(line[1:NameWidth+1], " "))
	rest := line[NameWidth+2:]
	q := bytes.IndexByte(rest, '\'')
	if q < 0 || len(rest) < q+TagWidth+2 || rest[q+TagWidth+1] != '\'' {
		return rawHeader{}, pos, fmt.Errorf("%w: malformed header line at offset %d", errs.ErrInvalidFormat, start)
	}

	count, err := strconv.ParseInt(string(bytes.TrimSpace(rest[:q])), 10, 64)
	if err != nil {
		return rawHeader{}, pos, fmt.Errorf("%w: bad element count in header at offset %d", errs.ErrInvalidFormat, start)
	}

	next := end
	if next < len(data) {
		next++
	}

	return rawHeader{name: name, count: count, tag: string(rest[q+1 : q+1+TagWidth])}, next, nil
}

func isBlank(b byte) bool {
	return b == ' ' || b == '\n' || b == '\r' || b == '\t'
}
