package encoding

import (
	"bytes"
	"fmt"
	"math"
	"strconv"
	"strings"

	"github.com/arloliu/eclio/errs"
)

// Minimum significant digits and mantissa field widths of text real cells.
const (
	RealMinDigits   = 8
	DoubleMinDigits = 14
	realFieldWidth  = 11
	doubleField     = 17
)

// AppendTextInt appends v as an integer cell.
func AppendTextInt(dst []byte, v int32) []byte {
	return fmt.Appendf(dst, " %11d", v)
}

// AppendTextReal appends v as a REAL cell.
func AppendTextReal(dst []byte, v float32) []byte {
	return appendTextFloat(dst, float64(v), 32, RealMinDigits, realFieldWidth, 'E')
}

// AppendTextDouble appends v as a DOUB cell.
func AppendTextDouble(dst []byte, v float64) []byte {
	return appendTextFloat(dst, v, 64, DoubleMinDigits, doubleField, 'D')
}

// AppendTextLogical appends v as a logical cell.
func AppendTextLogical(dst []byte, v bool) []byte {
	if v {
		return append(dst, "  T"...)
	}

	return append(dst, "  F"...)
}

// AppendTextString appends v as a quoted cell of the given width.
//
// Returns errs.ErrStringTooLong if v does not fit.
func AppendTextString(dst []byte, v string, width int) ([]byte, error) {
	if len(v) > width {
		return dst, fmt.Errorf("%w: %q exceeds width %d", errs.ErrStringTooLong, v, width)
	}

	dst = append(dst, " '"...)
	dst = append(dst, v...)
	for range width - len(v) {
		dst = append(dst, ' ')
	}

	return append(dst, '\''), nil
}

func appendTextFloat(dst []byte, v float64, bitSize, minDigits, field int, expChar byte) []byte {
	switch {
	case math.IsNaN(v):
		return appendPadded(dst, "NaN", field+6)
	case math.IsInf(v, 1):
		return appendPadded(dst, "Inf", field+6)
	case math.IsInf(v, -1):
		return appendPadded(dst, "-Inf", field+6)
	}

	mantissa, exp := fortranMantissa(v, bitSize, minDigits)
	dst = append(dst, ' ', ' ')
	dst = appendPadded(dst, mantissa, field)
	dst = append(dst, expChar)

	return fmt.Appendf(dst, "%+03d", exp)
}

// fortranMantissa renders v as 0.ddd x 10^exp with at least minDigits digits.
func fortranMantissa(v float64, bitSize, minDigits int) (string, int) {
	sign := ""
	if math.Signbit(v) {
		sign = "-"
		v = -v
	}

	digits := "0"
	exp := 0
	if v != 0 {
		s := strconv.FormatFloat(v, 'e', -1, bitSize)
		mant, expPart, _ := strings.Cut(s, "e")
		digits = strings.Replace(mant, ".", "", 1)
		e, _ := strconv.Atoi(expPart)
		exp = e + 1
	}

	if len(digits) < minDigits {
		digits += strings.Repeat("0", minDigits-len(digits))
	}

	return sign + "0." + digits, exp
}

func appendPadded(dst []byte, s string, width int) []byte {
	for range width - len(s) {
		dst = append(dst, ' ')
	}

	return append(dst, s...)
}

// ParseTextInt parses an integer cell token.
func ParseTextInt(tok []byte) (int32, error) {
	v, err := strconv.ParseInt(string(tok), 10, 32)
	if err != nil {
		return 0, fmt.Errorf("%w: integer cell %q", errs.ErrInvalidFormat, tok)
	}

	return int32(v), nil
}

// ParseTextReal parses a REAL cell token. Both E and D exponents are accepted.
func ParseTextReal(tok []byte) (float32, error) {
	v, err := parseTextFloat(tok, 32)
	return float32(v), err
}

// ParseTextDouble parses a DOUB cell token. Both E and D exponents are accepted.
func ParseTextDouble(tok []byte) (float64, error) {
	return parseTextFloat(tok, 64)
}

func parseTextFloat(tok []byte, bitSize int) (float64, error) {
	s := string(tok)
	if i := strings.IndexAny(s, "Dd"); i >= 0 {
		s = s[:i] + "E" + s[i+1:]
	}

	v, err := strconv.ParseFloat(s, bitSize)
	if err != nil {
		return 0, fmt.Errorf("%w: real cell %q", errs.ErrInvalidFormat, tok)
	}

	return v, nil
}

// ParseTextLogical parses a logical cell token.
func ParseTextLogical(tok []byte) (bool, error) {
	switch string(tok) {
	case "T", "t":
		return true, nil
	case "F", "f":
		return false, nil
	default:
		return false, fmt.Errorf("%w: logical cell %q", errs.ErrInvalidFormat, tok)
	}
}

// TextCursor walks the data region of a formatted keyword.
type TextCursor struct {
	data []byte
	pos  int
}

// NewTextCursor creates a cursor positioned at pos in data.
func NewTextCursor(data []byte, pos int) *TextCursor {
	return &TextCursor{data: data, pos: pos}
}

// Pos returns the current byte offset.
func (c *TextCursor) Pos() int {
	return c.pos
}

func (c *TextCursor) skipSpace() {
	for c.pos < len(c.data) && isSpace(c.data[c.pos]) {
		c.pos++
	}
}

// Token returns the next whitespace delimited token.
func (c *TextCursor) Token() ([]byte, error) {
	c.skipSpace()
	if c.pos >= len(c.data) {
		return nil, fmt.Errorf("%w: unexpected end of formatted data", errs.ErrInvalidFormat)
	}

	start := c.pos
	for c.pos < len(c.data) && !isSpace(c.data[c.pos]) {
		c.pos++
	}

	return c.data[start:c.pos], nil
}

// Quoted returns the content of the next quoted cell of exactly width bytes,
// with trailing blanks trimmed. The content may itself contain quotes.
func (c *TextCursor) Quoted(width int) (string, error) {
	start, end, err := c.quotedSpan(width)
	if err != nil {
		return "", err
	}

	return string(bytes.TrimRight(c.data[start:end], " ")), nil
}

func (c *TextCursor) quotedSpan(width int) (int, int, error) {
	c.skipSpace()
	end := c.pos + width + 2
	if end > len(c.data) {
		return 0, 0, fmt.Errorf("%w: unexpected end of formatted data", errs.ErrInvalidFormat)
	}
	if c.data[c.pos] != '\'' || c.data[end-1] != '\'' {
		return 0, 0, fmt.Errorf("%w: malformed string cell at offset %d", errs.ErrInvalidFormat, c.pos)
	}

	start := c.pos + 1
	c.pos = end

	return start, end - 1, nil
}

// Skip advances past count cells without decoding them. width is used for
// string cells; a zero width selects whitespace delimited tokens.
func (c *TextCursor) Skip(count int64, width int) error {
	for range count {
		var err error
		if width > 0 {
			_, _, err = c.quotedSpan(width)
		} else {
			_, err = c.Token()
		}
		if err != nil {
			return err
		}
	}

	return nil
}

func isSpace(b byte) bool {
	return b == ' ' || b == '\n' || b == '\r' || b == '\t'
}
