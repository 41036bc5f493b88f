package eclfile

import (
	"fmt"

	"github.com/arloliu/eclio/errs"
	"github.com/arloliu/eclio/format"
)

// Element is the set of Go types a keyword array can be read as.
type Element interface {
	int32 | float32 | float64 | bool | string
}

// Array is a decoded keyword array. The concrete type is one of Ints, Reals,
// Doubles, Logicals, Strings or Message.
type Array interface {
	// Type returns the on-disk element type.
	Type() format.ArrayType
	// Len returns the number of elements.
	Len() int

	isArray()
}

type (
	// Ints is an INTE array.
	Ints []int32
	// Reals is a REAL array.
	Reals []float32
	// Doubles is a DOUB array.
	Doubles []float64
	// Logicals is a LOGI array.
	Logicals []bool
	// Message is a MESS array. It has no elements.
	Message struct{}
)

// Strings is a CHAR or C0nn array.
type Strings struct {
	Values []string
	// Width is the element width; always 8 for CHAR.
	Width int
	// Fixed marks a C0nn array, even when Width is 8.
	Fixed bool
}

// NewStrings builds a CHAR array when every value fits in 8 characters and a
// C0nn array as wide as the longest value otherwise.
func NewStrings(values []string) Strings {
	width := 0
	for _, v := range values {
		width = max(width, len(v))
	}

	if width <= format.CharWidth {
		return Strings{Values: values, Width: format.CharWidth}
	}

	return Strings{Values: values, Width: width, Fixed: true}
}

func (Ints) Type() format.ArrayType     { return format.TypeInte }
func (Reals) Type() format.ArrayType    { return format.TypeReal }
func (Doubles) Type() format.ArrayType  { return format.TypeDoub }
func (Logicals) Type() format.ArrayType { return format.TypeLogi }
func (Message) Type() format.ArrayType  { return format.TypeMess }

func (s Strings) Type() format.ArrayType {
	if s.Fixed {
		return format.TypeC0nn
	}

	return format.TypeChar
}

func (a Ints) Len() int     { return len(a) }
func (a Reals) Len() int    { return len(a) }
func (a Doubles) Len() int  { return len(a) }
func (a Logicals) Len() int { return len(a) }
func (s Strings) Len() int  { return len(s.Values) }
func (Message) Len() int    { return 0 }

func (Ints) isArray()     {}
func (Reals) isArray()    {}
func (Doubles) isArray()  {}
func (Logicals) isArray() {}
func (Strings) isArray()  {}
func (Message) isArray()  {}

// FromSlice wraps values in the matching Array. Strings go through NewStrings.
func FromSlice[T Element](values []T) Array {
	switch v := any(values).(type) {
	case []int32:
		return Ints(v)
	case []float32:
		return Reals(v)
	case []float64:
		return Doubles(v)
	case []bool:
		return Logicals(v)
	case []string:
		return NewStrings(v)
	default:
		panic("unreachable")
	}
}

// Values extracts the elements of a as []T.
//
// Returns errs.ErrTypeMismatch if a does not hold elements of type T.
func Values[T Element](a Array) ([]T, error) {
	var out any
	switch v := a.(type) {
	case Ints:
		out = []int32(v)
	case Reals:
		out = []float32(v)
	case Doubles:
		out = []float64(v)
	case Logicals:
		out = []bool(v)
	case Strings:
		out = v.Values
	case Message:
		out = nil
	}

	values, ok := out.([]T)
	if !ok {
		var zero T
		return nil, fmt.Errorf("%w: %s array requested as %T", errs.ErrTypeMismatch, a.Type(), zero)
	}

	return values, nil
}

// elementType reports the array type that []T is read from.
func elementType[T Element]() format.ArrayType {
	var zero T
	switch any(zero).(type) {
	case int32:
		return format.TypeInte
	case float32:
		return format.TypeReal
	case float64:
		return format.TypeDoub
	case bool:
		return format.TypeLogi
	default:
		return format.TypeChar
	}
}
