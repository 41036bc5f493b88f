package record

import (
	"math"

	"github.com/arloliu/eclio/format"
)

const (
	MarkerSize        = 4                 // size of one record length marker
	HeaderPayloadSize = 16                // name(8) + count(4) + type(4)
	HeaderRecordSize  = HeaderPayloadSize + 2*MarkerSize
	NameWidth         = 8                 // keyword names are padded to 8 characters
	TagWidth          = 4                 // type tags are 4 characters
	MaxC0nnWidth      = 999               // widest C0nn element
	MaxHeaderCount    = math.MaxInt32     // largest count a single header can carry
	x231Unit          = int64(1) << 31    // count unit of the X231 sentinel header
	FormattedLineLen  = 80                // nominal line length of formatted files
	formattedHdrFmt   = " '%-8s' %11d '%-4s'\n"
)

// Block caps in elements.
const (
	NumericBlockSize = 1000
	StringBlockSize  = 105
)

// BlockSize returns the maximum number of elements in one data record of type t.
func BlockSize(t format.ArrayType) int {
	if t.IsString() {
		return StringBlockSize
	}

	return NumericBlockSize
}

// Columns returns the number of cells per line in formatted files.
func Columns(t format.ArrayType, width int) int {
	switch t {
	case format.TypeInte:
		return 6
	case format.TypeReal:
		return 4
	case format.TypeDoub:
		return 3
	case format.TypeLogi:
		return 25
	case format.TypeChar:
		return 7
	case format.TypeC0nn:
		return max(1, FormattedLineLen/(width+3))
	default:
		return 1
	}
}
