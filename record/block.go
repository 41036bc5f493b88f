package record

import "github.com/arloliu/eclio/format"

// Split maps a logical array of count elements of type t onto its physical
// data records and returns the element count of each, in order.
//
// MESS arrays and empty arrays have no data records.
func Split(count int64, t format.ArrayType) []int {
	if count <= 0 || t == format.TypeMess {
		return nil
	}

	size := int64(BlockSize(t))
	n := (count + size - 1) / size
	blocks := make([]int, 0, n)
	for remaining := count; remaining > 0; remaining -= size {
		blocks = append(blocks, int(min(remaining, size)))
	}

	return blocks
}

// DataSize returns the number of bytes the data records of h occupy in an
// unformatted file, markers included.
func DataSize(h Header) int64 {
	if h.Count <= 0 || h.Type == format.TypeMess {
		return 0
	}

	size := int64(BlockSize(h.Type))
	blocks := (h.Count + size - 1) / size

	return h.Count*int64(h.ElementSize()) + blocks*2*MarkerSize
}

// Size returns the total number of bytes h occupies in an unformatted file,
// header records included.
func Size(h Header) int64 {
	headers := int64(HeaderRecordSize)
	if h.Count > MaxHeaderCount {
		headers *= 2
	}

	return headers + DataSize(h)
}
