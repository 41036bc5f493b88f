package record

import (
	"fmt"
	"io"
	"slices"

	"github.com/arloliu/eclio/endian"
	"github.com/arloliu/eclio/errs"
	"github.com/arloliu/eclio/format"
)

// Record is one length-delimited physical record of an unformatted file.
type Record struct {
	// Offset is the position of the leading length marker.
	Offset int64
	// Length is the payload length in bytes.
	Length int64
}

// PayloadOffset returns the position of the first payload byte.
func (r Record) PayloadOffset() int64 {
	return r.Offset + MarkerSize
}

// End returns the position just past the trailing length marker.
func (r Record) End() int64 {
	return r.Offset + r.Length + 2*MarkerSize
}

// Reader is a length-checked cursor over the records of an unformatted file.
// It holds no position of its own; every call names the offset it reads from.
type Reader struct {
	src    io.ReaderAt
	size   int64
	engine endian.EndianEngine
}

// NewReader creates a Reader over size bytes of src.
func NewReader(src io.ReaderAt, size int64, engine endian.EndianEngine) *Reader {
	return &Reader{src: src, size: size, engine: engine}
}

// Engine returns the byte order of the file.
func (r *Reader) Engine() endian.EndianEngine {
	return r.engine
}

// Size returns the number of readable bytes.
func (r *Reader) Size() int64 {
	return r.size
}

func (r *Reader) readAt(buf []byte, off int64) error {
	if off < 0 || off+int64(len(buf)) > r.size {
		return fmt.Errorf("%w: %w at offset %d", errs.ErrInvalidFormat, errs.ErrTruncatedRecord, off)
	}

	n, err := r.src.ReadAt(buf, off)
	if n == len(buf) {
		return nil
	}
	if err == nil || err == io.EOF {
		err = errs.ErrTruncatedRecord
	}

	return fmt.Errorf("%w: read at offset %d: %w", errs.ErrInvalidFormat, off, err)
}

// Record reads and validates the framing of the record starting at off.
//
// Returns:
//   - Record: the record span
//   - error: errs.ErrInvalidFormat when the markers differ, the length is
//     negative or the record runs past the end of the file
func (r *Reader) Record(off int64) (Record, error) {
	var marker [MarkerSize]byte
	if err := r.readAt(marker[:], off); err != nil {
		return Record{}, err
	}

	length := int64(int32(r.engine.Uint32(marker[:])))
	if length < 0 {
		return Record{}, fmt.Errorf("%w: negative record length %d at offset %d", errs.ErrInvalidFormat, length, off)
	}

	rec := Record{Offset: off, Length: length}
	if rec.End() > r.size {
		return Record{}, fmt.Errorf("%w: %w at offset %d", errs.ErrInvalidFormat, errs.ErrTruncatedRecord, off)
	}

	var tail [MarkerSize]byte
	if err := r.readAt(tail[:], rec.PayloadOffset()+length); err != nil {
		return Record{}, err
	}
	if r.engine.Uint32(tail[:]) != r.engine.Uint32(marker[:]) {
		return Record{}, fmt.Errorf("%w: %w at offset %d", errs.ErrInvalidFormat, errs.ErrRecordMarkerMismatch, off)
	}

	return rec, nil
}

// Payload appends the payload of rec to dst.
func (r *Reader) Payload(rec Record, dst []byte) ([]byte, error) {
	start := len(dst)
	dst = slices.Grow(dst, int(rec.Length))[:start+int(rec.Length)]
	if err := r.readAt(dst[start:], rec.PayloadOffset()); err != nil {
		return dst[:start], err
	}

	return dst, nil
}

func (r *Reader) rawHeader(off int64) (rawHeader, int64, error) {
	rec, err := r.Record(off)
	if err != nil {
		return rawHeader{}, off, err
	}

	var buf [HeaderPayloadSize]byte
	if rec.Length != HeaderPayloadSize {
		return rawHeader{}, off, fmt.Errorf("%w: %w: %d bytes at offset %d", errs.ErrInvalidFormat, errs.ErrInvalidHeaderSize, rec.Length, off)
	}
	if err := r.readAt(buf[:], rec.PayloadOffset()); err != nil {
		return rawHeader{}, off, err
	}

	raw, err := parseBinaryPayload(buf[:], r.engine)

	return raw, rec.End(), err
}

// ReadHeader reads the keyword header at off, folding an X231 sentinel into
// the element count.
//
// Returns:
//   - Header: the parsed header
//   - int64: offset of the first data record
//   - error: errs.ErrInvalidFormat for malformed headers
func (r *Reader) ReadHeader(off int64) (Header, int64, error) {
	first, next, err := r.rawHeader(off)
	if err != nil {
		return Header{}, off, err
	}

	h, err := resolve(first, func() (rawHeader, error) {
		raw, after, headerErr := r.rawHeader(next)
		if headerErr == nil {
			next = after
		}

		return raw, headerErr
	})
	if err != nil {
		return Header{}, off, err
	}

	return h, next, nil
}

// Blocks walks the data records of h starting at off, validating every
// record length against the block split of h, and calls fn for each one.
// A nil fn only validates.
//
// Returns:
//   - int64: offset just past the last data record
//   - error: errs.ErrInvalidFormat for framing or length errors
func (r *Reader) Blocks(h Header, off int64, fn func(rec Record) error) (int64, error) {
	if h.Count <= 0 || h.Type == format.TypeMess {
		return off, nil
	}

	elem := int64(h.ElementSize())
	size := int64(BlockSize(h.Type))
	for remaining := h.Count; remaining > 0; remaining -= size {
		rec, err := r.Record(off)
		if err != nil {
			return off, fmt.Errorf("data of %s: %w", h.Name, err)
		}

		if want := min(remaining, size) * elem; rec.Length != want {
			return off, fmt.Errorf("%w: data record of %s at offset %d has %d bytes, want %d",
				errs.ErrInvalidFormat, h.Name, off, rec.Length, want)
		}

		if fn != nil {
			if err := fn(rec); err != nil {
				return off, err
			}
		}
		off = rec.End()
	}

	return off, nil
}

// ReadData returns the concatenated payload of all data records of h.
func (r *Reader) ReadData(h Header, off int64) ([]byte, error) {
	data := make([]byte, 0, h.Count*int64(h.ElementSize()))
	_, err := r.Blocks(h, off, func(rec Record) error {
		var err error
		data, err = r.Payload(rec, data)

		return err
	})
	if err != nil {
		return nil, err
	}

	return data, nil
}
