package eclfile

import (
	"fmt"
	"log/slog"

	"github.com/arloliu/eclio/endian"
	"github.com/arloliu/eclio/errs"
	"github.com/arloliu/eclio/format"
	"github.com/arloliu/eclio/record"
)

// Entry describes one keyword array in a file.
type Entry struct {
	Name  string
	Type  format.ArrayType
	Width int
	Count int64
}

// Tag returns the on-disk type tag of the entry, such as "REAL" or "C056".
func (e Entry) Tag() string {
	return e.Type.Tag(e.Width)
}

func (e Entry) header() record.Header {
	return record.Header{Name: e.Name, Type: e.Type, Width: e.Width, Count: e.Count}
}

// span locates an entry in the file: the header start, the first data byte
// and the end of the last data record or line.
type span struct {
	header int64
	data   int64
	end    int64
}

type decodeState uint8

const (
	stateEncoded decodeState = iota
	stateDecoded
)

// cell is one memoised decode slot.
type cell struct {
	state decodeState
	value Array
}

// File is an indexed keyword file.
type File struct {
	path      string
	src       *source
	formatted bool
	engine    endian.EndianEngine
	reader    *record.Reader
	text      []byte

	entries []Entry
	spans   []span
	cache   []cell
	byName  map[string][]int
	logger  *slog.Logger
}

// Open indexes the keyword file at path.
//
// Returns:
//   - *File: the indexed file, which must be closed
//   - error: errs.ErrNotFound if the file does not exist, errs.ErrInvalidFormat
//     for malformed content
func Open(path string, opts ...ReaderOption) (*File, error) {
	cfg, err := newReaderConfig(opts)
	if err != nil {
		return nil, err
	}

	src, err := openSource(path, cfg)
	if err != nil {
		return nil, err
	}

	f, err := newFile(path, src, cfg)
	if err != nil {
		_ = src.close()
		return nil, fmt.Errorf("%s: %w", path, err)
	}

	return f, nil
}

// OpenBytes indexes an in-memory keyword file. Compressed content is
// decompressed first.
func OpenBytes(data []byte, opts ...ReaderOption) (*File, error) {
	cfg, err := newReaderConfig(opts)
	if err != nil {
		return nil, err
	}

	src, err := bytesSource(data)
	if err != nil {
		return nil, err
	}

	return newFile("", src, cfg)
}

func newFile(path string, src *source, cfg *readerConfig) (*File, error) {
	var prefix [16]byte
	n, _ := src.readerAt().ReadAt(prefix[:], 0)

	formatted, engine, err := record.Detect(prefix[:n])
	if err != nil {
		return nil, err
	}

	f := &File{
		path:      path,
		src:       src,
		formatted: formatted,
		engine:    engine,
		byName:    make(map[string][]int),
		logger:    cfg.logger,
	}

	if formatted {
		f.text, err = src.content()
		if err != nil {
			return nil, err
		}
		err = f.scanFormatted()
	} else {
		f.reader = record.NewReader(src.readerAt(), src.size, engine)
		err = f.scanBinary()
	}
	if err != nil {
		return nil, err
	}

	f.cache = make([]cell, len(f.entries))
	f.logger.Debug("indexed keyword file",
		"path", path,
		"entries", len(f.entries),
		"bytes", src.size,
		"formatted", formatted,
		"compression", src.compression.String(),
	)

	return f, nil
}

func (f *File) addEntry(h record.Header, sp span) {
	idx := len(f.entries)
	f.entries = append(f.entries, Entry{Name: h.Name, Type: h.Type, Width: h.Width, Count: h.Count})
	f.spans = append(f.spans, sp)
	f.byName[h.Name] = append(f.byName[h.Name], idx)
}

func (f *File) scanBinary() error {
	var off int64
	for off < f.reader.Size() {
		h, dataOff, err := f.reader.ReadHeader(off)
		if err != nil {
			return fmt.Errorf("keyword %d: %w", len(f.entries), err)
		}

		end, err := f.reader.Blocks(h, dataOff, nil)
		if err != nil {
			return fmt.Errorf("keyword %d: %w", len(f.entries), err)
		}

		f.addEntry(h, span{header: off, data: dataOff, end: end})
		off = end
	}

	return nil
}

func (f *File) scanFormatted() error {
	pos := 0
	for {
		for pos < len(f.text) && isBlank(f.text[pos]) {
			pos++
		}
		if pos >= len(f.text) {
			return nil
		}

		h, dataPos, err := record.ParseFormattedHeader(f.text, pos)
		if err != nil {
			return fmt.Errorf("keyword %d: %w", len(f.entries), err)
		}

		end, err := record.SkipFormatted(f.text, dataPos, h)
		if err != nil {
			return fmt.Errorf("keyword %d: %w", len(f.entries), err)
		}

		f.addEntry(h, span{header: int64(pos), data: int64(dataPos), end: int64(end)})
		pos = end
	}
}

func isBlank(b byte) bool {
	return b == ' ' || b == '\n' || b == '\r' || b == '\t'
}

// Close releases the underlying file or mapping.
func (f *File) Close() error {
	if f.src == nil {
		return nil
	}

	err := f.src.close()
	f.src = nil
	f.text = nil
	f.cache = nil

	return err
}

// Path returns the path the file was opened from, empty for in-memory files.
func (f *File) Path() string {
	return f.path
}

// Formatted reports whether the file is in formatted (text) layout.
func (f *File) Formatted() bool {
	return f.formatted
}

// Engine returns the byte order of an unformatted file, nil for formatted files.
func (f *File) Engine() endian.EndianEngine {
	return f.engine
}

// Compression returns the compression the file content was stored with.
func (f *File) Compression() format.CompressionType {
	if f.src == nil {
		return format.CompressionNone
	}

	return f.src.compression
}

// Len returns the number of entries.
func (f *File) Len() int {
	return len(f.entries)
}

// List returns all entries in on-disk order.
func (f *File) List() []Entry {
	out := make([]Entry, len(f.entries))
	copy(out, f.entries)

	return out
}

// Entry returns entry i.
func (f *File) Entry(i int) (Entry, error) {
	if err := f.checkIndex(i); err != nil {
		return Entry{}, err
	}

	return f.entries[i], nil
}

// HasKey reports whether at least one entry is named name.
func (f *File) HasKey(name string) bool {
	return len(f.byName[name]) > 0
}

// Count returns the number of entries named name.
func (f *File) Count(name string) int {
	return len(f.byName[name])
}

// Indices returns the entry indices of every occurrence of name.
func (f *File) Indices(name string) []int {
	idx := f.byName[name]
	out := make([]int, len(idx))
	copy(out, idx)

	return out
}

// IndexOf returns the entry index of the given occurrence (0-based) of name.
//
// Returns:
//   - error: errs.ErrNotFound if name is absent, errs.ErrOutOfRange if the
//     occurrence does not exist
func (f *File) IndexOf(name string, occurrence int) (int, error) {
	idx, ok := f.byName[name]
	if !ok {
		return -1, fmt.Errorf("%w: keyword %s", errs.ErrNotFound, name)
	}
	if occurrence < 0 || occurrence >= len(idx) {
		return -1, fmt.Errorf("%w: occurrence %d of %s, file has %d", errs.ErrOutOfRange, occurrence, name, len(idx))
	}

	return idx[occurrence], nil
}

// Offset returns the byte offset of the header of entry i.
func (f *File) Offset(i int) (int64, error) {
	if err := f.checkIndex(i); err != nil {
		return 0, err
	}

	return f.spans[i].header, nil
}

func (f *File) checkIndex(i int) error {
	if i < 0 || i >= len(f.entries) {
		return fmt.Errorf("%w: entry index %d, file has %d entries", errs.ErrOutOfRange, i, len(f.entries))
	}
	if f.src == nil {
		return fmt.Errorf("%w: file is closed", errs.ErrInvalidArgument)
	}

	return nil
}
