package eclfile

import (
	"bytes"
	"errors"
	"fmt"
	"io"
	"io/fs"
	"os"

	"github.com/arloliu/eclio/compress"
	"github.com/arloliu/eclio/errs"
	"github.com/arloliu/eclio/format"
	"github.com/arloliu/eclio/internal/pool"
)

// Writer appends keyword arrays to a file or stream.
type Writer struct {
	cfg  *writerConfig
	path string

	out       io.Writer
	file      *os.File      // set when writing uncompressed to a path
	staging   *bytes.Buffer // set when compressing; flushed on Close
	sink      io.Writer     // destination of the compressed stream for NewWriter
	committed int64
	arrays    int
	closed    bool
}

// Create opens path for writing. The file is truncated unless WithAppend is
// given.
func Create(path string, opts ...WriterOption) (*Writer, error) {
	cfg, err := newWriterConfig(opts)
	if err != nil {
		return nil, err
	}

	w := &Writer{cfg: cfg, path: path}
	if cfg.compression != format.CompressionNone {
		w.staging = new(bytes.Buffer)
		w.out = w.staging
		if cfg.appendMode {
			if err := w.loadExisting(path); err != nil {
				return nil, err
			}
		}

		return w, nil
	}

	flags := os.O_CREATE | os.O_WRONLY | os.O_TRUNC
	if cfg.appendMode {
		flags = os.O_CREATE | os.O_WRONLY | os.O_APPEND
	}

	f, err := os.OpenFile(path, flags, 0o644)
	if err != nil {
		return nil, err
	}

	stat, err := f.Stat()
	if err != nil {
		_ = f.Close()
		return nil, err
	}

	w.file = f
	w.out = f
	w.committed = stat.Size()

	return w, nil
}

// NewWriter writes keyword arrays to out. With WithCompression the stream is
// buffered and written to out on Close.
func NewWriter(out io.Writer, opts ...WriterOption) (*Writer, error) {
	cfg, err := newWriterConfig(opts)
	if err != nil {
		return nil, err
	}

	w := &Writer{cfg: cfg, out: out}
	if cfg.compression != format.CompressionNone {
		w.staging = new(bytes.Buffer)
		w.sink = out
		w.out = w.staging
	}

	return w, nil
}

func (w *Writer) loadExisting(path string) error {
	raw, err := os.ReadFile(path)
	if errors.Is(err, fs.ErrNotExist) {
		return nil
	}
	if err != nil {
		return err
	}

	content, _, err := compress.DecompressAuto(raw)
	if err != nil {
		return fmt.Errorf("%w: %s: %w", errs.ErrInvalidFormat, path, err)
	}
	w.staging.Write(content)
	w.committed = int64(len(content))

	return nil
}

// Formatted reports whether the writer produces formatted output.
func (w *Writer) Formatted() bool {
	return w.cfg.formatted
}

// Size returns the number of bytes of complete arrays in the output,
// including content that existed before an append.
func (w *Writer) Size() int64 {
	return w.committed
}

// WriteArray appends one logical array.
//
// Returns:
//   - error: errs.ErrInvalidArgument for names longer than 8 characters or
//     strings wider than the array width; I/O errors from the sink
func (w *Writer) WriteArray(name string, a Array) error {
	if w.closed {
		return fmt.Errorf("%w: writer is closed", errs.ErrInvalidArgument)
	}

	buf := pool.GetRecordBuffer()
	defer pool.PutRecordBuffer(buf)

	data, err := appendArray(buf.B, name, a, w.cfg.formatted, w.cfg.engine)
	buf.B = data
	if err != nil {
		return err
	}

	n, err := w.out.Write(buf.B)
	if err != nil {
		return w.rollback(name, err)
	}

	w.committed += int64(n)
	w.arrays++

	return nil
}

// rollback removes the bytes of a partially written array.
func (w *Writer) rollback(name string, cause error) error {
	switch {
	case w.file != nil:
		if err := w.file.Truncate(w.committed); err != nil {
			return errors.Join(fmt.Errorf("write %s: %w", name, cause), err)
		}
		if !w.cfg.appendMode {
			if _, err := w.file.Seek(w.committed, io.SeekStart); err != nil {
				return errors.Join(fmt.Errorf("write %s: %w", name, cause), err)
			}
		}
	case w.staging != nil:
		w.staging.Truncate(int(w.committed))
	}

	return fmt.Errorf("write %s: %w", name, cause)
}

// WriteInts appends an INTE array.
func (w *Writer) WriteInts(name string, values []int32) error {
	return w.WriteArray(name, Ints(values))
}

// WriteReals appends a REAL array.
func (w *Writer) WriteReals(name string, values []float32) error {
	return w.WriteArray(name, Reals(values))
}

// WriteDoubles appends a DOUB array.
func (w *Writer) WriteDoubles(name string, values []float64) error {
	return w.WriteArray(name, Doubles(values))
}

// WriteLogicals appends a LOGI array.
func (w *Writer) WriteLogicals(name string, values []bool) error {
	return w.WriteArray(name, Logicals(values))
}

// WriteStrings appends a CHAR array, or a C0nn array as wide as the longest
// value when any value exceeds 8 characters.
func (w *Writer) WriteStrings(name string, values []string) error {
	return w.WriteArray(name, NewStrings(values))
}

// WriteStringsWidth appends a C0nn array of the given width.
func (w *Writer) WriteStringsWidth(name string, values []string, width int) error {
	return w.WriteArray(name, Strings{Values: values, Width: width, Fixed: true})
}

// WriteMessage appends a MESS marker.
func (w *Writer) WriteMessage(name string) error {
	return w.WriteArray(name, Message{})
}

// Write appends values as the array type matching T.
func Write[T Element](w *Writer, name string, values []T) error {
	return w.WriteArray(name, FromSlice(values))
}

// Close flushes compressed output and closes the file.
func (w *Writer) Close() error {
	if w.closed {
		return nil
	}
	w.closed = true

	var err error
	if w.staging != nil {
		err = w.flushCompressed()
	}
	if w.file != nil {
		err = errors.Join(err, w.file.Close())
	}

	w.cfg.logger.Debug("closed keyword writer",
		"path", w.path,
		"arrays", w.arrays,
		"bytes", w.committed,
		"formatted", w.cfg.formatted,
		"compression", w.cfg.compression.String(),
	)

	return err
}

func (w *Writer) flushCompressed() error {
	codec, err := compress.GetCodec(w.cfg.compression)
	if err != nil {
		return err
	}

	packed, err := codec.Compress(w.staging.Bytes())
	if err != nil {
		return err
	}

	if w.sink != nil {
		_, err = w.sink.Write(packed)
		return err
	}

	return os.WriteFile(w.path, packed, 0o644)
}
