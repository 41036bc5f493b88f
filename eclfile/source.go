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
)

// source is the byte content behind a File. Either data holds the whole
// content (formatted, compressed or memory-mapped files) or ra reads it on demand.
type source struct {
	data        []byte
	ra          io.ReaderAt
	size        int64
	closer      io.Closer
	unmap       func() error
	compression format.CompressionType
}

func (s *source) readerAt() io.ReaderAt {
	if s.ra != nil {
		return s.ra
	}

	return bytes.NewReader(s.data)
}

func (s *source) close() error {
	var err error
	if s.unmap != nil {
		err = s.unmap()
		s.unmap = nil
	}
	if s.closer != nil {
		err = errors.Join(err, s.closer.Close())
		s.closer = nil
	}
	s.data = nil
	s.ra = nil

	return err
}

func openSource(path string, cfg *readerConfig) (*source, error) {
	f, err := os.Open(path)
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return nil, fmt.Errorf("%w: %s", errs.ErrNotFound, path)
		}

		return nil, err
	}

	stat, err := f.Stat()
	if err != nil {
		_ = f.Close()
		return nil, err
	}
	size := stat.Size()

	var prefix [16]byte
	n, err := f.ReadAt(prefix[:], 0)
	if err != nil && !errors.Is(err, io.EOF) {
		_ = f.Close()
		return nil, err
	}

	if compress.Detect(prefix[:n]) != format.CompressionNone {
		defer func() { _ = f.Close() }()

		raw, err := readAllAt(f, size)
		if err != nil {
			return nil, err
		}

		return bytesSource(raw)
	}

	if cfg.mmap && size > 0 {
		data, unmap, err := mmapFile(f, size)
		if err == nil {
			_ = f.Close()
			return &source{data: data, size: size, unmap: unmap, compression: format.CompressionNone}, nil
		}
		cfg.logger.Debug("mmap unavailable, falling back to reads", "path", path, "error", err)
	}

	return &source{ra: f, size: size, closer: f, compression: format.CompressionNone}, nil
}

// bytesSource wraps in-memory content, decompressing it when needed.
func bytesSource(raw []byte) (*source, error) {
	data, typ, err := compress.DecompressAuto(raw)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", errs.ErrInvalidFormat, err)
	}

	return &source{data: data, size: int64(len(data)), compression: typ}, nil
}

// content returns the whole content, reading it into memory if necessary.
func (s *source) content() ([]byte, error) {
	if s.data != nil || s.size == 0 {
		return s.data, nil
	}

	data, err := readAllAt(s.ra, s.size)
	if err != nil {
		return nil, err
	}
	s.data = data

	return data, nil
}

func readAllAt(r io.ReaderAt, size int64) ([]byte, error) {
	out := make([]byte, size)
	var off int64
	for off < size {
		n, err := r.ReadAt(out[off:], off)
		off += int64(n)
		if err == nil {
			continue
		}
		if errors.Is(err, io.EOF) && off == size {
			break
		}

		return nil, err
	}

	return out, nil
}
