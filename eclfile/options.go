package eclfile

import (
	"log/slog"

	"github.com/arloliu/eclio/endian"
	"github.com/arloliu/eclio/format"
	"github.com/arloliu/eclio/internal/options"
)

type readerConfig struct {
	mmap   bool
	logger *slog.Logger
}

// ReaderOption configures Open.
type ReaderOption = options.Option[*readerConfig]

func newReaderConfig(opts []ReaderOption) (*readerConfig, error) {
	cfg := &readerConfig{logger: discardLogger()}
	if err := options.Apply(cfg, opts...); err != nil {
		return nil, err
	}

	return cfg, nil
}

// WithMmap memory-maps the file instead of reading it through the file
// descriptor. Platforms without mmap fall back to regular reads.
func WithMmap() ReaderOption {
	return options.NoError(func(c *readerConfig) {
		c.mmap = true
	})
}

// WithLogger sets the logger for index and decode diagnostics.
func WithLogger(logger *slog.Logger) ReaderOption {
	return options.NoError(func(c *readerConfig) {
		if logger != nil {
			c.logger = logger
		}
	})
}

type writerConfig struct {
	formatted   bool
	appendMode  bool
	compression format.CompressionType
	engine      endian.EndianEngine
	logger      *slog.Logger
}

// WriterOption configures Create and NewWriter.
type WriterOption = options.Option[*writerConfig]

func newWriterConfig(opts []WriterOption) (*writerConfig, error) {
	cfg := &writerConfig{
		compression: format.CompressionNone,
		engine:      endian.GetDefaultEngine(),
		logger:      discardLogger(),
	}
	if err := options.Apply(cfg, opts...); err != nil {
		return nil, err
	}

	return cfg, nil
}

// WithFormatted selects formatted (text) output.
func WithFormatted(formatted bool) WriterOption {
	return options.NoError(func(c *writerConfig) {
		c.formatted = formatted
	})
}

// WithAppend appends to an existing file instead of truncating it.
func WithAppend() WriterOption {
	return options.NoError(func(c *writerConfig) {
		c.appendMode = true
	})
}

// WithCompression compresses the whole file on Close. Output is buffered in
// memory until then.
func WithCompression(compression format.CompressionType) WriterOption {
	return options.NoError(func(c *writerConfig) {
		c.compression = compression
	})
}

// WithLittleEndian writes unformatted records in little-endian byte order.
func WithLittleEndian() WriterOption {
	return options.NoError(func(c *writerConfig) {
		c.engine = endian.GetLittleEndianEngine()
	})
}

// WithWriterLogger sets the logger for write diagnostics.
func WithWriterLogger(logger *slog.Logger) WriterOption {
	return options.NoError(func(c *writerConfig) {
		if logger != nil {
			c.logger = logger
		}
	})
}

func discardLogger() *slog.Logger {
	return slog.New(slog.DiscardHandler)
}
