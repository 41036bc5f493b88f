package rft

import (
	"log/slog"

	"github.com/arloliu/eclio/eclfile"
	"github.com/arloliu/eclio/internal/options"
)

type config struct {
	logger   *slog.Logger
	fileOpts []eclfile.ReaderOption
}

// Option configures Open and New.
type Option = options.Option[*config]

func newConfig(opts []Option) (*config, error) {
	cfg := &config{logger: slog.New(slog.DiscardHandler)}
	if err := options.Apply(cfg, opts...); err != nil {
		return nil, err
	}

	return cfg, nil
}

// WithLogger sets the logger.
func WithLogger(logger *slog.Logger) Option {
	return options.NoError(func(c *config) {
		if logger != nil {
			c.logger = logger
			c.fileOpts = append(c.fileOpts, eclfile.WithLogger(logger))
		}
	})
}

// WithMmap memory-maps the RFT file.
func WithMmap() Option {
	return options.NoError(func(c *config) {
		c.fileOpts = append(c.fileOpts, eclfile.WithMmap())
	})
}

type writerConfig struct {
	formatted  bool
	appendMode bool
	logger     *slog.Logger
}

// WriterOption configures Create.
type WriterOption = options.Option[*writerConfig]

func newWriterConfig(opts []WriterOption) (*writerConfig, error) {
	cfg := &writerConfig{logger: slog.New(slog.DiscardHandler)}
	if err := options.Apply(cfg, opts...); err != nil {
		return nil, err
	}

	return cfg, nil
}

// WithFormatted selects FRFT output.
func WithFormatted(formatted bool) WriterOption {
	return options.NoError(func(c *writerConfig) {
		c.formatted = formatted
	})
}

// WithAppend adds reports to an existing file.
func WithAppend() WriterOption {
	return options.NoError(func(c *writerConfig) {
		c.appendMode = true
	})
}

// WithWriterLogger sets the logger.
func WithWriterLogger(logger *slog.Logger) WriterOption {
	return options.NoError(func(c *writerConfig) {
		if logger != nil {
			c.logger = logger
		}
	})
}
