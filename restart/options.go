package restart

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

// WithLogger sets the logger for step indexing diagnostics.
func WithLogger(logger *slog.Logger) Option {
	return options.NoError(func(c *config) {
		if logger != nil {
			c.logger = logger
			c.fileOpts = append(c.fileOpts, eclfile.WithLogger(logger))
		}
	})
}

// WithMmap memory-maps the restart file.
func WithMmap() Option {
	return options.NoError(func(c *config) {
		c.fileOpts = append(c.fileOpts, eclfile.WithMmap())
	})
}

type writerConfig struct {
	formatted bool
	unified   bool
	logger    *slog.Logger
}

// WriterOption configures NewWriter.
type WriterOption = options.Option[*writerConfig]

func newWriterConfig(opts []WriterOption) (*writerConfig, error) {
	cfg := &writerConfig{unified: true, logger: slog.New(slog.DiscardHandler)}
	if err := options.Apply(cfg, opts...); err != nil {
		return nil, err
	}

	return cfg, nil
}

// WithFormatted selects FUNRST/Fnnnn output.
func WithFormatted(formatted bool) WriterOption {
	return options.NoError(func(c *writerConfig) {
		c.formatted = formatted
	})
}

// WithUnified selects one UNRST file for all steps (the default) or one
// Xnnnn file per step.
func WithUnified(unified bool) WriterOption {
	return options.NoError(func(c *writerConfig) {
		c.unified = unified
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
