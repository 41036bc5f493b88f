package summary

import (
	"log/slog"

	"github.com/arloliu/eclio/eclfile"
	"github.com/arloliu/eclio/format"
	"github.com/arloliu/eclio/internal/options"
)

type config struct {
	baseRun  bool
	logger   *slog.Logger
	fileOpts []eclfile.ReaderOption
}

// Option configures Open and OpenExt.
type Option = options.Option[*config]

func newConfig(opts []Option) (*config, error) {
	cfg := &config{logger: slog.New(slog.DiscardHandler)}
	if err := options.Apply(cfg, opts...); err != nil {
		return nil, err
	}

	return cfg, nil
}

// WithBaseRun prepends the history of the base run (and its base runs)
// when the case was restarted from another case.
func WithBaseRun(enabled bool) Option {
	return options.NoError(func(c *config) {
		c.baseRun = enabled
	})
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

// WithMmap memory-maps the data files.
func WithMmap() Option {
	return options.NoError(func(c *config) {
		c.fileOpts = append(c.fileOpts, eclfile.WithMmap())
	})
}

type cacheConfig struct {
	replace     bool
	compression format.CompressionType
}

// CacheOption configures MakeESmryFile.
type CacheOption = options.Option[*cacheConfig]

func newCacheConfig(opts []CacheOption) (*cacheConfig, error) {
	cfg := &cacheConfig{compression: format.CompressionNone}
	if err := options.Apply(cfg, opts...); err != nil {
		return nil, err
	}

	return cfg, nil
}

// WithReplace overwrites an existing ESMRY file.
func WithReplace() CacheOption {
	return options.NoError(func(c *cacheConfig) {
		c.replace = true
	})
}

// WithCacheCompression compresses the ESMRY file.
func WithCacheCompression(compression format.CompressionType) CacheOption {
	return options.NoError(func(c *cacheConfig) {
		c.compression = compression
	})
}

type writerConfig struct {
	formatted   bool
	unified     bool
	restartRoot string
	restartStep int
	dims        [3]int
	logger      *slog.Logger
}

// WriterOption configures NewWriter.
type WriterOption = options.Option[*writerConfig]

func newWriterConfig(opts []WriterOption) (*writerConfig, error) {
	cfg := &writerConfig{unified: true, dims: [3]int{1, 1, 1}, logger: slog.New(slog.DiscardHandler)}
	if err := options.Apply(cfg, opts...); err != nil {
		return nil, err
	}

	return cfg, nil
}

// WithFormatted selects FSMSPEC/FUNSMRY/Annnn output.
func WithFormatted(formatted bool) WriterOption {
	return options.NoError(func(c *writerConfig) {
		c.formatted = formatted
	})
}

// WithUnified selects one UNSMRY file (the default) or one Snnnn file per
// report step.
func WithUnified(unified bool) WriterOption {
	return options.NoError(func(c *writerConfig) {
		c.unified = unified
	})
}

// WithRestart records that the case restarts from root at report step.
func WithRestart(root string, step int) WriterOption {
	return options.NoError(func(c *writerConfig) {
		c.restartRoot = root
		c.restartStep = step
	})
}

// WithGridDims sets the grid dimensions stored in DIMENS, used to expand
// block and connection cell numbers.
func WithGridDims(ni, nj, nk int) WriterOption {
	return options.NoError(func(c *writerConfig) {
		c.dims = [3]int{ni, nj, nk}
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
