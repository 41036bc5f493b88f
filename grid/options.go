package grid

import (
	"log/slog"

	"github.com/arloliu/eclio/eclfile"
	"github.com/arloliu/eclio/internal/options"
)

type config struct {
	logger   *slog.Logger
	fileOpts []eclfile.ReaderOption
}

// Option configures Open, OpenInit, New and NewInit.
type Option = options.Option[*config]

func newConfig(opts []Option) (*config, error) {
	cfg := &config{logger: slog.New(slog.DiscardHandler)}
	if err := options.Apply(cfg, opts...); err != nil {
		return nil, err
	}

	return cfg, nil
}

// WithLogger sets the logger used while building the grid set.
func WithLogger(logger *slog.Logger) Option {
	return options.NoError(func(c *config) {
		if logger != nil {
			c.logger = logger
			c.fileOpts = append(c.fileOpts, eclfile.WithLogger(logger))
		}
	})
}

// WithMmap memory-maps the underlying keyword file.
func WithMmap() Option {
	return options.NoError(func(c *config) {
		c.fileOpts = append(c.fileOpts, eclfile.WithMmap())
	})
}
