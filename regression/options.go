package regression

import (
	"fmt"
	"log/slog"

	"github.com/arloliu/eclio/errs"
	"github.com/arloliu/eclio/internal/options"
)

// Tolerance is an absolute and relative bound on element differences.
type Tolerance struct {
	Abs float64
	Rel float64
}

// CompareConfig holds the comparison settings.
type CompareConfig struct {
	Default  Tolerance
	Keywords map[string]Tolerance
	Ignore   map[string]bool
	Logger   *slog.Logger
}

func defaultCompareConfig() *CompareConfig {
	return &CompareConfig{
		Keywords: map[string]Tolerance{},
		Ignore:   map[string]bool{},
		Logger:   slog.New(slog.DiscardHandler),
	}
}

func (c *CompareConfig) tolerance(name string) Tolerance {
	if t, ok := c.Keywords[name]; ok {
		return t
	}

	return c.Default
}

// CompareOption is a functional option for CompareConfig.
type CompareOption = options.Option[*CompareConfig]

func checkTolerance(v float64) error {
	if v < 0 {
		return fmt.Errorf("%w: negative tolerance %g", errs.ErrInvalidArgument, v)
	}

	return nil
}

// WithAbsTolerance sets the default absolute tolerance.
func WithAbsTolerance(abs float64) CompareOption {
	return options.New(func(cfg *CompareConfig) error {
		if err := checkTolerance(abs); err != nil {
			return err
		}
		cfg.Default.Abs = abs

		return nil
	})
}

// WithRelTolerance sets the default relative tolerance.
func WithRelTolerance(rel float64) CompareOption {
	return options.New(func(cfg *CompareConfig) error {
		if err := checkTolerance(rel); err != nil {
			return err
		}
		cfg.Default.Rel = rel

		return nil
	})
}

// WithKeywordTolerance overrides the tolerances for arrays called name.
func WithKeywordTolerance(name string, abs, rel float64) CompareOption {
	return options.New(func(cfg *CompareConfig) error {
		if err := checkTolerance(abs); err != nil {
			return err
		}
		if err := checkTolerance(rel); err != nil {
			return err
		}
		cfg.Keywords[name] = Tolerance{Abs: abs, Rel: rel}

		return nil
	})
}

// WithIgnore skips the values of arrays with the given names. Their
// position, type and count are still checked.
func WithIgnore(names ...string) CompareOption {
	return options.NoError(func(cfg *CompareConfig) {
		for _, n := range names {
			cfg.Ignore[n] = true
		}
	})
}

// WithLogger sets the logger.
func WithLogger(logger *slog.Logger) CompareOption {
	return options.NoError(func(cfg *CompareConfig) {
		if logger != nil {
			cfg.Logger = logger
		}
	})
}
