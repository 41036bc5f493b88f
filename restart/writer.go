package restart

import (
	"errors"
	"fmt"
	"log/slog"
	"os"

	"github.com/arloliu/eclio/eclfile"
	"github.com/arloliu/eclio/errs"
	"github.com/arloliu/eclio/format"
	"github.com/arloliu/eclio/resultset"
)

// Writer writes the arrays of one report step. The keyword writer methods
// (WriteInts, WriteStrings, ...) are promoted from the embedded
// eclfile.Writer.
type Writer struct {
	*eclfile.Writer

	path   string
	step   int
	lgr    string
	logger *slog.Logger
}

// NewWriter starts report step in the restart file of rs.
//
// Unified output appends to CASE.UNRST (or FUNRST) after removing every
// existing step numbered step or later, then writes SEQNUM. Separate output
// creates CASE.Xnnnn (or Fnnnn) and writes no SEQNUM.
//
// Returns:
//   - error: errs.ErrUnsupportedCombination when the existing unified file is
//     compressed and cannot be truncated in place
func NewWriter(rs resultset.ResultSet, step int, opts ...WriterOption) (*Writer, error) {
	cfg, err := newWriterConfig(opts)
	if err != nil {
		return nil, err
	}
	if step < 0 {
		return nil, fmt.Errorf("%w: report step %d", errs.ErrInvalidArgument, step)
	}

	path := rs.FileName(resultset.RestartExt(step, cfg.formatted, cfg.unified))
	fileOpts := []eclfile.WriterOption{
		eclfile.WithFormatted(cfg.formatted),
		eclfile.WithWriterLogger(cfg.logger),
	}

	if cfg.unified {
		if err := truncateFrom(path, step, cfg.logger); err != nil {
			return nil, err
		}
		fileOpts = append(fileOpts, eclfile.WithAppend())
	}

	out, err := eclfile.Create(path, fileOpts...)
	if err != nil {
		return nil, err
	}

	w := &Writer{Writer: out, path: path, step: step, logger: cfg.logger}
	if cfg.unified {
		if err := w.WriteInts("SEQNUM", []int32{int32(step)}); err != nil {
			_ = out.Close()
			return nil, err
		}
	}

	return w, nil
}

// truncateFrom cuts a unified restart file at the first SEQNUM >= step.
func truncateFrom(path string, step int, logger *slog.Logger) error {
	f, err := eclfile.Open(path)
	if errors.Is(err, errs.ErrNotFound) {
		return nil
	}
	if err != nil {
		return err
	}
	defer f.Close()

	if f.Compression() != format.CompressionNone {
		return fmt.Errorf("%w: cannot rewrite compressed restart file %s", errs.ErrUnsupportedCombination, path)
	}

	for _, idx := range f.Indices("SEQNUM") {
		v, err := eclfile.GetAt[int32](f, idx)
		if err != nil {
			return err
		}
		if len(v) == 0 || int(v[0]) < step {
			continue
		}

		off, err := f.Offset(idx)
		if err != nil {
			return err
		}
		logger.Debug("truncating unified restart file", "path", path, "from_step", v[0], "offset", off)

		return os.Truncate(path, off)
	}

	return nil
}

// Path returns the file being written.
func (w *Writer) Path() string {
	return w.path
}

// Step returns the report step being written.
func (w *Writer) Step() int {
	return w.step
}

// BeginLGR opens the block of LGR name. Blocks do not nest.
func (w *Writer) BeginLGR(name string) error {
	if w.lgr != "" {
		return fmt.Errorf("%w: LGR %s is still open", errs.ErrInvalidArgument, w.lgr)
	}
	if err := w.WriteStrings("LGR", []string{name}); err != nil {
		return err
	}
	w.lgr = name

	return nil
}

// EndLGR closes the open LGR block.
func (w *Writer) EndLGR() error {
	if w.lgr == "" {
		return fmt.Errorf("%w: no open LGR block", errs.ErrInvalidArgument)
	}
	if err := w.WriteMessage("ENDLGR"); err != nil {
		return err
	}
	w.lgr = ""

	return nil
}

// Close finishes the step.
func (w *Writer) Close() error {
	if w.lgr != "" {
		w.logger.Warn("closing restart step with open LGR block", "step", w.step, "lgr", w.lgr)
	}

	return w.Writer.Close()
}
