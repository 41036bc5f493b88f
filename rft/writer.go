package rft

import (
	"errors"
	"fmt"
	"time"

	"github.com/arloliu/eclio/eclfile"
	"github.com/arloliu/eclio/errs"
)

const welletcSize = 16

// Header is the leading TIME/DATE/WELLETC block of a report.
type Header struct {
	Well string
	LGR  string
	Date time.Time
	// Elapsed is the simulated time in days.
	Elapsed float32

	// Kind flags the data in the report: R (RFT), P (PLT) or S (segment).
	Kind string

	TimeUnit, DepthUnit, PressureUnit string
}

func (h Header) welletc() []string {
	out := make([]string, welletcSize)
	out[0] = valueOr(h.TimeUnit, "DAYS")
	out[1] = h.Well
	out[2] = h.LGR
	out[3] = valueOr(h.DepthUnit, "METRES")
	out[4] = valueOr(h.PressureUnit, "BARSA")
	out[5] = valueOr(h.Kind, "R")

	return out
}

func valueOr(v, def string) string {
	if v == "" {
		return def
	}

	return v
}

// Writer writes RFT reports. Profile arrays are written with the promoted
// eclfile.Writer methods after WriteHeader.
type Writer struct {
	*eclfile.Writer

	path    string
	reports int
}

// Create opens an RFT file for writing.
//
// Returns:
//   - error: errs.ErrUnsupportedCombination when appending in a layout other
//     than the existing file's
func Create(path string, opts ...WriterOption) (*Writer, error) {
	cfg, err := newWriterConfig(opts)
	if err != nil {
		return nil, err
	}

	fileOpts := []eclfile.WriterOption{eclfile.WithFormatted(cfg.formatted), eclfile.WithWriterLogger(cfg.logger)}
	if cfg.appendMode {
		if err := checkLayout(path, cfg.formatted); err != nil {
			return nil, err
		}
		fileOpts = append(fileOpts, eclfile.WithAppend())
	}

	out, err := eclfile.Create(path, fileOpts...)
	if err != nil {
		return nil, err
	}
	cfg.logger.Debug("opened RFT file", "path", path, "append", cfg.appendMode)

	return &Writer{Writer: out, path: path}, nil
}

func checkLayout(path string, formatted bool) error {
	f, err := eclfile.Open(path)
	if errors.Is(err, errs.ErrNotFound) {
		return nil
	}
	if err != nil {
		return err
	}
	defer f.Close()

	if f.Len() > 0 && f.Formatted() != formatted {
		return fmt.Errorf("%w: appending formatted=%t to %s", errs.ErrUnsupportedCombination, formatted, path)
	}

	return nil
}

// WriteHeader starts a report.
func (w *Writer) WriteHeader(h Header) error {
	if h.Well == "" {
		return fmt.Errorf("%w: RFT report without well name", errs.ErrInvalidArgument)
	}

	if err := w.WriteReals("TIME", []float32{h.Elapsed}); err != nil {
		return err
	}
	y, m, d := h.Date.Date()
	if err := w.WriteInts("DATE", []int32{int32(d), int32(m), int32(y)}); err != nil {
		return err
	}
	if err := w.WriteStrings("WELLETC", h.welletc()); err != nil {
		return err
	}
	w.reports++

	return nil
}

// Path returns the file being written.
func (w *Writer) Path() string {
	return w.path
}

// Reports returns the number of headers written by w.
func (w *Writer) Reports() int {
	return w.reports
}
