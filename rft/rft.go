// Package rft reads and writes RFT files: pressure and saturation profiles
// measured along a well at a given date.
//
// Each report starts at a TIME array, followed by DATE (day, month, year),
// WELLETC (well name at index 1) and the profile arrays of the report.
package rft

import (
	"fmt"
	"log/slog"
	"slices"
	"time"

	"github.com/arloliu/eclio/eclfile"
	"github.com/arloliu/eclio/errs"
)

// Report identifies one RFT report.
type Report struct {
	Well string
	Date time.Time
}

type reportKey struct {
	well string
	date time.Time
}

// report is the entry range [first, end) of one report.
type report struct {
	Report
	first, end int
}

// ERft is an indexed RFT file.
type ERft struct {
	file    *eclfile.File
	owned   bool
	reports []report
	byKey   map[reportKey]int
	logger  *slog.Logger
}

// Open indexes the RFT file at path.
func Open(path string, opts ...Option) (*ERft, error) {
	cfg, err := newConfig(opts)
	if err != nil {
		return nil, err
	}

	f, err := eclfile.Open(path, cfg.fileOpts...)
	if err != nil {
		return nil, err
	}

	r, err := newERft(f, cfg)
	if err != nil {
		_ = f.Close()
		return nil, fmt.Errorf("%s: %w", path, err)
	}
	r.owned = true

	return r, nil
}

// New indexes an already open RFT file. The caller keeps ownership of f.
func New(f *eclfile.File, opts ...Option) (*ERft, error) {
	cfg, err := newConfig(opts)
	if err != nil {
		return nil, err
	}

	return newERft(f, cfg)
}

func newERft(f *eclfile.File, cfg *config) (*ERft, error) {
	r := &ERft{file: f, byKey: make(map[reportKey]int), logger: cfg.logger}

	starts := f.Indices("TIME")
	if len(starts) > 0 && starts[0] > 0 {
		r.logger.Warn("arrays before first TIME ignored", "path", f.Path(), "count", starts[0])
	}

	for n, first := range starts {
		end := f.Len()
		if n+1 < len(starts) {
			end = starts[n+1]
		}

		rep, err := r.readHeader(first, end)
		if err != nil {
			return nil, err
		}

		key := reportKey{well: rep.Well, date: rep.Date}
		if _, dup := r.byKey[key]; dup {
			r.logger.Warn("duplicate RFT report, keeping the first", "well", rep.Well, "date", rep.Date.Format(time.DateOnly))
			continue
		}
		r.byKey[key] = len(r.reports)
		r.reports = append(r.reports, rep)
	}

	r.logger.Debug("indexed RFT file", "path", f.Path(), "reports", len(r.reports))

	return r, nil
}

func (r *ERft) readHeader(first, end int) (report, error) {
	rep := report{first: first, end: end}

	dateIdx, err := r.find(first, end, "DATE")
	if err != nil {
		return rep, fmt.Errorf("%w: report at entry %d has no DATE", errs.ErrInvalidFormat, first)
	}
	wellIdx, err := r.find(first, end, "WELLETC")
	if err != nil {
		return rep, fmt.Errorf("%w: report at entry %d has no WELLETC", errs.ErrInvalidFormat, first)
	}

	date, err := eclfile.GetAt[int32](r.file, dateIdx)
	if err != nil {
		return rep, err
	}
	if len(date) < 3 {
		return rep, fmt.Errorf("%w: DATE has %d values", errs.ErrInvalidFormat, len(date))
	}
	welletc, err := eclfile.GetAt[string](r.file, wellIdx)
	if err != nil {
		return rep, err
	}
	if len(welletc) < 2 {
		return rep, fmt.Errorf("%w: WELLETC has %d values", errs.ErrInvalidFormat, len(welletc))
	}
	r.file.Release(dateIdx, wellIdx)

	rep.Well = welletc[1]
	rep.Date = time.Date(int(date[2]), time.Month(date[1]), int(date[0]), 0, 0, 0, 0, time.UTC)

	return rep, nil
}

func (r *ERft) find(first, end int, name string) (int, error) {
	for idx := first; idx < end; idx++ {
		e, err := r.file.Entry(idx)
		if err != nil {
			return -1, err
		}
		if e.Name == name {
			return idx, nil
		}
	}

	return -1, fmt.Errorf("%w: array %s", errs.ErrNotFound, name)
}

// Close releases the underlying file when it was opened by Open.
func (r *ERft) Close() error {
	if !r.owned {
		return nil
	}

	return r.file.Close()
}

// File returns the underlying keyword file.
func (r *ERft) File() *eclfile.File {
	return r.file
}

// Reports returns the reports in file order.
func (r *ERft) Reports() []Report {
	out := make([]Report, len(r.reports))
	for i := range r.reports {
		out[i] = r.reports[i].Report
	}

	return out
}

// Wells returns the distinct well names in sorted order.
func (r *ERft) Wells() []string {
	var out []string
	for i := range r.reports {
		if !slices.Contains(out, r.reports[i].Well) {
			out = append(out, r.reports[i].Well)
		}
	}
	slices.Sort(out)

	return out
}

// Dates returns the distinct report dates in ascending order.
func (r *ERft) Dates() []time.Time {
	var out []time.Time
	for i := range r.reports {
		if !slices.ContainsFunc(out, r.reports[i].Date.Equal) {
			out = append(out, r.reports[i].Date)
		}
	}
	slices.SortFunc(out, time.Time.Compare)

	return out
}

// HasRft reports whether a report exists for well at date.
func (r *ERft) HasRft(well string, date time.Time) bool {
	_, ok := r.byKey[keyOf(well, date)]
	return ok
}

func keyOf(well string, date time.Time) reportKey {
	y, m, d := date.Date()
	return reportKey{well: well, date: time.Date(y, m, d, 0, 0, 0, 0, time.UTC)}
}

func (r *ERft) report(well string, date time.Time) (*report, error) {
	i, ok := r.byKey[keyOf(well, date)]
	if !ok {
		return nil, fmt.Errorf("%w: no RFT report for well %s at %s",
			errs.ErrInvalidArgument, well, date.Format(time.DateOnly))
	}

	return &r.reports[i], nil
}

// ListOfArrays returns the arrays of the report of well at date, header
// arrays included.
func (r *ERft) ListOfArrays(well string, date time.Time) ([]eclfile.Entry, error) {
	rep, err := r.report(well, date)
	if err != nil {
		return nil, err
	}

	out := make([]eclfile.Entry, 0, rep.end-rep.first)
	for idx := rep.first; idx < rep.end; idx++ {
		e, err := r.file.Entry(idx)
		if err != nil {
			return nil, err
		}
		out = append(out, e)
	}

	return out, nil
}

// HasArray reports whether the report of well at date has an array name.
func (r *ERft) HasArray(name, well string, date time.Time) (bool, error) {
	rep, err := r.report(well, date)
	if err != nil {
		return false, err
	}
	_, err = r.find(rep.first, rep.end, name)

	return err == nil, nil
}

// Get decodes array name of the report of well at date.
//
// Returns:
//   - error: errs.ErrInvalidArgument for an unknown report, errs.ErrNotFound
//     for a missing array, errs.ErrTypeMismatch for a wrong T
func Get[T eclfile.Element](r *ERft, name, well string, date time.Time) ([]T, error) {
	rep, err := r.report(well, date)
	if err != nil {
		return nil, err
	}

	idx, err := r.find(rep.first, rep.end, name)
	if err != nil {
		return nil, fmt.Errorf("%w in RFT report %s %s", err, well, date.Format(time.DateOnly))
	}

	return eclfile.GetAt[T](r.file, idx)
}
