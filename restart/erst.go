// Package restart reads and writes ECLIPSE restart files.
//
// A unified restart file (UNRST/FUNRST) holds every report step, each one
// starting at a SEQNUM array. A separate restart file (Xnnnn/Fnnnn) holds one
// step whose number is taken from the extension. Inside a step, LGR ...
// ENDLGR delimits the arrays of one local grid.
//
// ERst indexes steps without decoding any payload. At most one step is
// resident at a time: touching another step releases the decoded arrays of
// the previous one.
package restart

import (
	"fmt"
	"log/slog"
	"slices"

	"github.com/arloliu/eclio/eclfile"
	"github.com/arloliu/eclio/errs"
	"github.com/arloliu/eclio/resultset"
)

// lgrBlock is the entry range [first, end) of one LGR, LGR and ENDLGR included.
type lgrBlock struct {
	name       string
	first, end int
}

// step is the entry range [first, end) of one report step.
type step struct {
	number     int
	first, end int
	global     []int // entry indices outside LGR blocks
	lgrs       []lgrBlock
}

func (s *step) lgr(name string) (*lgrBlock, bool) {
	for i := range s.lgrs {
		if s.lgrs[i].name == name {
			return &s.lgrs[i], true
		}
	}

	return nil, false
}

func (s *step) lgrIndices(b *lgrBlock) []int {
	return rangeIndices(b.first, b.end)
}

// ERst is an indexed restart file.
type ERst struct {
	file     *eclfile.File
	owned    bool
	steps    []step
	byNumber map[int]int
	loaded   int // position in steps, -1 when nothing is resident
	logger   *slog.Logger
}

// Open indexes the restart file at path.
//
// Returns:
//   - error: errs.ErrInvalidArgument for a file without SEQNUM whose extension
//     is not Xnnnn or Fnnnn, errs.ErrInvalidFormat for decreasing step numbers
func Open(path string, opts ...Option) (*ERst, error) {
	cfg, err := newConfig(opts)
	if err != nil {
		return nil, err
	}

	f, err := eclfile.Open(path, cfg.fileOpts...)
	if err != nil {
		return nil, err
	}

	r, err := newERst(f, cfg)
	if err != nil {
		_ = f.Close()
		return nil, fmt.Errorf("%s: %w", path, err)
	}
	r.owned = true

	return r, nil
}

// New indexes an already open restart file. The caller keeps ownership of f.
// A file without SEQNUM takes its step number from the extension of f.Path().
func New(f *eclfile.File, opts ...Option) (*ERst, error) {
	cfg, err := newConfig(opts)
	if err != nil {
		return nil, err
	}

	return newERst(f, cfg)
}

func newERst(f *eclfile.File, cfg *config) (*ERst, error) {
	r := &ERst{file: f, byNumber: make(map[int]int), loaded: -1, logger: cfg.logger}

	seqnum := f.Indices("SEQNUM")
	if len(seqnum) == 0 {
		_, ext := resultset.FromPath(f.Path())
		number, _, ok := resultset.StepFromExt(ext)
		if !ok {
			return nil, fmt.Errorf("%w: no SEQNUM and %q is not a per-step restart extension",
				errs.ErrInvalidArgument, ext)
		}
		if err := r.addStep(number, 0, f.Len()); err != nil {
			return nil, err
		}
	} else {
		if seqnum[0] > 0 {
			r.logger.Warn("arrays before first SEQNUM ignored", "path", f.Path(), "count", seqnum[0])
		}
		for n, idx := range seqnum {
			v, err := eclfile.GetAt[int32](f, idx)
			if err != nil {
				return nil, err
			}
			if len(v) == 0 {
				return nil, fmt.Errorf("%w: empty SEQNUM at entry %d", errs.ErrInvalidFormat, idx)
			}
			end := f.Len()
			if n+1 < len(seqnum) {
				end = seqnum[n+1]
			}
			if err := r.addStep(int(v[0]), idx, end); err != nil {
				return nil, err
			}
		}
		f.Release(seqnum...)
	}

	r.logger.Debug("indexed restart file", "path", f.Path(), "steps", len(r.steps))

	return r, nil
}

func (r *ERst) addStep(number, first, end int) error {
	if len(r.steps) > 0 {
		last := r.steps[len(r.steps)-1].number
		if number < last {
			return fmt.Errorf("%w: report step %d follows step %d", errs.ErrInvalidFormat, number, last)
		}
		if number == last {
			r.logger.Warn("duplicate report step, keeping the first", "path", r.file.Path(), "step", number)
			return nil
		}
	}

	s := step{number: number, first: first, end: end}
	var open *lgrBlock
	for idx := first; idx < end; idx++ {
		e, err := r.file.Entry(idx)
		if err != nil {
			return err
		}

		switch {
		case e.Name == "LGR":
			v, err := eclfile.GetAt[string](r.file, idx)
			if err != nil {
				return err
			}
			if len(v) == 0 {
				return fmt.Errorf("%w: empty LGR name at entry %d", errs.ErrInvalidFormat, idx)
			}
			s.lgrs = append(s.lgrs, lgrBlock{name: v[0], first: idx, end: end})
			open = &s.lgrs[len(s.lgrs)-1]
			r.file.Release(idx)
		case open != nil:
			if e.Name == "ENDLGR" {
				open.end = idx + 1
				open = nil
			}
		default:
			s.global = append(s.global, idx)
		}
	}
	if open != nil {
		r.logger.Warn("LGR block without ENDLGR", "step", number, "lgr", open.name)
	}

	r.byNumber[number] = len(r.steps)
	r.steps = append(r.steps, s)

	return nil
}

// Close releases the underlying file when it was opened by Open.
func (r *ERst) Close() error {
	if !r.owned {
		return nil
	}

	return r.file.Close()
}

// File returns the underlying keyword file.
func (r *ERst) File() *eclfile.File {
	return r.file
}

// ReportSteps returns the report step numbers in file order.
func (r *ERst) ReportSteps() []int {
	out := make([]int, len(r.steps))
	for i := range r.steps {
		out[i] = r.steps[i].number
	}

	return out
}

// HasReportStep reports whether step n exists.
func (r *ERst) HasReportStep(n int) bool {
	_, ok := r.byNumber[n]
	return ok
}

// LoadedStep returns the resident step, if any.
func (r *ERst) LoadedStep() (int, bool) {
	if r.loaded < 0 {
		return 0, false
	}

	return r.steps[r.loaded].number, true
}

func (r *ERst) step(n int) (*step, error) {
	i, ok := r.byNumber[n]
	if !ok {
		return nil, fmt.Errorf("%w: %w: report step %d not in file", errs.ErrInvalidArgument, errs.ErrOutOfRange, n)
	}

	return &r.steps[i], nil
}

// activate makes step n resident, releasing the previous one.
func (r *ERst) activate(n int) (*step, error) {
	s, err := r.step(n)
	if err != nil {
		return nil, err
	}

	pos := r.byNumber[n]
	if r.loaded >= 0 && r.loaded != pos {
		prev := &r.steps[r.loaded]
		if prev.end > prev.first {
			r.file.Release(rangeIndices(prev.first, prev.end)...)
		}
		r.logger.Debug("released report step", "step", prev.number)
	}
	r.loaded = pos

	return s, nil
}

func rangeIndices(first, end int) []int {
	out := make([]int, 0, end-first)
	for i := first; i < end; i++ {
		out = append(out, i)
	}

	return out
}

// LoadReportStep decodes every array of step n.
//
// Returns:
//   - error: wraps errs.ErrInvalidArgument and errs.ErrOutOfRange for an
//     unknown step
func (r *ERst) LoadReportStep(n int) error {
	s, err := r.activate(n)
	if err != nil {
		return err
	}

	return r.file.Load(rangeIndices(s.first, s.end)...)
}

// LoadReportStepLGR decodes only the arrays of LGR lgr within step n.
func (r *ERst) LoadReportStepLGR(n int, lgr string) error {
	s, err := r.activate(n)
	if err != nil {
		return err
	}

	b, ok := s.lgr(lgr)
	if !ok {
		return fmt.Errorf("%w: LGR %s not in report step %d", errs.ErrInvalidArgument, lgr, n)
	}

	return r.file.Load(s.lgrIndices(b)...)
}

func (r *ERst) entries(indices []int) ([]eclfile.Entry, error) {
	out := make([]eclfile.Entry, 0, len(indices))
	for _, idx := range indices {
		e, err := r.file.Entry(idx)
		if err != nil {
			return nil, err
		}
		out = append(out, e)
	}

	return out, nil
}

// ListOfArrays returns the global arrays of step n, SEQNUM included and LGR
// blocks excluded.
func (r *ERst) ListOfArrays(n int) ([]eclfile.Entry, error) {
	s, err := r.step(n)
	if err != nil {
		return nil, err
	}

	return r.entries(s.global)
}

// ListOfArraysLGR returns the arrays of LGR lgr within step n, from the LGR
// marker to ENDLGR.
func (r *ERst) ListOfArraysLGR(n int, lgr string) ([]eclfile.Entry, error) {
	indices, err := r.lgrIndices(n, lgr)
	if err != nil {
		return nil, err
	}

	return r.entries(indices)
}

func (r *ERst) lgrIndices(n int, lgr string) ([]int, error) {
	s, err := r.step(n)
	if err != nil {
		return nil, err
	}

	b, ok := s.lgr(lgr)
	if !ok {
		return nil, fmt.Errorf("%w: LGR %s not in report step %d", errs.ErrInvalidArgument, lgr, n)
	}

	return s.lgrIndices(b), nil
}

// HasArray reports whether step n has a global array called name.
func (r *ERst) HasArray(name string, n int) (bool, error) {
	s, err := r.step(n)
	if err != nil {
		return false, err
	}

	return slices.ContainsFunc(s.global, func(idx int) bool {
		e, _ := r.file.Entry(idx)
		return e.Name == name
	}), nil
}

// HasLGR reports whether step n carries a block for LGR lgr.
//
// Returns:
//   - error: for an unknown step, even when lgr exists in other steps
func (r *ERst) HasLGR(lgr string, n int) (bool, error) {
	s, err := r.step(n)
	if err != nil {
		return false, err
	}

	_, ok := s.lgr(lgr)

	return ok, nil
}

// LGRs returns the LGR names of step n in file order.
func (r *ERst) LGRs(n int) ([]string, error) {
	s, err := r.step(n)
	if err != nil {
		return nil, err
	}

	out := make([]string, len(s.lgrs))
	for i := range s.lgrs {
		out[i] = s.lgrs[i].name
	}

	return out, nil
}

func (r *ERst) find(indices []int, name string, occurrence int) (int, error) {
	seen := 0
	for _, idx := range indices {
		e, err := r.file.Entry(idx)
		if err != nil {
			return -1, err
		}
		if e.Name != name {
			continue
		}
		if seen == occurrence {
			return idx, nil
		}
		seen++
	}

	return -1, fmt.Errorf("%w: array %s (occurrence %d)", errs.ErrNotFound, name, occurrence)
}

// Get returns the given occurrence of global array name in step n, loading
// the step on demand.
//
// Returns:
//   - error: wraps errs.ErrInvalidArgument for an unknown step,
//     errs.ErrNotFound for a missing array, errs.ErrTypeMismatch for a wrong T
func Get[T eclfile.Element](r *ERst, name string, n, occurrence int) ([]T, error) {
	s, err := r.activate(n)
	if err != nil {
		return nil, err
	}

	idx, err := r.find(s.global, name, occurrence)
	if err != nil {
		return nil, fmt.Errorf("report step %d: %w", n, err)
	}

	return eclfile.GetAt[T](r.file, idx)
}

// GetLGR returns array name of LGR lgr in step n.
func GetLGR[T eclfile.Element](r *ERst, name string, n int, lgr string) ([]T, error) {
	indices, err := r.lgrIndices(n, lgr)
	if err != nil {
		return nil, err
	}
	if _, err := r.activate(n); err != nil {
		return nil, err
	}

	idx, err := r.find(indices, name, 0)
	if err != nil {
		return nil, fmt.Errorf("report step %d, LGR %s: %w", n, lgr, err)
	}

	return eclfile.GetAt[T](r.file, idx)
}

// GetAt returns the array at position index of ListOfArrays(n).
func GetAt[T eclfile.Element](r *ERst, index, n int) ([]T, error) {
	s, err := r.activate(n)
	if err != nil {
		return nil, err
	}
	if index < 0 || index >= len(s.global) {
		return nil, fmt.Errorf("%w: array index %d, report step %d has %d arrays",
			errs.ErrOutOfRange, index, n, len(s.global))
	}

	return eclfile.GetAt[T](r.file, s.global[index])
}

// GetAtLGR returns the array at position index of ListOfArraysLGR(n, lgr).
func GetAtLGR[T eclfile.Element](r *ERst, index, n int, lgr string) ([]T, error) {
	indices, err := r.lgrIndices(n, lgr)
	if err != nil {
		return nil, err
	}
	if index < 0 || index >= len(indices) {
		return nil, fmt.Errorf("%w: array index %d, LGR %s has %d arrays",
			errs.ErrOutOfRange, index, lgr, len(indices))
	}
	if _, err := r.activate(n); err != nil {
		return nil, err
	}

	return eclfile.GetAt[T](r.file, indices[index])
}
