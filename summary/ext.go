package summary

import (
	"errors"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"slices"
	"strconv"
	"time"

	"github.com/arloliu/eclio/eclfile"
	"github.com/arloliu/eclio/errs"
	"github.com/arloliu/eclio/resultset"
)

// ESmryPath returns the ESMRY cache path of a case: ROOT.ESMRY next to the
// SMSPEC file.
func (s *ESmry) ESmryPath() string {
	rs, _ := resultset.FromPath(s.path)
	return rs.FileName(resultset.ExtESmry)
}

// MakeESmryFile writes every vector of the case column-wise into
// ROOT.ESMRY, which OpenExt reads without scanning the PARAMS records.
//
// Returns:
//   - bool: false if the file already exists and WithReplace was not given
//   - error: errs.ErrUnsupportedCombination when the case was opened with
//     WithBaseRun
func (s *ESmry) MakeESmryFile(opts ...CacheOption) (bool, error) {
	cfg, err := newCacheConfig(opts)
	if err != nil {
		return false, err
	}
	if s.baseRun {
		return false, fmt.Errorf("%w: ESMRY output of a case loaded with its base runs", errs.ErrUnsupportedCombination)
	}

	path := s.ESmryPath()
	if _, err := os.Stat(path); err == nil {
		if !cfg.replace {
			return false, nil
		}
		if err := os.Remove(path); err != nil {
			return false, err
		}
	}

	if err := s.LoadData(); err != nil {
		return false, err
	}
	ministeps, err := s.Ministeps()
	if err != nil {
		return false, err
	}

	w, err := eclfile.Create(path, eclfile.WithCompression(cfg.compression), eclfile.WithWriterLogger(s.logger))
	if err != nil {
		return false, err
	}
	if err := s.writeESmry(w, ministeps); err != nil {
		_ = w.Close()
		_ = os.Remove(path)

		return false, err
	}
	if err := w.Close(); err != nil {
		return false, err
	}

	s.logger.Debug("wrote ESMRY file", "path", path, "keys", len(s.keys), "steps", s.nsteps)

	return true, nil
}

func (s *ESmry) writeESmry(w *eclfile.Writer, ministeps []int32) error {
	st := s.start
	usec := st.Nanosecond() / int(time.Microsecond)
	start := []int32{
		int32(st.Day()), int32(st.Month()), int32(st.Year()),
		int32(st.Hour()), int32(st.Minute()), int32(st.Second()), int32(usec),
	}
	if err := w.WriteInts("START", start); err != nil {
		return err
	}

	root, step := s.Restart()
	if root != "" {
		if err := w.WriteStrings("RESTART", []string{root}); err != nil {
			return err
		}
		if err := w.WriteInts("RSTNUM", []int32{int32(step)}); err != nil {
			return err
		}
	}

	if err := w.WriteStrings("KEYCHECK", s.keys); err != nil {
		return err
	}
	if err := w.WriteStrings("UNITS", s.units); err != nil {
		return err
	}

	rstep := make([]int32, s.nsteps)
	for _, ts := range s.rsteps {
		rstep[ts] = 1
	}
	if err := w.WriteInts("RSTEP", rstep); err != nil {
		return err
	}
	if err := w.WriteInts("TSTEP", ministeps); err != nil {
		return err
	}

	for i := range s.keys {
		if err := w.WriteReals("V"+strconv.Itoa(i), s.values[i]); err != nil {
			return err
		}
	}

	return nil
}

// extRun is one ESMRY file of a restart chain.
type extRun struct {
	file *eclfile.File
	// vectors maps a key to the entry index of its V array.
	vectors map[string]int
	units   map[string]string
	rstep   []int32
	tstep   []int32
	start   time.Time
	// nsteps is the number of leading time steps used from this file.
	nsteps int

	restartRoot string
	restartStep int
}

// ExtESmry reads an ESMRY file. Vectors are decoded on first use.
type ExtESmry struct {
	series

	path string
	runs []*extRun
	// offsets[i] is the first global time step of runs[i].
	offsets []int
	logger  *slog.Logger
}

var _ Reader = (*ExtESmry)(nil)

// OpenExt opens ROOT.ESMRY. The extension may be omitted.
func OpenExt(path string, opts ...Option) (*ExtESmry, error) {
	cfg, err := newConfig(opts)
	if err != nil {
		return nil, err
	}

	_, ext := resultset.FromPath(path)
	switch ext {
	case "":
		path += "." + resultset.ExtESmry
	case resultset.ExtESmry:
	default:
		return nil, fmt.Errorf("%w: %s is not an ESMRY file", errs.ErrInvalidArgument, path)
	}

	cur, err := readExtRun(path, cfg)
	if err != nil {
		return nil, err
	}

	chain := []*extRun{cur}
	if cfg.baseRun {
		seen := map[string]bool{path: true}
		for r, p := cur, path; r.restartRoot != ""; {
			root := r.restartRoot
			if !filepath.IsAbs(root) {
				root = filepath.Join(filepath.Dir(p), root)
			}
			basePath := root + "." + resultset.ExtESmry
			if seen[basePath] {
				closeExtRuns(chain)
				return nil, fmt.Errorf("%w: restart chain loops at %s", errs.ErrInvalidFormat, basePath)
			}
			seen[basePath] = true

			base, err := readExtRun(basePath, cfg)
			if err != nil {
				closeExtRuns(chain)
				return nil, err
			}
			chain = append(chain, base)
			r, p = base, basePath
		}
	}
	slices.Reverse(chain)

	e := &ExtESmry{path: path, runs: chain, logger: cfg.logger}
	e.start = cur.start
	e.indexSteps()
	e.initKeys()

	return e, nil
}

func readExtRun(path string, cfg *config) (*extRun, error) {
	f, err := eclfile.Open(path, cfg.fileOpts...)
	if err != nil {
		return nil, err
	}

	r, err := parseExtRun(f)
	if err != nil {
		_ = f.Close()
		return nil, fmt.Errorf("%s: %w", path, err)
	}

	return r, nil
}

func parseExtRun(f *eclfile.File) (*extRun, error) {
	r := &extRun{file: f, vectors: map[string]int{}, units: map[string]string{}}

	start, err := eclfile.Get[int32](f, "START")
	if err != nil {
		return nil, err
	}
	if len(start) < 6 {
		return nil, fmt.Errorf("%w: START has %d values", errs.ErrInvalidFormat, len(start))
	}
	var usec int32
	if len(start) > 6 {
		usec = start[6]
	}
	r.start = time.Date(int(start[2]), time.Month(start[1]), int(start[0]),
		int(start[3]), int(start[4]), int(start[5]), int(usec)*int(time.Microsecond), time.UTC)

	if f.HasKey("RESTART") {
		root, err := eclfile.Get[string](f, "RESTART")
		if err != nil {
			return nil, err
		}
		rstnum, err := eclfile.Get[int32](f, "RSTNUM")
		if err != nil {
			return nil, err
		}
		if len(root) > 0 && len(rstnum) > 0 {
			r.restartRoot, r.restartStep = root[0], int(rstnum[0])
		}
	}

	keys, err := eclfile.Get[string](f, "KEYCHECK")
	if err != nil {
		return nil, err
	}
	units, err := eclfile.Get[string](f, "UNITS")
	if err != nil {
		return nil, err
	}
	if len(units) != len(keys) {
		return nil, fmt.Errorf("%w: %d keys and %d units", errs.ErrInvalidFormat, len(keys), len(units))
	}
	if r.rstep, err = eclfile.Get[int32](f, "RSTEP"); err != nil {
		return nil, err
	}
	if r.tstep, err = eclfile.Get[int32](f, "TSTEP"); err != nil {
		return nil, err
	}
	if len(r.tstep) != len(r.rstep) {
		return nil, fmt.Errorf("%w: TSTEP has %d values, RSTEP has %d",
			errs.ErrInvalidFormat, len(r.tstep), len(r.rstep))
	}
	r.nsteps = len(r.rstep)

	for i, k := range keys {
		idx, err := f.IndexOf("V"+strconv.Itoa(i), 0)
		if err != nil {
			return nil, err
		}
		r.vectors[k] = idx
		r.units[k] = units[i]
	}

	return r, nil
}

// indexSteps trims each base run at the report step its successor restarts
// from and collects the report step indices.
func (e *ExtESmry) indexSteps() {
	fromReport := 0
	total := 0
	for ri, r := range e.runs {
		toReport := -1
		if ri+1 < len(e.runs) {
			toReport = e.runs[ri+1].restartStep
		}

		report := fromReport
		n := 0
		for ts, flag := range r.rstep {
			n = ts + 1
			if flag != 0 {
				report++
				e.rsteps = append(e.rsteps, total+ts)
			}
			if toReport >= 0 && report >= toReport {
				break
			}
		}
		r.nsteps = n

		e.offsets = append(e.offsets, total)
		total += n
		fromReport = toReport
	}
	e.nsteps = total
}

func (e *ExtESmry) initKeys() {
	units := map[string]string{}
	for i := len(e.runs) - 1; i >= 0; i-- {
		for k, u := range e.runs[i].units {
			if _, ok := units[k]; !ok {
				units[k] = u
			}
		}
	}

	keys := make([]string, 0, len(units))
	for k := range units {
		keys = append(keys, k)
	}
	slices.Sort(keys)

	unitList := make([]string, len(keys))
	for i, k := range keys {
		unitList[i] = units[k]
	}

	e.init(keys, unitList, e.loadColumns)
}

// loadColumns decodes only the V arrays of the requested keys.
func (e *ExtESmry) loadColumns(keys []int) ([][]float32, error) {
	cols := make([][]float32, len(keys))
	for n, k := range keys {
		col := make([]float32, e.nsteps)
		for ri, r := range e.runs {
			idx, ok := r.vectors[e.keys[k]]
			if !ok {
				continue
			}
			v, err := eclfile.GetAt[float32](r.file, idx)
			if err != nil {
				return nil, err
			}
			if len(v) < r.nsteps {
				return nil, fmt.Errorf("%w: vector %s has %d values, expected %d",
					errs.ErrInvalidFormat, e.keys[k], len(v), r.nsteps)
			}
			copy(col[e.offsets[ri]:], v[:r.nsteps])
			r.file.Release(idx)
		}
		cols[n] = col
	}

	return cols, nil
}

// Path returns the ESMRY path.
func (e *ExtESmry) Path() string {
	return e.path
}

// Restart returns the base run root and restart report step recorded in
// the file.
func (e *ExtESmry) Restart() (string, int) {
	cur := e.runs[len(e.runs)-1]
	return cur.restartRoot, cur.restartStep
}

// Ministeps returns the MINISTEP number of every time step.
func (e *ExtESmry) Ministeps() []int32 {
	out := make([]int32, 0, e.nsteps)
	for _, r := range e.runs {
		out = append(out, r.tstep[:r.nsteps]...)
	}

	return out
}

// Close releases the underlying files.
func (e *ExtESmry) Close() error {
	return closeExtRuns(e.runs)
}

func closeExtRuns(runs []*extRun) error {
	var errList []error
	for _, r := range runs {
		errList = append(errList, r.file.Close())
	}

	return errors.Join(errList...)
}
