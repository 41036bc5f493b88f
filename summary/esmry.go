package summary

import (
	"errors"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"slices"
	"strings"
	"time"

	"github.com/arloliu/eclio/eclfile"
	"github.com/arloliu/eclio/errs"
	"github.com/arloliu/eclio/resultset"
)

// run is one SMSPEC of a restart chain.
type run struct {
	spec      string
	formatted bool
	nodes     []Node
	dims      [3]int
	start     time.Time

	restartRoot string
	restartStep int

	// params maps a key to its position in the PARAMS arrays of this run.
	params map[string]int
	files  []*eclfile.File
}

// timeStep locates the MINISTEP and PARAMS arrays of one time step.
type timeStep struct {
	run, file        int
	ministep, params int
}

// ESmry reads a summary case: an SMSPEC file joined with its UNSMRY file or
// its per-report-step Snnnn files.
type ESmry struct {
	series

	path string
	// runs is ordered oldest base run first; the opened case is last.
	runs  []*run
	steps []timeStep

	baseRun bool
	logger  *slog.Logger
}

var _ Reader = (*ESmry)(nil)

// Open opens a summary case. path names the SMSPEC or FSMSPEC file; the
// extension may be omitted, in which case SMSPEC is assumed.
//
// Returns:
//   - error: errs.ErrNotFound when the SMSPEC, the data files or a base run
//     are missing, errs.ErrInvalidFormat for a malformed data file sequence
func Open(path string, opts ...Option) (*ESmry, error) {
	cfg, err := newConfig(opts)
	if err != nil {
		return nil, err
	}

	spec, err := specPath(path)
	if err != nil {
		return nil, err
	}

	cur, err := readRun(spec, cfg)
	if err != nil {
		return nil, err
	}

	chain := []*run{cur}
	if cfg.baseRun {
		seen := map[string]bool{spec: true}
		for r := cur; r.restartRoot != ""; {
			basePath, err := resolveBase(r)
			if err != nil {
				closeRuns(chain)
				return nil, err
			}
			if seen[basePath] {
				closeRuns(chain)
				return nil, fmt.Errorf("%w: restart chain loops at %s", errs.ErrInvalidFormat, basePath)
			}
			seen[basePath] = true

			base, err := readRun(basePath, cfg)
			if err != nil {
				closeRuns(chain)
				return nil, err
			}
			cfg.logger.Debug("loaded base run", "spec", basePath, "restart_step", r.restartStep)
			chain = append(chain, base)
			r = base
		}
	}
	slices.Reverse(chain)

	s := &ESmry{path: spec, runs: chain, baseRun: cfg.baseRun, logger: cfg.logger}
	s.start = cur.start
	s.initKeys()

	if err := s.indexSteps(cfg); err != nil {
		closeRuns(chain)
		return nil, err
	}

	return s, nil
}

func specPath(path string) (string, error) {
	_, ext := resultset.FromPath(path)
	switch ext {
	case "":
		return path + "." + resultset.ExtSpec, nil
	case resultset.SpecExt(false), resultset.SpecExt(true):
		return path, nil
	default:
		return "", fmt.Errorf("%w: %s is not an SMSPEC file", errs.ErrInvalidArgument, path)
	}
}

// resolveBase finds the SMSPEC of the run that r restarts from. Relative
// roots are resolved against the directory of r.
func resolveBase(r *run) (string, error) {
	root := r.restartRoot
	if !filepath.IsAbs(root) {
		root = filepath.Join(filepath.Dir(r.spec), root)
	}

	for _, formatted := range []bool{false, true} {
		p := root + "." + resultset.SpecExt(formatted)
		if _, err := os.Stat(p); err == nil {
			return p, nil
		}
	}

	return "", fmt.Errorf("%w: base run %s of %s", errs.ErrNotFound, r.restartRoot, r.spec)
}

func readRun(path string, cfg *config) (*run, error) {
	f, err := eclfile.Open(path, cfg.fileOpts...)
	if err != nil {
		return nil, err
	}
	defer f.Close()

	r := &run{spec: path, formatted: f.Formatted(), params: map[string]int{}}

	dimens, err := eclfile.Get[int32](f, "DIMENS")
	if err != nil {
		return nil, err
	}
	if len(dimens) < 4 {
		return nil, fmt.Errorf("%w: DIMENS has %d values in %s", errs.ErrInvalidFormat, len(dimens), path)
	}
	r.dims = [3]int{int(dimens[1]), int(dimens[2]), int(dimens[3])}
	if len(dimens) > 5 {
		r.restartStep = int(dimens[5])
	}

	keywords, err := eclfile.Get[string](f, "KEYWORDS")
	if err != nil {
		return nil, err
	}
	wgnames, err := optionalStrings(f, len(keywords), "WGNAMES", "NAMES")
	if err != nil {
		return nil, err
	}
	units, err := optionalStrings(f, len(keywords), "UNITS")
	if err != nil {
		return nil, err
	}
	lgrs, err := optionalStrings(f, len(keywords), "LGRS")
	if err != nil {
		return nil, err
	}
	nums, err := optionalInts(f, len(keywords), "NUMS", 0)
	if err != nil {
		return nil, err
	}
	numlx, err := optionalInts(f, len(keywords), "NUMLX", NoLGRIndex)
	if err != nil {
		return nil, err
	}
	numly, err := optionalInts(f, len(keywords), "NUMLY", NoLGRIndex)
	if err != nil {
		return nil, err
	}
	numlz, err := optionalInts(f, len(keywords), "NUMLZ", NoLGRIndex)
	if err != nil {
		return nil, err
	}

	r.nodes = make([]Node, len(keywords))
	for i, kw := range keywords {
		r.nodes[i] = Node{
			Keyword: kw,
			WGName:  wgnames[i],
			Number:  int(nums[i]),
			Unit:    units[i],
			LGR:     lgrs[i],
			LGRI:    int(numlx[i]),
			LGRJ:    int(numly[i]),
			LGRK:    int(numlz[i]),
			Index:   i,
		}
		if lgrs[i] == "" {
			r.nodes[i].LGRI, r.nodes[i].LGRJ, r.nodes[i].LGRK = NoLGRIndex, NoLGRIndex, NoLGRIndex
		}
		if key := KeyString(r.nodes[i], r.dims); key != "" {
			if _, dup := r.params[key]; !dup {
				r.params[key] = i
			}
		}
	}

	startdat, err := eclfile.Get[int32](f, "STARTDAT")
	if err != nil {
		return nil, err
	}
	r.start, err = parseStartDate(startdat)
	if err != nil {
		return nil, fmt.Errorf("%w in %s", err, path)
	}

	if f.HasKey("RESTART") {
		pieces, err := eclfile.Get[string](f, "RESTART")
		if err != nil {
			return nil, err
		}
		r.restartRoot = strings.TrimSpace(strings.Join(pieces, ""))
	}

	return r, nil
}

// optionalStrings returns the first present array of names, or n blanks.
func optionalStrings(f *eclfile.File, n int, names ...string) ([]string, error) {
	for _, name := range names {
		if !f.HasKey(name) {
			continue
		}
		v, err := eclfile.Get[string](f, name)
		if err != nil {
			return nil, err
		}
		if len(v) != n {
			return nil, fmt.Errorf("%w: %s has %d values, expected %d", errs.ErrInvalidFormat, name, len(v), n)
		}

		return v, nil
	}

	return make([]string, n), nil
}

// optionalInts reads name, or returns n copies of fill when it is absent.
func optionalInts(f *eclfile.File, n int, name string, fill int32) ([]int32, error) {
	if !f.HasKey(name) {
		out := make([]int32, n)
		for i := range out {
			out[i] = fill
		}

		return out, nil
	}
	v, err := eclfile.Get[int32](f, name)
	if err != nil {
		return nil, err
	}
	if len(v) != n {
		return nil, fmt.Errorf("%w: %s has %d values, expected %d", errs.ErrInvalidFormat, name, len(v), n)
	}

	return v, nil
}

// parseStartDate reads STARTDAT: day, month, year and optionally hour,
// minute and microseconds.
func parseStartDate(v []int32) (time.Time, error) {
	if len(v) < 3 {
		return time.Time{}, fmt.Errorf("%w: STARTDAT has %d values", errs.ErrInvalidFormat, len(v))
	}

	var hour, minute, usec int
	if len(v) >= 6 {
		hour, minute, usec = int(v[3]), int(v[4]), int(v[5])
	}

	return time.Date(int(v[2]), time.Month(v[1]), int(v[0]), hour, minute, 0, 0, time.UTC).
		Add(time.Duration(usec) * time.Microsecond), nil
}

func (s *ESmry) initKeys() {
	units := map[string]string{}
	// The opened case is last; walk backwards so its units win.
	for i := len(s.runs) - 1; i >= 0; i-- {
		r := s.runs[i]
		for key, pos := range r.params {
			if _, ok := units[key]; !ok {
				units[key] = r.nodes[pos].Unit
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

	s.init(keys, unitList, s.loadColumns)
}

// dataFiles lists the data files of a run. When both a unified file and
// per-step files exist, the more recently written set is used.
func dataFiles(spec string, formatted bool) ([]string, error) {
	rs, _ := resultset.FromPath(spec)
	unified := rs.FileName(resultset.SummaryExt(0, formatted, true))

	dir := rs.Dir
	if dir == "" {
		dir = "."
	}
	entries, err := os.ReadDir(dir)
	if err != nil {
		return nil, err
	}

	var multiple []string
	for _, e := range entries {
		name := e.Name()
		if e.IsDir() || !strings.HasPrefix(name, rs.Base+".") {
			continue
		}
		ext := name[len(rs.Base)+1:]
		_, fmtd, ok := resultset.StepFromExt(ext)
		if !ok || fmtd != formatted || (ext[0] != 'S' && ext[0] != 'A') {
			continue
		}
		multiple = append(multiple, filepath.Join(rs.Dir, name))
	}
	slices.Sort(multiple)

	ustat, uerr := os.Stat(unified)
	switch {
	case uerr != nil && len(multiple) == 0:
		return nil, fmt.Errorf("%w: no summary data files for %s", errs.ErrNotFound, spec)
	case uerr != nil:
		return multiple, nil
	case len(multiple) == 0:
		return []string{unified}, nil
	}

	mstat, err := os.Stat(multiple[len(multiple)-1])
	if err != nil {
		return nil, err
	}
	if mstat.ModTime().After(ustat.ModTime()) {
		return multiple, nil
	}

	return []string{unified}, nil
}

// indexSteps walks MINISTEP/PARAMS pairs of every run. A SEQHDR following a
// step, or the end of the data, closes a report step. A base run stops once
// it reaches the report step the next run restarts from.
func (s *ESmry) indexSteps(cfg *config) error {
	fromReport := 0
	for ri, r := range s.runs {
		toReport := -1
		if ri+1 < len(s.runs) {
			toReport = s.runs[ri+1].restartStep
		}

		paths, err := dataFiles(r.spec, r.formatted)
		if err != nil {
			return err
		}

		type entry struct {
			name        string
			file, index int
		}
		var list []entry
		for fi, p := range paths {
			f, err := eclfile.Open(p, cfg.fileOpts...)
			if err != nil {
				return err
			}
			r.files = append(r.files, f)
			for ei, e := range f.List() {
				list = append(list, entry{name: e.Name, file: fi, index: ei})
			}
		}

		report := fromReport
		i := 0
		if len(list) > 0 && list[0].name == "SEQHDR" {
			i = 1
		}
		for i < len(list) {
			if list[i].name != "MINISTEP" {
				return fmt.Errorf("%w: expected MINISTEP, found %q in %s", errs.ErrInvalidFormat, list[i].name, paths[list[i].file])
			}
			if i+1 >= len(list) || list[i+1].name != "PARAMS" {
				return fmt.Errorf("%w: MINISTEP without PARAMS in %s", errs.ErrInvalidFormat, paths[list[i].file])
			}

			step := len(s.steps)
			s.steps = append(s.steps, timeStep{
				run:      ri,
				file:     list[i+1].file,
				ministep: list[i].index,
				params:   list[i+1].index,
			})
			i += 2

			if i >= len(list) || list[i].name == "SEQHDR" {
				if i < len(list) {
					i++
				}
				report++
				s.rsteps = append(s.rsteps, step)
			}

			if toReport >= 0 && report >= toReport {
				break
			}
		}

		s.logger.Debug("indexed summary run", "spec", r.spec, "files", len(paths), "steps", len(s.steps), "report_steps", report)
		fromReport = toReport
	}

	s.nsteps = len(s.steps)

	return nil
}

// loadColumns reads the PARAMS array of every time step once and extracts
// the requested vectors. Vectors missing from a run are filled with 0.
func (s *ESmry) loadColumns(keys []int) ([][]float32, error) {
	cols := make([][]float32, len(keys))
	for n := range cols {
		cols[n] = make([]float32, len(s.steps))
	}

	pos := make([][]int, len(s.runs))
	for ri, r := range s.runs {
		pos[ri] = make([]int, len(keys))
		for n, k := range keys {
			p, ok := r.params[s.keys[k]]
			if !ok {
				p = -1
			}
			pos[ri][n] = p
		}
	}

	for ts, st := range s.steps {
		f := s.runs[st.run].files[st.file]
		params, err := eclfile.GetAt[float32](f, st.params)
		if err != nil {
			return nil, err
		}
		for n, p := range pos[st.run] {
			if p < 0 {
				continue
			}
			if p >= len(params) {
				f.Release(st.params)
				return nil, fmt.Errorf("%w: PARAMS of step %d has %d values", errs.ErrInvalidFormat, ts, len(params))
			}
			cols[n][ts] = params[p]
		}
		f.Release(st.params)
	}

	return cols, nil
}

// Path returns the SMSPEC path of the opened case.
func (s *ESmry) Path() string {
	return s.path
}

// Nodes returns the SMSPEC entries of the opened case.
func (s *ESmry) Nodes() []Node {
	return slices.Clone(s.runs[len(s.runs)-1].nodes)
}

// Dims returns the grid dimensions from DIMENS.
func (s *ESmry) Dims() [3]int {
	return s.runs[len(s.runs)-1].dims
}

// Restart returns the base run root and the report step the case restarts
// from. The root is empty for a case that is not a restart.
func (s *ESmry) Restart() (string, int) {
	cur := s.runs[len(s.runs)-1]
	return cur.restartRoot, cur.restartStep
}

// Ministeps returns the MINISTEP number of every time step.
func (s *ESmry) Ministeps() ([]int32, error) {
	out := make([]int32, len(s.steps))
	for ts, st := range s.steps {
		f := s.runs[st.run].files[st.file]
		v, err := eclfile.GetAt[int32](f, st.ministep)
		if err != nil {
			return nil, err
		}
		if len(v) == 0 {
			return nil, fmt.Errorf("%w: empty MINISTEP at step %d", errs.ErrInvalidFormat, ts)
		}
		out[ts] = v[0]
		f.Release(st.ministep)
	}

	return out, nil
}

// Close releases the data files.
func (s *ESmry) Close() error {
	return closeRuns(s.runs)
}

func closeRuns(runs []*run) error {
	var errList []error
	for _, r := range runs {
		for _, f := range r.files {
			errList = append(errList, f.Close())
		}
		r.files = nil
	}

	return errors.Join(errList...)
}
