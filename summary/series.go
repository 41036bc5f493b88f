package summary

import (
	"fmt"
	"path"
	"slices"
	"time"

	"github.com/arloliu/eclio/errs"
)

// Reader is the read API shared by ESmry and ExtESmry.
type Reader interface {
	Keys() []string
	KeysMatching(pattern string) ([]string, error)
	HasKey(key string) bool
	Unit(key string) (string, error)
	Get(key string) ([]float32, error)
	LoadData(keys ...string) error
	NumSteps() int
	StartDate() time.Time
	Dates() ([]time.Time, error)
	GetAtReportStep(key string) ([]float32, error)
	DatesAtReportStep() ([]time.Time, error)
	ReportStepStartIndex(n int) (int, error)
	Close() error
}

// loadFunc fills columns for the given key indices.
type loadFunc func(keys []int) ([][]float32, error)

// series holds the key table and the per-key vector cache.
type series struct {
	start    time.Time
	keys     []string
	keyIndex map[string]int
	units    []string

	// rsteps holds, per report step, the index of the last time step of
	// that report step.
	rsteps []int
	nsteps int

	values [][]float32
	load   loadFunc
}

func (s *series) init(keys []string, units []string, load loadFunc) {
	s.keys = keys
	s.units = units
	s.keyIndex = make(map[string]int, len(keys))
	for i, k := range keys {
		s.keyIndex[k] = i
	}
	s.values = make([][]float32, len(keys))
	s.load = load
}

// Keys returns all vector keys in sorted order.
func (s *series) Keys() []string {
	return slices.Clone(s.keys)
}

// KeysMatching returns the keys matching a shell pattern such as "WOPR:*".
func (s *series) KeysMatching(pattern string) ([]string, error) {
	if _, err := path.Match(pattern, ""); err != nil {
		return nil, fmt.Errorf("%w: pattern %q: %w", errs.ErrInvalidArgument, pattern, err)
	}

	var out []string
	for _, k := range s.keys {
		if ok, _ := path.Match(pattern, k); ok {
			out = append(out, k)
		}
	}

	return out, nil
}

// HasKey reports whether key names a vector.
func (s *series) HasKey(key string) bool {
	_, ok := s.keyIndex[key]
	return ok
}

func (s *series) index(key string) (int, error) {
	i, ok := s.keyIndex[key]
	if !ok {
		return 0, fmt.Errorf("%w: summary key %q", errs.ErrInvalidArgument, key)
	}

	return i, nil
}

// Unit returns the unit string of key.
func (s *series) Unit(key string) (string, error) {
	i, err := s.index(key)
	if err != nil {
		return "", err
	}

	return s.units[i], nil
}

// NumSteps returns the number of time steps.
func (s *series) NumSteps() int {
	return s.nsteps
}

// NumReportSteps returns the number of report steps.
func (s *series) NumReportSteps() int {
	return len(s.rsteps)
}

// StartDate returns the simulation start.
func (s *series) StartDate() time.Time {
	return s.start
}

// LoadData reads the vectors of keys, or of every key when none is given.
// Already loaded vectors and repeated keys are skipped.
func (s *series) LoadData(keys ...string) error {
	var want []int
	if len(keys) == 0 {
		for i := range s.keys {
			if s.values[i] == nil {
				want = append(want, i)
			}
		}
	} else {
		seen := make(map[int]bool, len(keys))
		for _, k := range keys {
			i, err := s.index(k)
			if err != nil {
				return err
			}
			if seen[i] || s.values[i] != nil {
				continue
			}
			seen[i] = true
			want = append(want, i)
		}
	}

	if len(want) == 0 {
		return nil
	}

	cols, err := s.load(want)
	if err != nil {
		return err
	}
	for n, i := range want {
		s.values[i] = cols[n]
	}

	return nil
}

// Get returns the vector of key, one value per time step. The returned
// slice is shared with the cache and must not be modified.
func (s *series) Get(key string) ([]float32, error) {
	i, err := s.index(key)
	if err != nil {
		return nil, err
	}
	if s.values[i] == nil {
		if err := s.LoadData(key); err != nil {
			return nil, err
		}
	}

	return s.values[i], nil
}

// GetAtReportStep returns the values of key at the end of each report step.
func (s *series) GetAtReportStep(key string) ([]float32, error) {
	v, err := s.Get(key)
	if err != nil {
		return nil, err
	}

	out := make([]float32, len(s.rsteps))
	for n, ts := range s.rsteps {
		out[n] = v[ts]
	}

	return out, nil
}

// Dates converts the TIME vector (days) into absolute times.
func (s *series) Dates() ([]time.Time, error) {
	days, err := s.Get("TIME")
	if err != nil {
		return nil, err
	}

	out := make([]time.Time, len(days))
	for i, d := range days {
		out[i] = s.start.Add(daysToDuration(d))
	}

	return out, nil
}

// DatesAtReportStep returns the dates of the report steps.
func (s *series) DatesAtReportStep() ([]time.Time, error) {
	dates, err := s.Dates()
	if err != nil {
		return nil, err
	}

	out := make([]time.Time, len(s.rsteps))
	for n, ts := range s.rsteps {
		out[n] = dates[ts]
	}

	return out, nil
}

// ReportStepStartIndex returns the time step index at which report step n
// (1-based) was written.
func (s *series) ReportStepStartIndex(n int) (int, error) {
	if n < 1 || n > len(s.rsteps) {
		return 0, fmt.Errorf("%w: %w: report step %d not in [1, %d]",
			errs.ErrInvalidArgument, errs.ErrOutOfRange, n, len(s.rsteps))
	}

	return s.rsteps[n-1], nil
}

// IsReportStep reports whether time step ts ends a report step.
func (s *series) IsReportStep(ts int) bool {
	_, ok := slices.BinarySearch(s.rsteps, ts)
	return ok
}

func daysToDuration(days float32) time.Duration {
	// Round to milliseconds; float32 days carry no finer precision.
	ms := float64(days) * 86400e3
	if ms >= 0 {
		ms += 0.5
	} else {
		ms -= 0.5
	}

	return time.Duration(int64(ms)) * time.Millisecond
}
