package regression

import (
	"fmt"
	"strings"

	"github.com/arloliu/eclio/format"
)

// Status is the outcome for one pair of entries.
type Status uint8

const (
	// Equal means identical bytes or identical values.
	Equal Status = iota
	// WithinTolerance means every element is within the tolerance but at
	// least one differs.
	WithinTolerance
	// Different means a header mismatch or an element outside the tolerance.
	Different
	// Missing means the entry exists in only one file.
	Missing
	// Ignored means the values were skipped by WithIgnore.
	Ignored
)

func (s Status) String() string {
	switch s {
	case Equal:
		return "equal"
	case WithinTolerance:
		return "within-tolerance"
	case Different:
		return "different"
	case Missing:
		return "missing"
	case Ignored:
		return "ignored"
	default:
		return "unknown"
	}
}

// Deviation summarizes element differences of a numeric pair.
type Deviation struct {
	// MaxAbs is the largest |a-b|.
	MaxAbs float64
	// MaxRel is the largest |a-b| / max(|a|, |b|).
	MaxRel float64
	// RMSE is the root mean square of a-b.
	RMSE float64
	// Worst is the element index of MaxAbs.
	Worst int
	// Exceeding counts the elements outside the tolerance.
	Exceeding int
}

// ArrayDiff is the comparison of the entries at one position.
type ArrayDiff struct {
	Index  int
	Name   string
	Type   format.ArrayType
	Count  int64
	Status Status
	// Reason explains a Different or Missing status.
	Reason    string
	Deviation Deviation
}

// String returns a one-line description of the comparison.
func (d ArrayDiff) String() string {
	var sb strings.Builder
	fmt.Fprintf(&sb, "#%d %-8s %s[%d] %s", d.Index, d.Name, d.Type, d.Count, d.Status)
	if d.Reason != "" {
		fmt.Fprintf(&sb, ": %s", d.Reason)
	}
	if d.Deviation.MaxAbs > 0 {
		fmt.Fprintf(&sb, " (max abs %.6g at %d, max rel %.6g, rmse %.6g)",
			d.Deviation.MaxAbs, d.Deviation.Worst, d.Deviation.MaxRel, d.Deviation.RMSE)
	}

	return sb.String()
}

// Result is the comparison of two files.
type Result struct {
	Arrays []ArrayDiff
}

// Equal reports whether no pair is Different or Missing.
func (r *Result) Equal() bool {
	return len(r.Failures()) == 0
}

// Failures returns the pairs that are Different or Missing.
func (r *Result) Failures() []ArrayDiff {
	var out []ArrayDiff
	for _, d := range r.Arrays {
		if d.Status == Different || d.Status == Missing {
			out = append(out, d)
		}
	}

	return out
}

// Count returns the number of pairs with status s.
func (r *Result) Count(s Status) int {
	n := 0
	for _, d := range r.Arrays {
		if d.Status == s {
			n++
		}
	}

	return n
}

// String returns a summary line.
func (r *Result) String() string {
	return fmt.Sprintf("Result{Arrays: %d, Equal: %d, WithinTolerance: %d, Different: %d, Missing: %d}",
		len(r.Arrays), r.Count(Equal), r.Count(WithinTolerance), r.Count(Different), r.Count(Missing))
}
