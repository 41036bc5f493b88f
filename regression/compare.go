package regression

import (
	"fmt"
	"math"

	"github.com/arloliu/eclio/eclfile"
	"github.com/arloliu/eclio/endian"
	"github.com/arloliu/eclio/format"
	"github.com/arloliu/eclio/internal/options"
	"github.com/arloliu/eclio/internal/pool"
	"gonum.org/v1/gonum/floats"
)

// CompareFiles opens both paths and compares them.
func CompareFiles(pathA, pathB string, opts ...CompareOption) (*Result, error) {
	a, err := eclfile.Open(pathA)
	if err != nil {
		return nil, err
	}
	defer a.Close()

	b, err := eclfile.Open(pathB)
	if err != nil {
		return nil, err
	}
	defer b.Close()

	return Compare(a, b, opts...)
}

// Compare pairs the entries of a and b by position and compares them.
//
// Decoded payloads are released after each pair, so memory use is bounded by
// the largest array.
//
// Returns:
//   - *Result: one ArrayDiff per position of the longer file
//   - error: decode failures; value differences are reported in the Result
func Compare(a, b *eclfile.File, opts ...CompareOption) (*Result, error) {
	cfg := defaultCompareConfig()
	if err := options.Apply(cfg, opts...); err != nil {
		return nil, err
	}

	n := max(a.Len(), b.Len())
	res := &Result{Arrays: make([]ArrayDiff, 0, n)}
	for i := range n {
		d, err := compareAt(a, b, i, cfg)
		if err != nil {
			return nil, fmt.Errorf("entry %d: %w", i, err)
		}
		res.Arrays = append(res.Arrays, d)
	}

	cfg.Logger.Debug("compared keyword files", "a", a.Path(), "b", b.Path(),
		"arrays", n, "failures", len(res.Failures()))

	return res, nil
}

func compareAt(a, b *eclfile.File, i int, cfg *CompareConfig) (ArrayDiff, error) {
	if i >= a.Len() || i >= b.Len() {
		src, where := b, "first"
		if i < a.Len() {
			src, where = a, "second"
		}
		e, err := src.Entry(i)
		if err != nil {
			return ArrayDiff{}, err
		}

		return ArrayDiff{Index: i, Name: e.Name, Type: e.Type, Count: e.Count, Status: Missing,
			Reason: "not in " + where + " file"}, nil
	}

	ea, err := a.Entry(i)
	if err != nil {
		return ArrayDiff{}, err
	}
	eb, err := b.Entry(i)
	if err != nil {
		return ArrayDiff{}, err
	}

	d := ArrayDiff{Index: i, Name: ea.Name, Type: ea.Type, Count: ea.Count}
	switch {
	case ea.Name != eb.Name:
		d.Status, d.Reason = Different, fmt.Sprintf("name %s vs %s", ea.Name, eb.Name)
		return d, nil
	case ea.Type != eb.Type || ea.Width != eb.Width:
		d.Status, d.Reason = Different, fmt.Sprintf("type %s vs %s", ea.Tag(), eb.Tag())
		return d, nil
	case ea.Count != eb.Count:
		d.Status, d.Reason = Different, fmt.Sprintf("count %d vs %d", ea.Count, eb.Count)
		return d, nil
	}

	if cfg.Ignore[ea.Name] {
		d.Status = Ignored
		return d, nil
	}

	if a.Formatted() == b.Formatted() && endian.IsLittleEndian(a.Engine()) == endian.IsLittleEndian(b.Engine()) {
		ca, err := a.Checksum(i)
		if err != nil {
			return d, err
		}
		cb, err := b.Checksum(i)
		if err != nil {
			return d, err
		}
		if ca == cb {
			d.Status = Equal
			return d, nil
		}
	}

	va, err := a.Array(i)
	if err != nil {
		return d, err
	}
	defer a.Release(i)
	vb, err := b.Array(i)
	if err != nil {
		return d, err
	}
	defer b.Release(i)

	switch ea.Type {
	case format.TypeInte, format.TypeReal, format.TypeDoub:
		compareNumeric(&d, va, vb, cfg.tolerance(ea.Name))
	default:
		compareExact(&d, va, vb)
	}

	return d, nil
}

func toFloat64(dst []float64, a eclfile.Array) {
	switch v := a.(type) {
	case eclfile.Ints:
		for i, x := range v {
			dst[i] = float64(x)
		}
	case eclfile.Reals:
		for i, x := range v {
			dst[i] = float64(x)
		}
	case eclfile.Doubles:
		copy(dst, v)
	}
}

func compareNumeric(d *ArrayDiff, a, b eclfile.Array, tol Tolerance) {
	n := a.Len()
	if n == 0 {
		d.Status = Equal
		return
	}

	xa, cleanA := pool.GetFloat64Slice(n)
	defer cleanA()
	xb, cleanB := pool.GetFloat64Slice(n)
	defer cleanB()
	toFloat64(xa, a)
	toFloat64(xb, b)

	if floats.Equal(xa, xb) {
		d.Status = Equal
		return
	}

	dev := Deviation{Worst: -1}
	sq := 0.0
	for i := range n {
		x, y := xa[i], xb[i]
		if math.IsNaN(x) && math.IsNaN(y) {
			xa[i], xb[i] = 0, 0
			continue
		}
		if x == y {
			continue
		}

		diff := math.Abs(x - y)
		scale := math.Max(math.Abs(x), math.Abs(y))
		rel := diff / scale
		if math.IsNaN(diff) || math.IsInf(diff, 0) {
			diff, rel = math.Inf(1), math.Inf(1)
		}
		if diff > dev.MaxAbs {
			dev.MaxAbs, dev.Worst = diff, i
		}
		dev.MaxRel = math.Max(dev.MaxRel, rel)
		if !(diff <= tol.Abs || diff <= tol.Rel*scale) {
			dev.Exceeding++
		}
		sq += diff * diff
	}

	if math.IsInf(sq, 0) {
		dev.RMSE = math.Inf(1)
	} else {
		dev.RMSE = floats.Distance(xa, xb, 2) / math.Sqrt(float64(n))
	}
	d.Deviation = dev

	switch {
	case dev.Exceeding > 0:
		d.Status = Different
		d.Reason = fmt.Sprintf("%d of %d values outside tolerance", dev.Exceeding, n)
	case dev.Worst < 0:
		d.Status = Equal
	default:
		d.Status = WithinTolerance
	}
}

func compareExact(d *ArrayDiff, a, b eclfile.Array) {
	mismatch, first := 0, -1
	count := func(eq func(i int) bool, n int) {
		for i := range n {
			if !eq(i) {
				if first < 0 {
					first = i
				}
				mismatch++
			}
		}
	}

	switch va := a.(type) {
	case eclfile.Logicals:
		vb, _ := b.(eclfile.Logicals)
		count(func(i int) bool { return va[i] == vb[i] }, min(len(va), len(vb)))
	case eclfile.Strings:
		vb, _ := b.(eclfile.Strings)
		count(func(i int) bool { return va.Values[i] == vb.Values[i] }, min(len(va.Values), len(vb.Values)))
	}

	if mismatch == 0 {
		d.Status = Equal
		return
	}
	d.Status = Different
	d.Reason = fmt.Sprintf("%d values differ, first at %d", mismatch, first)
}
