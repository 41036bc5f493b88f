// Package regression compares two keyword files array by array, the way
// simulation regression suites check a new run against a reference run.
//
// # Matching
//
// Entries are paired by position. A pair must agree on keyword name, element
// type and element count; otherwise it is reported as Different without
// looking at the values. Entries present in only one file are reported as
// Missing.
//
// When the on-disk checksums of a pair match, the pair is Equal and no
// payload is decoded. This makes comparing a file against a byte copy of
// itself cheap.
//
// # Tolerances
//
// Numeric arrays (INTE, REAL, DOUB) pass element-wise when
//
//	|a-b| <= abs  or  |a-b| <= rel * max(|a|, |b|)
//
// Two NaNs compare equal. LOGI, CHAR and C0nn arrays must match exactly.
// Per-keyword tolerances override the defaults:
//
//	res, err := regression.Compare(ref, run,
//	    regression.WithAbsTolerance(1e-6),
//	    regression.WithRelTolerance(1e-4),
//	    regression.WithKeywordTolerance("PRESSURE", 1e-3, 1e-3),
//	)
//	if err != nil {
//	    return err
//	}
//	if !res.Equal() {
//	    for _, d := range res.Failures() {
//	        fmt.Println(d)
//	    }
//	}
//
// # Statistics
//
// Every decoded numeric pair carries a Deviation: the largest absolute and
// relative difference, the root mean square error and the number of elements
// outside the tolerance.
package regression
