// Package summary reads and writes summary vectors: time series of field,
// well, group, region and block quantities.
//
// A case is described by an SMSPEC file listing one node per vector and
// stored in a unified UNSMRY file or in per-report-step Snnnn files.
// Vectors are addressed by key strings built from the keyword and its
// qualifiers:
//
//	s, err := summary.Open("out/CASE.SMSPEC", summary.WithBaseRun(true))
//	if err != nil {
//		return err
//	}
//	defer s.Close()
//
//	wopr, err := s.Get("WOPR:OP_1")
//
// MakeESmryFile stores all vectors column-wise in ROOT.ESMRY; OpenExt reads
// that file and decodes only the vectors that are asked for.
package summary
