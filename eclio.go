// Package eclio reads and writes ECLIPSE-style keyword files: the grid (EGRID),
// initial properties (INIT), restart (UNRST, Xnnnn), summary (SMSPEC, UNSMRY,
// ESMRY) and RFT files written by reservoir simulators, in both the binary
// and the formatted layout.
//
// # Core Features
//
//   - Lazy, index-first reading of keyword arrays with optional mmap
//   - Binary and formatted layouts with byte-identical round trips
//   - Typed access to grid geometry, restart steps, summary vectors and RFT reports
//   - ESMRY cache files with optional compression (Zstd, S2, LZ4)
//   - Array-by-array regression comparison with numeric tolerances
//
// # Basic Usage
//
// Listing the arrays of any keyword file:
//
//	f, err := eclio.Open("CASE.INIT")
//	if err != nil {
//	    return err
//	}
//	defer f.Close()
//
//	for _, e := range f.List() {
//	    fmt.Println(e.Name, e.Type, e.Count)
//	}
//
// Reading summary vectors, from SMSPEC or ESMRY alike:
//
//	s, err := eclio.OpenSummary("CASE.SMSPEC")
//	if err != nil {
//	    return err
//	}
//	defer s.Close()
//
//	fopt, _ := s.Get("FOPT")
//	dates, _ := s.Dates()
//
// # Package Structure
//
// This package provides convenient top-level wrappers around the eclfile,
// grid, restart, summary and rft packages. For writers and fine-grained
// control, use those packages directly.
package eclio

import (
	"fmt"

	"github.com/arloliu/eclio/eclfile"
	"github.com/arloliu/eclio/errs"
	"github.com/arloliu/eclio/grid"
	"github.com/arloliu/eclio/restart"
	"github.com/arloliu/eclio/resultset"
	"github.com/arloliu/eclio/rft"
	"github.com/arloliu/eclio/summary"
)

// Kind classifies a result file by its extension.
type Kind uint8

const (
	KindUnknown Kind = iota
	KindGrid
	KindInit
	KindRestart
	KindSummarySpec
	KindSummaryData
	KindESmry
	KindRft
)

func (k Kind) String() string {
	switch k {
	case KindGrid:
		return "Grid"
	case KindInit:
		return "Init"
	case KindRestart:
		return "Restart"
	case KindSummarySpec:
		return "SummarySpec"
	case KindSummaryData:
		return "SummaryData"
	case KindESmry:
		return "ESmry"
	case KindRft:
		return "Rft"
	default:
		return "Unknown"
	}
}

// Detect classifies path by its extension.
//
// Returns:
//   - Kind: the file kind, KindUnknown for unrecognized extensions
//   - bool: true if the extension denotes the formatted layout
func Detect(path string) (Kind, bool) {
	_, ext := resultset.FromPath(path)
	formatted := resultset.IsFormattedExt(ext)

	if _, _, ok := resultset.StepFromExt(ext); ok {
		if ext[0] == 'X' || ext[0] == 'F' {
			return KindRestart, formatted
		}

		return KindSummaryData, formatted
	}

	base := ext
	if formatted {
		base = ext[1:]
	}
	switch base {
	case resultset.ExtGrid, "GRID":
		return KindGrid, formatted
	case resultset.ExtInit:
		return KindInit, formatted
	case resultset.ExtRestart:
		return KindRestart, formatted
	case resultset.ExtSummary:
		return KindSummaryData, formatted
	case resultset.ExtSpec:
		return KindSummarySpec, formatted
	case resultset.ExtRft:
		return KindRft, formatted
	case resultset.ExtESmry:
		return KindESmry, false
	default:
		return KindUnknown, false
	}
}

// Open opens any keyword file for array-level access.
func Open(path string, opts ...eclfile.ReaderOption) (*eclfile.File, error) {
	return eclfile.Open(path, opts...)
}

// OpenGrid opens an EGRID or FEGRID file.
func OpenGrid(path string, opts ...grid.Option) (*grid.EGrid, error) {
	return grid.Open(path, opts...)
}

// OpenInit opens an INIT or FINIT file.
func OpenInit(path string, opts ...grid.Option) (*grid.EInit, error) {
	return grid.OpenInit(path, opts...)
}

// OpenRestart opens a unified or per-step restart file.
func OpenRestart(path string, opts ...restart.Option) (*restart.ERst, error) {
	return restart.Open(path, opts...)
}

// OpenRFT opens an RFT or FRFT file.
func OpenRFT(path string, opts ...rft.Option) (*rft.ERft, error) {
	return rft.Open(path, opts...)
}

// OpenSummary opens a summary case through its ESMRY file or its SMSPEC
// file, depending on the extension of path. A path without extension is
// read through the SMSPEC file.
func OpenSummary(path string, opts ...summary.Option) (summary.Reader, error) {
	_, ext := resultset.FromPath(path)
	if ext == "" {
		return summary.Open(path, opts...)
	}

	switch kind, _ := Detect(path); kind {
	case KindESmry:
		return summary.OpenExt(path, opts...)
	case KindSummarySpec:
		return summary.Open(path, opts...)
	default:
		return nil, fmt.Errorf("%w: %q is not a summary specification", errs.ErrInvalidArgument, path)
	}
}
