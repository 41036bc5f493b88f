// Package resultset names the files of a simulation result set: CASE.EGRID,
// CASE.UNRST, CASE.X0012, CASE.SMSPEC and their formatted counterparts.
package resultset

import (
	"fmt"
	"path/filepath"
	"strings"
)

// Extensions of the unformatted files. The formatted counterpart prefixes an F.
const (
	ExtGrid    = "EGRID"
	ExtInit    = "INIT"
	ExtRestart = "UNRST"
	ExtSummary = "UNSMRY"
	ExtSpec    = "SMSPEC"
	ExtRft     = "RFT"
	ExtESmry   = "ESMRY"
)

// unifiedBases lists the extensions that have an F-prefixed formatted form.
var unifiedBases = []string{ExtGrid, ExtInit, ExtRestart, ExtSummary, ExtSpec, ExtRft, "GRID"}

// ResultSet identifies a case by output directory and base name.
type ResultSet struct {
	Dir  string
	Base string
}

// FromPath splits path into its result set and extension. "out/CASE.UNRST"
// yields {out, CASE} and "UNRST".
func FromPath(path string) (ResultSet, string) {
	dir, name := filepath.Split(path)
	dot := strings.LastIndexByte(name, '.')
	if dot < 0 {
		return ResultSet{Dir: dir, Base: name}, ""
	}

	return ResultSet{Dir: dir, Base: name[:dot]}, name[dot+1:]
}

// FileName returns Dir/Base.ext. A trailing dot on Base is dropped.
func (rs ResultSet) FileName(ext string) string {
	base := strings.TrimSuffix(rs.Base, ".")

	return filepath.Join(rs.Dir, base+"."+ext)
}

// Ext returns the extension for an unformatted base extension such as
// ExtGrid in the requested layout.
func Ext(base string, formatted bool) string {
	if formatted {
		return "F" + base
	}

	return base
}

// RestartExt returns UNRST/FUNRST for unified output and Xnnnn/Fnnnn otherwise.
func RestartExt(step int, formatted, unified bool) string {
	if unified {
		return Ext(ExtRestart, formatted)
	}
	if formatted {
		return fmt.Sprintf("F%04d", step)
	}

	return fmt.Sprintf("X%04d", step)
}

// SummaryExt returns UNSMRY/FUNSMRY for unified output and Snnnn/Annnn otherwise.
func SummaryExt(step int, formatted, unified bool) string {
	if unified {
		return Ext(ExtSummary, formatted)
	}
	if formatted {
		return fmt.Sprintf("A%04d", step)
	}

	return fmt.Sprintf("S%04d", step)
}

// SpecExt returns SMSPEC or FSMSPEC.
func SpecExt(formatted bool) string {
	return Ext(ExtSpec, formatted)
}

// StepFromExt parses a per-step extension (Xnnnn, Fnnnn, Snnnn, Annnn).
//
// Returns:
//   - int: the report step
//   - bool: true if the extension denotes a formatted file
//   - bool: false if ext is not a per-step extension
func StepFromExt(ext string) (int, bool, bool) {
	if len(ext) != 5 {
		return 0, false, false
	}

	step := 0
	for _, c := range ext[1:] {
		if c < '0' || c > '9' {
			return 0, false, false
		}
		step = step*10 + int(c-'0')
	}

	switch ext[0] {
	case 'X', 'S':
		return step, false, true
	case 'F', 'A':
		return step, true, true
	default:
		return 0, false, false
	}
}

// IsFormattedExt reports whether ext names a formatted file.
func IsFormattedExt(ext string) bool {
	if _, formatted, ok := StepFromExt(ext); ok {
		return formatted
	}

	for _, base := range unifiedBases {
		if ext == "F"+base {
			return true
		}
	}

	return false
}

// ToggleExt maps an extension to its counterpart in the other layout:
// EGRID <-> FEGRID, X0012 <-> F0012, S0003 <-> A0003.
//
// Returns false for extensions without a counterpart, such as ESMRY.
func ToggleExt(ext string) (string, bool) {
	if step, formatted, ok := StepFromExt(ext); ok {
		switch ext[0] {
		case 'X', 'F':
			return RestartExt(step, !formatted, false), true
		default:
			return SummaryExt(step, !formatted, false), true
		}
	}

	for _, base := range unifiedBases {
		switch ext {
		case base:
			return "F" + base, true
		case "F" + base:
			return base, true
		}
	}

	return "", false
}
