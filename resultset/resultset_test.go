package resultset

import (
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/require"
)

func TestResultSet_FileName(t *testing.T) {
	tests := []struct {
		base string
		want string
	}{
		{"CASE", "/x/y/z/CASE.F0123"},
		{"CASE.", "/x/y/z/CASE.F0123"},
		{"CASE.01", "/x/y/z/CASE.01.F0123"},
		{"CASE.01.", "/x/y/z/CASE.01.F0123"},
	}
	for _, tt := range tests {
		t.Run(tt.base, func(t *testing.T) {
			rs := ResultSet{Dir: "/x/y/z/", Base: tt.base}
			require.Equal(t, filepath.FromSlash(tt.want), rs.FileName("F0123"))
		})
	}
}

func TestFromPath(t *testing.T) {
	rs, ext := FromPath(filepath.Join("out", "CASE.01.UNRST"))
	require.Equal(t, "CASE.01", rs.Base)
	require.Equal(t, "UNRST", ext)
	require.Equal(t, filepath.Join("out", "CASE.01.UNRST"), rs.FileName(ext))

	rs, ext = FromPath("CASE")
	require.Equal(t, ResultSet{Base: "CASE"}, rs)
	require.Empty(t, ext)
}

func TestExtensions(t *testing.T) {
	require.Equal(t, "UNRST", RestartExt(7, false, true))
	require.Equal(t, "FUNRST", RestartExt(7, true, true))
	require.Equal(t, "X0007", RestartExt(7, false, false))
	require.Equal(t, "F0123", RestartExt(123, true, false))

	require.Equal(t, "UNSMRY", SummaryExt(1, false, true))
	require.Equal(t, "FUNSMRY", SummaryExt(1, true, true))
	require.Equal(t, "S0001", SummaryExt(1, false, false))
	require.Equal(t, "A0010", SummaryExt(10, true, false))

	require.Equal(t, "SMSPEC", SpecExt(false))
	require.Equal(t, "FSMSPEC", SpecExt(true))
	require.Equal(t, "FEGRID", Ext(ExtGrid, true))
}

func TestStepFromExt(t *testing.T) {
	tests := []struct {
		ext       string
		step      int
		formatted bool
		ok        bool
	}{
		{"X0012", 12, false, true},
		{"F0012", 12, true, true},
		{"S0003", 3, false, true},
		{"A9999", 9999, true, true},
		{"UNRST", 0, false, false},
		{"X00a2", 0, false, false},
		{"Y0001", 0, false, false},
		{"X001", 0, false, false},
	}
	for _, tt := range tests {
		t.Run(tt.ext, func(t *testing.T) {
			step, formatted, ok := StepFromExt(tt.ext)
			require.Equal(t, tt.ok, ok)
			require.Equal(t, tt.step, step)
			require.Equal(t, tt.formatted, formatted)
		})
	}
}

func TestToggleExt(t *testing.T) {
	tests := map[string]string{
		"EGRID":   "FEGRID",
		"FEGRID":  "EGRID",
		"INIT":    "FINIT",
		"UNRST":   "FUNRST",
		"X0012":   "F0012",
		"F0012":   "X0012",
		"S0003":   "A0003",
		"A0003":   "S0003",
		"SMSPEC":  "FSMSPEC",
		"FUNSMRY": "UNSMRY",
		"RFT":     "FRFT",
	}
	for in, want := range tests {
		got, ok := ToggleExt(in)
		require.True(t, ok, in)
		require.Equal(t, want, got, in)
		require.Equal(t, IsFormattedExt(want), !IsFormattedExt(in), in)
	}

	_, ok := ToggleExt("ESMRY")
	require.False(t, ok)
}
