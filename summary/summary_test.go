package summary

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/arloliu/eclio/eclfile"
	"github.com/arloliu/eclio/errs"
	"github.com/arloliu/eclio/format"
	"github.com/arloliu/eclio/resultset"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var testStart = time.Date(2020, time.January, 1, 0, 0, 0, 0, time.UTC)

func testNodes() []Node {
	return []Node{
		{Keyword: "TIME", Unit: "DAYS"},
		{Keyword: "FOPT", Unit: "SM3"},
		{Keyword: "WOPR", WGName: "OP_1", Unit: "SM3/DAY"},
		{Keyword: "WOPR", WGName: "OP_2", Unit: "SM3/DAY"},
		{Keyword: "WOPR", WGName: NoName, Unit: "SM3/DAY"},
		{Keyword: "BPR", Number: 111, Unit: "BARSA"},
		{Keyword: "RGFT", Number: CombineNumbers(1, 2), Unit: "SM3"},
	}
}

func testRow(t float32) []float32 {
	return []float32{t, t * 100, t * 2, t * 3, 0, 250 + t, 7}
}

// writeCase writes report steps of time values: each inner slice is one
// report step.
func writeCase(t *testing.T, rs resultset.ResultSet, nodes []Node, rows func(float32) []float32,
	firstReport int, reports [][]float32, opts ...WriterOption,
) {
	t.Helper()

	opts = append([]WriterOption{WithGridDims(10, 5, 3)}, opts...)
	w, err := NewWriter(rs, testStart, nodes, opts...)
	require.NoError(t, err)
	for n, times := range reports {
		require.NoError(t, w.BeginReportStep(firstReport+n))
		for _, tm := range times {
			require.NoError(t, w.WriteStep(rows(tm)))
		}
	}
	require.NoError(t, w.Close())
}

var testReports = [][]float32{{10, 20}, {30}, {45, 60}}

func TestCombineNumbers(t *testing.T) {
	assert.Equal(t, 393217, CombineNumbers(1, 2))
	assert.Equal(t, 360458, CombineNumbers(10, 1))

	r1, r2 := SplitNumber(393217)
	assert.Equal(t, 1, r1)
	assert.Equal(t, 2, r2)
	r1, r2 = SplitNumber(CombineNumbers(7, 12))
	assert.Equal(t, 7, r1)
	assert.Equal(t, 12, r2)
}

func TestKeyString(t *testing.T) {
	dims := [3]int{10, 5, 3}
	tests := []struct {
		node Node
		want string
	}{
		{Node{Keyword: "FOPT"}, "FOPT"},
		{Node{Keyword: "TIME"}, "TIME"},
		{Node{Keyword: "WOPR", WGName: "OP_1"}, "WOPR:OP_1"},
		{Node{Keyword: "WOPR", WGName: NoName}, ""},
		{Node{Keyword: "WOPR", WGName: ""}, "WOPR:"},
		{Node{Keyword: "GOPR", WGName: "G1"}, "GOPR:G1"},
		{Node{Keyword: "BPR", Number: 111}, "BPR:1,2,3"},
		{Node{Keyword: "BPR", Number: 0}, ""},
		{Node{Keyword: "CWIR", WGName: "INJ", Number: 1}, "CWIR:INJ:1,1,1"},
		{Node{Keyword: "RPR", Number: 3}, "RPR:3"},
		{Node{Keyword: "RGFT", Number: 393217}, "RGFT:1-2"},
		{Node{Keyword: "AAQP", Number: 2}, "AAQP:2"},
		{Node{Keyword: "SOFR", WGName: "PROD", Number: 4}, "SOFR:PROD:4"},
		{Node{Keyword: "SOFR", WGName: NoName, Number: 4}, ""},
		{Node{Keyword: "STEPTYPE"}, "STEPTYPE"},
		{Node{Keyword: "LBPR", LGR: "LGR1", LGRI: 1, LGRJ: 2, LGRK: 3}, "LBPR:LGR1:1,2,3"},
		{Node{Keyword: "LWOPR", LGR: "LGR1", WGName: "OP_1"}, "LWOPR:LGR1:OP_1"},
		{Node{Keyword: "LCOPR", LGR: "LGR1", WGName: "OP_1", LGRI: 4, LGRJ: 1, LGRK: 2}, "LCOPR:LGR1:OP_1:4,1,2"},
		{Node{Keyword: "LBPR", LGR: "LGR1", LGRI: NoLGRIndex, LGRJ: NoLGRIndex, LGRK: NoLGRIndex}, ""},
		{Node{Keyword: "LCOPR", LGR: "LGR1", WGName: "OP_1", LGRI: 4, LGRJ: NoLGRIndex, LGRK: 2}, ""},
	}

	for _, tt := range tests {
		t.Run(tt.want, func(t *testing.T) {
			assert.Equal(t, tt.want, KeyString(tt.node, dims))
		})
	}
}

func TestESmryLocalNodes(t *testing.T) {
	rs := resultset.ResultSet{Dir: t.TempDir(), Base: "CASE"}
	nodes := []Node{
		{Keyword: "TIME", Unit: "DAYS"},
		{Keyword: "LBPR", LGR: "LGR1", LGRI: 1, LGRJ: 2, LGRK: 3, Unit: "BARSA"},
		{Keyword: "WOPR", WGName: "OP_1", Unit: "SM3/DAY"},
	}
	w, err := NewWriter(rs, testStart, nodes)
	require.NoError(t, err)
	assert.Equal(t, []string{"TIME", "LBPR:LGR1:1,2,3", "WOPR:OP_1"}, w.Keys())
	require.NoError(t, w.BeginReportStep(1))
	require.NoError(t, w.WriteStep([]float32{1, 240, 12}))
	require.NoError(t, w.Close())

	s, err := Open(rs.FileName(resultset.ExtSpec))
	require.NoError(t, err)
	defer s.Close()

	got := s.Nodes()
	require.Len(t, got, 3)
	assert.Equal(t, NoName, got[0].WGName)
	assert.Equal(t, [3]int{NoLGRIndex, NoLGRIndex, NoLGRIndex}, [3]int{got[0].LGRI, got[0].LGRJ, got[0].LGRK})
	assert.Equal(t, [3]int{1, 2, 3}, [3]int{got[1].LGRI, got[1].LGRJ, got[1].LGRK})
	assert.Equal(t, [3]int{NoLGRIndex, NoLGRIndex, NoLGRIndex}, [3]int{got[2].LGRI, got[2].LGRJ, got[2].LGRK})

	lbpr, err := s.Get("LBPR:LGR1:1,2,3")
	require.NoError(t, err)
	assert.Equal(t, []float32{240}, lbpr)
}

func TestCategoryOf(t *testing.T) {
	assert.Equal(t, CategoryWell, CategoryOf("WOPR"))
	assert.Equal(t, CategorySegment, CategoryOf("SOFR"))
	assert.Equal(t, CategoryMiscellaneous, CategoryOf("STEPTYPE"))
	assert.Equal(t, CategoryMiscellaneous, CategoryOf("TIME"))
	assert.Equal(t, "Region", CategoryOf("RPR").String())
}

func TestESmry(t *testing.T) {
	for _, formatted := range []bool{false, true} {
		t.Run(map[bool]string{false: "binary", true: "formatted"}[formatted], func(t *testing.T) {
			rs := resultset.ResultSet{Dir: t.TempDir(), Base: "CASE"}
			writeCase(t, rs, testNodes(), testRow, 1, testReports, WithFormatted(formatted))

			s, err := Open(rs.FileName(resultset.SpecExt(formatted)))
			require.NoError(t, err)
			defer s.Close()

			assert.Equal(t, []string{"BPR:1,2,3", "FOPT", "RGFT:1-2", "TIME", "WOPR:OP_1", "WOPR:OP_2"}, s.Keys())
			assert.Equal(t, 5, s.NumSteps())
			assert.Equal(t, 3, s.NumReportSteps())
			assert.Equal(t, testStart, s.StartDate())
			assert.Len(t, s.Nodes(), 7)
			assert.Equal(t, [3]int{10, 5, 3}, s.Dims())

			fopt, err := s.Get("FOPT")
			require.NoError(t, err)
			assert.Equal(t, []float32{1000, 2000, 3000, 4500, 6000}, fopt)

			bpr, err := s.Get("BPR:1,2,3")
			require.NoError(t, err)
			assert.Equal(t, []float32{260, 270, 280, 295, 310}, bpr)

			unit, err := s.Unit("WOPR:OP_2")
			require.NoError(t, err)
			assert.Equal(t, "SM3/DAY", unit)

			atReport, err := s.GetAtReportStep("WOPR:OP_1")
			require.NoError(t, err)
			assert.Equal(t, []float32{40, 60, 120}, atReport)

			dates, err := s.Dates()
			require.NoError(t, err)
			require.Len(t, dates, 5)
			assert.Equal(t, testStart.AddDate(0, 0, 10), dates[0])
			assert.Equal(t, testStart.AddDate(0, 0, 60), dates[4])

			rdates, err := s.DatesAtReportStep()
			require.NoError(t, err)
			assert.Equal(t, []time.Time{testStart.AddDate(0, 0, 20), testStart.AddDate(0, 0, 30), testStart.AddDate(0, 0, 60)}, rdates)

			for n, want := range map[int]int{1: 1, 2: 2, 3: 4} {
				idx, err := s.ReportStepStartIndex(n)
				require.NoError(t, err)
				assert.Equal(t, want, idx)
			}
			for ts, want := range []bool{false, true, true, false, true} {
				assert.Equal(t, want, s.IsReportStep(ts), "time step %d", ts)
			}
			for _, n := range []int{0, 4} {
				_, err := s.ReportStepStartIndex(n)
				require.ErrorIs(t, err, errs.ErrInvalidArgument)
				require.ErrorIs(t, err, errs.ErrOutOfRange)
			}

			ministeps, err := s.Ministeps()
			require.NoError(t, err)
			assert.Equal(t, []int32{0, 1, 2, 3, 4}, ministeps)

			root, step := s.Restart()
			assert.Empty(t, root)
			assert.Zero(t, step)
		})
	}
}

func TestESmryKeys(t *testing.T) {
	rs := resultset.ResultSet{Dir: t.TempDir(), Base: "CASE"}
	writeCase(t, rs, testNodes(), testRow, 1, testReports)

	s, err := Open(rs.FileName(""))
	require.Error(t, err)
	require.Nil(t, s)

	s, err = Open(filepath.Join(rs.Dir, "CASE"))
	require.NoError(t, err)
	defer s.Close()

	assert.True(t, s.HasKey("TIME"))
	assert.False(t, s.HasKey("WOPR:OP_3"))

	_, err = s.Get("WOPR:OP_3")
	require.ErrorIs(t, err, errs.ErrInvalidArgument)
	_, err = s.Unit("FGPT")
	require.ErrorIs(t, err, errs.ErrInvalidArgument)
	require.ErrorIs(t, s.LoadData("FOPT", "NOPE"), errs.ErrInvalidArgument)

	matched, err := s.KeysMatching("WOPR:*")
	require.NoError(t, err)
	assert.Equal(t, []string{"WOPR:OP_1", "WOPR:OP_2"}, matched)

	matched, err = s.KeysMatching("?OPT")
	require.NoError(t, err)
	assert.Equal(t, []string{"FOPT"}, matched)

	_, err = s.KeysMatching("[")
	require.ErrorIs(t, err, errs.ErrInvalidArgument)

	require.NoError(t, s.LoadData("FOPT", "FOPT", "TIME"))
	require.NoError(t, s.LoadData())
}

func TestESmryErrors(t *testing.T) {
	dir := t.TempDir()

	_, err := Open(filepath.Join(dir, "MISSING.SMSPEC"))
	require.ErrorIs(t, err, errs.ErrNotFound)

	_, err = Open(filepath.Join(dir, "CASE.UNRST"))
	require.ErrorIs(t, err, errs.ErrInvalidArgument)

	rs := resultset.ResultSet{Dir: dir, Base: "CASE"}
	writeCase(t, rs, testNodes(), testRow, 1, testReports)
	require.NoError(t, os.Remove(rs.FileName(resultset.ExtSummary)))

	_, err = Open(rs.FileName(resultset.ExtSpec))
	require.ErrorIs(t, err, errs.ErrNotFound)
}

func TestESmrySeparateFiles(t *testing.T) {
	dir := t.TempDir()
	rs := resultset.ResultSet{Dir: dir, Base: "CASE"}

	writeCase(t, rs, testNodes(), testRow, 1, testReports, WithUnified(false))
	for _, ext := range []string{"S0001", "S0002", "S0003"} {
		require.FileExists(t, rs.FileName(ext))
	}

	s, err := Open(rs.FileName(resultset.ExtSpec))
	require.NoError(t, err)
	fopt, err := s.Get("FOPT")
	require.NoError(t, err)
	assert.Equal(t, []float32{1000, 2000, 3000, 4500, 6000}, fopt)
	idx, err := s.ReportStepStartIndex(3)
	require.NoError(t, err)
	assert.Equal(t, 4, idx)
	require.NoError(t, s.Close())

	// A unified file with other values; the newer set of data files wins.
	doubled := func(tm float32) []float32 { return testRow(2 * tm) }
	writeCase(t, rs, testNodes(), doubled, 1, testReports)

	old := time.Now().Add(-time.Hour)
	require.NoError(t, os.Chtimes(rs.FileName(resultset.ExtSummary), old, old))

	s, err = Open(rs.FileName(resultset.ExtSpec))
	require.NoError(t, err)
	tm, err := s.Get("TIME")
	require.NoError(t, err)
	assert.Equal(t, []float32{10, 20, 30, 45, 60}, tm)
	require.NoError(t, s.Close())

	newer := time.Now().Add(time.Hour)
	require.NoError(t, os.Chtimes(rs.FileName(resultset.ExtSummary), newer, newer))

	s, err = Open(rs.FileName(resultset.ExtSpec))
	require.NoError(t, err)
	tm, err = s.Get("TIME")
	require.NoError(t, err)
	assert.Equal(t, []float32{20, 40, 60, 90, 120}, tm)
	require.NoError(t, s.Close())
}

func restartNodes() []Node {
	return []Node{
		{Keyword: "TIME", Unit: "DAYS"},
		{Keyword: "FOPT", Unit: "SM3"},
		{Keyword: "WOPR", WGName: "OP_1", Unit: "SM3/DAY"},
		{Keyword: "FGPT", Unit: "SM3"},
	}
}

func restartRow(t float32) []float32 {
	return []float32{t, t * 100, t * 2, t * 5}
}

// writeRestartChain writes BASE with three report steps and RST restarting
// from BASE at report step 2.
func writeRestartChain(t *testing.T) (base, rst resultset.ResultSet) {
	t.Helper()

	dir := t.TempDir()
	base = resultset.ResultSet{Dir: dir, Base: "BASE"}
	rst = resultset.ResultSet{Dir: dir, Base: "RST"}

	writeCase(t, base, testNodes(), testRow, 1, testReports)
	writeCase(t, rst, restartNodes(), restartRow, 3, [][]float32{{45}, {70}}, WithRestart("BASE", 2))

	return base, rst
}

func TestESmryBaseRun(t *testing.T) {
	_, rst := writeRestartChain(t)

	s, err := Open(rst.FileName(resultset.ExtSpec))
	require.NoError(t, err)
	assert.Equal(t, 2, s.NumSteps())
	root, step := s.Restart()
	assert.Equal(t, "BASE", root)
	assert.Equal(t, 2, step)
	require.NoError(t, s.Close())

	s, err = Open(rst.FileName(resultset.ExtSpec), WithBaseRun(true))
	require.NoError(t, err)
	defer s.Close()

	assert.Equal(t, 5, s.NumSteps())
	assert.Equal(t, 4, s.NumReportSteps())
	assert.Equal(t, []string{"BPR:1,2,3", "FGPT", "FOPT", "RGFT:1-2", "TIME", "WOPR:OP_1", "WOPR:OP_2"}, s.Keys())

	tm, err := s.Get("TIME")
	require.NoError(t, err)
	assert.Equal(t, []float32{10, 20, 30, 45, 70}, tm)

	fgpt, err := s.Get("FGPT")
	require.NoError(t, err)
	assert.Equal(t, []float32{0, 0, 0, 225, 350}, fgpt)

	wopr2, err := s.Get("WOPR:OP_2")
	require.NoError(t, err)
	assert.Equal(t, []float32{30, 60, 90, 0, 0}, wopr2)

	idx, err := s.ReportStepStartIndex(4)
	require.NoError(t, err)
	assert.Equal(t, 4, idx)

	_, err = s.MakeESmryFile()
	require.ErrorIs(t, err, errs.ErrUnsupportedCombination)
}

func TestESmryBaseRunMissing(t *testing.T) {
	rs := resultset.ResultSet{Dir: t.TempDir(), Base: "RST"}
	writeCase(t, rs, restartNodes(), restartRow, 3, [][]float32{{45}}, WithRestart("NOWHERE", 2))

	_, err := Open(rs.FileName(resultset.ExtSpec), WithBaseRun(true))
	require.ErrorIs(t, err, errs.ErrNotFound)
}

func TestMakeESmryFile(t *testing.T) {
	rs := resultset.ResultSet{Dir: t.TempDir(), Base: "CASE"}
	writeCase(t, rs, testNodes(), testRow, 1, testReports)

	s, err := Open(rs.FileName(resultset.ExtSpec))
	require.NoError(t, err)
	defer s.Close()

	ok, err := s.MakeESmryFile()
	require.NoError(t, err)
	require.True(t, ok)
	require.FileExists(t, s.ESmryPath())

	ok, err = s.MakeESmryFile()
	require.NoError(t, err)
	require.False(t, ok)

	ok, err = s.MakeESmryFile(WithReplace(), WithCacheCompression(format.CompressionZstd))
	require.NoError(t, err)
	require.True(t, ok)

	e, err := OpenExt(s.ESmryPath())
	require.NoError(t, err)
	defer e.Close()

	assert.Equal(t, s.Keys(), e.Keys())
	assert.Equal(t, s.NumSteps(), e.NumSteps())
	assert.Equal(t, s.StartDate(), e.StartDate())

	for _, key := range s.Keys() {
		want, err := s.Get(key)
		require.NoError(t, err)
		got, err := e.Get(key)
		require.NoError(t, err)
		assert.Equal(t, want, got, key)

		wantUnit, _ := s.Unit(key)
		gotUnit, _ := e.Unit(key)
		assert.Equal(t, wantUnit, gotUnit)
	}

	wantDates, err := s.DatesAtReportStep()
	require.NoError(t, err)
	gotDates, err := e.DatesAtReportStep()
	require.NoError(t, err)
	assert.Equal(t, wantDates, gotDates)

	assert.Equal(t, []int32{0, 1, 2, 3, 4}, e.Ministeps())

	_, err = e.Get("NOPE")
	require.ErrorIs(t, err, errs.ErrInvalidArgument)
}

func TestOpenExtLazy(t *testing.T) {
	rs := resultset.ResultSet{Dir: t.TempDir(), Base: "CASE"}
	writeCase(t, rs, testNodes(), testRow, 1, testReports)

	s, err := Open(rs.FileName(resultset.ExtSpec))
	require.NoError(t, err)
	_, err = s.MakeESmryFile()
	require.NoError(t, err)
	require.NoError(t, s.Close())

	e, err := OpenExt(filepath.Join(rs.Dir, "CASE"))
	require.NoError(t, err)
	defer e.Close()

	for _, v := range e.values {
		assert.Nil(t, v)
	}

	require.NoError(t, e.LoadData("FOPT", "FOPT", "TIME"))
	loaded := 0
	for _, v := range e.values {
		if v != nil {
			loaded++
		}
	}
	assert.Equal(t, 2, loaded)

	_, err = OpenExt(rs.FileName(resultset.ExtSpec))
	require.ErrorIs(t, err, errs.ErrInvalidArgument)
}

func TestOpenExtInvalid(t *testing.T) {
	tests := []struct {
		name  string
		rstep []int32
		tstep []int32
		units []string
	}{
		{"short TSTEP", []int32{1, 1, 1}, []int32{0}, []string{"DAYS"}},
		{"long TSTEP", []int32{1}, []int32{0, 1}, []string{"DAYS"}},
		{"units mismatch", []int32{1}, []int32{0}, []string{"DAYS", "SM3"}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			path := filepath.Join(t.TempDir(), "CASE.ESMRY")
			w, err := eclfile.Create(path)
			require.NoError(t, err)
			require.NoError(t, w.WriteInts("START", []int32{1, 1, 2020, 0, 0, 0, 0}))
			require.NoError(t, w.WriteStrings("KEYCHECK", []string{"TIME"}))
			require.NoError(t, w.WriteStrings("UNITS", tt.units))
			require.NoError(t, w.WriteInts("RSTEP", tt.rstep))
			require.NoError(t, w.WriteInts("TSTEP", tt.tstep))
			require.NoError(t, w.WriteReals("V0", make([]float32, len(tt.rstep))))
			require.NoError(t, w.Close())

			_, err = OpenExt(path)
			require.ErrorIs(t, err, errs.ErrInvalidFormat)
		})
	}
}

func TestOpenExtBaseRun(t *testing.T) {
	base, rst := writeRestartChain(t)

	for _, rs := range []resultset.ResultSet{base, rst} {
		s, err := Open(rs.FileName(resultset.ExtSpec))
		require.NoError(t, err)
		_, err = s.MakeESmryFile()
		require.NoError(t, err)
		require.NoError(t, s.Close())
	}

	want, err := Open(rst.FileName(resultset.ExtSpec), WithBaseRun(true))
	require.NoError(t, err)
	defer want.Close()

	e, err := OpenExt(rst.FileName(resultset.ExtESmry), WithBaseRun(true))
	require.NoError(t, err)
	defer e.Close()

	root, step := e.Restart()
	assert.Equal(t, "BASE", root)
	assert.Equal(t, 2, step)

	assert.Equal(t, want.Keys(), e.Keys())
	assert.Equal(t, want.NumSteps(), e.NumSteps())
	for _, key := range want.Keys() {
		w, err := want.Get(key)
		require.NoError(t, err)
		g, err := e.Get(key)
		require.NoError(t, err)
		assert.Equal(t, w, g, key)
	}

	for n := 1; n <= 4; n++ {
		wi, err := want.ReportStepStartIndex(n)
		require.NoError(t, err)
		gi, err := e.ReportStepStartIndex(n)
		require.NoError(t, err)
		assert.Equal(t, wi, gi)
	}
}

func TestWriterErrors(t *testing.T) {
	rs := resultset.ResultSet{Dir: t.TempDir(), Base: "CASE"}

	_, err := NewWriter(rs, testStart, nil)
	require.ErrorIs(t, err, errs.ErrInvalidArgument)

	w, err := NewWriter(rs, testStart, testNodes())
	require.NoError(t, err)
	defer w.Close()

	require.ErrorIs(t, w.WriteStep(testRow(1)), errs.ErrInvalidArgument)
	require.NoError(t, w.BeginReportStep(1))
	require.ErrorIs(t, w.BeginReportStep(1), errs.ErrInvalidArgument)
	require.ErrorIs(t, w.WriteStep([]float32{1}), errs.ErrInvalidArgument)
	require.ErrorIs(t, w.WriteStepValues(map[string]float32{"NOPE": 1}), errs.ErrInvalidArgument)
	require.NoError(t, w.WriteStepValues(map[string]float32{"TIME": 1, "FOPT": 5}))

	keys := w.Keys()
	assert.Equal(t, "WOPR:OP_1", keys[2])
	assert.Empty(t, keys[4])
}
