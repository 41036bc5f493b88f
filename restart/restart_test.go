package restart

import (
	"path/filepath"
	"testing"

	"github.com/arloliu/eclio/eclfile"
	"github.com/arloliu/eclio/errs"
	"github.com/arloliu/eclio/format"
	"github.com/arloliu/eclio/resultset"
	"github.com/stretchr/testify/require"
)

type stepData struct {
	I []int32
	L []bool
	S []float32
	D []float64
	Z []string
}

var (
	step1 = stepData{
		I: []int32{1, 7, 2, 9},
		L: []bool{true, false, false, true},
		S: []float32{3.1, 4.1, 59.265},
		D: []float64{2.71, 8.21},
		Z: []string{"W1", "W2"},
	}
	step13 = stepData{
		I: []int32{35, 51, 13},
		L: []bool{true, true, true, false},
		S: []float32{17.29e-02, 1.4142},
		D: []float64{0.6931, 1.6180, 123.45e6},
		Z: []string{"G1", "FIELD"},
	}
	step5 = stepData{
		I: []int32{1, 2, 3, 4},
		L: []bool{false, false, false, true},
		S: []float32{1.23e-04, 1.234e5, -5.4321e-9},
		D: []float64{0.6931, 1.6180},
		Z: []string{"HELLO", ", ", "WORLD"},
	}
)

func writeStep(t *testing.T, rs resultset.ResultSet, n int, data stepData, opts ...WriterOption) {
	t.Helper()

	w, err := NewWriter(rs, n, opts...)
	require.NoError(t, err)
	require.Equal(t, n, w.Step())
	require.NoError(t, w.WriteInts("I", data.I))
	require.NoError(t, w.WriteLogicals("L", data.L))
	require.NoError(t, w.WriteReals("S", data.S))
	require.NoError(t, w.WriteDoubles("D", data.D))
	require.NoError(t, w.WriteStrings("Z", data.Z))
	require.NoError(t, w.Close())
}

func requireStep(t *testing.T, r *ERst, n int, data stepData) {
	t.Helper()

	i, err := Get[int32](r, "I", n, 0)
	require.NoError(t, err)
	require.Equal(t, data.I, i)

	l, err := Get[bool](r, "L", n, 0)
	require.NoError(t, err)
	require.Equal(t, data.L, l)

	s, err := Get[float32](r, "S", n, 0)
	require.NoError(t, err)
	require.Equal(t, data.S, s)

	d, err := Get[float64](r, "D", n, 0)
	require.NoError(t, err)
	require.Equal(t, data.D, d)

	z, err := Get[string](r, "Z", n, 0)
	require.NoError(t, err)
	want := make([]string, len(data.Z))
	for k, v := range data.Z {
		want[k] = trimRight(v)
	}
	require.Equal(t, want, z)
}

func trimRight(s string) string {
	for len(s) > 0 && s[len(s)-1] == ' ' {
		s = s[:len(s)-1]
	}

	return s
}

func TestWriter_Unified(t *testing.T) {
	for _, formatted := range []bool{false, true} {
		t.Run(map[bool]string{false: "unformatted", true: "formatted"}[formatted], func(t *testing.T) {
			rs := resultset.ResultSet{Dir: t.TempDir(), Base: "CASE"}
			opt := WithFormatted(formatted)
			path := rs.FileName(resultset.RestartExt(0, formatted, true))

			writeStep(t, rs, 1, step1, opt)
			writeStep(t, rs, 13, step13, opt)

			r, err := Open(path)
			require.NoError(t, err)
			require.Equal(t, []int{1, 13}, r.ReportSteps())
			requireStep(t, r, 13, step13)
			require.NoError(t, r.Close())

			// step 5 precedes 13 and replaces it
			writeStep(t, rs, 5, step5, opt)

			r, err = Open(path)
			require.NoError(t, err)
			require.Equal(t, []int{1, 5}, r.ReportSteps())
			require.False(t, r.HasReportStep(13))
			requireStep(t, r, 5, step5)
			requireStep(t, r, 1, step1)
			require.NoError(t, r.Close())

			writeStep(t, rs, 13, step13, opt)

			r, err = Open(path)
			require.NoError(t, err)
			defer r.Close()
			require.Equal(t, []int{1, 5, 13}, r.ReportSteps())

			entries, err := r.ListOfArrays(13)
			require.NoError(t, err)
			require.Equal(t, []eclfile.Entry{
				{Name: "SEQNUM", Type: format.TypeInte, Width: 4, Count: 1},
				{Name: "I", Type: format.TypeInte, Width: 4, Count: 3},
				{Name: "L", Type: format.TypeLogi, Width: 4, Count: 4},
				{Name: "S", Type: format.TypeReal, Width: 4, Count: 2},
				{Name: "D", Type: format.TypeDoub, Width: 8, Count: 3},
				{Name: "Z", Type: format.TypeChar, Width: 8, Count: 2},
			}, entries)
		})
	}
}

func TestWriter_Separate(t *testing.T) {
	rs := resultset.ResultSet{Dir: t.TempDir(), Base: "CASE"}
	writeStep(t, rs, 13, step13, WithFormatted(true), WithUnified(false))
	writeStep(t, rs, 5, step5, WithUnified(false))

	r, err := Open(rs.FileName("F0013"))
	require.NoError(t, err)
	defer r.Close()
	require.Equal(t, []int{13}, r.ReportSteps())
	requireStep(t, r, 13, step13)

	has, err := r.HasArray("SEQNUM", 13)
	require.NoError(t, err)
	require.False(t, has)

	r5, err := Open(rs.FileName("X0005"))
	require.NoError(t, err)
	defer r5.Close()
	requireStep(t, r5, 5, step5)
}

func TestOpen_NoStepNumber(t *testing.T) {
	path := filepath.Join(t.TempDir(), "CASE.DATA")
	w, err := eclfile.Create(path)
	require.NoError(t, err)
	require.NoError(t, w.WriteInts("I", []int32{1}))
	require.NoError(t, w.Close())

	_, err = Open(path)
	require.ErrorIs(t, err, errs.ErrInvalidArgument)
}

func TestOpen_DecreasingSteps(t *testing.T) {
	path := filepath.Join(t.TempDir(), "CASE.UNRST")
	w, err := eclfile.Create(path)
	require.NoError(t, err)
	require.NoError(t, w.WriteInts("SEQNUM", []int32{4}))
	require.NoError(t, w.WriteInts("SEQNUM", []int32{2}))
	require.NoError(t, w.Close())

	_, err = Open(path)
	require.ErrorIs(t, err, errs.ErrInvalidFormat)
}

// writeLGRFile writes steps 0..3, each with a global part and blocks for
// LGR1 (128 cells) and LGR2 (192 cells).
func writeLGRFile(t *testing.T, rs resultset.ResultSet) string {
	t.Helper()

	var path string
	for n := range 4 {
		w, err := NewWriter(rs, n)
		require.NoError(t, err)
		path = w.Path()

		require.NoError(t, w.WriteInts("INTEHEAD", []int32{int32(n), 2, 3, 5}))
		require.NoError(t, w.WriteMessage("STARTSOL"))
		require.NoError(t, w.WriteReals("PRESSURE", make([]float32, 30)))
		require.NoError(t, w.WriteMessage("ENDSOL"))

		for _, lgr := range []struct {
			name  string
			cells int
		}{{"LGR1", 128}, {"LGR2", 192}} {
			if n == 3 && lgr.name == "LGR2" {
				continue
			}
			require.NoError(t, w.BeginLGR(lgr.name))
			require.NoError(t, w.WriteInts("INTEHEAD", []int32{int32(n), 4, 8}))
			require.NoError(t, w.WriteReals("PRESSURE", make([]float32, lgr.cells)))
			require.NoError(t, w.EndLGR())
		}
		require.NoError(t, w.Close())
	}

	return path
}

func TestERst_LGR(t *testing.T) {
	rs := resultset.ResultSet{Dir: t.TempDir(), Base: "LGR_TESTMOD"}
	r, err := Open(writeLGRFile(t, rs))
	require.NoError(t, err)
	defer r.Close()

	require.Equal(t, []int{0, 1, 2, 3}, r.ReportSteps())
	require.True(t, r.HasReportStep(1))
	require.False(t, r.HasReportStep(5))

	_, err = r.HasLGR("LGR1", 99)
	require.ErrorIs(t, err, errs.ErrInvalidArgument)
	has, err := r.HasLGR("LGR1", 2)
	require.NoError(t, err)
	require.True(t, has)
	has, err = r.HasLGR("XXXX", 2)
	require.NoError(t, err)
	require.False(t, has)
	has, err = r.HasLGR("LGR2", 3)
	require.NoError(t, err)
	require.False(t, has)

	lgrs, err := r.LGRs(0)
	require.NoError(t, err)
	require.Equal(t, []string{"LGR1", "LGR2"}, lgrs)

	global, err := r.ListOfArrays(0)
	require.NoError(t, err)
	names := make([]string, len(global))
	for i, e := range global {
		names[i] = e.Name
	}
	require.Equal(t, []string{"SEQNUM", "INTEHEAD", "STARTSOL", "PRESSURE", "ENDSOL"}, names)

	_, err = r.ListOfArraysLGR(0, "XXXX")
	require.ErrorIs(t, err, errs.ErrInvalidArgument)

	local, err := r.ListOfArraysLGR(0, "LGR2")
	require.NoError(t, err)
	require.Equal(t, []eclfile.Entry{
		{Name: "LGR", Type: format.TypeChar, Width: 8, Count: 1},
		{Name: "INTEHEAD", Type: format.TypeInte, Width: 4, Count: 3},
		{Name: "PRESSURE", Type: format.TypeReal, Width: 4, Count: 192},
		{Name: "ENDLGR", Type: format.TypeMess, Width: 0, Count: 0},
	}, local)

	for _, tt := range []struct {
		grid  string
		cells int
	}{{"LGR1", 128}, {"LGR2", 192}} {
		byName, err := GetLGR[float32](r, "PRESSURE", 0, tt.grid)
		require.NoError(t, err)
		require.Len(t, byName, tt.cells)

		byIndex, err := GetAtLGR[float32](r, 2, 0, tt.grid)
		require.NoError(t, err)
		require.Equal(t, byName, byIndex)
	}

	pressure, err := Get[float32](r, "PRESSURE", 0, 0)
	require.NoError(t, err)
	require.Len(t, pressure, 30)
	byIndex, err := GetAt[float32](r, 3, 0)
	require.NoError(t, err)
	require.Equal(t, pressure, byIndex)

	_, err = GetAtLGR[float32](r, 9, 0, "LGR1")
	require.ErrorIs(t, err, errs.ErrOutOfRange)
	_, err = GetLGR[float32](r, "SWAT", 0, "LGR1")
	require.ErrorIs(t, err, errs.ErrNotFound)
}

func TestERst_StepDiscipline(t *testing.T) {
	rs := resultset.ResultSet{Dir: t.TempDir(), Base: "CASE"}
	r, err := Open(writeLGRFile(t, rs))
	require.NoError(t, err)
	defer r.Close()

	t.Run("unknown step fails before any load", func(t *testing.T) {
		_, ok := r.LoadedStep()
		require.False(t, ok)

		_, err := Get[int32](r, "INTEHEAD", 7, 0)
		require.ErrorIs(t, err, errs.ErrInvalidArgument)
		require.ErrorIs(t, err, errs.ErrOutOfRange)
		_, err = GetAt[int32](r, 0, 7)
		require.ErrorIs(t, err, errs.ErrInvalidArgument)
		require.ErrorIs(t, r.LoadReportStep(7), errs.ErrInvalidArgument)
		_, err = r.ListOfArrays(7)
		require.ErrorIs(t, err, errs.ErrInvalidArgument)
		_, err = r.HasArray("PRESSURE", 7)
		require.ErrorIs(t, err, errs.ErrInvalidArgument)
	})

	t.Run("known step loads on demand", func(t *testing.T) {
		head, err := Get[int32](r, "INTEHEAD", 2, 0)
		require.NoError(t, err)
		require.Equal(t, []int32{2, 2, 3, 5}, head)

		n, ok := r.LoadedStep()
		require.True(t, ok)
		require.Equal(t, 2, n)
	})

	t.Run("type mismatch", func(t *testing.T) {
		_, err := Get[float32](r, "INTEHEAD", 2, 0)
		require.ErrorIs(t, err, errs.ErrTypeMismatch)
		_, err = Get[int32](r, "PRESSURE", 2, 0)
		require.ErrorIs(t, err, errs.ErrTypeMismatch)
	})

	t.Run("loading a step releases the previous one", func(t *testing.T) {
		require.NoError(t, r.LoadReportStep(1))
		f := r.File()
		idx := f.Indices("PRESSURE")
		require.True(t, f.IsLoaded(idx[3]), "step 1 global PRESSURE")

		require.NoError(t, r.LoadReportStepLGR(3, "LGR1"))
		require.False(t, f.IsLoaded(idx[3]))
		require.ErrorIs(t, r.LoadReportStepLGR(3, "LGR2"), errs.ErrInvalidArgument)
	})
}

func TestWriter_LGRBlocks(t *testing.T) {
	rs := resultset.ResultSet{Dir: t.TempDir(), Base: "CASE"}
	w, err := NewWriter(rs, 0)
	require.NoError(t, err)
	defer w.Close()

	require.ErrorIs(t, w.EndLGR(), errs.ErrInvalidArgument)
	require.NoError(t, w.BeginLGR("LGR1"))
	require.ErrorIs(t, w.BeginLGR("LGR2"), errs.ErrInvalidArgument)
	require.NoError(t, w.EndLGR())

	_, err = NewWriter(rs, -1)
	require.ErrorIs(t, err, errs.ErrInvalidArgument)
}
