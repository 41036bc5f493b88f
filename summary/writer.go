package summary

import (
	"fmt"
	"log/slog"
	"time"

	"github.com/arloliu/eclio/eclfile"
	"github.com/arloliu/eclio/errs"
	"github.com/arloliu/eclio/internal/pool"
	"github.com/arloliu/eclio/resultset"
)

const (
	restartPieces     = 9
	restartPieceWidth = 8
)

// Writer writes a summary case: the SMSPEC file on creation, then one
// SEQHDR per report step followed by MINISTEP/PARAMS pairs.
type Writer struct {
	rs     resultset.ResultSet
	cfg    *writerConfig
	nodes  []Node
	keys   map[string]int
	logger *slog.Logger

	out      *eclfile.Writer
	report   int
	ministep int
	seq      int32
}

// NewWriter writes the SMSPEC of rs describing nodes and prepares the data
// output. Node.Index is ignored; PARAMS follow the order of nodes.
func NewWriter(rs resultset.ResultSet, start time.Time, nodes []Node, opts ...WriterOption) (*Writer, error) {
	cfg, err := newWriterConfig(opts)
	if err != nil {
		return nil, err
	}
	if len(nodes) == 0 {
		return nil, fmt.Errorf("%w: no summary nodes", errs.ErrInvalidArgument)
	}
	if len(cfg.restartRoot) > restartPieces*restartPieceWidth {
		return nil, fmt.Errorf("%w: restart root %q longer than %d characters",
			errs.ErrInvalidArgument, cfg.restartRoot, restartPieces*restartPieceWidth)
	}

	w := &Writer{
		rs:     rs,
		cfg:    cfg,
		nodes:  make([]Node, len(nodes)),
		keys:   make(map[string]int, len(nodes)),
		logger: cfg.logger,
		report: -1,
	}
	for i, n := range nodes {
		n.Index = i
		if n.WGName == "" {
			n.WGName = NoName
		}
		if n.LGR == "" {
			n.LGRI, n.LGRJ, n.LGRK = NoLGRIndex, NoLGRIndex, NoLGRIndex
		}
		w.nodes[i] = n
		if key := KeyString(n, cfg.dims); key != "" {
			if _, dup := w.keys[key]; !dup {
				w.keys[key] = i
			}
		}
	}

	if err := w.writeSpec(start); err != nil {
		return nil, err
	}

	if cfg.unified {
		w.out, err = eclfile.Create(w.dataPath(0), w.fileOpts()...)
		if err != nil {
			return nil, err
		}
	}

	return w, nil
}

func (w *Writer) fileOpts() []eclfile.WriterOption {
	return []eclfile.WriterOption{eclfile.WithFormatted(w.cfg.formatted), eclfile.WithWriterLogger(w.logger)}
}

func (w *Writer) dataPath(report int) string {
	return w.rs.FileName(resultset.SummaryExt(report, w.cfg.formatted, w.cfg.unified))
}

func (w *Writer) writeSpec(start time.Time) error {
	path := w.rs.FileName(resultset.SpecExt(w.cfg.formatted))
	out, err := eclfile.Create(path, w.fileOpts()...)
	if err != nil {
		return err
	}

	n := len(w.nodes)
	keywords := make([]string, n)
	wgnames := make([]string, n)
	units := make([]string, n)
	lgrs := make([]string, n)
	nums := make([]int32, n)
	numlx := make([]int32, n)
	numly := make([]int32, n)
	numlz := make([]int32, n)
	hasLGR := false
	for i, node := range w.nodes {
		keywords[i] = node.Keyword
		wgnames[i] = node.WGName
		units[i] = node.Unit
		nums[i] = int32(node.Number)
		lgrs[i] = node.LGR
		numlx[i], numly[i], numlz[i] = int32(node.LGRI), int32(node.LGRJ), int32(node.LGRK)
		hasLGR = hasLGR || node.LGR != ""
	}

	dims := w.cfg.dims
	dimens := []int32{int32(n), int32(dims[0]), int32(dims[1]), int32(dims[2]), 0, int32(w.cfg.restartStep)}

	usec := start.Second()*1_000_000 + start.Nanosecond()/int(time.Microsecond)
	startdat := []int32{
		int32(start.Day()), int32(start.Month()), int32(start.Year()),
		int32(start.Hour()), int32(start.Minute()), int32(usec),
	}

	err = writeAll(
		func() error { return out.WriteInts("DIMENS", dimens) },
		func() error { return out.WriteStrings("RESTART", splitRestart(w.cfg.restartRoot)) },
		func() error { return out.WriteStrings("KEYWORDS", keywords) },
		func() error { return out.WriteStrings("WGNAMES", wgnames) },
		func() error { return out.WriteInts("NUMS", nums) },
		func() error {
			if !hasLGR {
				return nil
			}
			return writeAll(
				func() error { return out.WriteStrings("LGRS", lgrs) },
				func() error { return out.WriteInts("NUMLX", numlx) },
				func() error { return out.WriteInts("NUMLY", numly) },
				func() error { return out.WriteInts("NUMLZ", numlz) },
			)
		},
		func() error { return out.WriteStrings("UNITS", units) },
		func() error { return out.WriteInts("STARTDAT", startdat) },
	)
	if err != nil {
		_ = out.Close()
		return err
	}

	return out.Close()
}

func writeAll(steps ...func() error) error {
	for _, step := range steps {
		if err := step(); err != nil {
			return err
		}
	}

	return nil
}

// splitRestart cuts root into the fixed number of 8-character RESTART
// pieces, padding with blanks.
func splitRestart(root string) []string {
	out := make([]string, restartPieces)
	for i := range out {
		lo := i * restartPieceWidth
		if lo >= len(root) {
			break
		}
		out[i] = root[lo:min(lo+restartPieceWidth, len(root))]
	}

	return out
}

// Keys returns the lookup key of each node, empty for nodes without one.
func (w *Writer) Keys() []string {
	out := make([]string, len(w.nodes))
	for key, i := range w.keys {
		out[i] = key
	}

	return out
}

// BeginReportStep starts report step n. Report steps must increase.
// Separate output closes the previous Snnnn file and creates the next one.
func (w *Writer) BeginReportStep(n int) error {
	if n <= w.report {
		return fmt.Errorf("%w: report step %d after %d", errs.ErrInvalidArgument, n, w.report)
	}

	if !w.cfg.unified {
		if w.out != nil {
			if err := w.out.Close(); err != nil {
				return err
			}
		}
		out, err := eclfile.Create(w.dataPath(n), w.fileOpts()...)
		if err != nil {
			w.out = nil
			return err
		}
		w.out = out
	}

	if err := w.out.WriteInts("SEQHDR", []int32{w.seq}); err != nil {
		return err
	}
	w.seq++
	w.report = n

	return nil
}

// WriteStep appends one time step. params holds one value per node.
func (w *Writer) WriteStep(params []float32) error {
	if w.report < 0 || w.out == nil {
		return fmt.Errorf("%w: no report step started", errs.ErrInvalidArgument)
	}
	if len(params) != len(w.nodes) {
		return fmt.Errorf("%w: %d params for %d nodes", errs.ErrInvalidArgument, len(params), len(w.nodes))
	}

	if err := w.out.WriteInts("MINISTEP", []int32{int32(w.ministep)}); err != nil {
		return err
	}
	if err := w.out.WriteReals("PARAMS", params); err != nil {
		return err
	}
	w.ministep++

	return nil
}

// WriteStepValues appends one time step from values keyed by vector key.
// Nodes without a value are written as 0.
func (w *Writer) WriteStepValues(values map[string]float32) error {
	row, cleanup := pool.GetFloat32Slice(len(w.nodes))
	defer cleanup()
	clear(row)

	for key, v := range values {
		i, ok := w.keys[key]
		if !ok {
			return fmt.Errorf("%w: summary key %q", errs.ErrInvalidArgument, key)
		}
		row[i] = v
	}

	return w.WriteStep(row)
}

// Close finishes the current data file.
func (w *Writer) Close() error {
	if w.out == nil {
		return nil
	}
	err := w.out.Close()
	w.out = nil
	w.logger.Debug("closed summary writer", "base", w.rs.Base, "report_steps", w.seq, "ministeps", w.ministep)

	return err
}
