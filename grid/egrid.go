package grid

import (
	"fmt"
	"log/slog"
	"strings"
	"sync"

	"github.com/arloliu/eclio/eclfile"
	"github.com/arloliu/eclio/errs"
)

// GlobalName is the name accepted for the main grid, besides "".
const GlobalName = "global"

// Grid is one grid of an EGRID file: the global grid or an LGR.
type Grid struct {
	*Address

	name   string
	index  int
	parent int // arena index, -1 for the global grid
	host   []int32

	file  *eclfile.File
	coord int // entry index, -1 when absent
	zcorn int

	pillars func() (*pillarGeometry, error)
}

// Name returns the LGR name, or GlobalName for the main grid.
func (g *Grid) Name() string {
	return g.name
}

// Index returns the arena position of the grid; 0 is the global grid.
func (g *Grid) Index() int {
	return g.index
}

// Parent returns the arena index of the parent grid, -1 for the global grid.
func (g *Grid) Parent() int {
	return g.parent
}

// gridSpec collects the entry indices of one grid while scanning.
type gridSpec struct {
	name, parent                       string
	head, actnum, coord, zcorn, hostnm int
}

func newGridSpec(name string) *gridSpec {
	return &gridSpec{name: name, head: -1, actnum: -1, coord: -1, zcorn: -1, hostnm: -1}
}

type nncKind uint8

const (
	nncWithin    nncKind = iota // NNC1/NNC2 inside one grid
	nncGlobalLGR                // NNCG in the global grid, NNCL in an LGR
	nncLGRLGR                   // NNA1/NNA2 between two LGRs
)

// nncBlock is one NNCHEAD or NNCHEADA group. For nncGlobalLGR, first holds
// NNCG and second NNCL.
type nncBlock struct {
	kind          nncKind
	gridA, gridB  int
	first, second int
	ordinal       int // occurrence among blocks of the same kind and grid
}

// EGrid is an indexed EGRID file.
type EGrid struct {
	file   *eclfile.File
	owned  bool
	grids  []*Grid
	byName map[string]int
	nnc    []nncBlock
	logger *slog.Logger
}

// Open opens and indexes the EGRID file at path.
func Open(path string, opts ...Option) (*EGrid, error) {
	cfg, err := newConfig(opts)
	if err != nil {
		return nil, err
	}

	f, err := eclfile.Open(path, cfg.fileOpts...)
	if err != nil {
		return nil, err
	}

	eg, err := newEGrid(f, cfg)
	if err != nil {
		_ = f.Close()
		return nil, fmt.Errorf("%s: %w", path, err)
	}
	eg.owned = true

	return eg, nil
}

// New builds the grid set of an already open EGRID file. The caller keeps
// ownership of f.
func New(f *eclfile.File, opts ...Option) (*EGrid, error) {
	cfg, err := newConfig(opts)
	if err != nil {
		return nil, err
	}

	return newEGrid(f, cfg)
}

func newEGrid(f *eclfile.File, cfg *config) (*EGrid, error) {
	eg := &EGrid{file: f, byName: make(map[string]int), logger: cfg.logger}

	specs, err := eg.scan()
	if err != nil {
		return nil, err
	}

	for i, spec := range specs {
		g, err := eg.buildGrid(i, spec)
		if err != nil {
			return nil, fmt.Errorf("grid %s: %w", spec.name, err)
		}
		eg.grids = append(eg.grids, g)
		eg.byName[spec.name] = i
	}

	// parents may only be resolved once every name is known
	for i, spec := range specs[1:] {
		g := eg.grids[i+1]
		if isGlobalName(spec.parent) {
			g.parent = 0
			continue
		}
		p, ok := eg.byName[spec.parent]
		if !ok {
			return nil, fmt.Errorf("%w: LGR %s has unknown parent %s", errs.ErrInvalidFormat, spec.name, spec.parent)
		}
		g.parent = p
	}

	eg.logger.Debug("built grid set",
		"path", f.Path(),
		"grids", len(eg.grids),
		"active", eg.grids[0].ActiveCount(),
		"nnc_blocks", len(eg.nnc),
	)

	return eg, nil
}

// scan walks the entry list once and groups it per grid.
func (eg *EGrid) scan() ([]*gridSpec, error) {
	f := eg.file
	specs := []*gridSpec{newGridSpec(GlobalName)}
	cur := specs[0]

	var (
		head      *nncBlock // pending NNCHEAD group
		within    = -1
		lgrLocal  = -1
		lgrGlobal = -1
		headA     *nncBlock
		nna1      = -1
		ordinals  = make(map[[3]int]int)
	)

	addBlock := func(b nncBlock) {
		key := [3]int{int(b.kind), b.gridA, b.gridB}
		b.ordinal = ordinals[key]
		ordinals[key]++
		eg.nnc = append(eg.nnc, b)
	}

	for idx, e := range f.List() {
		switch e.Name {
		case "LGR":
			name, err := firstString(f, idx)
			if err != nil {
				return nil, err
			}
			cur = newGridSpec(name)
			specs = append(specs, cur)
		case "LGRPARNT":
			parent, err := firstString(f, idx)
			if err != nil {
				return nil, err
			}
			cur.parent = parent
		case "GRIDHEAD":
			cur.head = idx
		case "COORD":
			cur.coord = idx
		case "ZCORN":
			cur.zcorn = idx
		case "ACTNUM":
			cur.actnum = idx
		case "HOSTNUM":
			cur.hostnm = idx
		case "ENDLGR":
			cur = specs[0]
		case "NNCHEAD":
			v, err := eclfile.GetAt[int32](f, idx)
			if err != nil {
				return nil, err
			}
			if len(v) < 2 {
				return nil, fmt.Errorf("%w: NNCHEAD has %d values", errs.ErrInvalidFormat, len(v))
			}
			head = &nncBlock{gridA: int(v[1]), gridB: int(v[1])}
			within, lgrLocal, lgrGlobal = -1, -1, -1
		case "NNC1", "NNC2", "NNCL", "NNCG":
			if head == nil {
				return nil, fmt.Errorf("%w: %s without NNCHEAD", errs.ErrInvalidFormat, e.Name)
			}
			switch e.Name {
			case "NNC1":
				within = idx
			case "NNC2":
				if within < 0 {
					return nil, fmt.Errorf("%w: NNC2 without NNC1", errs.ErrInvalidFormat)
				}
				addBlock(nncBlock{kind: nncWithin, gridA: head.gridA, gridB: head.gridA, first: within, second: idx})
				within = -1
			case "NNCL":
				lgrLocal = idx
			case "NNCG":
				lgrGlobal = idx
			}
			if lgrLocal >= 0 && lgrGlobal >= 0 {
				addBlock(nncBlock{kind: nncGlobalLGR, gridA: 0, gridB: head.gridA, first: lgrGlobal, second: lgrLocal})
				lgrLocal, lgrGlobal = -1, -1
			}
		case "NNCHEADA":
			v, err := eclfile.GetAt[int32](f, idx)
			if err != nil {
				return nil, err
			}
			if len(v) < 2 {
				return nil, fmt.Errorf("%w: NNCHEADA has %d values", errs.ErrInvalidFormat, len(v))
			}
			headA = &nncBlock{kind: nncLGRLGR, gridA: int(v[0]), gridB: int(v[1])}
			nna1 = -1
		case "NNA1":
			nna1 = idx
		case "NNA2":
			if headA == nil || nna1 < 0 {
				return nil, fmt.Errorf("%w: NNA2 without NNCHEADA and NNA1", errs.ErrInvalidFormat)
			}
			addBlock(nncBlock{kind: nncLGRLGR, gridA: headA.gridA, gridB: headA.gridB, first: nna1, second: idx})
			nna1 = -1
		}
	}

	for i, spec := range specs {
		if spec.head < 0 {
			return nil, fmt.Errorf("%w: grid %d (%s) has no GRIDHEAD", errs.ErrInvalidFormat, i, spec.name)
		}
	}

	for _, b := range eg.nnc {
		if b.gridA < 0 || b.gridA >= len(specs) || b.gridB < 0 || b.gridB >= len(specs) {
			return nil, fmt.Errorf("%w: NNC refers to grid %d/%d, file has %d grids",
				errs.ErrInvalidFormat, b.gridA, b.gridB, len(specs))
		}
	}

	return specs, nil
}

func (eg *EGrid) buildGrid(index int, spec *gridSpec) (*Grid, error) {
	head, err := eclfile.GetAt[int32](eg.file, spec.head)
	if err != nil {
		return nil, err
	}
	if len(head) < 4 {
		return nil, fmt.Errorf("%w: GRIDHEAD has %d values", errs.ErrInvalidFormat, len(head))
	}
	dims := Dims{NI: int(head[1]), NJ: int(head[2]), NK: int(head[3])}

	var actnum []int32
	if spec.actnum >= 0 {
		actnum, err = eclfile.GetAt[int32](eg.file, spec.actnum)
		if err != nil {
			return nil, err
		}
	}

	addr, err := NewAddress(dims, actnum)
	if err != nil {
		return nil, err
	}

	g := &Grid{
		Address: addr,
		name:    spec.name,
		index:   index,
		parent:  -1,
		file:    eg.file,
		coord:   spec.coord,
		zcorn:   spec.zcorn,
	}
	g.pillars = sync.OnceValues(g.loadPillars)

	if index > 0 {
		if spec.hostnm < 0 {
			eg.logger.Warn("LGR without HOSTNUM", "lgr", spec.name)
		} else {
			g.host, err = eclfile.GetAt[int32](eg.file, spec.hostnm)
			if err != nil {
				return nil, err
			}
			if len(g.host) != addr.TotalCount() {
				return nil, fmt.Errorf("%w: HOSTNUM has %d values, grid has %d cells",
					errs.ErrInvalidFormat, len(g.host), addr.TotalCount())
			}
		}
	}

	return g, nil
}

// Close releases the underlying file when it was opened by Open.
func (eg *EGrid) Close() error {
	if !eg.owned {
		return nil
	}

	return eg.file.Close()
}

// File returns the underlying keyword file.
func (eg *EGrid) File() *eclfile.File {
	return eg.file
}

// Grids returns the grid arena; index 0 is the global grid.
func (eg *EGrid) Grids() []*Grid {
	out := make([]*Grid, len(eg.grids))
	copy(out, eg.grids)

	return out
}

// ListOfLGRs returns the LGR names in file order.
func (eg *EGrid) ListOfLGRs() []string {
	names := make([]string, 0, len(eg.grids)-1)
	for _, g := range eg.grids[1:] {
		names = append(names, g.name)
	}

	return names
}

// HasLGR reports whether the file defines an LGR called name.
func (eg *EGrid) HasLGR(name string) bool {
	i, ok := eg.byName[name]
	return ok && i > 0
}

// Grid returns the grid called name; "" and GlobalName select the main grid.
//
// Returns:
//   - error: errs.ErrInvalidArgument for an unknown name
func (eg *EGrid) Grid(name string) (*Grid, error) {
	if isGlobalName(name) {
		return eg.grids[0], nil
	}

	i, ok := eg.byName[name]
	if !ok {
		return nil, fmt.Errorf("%w: unknown grid %q", errs.ErrInvalidArgument, name)
	}

	return eg.grids[i], nil
}

// Dimension returns the dimensions of the named grid.
func (eg *EGrid) Dimension(name string) (Dims, error) {
	g, err := eg.Grid(name)
	if err != nil {
		return Dims{}, err
	}

	return g.Dims(), nil
}

// ActiveCells returns the active cell count of the named grid.
func (eg *EGrid) ActiveCells(name string) (int, error) {
	g, err := eg.Grid(name)
	if err != nil {
		return 0, err
	}

	return g.ActiveCount(), nil
}

func (eg *EGrid) lgr(name string) (*Grid, error) {
	g, err := eg.Grid(name)
	if err != nil {
		return nil, err
	}
	if g.index == 0 {
		return nil, fmt.Errorf("%w: the global grid has no host cells", errs.ErrInvalidArgument)
	}
	if g.host == nil {
		return nil, fmt.Errorf("%w: HOSTNUM for LGR %s", errs.ErrNotFound, name)
	}

	return g, nil
}

// HostCellsGlobalIndex maps every cell of an LGR, in global index order, to
// the zero-based global index of its host cell in the parent grid.
func (eg *EGrid) HostCellsGlobalIndex(lgr string) ([]int, error) {
	g, err := eg.lgr(lgr)
	if err != nil {
		return nil, err
	}

	parent := eg.grids[g.parent]
	out := make([]int, len(g.host))
	for i, h := range g.host {
		idx := int(h) - 1
		if idx < 0 || idx >= parent.TotalCount() {
			return nil, fmt.Errorf("%w: HOSTNUM %d of LGR %s outside parent %s",
				errs.ErrInvalidFormat, h, lgr, parent.name)
		}
		out[i] = idx
	}

	return out, nil
}

// HostCellsIJK is HostCellsGlobalIndex expressed as parent-grid coordinates.
func (eg *EGrid) HostCellsIJK(lgr string) ([]IJK, error) {
	host, err := eg.HostCellsGlobalIndex(lgr)
	if err != nil {
		return nil, err
	}

	parent := eg.grids[eg.byName[lgr]].parent
	out := make([]IJK, len(host))
	for i, h := range host {
		out[i], err = eg.grids[parent].IJKFromGlobal(h)
		if err != nil {
			return nil, err
		}
	}

	return out, nil
}

// NNC is one non-neighbour connection. GridA and GridB are arena indices.
// Trans is zero unless the list was built by NNCsWithTrans.
type NNC struct {
	GridA int
	IJKA  IJK
	GridB int
	IJKB  IJK
	Trans float64
}

// NNCs returns every non-neighbour connection in file order: connections
// within a grid (NNC1/NNC2), between the global grid and an LGR (NNCG/NNCL)
// and between two LGRs (NNA1/NNA2).
func (eg *EGrid) NNCs() ([]NNC, error) {
	var out []NNC
	for _, b := range eg.nnc {
		conns, err := eg.blockNNCs(b)
		if err != nil {
			return nil, err
		}
		out = append(out, conns...)
	}

	return out, nil
}

func (eg *EGrid) blockNNCs(b nncBlock) ([]NNC, error) {
	first, err := eclfile.GetAt[int32](eg.file, b.first)
	if err != nil {
		return nil, err
	}
	second, err := eclfile.GetAt[int32](eg.file, b.second)
	if err != nil {
		return nil, err
	}
	if len(first) != len(second) {
		return nil, fmt.Errorf("%w: NNC index arrays have %d and %d values",
			errs.ErrInvalidFormat, len(first), len(second))
	}

	ga, gb := eg.grids[b.gridA], eg.grids[b.gridB]
	out := make([]NNC, len(first))
	for n := range first {
		a, err := ga.IJKFromGlobal(int(first[n]) - 1)
		if err != nil {
			return nil, fmt.Errorf("NNC %d: %w", n, err)
		}
		bb, err := gb.IJKFromGlobal(int(second[n]) - 1)
		if err != nil {
			return nil, fmt.Errorf("NNC %d: %w", n, err)
		}
		out[n] = NNC{GridA: b.gridA, IJKA: a, GridB: b.gridB, IJKB: bb}
	}

	return out, nil
}

// NNCsWithTrans is NNCs with transmissibilities taken from the INIT file:
// TRANNNC for connections within a grid, TRANGL for global-LGR connections
// and TRANLL for LGR-LGR connections.
//
// Returns:
//   - error: errs.ErrInvalidArgument if a required transmissibility array is
//     missing, errs.ErrInvalidFormat if its length differs from the NNC count
func (eg *EGrid) NNCsWithTrans(init *EInit) ([]NNC, error) {
	if init == nil {
		return nil, fmt.Errorf("%w: nil INIT file", errs.ErrInvalidArgument)
	}

	var out []NNC
	for _, b := range eg.nnc {
		conns, err := eg.blockNNCs(b)
		if err != nil {
			return nil, err
		}

		trans, err := eg.blockTrans(init, b)
		if err != nil {
			return nil, err
		}
		if len(trans) != len(conns) {
			return nil, fmt.Errorf("%w: %d transmissibilities for %d connections",
				errs.ErrInvalidFormat, len(trans), len(conns))
		}

		for n := range conns {
			conns[n].Trans = trans[n]
		}
		out = append(out, conns...)
	}

	return out, nil
}

func (eg *EGrid) blockTrans(init *EInit, b nncBlock) ([]float64, error) {
	switch b.kind {
	case nncWithin:
		return init.floats("TRANNNC", eg.grids[b.gridA].name, b.ordinal)
	case nncGlobalLGR:
		return init.floats("TRANGL", eg.grids[b.gridB].name, b.ordinal)
	default:
		return init.floats("TRANLL", GlobalName, eg.lgrPairOrdinal(b))
	}
}

// lgrPairOrdinal returns the position of b among all NNCHEADA blocks, which
// is the occurrence of the matching TRANLL array.
func (eg *EGrid) lgrPairOrdinal(b nncBlock) int {
	n := 0
	for _, other := range eg.nnc {
		if other.kind != nncLGRLGR {
			continue
		}
		if other.first == b.first {
			return n
		}
		n++
	}

	return n
}

// GridNames renders the arena indices of an NNC as grid names.
func (eg *EGrid) GridNames(c NNC) (string, string) {
	return eg.grids[c.GridA].name, eg.grids[c.GridB].name
}

// String implements fmt.Stringer for debugging output.
func (eg *EGrid) String() string {
	var sb strings.Builder
	for i, g := range eg.grids {
		if i > 0 {
			sb.WriteString(", ")
		}
		fmt.Fprintf(&sb, "%s %s (%d active)", g.name, g.Dims(), g.ActiveCount())
	}

	return sb.String()
}
