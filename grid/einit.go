package grid

import (
	"fmt"
	"log/slog"

	"github.com/arloliu/eclio/eclfile"
	"github.com/arloliu/eclio/errs"
)

// INTEHEAD positions of the grid size.
const (
	inteheadNX     = 8
	inteheadNY     = 9
	inteheadNZ     = 10
	inteheadNActiv = 11
)

// initGrid is the slice of an INIT file belonging to one grid.
type initGrid struct {
	name    string
	dims    Dims
	active  int
	entries []int            // entry indices in file order
	arrays  map[string][]int // occurrences per array name
}

func newInitGrid(name string) *initGrid {
	return &initGrid{name: name, arrays: make(map[string][]int)}
}

// EInit is an indexed INIT file. Arrays are scoped per grid: the same name
// usually appears once for the global grid and once inside every LGR block.
type EInit struct {
	file   *eclfile.File
	owned  bool
	grids  []*initGrid
	byName map[string]int
	logger *slog.Logger
}

// OpenInit opens and indexes the INIT file at path.
func OpenInit(path string, opts ...Option) (*EInit, error) {
	cfg, err := newConfig(opts)
	if err != nil {
		return nil, err
	}

	f, err := eclfile.Open(path, cfg.fileOpts...)
	if err != nil {
		return nil, err
	}

	e, err := newEInit(f, cfg)
	if err != nil {
		_ = f.Close()
		return nil, fmt.Errorf("%s: %w", path, err)
	}
	e.owned = true

	return e, nil
}

// NewInit indexes an already open INIT file. The caller keeps ownership of f.
func NewInit(f *eclfile.File, opts ...Option) (*EInit, error) {
	cfg, err := newConfig(opts)
	if err != nil {
		return nil, err
	}

	return newEInit(f, cfg)
}

func newEInit(f *eclfile.File, cfg *config) (*EInit, error) {
	e := &EInit{file: f, byName: make(map[string]int), logger: cfg.logger}
	cur := newInitGrid(GlobalName)
	e.grids = append(e.grids, cur)
	e.byName[GlobalName] = 0

	for idx, entry := range f.List() {
		switch entry.Name {
		case "LGR":
			name, err := firstString(f, idx)
			if err != nil {
				return nil, err
			}
			cur = newInitGrid(name)
			e.byName[name] = len(e.grids)
			e.grids = append(e.grids, cur)

			continue
		case "ENDLGR":
			cur = e.grids[0]
			continue
		case "INTEHEAD":
			head, err := eclfile.GetAt[int32](f, idx)
			if err != nil {
				return nil, err
			}
			if len(head) <= inteheadNActiv {
				return nil, fmt.Errorf("%w: INTEHEAD has %d values", errs.ErrInvalidFormat, len(head))
			}
			cur.dims = Dims{NI: int(head[inteheadNX]), NJ: int(head[inteheadNY]), NK: int(head[inteheadNZ])}
			cur.active = int(head[inteheadNActiv])
		}

		cur.entries = append(cur.entries, idx)
		cur.arrays[entry.Name] = append(cur.arrays[entry.Name], idx)
	}

	for _, g := range e.grids {
		if _, ok := g.arrays["INTEHEAD"]; !ok {
			return nil, fmt.Errorf("%w: grid %s has no INTEHEAD", errs.ErrInvalidFormat, g.name)
		}
	}

	e.logger.Debug("indexed INIT file", "path", f.Path(), "grids", len(e.grids), "entries", f.Len())

	return e, nil
}

// Close releases the underlying file when it was opened by OpenInit.
func (e *EInit) Close() error {
	if !e.owned {
		return nil
	}

	return e.file.Close()
}

// File returns the underlying keyword file.
func (e *EInit) File() *eclfile.File {
	return e.file
}

func (e *EInit) grid(name string) (*initGrid, error) {
	if isGlobalName(name) {
		return e.grids[0], nil
	}

	i, ok := e.byName[name]
	if !ok {
		return nil, fmt.Errorf("%w: unknown grid %q", errs.ErrInvalidArgument, name)
	}

	return e.grids[i], nil
}

// ListOfLGRs returns the LGR names in file order.
func (e *EInit) ListOfLGRs() []string {
	names := make([]string, 0, len(e.grids)-1)
	for _, g := range e.grids[1:] {
		names = append(names, g.name)
	}

	return names
}

// HasLGR reports whether the file has a block for LGR name.
func (e *EInit) HasLGR(name string) bool {
	i, ok := e.byName[name]
	return ok && i > 0
}

// GridDimension returns the dimensions recorded in the grid's INTEHEAD.
func (e *EInit) GridDimension(name string) (Dims, error) {
	g, err := e.grid(name)
	if err != nil {
		return Dims{}, err
	}

	return g.dims, nil
}

// ActiveCells returns the active cell count recorded in the grid's INTEHEAD.
func (e *EInit) ActiveCells(name string) (int, error) {
	g, err := e.grid(name)
	if err != nil {
		return 0, err
	}

	return g.active, nil
}

// ListOfArrays returns the entries belonging to the named grid.
func (e *EInit) ListOfArrays(name string) ([]eclfile.Entry, error) {
	g, err := e.grid(name)
	if err != nil {
		return nil, err
	}

	out := make([]eclfile.Entry, 0, len(g.entries))
	for _, idx := range g.entries {
		entry, err := e.file.Entry(idx)
		if err != nil {
			return nil, err
		}
		out = append(out, entry)
	}

	return out, nil
}

// HasArray reports whether the named grid carries array name.
func (e *EInit) HasArray(name, gridName string) bool {
	g, err := e.grid(gridName)
	if err != nil {
		return false
	}

	return len(g.arrays[name]) > 0
}

func (e *EInit) index(name, gridName string, occurrence int) (int, error) {
	g, err := e.grid(gridName)
	if err != nil {
		return -1, err
	}

	idx := g.arrays[name]
	if occurrence < 0 || occurrence >= len(idx) {
		return -1, fmt.Errorf("%w: array %s (occurrence %d) not present for grid %s",
			errs.ErrInvalidArgument, name, occurrence, g.name)
	}

	return idx[occurrence], nil
}

func (e *EInit) floats(name, gridName string, occurrence int) ([]float64, error) {
	idx, err := e.index(name, gridName, occurrence)
	if err != nil {
		return nil, err
	}

	return floatsAt(e.file, idx)
}

// GetInitData returns array name of the named grid as []T.
//
// Returns:
//   - error: errs.ErrInvalidArgument for an unknown grid or an array the grid
//     does not carry, errs.ErrTypeMismatch if the array does not hold T
func GetInitData[T eclfile.Element](e *EInit, name, gridName string) ([]T, error) {
	idx, err := e.index(name, gridName, 0)
	if err != nil {
		return nil, err
	}

	return eclfile.GetAt[T](e.file, idx)
}
