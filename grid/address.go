package grid

import (
	"fmt"

	"github.com/arloliu/eclio/errs"
)

// Dims is the logical size of a grid.
type Dims struct {
	NI, NJ, NK int
}

// Total returns NI*NJ*NK.
func (d Dims) Total() int {
	return d.NI * d.NJ * d.NK
}

func (d Dims) String() string {
	return fmt.Sprintf("%dx%dx%d", d.NI, d.NJ, d.NK)
}

// IJK is a zero-based cell coordinate.
type IJK struct {
	I, J, K int
}

// Address maps between (i,j,k), global and active cell indices of one grid.
// It is immutable once built.
type Address struct {
	dims     Dims
	activeOf []int32 // global -> active, -1 for inactive cells
	globalOf []int32 // active -> global
}

// NewAddress builds the index maps of a grid from its activity array. Cells
// with actnum > 0 are active; a nil actnum marks every cell active.
//
// Returns:
//   - error: errs.ErrInvalidArgument for non-positive dimensions or an activity
//     array whose length differs from the cell count
func NewAddress(dims Dims, actnum []int32) (*Address, error) {
	if dims.NI <= 0 || dims.NJ <= 0 || dims.NK <= 0 {
		return nil, fmt.Errorf("%w: grid dimensions %s", errs.ErrInvalidArgument, dims)
	}

	total := dims.Total()
	if actnum != nil && len(actnum) != total {
		return nil, fmt.Errorf("%w: ACTNUM has %d values, grid %s has %d cells",
			errs.ErrInvalidArgument, len(actnum), dims, total)
	}

	a := &Address{
		dims:     dims,
		activeOf: make([]int32, total),
		globalOf: make([]int32, 0, total),
	}
	for g := range total {
		if actnum != nil && actnum[g] <= 0 {
			a.activeOf[g] = -1
			continue
		}
		a.activeOf[g] = int32(len(a.globalOf))
		a.globalOf = append(a.globalOf, int32(g))
	}

	return a, nil
}

// Dims returns the grid dimensions.
func (a *Address) Dims() Dims {
	return a.dims
}

// TotalCount returns the number of cells, active or not.
func (a *Address) TotalCount() int {
	return len(a.activeOf)
}

// ActiveCount returns the number of active cells.
func (a *Address) ActiveCount() int {
	return len(a.globalOf)
}

func (a *Address) checkIJK(i, j, k int) error {
	if i < 0 || i >= a.dims.NI || j < 0 || j >= a.dims.NJ || k < 0 || k >= a.dims.NK {
		return fmt.Errorf("%w: cell (%d,%d,%d) outside grid %s", errs.ErrOutOfRange, i, j, k, a.dims)
	}

	return nil
}

// GlobalIndex returns i + j*NI + k*NI*NJ.
func (a *Address) GlobalIndex(i, j, k int) (int, error) {
	if err := a.checkIJK(i, j, k); err != nil {
		return -1, err
	}

	return i + j*a.dims.NI + k*a.dims.NI*a.dims.NJ, nil
}

// IJKFromGlobal is the inverse of GlobalIndex.
func (a *Address) IJKFromGlobal(g int) (IJK, error) {
	if g < 0 || g >= len(a.activeOf) {
		return IJK{}, fmt.Errorf("%w: global index %d, grid has %d cells", errs.ErrOutOfRange, g, len(a.activeOf))
	}

	plane := a.dims.NI * a.dims.NJ

	return IJK{I: g % a.dims.NI, J: (g % plane) / a.dims.NI, K: g / plane}, nil
}

// ActiveIndex returns the active index of cell (i,j,k).
//
// Returns:
//   - error: errs.ErrOutOfRange if the cell is outside the grid or inactive
func (a *Address) ActiveIndex(i, j, k int) (int, error) {
	g, err := a.GlobalIndex(i, j, k)
	if err != nil {
		return -1, err
	}

	return a.ActiveFromGlobal(g)
}

// IJKFromActive is the inverse of ActiveIndex.
func (a *Address) IJKFromActive(act int) (IJK, error) {
	g, err := a.GlobalFromActive(act)
	if err != nil {
		return IJK{}, err
	}

	return a.IJKFromGlobal(g)
}

// ActiveFromGlobal converts a global index to an active index.
func (a *Address) ActiveFromGlobal(g int) (int, error) {
	if g < 0 || g >= len(a.activeOf) {
		return -1, fmt.Errorf("%w: global index %d, grid has %d cells", errs.ErrOutOfRange, g, len(a.activeOf))
	}

	act := a.activeOf[g]
	if act < 0 {
		return -1, fmt.Errorf("%w: cell with global index %d is inactive", errs.ErrOutOfRange, g)
	}

	return int(act), nil
}

// GlobalFromActive converts an active index to a global index.
func (a *Address) GlobalFromActive(act int) (int, error) {
	if act < 0 || act >= len(a.globalOf) {
		return -1, fmt.Errorf("%w: active index %d, grid has %d active cells", errs.ErrOutOfRange, act, len(a.globalOf))
	}

	return int(a.globalOf[act]), nil
}

// IsActive reports whether cell (i,j,k) is inside the grid and active.
func (a *Address) IsActive(i, j, k int) bool {
	_, err := a.ActiveIndex(i, j, k)

	return err == nil
}
