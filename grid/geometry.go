package grid

import (
	"fmt"

	"github.com/arloliu/eclio/errs"
	"gonum.org/v1/gonum/floats"
)

// Corners holds the eight corner points of a cell. Corner n = di + 2*dj + 4*dk
// where di, dj, dk are 0 at the low and 1 at the high side.
type Corners struct {
	X, Y, Z [8]float64
}

// pillarGeometry holds COORD and ZCORN of one grid widened to float64.
type pillarGeometry struct {
	coord []float64
	zcorn []float64
}

// loadPillars decodes and validates COORD and ZCORN. It runs once per grid.
func (g *Grid) loadPillars() (*pillarGeometry, error) {
	if g.coord < 0 || g.zcorn < 0 {
		return nil, fmt.Errorf("%w: COORD/ZCORN for grid %s", errs.ErrNotFound, g.name)
	}

	coord, err := floatsAt(g.file, g.coord)
	if err != nil {
		return nil, err
	}
	zcorn, err := floatsAt(g.file, g.zcorn)
	if err != nil {
		return nil, err
	}

	d := g.Dims()
	if len(coord) != 6*(d.NI+1)*(d.NJ+1) {
		return nil, fmt.Errorf("%w: COORD has %d values, grid %s needs %d",
			errs.ErrInvalidFormat, len(coord), d, 6*(d.NI+1)*(d.NJ+1))
	}
	if len(zcorn) != 8*d.Total() {
		return nil, fmt.Errorf("%w: ZCORN has %d values, grid %s needs %d",
			errs.ErrInvalidFormat, len(zcorn), d, 8*d.Total())
	}

	return &pillarGeometry{coord: coord, zcorn: zcorn}, nil
}

// CellCorners computes the corner-point geometry of cell (i,j,k) from the
// grid's COORD pillars and ZCORN depths. Both arrays are decoded and widened
// on the first call and kept by the grid.
//
// Returns:
//   - error: errs.ErrOutOfRange for a cell outside the grid, errs.ErrNotFound
//     if the grid has no COORD or ZCORN
func (g *Grid) CellCorners(i, j, k int) (Corners, error) {
	if err := g.checkIJK(i, j, k); err != nil {
		return Corners{}, err
	}

	geom, err := g.pillars()
	if err != nil {
		return Corners{}, err
	}
	coord, zcorn := geom.coord, geom.zcorn
	d := g.Dims()

	var c Corners
	for n := range 8 {
		di, dj, dk := n&1, (n>>1)&1, (n>>2)&1

		z := zcorn[2*i+di+(2*j+dj)*2*d.NI+(2*k+dk)*4*d.NI*d.NJ]
		p := 6 * ((j+dj)*(d.NI+1) + i + di)
		x1, y1, z1 := coord[p], coord[p+1], coord[p+2]
		x2, y2, z2 := coord[p+3], coord[p+4], coord[p+5]

		x, y := x1, y1
		if z2 != z1 {
			t := (z - z1) / (z2 - z1)
			x = x1 + t*(x2-x1)
			y = y1 + t*(y2-y1)
		}
		c.X[n], c.Y[n], c.Z[n] = x, y, z
	}

	return c, nil
}

// CellCenter returns the arithmetic mean of the eight cell corners.
func (g *Grid) CellCenter(i, j, k int) ([3]float64, error) {
	c, err := g.CellCorners(i, j, k)
	if err != nil {
		return [3]float64{}, err
	}

	return [3]float64{
		floats.Sum(c.X[:]) / 8,
		floats.Sum(c.Y[:]) / 8,
		floats.Sum(c.Z[:]) / 8,
	}, nil
}
