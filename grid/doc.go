// Package grid provides cell addressing and corner-point geometry for EGRID
// and INIT files.
//
// A file describes one global grid followed by any number of named local grid
// refinements (LGRs). EGrid holds them in an arena: Grids()[0] is the global
// grid and each LGR refers to its parent by arena index, never by pointer.
//
// Every grid embeds an Address, the bidirectional mapping between (i,j,k)
// coordinates, global indices and active indices:
//
//	eg, err := grid.Open("CASE.EGRID")
//	if err != nil {
//		return err
//	}
//	defer eg.Close()
//
//	lgr, err := eg.Grid("LGR1")
//	act, err := lgr.ActiveIndex(1, 1, 0)
//
// All lookups fail with errs.ErrOutOfRange for coordinates outside the grid
// and for inactive cells, and with errs.ErrInvalidArgument for unknown grid
// names.
package grid
