// Package eclfile reads and writes ECLIPSE keyword array files.
//
// A keyword file is an ordered sequence of named, typed arrays. The same
// logical content has two on-disk representations, unformatted (binary
// Fortran records) and formatted (fixed-column text); File detects which one
// it is looking at, and Writer produces either.
//
// # Reading
//
// Open scans the keyword headers once and builds an index. Array payloads are
// decoded on first access and memoised per entry:
//
//	f, err := eclfile.Open("CASE.EGRID")
//	if err != nil {
//	    return err
//	}
//	defer f.Close()
//
//	zcorn, err := eclfile.Get[float32](f, "ZCORN")
//
// Requesting an array as the wrong element type fails with errs.ErrTypeMismatch,
// an absent name with errs.ErrNotFound and a bad index with errs.ErrOutOfRange.
//
// Files compressed with zstd, S2 or LZ4 are recognised by magic number and
// decompressed transparently.
//
// # Writing
//
//	w, err := eclfile.Create("CASE.FEGRID", eclfile.WithFormatted(true))
//	if err != nil {
//	    return err
//	}
//	_ = w.WriteInts("GRIDHEAD", gridhead)
//	_ = w.WriteReals("COORD", coord)
//	_ = w.WriteMessage("ENDGRID")
//	err = w.Close()
//
// Each call encodes the whole array in memory before it reaches the file, so
// a failed call never leaves a partial array behind.
//
// A File or Writer must not be used from several goroutines at once.
package eclfile
