// Package encoding implements the element-level codecs of the keyword array
// format: fixed-size big-endian binary elements and fixed-column text cells.
//
// The functions here know nothing about records, block caps or headers; the
// record package splits arrays into physical records and calls into this
// package for the payload bytes.
//
// # Binary elements
//
//	INTE  int32, 4 bytes
//	REAL  IEEE float32, 4 bytes
//	DOUB  IEEE float64, 8 bytes
//	LOGI  int32, 4 bytes, true written as -1, any non-zero read as true
//	CHAR  8 bytes, space padded
//	Cnnn  nnn bytes, space padded
//
// Floating point values are stored by bit pattern, so NaN payloads and
// infinities survive a binary round trip unchanged.
//
// # Text cells
//
//	INTE  " %11d"
//	REAL  "  0.dddddddddE+xx"   at least 8 significant digits
//	DOUB  "  0.ddddddddddddddD+xx" at least 14 significant digits
//	LOGI  "  T" or "  F"
//	CHAR  " 'xxxxxxxx'"
//	Cnnn  " '" + nnn characters + "'"
//
// Real cells carry the shortest digit string that parses back to the same
// value, padded with zeros to the minimum precision, so formatted files also
// round-trip exactly. A cell may therefore be wider than its nominal width,
// and TextCursor splits numeric cells on whitespace rather than by column.
package encoding
