// Package record implements the physical layout of keyword arrays: keyword
// headers, the split of a logical array into capped blocks, and the
// length-delimited Fortran records of unformatted files.
//
// # Unformatted layout
//
// Every physical record is framed by a 4-byte length marker on both sides:
//
//	+--------+------------------+--------+
//	| len    | payload (len B)  | len    |
//	+--------+------------------+--------+
//
// A keyword starts with a 16-byte header record (name, element count, type tag)
// followed by zero or more data records. Data records hold at most 1000 numeric
// or logical elements, or 105 string elements. Arrays longer than 2^31-1
// elements are preceded by an extra X231 header carrying the high part of the
// count as a negative number.
//
// # Formatted layout
//
// The header is one text line
//
//	 'ZCORN   '        4800 'REAL'
//
// and data cells are written a fixed number per line, with a line break after
// every block, using the cell formats of the encoding package.
package record
