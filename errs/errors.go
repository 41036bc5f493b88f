// Package errs defines the sentinel errors shared by every eclio package.
//
// Callers test for an error class with errors.Is; the concrete error returned by
// an operation wraps one (or, for unknown report steps, two) of these sentinels
// together with the offending name, index or path.
package errs

import "errors"

// Error classes.
var (
	// ErrNotFound is returned when a file or a keyword array does not exist.
	ErrNotFound = errors.New("not found")
	// ErrTypeMismatch is returned when an array is requested as the wrong element type.
	ErrTypeMismatch = errors.New("type mismatch")
	// ErrOutOfRange is returned for indices, occurrences and coordinates outside their domain.
	ErrOutOfRange = errors.New("out of range")
	// ErrInvalidFormat is returned for malformed or truncated file content.
	ErrInvalidFormat = errors.New("invalid format")
	// ErrUnsupportedCombination is returned when two requested options cannot be combined.
	ErrUnsupportedCombination = errors.New("unsupported combination")
	// ErrInvalidArgument is returned for unknown grid names, report steps and summary keys.
	ErrInvalidArgument = errors.New("invalid argument")
)

// Record codec errors.
var (
	ErrRecordMarkerMismatch = errors.New("record head and tail markers differ")
	ErrTruncatedRecord      = errors.New("truncated record")
	ErrInvalidHeaderSize    = errors.New("invalid keyword header size")
	ErrUnknownArrayType     = errors.New("unknown array type")
	ErrNameTooLong          = errors.New("keyword name longer than 8 characters")
	ErrStringTooLong        = errors.New("string longer than array element width")
)

// Compression errors.
var (
	ErrInvalidCompressionType = errors.New("invalid compression type")
	ErrUnknownCompression     = errors.New("unrecognized compressed stream")
)
