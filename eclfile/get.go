package eclfile

import (
	"fmt"

	"github.com/arloliu/eclio/errs"
	"github.com/arloliu/eclio/format"
)

// Get returns the first array named name as []T.
//
// Returns:
//   - error: errs.ErrNotFound if name is absent, errs.ErrTypeMismatch if the
//     array does not hold T elements
func Get[T Element](f *File, name string) ([]T, error) {
	return GetOccurrence[T](f, name, 0)
}

// GetOccurrence returns the given occurrence (0-based) of name as []T.
func GetOccurrence[T Element](f *File, name string, occurrence int) ([]T, error) {
	idx, err := f.IndexOf(name, occurrence)
	if err != nil {
		return nil, err
	}

	return GetAt[T](f, idx)
}

// GetAt returns entry index as []T.
//
// Returns:
//   - error: errs.ErrOutOfRange for a bad index, errs.ErrTypeMismatch if the
//     array does not hold T elements
func GetAt[T Element](f *File, index int) ([]T, error) {
	entry, err := f.Entry(index)
	if err != nil {
		return nil, err
	}

	want := elementType[T]()
	got := entry.Type
	if got == format.TypeC0nn {
		got = format.TypeChar
	}
	if got != want {
		return nil, fmt.Errorf("%w: %s is %s, requested %s", errs.ErrTypeMismatch, entry.Name, entry.Tag(), want)
	}

	a, err := f.Array(index)
	if err != nil {
		return nil, err
	}

	return Values[T](a)
}
