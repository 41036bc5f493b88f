package grid

import (
	"fmt"

	"github.com/arloliu/eclio/eclfile"
	"github.com/arloliu/eclio/errs"
)

// floatsAt decodes entry idx as float64 regardless of REAL or DOUB storage.
func floatsAt(f *eclfile.File, idx int) ([]float64, error) {
	a, err := f.Array(idx)
	if err != nil {
		return nil, err
	}

	switch v := a.(type) {
	case eclfile.Reals:
		out := make([]float64, len(v))
		for i, x := range v {
			out[i] = float64(x)
		}

		return out, nil
	case eclfile.Doubles:
		return v, nil
	default:
		e, _ := f.Entry(idx)
		return nil, fmt.Errorf("%w: %s is %s, expected REAL or DOUB", errs.ErrTypeMismatch, e.Name, e.Tag())
	}
}

// firstString returns the first element of a CHAR entry, or "" when empty.
func firstString(f *eclfile.File, idx int) (string, error) {
	v, err := eclfile.GetAt[string](f, idx)
	if err != nil || len(v) == 0 {
		return "", err
	}

	return v[0], nil
}

// isGlobalName reports whether name selects the main grid.
func isGlobalName(name string) bool {
	return name == "" || name == GlobalName
}
