//go:build !unix

package eclfile

import (
	"errors"
	"os"
)

func mmapFile(_ *os.File, _ int64) ([]byte, func() error, error) {
	return nil, nil, errors.New("mmap not supported on this platform")
}
