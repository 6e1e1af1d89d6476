//go:build !unix

package dataset

import (
	"errors"
	"os"
)

var errNoMmap = errors.New("dataset: memory mapping unavailable")

func mapFile(*os.File, int) ([]byte, func([]byte) error, error) {
	return nil, nil, errNoMmap
}
