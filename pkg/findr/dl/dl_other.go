//go:build !(darwin || linux || freebsd)

package dl

import (
	"fmt"
	"runtime"

	"github.com/findr-go/findr/internal/errdefs"
)

// System returns an Opener that always fails: this platform has no supported
// dynamic loader.
func System() Opener {
	return OpenerFunc(func(path string) (Image, error) {
		return nil, fmt.Errorf("%w: %s/%s", errdefs.ErrUnsupportedPlatform, runtime.GOOS, runtime.GOARCH)
	})
}
