//go:build darwin || linux || freebsd

package dl

import (
	"fmt"

	"github.com/ebitengine/purego"
)

// System returns the Opener backed by the platform dlopen.
func System() Opener { return systemOpener{} }

type systemOpener struct{}

func (systemOpener) Open(path string) (Image, error) {
	h, err := purego.Dlopen(path, purego.RTLD_NOW|purego.RTLD_LOCAL)
	if err != nil {
		return nil, fmt.Errorf("dlopen %s: %w", path, err)
	}
	return &image{path: path, handle: h}, nil
}

type image struct {
	path   string
	handle uintptr
}

func (i *image) Path() string { return i.path }

func (i *image) Close() error {
	if err := purego.Dlclose(i.handle); err != nil {
		return fmt.Errorf("dlclose %s: %w", i.path, err)
	}
	return nil
}

func (i *image) Lookup(name string) (Symbol, error) {
	addr, err := purego.Dlsym(i.handle, name)
	if err != nil {
		return nil, fmt.Errorf("dlsym %s: %w", name, err)
	}
	return symbol(addr), nil
}

type symbol uintptr

func (s symbol) Call(args ...uintptr) uintptr {
	r1, _, _ := purego.SyscallN(uintptr(s), args...)
	return r1
}
