// Package dl abstracts the platform dynamic loader.
//
// The binding layer only needs three things from a loader: open a library
// file, resolve an exported symbol, and call it with machine-word
// arguments. Keeping those behind interfaces lets tests substitute an
// in-process fake (see package mocklib) for a real shared object.
package dl

// Symbol is a resolved native function. Arguments and the result are passed
// as machine words following the platform C calling convention for integer
// and pointer values.
type Symbol interface {
	Call(args ...uintptr) uintptr
}

// Image is an opened native library.
type Image interface {
	// Lookup resolves an exported symbol by name.
	Lookup(name string) (Symbol, error)
	// Path reports the file the image was opened from.
	Path() string
	// Close releases the image. Symbols resolved from it must not be called
	// afterwards.
	Close() error
}

// Opener opens native libraries by file path.
type Opener interface {
	Open(path string) (Image, error)
}

// OpenerFunc adapts a function to the Opener interface.
type OpenerFunc func(path string) (Image, error)

// Open implements Opener.
func (f OpenerFunc) Open(path string) (Image, error) { return f(path) }
