package mocklib

import (
	"errors"
	"fmt"
	"io/fs"
	"sort"
	"sync"
	"unsafe"

	"github.com/findr-go/findr/internal/view"
	"github.com/findr-go/findr/pkg/findr/dl"
)

// Func implements one native symbol. It receives the argument words exactly
// as the binder produced them.
type Func func(args []uintptr) uintptr

// Init records one call of lib_init.
type Init struct {
	LogLevel uint8
	Seed     uint64
	Threads  uint64
}

// Library is a fake native library image.
type Library struct {
	mu      sync.Mutex
	symbols map[string]Func
	calls   map[string]int
	inits   []Init
	strs    [][]byte
}

// New returns a fake library that reports the given identity through the
// discovery symbols and records lib_init calls.
func New(name string, major, minor, patch int) *Library {
	l := &Library{
		symbols: make(map[string]Func),
		calls:   make(map[string]int),
	}
	namep := l.CString(name)
	verp := l.CString(fmt.Sprintf("%d.%d.%d", major, minor, patch))
	l.Register("lib_name", func([]uintptr) uintptr { return namep })
	l.Register("lib_version", func([]uintptr) uintptr { return verp })
	l.Register("lib_version_major", func([]uintptr) uintptr { return uintptr(major) })
	l.Register("lib_version_minor", func([]uintptr) uintptr { return uintptr(minor) })
	l.Register("lib_version_patch", func([]uintptr) uintptr { return uintptr(patch) })
	l.Register("lib_init", func(args []uintptr) uintptr {
		l.mu.Lock()
		l.inits = append(l.inits, Init{LogLevel: uint8(args[0]), Seed: uint64(args[1]), Threads: uint64(args[2])})
		l.mu.Unlock()
		return 0
	})
	return l
}

// Register installs fn as symbol name, replacing any previous definition.
func (l *Library) Register(name string, fn Func) *Library {
	l.mu.Lock()
	defer l.mu.Unlock()
	l.symbols[name] = fn
	return l
}

// Remove deletes a symbol, so lookups of it fail.
func (l *Library) Remove(name string) *Library {
	l.mu.Lock()
	defer l.mu.Unlock()
	delete(l.symbols, name)
	return l
}

// CString stores a NUL-terminated copy of s for the lifetime of the library
// and returns its address, suitable as a char* return value.
func (l *Library) CString(s string) uintptr {
	b := append([]byte(s), 0)
	l.mu.Lock()
	l.strs = append(l.strs, b)
	l.mu.Unlock()
	return uintptr(unsafe.Pointer(&b[0]))
}

// Calls reports how many times symbol name was invoked.
func (l *Library) Calls(name string) int {
	l.mu.Lock()
	defer l.mu.Unlock()
	return l.calls[name]
}

// Called lists the invoked symbols in name order.
func (l *Library) Called() []string {
	l.mu.Lock()
	defer l.mu.Unlock()
	out := make([]string, 0, len(l.calls))
	for name := range l.calls {
		out = append(out, name)
	}
	sort.Strings(out)
	return out
}

// Inits returns every recorded lib_init call.
func (l *Library) Inits() []Init {
	l.mu.Lock()
	defer l.mu.Unlock()
	return append([]Init(nil), l.inits...)
}

func (l *Library) lookup(name string) (Func, bool) {
	l.mu.Lock()
	defer l.mu.Unlock()
	fn, ok := l.symbols[name]
	return fn, ok
}

func (l *Library) record(name string) {
	l.mu.Lock()
	l.calls[name]++
	l.mu.Unlock()
}

// ErrNoSymbol is returned by Lookup for an unregistered symbol.
var ErrNoSymbol = errors.New("mocklib: undefined symbol")

type image struct {
	path   string
	lib    *Library
	opener *Opener
}

func (i *image) Path() string { return i.path }

func (i *image) Close() error {
	i.opener.mu.Lock()
	defer i.opener.mu.Unlock()
	i.opener.closed = append(i.opener.closed, i.path)
	return nil
}

func (i *image) Lookup(name string) (dl.Symbol, error) {
	fn, ok := i.lib.lookup(name)
	if !ok {
		return nil, fmt.Errorf("%w: %s", ErrNoSymbol, name)
	}
	return &symbol{lib: i.lib, name: name, fn: fn}, nil
}

type symbol struct {
	lib  *Library
	name string
	fn   Func
}

func (s *symbol) Call(args ...uintptr) uintptr {
	s.lib.record(s.name)
	return s.fn(args)
}

// Opener serves fake libraries from a path table.
type Opener struct {
	mu     sync.Mutex
	libs   map[string]*Library
	opened []string
	closed []string
}

// NewOpener returns an empty path table.
func NewOpener() *Opener {
	return &Opener{libs: make(map[string]*Library)}
}

// Add makes lib available at path.
func (o *Opener) Add(path string, lib *Library) *Opener {
	o.mu.Lock()
	defer o.mu.Unlock()
	o.libs[path] = lib
	return o
}

// Open implements dl.Opener. Unknown paths fail like a missing file.
func (o *Opener) Open(path string) (dl.Image, error) {
	o.mu.Lock()
	defer o.mu.Unlock()
	o.opened = append(o.opened, path)
	lib, ok := o.libs[path]
	if !ok {
		return nil, &fs.PathError{Op: "open", Path: path, Err: fs.ErrNotExist}
	}
	return &image{path: path, lib: lib, opener: o}, nil
}

// Opened lists every path passed to Open, in order.
func (o *Opener) Opened() []string {
	o.mu.Lock()
	defer o.mu.Unlock()
	return append([]string(nil), o.opened...)
}

// Closed lists every path whose image was closed, in order.
func (o *Opener) Closed() []string {
	o.mu.Lock()
	defer o.mu.Unlock()
	return append([]string(nil), o.closed...)
}

// FloatMatrix decodes a float matrix argument.
func FloatMatrix(p uintptr) *view.Matrix[float32] { return view.MatrixAt[float32](p) }

// ByteMatrix decodes a genotype or boolean-byte matrix argument.
func ByteMatrix(p uintptr) *view.Matrix[uint8] { return view.MatrixAt[uint8](p) }

// FloatVector decodes a float vector argument.
func FloatVector(p uintptr) *view.Vector[float32] { return view.VectorAt[float32](p) }

// Const returns a Func that writes value into every cell of the float
// vectors and matrices found at the given argument positions, then returns
// status.
func Const(value float32, status uintptr, vectors, matrices []int) Func {
	return func(args []uintptr) uintptr {
		for _, i := range vectors {
			v := FloatVector(args[i])
			for k := 0; k < v.Len(); k++ {
				v.Set(k, value)
			}
		}
		for _, i := range matrices {
			m := FloatMatrix(args[i])
			for r := 0; r < m.Rows(); r++ {
				for c := 0; c < m.Cols(); c++ {
					m.Set(r, c, value)
				}
			}
		}
		return status
	}
}
