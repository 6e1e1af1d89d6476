package bindings

import (
	"fmt"
	"sync"

	"github.com/findr-go/findr/internal/errdefs"
	"github.com/findr-go/findr/pkg/findr/dl"
)

// Version is a three-part library version.
type Version struct {
	Major, Minor, Patch int
}

func (v Version) String() string { return fmt.Sprintf("%d.%d.%d", v.Major, v.Minor, v.Patch) }

// Library is an accepted, initialized native library. It never changes after
// construction. Calls through any of its bindings are serialized because the
// native side makes no thread-safety promise.
type Library struct {
	image   dl.Image
	name    string
	version Version
	mu      sync.Mutex
}

// NewLibrary wraps an image that has passed version negotiation.
func NewLibrary(img dl.Image, name string, v Version) *Library {
	return &Library{image: img, name: name, version: v}
}

// Name reports the package name the library returned.
func (l *Library) Name() string { return l.name }

// Version reports the library version.
func (l *Library) Version() Version { return l.version }

// Path reports the file the library was loaded from.
func (l *Library) Path() string { return l.image.Path() }

// Bind resolves name in the library.
func (l *Library) Bind(name string, ret Tag, args ...Tag) (*Binding, error) {
	if l == nil {
		return nil, errdefs.ErrNotInitialized
	}
	b, err := BindImage(l.image, name, ret, args...)
	if err != nil {
		return nil, err
	}
	b.mu = &l.mu
	return b, nil
}

// Binding is a callable native symbol with a fixed signature.
type Binding struct {
	name string
	ret  Contract
	args []Contract
	sym  dl.Symbol
	mu   *sync.Mutex
}

// BindImage resolves name in img and records its signature. It is used
// directly only during negotiation, before a Library exists.
func BindImage(img dl.Image, name string, ret Tag, args ...Tag) (*Binding, error) {
	if img == nil {
		return nil, errdefs.ErrNotInitialized
	}
	rc, err := Lookup(ret)
	if err != nil {
		return nil, err
	}
	acs := make([]Contract, len(args))
	for i, t := range args {
		if t == Void {
			return nil, fmt.Errorf("%w: %s argument %d is void", errdefs.ErrConfig, name, i)
		}
		if acs[i], err = Lookup(t); err != nil {
			return nil, err
		}
	}
	sym, err := img.Lookup(name)
	if err != nil {
		return nil, fmt.Errorf("%w: %s in %s: %v", errdefs.ErrSymbol, name, img.Path(), err)
	}
	return &Binding{name: name, ret: rc, args: acs, sym: sym}, nil
}

// Name returns the native symbol name.
func (b *Binding) Name() string { return b.name }

// Return returns the return tag.
func (b *Binding) Return() Tag { return b.ret.Tag }

// Args returns the argument tags in order.
func (b *Binding) Args() []Tag {
	out := make([]Tag, len(b.args))
	for i, c := range b.args {
		out[i] = c.Tag
	}
	return out
}

// Invoke marshals args, performs one blocking native call and unmarshals the
// result. The argument count is checked before anything is marshaled.
func (b *Binding) Invoke(args ...any) (any, error) {
	if len(args) != len(b.args) {
		return nil, fmt.Errorf("%w: %s takes %d arguments, got %d", errdefs.ErrConfig, b.name, len(b.args), len(args))
	}

	var f Frame
	defer f.release()

	words := make([]uintptr, len(args))
	for i, a := range args {
		w, err := b.args[i].In(&f, a)
		if err != nil {
			return nil, fmt.Errorf("%s argument %d (%s): %w", b.name, i, b.args[i].Tag, err)
		}
		words[i] = w
	}

	if b.mu != nil {
		b.mu.Lock()
		defer b.mu.Unlock()
	}
	r := b.sym.Call(words...)
	return b.ret.Out(r)
}
