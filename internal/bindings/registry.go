package bindings

import (
	"fmt"
	"runtime"
	"unsafe"

	"github.com/findr-go/findr/internal/errdefs"
	"github.com/findr-go/findr/internal/view"
	"github.com/findr-go/findr/pkg/findr/array"
)

// Form is the host-side shape class of a tag.
type Form uint8

const (
	FormNone Form = iota
	FormScalar
	FormString
	FormVector
	FormMatrix
)

// HostRepr is the host value a tag accepts.
type HostRepr struct {
	Form     Form
	Dtype    array.Dtype
	Ndim     int
	Writable bool
}

// ABIClass is how a value travels through the native call.
type ABIClass uint8

const (
	ABIVoid ABIClass = iota
	ABIInt8
	ABIInt32
	ABIWord
	ABIPointer
	ABIVectorPtr
	ABIMatrixPtr
)

// ABIType is the native representation of a tag. Size is the scalar width,
// or the pointed-to descriptor size for view pointers.
type ABIType struct {
	Class ABIClass
	Size  uintptr
	Elem  view.Kind
}

// MarshalIn converts a host value into one argument word. Anything that must
// stay alive or pinned for the call is registered on the frame.
type MarshalIn func(f *Frame, v any) (uintptr, error)

// MarshalOut converts a native return word into a host value.
type MarshalOut func(r uintptr) (any, error)

// Contract is everything the binder knows about a tag.
type Contract struct {
	Tag  Tag
	Host HostRepr
	ABI  ABIType
	In   MarshalIn
	Out  MarshalOut
}

// Frame owns the pins and references of one native call.
type Frame struct {
	pinner runtime.Pinner
	keep   []any
}

func (f *Frame) release() {
	f.pinner.Unpin()
	runtime.KeepAlive(f.keep)
	f.keep = nil
}

var registry = func() [numTags]Contract {
	var r [numTags]Contract
	for t := Tag(0); t < numTags; t++ {
		r[t] = contractFor(t)
	}
	return r
}()

// Lookup returns the contract registered for t.
func Lookup(t Tag) (Contract, error) {
	if !t.Valid() {
		return Contract{}, fmt.Errorf("%w: unknown type tag %d", errdefs.ErrConfig, uint8(t))
	}
	return registry[t], nil
}

func contractFor(t Tag) Contract {
	word := unsafe.Sizeof(uintptr(0))
	switch t {
	case Void:
		return Contract{Tag: t, ABI: ABIType{Class: ABIVoid}, In: voidIn, Out: voidOut}
	case Byte:
		return Contract{Tag: t, Host: HostRepr{Form: FormScalar}, ABI: ABIType{Class: ABIInt8, Size: 1}, In: byteIn, Out: byteOut}
	case Int:
		return Contract{Tag: t, Host: HostRepr{Form: FormScalar}, ABI: ABIType{Class: ABIInt32, Size: 4}, In: intIn, Out: intOut}
	case ULong, SizeT:
		return Contract{Tag: t, Host: HostRepr{Form: FormScalar}, ABI: ABIType{Class: ABIWord, Size: word}, In: wordIn, Out: wordOut}
	case CharP:
		return Contract{Tag: t, Host: HostRepr{Form: FormString}, ABI: ABIType{Class: ABIPointer, Size: word}, In: stringIn, Out: stringOut}
	}

	kind, writable, matrix := viewSpec(t)
	c := Contract{
		Tag:  t,
		Host: HostRepr{Form: FormVector, Dtype: kind.Dtype(), Ndim: 1, Writable: writable},
		ABI:  ABIType{Class: ABIVectorPtr, Size: unsafe.Sizeof(view.Vector[uint8]{}), Elem: kind},
		In:   viewIn(view.MakeVector, kind, writable),
		Out:  viewOut,
	}
	if matrix {
		c.Host.Form, c.Host.Ndim = FormMatrix, 2
		c.ABI.Class, c.ABI.Size = ABIMatrixPtr, unsafe.Sizeof(view.Matrix[uint8]{})
		c.In = viewIn(view.MakeMatrix, kind, writable)
	}
	return c
}

func viewSpec(t Tag) (kind view.Kind, writable, matrix bool) {
	switch t {
	case VectorF, MatrixF, ConstVectorF, ConstMatrixF:
		kind = view.Float
	case VectorG, MatrixG, ConstVectorG, ConstMatrixG:
		kind = view.Genotype
	default:
		kind = view.Byte
	}
	switch t {
	case VectorF, MatrixF, VectorG, MatrixG, VectorUC, MatrixUC:
		writable = true
	}
	switch t {
	case MatrixF, MatrixG, MatrixUC, ConstMatrixF, ConstMatrixG, ConstMatrixUC:
		matrix = true
	}
	return kind, writable, matrix
}

func viewIn(build func(any, view.Kind, bool) (view.Descriptor, error), kind view.Kind, writable bool) MarshalIn {
	return func(f *Frame, v any) (uintptr, error) {
		d, err := build(v, kind, writable)
		if err != nil {
			return 0, err
		}
		f.keep = append(f.keep, d, v)
		return uintptr(d.Pin(&f.pinner)), nil
	}
}

func viewOut(uintptr) (any, error) {
	return nil, fmt.Errorf("%w: views cannot be returned to the host; pass a preallocated output", errdefs.ErrNotSupported)
}

func voidIn(*Frame, any) (uintptr, error) {
	return 0, fmt.Errorf("%w: void is not an argument type", errdefs.ErrConfig)
}

func voidOut(uintptr) (any, error) { return nil, nil }

func byteIn(_ *Frame, v any) (uintptr, error) {
	if b, ok := v.(bool); ok {
		if b {
			return 1, nil
		}
		return 0, nil
	}
	n, err := integer(v)
	if err != nil {
		return 0, err
	}
	return uintptr(int64(int8(n))), nil
}

func byteOut(r uintptr) (any, error) { return int8(r), nil }

func intIn(_ *Frame, v any) (uintptr, error) {
	n, err := integer(v)
	if err != nil {
		return 0, err
	}
	return uintptr(int64(int32(n))), nil
}

func intOut(r uintptr) (any, error) { return int32(r), nil }

func wordIn(_ *Frame, v any) (uintptr, error) {
	n, err := integer(v)
	if err != nil {
		return 0, err
	}
	return uintptr(n), nil
}

func wordOut(r uintptr) (any, error) { return uint64(r), nil }

func stringIn(f *Frame, v any) (uintptr, error) {
	var b []byte
	switch s := v.(type) {
	case string:
		b = append([]byte(s), 0)
	case []byte:
		b = append(append([]byte(nil), s...), 0)
	default:
		return 0, fmt.Errorf("%w: char* needs a string, got %T", errdefs.ErrDtype, v)
	}
	f.keep = append(f.keep, b)
	f.pinner.Pin(&b[0])
	return uintptr(unsafe.Pointer(&b[0])), nil
}

func stringOut(r uintptr) (any, error) { return GoString(r), nil }

// GoString copies a NUL-terminated native string. In-process fakes return
// strings held in Go memory, so the scan runs without checkptr.
//
//go:nocheckptr
func GoString(p uintptr) string {
	if p == 0 {
		return ""
	}
	base := view.Address(p)
	n := 0
	for *(*byte)(unsafe.Add(base, n)) != 0 {
		n++
	}
	return string(unsafe.Slice((*byte)(base), n))
}

// integer coerces Go integer kinds to a 64-bit pattern. Narrowing to the
// native width happens in the caller, with C conversion semantics.
func integer(v any) (int64, error) {
	switch n := v.(type) {
	case int:
		return int64(n), nil
	case int8:
		return int64(n), nil
	case int16:
		return int64(n), nil
	case int32:
		return int64(n), nil
	case int64:
		return n, nil
	case uint:
		return int64(n), nil
	case uint8:
		return int64(n), nil
	case uint16:
		return int64(n), nil
	case uint32:
		return int64(n), nil
	case uint64:
		return int64(n), nil
	case uintptr:
		return int64(n), nil
	}
	return 0, fmt.Errorf("%w: need an integer, got %T", errdefs.ErrDtype, v)
}
