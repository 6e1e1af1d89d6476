// Package view builds the native vector and matrix descriptors over host
// arrays.
//
// The structs in this package mirror the native library's block, vector and
// matrix layouts field for field. A descriptor is allocated per call; the
// element buffer it points at is always the host array's own storage.
package view

import (
	"fmt"
	"runtime"
	"unsafe"

	"github.com/findr-go/findr/internal/errdefs"
	"github.com/findr-go/findr/pkg/findr/array"
)

// Kind is an element kind of the native library.
type Kind uint8

const (
	// Float is the expression/probability kind (float32).
	Float Kind = iota + 1
	// Genotype is the allele-code kind (uint8).
	Genotype
	// Byte is the boolean-byte kind (unsigned char).
	Byte
)

func (k Kind) String() string {
	switch k {
	case Float:
		return "F"
	case Genotype:
		return "G"
	case Byte:
		return "UC"
	default:
		return "?"
	}
}

// Dtype is the host element representation for k.
func (k Kind) Dtype() array.Dtype {
	switch k {
	case Float:
		return array.Float32
	case Genotype, Byte:
		return array.Uint8
	default:
		return array.Invalid
	}
}

// Block describes the allocation a view points into. Size counts elements.
type Block[T array.Element] struct {
	Size uintptr
	Data *T
}

// Vector mirrors the native strided vector.
type Vector[T array.Element] struct {
	Size   uintptr
	Stride uintptr
	Data   *T
	Block  *Block[T]
	Owner  int32
}

// Matrix mirrors the native row-major matrix; TDA is the row stride.
type Matrix[T array.Element] struct {
	Size1 uintptr
	Size2 uintptr
	TDA   uintptr
	Data  *T
	Block *Block[T]
	Owner int32
}

// Descriptor is a view ready to be passed by pointer to a native call.
type Descriptor interface {
	// Pin pins the descriptor, its block and the element buffer, and returns
	// the address to pass.
	Pin(p *runtime.Pinner) unsafe.Pointer
}

// Pin implements Descriptor.
func (v *Vector[T]) Pin(p *runtime.Pinner) unsafe.Pointer {
	pinAll(p, v.Block, v.Data)
	p.Pin(v)
	return unsafe.Pointer(v)
}

// Pin implements Descriptor.
func (m *Matrix[T]) Pin(p *runtime.Pinner) unsafe.Pointer {
	pinAll(p, m.Block, m.Data)
	p.Pin(m)
	return unsafe.Pointer(m)
}

func pinAll[T array.Element](p *runtime.Pinner, b *Block[T], data *T) {
	if data != nil {
		p.Pin(data)
	}
	if b != nil {
		p.Pin(b)
	}
}

// newBlock describes the storage from the first element of a to the end of
// its backing slice.
func newBlock[T array.Element](a *array.Dense[T]) *Block[T] {
	backing, off := a.Backing()
	b := &Block[T]{Size: uintptr(len(backing) - off)}
	if off < len(backing) {
		b.Data = &backing[off]
	}
	return b
}

// NewVector builds a vector descriptor over a 1-dimensional array without
// copying its elements.
func NewVector[T array.Element](a *array.Dense[T], writable bool) (*Vector[T], error) {
	if a.Ndim() != 1 {
		return nil, fmt.Errorf("%w: vector needs 1 dimension, got %d", errdefs.ErrShape, a.Ndim())
	}
	if writable && !a.Writable() {
		return nil, errdefs.ErrReadOnly
	}
	n := a.Dim(0)
	stride := a.Strides()[0]
	if n <= 1 {
		stride = 1
	}
	if stride < 1 {
		return nil, fmt.Errorf("%w: vector stride %d < 1", errdefs.ErrShape, stride)
	}
	b := newBlock(a)
	if n > 0 && uintptr((n-1)*stride) >= b.Size {
		return nil, fmt.Errorf("%w: vector exceeds its block", errdefs.ErrShape)
	}
	v := &Vector[T]{
		Size:   uintptr(n),
		Stride: uintptr(stride),
		Block:  b,
	}
	if n > 0 {
		v.Data = b.Data
	}
	return v, nil
}

// NewMatrix builds a matrix descriptor over a 2-dimensional array without
// copying its elements. The leading dimension is the array's row stride, so
// row-sliced and padded arrays are exposed in place. Arrays whose columns are
// not adjacent in memory cannot be described and are rejected.
func NewMatrix[T array.Element](a *array.Dense[T], writable bool) (*Matrix[T], error) {
	if a.Ndim() != 2 {
		return nil, fmt.Errorf("%w: matrix needs 2 dimensions, got %d", errdefs.ErrShape, a.Ndim())
	}
	if writable && !a.Writable() {
		return nil, errdefs.ErrReadOnly
	}
	rows, cols := a.Dim(0), a.Dim(1)
	strides := a.Strides()
	if cols > 1 && strides[1] != 1 {
		return nil, fmt.Errorf("%w: column stride %d, need 1", errdefs.ErrShape, strides[1])
	}
	tda := strides[0]
	if rows <= 1 {
		tda = cols
	}
	if tda < cols {
		return nil, fmt.Errorf("%w: row stride %d below column count %d", errdefs.ErrShape, tda, cols)
	}
	b := newBlock(a)
	if rows > 0 && cols > 0 && uintptr((rows-1)*tda+cols) > b.Size {
		return nil, fmt.Errorf("%w: matrix exceeds its block", errdefs.ErrShape)
	}
	m := &Matrix[T]{
		Size1: uintptr(rows),
		Size2: uintptr(cols),
		TDA:   uintptr(tda),
		Block: b,
	}
	if rows > 0 && cols > 0 {
		m.Data = b.Data
	}
	return m, nil
}

// MakeVector checks data against kind and builds a vector descriptor.
func MakeVector(data any, kind Kind, writable bool) (Descriptor, error) {
	a, err := check(data, kind, 1)
	if err != nil {
		return nil, err
	}
	switch d := a.(type) {
	case *array.Dense[float32]:
		v, err := NewVector(d, writable)
		if err != nil {
			return nil, err
		}
		return v, nil
	case *array.Dense[uint8]:
		v, err := NewVector(d, writable)
		if err != nil {
			return nil, err
		}
		return v, nil
	}
	return nil, fmt.Errorf("%w: unsupported container %T", errdefs.ErrDtype, data)
}

// MakeMatrix checks data against kind and builds a matrix descriptor.
func MakeMatrix(data any, kind Kind, writable bool) (Descriptor, error) {
	a, err := check(data, kind, 2)
	if err != nil {
		return nil, err
	}
	switch d := a.(type) {
	case *array.Dense[float32]:
		v, err := NewMatrix(d, writable)
		if err != nil {
			return nil, err
		}
		return v, nil
	case *array.Dense[uint8]:
		v, err := NewMatrix(d, writable)
		if err != nil {
			return nil, err
		}
		return v, nil
	}
	return nil, fmt.Errorf("%w: unsupported container %T", errdefs.ErrDtype, data)
}

func check(data any, kind Kind, ndim int) (array.Array, error) {
	switch d := data.(type) {
	case *array.Dense[float32]:
		if d == nil {
			return nil, fmt.Errorf("%w: nil array", errdefs.ErrDtype)
		}
	case *array.Dense[uint8]:
		if d == nil {
			return nil, fmt.Errorf("%w: nil array", errdefs.ErrDtype)
		}
	}
	a, ok := data.(array.Array)
	if !ok {
		return nil, fmt.Errorf("%w: %T is not an array", errdefs.ErrDtype, data)
	}
	if got := len(a.Shape()); got != ndim {
		return nil, fmt.Errorf("%w: need %d dimensions, got %d", errdefs.ErrShape, ndim, got)
	}
	if a.Dtype() != kind.Dtype() {
		return nil, fmt.Errorf("%w: %s view needs %s, got %s", errdefs.ErrDtype, kind, kind.Dtype(), a.Dtype())
	}
	return a, nil
}
