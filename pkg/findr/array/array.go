// Package array provides the host-side strided array used to exchange
// numeric data with the native library.
//
// A Dense array is a shape/stride window over a flat Go slice. Slicing and
// transposing produce new windows over the same storage, so the element
// buffer handed to the native side is always the caller's own memory.
//
// Two element types are supported: float32 for expression and probability
// values, and uint8 for genotype codes and boolean bytes.
package array

import (
	"fmt"
	"math"

	"github.com/findr-go/findr/internal/errdefs"
)

// Dtype identifies the element representation of an array.
type Dtype uint8

const (
	// Invalid is the zero Dtype.
	Invalid Dtype = iota
	// Float32 is a 4-byte IEEE-754 float.
	Float32
	// Uint8 is an unsigned byte.
	Uint8
)

func (d Dtype) String() string {
	switch d {
	case Float32:
		return "float32"
	case Uint8:
		return "uint8"
	default:
		return "invalid"
	}
}

// Size returns the element width in bytes.
func (d Dtype) Size() int {
	switch d {
	case Float32:
		return 4
	case Uint8:
		return 1
	default:
		return 0
	}
}

// Element is the set of Go types an array may hold.
type Element interface {
	~float32 | ~uint8
}

// DtypeOf reports the Dtype of T.
func DtypeOf[T Element]() Dtype {
	var zero T
	switch any(zero).(type) {
	case float32:
		return Float32
	case uint8:
		return Uint8
	}
	return Invalid
}

// Array is the contract the binding layer relies on: an element
// representation, a shape, per-axis strides counted in elements, and whether
// the memory may be written.
type Array interface {
	Dtype() Dtype
	Shape() []int
	Strides() []int
	Writable() bool
}

// Dense is a strided n-dimensional window over a flat slice.
type Dense[T Element] struct {
	data     []T
	off      int
	shape    []int
	strides  []int
	readOnly bool
}

// New allocates a zeroed, contiguous, row-major array. It panics if any
// dimension is negative.
func New[T Element](shape ...int) *Dense[T] {
	n := 1
	for _, d := range shape {
		if d < 0 {
			panic(fmt.Sprintf("array: negative dimension %d", d))
		}
		n *= d
	}
	return &Dense[T]{
		data:    make([]T, n),
		shape:   append([]int(nil), shape...),
		strides: rowMajor(shape),
	}
}

// FromSlice wraps data as a contiguous row-major array without copying.
func FromSlice[T Element](data []T, shape ...int) (*Dense[T], error) {
	n := 1
	for _, d := range shape {
		if d < 0 {
			return nil, fmt.Errorf("%w: negative dimension %d", errdefs.ErrShape, d)
		}
		n *= d
	}
	if n != len(data) {
		return nil, fmt.Errorf("%w: shape %v needs %d elements, got %d", errdefs.ErrShape, shape, n, len(data))
	}
	return &Dense[T]{
		data:    data,
		shape:   append([]int(nil), shape...),
		strides: rowMajor(shape),
	}, nil
}

// FromStrided wraps data with an explicit element offset and per-axis
// strides. Every addressable element must lie inside data.
func FromStrided[T Element](data []T, offset int, shape, strides []int) (*Dense[T], error) {
	if len(shape) != len(strides) {
		return nil, fmt.Errorf("%w: %d dimensions but %d strides", errdefs.ErrShape, len(shape), len(strides))
	}
	if offset < 0 {
		return nil, fmt.Errorf("%w: negative offset %d", errdefs.ErrShape, offset)
	}
	last := offset
	empty := false
	for i, d := range shape {
		if d < 0 || strides[i] < 0 {
			return nil, fmt.Errorf("%w: negative dimension or stride on axis %d", errdefs.ErrShape, i)
		}
		if d == 0 {
			empty = true
			continue
		}
		last += (d - 1) * strides[i]
	}
	if !empty && last >= len(data) {
		return nil, fmt.Errorf("%w: element %d outside storage of %d", errdefs.ErrShape, last, len(data))
	}
	return &Dense[T]{
		data:    data,
		off:     offset,
		shape:   append([]int(nil), shape...),
		strides: append([]int(nil), strides...),
	}, nil
}

func rowMajor(shape []int) []int {
	strides := make([]int, len(shape))
	s := 1
	for i := len(shape) - 1; i >= 0; i-- {
		strides[i] = s
		s *= shape[i]
	}
	return strides
}

// Dtype reports the element representation.
func (a *Dense[T]) Dtype() Dtype { return DtypeOf[T]() }

// Shape returns a copy of the dimensions.
func (a *Dense[T]) Shape() []int { return append([]int(nil), a.shape...) }

// Strides returns a copy of the per-axis strides, in elements.
func (a *Dense[T]) Strides() []int { return append([]int(nil), a.strides...) }

// Ndim returns the number of dimensions.
func (a *Dense[T]) Ndim() int { return len(a.shape) }

// Dim returns the size of axis i.
func (a *Dense[T]) Dim(i int) int { return a.shape[i] }

// Len returns the number of logical elements.
func (a *Dense[T]) Len() int {
	n := 1
	for _, d := range a.shape {
		n *= d
	}
	return n
}

// Writable reports whether the native side may write through this array.
func (a *Dense[T]) Writable() bool { return !a.readOnly }

// Backing returns the storage slice and the offset of the first element.
// The slice aliases the array; it is exposed so views can be built without
// copying.
func (a *Dense[T]) Backing() ([]T, int) { return a.data, a.off }

// ReadOnly returns a read-only alias of a.
func (a *Dense[T]) ReadOnly() *Dense[T] {
	b := *a
	b.readOnly = true
	return &b
}

// Contiguous reports whether the elements are laid out densely in row-major
// order.
func (a *Dense[T]) Contiguous() bool {
	s := 1
	for i := len(a.shape) - 1; i >= 0; i-- {
		if a.shape[i] > 1 && a.strides[i] != s {
			return false
		}
		s *= a.shape[i]
	}
	return true
}

func (a *Dense[T]) offset(idx []int) int {
	if len(idx) != len(a.shape) {
		panic(fmt.Sprintf("array: %d indices for %d dimensions", len(idx), len(a.shape)))
	}
	o := a.off
	for i, x := range idx {
		if x < 0 || x >= a.shape[i] {
			panic(fmt.Sprintf("array: index %d out of range [0,%d) on axis %d", x, a.shape[i], i))
		}
		o += x * a.strides[i]
	}
	return o
}

// At returns the element at idx.
func (a *Dense[T]) At(idx ...int) T { return a.data[a.offset(idx)] }

// Set stores v at idx. It panics on a read-only array.
func (a *Dense[T]) Set(v T, idx ...int) {
	if a.readOnly {
		panic("array: write to read-only array")
	}
	a.data[a.offset(idx)] = v
}

// Slice narrows axis to [from, to) without copying.
func (a *Dense[T]) Slice(axis, from, to int) (*Dense[T], error) {
	if axis < 0 || axis >= len(a.shape) {
		return nil, fmt.Errorf("%w: axis %d of %d", errdefs.ErrShape, axis, len(a.shape))
	}
	if from < 0 || to < from || to > a.shape[axis] {
		return nil, fmt.Errorf("%w: range [%d,%d) on axis of size %d", errdefs.ErrShape, from, to, a.shape[axis])
	}
	b := &Dense[T]{
		data:     a.data,
		off:      a.off,
		shape:    append([]int(nil), a.shape...),
		strides:  append([]int(nil), a.strides...),
		readOnly: a.readOnly,
	}
	if to > from {
		b.off += from * a.strides[axis]
	}
	b.shape[axis] = to - from
	return b, nil
}

// T returns the transpose of a 2-dimensional array without copying.
func (a *Dense[T]) T() *Dense[T] {
	if len(a.shape) != 2 {
		panic("array: transpose needs 2 dimensions")
	}
	return &Dense[T]{
		data:     a.data,
		off:      a.off,
		shape:    []int{a.shape[1], a.shape[0]},
		strides:  []int{a.strides[1], a.strides[0]},
		readOnly: a.readOnly,
	}
}

// Each calls fn with every element in row-major order.
func (a *Dense[T]) Each(fn func(v T)) {
	if a.Len() == 0 {
		return
	}
	a.walk(0, a.off, func(o int) { fn(a.data[o]) })
}

func (a *Dense[T]) walk(axis, base int, fn func(int)) {
	if axis == len(a.shape) {
		fn(base)
		return
	}
	for i := 0; i < a.shape[axis]; i++ {
		a.walk(axis+1, base+i*a.strides[axis], fn)
	}
}

// Values returns a row-major copy of the logical elements.
func (a *Dense[T]) Values() []T {
	out := make([]T, 0, a.Len())
	a.Each(func(v T) { out = append(out, v) })
	return out
}

// Clone returns a contiguous, writable copy.
func (a *Dense[T]) Clone() *Dense[T] {
	b := New[T](a.shape...)
	copy(b.data, a.Values())
	return b
}

// Fill sets every element to v. It panics on a read-only array.
func (a *Dense[T]) Fill(v T) {
	if a.readOnly {
		panic("array: write to read-only array")
	}
	if a.Len() == 0 {
		return
	}
	a.walk(0, a.off, func(o int) { a.data[o] = v })
}

// Max returns the largest element, or false for an empty array.
func Max[T Element](a *Dense[T]) (T, bool) {
	var (
		m    T
		seen bool
	)
	a.Each(func(v T) {
		if !seen || v > m {
			m, seen = v, true
		}
	})
	return m, seen
}

// HasNaN reports whether any element of a float array is NaN.
func HasNaN[T ~float32](a *Dense[T]) bool {
	found := false
	a.Each(func(v T) {
		if !found && math.IsNaN(float64(v)) {
			found = true
		}
	})
	return found
}
