package view

import (
	"fmt"
	"unsafe"

	"github.com/findr-go/findr/pkg/findr/array"
)

// VectorAt reinterprets a native argument word as a vector descriptor. It is
// meant for in-process fakes of the native library, and p must be a word the
// binder produced for the call in progress.
func VectorAt[T array.Element](p uintptr) *Vector[T] {
	return (*Vector[T])(Address(p))
}

// MatrixAt reinterprets a native argument word as a matrix descriptor, with
// the same restriction as VectorAt.
func MatrixAt[T array.Element](p uintptr) *Matrix[T] {
	return (*Matrix[T])(Address(p))
}

// Address turns a word received from a native call back into a pointer. The
// word must address native memory or Go memory pinned for the duration of
// the call. Pinned Go memory reaches here as a bare word, which the checkptr
// instrumentation of -race builds would reject.
//
//go:nocheckptr
func Address(p uintptr) unsafe.Pointer {
	return unsafe.Pointer(p)
}

func elem[T array.Element](base *T, i int) *T {
	var zero T
	return (*T)(unsafe.Add(unsafe.Pointer(base), uintptr(i)*unsafe.Sizeof(zero)))
}

// Len returns the number of elements.
func (v *Vector[T]) Len() int { return int(v.Size) }

func (v *Vector[T]) slot(i int) *T {
	if i < 0 || uintptr(i) >= v.Size {
		panic(fmt.Sprintf("view: vector index %d out of range [0,%d)", i, v.Size))
	}
	return elem(v.Data, i*int(v.Stride))
}

// At returns element i.
func (v *Vector[T]) At(i int) T { return *v.slot(i) }

// Set stores x at element i.
func (v *Vector[T]) Set(i int, x T) { *v.slot(i) = x }

// Rows returns the row count.
func (m *Matrix[T]) Rows() int { return int(m.Size1) }

// Cols returns the column count.
func (m *Matrix[T]) Cols() int { return int(m.Size2) }

func (m *Matrix[T]) slot(i, j int) *T {
	if i < 0 || uintptr(i) >= m.Size1 || j < 0 || uintptr(j) >= m.Size2 {
		panic(fmt.Sprintf("view: matrix index (%d,%d) out of range %dx%d", i, j, m.Size1, m.Size2))
	}
	return elem(m.Data, i*int(m.TDA)+j)
}

// At returns element (i, j).
func (m *Matrix[T]) At(i, j int) T { return *m.slot(i, j) }

// Set stores x at (i, j).
func (m *Matrix[T]) Set(i, j int, x T) { *m.slot(i, j) = x }
