package array

import (
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/findr-go/findr/internal/errdefs"
)

func TestNewIsZeroedRowMajor(t *testing.T) {
	a := New[float32](3, 4)
	require.Equal(t, []int{3, 4}, a.Shape())
	require.Equal(t, []int{4, 1}, a.Strides())
	require.Equal(t, Float32, a.Dtype())
	require.True(t, a.Writable())
	require.True(t, a.Contiguous())
	for _, v := range a.Values() {
		require.Zero(t, v)
	}
}

func TestFromSliceSharesStorage(t *testing.T) {
	data := []uint8{1, 2, 3, 4, 5, 6}
	a, err := FromSlice(data, 2, 3)
	require.NoError(t, err)
	require.Equal(t, Uint8, a.Dtype())
	require.Equal(t, uint8(6), a.At(1, 2))

	a.Set(9, 0, 1)
	require.Equal(t, uint8(9), data[1])

	_, err = FromSlice(data, 4, 2)
	require.ErrorIs(t, err, errdefs.ErrShape)
}

func TestSliceAndTranspose(t *testing.T) {
	a := New[float32](3, 5)
	for i := 0; i < 3; i++ {
		for j := 0; j < 5; j++ {
			a.Set(float32(i*10+j), i, j)
		}
	}

	sub, err := a.Slice(1, 1, 4)
	require.NoError(t, err)
	require.Equal(t, []int{3, 3}, sub.Shape())
	require.Equal(t, []int{5, 1}, sub.Strides())
	require.False(t, sub.Contiguous())
	assert.Equal(t, float32(21), sub.At(2, 0))

	tr := a.T()
	require.Equal(t, []int{5, 3}, tr.Shape())
	require.Equal(t, []int{1, 5}, tr.Strides())
	assert.Equal(t, float32(14), tr.At(4, 1))

	_, err = a.Slice(0, 2, 5)
	require.ErrorIs(t, err, errdefs.ErrShape)

	clone := sub.Clone()
	require.True(t, clone.Contiguous())
	require.Equal(t, sub.Values(), clone.Values())
}

func TestFromStridedBounds(t *testing.T) {
	data := make([]float32, 20)
	a, err := FromStrided(data, 2, []int{3, 4}, []int{6, 1})
	require.NoError(t, err)
	backing, off := a.Backing()
	require.Equal(t, 2, off)
	require.Len(t, backing, 20)

	_, err = FromStrided(data, 5, []int{3, 4}, []int{6, 1})
	require.ErrorIs(t, err, errdefs.ErrShape)
}

func TestReadOnlyAlias(t *testing.T) {
	a := New[float32](2, 2)
	ro := a.ReadOnly()
	require.False(t, ro.Writable())
	require.True(t, a.Writable())
	require.Panics(t, func() { ro.Set(1, 0, 0) })

	a.Set(3, 1, 1)
	require.Equal(t, float32(3), ro.At(1, 1))
}

func TestFillRespectsView(t *testing.T) {
	a := New[float32](3, 4)
	col, err := a.T().Slice(0, 1, 2)
	require.NoError(t, err)
	col.Fill(7)
	for i := 0; i < 3; i++ {
		for j := 0; j < 4; j++ {
			want := float32(0)
			if j == 1 {
				want = 7
			}
			require.Equal(t, want, a.At(i, j), "(%d,%d)", i, j)
		}
	}

	New[uint8](0, 2).Fill(1)
	require.Panics(t, func() { a.ReadOnly().Fill(1) })
}

func TestMaxAndNaN(t *testing.T) {
	g, err := FromSlice([]uint8{0, 2, 1, 0}, 2, 2)
	require.NoError(t, err)
	m, ok := Max(g)
	require.True(t, ok)
	require.Equal(t, uint8(2), m)

	_, ok = Max(New[uint8](0, 3))
	require.False(t, ok)

	f := New[float32](2, 3)
	require.False(t, HasNaN(f))
	f.Set(float32(math.NaN()), 1, 2)
	require.True(t, HasNaN(f))

	left, err := f.Slice(1, 0, 2)
	require.NoError(t, err)
	require.False(t, HasNaN(left))
}
