package tensor

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func iota4(a, b, c, d int) *Dense {
	t := New(a, b, c, d)
	for i := range t.Data() {
		t.Data()[i] = float64(i)
	}
	return t
}

func TestRange(t *testing.T) {
	tests := []struct {
		msg  string
		in   Range
		len  int
		want []int
	}{
		{"normal", Range{2, 5}, 3, []int{2, 3, 4}},
		{"empty", Range{3, 3}, 0, []int{}},
		{"reversed", Range{4, 1}, -3, []int{}},
	}
	for _, test := range tests {
		t.Run(test.msg, func(t *testing.T) {
			assert.Equal(t, test.len, test.in.Len())
			assert.Equal(t, test.want, test.in.Indices())
		})
	}
}

func TestAtSet(t *testing.T) {
	ten := New(2, 3, 4)
	ten.Set(7.5, 1, 2, 3)
	assert.Equal(t, 7.5, ten.At(1, 2, 3))
	assert.Equal(t, 7.5, ten.Data()[1*12+2*4+3])
	assert.Panics(t, func() { ten.At(2, 0, 0) })
	assert.Panics(t, func() { ten.At(0, 0) })
}

func TestSlice(t *testing.T) {
	ten := iota4(3, 3, 3, 3)
	got, err := ten.Slice(Range{1, 3}, Range{0, 1}, Range{2, 3}, Range{0, 3})
	require.NoError(t, err)
	assert.Equal(t, []int{2, 1, 1, 3}, got.Shape())
	for i := 0; i < 2; i++ {
		for l := 0; l < 3; l++ {
			assert.Equal(t, ten.At(1+i, 0, 2, l), got.At(i, 0, 0, l))
		}
	}
}

func TestSliceEmpty(t *testing.T) {
	ten := iota4(2, 2, 2, 2)
	got, err := ten.Slice(Range{0, 0}, Full(2), Full(2), Full(2))
	require.NoError(t, err)
	assert.Equal(t, 0, got.Len())
	assert.Equal(t, []int{0, 2, 2, 2}, got.Shape())
}

func TestSliceErrors(t *testing.T) {
	ten := iota4(2, 2, 2, 2)
	tests := []struct {
		msg    string
		ranges []Range
		want   error
	}{
		{"past the end", []Range{{0, 3}, Full(2), Full(2), Full(2)}, ErrOutOfRange},
		{"negative start", []Range{{-1, 1}, Full(2), Full(2), Full(2)}, ErrOutOfRange},
		{"negative length", []Range{{2, 1}, Full(2), Full(2), Full(2)}, ErrOutOfRange},
		{"wrong rank", []Range{Full(2)}, ErrRankMismatch},
	}
	for _, test := range tests {
		t.Run(test.msg, func(t *testing.T) {
			_, err := ten.Slice(test.ranges...)
			if !errors.Is(err, test.want) {
				t.Errorf("got %v, wanted %v", err, test.want)
			}
		})
	}
}

func TestGather(t *testing.T) {
	ten := iota4(4, 1, 1, 1)
	got, err := ten.Gather([]int{3, 0, 2}, []int{0}, []int{0}, []int{0})
	require.NoError(t, err)
	assert.Equal(t, []float64{3, 0, 2}, got.Data())
}

func TestTranspose(t *testing.T) {
	ten := iota4(2, 3, 4, 5)
	got := ten.Transpose(0, 2, 1, 3)
	assert.Equal(t, []int{2, 4, 3, 5}, got.Shape())
	for i := 0; i < 2; i++ {
		for j := 0; j < 3; j++ {
			for k := 0; k < 4; k++ {
				for l := 0; l < 5; l++ {
					if got.At(i, k, j, l) != ten.At(i, j, k, l) {
						t.Fatalf("got %v, wanted %v at %v",
							got.At(i, k, j, l), ten.At(i, j, k, l),
							[]int{i, j, k, l})
					}
				}
			}
		}
	}
	assert.Panics(t, func() { ten.Transpose(0, 0, 1, 2) })
}

func TestSubAndMismatch(t *testing.T) {
	a := iota4(2, 2, 2, 2)
	b := iota4(2, 2, 2, 2)
	diff, err := Sub(a, b)
	require.NoError(t, err)
	for _, v := range diff.Data() {
		assert.Zero(t, v)
	}
	assert.True(t, EqualApprox(a, b, 1e-12))

	b.Set(b.At(1, 0, 1, 1)+1e-3, 1, 0, 1, 1)
	idx, ok, err := Mismatch(a, b, 1e-7)
	require.NoError(t, err)
	assert.False(t, ok)
	assert.Equal(t, []int{1, 0, 1, 1}, idx)
	assert.True(t, EqualApprox(a, b, 1e-2))

	_, _, err = Mismatch(a, New(2, 2), 1e-7)
	assert.ErrorIs(t, err, ErrShapeMismatch)
	_, err = Sub(a, New(2))
	assert.ErrorIs(t, err, ErrShapeMismatch)
}

func TestMismatchTolerance(t *testing.T) {
	a := NewFromData([]float64{0, 1, -2}, 3)
	b := NewFromData([]float64{0.5, 1, -2}, 3)
	_, ok, err := Mismatch(a, b, 0.5)
	require.NoError(t, err)
	assert.True(t, ok, "a difference of exactly tol agrees")
	idx, ok, err := Mismatch(a, b, 0.25)
	require.NoError(t, err)
	assert.False(t, ok)
	assert.Equal(t, []int{0}, idx)
}
