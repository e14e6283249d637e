// Package tensor provides the dense row-major float64 arrays the integral
// checks slice and compare. Only the operations the harness needs are here:
// element access, contiguous slicing, gathering along index lists, axis
// permutation and tolerance comparison.
package tensor

import (
	"errors"
	"fmt"

	"gonum.org/v1/gonum/floats"
	"gonum.org/v1/gonum/floats/scalar"
)

var (
	ErrOutOfRange    = errors.New("tensor: index range out of bounds")
	ErrRankMismatch  = errors.New("tensor: rank mismatch")
	ErrShapeMismatch = errors.New("tensor: shape mismatch")
)

// Range is the half-open index interval [Start, Stop) with unit step
type Range struct {
	Start int
	Stop  int
}

// Full returns the range covering an axis of length n
func Full(n int) Range {
	return Range{0, n}
}

// Len returns Stop-Start. It is negative for a malformed range.
func (r Range) Len() int {
	return r.Stop - r.Start
}

// Indices expands r into the explicit list of positions it covers
func (r Range) Indices() []int {
	if r.Len() <= 0 {
		return []int{}
	}
	idx := make([]int, r.Len())
	for i := range idx {
		idx[i] = r.Start + i
	}
	return idx
}

func (r Range) String() string {
	return fmt.Sprintf("[%d,%d)", r.Start, r.Stop)
}

// Dense is a dense tensor of arbitrary rank
type Dense struct {
	shape   []int
	strides []int
	data    []float64
}

// New returns a zero tensor with the given shape
func New(shape ...int) *Dense {
	return NewFromData(nil, shape...)
}

// NewFromData wraps data in a tensor of the given shape. If data is nil a
// new backing slice is allocated. NewFromData panics when the length of
// data does not match the shape.
func NewFromData(data []float64, shape ...int) *Dense {
	size := 1
	for _, s := range shape {
		if s < 0 {
			panic(fmt.Sprintf("tensor: negative dimension %d", s))
		}
		size *= s
	}
	if data == nil {
		data = make([]float64, size)
	}
	if len(data) != size {
		panic(fmt.Sprintf("tensor: data length %d does not match shape %v",
			len(data), shape))
	}
	t := &Dense{
		shape:   append([]int(nil), shape...),
		strides: make([]int, len(shape)),
		data:    data,
	}
	stride := 1
	for i := len(shape) - 1; i >= 0; i-- {
		t.strides[i] = stride
		stride *= shape[i]
	}
	return t
}

// Shape returns a copy of the dimensions of t
func (t *Dense) Shape() []int {
	return append([]int(nil), t.shape...)
}

func (t *Dense) Rank() int {
	return len(t.shape)
}

// Len returns the total number of elements
func (t *Dense) Len() int {
	return len(t.data)
}

// Data returns the backing slice in row-major order
func (t *Dense) Data() []float64 {
	return t.data
}

func (t *Dense) offset(idx []int) int {
	if len(idx) != len(t.shape) {
		panic(ErrRankMismatch)
	}
	off := 0
	for i, v := range idx {
		if v < 0 || v >= t.shape[i] {
			panic(fmt.Sprintf("tensor: index %v out of bounds for shape %v",
				idx, t.shape))
		}
		off += v * t.strides[i]
	}
	return off
}

func (t *Dense) At(idx ...int) float64 {
	return t.data[t.offset(idx)]
}

func (t *Dense) Set(v float64, idx ...int) {
	t.data[t.offset(idx)] = v
}

// Slice copies out the sub-block selected by one range per axis. A range
// reaching outside its axis, or with Stop < Start, yields ErrOutOfRange.
func (t *Dense) Slice(ranges ...Range) (*Dense, error) {
	if len(ranges) != len(t.shape) {
		return nil, fmt.Errorf("%w: %d ranges for rank %d",
			ErrRankMismatch, len(ranges), len(t.shape))
	}
	axes := make([][]int, len(ranges))
	for i, r := range ranges {
		if r.Start < 0 || r.Stop > t.shape[i] || r.Len() < 0 {
			return nil, fmt.Errorf("%w: %v on axis %d of length %d",
				ErrOutOfRange, r, i, t.shape[i])
		}
		axes[i] = r.Indices()
	}
	return t.Gather(axes...)
}

// Gather copies out the elements at the cartesian product of the index
// lists, one list per axis, keeping the order of each list.
func (t *Dense) Gather(axes ...[]int) (*Dense, error) {
	if len(axes) != len(t.shape) {
		return nil, fmt.Errorf("%w: %d index lists for rank %d",
			ErrRankMismatch, len(axes), len(t.shape))
	}
	shape := make([]int, len(axes))
	for i, ax := range axes {
		for _, v := range ax {
			if v < 0 || v >= t.shape[i] {
				return nil, fmt.Errorf("%w: index %d on axis %d of length %d",
					ErrOutOfRange, v, i, t.shape[i])
			}
		}
		shape[i] = len(ax)
	}
	out := New(shape...)
	if out.Len() == 0 {
		return out, nil
	}
	ctr := make([]int, len(shape))
	for n := range out.data {
		off := 0
		for i, c := range ctr {
			off += axes[i][c] * t.strides[i]
		}
		out.data[n] = t.data[off]
		increment(ctr, shape)
	}
	return out, nil
}

// Transpose returns a copy of t with axis i of the result taken from axis
// perm[i] of t, the numpy transpose convention
func (t *Dense) Transpose(perm ...int) *Dense {
	if len(perm) != len(t.shape) {
		panic(ErrRankMismatch)
	}
	seen := make([]bool, len(perm))
	shape := make([]int, len(perm))
	for i, p := range perm {
		if p < 0 || p >= len(perm) || seen[p] {
			panic(fmt.Sprintf("tensor: invalid permutation %v", perm))
		}
		seen[p] = true
		shape[i] = t.shape[p]
	}
	out := New(shape...)
	if out.Len() == 0 {
		return out
	}
	ctr := make([]int, len(shape))
	for n := range out.data {
		off := 0
		for i, c := range ctr {
			off += c * t.strides[perm[i]]
		}
		out.data[n] = t.data[off]
		increment(ctr, shape)
	}
	return out
}

// Sub returns a-b
func Sub(a, b *Dense) (*Dense, error) {
	if !sameShape(a.shape, b.shape) {
		return nil, fmt.Errorf("%w: %v and %v", ErrShapeMismatch, a.shape, b.shape)
	}
	out := New(a.shape...)
	floats.SubTo(out.data, a.data, b.data)
	return out, nil
}

// Mismatch locates the first element of a and b differing by more than tol
// in absolute value. ok is true when every element agrees.
func Mismatch(a, b *Dense, tol float64) (idx []int, ok bool, err error) {
	if !sameShape(a.shape, b.shape) {
		return nil, false, fmt.Errorf("%w: %v and %v",
			ErrShapeMismatch, a.shape, b.shape)
	}
	for n := range a.data {
		if !scalar.EqualWithinAbs(a.data[n], b.data[n], tol) {
			return a.unravel(n), false, nil
		}
	}
	return nil, true, nil
}

// EqualApprox reports whether a and b have the same shape and agree
// elementwise within tol
func EqualApprox(a, b *Dense, tol float64) bool {
	_, ok, err := Mismatch(a, b, tol)
	return err == nil && ok
}

func (t *Dense) unravel(flat int) []int {
	idx := make([]int, len(t.shape))
	for i, s := range t.strides {
		idx[i] = flat / s
		flat %= s
	}
	return idx
}

func increment(ctr, shape []int) {
	for i := len(ctr) - 1; i >= 0; i-- {
		ctr[i]++
		if ctr[i] < shape[i] {
			return
		}
		ctr[i] = 0
	}
}

func sameShape(a, b []int) bool {
	if len(a) != len(b) {
		return false
	}
	for i := range a {
		if a[i] != b[i] {
			return false
		}
	}
	return true
}
