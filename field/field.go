// Package field provides the dense float64 arrays that the decomposition
// layer slices, ships between ranks, and reassembles.
//
// A Field is stored row-major. The leading axes of a distributed field are
// the horizontal x and y axes; any trailing axes (depth, time levels) are
// carried along unchanged.
package field

import (
	"fmt"
	"math"
)

// End marks the upper bound of a Range as the extent of the axis.
const End = math.MaxInt

// A Range selects the half-open index interval [Lo, Hi) along one axis.
type Range struct {
	Lo, Hi int
}

// Span returns the range [lo, hi).
func Span(lo, hi int) Range {
	return Range{Lo: lo, Hi: hi}
}

// All selects a whole axis.
func All() Range {
	return Range{Lo: 0, Hi: End}
}

// Len returns the number of indices in a resolved range.
func (r Range) Len() int {
	if r.Hi <= r.Lo {
		return 0
	}

	return r.Hi - r.Lo
}

// Resolve replaces an open upper bound with the axis extent n.
func (r Range) Resolve(n int) Range {
	if r.Hi == End {
		r.Hi = n
	}

	return r
}

// String formats the range the way array slices are usually written.
func (r Range) String() string {
	if r.Hi == End {
		return fmt.Sprintf("%d:", r.Lo)
	}

	return fmt.Sprintf("%d:%d", r.Lo, r.Hi)
}

// Field is a dense row-major N-dimensional array of float64 values.
type Field struct {
	shape   []int
	strides []int
	data    []float64
}

// New allocates a zero-filled field with the given shape.
func New(shape ...int) *Field {
	n := 1
	for _, s := range shape {
		if s < 0 {
			panic(fmt.Sprintf("negative extent in shape %v", shape))
		}

		n *= s
	}

	return FromData(make([]float64, n), shape...)
}

// FromData wraps data as a field of the given shape. The data is not copied.
func FromData(data []float64, shape ...int) *Field {
	if Size(shape) != len(data) {
		panic(fmt.Sprintf(
			"data of length %d cannot take shape %v", len(data), shape))
	}

	f := &Field{
		shape: append([]int(nil), shape...),
		data:  data,
	}
	f.strides = make([]int, len(shape))

	stride := 1
	for i := len(shape) - 1; i >= 0; i-- {
		f.strides[i] = stride
		stride *= shape[i]
	}

	return f
}

// Size returns the number of elements of an array with the given shape.
func Size(shape []int) int {
	n := 1
	for _, s := range shape {
		n *= s
	}

	return n
}

// Shape returns a copy of the field shape.
func (f *Field) Shape() []int {
	return append([]int(nil), f.shape...)
}

// NDim returns the number of axes.
func (f *Field) NDim() int {
	return len(f.shape)
}

// Len returns the number of elements.
func (f *Field) Len() int {
	return len(f.data)
}

// Data returns the underlying storage.
func (f *Field) Data() []float64 {
	return f.data
}

// Offset returns the position of an element in the underlying storage.
func (f *Field) Offset(idx ...int) int {
	if len(idx) != len(f.shape) {
		panic(fmt.Sprintf(
			"index %v does not address a field of shape %v", idx, f.shape))
	}

	off := 0
	for axis, i := range idx {
		if i < 0 || i >= f.shape[axis] {
			panic(fmt.Sprintf("index %v out of bounds for shape %v",
				idx, f.shape))
		}

		off += i * f.strides[axis]
	}

	return off
}

// At returns the element at the given index.
func (f *Field) At(idx ...int) float64 {
	return f.data[f.Offset(idx...)]
}

// Set writes the element at the given index.
func (f *Field) Set(v float64, idx ...int) {
	f.data[f.Offset(idx...)] = v
}

// Fill sets every element to v.
func (f *Field) Fill(v float64) {
	for i := range f.data {
		f.data[i] = v
	}
}

// Clone returns a deep copy.
func (f *Field) Clone() *Field {
	return FromData(append([]float64(nil), f.data...), f.shape...)
}

// SameShape reports whether the two fields have identical shapes.
func (f *Field) SameShape(o *Field) bool {
	return EqualShape(f.shape, o.shape)
}

// EqualShape reports whether two shapes are identical.
func EqualShape(a, b []int) bool {
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

// Identical reports whether two fields have the same shape and bit-identical
// contents.
func Identical(a, b *Field) bool {
	if !a.SameShape(b) {
		return false
	}

	for i := range a.data {
		if math.Float64bits(a.data[i]) != math.Float64bits(b.data[i]) {
			return false
		}
	}

	return true
}
