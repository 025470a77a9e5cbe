package field

import "fmt"

// ShapeMismatchError reports an array whose shape disagrees with the shape
// the decomposition expects.
type ShapeMismatchError struct {
	Op   string
	Want []int
	Got  []int
}

func (e *ShapeMismatchError) Error() string {
	return fmt.Sprintf("%s: shape mismatch, want %v, got %v",
		e.Op, e.Want, e.Got)
}

// Resolve completes a region for the given shape. Missing trailing axes
// select the whole axis and open upper bounds take the axis extent.
func Resolve(shape []int, region []Range) ([]Range, error) {
	if len(region) > len(shape) {
		return nil, fmt.Errorf(
			"region %v has more axes than shape %v", region, shape)
	}

	out := make([]Range, len(shape))
	for axis, n := range shape {
		r := All()
		if axis < len(region) {
			r = region[axis]
		}

		r = r.Resolve(n)
		if r.Lo < 0 || r.Hi > n || r.Lo > r.Hi {
			return nil, fmt.Errorf(
				"range %v out of bounds for axis %d of shape %v",
				r, axis, shape)
		}

		out[axis] = r
	}

	return out, nil
}

// RegionShape returns the shape of the block a region selects from an array
// of the given shape.
func RegionShape(shape []int, region []Range) []int {
	resolved, err := Resolve(shape, region)
	if err != nil {
		panic(err)
	}

	out := make([]int, len(resolved))
	for i, r := range resolved {
		out[i] = r.Len()
	}

	return out
}

// Extract copies the block selected by region into a new field.
func (f *Field) Extract(region ...Range) *Field {
	resolved, err := Resolve(f.shape, region)
	if err != nil {
		panic(err)
	}

	shape := make([]int, len(resolved))
	for i, r := range resolved {
		shape[i] = r.Len()
	}

	out := make([]float64, 0, Size(shape))
	f.walk(resolved, func(off, n int) {
		out = append(out, f.data[off:off+n]...)
	})

	return FromData(out, shape...)
}

// Assign writes src into the block selected by region. The shape of src must
// equal the shape of the block.
func (f *Field) Assign(src *Field, region ...Range) error {
	resolved, err := Resolve(f.shape, region)
	if err != nil {
		return err
	}

	want := make([]int, len(resolved))
	for i, r := range resolved {
		want[i] = r.Len()
	}

	if !EqualShape(want, src.shape) {
		return &ShapeMismatchError{
			Op:   "assign",
			Want: want,
			Got:  src.Shape(),
		}
	}

	pos := 0
	f.walk(resolved, func(off, n int) {
		copy(f.data[off:off+n], src.data[pos:pos+n])
		pos += n
	})

	return nil
}

// walk visits the contiguous runs of a resolved region along the last axis.
func (f *Field) walk(region []Range, fn func(off, n int)) {
	if len(region) == 0 {
		fn(0, len(f.data))
		return
	}

	last := len(region) - 1

	var visit func(axis, base int)
	visit = func(axis, base int) {
		r := region[axis]
		if axis == last {
			if r.Len() > 0 {
				fn(base+r.Lo*f.strides[axis], r.Len())
			}

			return
		}

		for i := r.Lo; i < r.Hi; i++ {
			visit(axis+1, base+i*f.strides[axis])
		}
	}

	visit(0, 0)
}
