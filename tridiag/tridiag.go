// Package tridiag solves the vertical implicit systems of a water column
// for every horizontal point at once.
//
// Columns whose bottom index is negative are dry and take no part in the
// solve. Inside a wet column, the levels below the bottom index are
// decoupled from the water above so that every system stays non-singular.
package tridiag

import (
	"github.com/sarchlab/oceandist/field"
)

// A Problem holds the coefficients of the systems
//
//	a[k] x[k-1] + b[k] x[k] + c[k] x[k+1] = d[k]
//
// for every horizontal point (i, j). A, B, C, D and the optional BEdge and
// DEdge have the shape (ni, nj, nk). KS holds ni*nj bottom indices, i major.
type Problem struct {
	KS         []int
	A, B, C, D *field.Field

	// BEdge and DEdge replace b and d at the bottom level k == KS[i, j] when
	// set.
	BEdge, DEdge *field.Field
}

// A Result holds the solution and the cells it is valid for.
type Result struct {
	Solution  *field.Field
	WaterMask []bool
}

// Merge copies the solution into dst where the water mask is set and leaves
// the other cells of dst alone.
func (r *Result) Merge(dst *field.Field) error {
	if !dst.SameShape(r.Solution) {
		return &field.ShapeMismatchError{
			Op:   "merge",
			Want: r.Solution.Shape(),
			Got:  dst.Shape(),
		}
	}

	out := dst.Data()
	for i, v := range r.Solution.Data() {
		if r.WaterMask[i] {
			out[i] = v
		}
	}

	return nil
}

// Solve solves every column of the problem.
func Solve(p Problem) (*Result, error) {
	if err := p.check(); err != nil {
		return nil, err
	}

	shape := p.A.Shape()
	nk := shape[2]

	res := &Result{
		Solution:  field.New(shape...),
		WaterMask: make([]bool, p.A.Len()),
	}

	if !anyWet(p.KS) {
		return res, nil
	}

	s := newSweep(nk)
	for col, ks := range p.KS {
		if ks < 0 {
			continue
		}

		base := col * nk
		s.load(p, base, ks, res.WaterMask[base:base+nk])
		s.solve(res.Solution.Data()[base : base+nk])
	}

	return res, nil
}

func (p Problem) check() error {
	if p.A == nil || p.B == nil || p.C == nil || p.D == nil {
		panic("coefficients a, b, c, and d are required")
	}

	shape := p.A.Shape()
	if len(shape) != 3 {
		return &field.ShapeMismatchError{
			Op:   "solve implicit",
			Want: []int{0, 0, 0},
			Got:  shape,
		}
	}

	for _, f := range []*field.Field{p.B, p.C, p.D, p.BEdge, p.DEdge} {
		if f != nil && !field.EqualShape(f.Shape(), shape) {
			return &field.ShapeMismatchError{
				Op:   "solve implicit",
				Want: shape,
				Got:  f.Shape(),
			}
		}
	}

	if len(p.KS) != shape[0]*shape[1] {
		return &field.ShapeMismatchError{
			Op:   "solve implicit",
			Want: shape[:2],
			Got:  []int{len(p.KS)},
		}
	}

	return nil
}

func anyWet(ks []int) bool {
	for _, k := range ks {
		if k >= 0 {
			return true
		}
	}

	return false
}
