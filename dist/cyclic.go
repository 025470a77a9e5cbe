package dist

import (
	"fmt"

	"github.com/sarchlab/oceandist/decomp"
	"github.com/sarchlab/oceandist/field"
)

func checkCyclicShape(d *decomp.Decomposition, f *field.Field) error {
	if f.NDim() == 0 {
		return fmt.Errorf("exchange cyclic boundaries: field has no axes")
	}

	nxl, _ := d.ChunkSize()
	if f.Shape()[0] != nxl+2*decomp.Halo {
		want := f.Shape()
		want[0] = nxl + 2*decomp.Halo

		return &field.ShapeMismatchError{
			Op:   "exchange cyclic boundaries",
			Want: want,
			Got:  f.Shape(),
		}
	}

	return nil
}

// wrapCyclic fills the outer halo of the leading axis from the interior
// strip at the opposite end.
func wrapCyclic(f *field.Field) error {
	n := f.Shape()[0]

	low := stripLowInterior.rangeFor(n)
	high := stripHighInterior.rangeFor(n)

	if err := f.Assign(f.Extract(low), stripHighHalo.rangeFor(n)); err != nil {
		return err
	}

	return f.Assign(f.Extract(high), stripLowHalo.rangeFor(n))
}

func (r *mpRuntime) ExchangeCyclicBoundaries(f *field.Field) error {
	d := r.decomposition

	if err := checkCyclicShape(d, f); err != nil {
		return err
	}

	if d.PX == 1 {
		return wrapCyclic(f)
	}

	idx := d.Index()
	n := f.Shape()[0]

	var (
		other      int
		send, recv field.Range
	)

	switch idx.X {
	case 0:
		other = d.IndexToRank(decomp.Index{X: d.PX - 1, Y: idx.Y})
		send = stripLowInterior.rangeFor(n)
		recv = stripLowHalo.rangeFor(n)
	case d.PX - 1:
		other = d.IndexToRank(decomp.Index{X: 0, Y: idx.Y})
		send = stripHighInterior.rangeFor(n)
		recv = stripHighHalo.rangeFor(n)
	default:
		return nil
	}

	return r.sendrecvRegion(
		"exchange cyclic boundaries", f,
		[]field.Range{send}, other, CyclicTag,
		[]field.Range{recv}, other, CyclicTag)
}
