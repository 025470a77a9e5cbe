// Package dist provides the operations that keep a decomposed field
// consistent across ranks: halo exchange, reductions, and assembling a field
// on rank 0 or distributing it from there.
//
// A Runtime comes in two variants. The local variant serves single-process
// runs, where every operation leaves the data as a one-rank run would have
// it. The message-passing variant talks to the other ranks through a
// comm.Communicator. Every rank must issue the same sequence of calls.
package dist

import (
	"fmt"

	"github.com/sarchlab/oceandist/comm"
	"github.com/sarchlab/oceandist/decomp"
	"github.com/sarchlab/oceandist/field"
)

// Axis selects the process grid axis a reduction runs along.
type Axis int

// Reduction axes. AxisX combines the ranks of one process row, AxisY the
// ranks of one process column.
const (
	AllAxes Axis = -1
	AxisX   Axis = 0
	AxisY   Axis = 1
)

// Message tags of the point-to-point traffic. Halo exchanges use the
// direction index as tag.
const (
	CyclicTag          = 10
	Gather1DTag        = 20
	GatherXYTag        = 30
	Scatter1DTag       = 40
	ScatterXYTag       = 50
	ScatterConstantTag = 60
)

// A Runtime runs the decomposition-aware operations of one rank.
type Runtime interface {
	// Decomposition returns the geometry of the run.
	Decomposition() *decomp.Decomposition

	// Rank returns the rank of the caller.
	Rank() int

	// Distributed reports whether the runtime talks to other ranks.
	Distributed() bool

	// ExchangeOverlap refreshes the halo of f in place with the interior
	// cells of the neighboring ranks.
	ExchangeOverlap(f *field.Field, desc decomp.FieldDesc) error

	// ExchangeCyclicBoundaries makes the leading axis of f periodic by
	// filling its outer halo from the opposite end of the domain.
	ExchangeCyclicBoundaries(f *field.Field) error

	// Reduce combines buf over all ranks, or over the ranks of one row or
	// column of the process grid.
	Reduce(buf []float64, op comm.Op, axis Axis) ([]float64, error)

	// ReduceScalar is Reduce for a single value.
	ReduceScalar(v float64, op comm.Op, axis Axis) (float64, error)

	// Gather assembles f on rank 0. Other ranks get f back unchanged.
	Gather(f *field.Field, desc decomp.FieldDesc) (*field.Field, error)

	// Scatter distributes the global field f of rank 0 and fills the halos
	// of the local parts. On the other ranks f only provides the local
	// shape.
	Scatter(f *field.Field, desc decomp.FieldDesc) (*field.Field, error)

	// Broadcast returns the buffer of rank 0 on every rank.
	Broadcast(buf []float64) ([]float64, error)

	// Barrier blocks until every rank has entered it.
	Barrier() error

	// Abort stops every rank of the run.
	Abort(code int)
}

// GlobalAnd reports whether v holds on every rank.
func GlobalAnd(rt Runtime, v bool, axis Axis) (bool, error) {
	return reduceBool(rt, v, comm.OpAnd, axis)
}

// GlobalOr reports whether v holds on any rank.
func GlobalOr(rt Runtime, v bool, axis Axis) (bool, error) {
	return reduceBool(rt, v, comm.OpOr, axis)
}

// GlobalMax returns the largest v of all ranks.
func GlobalMax(rt Runtime, v float64, axis Axis) (float64, error) {
	return rt.ReduceScalar(v, comm.OpMax, axis)
}

// GlobalMin returns the smallest v of all ranks.
func GlobalMin(rt Runtime, v float64, axis Axis) (float64, error) {
	return rt.ReduceScalar(v, comm.OpMin, axis)
}

// GlobalSum returns the sum of v over all ranks.
func GlobalSum(rt Runtime, v float64, axis Axis) (float64, error) {
	return rt.ReduceScalar(v, comm.OpSum, axis)
}

func reduceBool(rt Runtime, v bool, op comm.Op, axis Axis) (bool, error) {
	x := 0.0
	if v {
		x = 1
	}

	out, err := rt.ReduceScalar(x, op, axis)
	if err != nil {
		return false, err
	}

	return out != 0, nil
}

func reduceScalar(rt Runtime, v float64, op comm.Op, axis Axis) (float64, error) {
	out, err := rt.Reduce([]float64{v}, op, axis)
	if err != nil {
		return 0, err
	}

	return out[0], nil
}

func checkShape(op string, f *field.Field, want []int) error {
	if !field.EqualShape(f.Shape(), want) {
		return &field.ShapeMismatchError{
			Op:   op,
			Want: want,
			Got:  f.Shape(),
		}
	}

	return nil
}

func checkGrid(op string, f *field.Field, desc decomp.FieldDesc) error {
	if len(desc.Grid) > f.NDim() {
		return fmt.Errorf("%s %s: grid %v has more axes than shape %v",
			op, desc.Name, desc.Grid, f.Shape())
	}

	return nil
}
