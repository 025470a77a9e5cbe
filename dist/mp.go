package dist

import (
	"errors"
	"fmt"
	"log"

	"github.com/sarchlab/oceandist/comm"
	"github.com/sarchlab/oceandist/decomp"
	"github.com/sarchlab/oceandist/field"
)

// mpRuntime runs one rank of a message-passing run.
type mpRuntime struct {
	decomposition *decomp.Decomposition
	comm          comm.Communicator
	abortHandler  AbortHandler
}

func (r *mpRuntime) Decomposition() *decomp.Decomposition {
	return r.decomposition
}

func (r *mpRuntime) Rank() int {
	return r.decomposition.Rank()
}

func (r *mpRuntime) Distributed() bool {
	return true
}

// Communicator returns the communicator the runtime talks through.
func (r *mpRuntime) Communicator() comm.Communicator {
	return r.comm
}

func (r *mpRuntime) ExchangeOverlap(
	f *field.Field,
	desc decomp.FieldDesc,
) error {
	dirs := exchangeDirections(desc.Scattering)
	if len(dirs) == 0 {
		return nil
	}

	if err := r.checkLocal("exchange overlap", f, desc); err != nil {
		return err
	}

	neighbors := r.decomposition.Neighbors()
	shape := f.Shape()

	for _, dir := range dirs {
		other := neighbors[dir]
		if other == decomp.NoRank {
			continue
		}

		send, recv := transferRegions(desc.Scattering, shape, dir)

		err := r.sendrecvRegion("exchange overlap "+desc.Name, f,
			send, other, int(dir),
			recv, other, int(dir.Complement()))
		if err != nil {
			return err
		}
	}

	return nil
}

// sendrecvRegion sends one block of f and overwrites another with what comes
// back.
func (r *mpRuntime) sendrecvRegion(
	op string,
	f *field.Field,
	send []field.Range, dest, sendTag int,
	recv []field.Range, source, recvTag int,
) error {
	sendBuf := f.Extract(send...)
	recvShape := field.RegionShape(f.Shape(), recv)
	recvBuf := make([]float64, field.Size(recvShape))

	err := r.comm.Sendrecv(
		sendBuf.Data(), dest, sendTag,
		recvBuf, source, recvTag)
	if err != nil {
		return transportError(op, recvShape, err)
	}

	return f.Assign(field.FromData(recvBuf, recvShape...), recv...)
}

// Reduce all-reduces buf. For a single axis, the ranks that share the
// coordinate on the other axis form a sub-communicator that lives only for
// this call.
func (r *mpRuntime) Reduce(
	buf []float64,
	op comm.Op,
	axis Axis,
) (out []float64, err error) {
	if axis == AllAxes {
		return r.comm.Allreduce(buf, op)
	}

	idx := r.decomposition.Index()

	var color int

	switch axis {
	case AxisX:
		color = idx.Y
	case AxisY:
		color = idx.X
	default:
		log.Panicf("cannot reduce along axis %d", axis)
	}

	sub, err := r.comm.Split(color, r.decomposition.Rank())
	if err != nil {
		return nil, fmt.Errorf("reduce along axis %d: %w", axis, err)
	}

	defer func() {
		if freeErr := sub.Free(); freeErr != nil && err == nil {
			err = freeErr
		}
	}()

	return sub.Allreduce(buf, op)
}

func (r *mpRuntime) ReduceScalar(
	v float64,
	op comm.Op,
	axis Axis,
) (float64, error) {
	return reduceScalar(r, v, op, axis)
}

func (r *mpRuntime) Broadcast(buf []float64) ([]float64, error) {
	return r.comm.Bcast(buf, 0)
}

func (r *mpRuntime) Barrier() error {
	return r.comm.Barrier()
}

func (r *mpRuntime) Abort(code int) {
	r.comm.Abort(code)

	if r.abortHandler != nil {
		r.abortHandler(code)
	}
}

func (r *mpRuntime) checkLocal(
	op string,
	f *field.Field,
	desc decomp.FieldDesc,
) error {
	if err := checkGrid(op, f, desc); err != nil {
		return err
	}

	return checkShape(op+" "+desc.Name, f,
		r.decomposition.LocalShape(f.Shape(), desc.Grid))
}

// transportError turns a length mismatch reported by the transport into a
// shape mismatch of the block that was expected.
func transportError(op string, want []int, err error) error {
	var sizeErr *comm.SizeMismatchError
	if errors.As(err, &sizeErr) {
		return &field.ShapeMismatchError{
			Op:   op,
			Want: want,
			Got:  []int{sizeErr.Got},
		}
	}

	return fmt.Errorf("%s: %w", op, err)
}
