package dist

import (
	"github.com/sarchlab/oceandist/comm"
	"github.com/sarchlab/oceandist/decomp"
	"github.com/sarchlab/oceandist/field"
)

// localRuntime serves single-process runs. The only rank owns the whole
// domain, so halos have no neighbor to come from and the local array already
// is the global one.
type localRuntime struct {
	decomposition *decomp.Decomposition
	abortHandler  AbortHandler
}

func (r *localRuntime) Decomposition() *decomp.Decomposition {
	return r.decomposition
}

func (r *localRuntime) Rank() int {
	return 0
}

func (r *localRuntime) Distributed() bool {
	return false
}

func (r *localRuntime) ExchangeOverlap(
	f *field.Field,
	desc decomp.FieldDesc,
) error {
	if desc.Scattering == decomp.Unscattered {
		return nil
	}

	if err := checkGrid("exchange overlap", f, desc); err != nil {
		return err
	}

	return checkShape("exchange overlap", f,
		r.decomposition.LocalShape(f.Shape(), desc.Grid))
}

func (r *localRuntime) ExchangeCyclicBoundaries(f *field.Field) error {
	if err := checkCyclicShape(r.decomposition, f); err != nil {
		return err
	}

	return wrapCyclic(f)
}

func (r *localRuntime) Reduce(
	buf []float64,
	op comm.Op,
	_ Axis,
) ([]float64, error) {
	out := append([]float64(nil), buf...)
	op.Normalize(out)

	return out, nil
}

func (r *localRuntime) ReduceScalar(
	v float64,
	op comm.Op,
	axis Axis,
) (float64, error) {
	return reduceScalar(r, v, op, axis)
}

func (r *localRuntime) Gather(
	f *field.Field,
	_ decomp.FieldDesc,
) (*field.Field, error) {
	return f, nil
}

func (r *localRuntime) Scatter(
	f *field.Field,
	_ decomp.FieldDesc,
) (*field.Field, error) {
	return f, nil
}

func (r *localRuntime) Broadcast(buf []float64) ([]float64, error) {
	return append([]float64(nil), buf...), nil
}

func (r *localRuntime) Barrier() error {
	return nil
}

func (r *localRuntime) Abort(code int) {
	if r.abortHandler != nil {
		r.abortHandler(code)
	}
}
