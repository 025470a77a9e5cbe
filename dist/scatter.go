package dist

import (
	"github.com/sarchlab/oceandist/decomp"
	"github.com/sarchlab/oceandist/field"
)

// Scatter sends every rank its chunk of the global field held by rank 0,
// including the outer halo where the chunk touches the domain boundary. The
// halos between chunks are then filled by a halo exchange. Unscattered
// fields are replicated.
func (r *mpRuntime) Scatter(
	f *field.Field,
	desc decomp.FieldDesc,
) (*field.Field, error) {
	switch desc.Scattering {
	case decomp.Unscattered:
		return r.scatterConstant(f, desc)
	case decomp.ScatteredX, decomp.ScatteredY:
		return r.scatterChunks(f, desc, Scatter1DTag)
	case decomp.ScatteredXY:
		return r.scatterChunks(f, desc, ScatterXYTag)
	default:
		return nil, &decomp.UnsupportedGridTagError{
			Field: desc.Name, Grid: desc.Grid}
	}
}

func (r *mpRuntime) scatterConstant(
	f *field.Field,
	desc decomp.FieldDesc,
) (*field.Field, error) {
	d := r.decomposition

	if d.Rank() == 0 {
		for rank := 1; rank < d.NumRanks(); rank++ {
			err := r.comm.Send(f.Data(), rank, ScatterConstantTag)
			if err != nil {
				return nil, transportError("scatter "+desc.Name, f.Shape(), err)
			}
		}

		return f.Clone(), nil
	}

	out := field.New(f.Shape()...)
	if err := r.comm.Recv(out.Data(), 0, ScatterConstantTag); err != nil {
		return nil, transportError("scatter "+desc.Name, f.Shape(), err)
	}

	return out, nil
}

func (r *mpRuntime) scatterChunks(
	f *field.Field,
	desc decomp.FieldDesc,
	tag int,
) (*field.Field, error) {
	d := r.decomposition

	if err := checkGrid("scatter", f, desc); err != nil {
		return nil, err
	}

	var localShape []int

	if d.Rank() == 0 {
		err := checkShape("scatter "+desc.Name, f,
			d.GlobalShape(f.Shape(), desc.Grid))
		if err != nil {
			return nil, err
		}

		localShape = d.LocalShape(f.Shape(), desc.Grid)
	} else {
		if err := r.checkLocal("scatter", f, desc); err != nil {
			return nil, err
		}

		localShape = f.Shape()
	}

	out := field.New(localShape...)
	_, local := d.ChunkSlices(desc.Grid, d.Index(), true)

	if d.Rank() == 0 {
		if err := r.sendChunks(f, desc, tag); err != nil {
			return nil, err
		}

		own, _ := d.ChunkSlices(desc.Grid, d.Index(), true)
		if err := out.Assign(f.Extract(own...), local...); err != nil {
			return nil, err
		}
	} else {
		shape := field.RegionShape(localShape, local)
		buf := make([]float64, field.Size(shape))

		if err := r.comm.Recv(buf, 0, tag); err != nil {
			return nil, transportError("scatter "+desc.Name, shape, err)
		}

		if err := out.Assign(field.FromData(buf, shape...), local...); err != nil {
			return nil, err
		}
	}

	if err := r.ExchangeOverlap(out, desc); err != nil {
		return nil, err
	}

	return out, nil
}

func (r *mpRuntime) sendChunks(
	f *field.Field,
	desc decomp.FieldDesc,
	tag int,
) error {
	d := r.decomposition

	for rank := 1; rank < d.NumRanks(); rank++ {
		global, _ := d.ChunkSlices(desc.Grid, d.RankToIndex(rank), true)
		chunk := f.Extract(global...)

		if err := r.comm.Send(chunk.Data(), rank, tag); err != nil {
			return transportError("scatter "+desc.Name, chunk.Shape(), err)
		}
	}

	return nil
}
