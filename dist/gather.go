package dist

import (
	"github.com/sarchlab/oceandist/decomp"
	"github.com/sarchlab/oceandist/field"
)

// Gather sends the chunk of every rank, with the outer halo where the chunk
// touches the domain boundary, to rank 0. Rank 0 places them in rank order
// into a field that covers the whole domain including its outer halo.
func (r *mpRuntime) Gather(
	f *field.Field,
	desc decomp.FieldDesc,
) (*field.Field, error) {
	switch desc.Scattering {
	case decomp.Unscattered:
		return f, nil
	case decomp.ScatteredX:
		return r.gather1D(f, desc, 0)
	case decomp.ScatteredY:
		return r.gather1D(f, desc, 1)
	case decomp.ScatteredXY:
		return r.gatherXY(f, desc)
	default:
		return nil, &decomp.UnsupportedGridTagError{
			Field: desc.Name, Grid: desc.Grid}
	}
}

// gather1D involves only the ranks in the first row (x) or column (y) of the
// process grid, since the other ranks hold copies of the same chunks.
func (r *mpRuntime) gather1D(
	f *field.Field,
	desc decomp.FieldDesc,
	dim int,
) (*field.Field, error) {
	d := r.decomposition

	if err := r.checkLocal("gather", f, desc); err != nil {
		return nil, err
	}

	onLine := func(idx decomp.Index) bool {
		if dim == 0 {
			return idx.Y == 0
		}

		return idx.X == 0
	}

	if !onLine(d.Index()) {
		return f, nil
	}

	global, local := d.ChunkSlices(desc.Grid, d.Index(), true)
	chunk := f.Extract(local...)

	if d.Rank() != 0 {
		if err := r.comm.Send(chunk.Data(), 0, Gather1DTag); err != nil {
			return nil, transportError("gather "+desc.Name, chunk.Shape(), err)
		}

		return f, nil
	}

	return r.assemble(f, desc, chunk, global, Gather1DTag, onLine)
}

func (r *mpRuntime) gatherXY(
	f *field.Field,
	desc decomp.FieldDesc,
) (*field.Field, error) {
	d := r.decomposition

	if err := r.checkLocal("gather", f, desc); err != nil {
		return nil, err
	}

	global, local := d.ChunkSlices(desc.Grid, d.Index(), true)
	chunk := f.Extract(local...)

	if d.Rank() != 0 {
		if err := r.comm.Send(chunk.Data(), 0, GatherXYTag); err != nil {
			return nil, transportError("gather "+desc.Name, chunk.Shape(), err)
		}

		return f, nil
	}

	everyRank := func(decomp.Index) bool { return true }

	return r.assemble(f, desc, chunk, global, GatherXYTag, everyRank)
}

// assemble runs on rank 0. It receives the chunks of the participating ranks
// in increasing rank order.
func (r *mpRuntime) assemble(
	f *field.Field,
	desc decomp.FieldDesc,
	own *field.Field,
	ownGlobal []field.Range,
	tag int,
	participates func(decomp.Index) bool,
) (*field.Field, error) {
	d := r.decomposition
	localShape := f.Shape()

	out := field.New(d.GlobalShape(localShape, desc.Grid)...)
	if err := out.Assign(own, ownGlobal...); err != nil {
		return nil, err
	}

	for rank := 1; rank < d.NumRanks(); rank++ {
		idx := d.RankToIndex(rank)
		if !participates(idx) {
			continue
		}

		global, local := d.ChunkSlices(desc.Grid, idx, true)
		shape := field.RegionShape(localShape, local)
		buf := make([]float64, field.Size(shape))

		if err := r.comm.Recv(buf, rank, tag); err != nil {
			return nil, transportError("gather "+desc.Name, shape, err)
		}

		if err := out.Assign(field.FromData(buf, shape...), global...); err != nil {
			return nil, err
		}
	}

	return out, nil
}
