package driver

import (
	"fmt"
	"math"

	"github.com/sarchlab/oceandist/comm"
	"github.com/sarchlab/oceandist/decomp"
	"github.com/sarchlab/oceandist/dist"
	"github.com/sarchlab/oceandist/field"
	"github.com/sarchlab/oceandist/monitoring"
	"github.com/sarchlab/oceandist/tridiag"
)

// diffusion is kappa*dt/dz^2 of the implicit vertical diffusion.
const diffusion = 0.5

// rankState is the state of one rank. Copies of it are published to the
// monitor.
type rankState struct {
	Rank   int
	Index  decomp.Index
	Step   int
	Fields *fieldSet
}

type rank struct {
	driver *Driver
	rt     dist.Runtime
	state  *rankState
	status *monitoring.RankSnapshot
	ks     []int
}

func (d *Driver) runRank(c comm.Communicator) error {
	dec, err := d.settings.Decomposition(c.Rank())
	if err != nil {
		return err
	}

	rt, err := dist.MakeBuilder().
		WithDecomposition(dec).
		WithCommunicator(c).
		WithDistributed(d.settings.Distributed).
		WithAbortHandler(d.onAbort).
		Build()
	if err != nil {
		return err
	}

	r := &rank{
		driver: d,
		rt:     rt,
		state: &rankState{
			Rank:  rt.Rank(),
			Index: dec.Index(),
		},
	}

	if d.monitor != nil {
		r.status = d.monitor.RegisterRank(r.state.Rank)
	}

	if err := r.setup(); err != nil {
		return err
	}

	r.publish()

	for step := 1; step <= d.settings.Steps; step++ {
		if err := r.step(step); err != nil {
			return err
		}

		r.publish()
	}

	return r.finish()
}

func (r *rank) isRoot() bool {
	return r.rt.Rank() == 0
}

func (r *rank) setup() error {
	dec := r.rt.Decomposition()
	nz := r.driver.settings.NZ

	var initial *fieldSet
	if r.isRoot() {
		initial = globalFields(dec, nz)
	} else {
		initial = localPlaceholders(dec, nz)
	}

	local := &fieldSet{}
	*local = *initial

	err := local.each(func(f **field.Field, desc decomp.FieldDesc) error {
		out, err := r.rt.Scatter(*f, desc)
		if err != nil {
			return fmt.Errorf("scatter %s: %w", desc.Name, err)
		}

		*f = out

		return nil
	})
	if err != nil {
		return err
	}

	if err := r.checkRoundTrip(initial, local); err != nil {
		return err
	}

	r.state.Fields = local
	r.ks = columnBottoms(local.Kbot)

	return r.reportCoast()
}

// checkRoundTrip gathers every scattered field and compares the result with
// the initial state on rank 0. The fields are cloned before the gather since
// the local runtime hands back the field it was given.
func (r *rank) checkRoundTrip(initial, local *fieldSet) error {
	want := initial.entries()

	for i, e := range local.entries() {
		global, err := r.rt.Gather((*e.f).Clone(), e.desc)
		if err != nil {
			return fmt.Errorf("gather %s: %w", e.desc.Name, err)
		}

		if r.isRoot() && !field.Identical(global, *want[i].f) {
			return &RoundTripError{Field: e.desc.Name}
		}
	}

	return nil
}

// publish hands the monitor a copy of the rank state. Only the temperature
// changes after setup, so the other fields are shared.
func (r *rank) publish() {
	if r.status == nil {
		return
	}

	fields := *r.state.Fields
	fields.Temp = fields.Temp.Clone()

	snapshot := *r.state
	snapshot.Fields = &fields

	r.status.Publish(&snapshot)
}

func (r *rank) reportCoast() error {
	anyWet, allWet := false, true
	for _, ks := range r.ks {
		anyWet = anyWet || ks >= 0
		allWet = allWet && ks >= 0
	}

	anyWet, err := dist.GlobalOr(r.rt, anyWet, dist.AllAxes)
	if err != nil {
		return err
	}

	allWet, err = dist.GlobalAnd(r.rt, allWet, dist.AllAxes)
	if err != nil {
		return err
	}

	if r.isRoot() {
		r.driver.logger.Info("domain scattered",
			"ocean", anyWet, "land", !allWet)
	}

	return nil
}

func columnBottoms(kbot *field.Field) []int {
	ks := make([]int, kbot.Len())
	for i, v := range kbot.Data() {
		ks[i] = int(v)
	}

	return ks
}

func (r *rank) step(step int) error {
	r.state.Step = step
	temp := r.state.Fields.Temp

	if err := r.diffuse(temp); err != nil {
		return err
	}

	if p := r.driver.perturbation; p != nil {
		p(r.rt.Rank(), step, temp)
	}

	if r.hasNaN() {
		r.rt.Abort(ExitCodeNaN)
		return &NaNError{Rank: r.rt.Rank(), Step: step}
	}

	if err := r.rt.ExchangeOverlap(temp, tempDesc); err != nil {
		return fmt.Errorf("step %d: %w", step, err)
	}

	if err := r.rt.ExchangeCyclicBoundaries(temp); err != nil {
		return fmt.Errorf("step %d: %w", step, err)
	}

	stats, err := r.stats(step)
	if err != nil {
		return fmt.Errorf("step %d: %w", step, err)
	}

	if r.isRoot() {
		r.record(stats)
	}

	if bar := r.driver.progress; bar != nil {
		bar.IncrementFinished(1)
	}

	return nil
}

// diffuse takes one implicit step of vertical diffusion with no flux
// through the bottom and the surface of every column.
func (r *rank) diffuse(temp *field.Field) error {
	shape := temp.Shape()
	nk := shape[2]

	a := field.New(shape...)
	b := field.New(shape...)
	c := field.New(shape...)
	bEdge := field.New(shape...)

	a.Fill(-diffusion)
	b.Fill(1 + 2*diffusion)
	c.Fill(-diffusion)
	bEdge.Fill(1 + diffusion)

	for col, ks := range r.ks {
		top := col*nk + nk - 1
		b.Data()[top] = 1 + diffusion

		if ks == nk-1 {
			bEdge.Data()[top] = 1
		}
	}

	res, err := tridiag.Solve(tridiag.Problem{
		KS:    r.ks,
		A:     a,
		B:     b,
		C:     c,
		D:     temp,
		BEdge: bEdge,
		DEdge: temp,
	})
	if err != nil {
		return err
	}

	return res.Merge(temp)
}

// interior calls fn for every water cell of the rank's own chunk.
func (r *rank) interior(fn func(i, j, k int, v float64)) {
	temp := r.state.Fields.Temp
	shape := temp.Shape()
	nj, nk := shape[1], shape[2]

	for i := decomp.Halo; i < shape[0]-decomp.Halo; i++ {
		for j := decomp.Halo; j < nj-decomp.Halo; j++ {
			ks := r.ks[i*nj+j]
			if ks < 0 {
				continue
			}

			for k := ks; k < nk; k++ {
				fn(i, j, k, temp.At(i, j, k))
			}
		}
	}
}

func (r *rank) hasNaN() bool {
	found := false
	r.interior(func(_, _, _ int, v float64) {
		found = found || math.IsNaN(v)
	})

	return found
}

func (r *rank) stats(step int) (StepStats, error) {
	fields := r.state.Fields
	shape := fields.Temp.Shape()
	nyl := shape[1] - 2*decomp.Halo

	localMax, localMin, heat := math.Inf(-1), math.Inf(1), 0.0
	zonal := make([]float64, nyl)

	r.interior(func(i, j, _ int, v float64) {
		localMax = math.Max(localMax, v)
		localMin = math.Min(localMin, v)

		h := v * fields.DXT.At(i) * fields.DYT.At(j)
		heat += h
		zonal[j-decomp.Halo] += h
	})

	var (
		stats = StepStats{Step: step}
		err   error
	)

	if stats.MaxTemp, err = dist.GlobalMax(r.rt, localMax, dist.AllAxes); err != nil {
		return stats, err
	}

	if stats.MinTemp, err = dist.GlobalMin(r.rt, localMin, dist.AllAxes); err != nil {
		return stats, err
	}

	if stats.Heat, err = dist.GlobalSum(r.rt, heat, dist.AllAxes); err != nil {
		return stats, err
	}

	rows, err := r.rt.Reduce(zonal, comm.OpSum, dist.AxisX)
	if err != nil {
		return stats, err
	}

	rowMax := math.Inf(-1)
	for _, v := range rows {
		rowMax = math.Max(rowMax, v)
	}

	stats.MaxZonalHeat, err = dist.GlobalMax(r.rt, rowMax, dist.AxisY)

	return stats, err
}

func (r *rank) record(stats StepStats) {
	d := r.driver
	d.report.Stats = append(d.report.Stats, stats)

	if d.recorder != nil {
		d.recorder.InsertData(statsTable, stats)
	}

	d.logger.Debug("step finished",
		"step", stats.Step,
		"max_temp", stats.MaxTemp,
		"min_temp", stats.MinTemp,
		"heat", stats.Heat)
}

func (r *rank) finish() error {
	final, err := r.rt.Gather(r.state.Fields.Temp, tempDesc)
	if err != nil {
		return fmt.Errorf("gather %s: %w", tempDesc.Name, err)
	}

	if r.isRoot() {
		r.driver.report.Final = final.Clone()
	}

	return nil
}
