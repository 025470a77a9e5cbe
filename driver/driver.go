// Package driver runs a decomposed model over an in-process world of ranks.
// Every rank scatters the initial state from rank 0, checks that gathering
// it gives the state back, and then steps an implicit vertical diffusion,
// keeping halos consistent and reducing diagnostics over the process grid.
package driver

import (
	"fmt"
	"log/slog"
	"os"
	"time"

	"github.com/sarchlab/oceandist/comm/inproc"
	"github.com/sarchlab/oceandist/config"
	"github.com/sarchlab/oceandist/datarecording"
	"github.com/sarchlab/oceandist/field"
	"github.com/sarchlab/oceandist/monitoring"
	"github.com/sarchlab/oceandist/tracing"
)

// ExitCodeNaN is the abort code of a run whose state became invalid.
const ExitCodeNaN = 3

const statsTable = "step_stats"

// NaNError reports a rank whose temperature became NaN.
type NaNError struct {
	Rank, Step int
}

func (e *NaNError) Error() string {
	return fmt.Sprintf("rank %d: temperature is NaN after step %d",
		e.Rank, e.Step)
}

// RoundTripError reports a field that did not survive a scatter followed by
// a gather unchanged.
type RoundTripError struct {
	Field string
}

func (e *RoundTripError) Error() string {
	return fmt.Sprintf("field %q changed in a scatter-gather round trip",
		e.Field)
}

// A Perturbation may modify the local temperature of a rank after each
// step. It runs on the goroutine of the rank.
type Perturbation func(rank, step int, temp *field.Field)

// StepStats are the diagnostics of one step, reduced over all ranks.
type StepStats struct {
	Step         int
	MaxTemp      float64
	MinTemp      float64
	Heat         float64
	MaxZonalHeat float64
}

// A Report summarizes a finished run.
type Report struct {
	Ranks   int
	Stats   []StepStats
	Final   *field.Field
	Traffic tracing.Traffic
	Elapsed time.Duration
}

// Builder can build drivers.
type Builder struct {
	settings     config.Settings
	logger       *slog.Logger
	monitor      *monitoring.Monitor
	recorder     datarecording.DataRecorder
	perturbation Perturbation
}

// MakeBuilder creates a builder with default settings.
func MakeBuilder() Builder {
	return Builder{
		settings: config.Default(),
	}
}

// WithSettings sets the settings of the run.
func (b Builder) WithSettings(s config.Settings) Builder {
	b.settings = s
	return b
}

// WithLogger sets the logger. By default the logger is created from the
// settings and writes to stderr.
func (b Builder) WithLogger(l *slog.Logger) Builder {
	b.logger = l
	return b
}

// WithMonitor registers the world, the traffic, and the ranks of the run
// with a monitor.
func (b Builder) WithMonitor(m *monitoring.Monitor) Builder {
	b.monitor = m
	return b
}

// WithRecorder records the communication and the step diagnostics.
func (b Builder) WithRecorder(r datarecording.DataRecorder) Builder {
	b.recorder = r
	return b
}

// WithPerturbation sets a function that may modify the state after each
// step.
func (b Builder) WithPerturbation(p Perturbation) Builder {
	b.perturbation = p
	return b
}

// Build validates the settings and creates the driver.
func (b Builder) Build() (*Driver, error) {
	if err := b.settings.Validate(); err != nil {
		return nil, err
	}

	logger := b.logger
	if logger == nil {
		logger = b.settings.NewLogger(os.Stderr)
	}

	return &Driver{
		settings:     b.settings,
		logger:       logger,
		monitor:      b.monitor,
		recorder:     b.recorder,
		perturbation: b.perturbation,
	}, nil
}

// Driver runs a model over an in-process world.
type Driver struct {
	settings     config.Settings
	logger       *slog.Logger
	monitor      *monitoring.Monitor
	recorder     datarecording.DataRecorder
	perturbation Perturbation

	progress *monitoring.ProgressBar
	report   *Report
}

// Run runs every rank to completion. If a rank fails, the run is aborted
// and the errors of all ranks are returned.
func (d *Driver) Run() (*Report, error) {
	n := d.settings.NumRanks()

	world := inproc.MakeBuilder().
		WithNumRanks(n).
		Build()

	counter := tracing.NewTrafficCounter()
	world.AcceptHook(counter)

	if d.recorder != nil {
		world.AcceptHook(tracing.NewDBTracer(d.recorder))
		d.recorder.CreateTable(statsTable, StepStats{})
	}

	if d.monitor != nil {
		d.monitor.RegisterWorld(world)
		d.monitor.RegisterTraffic(counter)

		d.progress = d.monitor.CreateProgressBar(
			"steps", uint64(d.settings.Steps*n))
		defer d.monitor.CompleteProgressBar(d.progress)
	}

	d.report = &Report{Ranks: n}

	d.logger.Info("starting run",
		"nx", d.settings.NX, "ny", d.settings.NY, "nz", d.settings.NZ,
		"px", d.settings.PX, "py", d.settings.PY,
		"distributed", d.settings.Distributed,
		"steps", d.settings.Steps)

	start := time.Now()
	err := world.Run(d.runRank)

	if d.recorder != nil {
		d.recorder.Flush()
	}

	if err != nil {
		return nil, err
	}

	d.report.Elapsed = time.Since(start)
	d.report.Traffic = counter.Total()

	d.logger.Info("run finished",
		"elapsed", d.report.Elapsed,
		"msgs", d.report.Traffic.Msgs,
		"bytes", d.report.Traffic.Bytes)

	return d.report, nil
}

func (d *Driver) onAbort(code int) {
	d.logger.Error("run aborted", "code", code)
}
