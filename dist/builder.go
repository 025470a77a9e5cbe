package dist

import (
	"github.com/tebeka/atexit"

	"github.com/sarchlab/oceandist/comm"
	"github.com/sarchlab/oceandist/decomp"
)

// An AbortHandler runs on the aborting rank after the communicator has been
// aborted.
type AbortHandler func(code int)

// ExitOnAbort runs the registered exit handlers and exits the process.
func ExitOnAbort(code int) {
	atexit.Exit(code)
}

// Builder can build runtimes. The variant is selected once, when the runtime
// is built.
type Builder struct {
	decomposition *decomp.Decomposition
	communicator  comm.Communicator
	distributed   bool
	abortHandler  AbortHandler
}

// MakeBuilder creates a builder with default parameters.
func MakeBuilder() Builder {
	return Builder{
		abortHandler: ExitOnAbort,
	}
}

// WithDecomposition sets the geometry of the run.
func (b Builder) WithDecomposition(d *decomp.Decomposition) Builder {
	b.decomposition = d
	return b
}

// WithCommunicator sets the communicator that connects the ranks. A
// distributed runtime without a communicator uses a single-rank one.
func (b Builder) WithCommunicator(c comm.Communicator) Builder {
	b.communicator = c
	return b
}

// WithDistributed selects the message-passing variant.
func (b Builder) WithDistributed(distributed bool) Builder {
	b.distributed = distributed
	return b
}

// WithAbortHandler sets what happens on the aborting rank after the
// communicator has been aborted. A nil handler does nothing.
func (b Builder) WithAbortHandler(h AbortHandler) Builder {
	b.abortHandler = h
	return b
}

// Build creates the runtime. It fails with a *decomp.ConfigurationError if
// the decomposition does not fit the communicator.
func (b Builder) Build() (Runtime, error) {
	if b.decomposition == nil {
		panic("decomposition is not set")
	}

	d := b.decomposition

	if !b.distributed {
		if d.NumRanks() != 1 {
			return nil, &decomp.ConfigurationError{
				Reason: "a single-process run cannot use more than one process",
			}
		}

		return &localRuntime{
			decomposition: d,
			abortHandler:  b.abortHandler,
		}, nil
	}

	c := b.communicator
	if c == nil {
		c = comm.NewSelf()
	}

	if c.Size() != d.NumRanks() {
		return nil, &decomp.ConfigurationError{
			Reason: "number of processes does not match size of communicator",
		}
	}

	if c.Rank() != d.Rank() {
		return nil, &decomp.ConfigurationError{
			Reason: "decomposition is seen from a different rank than the communicator",
		}
	}

	return &mpRuntime{
		decomposition: d,
		comm:          c,
		abortHandler:  b.abortHandler,
	}, nil
}
