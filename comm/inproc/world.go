// Package inproc provides a communicator whose ranks are goroutines of the
// same process.
//
// Sends are eager: the payload is copied into the mailbox of the receiver and
// the call returns. Receives block until a message with the matching
// communicator, source, and tag arrives. Collectives are built from
// point-to-point messages on the reserved tags and are rooted at rank 0 of
// the communicator.
package inproc

import (
	"errors"
	"fmt"
	"log"
	"sync"

	"github.com/sarchlab/oceandist/comm"
	"github.com/sarchlab/oceandist/idgen"
)

type mailboxKey struct {
	context  uint64
	src, dst int
	tag      int
}

// A World connects a fixed number of ranks.
type World struct {
	comm.HookableBase

	size  int
	ids   idgen.Generator
	comms []*Comm

	lock        sync.Mutex
	cond        *sync.Cond
	mailboxes   map[mailboxKey]*mailbox
	nextContext uint64
	aborted     bool
	abortCode   int
}

// Builder can build worlds.
type Builder struct {
	numRanks int
	ids      idgen.Generator
}

// MakeBuilder creates a builder with default parameters.
func MakeBuilder() Builder {
	return Builder{
		numRanks: 1,
	}
}

// WithNumRanks sets the number of ranks of the world.
func (b Builder) WithNumRanks(n int) Builder {
	b.numRanks = n
	return b
}

// WithIDGenerator sets how message IDs are generated. Sequential IDs are
// used by default.
func (b Builder) WithIDGenerator(g idgen.Generator) Builder {
	b.ids = g
	return b
}

// Build creates the world.
func (b Builder) Build() *World {
	if b.numRanks <= 0 {
		log.Panicf("a world needs at least one rank, got %d", b.numRanks)
	}

	ids := b.ids
	if ids == nil {
		ids = idgen.NewSequential()
	}

	w := &World{
		size:        b.numRanks,
		ids:         ids,
		mailboxes:   make(map[mailboxKey]*mailbox),
		nextContext: 1,
	}
	w.cond = sync.NewCond(&w.lock)

	group := make([]int, b.numRanks)
	for i := range group {
		group[i] = i
	}

	w.comms = make([]*Comm, b.numRanks)
	for i := range w.comms {
		w.comms[i] = &Comm{
			world:   w,
			context: 0,
			group:   group,
			rank:    i,
			isWorld: true,
		}
	}

	return w
}

// NewWorld creates a world of size ranks with default parameters.
func NewWorld(size int) *World {
	return MakeBuilder().WithNumRanks(size).Build()
}

// Size returns the number of ranks.
func (w *World) Size() int {
	return w.size
}

// Comm returns the world communicator of a rank.
func (w *World) Comm(rank int) *Comm {
	if rank < 0 || rank >= w.size {
		log.Panicf("rank %d outside of world of size %d", rank, w.size)
	}

	return w.comms[rank]
}

// Aborted reports whether the world was aborted and with which code.
func (w *World) Aborted() (bool, int) {
	w.lock.Lock()
	defer w.lock.Unlock()

	return w.aborted, w.abortCode
}

// Abort aborts the world from outside of its ranks, as an operator would.
func (w *World) Abort(code int) {
	w.abort(code)
}

// PendingMessages returns the number of messages that were sent but not yet
// received.
func (w *World) PendingMessages() int {
	w.lock.Lock()
	defer w.lock.Unlock()

	n := 0
	for _, mb := range w.mailboxes {
		n += mb.Size()
	}

	return n
}

// Run runs fn once per rank, each in its own goroutine, and waits for all of
// them. A rank that fails or panics aborts the world so that its peers do
// not wait forever. The errors of all ranks are joined.
func (w *World) Run(fn func(c comm.Communicator) error) error {
	var (
		wg   sync.WaitGroup
		errs = make([]error, w.size)
	)

	for rank := 0; rank < w.size; rank++ {
		wg.Add(1)

		go func(rank int) {
			defer wg.Done()

			defer func() {
				if r := recover(); r != nil {
					errs[rank] = fmt.Errorf("rank %d panicked: %v", rank, r)
					w.abort(1)
				}
			}()

			err := fn(w.comms[rank])
			if err != nil {
				errs[rank] = fmt.Errorf("rank %d: %w", rank, err)

				if !errors.Is(err, comm.ErrAborted) {
					w.abort(1)
				}
			}
		}(rank)
	}

	wg.Wait()

	return errors.Join(errs...)
}

func (w *World) allocateContext() uint64 {
	w.lock.Lock()
	defer w.lock.Unlock()

	ctx := w.nextContext
	w.nextContext++

	return ctx
}

func (w *World) deliver(msg *comm.Msg) error {
	w.lock.Lock()

	if w.aborted {
		w.lock.Unlock()
		return comm.ErrAborted
	}

	key := mailboxKey{
		context: msg.Context,
		src:     msg.Src,
		dst:     msg.Dst,
		tag:     msg.Tag,
	}

	mb, found := w.mailboxes[key]
	if !found {
		mb = &mailbox{}
		w.mailboxes[key] = mb
	}

	mb.Push(msg)

	w.cond.Broadcast()
	w.lock.Unlock()

	return nil
}

func (w *World) take(context uint64, src, dst, tag int) (*comm.Msg, error) {
	key := mailboxKey{context: context, src: src, dst: dst, tag: tag}

	w.lock.Lock()
	defer w.lock.Unlock()

	for {
		if w.aborted {
			return nil, comm.ErrAborted
		}

		if mb, found := w.mailboxes[key]; found && mb.Size() > 0 {
			msg := mb.Pop()
			if mb.Size() == 0 {
				delete(w.mailboxes, key)
			}

			return msg, nil
		}

		w.cond.Wait()
	}
}

func (w *World) abort(code int) {
	w.lock.Lock()

	first := !w.aborted
	if first {
		w.aborted = true
		w.abortCode = code
	}

	w.cond.Broadcast()
	w.lock.Unlock()

	if first && w.NumHooks() > 0 {
		w.InvokeHook(comm.HookCtx{
			Domain: w,
			Pos:    comm.HookPosAbort,
			Item:   code,
		})
	}
}
