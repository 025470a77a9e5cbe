// Package comm defines the message-passing layer that the ranks of a
// decomposed run use to talk to each other.
//
// All calls block their caller until the matching peers have made their
// matching call. A Communicator is owned by one rank and must not be shared
// between goroutines.
package comm

import (
	"errors"
	"fmt"
)

// ErrAborted is returned by every call interrupted by, or issued after, a
// collective abort.
var ErrAborted = errors.New("communicator aborted")

// SizeMismatchError reports a received message whose length differs from
// the receive buffer.
type SizeMismatchError struct {
	Source, Tag int
	Want, Got   int
}

func (e *SizeMismatchError) Error() string {
	return fmt.Sprintf(
		"message from rank %d with tag %d has %d values, buffer holds %d",
		e.Source, e.Tag, e.Got, e.Want)
}

// A Communicator connects the ranks of a group.
type Communicator interface {
	// Rank returns the rank of the caller within the group.
	Rank() int

	// Size returns the number of ranks in the group.
	Size() int

	// Send delivers buf to rank dest. Tags must be non-negative.
	Send(buf []float64, dest, tag int) error

	// Recv fills buf with the next message from source carrying tag.
	Recv(buf []float64, source, tag int) error

	// Sendrecv sends sendBuf to dest and receives recvBuf from source as one
	// operation that cannot deadlock against a matching Sendrecv.
	Sendrecv(
		sendBuf []float64, dest, sendTag int,
		recvBuf []float64, source, recvTag int,
	) error

	// Allreduce combines buf across the group with op and returns the
	// result on every rank.
	Allreduce(buf []float64, op Op) ([]float64, error)

	// Bcast returns the buffer of root on every rank. Non-root ranks may
	// pass nil.
	Bcast(buf []float64, root int) ([]float64, error)

	// Barrier returns once every rank of the group has entered it.
	Barrier() error

	// Split partitions the group by color, ordering the new groups by key
	// and then by rank. Ranks passing a negative color get a nil
	// communicator.
	Split(color, key int) (Communicator, error)

	// Free releases a communicator obtained from Split.
	Free() error

	// Abort terminates every rank of the whole run, not only of this
	// group.
	Abort(code int)
}

// Reserved tags of the collective operations. User tags are non-negative.
const (
	ReduceTag  = -1
	BcastTag   = -2
	SplitTag   = -3
	BarrierTag = -4
)

// TagName describes a tag for logs and traces.
func TagName(tag int) string {
	switch tag {
	case ReduceTag:
		return "allreduce"
	case BcastTag:
		return "bcast"
	case SplitTag:
		return "split"
	case BarrierTag:
		return "barrier"
	default:
		return fmt.Sprintf("tag %d", tag)
	}
}

// TagMustBeUserTag panics on the reserved tags.
func TagMustBeUserTag(tag int) {
	if tag < 0 {
		panic(fmt.Sprintf("tag %d is reserved", tag))
	}
}
