package comm

import (
	"fmt"
	"sync"
)

// Self is the communicator of a group that holds only the calling rank.
// Messages a rank sends to itself are queued until it receives them.
type Self struct {
	HookableBase

	lock      sync.Mutex
	mailboxes map[int][]*Msg
	aborted   bool
	abortCode int
	freed     bool
}

// NewSelf creates a single-rank communicator.
func NewSelf() *Self {
	return &Self{
		mailboxes: make(map[int][]*Msg),
	}
}

// Rank always returns 0.
func (s *Self) Rank() int {
	return 0
}

// Size always returns 1.
func (s *Self) Size() int {
	return 1
}

// Aborted reports whether Abort was called and with which code.
func (s *Self) Aborted() (bool, int) {
	s.lock.Lock()
	defer s.lock.Unlock()

	return s.aborted, s.abortCode
}

// Send queues buf for a later Recv with the same tag.
func (s *Self) Send(buf []float64, dest, tag int) error {
	TagMustBeUserTag(tag)
	s.mustBeSelf(dest)

	s.lock.Lock()
	defer s.lock.Unlock()

	if err := s.usable(); err != nil {
		return err
	}

	msg := MsgBuilder{}.
		WithTag(tag).
		WithData(buf).
		Build()
	s.mailboxes[tag] = append(s.mailboxes[tag], msg)

	s.InvokeHook(HookCtx{Domain: s, Pos: HookPosMsgSend, Item: msg})

	return nil
}

// Recv takes the oldest queued message with the tag. A single rank has no
// one to wait for, so receiving from an empty mailbox is an error.
func (s *Self) Recv(buf []float64, source, tag int) error {
	TagMustBeUserTag(tag)
	s.mustBeSelf(source)

	s.lock.Lock()
	defer s.lock.Unlock()

	if err := s.usable(); err != nil {
		return err
	}

	queue := s.mailboxes[tag]
	if len(queue) == 0 {
		return fmt.Errorf("no message with tag %d was sent to rank 0", tag)
	}

	msg := queue[0]
	if len(msg.Data) != len(buf) {
		return &SizeMismatchError{
			Source: source, Tag: tag, Want: len(buf), Got: len(msg.Data),
		}
	}

	s.mailboxes[tag] = queue[1:]
	copy(buf, msg.Data)

	s.InvokeHook(HookCtx{Domain: s, Pos: HookPosMsgRecv, Item: msg})

	return nil
}

// Sendrecv sends and then receives.
func (s *Self) Sendrecv(
	sendBuf []float64, dest, sendTag int,
	recvBuf []float64, source, recvTag int,
) error {
	if err := s.Send(sendBuf, dest, sendTag); err != nil {
		return err
	}

	return s.Recv(recvBuf, source, recvTag)
}

// Allreduce returns a copy of buf.
func (s *Self) Allreduce(buf []float64, op Op) ([]float64, error) {
	if err := s.check(); err != nil {
		return nil, err
	}

	out := append([]float64(nil), buf...)
	op.Normalize(out)

	s.invokeCollective("allreduce", op, len(buf))

	return out, nil
}

// Bcast returns a copy of buf.
func (s *Self) Bcast(buf []float64, root int) ([]float64, error) {
	s.mustBeSelf(root)

	if err := s.check(); err != nil {
		return nil, err
	}

	s.invokeCollective("bcast", OpSum, len(buf))

	return append([]float64(nil), buf...), nil
}

// Barrier returns immediately.
func (s *Self) Barrier() error {
	if err := s.check(); err != nil {
		return err
	}

	s.invokeCollective("barrier", OpSum, 0)

	return nil
}

// Split returns a fresh single-rank communicator, or nil for a negative
// color.
func (s *Self) Split(color, _ int) (Communicator, error) {
	if err := s.check(); err != nil {
		return nil, err
	}

	if color < 0 {
		return nil, nil
	}

	return NewSelf(), nil
}

// Free marks the communicator as released.
func (s *Self) Free() error {
	s.lock.Lock()
	defer s.lock.Unlock()

	if s.freed {
		panic("communicator freed twice")
	}

	s.freed = true

	return nil
}

// Abort marks the communicator as aborted. Every later call returns
// ErrAborted.
func (s *Self) Abort(code int) {
	s.lock.Lock()
	first := !s.aborted
	s.aborted = true
	s.abortCode = code
	s.lock.Unlock()

	if first {
		s.InvokeHook(HookCtx{Domain: s, Pos: HookPosAbort, Item: code})
	}
}

func (s *Self) check() error {
	s.lock.Lock()
	defer s.lock.Unlock()

	return s.usable()
}

func (s *Self) usable() error {
	if s.freed {
		panic("communicator used after free")
	}

	if s.aborted {
		return ErrAborted
	}

	return nil
}

func (s *Self) mustBeSelf(rank int) {
	if rank != 0 {
		panic(fmt.Sprintf("rank %d does not exist in a group of size 1", rank))
	}
}

func (s *Self) invokeCollective(name string, op Op, n int) {
	s.InvokeHook(HookCtx{
		Domain: s,
		Pos:    HookPosCollectiveEnd,
		Item: Collective{
			Name: name,
			Rank: 0,
			Size: 1,
			Op:   op,
			Len:  n,
		},
	})
}
