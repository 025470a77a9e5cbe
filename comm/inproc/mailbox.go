package inproc

import "github.com/sarchlab/oceandist/comm"

// A mailbox is an unbounded fifo queue of messages.
type mailbox struct {
	elements []*comm.Msg
}

func (b *mailbox) Push(msg *comm.Msg) {
	b.elements = append(b.elements, msg)
}

func (b *mailbox) Pop() *comm.Msg {
	if len(b.elements) == 0 {
		return nil
	}

	e := b.elements[0]
	b.elements[0] = nil
	b.elements = b.elements[1:]

	return e
}

func (b *mailbox) Size() int {
	return len(b.elements)
}
