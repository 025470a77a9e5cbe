package inproc

import (
	"fmt"
	"log"
	"sort"

	"github.com/sarchlab/oceandist/comm"
)

// Comm is the communicator of one rank in a group of a World.
type Comm struct {
	world   *World
	context uint64
	group   []int
	rank    int
	isWorld bool
	freed   bool
}

// Rank returns the rank of the caller within the group.
func (c *Comm) Rank() int {
	return c.rank
}

// Size returns the number of ranks in the group.
func (c *Comm) Size() int {
	return len(c.group)
}

// WorldRank returns the rank of the caller in the world.
func (c *Comm) WorldRank() int {
	return c.group[c.rank]
}

// Context returns the id that separates the traffic of this group from the
// traffic of other groups.
func (c *Comm) Context() uint64 {
	return c.context
}

// Send delivers a copy of buf to dest.
func (c *Comm) Send(buf []float64, dest, tag int) error {
	comm.TagMustBeUserTag(tag)
	return c.send(buf, dest, tag)
}

// Recv fills buf with the next message from source carrying tag.
func (c *Comm) Recv(buf []float64, source, tag int) error {
	comm.TagMustBeUserTag(tag)
	return c.recvInto(buf, source, tag)
}

// Sendrecv sends sendBuf and then waits for recvBuf. Since sends never
// block, matching calls on two ranks cannot deadlock.
func (c *Comm) Sendrecv(
	sendBuf []float64, dest, sendTag int,
	recvBuf []float64, source, recvTag int,
) error {
	comm.TagMustBeUserTag(sendTag)
	comm.TagMustBeUserTag(recvTag)

	if err := c.send(sendBuf, dest, sendTag); err != nil {
		return err
	}

	return c.recvInto(recvBuf, source, recvTag)
}

// Allreduce combines the buffers of all ranks on rank 0 in rank order and
// sends the result back, so that every rank receives identical bits.
func (c *Comm) Allreduce(buf []float64, op comm.Op) ([]float64, error) {
	if err := c.enterCollective(); err != nil {
		return nil, err
	}

	c.collectiveStart("allreduce", op, len(buf))

	out, err := c.allreduce(buf, op)
	if err != nil {
		return nil, err
	}

	c.collectiveEnd("allreduce", op, len(buf))

	return out, nil
}

func (c *Comm) allreduce(buf []float64, op comm.Op) ([]float64, error) {
	if c.rank != 0 {
		if err := c.send(buf, 0, comm.ReduceTag); err != nil {
			return nil, err
		}

		out := make([]float64, len(buf))
		if err := c.recvInto(out, 0, comm.ReduceTag); err != nil {
			return nil, err
		}

		return out, nil
	}

	acc := append([]float64(nil), buf...)
	op.Normalize(acc)

	part := make([]float64, len(buf))
	for src := 1; src < c.Size(); src++ {
		if err := c.recvInto(part, src, comm.ReduceTag); err != nil {
			return nil, err
		}

		op.Combine(acc, part)
	}

	for dst := 1; dst < c.Size(); dst++ {
		if err := c.send(acc, dst, comm.ReduceTag); err != nil {
			return nil, err
		}
	}

	return acc, nil
}

// Bcast returns the buffer of root on every rank.
func (c *Comm) Bcast(buf []float64, root int) ([]float64, error) {
	c.mustBeMember(root)

	if err := c.enterCollective(); err != nil {
		return nil, err
	}

	c.collectiveStart("bcast", comm.OpSum, len(buf))

	if c.rank == root {
		for dst := 0; dst < c.Size(); dst++ {
			if dst == root {
				continue
			}

			if err := c.send(buf, dst, comm.BcastTag); err != nil {
				return nil, err
			}
		}

		c.collectiveEnd("bcast", comm.OpSum, len(buf))

		return append([]float64(nil), buf...), nil
	}

	msg, err := c.recv(root, comm.BcastTag)
	if err != nil {
		return nil, err
	}

	c.collectiveEnd("bcast", comm.OpSum, len(msg.Data))

	return msg.Data, nil
}

// Barrier returns once every rank of the group has entered it.
func (c *Comm) Barrier() error {
	if err := c.enterCollective(); err != nil {
		return err
	}

	c.collectiveStart("barrier", comm.OpSum, 0)

	if c.rank != 0 {
		if err := c.send(nil, 0, comm.BarrierTag); err != nil {
			return err
		}

		if _, err := c.recv(0, comm.BarrierTag); err != nil {
			return err
		}

		c.collectiveEnd("barrier", comm.OpSum, 0)

		return nil
	}

	for src := 1; src < c.Size(); src++ {
		if _, err := c.recv(src, comm.BarrierTag); err != nil {
			return err
		}
	}

	for dst := 1; dst < c.Size(); dst++ {
		if err := c.send(nil, dst, comm.BarrierTag); err != nil {
			return err
		}
	}

	c.collectiveEnd("barrier", comm.OpSum, 0)

	return nil
}

type splitEntry struct {
	color, key, rank int
}

// Split partitions the group. Rank 0 collects every (color, key) pair,
// orders each color by key and then by rank, and answers every rank with the
// context id and the members of its new group.
func (c *Comm) Split(color, key int) (comm.Communicator, error) {
	if err := c.enterCollective(); err != nil {
		return nil, err
	}

	c.collectiveStart("split", comm.OpSum, 2)

	var reply []float64

	if c.rank != 0 {
		err := c.send([]float64{float64(color), float64(key)}, 0, comm.SplitTag)
		if err != nil {
			return nil, err
		}

		msg, err := c.recv(0, comm.SplitTag)
		if err != nil {
			return nil, err
		}

		reply = msg.Data
	} else {
		replies, err := c.collectSplit(color, key)
		if err != nil {
			return nil, err
		}

		reply = replies[0]
	}

	c.collectiveEnd("split", comm.OpSum, 2)

	if len(reply) == 0 {
		return nil, nil
	}

	members := make([]int, len(reply)-2)
	for i := range members {
		members[i] = int(reply[i+2])
	}

	return &Comm{
		world:   c.world,
		context: uint64(reply[0]),
		group:   members,
		rank:    int(reply[1]),
	}, nil
}

func (c *Comm) collectSplit(color, key int) ([][]float64, error) {
	entries := []splitEntry{{color: color, key: key, rank: 0}}

	pair := make([]float64, 2)
	for src := 1; src < c.Size(); src++ {
		if err := c.recvInto(pair, src, comm.SplitTag); err != nil {
			return nil, err
		}

		entries = append(entries, splitEntry{
			color: int(pair[0]),
			key:   int(pair[1]),
			rank:  src,
		})
	}

	byColor := make(map[int][]splitEntry)
	colors := []int{}
	for _, e := range entries {
		if e.color < 0 {
			continue
		}

		if _, found := byColor[e.color]; !found {
			colors = append(colors, e.color)
		}

		byColor[e.color] = append(byColor[e.color], e)
	}

	sort.Ints(colors)

	replies := make([][]float64, c.Size())
	for _, color := range colors {
		group := byColor[color]
		sort.SliceStable(group, func(i, j int) bool {
			if group[i].key != group[j].key {
				return group[i].key < group[j].key
			}

			return group[i].rank < group[j].rank
		})

		ctx := c.world.allocateContext()
		for newRank, e := range group {
			reply := []float64{float64(ctx), float64(newRank)}
			for _, m := range group {
				reply = append(reply, float64(c.group[m.rank]))
			}

			replies[e.rank] = reply
		}
	}

	for dst := 1; dst < c.Size(); dst++ {
		if err := c.send(replies[dst], dst, comm.SplitTag); err != nil {
			return nil, err
		}
	}

	return replies, nil
}

// Free releases a communicator obtained from Split.
func (c *Comm) Free() error {
	if c.isWorld {
		return fmt.Errorf("cannot free the world communicator")
	}

	c.mustBeUsable()
	c.freed = true

	return nil
}

// Abort aborts the whole world. Every blocked or later call on any rank
// returns comm.ErrAborted.
func (c *Comm) Abort(code int) {
	c.world.abort(code)
}

func (c *Comm) send(buf []float64, dest, tag int) error {
	c.mustBeUsable()
	c.mustBeMember(dest)

	msg := comm.MsgBuilder{}.
		WithID(c.world.ids.Generate()).
		WithContext(c.context).
		WithSrc(c.group[c.rank]).
		WithDst(c.group[dest]).
		WithTag(tag).
		WithData(buf).
		Build()

	if err := c.world.deliver(msg); err != nil {
		return err
	}

	if c.world.NumHooks() > 0 {
		c.world.InvokeHook(comm.HookCtx{
			Domain: c,
			Pos:    comm.HookPosMsgSend,
			Item:   msg,
		})
	}

	return nil
}

func (c *Comm) recv(source, tag int) (*comm.Msg, error) {
	c.mustBeUsable()
	c.mustBeMember(source)

	msg, err := c.world.take(
		c.context, c.group[source], c.group[c.rank], tag)
	if err != nil {
		return nil, err
	}

	if c.world.NumHooks() > 0 {
		c.world.InvokeHook(comm.HookCtx{
			Domain: c,
			Pos:    comm.HookPosMsgRecv,
			Item:   msg,
		})
	}

	return msg, nil
}

func (c *Comm) recvInto(buf []float64, source, tag int) error {
	msg, err := c.recv(source, tag)
	if err != nil {
		return err
	}

	if len(msg.Data) != len(buf) {
		return &comm.SizeMismatchError{
			Source: source,
			Tag:    tag,
			Want:   len(buf),
			Got:    len(msg.Data),
		}
	}

	copy(buf, msg.Data)

	return nil
}

// enterCollective checks the communicator before a collective. A group of
// one never sends, so the checks of send and recv do not cover it.
func (c *Comm) enterCollective() error {
	c.mustBeUsable()

	if aborted, _ := c.world.Aborted(); aborted {
		return comm.ErrAborted
	}

	return nil
}

func (c *Comm) mustBeUsable() {
	if c.freed {
		log.Panic("communicator used after free")
	}
}

func (c *Comm) mustBeMember(rank int) {
	if rank < 0 || rank >= len(c.group) {
		log.Panicf("rank %d outside of group of size %d", rank, len(c.group))
	}
}

func (c *Comm) collectiveStart(name string, op comm.Op, n int) {
	c.invokeCollective(comm.HookPosCollectiveStart, name, op, n)
}

func (c *Comm) collectiveEnd(name string, op comm.Op, n int) {
	c.invokeCollective(comm.HookPosCollectiveEnd, name, op, n)
}

func (c *Comm) invokeCollective(
	pos *comm.HookPos,
	name string,
	op comm.Op,
	n int,
) {
	if c.world.NumHooks() == 0 {
		return
	}

	c.world.InvokeHook(comm.HookCtx{
		Domain: c,
		Pos:    pos,
		Item: comm.Collective{
			Name:    name,
			Context: c.context,
			Rank:    c.rank,
			Size:    c.Size(),
			Op:      op,
			Len:     n,
		},
	})
}
