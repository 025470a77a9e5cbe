// Package tracing observes the communication of a run through the hooks of a
// transport.
package tracing

import (
	"sort"
	"sync"

	"github.com/sarchlab/oceandist/comm"
)

// Traffic sums up messages.
type Traffic struct {
	Msgs  uint64 `json:"msgs"`
	Bytes uint64 `json:"bytes"`
}

func (t *Traffic) add(msg *comm.Msg) {
	t.addBytes(msg.TrafficBytes())
}

func (t *Traffic) addBytes(n int) {
	t.Msgs++
	t.Bytes += uint64(n)
}

// RankTraffic is the traffic of one rank, by world rank.
type RankTraffic struct {
	Rank        int            `json:"rank"`
	Sent        Traffic        `json:"sent"`
	Received    Traffic        `json:"received"`
	Collectives map[string]int `json:"collectives"`
}

// A TrafficCounter is a hook that counts the traffic of every rank.
type TrafficCounter struct {
	lock  sync.Mutex
	ranks map[int]*RankTraffic
}

// NewTrafficCounter creates a counter. It needs to be attached to a
// transport with AcceptHook.
func NewTrafficCounter() *TrafficCounter {
	return &TrafficCounter{
		ranks: make(map[int]*RankTraffic),
	}
}

// Func counts the message or collective carried by the hook context.
func (c *TrafficCounter) Func(ctx comm.HookCtx) {
	c.lock.Lock()
	defer c.lock.Unlock()

	switch ctx.Pos {
	case comm.HookPosMsgSend:
		msg := ctx.Item.(*comm.Msg)
		c.rank(msg.Src).Sent.add(msg)
	case comm.HookPosMsgRecv:
		msg := ctx.Item.(*comm.Msg)
		c.rank(msg.Dst).Received.add(msg)
	case comm.HookPosCollectiveEnd:
		coll := ctx.Item.(comm.Collective)
		rank := worldRank(ctx.Domain, coll.Rank)
		c.rank(rank).Collectives[coll.Name]++
	}
}

func (c *TrafficCounter) rank(rank int) *RankTraffic {
	t, found := c.ranks[rank]
	if !found {
		t = &RankTraffic{
			Rank:        rank,
			Collectives: make(map[string]int),
		}
		c.ranks[rank] = t
	}

	return t
}

// Rank returns a snapshot of the traffic of a rank and whether the rank was
// seen at all.
func (c *TrafficCounter) Rank(rank int) (RankTraffic, bool) {
	c.lock.Lock()
	defer c.lock.Unlock()

	t, found := c.ranks[rank]
	if !found {
		return RankTraffic{Rank: rank}, false
	}

	return t.snapshot(), true
}

// Ranks returns a snapshot of every rank seen, ordered by rank.
func (c *TrafficCounter) Ranks() []RankTraffic {
	c.lock.Lock()
	defer c.lock.Unlock()

	out := make([]RankTraffic, 0, len(c.ranks))
	for _, t := range c.ranks {
		out = append(out, t.snapshot())
	}

	sort.Slice(out, func(i, j int) bool { return out[i].Rank < out[j].Rank })

	return out
}

// Total sums the sent traffic of all ranks.
func (c *TrafficCounter) Total() Traffic {
	c.lock.Lock()
	defer c.lock.Unlock()

	var total Traffic
	for _, t := range c.ranks {
		total.Msgs += t.Sent.Msgs
		total.Bytes += t.Sent.Bytes
	}

	return total
}

func (t *RankTraffic) snapshot() RankTraffic {
	out := *t

	out.Collectives = make(map[string]int, len(t.Collectives))
	for k, v := range t.Collectives {
		out.Collectives[k] = v
	}

	return out
}

type worldRanker interface {
	WorldRank() int
}

// worldRank translates the rank of a collective call to the rank in the whole
// run where the transport can tell.
func worldRank(domain any, rank int) int {
	if r, ok := domain.(worldRanker); ok {
		return r.WorldRank()
	}

	return rank
}
