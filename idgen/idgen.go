// Package idgen generates message IDs for communication traffic.
package idgen

import (
	"strconv"
	"sync/atomic"

	"github.com/rs/xid"
)

// Generator produces unique identifiers.
type Generator interface {
	Generate() string
}

// NewSequential returns a generator whose IDs count up from "1". Runs that
// use it produce the same IDs every time as long as the messages are issued
// in the same order.
func NewSequential() Generator {
	return &sequentialGenerator{}
}

// NewParallel returns a generator that does not coordinate between callers.
// The IDs are globally unique but not deterministic.
func NewParallel() Generator {
	return parallelGenerator{}
}

type sequentialGenerator struct {
	next uint64
}

func (g *sequentialGenerator) Generate() string {
	return strconv.FormatUint(atomic.AddUint64(&g.next, 1), 10)
}

type parallelGenerator struct{}

func (parallelGenerator) Generate() string {
	return xid.New().String()
}
