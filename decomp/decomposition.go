// Package decomp describes how a horizontal nx-by-ny grid is split across a
// px-by-py grid of processes.
//
// Every rank owns an nx/px by ny/py chunk of the domain. Distributed fields
// carry a halo of Halo cells on each side of every scattered axis, and fields
// assembled on rank 0 keep the outer halo of the whole domain, so their
// scattered extents are nx+2*Halo and ny+2*Halo.
package decomp

import (
	"fmt"

	"github.com/sarchlab/oceandist/field"
)

// Halo is the width of the overlap region on each side of a chunk.
const Halo = 2

// NoRank marks a neighbor that lies outside the process grid.
const NoRank = -1

// ConfigurationError reports a process grid that cannot decompose the domain.
type ConfigurationError struct {
	Reason string
}

func (e *ConfigurationError) Error() string {
	return "invalid decomposition: " + e.Reason
}

func configErrorf(format string, args ...any) *ConfigurationError {
	return &ConfigurationError{Reason: fmt.Sprintf(format, args...)}
}

// An Index is the position of a rank in the process grid.
type Index struct {
	X, Y int
}

// Decomposition is the immutable geometry of a decomposed run, seen from one
// rank.
type Decomposition struct {
	NX, NY int
	PX, PY int
	rank   int
}

// New validates the process grid against the communicator size and the
// domain size, and returns the decomposition seen from rank.
func New(nx, ny, px, py, commSize, rank int) (*Decomposition, error) {
	if nx <= 0 || ny <= 0 {
		return nil, configErrorf("domain size %dx%d must be positive", nx, ny)
	}

	if px <= 0 || py <= 0 {
		return nil, configErrorf(
			"process counts %dx%d must be positive", px, py)
	}

	if px*py != commSize {
		return nil, configErrorf(
			"number of processes (%d) does not match size of communicator (%d)",
			px*py, commSize)
	}

	if nx%px != 0 {
		return nil, configErrorf(
			"%d processes do not divide domain evenly in x-direction (%d)",
			px, nx)
	}

	if ny%py != 0 {
		return nil, configErrorf(
			"%d processes do not divide domain evenly in y-direction (%d)",
			py, ny)
	}

	if rank < 0 || rank >= commSize {
		return nil, configErrorf("rank %d outside of [0, %d)", rank, commSize)
	}

	return &Decomposition{NX: nx, NY: ny, PX: px, PY: py, rank: rank}, nil
}

// Rank returns the rank this decomposition is seen from.
func (d *Decomposition) Rank() int {
	return d.rank
}

// NumRanks returns px*py.
func (d *Decomposition) NumRanks() int {
	return d.PX * d.PY
}

// ChunkSize returns the interior extent of every chunk.
func (d *Decomposition) ChunkSize() (int, int) {
	return d.NX / d.PX, d.NY / d.PY
}

// RankToIndex maps a rank to its process grid position.
func (d *Decomposition) RankToIndex(rank int) Index {
	return Index{X: rank % d.PX, Y: rank / d.PX}
}

// IndexToRank maps a process grid position to its rank.
func (d *Decomposition) IndexToRank(idx Index) int {
	return idx.X + idx.Y*d.PX
}

// Index returns the process grid position of this rank.
func (d *Decomposition) Index() Index {
	return d.RankToIndex(d.rank)
}

func (d *Decomposition) contains(idx Index) bool {
	return idx.X >= 0 && idx.X < d.PX && idx.Y >= 0 && idx.Y < d.PY
}

// Neighbors returns the ranks adjacent to this rank, indexed by Direction.
// Neighbors outside the grid are NoRank; the grid is not periodic.
func (d *Decomposition) Neighbors() [NumDirections]int {
	return d.NeighborsOf(d.Index())
}

// NeighborsOf returns the ranks adjacent to the given position.
func (d *Decomposition) NeighborsOf(idx Index) [NumDirections]int {
	var out [NumDirections]int

	for dir := Direction(0); dir < NumDirections; dir++ {
		dx, dy := dir.Offset()
		n := Index{X: idx.X + dx, Y: idx.Y + dy}

		out[dir] = NoRank
		if d.contains(n) {
			out[dir] = d.IndexToRank(n)
		}
	}

	return out
}

// ChunkSlices returns where the chunk of the rank at idx sits in the global
// array and in its local array. With includeOverlap, the chunk covers the
// halo on the outer boundary of the domain, i.e. the halo that no neighbor
// shares. Unscattered axes select the whole axis.
func (d *Decomposition) ChunkSlices(
	grid []Dim,
	idx Index,
	includeOverlap bool,
) (global, local []field.Range) {
	nxl, nyl := d.ChunkSize()

	xl := chunkRange(idx.X, d.PX, nxl, includeOverlap)
	yl := chunkRange(idx.Y, d.PY, nyl, includeOverlap)

	global = make([]field.Range, len(grid))
	local = make([]field.Range, len(grid))

	for i, dim := range grid {
		switch dim.Class() {
		case ClassX:
			local[i] = xl
			global[i] = field.Span(xl.Lo+idx.X*nxl, xl.Hi+idx.X*nxl)
		case ClassY:
			local[i] = yl
			global[i] = field.Span(yl.Lo+idx.Y*nyl, yl.Hi+idx.Y*nyl)
		default:
			local[i] = field.All()
			global[i] = field.All()
		}
	}

	return global, local
}

func chunkRange(p, np, n int, includeOverlap bool) field.Range {
	if !includeOverlap {
		return field.Span(0, n)
	}

	lo := Halo
	if p == 0 {
		lo = 0
	}

	hi := n + Halo
	if p == np-1 {
		hi = n + 2*Halo
	}

	return field.Span(lo, hi)
}

// LocalShape returns the shape of the local array of a field whose leading
// axes are named by grid. Scattered axes take the chunk size plus halo; the
// other axes keep their extent in shape.
func (d *Decomposition) LocalShape(shape []int, grid []Dim) []int {
	nxl, nyl := d.ChunkSize()
	return d.deriveShape(shape, grid, nxl, nyl)
}

// GlobalShape returns the shape of the assembled global array, including the
// outer halo of the domain.
func (d *Decomposition) GlobalShape(shape []int, grid []Dim) []int {
	return d.deriveShape(shape, grid, d.NX, d.NY)
}

func (d *Decomposition) deriveShape(shape []int, grid []Dim, nx, ny int) []int {
	out := append([]int(nil), shape...)
	for i, dim := range grid {
		if i >= len(out) {
			break
		}

		switch dim.Class() {
		case ClassX:
			out[i] = nx + 2*Halo
		case ClassY:
			out[i] = ny + 2*Halo
		}
	}

	return out
}
