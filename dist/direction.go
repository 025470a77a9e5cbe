package dist

import (
	"github.com/sarchlab/oceandist/decomp"
	"github.com/sarchlab/oceandist/field"
)

// A strip selects the cells of one axis that a halo transfer reads or
// writes. n is the local extent of the axis, including both halos.
type strip int

const (
	// stripFull is the whole axis, halos included.
	stripFull strip = iota
	// stripLowHalo is [0, 2).
	stripLowHalo
	// stripLowInterior is [2, 4).
	stripLowInterior
	// stripHighInterior is [n-4, n-2).
	stripHighInterior
	// stripHighHalo is [n-2, n).
	stripHighHalo
)

func (s strip) rangeFor(n int) field.Range {
	h := decomp.Halo

	switch s {
	case stripLowHalo:
		return field.Span(0, h)
	case stripLowInterior:
		return field.Span(h, 2*h)
	case stripHighInterior:
		return field.Span(n-2*h, n-h)
	case stripHighHalo:
		return field.Span(n-h, n)
	default:
		return field.Span(0, n)
	}
}

// A transfer is what one rank sends toward a neighbor and where it stores
// what comes back, given per horizontal axis.
type transfer struct {
	send [2]strip
	recv [2]strip
}

// transfersXY is the exchange table of fields scattered along x and y.
//
// Sends read interior strips only and receives write halo strips only, so no
// transfer reads what another one writes along the exchange axis. The direct
// directions span the full transverse axis, halos included, which carries the
// outer-boundary halo of a neighbor into the corners that have no diagonal
// neighbor. The diagonal transfers come last and overwrite every corner that
// does have one.
var transfersXY = [decomp.NumDirections]transfer{
	decomp.West: {
		send: [2]strip{stripLowInterior, stripFull},
		recv: [2]strip{stripLowHalo, stripFull},
	},
	decomp.South: {
		send: [2]strip{stripFull, stripLowInterior},
		recv: [2]strip{stripFull, stripLowHalo},
	},
	decomp.East: {
		send: [2]strip{stripHighInterior, stripFull},
		recv: [2]strip{stripHighHalo, stripFull},
	},
	decomp.North: {
		send: [2]strip{stripFull, stripHighInterior},
		recv: [2]strip{stripFull, stripHighHalo},
	},
	decomp.SouthWest: {
		send: [2]strip{stripLowInterior, stripLowInterior},
		recv: [2]strip{stripLowHalo, stripLowHalo},
	},
	decomp.SouthEast: {
		send: [2]strip{stripHighInterior, stripLowInterior},
		recv: [2]strip{stripHighHalo, stripLowHalo},
	},
	decomp.NorthEast: {
		send: [2]strip{stripHighInterior, stripHighInterior},
		recv: [2]strip{stripHighHalo, stripHighHalo},
	},
	decomp.NorthWest: {
		send: [2]strip{stripLowInterior, stripHighInterior},
		recv: [2]strip{stripLowHalo, stripHighHalo},
	},
}

var (
	directionsXY = []decomp.Direction{
		decomp.West, decomp.South, decomp.East, decomp.North,
		decomp.SouthWest, decomp.SouthEast, decomp.NorthEast, decomp.NorthWest,
	}
	directionsX = []decomp.Direction{decomp.West, decomp.East}
	directionsY = []decomp.Direction{decomp.South, decomp.North}
)

// exchangeDirections returns the directions a field takes part in, in the
// order they must be exchanged.
func exchangeDirections(s decomp.Scattering) []decomp.Direction {
	switch s {
	case decomp.ScatteredXY:
		return directionsXY
	case decomp.ScatteredX:
		return directionsX
	case decomp.ScatteredY:
		return directionsY
	default:
		return nil
	}
}

// transferRegions returns the send and receive regions of a field with the
// given scattering and shape for direction dir. Fields scattered along one
// axis keep that axis first and only use the strip along it.
func transferRegions(
	s decomp.Scattering,
	shape []int,
	dir decomp.Direction,
) (send, recv []field.Range) {
	t := transfersXY[dir]

	switch s {
	case decomp.ScatteredXY:
		send = []field.Range{t.send[0].rangeFor(shape[0]), t.send[1].rangeFor(shape[1])}
		recv = []field.Range{t.recv[0].rangeFor(shape[0]), t.recv[1].rangeFor(shape[1])}
	case decomp.ScatteredX:
		send = []field.Range{t.send[0].rangeFor(shape[0])}
		recv = []field.Range{t.recv[0].rangeFor(shape[0])}
	case decomp.ScatteredY:
		send = []field.Range{t.send[1].rangeFor(shape[0])}
		recv = []field.Range{t.recv[1].rangeFor(shape[0])}
	default:
		panic("field is not scattered")
	}

	return send, recv
}
