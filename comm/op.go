package comm

import (
	"fmt"
	"math"

	"gonum.org/v1/gonum/floats"
)

// Op is an element-wise reduction operator.
type Op int

// Reduction operators. The logical operators treat non-zero values as true
// and produce 0 or 1.
const (
	OpAnd Op = iota
	OpOr
	OpMax
	OpMin
	OpSum
)

func (o Op) String() string {
	switch o {
	case OpAnd:
		return "AND"
	case OpOr:
		return "OR"
	case OpMax:
		return "MAX"
	case OpMin:
		return "MIN"
	case OpSum:
		return "SUM"
	default:
		return fmt.Sprintf("Op(%d)", int(o))
	}
}

// Combine folds src into dst element by element. Both buffers must have the
// same length.
func (o Op) Combine(dst, src []float64) {
	if len(dst) != len(src) {
		panic(fmt.Sprintf("cannot combine buffers of length %d and %d",
			len(dst), len(src)))
	}

	switch o {
	case OpSum:
		floats.Add(dst, src)
	case OpMax:
		for i, v := range src {
			dst[i] = math.Max(dst[i], v)
		}
	case OpMin:
		for i, v := range src {
			dst[i] = math.Min(dst[i], v)
		}
	case OpAnd:
		for i, v := range src {
			dst[i] = boolValue(dst[i] != 0 && v != 0)
		}
	case OpOr:
		for i, v := range src {
			dst[i] = boolValue(dst[i] != 0 || v != 0)
		}
	default:
		panic(fmt.Sprintf("unknown reduction %d", int(o)))
	}
}

// Normalize maps the operand of a logical reduction to 0 or 1 in place, so
// that a reduction over a single rank returns the same values as one over
// many.
func (o Op) Normalize(buf []float64) {
	if o != OpAnd && o != OpOr {
		return
	}

	for i, v := range buf {
		buf[i] = boolValue(v != 0)
	}
}

func boolValue(b bool) float64 {
	if b {
		return 1
	}

	return 0
}
