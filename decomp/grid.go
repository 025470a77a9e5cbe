package decomp

import (
	"fmt"
	"strings"
)

// A Dim names one axis of a field. The leading axes of a field determine how
// it is distributed across the process grid.
type Dim string

// Horizontal and vertical axis names used by the model grids.
const (
	XT Dim = "xt"
	XU Dim = "xu"
	YT Dim = "yt"
	YU Dim = "yu"
	ZT Dim = "zt"
	ZW Dim = "zw"
)

// Class tells how a named axis participates in the decomposition.
type Class int

// Axis classes.
const (
	ClassNone Class = iota
	ClassX
	ClassY
)

// Class returns the decomposition class of the axis.
func (d Dim) Class() Class {
	switch d {
	case XT, XU:
		return ClassX
	case YT, YU:
		return ClassY
	default:
		return ClassNone
	}
}

// Scattering is the decomposition variant of a field, derived once from its
// grid.
type Scattering int

// Scattering variants.
const (
	Unscattered Scattering = iota
	ScatteredX
	ScatteredY
	ScatteredXY
)

func (s Scattering) String() string {
	switch s {
	case Unscattered:
		return "Unscattered"
	case ScatteredX:
		return "ScatteredX"
	case ScatteredY:
		return "ScatteredY"
	case ScatteredXY:
		return "ScatteredXY"
	default:
		return fmt.Sprintf("Scattering(%d)", int(s))
	}
}

// NumScatteredAxes returns how many leading axes are split across ranks.
func (s Scattering) NumScatteredAxes() int {
	switch s {
	case ScatteredX, ScatteredY:
		return 1
	case ScatteredXY:
		return 2
	default:
		return 0
	}
}

// UnsupportedGridTagError reports a grid whose axis classification is none of
// unscattered, x-only, y-only, or xy.
type UnsupportedGridTagError struct {
	Field string
	Grid  []Dim
}

func (e *UnsupportedGridTagError) Error() string {
	names := make([]string, len(e.Grid))
	for i, d := range e.Grid {
		names[i] = string(d)
	}

	return fmt.Sprintf("field %q: unsupported grid (%s)",
		e.Field, strings.Join(names, ", "))
}

// A FieldDesc describes a field: its name, the names of its axes, and the
// scattering variant derived from them.
type FieldDesc struct {
	Name       string
	Grid       []Dim
	Scattering Scattering
}

// DescribeField classifies a grid and returns the field descriptor.
func DescribeField(name string, grid ...Dim) (FieldDesc, error) {
	s, err := classify(grid)
	if err != nil {
		return FieldDesc{}, &UnsupportedGridTagError{Field: name, Grid: grid}
	}

	return FieldDesc{
		Name:       name,
		Grid:       append([]Dim(nil), grid...),
		Scattering: s,
	}, nil
}

// MustDescribeField is like DescribeField but panics on unsupported grids. It
// is meant for descriptors declared at package level.
func MustDescribeField(name string, grid ...Dim) FieldDesc {
	desc, err := DescribeField(name, grid...)
	if err != nil {
		panic(err)
	}

	return desc
}

func classify(grid []Dim) (Scattering, error) {
	if len(grid) == 0 {
		return Unscattered, fmt.Errorf("empty grid")
	}

	for _, d := range grid[min(2, len(grid)):] {
		if d.Class() != ClassNone {
			return Unscattered, fmt.Errorf("scattered axis beyond position 2")
		}
	}

	c1 := grid[0].Class()
	c2 := ClassNone
	if len(grid) > 1 {
		c2 = grid[1].Class()
	}

	switch {
	case c1 == ClassX && c2 == ClassY:
		return ScatteredXY, nil
	case c1 == ClassX && c2 == ClassNone:
		return ScatteredX, nil
	case c1 == ClassY && c2 == ClassNone:
		return ScatteredY, nil
	case c1 == ClassNone && c2 == ClassNone:
		return Unscattered, nil
	default:
		return Unscattered, fmt.Errorf("unsupported axis order")
	}
}
