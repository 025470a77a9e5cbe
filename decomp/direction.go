package decomp

// A Direction points from a rank to one of its eight neighbors. Its integer
// value doubles as the message tag of halo traffic sent in that direction.
type Direction int

// The four direct neighbors come first, then the corners.
const (
	West Direction = iota
	South
	East
	North
	SouthWest
	SouthEast
	NorthEast
	NorthWest
	NumDirections
)

var directionNames = [NumDirections]string{
	"west", "south", "east", "north",
	"south-west", "south-east", "north-east", "north-west",
}

var directionOffsets = [NumDirections][2]int{
	West:      {-1, 0},
	South:     {0, -1},
	East:      {1, 0},
	North:     {0, 1},
	SouthWest: {-1, -1},
	SouthEast: {1, -1},
	NorthEast: {1, 1},
	NorthWest: {-1, 1},
}

// complements pairs every direction with the direction the neighbor uses to
// talk back: west and east, south and north, and opposite corners.
var complements = [NumDirections]Direction{
	West:      East,
	South:     North,
	East:      West,
	North:     South,
	SouthWest: NorthEast,
	SouthEast: NorthWest,
	NorthEast: SouthWest,
	NorthWest: SouthEast,
}

func (d Direction) String() string {
	if d < 0 || d >= NumDirections {
		return "invalid"
	}

	return directionNames[d]
}

// Offset returns the process grid step of the direction.
func (d Direction) Offset() (dx, dy int) {
	o := directionOffsets[d]
	return o[0], o[1]
}

// Complement returns the opposite direction.
func (d Direction) Complement() Direction {
	return complements[d]
}

// IsCorner reports whether the direction is diagonal.
func (d Direction) IsCorner() bool {
	return d >= SouthWest
}
