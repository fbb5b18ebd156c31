package hex

// Offset addresses a cell by column X and row Z. This is the addressing the
// grid and mesh builders use.
type Offset struct {
	X int `json:"x"`
	Z int `json:"z"`
}

// Axial represents axial coordinates (q, r).
type Axial struct {
	Q int `json:"q"`
	R int `json:"r"`
}

// Cube represents cube coordinates (x, y, z) with x+y+z=0.
type Cube struct {
	X int `json:"x"`
	Y int `json:"y"`
	Z int `json:"z"`
}

// CubeDirections are the six unit steps in cube space, each rotated 60
// degrees from the previous one.
var CubeDirections = [6]Cube{
	{+1, -1, 0}, {+1, 0, -1}, {0, +1, -1}, {-1, +1, 0}, {-1, 0, +1}, {0, -1, +1},
}

// Add returns a+b in cube space.
func (c Cube) Add(b Cube) Cube { return Cube{c.X + b.X, c.Y + b.Y, c.Z + b.Z} }

// ToAxial converts cube to axial.
func (c Cube) ToAxial() Axial { return Axial{Q: c.X, R: c.Z} }

// ToCube converts axial to cube.
func (a Axial) ToCube() Cube {
	x := a.Q
	z := a.R
	y := -x - z
	return Cube{X: x, Y: y, Z: z}
}

// OffsetToCube converts an offset cell to cube coordinates. Pointy-top grids
// use odd-row offsets, flat-top grids odd-column offsets.
func OffsetToCube(x, z int, o Orientation) Cube {
	var cx, cz int
	if o == PointyTop {
		cx = x - (z-(z&1))/2
		cz = z
	} else {
		cx = x
		cz = z - (x-(x&1))/2
	}
	return Cube{X: cx, Y: -cx - cz, Z: cz}
}

// CubeToOffset is the inverse of OffsetToCube.
func CubeToOffset(c Cube, o Orientation) Offset {
	if o == PointyTop {
		return Offset{X: c.X + (c.Z-(c.Z&1))/2, Z: c.Z}
	}
	return Offset{X: c.X, Z: c.Z + (c.X-(c.X&1))/2}
}

// DistanceCube returns hex distance between two cube coords.
func DistanceCube(a, b Cube) int {
	dx := abs(a.X - b.X)
	dy := abs(a.Y - b.Y)
	dz := abs(a.Z - b.Z)
	if dx > dy && dx > dz {
		return dx
	}
	if dy > dz {
		return dy
	}
	return dz
}

// Distance returns the number of steps between two offset cells.
func Distance(a, b Offset, o Orientation) int {
	return DistanceCube(OffsetToCube(a.X, a.Z, o), OffsetToCube(b.X, b.Z, o))
}

// Neighbors returns the six cells adjacent to c in CubeDirections order.
// The result is not clipped to any grid bounds.
func Neighbors(c Offset, o Orientation) [6]Offset {
	center := OffsetToCube(c.X, c.Z, o)
	var out [6]Offset
	for i, d := range CubeDirections {
		out[i] = CubeToOffset(center.Add(d), o)
	}
	return out
}

func abs(v int) int {
	if v < 0 {
		return -v
	}
	return v
}
