// Package hex holds the geometry of a hexagonal grid laid out in the
// horizontal XZ plane: radii, corners, cell centers and the coordinate
// systems used to address cells.
//
// Everything in this package is a pure function of its arguments and is
// safe for concurrent use.
package hex

import (
	"fmt"
	"math"

	"github.com/go-gl/mathgl/mgl32"
)

// CornerCount is the number of corners of a hexagon.
const CornerCount = 6

// innerRadiusFactor is sqrt(3)/2.
const innerRadiusFactor = 0.866025404

/*
	Flat-top: horizontal distance between neighbouring centers is 3/2 * outer,
	vertical distance is 2 * inner.

	Pointy-top: horizontal distance is 2 * inner, vertical distance is
	3/2 * outer.
*/

// OuterRadius is the distance from center to corner. It equals the hex size.
func OuterRadius(size float32) float32 {
	return size
}

// InnerRadius is the apothem, the distance from center to an edge midpoint.
func InnerRadius(size float32) float32 {
	return size * innerRadiusFactor
}

// Corner returns the offset of corner index from the hex center.
// Corner i sits at 60*i degrees, plus 30 for pointy-top hexes.
func Corner(size float32, o Orientation, index int) (mgl32.Vec3, error) {
	if index < 0 || index >= CornerCount {
		return mgl32.Vec3{}, fmt.Errorf("%w: %d", ErrInvalidCornerIndex, index)
	}
	return corner(size, o, index), nil
}

func corner(size float32, o Orientation, index int) mgl32.Vec3 {
	rad := (60*float64(index) + o.angleOffset()) * math.Pi / 180
	return mgl32.Vec3{
		size * float32(math.Cos(rad)),
		0,
		size * float32(math.Sin(rad)),
	}
}

// Corners returns all six corner offsets in increasing angle order.
// Corners i and (i+1)%6 share an edge.
func Corners(size float32, o Orientation) [CornerCount]mgl32.Vec3 {
	var cs [CornerCount]mgl32.Vec3
	for i := range cs {
		cs[i] = corner(size, o, i)
	}
	return cs
}

// Center returns the world position of the center of offset cell (x, z).
// Pointy-top grids shift odd rows by half a cell along X; flat-top grids
// shift odd columns by half a cell along Z. Parity is taken with x&1 so the
// same pattern continues for negative coordinates.
func Center(size float32, x, z int, o Orientation) mgl32.Vec3 {
	if o == PointyTop {
		return mgl32.Vec3{
			(float32(x) + 0.5*float32(z&1)) * (InnerRadius(size) * 2),
			0,
			float32(z) * (OuterRadius(size) * 1.5),
		}
	}
	return mgl32.Vec3{
		float32(x) * (OuterRadius(size) * 1.5),
		0,
		(float32(z) + 0.5*float32(x&1)) * (InnerRadius(size) * 2),
	}
}

// CellAt returns the offset cell whose hexagon contains the world point
// (wx, wz). It is the inverse of Center.
func CellAt(size float32, wx, wz float32, o Orientation) Offset {
	s := float64(size)
	x, z := float64(wx), float64(wz)

	var q, r float64
	if o == PointyTop {
		q = (math.Sqrt(3)/3*x - z/3) / s
		r = (2.0 / 3 * z) / s
	} else {
		q = (2.0 / 3 * x) / s
		r = (-x/3 + math.Sqrt(3)/3*z) / s
	}
	return CubeToOffset(cubeRound(q, -q-r, r), o)
}

// cubeRound rounds fractional cube coordinates to the nearest cell,
// resetting the component with the largest rounding error so x+y+z stays 0.
func cubeRound(x, y, z float64) Cube {
	rx := math.Round(x)
	ry := math.Round(y)
	rz := math.Round(z)
	dx := math.Abs(rx - x)
	dy := math.Abs(ry - y)
	dz := math.Abs(rz - z)
	if dx > dy && dx > dz {
		rx = -ry - rz
	} else if dy > dz {
		ry = -rx - rz
	} else {
		rz = -rx - ry
	}
	return Cube{X: int(rx), Y: int(ry), Z: int(rz)}
}
