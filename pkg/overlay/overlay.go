// Package overlay produces debug geometry for hex grids: edge outlines and
// coordinate labels that an editor or viewer can draw on top of a scene.
package overlay

import (
	"fmt"

	"github.com/go-gl/mathgl/mgl32"

	"github.com/gravitas-games/hexgrid/pkg/hex"
)

// LabelOffset is how far the offset-coordinate label sits from the cell
// center along +Z, so it does not overlap the cube label.
const LabelOffset = 0.5

// Segment is a line between two world points.
type Segment struct {
	From mgl32.Vec3 `json:"from"`
	To   mgl32.Vec3 `json:"to"`
}

// Label is a piece of text anchored at a world position.
type Label struct {
	Cell     hex.Offset `json:"cell"`
	Position mgl32.Vec3 `json:"position"`
	Text     string     `json:"text"`
}

// Outline returns six edge segments per cell, corner s to corner s+1,
// translated by origin. Cells are visited in row-major order.
func Outline(width, height int, size float32, o hex.Orientation, origin mgl32.Vec3) ([]Segment, error) {
	if err := hex.ValidateGrid(width, height, size, o); err != nil {
		return nil, err
	}
	corners := hex.Corners(size, o)
	segs := make([]Segment, 0, width*height*hex.CornerCount)
	for z := 0; z < height; z++ {
		for x := 0; x < width; x++ {
			center := hex.Center(size, x, z, o).Add(origin)
			for s := 0; s < hex.CornerCount; s++ {
				segs = append(segs, Segment{
					From: center.Add(corners[s]),
					To:   center.Add(corners[(s+1)%hex.CornerCount]),
				})
			}
		}
	}
	return segs, nil
}

// Labels returns two labels per cell: the offset coordinate "[x, z]" just
// in front of the center, and the cube coordinate "(x, y, z)" at the center.
func Labels(width, height int, size float32, o hex.Orientation, origin mgl32.Vec3) ([]Label, error) {
	if err := hex.ValidateGrid(width, height, size, o); err != nil {
		return nil, err
	}
	labels := make([]Label, 0, 2*width*height)
	for z := 0; z < height; z++ {
		for x := 0; x < width; x++ {
			cell := hex.Offset{X: x, Z: z}
			center := hex.Center(size, x, z, o).Add(origin)
			cube := hex.OffsetToCube(x, z, o)
			labels = append(labels,
				Label{
					Cell:     cell,
					Position: center.Add(mgl32.Vec3{0, 0, LabelOffset}),
					Text:     OffsetText(cell),
				},
				Label{
					Cell:     cell,
					Position: center,
					Text:     CubeText(cube),
				},
			)
		}
	}
	return labels, nil
}

// OffsetText formats an offset coordinate as "[x, z]".
func OffsetText(c hex.Offset) string { return fmt.Sprintf("[%d, %d]", c.X, c.Z) }

// CubeText formats a cube coordinate as "(x, y, z)".
func CubeText(c hex.Cube) string { return fmt.Sprintf("(%d, %d, %d)", c.X, c.Y, c.Z) }
