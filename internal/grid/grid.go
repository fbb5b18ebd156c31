package grid

import (
	"fmt"
	"log"

	"github.com/go-gl/mathgl/mgl32"

	"github.com/gravitas-games/hexgrid/internal/config"
	"github.com/gravitas-games/hexgrid/pkg/hex"
	"github.com/gravitas-games/hexgrid/pkg/mesh"
	"github.com/gravitas-games/hexgrid/pkg/overlay"
)

// Grid is the configured hex grid served by the process.
// It is built once at startup and handed to whoever needs it.
type Grid struct {
	Name        string
	Width       int
	Height      int
	HexSize     float32
	Orientation hex.Orientation
	Origin      mgl32.Vec3
}

// CellInfo describes one cell for debug views
type CellInfo struct {
	Offset    hex.Offset    `json:"offset"`
	Cube      hex.Cube      `json:"cube"`
	Axial     hex.Axial     `json:"axial"`
	Center    mgl32.Vec3    `json:"center"`
	Corners   [6]mgl32.Vec3 `json:"corners"`
	Neighbors []hex.Offset  `json:"neighbors"` // Only neighbors inside the grid
}

// New creates a grid from its configuration section
func New(cfg config.GridConfig) (*Grid, error) {
	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	g := &Grid{
		Name:        cfg.Name,
		Width:       cfg.Width,
		Height:      cfg.Height,
		HexSize:     cfg.HexSize,
		Orientation: cfg.Orientation,
		Origin:      mgl32.Vec3(cfg.Origin),
	}

	log.Printf("Grid %q: %dx%d %s hexes of size %.3f", g.Name, g.Width, g.Height, g.Orientation, g.HexSize)
	return g, nil
}

// CellCount returns the number of cells in the grid
func (g *Grid) CellCount() int {
	return g.Width * g.Height
}

// Exceeds reports whether the grid has more than limit cells
func (g *Grid) Exceeds(limit int) bool {
	return hex.CellsExceed(g.Width, g.Height, limit)
}

// Contains reports whether an offset cell is inside the grid
func (g *Grid) Contains(c hex.Offset) bool {
	return c.X >= 0 && c.Z >= 0 && c.X < g.Width && c.Z < g.Height
}

// Mesh builds the grid mesh in grid-local space
func (g *Grid) Mesh() (*mesh.Mesh, error) {
	return mesh.Build(g.Width, g.Height, g.HexSize, g.Orientation)
}

// Outline returns the edge segments of every cell, translated by the origin
func (g *Grid) Outline() ([]overlay.Segment, error) {
	return overlay.Outline(g.Width, g.Height, g.HexSize, g.Orientation, g.Origin)
}

// Labels returns the coordinate labels of every cell, translated by the origin
func (g *Grid) Labels() ([]overlay.Label, error) {
	return overlay.Labels(g.Width, g.Height, g.HexSize, g.Orientation, g.Origin)
}

// Cell returns the geometry and coordinates of cell (x, z) in world space
func (g *Grid) Cell(x, z int) (CellInfo, error) {
	c := hex.Offset{X: x, Z: z}
	if !g.Contains(c) {
		return CellInfo{}, fmt.Errorf("cell (%d, %d) outside %dx%d grid", x, z, g.Width, g.Height)
	}

	center := hex.Center(g.HexSize, x, z, g.Orientation).Add(g.Origin)
	cube := hex.OffsetToCube(x, z, g.Orientation)
	info := CellInfo{
		Offset:    c,
		Cube:      cube,
		Axial:     cube.ToAxial(),
		Center:    center,
		Neighbors: make([]hex.Offset, 0, 6),
	}
	for i, corner := range hex.Corners(g.HexSize, g.Orientation) {
		info.Corners[i] = center.Add(corner)
	}
	for _, n := range hex.Neighbors(c, g.Orientation) {
		if g.Contains(n) {
			info.Neighbors = append(info.Neighbors, n)
		}
	}
	return info, nil
}

// CellAt resolves a world point to the cell under it
func (g *Grid) CellAt(wx, wz float32) (hex.Offset, bool) {
	c := hex.CellAt(g.HexSize, wx-g.Origin.X(), wz-g.Origin.Z(), g.Orientation)
	return c, g.Contains(c)
}

// Distance returns the step distance between two cells
func (g *Grid) Distance(a, b hex.Offset) int {
	return hex.Distance(a, b, g.Orientation)
}

// Resized returns a copy of the grid with other dimensions, size or
// orientation. Nil arguments keep the current setting.
func (g *Grid) Resized(width, height *int, size *float32, o *hex.Orientation) (*Grid, error) {
	next := *g
	if width != nil {
		next.Width = *width
	}
	if height != nil {
		next.Height = *height
	}
	if size != nil {
		next.HexSize = *size
	}
	if o != nil {
		next.Orientation = *o
	}
	if err := hex.ValidateGrid(next.Width, next.Height, next.HexSize, next.Orientation); err != nil {
		return nil, err
	}
	return &next, nil
}
