// Package mesh builds renderable triangle meshes for rectangular hex grids.
//
// A mesh is a flat vertex buffer plus a flat triangle index buffer. Each cell
// owns 7 vertices (center then its 6 corners) and 6 fan triangles; adjacent
// cells never share vertices. Normals and bounds are left to the consumer.
package mesh

import (
	"github.com/go-gl/mathgl/mgl32"

	"github.com/gravitas-games/hexgrid/pkg/hex"
)

const (
	// VerticesPerCell is one center vertex plus one per corner.
	VerticesPerCell = 1 + hex.CornerCount
	// TrianglesPerCell is one fan triangle per hex edge.
	TrianglesPerCell = hex.CornerCount
	// IndicesPerCell is the number of triangle indices emitted per cell.
	IndicesPerCell = 3 * TrianglesPerCell
)

// Mesh is the output of Build.
type Mesh struct {
	Width       int             `json:"width"`
	Height      int             `json:"height"`
	Size        float32         `json:"hex_size"`
	Orientation hex.Orientation `json:"orientation"`
	Vertices    []mgl32.Vec3    `json:"vertices"`
	Triangles   []int           `json:"triangles"`
}

// Build generates the mesh for a width x height grid. Cells are emitted in
// row-major order (z outer, x inner), so cell (x, z) starts at vertex
// 7*(z*width+x). A zero width or height gives an empty mesh.
func Build(width, height int, size float32, o hex.Orientation) (*Mesh, error) {
	if err := hex.ValidateGrid(width, height, size, o); err != nil {
		return nil, err
	}

	cells := width * height
	m := &Mesh{
		Width:       width,
		Height:      height,
		Size:        size,
		Orientation: o,
		Vertices:    make([]mgl32.Vec3, VerticesPerCell*cells),
		Triangles:   make([]int, IndicesPerCell*cells),
	}

	corners := hex.Corners(size, o)
	for z := 0; z < height; z++ {
		for x := 0; x < width; x++ {
			cell := z*width + x
			base := cell * VerticesPerCell

			center := hex.Center(size, x, z, o)
			m.Vertices[base] = center
			for s, c := range corners {
				m.Vertices[base+1+s] = center.Add(c)
			}

			tri := cell * IndicesPerCell
			for s := 0; s < TrianglesPerCell; s++ {
				m.Triangles[tri+3*s+0] = base
				m.Triangles[tri+3*s+1] = base + 1 + s
				m.Triangles[tri+3*s+2] = base + 1 + (s+1)%hex.CornerCount
			}
		}
	}
	return m, nil
}

// VertexCount returns the number of vertices in the mesh.
func (m *Mesh) VertexCount() int { return len(m.Vertices) }

// TriangleCount returns the number of triangles in the mesh.
func (m *Mesh) TriangleCount() int { return len(m.Triangles) / 3 }

// Triangle returns the vertex indices of triangle i.
func (m *Mesh) Triangle(i int) [3]int {
	return [3]int{m.Triangles[3*i], m.Triangles[3*i+1], m.Triangles[3*i+2]}
}

// CellBase returns the first vertex slot of cell (x, z) and whether the cell
// is inside the grid.
func (m *Mesh) CellBase(x, z int) (int, bool) {
	if x < 0 || z < 0 || x >= m.Width || z >= m.Height {
		return 0, false
	}
	return (z*m.Width + x) * VerticesPerCell, true
}

// CellVertices returns the 7 vertices of cell (x, z), center first.
// The slice aliases the mesh buffer.
func (m *Mesh) CellVertices(x, z int) ([]mgl32.Vec3, bool) {
	base, ok := m.CellBase(x, z)
	if !ok {
		return nil, false
	}
	return m.Vertices[base : base+VerticesPerCell], true
}
