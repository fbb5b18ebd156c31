package grid

import (
	"errors"
	"math/bits"
	"testing"

	"github.com/go-gl/mathgl/mgl32"

	"github.com/gravitas-games/hexgrid/internal/config"
	"github.com/gravitas-games/hexgrid/pkg/hex"
)

func newTestGrid(t *testing.T, o hex.Orientation) *Grid {
	t.Helper()
	g, err := New(config.GridConfig{
		Name:        "test",
		Width:       4,
		Height:      3,
		HexSize:     1,
		Orientation: o,
		Origin:      [3]float32{10, 0, 20},
	})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	return g
}

func TestNewRejectsInvalidConfig(t *testing.T) {
	if _, err := New(config.GridConfig{Width: -1, Height: 1, HexSize: 1}); !errors.Is(err, hex.ErrInvalidDimension) {
		t.Fatalf("expected ErrInvalidDimension, got %v", err)
	}
	if _, err := New(config.GridConfig{Width: 1, Height: 1}); !errors.Is(err, hex.ErrInvalidSize) {
		t.Fatalf("expected ErrInvalidSize, got %v", err)
	}
}

func TestCellInfo(t *testing.T) {
	g := newTestGrid(t, hex.PointyTop)

	info, err := g.Cell(0, 0)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if info.Center != (mgl32.Vec3{10, 0, 20}) {
		t.Fatalf("center %v not translated by origin", info.Center)
	}
	// corner cell has only in-bounds neighbors
	if len(info.Neighbors) != 2 {
		t.Fatalf("cell (0,0) neighbors %v, expected 2", info.Neighbors)
	}

	info, err = g.Cell(1, 1)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(info.Neighbors) != 6 {
		t.Fatalf("interior cell neighbors %v, expected 6", info.Neighbors)
	}
	if info.Cube.X+info.Cube.Y+info.Cube.Z != 0 || info.Axial != info.Cube.ToAxial() {
		t.Fatalf("bad coordinates: %+v", info)
	}

	if _, err := g.Cell(4, 0); err == nil {
		t.Fatalf("expected error for out-of-bounds cell")
	}
}

func TestCellAtUsesOrigin(t *testing.T) {
	for _, o := range []hex.Orientation{hex.FlatTop, hex.PointyTop} {
		g := newTestGrid(t, o)
		info, err := g.Cell(2, 1)
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		c, ok := g.CellAt(info.Center.X(), info.Center.Z())
		if !ok || c != (hex.Offset{X: 2, Z: 1}) {
			t.Fatalf("%s CellAt(center) = %v ok=%v", o, c, ok)
		}
		if _, ok := g.CellAt(-100, -100); ok {
			t.Fatalf("%s point far outside grid reported inside", o)
		}
	}
}

func TestMeshAndOverlays(t *testing.T) {
	g := newTestGrid(t, hex.FlatTop)
	m, err := g.Mesh()
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if m.VertexCount() != 7*g.CellCount() {
		t.Fatalf("vertex count %d", m.VertexCount())
	}
	segs, err := g.Outline()
	if err != nil || len(segs) != 6*g.CellCount() {
		t.Fatalf("outline %d segments, err %v", len(segs), err)
	}
	labels, err := g.Labels()
	if err != nil || len(labels) != 2*g.CellCount() {
		t.Fatalf("labels %d, err %v", len(labels), err)
	}
}

func TestResized(t *testing.T) {
	g := newTestGrid(t, hex.FlatTop)
	pointy := hex.PointyTop
	width := 10
	r, err := g.Resized(&width, nil, nil, &pointy)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if r.Width != 10 || r.Height != 3 || r.HexSize != 1 || r.Orientation != hex.PointyTop {
		t.Fatalf("resized grid %+v", r)
	}
	if g.Width != 4 || g.Orientation != hex.FlatTop {
		t.Fatalf("original grid modified: %+v", g)
	}
	negative := -1
	if _, err := g.Resized(&negative, nil, nil, nil); !errors.Is(err, hex.ErrInvalidDimension) {
		t.Fatalf("expected ErrInvalidDimension, got %v", err)
	}
	bad := hex.Orientation(7)
	if _, err := g.Resized(nil, nil, nil, &bad); !errors.Is(err, hex.ErrInvalidOrientation) {
		t.Fatalf("expected ErrInvalidOrientation, got %v", err)
	}
	zero := 0
	empty, err := g.Resized(&zero, nil, nil, nil)
	if err != nil || empty.Width != 0 || empty.Height != 3 || empty.CellCount() != 0 {
		t.Fatalf("expected empty grid, got %+v (err %v)", empty, err)
	}
	wideWidth := 1 << 20
	wide, err := g.Resized(&wideWidth, nil, nil, nil)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if !wide.Exceeds(250000) || g.Exceeds(12) || !g.Exceeds(11) {
		t.Fatalf("Exceeds gave wrong answer for %dx%d", wide.Width, wide.Height)
	}
	// huge*huge wraps to zero
	huge := 1 << (bits.UintSize / 2)
	if _, err := g.Resized(&huge, &huge, nil, nil); !errors.Is(err, hex.ErrInvalidDimension) {
		t.Fatalf("expected overflowing grid to be rejected, got %v", err)
	}
	if g.Distance(hex.Offset{X: 0, Z: 0}, hex.Offset{X: 3, Z: 0}) != 3 {
		t.Fatalf("unexpected distance")
	}
}
