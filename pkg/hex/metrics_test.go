package hex

import (
	"errors"
	"math"
	"testing"
)

const eps = 1e-5

func near(a, b, tol float64) bool { return math.Abs(a-b) <= tol }

func TestCornersLieOnOuterRadius(t *testing.T) {
	for _, o := range []Orientation{FlatTop, PointyTop} {
		for _, size := range []float32{0.5, 1, 3.25, 10} {
			for i := 0; i < CornerCount; i++ {
				c, err := Corner(size, o, i)
				if err != nil {
					t.Fatalf("unexpected corner error: %v", err)
				}
				if c.Y() != 0 {
					t.Fatalf("corner %d y=%v, expected 0", i, c.Y())
				}
				if got := float64(c.Len()); !near(got, float64(size), eps*float64(size)) {
					t.Fatalf("%s size %v corner %d at distance %v", o, size, i, got)
				}
			}
		}
	}
}

func TestCornersAreSixtyDegreesApart(t *testing.T) {
	for _, o := range []Orientation{FlatTop, PointyTop} {
		cs := Corners(2, o)
		if len(cs) != 6 {
			t.Fatalf("expected 6 corners, got %d", len(cs))
		}
		for i := range cs {
			a := math.Atan2(float64(cs[i].Z()), float64(cs[i].X()))
			b := math.Atan2(float64(cs[(i+1)%6].Z()), float64(cs[(i+1)%6].X()))
			d := math.Mod((b-a)*180/math.Pi+360, 360)
			if !near(d, 60, 1e-3) {
				t.Fatalf("%s corners %d->%d separated by %v degrees", o, i, (i+1)%6, d)
			}
		}
	}
}

func TestCornerAngleOffset(t *testing.T) {
	flat, _ := Corner(1, FlatTop, 0)
	if !near(float64(flat.X()), 1, eps) || !near(float64(flat.Z()), 0, eps) {
		t.Fatalf("flat corner 0 = %v, expected (1,0,0)", flat)
	}
	pointy, _ := Corner(1, PointyTop, 0)
	if !near(float64(pointy.X()), math.Sqrt(3)/2, eps) || !near(float64(pointy.Z()), 0.5, eps) {
		t.Fatalf("pointy corner 0 = %v, expected (0.866,0,0.5)", pointy)
	}
}

func TestCornerRejectsBadIndex(t *testing.T) {
	for _, idx := range []int{-1, 6, 100} {
		if _, err := Corner(1, FlatTop, idx); !errors.Is(err, ErrInvalidCornerIndex) {
			t.Fatalf("index %d: expected ErrInvalidCornerIndex, got %v", idx, err)
		}
	}
}

func TestRadii(t *testing.T) {
	for _, size := range []float32{0.1, 1, 7.5} {
		if OuterRadius(size) != size {
			t.Fatalf("outer radius %v != size %v", OuterRadius(size), size)
		}
		want := float64(size) * math.Sqrt(3) / 2
		if !near(float64(InnerRadius(size)), want, eps*float64(size)) {
			t.Fatalf("inner radius %v, expected %v", InnerRadius(size), want)
		}
	}
}

func TestCenterLayouts(t *testing.T) {
	size := float32(2)
	inner := float64(InnerRadius(size))

	// pointy-top: odd rows shift half a step along X
	c := Center(size, 0, 1, PointyTop)
	if !near(float64(c.X()), inner, eps) || !near(float64(c.Z()), 3, eps) {
		t.Fatalf("pointy (0,1) center %v", c)
	}
	c = Center(size, 2, 2, PointyTop)
	if !near(float64(c.X()), 4*inner, eps) || !near(float64(c.Z()), 6, eps) {
		t.Fatalf("pointy (2,2) center %v", c)
	}

	// flat-top: odd columns shift half a step along Z
	c = Center(size, 1, 0, FlatTop)
	if !near(float64(c.X()), 3, eps) || !near(float64(c.Z()), inner, eps) {
		t.Fatalf("flat (1,0) center %v", c)
	}
	c = Center(size, 2, 1, FlatTop)
	if !near(float64(c.X()), 6, eps) || !near(float64(c.Z()), 2*inner, eps) {
		t.Fatalf("flat (2,1) center %v", c)
	}
}

func TestCenterNegativeRowsKeepParity(t *testing.T) {
	size := float32(1)
	neg := Center(size, 0, -1, PointyTop)
	pos := Center(size, 0, 1, PointyTop)
	if !near(float64(neg.X()), float64(pos.X()), eps) {
		t.Fatalf("row -1 shifted to %v, row 1 to %v", neg.X(), pos.X())
	}
	neg = Center(size, -3, 0, FlatTop)
	pos = Center(size, 3, 0, FlatTop)
	if !near(float64(neg.Z()), float64(pos.Z()), eps) {
		t.Fatalf("column -3 shifted to %v, column 3 to %v", neg.Z(), pos.Z())
	}
}

func TestCellAtInvertsCenter(t *testing.T) {
	for _, o := range []Orientation{FlatTop, PointyTop} {
		for z := -4; z <= 4; z++ {
			for x := -4; x <= 4; x++ {
				size := float32(1.5)
				c := Center(size, x, z, o)
				if got := CellAt(size, c.X(), c.Z(), o); got != (Offset{x, z}) {
					t.Fatalf("%s CellAt(center(%d,%d)) = %v", o, x, z, got)
				}
				for _, corner := range Corners(size, o) {
					p := c.Add(corner.Mul(0.9))
					if got := CellAt(size, p.X(), p.Z(), o); got != (Offset{x, z}) {
						t.Fatalf("%s point %v near corner of (%d,%d) resolved to %v", o, p, x, z, got)
					}
				}
			}
		}
	}
}

func TestValidateSize(t *testing.T) {
	for _, s := range []float32{0, -1, float32(math.NaN()), float32(math.Inf(1))} {
		if err := ValidateSize(s); !errors.Is(err, ErrInvalidSize) {
			t.Fatalf("size %v: expected ErrInvalidSize, got %v", s, err)
		}
	}
	if err := ValidateSize(0.01); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if err := ValidateDimensions(-1, 2); !errors.Is(err, ErrInvalidDimension) {
		t.Fatalf("expected ErrInvalidDimension, got %v", err)
	}
	if err := ValidateDimensions(0, 0); err != nil {
		t.Fatalf("zero dimensions should be valid: %v", err)
	}
	if err := ValidateDimensions(math.MaxInt/2, 3); !errors.Is(err, ErrInvalidDimension) {
		t.Fatalf("expected overflow to be rejected, got %v", err)
	}
	if err := ValidateGrid(2, 2, 1, Orientation(-1)); !errors.Is(err, ErrInvalidOrientation) {
		t.Fatalf("expected ErrInvalidOrientation, got %v", err)
	}
	if err := ValidateGrid(2, 2, 1, PointyTop); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
}

func TestCellsExceed(t *testing.T) {
	cases := []struct {
		w, h, limit int
		want        bool
	}{
		{10, 10, 100, false},
		{10, 11, 100, true},
		{0, math.MaxInt, 0, false},
		{7, 1, 6, true},
		{math.MaxInt / 2, 4, 250000, true},
		{math.MaxInt, math.MaxInt, math.MaxInt, true},
	}
	for _, c := range cases {
		if got := CellsExceed(c.w, c.h, c.limit); got != c.want {
			t.Fatalf("CellsExceed(%d, %d, %d) = %v", c.w, c.h, c.limit, got)
		}
	}
}

func TestOrientationText(t *testing.T) {
	for in, want := range map[string]Orientation{
		"flat": FlatTop, "Flat_Top": FlatTop, "pointy": PointyTop, " POINTY-TOP ": PointyTop,
	} {
		var o Orientation
		if err := o.UnmarshalText([]byte(in)); err != nil {
			t.Fatalf("%q: unexpected error %v", in, err)
		}
		if o != want {
			t.Fatalf("%q parsed to %s, expected %s", in, o, want)
		}
	}
	var o Orientation
	if err := o.UnmarshalText([]byte("round")); err == nil {
		t.Fatalf("expected error for unknown orientation")
	}
	if _, err := Orientation(7).MarshalText(); err == nil {
		t.Fatalf("expected error marshalling invalid orientation")
	}
}
