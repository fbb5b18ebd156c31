package hex

import (
	"fmt"
	"strings"
)

// Orientation selects how hexagons sit on the grid.
type Orientation int

const (
	// FlatTop hexes have a flat edge on top and bottom; columns stagger.
	FlatTop Orientation = iota
	// PointyTop hexes have a corner on top and bottom; rows stagger.
	PointyTop
)

// String returns the short text form used in config files and messages.
func (o Orientation) String() string {
	switch o {
	case FlatTop:
		return "flat"
	case PointyTop:
		return "pointy"
	default:
		return "unknown"
	}
}

// IsValid reports whether o is one of the known orientations.
func (o Orientation) IsValid() bool {
	switch o {
	case FlatTop, PointyTop:
		return true
	default:
		return false
	}
}

// ParseOrientation accepts "flat", "flat_top", "flattop", "pointy",
// "pointy_top" and "pointytop", ignoring case.
func ParseOrientation(s string) (Orientation, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "flat", "flat_top", "flattop", "flat-top":
		return FlatTop, nil
	case "pointy", "pointy_top", "pointytop", "pointy-top":
		return PointyTop, nil
	default:
		return 0, fmt.Errorf("unknown orientation %q", s)
	}
}

// MarshalText implements encoding.TextMarshaler.
func (o Orientation) MarshalText() ([]byte, error) {
	if !o.IsValid() {
		return nil, fmt.Errorf("invalid orientation %d", int(o))
	}
	return []byte(o.String()), nil
}

// UnmarshalText implements encoding.TextUnmarshaler. Both encoding/json and
// yaml.v3 pick it up, so orientations read as plain strings.
func (o *Orientation) UnmarshalText(text []byte) error {
	parsed, err := ParseOrientation(string(text))
	if err != nil {
		return err
	}
	*o = parsed
	return nil
}

// angleOffset is the corner angle offset in degrees.
func (o Orientation) angleOffset() float64 {
	if o == PointyTop {
		return 30
	}
	return 0
}
