package hex

import (
	"errors"
	"fmt"
	"math"
)

var (
	// ErrInvalidDimension is returned when a grid width or height is negative
	// or too large to address.
	ErrInvalidDimension = errors.New("hex: invalid grid dimension")
	// ErrInvalidSize is returned when a hex size is not strictly positive.
	ErrInvalidSize = errors.New("hex: invalid hex size")
	// ErrInvalidOrientation is returned for values other than FlatTop and PointyTop.
	ErrInvalidOrientation = errors.New("hex: invalid orientation")
	// ErrInvalidCornerIndex is returned for corner indices outside [0, 5].
	ErrInvalidCornerIndex = errors.New("hex: invalid corner index")
)

// maxValuesPerCell is the largest per-cell buffer any whole-grid builder
// allocates: 6 fan triangles of 3 indices each.
const maxValuesPerCell = 3 * CornerCount

// ValidateSize rejects sizes that are zero, negative, NaN or infinite.
func ValidateSize(size float32) error {
	s := float64(size)
	if !(s > 0) || math.IsInf(s, 0) {
		return fmt.Errorf("%w: %v", ErrInvalidSize, size)
	}
	return nil
}

// ValidateDimensions rejects negative grid dimensions and grids whose
// per-cell buffers would not fit in an int. Zero is allowed.
func ValidateDimensions(width, height int) error {
	if width < 0 || height < 0 {
		return fmt.Errorf("%w: %dx%d", ErrInvalidDimension, width, height)
	}
	if width != 0 && height > math.MaxInt/maxValuesPerCell/width {
		return fmt.Errorf("%w: %dx%d overflows", ErrInvalidDimension, width, height)
	}
	return nil
}

// ValidateOrientation rejects values other than FlatTop and PointyTop.
func ValidateOrientation(o Orientation) error {
	if !o.IsValid() {
		return fmt.Errorf("%w: %d", ErrInvalidOrientation, int(o))
	}
	return nil
}

// ValidateGrid runs the dimension, size and orientation checks shared by
// every whole-grid builder.
func ValidateGrid(width, height int, size float32, o Orientation) error {
	if err := ValidateDimensions(width, height); err != nil {
		return err
	}
	if err := ValidateSize(size); err != nil {
		return err
	}
	return ValidateOrientation(o)
}

// CellsExceed reports whether a width x height grid has more than limit
// cells, without computing the product.
func CellsExceed(width, height, limit int) bool {
	if width <= 0 || height <= 0 {
		return false
	}
	return width > limit/height
}
