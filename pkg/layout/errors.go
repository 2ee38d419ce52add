package layout

import "errors"

var (
	// ErrZeroSourceDimension is returned when the source width or height is
	// zero at layout time.
	ErrZeroSourceDimension = errors.New("source dimension is zero")

	// ErrZeroTargetDimension is returned when a constraint specifies a
	// zero-valued target axis, or specifies no axis at all.
	ErrZeroTargetDimension = errors.New("target dimension is zero")

	// ErrZeroRegionDimension is returned when a region viewport resolves to
	// non-positive width or height.
	ErrZeroRegionDimension = errors.New("region dimension is zero")
)
