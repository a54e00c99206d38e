package geometry

import (
	"fmt"
	"strings"

	"github.com/pkg/errors"
)

// ErrOutsideDisk is returned by the forward transform when the line of sight
// for a scan angle pair never meets the ellipsoid
var ErrOutsideDisk = errors.New("scan angles are outside the earth disk")

// VisibilityError reports geodetic points that cannot be seen from the
// satellite. Indexes refer to positions in the request.
type VisibilityError struct {
	Indexes   []int
	Latitude  []float64
	Longitude []float64
}

func (e *VisibilityError) Error() string {
	if len(e.Indexes) == 1 {
		return fmt.Sprintf("point (%v, %v) is not visible from the satellite", e.Latitude[0], e.Longitude[0])
	}
	parts := make([]string, 0, len(e.Indexes))
	for i := range e.Indexes {
		if i == 5 {
			parts = append(parts, fmt.Sprintf("... %d more", len(e.Indexes)-5))
			break
		}
		parts = append(parts, fmt.Sprintf("#%d (%v, %v)", e.Indexes[i], e.Latitude[i], e.Longitude[i]))
	}
	return fmt.Sprintf("%d points are not visible from the satellite: %s", len(e.Indexes), strings.Join(parts, ", "))
}

// OutsideDiskError wraps ErrOutsideDisk with the offending batch indexes
type OutsideDiskError struct {
	Indexes []int
}

func (e *OutsideDiskError) Error() string {
	return fmt.Sprintf("%d of the requested scan angle pairs (first at #%d): %v", len(e.Indexes), e.Indexes[0], ErrOutsideDisk)
}

// Unwrap lets errors.Is match ErrOutsideDisk
func (e *OutsideDiskError) Unwrap() error {
	return ErrOutsideDisk
}

// OutsideFieldOfViewError reports a point the satellite can see but the
// instrument does not cover, such as a point beyond the GLM square cutout
type OutsideFieldOfViewError struct {
	Instrument Instrument
	Latitude   float64
	Longitude  float64
	Angle      ScanAngle
}

func (e *OutsideFieldOfViewError) Error() string {
	return fmt.Sprintf("point (%v, %v) at scan angle (%.6f, %.6f) is outside the %s field of view",
		e.Latitude, e.Longitude, e.Angle.X, e.Angle.Y, e.Instrument)
}
