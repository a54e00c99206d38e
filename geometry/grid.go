package geometry

import (
	"fmt"
	"math"

	"github.com/pkg/errors"
)

// ErrOutsideGrid is returned when a scan angle lies beyond a product's grid
var ErrOutsideGrid = errors.New("scan angle is outside the product grid")

// GridExtent is the bounding box of a product's sample coordinates, in
// radians of scan angle
type GridExtent struct {
	XMin float64
	XMax float64
	YMin float64
	YMax float64
}

// Valid returns an error for empty or inverted extents
func (e GridExtent) Valid() error {
	if !(e.XMin < e.XMax) || !(e.YMin < e.YMax) {
		return fmt.Errorf("Invalid grid extent x=[%v, %v] y=[%v, %v]", e.XMin, e.XMax, e.YMin, e.YMax)
	}
	return nil
}

// Grid holds the x and y sample coordinate arrays of a gridded product
type Grid struct {
	X []float64
	Y []float64
}

// Extent returns the bounding box of the grid samples
func (g Grid) Extent() (GridExtent, error) {
	if len(g.X) == 0 || len(g.Y) == 0 {
		return GridExtent{}, errors.New("grid has no samples")
	}
	xMin, xMax := minMax(g.X)
	yMin, yMax := minMax(g.Y)
	extent := GridExtent{XMin: xMin, XMax: xMax, YMin: yMin, YMax: yMax}
	return extent, extent.Valid()
}

// Nearest returns the column and row whose sample coordinates are closest to
// the scan angle. Angles more than half a pixel past the grid edge return
// ErrOutsideGrid.
func (g Grid) Nearest(s ScanAngle) (col, row int, err error) {
	if len(g.X) == 0 || len(g.Y) == 0 {
		return 0, 0, errors.New("grid has no samples")
	}
	col, colDist := nearestIndex(g.X, s.X)
	row, rowDist := nearestIndex(g.Y, s.Y)
	if colDist > halfSpacing(g.X) || rowDist > halfSpacing(g.Y) {
		return 0, 0, errors.Wrapf(ErrOutsideGrid, "x=%v y=%v", s.X, s.Y)
	}
	return col, row, nil
}

func nearestIndex(samples []float64, v float64) (int, float64) {
	best, bestDist := 0, math.Inf(1)
	for i, sample := range samples {
		if d := math.Abs(sample - v); d < bestDist {
			best, bestDist = i, d
		}
	}
	return best, bestDist
}

// halfSpacing is half the sample interval, or +Inf for a single sample
func halfSpacing(samples []float64) float64 {
	if len(samples) < 2 {
		return math.Inf(1)
	}
	return math.Abs(samples[1]-samples[0])/2 + 1e-12
}

func minMax(values []float64) (float64, float64) {
	lo, hi := values[0], values[0]
	for _, v := range values[1:] {
		lo = math.Min(lo, v)
		hi = math.Max(hi, v)
	}
	return lo, hi
}
