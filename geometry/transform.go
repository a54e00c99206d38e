package geometry

import (
	"fmt"
	"math"
)

// AngleUnit selects whether geodetic angles are read and written in degrees
// or radians. Scan angles are always radians.
type AngleUnit int

// Supported units
const (
	Degrees AngleUnit = iota
	Radians
)

func (u AngleUnit) String() string {
	if u == Radians {
		return "radians"
	}
	return "degrees"
}

// ParseAngleUnit reads "degrees"/"deg" or "radians"/"rad"; empty means degrees
func ParseAngleUnit(s string) (AngleUnit, error) {
	switch s {
	case "", "degrees", "deg", "degree":
		return Degrees, nil
	case "radians", "rad", "radian":
		return Radians, nil
	}
	return Degrees, fmt.Errorf("Unknown angle unit `%s`", s)
}

func (u AngleUnit) toRadians(v float64) float64 {
	if u == Radians {
		return v
	}
	return v * math.Pi / 180
}

func (u AngleUnit) fromRadians(v float64) float64 {
	if u == Radians {
		return v
	}
	return v * 180 / math.Pi
}

// ScanAngle is the east-west (X) and north-south (Y) deflection of the
// line of sight from nadir, in radians
type ScanAngle struct {
	X float64
	Y float64
}

// Meters converts the scan angle to projection-plane coordinates
func (s ScanAngle) Meters(p Projection) (float64, float64) {
	return s.X * p.PerspectivePointHeight, s.Y * p.PerspectivePointHeight
}

// ScanAngleFromMeters is the inverse of ScanAngle.Meters
func ScanAngleFromMeters(x, y float64, p Projection) ScanAngle {
	return ScanAngle{X: x / p.PerspectivePointHeight, Y: y / p.PerspectivePointHeight}
}

// GeodeticCoordinate is a latitude/longitude pair in the unit it was
// requested in
type GeodeticCoordinate struct {
	Latitude  float64
	Longitude float64
}

// ScanAnglesToGeodetic projects scan angles x and y (radians) onto the
// ellipsoid and returns the geodetic latitude and longitude in unit.
// Scan angles whose line of sight misses the earth return ErrOutsideDisk.
func ScanAnglesToGeodetic(x, y float64, p Projection, unit AngleUnit) (GeodeticCoordinate, error) {
	lat, lon, ok := forward(x, y, p)
	if !ok {
		return GeodeticCoordinate{}, ErrOutsideDisk
	}
	return GeodeticCoordinate{Latitude: unit.fromRadians(lat), Longitude: unit.fromRadians(lon)}, nil
}

// GeodeticToScanAngles returns the scan angles that observe lat/lon (given
// in unit). Points hidden behind the limb return a *VisibilityError.
func GeodeticToScanAngles(lat, lon float64, p Projection, unit AngleUnit) (ScanAngle, error) {
	angle, ok := inverse(unit.toRadians(lat), unit.toRadians(lon), p)
	if !ok {
		return ScanAngle{}, &VisibilityError{Indexes: []int{0}, Latitude: []float64{lat}, Longitude: []float64{lon}}
	}
	return angle, nil
}

// ScanAnglesToGeodeticBatch is ScanAnglesToGeodetic over paired slices. If
// any pair is outside the disk nothing is returned and the error lists every
// failing index.
func ScanAnglesToGeodeticBatch(xs, ys []float64, p Projection, unit AngleUnit) ([]GeodeticCoordinate, error) {
	if len(xs) != len(ys) {
		return nil, fmt.Errorf("Mismatched batch lengths: %d x values, %d y values", len(xs), len(ys))
	}

	results := make([]GeodeticCoordinate, len(xs))
	var failed []int
	for i := range xs {
		lat, lon, ok := forward(xs[i], ys[i], p)
		if !ok {
			failed = append(failed, i)
			continue
		}
		results[i] = GeodeticCoordinate{Latitude: unit.fromRadians(lat), Longitude: unit.fromRadians(lon)}
	}
	if len(failed) > 0 {
		return nil, &OutsideDiskError{Indexes: failed}
	}
	return results, nil
}

// GeodeticToScanAnglesBatch is GeodeticToScanAngles over paired slices.
// Visibility is checked for the whole batch before anything is returned; a
// single hidden point fails the call with a *VisibilityError naming all of
// the hidden points.
func GeodeticToScanAnglesBatch(lats, lons []float64, p Projection, unit AngleUnit) ([]ScanAngle, error) {
	if len(lats) != len(lons) {
		return nil, fmt.Errorf("Mismatched batch lengths: %d latitudes, %d longitudes", len(lats), len(lons))
	}

	results := make([]ScanAngle, len(lats))
	invisible := &VisibilityError{}
	for i := range lats {
		angle, ok := inverse(unit.toRadians(lats[i]), unit.toRadians(lons[i]), p)
		if !ok {
			invisible.Indexes = append(invisible.Indexes, i)
			invisible.Latitude = append(invisible.Latitude, lats[i])
			invisible.Longitude = append(invisible.Longitude, lons[i])
			continue
		}
		results[i] = angle
	}
	if len(invisible.Indexes) > 0 {
		return nil, invisible
	}
	return results, nil
}

// forward works in radians throughout
func forward(x, y float64, p Projection) (lat, lon float64, ok bool) {
	H := p.SatelliteHeight()
	req := p.SemiMajorAxis
	k := p.axisRatio()
	lambda0 := Degrees.toRadians(p.LongitudeOfProjectionOrigin)

	sinX, cosX := math.Sincos(x)
	sinY, cosY := math.Sincos(y)

	a := sinX*sinX + cosX*cosX*(cosY*cosY+k*sinY*sinY)
	b := -2 * H * cosX * cosY
	c := H*H - req*req

	rs, ok := nearRoot(a, b, c)
	if !ok {
		return 0, 0, false
	}

	sx := rs * cosX * cosY
	sy := -rs * sinX
	sz := rs * cosX * sinY

	lat = math.Atan(k * sz / math.Sqrt((H-sx)*(H-sx)+sy*sy))
	lon = lambda0 - math.Atan(sy/(H-sx))
	return lat, lon, true
}

// inverse works in radians throughout
func inverse(lat, lon float64, p Projection) (ScanAngle, bool) {
	sx, sy, sz := satelliteFramePoint(lat, lon, p)
	if !visible(sx, sy, sz, p) {
		return ScanAngle{}, false
	}

	y := math.Atan(sz / sx)
	x := math.Asin(-sy / math.Sqrt(sx*sx+sy*sy+sz*sz))
	return ScanAngle{X: x, Y: y}, true
}
