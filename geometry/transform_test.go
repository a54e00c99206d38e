package geometry

import (
	"math"
	"testing"

	"github.com/pkg/errors"
	"github.com/stretchr/testify/assert"
)

var testProjection = Projection{
	SemiMajorAxis:               6378137,
	SemiMinorAxis:               6356752.31414,
	InverseFlattening:           298.2572221,
	PerspectivePointHeight:      35786023,
	LongitudeOfProjectionOrigin: -75,
	SweepAngleAxis:              "x",
}

func TestScanAnglesToGeodetic_Nadir(t *testing.T) {
	// Tested code
	coord, err := ScanAnglesToGeodetic(0, 0, testProjection, Degrees)

	// Asserts
	assert.Nil(t, err)
	assert.InDelta(t, 0, coord.Latitude, 1e-12)
	assert.InDelta(t, -75, coord.Longitude, 1e-12)
}

func TestGeodeticToScanAngles_Nadir(t *testing.T) {
	// Tested code
	angle, err := GeodeticToScanAngles(0, -75, testProjection, Degrees)

	// Asserts
	assert.Nil(t, err)
	assert.InDelta(t, 0, angle.X, 1e-12)
	assert.InDelta(t, 0, angle.Y, 1e-12)
}

func TestGeodeticToScanAngles_ReferencePoint(t *testing.T) {
	// Published fixed-grid example for GOES-East
	angle, err := GeodeticToScanAngles(33.846162, -84.690932, testProjection, Degrees)

	assert.Nil(t, err)
	assert.InDelta(t, -0.024052, angle.X, 1e-6)
	assert.InDelta(t, 0.095340, angle.Y, 1e-6)
}

func TestGeodeticToScanAngles_RadiansInput(t *testing.T) {
	degAngle, err := GeodeticToScanAngles(33.846162, -84.690932, testProjection, Degrees)
	assert.Nil(t, err)

	radAngle, err := GeodeticToScanAngles(33.846162*math.Pi/180, -84.690932*math.Pi/180, testProjection, Radians)
	assert.Nil(t, err)

	assert.InDelta(t, degAngle.X, radAngle.X, 1e-15)
	assert.InDelta(t, degAngle.Y, radAngle.Y, 1e-15)
}

func TestGeodeticToScanAngles_Antipode(t *testing.T) {
	// Tested code
	_, err := GeodeticToScanAngles(0, 105, testProjection, Degrees)

	// Asserts
	assert.NotNil(t, err)
	visErr, ok := err.(*VisibilityError)
	assert.True(t, ok)
	assert.Equal(t, []int{0}, visErr.Indexes)
	assert.False(t, IsVisible(0, 105, testProjection, Degrees))
	assert.True(t, IsVisible(0, -75, testProjection, Degrees))
}

func TestRoundTrip_ScanAngles(t *testing.T) {
	sphere := Projection{
		SemiMajorAxis:               6371000,
		SemiMinorAxis:               6371000,
		PerspectivePointHeight:      35786023,
		LongitudeOfProjectionOrigin: -137,
		SweepAngleAxis:              "x",
	}
	// b = 0.8a; the polar limb sits near y = 0.12
	flattened := Projection{
		SemiMajorAxis:               6378137,
		SemiMinorAxis:               5102509.6,
		InverseFlattening:           5,
		PerspectivePointHeight:      35786023,
		LongitudeOfProjectionOrigin: 10,
		SweepAngleAxis:              "x",
	}

	cases := []struct {
		name  string
		p     Projection
		limit float64
	}{
		{"east", testProjection, 0.15},
		{"west", GOESWest, 0.15},
		{"sphere", sphere, 0.15},
		{"flattened", flattened, 0.11},
	}
	for _, tc := range cases {
		checked := 0
		for x := -tc.limit; x <= tc.limit; x += 0.01 {
			for y := -tc.limit; y <= tc.limit; y += 0.01 {
				coord, err := ScanAnglesToGeodetic(x, y, tc.p, Degrees)
				if err == ErrOutsideDisk {
					continue
				}
				assert.Nil(t, err)

				angle, err := GeodeticToScanAngles(coord.Latitude, coord.Longitude, tc.p, Degrees)
				if !assert.Nil(t, err, "%s x=%v y=%v", tc.name, x, y) {
					continue
				}
				assert.InDelta(t, x, angle.X, 1e-9, "%s x=%v y=%v", tc.name, x, y)
				assert.InDelta(t, y, angle.Y, 1e-9, "%s x=%v y=%v", tc.name, x, y)
				checked++
			}
		}
		assert.True(t, checked > 100, "%s: only %d points on the disk", tc.name, checked)
	}
}

func TestScanAnglesToGeodetic_SphereNadirColumn(t *testing.T) {
	// On a sphere geodetic and geocentric latitude agree, so a point straight
	// north of nadir sits at lon0 with lat = asin(H·sin(y)/R) - y
	sphere := Projection{SemiMajorAxis: 6371000, SemiMinorAxis: 6371000, PerspectivePointHeight: 35786023, LongitudeOfProjectionOrigin: -137}
	H := sphere.SatelliteHeight()

	coord, err := ScanAnglesToGeodetic(0, 0.1, sphere, Radians)

	assert.Nil(t, err)
	assert.InDelta(t, -137*math.Pi/180, coord.Longitude, 1e-12)
	assert.InDelta(t, math.Asin(H*math.Sin(0.1)/6371000)-0.1, coord.Latitude, 1e-9)
}

func TestRoundTrip_Geodetic(t *testing.T) {
	for lat := -60.0; lat <= 60; lat += 7.5 {
		for lon := -135.0; lon <= -15; lon += 7.5 {
			if !IsVisible(lat, lon, testProjection, Degrees) {
				continue
			}
			angle, err := GeodeticToScanAngles(lat, lon, testProjection, Degrees)
			assert.Nil(t, err)

			coord, err := ScanAnglesToGeodetic(angle.X, angle.Y, testProjection, Degrees)
			assert.Nil(t, err)
			assert.InDelta(t, lat, coord.Latitude, 1e-7, "lat=%v lon=%v", lat, lon)
			assert.InDelta(t, lon, coord.Longitude, 1e-7, "lat=%v lon=%v", lat, lon)
		}
	}
}

func TestScanAnglesToGeodetic_OutsideDisk(t *testing.T) {
	// Tested code
	_, err := ScanAnglesToGeodetic(0.2, 0.2, testProjection, Degrees)

	// Asserts
	assert.Equal(t, ErrOutsideDisk, err)
}

func TestScanAnglesToGeodeticBatch(t *testing.T) {
	// Mock
	xs := []float64{0, 0.05, -0.05}
	ys := []float64{0, 0.02, -0.08}

	// Tested code
	coords, err := ScanAnglesToGeodeticBatch(xs, ys, testProjection, Radians)
	_, badErr := ScanAnglesToGeodeticBatch([]float64{0, 0.3, 0.4}, []float64{0, 0, 0}, testProjection, Radians)
	_, lenErr := ScanAnglesToGeodeticBatch([]float64{0}, []float64{}, testProjection, Radians)

	// Asserts
	assert.Nil(t, err)
	assert.Len(t, coords, 3)
	assert.InDelta(t, -75*math.Pi/180, coords[0].Longitude, 1e-12)
	assert.True(t, errors.Is(badErr, ErrOutsideDisk))
	outside, ok := badErr.(*OutsideDiskError)
	assert.True(t, ok)
	assert.Equal(t, []int{1, 2}, outside.Indexes)
	assert.NotNil(t, lenErr)
}

func TestGeodeticToScanAnglesBatch_AllOrNothing(t *testing.T) {
	// Mock
	lats := []float64{0, 30, 0, -10}
	lons := []float64{-75, -90, 105, 100}

	// Tested code
	angles, err := GeodeticToScanAnglesBatch(lats, lons, testProjection, Degrees)

	// Asserts
	assert.Nil(t, angles)
	visErr, ok := err.(*VisibilityError)
	assert.True(t, ok)
	assert.Equal(t, []int{2, 3}, visErr.Indexes)
	assert.Equal(t, []float64{105, 100}, visErr.Longitude)
	assert.Contains(t, visErr.Error(), "2 points are not visible")
}

func TestGeodeticToScanAnglesBatch_Visible(t *testing.T) {
	angles, err := GeodeticToScanAnglesBatch([]float64{0, 33.846162}, []float64{-75, -84.690932}, testProjection, Degrees)

	assert.Nil(t, err)
	assert.Len(t, angles, 2)
	assert.InDelta(t, 0.095340, angles[1].Y, 1e-6)
}

func TestEccentricity(t *testing.T) {
	derived := testProjection
	fixed := testProjection
	fixed.FixedEccentricity = true

	assert.InDelta(t, GRS80Eccentricity, derived.Eccentricity(), 1e-12)
	assert.Equal(t, GRS80Eccentricity, fixed.Eccentricity())

	sphere := Projection{SemiMajorAxis: 6371000, SemiMinorAxis: 6371000, PerspectivePointHeight: 35786023}
	assert.Equal(t, 0.0, sphere.Eccentricity())
}

func TestParseAngleUnit(t *testing.T) {
	unit, err := ParseAngleUnit("")
	assert.Nil(t, err)
	assert.Equal(t, Degrees, unit)

	unit, err = ParseAngleUnit("rad")
	assert.Nil(t, err)
	assert.Equal(t, Radians, unit)

	_, err = ParseAngleUnit("gradians")
	assert.NotNil(t, err)
}
