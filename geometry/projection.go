// Package geometry implements the GOES-R fixed grid: conversions between
// scan angles and geodetic coordinates on the reference ellipsoid, and the
// field-of-view boundaries of the imager and the lightning mapper.
package geometry

import (
	"fmt"
	"math"
	"strings"
)

// Instrument identifies which sensor a product came from
type Instrument string

// Recognized instruments
const (
	ABI Instrument = "ABI"
	GLM Instrument = "GLM"
)

// ParseInstrument accepts instrument names and product names such as
// "ABI-L2-MCMIPC" or "GLM-L2-LCFA"
func ParseInstrument(name string) (Instrument, error) {
	upper := strings.ToUpper(name)
	switch {
	case strings.HasPrefix(upper, string(ABI)):
		return ABI, nil
	case strings.HasPrefix(upper, string(GLM)):
		return GLM, nil
	}
	return "", fmt.Errorf("Unknown instrument `%s`, expected ABI or GLM", name)
}

// GRS80Eccentricity is the first eccentricity of the GRS80 ellipsoid
const GRS80Eccentricity = 0.0818191910435

// Projection holds the fixed-grid projection parameters of one product
// family. Distances are meters, the origin longitude is degrees.
type Projection struct {
	SemiMajorAxis               float64
	SemiMinorAxis               float64
	InverseFlattening           float64
	PerspectivePointHeight      float64
	LongitudeOfProjectionOrigin float64
	SweepAngleAxis              string

	// FixedEccentricity makes the inverse transform use GRS80Eccentricity
	// instead of the eccentricity implied by the two axes.
	FixedEccentricity bool
}

// GOESEast and GOESWest are the nominal operational projections. Product
// metadata should be preferred when available.
var (
	GOESEast = Projection{
		SemiMajorAxis:               6378137,
		SemiMinorAxis:               6356752.31414,
		InverseFlattening:           298.2572221,
		PerspectivePointHeight:      35786023,
		LongitudeOfProjectionOrigin: -75,
		SweepAngleAxis:              "x",
	}
	GOESWest = Projection{
		SemiMajorAxis:               6378137,
		SemiMinorAxis:               6356752.31414,
		InverseFlattening:           298.2572221,
		PerspectivePointHeight:      35786023,
		LongitudeOfProjectionOrigin: -137,
		SweepAngleAxis:              "x",
	}
)

// SatelliteHeight is the distance from the ellipsoid center to the satellite
func (p Projection) SatelliteHeight() float64 {
	return p.PerspectivePointHeight + p.SemiMajorAxis
}

// Eccentricity returns the first eccentricity used by the inverse transform
func (p Projection) Eccentricity() float64 {
	if p.FixedEccentricity {
		return GRS80Eccentricity
	}
	return math.Sqrt(1 - (p.SemiMinorAxis*p.SemiMinorAxis)/(p.SemiMajorAxis*p.SemiMajorAxis))
}

// axisRatio is r_eq²/r_pol²
func (p Projection) axisRatio() float64 {
	return (p.SemiMajorAxis * p.SemiMajorAxis) / (p.SemiMinorAxis * p.SemiMinorAxis)
}

// Validate checks that the parameters describe a physical geometry
func (p Projection) Validate() error {
	switch {
	case p.SemiMajorAxis <= 0 || p.SemiMinorAxis <= 0:
		return fmt.Errorf("Ellipsoid axes must be positive: semi-major=%v semi-minor=%v", p.SemiMajorAxis, p.SemiMinorAxis)
	case p.SemiMinorAxis > p.SemiMajorAxis:
		return fmt.Errorf("Semi-minor axis %v exceeds semi-major axis %v", p.SemiMinorAxis, p.SemiMajorAxis)
	case p.PerspectivePointHeight <= 0:
		return fmt.Errorf("Perspective point height must be positive: %v", p.PerspectivePointHeight)
	case math.Abs(p.LongitudeOfProjectionOrigin) > 180:
		return fmt.Errorf("Longitude of projection origin out of range: %v", p.LongitudeOfProjectionOrigin)
	}
	return nil
}

// attributeNames maps a product family's metadata attribute names onto
// Projection fields. The lightning mapper reports its height in kilometers.
type attributeNames struct {
	semiMajor, semiMinor, inverseFlattening string
	height                                  string
	heightScale                             float64
	longitude                               string
}

var instrumentAttributes = map[Instrument]attributeNames{
	ABI: {
		semiMajor:         "semi_major_axis",
		semiMinor:         "semi_minor_axis",
		inverseFlattening: "inverse_flattening",
		height:            "perspective_point_height",
		heightScale:       1,
		longitude:         "longitude_of_projection_origin",
	},
	GLM: {
		semiMajor:         "semi_major_axis",
		semiMinor:         "semi_minor_axis",
		inverseFlattening: "inverse_flattening",
		height:            "nominal_satellite_height",
		heightScale:       1000,
		longitude:         "lon_field_of_view",
	},
}

// ProjectionFromAttributes builds a Projection from the projection
// attributes of a product file (goes_imager_projection for the imager,
// goes_lat_lon_projection plus the global nominal height for the mapper).
func ProjectionFromAttributes(instrument Instrument, attrs map[string]float64) (Projection, error) {
	names, ok := instrumentAttributes[instrument]
	if !ok {
		return Projection{}, fmt.Errorf("No projection attributes known for instrument `%s`", instrument)
	}

	lookup := func(key string) (float64, error) {
		value, ok := attrs[key]
		if !ok {
			return 0, fmt.Errorf("Missing projection attribute `%s` for %s", key, instrument)
		}
		return value, nil
	}

	var (
		p   = Projection{SweepAngleAxis: "x"}
		err error
	)
	if p.SemiMajorAxis, err = lookup(names.semiMajor); err != nil {
		return Projection{}, err
	}
	if p.SemiMinorAxis, err = lookup(names.semiMinor); err != nil {
		return Projection{}, err
	}
	if p.PerspectivePointHeight, err = lookup(names.height); err != nil {
		return Projection{}, err
	}
	p.PerspectivePointHeight *= names.heightScale
	if p.LongitudeOfProjectionOrigin, err = lookup(names.longitude); err != nil {
		return Projection{}, err
	}
	if invf, ok := attrs[names.inverseFlattening]; ok {
		p.InverseFlattening = invf
	} else if p.SemiMajorAxis != p.SemiMinorAxis {
		p.InverseFlattening = p.SemiMajorAxis / (p.SemiMajorAxis - p.SemiMinorAxis)
	}

	return p, p.Validate()
}
