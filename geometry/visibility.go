package geometry

import "math"

// nearRoot returns the smaller root of a·r² + b·r + c = 0, which is where the
// line of sight first meets the ellipsoid. A negative discriminant means the
// line of sight misses.
func nearRoot(a, b, c float64) (float64, bool) {
	if a == 0 {
		return 0, false
	}
	discriminant := b*b - 4*a*c
	if discriminant < 0 || math.IsNaN(discriminant) {
		return 0, false
	}
	return (-b - math.Sqrt(discriminant)) / (2 * a), true
}

// satelliteFramePoint places a geodetic point (radians) in the satellite
// frame: s_x toward the earth center, s_y east-west, s_z north-south.
func satelliteFramePoint(lat, lon float64, p Projection) (sx, sy, sz float64) {
	lambda0 := Degrees.toRadians(p.LongitudeOfProjectionOrigin)
	e := p.Eccentricity()

	phiC := math.Atan(math.Tan(lat) / p.axisRatio())
	sinPhiC, cosPhiC := math.Sincos(phiC)
	rc := p.SemiMinorAxis / math.Sqrt(1-e*e*cosPhiC*cosPhiC)

	H := p.SatelliteHeight()
	sinDLon, cosDLon := math.Sincos(lon - lambda0)
	sx = H - rc*cosPhiC*cosDLon
	sy = -rc * cosPhiC * sinDLon
	sz = rc * sinPhiC
	return sx, sy, sz
}

// visible is the limb test H(H - s_x) >= s_y² + (r_eq²/r_pol²)s_z²
func visible(sx, sy, sz float64, p Projection) bool {
	H := p.SatelliteHeight()
	return H*(H-sx) >= sy*sy+p.axisRatio()*sz*sz
}

// IsVisible reports whether a geodetic point (in unit) can be seen
func IsVisible(lat, lon float64, p Projection, unit AngleUnit) bool {
	sx, sy, sz := satelliteFramePoint(unit.toRadians(lat), unit.toRadians(lon), p)
	return visible(sx, sy, sz, p)
}
