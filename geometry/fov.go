package geometry

import (
	"fmt"
	"math"

	"github.com/paulmach/orb"
	"github.com/paulmach/orb/clip"
	"github.com/paulmach/orb/planar"
)

// Field-of-view constants in degrees of scan angle. The imager disk is
// shrunk slightly so its edge stays inside the projection domain. The
// lightning mapper lens sees a slightly widened disk cut by a square.
const (
	ABIFullDiskDegrees  = 17.4
	ABIReductionDegrees = 0.06
	GLMFullDiskDegrees  = 16
	GLMExpansionDegrees = 0.15
	GLMSquareDegrees    = 15

	// DefaultResolution is the number of disk vertices per quarter circle
	DefaultResolution = 60
)

// FieldOfView is the region an instrument (and optionally a product domain)
// covers, in projection-plane meters centered on the sub-satellite point
type FieldOfView struct {
	Instrument       Instrument
	Disk             orb.Polygon
	Domain           orb.Polygon
	SatelliteHeight  float64
	CentralLongitude float64
}

// NewFieldOfView builds the instrument polygon for p and, for regional
// imager products, the domain polygon covered by extent. The lightning
// mapper has no domain and ignores extent.
func NewFieldOfView(instrument Instrument, p Projection, extent *GridExtent, resolution int) (*FieldOfView, error) {
	if err := p.Validate(); err != nil {
		return nil, err
	}
	if resolution <= 0 {
		resolution = DefaultResolution
	}
	h := p.PerspectivePointHeight

	fov := &FieldOfView{
		Instrument:       instrument,
		SatelliteHeight:  h,
		CentralLongitude: p.LongitudeOfProjectionOrigin,
	}

	switch instrument {
	case ABI:
		radius := radians((ABIFullDiskDegrees-ABIReductionDegrees)/2) * h
		fov.Disk = orb.Polygon{diskRing(radius, resolution)}

		if extent != nil {
			if err := extent.Valid(); err != nil {
				return nil, err
			}
			bound := orb.Bound{
				Min: orb.Point{extent.XMin * h, extent.YMin * h},
				Max: orb.Point{extent.XMax * h, extent.YMax * h},
			}
			fov.Domain = closePolygon(clip.Polygon(bound, fov.Disk.Clone()))
			if len(fov.Domain) == 0 {
				return nil, fmt.Errorf("Grid extent %+v does not intersect the %s field of view", *extent, instrument)
			}
		}
	case GLM:
		radius := radians((GLMFullDiskDegrees+GLMExpansionDegrees)/2) * h
		half := radians(GLMSquareDegrees/2.0) * h
		square := orb.Bound{Min: orb.Point{-half, -half}, Max: orb.Point{half, half}}
		fov.Disk = closePolygon(clip.Polygon(square, orb.Polygon{diskRing(radius, resolution)}))
	default:
		return nil, fmt.Errorf("No field of view defined for instrument `%s`", instrument)
	}

	return fov, nil
}

// Area returns the instrument polygon area in square meters
func (f *FieldOfView) Area() float64 {
	return planar.Area(f.Disk)
}

// DomainArea returns the domain polygon area, or 0 with no domain
func (f *FieldOfView) DomainArea() float64 {
	if f.Domain == nil {
		return 0
	}
	return planar.Area(f.Domain)
}

// Contains reports whether projection-plane point (x, y) in meters falls in
// the domain when there is one, otherwise in the instrument polygon
func (f *FieldOfView) Contains(x, y float64) bool {
	point := orb.Point{x, y}
	if f.Domain != nil {
		return planar.PolygonContains(f.Domain, point)
	}
	return planar.PolygonContains(f.Disk, point)
}

// ContainsScanAngle is Contains for a scan angle in radians
func (f *FieldOfView) ContainsScanAngle(s ScanAngle) bool {
	return f.Contains(s.X*f.SatelliteHeight, s.Y*f.SatelliteHeight)
}

// GeodeticRing projects a projection-plane ring onto the ellipsoid, returning
// [lon, lat] pairs in degrees
func GeodeticRing(ring orb.Ring, p Projection) ([][]float64, error) {
	xs := make([]float64, len(ring))
	ys := make([]float64, len(ring))
	for i, point := range ring {
		angle := ScanAngleFromMeters(point[0], point[1], p)
		xs[i], ys[i] = angle.X, angle.Y
	}

	coords, err := ScanAnglesToGeodeticBatch(xs, ys, p, Degrees)
	if err != nil {
		return nil, err
	}
	out := make([][]float64, len(coords))
	for i, c := range coords {
		out[i] = []float64{c.Longitude, c.Latitude}
	}
	return out, nil
}

// diskRing traces a closed, counter-clockwise circle about the origin
func diskRing(radius float64, resolution int) orb.Ring {
	n := 4 * resolution
	ring := make(orb.Ring, 0, n+1)
	for i := 0; i < n; i++ {
		theta := 2 * math.Pi * float64(i) / float64(n)
		ring = append(ring, orb.Point{radius * math.Cos(theta), radius * math.Sin(theta)})
	}
	return append(ring, ring[0])
}

func closePolygon(p orb.Polygon) orb.Polygon {
	for i, ring := range p {
		if len(ring) > 0 && !ring.Closed() {
			p[i] = append(ring, ring[0])
		}
	}
	return p
}

func radians(deg float64) float64 {
	return deg * math.Pi / 180
}
