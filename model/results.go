package model

import (
	"encoding/json"
	"fmt"
	"strings"
	"time"

	"github.com/paulmach/orb"
	"github.com/pkg/errors"
	"github.com/venicegeo/bf-goes-broker/catalog"
	"github.com/venicegeo/bf-goes-broker/geometry"
	"github.com/venicegeo/geojson-go/geojson"
)

// BasicBrokerResult holds the fields common to all bf-goes-broker single results
type BasicBrokerResult struct {
	ID           string
	Geometry     interface{}
	AcquiredDate time.Time
	SensorName   string
	FileFormat   BrokerFileFormat
}

// GeoJSONFeature implements the GeoJSONFeatureCreator interface
func (br BasicBrokerResult) GeoJSONFeature() (*geojson.Feature, error) {
	f := geojson.NewFeature(br.Geometry, br.ID, map[string]interface{}{
		"acquiredDate": FormatTime(br.AcquiredDate),
		"sensorName":   br.SensorName,
		"fileFormat":   string(br.FileFormat),
	})
	if br.Geometry != nil {
		f.Bbox = f.ForceBbox()
	}
	return f, nil
}

// ObservationResult represents one observation file, plus optional archive,
// download and single-point data
type ObservationResult struct {
	BasicBrokerResult
	Record catalog.ObservationRecord
	*ArchiveLocation
	*LocalFileData
	*ScanAngleData
}

// NewObservationResult fills the basic result fields from a record
func NewObservationResult(record catalog.ObservationRecord) ObservationResult {
	return ObservationResult{
		BasicBrokerResult: BasicBrokerResult{
			ID:           record.FileName(),
			AcquiredDate: record.Start,
			SensorName:   strings.SplitN(record.Product, "-", 2)[0],
			FileFormat:   NetCDF,
		},
		Record: record,
	}
}

// GeoJSONFeature implements the GeoJSONFeatureCreator interface
func (result ObservationResult) GeoJSONFeature() (*geojson.Feature, error) {
	feature, err := result.BasicBrokerResult.GeoJSONFeature()
	if err != nil {
		return nil, err
	}

	record := result.Record
	feature.Properties["satellite"] = record.Satellite
	feature.Properties["product"] = record.Product
	feature.Properties["path"] = record.Path
	feature.Properties["startTime"] = FormatTime(record.Start)
	feature.Properties["endTime"] = FormatTime(record.End)
	feature.Properties["creationTime"] = FormatTime(record.Creation)
	if sector := record.Sector(); sector != catalog.SectorNone {
		feature.Properties["sector"] = string(sector)
	}
	if record.Mode > 0 {
		feature.Properties["mode"] = record.Mode
	}
	if record.HasBand() {
		feature.Properties["band"] = record.Band
	}

	mixins := []GeoJSONFeatureMixin{}
	if result.ArchiveLocation != nil {
		mixins = append(mixins, result.ArchiveLocation)
	}
	if result.LocalFileData != nil {
		mixins = append(mixins, result.LocalFileData)
	}
	if result.ScanAngleData != nil {
		mixins = append(mixins, result.ScanAngleData)
	}
	for _, mixin := range mixins {
		if err = mixin.Apply(feature); err != nil {
			return nil, err
		}
	}

	return feature, nil
}

// FieldOfViewResult renders an instrument field of view, and its product
// domain when there is one, as polygon features. With Geodetic set the rings
// are projected to longitude/latitude; otherwise they stay in fixed-grid
// meters.
type FieldOfViewResult struct {
	Satellite   string
	FieldOfView *geometry.FieldOfView
	Projection  geometry.Projection
	Geodetic    bool
}

// GeoJSONFeatureCollection implements the GeoJSONFeatureCollectionCreator interface
func (result FieldOfViewResult) GeoJSONFeatureCollection() (*geojson.FeatureCollection, error) {
	fov := result.FieldOfView
	if fov == nil {
		return nil, errors.New("No field of view to render")
	}

	features := []*geojson.Feature{}
	disk, err := result.polygonFeature("fov", fov.Disk, fov.Area())
	if err != nil {
		return nil, err
	}
	features = append(features, disk)

	if fov.Domain != nil {
		domain, err := result.polygonFeature("domain", fov.Domain, fov.DomainArea())
		if err != nil {
			return nil, err
		}
		features = append(features, domain)
	}
	return geojson.NewFeatureCollection(features), nil
}

func (result FieldOfViewResult) polygonFeature(id string, polygon orb.Polygon, area float64) (*geojson.Feature, error) {
	coordinates := make([][][]float64, len(polygon))
	crs := FixedGridCRS
	for i, ring := range polygon {
		if result.Geodetic {
			lonLat, err := geometry.GeodeticRing(ring, result.Projection)
			if err != nil {
				return nil, errors.Wrapf(err, "project %s ring", id)
			}
			coordinates[i] = lonLat
			crs = "EPSG:4326"
			continue
		}
		coordinates[i] = make([][]float64, len(ring))
		for j, point := range ring {
			coordinates[i][j] = []float64{point[0], point[1]}
		}
	}

	feature := geojson.NewFeature(geojson.NewPolygon(coordinates), id, map[string]interface{}{
		"satellite":        result.Satellite,
		"instrument":       string(result.FieldOfView.Instrument),
		"satelliteHeight":  result.FieldOfView.SatelliteHeight,
		"centralLongitude": result.FieldOfView.CentralLongitude,
		"area":             area,
		"crs":              crs,
	})
	feature.Bbox = feature.ForceBbox()
	return feature, nil
}

// CoordinateResult is one converted point: a geodetic location and the scan
// angles that observe it. It has no geometry of its own.
type CoordinateResult struct {
	Index      int
	Satellite  string
	Instrument geometry.Instrument
	Projection geometry.Projection
	ScanAngleData
	Grid *GridIndex
}

// GeoJSONFeature implements the GeoJSONFeatureCreator interface
func (result CoordinateResult) GeoJSONFeature() (*geojson.Feature, error) {
	x, y := geometry.ScanAngle{X: result.X, Y: result.Y}.Meters(result.Projection)
	feature := geojson.NewFeature(nil, fmt.Sprintf("point-%d", result.Index), map[string]interface{}{
		"satellite":        result.Satellite,
		"instrument":       string(result.Instrument),
		"centralLongitude": result.Projection.LongitudeOfProjectionOrigin,
		"projectionX":      x,
		"projectionY":      y,
	})
	if err := result.ScanAngleData.Apply(feature); err != nil {
		return nil, err
	}
	if result.Grid != nil {
		if err := result.Grid.Apply(feature); err != nil {
			return nil, err
		}
	}
	return feature, nil
}

// MultiBrokerResult is a container type for bundling multiple results together,
// e.g. as results from a search endpoint
type MultiBrokerResult struct {
	FeatureCreators []GeoJSONFeatureCreator
}

// GeoJSONFeatureCollection implements the GeoJSONFeatureCollectionCreator interface
func (result MultiBrokerResult) GeoJSONFeatureCollection() (*geojson.FeatureCollection, error) {
	var err error
	features := make([]*geojson.Feature, len(result.FeatureCreators))
	for i, creator := range result.FeatureCreators {
		features[i], err = creator.GeoJSONFeature()
		if err != nil {
			return nil, err
		}
	}

	return geojson.NewFeatureCollection(features), nil
}

// MarshalCollection renders a collection and adds the top-level "noData"
// member that tells callers an empty result was not a failure
func MarshalCollection(creator GeoJSONFeatureCollectionCreator, noData bool) ([]byte, error) {
	fc, err := creator.GeoJSONFeatureCollection()
	if err != nil {
		return nil, err
	}

	var document map[string]interface{}
	if err = json.Unmarshal([]byte(fc.String()), &document); err != nil {
		return nil, errors.Wrap(err, "re-read feature collection")
	}
	document["noData"] = noData
	return json.Marshal(document)
}
