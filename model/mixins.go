package model

import (
	"github.com/venicegeo/geojson-go/geojson"
)

// LocalFileData is a mixin describing where a downloaded observation lives
type LocalFileData struct {
	LocalPath string
	Skipped   bool
}

// Apply implements the GeoJSONFeatureMixin interface
func (lfd LocalFileData) Apply(feature *geojson.Feature) error {
	feature.Properties["localPath"] = lfd.LocalPath
	feature.Properties["alreadyPresent"] = lfd.Skipped
	return nil
}

// ScanAngleData is a mixin carrying the target of a single-point query and
// the scan angles (radians) that observe it
type ScanAngleData struct {
	Latitude  float64
	Longitude float64
	X         float64
	Y         float64
}

// Apply implements the GeoJSONFeatureMixin interface
func (sad ScanAngleData) Apply(feature *geojson.Feature) error {
	feature.Properties["latitude"] = sad.Latitude
	feature.Properties["longitude"] = sad.Longitude
	feature.Properties["scanX"] = sad.X
	feature.Properties["scanY"] = sad.Y
	return nil
}

// GridIndex is a mixin locating a point in a product's sample grid
type GridIndex struct {
	Column int
	Row    int
}

// Apply implements the GeoJSONFeatureMixin interface
func (gi GridIndex) Apply(feature *geojson.Feature) error {
	feature.Properties["column"] = gi.Column
	feature.Properties["row"] = gi.Row
	return nil
}

// ArchiveLocation is a mixin pointing at the object in the public archive
type ArchiveLocation struct {
	Bucket string
	URL    string
}

// Apply implements the GeoJSONFeatureMixin interface
func (al ArchiveLocation) Apply(feature *geojson.Feature) error {
	feature.Properties["bucket"] = al.Bucket
	feature.Properties["location"] = al.URL
	return nil
}
