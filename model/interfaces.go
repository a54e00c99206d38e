package model

import "github.com/venicegeo/geojson-go/geojson"

// BrokerFileFormat is an enum type for recognized observation file types
type BrokerFileFormat string

// NetCDF corresponds to the .nc files the GOES-R archive serves
const NetCDF BrokerFileFormat = "netcdf"

// GeoJSONFeatureCreator is an interface for data that can convert itself to a GeoJSON feature
type GeoJSONFeatureCreator interface {
	GeoJSONFeature() (*geojson.Feature, error)
}

// GeoJSONFeatureCollectionCreator is an interface for data that can convert itself to a GeoJSON feature collection
type GeoJSONFeatureCollectionCreator interface {
	GeoJSONFeatureCollection() (*geojson.FeatureCollection, error)
}

// GeoJSONFeatureMixin is an interface for data that can be used to augment an existing GeoJSON feature
type GeoJSONFeatureMixin interface {
	Apply(*geojson.Feature) error
}
