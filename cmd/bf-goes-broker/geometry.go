package main

import (
	"strconv"
	"strings"

	"github.com/pkg/errors"
	"github.com/venicegeo/bf-goes-broker/catalog"
	"github.com/venicegeo/bf-goes-broker/geometry"
	"github.com/venicegeo/bf-goes-broker/goes"
	"github.com/venicegeo/bf-goes-broker/model"
	"github.com/venicegeo/bf-goes-broker/util"
	cli "gopkg.in/urfave/cli.v1"
)

type geometryTarget struct {
	satellite  string
	instrument geometry.Instrument
	projection geometry.Projection
	unit       geometry.AngleUnit
}

func resolveGeometry(c *cli.Context) (geometryTarget, error) {
	satellite, err := goes.ResolveSatellite(c.String("satellite"))
	if err != nil {
		return geometryTarget{}, err
	}
	instrument, err := geometry.ParseInstrument(c.String("instrument"))
	if err != nil {
		return geometryTarget{}, err
	}
	unit, err := geometry.ParseAngleUnit(c.String("units"))
	if err != nil {
		return geometryTarget{}, err
	}
	projection := goes.Request{Satellite: satellite}.Projection()
	projection.FixedEccentricity = util.IsFixedEccentricity()
	return geometryTarget{satellite: satellite, instrument: instrument, projection: projection, unit: unit}, nil
}

func (t geometryTarget) coordinate(index int, scan model.ScanAngleData) model.CoordinateResult {
	return model.CoordinateResult{
		Index:         index,
		Satellite:     t.satellite,
		Instrument:    t.instrument,
		Projection:    t.projection,
		ScanAngleData: scan,
	}
}

func parseFloats(field, raw string) ([]float64, error) {
	tokens := strings.Split(raw, ",")
	values := make([]float64, len(tokens))
	for i, token := range tokens {
		value, err := strconv.ParseFloat(strings.TrimSpace(token), 64)
		if err != nil {
			return nil, &catalog.InvalidQueryError{Field: field, Value: token}
		}
		values[i] = value
	}
	return values, nil
}

// parseGrid reads --grid-x and --grid-y; both or neither must be given
func parseGrid(c *cli.Context) (*geometry.Grid, error) {
	rawX, rawY := c.String("grid-x"), c.String("grid-y")
	if rawX == "" && rawY == "" {
		return nil, nil
	}
	if rawX == "" || rawY == "" {
		return nil, &catalog.InvalidQueryError{Field: "grid", Value: "both --grid-x and --grid-y are required"}
	}
	xs, err := parseFloats("grid-x", rawX)
	if err != nil {
		return nil, err
	}
	ys, err := parseFloats("grid-y", rawY)
	if err != nil {
		return nil, err
	}
	return &geometry.Grid{X: xs, Y: ys}, nil
}

func latLonAction(c *cli.Context) error {
	target, err := resolveGeometry(c)
	if err != nil {
		return err
	}
	lats, err := parseFloats("lat", c.String("lat"))
	if err != nil {
		return err
	}
	lons, err := parseFloats("lon", c.String("lon"))
	if err != nil {
		return err
	}
	grid, err := parseGrid(c)
	if err != nil {
		return err
	}

	angles, err := geometry.GeodeticToScanAnglesBatch(lats, lons, target.projection, target.unit)
	if err != nil {
		return err
	}
	creators := make([]model.GeoJSONFeatureCreator, len(angles))
	for i, angle := range angles {
		coordinate := target.coordinate(i, model.ScanAngleData{Latitude: lats[i], Longitude: lons[i], X: angle.X, Y: angle.Y})
		if grid != nil {
			col, row, err := grid.Nearest(angle)
			if err != nil {
				return errors.Wrapf(err, "point %d", i)
			}
			coordinate.Grid = &model.GridIndex{Column: col, Row: row}
		}
		creators[i] = coordinate
	}
	return writeCollection(model.MultiBrokerResult{FeatureCreators: creators}, false)
}

func xyAction(c *cli.Context) error {
	target, err := resolveGeometry(c)
	if err != nil {
		return err
	}
	xs, err := parseFloats("x", c.String("x"))
	if err != nil {
		return err
	}
	ys, err := parseFloats("y", c.String("y"))
	if err != nil {
		return err
	}

	points, err := geometry.ScanAnglesToGeodeticBatch(xs, ys, target.projection, target.unit)
	if err != nil {
		return err
	}
	creators := make([]model.GeoJSONFeatureCreator, len(points))
	for i, point := range points {
		creators[i] = target.coordinate(i, model.ScanAngleData{Latitude: point.Latitude, Longitude: point.Longitude, X: xs[i], Y: ys[i]})
	}
	return writeCollection(model.MultiBrokerResult{FeatureCreators: creators}, false)
}

func fieldOfViewAction(c *cli.Context) error {
	target, err := resolveGeometry(c)
	if err != nil {
		return err
	}

	var extent *geometry.GridExtent
	if raw := c.String("extent"); raw != "" {
		bounds, err := parseFloats("extent", raw)
		if err != nil {
			return err
		}
		if len(bounds) != 4 {
			return &catalog.InvalidQueryError{Field: "extent", Value: raw}
		}
		extent = &geometry.GridExtent{XMin: bounds[0], XMax: bounds[1], YMin: bounds[2], YMax: bounds[3]}
	}
	grid, err := parseGrid(c)
	if err != nil {
		return err
	}
	if grid != nil {
		if extent != nil {
			return &catalog.InvalidQueryError{Field: "extent", Value: "--extent and a grid both given"}
		}
		gridExtent, err := grid.Extent()
		if err != nil {
			return errors.Wrap(err, "grid")
		}
		extent = &gridExtent
	}

	fov, err := geometry.NewFieldOfView(target.instrument, target.projection, extent, c.Int("resolution"))
	if err != nil {
		return err
	}
	return writeCollection(model.FieldOfViewResult{
		Satellite:   target.satellite,
		FieldOfView: fov,
		Projection:  target.projection,
		Geodetic:    c.Bool("geodetic"),
	}, false)
}
