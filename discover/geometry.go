package discover

import (
	"fmt"
	"net/http"
	"strconv"

	"github.com/gorilla/mux"
	"github.com/venicegeo/bf-goes-broker/catalog"
	"github.com/venicegeo/bf-goes-broker/geometry"
	"github.com/venicegeo/bf-goes-broker/goes"
	"github.com/venicegeo/bf-goes-broker/model"
)

// ScanHandler is a handler for /geometry/{satellite}/{instrument}/scan
// @Title scanHandler
// @Description converts geodetic points to fixed-grid scan angles
// @Accept  plain
// @Param   lat     query   string  true    "Comma separated latitudes"
// @Param   lon     query   string  true    "Comma separated longitudes"
// @Param   units   query   string  false   "degrees (default) or radians"
// @Param   gridx   query   string  false   "Comma separated x sample coordinates of a product grid"
// @Param   gridy   query   string  false   "Comma separated y sample coordinates of a product grid"
// @Success 200 {object}  geojson.FeatureCollection
// @Failure 400 {object}  string
// @Failure 422 {object}  string
// @Router /geometry/{satellite}/{instrument}/scan [get]
type ScanHandler struct {
	Context Context
}

// NewScanHandler creates a new handler
func NewScanHandler(ctx Context) *ScanHandler {
	return &ScanHandler{Context: ctx}
}

// ServeHTTP implements the http.Handler interface for the ScanHandler type
func (h ScanHandler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	target, ok := h.Context.resolveGeometry(w, r)
	if !ok {
		return
	}
	lats, err := parseFloatList("lat", r.FormValue("lat"))
	if err != nil {
		h.Context.fail(r, w, "The lat value of "+r.FormValue("lat")+" is invalid", err)
		return
	}
	lons, err := parseFloatList("lon", r.FormValue("lon"))
	if err != nil {
		h.Context.fail(r, w, "The lon value of "+r.FormValue("lon")+" is invalid", err)
		return
	}
	grid, err := parseGrid(r)
	if err != nil {
		h.Context.fail(r, w, "Invalid product grid", err)
		return
	}

	angles, err := geometry.GeodeticToScanAnglesBatch(lats, lons, target.projection, target.unit)
	if err != nil {
		h.Context.fail(r, w, "Could not compute scan angles", inputError(err))
		return
	}

	creators := make([]model.GeoJSONFeatureCreator, len(angles))
	for i, angle := range angles {
		coordinate := target.coordinate(i, model.ScanAngleData{Latitude: lats[i], Longitude: lons[i], X: angle.X, Y: angle.Y})
		if grid != nil {
			col, row, err := grid.Nearest(angle)
			if err != nil {
				h.Context.fail(r, w, fmt.Sprintf("Point %d is not in the product grid", i), err)
				return
			}
			coordinate.Grid = &model.GridIndex{Column: col, Row: row}
		}
		creators[i] = coordinate
	}
	h.Context.write(w, r, model.MultiBrokerResult{FeatureCreators: creators}, false)
}

// GeodeticHandler is a handler for /geometry/{satellite}/{instrument}/geodetic
// @Title geodeticHandler
// @Description converts fixed-grid scan angles (radians) to geodetic points
// @Accept  plain
// @Param   x       query   string  true    "Comma separated east-west scan angles"
// @Param   y       query   string  true    "Comma separated north-south scan angles"
// @Param   units   query   string  false   "Unit of the returned latitude and longitude"
// @Success 200 {object}  geojson.FeatureCollection
// @Failure 400 {object}  string
// @Failure 422 {object}  string
// @Router /geometry/{satellite}/{instrument}/geodetic [get]
type GeodeticHandler struct {
	Context Context
}

// NewGeodeticHandler creates a new handler
func NewGeodeticHandler(ctx Context) *GeodeticHandler {
	return &GeodeticHandler{Context: ctx}
}

// ServeHTTP implements the http.Handler interface for the GeodeticHandler type
func (h GeodeticHandler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	target, ok := h.Context.resolveGeometry(w, r)
	if !ok {
		return
	}
	xs, err := parseFloatList("x", r.FormValue("x"))
	if err != nil {
		h.Context.fail(r, w, "The x value of "+r.FormValue("x")+" is invalid", err)
		return
	}
	ys, err := parseFloatList("y", r.FormValue("y"))
	if err != nil {
		h.Context.fail(r, w, "The y value of "+r.FormValue("y")+" is invalid", err)
		return
	}

	points, err := geometry.ScanAnglesToGeodeticBatch(xs, ys, target.projection, target.unit)
	if err != nil {
		h.Context.fail(r, w, "Could not compute geodetic coordinates", inputError(err))
		return
	}

	creators := make([]model.GeoJSONFeatureCreator, len(points))
	for i, point := range points {
		creators[i] = target.coordinate(i, model.ScanAngleData{Latitude: point.Latitude, Longitude: point.Longitude, X: xs[i], Y: ys[i]})
	}
	h.Context.write(w, r, model.MultiBrokerResult{FeatureCreators: creators}, false)
}

// FieldOfViewHandler is a handler for /geometry/{satellite}/{instrument}/fov
// @Title fieldOfViewHandler
// @Description returns the instrument field of view and an optional domain
// @Accept  plain
// @Param   xmin        query   number  false   "Domain extent, radians; give all four or none"
// @Param   xmax        query   number  false   "Domain extent, radians"
// @Param   ymin        query   number  false   "Domain extent, radians"
// @Param   ymax        query   number  false   "Domain extent, radians"
// @Param   gridx       query   string  false   "Domain x sample coordinates, instead of the bounds"
// @Param   gridy       query   string  false   "Domain y sample coordinates, instead of the bounds"
// @Param   geodetic    query   bool    false   "True: project the rings to longitude/latitude"
// @Param   resolution  query   int     false   "Disk vertices per quarter circle"
// @Success 200 {object}  geojson.FeatureCollection
// @Failure 400 {object}  string
// @Router /geometry/{satellite}/{instrument}/fov [get]
type FieldOfViewHandler struct {
	Context Context
}

// NewFieldOfViewHandler creates a new handler
func NewFieldOfViewHandler(ctx Context) *FieldOfViewHandler {
	return &FieldOfViewHandler{Context: ctx}
}

// ServeHTTP implements the http.Handler interface for the FieldOfViewHandler type
func (h FieldOfViewHandler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	target, ok := h.Context.resolveGeometry(w, r)
	if !ok {
		return
	}

	extent, err := parseExtent(r)
	if err != nil {
		h.Context.fail(r, w, "Invalid domain extent", err)
		return
	}
	geodetic := false
	if raw := r.FormValue("geodetic"); raw != "" {
		if geodetic, err = strconv.ParseBool(raw); err != nil {
			h.Context.badRequest(r, w, "The geodetic value of "+raw+" is invalid", err)
			return
		}
	}
	resolution := geometry.DefaultResolution
	if raw := r.FormValue("resolution"); raw != "" {
		if resolution, err = strconv.Atoi(raw); err != nil || resolution <= 0 {
			h.Context.badRequest(r, w, "The resolution value of "+raw+" is invalid", &catalog.InvalidQueryError{Field: "resolution", Value: raw})
			return
		}
	}

	fov, err := geometry.NewFieldOfView(target.instrument, target.projection, extent, resolution)
	if err != nil {
		h.Context.fail(r, w, "Could not build field of view", inputError(err))
		return
	}
	h.Context.write(w, r, model.FieldOfViewResult{
		Satellite:   target.satellite,
		FieldOfView: fov,
		Projection:  target.projection,
		Geodetic:    geodetic,
	}, false)
}

type geometryTarget struct {
	satellite  string
	instrument geometry.Instrument
	projection geometry.Projection
	unit       geometry.AngleUnit
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

func (c *Context) resolveGeometry(w http.ResponseWriter, r *http.Request) (geometryTarget, bool) {
	vars := mux.Vars(r)
	satellite, err := goes.ResolveSatellite(vars["satellite"])
	if err != nil {
		c.fail(r, w, "Invalid satellite", err)
		return geometryTarget{}, false
	}
	instrument, err := geometry.ParseInstrument(vars["instrument"])
	if err != nil {
		c.badRequest(r, w, err.Error(), err)
		return geometryTarget{}, false
	}
	unit, err := geometry.ParseAngleUnit(r.FormValue("units"))
	if err != nil {
		c.badRequest(r, w, err.Error(), err)
		return geometryTarget{}, false
	}

	projection := goes.Request{Satellite: satellite}.Projection()
	if c.Client != nil {
		projection.FixedEccentricity = c.Client.FixedEccentricity
	}
	return geometryTarget{satellite: satellite, instrument: instrument, projection: projection, unit: unit}, true
}

func parseExtent(r *http.Request) (*geometry.GridExtent, error) {
	names := []string{"xmin", "xmax", "ymin", "ymax"}
	values := make([]float64, len(names))
	given := 0
	for i, name := range names {
		raw := r.FormValue(name)
		if raw == "" {
			continue
		}
		value, err := strconv.ParseFloat(raw, 64)
		if err != nil {
			return nil, &catalog.InvalidQueryError{Field: name, Value: raw}
		}
		values[i] = value
		given++
	}
	grid, err := parseGrid(r)
	if err != nil {
		return nil, err
	}
	if grid != nil {
		if given > 0 {
			return nil, &catalog.InvalidQueryError{Field: "extent", Value: "bounds and grid both given"}
		}
		extent, err := grid.Extent()
		if err != nil {
			return nil, &catalog.InvalidQueryError{Field: "grid", Value: err.Error()}
		}
		return &extent, nil
	}

	switch given {
	case 0:
		return nil, nil
	case len(names):
		return &geometry.GridExtent{XMin: values[0], XMax: values[1], YMin: values[2], YMax: values[3]}, nil
	}
	return nil, &catalog.InvalidQueryError{Field: "extent", Value: fmt.Sprintf("%d of 4 bounds given", given)}
}

// parseGrid reads the optional gridx and gridy sample arrays; both or neither
// must be given
func parseGrid(r *http.Request) (*geometry.Grid, error) {
	rawX, rawY := r.FormValue("gridx"), r.FormValue("gridy")
	if rawX == "" && rawY == "" {
		return nil, nil
	}
	xs, err := parseFloatList("gridx", rawX)
	if err != nil {
		return nil, err
	}
	ys, err := parseFloatList("gridy", rawY)
	if err != nil {
		return nil, err
	}
	return &geometry.Grid{X: xs, Y: ys}, nil
}

// inputError marks plain geometry errors, such as mismatched batch lengths
// or an empty extent, as caller mistakes
func inputError(err error) error {
	if statusFor(err) != http.StatusInternalServerError {
		return err
	}
	return &catalog.InvalidQueryError{Field: "geometry", Value: err.Error()}
}
