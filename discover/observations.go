package discover

import (
	"net/http"
	"time"

	"github.com/gorilla/mux"
	"github.com/venicegeo/bf-goes-broker/catalog"
	"github.com/venicegeo/bf-goes-broker/goes"
	"github.com/venicegeo/bf-goes-broker/model"
)

// TimeRangeHandler is a handler for /goes/{satellite}/{product}/timerange
// @Title timeRangeHandler
// @Description lists the observations that start and end inside a window
// @Accept  plain
// @Param   start   query   string  false   "Window start; required unless recent is given"
// @Param   end     query   string  false   "Window end; required unless recent is given"
// @Param   recent  query   string  false   "A duration such as 30m, ending now"
// @Param   domain  query   string  false   "Imager domain: C, F, M, M1 or M2"
// @Param   bands   query   string  false   "Comma separated ABI bands"
// @Success 200 {object}  geojson.FeatureCollection
// @Failure 400 {object}  string
// @Router /goes/{satellite}/{product}/timerange [get]
type TimeRangeHandler struct {
	Context Context
}

// NewTimeRangeHandler creates a new handler
func NewTimeRangeHandler(ctx Context) *TimeRangeHandler {
	return &TimeRangeHandler{Context: ctx}
}

// ServeHTTP implements the http.Handler interface for the TimeRangeHandler type
func (h TimeRangeHandler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	req, ok := h.Context.resolve(w, r)
	if !ok {
		return
	}

	var selection catalog.Selection
	var err error
	if recent := r.FormValue("recent"); recent != "" {
		window, parseErr := time.ParseDuration(recent)
		if parseErr != nil || window <= 0 {
			h.Context.badRequest(r, w, "The recent value of "+recent+" is invalid", parseErr)
			return
		}
		selection, err = h.Context.Client.Recent(r.Context(), req, window)
	} else {
		start, parseErr := model.ParseQueryTime(r.FormValue("start"))
		if parseErr != nil {
			h.Context.badRequest(r, w, "The start value of "+r.FormValue("start")+" is invalid", parseErr)
			return
		}
		end, parseErr := model.ParseQueryTime(r.FormValue("end"))
		if parseErr != nil {
			h.Context.badRequest(r, w, "The end value of "+r.FormValue("end")+" is invalid", parseErr)
			return
		}
		selection, err = h.Context.Client.TimeRange(r.Context(), req, start, end)
	}
	if err != nil {
		h.Context.fail(r, w, "Error searching for observations", err)
		return
	}
	h.Context.writeSelection(w, r, selection)
}

// NearestTimeHandler is a handler for /goes/{satellite}/{product}/nearesttime
// @Title nearestTimeHandler
// @Description finds the observations starting closest to a time
// @Accept  plain
// @Param   attime  query   string  true    "The target time"
// @Param   within  query   string  false   "How far from attime to look, e.g. 1h"
// @Param   lat     query   number  false   "Latitude of a point that must be visible"
// @Param   lon     query   number  false   "Longitude of a point that must be visible"
// @Param   domain  query   string  false   "Imager domain: C, F, M, M1 or M2"
// @Param   bands   query   string  false   "Comma separated ABI bands"
// @Success 200 {object}  geojson.FeatureCollection
// @Failure 400 {object}  string
// @Failure 422 {object}  string
// @Router /goes/{satellite}/{product}/nearesttime [get]
type NearestTimeHandler struct {
	Context Context
}

// NewNearestTimeHandler creates a new handler
func NewNearestTimeHandler(ctx Context) *NearestTimeHandler {
	return &NearestTimeHandler{Context: ctx}
}

// ServeHTTP implements the http.Handler interface for the NearestTimeHandler type
func (h NearestTimeHandler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	req, ok := h.Context.resolve(w, r)
	if !ok {
		return
	}

	attime, err := model.ParseQueryTime(r.FormValue("attime"))
	if err != nil {
		h.Context.badRequest(r, w, "The attime value of "+r.FormValue("attime")+" is invalid", err)
		return
	}
	withinRaw := r.FormValue("within")
	if withinRaw == "" {
		withinRaw = h.Context.Defaults.Within
	}
	within, err := time.ParseDuration(withinRaw)
	if err != nil {
		h.Context.badRequest(r, w, "The within value of "+withinRaw+" is invalid", err)
		return
	}

	if r.FormValue("lat") == "" && r.FormValue("lon") == "" {
		selection, err := h.Context.Client.NearestTime(r.Context(), req, attime, within)
		if err != nil {
			h.Context.fail(r, w, "Error searching for observations", err)
			return
		}
		h.Context.writeSelection(w, r, selection)
		return
	}

	lat, err := parseFloatList("lat", r.FormValue("lat"))
	if err != nil || len(lat) != 1 {
		h.Context.badRequest(r, w, "The lat value of "+r.FormValue("lat")+" is invalid", err)
		return
	}
	lon, err := parseFloatList("lon", r.FormValue("lon"))
	if err != nil || len(lon) != 1 {
		h.Context.badRequest(r, w, "The lon value of "+r.FormValue("lon")+" is invalid", err)
		return
	}
	point, err := h.Context.Client.Point(r.Context(), req, lat[0], lon[0], attime, within)
	if err != nil {
		h.Context.fail(r, w, "Error searching for observations", err)
		return
	}
	scan := &model.ScanAngleData{Latitude: point.Latitude, Longitude: point.Longitude, X: point.ScanAngle.X, Y: point.ScanAngle.Y}
	h.Context.writeResults(w, r, point.Selection, scan)
}

// LatestHandler is a handler for /goes/{satellite}/{product}/latest
// @Title latestHandler
// @Description finds the most recent observations
// @Accept  plain
// @Param   domain  query   string  false   "Imager domain: C, F, M, M1 or M2"
// @Param   bands   query   string  false   "Comma separated ABI bands"
// @Success 200 {object}  geojson.FeatureCollection
// @Failure 400 {object}  string
// @Router /goes/{satellite}/{product}/latest [get]
type LatestHandler struct {
	Context Context
}

// NewLatestHandler creates a new handler
func NewLatestHandler(ctx Context) *LatestHandler {
	return &LatestHandler{Context: ctx}
}

// ServeHTTP implements the http.Handler interface for the LatestHandler type
func (h LatestHandler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	req, ok := h.Context.resolve(w, r)
	if !ok {
		return
	}
	selection, err := h.Context.Client.Latest(r.Context(), req)
	if err != nil {
		h.Context.fail(r, w, "Error searching for observations", err)
		return
	}
	h.Context.writeSelection(w, r, selection)
}

// resolve reads the satellite, product, domain and bands of a request,
// writing a 400 response when they do not resolve
func (c *Context) resolve(w http.ResponseWriter, r *http.Request) (goes.Request, bool) {
	vars := mux.Vars(r)
	bands, err := goes.ParseBands(r.FormValue("bands"))
	if err != nil {
		c.fail(r, w, "The bands value of "+r.FormValue("bands")+" is invalid", err)
		return goes.Request{}, false
	}
	domain := r.FormValue("domain")
	if domain == "" {
		domain = c.Defaults.Domain
	}
	req, err := goes.Resolve(vars["satellite"], vars["product"], domain, bands)
	if err != nil {
		c.fail(r, w, "Invalid observation query", err)
		return goes.Request{}, false
	}
	return req, true
}

func (c *Context) writeSelection(w http.ResponseWriter, r *http.Request, selection catalog.Selection) {
	c.writeResults(w, r, selection, nil)
}

func (c *Context) writeResults(w http.ResponseWriter, r *http.Request, selection catalog.Selection, scan *model.ScanAngleData) {
	creators := make([]model.GeoJSONFeatureCreator, len(selection))
	for i, record := range selection {
		result := model.NewObservationResult(record)
		if c.Locate != nil {
			bucket, objectURL := c.Locate(record.Satellite, record.Path)
			result.ArchiveLocation = &model.ArchiveLocation{Bucket: bucket, URL: objectURL}
		}
		result.ScanAngleData = scan
		creators[i] = result
	}
	c.write(w, r, model.MultiBrokerResult{FeatureCreators: creators}, selection.NoData())
}

func (c *Context) write(w http.ResponseWriter, r *http.Request, creator model.GeoJSONFeatureCollectionCreator, noData bool) {
	body, err := model.MarshalCollection(creator, noData)
	if err != nil {
		c.fail(r, w, "Error converting to feature collection", err)
		return
	}
	w.Header().Set("Content-Type", "application/geo+json")
	w.Write(body)
}
