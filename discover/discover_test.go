package discover

import (
	"context"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/gorilla/mux"
	"github.com/pkg/errors"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/stretchr/testify/assert"
	"github.com/venicegeo/bf-goes-broker/catalog"
	"github.com/venicegeo/bf-goes-broker/geometry"
	"github.com/venicegeo/bf-goes-broker/goes"
	"github.com/venicegeo/bf-goes-broker/observability"
	"github.com/venicegeo/bf-goes-broker/util"
)

// General test mocks and utils

type mockSource struct {
	listing []string
	err     error
}

func (s *mockSource) Listing(ctx context.Context, satellite, product string, start, end time.Time) ([]string, error) {
	return s.listing, s.err
}

const mcmipPrefix = "ABI-L2-MCMIPC/2021/001/17/"

var mockListing = []string{
	mcmipPrefix + "OR_ABI-L2-MCMIPC-M6_G16_s20210011701172_e20210011703545_c20210011704099.nc",
	mcmipPrefix + "OR_ABI-L2-MCMIPC-M6_G16_s20210011706172_e20210011708545_c20210011709099.nc",
	mcmipPrefix + "OR_ABI-L2-MCMIPC-M6_G16_s20210011711172_e20210011713545_c20210011714099.nc",
	mcmipPrefix + "OR_ABI-L2-MCMIPC-M6_G16_s20210011716172_e20210011718545_c20210011719099.nc",
}

type response struct {
	code     int
	body     string
	document map[string]interface{}
}

func (r response) features() []interface{} {
	features, _ := r.document["features"].([]interface{})
	return features
}

func (r response) property(index int, name string) interface{} {
	feature := r.features()[index].(map[string]interface{})
	return feature["properties"].(map[string]interface{})[name]
}

func newMockRouter(t *testing.T, source goes.Source) (*mux.Router, *observability.Collector) {
	metrics, err := observability.NewCollector(prometheus.NewRegistry())
	assert.Nil(t, err)
	ctx := Context{
		Client: &goes.Client{
			Source: source,
			Now:    func() time.Time { return time.Date(2021, 1, 1, 17, 30, 0, 0, time.UTC) },
		},
		Defaults: util.DefaultQuerySettings(),
		Locate: func(satellite, key string) (string, string) {
			return satellite, "https://example.test/" + satellite + "/" + key
		},
	}
	return NewRouter(ctx, metrics), metrics
}

func get(t *testing.T, router http.Handler, target string) response {
	recorder := httptest.NewRecorder()
	router.ServeHTTP(recorder, httptest.NewRequest(http.MethodGet, target, nil))
	body, _ := io.ReadAll(recorder.Result().Body)

	resp := response{code: recorder.Code, body: string(body)}
	if recorder.Code == http.StatusOK && strings.HasPrefix(resp.body, "{") {
		assert.Nil(t, json.Unmarshal(body, &resp.document))
	}
	return resp
}

// Actual tests

func TestHealthAndMetrics(t *testing.T) {
	router, _ := newMockRouter(t, &mockSource{listing: mockListing})

	health := get(t, router, "/")
	get(t, router, "/goes/16/ABI-L2-MCMIP/latest?domain=C")
	metrics := get(t, router, "/metrics")

	assert.Equal(t, "OK", health.body)
	assert.Equal(t, http.StatusOK, metrics.code)
	assert.True(t, strings.Contains(metrics.body, `goes_http_requests_total{code="200",method="GET",route="/goes/{satellite}/{product}/latest"} 1`))
}

func TestTimeRange(t *testing.T) {
	// Mock
	router, _ := newMockRouter(t, &mockSource{listing: mockListing})

	// Tested code
	resp := get(t, router, "/goes/G16/ABI-L2-MCMIP/timerange?start=2021-01-01T17:00&end=2021-01-01T17:10&domain=C")

	// Asserts
	assert.Equal(t, http.StatusOK, resp.code)
	assert.Equal(t, false, resp.document["noData"])
	assert.Len(t, resp.features(), 2)
	assert.Equal(t, "2021-01-01T17:01:17.2Z", resp.property(0, "startTime"))
	assert.Equal(t, "noaa-goes16", resp.property(0, "bucket"))
	assert.Equal(t, "https://example.test/noaa-goes16/"+mockListing[1], resp.property(1, "location"))
}

func TestTimeRange_NoData(t *testing.T) {
	router, _ := newMockRouter(t, &mockSource{listing: mockListing})

	resp := get(t, router, "/goes/16/ABI-L2-MCMIPC/timerange?start=2021-01-01T16:00&end=2021-01-01T16:30")

	assert.Equal(t, http.StatusOK, resp.code)
	assert.Equal(t, true, resp.document["noData"])
	assert.Len(t, resp.features(), 0)
}

func TestTimeRange_BadRequests(t *testing.T) {
	router, _ := newMockRouter(t, &mockSource{listing: mockListing})

	for _, target := range []string{
		"/goes/16/ABI-L2-MCMIP/timerange?start=yesterday&end=2021-01-01T17:10",
		"/goes/16/ABI-L2-MCMIP/timerange?start=2021-01-01T17:10&end=2021-01-01T17:00",
		"/goes/16/ABI-L2-MCMIP/timerange?recent=-5m",
		"/goes/99/ABI-L2-MCMIP/timerange?recent=5m",
		"/goes/16/ABI-L2-MCMIP/timerange?recent=5m&domain=Q",
		"/goes/16/ABI-L2-MCMIP/timerange?recent=5m&bands=x",
		"/goes/16/ABI-L2-MCMIP/timerange?recent=5m&bands=17",
	} {
		resp := get(t, router, target)
		assert.Equal(t, http.StatusBadRequest, resp.code, target)
	}
}

func TestNearestTime(t *testing.T) {
	router, _ := newMockRouter(t, &mockSource{listing: mockListing})

	resp := get(t, router, "/goes/EAST/ABI-L2-MCMIP/nearesttime?attime=2021-01-01T17:07:00Z")

	assert.Equal(t, http.StatusOK, resp.code)
	assert.Len(t, resp.features(), 1)
	assert.Equal(t, mockListing[1], resp.property(0, "path"))
}

func TestNearestTime_Point(t *testing.T) {
	router, _ := newMockRouter(t, &mockSource{listing: mockListing})

	resp := get(t, router, "/goes/16/ABI-L2-MCMIP/nearesttime?attime=2021-01-01T17:12&within=10m&lat=33.846162&lon=-84.690932")

	assert.Equal(t, http.StatusOK, resp.code)
	assert.Len(t, resp.features(), 1)
	assert.InDelta(t, -0.024052, resp.property(0, "scanX"), 1e-6)
	assert.InDelta(t, 0.095340, resp.property(0, "scanY"), 1e-6)
}

func TestNearestTime_NotVisible(t *testing.T) {
	router, _ := newMockRouter(t, &mockSource{listing: mockListing})

	resp := get(t, router, "/goes/16/ABI-L2-MCMIP/nearesttime?attime=2021-01-01T17:12&lat=0&lon=105")

	assert.Equal(t, http.StatusUnprocessableEntity, resp.code)
}

func TestNearestTime_OutsideFieldOfView(t *testing.T) {
	router, _ := newMockRouter(t, &mockSource{listing: mockListing})

	resp := get(t, router, "/goes/16/GLM/nearesttime?attime=2021-01-01T17:12&lat=0&lon=-20")

	assert.Equal(t, http.StatusUnprocessableEntity, resp.code)
}

func TestLatest(t *testing.T) {
	router, _ := newMockRouter(t, &mockSource{listing: mockListing})

	resp := get(t, router, "/goes/16/ABIC/latest")

	assert.Equal(t, http.StatusOK, resp.code)
	assert.Len(t, resp.features(), 1)
	assert.Equal(t, mockListing[3], resp.property(0, "path"))
}

func TestLatest_MalformedListing(t *testing.T) {
	listing := append([]string{mcmipPrefix + "OR_ABI-L2-MCMIPC-M6_G16_s2021_e20210011703545_c20210011704099.nc"}, mockListing...)
	router, _ := newMockRouter(t, &mockSource{listing: listing})

	resp := get(t, router, "/goes/16/ABI-L2-MCMIP/latest")

	assert.Equal(t, http.StatusBadGateway, resp.code)
}

func TestLatest_SourceError(t *testing.T) {
	router, _ := newMockRouter(t, &mockSource{err: errors.New("dial tcp: timeout")})

	resp := get(t, router, "/goes/16/ABI-L2-MCMIP/latest")

	assert.Equal(t, http.StatusInternalServerError, resp.code)
	assert.True(t, strings.Contains(resp.body, "dial tcp"))
}

func TestScan(t *testing.T) {
	router, _ := newMockRouter(t, &mockSource{})

	resp := get(t, router, "/geometry/goes-16/ABI/scan?lat=33.846162,0&lon=-84.690932,-75")

	assert.Equal(t, http.StatusOK, resp.code)
	assert.Len(t, resp.features(), 2)
	assert.InDelta(t, -0.024052, resp.property(0, "scanX"), 1e-6)
	assert.InDelta(t, 0.095340, resp.property(0, "scanY"), 1e-6)
	assert.InDelta(t, 0, resp.property(1, "scanX"), 1e-9)
	assert.Equal(t, "noaa-goes16", resp.property(1, "satellite"))
}

func TestScan_Errors(t *testing.T) {
	router, _ := newMockRouter(t, &mockSource{})

	assert.Equal(t, http.StatusUnprocessableEntity, get(t, router, "/geometry/16/ABI/scan?lat=0&lon=105").code)
	assert.Equal(t, http.StatusBadRequest, get(t, router, "/geometry/16/ABI/scan?lat=1,2&lon=3").code)
	assert.Equal(t, http.StatusBadRequest, get(t, router, "/geometry/16/ABI/scan?lat=1&lon=north").code)
	assert.Equal(t, http.StatusBadRequest, get(t, router, "/geometry/16/SUVI/scan?lat=1&lon=2").code)
	assert.Equal(t, http.StatusBadRequest, get(t, router, "/geometry/16/ABI/scan?lat=1&lon=2&units=grad").code)
}

func TestScan_ProductGrid(t *testing.T) {
	router, _ := newMockRouter(t, &mockSource{})
	grid := "gridx=-0.000056,0,0.000056&gridy=0.000056,0,-0.000056"

	nadir := get(t, router, "/geometry/16/ABI/scan?lat=0&lon=-75&"+grid)
	outside := get(t, router, "/geometry/16/ABI/scan?lat=0,10&lon=-75,-75&"+grid)
	halfGrid := get(t, router, "/geometry/16/ABI/scan?lat=0&lon=-75&gridx=0")

	assert.Equal(t, http.StatusOK, nadir.code)
	assert.Equal(t, float64(1), nadir.property(0, "column"))
	assert.Equal(t, float64(1), nadir.property(0, "row"))
	assert.Equal(t, http.StatusUnprocessableEntity, outside.code)
	assert.Equal(t, http.StatusBadRequest, halfGrid.code)
}

func TestGeodetic(t *testing.T) {
	router, _ := newMockRouter(t, &mockSource{})

	resp := get(t, router, "/geometry/16/ABI/geodetic?x=-0.024052&y=0.095340")

	assert.Equal(t, http.StatusOK, resp.code)
	assert.InDelta(t, 33.846162, resp.property(0, "latitude"), 1e-3)
	assert.InDelta(t, -84.690932, resp.property(0, "longitude"), 1e-3)
}

func TestGeodetic_OutsideDisk(t *testing.T) {
	router, _ := newMockRouter(t, &mockSource{})

	resp := get(t, router, "/geometry/16/ABI/geodetic?x=0,0.2&y=0,0.2")

	assert.Equal(t, http.StatusUnprocessableEntity, resp.code)
}

func TestFieldOfView(t *testing.T) {
	router, _ := newMockRouter(t, &mockSource{})

	glm := get(t, router, "/geometry/18/GLM/fov?geodetic=true&resolution=16")
	abi := get(t, router, "/geometry/16/ABI/fov?xmin=-0.101332&xmax=0.038612&ymin=0.044268&ymax=0.128212")
	partial := get(t, router, "/geometry/16/ABI/fov?xmin=-0.1")
	inverted := get(t, router, "/geometry/16/ABI/fov?xmin=0.1&xmax=-0.1&ymin=0&ymax=0.1")

	assert.Equal(t, http.StatusOK, glm.code)
	assert.Len(t, glm.features(), 1)
	assert.Equal(t, "EPSG:4326", glm.property(0, "crs"))
	assert.Equal(t, http.StatusOK, abi.code)
	assert.Len(t, abi.features(), 2)
	assert.Equal(t, http.StatusBadRequest, partial.code)
	assert.Equal(t, http.StatusBadRequest, inverted.code)
}

func TestFieldOfView_ProductGrid(t *testing.T) {
	router, _ := newMockRouter(t, &mockSource{})

	grid := get(t, router, "/geometry/16/ABI/fov?gridx=-0.101332,-0.03,0.038612&gridy=0.128212,0.09,0.044268")
	both := get(t, router, "/geometry/16/ABI/fov?xmin=-0.1&xmax=0&ymin=0&ymax=0.1&gridx=-0.1,0&gridy=0.1,0")
	single := get(t, router, "/geometry/16/ABI/fov?gridx=0.01&gridy=0.01")
	missingY := get(t, router, "/geometry/16/ABI/fov?gridx=0.01,0.02")

	assert.Equal(t, http.StatusOK, grid.code)
	assert.Len(t, grid.features(), 2)
	assert.Equal(t, http.StatusBadRequest, both.code)
	assert.Equal(t, http.StatusBadRequest, single.code)
	assert.Equal(t, http.StatusBadRequest, missingY.code)
}

func TestFieldOfView_InvalidResolution(t *testing.T) {
	router, _ := newMockRouter(t, &mockSource{})

	assert.Equal(t, http.StatusBadRequest, get(t, router, "/geometry/16/ABI/fov?resolution=0").code)
	assert.Equal(t, http.StatusBadRequest, get(t, router, "/geometry/16/ABI/fov?resolution=-4").code)
	assert.Equal(t, http.StatusBadRequest, get(t, router, "/geometry/16/ABI/fov?resolution=fine").code)
}

func TestStatusFor(t *testing.T) {
	assert.Equal(t, http.StatusBadRequest, statusFor(&catalog.InvalidQueryError{Field: "band", Value: "17"}))
	assert.Equal(t, http.StatusUnprocessableEntity, statusFor(&geometry.VisibilityError{Indexes: []int{0}, Latitude: []float64{0}, Longitude: []float64{105}}))
	assert.Equal(t, http.StatusUnprocessableEntity, statusFor(&geometry.OutsideDiskError{Indexes: []int{1}}))
	assert.Equal(t, http.StatusUnprocessableEntity, statusFor(errors.Wrap(&geometry.OutsideFieldOfViewError{Instrument: geometry.GLM}, "point")))
	assert.Equal(t, http.StatusUnprocessableEntity, statusFor(errors.Wrap(geometry.ErrOutsideGrid, "x=0.1 y=0")))
	assert.Equal(t, http.StatusBadGateway, statusFor(errors.Wrap(&catalog.MalformedEntryError{Path: "a.nc"}, "listing")))
	assert.Equal(t, http.StatusBadGateway, statusFor(errors.Wrap(util.HTTPErr{Status: 503, Message: "SlowDown"}, "listing")))
	assert.Equal(t, http.StatusInternalServerError, statusFor(errors.New("boom")))
}
