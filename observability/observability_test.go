package observability

import (
	"bytes"
	"context"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/gorilla/mux"
	"github.com/pkg/errors"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/trace/noop"
)

func TestCollector_ObserveQuery(t *testing.T) {
	// Mock
	reg := prometheus.NewRegistry()
	collector, err := NewCollector(reg)
	assert.Nil(t, err)

	// Tested code
	collector.ObserveQuery("nearesttime", OutcomeOK, 12)
	collector.ObserveQuery("nearesttime", OutcomeNoData, 0)
	collector.ObserveQuery("latest", OutcomeError, -1)

	// Asserts
	assert.Equal(t, float64(1), testutil.ToFloat64(collector.Queries.WithLabelValues("nearesttime", OutcomeOK)))
	assert.Equal(t, float64(1), testutil.ToFloat64(collector.Queries.WithLabelValues("nearesttime", OutcomeNoData)))
	assert.Equal(t, float64(1), testutil.ToFloat64(collector.Queries.WithLabelValues("latest", OutcomeError)))
	assert.Equal(t, 1, testutil.CollectAndCount(collector.ListingSize, "goes_listing_entries"))
}

func TestCollector_AlreadyRegistered(t *testing.T) {
	reg := prometheus.NewRegistry()
	first, err := NewCollector(reg)
	assert.Nil(t, err)
	second, err := NewCollector(reg)
	assert.Nil(t, err)

	first.ObserveDownload(DownloadFetched)
	second.ObserveDownload(DownloadFetched)

	assert.Equal(t, float64(2), testutil.ToFloat64(first.Downloads.WithLabelValues(DownloadFetched)))
}

func TestCollector_NilIsNoop(t *testing.T) {
	var collector *Collector
	collector.ObserveQuery("latest", OutcomeOK, 3)
	collector.ObserveDownload(DownloadSkipped)
	collector.ObserveIngest(4)

	rr := httptest.NewRecorder()
	collector.Middleware(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusTeapot)
	})).ServeHTTP(rr, httptest.NewRequest(http.MethodGet, "/", nil))
	assert.Equal(t, http.StatusTeapot, rr.Code)
}

func TestCollector_MiddlewareAndHandler(t *testing.T) {
	// Mock
	reg := prometheus.NewRegistry()
	collector, err := NewCollector(reg)
	assert.Nil(t, err)
	collector.ObserveIngest(5)

	router := mux.NewRouter()
	router.Use(collector.Middleware)
	router.HandleFunc("/goes/{satellite}/latest", func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusBadRequest)
	})
	router.Handle("/metrics", collector.Handler())

	// Tested code
	router.ServeHTTP(httptest.NewRecorder(), httptest.NewRequest(http.MethodGet, "/goes/noaa-goes16/latest", nil))
	router.ServeHTTP(httptest.NewRecorder(), httptest.NewRequest(http.MethodGet, "/goes/noaa-goes17/latest", nil))
	rr := httptest.NewRecorder()
	router.ServeHTTP(rr, httptest.NewRequest(http.MethodGet, "/metrics", nil))

	// Asserts
	assert.Equal(t, float64(2), testutil.ToFloat64(collector.HTTPRequests.WithLabelValues("/goes/{satellite}/latest", http.MethodGet, "400")))
	assert.Equal(t, http.StatusOK, rr.Code)
	body := rr.Body.String()
	assert.True(t, strings.Contains(body, "goes_index_ingested_total 5"))
	assert.True(t, strings.Contains(body, "goes_http_requests_total"))
}

func TestOutcome(t *testing.T) {
	assert.Equal(t, OutcomeError, Outcome(errors.New("boom"), true))
	assert.Equal(t, OutcomeNoData, Outcome(nil, true))
	assert.Equal(t, OutcomeOK, Outcome(nil, false))
}

func TestInitTracing_ExportsSpans(t *testing.T) {
	defer otel.SetTracerProvider(noop.NewTracerProvider())

	// Mock
	buf := &bytes.Buffer{}

	// Tested code
	shutdown, err := InitTracing(TracingConfig{Enabled: true, Writer: buf})
	assert.Nil(t, err)
	_, span := Tracer().Start(context.Background(), "goes.nearesttime")
	span.End()
	ShutdownWithTimeout(shutdown)

	// Asserts
	assert.True(t, strings.Contains(buf.String(), "goes.nearesttime"))
}

func TestInitTracing_Disabled(t *testing.T) {
	shutdown, err := InitTracing(TracingConfig{})

	assert.Nil(t, err)
	assert.Nil(t, shutdown(context.Background()))
	_, span := Tracer().Start(context.Background(), "ignored")
	assert.False(t, span.SpanContext().IsValid())
	span.End()
}
