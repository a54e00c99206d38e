// Package observability holds the Prometheus collectors and the
// OpenTelemetry tracer setup shared by the broker's commands and handlers.
package observability

import (
	"fmt"
	"net/http"
	"strconv"
	"time"

	"github.com/gorilla/mux"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// Query outcomes used as label values
const (
	OutcomeOK     = "ok"
	OutcomeNoData = "nodata"
	OutcomeError  = "error"
)

// Download outcomes used as label values
const (
	DownloadFetched = "fetched"
	DownloadSkipped = "skipped"
	DownloadFailed  = "failed"
)

// Collector bundles the broker's Prometheus metrics. A nil *Collector is
// valid and records nothing.
type Collector struct {
	gatherer prometheus.Gatherer

	Queries       *prometheus.CounterVec
	ListingSize   *prometheus.HistogramVec
	Downloads     *prometheus.CounterVec
	Ingested      prometheus.Counter
	HTTPRequests  *prometheus.CounterVec
	HTTPDurations *prometheus.HistogramVec
}

// NewCollector registers the broker metrics against reg, defaulting to the
// global Prometheus registry when nil. Registering twice against the same
// registry returns the collectors that are already there.
func NewCollector(reg prometheus.Registerer) (*Collector, error) {
	if reg == nil {
		reg = prometheus.DefaultRegisterer
	}
	gatherer := prometheus.DefaultGatherer
	if g, ok := reg.(prometheus.Gatherer); ok {
		gatherer = g
	}

	queries, err := registerCounterVec(reg, prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "goes_queries_total",
		Help: "Catalog queries, labeled by kind (timerange, nearesttime, latest, point) and outcome.",
	}, []string{"kind", "outcome"}), "goes_queries_total")
	if err != nil {
		return nil, err
	}

	listingSize, err := registerHistogramVec(reg, prometheus.NewHistogramVec(prometheus.HistogramOpts{
		Name:    "goes_listing_entries",
		Help:    "Number of archive entries listed per query.",
		Buckets: prometheus.ExponentialBuckets(1, 4, 8),
	}, []string{"kind"}), "goes_listing_entries")
	if err != nil {
		return nil, err
	}

	downloads, err := registerCounterVec(reg, prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "goes_downloads_total",
		Help: "Observation files handled by the downloader, labeled by outcome.",
	}, []string{"outcome"}), "goes_downloads_total")
	if err != nil {
		return nil, err
	}

	ingested, err := registerCounter(reg, prometheus.NewCounter(prometheus.CounterOpts{
		Name: "goes_index_ingested_total",
		Help: "Observation records written to the local index.",
	}), "goes_index_ingested_total")
	if err != nil {
		return nil, err
	}

	requests, err := registerCounterVec(reg, prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "goes_http_requests_total",
		Help: "HTTP requests, labeled by route template, method and status code.",
	}, []string{"route", "method", "code"}), "goes_http_requests_total")
	if err != nil {
		return nil, err
	}

	durations, err := registerHistogramVec(reg, prometheus.NewHistogramVec(prometheus.HistogramOpts{
		Name:    "goes_http_duration_seconds",
		Help:    "HTTP request latency in seconds.",
		Buckets: prometheus.DefBuckets,
	}, []string{"route", "method"}), "goes_http_duration_seconds")
	if err != nil {
		return nil, err
	}

	return &Collector{
		gatherer:      gatherer,
		Queries:       queries,
		ListingSize:   listingSize,
		Downloads:     downloads,
		Ingested:      ingested,
		HTTPRequests:  requests,
		HTTPDurations: durations,
	}, nil
}

// Outcome maps a query result to a label value
func Outcome(err error, noData bool) string {
	switch {
	case err != nil:
		return OutcomeError
	case noData:
		return OutcomeNoData
	}
	return OutcomeOK
}

// ObserveQuery records one finished query and the size of its listing
func (c *Collector) ObserveQuery(kind, outcome string, listed int) {
	if c == nil {
		return
	}
	c.Queries.WithLabelValues(kind, outcome).Inc()
	if listed >= 0 {
		c.ListingSize.WithLabelValues(kind).Observe(float64(listed))
	}
}

// ObserveDownload records one file handled by the downloader
func (c *Collector) ObserveDownload(outcome string) {
	if c == nil {
		return
	}
	c.Downloads.WithLabelValues(outcome).Inc()
}

// ObserveIngest records records written to the local index
func (c *Collector) ObserveIngest(count int) {
	if c == nil || count <= 0 {
		return
	}
	c.Ingested.Add(float64(count))
}

// Handler exposes a /metrics handler for the collector's registry
func (c *Collector) Handler() http.Handler {
	if c == nil || c.gatherer == nil {
		return promhttp.Handler()
	}
	return promhttp.HandlerFor(c.gatherer, promhttp.HandlerOpts{})
}

type statusRecorder struct {
	http.ResponseWriter
	statusCode int
}

func (rw *statusRecorder) WriteHeader(code int) {
	rw.statusCode = code
	rw.ResponseWriter.WriteHeader(code)
}

// Middleware records request counts and durations. Requests are labeled by
// their mux route template so path parameters do not explode cardinality.
func (c *Collector) Middleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if c == nil {
			next.ServeHTTP(w, r)
			return
		}
		start := time.Now()
		rw := &statusRecorder{ResponseWriter: w, statusCode: http.StatusOK}

		next.ServeHTTP(rw, r)

		route := routeTemplate(r)
		c.HTTPRequests.WithLabelValues(route, r.Method, strconv.Itoa(rw.statusCode)).Inc()
		c.HTTPDurations.WithLabelValues(route, r.Method).Observe(time.Since(start).Seconds())
	})
}

func routeTemplate(r *http.Request) string {
	if route := mux.CurrentRoute(r); route != nil {
		if tpl, err := route.GetPathTemplate(); err == nil {
			return tpl
		}
	}
	return "unmatched"
}

func registerCounter(reg prometheus.Registerer, counter prometheus.Counter, name string) (prometheus.Counter, error) {
	if err := reg.Register(counter); err != nil {
		if are, ok := err.(prometheus.AlreadyRegisteredError); ok {
			if existing, ok := are.ExistingCollector.(prometheus.Counter); ok {
				return existing, nil
			}
			return nil, fmt.Errorf("collector %s already registered with incompatible type", name)
		}
		return nil, err
	}
	return counter, nil
}

func registerCounterVec(reg prometheus.Registerer, vec *prometheus.CounterVec, name string) (*prometheus.CounterVec, error) {
	if err := reg.Register(vec); err != nil {
		if are, ok := err.(prometheus.AlreadyRegisteredError); ok {
			if existing, ok := are.ExistingCollector.(*prometheus.CounterVec); ok {
				return existing, nil
			}
			return nil, fmt.Errorf("collector %s already registered with incompatible type", name)
		}
		return nil, err
	}
	return vec, nil
}

func registerHistogramVec(reg prometheus.Registerer, vec *prometheus.HistogramVec, name string) (*prometheus.HistogramVec, error) {
	if err := reg.Register(vec); err != nil {
		if are, ok := err.(prometheus.AlreadyRegisteredError); ok {
			if existing, ok := are.ExistingCollector.(*prometheus.HistogramVec); ok {
				return existing, nil
			}
			return nil, fmt.Errorf("collector %s already registered with incompatible type", name)
		}
		return nil, err
	}
	return vec, nil
}
