package discover

import (
	"net/http"

	"github.com/gorilla/mux"
	"github.com/venicegeo/bf-goes-broker/observability"
)

// NewRouter wires every broker route. A nil collector disables request
// metrics but /metrics still serves the default registry.
func NewRouter(ctx Context, metrics *observability.Collector) *mux.Router {
	router := mux.NewRouter()
	router.Use(metrics.Middleware)

	router.HandleFunc("/", func(writer http.ResponseWriter, request *http.Request) {
		writer.Write([]byte("OK"))
	})
	router.Handle("/metrics", metrics.Handler())

	router.Handle("/goes/{satellite}/{product}/timerange", NewTimeRangeHandler(ctx)).Methods(http.MethodGet)
	router.Handle("/goes/{satellite}/{product}/nearesttime", NewNearestTimeHandler(ctx)).Methods(http.MethodGet)
	router.Handle("/goes/{satellite}/{product}/latest", NewLatestHandler(ctx)).Methods(http.MethodGet)

	router.Handle("/geometry/{satellite}/{instrument}/scan", NewScanHandler(ctx)).Methods(http.MethodGet)
	router.Handle("/geometry/{satellite}/{instrument}/geodetic", NewGeodeticHandler(ctx)).Methods(http.MethodGet)
	router.Handle("/geometry/{satellite}/{instrument}/fov", NewFieldOfViewHandler(ctx)).Methods(http.MethodGet)

	return router
}
