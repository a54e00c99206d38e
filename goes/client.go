package goes

import (
	"context"
	"fmt"
	"io"
	"time"

	"github.com/pkg/errors"
	"github.com/venicegeo/bf-goes-broker/catalog"
	"github.com/venicegeo/bf-goes-broker/geometry"
	"github.com/venicegeo/bf-goes-broker/observability"
	"github.com/venicegeo/bf-goes-broker/util"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"
)

// Source lists the object paths stored for a satellite and product between
// two times. Implementations may return more than the window; the client
// applies the exact time filter itself.
type Source interface {
	Listing(ctx context.Context, satellite, product string, start, end time.Time) ([]string, error)
}

// Fetcher copies one archive object into w
type Fetcher interface {
	Fetch(ctx context.Context, satellite, objectPath string, w io.Writer) error
}

// Query kinds, used for metrics and span names
const (
	KindTimeRange   = "timerange"
	KindNearestTime = "nearesttime"
	KindLatest      = "latest"
	KindPoint       = "point"
)

// LatestLookback is how far back Latest searches
const LatestLookback = time.Hour

// Client answers time queries against an archive. Every query lists the
// source again; caching is the Source's business.
type Client struct {
	Source  Source
	Fetcher Fetcher
	Metrics *observability.Collector

	// FixedEccentricity is copied onto projections used by Point
	FixedEccentricity bool

	// Now defaults to time.Now
	Now func() time.Time

	LogContext util.LogContext
}

// PointResult is the answer to a single-point query
type PointResult struct {
	Latitude  float64
	Longitude float64
	ScanAngle geometry.ScanAngle
	Selection catalog.Selection
}

func (c *Client) now() time.Time {
	if c.Now != nil {
		return c.Now().UTC()
	}
	return time.Now().UTC()
}

var defaultLogContext = &util.BasicLogContext{}

func (c *Client) logContext() util.LogContext {
	if c.LogContext == nil {
		return defaultLogContext
	}
	return c.LogContext
}

// TimeRange returns the records that start at or after start and end at or
// before end
func (c *Client) TimeRange(ctx context.Context, req Request, start, end time.Time) (catalog.Selection, error) {
	ctx, span := startSpan(ctx, KindTimeRange, req)
	defer span.End()

	if end.Before(start) {
		err := &catalog.InvalidQueryError{Field: "time range", Value: fmt.Sprintf("%s/%s", start.Format(time.RFC3339), end.Format(time.RFC3339))}
		return c.finish(span, KindTimeRange, nil, -1, err)
	}

	records, listed, err := c.records(ctx, req, start, end)
	if err != nil {
		return c.finish(span, KindTimeRange, nil, listed, err)
	}
	selection := catalog.SelectRange(records, start.UTC(), end.UTC())
	catalog.SortByStart(selection)
	return c.finish(span, KindTimeRange, selection, listed, nil)
}

// Recent is TimeRange over the trailing duration ending now
func (c *Client) Recent(ctx context.Context, req Request, recent time.Duration) (catalog.Selection, error) {
	if recent <= 0 {
		return nil, &catalog.InvalidQueryError{Field: "recent", Value: recent.String()}
	}
	end := c.now()
	return c.TimeRange(ctx, req, end.Add(-recent), end)
}

// NearestTime returns every record sharing the start time closest to attime
// within the look-around window
func (c *Client) NearestTime(ctx context.Context, req Request, attime time.Time, within time.Duration) (catalog.Selection, error) {
	ctx, span := startSpan(ctx, KindNearestTime, req)
	defer span.End()
	span.SetAttributes(attribute.String("goes.attime", attime.UTC().Format(time.RFC3339)))

	return c.nearest(ctx, span, KindNearestTime, req, attime, within)
}

func (c *Client) nearest(ctx context.Context, span trace.Span, kind string, req Request, attime time.Time, within time.Duration) (catalog.Selection, error) {
	if within <= 0 {
		return c.finish(span, kind, nil, -1, &catalog.InvalidQueryError{Field: "within", Value: within.String()})
	}
	attime = attime.UTC()
	records, listed, err := c.records(ctx, req, attime.Add(-within), attime.Add(within))
	if err != nil {
		return c.finish(span, kind, nil, listed, err)
	}
	return c.finish(span, kind, catalog.SelectNearest(records, attime, within), listed, nil)
}

// Latest returns the most recent observation group from the last hour
func (c *Client) Latest(ctx context.Context, req Request) (catalog.Selection, error) {
	ctx, span := startSpan(ctx, KindLatest, req)
	defer span.End()

	end := c.now()
	start := end.Add(-LatestLookback)
	records, listed, err := c.records(ctx, req, start, end)
	if err != nil {
		return c.finish(span, KindLatest, nil, listed, err)
	}
	return c.finish(span, KindLatest, catalog.SelectLatest(catalog.SelectRange(records, start, end)), listed, nil)
}

// Point resolves the scan angle of a geodetic point and the observations
// nearest attime. Points the satellite cannot see, or that fall outside the
// instrument's field of view, fail before the archive is listed.
func (c *Client) Point(ctx context.Context, req Request, lat, lon float64, attime time.Time, within time.Duration) (*PointResult, error) {
	ctx, span := startSpan(ctx, KindPoint, req)
	defer span.End()
	span.SetAttributes(attribute.Float64("goes.latitude", lat), attribute.Float64("goes.longitude", lon))

	projection := req.Projection()
	projection.FixedEccentricity = c.FixedEccentricity
	scan, err := geometry.GeodeticToScanAngles(lat, lon, projection, geometry.Degrees)
	if err == nil && req.Instrument != "" {
		err = checkFieldOfView(req.Instrument, projection, lat, lon, scan)
	}
	if err != nil {
		_, err = c.finish(span, KindPoint, nil, -1, err)
		return nil, err
	}

	selection, err := c.nearest(ctx, span, KindPoint, req, attime, within)
	if err != nil {
		return nil, err
	}
	return &PointResult{Latitude: lat, Longitude: lon, ScanAngle: scan, Selection: selection}, nil
}

// checkFieldOfView rejects visible points the instrument does not cover
func checkFieldOfView(instrument geometry.Instrument, projection geometry.Projection, lat, lon float64, scan geometry.ScanAngle) error {
	fov, err := geometry.NewFieldOfView(instrument, projection, nil, 0)
	if err != nil {
		return err
	}
	if !fov.ContainsScanAngle(scan) {
		return &geometry.OutsideFieldOfViewError{Instrument: instrument, Latitude: lat, Longitude: lon, Angle: scan}
	}
	return nil
}

// records lists, parses and filters; any malformed entry aborts the query
func (c *Client) records(ctx context.Context, req Request, start, end time.Time) ([]catalog.ObservationRecord, int, error) {
	if c.Source == nil {
		return nil, -1, errors.New("no archive source configured")
	}
	if err := req.Query().Validate(); err != nil {
		return nil, -1, err
	}

	listing, err := c.Source.Listing(ctx, req.Satellite, req.Product, start.UTC(), end.UTC())
	if err != nil {
		return nil, -1, errors.Wrapf(err, "listing %s/%s", req.Satellite, req.Product)
	}

	records, err := catalog.ParseListing(listing)
	if err != nil {
		return nil, len(listing), err
	}
	return req.Query().Apply(records), len(listing), nil
}

func (c *Client) finish(span trace.Span, kind string, selection catalog.Selection, listed int, err error) (catalog.Selection, error) {
	c.Metrics.ObserveQuery(kind, observability.Outcome(err, selection.NoData()), listed)
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
		return nil, err
	}
	span.SetAttributes(attribute.Int("goes.records", len(selection)))
	if selection.NoData() {
		util.LogInfo(c.logContext(), fmt.Sprintf("%s query matched no observations", kind))
		return catalog.Selection{}, nil
	}
	return selection, nil
}

func startSpan(ctx context.Context, kind string, req Request) (context.Context, trace.Span) {
	return observability.Tracer().Start(ctx, "goes."+kind, trace.WithAttributes(
		attribute.String("goes.satellite", req.Satellite),
		attribute.String("goes.product", req.Product),
		attribute.String("goes.sector", string(req.Sector)),
	))
}
