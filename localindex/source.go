// Package localindex answers archive listings from the Postgres observation
// index, falling back to the live archive for hours the index does not cover.
package localindex

import (
	"context"
	"database/sql"
	"fmt"
	"strings"
	"time"

	"github.com/venicegeo/bf-goes-broker/archive"
	"github.com/venicegeo/bf-goes-broker/catalog"
	"github.com/venicegeo/bf-goes-broker/goes"
	"github.com/venicegeo/bf-goes-broker/localindex/db"
	"github.com/venicegeo/bf-goes-broker/util"
)

// Upserter stores rows in the index and reports how many changed
type Upserter func(ctx context.Context, rows []db.ObservationRow) (int, error)

// Searcher returns the indexed paths whose start time is in [from, to)
type Searcher func(ctx context.Context, satellite, product string, from, to time.Time) ([]string, error)

// CachedSource is a goes.Source backed by the observations table.
// Lookups cover whole hours so the answer matches an hourly archive listing;
// hours the index has no rows for are listed from Fallback.
type CachedSource struct {
	Search   Searcher
	Fallback goes.Source
	Writer   Upserter
}

var _ goes.Source = (*CachedSource)(nil)

var cacheLogContext = &util.BasicLogContext{}

// NewCachedSource reads from database and, when the index misses, lists
// fallback and writes what it found back into database
func NewCachedSource(database *sql.DB, fallback goes.Source) *CachedSource {
	return &CachedSource{
		Search: func(ctx context.Context, satellite, product string, from, to time.Time) ([]string, error) {
			return db.SearchObservations(ctx, database, satellite, product, from, to)
		},
		Fallback: fallback,
		Writer: func(ctx context.Context, rows []db.ObservationRow) (int, error) {
			return db.UpsertObservations(ctx, database, rows)
		},
	}
}

// Listing implements goes.Source
func (cs *CachedSource) Listing(ctx context.Context, satellite, product string, start, end time.Time) ([]string, error) {
	start, end = start.UTC(), end.UTC()
	from := start.Truncate(time.Hour)
	to := end.Truncate(time.Hour).Add(time.Hour)

	paths, err := cs.Search(ctx, satellite, product, from, to)
	switch {
	case err != nil && cs.Fallback == nil:
		return nil, err
	case err != nil:
		util.LogSimpleErr(cacheLogContext, "Local index lookup failed, using archive", err)
		return cs.listFallback(ctx, satellite, product, start, end)
	case cs.Fallback == nil:
		return paths, nil
	}

	for _, gap := range missingHours(product, paths, from, to) {
		gapStart, gapEnd := gap[0], gap[1].Add(-time.Nanosecond)
		if gapStart.Before(start) {
			gapStart = start
		}
		if gapEnd.After(end) {
			gapEnd = end
		}
		util.LogInfo(cacheLogContext, fmt.Sprintf("Local index has no %s/%s rows for %s to %s, using archive",
			satellite, product, gap[0].Format(time.RFC3339), gap[1].Format(time.RFC3339)))
		listed, err := cs.listFallback(ctx, satellite, product, gapStart, gapEnd)
		if err != nil {
			return nil, err
		}
		paths = append(paths, listed...)
	}
	return paths, nil
}

func (cs *CachedSource) listFallback(ctx context.Context, satellite, product string, start, end time.Time) ([]string, error) {
	paths, err := cs.Fallback.Listing(ctx, satellite, product, start, end)
	if err != nil {
		return nil, err
	}
	cs.store(ctx, paths)
	return paths, nil
}

// missingHours returns the runs of consecutive hours in [from, to) whose
// archive prefix holds none of paths, as [start, end) pairs
func missingHours(product string, paths []string, from, to time.Time) [][2]time.Time {
	var gaps [][2]time.Time
	for hour := from; hour.Before(to); hour = hour.Add(time.Hour) {
		prefix := archive.HourlyPrefixes(product, hour, hour)[0]
		covered := false
		for _, path := range paths {
			if strings.HasPrefix(path, prefix) {
				covered = true
				break
			}
		}
		if covered {
			continue
		}
		if n := len(gaps); n > 0 && gaps[n-1][1].Equal(hour) {
			gaps[n-1][1] = hour.Add(time.Hour)
		} else {
			gaps = append(gaps, [2]time.Time{hour, hour.Add(time.Hour)})
		}
	}
	return gaps
}

// store writes a fallback listing into the index; a listing that does not
// parse is left for the caller to reject
func (cs *CachedSource) store(ctx context.Context, paths []string) {
	if cs.Writer == nil || len(paths) == 0 {
		return
	}
	records, err := catalog.ParseListing(paths)
	if err != nil {
		return
	}
	rows := make([]db.ObservationRow, len(records))
	for i, record := range records {
		rows[i] = db.NewObservationRow(record)
	}
	count, err := cs.Writer(ctx, rows)
	if err != nil {
		util.LogSimpleErr(cacheLogContext, "Could not update local index", err)
		return
	}
	util.LogInfo(cacheLogContext, fmt.Sprintf("Indexed %d of %d observations", count, len(rows)))
}
