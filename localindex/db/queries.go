package db

import (
	"context"
	"database/sql"
	"time"

	"github.com/pkg/errors"
)

const upsertObservationStatement = `
	INSERT INTO public.observations
		(path, satellite, product, sector, mode, band, start_time, end_time, creation_time)
	VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9)
	ON CONFLICT (path) DO UPDATE SET
		satellite = EXCLUDED.satellite,
		product = EXCLUDED.product,
		sector = EXCLUDED.sector,
		mode = EXCLUDED.mode,
		band = EXCLUDED.band,
		start_time = EXCLUDED.start_time,
		end_time = EXCLUDED.end_time,
		creation_time = EXCLUDED.creation_time,
		indexed_at = now()
	WHERE observations.creation_time IS DISTINCT FROM EXCLUDED.creation_time`

const databaseMaintenanceStatement = `VACUUM ANALYZE public.observations;`

// Querier is satisfied by *sql.DB and *sql.Tx
type Querier interface {
	QueryContext(ctx context.Context, query string, args ...interface{}) (*sql.Rows, error)
}

// SearchObservations returns the stored paths for a product whose start time
// falls in [start, end), ordered by start time
func SearchObservations(ctx context.Context, q Querier, satellite, product string, start, end time.Time) ([]string, error) {
	rows, err := q.QueryContext(ctx, `
		SELECT path
		FROM public.observations
		WHERE satellite=$1 AND product=$2 AND start_time >= $3 AND start_time < $4
		ORDER BY start_time, path`,
		satellite, product, start.UTC(), end.UTC(),
	)
	if err != nil {
		return nil, errors.Wrap(err, "search observations")
	}
	defer rows.Close()

	paths := []string{}
	for rows.Next() {
		var path string
		if err = rows.Scan(&path); err != nil {
			return nil, err
		}
		paths = append(paths, path)
	}
	return paths, rows.Err()
}

// UpsertObservations stores rows inside one transaction and returns how many
// were added or changed
func UpsertObservations(ctx context.Context, database *sql.DB, rows []ObservationRow) (int, error) {
	tx, err := database.BeginTx(ctx, nil)
	if err != nil {
		return 0, err
	}
	stmt, err := tx.PrepareContext(ctx, upsertObservationStatement)
	if err != nil {
		tx.Rollback()
		return 0, err
	}
	defer stmt.Close()

	total := 0
	for _, row := range rows {
		affected, err := executeInsert(stmt, row)
		if err != nil {
			tx.Rollback()
			return 0, errors.Wrapf(err, "upsert %s", row.Path)
		}
		total += affected
	}
	return total, tx.Commit()
}
