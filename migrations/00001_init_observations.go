package migration

import (
	"database/sql"

	"github.com/pressly/goose"
)

func init() {
	goose.AddMigration(Up00001, Down00001)
}

//Up00001 creates the observation catalog table.
func Up00001(tx *sql.Tx) error {
	_, err := tx.Exec(`
		CREATE TABLE IF NOT EXISTS public.observations
		(
			path character varying(512) NOT NULL,
			satellite character varying(32) NOT NULL,
			product character varying(64) NOT NULL,
			sector character varying(4) NOT NULL DEFAULT '',
			mode integer NOT NULL DEFAULT 0,
			band integer NOT NULL DEFAULT 0,
			start_time timestamp with time zone NOT NULL,
			end_time timestamp with time zone NOT NULL,
			creation_time timestamp with time zone NOT NULL,
			indexed_at timestamp with time zone NOT NULL DEFAULT now(),
			CONSTRAINT observations_pkey PRIMARY KEY (path),
			CONSTRAINT observations_time_order CHECK (start_time < end_time)
		);
		`)
	return err
}

//Down00001 drops the observation catalog table.
func Down00001(tx *sql.Tx) error {
	_, err := tx.Exec(`DROP TABLE IF EXISTS public.observations;`)
	return err
}
