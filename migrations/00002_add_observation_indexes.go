package migration

import (
	"database/sql"

	"github.com/pressly/goose"
)

func init() {
	goose.AddMigration(Up00002, Down00002)
}

//Up00002 indexes the columns every listing query filters on.
func Up00002(tx *sql.Tx) error {
	_, err := tx.Exec(`
		CREATE INDEX IF NOT EXISTS idx_observations_product_start
		ON public.observations USING btree
		(satellite, product, start_time);

		CREATE INDEX IF NOT EXISTS idx_observations_end
		ON public.observations USING btree
		(end_time);
		`)
	return err
}

//Down00002 drops the listing indexes.
func Down00002(tx *sql.Tx) error {
	_, err := tx.Exec(`
		DROP INDEX IF EXISTS public.idx_observations_product_start;
		DROP INDEX IF EXISTS public.idx_observations_end;
		`)
	return err
}
