package main

import (
	"github.com/pkg/errors"
	"github.com/pressly/goose"
	cli "gopkg.in/urfave/cli.v1"

	_ "github.com/venicegeo/bf-goes-broker/migrations"
	"github.com/venicegeo/bf-goes-broker/util"
)

func migrateDatabaseAction(*cli.Context) error {
	logContext := &util.BasicLogContext{}
	database, err := getDbConnectionFunc(logContext)
	if err != nil {
		return util.LogSimpleErr(logContext, "Could not open database connection", err)
	}
	defer database.Close()

	if err = goose.Run("up", database, "."); err != nil {
		return errors.Wrap(err, "migrate observations schema")
	}
	util.LogInfo(logContext, "Database schema is up to date")
	return nil
}
