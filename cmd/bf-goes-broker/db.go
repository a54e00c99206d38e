package main

import (
	"database/sql"
	"fmt"
	"net/url"
	"os"

	_ "github.com/lib/pq"
	"github.com/pkg/errors"
	"github.com/venicegeo/bf-goes-broker/util"
)

const connectionStringEnv = "DATABASE_URL"
const vcapServicesEnv = "VCAP_SERVICES"
const pzPostgresService = "pz-postgres"

//databaseURL finds the index connection string in DATABASE_URL or, on
//Cloud Foundry, in the pz-postgres service credentials.
func databaseURL(ctx util.LogContext) (string, error) {
	connStr := os.Getenv(connectionStringEnv)
	if connStr != "" {
		return connStr, nil
	}

	util.LogInfo(ctx, "No DB connection found in DATABASE_URL, checking VCAP_SERVICES")
	services, err := util.ParseVcapServices([]byte(os.Getenv(vcapServicesEnv)))
	if err != nil {
		return "", errors.Wrap(err, "Could not get DB connection from DATABASE_URL or VCAP_SERVICES (no valid VCAP_SERVICES found)")
	}
	service := services.FindServiceByName(pzPostgresService)
	if service == nil {
		return "", fmt.Errorf("Could not get DB connection from DATABASE_URL or VCAP_SERVICES ('%s' service not found); available services: %v",
			pzPostgresService, services.GetServiceNames())
	}
	connStr, err = service.PostgresURL()
	if err != nil {
		return "", errors.Wrap(err, "Could not get DB connection from DATABASE_URL or VCAP_SERVICES")
	}
	return connStr, nil
}

//getDbConnection opens a new database connection.
func getDbConnection(ctx util.LogContext) (*sql.DB, error) {
	connStr, err := databaseURL(ctx)
	if err != nil {
		return nil, err
	}

	// pq expects SSL unless it is explicitly disabled
	dbURI, err := url.Parse(connStr)
	if err != nil {
		return nil, errors.Wrap(err, "Invalid database URL")
	}
	params := dbURI.Query()
	if params.Get("sslmode") == "" {
		params.Set("sslmode", "disable")
	}
	dbURI.RawQuery = params.Encode()

	util.LogInfo(ctx, fmt.Sprintf("Creating database connection at: `%s`", dbURI.Redacted()))
	db, err := sql.Open("postgres", dbURI.String())
	if err != nil {
		return nil, err
	}

	if err = db.Ping(); err != nil {
		db.Close()
		return nil, err
	}

	return db, nil
}

var getDbConnectionFunc = getDbConnection
