package db

import (
	"database/sql"
	"fmt"
	"time"

	"github.com/venicegeo/bf-goes-broker/util"
)

//BeginIngestJobMessage is sent on a channel to start an ingest job.
const BeginIngestJobMessage = "start"

//AbortIngestJobMessage is sent on a channel to stop an in-progress job.
const AbortIngestJobMessage = "stop"

const (
	statusTimeFormat    = "Mon Jan _2 15:04:05 2006"
	progressLogInterval = 30 * time.Second
)

type jobStats struct {
	NumberAddedOrUpdated int
	NumberSkipped        int
	NumberError          int
	StartTime            time.Time
	EndTime              time.Time
	CanceledByUser       bool
}

func (stats *jobStats) String() string {
	return fmt.Sprintf(`
		Start:	%v
		End:	%v
		Canceled: %v
		#Added:		%v
		#Skipped:	%v
		#Error:		%v
		`,
		stats.StartTime.Format(statusTimeFormat),
		stats.EndTime.Format(statusTimeFormat),
		stats.CanceledByUser,
		stats.NumberAddedOrUpdated,
		stats.NumberSkipped,
		stats.NumberError)
}

//inserter is satisfied by *sql.Stmt
type inserter interface {
	Exec(args ...interface{}) (sql.Result, error)
}

//executor is satisfied by *sql.DB
type executor interface {
	Exec(query string, args ...interface{}) (sql.Result, error)
}

//drainMessages reads all the messages from the channel looking for
//any abort messages.
//All other messages will be ignored and discarded.
func drainMessages(messageChan <-chan string) (abortRequested bool) {
	for {
		select {
		case msg, ok := <-messageChan:
			if !ok {
				return
			}
			abortRequested = abortRequested || (msg == AbortIngestJobMessage)
		default:
			return
		}
	}
}

//drainStatusChannel drains the status request channel
//and sends back a status string
func drainStatusChannel(statusChan <-chan chan string, stats *jobStats) {
	for {
		select {
		case resp := <-statusChan:
			if resp != nil {
				select {
				case resp <- fmt.Sprintf("%v\nIn progress\n%v", time.Now().Format(statusTimeFormat), stats.String()):
				default:
				}
			}
		default:
			return
		}
	}
}

//doDatabaseMaintenance performs any maintenance that should be done
//after the import operation, e.g. rebuilding statistics
func doDatabaseMaintenance(database executor) {
	util.LogInfo(importerLogContext, "Starting database maintenance.")
	if _, err := database.Exec(databaseMaintenanceStatement); err != nil {
		util.LogSimpleErr(importerLogContext, "Error during database maintenance", err)
		return
	}
	util.LogInfo(importerLogContext, "Database maintenance complete.")
}

//executeInsert submits one row to the prepared upsert. An unchanged row
//affects zero rows.
func executeInsert(statement inserter, row ObservationRow) (int, error) {
	result, err := statement.Exec(row.values()...)
	if err != nil {
		return 0, err
	}
	rowsAffected, err := result.RowsAffected()
	return int(rowsAffected), err
}
