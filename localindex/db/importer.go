package db

import (
	"context"
	"database/sql"
	"fmt"
	"strings"
	"time"

	"github.com/venicegeo/bf-goes-broker/archive"
	"github.com/venicegeo/bf-goes-broker/catalog"
	"github.com/venicegeo/bf-goes-broker/observability"
	"github.com/venicegeo/bf-goes-broker/util"
)

//ConnectionProvider is a function that can provide a database connection.
type ConnectionProvider func(util.LogContext) (*sql.DB, error)

//ListingSource lists archive object keys for a product; *archive.Archive is one.
type ListingSource interface {
	Listing(ctx context.Context, satellite, product string, start, end time.Time) ([]string, error)
}

//Target names one satellite/product pair to keep indexed.
type Target struct {
	Satellite string
	Product   string
}

//Importer manages the state for an ingest job.
type Importer struct {
	source         ListingSource
	targets        []Target
	window         time.Duration
	dbConnProvider ConnectionProvider
	statusChan     chan chan string

	//ListingLocation, when set, replaces the archive listing with a key
	//list read from a file or URL.
	ListingLocation string
	ListingIsGzip   bool
	Metrics         *observability.Collector
	Now             func() time.Time
}

//NewImporter intializes a new importer that indexes the trailing window of
//every target.
func NewImporter(
	source ListingSource,
	targets []Target,
	window time.Duration,
	dbConnProvider ConnectionProvider) *Importer {
	return &Importer{
		source:         source,
		targets:        targets,
		window:         window,
		dbConnProvider: dbConnProvider,
		statusChan:     make(chan chan string, 10)}
}

var importerLogContext = &util.BasicLogContext{}

func (imp *Importer) now() time.Time {
	if imp.Now != nil {
		return imp.Now()
	}
	return time.Now()
}

//ImportWhile peforms the Import() task and waits for a channel.
//Note: this is blocking
//The function will exit when messageChan is closed and any in-progress jobs complete.
//To close quickly, send AbortIngestJobMessage on messageChan before closing it.
func (imp *Importer) ImportWhile(messageChan <-chan string, maxTimeBetweenJobs time.Duration) {
	util.LogInfo(importerLogContext, fmt.Sprintf("Job loop started with frequency %v", maxTimeBetweenJobs))

	previousStatus := "\tNone"

	scheduleTimer := time.NewTimer(maxTimeBetweenJobs)
	defer scheduleTimer.Stop()
	nextScheduledStartTime := time.Now().Add(maxTimeBetweenJobs)

	var startJob bool
	for {
		startJob = false

		//Status is reported cooperatively, so deal with any requests while we wait.
		select {
		case <-scheduleTimer.C:
			util.LogInfo(importerLogContext, "Maximum time between jobs elapsed.")
			startJob = true
		case msg, ok := <-messageChan:
			if !ok {
				return
			}
			if msg == BeginIngestJobMessage {
				util.LogInfo(importerLogContext, "Job start requested.")
				startJob = true
			}
		case respChan := <-imp.statusChan:
			select {
			case respChan <- fmt.Sprintf("%v\nStatus: Sleeping until %v\nPrevious job:\n%v",
				time.Now().Format(statusTimeFormat),
				nextScheduledStartTime.Format(statusTimeFormat),
				previousStatus):
			default:
			}
		}

		if startJob {
			previousStatus = imp.Import(messageChan)

			//The timer may or may not have fired; drain it either way before
			//resetting.
			scheduleTimer.Stop()
		TimerDrainLoop:
			for {
				select {
				case <-scheduleTimer.C:
				default:
					break TimerDrainLoop
				}
			}
			scheduleTimer.Reset(maxTimeBetweenJobs)
			nextScheduledStartTime = time.Now().Add(maxTimeBetweenJobs)
		}
	}
}

//GetStatus is a thread safe way to get information about the import operation.
//It blocks until ImportWhile or a running job answers.
func (imp *Importer) GetStatus() string {
	responseChan := make(chan string, 1)
	imp.statusChan <- responseChan
	return <-responseChan
}

//Import gathers keys, parses them and upserts the records. The returned
//string describes the job.
func (imp *Importer) Import(messageChan <-chan string) (result string) {
	ctx := context.Background()

	paths, err := imp.gatherPaths(ctx)
	if err != nil {
		return util.LogSimpleErr(importerLogContext, "Could not list observations for ingest", err).Error()
	}

	//Database connection is opened right before the ingest, and closed
	//immediately after.
	database, err := imp.dbConnProvider(importerLogContext)
	if err != nil {
		return util.LogSimpleErr(importerLogContext, "Could not open database connection", err).Error()
	}
	defer database.Close()

	stmt, err := database.PrepareContext(ctx, upsertObservationStatement)
	if err != nil {
		return util.LogSimpleErr(importerLogContext, "Prepare statement failed", err).Error()
	}
	defer stmt.Close()

	stats := imp.ingest(paths, stmt, messageChan)

	//Clear the status requests before doing the long-running operation.
	drainStatusChannel(imp.statusChan, stats)
	doDatabaseMaintenance(database)

	stats.EndTime = time.Now()
	util.LogInfo(importerLogContext, fmt.Sprintf("Ingest Complete: %v", stats.String()))
	util.LogInfo(importerLogContext, fmt.Sprintf("Ingest took %s", stats.EndTime.Sub(stats.StartTime)))
	return stats.String()
}

func (imp *Importer) gatherPaths(ctx context.Context) ([]string, error) {
	if imp.ListingLocation != "" {
		return archive.ReadListing(ctx, imp.ListingLocation, imp.ListingIsGzip)
	}

	end := imp.now().UTC()
	start := end.Add(-imp.window)
	var paths []string
	for _, target := range imp.targets {
		keys, err := imp.source.Listing(ctx, target.Satellite, target.Product, start, end)
		if err != nil {
			return nil, fmt.Errorf("listing %s/%s: %v", target.Satellite, target.Product, err)
		}
		paths = append(paths, keys...)
	}
	return paths, nil
}

//Ingest upserts the records named by paths into database. Keys that are not
//.nc files are skipped; unparseable ones are counted as errors.
func (imp *Importer) Ingest(paths []string, database *sql.DB, cancelChan <-chan string) (result string) {
	stmt, err := database.Prepare(upsertObservationStatement)
	if err != nil {
		return util.LogSimpleErr(importerLogContext, "Prepare statement failed", err).Error()
	}
	defer stmt.Close()

	stats := imp.ingest(paths, stmt, cancelChan)
	drainStatusChannel(imp.statusChan, stats)
	doDatabaseMaintenance(database)
	stats.EndTime = time.Now()
	return stats.String()
}

func (imp *Importer) ingest(paths []string, stmt inserter, cancelChan <-chan string) *jobStats {
	stats := &jobStats{StartTime: time.Now()}
	lastProgressLogTime := time.Now()

PathLoop:
	for _, path := range paths {
		if abort := drainMessages(cancelChan); abort {
			util.LogAlert(importerLogContext, "Ingest job canceled.")
			stats.CanceledByUser = true
			break PathLoop
		}

		drainStatusChannel(imp.statusChan, stats)

		if time.Since(lastProgressLogTime) > progressLogInterval {
			util.LogInfo(importerLogContext, fmt.Sprintf("Ingest Progress: Added:%v Skipped:%v Error:%v",
				stats.NumberAddedOrUpdated, stats.NumberSkipped, stats.NumberError))
			lastProgressLogTime = time.Now()
		}

		if !strings.HasSuffix(path, ".nc") {
			stats.NumberSkipped++
			continue
		}

		record, err := catalog.ParseRecord(path)
		if err != nil {
			stats.NumberError++
			util.LogSimpleErr(importerLogContext, "Skipping unparseable key", err)
			continue
		}

		rowsAffected, err := executeInsert(stmt, NewObservationRow(record))
		if err != nil {
			stats.NumberError++
			util.LogSimpleErr(importerLogContext, "Error inserting observation "+path, err)
			continue
		}
		stats.NumberAddedOrUpdated += rowsAffected
		stats.NumberSkipped += 1 - rowsAffected
	}

	imp.Metrics.ObserveIngest(stats.NumberAddedOrUpdated)
	return stats
}
