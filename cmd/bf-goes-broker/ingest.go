package main

import (
	"context"
	"fmt"
	"net/http"
	"strings"
	"time"

	"github.com/gorilla/mux"
	"github.com/pkg/errors"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/robfig/cron/v3"
	"github.com/venicegeo/bf-goes-broker/archive"
	"github.com/venicegeo/bf-goes-broker/catalog"
	"github.com/venicegeo/bf-goes-broker/goes"
	"github.com/venicegeo/bf-goes-broker/localindex/db"
	"github.com/venicegeo/bf-goes-broker/observability"
	"github.com/venicegeo/bf-goes-broker/util"
	cli "gopkg.in/urfave/cli.v1"
)

//maxTimeBetweenJobs backs up the cron schedule in case a tick is missed.
const maxTimeBetweenJobs = 24 * time.Hour

//parseTargets reads satellite:product pairs, resolving aliases
func parseTargets(raw []string, defaults util.QuerySettings) ([]db.Target, error) {
	if len(raw) == 0 {
		raw = []string{defaults.Satellite + ":" + defaults.Product}
	}
	targets := make([]db.Target, 0, len(raw))
	for _, entry := range raw {
		parts := strings.SplitN(entry, ":", 2)
		if len(parts) != 2 {
			return nil, &catalog.InvalidQueryError{Field: "target", Value: entry}
		}
		req, err := goes.Resolve(parts[0], parts[1], defaults.Domain, nil)
		if err != nil {
			return nil, err
		}
		targets = append(targets, db.Target{Satellite: req.Satellite, Product: req.Product})
	}
	return targets, nil
}

//ingestAction starts the worker process and an http server
func ingestAction(c *cli.Context) error {
	logContext := &util.BasicLogContext{}

	settings, err := loadSettings()
	if err != nil {
		return err
	}
	targets, err := parseTargets(c.StringSlice("target"), settings.Default)
	if err != nil {
		return err
	}
	arc, err := archive.New(context.Background())
	if err != nil {
		return err
	}
	metrics, err := observability.NewCollector(prometheus.DefaultRegisterer)
	if err != nil {
		return err
	}

	importer := db.NewImporter(arc, targets, util.GetIngestWindow(), getDbConnectionFunc)
	importer.ListingLocation = c.String("listing")
	importer.ListingIsGzip = c.Bool("gzip")
	importer.Metrics = metrics

	if c.Bool("once") {
		fmt.Fprintln(output, importer.Import(nil))
		return nil
	}

	//Create the channel that sends the start/stop messages to the Importer.
	messageChan := make(chan string, 5)

	schedule := util.GetIngestSchedule()
	scheduler := cron.New()
	if _, err = scheduler.AddFunc(schedule, func() {
		select {
		case messageChan <- db.BeginIngestJobMessage:
		default:
			util.LogAlert(logContext, "Ingest job still queued, skipping scheduled start")
		}
	}); err != nil {
		return errors.Wrapf(err, "ingest schedule `%s`", schedule)
	}
	scheduler.Start()
	defer scheduler.Stop()

	go importer.ImportWhile(messageChan, maxTimeBetweenJobs)

	portStr := getPortStr()
	util.LogInfo(logContext, fmt.Sprintf("Ingesting %d products on `%s`, status on %s", len(targets), schedule, portStr))
	launchServerFunc(portStr, createIngestRouter(importer, messageChan, metrics))
	return nil
}

func createIngestRouter(importer *db.Importer, messageChan chan<- string, metrics *observability.Collector) *mux.Router {
	router := mux.NewRouter()
	router.Use(metrics.Middleware)
	router.HandleFunc("/", func(writer http.ResponseWriter, request *http.Request) {
		writer.Write([]byte("OK"))
	})
	router.Handle("/metrics", metrics.Handler())
	router.HandleFunc("/ingest/", func(resp http.ResponseWriter, req *http.Request) {
		handleImportStatus(importer, resp, req)
	})
	router.HandleFunc("/ingest/start", func(resp http.ResponseWriter, req *http.Request) {
		handleForceStartIngest(importer, messageChan, resp, req)
	})
	router.HandleFunc("/ingest/cancel", func(resp http.ResponseWriter, req *http.Request) {
		handleCancel(importer, messageChan, resp, req)
	})
	return router
}

//handleImportStatus requests the status from the importer and writes it out.
func handleImportStatus(imp *db.Importer, writer http.ResponseWriter, req *http.Request) {
	fmt.Fprintln(writer, imp.GetStatus())
}

//handleForceStartIngest sends a "begin" message to the importer and returns the new status to the user.
func handleForceStartIngest(imp *db.Importer, messageChan chan<- string, writer http.ResponseWriter, req *http.Request) {
	select {
	case messageChan <- db.BeginIngestJobMessage:
		fmt.Fprintln(writer, "Begin job request submitted.")
	default:
		fmt.Fprintln(writer, "Error submitting request.")
	}
	fmt.Fprintln(writer, imp.GetStatus())
}

//handleCancel sends a "cancel" message to the importer and returns the new status to the user.
func handleCancel(imp *db.Importer, cancelChan chan<- string, writer http.ResponseWriter, req *http.Request) {
	select {
	case cancelChan <- db.AbortIngestJobMessage:
		fmt.Fprintln(writer, "Cancel request submitted.")
	default:
		fmt.Fprintln(writer, "Error submitting cancel request.")
	}
	fmt.Fprintln(writer, imp.GetStatus())
}
