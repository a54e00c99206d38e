package main

import (
	"context"
	"fmt"
	"io"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/pkg/errors"
	"github.com/venicegeo/bf-goes-broker/archive"
	"github.com/venicegeo/bf-goes-broker/catalog"
	"github.com/venicegeo/bf-goes-broker/goes"
	"github.com/venicegeo/bf-goes-broker/localindex"
	"github.com/venicegeo/bf-goes-broker/model"
	"github.com/venicegeo/bf-goes-broker/util"
	cli "gopkg.in/urfave/cli.v1"
)

// output receives every command's GeoJSON or text result
var output io.Writer = os.Stdout

// newClient builds a retrieval client over the configured archive, reading
// through the local index when GOES_USE_LOCAL_INDEX is set
func newClient(ctx context.Context, logContext util.LogContext) (*goes.Client, *archive.Archive, error) {
	arc, err := archive.New(ctx)
	if err != nil {
		return nil, nil, err
	}
	client := &goes.Client{
		Source:            arc,
		Fetcher:           arc,
		FixedEccentricity: util.IsFixedEccentricity(),
		LogContext:        logContext,
	}
	if util.IsLocalIndexEnabled() {
		database, err := getDbConnectionFunc(logContext)
		if err != nil {
			return nil, nil, errors.Wrap(err, "open local index")
		}
		util.LogInfo(logContext, "Answering listings from the local index")
		client.Source = localindex.NewCachedSource(database, arc)
	}
	return client, arc, nil
}

func loadSettings() (util.Settings, error) {
	return util.LoadSettings(util.GetConfigPath())
}

// querySettings layers command line flags over the config file section
func querySettings(c *cli.Context, qs util.QuerySettings) util.QuerySettings {
	if c.IsSet("satellite") {
		qs.Satellite = c.String("satellite")
	}
	if c.IsSet("product") {
		qs.Product = c.String("product")
	}
	if c.IsSet("domain") {
		qs.Domain = c.String("domain")
	}
	if c.IsSet("download") {
		qs.Download = c.Bool("download")
	}
	if c.IsSet("overwrite") {
		qs.Overwrite = c.Bool("overwrite")
	}
	if c.IsSet("save-dir") {
		qs.SaveDir = c.String("save-dir")
	}
	if c.IsSet("max-workers") {
		qs.MaxWorkers = c.Int("max-workers")
	}
	if c.IsSet("within") {
		qs.Within = c.String("within")
	}
	if c.IsSet("recent") {
		qs.Recent = c.String("recent")
	}
	return qs
}

func resolveRequest(c *cli.Context, qs util.QuerySettings) (goes.Request, error) {
	bands, err := goes.ParseBands(c.String("bands"))
	if err != nil {
		return goes.Request{}, err
	}
	return goes.Resolve(qs.Satellite, qs.Product, qs.Domain, bands)
}

// queryCommand is the shared shape of timerange, nearesttime and latest
type queryCommand func(ctx context.Context, client *goes.Client, req goes.Request, qs util.QuerySettings) (catalog.Selection, *model.ScanAngleData, error)

func runQuery(c *cli.Context, section func(util.Settings) util.QuerySettings, query queryCommand) error {
	logContext := &util.BasicLogContext{}
	ctx := context.Background()

	settings, err := loadSettings()
	if err != nil {
		return err
	}
	qs := querySettings(c, section(settings))
	req, err := resolveRequest(c, qs)
	if err != nil {
		return err
	}
	client, arc, err := newClient(ctx, logContext)
	if err != nil {
		return err
	}

	selection, scan, err := query(ctx, client, req, qs)
	if err != nil {
		return err
	}

	creators := make([]model.GeoJSONFeatureCreator, len(selection))
	for i, record := range selection {
		result := model.NewObservationResult(record)
		bucket, objectURL := arc.Location(record.Satellite, record.Path)
		result.ArchiveLocation = &model.ArchiveLocation{Bucket: bucket, URL: objectURL}
		result.ScanAngleData = scan
		creators[i] = result
	}

	if qs.Download && !selection.NoData() {
		files, err := client.Download(ctx, selection, goes.DownloadOptions{
			SaveDir:    qs.SaveDir,
			Overwrite:  qs.Overwrite,
			MaxWorkers: qs.MaxWorkers,
		})
		if err != nil {
			return err
		}
		for i, file := range files {
			result := creators[i].(model.ObservationResult)
			result.LocalFileData = &model.LocalFileData{LocalPath: file.LocalPath, Skipped: file.Skipped}
			creators[i] = result
		}
	}

	return writeCollection(model.MultiBrokerResult{FeatureCreators: creators}, selection.NoData())
}

func writeCollection(creator model.GeoJSONFeatureCollectionCreator, noData bool) error {
	body, err := model.MarshalCollection(creator, noData)
	if err != nil {
		return err
	}
	_, err = fmt.Fprintln(output, string(body))
	return err
}

func timeRangeAction(c *cli.Context) error {
	return runQuery(c, func(s util.Settings) util.QuerySettings { return s.TimeRange },
		func(ctx context.Context, client *goes.Client, req goes.Request, qs util.QuerySettings) (catalog.Selection, *model.ScanAngleData, error) {
			if c.String("start") == "" && c.String("end") == "" {
				recent, err := time.ParseDuration(qs.Recent)
				if err != nil {
					return nil, nil, errors.Wrapf(err, "recent `%s`", qs.Recent)
				}
				selection, err := client.Recent(ctx, req, recent)
				return selection, nil, err
			}
			start, err := model.ParseQueryTime(c.String("start"))
			if err != nil {
				return nil, nil, err
			}
			end, err := model.ParseQueryTime(c.String("end"))
			if err != nil {
				return nil, nil, err
			}
			selection, err := client.TimeRange(ctx, req, start, end)
			return selection, nil, err
		})
}

func nearestTimeAction(c *cli.Context) error {
	return runQuery(c, func(s util.Settings) util.QuerySettings { return s.NearestTime },
		func(ctx context.Context, client *goes.Client, req goes.Request, qs util.QuerySettings) (catalog.Selection, *model.ScanAngleData, error) {
			attime, err := model.ParseQueryTime(c.String("attime"))
			if err != nil {
				return nil, nil, err
			}
			within, err := qs.WithinDuration()
			if err != nil {
				return nil, nil, errors.Wrapf(err, "within `%s`", qs.Within)
			}
			if c.String("lat") == "" && c.String("lon") == "" {
				selection, err := client.NearestTime(ctx, req, attime, within)
				return selection, nil, err
			}

			lat, err := strconv.ParseFloat(strings.TrimSpace(c.String("lat")), 64)
			if err != nil {
				return nil, nil, &catalog.InvalidQueryError{Field: "lat", Value: c.String("lat")}
			}
			lon, err := strconv.ParseFloat(strings.TrimSpace(c.String("lon")), 64)
			if err != nil {
				return nil, nil, &catalog.InvalidQueryError{Field: "lon", Value: c.String("lon")}
			}
			point, err := client.Point(ctx, req, lat, lon, attime, within)
			if err != nil {
				return nil, nil, err
			}
			scan := &model.ScanAngleData{Latitude: lat, Longitude: lon, X: point.ScanAngle.X, Y: point.ScanAngle.Y}
			return point.Selection, scan, nil
		})
}

func latestAction(c *cli.Context) error {
	return runQuery(c, func(s util.Settings) util.QuerySettings { return s.Latest },
		func(ctx context.Context, client *goes.Client, req goes.Request, qs util.QuerySettings) (catalog.Selection, *model.ScanAngleData, error) {
			selection, err := client.Latest(ctx, req)
			return selection, nil, err
		})
}
