// Copyright 2018, RadiantBlue Technologies, Inc.
//
// Licensed under the Apache License, Version 2.0 (the "License");
// you may not use this file except in compliance with the License.
// You may obtain a copy of the License at
//
//   http://www.apache.org/licenses/LICENSE-2.0
//
// Unless required by applicable law or agreed to in writing, software
// distributed under the License is distributed on an "AS IS" BASIS,
// WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
// See the License for the specific language governing permissions and
// limitations under the License.

package main

import (
	"fmt"
	"os"

	"github.com/venicegeo/bf-goes-broker/observability"
	"github.com/venicegeo/bf-goes-broker/util"
	cli "gopkg.in/urfave/cli.v1"
)

// Version is stamped at build time with -ldflags "-X main.Version=..."
var Version = "0.1.0"

var queryFlags = []cli.Flag{
	cli.StringFlag{Name: "satellite", Usage: "Satellite bucket or alias, e.g. noaa-goes16, 16, EAST"},
	cli.StringFlag{Name: "product", Usage: "Product name or alias, e.g. ABI-L2-MCMIP, GLM"},
	cli.StringFlag{Name: "domain", Usage: "Imager domain: C, F, M, M1 or M2"},
	cli.StringFlag{Name: "bands", Usage: "Comma separated ABI bands"},
	cli.BoolFlag{Name: "download", Usage: "Download the selected files (--download=false to only list)"},
	cli.BoolFlag{Name: "overwrite", Usage: "Replace files that are already present"},
	cli.StringFlag{Name: "save-dir", Usage: "Directory downloads are written under"},
	cli.IntFlag{Name: "max-workers", Usage: "Parallel downloads"},
}

func withQueryFlags(flags ...cli.Flag) []cli.Flag {
	return append(append([]cli.Flag{}, queryFlags...), flags...)
}

var geometryFlags = []cli.Flag{
	cli.StringFlag{Name: "satellite", Value: "noaa-goes16", Usage: "Satellite bucket or alias"},
	cli.StringFlag{Name: "instrument", Value: "ABI", Usage: "ABI or GLM"},
	cli.StringFlag{Name: "units", Value: "degrees", Usage: "degrees or radians"},
}

var (
	gridXFlag = cli.StringFlag{Name: "grid-x", Usage: "Comma separated x sample coordinates of a product grid, radians"}
	gridYFlag = cli.StringFlag{Name: "grid-y", Usage: "Comma separated y sample coordinates of a product grid, radians"}
)

func withGeometryFlags(flags ...cli.Flag) []cli.Flag {
	return append(append([]cli.Flag{}, geometryFlags...), flags...)
}

var commands = cli.Commands{
	cli.Command{
		Name:    "serve",
		Aliases: []string{"s"},
		Usage:   "Launch the bf-goes-broker webserver",
		Action:  serveAction,
	},
	cli.Command{
		Name:    "version",
		Aliases: []string{"v"},
		Usage:   "Print the version number of the Broker CLI",
		Action:  versionAction,
	},
	cli.Command{
		Name:    "ingest",
		Aliases: []string{"i"},
		Usage:   "Keep the local observation index up to date",
		Action:  ingestAction,
		Flags: []cli.Flag{
			cli.StringSliceFlag{Name: "target", Usage: "satellite:product to index; repeatable"},
			cli.StringFlag{Name: "listing", Usage: "File or URL of object keys to ingest instead of listing the archive"},
			cli.BoolFlag{Name: "gzip", Usage: "The listing is gzipped"},
			cli.BoolFlag{Name: "once", Usage: "Run a single ingest job and exit"},
		},
	},
	cli.Command{
		Name:    "migrate",
		Aliases: []string{"m"},
		Usage:   "Update database schema",
		Action:  migrateDatabaseAction,
	},
	cli.Command{
		Name:   "timerange",
		Usage:  "List or download observations inside a time window",
		Action: timeRangeAction,
		Flags: withQueryFlags(
			cli.StringFlag{Name: "start", Usage: "Window start"},
			cli.StringFlag{Name: "end", Usage: "Window end"},
			cli.StringFlag{Name: "recent", Usage: "Window of this duration ending now, instead of start/end"},
		),
	},
	cli.Command{
		Name:   "nearesttime",
		Usage:  "List or download the observations nearest a time",
		Action: nearestTimeAction,
		Flags: withQueryFlags(
			cli.StringFlag{Name: "attime", Usage: "Target time"},
			cli.StringFlag{Name: "within", Usage: "How far from attime to look, e.g. 1h"},
			cli.StringFlag{Name: "lat", Usage: "Latitude of a point that must be visible"},
			cli.StringFlag{Name: "lon", Usage: "Longitude of a point that must be visible"},
		),
	},
	cli.Command{
		Name:   "latest",
		Usage:  "List or download the most recent observations",
		Action: latestAction,
		Flags:  withQueryFlags(),
	},
	cli.Command{
		Name:   "latlon",
		Usage:  "Convert latitude/longitude to fixed-grid scan angles",
		Action: latLonAction,
		Flags: withGeometryFlags(
			cli.StringFlag{Name: "lat", Usage: "Comma separated latitudes"},
			cli.StringFlag{Name: "lon", Usage: "Comma separated longitudes"},
			gridXFlag,
			gridYFlag,
		),
	},
	cli.Command{
		Name:   "xy",
		Usage:  "Convert fixed-grid scan angles (radians) to latitude/longitude",
		Action: xyAction,
		Flags: withGeometryFlags(
			cli.StringFlag{Name: "x", Usage: "Comma separated east-west scan angles"},
			cli.StringFlag{Name: "y", Usage: "Comma separated north-south scan angles"},
		),
	},
	cli.Command{
		Name:   "fov",
		Usage:  "Print an instrument field of view as GeoJSON",
		Action: fieldOfViewAction,
		Flags: withGeometryFlags(
			cli.StringFlag{Name: "extent", Usage: "xmin,xmax,ymin,ymax of a regional domain, radians"},
			gridXFlag,
			gridYFlag,
			cli.BoolFlag{Name: "geodetic", Usage: "Project the rings to longitude/latitude"},
			cli.IntFlag{Name: "resolution", Usage: "Disk vertices per quarter circle"},
		),
	},
}

func createCliApp() (app *cli.App) {
	app = cli.NewApp()
	app.Name = "bf-goes-broker"
	app.Usage = "Find, download and locate GOES-R observations"
	app.Version = Version
	app.Commands = commands

	var shutdownTracing func()
	app.Before = func(*cli.Context) error {
		// Spans go to stderr so they never mix with GeoJSON on stdout.
		cfg := observability.TracingConfigFromEnv()
		cfg.Writer = os.Stderr
		shutdown, err := observability.InitTracing(cfg)
		if err != nil {
			return err
		}
		shutdownTracing = func() { observability.ShutdownWithTimeout(shutdown) }
		return nil
	}
	app.After = func(*cli.Context) error {
		if shutdownTracing != nil {
			shutdownTracing()
		}
		return nil
	}
	return
}

func versionAction(*cli.Context) {
	fmt.Fprintf(output, "%s %s\n", util.AppName, Version)
}
