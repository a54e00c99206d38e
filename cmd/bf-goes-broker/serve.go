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
	"context"
	"fmt"
	"net/http"
	"os"

	"github.com/gorilla/mux"
	"github.com/pkg/errors"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/venicegeo/bf-goes-broker/discover"
	"github.com/venicegeo/bf-goes-broker/observability"
	"github.com/venicegeo/bf-goes-broker/util"
	cli "gopkg.in/urfave/cli.v1"
)

func getPortStr() string {
	if port, ok := os.LookupEnv("PORT"); ok {
		return ":" + port
	}
	return ":8080"
}

func createRouter(ctx util.LogContext) (*mux.Router, error) {
	settings, err := loadSettings()
	if err != nil {
		return nil, err
	}
	metrics, err := observability.NewCollector(prometheus.DefaultRegisterer)
	if err != nil {
		return nil, errors.Wrap(err, "register metrics")
	}
	client, arc, err := newClient(context.Background(), ctx)
	if err != nil {
		return nil, err
	}
	client.Metrics = metrics

	return discover.NewRouter(discover.Context{
		Client:   client,
		Defaults: settings.NearestTime,
		Locate:   arc.Location,
	}, metrics), nil
}

func serveAction(*cli.Context) {
	logContext := &(util.BasicLogContext{})

	portStr := getPortStr()
	util.LogInfo(logContext, fmt.Sprintf("Serving %s archive listings on %s", util.GetArchiveName(), portStr))

	if router, err := createRouter(logContext); err == nil {
		launchServerFunc(portStr, router)
	} else {
		util.LogSimpleErr(logContext, "Failed to create router: ", err)
	}
}

var launchServerFunc = launchServer

func launchServer(portStr string, router *mux.Router) {
	server := http.Server{
		Addr:    portStr,
		Handler: router,
	}

	if err := server.ListenAndServe(); err != nil {
		util.LogSimpleErr(&util.BasicLogContext{}, "Server stopped", err)
		os.Exit(1)
	}
}
