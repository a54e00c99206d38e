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

	"github.com/venicegeo/bf-goes-broker/util"
)

func main() {
	logContext := &util.BasicLogContext{}
	if err := util.LoadEnvFile(".env"); err != nil {
		util.LogAlert(logContext, fmt.Sprintf("Could not read .env file: %v", err))
	}
	util.LogAudit(logContext, util.LogAuditInput{Actor: "main()", Action: "startup", Actee: "self", Message: "Application Startup", Severity: util.INFO})
	err := createCliApp().Run(os.Args)
	if err != nil {
		util.LogAlert(logContext, fmt.Sprintf("Error executing CLI app: %v", err))
		os.Exit(1)
	}
}
