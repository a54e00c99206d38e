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

package util

import (
	"fmt"
	"net/http"
)

// Error is a loggable error carrying the upstream response that caused it
type Error struct {
	LogMsg     string
	SimpleMsg  string
	Response   string
	URL        string
	HTTPStatus int
}

func (err Error) Error() string {
	if err.SimpleMsg != "" {
		return err.SimpleMsg
	}
	return err.LogMsg
}

// Log logs the error and returns an HTTPErr suitable for handing back to a
// caller. The optional prepend string is placed ahead of the simple message.
func (err Error) Log(ctx LogContext, prepend string) error {
	message := err.SimpleMsg
	if prepend != "" {
		message = prepend + ": " + message
	}
	logMessage := message
	if err.LogMsg != "" {
		logMessage = err.LogMsg
	}
	sessionEvent(ctx, ERROR).
		Str("url", err.URL).
		Int("status", err.HTTPStatus).
		Str("response", err.Response).
		Msg(logMessage)

	status := err.HTTPStatus
	if status == 0 {
		status = http.StatusInternalServerError
	}
	return HTTPErr{Status: status, Message: message}
}

// HTTPErr is an error that knows which HTTP status it maps to
type HTTPErr struct {
	Status  int
	Message string
}

func (err HTTPErr) Error() string {
	return fmt.Sprintf("%d: %s", err.Status, err.Message)
}

// HTTPError writes an error message to the response with the given status
// and audits the failed request
func HTTPError(r *http.Request, w http.ResponseWriter, ctx LogContext, message string, status int) {
	actee := ""
	if r != nil && r.URL != nil {
		actee = r.URL.String()
	}
	LogAudit(ctx, LogAuditInput{Actor: "anon user", Action: "respond", Actee: actee, Message: message, Severity: WARNING})
	w.Header().Set("Content-Type", "text/plain; charset=utf-8")
	w.WriteHeader(status)
	w.Write([]byte(message))
}
