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
	"io"
	"os"
	"strings"
	"sync"

	"github.com/pkg/errors"
	"github.com/rs/zerolog"
)

// AppName is the name every log line is tagged with
const AppName = "bf-goes-broker"

// Severity is the audit severity of a log message
type Severity string

// Recognized severities, ordered from least to most severe
const (
	DEBUG   Severity = "DEBUG"
	INFO    Severity = "INFO"
	NOTICE  Severity = "NOTICE"
	WARNING Severity = "WARNING"
	ERROR   Severity = "ERROR"
	ALERT   Severity = "ALERT"
	FATAL   Severity = "FATAL"
)

func (s Severity) level() zerolog.Level {
	switch s {
	case DEBUG:
		return zerolog.DebugLevel
	case INFO, NOTICE:
		return zerolog.InfoLevel
	case WARNING, ALERT:
		return zerolog.WarnLevel
	case ERROR:
		return zerolog.ErrorLevel
	case FATAL:
		return zerolog.FatalLevel
	}
	return zerolog.InfoLevel
}

// LogContext is the interface for anything that can place log lines into
// a session
type LogContext interface {
	AppName() string
	SessionID() string
	LogRootDir() string
}

// BasicLogContext is a LogContext with no state other than its session ID
type BasicLogContext struct {
	once      sync.Once
	sessionID string
}

// AppName returns the application name
func (c *BasicLogContext) AppName() string {
	return AppName
}

// SessionID returns a Session ID, creating one if needed
func (c *BasicLogContext) SessionID() string {
	c.once.Do(func() {
		if c.sessionID == "" {
			c.sessionID, _ = PsuUUID()
		}
	})
	return c.sessionID
}

// LogRootDir returns an empty string
func (c *BasicLogContext) LogRootDir() string {
	return ""
}

// LogAuditInput describes a single audited action
type LogAuditInput struct {
	Actor    string
	Action   string
	Actee    string
	Message  string
	Severity Severity
}

var (
	loggerMu sync.RWMutex
	logger   = newLogger(os.Stderr)
)

// newLogger builds the process logger; LOG_LEVEL picks the minimum level and
// LOG_FORMAT=text switches from JSON lines to a console writer.
func newLogger(w io.Writer) zerolog.Logger {
	level := zerolog.InfoLevel
	if raw, ok := os.LookupEnv("LOG_LEVEL"); ok {
		if parsed, err := zerolog.ParseLevel(strings.ToLower(raw)); err == nil {
			level = parsed
		}
	}
	if strings.EqualFold(os.Getenv("LOG_FORMAT"), "text") {
		w = zerolog.ConsoleWriter{Out: w, TimeFormat: "2006-01-02T15:04:05Z07:00"}
	}
	return zerolog.New(w).Level(level).With().Timestamp().Str("app", AppName).Logger()
}

// SetLogOutput redirects all log output; it is mainly useful in tests
func SetLogOutput(w io.Writer) {
	loggerMu.Lock()
	defer loggerMu.Unlock()
	logger = newLogger(w)
}

func currentLogger() *zerolog.Logger {
	loggerMu.RLock()
	defer loggerMu.RUnlock()
	l := logger
	return &l
}

func sessionEvent(ctx LogContext, severity Severity) *zerolog.Event {
	event := currentLogger().WithLevel(severity.level()).Str("severity", string(severity))
	if ctx != nil {
		event = event.Str("session", ctx.SessionID())
	}
	return event
}

// LogAudit records an audited action
func LogAudit(ctx LogContext, input LogAuditInput) {
	severity := input.Severity
	if severity == "" {
		severity = INFO
	}
	sessionEvent(ctx, severity).
		Str("actor", input.Actor).
		Str("action", input.Action).
		Str("actee", input.Actee).
		Msg(input.Message)
}

// LogInfo logs an informational message
func LogInfo(ctx LogContext, message string) {
	sessionEvent(ctx, INFO).Msg(message)
}

// LogAlert logs a message that an operator should notice
func LogAlert(ctx LogContext, message string) {
	sessionEvent(ctx, ALERT).Msg(message)
}

// LogSimpleErr logs an error along with a message and returns an error
// combining both
func LogSimpleErr(ctx LogContext, message string, err error) error {
	sessionEvent(ctx, ERROR).Err(err).Msg(message)
	if err == nil {
		return errors.New(message)
	}
	return errors.Wrap(err, message)
}
