// Copyright 2016, RadiantBlue Technologies, Inc.
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
	"os"
	"strconv"
	"strings"
	"time"
)

// Environment variables
const (
	GOES_ARCHIVE            = "GOES_ARCHIVE"
	GOES_S3_ENDPOINT        = "GOES_S3_ENDPOINT"
	GOES_CONFIG_PATH        = "GOES_CONFIG_PATH"
	GOES_SAVE_DIR           = "GOES_SAVE_DIR"
	GOES_INGEST_SCHEDULE    = "GOES_INGEST_SCHEDULE"
	GOES_INGEST_WINDOW      = "GOES_INGEST_WINDOW"
	GOES_TRACING_ENABLED    = "GOES_TRACING_ENABLED"
	GOES_USE_LOCAL_INDEX    = "GOES_USE_LOCAL_INDEX"
	GOES_FIXED_ECCENTRICITY = "GOES_FIXED_ECCENTRICITY"
)

// Archive names accepted by GOES_ARCHIVE
const (
	ArchiveAWS = "aws"
	ArchiveGCP = "gcp"
)

const (
	defaultS3Endpoint     = "https://s3.amazonaws.com"
	defaultIngestSchedule = "*/10 * * * *"
	defaultIngestWindow   = 3 * time.Hour
)

// GetArchiveName returns which public archive mirror to list and fetch from
func GetArchiveName() string {
	archive, ok := os.LookupEnv(GOES_ARCHIVE)
	if !ok {
		return ArchiveAWS
	}
	archive = strings.ToLower(strings.TrimSpace(archive))
	if archive != ArchiveAWS && archive != ArchiveGCP {
		LogAlert(&BasicLogContext{}, fmt.Sprintf("Unknown archive `%s` in %s, falling back to %s", archive, GOES_ARCHIVE, ArchiveAWS))
		return ArchiveAWS
	}
	return archive
}

// GetS3Endpoint returns the base URL of the S3 service hosting the GOES buckets
func GetS3Endpoint() string {
	endpoint, ok := os.LookupEnv(GOES_S3_ENDPOINT)
	if !ok || endpoint == "" {
		return defaultS3Endpoint
	}
	return strings.TrimSuffix(endpoint, "/")
}

// GetConfigPath returns the path of the TOML defaults file
func GetConfigPath() string {
	if path, ok := os.LookupEnv(GOES_CONFIG_PATH); ok && path != "" {
		return path
	}
	home, err := os.UserHomeDir()
	if err != nil {
		return "config.toml"
	}
	return home + "/.config/bf-goes-broker/config.toml"
}

// GetIngestSchedule returns the cron schedule used to refresh the local index
func GetIngestSchedule() string {
	schedule, ok := os.LookupEnv(GOES_INGEST_SCHEDULE)
	if !ok || schedule == "" {
		LogInfo(&BasicLogContext{}, "No ingest schedule in the environment. Using default: "+defaultIngestSchedule)
		return defaultIngestSchedule
	}
	return schedule
}

// GetIngestWindow returns how far back each ingest job lists the archive
func GetIngestWindow() time.Duration {
	raw, ok := os.LookupEnv(GOES_INGEST_WINDOW)
	if !ok {
		return defaultIngestWindow
	}
	window, err := time.ParseDuration(raw)
	if err != nil || window < time.Hour {
		LogAlert(&BasicLogContext{}, fmt.Sprintf("Ingest window `%s` is invalid or under an hour. Using default %v", raw, defaultIngestWindow))
		return defaultIngestWindow
	}
	return window
}

// IsTracingEnabled returns true if GOES_TRACING_ENABLED is true
func IsTracingEnabled() bool {
	enabled, _ := strconv.ParseBool(os.Getenv(GOES_TRACING_ENABLED))
	return enabled
}

// IsLocalIndexEnabled returns true if queries should be answered from the
// Postgres index instead of live archive listings
func IsLocalIndexEnabled() bool {
	enabled, _ := strconv.ParseBool(os.Getenv(GOES_USE_LOCAL_INDEX))
	return enabled
}

// IsFixedEccentricity returns true if inverse transforms should use the
// GRS80 eccentricity constant rather than deriving it from the axes
func IsFixedEccentricity() bool {
	fixed, _ := strconv.ParseBool(os.Getenv(GOES_FIXED_ECCENTRICITY))
	return fixed
}
