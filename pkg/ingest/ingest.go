// Copyright (C) 2025 Aleutian AI (jinterlante@aleutian.ai)
// This program is free software: you can redistribute it and/or modify
// it under the terms of the GNU Affero General Public License as published by
// the Free Software Foundation, either version 3 of the License, or
// (at your option) any later version.
// See the LICENSE.txt file for the full license text.
//
// NOTE: This work is subject to additional terms under AGPL v3 Section 7.
// See the NOTICE.txt file for details regarding AI system attribution.

// Package ingest materializes sensor tables from the places building
// telemetry actually lives: CSV exports, the long-format SQLite archives
// produced by BAS trend collectors, and InfluxDB buckets. It also provides
// the drop-directory watcher behind watch mode.
//
// Ingestion owns the data cleanup the rule engine refuses to do: timestamp
// parsing, percent normalization (0-100 to 0-1), and optional rolling-mean
// smoothing all happen here, so the engine sees analog signals on the [0, 1]
// scale it validates.
package ingest

import (
	"fmt"
	"time"
)

// timeLayouts are tried in order when parsing CSV and SQLite timestamps.
var timeLayouts = []string{
	time.RFC3339,
	"2006-01-02 15:04:05",
	"2006-01-02 15:04",
	"1/2/2006 15:04",
}

// parseTimestamp parses a timestamp using the supported layouts.
func parseTimestamp(s string) (time.Time, error) {
	for _, layout := range timeLayouts {
		if ts, err := time.Parse(layout, s); err == nil {
			return ts, nil
		}
	}
	return time.Time{}, fmt.Errorf("unrecognized timestamp %q", s)
}

// sqliteTimeLayout is the storage format for SQLite timestamps.
const sqliteTimeLayout = "2006-01-02 15:04:05"
