// Copyright (C) 2025 Aleutian AI (jinterlante@aleutian.ai)
// This program is free software: you can redistribute it and/or modify
// it under the terms of the GNU Affero General Public License as published by
// the Free Software Foundation, either version 3 of the License, or
// (at your option) any later version.
// See the LICENSE.txt file for the full license text.
//
// NOTE: This work is subject to additional terms under AGPL v3 Section 7.
// See the NOTICE.txt file for details regarding AI system attribution.

package main

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/AleutianAI/AirsideFDD/pkg/ingest"
	"github.com/AleutianAI/AirsideFDD/pkg/logging"
	"github.com/AleutianAI/AirsideFDD/pkg/profile"
	"github.com/AleutianAI/AirsideFDD/pkg/timeseries"
)

// newLogger builds the process logger from the global logging flags. An
// unusable log directory degrades to stderr-only logging instead of
// aborting.
func newLogger() *logging.Logger {
	level := logging.LevelInfo
	if verbose {
		level = logging.LevelDebug
	}
	return logging.New(logging.Config{
		Level:   level,
		LogDir:  logDir,
		Service: "airside",
		JSON:    jsonLogs,
	})
}

// loadDataset materializes the profile's dataset as a wide table. For sqlite
// sources the open store is returned as well so flag columns can be written
// back after evaluation; the caller owns closing it.
func loadDataset(ctx context.Context, ds *profile.Dataset, logger *logging.Logger) (*timeseries.Table, *ingest.SQLiteStore, error) {
	switch ds.Source {
	case profile.SourceCSV:
		tbl, err := ingest.ReadCSV(ds.Path, ingest.CSVOptions{
			IndexColumn:    ds.IndexColumn,
			RollingMean:    ds.RollingWindow(),
			PercentColumns: ds.PercentColumns,
		})
		if err != nil {
			return nil, nil, fmt.Errorf("read %s: %w", ds.Path, err)
		}
		return tbl, nil, nil

	case profile.SourceSQLite:
		store, err := ingest.OpenSQLite(ds.Path)
		if err != nil {
			return nil, nil, fmt.Errorf("open %s: %w", ds.Path, err)
		}
		tbl, err := store.LoadTable(ctx, ds.Sensors)
		if err == nil {
			tbl, err = conditionTable(tbl, ds)
		}
		if err != nil {
			_ = store.Close()
			return nil, nil, fmt.Errorf("load %s: %w", ds.Path, err)
		}
		return tbl, store, nil

	case profile.SourceInflux:
		src, err := ingest.NewInfluxSource(ds.Influx, logger.Slog())
		if err != nil {
			return nil, nil, err
		}
		defer src.Close()
		tbl, err := src.Fetch(ctx, ds.Sensors)
		if err == nil {
			tbl, err = conditionTable(tbl, ds)
		}
		if err != nil {
			return nil, nil, fmt.Errorf("fetch from influx: %w", err)
		}
		return tbl, nil, nil
	}
	return nil, nil, fmt.Errorf("unknown dataset source %q", ds.Source)
}

// conditionTable applies the percent rescale and rolling mean that ReadCSV
// performs inline for CSV sources, so every source hands the engine the same
// shape of data.
func conditionTable(tbl *timeseries.Table, ds *profile.Dataset) (*timeseries.Table, error) {
	for _, name := range ds.PercentColumns {
		vals, ok := tbl.Column(name)
		if !ok {
			return nil, fmt.Errorf("percentage column %q not in dataset", name)
		}
		for i := range vals {
			vals[i] /= 100
		}
	}
	if w := ds.RollingWindow(); w > 0 {
		tbl = tbl.RollingMean(w)
	}
	return tbl, nil
}

// datasetStem names result artifacts after the dataset they came from.
func datasetStem(ds *profile.Dataset) string {
	if ds.Source == profile.SourceInflux {
		return ds.Influx.Measurement
	}
	base := filepath.Base(ds.Path)
	return strings.TrimSuffix(base, filepath.Ext(base))
}

// resolveOutputDir picks --out when given, otherwise the dataset's own
// directory. Influx datasets have no path, so they fall back to the working
// directory.
func resolveOutputDir(ds *profile.Dataset) string {
	if outputDir != "" {
		return outputDir
	}
	if ds.Path != "" {
		return filepath.Dir(ds.Path)
	}
	return "."
}

func writeJSON(path string, v any) error {
	data, err := json.MarshalIndent(v, "", "  ")
	if err != nil {
		return err
	}
	return os.WriteFile(path, append(data, '\n'), 0o644)
}
