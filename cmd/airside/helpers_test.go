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
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/AleutianAI/AirsideFDD/pkg/ingest"
	"github.com/AleutianAI/AirsideFDD/pkg/profile"
	"github.com/AleutianAI/AirsideFDD/pkg/timeseries"
)

func TestDatasetStem(t *testing.T) {
	csvDS := profile.Dataset{Source: profile.SourceCSV, Path: "/exports/ahu1_march.csv"}
	assert.Equal(t, "ahu1_march", datasetStem(&csvDS))

	dbDS := profile.Dataset{Source: profile.SourceSQLite, Path: "fdd.db"}
	assert.Equal(t, "fdd", datasetStem(&dbDS))

	influxDS := profile.Dataset{
		Source: profile.SourceInflux,
		Influx: ingest.InfluxConfig{Measurement: "ahu1"},
	}
	assert.Equal(t, "ahu1", datasetStem(&influxDS))
}

func TestResolveOutputDir(t *testing.T) {
	// The --out flag is a package global, like the other cobra flags.
	prev := outputDir
	defer func() { outputDir = prev }()

	outputDir = ""
	ds := profile.Dataset{Path: "/exports/ahu1.csv"}
	assert.Equal(t, "/exports", resolveOutputDir(&ds))

	noPath := profile.Dataset{Source: profile.SourceInflux}
	assert.Equal(t, ".", resolveOutputDir(&noPath))

	outputDir = "/tmp/results"
	assert.Equal(t, "/tmp/results", resolveOutputDir(&ds))
}

func TestConditionTable(t *testing.T) {
	origin := time.Date(2024, 6, 1, 0, 0, 0, 0, time.UTC)
	index := []time.Time{origin, origin.Add(time.Minute)}
	tbl := timeseries.New(index)
	require.NoError(t, tbl.AddColumn("supply_vfd_speed", []float64{80, 100}))
	require.NoError(t, tbl.AddColumn("mat", []float64{55, 56}))

	p, err := profile.Parse([]byte(`
dataset:
  source: sqlite
  path: fdd.db
  sensors: [supply_vfd_speed, mat]
  percentage_columns: [supply_vfd_speed]
rules:
  - id: fc1
`))
	require.NoError(t, err)
	require.NoError(t, p.Validate())

	out, err := conditionTable(tbl, &p.Dataset)
	require.NoError(t, err)

	vfd, ok := out.Column("supply_vfd_speed")
	require.True(t, ok)
	assert.InDelta(t, 0.8, vfd[0], 1e-9)
	assert.InDelta(t, 1.0, vfd[1], 1e-9)
}

func TestConditionTableMissingPercentColumn(t *testing.T) {
	tbl := timeseries.New([]time.Time{time.Now()})
	require.NoError(t, tbl.AddColumn("mat", []float64{55}))

	ds := profile.Dataset{PercentColumns: []string{"supply_vfd_speed"}}
	_, err := conditionTable(tbl, &ds)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "supply_vfd_speed")
}

func TestWriteJSON(t *testing.T) {
	path := filepath.Join(t.TempDir(), "summary.json")
	require.NoError(t, writeJSON(path, map[string]int{"rows": 3}))

	data, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.JSONEq(t, `{"rows": 3}`, string(data))
	assert.Equal(t, byte('\n'), data[len(data)-1])
}
