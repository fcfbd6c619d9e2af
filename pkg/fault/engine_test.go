// Copyright (C) 2025 Aleutian AI (jinterlante@aleutian.ai)
// This program is free software: you can redistribute it and/or modify
// it under the terms of the GNU Affero General Public License as published by
// the Free Software Foundation, either version 3 of the License, or
// (at your option) any later version.
// See the LICENSE.txt file for the full license text.
//
// NOTE: This work is subject to additional terms under AGPL v3 Section 7.
// See the NOTICE.txt file for details regarding AI system attribution.

package fault

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestEngineRunMergesRowCadenceRules(t *testing.T) {
	fc2, err := NewFaultConditionTwo(FC2Config{
		MixDegFErrThres:     5.0,
		ReturnDegFErrThres:  2.0,
		OutdoorDegFErrThres: 5.0,
		MATCol:              "mat",
		RATCol:              "rat",
		OATCol:              "oat",
		SupplyVFDSpeedCol:   "supply_vfd_speed",
	})
	require.NoError(t, err)
	fc3, err := NewFaultConditionThree(testFC3Config())
	require.NoError(t, err)

	tbl := fc3Table(t, 85.0, 72.0, 55.0, 0.8)
	namesBefore := tbl.Names()

	engine := NewEngine(nil, fc2, fc3)
	res, err := engine.Run(context.Background(), tbl)
	require.NoError(t, err)

	assert.NotEmpty(t, res.RunID)
	assert.Empty(t, res.Failed())
	assert.True(t, res.Table.Has("fc2_flag"))
	assert.True(t, res.Table.Has("fc3_flag"))
	assert.Equal(t, namesBefore, tbl.Names(), "shared input table was modified")

	flags2, _ := res.Table.Column("fc2_flag")
	flags3, _ := res.Table.Column("fc3_flag")
	assert.Equal(t, []float64{0}, flags2)
	assert.Equal(t, []float64{1}, flags3)

	require.Len(t, res.Results, 2)
	assert.Equal(t, 1, res.Results[1].Flagged)
}

func TestEngineIsolatesFailingRules(t *testing.T) {
	broken, err := NewFaultConditionThree(FC3Config{
		MixDegFErrThres:     5.0,
		ReturnDegFErrThres:  2.0,
		OutdoorDegFErrThres: 5.0,
		MATCol:              "not_a_real_column",
		RATCol:              "rat",
		OATCol:              "oat",
		SupplyVFDSpeedCol:   "supply_vfd_speed",
	})
	require.NoError(t, err)
	healthy, err := NewFaultConditionThree(testFC3Config())
	require.NoError(t, err)

	tbl := fc3Table(t, 85.0, 72.0, 55.0, 0.8)

	engine := NewEngine(nil, broken, healthy)
	res, err := engine.Run(context.Background(), tbl)
	require.NoError(t, err)

	failed := res.Failed()
	require.Len(t, failed, 1)
	var missing *MissingColumnError
	assert.ErrorAs(t, failed[0].Err, &missing)

	// The healthy sibling still produced its column.
	assert.True(t, res.Table.Has("fc3_flag"))
}

func TestEngineKeepsHourlyOutputSeparate(t *testing.T) {
	fc4, err := NewFaultConditionFour(testFC4Config(7))
	require.NoError(t, err)
	fc3, err := NewFaultConditionThree(testFC3Config())
	require.NoError(t, err)

	index := minuteIndex(4)
	tbl := buildTable(t, index, map[string][]float64{
		"mat":              repeat(85.0, 4),
		"rat":              repeat(72.0, 4),
		"oat":              repeat(55.0, 4),
		"supply_vfd_speed": repeat(0.8, 4),
		"heating_sig":      {0.5, 0.0, 0.5, 0.0},
		"cooling_sig":      repeat(0.0, 4),
		"economizer_sig":   {0.2, 0.6, 0.2, 0.6},
	})

	engine := NewEngine(nil, fc4, fc3)
	res, err := engine.Run(context.Background(), tbl)
	require.NoError(t, err)

	require.Contains(t, res.Hourly, "fc4")
	hourly := res.Hourly["fc4"]
	assert.True(t, hourly.Has("fc4_flag"))

	// Hourly columns never leak onto the sensor table.
	assert.False(t, res.Table.Has("fc4_flag"))
	assert.False(t, res.Table.Has(HeatingModeColumn))
	assert.True(t, res.Table.Has("fc3_flag"))
}

func TestEngineWithoutRules(t *testing.T) {
	engine := NewEngine(nil)
	_, err := engine.Run(context.Background(), fc3Table(t, 60.0, 72.0, 45.0, 0.8))
	assert.ErrorIs(t, err, ErrNoRules)
}

func TestEngineCanceledContext(t *testing.T) {
	fc3, err := NewFaultConditionThree(testFC3Config())
	require.NoError(t, err)

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	engine := NewEngine(nil, fc3)
	res, err := engine.Run(ctx, fc3Table(t, 85.0, 72.0, 55.0, 0.8))
	assert.ErrorIs(t, err, context.Canceled)
	require.NotNil(t, res, "partial results must survive cancellation")
}

func TestEngineSetConcurrency(t *testing.T) {
	fc3, err := NewFaultConditionThree(testFC3Config())
	require.NoError(t, err)

	engine := NewEngine(nil, fc3)
	engine.SetConcurrency(1)

	res, err := engine.Run(context.Background(), fc3Table(t, 85.0, 72.0, 55.0, 0.8))
	require.NoError(t, err)
	assert.Empty(t, res.Failed())
}
