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
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// testModeConfig uses a 20% minimum outside air damper position.
func testModeConfig() ModeConfig {
	return ModeConfig{
		AHUMinOADpr:       0.20,
		EconomizerSigCol:  "economizer_sig",
		HeatingSigCol:     "heating_sig",
		CoolingSigCol:     "cooling_sig",
		SupplyVFDSpeedCol: "supply_vfd_speed",
	}
}

func TestClassifyModesTruthTable(t *testing.T) {
	tests := []struct {
		name string
		htg  float64
		clg  float64
		vfd  float64
		econ float64
		want OperatingMode
	}{
		{"heating", 0.5, 0.0, 0.8, 0.20, ModeHeating},
		{"econ only", 0.0, 0.0, 0.8, 0.60, ModeEconOnly},
		{"econ plus mech", 0.0, 0.4, 0.8, 0.60, ModeEconPlusMech},
		{"mech only", 0.0, 0.4, 0.8, 0.20, ModeMechOnly},
		{"fan off", 0.5, 0.0, 0.0, 0.20, ModeUnclassified},
		{"heating with damper open", 0.5, 0.0, 0.8, 0.60, ModeUnclassified},
		{"heating and cooling together", 0.5, 0.4, 0.8, 0.20, ModeUnclassified},
		{"damper below minimum", 0.0, 0.0, 0.8, 0.10, ModeUnclassified},
		{"all quiet", 0.0, 0.0, 0.8, 0.20, ModeUnclassified},
		{"NaN fan speed", 0.5, 0.0, math.NaN(), 0.20, ModeUnclassified},
		{"NaN damper", 0.5, 0.0, 0.8, math.NaN(), ModeUnclassified},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			tbl := buildTable(t, minuteIndex(1), map[string][]float64{
				"heating_sig":      {tt.htg},
				"cooling_sig":      {tt.clg},
				"supply_vfd_speed": {tt.vfd},
				"economizer_sig":   {tt.econ},
			})
			modes, err := ClassifyModes(tbl, testModeConfig())
			require.NoError(t, err)
			require.Len(t, modes, 1)
			assert.Equal(t, tt.want, modes[0])
		})
	}
}

func TestClassifyModesRejectsBadConfig(t *testing.T) {
	tbl := buildTable(t, minuteIndex(1), map[string][]float64{
		"heating_sig": {0.5},
	})

	cfg := testModeConfig()
	cfg.CoolingSigCol = ""
	_, err := ClassifyModes(tbl, cfg)
	assert.ErrorIs(t, err, ErrInvalidConfig)

	cfg = testModeConfig()
	cfg.AHUMinOADpr = 1.5
	_, err = ClassifyModes(tbl, cfg)
	assert.ErrorIs(t, err, ErrInvalidConfig)
}

func TestClassifyModesValidatesAnalogSignals(t *testing.T) {
	tbl := buildTable(t, minuteIndex(1), map[string][]float64{
		"heating_sig":      {50.0}, // percent coded
		"cooling_sig":      {0.0},
		"supply_vfd_speed": {0.8},
		"economizer_sig":   {0.2},
	})

	_, err := ClassifyModes(tbl, testModeConfig())
	var rangeErr *InvalidSignalRangeError
	require.ErrorAs(t, err, &rangeErr)
	assert.Equal(t, "heating_sig", rangeErr.Column)
}

func TestIndicatorsAreMutuallyExclusive(t *testing.T) {
	tbl := buildTable(t, minuteIndex(5), map[string][]float64{
		"heating_sig":      {0.5, 0.0, 0.0, 0.0, 0.5},
		"cooling_sig":      {0.0, 0.0, 0.4, 0.4, 0.4},
		"supply_vfd_speed": {0.8, 0.8, 0.8, 0.8, 0.8},
		"economizer_sig":   {0.2, 0.6, 0.6, 0.2, 0.2},
	})

	modes, err := ClassifyModes(tbl, testModeConfig())
	require.NoError(t, err)

	ind := Indicators(modes)
	require.Len(t, ind, 4)

	for i := range modes {
		sum := 0.0
		for _, col := range ModeColumns() {
			sum += ind[col][i]
		}
		if modes[i] == ModeUnclassified {
			assert.Zero(t, sum, "row %d: unclassified row has an indicator set", i)
		} else {
			assert.Equal(t, 1.0, sum, "row %d: exactly one indicator must be set", i)
		}
	}

	// Row 4 mixes heating and cooling signals and must stay all zero.
	assert.Equal(t, ModeUnclassified, modes[4])
}

func TestOperatingModeStrings(t *testing.T) {
	assert.Equal(t, "heating", ModeHeating.String())
	assert.Equal(t, "unclassified", ModeUnclassified.String())
	assert.Equal(t, HeatingModeColumn, ModeHeating.Column())
	assert.Equal(t, "", ModeUnclassified.Column())
}
