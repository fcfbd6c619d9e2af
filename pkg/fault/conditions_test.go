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
	"errors"
	"math"
	"math/rand"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/AleutianAI/AirsideFDD/pkg/timeseries"
)

// ===== TEST HELPERS =====

// minuteIndex returns n timestamps one minute apart.
func minuteIndex(n int) []time.Time {
	origin := time.Date(2024, 6, 1, 8, 0, 0, 0, time.UTC)
	out := make([]time.Time, n)
	for i := range out {
		out[i] = origin.Add(time.Duration(i) * time.Minute)
	}
	return out
}

// repeat returns a column of n copies of v.
func repeat(v float64, n int) []float64 {
	out := make([]float64, n)
	for i := range out {
		out[i] = v
	}
	return out
}

// buildTable assembles a table from equal-length columns.
func buildTable(t *testing.T, index []time.Time, cols map[string][]float64) *timeseries.Table {
	t.Helper()
	tbl := timeseries.New(index)
	for name, vals := range cols {
		require.NoError(t, tbl.AddColumn(name, vals))
	}
	return tbl
}

// testFC3Config mirrors a typical mix-air-too-high deployment: 5F tolerance
// on the mix and outdoor sensors, 2F on the return sensor.
func testFC3Config() FC3Config {
	return FC3Config{
		MixDegFErrThres:     5.0,
		ReturnDegFErrThres:  2.0,
		OutdoorDegFErrThres: 5.0,
		MATCol:              "mat",
		RATCol:              "rat",
		OATCol:              "oat",
		SupplyVFDSpeedCol:   "supply_vfd_speed",
	}
}

// fc3Table builds a single-row table from the four FC3 sensor readings.
func fc3Table(t *testing.T, mat, rat, oat, vfd float64) *timeseries.Table {
	t.Helper()
	return buildTable(t, minuteIndex(1), map[string][]float64{
		"mat":              {mat},
		"rat":              {rat},
		"oat":              {oat},
		"supply_vfd_speed": {vfd},
	})
}

// applyFlag runs the rule and returns its flag column.
func applyFlag(t *testing.T, r Rule, tbl *timeseries.Table) []float64 {
	t.Helper()
	out, err := r.Apply(tbl)
	require.NoError(t, err)
	flags, ok := out.Column(r.FlagColumn())
	require.True(t, ok, "flag column missing from output")
	return flags
}

// ===== FC3 SCENARIO TESTS =====

func TestFC3FlagsMixTempAboveBothSources(t *testing.T) {
	rule, err := NewFaultConditionThree(testFC3Config())
	require.NoError(t, err)

	// Mix air at 85F cannot be a blend of 72F return and 55F outdoor air.
	flags := applyFlag(t, rule, fc3Table(t, 85.0, 72.0, 55.0, 0.8))
	assert.Equal(t, []float64{1}, flags)
}

func TestFC3PassesPlausibleMixTemp(t *testing.T) {
	rule, err := NewFaultConditionThree(testFC3Config())
	require.NoError(t, err)

	flags := applyFlag(t, rule, fc3Table(t, 60.0, 72.0, 45.0, 0.8))
	assert.Equal(t, []float64{0}, flags)
}

func TestFC3BoundaryDoesNotFlag(t *testing.T) {
	rule, err := NewFaultConditionThree(testFC3Config())
	require.NoError(t, err)

	// max(72+2, 55+5) = 74, so mat = 79 puts mat - 5 exactly at the
	// boundary. Strict comparison means compliant.
	flags := applyFlag(t, rule, fc3Table(t, 79.0, 72.0, 55.0, 0.8))
	assert.Equal(t, []float64{0}, flags, "boundary value must not flag")

	flags = applyFlag(t, rule, fc3Table(t, 79.001, 72.0, 55.0, 0.8))
	assert.Equal(t, []float64{1}, flags, "just past the boundary must flag")
}

func TestFC3FanOffDoesNotFlag(t *testing.T) {
	rule, err := NewFaultConditionThree(testFC3Config())
	require.NoError(t, err)

	flags := applyFlag(t, rule, fc3Table(t, 85.0, 72.0, 55.0, 0.0))
	assert.Equal(t, []float64{0}, flags)
}

func TestFC3NaNOperandDoesNotFlag(t *testing.T) {
	rule, err := NewFaultConditionThree(testFC3Config())
	require.NoError(t, err)

	flags := applyFlag(t, rule, fc3Table(t, math.NaN(), 72.0, 55.0, 0.8))
	assert.Equal(t, []float64{0}, flags)
}

func TestFC3FlagFraction(t *testing.T) {
	tests := []struct {
		name      string
		failRows  int
		checkMean func(t *testing.T, mean float64)
	}{
		{
			name:     "mostly faulted",
			failRows: 90,
			checkMean: func(t *testing.T, mean float64) {
				assert.GreaterOrEqual(t, mean, 0.89)
			},
		},
		{
			name:     "mostly healthy",
			failRows: 10,
			checkMean: func(t *testing.T, mean float64) {
				assert.LessOrEqual(t, mean, 0.11)
			},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			const n = 100
			faulted := make([]bool, n)
			for i := 0; i < tt.failRows; i++ {
				faulted[i] = true
			}
			r := rand.New(rand.NewSource(42))
			r.Shuffle(n, func(i, j int) {
				faulted[i], faulted[j] = faulted[j], faulted[i]
			})

			mat := make([]float64, n)
			for i := range mat {
				if faulted[i] {
					mat[i] = 85.0
				} else {
					mat[i] = 60.0
				}
			}
			tbl := buildTable(t, minuteIndex(n), map[string][]float64{
				"mat":              mat,
				"rat":              repeat(72.0, n),
				"oat":              repeat(55.0, n),
				"supply_vfd_speed": repeat(0.8, n),
			})

			rule, err := NewFaultConditionThree(testFC3Config())
			require.NoError(t, err)

			flags := applyFlag(t, rule, tbl)
			sum := 0.0
			for _, f := range flags {
				sum += f
			}
			tt.checkMean(t, sum/float64(n))
		})
	}
}

// ===== RULE CONTRACT TESTS =====

func TestRuleApplyIsIdempotentAndPure(t *testing.T) {
	rule, err := NewFaultConditionThree(testFC3Config())
	require.NoError(t, err)

	tbl := fc3Table(t, 85.0, 72.0, 55.0, 0.8)
	namesBefore := tbl.Names()

	first := applyFlag(t, rule, tbl)
	second := applyFlag(t, rule, tbl)

	assert.Equal(t, first, second)
	assert.Equal(t, namesBefore, tbl.Names(), "input table gained columns")
	assert.False(t, tbl.Has("fc3_flag"))
}

func TestRuleMissingColumn(t *testing.T) {
	rule, err := NewFaultConditionThree(testFC3Config())
	require.NoError(t, err)

	tbl := buildTable(t, minuteIndex(1), map[string][]float64{
		"mat":              {85.0},
		"rat":              {72.0},
		"supply_vfd_speed": {0.8},
	})

	_, err = rule.Apply(tbl)
	var missing *MissingColumnError
	require.ErrorAs(t, err, &missing)
	assert.Equal(t, "oat", missing.Column)
}

func TestRuleRejectsPercentCodedAnalogColumn(t *testing.T) {
	rule, err := NewFaultConditionThree(testFC3Config())
	require.NoError(t, err)

	// VFD speed coded 0-100 instead of 0-1.
	tbl := fc3Table(t, 85.0, 72.0, 55.0, 80.0)

	_, err = rule.Apply(tbl)
	var rangeErr *InvalidSignalRangeError
	require.ErrorAs(t, err, &rangeErr)
	assert.Equal(t, "supply_vfd_speed", rangeErr.Column)
}

// ===== CONFIG VALIDATION TESTS =====

func TestConstructorRejectsBadConfig(t *testing.T) {
	tests := []struct {
		name   string
		mutate func(cfg *FC3Config)
	}{
		{
			name:   "negative threshold",
			mutate: func(cfg *FC3Config) { cfg.MixDegFErrThres = -1.0 },
		},
		{
			name:   "infinite threshold",
			mutate: func(cfg *FC3Config) { cfg.ReturnDegFErrThres = math.Inf(1) },
		},
		{
			name:   "NaN threshold",
			mutate: func(cfg *FC3Config) { cfg.OutdoorDegFErrThres = math.NaN() },
		},
		{
			name:   "missing column name",
			mutate: func(cfg *FC3Config) { cfg.OATCol = "" },
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := testFC3Config()
			tt.mutate(&cfg)
			_, err := NewFaultConditionThree(cfg)
			assert.ErrorIs(t, err, ErrInvalidConfig)
		})
	}
}

// ===== DIAGNOSTIC COLUMN TESTS =====

func TestFC1TroubleshootColumnsDoNotChangeFlags(t *testing.T) {
	base := FC1Config{
		DuctStaticInchesErrThres: 0.1,
		VFDSpeedPercentErrThres:  0.05,
		VFDSpeedPercentMax:       0.99,
		DuctStaticCol:            "duct_static",
		DuctStaticSetpointCol:    "duct_static_setpoint",
		SupplyVFDSpeedCol:        "supply_vfd_speed",
	}

	tbl := buildTable(t, minuteIndex(3), map[string][]float64{
		"duct_static":          {0.7, 1.1, 0.7},
		"duct_static_setpoint": {1.0, 1.0, 1.0},
		"supply_vfd_speed":     {0.99, 0.99, 0.5},
	})

	plain, err := NewFaultConditionOne(base)
	require.NoError(t, err)

	debug := base
	debug.Troubleshoot = true
	verbose, err := NewFaultConditionOne(debug)
	require.NoError(t, err)

	plainFlags := applyFlag(t, plain, tbl)
	verboseFlags := applyFlag(t, verbose, tbl)
	assert.Equal(t, plainFlags, verboseFlags, "troubleshoot mode changed the verdict")
	assert.Equal(t, []float64{1, 0, 0}, plainFlags)

	plainOut, err := plain.Apply(tbl)
	require.NoError(t, err)
	verboseOut, err := verbose.Apply(tbl)
	require.NoError(t, err)

	assert.False(t, plainOut.Has("static_check_"))
	assert.True(t, verboseOut.Has("static_check_"))
	assert.True(t, verboseOut.Has("fan_check_"))

	static, _ := verboseOut.Column("static_check_")
	fan, _ := verboseOut.Column("fan_check_")
	assert.Equal(t, []float64{1, 0, 1}, static)
	assert.Equal(t, []float64{1, 1, 0}, fan)
}

// ===== CATALOG SPOT CHECKS =====

func TestFC2FlagsMixTempBelowBothSources(t *testing.T) {
	rule, err := NewFaultConditionTwo(FC2Config{
		MixDegFErrThres:     5.0,
		ReturnDegFErrThres:  2.0,
		OutdoorDegFErrThres: 5.0,
		MATCol:              "mat",
		RATCol:              "rat",
		OATCol:              "oat",
		SupplyVFDSpeedCol:   "supply_vfd_speed",
	})
	require.NoError(t, err)

	// min(72-2, 55-5) = 50; mat of 40 + 5 = 45 sits below it.
	tbl := fc3Table(t, 40.0, 72.0, 55.0, 0.8)
	assert.Equal(t, []float64{1}, applyFlag(t, rule, tbl))

	// 46 + 5 = 51 does not.
	tbl = fc3Table(t, 46.0, 72.0, 55.0, 0.8)
	assert.Equal(t, []float64{0}, applyFlag(t, rule, tbl))
}

func TestFC5FlagsSupplyBelowMixInHeating(t *testing.T) {
	rule, err := NewFaultConditionFive(FC5Config{
		MixDegFErrThres:    2.0,
		SupplyDegFErrThres: 2.0,
		DeltaTSupplyFan:    2.0,
		MATCol:             "mat",
		SATCol:             "sat",
		HeatingSigCol:      "heating_sig",
		SupplyVFDSpeedCol:  "supply_vfd_speed",
	})
	require.NoError(t, err)

	tbl := buildTable(t, minuteIndex(2), map[string][]float64{
		"mat":              {80.0, 80.0},
		"sat":              {70.0, 70.0},
		"heating_sig":      {0.5, 0.0},
		"supply_vfd_speed": {0.8, 0.8},
	})

	// 70+2 < 80-2+2 only counts while the heating valve is open.
	assert.Equal(t, []float64{1, 0}, applyFlag(t, rule, tbl))
}

func TestFC7FlagsSaturatedHeatingMissingSetpoint(t *testing.T) {
	rule, err := NewFaultConditionSeven(FC7Config{
		SupplyDegFErrThres: 2.0,
		SATCol:             "sat",
		SATSetpointCol:     "sat_setpoint",
		HeatingSigCol:      "heating_sig",
		SupplyVFDSpeedCol:  "supply_vfd_speed",
	})
	require.NoError(t, err)

	tbl := buildTable(t, minuteIndex(3), map[string][]float64{
		"sat":              {100.0, 100.0, 120.0},
		"sat_setpoint":     {110.0, 110.0, 110.0},
		"heating_sig":      {0.95, 0.5, 0.95},
		"supply_vfd_speed": {0.8, 0.8, 0.8},
	})

	// Row 0: valve saturated and 8F short of setpoint. Row 1: short but the
	// valve still has headroom. Row 2: setpoint satisfied.
	assert.Equal(t, []float64{1, 0, 0}, applyFlag(t, rule, tbl))
}

func TestFC13FlagsFullCoolingMissingSetpoint(t *testing.T) {
	rule, err := NewFaultConditionThirteen(FC13Config{
		SupplyDegFErrThres: 2.0,
		AHUMinOADpr:        0.2,
		SATCol:             "sat",
		SATSetpointCol:     "sat_setpoint",
		CoolingSigCol:      "cooling_sig",
		EconomizerSigCol:   "economizer_sig",
	})
	require.NoError(t, err)

	tbl := buildTable(t, minuteIndex(3), map[string][]float64{
		"sat":            {60.0, 60.0, 60.0},
		"sat_setpoint":   {55.0, 55.0, 55.0},
		"cooling_sig":    {0.95, 0.95, 0.5},
		"economizer_sig": {0.2, 0.95, 0.2},
	})

	// Rows 0 and 1 are full cooling (damper at minimum, then fully open);
	// row 2 the valve is only half open.
	assert.Equal(t, []float64{1, 1, 0}, applyFlag(t, rule, tbl))
}

func TestErrorsDoNotAbortSiblingColumnChecks(t *testing.T) {
	// A failing rule must leave the shared table untouched for other rules.
	rule, err := NewFaultConditionThree(testFC3Config())
	require.NoError(t, err)

	tbl := buildTable(t, minuteIndex(1), map[string][]float64{
		"mat": {85.0},
	})
	namesBefore := tbl.Names()

	_, err = rule.Apply(tbl)
	require.Error(t, err)
	assert.True(t, errors.As(err, new(*MissingColumnError)))
	assert.Equal(t, namesBefore, tbl.Names())
}
