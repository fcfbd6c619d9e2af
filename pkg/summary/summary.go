// Copyright (C) 2025 Aleutian AI (jinterlante@aleutian.ai)
// This program is free software: you can redistribute it and/or modify
// it under the terms of the GNU Affero General Public License as published by
// the Free Software Foundation, either version 3 of the License, or
// (at your option) any later version.
// See the LICENSE.txt file for the full license text.
//
// NOTE: This work is subject to additional terms under AGPL v3 Section 7.
// See the NOTICE.txt file for details regarding AI system attribution.

// Package summary computes the descriptive statistics reported after a fault
// evaluation run: how long the dataset spans, how many of those hours were
// spent in fault, and what the sensors read while faulted.
//
// Durations are weighted by the gap to the previous observation, so
// irregular sampling is handled the same way as a resampled feed: a row
// flagged 1 contributes the time elapsed since the row before it.
package summary

import (
	"fmt"
	"math"
	"sort"
	"time"

	"gonum.org/v1/gonum/stat"

	"github.com/AleutianAI/AirsideFDD/pkg/fault"
	"github.com/AleutianAI/AirsideFDD/pkg/timeseries"
)

// Config selects what Summarize reports on.
type Config struct {
	// FlagColumn is the 0/1 fault column to summarize. Required.
	FlagColumn string

	// FanSpeedCol, when set, adds motor runtime hours (fan speed above 1%).
	FanSpeedCol string

	// SensorCols lists columns whose mean is reported for flagged rows.
	SensorCols []string
}

// FaultSummary is the report for one flag column.
type FaultSummary struct {
	FlagColumn string `json:"flag_column"`

	TotalDays  float64 `json:"total_days"`
	TotalHours float64 `json:"total_hours"`

	// HoursInFault is the delta-weighted time spent with the flag raised.
	HoursInFault float64 `json:"hours_in_fault"`

	PercentTrue  float64 `json:"percent_true"`
	PercentFalse float64 `json:"percent_false"`
	FlaggedRows  int     `json:"flagged_rows"`
	TotalRows    int     `json:"total_rows"`

	// MotorOnHours is the delta-weighted supply fan runtime. Zero when no
	// fan column was configured.
	MotorOnHours float64 `json:"motor_on_hours,omitempty"`

	// MeanWhenFlagged maps sensor columns to their mean over flagged rows.
	// Sensors with no valid flagged readings are omitted.
	MeanWhenFlagged map[string]float64 `json:"mean_when_flagged,omitempty"`
}

// Summarize computes the fault statistics for one flag column.
func Summarize(t *timeseries.Table, cfg Config) (*FaultSummary, error) {
	if cfg.FlagColumn == "" {
		return nil, fmt.Errorf("summarize: flag column not configured")
	}
	flags, ok := t.Column(cfg.FlagColumn)
	if !ok {
		return nil, fmt.Errorf("summarize: %w", &fault.MissingColumnError{Column: cfg.FlagColumn})
	}

	var fan []float64
	if cfg.FanSpeedCol != "" {
		if fan, ok = t.Column(cfg.FanSpeedCol); !ok {
			return nil, fmt.Errorf("summarize: %w", &fault.MissingColumnError{Column: cfg.FanSpeedCol})
		}
	}

	index := t.Index()
	out := &FaultSummary{
		FlagColumn: cfg.FlagColumn,
		TotalRows:  t.Len(),
	}

	var total, inFault, motorOn time.Duration
	for i := 1; i < len(index); i++ {
		delta := index[i].Sub(index[i-1])
		total += delta
		if flags[i] == 1 {
			inFault += delta
		}
		if fan != nil && fan[i] > 0.01 {
			motorOn += delta
		}
	}
	out.TotalDays = total.Hours() / 24
	out.TotalHours = total.Hours()
	out.HoursInFault = inFault.Hours()
	out.MotorOnHours = motorOn.Hours()

	for _, f := range flags {
		if f == 1 {
			out.FlaggedRows++
		}
	}
	if out.TotalRows > 0 {
		out.PercentTrue = 100 * float64(out.FlaggedRows) / float64(out.TotalRows)
		out.PercentFalse = 100 - out.PercentTrue
	}

	if len(cfg.SensorCols) > 0 {
		out.MeanWhenFlagged = make(map[string]float64, len(cfg.SensorCols))
		for _, name := range cfg.SensorCols {
			vals, ok := t.Column(name)
			if !ok {
				return nil, fmt.Errorf("summarize: %w", &fault.MissingColumnError{Column: name})
			}
			// Sensors with no flagged readings are left out; a NaN mean
			// has no JSON encoding.
			if m := meanWhere(vals, flags); !math.IsNaN(m) {
				out.MeanWhenFlagged[name] = m
			}
		}
	}
	return out, nil
}

// meanWhere averages vals over rows where flags is 1, skipping NaN readings.
// All-NaN (or never-flagged) selections yield NaN.
func meanWhere(vals, flags []float64) float64 {
	var sum float64
	var n int
	for i, v := range vals {
		if flags[i] != 1 || math.IsNaN(v) {
			continue
		}
		sum += v
		n++
	}
	if n == 0 {
		return math.NaN()
	}
	return sum / float64(n)
}

// Stats is the eight-number summary of one column.
type Stats struct {
	Count int     `json:"count"`
	Mean  float64 `json:"mean"`
	Std   float64 `json:"std"`
	Min   float64 `json:"min"`
	P25   float64 `json:"p25"`
	P50   float64 `json:"p50"`
	P75   float64 `json:"p75"`
	Max   float64 `json:"max"`
}

// Describe computes the eight-number summary, excluding NaN readings. A
// column with no valid readings reports Count 0 and NaN statistics.
func Describe(vals []float64) Stats {
	valid := make([]float64, 0, len(vals))
	for _, v := range vals {
		if !math.IsNaN(v) {
			valid = append(valid, v)
		}
	}
	if len(valid) == 0 {
		nan := math.NaN()
		return Stats{Mean: nan, Std: nan, Min: nan, P25: nan, P50: nan, P75: nan, Max: nan}
	}
	sort.Float64s(valid)

	return Stats{
		Count: len(valid),
		Mean:  stat.Mean(valid, nil),
		Std:   stat.StdDev(valid, nil),
		Min:   valid[0],
		P25:   stat.Quantile(0.25, stat.Empirical, valid, nil),
		P50:   stat.Quantile(0.50, stat.Empirical, valid, nil),
		P75:   stat.Quantile(0.75, stat.Empirical, valid, nil),
		Max:   valid[len(valid)-1],
	}
}
