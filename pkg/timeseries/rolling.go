// Copyright (C) 2025 Aleutian AI (jinterlante@aleutian.ai)
// This program is free software: you can redistribute it and/or modify
// it under the terms of the GNU Affero General Public License as published by
// the Free Software Foundation, either version 3 of the License, or
// (at your option) any later version.
// See the LICENSE.txt file for the full license text.
//
// NOTE: This work is subject to additional terms under AGPL v3 Section 7.
// See the NOTICE.txt file for details regarding AI system attribution.

package timeseries

import (
	"math"
	"time"
)

// RollingMean returns a new table where every column is replaced by its
// trailing time-window mean. The window for row i covers observations with
// timestamps in (index[i]-window, index[i]], matching a right-closed
// resample. NaN observations are excluded from the mean; a window with no
// valid observations yields NaN.
//
// RollingMean is an ingestion-side smoothing step. The rule engine itself
// never resamples.
func (t *Table) RollingMean(window time.Duration) *Table {
	out := New(t.index)
	for _, name := range t.names {
		vals := t.cols[name]
		smoothed := rollingMean(t.index, vals, window)
		// Lengths match by construction.
		_ = out.AddColumn(name, smoothed)
	}
	return out
}

func rollingMean(index []time.Time, vals []float64, window time.Duration) []float64 {
	out := make([]float64, len(vals))
	var (
		sum   float64
		count int
		left  int
	)
	for i := range vals {
		if !math.IsNaN(vals[i]) {
			sum += vals[i]
			count++
		}
		cutoff := index[i].Add(-window)
		for left <= i && !index[left].After(cutoff) {
			if !math.IsNaN(vals[left]) {
				sum -= vals[left]
				count--
			}
			left++
		}
		if count > 0 {
			out[i] = sum / float64(count)
		} else {
			out[i] = math.NaN()
		}
	}
	return out
}
