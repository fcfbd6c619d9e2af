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
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// ===== TEST HELPERS =====

// minuteIndex returns n timestamps one minute apart starting at a fixed
// origin.
func minuteIndex(n int) []time.Time {
	origin := time.Date(2024, 6, 1, 8, 0, 0, 0, time.UTC)
	out := make([]time.Time, n)
	for i := range out {
		out[i] = origin.Add(time.Duration(i) * time.Minute)
	}
	return out
}

// ===== TABLE TESTS =====

func TestTableAddColumn(t *testing.T) {
	tests := []struct {
		name    string
		vals    []float64
		setup   func(tbl *Table)
		wantErr error
	}{
		{
			name: "valid column",
			vals: []float64{1, 2, 3},
		},
		{
			name:    "length mismatch",
			vals:    []float64{1, 2},
			wantErr: ErrLengthMismatch,
		},
		{
			name: "duplicate name",
			vals: []float64{1, 2, 3},
			setup: func(tbl *Table) {
				require.NoError(t, tbl.AddColumn("sat", []float64{0, 0, 0}))
			},
			wantErr: ErrDuplicateColumn,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			tbl := New(minuteIndex(3))
			if tt.setup != nil {
				tt.setup(tbl)
			}
			err := tbl.AddColumn("sat", tt.vals)
			if tt.wantErr != nil {
				assert.ErrorIs(t, err, tt.wantErr)
				return
			}
			require.NoError(t, err)
			got, ok := tbl.Column("sat")
			require.True(t, ok)
			assert.Equal(t, tt.vals, got)
		})
	}
}

func TestTableWithColumnDoesNotMutateReceiver(t *testing.T) {
	tbl := New(minuteIndex(3))
	require.NoError(t, tbl.AddColumn("mat", []float64{60, 61, 62}))

	out, err := tbl.WithColumn("fc3_flag", []float64{0, 1, 0})
	require.NoError(t, err)

	assert.False(t, tbl.Has("fc3_flag"), "receiver gained a column")
	assert.True(t, out.Has("fc3_flag"))
	assert.Equal(t, []string{"mat"}, tbl.Names())
	assert.Equal(t, []string{"mat", "fc3_flag"}, out.Names())

	// Existing columns are shared, not copied.
	src, _ := tbl.Column("mat")
	dst, _ := out.Column("mat")
	assert.Same(t, &src[0], &dst[0])
}

func TestTableWithColumnReplacesExisting(t *testing.T) {
	tbl := New(minuteIndex(2))
	require.NoError(t, tbl.AddColumn("fc1_flag", []float64{0, 0}))

	out, err := tbl.WithColumn("fc1_flag", []float64{1, 1})
	require.NoError(t, err)

	got, _ := out.Column("fc1_flag")
	assert.Equal(t, []float64{1, 1}, got)
	assert.Equal(t, []string{"fc1_flag"}, out.Names(), "replacement must not duplicate the name")

	old, _ := tbl.Column("fc1_flag")
	assert.Equal(t, []float64{0, 0}, old, "receiver values changed")
}

func TestTableWithColumnLengthMismatch(t *testing.T) {
	tbl := New(minuteIndex(3))
	_, err := tbl.WithColumn("x", []float64{1})
	assert.ErrorIs(t, err, ErrLengthMismatch)
}

func TestTableSelect(t *testing.T) {
	tbl := New(minuteIndex(2))
	require.NoError(t, tbl.AddColumn("oat", []float64{55, 56}))
	require.NoError(t, tbl.AddColumn("rat", []float64{72, 72}))

	sel, err := tbl.Select("rat")
	require.NoError(t, err)
	assert.Equal(t, []string{"rat"}, sel.Names())

	_, err = tbl.Select("missing")
	assert.Error(t, err)
}

func TestTableRow(t *testing.T) {
	tbl := New(minuteIndex(2))
	require.NoError(t, tbl.AddColumn("oat", []float64{55, 56}))

	row := tbl.Row(1, "oat", "missing")
	assert.Equal(t, 56.0, row[0])
	assert.True(t, math.IsNaN(row[1]))
}

// ===== ROLLING MEAN TESTS =====

func TestRollingMean(t *testing.T) {
	tbl := New(minuteIndex(5))
	require.NoError(t, tbl.AddColumn("sat", []float64{10, 20, 30, 40, 50}))

	out := tbl.RollingMean(2 * time.Minute)
	got, ok := out.Column("sat")
	require.True(t, ok)

	// Right-closed two-minute window: rows i-1..i plus the row two minutes
	// back is excluded.
	want := []float64{10, 15, 25, 35, 45}
	for i := range want {
		assert.InDelta(t, want[i], got[i], 1e-9, "row %d", i)
	}
}

func TestRollingMeanSkipsNaN(t *testing.T) {
	tbl := New(minuteIndex(4))
	require.NoError(t, tbl.AddColumn("sat", []float64{10, math.NaN(), 30, math.NaN()}))

	out := tbl.RollingMean(5 * time.Minute)
	got, _ := out.Column("sat")

	assert.InDelta(t, 10.0, got[0], 1e-9)
	assert.InDelta(t, 10.0, got[1], 1e-9, "NaN excluded from the window mean")
	assert.InDelta(t, 20.0, got[2], 1e-9)
	assert.InDelta(t, 20.0, got[3], 1e-9)
}

func TestRollingMeanAllNaNWindow(t *testing.T) {
	tbl := New(minuteIndex(2))
	require.NoError(t, tbl.AddColumn("sat", []float64{math.NaN(), math.NaN()}))

	out := tbl.RollingMean(time.Minute)
	got, _ := out.Column("sat")
	assert.True(t, math.IsNaN(got[0]))
	assert.True(t, math.IsNaN(got[1]))
}

// ===== HOURLY BUCKET TESTS =====

func TestHoursContiguousBuckets(t *testing.T) {
	origin := time.Date(2024, 6, 1, 8, 15, 0, 0, time.UTC)
	index := []time.Time{
		origin,
		origin.Add(10 * time.Minute),
		// Nothing between 09:00 and 10:00.
		origin.Add(2 * time.Hour),
	}

	starts, rowHour := Hours(index)
	require.Len(t, starts, 3, "empty hour must still be present")
	assert.Equal(t, time.Date(2024, 6, 1, 8, 0, 0, 0, time.UTC), starts[0])
	assert.Equal(t, time.Date(2024, 6, 1, 9, 0, 0, 0, time.UTC), starts[1])
	assert.Equal(t, time.Date(2024, 6, 1, 10, 0, 0, 0, time.UTC), starts[2])
	assert.Equal(t, []int{0, 0, 2}, rowHour)
}

func TestHoursEmptyIndex(t *testing.T) {
	starts, rowHour := Hours(nil)
	assert.Nil(t, starts)
	assert.Nil(t, rowHour)
}
