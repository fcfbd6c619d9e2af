// Copyright (C) 2025 Aleutian AI (jinterlante@aleutian.ai)
// This program is free software: you can redistribute it and/or modify
// it under the terms of the GNU Affero General Public License as published by
// the Free Software Foundation, either version 3 of the License, or
// (at your option) any later version.
// See the LICENSE.txt file for the full license text.
//
// NOTE: This work is subject to additional terms under AGPL v3 Section 7.
// See the NOTICE.txt file for details regarding AI system attribution.

// Package timeseries provides the columnar sensor table shared by the fault
// rules, the ingestion collaborators, and the summary statistics.
//
// A Table is a time index plus named float64 columns stored as parallel
// slices. NaN encodes a missing observation. Tables are treated as immutable
// once evaluation starts: rules extend a table with WithColumn, which returns
// a new Table sharing the existing backing slices, so concurrent readers of
// the original are never invalidated.
package timeseries

import (
	"errors"
	"fmt"
	"math"
	"time"
)

var (
	// ErrLengthMismatch is returned when a column's length does not match
	// the table's time index.
	ErrLengthMismatch = errors.New("column length does not match index length")

	// ErrDuplicateColumn is returned by AddColumn when the name is taken.
	ErrDuplicateColumn = errors.New("duplicate column name")
)

// Table is a time-indexed set of named float64 columns. The index is
// non-decreasing; ingestion is responsible for ordering rows. Accessors
// return the backing slices directly; callers must not modify them.
type Table struct {
	index []time.Time
	names []string
	cols  map[string][]float64
}

// New creates an empty table over the given time index.
func New(index []time.Time) *Table {
	return &Table{
		index: index,
		cols:  make(map[string][]float64),
	}
}

// Len returns the number of rows.
func (t *Table) Len() int {
	return len(t.index)
}

// Index returns the time index.
func (t *Table) Index() []time.Time {
	return t.index
}

// Names returns the column names in insertion order.
func (t *Table) Names() []string {
	out := make([]string, len(t.names))
	copy(out, t.names)
	return out
}

// Has reports whether the named column exists.
func (t *Table) Has(name string) bool {
	_, ok := t.cols[name]
	return ok
}

// Column returns the named column's values and whether it exists.
func (t *Table) Column(name string) ([]float64, bool) {
	vals, ok := t.cols[name]
	return vals, ok
}

// AddColumn appends a column in place. It is intended for the construction
// phase (ingestion, test fixtures); once a table is handed to the rule
// engine, use WithColumn instead.
func (t *Table) AddColumn(name string, vals []float64) error {
	if len(vals) != len(t.index) {
		return fmt.Errorf("add column %q: %w (have %d rows, index has %d)",
			name, ErrLengthMismatch, len(vals), len(t.index))
	}
	if _, ok := t.cols[name]; ok {
		return fmt.Errorf("add column %q: %w", name, ErrDuplicateColumn)
	}
	t.names = append(t.names, name)
	t.cols[name] = vals
	return nil
}

// WithColumn returns a new table containing all of t's columns plus the
// given one. The receiver is never modified and existing columns are shared,
// not copied. If the name already exists the new table carries the
// replacement values, which makes re-applying a rule a no-op rather than an
// error.
func (t *Table) WithColumn(name string, vals []float64) (*Table, error) {
	if len(vals) != len(t.index) {
		return nil, fmt.Errorf("with column %q: %w (have %d rows, index has %d)",
			name, ErrLengthMismatch, len(vals), len(t.index))
	}
	out := &Table{
		index: t.index,
		names: make([]string, len(t.names), len(t.names)+1),
		cols:  make(map[string][]float64, len(t.cols)+1),
	}
	copy(out.names, t.names)
	for k, v := range t.cols {
		out.cols[k] = v
	}
	if _, exists := t.cols[name]; !exists {
		out.names = append(out.names, name)
	}
	out.cols[name] = vals
	return out, nil
}

// Select returns a new table over the same index holding only the named
// columns. Missing names are reported as an error.
func (t *Table) Select(names ...string) (*Table, error) {
	out := New(t.index)
	for _, name := range names {
		vals, ok := t.cols[name]
		if !ok {
			return nil, fmt.Errorf("select: column %q not found", name)
		}
		if err := out.AddColumn(name, vals); err != nil {
			return nil, err
		}
	}
	return out, nil
}

// Row returns the values of the named columns at row i. Order matches the
// names argument. Missing columns yield NaN; Row is a convenience for
// diagnostics, not a substitute for Column in hot loops.
func (t *Table) Row(i int, names ...string) []float64 {
	out := make([]float64, len(names))
	for j, name := range names {
		if vals, ok := t.cols[name]; ok {
			out[j] = vals[i]
		} else {
			out[j] = math.NaN()
		}
	}
	return out
}
