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
	"fmt"
	"math"

	"github.com/AleutianAI/AirsideFDD/pkg/timeseries"
)

// thresholdRule is the shared backbone of the per-row fault conditions. A
// concrete condition is a name, the input columns it reads, the subset of
// those that must be analog percent signals, and a predicate compiled from
// the validated configuration at construction time.
//
// The predicate receives the row's values in input order and reports whether
// the row is faulted. It is only called on rows where every input is
// present; rows with a NaN operand never flag.
type thresholdRule struct {
	name         string
	flagColumn   string
	inputs       []string
	analog       []string
	predicate    func(v []float64) bool
	diagnostics  []diagnostic
	troubleshoot bool
}

// diagnostic is an intermediate column emitted in troubleshoot mode. The
// function receives the row's input values and may return NaN; diagnostics
// never influence the flag column.
type diagnostic struct {
	column string
	fn     func(v []float64) float64
}

func (r *thresholdRule) Name() string {
	return r.name
}

func (r *thresholdRule) FlagColumn() string {
	return r.flagColumn
}

// Apply evaluates the condition row by row and returns a new table extended
// with the 0/1 flag column (plus any troubleshoot diagnostics). The input
// table is never modified.
func (r *thresholdRule) Apply(t *timeseries.Table) (*timeseries.Table, error) {
	if err := CheckAnalogPercent(t, r.analog...); err != nil {
		return nil, fmt.Errorf("%s: %w", r.name, err)
	}

	cols := make([][]float64, len(r.inputs))
	for i, name := range r.inputs {
		vals, ok := t.Column(name)
		if !ok {
			return nil, fmt.Errorf("%s: %w", r.name, &MissingColumnError{Column: name})
		}
		cols[i] = vals
	}

	n := t.Len()
	flags := make([]float64, n)
	row := make([]float64, len(cols))
	for i := 0; i < n; i++ {
		missing := false
		for j := range cols {
			row[j] = cols[j][i]
			if math.IsNaN(row[j]) {
				missing = true
			}
		}
		if missing {
			continue
		}
		if r.predicate(row) {
			flags[i] = 1
		}
	}

	out := t
	if r.troubleshoot {
		for _, d := range r.diagnostics {
			vals := make([]float64, n)
			for i := 0; i < n; i++ {
				for j := range cols {
					row[j] = cols[j][i]
				}
				vals[i] = d.fn(row)
			}
			var err error
			if out, err = out.WithColumn(d.column, vals); err != nil {
				return nil, fmt.Errorf("%s: %w", r.name, err)
			}
		}
	}

	out, err := out.WithColumn(r.flagColumn, flags)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", r.name, err)
	}
	return out, nil
}

// asFlag converts a predicate result to the numeric flag encoding.
func asFlag(b bool) float64 {
	if b {
		return 1
	}
	return 0
}
