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

	"github.com/AleutianAI/AirsideFDD/pkg/timeseries"
)

// CheckAnalogPercent verifies that the named columns hold analog percent
// signals on the [0, 1] scale (valve positions, damper commands, VFD
// speeds). Every rule runs this on its percent-coded inputs before any
// threshold logic.
//
// It returns the first violation found:
//
//   - *MissingColumnError when a column is absent
//   - *InvalidSignalTypeError when a value is not a finite float
//   - *InvalidSignalRangeError when a finite value falls outside [0, 1]
//
// NaN values are ignored; a missing observation is not a bad signal.
func CheckAnalogPercent(t *timeseries.Table, cols ...string) error {
	for _, col := range cols {
		vals, ok := t.Column(col)
		if !ok {
			return &MissingColumnError{Column: col}
		}
		for i, v := range vals {
			if math.IsNaN(v) {
				continue
			}
			if math.IsInf(v, 0) {
				return &InvalidSignalTypeError{Column: col, Row: i, Value: v}
			}
			if v < 0.0 || v > 1.0 {
				return &InvalidSignalRangeError{Column: col, Row: i, Value: v}
			}
		}
	}
	return nil
}
