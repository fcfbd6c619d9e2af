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
	"fmt"
)

// =============================================================================
// Sentinel Errors
// =============================================================================

var (
	// ErrInvalidConfig is wrapped by every constructor that rejects a rule
	// configuration (negative or non-finite threshold, empty column name).
	ErrInvalidConfig = errors.New("invalid rule configuration")

	// ErrUnknownRule is returned by the registry for an unrecognized rule id.
	ErrUnknownRule = errors.New("unknown rule id")

	// ErrNoRules is returned by the engine when it is run with nothing to
	// evaluate.
	ErrNoRules = errors.New("no rules configured")
)

// =============================================================================
// Typed Errors
// =============================================================================

// MissingColumnError indicates a configured column is absent from the sensor
// table. The error is local to the rule that needed the column.
type MissingColumnError struct {
	Column string
}

func (e *MissingColumnError) Error() string {
	return fmt.Sprintf("required column %q not present in sensor table", e.Column)
}

// InvalidSignalTypeError indicates an analog (percent-coded) column holds a
// value that is not representable as a floating-point fraction, such as an
// infinity produced by an upstream unit conversion.
type InvalidSignalTypeError struct {
	Column string
	Row    int
	Value  float64
}

func (e *InvalidSignalTypeError) Error() string {
	return fmt.Sprintf("column %q row %d: value %v is not a finite float signal",
		e.Column, e.Row, e.Value)
}

// InvalidSignalRangeError indicates an analog column holds a finite value
// outside [0, 1]. The usual cause is a 0-100 percent coding that was never
// normalized.
type InvalidSignalRangeError struct {
	Column string
	Row    int
	Value  float64
}

func (e *InvalidSignalRangeError) Error() string {
	return fmt.Sprintf("column %q row %d: value %v outside the analog range [0, 1]; "+
		"percent-coded data must be scaled before evaluation", e.Column, e.Row, e.Value)
}
