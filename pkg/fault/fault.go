// Copyright (C) 2025 Aleutian AI (jinterlante@aleutian.ai)
// This program is free software: you can redistribute it and/or modify
// it under the terms of the GNU Affero General Public License as published by
// the Free Software Foundation, either version 3 of the License, or
// (at your option) any later version.
// See the LICENSE.txt file for the full license text.
//
// NOTE: This work is subject to additional terms under AGPL v3 Section 7.
// See the NOTICE.txt file for details regarding AI system attribution.

// Package fault implements the AHU fault condition rules.
//
// Each fault condition compares sensor readings against configured tolerance
// thresholds and appends a 0/1 flag column to the sensor table (fc1_flag,
// fc2_flag, ...). Rule construction validates the configuration up front;
// evaluation is a pure function of the input table, so a rule instance can be
// shared across goroutines and datasets.
//
// The comparison policy is strict throughout: a reading exactly at a
// threshold boundary is compliant and does not flag. Rows with a missing
// (NaN) operand do not flag either.
package fault

import (
	"fmt"
	"math"

	"github.com/go-playground/validator/v10"

	"github.com/AleutianAI/AirsideFDD/pkg/timeseries"
)

// =============================================================================
// Rule Contract
// =============================================================================

// Rule is the contract every fault condition implements.
//
// Apply validates the relevant analog columns, evaluates the condition per
// row, and returns a new table extended with the rule's flag column. The
// input table is never modified; errors are local to the rule and leave the
// input intact.
type Rule interface {
	// Name returns the short rule identifier, e.g. "fc3".
	Name() string

	// FlagColumn returns the output column name, e.g. "fc3_flag".
	FlagColumn() string

	// Apply evaluates the rule against the table.
	Apply(t *timeseries.Table) (*timeseries.Table, error)
}

// HourlyRule marks rules whose output table lives on its own hourly index
// rather than extending the input table. The batch engine keeps such outputs
// separate instead of merging their columns onto the sensor table.
type HourlyRule interface {
	Rule
	Hourly() bool
}

// =============================================================================
// Shared Validator Instance
// =============================================================================

// ruleValidate is the validator instance for rule configurations.
// Initialized in init() with custom validators.
var ruleValidate *validator.Validate

func init() {
	ruleValidate = validator.New()

	// Thresholds must be real numbers; gte=0 alone lets +Inf through.
	_ = ruleValidate.RegisterValidation("finite", validateFinite)
}

// validateFinite rejects NaN and infinite float fields.
func validateFinite(fl validator.FieldLevel) bool {
	v := fl.Field().Float()
	return !math.IsNaN(v) && !math.IsInf(v, 0)
}

// validateConfig runs tag validation for a rule configuration and wraps any
// failure in ErrInvalidConfig so callers can test the category with
// errors.Is.
func validateConfig(rule string, cfg any) error {
	if err := ruleValidate.Struct(cfg); err != nil {
		return fmt.Errorf("%s: %w: %v", rule, ErrInvalidConfig, err)
	}
	return nil
}
