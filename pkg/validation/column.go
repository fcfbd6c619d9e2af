// Copyright (C) 2025 Aleutian AI (jinterlante@aleutian.ai)
// This program is free software: you can redistribute it and/or modify
// it under the terms of the GNU Affero General Public License as published by
// the Free Software Foundation, either version 3 of the License, or
// (at your option) any later version.
// See the LICENSE.txt file for the full license text.
//
// NOTE: This work is subject to additional terms under AGPL v3 Section 7.
// See the NOTICE.txt file for details regarding AI system attribution.

// Package validation provides input validation utilities for security-critical operations.
//
// This package contains validators for user-provided inputs that are used in
// database queries, file paths, or subprocess calls. Using these validators
// prevents injection attacks (SQL/Flux injection, command injection, path traversal).
package validation

import (
	"fmt"
	"regexp"
	"strings"
)

// columnPattern matches valid sensor column names.
// Allows: letters, digits, underscores, dots (AHU1.SaTemp), hyphens (AHU-1)
// Max length: 64 characters (covers real BAS point names)
var columnPattern = regexp.MustCompile(`^[A-Za-z_][A-Za-z0-9_.\-]{0,63}$`)

// ValidateColumnName validates a sensor column name to prevent Flux and SQL
// injection when the name is interpolated into a query.
//
// Valid column names:
//   - 1-64 characters
//   - Start with a letter or underscore
//   - Letters, digits, underscores
//   - Dots (.) for hierarchical point names like AHU1.SaTemp
//   - Hyphens (-) for equipment tags like AHU-1
//
// Returns an error if the name is invalid.
//
// Example:
//
//	if err := validation.ValidateColumnName(sensor); err != nil {
//	    return nil, fmt.Errorf("invalid sensor name: %w", err)
//	}
//	// Safe to use in Flux query
func ValidateColumnName(name string) error {
	if name == "" {
		return fmt.Errorf("column name cannot be empty")
	}

	if !columnPattern.MatchString(name) {
		return fmt.Errorf("invalid column name: %q (must be 1-64 chars, start with a letter or underscore, and contain only letters, digits, underscores, dots, or hyphens)", name)
	}

	return nil
}

// ValidateColumnNames validates multiple column names.
// Returns an error listing all invalid names if any fail validation.
func ValidateColumnNames(names []string) error {
	var invalid []string
	for _, n := range names {
		if err := ValidateColumnName(n); err != nil {
			invalid = append(invalid, n)
		}
	}

	if len(invalid) > 0 {
		return fmt.Errorf("invalid column names: %v", invalid)
	}
	return nil
}

// SanitizeColumnName trims surrounding whitespace and validates the result.
// Column names stay case-sensitive; only the padding a CSV header or a hand
// edited profile tends to pick up is removed.
//
//	safeName, err := validation.SanitizeColumnName(header)
//	if err != nil {
//	    return err
//	}
func SanitizeColumnName(name string) (string, error) {
	trimmed := strings.TrimSpace(name)
	if err := ValidateColumnName(trimmed); err != nil {
		return "", err
	}
	return trimmed, nil
}
