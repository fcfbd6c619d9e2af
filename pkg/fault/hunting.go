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

	"github.com/AleutianAI/AirsideFDD/pkg/timeseries"
)

// =============================================================================
// FC4: Operating State Hunting
// =============================================================================

// FC4Config configures fault condition 4: excessive operating state changes
// per hour, the signature of a control loop hunting between heating,
// economizer, and mechanical cooling.
//
// In troubleshoot mode the row-cadence 0/1 mode indicators behind the hourly
// counts are retained and exposed through Diagnostics; the hourly output
// itself is unchanged.
type FC4Config struct {
	DeltaOSMax        float64 `yaml:"delta_os_max" validate:"finite,gte=0"`
	AHUMinOADpr       float64 `yaml:"ahu_min_oa_dpr" validate:"finite,gte=0,lte=1"`
	EconomizerSigCol  string  `yaml:"economizer_sig_col" validate:"required"`
	HeatingSigCol     string  `yaml:"heating_sig_col" validate:"required"`
	CoolingSigCol     string  `yaml:"cooling_sig_col" validate:"required"`
	SupplyVFDSpeedCol string  `yaml:"supply_vfd_speed_col" validate:"required"`
	Troubleshoot      bool    `yaml:"troubleshoot"`
}

// huntingRule counts per-hour entries into each operating mode. Unlike the
// threshold rules it does not extend the input table: its output lives on an
// hourly index of its own.
type huntingRule struct {
	cfg  FC4Config
	diag *timeseries.Table
}

// NewFaultConditionFour builds the hunting rule.
func NewFaultConditionFour(cfg FC4Config) (Rule, error) {
	if err := validateConfig("fc4", cfg); err != nil {
		return nil, err
	}
	return &huntingRule{cfg: cfg}, nil
}

func (r *huntingRule) Name() string {
	return "fc4"
}

func (r *huntingRule) FlagColumn() string {
	return "fc4_flag"
}

// Hourly marks the rule's output as living on its own hourly index.
func (r *huntingRule) Hourly() bool {
	return true
}

// Diagnostics returns the row-cadence mode indicator table captured by the
// last Apply in troubleshoot mode, or nil. One 0/1 column per classified
// mode on the input's own index.
func (r *huntingRule) Diagnostics() *timeseries.Table {
	return r.diag
}

// Apply classifies every row into an operating mode, counts entries into
// each mode per wall-clock hour, and flags hours where any mode was entered
// strictly more than DeltaOSMax times.
//
// An entry is a rising edge against the original observation cadence: row i
// counts for mode M when row i is in M and row i-1 is not, even when the two
// rows straddle an hour boundary. The first row of the series counts for
// whatever mode it is in. Hours inside the observation span with no rows
// still appear in the output with zero counts.
func (r *huntingRule) Apply(t *timeseries.Table) (*timeseries.Table, error) {
	modes, err := ClassifyModes(t, ModeConfig{
		AHUMinOADpr:       r.cfg.AHUMinOADpr,
		EconomizerSigCol:  r.cfg.EconomizerSigCol,
		HeatingSigCol:     r.cfg.HeatingSigCol,
		CoolingSigCol:     r.cfg.CoolingSigCol,
		SupplyVFDSpeedCol: r.cfg.SupplyVFDSpeedCol,
	})
	if err != nil {
		return nil, fmt.Errorf("fc4: %w", err)
	}

	if r.cfg.Troubleshoot {
		diag := timeseries.New(t.Index())
		indicators := Indicators(modes)
		for _, m := range classifiedModes() {
			if err := diag.AddColumn(m.Column(), indicators[m.Column()]); err != nil {
				return nil, fmt.Errorf("fc4: %w", err)
			}
		}
		r.diag = diag
	}

	starts, rowHour := timeseries.Hours(t.Index())
	out := timeseries.New(starts)

	maxPerHour := make([]float64, len(starts))
	for _, m := range classifiedModes() {
		counts := make([]float64, len(starts))
		for i, mode := range modes {
			if mode != m {
				continue
			}
			if i == 0 || modes[i-1] != m {
				counts[rowHour[i]]++
			}
		}
		for h, c := range counts {
			if c > maxPerHour[h] {
				maxPerHour[h] = c
			}
		}
		if err := out.AddColumn(m.Column(), counts); err != nil {
			return nil, fmt.Errorf("fc4: %w", err)
		}
	}

	flags := make([]float64, len(starts))
	for h := range flags {
		if maxPerHour[h] > r.cfg.DeltaOSMax {
			flags[h] = 1
		}
	}
	if err := out.AddColumn(r.FlagColumn(), flags); err != nil {
		return nil, fmt.Errorf("fc4: %w", err)
	}
	return out, nil
}
