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

// =============================================================================
// Operating Modes
// =============================================================================

// OperatingMode identifies the AHU operating state of a single row. Exactly
// one mode applies per row; rows matching no definition (fan off, NaN
// operands, contradictory signals) are ModeUnclassified.
type OperatingMode uint8

const (
	ModeUnclassified OperatingMode = iota

	// ModeHeating: heating valve modulating, no cooling, fan running,
	// outside-air damper at its minimum position.
	ModeHeating

	// ModeEconOnly: damper modulating above minimum for free cooling, no
	// heating or mechanical cooling, fan running.
	ModeEconOnly

	// ModeEconPlusMech: damper above minimum with the cooling valve also
	// modulating, fan running.
	ModeEconPlusMech

	// ModeMechOnly: cooling valve modulating with the damper back at
	// minimum, fan running.
	ModeMechOnly
)

// String returns the human-readable mode name.
func (m OperatingMode) String() string {
	switch m {
	case ModeHeating:
		return "heating"
	case ModeEconOnly:
		return "econ only cooling"
	case ModeEconPlusMech:
		return "econ plus mech cooling"
	case ModeMechOnly:
		return "mech cooling only"
	default:
		return "unclassified"
	}
}

// Column returns the indicator column name for the mode, or "" for
// ModeUnclassified.
func (m OperatingMode) Column() string {
	switch m {
	case ModeHeating:
		return HeatingModeColumn
	case ModeEconOnly:
		return EconOnlyCoolingModeColumn
	case ModeEconPlusMech:
		return EconPlusMechCoolingModeColumn
	case ModeMechOnly:
		return MechCoolingOnlyModeColumn
	default:
		return ""
	}
}

// Indicator column names, matching the established fault report vocabulary.
const (
	HeatingModeColumn             = "heating_mode"
	EconOnlyCoolingModeColumn     = "econ_only_cooling_mode"
	EconPlusMechCoolingModeColumn = "econ_plus_mech_cooling_mode"
	MechCoolingOnlyModeColumn     = "mech_cooling_only_mode"
)

// ModeColumns returns the four indicator column names in canonical order.
func ModeColumns() []string {
	return []string{
		HeatingModeColumn,
		EconOnlyCoolingModeColumn,
		EconPlusMechCoolingModeColumn,
		MechCoolingOnlyModeColumn,
	}
}

// classifiedModes returns the four real modes in canonical order.
func classifiedModes() []OperatingMode {
	return []OperatingMode{ModeHeating, ModeEconOnly, ModeEconPlusMech, ModeMechOnly}
}

// =============================================================================
// Classification
// =============================================================================

// ModeConfig names the control signal columns used to classify operating
// modes and the damper position that counts as "at minimum outside air".
type ModeConfig struct {
	AHUMinOADpr       float64 `yaml:"ahu_min_oa_dpr" validate:"finite,gte=0,lte=1"`
	EconomizerSigCol  string  `yaml:"economizer_sig_col" validate:"required"`
	HeatingSigCol     string  `yaml:"heating_sig_col" validate:"required"`
	CoolingSigCol     string  `yaml:"cooling_sig_col" validate:"required"`
	SupplyVFDSpeedCol string  `yaml:"supply_vfd_speed_col" validate:"required"`
}

// ClassifyModes assigns one operating mode per row. Every mode requires the
// supply fan to be running; the damper-at-minimum comparison is exact
// equality against AHUMinOADpr, matching how building automation systems
// report a damper parked at its configured minimum.
//
// The four signal columns are checked as analog percent signals first, so a
// 0-100 coded column surfaces as an *InvalidSignalRangeError rather than
// silently classifying everything as unclassified.
func ClassifyModes(t *timeseries.Table, cfg ModeConfig) ([]OperatingMode, error) {
	if err := validateConfig("mode", cfg); err != nil {
		return nil, err
	}
	if err := CheckAnalogPercent(t,
		cfg.EconomizerSigCol, cfg.HeatingSigCol, cfg.CoolingSigCol, cfg.SupplyVFDSpeedCol,
	); err != nil {
		return nil, fmt.Errorf("mode: %w", err)
	}

	econ, _ := t.Column(cfg.EconomizerSigCol)
	htg, _ := t.Column(cfg.HeatingSigCol)
	clg, _ := t.Column(cfg.CoolingSigCol)
	vfd, _ := t.Column(cfg.SupplyVFDSpeedCol)

	modes := make([]OperatingMode, t.Len())
	for i := range modes {
		modes[i] = classifyRow(htg[i], clg[i], vfd[i], econ[i], cfg.AHUMinOADpr)
	}
	return modes, nil
}

// classifyRow applies the mode definitions to one row. NaN operands fail
// every comparison and land in ModeUnclassified.
func classifyRow(htg, clg, vfd, econ, minOA float64) OperatingMode {
	if math.IsNaN(vfd) || vfd <= 0 {
		return ModeUnclassified
	}
	switch {
	case htg > 0 && clg == 0 && econ == minOA:
		return ModeHeating
	case htg == 0 && clg == 0 && econ > minOA:
		return ModeEconOnly
	case htg == 0 && clg > 0 && econ > minOA:
		return ModeEconPlusMech
	case htg == 0 && clg > 0 && econ == minOA:
		return ModeMechOnly
	}
	return ModeUnclassified
}

// Indicators expands per-row modes into the four 0/1 indicator columns,
// keyed by the ModeColumns names. Unclassified rows are zero in every
// column.
func Indicators(modes []OperatingMode) map[string][]float64 {
	out := make(map[string][]float64, 4)
	for _, m := range classifiedModes() {
		out[m.Column()] = make([]float64, len(modes))
	}
	for i, m := range modes {
		if col := m.Column(); col != "" {
			out[col][i] = 1
		}
	}
	return out
}
