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

import "math"

// This file is the catalog of per-row fault conditions. Each condition is a
// validated configuration struct plus a constructor that compiles the
// configuration into a thresholdRule. The equations follow the ASHRAE
// Guideline 36 AHU fault rules; tolerance comparisons are strict, so a
// reading exactly at a boundary never flags.

// =============================================================================
// FC1: Duct Static Pressure Too Low
// =============================================================================

// FC1Config configures fault condition 1: duct static pressure below
// setpoint while the supply fan runs near full speed.
type FC1Config struct {
	DuctStaticInchesErrThres float64 `yaml:"duct_static_inches_err_thres" validate:"finite,gte=0"`
	VFDSpeedPercentErrThres  float64 `yaml:"vfd_speed_percent_err_thres" validate:"finite,gte=0"`
	VFDSpeedPercentMax       float64 `yaml:"vfd_speed_percent_max" validate:"finite,gte=0,lte=1"`
	DuctStaticCol            string  `yaml:"duct_static_col" validate:"required"`
	DuctStaticSetpointCol    string  `yaml:"duct_static_setpoint_col" validate:"required"`
	SupplyVFDSpeedCol        string  `yaml:"supply_vfd_speed_col" validate:"required"`
	Troubleshoot             bool    `yaml:"troubleshoot"`
}

// NewFaultConditionOne flags rows where static pressure falls below setpoint
// minus tolerance while the fan is saturated near its maximum speed, which
// means the fan has no headroom left to recover the pressure.
func NewFaultConditionOne(cfg FC1Config) (Rule, error) {
	if err := validateConfig("fc1", cfg); err != nil {
		return nil, err
	}
	eStatic := cfg.DuctStaticInchesErrThres
	eVFD := cfg.VFDSpeedPercentErrThres
	vfdMax := cfg.VFDSpeedPercentMax

	const (
		static = iota
		setpoint
		vfd
	)
	return &thresholdRule{
		name:       "fc1",
		flagColumn: "fc1_flag",
		inputs:     []string{cfg.DuctStaticCol, cfg.DuctStaticSetpointCol, cfg.SupplyVFDSpeedCol},
		analog:     []string{cfg.SupplyVFDSpeedCol},
		predicate: func(v []float64) bool {
			return v[static] < v[setpoint]-eStatic && v[vfd] >= vfdMax-eVFD
		},
		diagnostics: []diagnostic{
			{column: "static_check_", fn: func(v []float64) float64 {
				return asFlag(v[static] < v[setpoint]-eStatic)
			}},
			{column: "fan_check_", fn: func(v []float64) float64 {
				return asFlag(v[vfd] >= vfdMax-eVFD)
			}},
		},
		troubleshoot: cfg.Troubleshoot,
	}, nil
}

// =============================================================================
// FC2: Mix Temperature Too Low
// =============================================================================

// FC2Config configures fault condition 2: mix air temperature implausibly
// below both the return and outside air temperatures.
type FC2Config struct {
	MixDegFErrThres     float64 `yaml:"mix_degf_err_thres" validate:"finite,gte=0"`
	ReturnDegFErrThres  float64 `yaml:"return_degf_err_thres" validate:"finite,gte=0"`
	OutdoorDegFErrThres float64 `yaml:"outdoor_degf_err_thres" validate:"finite,gte=0"`
	MATCol              string  `yaml:"mat_col" validate:"required"`
	RATCol              string  `yaml:"rat_col" validate:"required"`
	OATCol              string  `yaml:"oat_col" validate:"required"`
	SupplyVFDSpeedCol   string  `yaml:"supply_vfd_speed_col" validate:"required"`
	Troubleshoot        bool    `yaml:"troubleshoot"`
}

// NewFaultConditionTwo flags rows where the mix temperature reads colder
// than both source air streams. Mix air is a blend of return and outside
// air, so it cannot physically leave that envelope; a persistent violation
// points at a bad mix sensor placement or calibration.
func NewFaultConditionTwo(cfg FC2Config) (Rule, error) {
	if err := validateConfig("fc2", cfg); err != nil {
		return nil, err
	}
	eMix := cfg.MixDegFErrThres
	eRet := cfg.ReturnDegFErrThres
	eOut := cfg.OutdoorDegFErrThres

	const (
		mat = iota
		rat
		oat
		vfd
	)
	return &thresholdRule{
		name:       "fc2",
		flagColumn: "fc2_flag",
		inputs:     []string{cfg.MATCol, cfg.RATCol, cfg.OATCol, cfg.SupplyVFDSpeedCol},
		analog:     []string{cfg.SupplyVFDSpeedCol},
		predicate: func(v []float64) bool {
			return v[mat]+eMix < min(v[rat]-eRet, v[oat]-eOut) && v[vfd] > 0.01
		},
		troubleshoot: cfg.Troubleshoot,
	}, nil
}

// =============================================================================
// FC3: Mix Temperature Too High
// =============================================================================

// FC3Config configures fault condition 3: mix air temperature implausibly
// above both the return and outside air temperatures.
type FC3Config struct {
	MixDegFErrThres     float64 `yaml:"mix_degf_err_thres" validate:"finite,gte=0"`
	ReturnDegFErrThres  float64 `yaml:"return_degf_err_thres" validate:"finite,gte=0"`
	OutdoorDegFErrThres float64 `yaml:"outdoor_degf_err_thres" validate:"finite,gte=0"`
	MATCol              string  `yaml:"mat_col" validate:"required"`
	RATCol              string  `yaml:"rat_col" validate:"required"`
	OATCol              string  `yaml:"oat_col" validate:"required"`
	SupplyVFDSpeedCol   string  `yaml:"supply_vfd_speed_col" validate:"required"`
	Troubleshoot        bool    `yaml:"troubleshoot"`
}

// NewFaultConditionThree is the mirror of fault condition 2: the mix
// temperature reads hotter than both the return and outside air streams
// while the fan is moving air.
func NewFaultConditionThree(cfg FC3Config) (Rule, error) {
	if err := validateConfig("fc3", cfg); err != nil {
		return nil, err
	}
	eMix := cfg.MixDegFErrThres
	eRet := cfg.ReturnDegFErrThres
	eOut := cfg.OutdoorDegFErrThres

	const (
		mat = iota
		rat
		oat
		vfd
	)
	return &thresholdRule{
		name:       "fc3",
		flagColumn: "fc3_flag",
		inputs:     []string{cfg.MATCol, cfg.RATCol, cfg.OATCol, cfg.SupplyVFDSpeedCol},
		analog:     []string{cfg.SupplyVFDSpeedCol},
		predicate: func(v []float64) bool {
			return v[mat]-eMix > max(v[rat]+eRet, v[oat]+eOut) && v[vfd] > 0.01
		},
		troubleshoot: cfg.Troubleshoot,
	}, nil
}

// =============================================================================
// FC5: Supply Temperature Too Low In Heating
// =============================================================================

// FC5Config configures fault condition 5: supply air temperature too low
// relative to the mix temperature while the heating valve is open. Applies
// to operating state 1 (heating).
type FC5Config struct {
	MixDegFErrThres    float64 `yaml:"mix_degf_err_thres" validate:"finite,gte=0"`
	SupplyDegFErrThres float64 `yaml:"supply_degf_err_thres" validate:"finite,gte=0"`
	DeltaTSupplyFan    float64 `yaml:"delta_t_supply_fan" validate:"finite,gte=0"`
	MATCol             string  `yaml:"mat_col" validate:"required"`
	SATCol             string  `yaml:"sat_col" validate:"required"`
	HeatingSigCol      string  `yaml:"heating_sig_col" validate:"required"`
	SupplyVFDSpeedCol  string  `yaml:"supply_vfd_speed_col" validate:"required"`
	Troubleshoot       bool    `yaml:"troubleshoot"`
}

// NewFaultConditionFive flags heating operation where the supply temperature
// sits below the mix temperature plus fan heat, meaning the heating coil is
// commanded open but not raising the air temperature.
func NewFaultConditionFive(cfg FC5Config) (Rule, error) {
	if err := validateConfig("fc5", cfg); err != nil {
		return nil, err
	}
	eMix := cfg.MixDegFErrThres
	eSup := cfg.SupplyDegFErrThres
	dtFan := cfg.DeltaTSupplyFan

	const (
		mat = iota
		sat
		htg
		vfd
	)
	return &thresholdRule{
		name:       "fc5",
		flagColumn: "fc5_flag",
		inputs:     []string{cfg.MATCol, cfg.SATCol, cfg.HeatingSigCol, cfg.SupplyVFDSpeedCol},
		analog:     []string{cfg.HeatingSigCol, cfg.SupplyVFDSpeedCol},
		predicate: func(v []float64) bool {
			return v[sat]+eSup < v[mat]-eMix+dtFan && v[htg] > 0.01 && v[vfd] > 0.01
		},
		diagnostics: []diagnostic{
			{column: "sat_check", fn: func(v []float64) float64 {
				return v[sat] + eSup
			}},
			{column: "mat_check", fn: func(v []float64) float64 {
				return v[mat] - eMix + dtFan
			}},
			{column: "combined_check", fn: func(v []float64) float64 {
				return asFlag(v[sat]+eSup < v[mat]-eMix+dtFan && v[htg] > 0.01 && v[vfd] > 0.01)
			}},
		},
		troubleshoot: cfg.Troubleshoot,
	}, nil
}

// =============================================================================
// FC6: Outside Air Fraction Out Of Range
// =============================================================================

// FC6Config configures fault condition 6: the outside air fraction computed
// from the temperature sensors disagrees with the design minimum while the
// unit should be holding minimum outside air. Applies in operating state 1
// (heating) and operating state 4 (mechanical cooling with the damper at
// minimum).
type FC6Config struct {
	AirflowErrThres   float64 `yaml:"airflow_err_thres" validate:"finite,gte=0"`
	AHUMinOACFMDesign float64 `yaml:"ahu_min_oa_cfm_design" validate:"finite,gte=0"`
	OATRATDeltaMin    float64 `yaml:"oat_rat_delta_min" validate:"finite,gte=0"`
	AHUMinOADpr       float64 `yaml:"ahu_min_oa_dpr" validate:"finite,gte=0,lte=1"`

	SupplyFanAirVolumeCol string `yaml:"supply_fan_air_volume_col" validate:"required"`
	MATCol                string `yaml:"mat_col" validate:"required"`
	OATCol                string `yaml:"oat_col" validate:"required"`
	RATCol                string `yaml:"rat_col" validate:"required"`
	SupplyVFDSpeedCol     string `yaml:"supply_vfd_speed_col" validate:"required"`
	EconomizerSigCol      string `yaml:"economizer_sig_col" validate:"required"`
	HeatingSigCol         string `yaml:"heating_sig_col" validate:"required"`
	CoolingSigCol         string `yaml:"cooling_sig_col" validate:"required"`
	Troubleshoot          bool   `yaml:"troubleshoot"`
}

// NewFaultConditionSix flags rows where the temperature-derived outside air
// fraction misses the design minimum fraction by more than the airflow
// tolerance. The check only runs when return and outside air are far enough
// apart for the fraction calculation to be meaningful.
func NewFaultConditionSix(cfg FC6Config) (Rule, error) {
	if err := validateConfig("fc6", cfg); err != nil {
		return nil, err
	}
	eAir := cfg.AirflowErrThres
	designCFM := cfg.AHUMinOACFMDesign
	deltaMin := cfg.OATRATDeltaMin
	minDpr := cfg.AHUMinOADpr

	const (
		mat = iota
		rat
		oat
		flow
		econ
		htg
		clg
		vfd
	)
	// percentOA is clamped at zero like the reference equations: a slightly
	// negative fraction from sensor noise reads as "no outside air".
	percentOA := func(v []float64) float64 {
		calc := (v[mat] - v[rat]) / (v[oat] - v[rat])
		if calc > 0 {
			return calc
		}
		return 0
	}
	fractionErr := func(v []float64) float64 {
		return math.Abs(percentOA(v) - designCFM/v[flow])
	}
	return &thresholdRule{
		name:       "fc6",
		flagColumn: "fc6_flag",
		inputs: []string{
			cfg.MATCol, cfg.RATCol, cfg.OATCol, cfg.SupplyFanAirVolumeCol,
			cfg.EconomizerSigCol, cfg.HeatingSigCol, cfg.CoolingSigCol, cfg.SupplyVFDSpeedCol,
		},
		analog: []string{cfg.EconomizerSigCol, cfg.HeatingSigCol, cfg.CoolingSigCol, cfg.SupplyVFDSpeedCol},
		predicate: func(v []float64) bool {
			if math.Abs(v[rat]-v[oat]) < deltaMin || fractionErr(v) <= eAir {
				return false
			}
			heatingOS1 := v[htg] > 0 && v[vfd] > 0
			mechClgOS4 := v[htg] == 0 && v[clg] > 0 && v[vfd] > 0 && v[econ] == minDpr
			return heatingOS1 || mechClgOS4
		},
		diagnostics: []diagnostic{
			{column: "rat_minus_oat", fn: func(v []float64) float64 {
				return math.Abs(v[rat] - v[oat])
			}},
			{column: "percent_oa_calc", fn: percentOA},
			{column: "perc_OAmin", fn: func(v []float64) float64 {
				return designCFM / v[flow]
			}},
			{column: "percent_oa_calc_minus_perc_OAmin", fn: fractionErr},
		},
		troubleshoot: cfg.Troubleshoot,
	}, nil
}

// =============================================================================
// FC7: Supply Temperature Too Low In Full Heating
// =============================================================================

// FC7Config configures fault condition 7: supply air temperature below
// setpoint with the heating valve commanded nearly fully open.
type FC7Config struct {
	SupplyDegFErrThres float64 `yaml:"supply_degf_err_thres" validate:"finite,gte=0"`
	SATCol             string  `yaml:"sat_col" validate:"required"`
	SATSetpointCol     string  `yaml:"sat_setpoint_col" validate:"required"`
	HeatingSigCol      string  `yaml:"heating_sig_col" validate:"required"`
	SupplyVFDSpeedCol  string  `yaml:"supply_vfd_speed_col" validate:"required"`
	Troubleshoot       bool    `yaml:"troubleshoot"`
}

// NewFaultConditionSeven flags rows where the heating coil is saturated open
// yet the supply temperature still misses setpoint, indicating undersized
// capacity or a hydronic supply problem.
func NewFaultConditionSeven(cfg FC7Config) (Rule, error) {
	if err := validateConfig("fc7", cfg); err != nil {
		return nil, err
	}
	eSup := cfg.SupplyDegFErrThres

	const (
		sat = iota
		satSP
		htg
		vfd
	)
	return &thresholdRule{
		name:       "fc7",
		flagColumn: "fc7_flag",
		inputs:     []string{cfg.SATCol, cfg.SATSetpointCol, cfg.HeatingSigCol, cfg.SupplyVFDSpeedCol},
		analog:     []string{cfg.HeatingSigCol, cfg.SupplyVFDSpeedCol},
		predicate: func(v []float64) bool {
			return v[sat] < v[satSP]-eSup && v[htg] > 0.9 && v[vfd] > 0
		},
		troubleshoot: cfg.Troubleshoot,
	}, nil
}

// =============================================================================
// FC8: Supply And Mix Temperature Disagreement In Economizer Mode
// =============================================================================

// FC8Config configures fault condition 8: with the damper modulating above
// minimum and no mechanical cooling, supply air should equal mix air plus
// fan heat.
type FC8Config struct {
	DeltaTSupplyFan    float64 `yaml:"delta_t_supply_fan" validate:"finite,gte=0"`
	MixDegFErrThres    float64 `yaml:"mix_degf_err_thres" validate:"finite,gte=0"`
	SupplyDegFErrThres float64 `yaml:"supply_degf_err_thres" validate:"finite,gte=0"`
	AHUMinOADpr        float64 `yaml:"ahu_min_oa_dpr" validate:"finite,gte=0,lte=1"`
	MATCol             string  `yaml:"mat_col" validate:"required"`
	SATCol             string  `yaml:"sat_col" validate:"required"`
	EconomizerSigCol   string  `yaml:"economizer_sig_col" validate:"required"`
	CoolingSigCol      string  `yaml:"cooling_sig_col" validate:"required"`
	Troubleshoot       bool    `yaml:"troubleshoot"`
}

// NewFaultConditionEight flags economizer operation where supply and mix
// temperatures diverge beyond the combined sensor tolerances.
func NewFaultConditionEight(cfg FC8Config) (Rule, error) {
	if err := validateConfig("fc8", cfg); err != nil {
		return nil, err
	}
	dtFan := cfg.DeltaTSupplyFan
	minDpr := cfg.AHUMinOADpr
	// Combined uncertainty of the two temperature sensors.
	tolerance := math.Sqrt(cfg.SupplyDegFErrThres*cfg.SupplyDegFErrThres +
		cfg.MixDegFErrThres*cfg.MixDegFErrThres)

	const (
		mat = iota
		sat
		econ
		clg
	)
	return &thresholdRule{
		name:       "fc8",
		flagColumn: "fc8_flag",
		inputs:     []string{cfg.MATCol, cfg.SATCol, cfg.EconomizerSigCol, cfg.CoolingSigCol},
		analog:     []string{cfg.EconomizerSigCol, cfg.CoolingSigCol},
		predicate: func(v []float64) bool {
			return math.Abs(v[sat]-dtFan-v[mat]) > tolerance &&
				v[econ] > minDpr && v[clg] < 0.1
		},
		troubleshoot: cfg.Troubleshoot,
	}, nil
}

// =============================================================================
// FC9: Outside Air Too Warm For Free Cooling
// =============================================================================

// FC9Config configures fault condition 9: the unit economizes although the
// outside air is too warm to meet the supply setpoint without mechanical
// cooling.
type FC9Config struct {
	DeltaTSupplyFan     float64 `yaml:"delta_t_supply_fan" validate:"finite,gte=0"`
	OutdoorDegFErrThres float64 `yaml:"oat_degf_err_thres" validate:"finite,gte=0"`
	SupplyDegFErrThres  float64 `yaml:"supply_degf_err_thres" validate:"finite,gte=0"`
	AHUMinOADpr         float64 `yaml:"ahu_min_oa_dpr" validate:"finite,gte=0,lte=1"`
	SATSetpointCol      string  `yaml:"sat_setpoint_col" validate:"required"`
	OATCol              string  `yaml:"oat_col" validate:"required"`
	CoolingSigCol       string  `yaml:"cooling_sig_col" validate:"required"`
	EconomizerSigCol    string  `yaml:"economizer_sig_col" validate:"required"`
	Troubleshoot        bool    `yaml:"troubleshoot"`
}

// NewFaultConditionNine flags free cooling operation with outside air warmer
// than the supply setpoint allows.
func NewFaultConditionNine(cfg FC9Config) (Rule, error) {
	if err := validateConfig("fc9", cfg); err != nil {
		return nil, err
	}
	dtFan := cfg.DeltaTSupplyFan
	eOut := cfg.OutdoorDegFErrThres
	eSup := cfg.SupplyDegFErrThres
	minDpr := cfg.AHUMinOADpr

	const (
		satSP = iota
		oat
		clg
		econ
	)
	return &thresholdRule{
		name:       "fc9",
		flagColumn: "fc9_flag",
		inputs:     []string{cfg.SATSetpointCol, cfg.OATCol, cfg.CoolingSigCol, cfg.EconomizerSigCol},
		analog:     []string{cfg.CoolingSigCol, cfg.EconomizerSigCol},
		predicate: func(v []float64) bool {
			return v[oat]-eOut > v[satSP]-dtFan+eSup &&
				v[econ] > minDpr && v[clg] < 0.1
		},
		troubleshoot: cfg.Troubleshoot,
	}, nil
}

// =============================================================================
// FC10: Outside And Mix Temperature Disagreement In Econ Plus Mech Cooling
// =============================================================================

// FC10Config configures fault condition 10: with the damper commanded fully
// open and mechanical cooling active, mix air should track outside air.
type FC10Config struct {
	OutdoorDegFErrThres float64 `yaml:"oat_degf_err_thres" validate:"finite,gte=0"`
	MATDegFErrThres     float64 `yaml:"mat_degf_err_thres" validate:"finite,gte=0"`
	OATCol              string  `yaml:"oat_col" validate:"required"`
	MATCol              string  `yaml:"mat_col" validate:"required"`
	CoolingSigCol       string  `yaml:"cooling_sig_col" validate:"required"`
	EconomizerSigCol    string  `yaml:"economizer_sig_col" validate:"required"`
	Troubleshoot        bool    `yaml:"troubleshoot"`
}

// NewFaultConditionTen flags econ plus mech cooling operation where outside
// and mix temperatures diverge beyond the combined sensor tolerances even
// though the unit is drawing essentially all outside air.
func NewFaultConditionTen(cfg FC10Config) (Rule, error) {
	if err := validateConfig("fc10", cfg); err != nil {
		return nil, err
	}
	tolerance := math.Sqrt(cfg.MATDegFErrThres*cfg.MATDegFErrThres +
		cfg.OutdoorDegFErrThres*cfg.OutdoorDegFErrThres)

	const (
		oat = iota
		mat
		clg
		econ
	)
	return &thresholdRule{
		name:       "fc10",
		flagColumn: "fc10_flag",
		inputs:     []string{cfg.OATCol, cfg.MATCol, cfg.CoolingSigCol, cfg.EconomizerSigCol},
		analog:     []string{cfg.CoolingSigCol, cfg.EconomizerSigCol},
		predicate: func(v []float64) bool {
			return math.Abs(v[mat]-v[oat]) > tolerance &&
				v[clg] > 0.01 && v[econ] > 0.9
		},
		troubleshoot: cfg.Troubleshoot,
	}, nil
}

// =============================================================================
// FC11: Outside Air Too Cold For Full Outside Air Cooling
// =============================================================================

// FC11Config configures fault condition 11: outside air too cold to run the
// damper fully open without freezing risk at the supply setpoint.
type FC11Config struct {
	DeltaTSupplyFan     float64 `yaml:"delta_t_supply_fan" validate:"finite,gte=0"`
	OutdoorDegFErrThres float64 `yaml:"oat_degf_err_thres" validate:"finite,gte=0"`
	SupplyDegFErrThres  float64 `yaml:"supply_degf_err_thres" validate:"finite,gte=0"`
	SATSetpointCol      string  `yaml:"sat_setpoint_col" validate:"required"`
	OATCol              string  `yaml:"oat_col" validate:"required"`
	CoolingSigCol       string  `yaml:"cooling_sig_col" validate:"required"`
	EconomizerSigCol    string  `yaml:"economizer_sig_col" validate:"required"`
	Troubleshoot        bool    `yaml:"troubleshoot"`
}

// NewFaultConditionEleven flags econ plus mech cooling operation with
// outside air colder than the setpoint can absorb.
func NewFaultConditionEleven(cfg FC11Config) (Rule, error) {
	if err := validateConfig("fc11", cfg); err != nil {
		return nil, err
	}
	dtFan := cfg.DeltaTSupplyFan
	eOut := cfg.OutdoorDegFErrThres
	eSup := cfg.SupplyDegFErrThres

	const (
		satSP = iota
		oat
		clg
		econ
	)
	return &thresholdRule{
		name:       "fc11",
		flagColumn: "fc11_flag",
		inputs:     []string{cfg.SATSetpointCol, cfg.OATCol, cfg.CoolingSigCol, cfg.EconomizerSigCol},
		analog:     []string{cfg.CoolingSigCol, cfg.EconomizerSigCol},
		predicate: func(v []float64) bool {
			return v[oat]+eOut < v[satSP]-dtFan-eSup &&
				v[clg] > 0.01 && v[econ] > 0.9
		},
		troubleshoot: cfg.Troubleshoot,
	}, nil
}

// =============================================================================
// FC12: Supply Temperature Too High Relative To Mix
// =============================================================================

// FC12Config configures fault condition 12: supply air warmer than mix air
// while the unit is actively cooling, in either mech cooling mode.
type FC12Config struct {
	DeltaTSupplyFan    float64 `yaml:"delta_t_supply_fan" validate:"finite,gte=0"`
	MATDegFErrThres    float64 `yaml:"mat_degf_err_thres" validate:"finite,gte=0"`
	SupplyDegFErrThres float64 `yaml:"supply_degf_err_thres" validate:"finite,gte=0"`
	AHUMinOADpr        float64 `yaml:"ahu_min_oa_dpr" validate:"finite,gte=0,lte=1"`
	SATCol             string  `yaml:"sat_col" validate:"required"`
	MATCol             string  `yaml:"mat_col" validate:"required"`
	CoolingSigCol      string  `yaml:"cooling_sig_col" validate:"required"`
	EconomizerSigCol   string  `yaml:"economizer_sig_col" validate:"required"`
	Troubleshoot       bool    `yaml:"troubleshoot"`
}

// NewFaultConditionTwelve flags active cooling where the supply temperature
// exceeds the mix temperature, meaning the cooling coil is commanded open
// but the air is getting warmer across it.
func NewFaultConditionTwelve(cfg FC12Config) (Rule, error) {
	if err := validateConfig("fc12", cfg); err != nil {
		return nil, err
	}
	dtFan := cfg.DeltaTSupplyFan
	eMix := cfg.MATDegFErrThres
	eSup := cfg.SupplyDegFErrThres
	minDpr := cfg.AHUMinOADpr

	const (
		sat = iota
		mat
		clg
		econ
	)
	return &thresholdRule{
		name:       "fc12",
		flagColumn: "fc12_flag",
		inputs:     []string{cfg.SATCol, cfg.MATCol, cfg.CoolingSigCol, cfg.EconomizerSigCol},
		analog:     []string{cfg.CoolingSigCol, cfg.EconomizerSigCol},
		predicate: func(v []float64) bool {
			return v[sat]-eSup-dtFan > v[mat]+eMix &&
				v[clg] > 0.01 && (v[econ] == minDpr || v[econ] > 0.9)
		},
		troubleshoot: cfg.Troubleshoot,
	}, nil
}

// =============================================================================
// FC13: Supply Temperature Too High In Full Cooling
// =============================================================================

// FC13Config configures fault condition 13: supply air above setpoint with
// the cooling valve saturated open.
type FC13Config struct {
	SupplyDegFErrThres float64 `yaml:"supply_degf_err_thres" validate:"finite,gte=0"`
	AHUMinOADpr        float64 `yaml:"ahu_min_oa_dpr" validate:"finite,gte=0,lte=1"`
	SATCol             string  `yaml:"sat_col" validate:"required"`
	SATSetpointCol     string  `yaml:"sat_setpoint_col" validate:"required"`
	CoolingSigCol      string  `yaml:"cooling_sig_col" validate:"required"`
	EconomizerSigCol   string  `yaml:"economizer_sig_col" validate:"required"`
	Troubleshoot       bool    `yaml:"troubleshoot"`
}

// NewFaultConditionThirteen flags full cooling operation that still misses
// the supply setpoint, indicating undersized capacity or a chilled water
// supply problem.
func NewFaultConditionThirteen(cfg FC13Config) (Rule, error) {
	if err := validateConfig("fc13", cfg); err != nil {
		return nil, err
	}
	eSup := cfg.SupplyDegFErrThres
	minDpr := cfg.AHUMinOADpr

	const (
		sat = iota
		satSP
		clg
		econ
	)
	return &thresholdRule{
		name:       "fc13",
		flagColumn: "fc13_flag",
		inputs:     []string{cfg.SATCol, cfg.SATSetpointCol, cfg.CoolingSigCol, cfg.EconomizerSigCol},
		analog:     []string{cfg.CoolingSigCol, cfg.EconomizerSigCol},
		predicate: func(v []float64) bool {
			return v[sat] > v[satSP]+eSup &&
				v[clg] > 0.9 && (v[econ] == minDpr || v[econ] > 0.9)
		},
		troubleshoot: cfg.Troubleshoot,
	}, nil
}
