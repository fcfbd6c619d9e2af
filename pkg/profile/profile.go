// Copyright (C) 2025 Aleutian AI (jinterlante@aleutian.ai)
// This program is free software: you can redistribute it and/or modify
// it under the terms of the GNU Affero General Public License as published by
// the Free Software Foundation, either version 3 of the License, or
// (at your option) any later version.
// See the LICENSE.txt file for the full license text.
//
// NOTE: This work is subject to additional terms under AGPL v3 Section 7.
// See the NOTICE.txt file for details regarding AI system attribution.

// Package profile loads and validates run profiles: the YAML documents that
// bind one dataset to the fault rules that should run against it.
//
// A profile looks like:
//
//	dataset:
//	  source: csv
//	  path: ./exports/ahu1.csv
//	  index_column: timestamp
//	  rolling_mean: 5m
//	  percentage_columns: [supply_vfd_speed, heating_sig, cooling_sig, economizer_sig]
//	rules:
//	  - id: fc1
//	    params:
//	      vfd_speed_percent_err_thres: 0.05
//	      vfd_speed_percent_max: 0.99
//	      duct_static_inches_err_thres: 0.1
//	      duct_static_col: duct_static
//	      supply_vfd_speed_col: supply_vfd_speed
//	      duct_static_setpoint_col: duct_static_setpoint
//	  - id: fc4
//	    params:
//	      delta_os_max: 7
//	      ahu_min_oa_dpr: 0.20
//	      economizer_sig_col: economizer_sig
//	      heating_sig_col: heating_sig
//	      cooling_sig_col: cooling_sig
//	      supply_vfd_speed_col: supply_vfd_speed
//
// Credentials never belong in profile files; the InfluxDB token and URL can
// be supplied through AIRSIDE_INFLUX_TOKEN and AIRSIDE_INFLUX_URL instead.
package profile

import (
	"bytes"
	"fmt"
	"os"
	"time"

	"gopkg.in/yaml.v3"

	"github.com/AleutianAI/AirsideFDD/pkg/fault"
	"github.com/AleutianAI/AirsideFDD/pkg/ingest"
	"github.com/AleutianAI/AirsideFDD/pkg/validation"
)

// Dataset sources.
const (
	SourceCSV    = "csv"
	SourceSQLite = "sqlite"
	SourceInflux = "influx"
)

// Profile binds a dataset to the rules that evaluate it.
type Profile struct {
	Dataset Dataset    `yaml:"dataset"`
	Rules   []RuleSpec `yaml:"rules"`
	Report  Report     `yaml:"report,omitempty"`
}

// Report controls the per-rule summaries written after an evaluation.
type Report struct {
	// FanSpeedCol feeds supply fan runtime hours into each rule summary.
	// Empty skips motor runtime.
	FanSpeedCol string `yaml:"fan_speed_col,omitempty"`

	// SensorCols are averaged over flagged rows in each rule summary.
	SensorCols []string `yaml:"sensor_cols,omitempty"`
}

// Dataset describes where the sensor table comes from and how to clean it
// up before evaluation.
type Dataset struct {
	// Source selects the ingestion backend: csv, sqlite, or influx.
	// Defaults to csv.
	Source string `yaml:"source,omitempty"`

	// Path is the CSV file or SQLite database to read.
	Path string `yaml:"path,omitempty"`

	// IndexColumn is the timestamp header for CSV sources.
	// Defaults to "timestamp".
	IndexColumn string `yaml:"index_column,omitempty"`

	// RollingMean smooths every sensor column with a trailing window,
	// expressed as a Go duration string like "5m". Empty disables it.
	RollingMean string `yaml:"rolling_mean,omitempty"`

	// PercentColumns are 0-100 coded columns rescaled onto [0, 1] at load.
	PercentColumns []string `yaml:"percentage_columns,omitempty"`

	// Sensors names the columns to pull from sqlite and influx sources,
	// where the store holds more points than one evaluation needs.
	Sensors []string `yaml:"sensors,omitempty"`

	// Influx locates the bucket and measurement for influx sources.
	Influx ingest.InfluxConfig `yaml:"influx,omitempty"`

	rollingWindow time.Duration
}

// RollingWindow returns the parsed rolling-mean window. Zero when smoothing
// is disabled. Only meaningful after Validate.
func (d *Dataset) RollingWindow() time.Duration {
	return d.rollingWindow
}

// RuleSpec selects one registered rule and carries its raw parameters. The
// params block is decoded by the rule's own config type, so each rule keeps
// its own schema.
type RuleSpec struct {
	ID     string    `yaml:"id"`
	Params yaml.Node `yaml:"params,omitempty"`
}

// Load reads and validates a profile.
//
// Environment overrides are applied before validation so that credentials
// stay out of profile files: AIRSIDE_INFLUX_TOKEN and AIRSIDE_INFLUX_URL
// replace the corresponding influx fields when set.
func Load(path string) (*Profile, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("load profile: %w", err)
	}
	p, err := Parse(data)
	if err != nil {
		return nil, fmt.Errorf("load profile %s: %w", path, err)
	}
	if err := p.Validate(); err != nil {
		return nil, fmt.Errorf("load profile %s: %w", path, err)
	}
	return p, nil
}

// Parse decodes a profile from YAML and applies the environment overrides,
// but does not validate. Callers that fill fields programmatically, like
// watch mode setting the dataset path per dropped file, validate after the
// mutation.
func Parse(data []byte) (*Profile, error) {
	var p Profile
	dec := yaml.NewDecoder(bytes.NewReader(data))
	dec.KnownFields(true)
	if err := dec.Decode(&p); err != nil {
		return nil, err
	}

	if token := os.Getenv("AIRSIDE_INFLUX_TOKEN"); token != "" {
		p.Dataset.Influx.Token = token
	}
	if url := os.Getenv("AIRSIDE_INFLUX_URL"); url != "" {
		p.Dataset.Influx.URL = url
	}
	return &p, nil
}

// Validate checks the profile's structure and normalizes defaults.
//
// Rule parameters are NOT decoded here; BuildRules does that so a profile
// can be structurally valid while an individual rule config is not.
func (p *Profile) Validate() error {
	if p.Dataset.Source == "" {
		p.Dataset.Source = SourceCSV
	}

	switch p.Dataset.Source {
	case SourceCSV:
		if p.Dataset.Path == "" {
			return fmt.Errorf("dataset: path is required for csv sources")
		}
		if p.Dataset.IndexColumn == "" {
			p.Dataset.IndexColumn = "timestamp"
		}
		if err := validation.ValidateColumnName(p.Dataset.IndexColumn); err != nil {
			return fmt.Errorf("dataset: index_column: %w", err)
		}
	case SourceSQLite:
		if p.Dataset.Path == "" {
			return fmt.Errorf("dataset: path is required for sqlite sources")
		}
		if len(p.Dataset.Sensors) == 0 {
			return fmt.Errorf("dataset: sensors are required for sqlite sources")
		}
		if err := validation.ValidateColumnNames(p.Dataset.Sensors); err != nil {
			return fmt.Errorf("dataset: sensors: %w", err)
		}
	case SourceInflux:
		if len(p.Dataset.Sensors) == 0 {
			return fmt.Errorf("dataset: sensors are required for influx sources")
		}
		if err := validation.ValidateColumnNames(p.Dataset.Sensors); err != nil {
			return fmt.Errorf("dataset: sensors: %w", err)
		}
		if err := p.Dataset.Influx.Validate(); err != nil {
			return fmt.Errorf("dataset: %w", err)
		}
	default:
		return fmt.Errorf("dataset: unknown source %q (want csv, sqlite, or influx)", p.Dataset.Source)
	}

	if p.Dataset.RollingMean != "" {
		window, err := time.ParseDuration(p.Dataset.RollingMean)
		if err != nil {
			return fmt.Errorf("dataset: rolling_mean: %w", err)
		}
		if window <= 0 {
			return fmt.Errorf("dataset: rolling_mean must be positive, got %s", window)
		}
		p.Dataset.rollingWindow = window
	}

	if err := validation.ValidateColumnNames(p.Dataset.PercentColumns); err != nil {
		return fmt.Errorf("dataset: percentage_columns: %w", err)
	}

	if p.Report.FanSpeedCol != "" {
		if err := validation.ValidateColumnName(p.Report.FanSpeedCol); err != nil {
			return fmt.Errorf("report: fan_speed_col: %w", err)
		}
	}
	if err := validation.ValidateColumnNames(p.Report.SensorCols); err != nil {
		return fmt.Errorf("report: sensor_cols: %w", err)
	}

	if len(p.Rules) == 0 {
		return fmt.Errorf("rules: at least one rule is required")
	}
	seen := make(map[string]struct{}, len(p.Rules))
	for i, spec := range p.Rules {
		if spec.ID == "" {
			return fmt.Errorf("rules[%d]: id is required", i)
		}
		if _, dup := seen[spec.ID]; dup {
			return fmt.Errorf("rules[%d]: duplicate rule %q", i, spec.ID)
		}
		seen[spec.ID] = struct{}{}
	}
	return nil
}

// BuildRules constructs the configured rules through the rule registry.
// Every parameter block is decoded and validated by its rule's config type.
func (p *Profile) BuildRules() ([]fault.Rule, error) {
	rules := make([]fault.Rule, 0, len(p.Rules))
	for i, spec := range p.Rules {
		var params *yaml.Node
		if spec.Params.Kind != 0 {
			node := spec.Params
			params = &node
		}
		rule, err := fault.New(spec.ID, params)
		if err != nil {
			return nil, fmt.Errorf("rules[%d] %s: %w", i, spec.ID, err)
		}
		rules = append(rules, rule)
	}
	return rules, nil
}
