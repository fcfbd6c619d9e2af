// Copyright (C) 2025 Aleutian AI (jinterlante@aleutian.ai)
// This program is free software: you can redistribute it and/or modify
// it under the terms of the GNU Affero General Public License as published by
// the Free Software Foundation, either version 3 of the License, or
// (at your option) any later version.
// See the LICENSE.txt file for the full license text.
//
// NOTE: This work is subject to additional terms under AGPL v3 Section 7.
// See the NOTICE.txt file for details regarding AI system attribution.

package ingest

import (
	"context"
	"fmt"
	"log/slog"
	"math"
	"strings"
	"time"

	influxdb2 "github.com/influxdata/influxdb-client-go/v2"
	"github.com/influxdata/influxdb-client-go/v2/api"

	"github.com/AleutianAI/AirsideFDD/pkg/timeseries"
	"github.com/AleutianAI/AirsideFDD/pkg/validation"
)

// InfluxConfig locates one measurement of sensor fields in an InfluxDB 2.x
// bucket. Start and Stop are Flux duration or RFC3339 expressions, for
// example "-30d" or "2024-06-01T00:00:00Z".
type InfluxConfig struct {
	URL         string `yaml:"url" validate:"required,url"`
	Token       string `yaml:"token" validate:"required"`
	Org         string `yaml:"org" validate:"required"`
	Bucket      string `yaml:"bucket" validate:"required"`
	Measurement string `yaml:"measurement" validate:"required"`
	Start       string `yaml:"start" validate:"required"`
	Stop        string `yaml:"stop,omitempty"`
}

// InfluxSource fetches sensor trends from InfluxDB and pivots them onto a
// wide evaluation table, one column per field.
type InfluxSource struct {
	cfg      InfluxConfig
	client   influxdb2.Client
	queryAPI api.QueryAPI
	logger   *slog.Logger
}

// NewInfluxSource validates the config and dials the client. The client is
// lazy; connectivity errors surface on the first Fetch.
func NewInfluxSource(cfg InfluxConfig, logger *slog.Logger) (*InfluxSource, error) {
	if logger == nil {
		logger = slog.Default()
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	client := influxdb2.NewClient(cfg.URL, cfg.Token)
	return &InfluxSource{
		cfg:      cfg,
		client:   client,
		queryAPI: client.QueryAPI(cfg.Org),
		logger:   logger,
	}, nil
}

// Validate checks that the configuration is complete and that every value
// interpolated into Flux passes the identifier rules.
func (c InfluxConfig) Validate() error {
	if c.URL == "" || c.Token == "" || c.Org == "" {
		return fmt.Errorf("influx config: url, token, and org are required")
	}
	if c.Start == "" {
		return fmt.Errorf("influx config: start is required")
	}
	// Bucket and measurement are interpolated into Flux, so they must pass
	// the same identifier rules as column names.
	if err := validation.ValidateColumnName(c.Bucket); err != nil {
		return fmt.Errorf("influx config: bucket: %w", err)
	}
	if err := validation.ValidateColumnName(c.Measurement); err != nil {
		return fmt.Errorf("influx config: measurement: %w", err)
	}
	if err := validateFluxTime(c.Start); err != nil {
		return fmt.Errorf("influx config: start: %w", err)
	}
	if c.Stop != "" {
		if err := validateFluxTime(c.Stop); err != nil {
			return fmt.Errorf("influx config: stop: %w", err)
		}
	}
	return nil
}

// validateFluxTime accepts relative durations like "-30d" or absolute
// RFC3339 instants. Anything else is rejected before query assembly.
func validateFluxTime(expr string) error {
	if _, err := time.Parse(time.RFC3339, expr); err == nil {
		return nil
	}
	rest := strings.TrimPrefix(expr, "-")
	if rest == "" {
		return fmt.Errorf("empty time expression")
	}
	for _, r := range rest {
		switch {
		case r >= '0' && r <= '9':
		case r == 's' || r == 'm' || r == 'h' || r == 'd' || r == 'w':
		default:
			return fmt.Errorf("invalid time expression %q", expr)
		}
	}
	return nil
}

// Fetch pulls the named fields over the configured window and pivots them so
// each field becomes a column keyed by _time.
//
// Rows where a field has no stored point carry NaN for that column, matching
// how the evaluation engine treats missing samples.
func (s *InfluxSource) Fetch(ctx context.Context, fields []string) (*timeseries.Table, error) {
	if len(fields) == 0 {
		return nil, fmt.Errorf("influx fetch: no fields requested")
	}
	// Validate all fields to prevent Flux injection.
	if err := validation.ValidateColumnNames(fields); err != nil {
		return nil, fmt.Errorf("influx fetch: %w", err)
	}

	query := s.buildQuery(fields)
	s.logger.Info("Querying InfluxDB",
		"bucket", s.cfg.Bucket,
		"measurement", s.cfg.Measurement,
		"fields", len(fields),
		"start", s.cfg.Start)

	result, err := s.queryAPI.Query(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("influx fetch: %w", err)
	}
	if result == nil {
		s.logger.Warn("Query returned nil result", "measurement", s.cfg.Measurement)
		return timeseries.New(nil), nil
	}

	var (
		index []time.Time
		cols  = make(map[string][]float64, len(fields))
	)
	for _, f := range fields {
		cols[f] = nil
	}

	for result.Next() {
		record := result.Record()
		index = append(index, record.Time().UTC())
		for _, f := range fields {
			v := math.NaN()
			if raw, ok := record.ValueByKey(f).(float64); ok {
				v = raw
			}
			cols[f] = append(cols[f], v)
		}
	}
	if result.Err() != nil {
		return nil, fmt.Errorf("influx fetch: %w", result.Err())
	}

	tbl := timeseries.New(index)
	for _, f := range fields {
		vals := cols[f]
		if vals == nil {
			vals = make([]float64, len(index))
			for i := range vals {
				vals[i] = math.NaN()
			}
		}
		if err := tbl.AddColumn(f, vals); err != nil {
			return nil, fmt.Errorf("influx fetch: %w", err)
		}
	}

	s.logger.Info("Query complete", "measurement", s.cfg.Measurement, "rows", tbl.Len())
	return tbl, nil
}

func (s *InfluxSource) buildQuery(fields []string) string {
	rangeClause := fmt.Sprintf("range(start: %s)", s.cfg.Start)
	if s.cfg.Stop != "" {
		rangeClause = fmt.Sprintf("range(start: %s, stop: %s)", s.cfg.Start, s.cfg.Stop)
	}

	fieldTerms := make([]string, len(fields))
	for i, f := range fields {
		fieldTerms[i] = fmt.Sprintf(`r._field == "%s"`, f)
	}

	return fmt.Sprintf(`
from(bucket: "%s")
  |> %s
  |> filter(fn: (r) => r._measurement == "%s")
  |> filter(fn: (r) => %s)
  |> pivot(rowKey:["_time"], columnKey: ["_field"], valueColumn: "_value")
  |> sort(columns: ["_time"], desc: false)
`, s.cfg.Bucket, rangeClause, s.cfg.Measurement, strings.Join(fieldTerms, " or "))
}

// Close shuts the underlying HTTP client down.
func (s *InfluxSource) Close() {
	s.client.Close()
}
