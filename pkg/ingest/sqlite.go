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
	"database/sql"
	"fmt"
	"math"
	"sort"
	"strings"
	"time"

	_ "modernc.org/sqlite"

	"github.com/AleutianAI/AirsideFDD/pkg/timeseries"
	"github.com/AleutianAI/AirsideFDD/pkg/validation"
)

// SQLiteStore reads and writes the long-format TimeseriesData archive: one
// row per (sensor_name, timestamp) observation, with fault flag columns
// added alongside as evaluations run.
type SQLiteStore struct {
	db *sql.DB
}

// OpenSQLite opens (or creates) an archive database. Use ":memory:" for an
// ephemeral store.
func OpenSQLite(path string) (*SQLiteStore, error) {
	db, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, fmt.Errorf("open sqlite %s: %w", path, err)
	}
	return &SQLiteStore{db: db}, nil
}

// Close releases the database handle.
func (s *SQLiteStore) Close() error {
	return s.db.Close()
}

// EnsureSchema creates the TimeseriesData table when missing.
func (s *SQLiteStore) EnsureSchema(ctx context.Context) error {
	const ddl = `
CREATE TABLE IF NOT EXISTS TimeseriesData (
    sensor_name TEXT NOT NULL,
    timestamp   TEXT NOT NULL,
    value       REAL
);
CREATE INDEX IF NOT EXISTS idx_timeseries_sensor_ts
    ON TimeseriesData (sensor_name, timestamp);`
	if _, err := s.db.ExecContext(ctx, ddl); err != nil {
		return fmt.Errorf("ensure schema: %w", err)
	}
	return nil
}

// InsertReadings appends one sensor's observations.
func (s *SQLiteStore) InsertReadings(ctx context.Context, sensor string, index []time.Time, vals []float64) error {
	if len(index) != len(vals) {
		return fmt.Errorf("insert readings: %d timestamps for %d values", len(index), len(vals))
	}
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("insert readings: %w", err)
	}
	defer tx.Rollback()

	stmt, err := tx.PrepareContext(ctx,
		"INSERT INTO TimeseriesData (sensor_name, timestamp, value) VALUES (?, ?, ?)")
	if err != nil {
		return fmt.Errorf("insert readings: %w", err)
	}
	defer stmt.Close()

	for i, ts := range index {
		var v any
		if !math.IsNaN(vals[i]) {
			v = vals[i]
		}
		if _, err := stmt.ExecContext(ctx, sensor, ts.UTC().Format(sqliteTimeLayout), v); err != nil {
			return fmt.Errorf("insert readings: %w", err)
		}
	}
	return tx.Commit()
}

// LoadTable pivots the named sensors onto a wide table. Timestamps are the
// sorted union across sensors; a sensor with no reading at a timestamp gets
// NaN there.
func (s *SQLiteStore) LoadTable(ctx context.Context, sensors []string) (*timeseries.Table, error) {
	if len(sensors) == 0 {
		return nil, fmt.Errorf("load table: no sensors requested")
	}
	if err := validation.ValidateColumnNames(sensors); err != nil {
		return nil, fmt.Errorf("load table: %w", err)
	}

	placeholders := strings.TrimSuffix(strings.Repeat("?,", len(sensors)), ",")
	query := fmt.Sprintf(
		"SELECT sensor_name, timestamp, value FROM TimeseriesData WHERE sensor_name IN (%s) ORDER BY timestamp",
		placeholders)
	args := make([]any, len(sensors))
	for i, sensor := range sensors {
		args[i] = sensor
	}

	rows, err := s.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("load table: %w", err)
	}
	defer rows.Close()

	type reading struct {
		sensor string
		value  float64
	}
	bySensor := make(map[string]map[time.Time]float64, len(sensors))
	for _, sensor := range sensors {
		bySensor[sensor] = make(map[time.Time]float64)
	}
	tsSet := make(map[time.Time]struct{})

	for rows.Next() {
		var (
			r      reading
			rawTS  string
			rawVal sql.NullFloat64
		)
		if err := rows.Scan(&r.sensor, &rawTS, &rawVal); err != nil {
			return nil, fmt.Errorf("load table: %w", err)
		}
		ts, err := parseTimestamp(rawTS)
		if err != nil {
			return nil, fmt.Errorf("load table: %w", err)
		}
		if rawVal.Valid {
			r.value = rawVal.Float64
		} else {
			r.value = math.NaN()
		}
		if m, ok := bySensor[r.sensor]; ok {
			m[ts] = r.value
		}
		tsSet[ts] = struct{}{}
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("load table: %w", err)
	}

	index := make([]time.Time, 0, len(tsSet))
	for ts := range tsSet {
		index = append(index, ts)
	}
	sort.Slice(index, func(i, j int) bool { return index[i].Before(index[j]) })

	tbl := timeseries.New(index)
	for _, sensor := range sensors {
		vals := make([]float64, len(index))
		for i, ts := range index {
			if v, ok := bySensor[sensor][ts]; ok {
				vals[i] = v
			} else {
				vals[i] = math.NaN()
			}
		}
		if err := tbl.AddColumn(sensor, vals); err != nil {
			return nil, fmt.Errorf("load table: %w", err)
		}
	}
	return tbl, nil
}

// EnsureFlagColumn adds an integer fault flag column to the archive when it
// does not exist yet. The name is interpolated into DDL, so it is validated
// first.
func (s *SQLiteStore) EnsureFlagColumn(ctx context.Context, flagCol string) error {
	if err := validation.ValidateColumnName(flagCol); err != nil {
		return fmt.Errorf("ensure flag column: %w", err)
	}

	rows, err := s.db.QueryContext(ctx, "PRAGMA table_info(TimeseriesData)")
	if err != nil {
		return fmt.Errorf("ensure flag column: %w", err)
	}
	defer rows.Close()
	for rows.Next() {
		var (
			cid       int
			name, typ string
			notNull   int
			dflt      sql.NullString
			pk        int
		)
		if err := rows.Scan(&cid, &name, &typ, &notNull, &dflt, &pk); err != nil {
			return fmt.Errorf("ensure flag column: %w", err)
		}
		if name == flagCol {
			return nil
		}
	}
	if err := rows.Err(); err != nil {
		return fmt.Errorf("ensure flag column: %w", err)
	}

	ddl := fmt.Sprintf("ALTER TABLE TimeseriesData ADD COLUMN %s INTEGER", flagCol)
	if _, err := s.db.ExecContext(ctx, ddl); err != nil {
		return fmt.Errorf("ensure flag column: %w", err)
	}
	return nil
}

// WriteFlags stores a flag column back into the archive: every sensor row
// sharing a flagged timestamp gets the flag value, mirroring how the wide
// evaluation table fans back out to long format.
func (s *SQLiteStore) WriteFlags(ctx context.Context, flagCol string, index []time.Time, flags []float64) error {
	if len(index) != len(flags) {
		return fmt.Errorf("write flags: %d timestamps for %d flags", len(index), len(flags))
	}
	if err := s.EnsureFlagColumn(ctx, flagCol); err != nil {
		return err
	}

	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("write flags: %w", err)
	}
	defer tx.Rollback()

	// Flag name already validated by EnsureFlagColumn.
	stmt, err := tx.PrepareContext(ctx,
		fmt.Sprintf("UPDATE TimeseriesData SET %s = ? WHERE timestamp = ?", flagCol))
	if err != nil {
		return fmt.Errorf("write flags: %w", err)
	}
	defer stmt.Close()

	for i, ts := range index {
		if _, err := stmt.ExecContext(ctx, int(flags[i]), ts.UTC().Format(sqliteTimeLayout)); err != nil {
			return fmt.Errorf("write flags: %w", err)
		}
	}
	return tx.Commit()
}
