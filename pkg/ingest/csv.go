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
	"encoding/csv"
	"fmt"
	"math"
	"os"
	"strconv"
	"time"

	"github.com/AleutianAI/AirsideFDD/pkg/timeseries"
	"github.com/AleutianAI/AirsideFDD/pkg/validation"
)

// CSVOptions configures how a wide CSV export is turned into a sensor
// table.
type CSVOptions struct {
	// IndexColumn is the header of the timestamp column. Required.
	IndexColumn string

	// RollingMean, when positive, smooths every sensor column with a
	// trailing time-window mean after parsing.
	RollingMean time.Duration

	// PercentColumns are 0-100 coded columns to rescale onto [0, 1].
	PercentColumns []string
}

// ReadCSV parses a wide CSV trend export into a sensor table. The first row
// is the header; every non-index cell is parsed as a float64 and blank or
// non-numeric cells become NaN, the table's missing-value encoding. Rows
// must already be in time order, which is how trend exports arrive.
func ReadCSV(path string, opts CSVOptions) (*timeseries.Table, error) {
	if opts.IndexColumn == "" {
		return nil, fmt.Errorf("read csv: index column not configured")
	}

	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("read csv: %w", err)
	}
	defer f.Close()

	r := csv.NewReader(f)
	r.FieldsPerRecord = -1
	records, err := r.ReadAll()
	if err != nil {
		return nil, fmt.Errorf("read csv %s: %w", path, err)
	}
	if len(records) < 1 {
		return nil, fmt.Errorf("read csv %s: no header row", path)
	}

	header := records[0]
	indexPos := -1
	names := make([]string, len(header))
	for i, h := range header {
		name, err := validation.SanitizeColumnName(h)
		if err != nil {
			return nil, fmt.Errorf("read csv %s: header %d: %w", path, i, err)
		}
		names[i] = name
		if name == opts.IndexColumn {
			indexPos = i
		}
	}
	if indexPos < 0 {
		return nil, fmt.Errorf("read csv %s: index column %q not in header", path, opts.IndexColumn)
	}

	rows := records[1:]
	index := make([]time.Time, len(rows))
	cols := make([][]float64, len(header))
	for i := range cols {
		if i != indexPos {
			cols[i] = make([]float64, len(rows))
		}
	}

	for rowNum, rec := range rows {
		if len(rec) != len(header) {
			return nil, fmt.Errorf("read csv %s: row %d has %d fields, header has %d",
				path, rowNum+2, len(rec), len(header))
		}
		ts, err := parseTimestamp(rec[indexPos])
		if err != nil {
			return nil, fmt.Errorf("read csv %s: row %d: %w", path, rowNum+2, err)
		}
		index[rowNum] = ts
		for i, cell := range rec {
			if i == indexPos {
				continue
			}
			v, err := strconv.ParseFloat(cell, 64)
			if err != nil {
				v = math.NaN()
			}
			cols[i][rowNum] = v
		}
	}

	tbl := timeseries.New(index)
	for i, name := range names {
		if i == indexPos {
			continue
		}
		if err := tbl.AddColumn(name, cols[i]); err != nil {
			return nil, fmt.Errorf("read csv %s: %w", path, err)
		}
	}

	for _, name := range opts.PercentColumns {
		vals, ok := tbl.Column(name)
		if !ok {
			return nil, fmt.Errorf("read csv %s: percent column %q not found", path, name)
		}
		for i := range vals {
			vals[i] /= 100
		}
	}

	if opts.RollingMean > 0 {
		tbl = tbl.RollingMean(opts.RollingMean)
	}
	return tbl, nil
}

// WriteCSV writes a table as a wide CSV with the given index header. NaN
// cells are written empty, matching what ReadCSV parses back to NaN.
func WriteCSV(path string, t *timeseries.Table, indexColumn string) error {
	f, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("write csv: %w", err)
	}
	defer f.Close()

	w := csv.NewWriter(f)
	names := t.Names()
	header := append([]string{indexColumn}, names...)
	if err := w.Write(header); err != nil {
		return fmt.Errorf("write csv %s: %w", path, err)
	}

	cols := make([][]float64, len(names))
	for i, name := range names {
		cols[i], _ = t.Column(name)
	}

	row := make([]string, len(header))
	for i, ts := range t.Index() {
		row[0] = ts.Format(time.RFC3339)
		for j, col := range cols {
			if math.IsNaN(col[i]) {
				row[j+1] = ""
			} else {
				row[j+1] = strconv.FormatFloat(col[i], 'g', -1, 64)
			}
		}
		if err := w.Write(row); err != nil {
			return fmt.Errorf("write csv %s: %w", path, err)
		}
	}
	w.Flush()
	if err := w.Error(); err != nil {
		return fmt.Errorf("write csv %s: %w", path, err)
	}
	return nil
}
