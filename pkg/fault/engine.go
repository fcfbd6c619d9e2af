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
	"context"
	"log/slog"
	"runtime"
	"time"

	"github.com/google/uuid"
	"golang.org/x/sync/errgroup"

	"github.com/AleutianAI/AirsideFDD/pkg/timeseries"
)

// =============================================================================
// Batch Engine
// =============================================================================

// RuleResult records one rule's outcome within a batch run.
type RuleResult struct {
	Rule       string
	FlagColumn string
	Duration   time.Duration
	Flagged    int // rows (or hours, for hourly rules) flagged
	Err        error
}

// RunResult is the outcome of evaluating a rule set against one sensor
// table. Table is the input extended with every successful row-cadence
// rule's columns; Hourly carries the outputs of rules that report on their
// own hourly index, keyed by rule name.
type RunResult struct {
	RunID   string
	Table   *timeseries.Table
	Hourly  map[string]*timeseries.Table
	Results []RuleResult
}

// Failed returns the results of rules that errored.
func (r *RunResult) Failed() []RuleResult {
	var out []RuleResult
	for _, res := range r.Results {
		if res.Err != nil {
			out = append(out, res)
		}
	}
	return out
}

// Engine evaluates a fixed set of rules against sensor tables. Rules are
// pure functions of the input, so one engine can be reused across datasets
// and goroutines.
type Engine struct {
	rules       []Rule
	logger      *slog.Logger
	concurrency int
}

// NewEngine builds an engine over the given rules. A nil logger falls back
// to slog.Default.
func NewEngine(logger *slog.Logger, rules ...Rule) *Engine {
	if logger == nil {
		logger = slog.Default()
	}
	return &Engine{
		rules:       rules,
		logger:      logger,
		concurrency: runtime.GOMAXPROCS(0),
	}
}

// SetConcurrency bounds how many rules evaluate in parallel. Values below 1
// restore the default.
func (e *Engine) SetConcurrency(n int) {
	if n < 1 {
		n = runtime.GOMAXPROCS(0)
	}
	e.concurrency = n
}

// Rules returns the engine's rules in evaluation order.
func (e *Engine) Rules() []Rule {
	out := make([]Rule, len(e.rules))
	copy(out, e.rules)
	return out
}

// Run evaluates every rule against the table. Each rule works from the
// original input and appends its own columns to a private copy, so rules
// never observe each other's output and a failing rule cannot corrupt the
// batch: its error is recorded in the matching RuleResult while siblings
// proceed.
//
// Run returns an error only when the engine has no rules or the context is
// canceled; in the latter case the partial RunResult is still returned.
func (e *Engine) Run(ctx context.Context, t *timeseries.Table) (*RunResult, error) {
	if len(e.rules) == 0 {
		return nil, ErrNoRules
	}

	runID := uuid.NewString()
	log := e.logger.With("run_id", runID)
	log.Info("starting fault evaluation",
		"rules", len(e.rules),
		"rows", t.Len())

	results := make([]RuleResult, len(e.rules))
	tables := make([]*timeseries.Table, len(e.rules))

	g, gCtx := errgroup.WithContext(ctx)
	g.SetLimit(e.concurrency)

	for i, rule := range e.rules {
		i, rule := i, rule // Capture loop variables

		g.Go(func() error {
			results[i] = RuleResult{Rule: rule.Name(), FlagColumn: rule.FlagColumn()}
			if err := gCtx.Err(); err != nil {
				results[i].Err = err
				return nil
			}

			start := time.Now()
			out, err := rule.Apply(t)
			results[i].Duration = time.Since(start)

			if err != nil {
				results[i].Err = err
				log.Warn("rule failed",
					"rule", rule.Name(),
					"error", err)
				return nil // Rule errors are isolated, never fail the batch
			}

			tables[i] = out
			if flags, ok := out.Column(rule.FlagColumn()); ok {
				results[i].Flagged = countFlags(flags)
			}
			return nil
		})
	}
	_ = g.Wait()

	res := &RunResult{
		RunID:   runID,
		Table:   t,
		Hourly:  make(map[string]*timeseries.Table),
		Results: results,
	}

	merged := t
	for i, rule := range e.rules {
		out := tables[i]
		if out == nil {
			continue
		}
		if hr, ok := rule.(HourlyRule); ok && hr.Hourly() {
			res.Hourly[rule.Name()] = out
			continue
		}
		merged = mergeNewColumns(merged, t, out)
	}
	res.Table = merged

	if err := ctx.Err(); err != nil {
		log.Warn("fault evaluation canceled", "error", err)
		return res, err
	}

	log.Info("fault evaluation complete",
		"failed_rules", len(res.Failed()),
		"hourly_tables", len(res.Hourly))
	return res, nil
}

// mergeNewColumns copies onto dst every column of out that was not already
// part of the shared input table.
func mergeNewColumns(dst, input, out *timeseries.Table) *timeseries.Table {
	for _, name := range out.Names() {
		if input.Has(name) {
			continue
		}
		vals, _ := out.Column(name)
		next, err := dst.WithColumn(name, vals)
		if err != nil {
			// Lengths match by construction; nothing sane to do here.
			continue
		}
		dst = next
	}
	return dst
}

// countFlags counts rows flagged 1.
func countFlags(flags []float64) int {
	n := 0
	for _, f := range flags {
		if f == 1 {
			n++
		}
	}
	return n
}
