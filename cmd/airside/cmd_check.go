// Copyright (C) 2025 Aleutian AI (jinterlante@aleutian.ai)
// This program is free software: you can redistribute it and/or modify
// it under the terms of the GNU Affero General Public License as published by
// the Free Software Foundation, either version 3 of the License, or
// (at your option) any later version.
// See the LICENSE.txt file for the full license text.
//
// NOTE: This work is subject to additional terms under AGPL v3 Section 7.
// See the NOTICE.txt file for details regarding AI system attribution.

package main

import (
	"context"
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/AleutianAI/AirsideFDD/pkg/ingest"
	"github.com/AleutianAI/AirsideFDD/pkg/profile"
	"github.com/AleutianAI/AirsideFDD/pkg/timeseries"
	"github.com/AleutianAI/AirsideFDD/pkg/ux"
)

// runCheck validates a profile end to end without evaluating anything: the
// profile structure, every rule's parameters, dataset readability, and the
// column bindings each rule expects.
func runCheck(cmd *cobra.Command, _ []string) {
	logger := newLogger()
	defer func() { _ = logger.Close() }()

	p, err := profile.Load(profilePath)
	if err != nil {
		ux.Error(err.Error())
		os.Exit(1)
	}
	ux.Success("Profile structure valid")

	rules, err := p.BuildRules()
	if err != nil {
		ux.Error(err.Error())
		os.Exit(1)
	}
	ux.Success(fmt.Sprintf("%d rules configured", len(rules)))

	var (
		tbl   *timeseries.Table
		store *ingest.SQLiteStore
	)
	err = ux.WithSpinner("Reading dataset", func() error {
		var loadErr error
		tbl, store, loadErr = loadDataset(context.Background(), &p.Dataset, logger)
		return loadErr
	})
	if err != nil {
		os.Exit(1)
	}
	if store != nil {
		defer func() { _ = store.Close() }()
	}
	ux.Success(fmt.Sprintf("Dataset readable: %d rows, %d columns", tbl.Len(), len(tbl.Names())))

	// Probe every rule against a zero-row table carrying the dataset's
	// columns. Column requirements fire without touching a single reading.
	probe := timeseries.New(nil)
	for _, name := range tbl.Names() {
		_ = probe.AddColumn(name, nil)
	}

	incompatible := 0
	for _, rule := range rules {
		if _, err := rule.Apply(probe); err != nil {
			incompatible++
			ux.RuleStatus(rule.Name(), ux.IconError, err.Error())
			continue
		}
		ux.RuleStatus(rule.Name(), ux.IconSuccess, "columns present")
	}
	if incompatible > 0 {
		ux.Error(fmt.Sprintf("%d of %d rules cannot run against this dataset", incompatible, len(rules)))
		os.Exit(1)
	}
	ux.Success("Profile and dataset are compatible")
}
