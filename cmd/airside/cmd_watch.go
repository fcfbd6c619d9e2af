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
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"

	"github.com/AleutianAI/AirsideFDD/pkg/ingest"
	"github.com/AleutianAI/AirsideFDD/pkg/profile"
	"github.com/AleutianAI/AirsideFDD/pkg/ux"
)

// runWatch keeps the evaluator pointed at a drop directory: every CSV that
// lands there is run through the profile's rules after a debounce window, so
// a building system exporting hourly files gets its reports with no operator
// in the loop.
func runWatch(cmd *cobra.Command, _ []string) {
	logger := newLogger()
	defer func() { _ = logger.Close() }()

	data, err := os.ReadFile(profilePath)
	if err != nil {
		ux.Error(err.Error())
		os.Exit(1)
	}
	p, err := profile.Parse(data)
	if err != nil {
		ux.Error(fmt.Sprintf("parse profile %s: %v", profilePath, err))
		os.Exit(1)
	}
	if p.Dataset.Source != "" && p.Dataset.Source != profile.SourceCSV {
		ux.Error("watch mode evaluates dropped CSV files; the profile's dataset source must be csv")
		os.Exit(1)
	}
	p.Dataset.Source = profile.SourceCSV

	// Fail on structural problems now, not on the first drop.
	probe := *p
	probe.Dataset.Path = "probe.csv"
	if err := probe.Validate(); err != nil {
		ux.Error(err.Error())
		os.Exit(1)
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	handler := func(paths []string) {
		for _, path := range paths {
			run := *p
			run.Dataset.Path = path
			if err := run.Validate(); err != nil {
				ux.Error(fmt.Sprintf("%s: %v", path, err))
				continue
			}
			ux.Title("Airside FDD: " + datasetStem(&run.Dataset))
			if err := evaluateProfile(ctx, &run, logger); err != nil {
				ux.Error(fmt.Sprintf("%s: %v", path, err))
				logger.Error("evaluation failed", "path", path, "error", err)
			}
		}
	}

	watcher, err := ingest.NewDropWatcher(watchDir, handler, &ingest.DropWatcherOptions{
		DebounceWindow: watchDebounce,
	})
	if err != nil {
		ux.Error(err.Error())
		os.Exit(1)
	}
	if err := watcher.Start(ctx); err != nil {
		ux.Error(err.Error())
		os.Exit(1)
	}
	defer watcher.Stop()

	ux.Info(fmt.Sprintf("Watching %s for CSV drops (Ctrl-C to stop)", watchDir))
	logger.Info("watch mode started",
		"dir", watchDir,
		"debounce", watchDebounce)

	<-ctx.Done()
	ux.Info("Watch stopped")
	logger.Info("watch mode stopped")
}
