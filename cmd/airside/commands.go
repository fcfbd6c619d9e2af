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
	"time"

	"github.com/AleutianAI/AirsideFDD/pkg/ux"
	"github.com/spf13/cobra"
)

// --- Global Command Variables ---
var (
	profilePath      string
	outputDir        string
	watchDir         string
	watchDebounce    time.Duration
	logDir           string
	jsonLogs         bool
	verbose          bool
	personalityLevel string // UX personality level (full/standard/minimal/machine)

	rootCmd = &cobra.Command{
		Use:   "airside",
		Short: "A cli for automated fault detection on air handling unit data",
		Long: `Airside evaluates ASHRAE Guideline 36 style fault conditions against
				air handler sensor data pulled from CSV exports, SQLite archives,
				or an InfluxDB bucket.`,
		PersistentPreRun: func(cmd *cobra.Command, args []string) {
			// Initialize UX personality from flag or environment
			if personalityLevel != "" {
				ux.SetPersonalityLevel(ux.ParsePersonalityLevel(personalityLevel))
			} else {
				ux.InitPersonality()
			}
		},
	}

	// --- Evaluation ---
	runCmd = &cobra.Command{
		Use:   "run",
		Short: "Evaluate a profile's fault rules against its dataset",
		Run:   runEvaluate, // Defined in cmd_run.go
	}

	checkCmd = &cobra.Command{
		Use:   "check",
		Short: "Validate a profile and its dataset without evaluating",
		Run:   runCheck, // Defined in cmd_check.go
	}

	// --- Continuous Mode ---
	watchCmd = &cobra.Command{
		Use:   "watch",
		Short: "Watch a drop directory and evaluate CSV files as they arrive",
		Run:   runWatch, // Defined in cmd_watch.go
	}

	// --- Catalog ---
	rulesCmd = &cobra.Command{
		Use:   "rules",
		Short: "List the fault rules in the catalog",
		Run:   runListRules, // Defined in cmd_rules.go
	}
)

// init runs when the Go program starts
func init() {
	// Global UX personality flag
	rootCmd.PersistentFlags().StringVar(&personalityLevel, "personality", "",
		"Output style: full, standard (default), minimal, or machine (scripting)")
	rootCmd.PersistentFlags().StringVar(&logDir, "log-dir", "",
		"Directory for JSON log files (file logging disabled when empty)")
	rootCmd.PersistentFlags().BoolVar(&jsonLogs, "json-logs", false,
		"Emit console logs as JSON")
	rootCmd.PersistentFlags().BoolVar(&verbose, "verbose", false,
		"Log at debug level")

	rootCmd.AddCommand(runCmd)
	runCmd.Flags().StringVarP(&profilePath, "profile", "p", "",
		"Path to the run profile YAML (required)")
	runCmd.Flags().StringVarP(&outputDir, "out", "o", "",
		"Directory for result files (default: alongside the dataset)")
	_ = runCmd.MarkFlagRequired("profile")

	rootCmd.AddCommand(checkCmd)
	checkCmd.Flags().StringVarP(&profilePath, "profile", "p", "",
		"Path to the run profile YAML (required)")
	_ = checkCmd.MarkFlagRequired("profile")

	rootCmd.AddCommand(watchCmd)
	watchCmd.Flags().StringVarP(&profilePath, "profile", "p", "",
		"Profile applied to every dropped file (required)")
	watchCmd.Flags().StringVar(&watchDir, "dir", "",
		"Directory to watch for CSV drops (required)")
	watchCmd.Flags().StringVarP(&outputDir, "out", "o", "",
		"Directory for result files (default: alongside each drop)")
	watchCmd.Flags().DurationVar(&watchDebounce, "debounce", 500*time.Millisecond,
		"Quiet window before a batch of drops is evaluated")
	_ = watchCmd.MarkFlagRequired("profile")
	_ = watchCmd.MarkFlagRequired("dir")

	rootCmd.AddCommand(rulesCmd)
}
