package main

import (
	"context"
	"fmt"
	"os"
	"path/filepath"

	"github.com/spf13/cobra"

	"github.com/AleutianAI/AirsideFDD/pkg/fault"
	"github.com/AleutianAI/AirsideFDD/pkg/ingest"
	"github.com/AleutianAI/AirsideFDD/pkg/logging"
	"github.com/AleutianAI/AirsideFDD/pkg/profile"
	"github.com/AleutianAI/AirsideFDD/pkg/summary"
	"github.com/AleutianAI/AirsideFDD/pkg/ux"
)

func runEvaluate(cmd *cobra.Command, _ []string) {
	logger := newLogger()
	defer func() { _ = logger.Close() }()

	// 1. Load and validate the profile
	p, err := profile.Load(profilePath)
	if err != nil {
		ux.Error(err.Error())
		os.Exit(1)
	}

	ux.Title(fmt.Sprintf("Airside FDD: %s", datasetStem(&p.Dataset)))

	// 2. Run the full pipeline
	if err := evaluateProfile(context.Background(), p, logger); err != nil {
		ux.Error(err.Error())
		os.Exit(1)
	}
}

// evaluateProfile runs one complete evaluation: ingest the dataset, apply
// every configured rule, write the artifacts, and print the report. Shared
// by run and watch.
func evaluateProfile(ctx context.Context, p *profile.Profile, logger *logging.Logger) error {
	// 1. Build rules from their profile params
	rules, err := p.BuildRules()
	if err != nil {
		return err
	}

	// 2. Ingest
	spin := ux.NewSpinner("Loading dataset").WithStyle(ux.SpinnerFan)
	spin.Start()
	tbl, store, err := loadDataset(ctx, &p.Dataset, logger)
	if err != nil {
		spin.Stop()
		return err
	}
	if store != nil {
		defer func() { _ = store.Close() }()
	}
	logger.Info("dataset loaded",
		"source", p.Dataset.Source,
		"rows", tbl.Len(),
		"columns", len(tbl.Names()))
	if tbl.Len() == 0 {
		spin.Stop()
		return fmt.Errorf("dataset is empty")
	}

	// 3. Evaluate
	spin.UpdateMessage(fmt.Sprintf("Evaluating %d rules", len(rules)))
	engine := fault.NewEngine(logger.Slog(), rules...)
	res, err := engine.Run(ctx, tbl)
	spin.Stop()
	if err != nil {
		return err
	}

	// 4. Per-rule report lines
	faulted, clean, failed := 0, 0, 0
	for _, rr := range res.Results {
		switch {
		case rr.Err != nil:
			failed++
			ux.RuleStatus(rr.Rule, ux.IconError, rr.Err.Error())
		case rr.Flagged > 0:
			faulted++
			unit := "rows"
			if _, hourly := res.Hourly[rr.Rule]; hourly {
				unit = "hours"
			}
			ux.RuleStatus(rr.Rule, ux.IconFlag, fmt.Sprintf("%d %s flagged", rr.Flagged, unit))
		default:
			clean++
			ux.RuleStatus(rr.Rule, ux.IconSuccess, "clean")
		}
	}

	if failed == len(res.Results) {
		ux.Summary(faulted, clean, failed)
		return fmt.Errorf("all %d rules failed", failed)
	}

	// 5. Artifacts
	if err := writeArtifacts(ctx, p, res, store, logger); err != nil {
		return err
	}

	ux.Summary(faulted, clean, failed)
	return nil
}

// writeArtifacts saves the flagged table, any hourly tables, and the per-rule
// summaries next to the dataset (or under --out). For sqlite datasets the
// flag columns are also written back into the store.
func writeArtifacts(ctx context.Context, p *profile.Profile, res *fault.RunResult, store *ingest.SQLiteStore, logger *logging.Logger) error {
	outDir := resolveOutputDir(&p.Dataset)
	if err := os.MkdirAll(outDir, 0o755); err != nil {
		return fmt.Errorf("create output dir: %w", err)
	}
	stem := datasetStem(&p.Dataset)
	indexCol := p.Dataset.IndexColumn
	if indexCol == "" {
		indexCol = "timestamp"
	}

	flagsPath := filepath.Join(outDir, stem+"_flags.csv")
	if err := ingest.WriteCSV(flagsPath, res.Table, indexCol); err != nil {
		return fmt.Errorf("write %s: %w", flagsPath, err)
	}
	ux.Info("Wrote " + flagsPath)

	for rule, hourly := range res.Hourly {
		path := filepath.Join(outDir, fmt.Sprintf("%s_%s_hourly.csv", stem, rule))
		if err := ingest.WriteCSV(path, hourly, "hour"); err != nil {
			return fmt.Errorf("write %s: %w", path, err)
		}
		ux.Info("Wrote " + path)
	}

	if summaries := buildSummaries(p, res, logger); len(summaries) > 0 {
		path := filepath.Join(outDir, stem+"_summary.json")
		if err := writeJSON(path, summaries); err != nil {
			return fmt.Errorf("write %s: %w", path, err)
		}
		ux.Info("Wrote " + path)
	}

	if store != nil {
		if err := writeBackFlags(ctx, store, res, logger); err != nil {
			return err
		}
	}
	return nil
}

// buildSummaries computes one FaultSummary per successful rule. Hourly rules
// are summarized on their own hourly table, where the report's sensor and
// fan columns do not exist, so those get flag statistics only.
func buildSummaries(p *profile.Profile, res *fault.RunResult, logger *logging.Logger) map[string]*summary.FaultSummary {
	out := make(map[string]*summary.FaultSummary, len(res.Results))
	for _, rr := range res.Results {
		if rr.Err != nil {
			continue
		}
		tbl := res.Table
		cfg := summary.Config{
			FlagColumn:  rr.FlagColumn,
			FanSpeedCol: p.Report.FanSpeedCol,
			SensorCols:  p.Report.SensorCols,
		}
		if hourly, ok := res.Hourly[rr.Rule]; ok {
			tbl = hourly
			cfg = summary.Config{FlagColumn: rr.FlagColumn}
		}
		s, err := summary.Summarize(tbl, cfg)
		if err != nil {
			logger.Warn("summary skipped", "rule", rr.Rule, "error", err)
			continue
		}
		out[rr.Rule] = s
	}
	return out
}

// writeBackFlags stores each successful flag column in the sqlite archive so
// later queries can join faults against raw readings.
func writeBackFlags(ctx context.Context, store *ingest.SQLiteStore, res *fault.RunResult, logger *logging.Logger) error {
	for _, rr := range res.Results {
		if rr.Err != nil {
			continue
		}
		flags, ok := res.Table.Column(rr.FlagColumn)
		if !ok {
			// Hourly rules live on their own index and are not written back.
			continue
		}
		if err := store.WriteFlags(ctx, rr.FlagColumn, res.Table.Index(), flags); err != nil {
			return fmt.Errorf("write %s back to store: %w", rr.FlagColumn, err)
		}
		logger.Debug("flag column stored", "column", rr.FlagColumn)
	}
	return nil
}
