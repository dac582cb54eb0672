package main

import (
	"fmt"

	"github.com/pivolan/ridership_clipper/config"
	"github.com/pivolan/ridership_clipper/pipeline"
	"github.com/pivolan/ridership_clipper/store"
)

// runBatch is the notebook flow: load, describe, clip per window, describe,
// plot, then write the clipped table wherever the config points
func runBatch(cfg *config.Config, opts *pipeline.Options) error {
	result, err := pipeline.RunFile(cfg.InputPath, opts)
	if err != nil {
		return err
	}
	fmt.Print(result.Summary())

	if cfg.ReportDir != "" {
		if _, err := result.WriteReport(cfg.ReportDir); err != nil {
			return fmt.Errorf("report: %w", err)
		}
	}
	if cfg.OutputPath != "" {
		if err := result.WriteOutput(cfg.OutputPath, cfg.OutputFormat); err != nil {
			return fmt.Errorf("output: %w", err)
		}
	}
	if cfg.DbDsn != "" {
		return saveToClickhouse(cfg, result)
	}
	return nil
}

func saveToClickhouse(cfg *config.Config, result *pipeline.Result) error {
	db, err := store.Open(cfg.DbDsn)
	if err != nil {
		return err
	}
	if err := store.SaveTable(db, cfg.DbTable, result.Clipped); err != nil {
		return err
	}
	summary, err := store.Summary(db, cfg.DbTable)
	if err != nil {
		return err
	}
	for _, s := range summary {
		logger.Info().
			Str("column", s.Name).
			Float64("min", s.Min).
			Float64("max", s.Max).
			Float64("avg", s.Avg).
			Msg("stored column")
	}
	return nil
}
