// Command catalog loads the spreadsheet dataset once and reports or
// exports the merged card table from the command line.
package main

import (
	"context"
	"flag"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"

	"cardtracker/internal/config"
	"cardtracker/internal/exporter"
	"cardtracker/internal/infrastructure"
	"cardtracker/internal/services"
	"cardtracker/pkg/contracts/domain"
)

func main() {
	dir := flag.String("dir", "", "directory containing xlsx price exports (defaults to the configured data dir)")
	out := flag.String("out", "", "write the merged table as CSV to this path instead of printing a summary")
	expansion := flag.String("expansion", "", "restrict output to one expansion label")
	query := flag.String("q", "", "case-insensitive text filter on card name and full ID")
	flag.Parse()

	cfg, err := config.Load()
	if err != nil {
		slog.Warn("failed to load config, using defaults", "error", err)
		cfg = config.Default()
	}
	if *dir != "" {
		cfg.Catalog.DataDir = *dir
	}

	logger, err := infrastructure.InitializeLogger(cfg.Logging)
	if err != nil {
		slog.Warn("failed to initialize logger, using default", "error", err)
		logger = slog.Default()
	}

	catalog := services.NewCatalogService(cfg.Catalog.DataDir, cfg.Catalog.LabelOverrides, nil, logger)
	snapshot, err := catalog.Load(context.Background())
	if err != nil {
		logger.Error("no catalog data",
			slog.String("dir", cfg.Catalog.DataDir),
			slog.String("error", err.Error()))
		os.Exit(1)
	}

	rows := services.Filter(snapshot.Rows, services.FilterOptions{
		Expansion: *expansion,
		Query:     *query,
	})

	if *out == "" {
		printSummary(snapshot, len(rows))
		return
	}

	if err := writeCSVFile(*out, rows); err != nil {
		logger.Error("csv export failed",
			slog.String("path", *out),
			slog.String("error", err.Error()))
		os.Exit(1)
	}
	logger.Info("catalog exported",
		slog.String("path", *out),
		slog.Int("rows", len(rows)))
}

func printSummary(snapshot *services.Snapshot, matched int) {
	fmt.Printf("Files:      %d\n", len(snapshot.Files))
	fmt.Printf("Expansions: %d\n", len(snapshot.Expansions))
	fmt.Printf("Cards:      %d (%d matching filters)\n", len(snapshot.Rows), matched)
	for _, label := range snapshot.Expansions {
		count := 0
		for _, row := range snapshot.Rows {
			if row.Expansion == label {
				count++
			}
		}
		fmt.Printf("  %-30s %d cards\n", label, count)
	}
	for _, missing := range snapshot.MissingFiles {
		fmt.Printf("missing: %s\n", missing)
	}
	for _, warning := range snapshot.Warnings {
		fmt.Printf("warning: %s\n", warning)
	}
}

func writeCSVFile(path string, rows []domain.CardRow) error {
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return err
	}
	f, err := os.Create(path)
	if err != nil {
		return err
	}
	if err := exporter.WriteCSV(f, rows); err != nil {
		f.Close()
		return err
	}
	return f.Close()
}
