package dataprocessing

import (
	"fmt"
	"log/slog"
	"os"
	"path/filepath"

	"cardtracker/pkg/contracts/domain"
)

// AggregateResult is the merged catalog table plus everything that went
// wrong while building it. Problems are reported, never thrown: the
// caller decides whether an empty table is terminal.
type AggregateResult struct {
	Rows         []domain.CardRow
	MissingFiles []string
	Warnings     []string
}

// Aggregate loads and normalizes every mapped spreadsheet under dir and
// concatenates the results in the given file order, preserving row order
// within each file.
//
// Rows are deduplicated by identity key with the FIRST occurrence in
// concatenation order winning. Files absent on disk land in
// MissingFiles; a file that fails to parse lands in Warnings and is
// skipped. Neither aborts aggregation of the remaining files.
func Aggregate(dir string, labels map[string]string, order []string) *AggregateResult {
	result := &AggregateResult{
		Rows:         []domain.CardRow{},
		MissingFiles: []string{},
		Warnings:     []string{},
	}

	seen := make(map[string]struct{})
	for _, filename := range order {
		label, ok := labels[filename]
		if !ok {
			continue
		}

		path := filepath.Join(dir, filename)
		if _, err := os.Stat(path); err != nil {
			result.MissingFiles = append(result.MissingFiles, filename)
			continue
		}

		raw, err := ParseWorkbook(path)
		if err != nil {
			warning := fmt.Sprintf("skipping %s: %v", filename, err)
			result.Warnings = append(result.Warnings, warning)
			slog.Warn("failed to load spreadsheet",
				slog.String("file", filename),
				slog.String("error", err.Error()))
			continue
		}

		for _, row := range Normalize(raw, label) {
			if _, dup := seen[row.IdentityKey]; dup {
				continue
			}
			seen[row.IdentityKey] = struct{}{}
			result.Rows = append(result.Rows, row)
		}
	}

	return result
}
