// Package exporter renders the card catalog for download.
package exporter

import (
	"encoding/csv"
	"fmt"
	"io"
	"strconv"
	"strings"

	apperrors "cardtracker/internal/errors"
	"cardtracker/pkg/contracts/domain"
)

// utf8BOM keeps accented card names intact when the CSV is opened in
// Excel, which assumes a legacy encoding without it.
const utf8BOM = "\xEF\xBB\xBF"

var csvHeader = []string{"Expansion", "Card", "Full ID", "Link", "Average Price", "Last Prices", "Identity Key"}

// WriteCSV streams rows as a BOM-prefixed CSV table. Prices use a dot
// decimal separator regardless of the source file's locale; a missing
// average is an empty cell.
func WriteCSV(w io.Writer, rows []domain.CardRow) error {
	if _, err := io.WriteString(w, utf8BOM); err != nil {
		return apperrors.NewStorageError("csv export", err)
	}

	writer := csv.NewWriter(w)
	if err := writer.Write(csvHeader); err != nil {
		return apperrors.NewStorageError("csv export", err)
	}

	for _, row := range rows {
		record := []string{
			row.Expansion,
			row.CardName,
			row.FullID,
			row.Link,
			formatAverage(row),
			formatPrices(row.LastPrices),
			row.IdentityKey,
		}
		if err := writer.Write(record); err != nil {
			return apperrors.NewStorageError("csv export", fmt.Errorf("row %s: %w", row.IdentityKey, err))
		}
	}

	writer.Flush()
	if err := writer.Error(); err != nil {
		return apperrors.NewStorageError("csv export", err)
	}
	return nil
}

func formatPrices(prices []float64) string {
	parts := make([]string, 0, len(prices))
	for _, p := range prices {
		parts = append(parts, strconv.FormatFloat(p, 'f', 2, 64))
	}
	return strings.Join(parts, ", ")
}

func formatAverage(row domain.CardRow) string {
	if !row.HasAveragePrice() {
		return ""
	}
	return strconv.FormatFloat(row.AveragePrice, 'f', 2, 64)
}
