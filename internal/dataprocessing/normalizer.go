package dataprocessing

import (
	"fmt"
	"math"

	"cardtracker/pkg/contracts/domain"
)

// Canonical source column names as emitted by the price exports. Column
// matching is tolerant (case-insensitive, trimmed); absent columns are
// synthesized per field.
const (
	ColumnCard    = "Carta"
	ColumnCardAlt = "Name"
	ColumnFullID  = "ID completo"
	ColumnLink    = "Link"
	ColumnPrices  = "Primi 5 Prezzi (IT, NM)"
	ColumnAverage = "Media Prezzi (IT, NM)"
)

// Normalize maps one spreadsheet's rows into the canonical card schema.
//
// Missing columns degrade to deterministic defaults: the card name falls
// back to the alternate name column, then to a positional placeholder;
// the full identifier falls back to "{label}-{index}". Row order is
// preserved and a row-level parse failure only affects that field.
func Normalize(raw *RawTable, expansionLabel string) []domain.CardRow {
	if raw == nil {
		return []domain.CardRow{}
	}

	nameCol := raw.ColumnIndex(ColumnCard)
	if nameCol == -1 {
		nameCol = raw.ColumnIndex(ColumnCardAlt)
	}
	idCol := raw.ColumnIndex(ColumnFullID)
	linkCol := raw.ColumnIndex(ColumnLink)
	pricesCol := raw.ColumnIndex(ColumnPrices)
	averageCol := raw.ColumnIndex(ColumnAverage)

	rows := make([]domain.CardRow, 0, len(raw.Rows))
	for i := range raw.Rows {
		name := raw.Cell(i, nameCol)
		if nameCol == -1 {
			name = fmt.Sprintf("Card %d", i)
		}

		fullID := raw.Cell(i, idCol)
		if idCol == -1 {
			fullID = fmt.Sprintf("%s-%d", expansionLabel, i)
		}

		average := math.NaN()
		if averageCol != -1 {
			average = ParseNumber(raw.Cell(i, averageCol))
		}

		rows = append(rows, domain.CardRow{
			CardName:     name,
			FullID:       fullID,
			Link:         raw.Cell(i, linkCol),
			LastPrices:   ParseNumberList(raw.Cell(i, pricesCol)),
			AveragePrice: average,
			Expansion:    expansionLabel,
			IdentityKey:  domain.MakeIdentityKey(expansionLabel, fullID),
		})
	}

	return rows
}
