package dataprocessing

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestAggregate(t *testing.T) {
	dir := t.TempDir()
	writeWorkbook(t, dir, "prezzi_pokemon_151.xlsx", [][]interface{}{
		{ColumnCard, ColumnFullID, ColumnPrices, ColumnAverage},
		{"Pikachu", "025/165", "[1.20, 1.35]", "1.27"},
		{"Mew", "151/165", "40,00", "40,00"},
	})
	writeWorkbook(t, dir, "prezzi_pokemon_paldea.xlsx", [][]interface{}{
		{ColumnCard, ColumnFullID, ColumnPrices, ColumnAverage},
		{"Skeledirge", "090/193", "5.00", "5.00"},
	})

	labels := map[string]string{
		"prezzi_pokemon_151.xlsx":    "151",
		"prezzi_pokemon_paldea.xlsx": "Paldea",
	}
	order := []string{"prezzi_pokemon_151.xlsx", "prezzi_pokemon_paldea.xlsx"}

	result := Aggregate(dir, labels, order)
	require.Len(t, result.Rows, 3)
	assert.Empty(t, result.MissingFiles)
	assert.Empty(t, result.Warnings)

	// Concatenation follows the given file order.
	assert.Equal(t, "151|025/165", result.Rows[0].IdentityKey)
	assert.Equal(t, "151|151/165", result.Rows[1].IdentityKey)
	assert.Equal(t, "Paldea|090/193", result.Rows[2].IdentityKey)
}

func TestAggregate_FirstOccurrenceWins(t *testing.T) {
	dir := t.TempDir()
	writeWorkbook(t, dir, "a.xlsx", [][]interface{}{
		{ColumnCard, ColumnFullID, ColumnAverage},
		{"Pikachu (first)", "025/165", "1.00"},
	})
	writeWorkbook(t, dir, "b.xlsx", [][]interface{}{
		{ColumnCard, ColumnFullID, ColumnAverage},
		{"Pikachu (second)", "025/165", "9.99"},
	})

	labels := map[string]string{"a.xlsx": "151", "b.xlsx": "151"}
	result := Aggregate(dir, labels, []string{"a.xlsx", "b.xlsx"})

	require.Len(t, result.Rows, 1)
	assert.Equal(t, "Pikachu (first)", result.Rows[0].CardName)
	assert.InDelta(t, 1.00, result.Rows[0].AveragePrice, 1e-9)
}

func TestAggregate_SameIDAcrossExpansionsKept(t *testing.T) {
	dir := t.TempDir()
	writeWorkbook(t, dir, "a.xlsx", [][]interface{}{
		{ColumnCard, ColumnFullID},
		{"Pikachu", "025/165"},
	})
	writeWorkbook(t, dir, "b.xlsx", [][]interface{}{
		{ColumnCard, ColumnFullID},
		{"Pikachu", "025/165"},
	})

	labels := map[string]string{"a.xlsx": "151", "b.xlsx": "Paldea"}
	result := Aggregate(dir, labels, []string{"a.xlsx", "b.xlsx"})

	// The expansion label is part of the identity, so these are
	// distinct cards.
	require.Len(t, result.Rows, 2)
}

func TestAggregate_ProblemsDoNotAbort(t *testing.T) {
	dir := t.TempDir()
	writeWorkbook(t, dir, "good.xlsx", [][]interface{}{
		{ColumnCard, ColumnFullID},
		{"Mew", "151/165"},
	})
	require.NoError(t, os.WriteFile(filepath.Join(dir, "broken.xlsx"), []byte("not xlsx"), 0o644))

	labels := map[string]string{
		"missing.xlsx": "Missing",
		"broken.xlsx":  "Broken",
		"good.xlsx":    "151",
	}
	order := []string{"missing.xlsx", "broken.xlsx", "good.xlsx"}

	result := Aggregate(dir, labels, order)
	assert.Equal(t, []string{"missing.xlsx"}, result.MissingFiles)
	require.Len(t, result.Warnings, 1)
	assert.Contains(t, result.Warnings[0], "broken.xlsx")
	require.Len(t, result.Rows, 1)
	assert.Equal(t, "151|151/165", result.Rows[0].IdentityKey)
}

func TestAggregate_UnmappedFileSkipped(t *testing.T) {
	dir := t.TempDir()
	writeWorkbook(t, dir, "a.xlsx", [][]interface{}{
		{ColumnCard, ColumnFullID},
		{"Mew", "151/165"},
	})

	result := Aggregate(dir, map[string]string{}, []string{"a.xlsx"})
	assert.Empty(t, result.Rows)
	assert.Empty(t, result.MissingFiles)
}
