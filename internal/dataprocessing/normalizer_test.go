package dataprocessing

import (
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNormalize(t *testing.T) {
	raw := &RawTable{
		Headers: []string{ColumnCard, ColumnFullID, ColumnLink, ColumnPrices, ColumnAverage},
		Rows: [][]string{
			{"Pikachu", "025/165", "https://example.com/p", "[1.20, 1.35]", "1,27"},
			{"Mewtwo", "150/165", "", "n/a", "non disponibile"},
		},
	}

	rows := Normalize(raw, "151")
	require.Len(t, rows, 2)

	first := rows[0]
	assert.Equal(t, "Pikachu", first.CardName)
	assert.Equal(t, "025/165", first.FullID)
	assert.Equal(t, "https://example.com/p", first.Link)
	assert.Equal(t, []float64{1.20, 1.35}, first.LastPrices)
	assert.InDelta(t, 1.27, first.AveragePrice, 1e-9)
	assert.Equal(t, "151", first.Expansion)
	assert.Equal(t, "151|025/165", first.IdentityKey)

	second := rows[1]
	assert.Equal(t, []float64{}, second.LastPrices)
	assert.True(t, math.IsNaN(second.AveragePrice), "unparseable average must stay missing")
}

func TestNormalize_ColumnFallbacks(t *testing.T) {
	tests := []struct {
		name         string
		headers      []string
		row          []string
		expectedName string
		expectedID   string
	}{
		{
			name:         "alternate name column",
			headers:      []string{ColumnCardAlt, ColumnFullID},
			row:          []string{"Snorlax", "143/165"},
			expectedName: "Snorlax",
			expectedID:   "143/165",
		},
		{
			name:         "no name column",
			headers:      []string{ColumnFullID},
			row:          []string{"143/165"},
			expectedName: "Card 0",
			expectedID:   "143/165",
		},
		{
			name:         "no id column",
			headers:      []string{ColumnCard},
			row:          []string{"Snorlax"},
			expectedName: "Snorlax",
			expectedID:   "Paldea Evolved-0",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			raw := &RawTable{Headers: tt.headers, Rows: [][]string{tt.row}}
			rows := Normalize(raw, "Paldea Evolved")
			require.Len(t, rows, 1)
			assert.Equal(t, tt.expectedName, rows[0].CardName)
			assert.Equal(t, tt.expectedID, rows[0].FullID)
			assert.Equal(t, "Paldea Evolved|"+tt.expectedID, rows[0].IdentityKey)
		})
	}
}

func TestNormalize_MissingAverageColumn(t *testing.T) {
	raw := &RawTable{
		Headers: []string{ColumnCard, ColumnFullID},
		Rows:    [][]string{{"Ditto", "132/165"}},
	}

	rows := Normalize(raw, "151")
	require.Len(t, rows, 1)
	assert.True(t, math.IsNaN(rows[0].AveragePrice))
	assert.False(t, rows[0].HasAveragePrice())
}

func TestNormalize_RowOrderPreserved(t *testing.T) {
	raw := &RawTable{
		Headers: []string{ColumnCard, ColumnFullID},
		Rows: [][]string{
			{"Zebra", "3"},
			{"Alpha", "1"},
			{"Mid", "2"},
		},
	}

	rows := Normalize(raw, "x")
	require.Len(t, rows, 3)
	assert.Equal(t, "Zebra", rows[0].CardName)
	assert.Equal(t, "Alpha", rows[1].CardName)
	assert.Equal(t, "Mid", rows[2].CardName)
}

func TestNormalize_NilTable(t *testing.T) {
	assert.Empty(t, Normalize(nil, "x"))
}
