package dataprocessing

import (
	"math"
	"strconv"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestParseNumberList(t *testing.T) {
	tests := []struct {
		name     string
		input    string
		expected []float64
	}{
		{
			name:     "bracketed dot decimals",
			input:    "[1.20, 1.35, 2.00]",
			expected: []float64{1.20, 1.35, 2.00},
		},
		{
			name:     "comma decimals",
			input:    "1,20 - 1,35",
			expected: []float64{1.20, 1.35},
		},
		{
			name:     "mixed separators in one cell",
			input:    "1.20; 1,35; 2",
			expected: []float64{1.20, 1.35, 2},
		},
		{
			name:     "signed values",
			input:    "-1.5 +2.5",
			expected: []float64{-1.5, 2.5},
		},
		{
			name:     "leading separator only",
			input:    ".5 and ,25",
			expected: []float64{0.5, 0.25},
		},
		{
			name:     "numbers embedded in text",
			input:    "circa 3,10 euro (min 2.95)",
			expected: []float64{3.10, 2.95},
		},
		{
			name:     "no numbers at all",
			input:    "n/a",
			expected: []float64{},
		},
		{
			name:     "empty string",
			input:    "",
			expected: []float64{},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := ParseNumberList(tt.input)
			assert.Equal(t, tt.expected, got)
		})
	}
}

func TestParseNumberList_OrderPreserved(t *testing.T) {
	got := ParseNumberList("5.00 1.00 3.00")
	assert.Equal(t, []float64{5, 1, 3}, got)
}

func TestParseNumberList_IdempotentOnOwnOutput(t *testing.T) {
	first := ParseNumberList("[1.20, 1.35, 2.00]")

	parts := make([]string, len(first))
	for i, v := range first {
		parts[i] = strconv.FormatFloat(v, 'f', -1, 64)
	}
	second := ParseNumberList(strings.Join(parts, ", "))

	assert.Equal(t, first, second)
}

func TestParseNumber(t *testing.T) {
	tests := []struct {
		name     string
		input    string
		expected float64
		isNaN    bool
	}{
		{name: "dot decimal", input: "1.25", expected: 1.25},
		{name: "comma decimal", input: "1,25", expected: 1.25},
		{name: "surrounding whitespace", input: "  2,5  ", expected: 2.5},
		{name: "integer", input: "7", expected: 7},
		{name: "negative", input: "-0,5", expected: -0.5},
		{name: "empty", input: "", isNaN: true},
		{name: "plain text", input: "N/D", isNaN: true},
		{name: "trailing garbage", input: "1.2 eur", isNaN: true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := ParseNumber(tt.input)
			if tt.isNaN {
				assert.True(t, math.IsNaN(got))
				return
			}
			assert.InDelta(t, tt.expected, got, 1e-9)
		})
	}
}

func TestParseNumberValues(t *testing.T) {
	tests := []struct {
		name     string
		input    []interface{}
		expected []float64
	}{
		{
			name:     "mixed scalar types",
			input:    []interface{}{1.5, float32(2), 3, int64(4), "5,5"},
			expected: []float64{1.5, 2, 3, 4, 5.5},
		},
		{
			name:     "nil and garbage skipped",
			input:    []interface{}{nil, "abc", 1.0},
			expected: []float64{1},
		},
		{
			name:     "empty input",
			input:    nil,
			expected: []float64{},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.expected, ParseNumberValues(tt.input))
		})
	}
}
