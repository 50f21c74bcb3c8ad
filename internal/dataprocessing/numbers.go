package dataprocessing

import (
	"fmt"
	"math"
	"regexp"
	"strconv"
	"strings"
)

// numberPattern matches a signed decimal number using either a dot or a
// comma as the decimal separator. Source exports mix locale formats like
// "[1.20, 1.35]", "1,20 - 1,35" and "1.20; 1.35" in the same column.
var numberPattern = regexp.MustCompile(`[-+]?\d*[.,]?\d+`)

// ParseNumberList extracts every number from free-form text in
// left-to-right order. Absence of data is not a failure: non-numeric
// garbage yields an empty slice, never an error. Malformed tokens are
// dropped without aborting the rest of the parse.
func ParseNumberList(raw string) []float64 {
	out := []float64{}
	for _, token := range numberPattern.FindAllString(raw, -1) {
		v, err := strconv.ParseFloat(normalizeDecimal(token), 64)
		if err != nil {
			continue
		}
		out = append(out, v)
	}
	return out
}

// ParseNumberValues converts an already-structured sequence of
// scalar-like values to floats. Nil elements are skipped and elements
// that fail conversion are dropped.
func ParseNumberValues(values []interface{}) []float64 {
	out := []float64{}
	for _, value := range values {
		if value == nil {
			continue
		}
		v, err := toFloat(value)
		if err != nil {
			continue
		}
		out = append(out, v)
	}
	return out
}

// ParseNumber converts a single locale-ambiguous value to a float.
// Returns NaN, not an error, when the value cannot be converted; a
// missing price is data absence, not a failure.
func ParseNumber(raw string) float64 {
	v, err := strconv.ParseFloat(normalizeDecimal(strings.TrimSpace(raw)), 64)
	if err != nil {
		return math.NaN()
	}
	return v
}

// normalizeDecimal turns a decimal comma into a dot and strips grouping
// whitespace so strconv accepts the token.
func normalizeDecimal(token string) string {
	return strings.ReplaceAll(strings.TrimSpace(token), ",", ".")
}

func toFloat(value interface{}) (float64, error) {
	switch v := value.(type) {
	case float64:
		return v, nil
	case float32:
		return float64(v), nil
	case int:
		return float64(v), nil
	case int64:
		return float64(v), nil
	case string:
		return strconv.ParseFloat(normalizeDecimal(v), 64)
	default:
		return strconv.ParseFloat(normalizeDecimal(fmt.Sprint(v)), 64)
	}
}
