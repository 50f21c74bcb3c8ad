package domain

import (
	"encoding/json"
	"math"
)

// CardRow represents one physical card within one expansion. Rows are
// rebuilt from the source spreadsheets on every load and are immutable
// once the catalog table has been aggregated.
type CardRow struct {
	CardName     string    `json:"card_name"`
	FullID       string    `json:"full_id"`
	Link         string    `json:"link,omitempty"`
	LastPrices   []float64 `json:"last_prices"`
	AveragePrice float64   `json:"average_price"`
	Expansion    string    `json:"expansion_label"`
	IdentityKey  string    `json:"identity_key"`
}

// IdentityKeySeparator joins the expansion label and the source identifier
// into the composite key that favorites reference.
const IdentityKeySeparator = "|"

// MakeIdentityKey derives the composite identity of a card row. The full
// identifier is only unique within its originating dataset, so the
// expansion label is part of the key.
func MakeIdentityKey(expansion, fullID string) string {
	return expansion + IdentityKeySeparator + fullID
}

// HasAveragePrice reports whether the row carries a usable average price.
// A missing price is stored as NaN, never as zero.
func (c CardRow) HasAveragePrice() bool {
	return !math.IsNaN(c.AveragePrice)
}

// MarshalJSON renders a missing average price as null. encoding/json
// rejects NaN outright, and the API must not invent a 0.00 price.
func (c CardRow) MarshalJSON() ([]byte, error) {
	type alias CardRow
	out := struct {
		alias
		AveragePrice *float64 `json:"average_price"`
	}{alias: alias(c)}
	if c.HasAveragePrice() {
		out.AveragePrice = &c.AveragePrice
	}
	if out.LastPrices == nil {
		out.alias.LastPrices = []float64{}
	}
	return json.Marshal(out)
}

// UnmarshalJSON restores the NaN sentinel from a null average price.
func (c *CardRow) UnmarshalJSON(data []byte) error {
	type alias CardRow
	in := struct {
		*alias
		AveragePrice *float64 `json:"average_price"`
	}{alias: (*alias)(c)}
	if err := json.Unmarshal(data, &in); err != nil {
		return err
	}
	if in.AveragePrice != nil {
		c.AveragePrice = *in.AveragePrice
	} else {
		c.AveragePrice = math.NaN()
	}
	return nil
}
