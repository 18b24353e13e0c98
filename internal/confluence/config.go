// Package confluence scores discretionary trade setups against a weighted
// checklist, grouped into capped sections with banded quality labels.
package confluence

// Item is one checklist criterion with its score contribution
type Item struct {
	ID    string `json:"id"`
	Label string `json:"label"`
	Value int    `json:"value"`
}

// Section groups related criteria and caps their combined score. The cap
// is configuration, not a constant; Scorer reads it per section.
type Section struct {
	ID       string `json:"id"`
	Title    string `json:"title"`
	MaxScore int    `json:"maxScore"`
	Items    []Item `json:"items"`
}

// StatusBand maps an inclusive score range [Min, Max] to a quality label
// and display color. Bands are checked in declaration order and the first
// match wins; adjacent bands deliberately share their boundary score.
type StatusBand struct {
	Min   int    `json:"min"`
	Max   int    `json:"max"`
	Label string `json:"label"`
	Color string `json:"color"`
}

// FallbackBand is returned when no band matches a score
var FallbackBand = StatusBand{Label: "Unknown", Color: "#9e9e9e"}

// DefaultSections is the process-lifetime checklist configuration,
// loaded once at startup and passed by reference into scorers.
var DefaultSections = []Section{
	{
		ID:       "trend",
		Title:    "Trend Alignment",
		MaxScore: 200,
		Items: []Item{
			{ID: "trend_htf", Label: "Higher timeframe trend agrees", Value: 60},
			{ID: "trend_ema", Label: "Price on the right side of the 200 EMA", Value: 50},
			{ID: "trend_structure", Label: "Clean market structure (HH/HL or LH/LL)", Value: 50},
			{ID: "trend_momentum", Label: "Momentum candle closed in trade direction", Value: 40},
		},
	},
	{
		ID:       "zone",
		Title:    "Key Levels",
		MaxScore: 200,
		Items: []Item{
			{ID: "zone_sr", Label: "Entry at major support/resistance", Value: 60},
			{ID: "zone_supply", Label: "Fresh supply/demand zone", Value: 50},
			{ID: "zone_fib", Label: "Fib retracement confluence (38.2-61.8)", Value: 50},
			{ID: "zone_round", Label: "Round-number level nearby", Value: 40},
		},
	},
	{
		ID:       "entry",
		Title:    "Entry Trigger",
		MaxScore: 200,
		Items: []Item{
			{ID: "entry_candle", Label: "Reversal candlestick confirmed", Value: 60},
			{ID: "entry_ltf", Label: "Lower timeframe break of structure", Value: 60},
			{ID: "entry_volume", Label: "Volume supports the move", Value: 40},
			{ID: "entry_session", Label: "Entry during London/New York overlap", Value: 40},
		},
	},
	{
		ID:       "risk",
		Title:    "Risk & News",
		MaxScore: 200,
		Items: []Item{
			{ID: "risk_rr", Label: "Risk-to-reward at least 1:2", Value: 80},
			{ID: "risk_stop", Label: "Stop behind structure, not a round number", Value: 60},
			{ID: "risk_news", Label: "No high-impact news within 30 minutes", Value: 60},
		},
	},
}

// DefaultStatusBands partitions the score axis. Boundaries overlap on
// purpose (a score of exactly 100 belongs to the first declared band).
var DefaultStatusBands = []StatusBand{
	{Min: 0, Max: 100, Label: "No Trade", Color: "#f44336"},
	{Min: 100, Max: 250, Label: "Weak Setup", Color: "#ff9800"},
	{Min: 250, Max: 400, Label: "Decent Setup", Color: "#ffc107"},
	{Min: 400, Max: 550, Label: "Good Setup", Color: "#8bc34a"},
	{Min: 550, Max: 800, Label: "A+ Setup", Color: "#4caf50"},
}
