package models

import (
	"bytes"
	"encoding/json"
	"fmt"
	"strconv"
	"time"
)

// TradeStatus represents the lifecycle state of a journal entry
type TradeStatus string

const (
	TradeStatusTaken     TradeStatus = "Taken"
	TradeStatusPlanned   TradeStatus = "Planned"
	TradeStatusDiscarded TradeStatus = "Discarded"
)

// Valid reports whether the status is one of the known values
func (s TradeStatus) Valid() bool {
	switch s {
	case TradeStatusTaken, TradeStatusPlanned, TradeStatusDiscarded:
		return true
	}
	return false
}

// TradeType represents the trade direction
type TradeType string

const (
	TradeTypeBuy  TradeType = "Buy"
	TradeTypeSell TradeType = "Sell"
)

// Valid reports whether the type is one of the known values
func (t TradeType) Valid() bool {
	return t == TradeTypeBuy || t == TradeTypeSell
}

// PnLStatus represents the derived trade outcome. The empty value means
// the outcome could not be determined (missing or non-numeric prices).
type PnLStatus string

const (
	PnLProfit  PnLStatus = "Profit"
	PnLLoss    PnLStatus = "Loss"
	PnLNeutral PnLStatus = "Neutral"
)

// CommonPairs is the instrument list offered by the entry form. Free text
// is still accepted on the wire; this only constrains the UI.
var CommonPairs = []string{
	"EUR/USD", "GBP/USD", "USD/JPY", "USD/CHF", "AUD/USD", "USD/CAD", "NZD/USD",
	"EUR/GBP", "EUR/JPY", "GBP/JPY", "AUD/JPY",
}

// Moods is the suggested outcome list. Not enforced.
var Moods = []string{
	"Happy", "Stressed", "Neutral", "Textbook", "Revenge Trade", "FOMO", "Patient",
}

// Score holds a confluence score that is either a number or the literal
// "NA" for entries that never went through the checklist. Legacy records
// without the field unmarshal to the zero value, which serializes as "NA".
type Score struct {
	Valid bool
	Value int
}

// NewScore returns a valid score
func NewScore(v int) Score {
	return Score{Valid: true, Value: v}
}

// MarshalJSON implements json.Marshaler
func (s Score) MarshalJSON() ([]byte, error) {
	if !s.Valid {
		return []byte(`"NA"`), nil
	}
	return []byte(strconv.Itoa(s.Value)), nil
}

// UnmarshalJSON implements json.Unmarshaler. Accepts a number, the string
// "NA", or null.
func (s *Score) UnmarshalJSON(data []byte) error {
	data = bytes.TrimSpace(data)
	if len(data) == 0 || bytes.Equal(data, []byte("null")) || bytes.Equal(data, []byte(`"NA"`)) {
		*s = Score{}
		return nil
	}
	var n float64
	if err := json.Unmarshal(data, &n); err != nil {
		// Tolerate numeric strings written by older clients
		var raw string
		if serr := json.Unmarshal(data, &raw); serr == nil {
			if v, perr := strconv.Atoi(raw); perr == nil {
				*s = Score{Valid: true, Value: v}
				return nil
			}
			*s = Score{}
			return nil
		}
		return fmt.Errorf("invalid confluence score: %s", data)
	}
	*s = Score{Valid: true, Value: int(n)}
	return nil
}

// String returns the display form of the score
func (s Score) String() string {
	if !s.Valid {
		return "NA"
	}
	return strconv.Itoa(s.Value)
}

// ConfluenceDetail is one checked checklist item as persisted on an entry,
// grouped by section in declaration order.
type ConfluenceDetail struct {
	SectionID    string `json:"sectionId"`
	SectionTitle string `json:"sectionTitle"`
	ItemID       string `json:"itemId"`
	Label        string `json:"label"`
	Value        int    `json:"value"`
}

// JournalEntry represents one logged or planned trade. Entries are stored
// as a JSON array under a single key in the durable KV store, so there are
// no gorm tags here.
type JournalEntry struct {
	ID          string      `json:"id"`
	TradeStatus TradeStatus `json:"tradeStatus"`
	Pair        string      `json:"pair"`
	Type        TradeType   `json:"type"`
	EntryPrice  *float64    `json:"entryPrice,omitempty"`
	ExitPrice   *float64    `json:"exitPrice,omitempty"`
	CreatedAt   time.Time   `json:"createdAt"`
	Outcome     string      `json:"outcome,omitempty"`
	Tags        []string    `json:"tags,omitempty"`
	Notes       string      `json:"notes,omitempty"`

	// Derived at save time when TradeStatus is Taken. Never recomputed on
	// read, only on write.
	PnLStatus      PnLStatus `json:"pnlStatus,omitempty"`
	TradingSession []string  `json:"tradingSession,omitempty"`

	// Present only when the entry originated from (or was attached to) a
	// checklist scoring session.
	ConfluenceScore   Score              `json:"confluenceScore"`
	ConfluenceStatus  string             `json:"confluenceStatus,omitempty"`
	ConfluenceColor   string             `json:"confluenceColor,omitempty"`
	ConfluenceDetails []ConfluenceDetail `json:"confluenceDetails,omitempty"`
	ChecklistState    map[string]bool    `json:"checklistState,omitempty"`
}

// InSession reports whether the entry was active during the named session
func (e *JournalEntry) InSession(session string) bool {
	for _, s := range e.TradingSession {
		if s == session {
			return true
		}
	}
	return false
}
