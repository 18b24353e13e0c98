package journal

import (
	"sort"
	"strings"
	"time"

	"github.com/trade-journal/internal/models"
)

// Sort selects the date ordering of query results
type Sort string

const (
	SortDateDesc Sort = "dateDesc"
	SortDateAsc  Sort = "dateAsc"
)

// Filter composes entry constraints by logical AND. Zero-valued fields
// mean "no constraint", never "match empty".
type Filter struct {
	Pair    string
	Type    models.TradeType
	Outcome string
	Status  models.TradeStatus
	// Tag matches case-insensitively as a substring of any entry tag
	Tag string
	// Session matches membership in the entry's tradingSession set
	Session string
	// From/To bound the entry date inclusively
	From *time.Time
	To   *time.Time
}

// Matches reports whether the entry satisfies every set constraint
func (f Filter) Matches(e *models.JournalEntry) bool {
	if f.Pair != "" && e.Pair != f.Pair {
		return false
	}
	if f.Type != "" && e.Type != f.Type {
		return false
	}
	if f.Outcome != "" && e.Outcome != f.Outcome {
		return false
	}
	if f.Status != "" && e.TradeStatus != f.Status {
		return false
	}
	if f.Tag != "" && !matchesTag(e.Tags, f.Tag) {
		return false
	}
	if f.Session != "" && !e.InSession(f.Session) {
		return false
	}
	if f.From != nil && e.CreatedAt.Before(*f.From) {
		return false
	}
	if f.To != nil && e.CreatedAt.After(*f.To) {
		return false
	}
	return true
}

// Query returns a new slice of the entries matching filter, ordered by
// date. The underlying collection is never mutated. Sorting is stable, so
// entries with equal dates keep their relative collection order.
func (s *Store) Query(filter Filter, order Sort) []models.JournalEntry {
	out := make([]models.JournalEntry, 0, len(s.entries))
	for i := range s.entries {
		if filter.Matches(&s.entries[i]) {
			out = append(out, s.entries[i])
		}
	}

	sort.SliceStable(out, func(i, j int) bool {
		if order == SortDateAsc {
			return out[i].CreatedAt.Before(out[j].CreatedAt)
		}
		return out[i].CreatedAt.After(out[j].CreatedAt)
	})
	return out
}

func matchesTag(tags []string, search string) bool {
	search = strings.ToLower(search)
	for _, tag := range tags {
		if strings.Contains(strings.ToLower(tag), search) {
			return true
		}
	}
	return false
}
