package confluence

import (
	"errors"
	"fmt"
)

// ErrUnknownItem is returned when an item id is not in the configuration.
// This indicates a UI/config mismatch, not a user error.
var ErrUnknownItem = errors.New("confluence: unknown checklist item")

// Detail is one checked item in a score breakdown, ordered by section
// declaration then item declaration.
type Detail struct {
	SectionID    string `json:"sectionId"`
	SectionTitle string `json:"sectionTitle"`
	ItemID       string `json:"itemId"`
	Label        string `json:"label"`
	Value        int    `json:"value"`
}

// SectionScore is the running total for one section
type SectionScore struct {
	SectionID string `json:"sectionId"`
	Title     string `json:"title"`
	Score     int    `json:"score"`
	MaxScore  int    `json:"maxScore"`
}

// Scorer tracks one checklist scoring session: a sparse map of checked
// item ids evaluated against a static section/band configuration.
type Scorer struct {
	sections []Section
	bands    []StatusBand
	checked  map[string]bool
	// item id -> owning section index, built once at construction
	sectionOf map[string]int
}

// NewScorer creates a scorer over the given configuration. The slices are
// held by reference and must not be mutated while the scorer is in use.
func NewScorer(sections []Section, bands []StatusBand) *Scorer {
	s := &Scorer{
		sections:  sections,
		bands:     bands,
		checked:   make(map[string]bool),
		sectionOf: make(map[string]int),
	}
	for i, sec := range sections {
		for _, item := range sec.Items {
			s.sectionOf[item.ID] = i
		}
	}
	return s
}

// NewDefaultScorer creates a scorer over the default configuration
func NewDefaultScorer() *Scorer {
	return NewScorer(DefaultSections, DefaultStatusBands)
}

// Restore replaces the checked state, e.g. when reopening a planned
// trade's saved checklist. Unknown ids are rejected and the state is left
// unchanged. Restored totals are not re-validated against section caps;
// persisted state is trusted as written.
func (s *Scorer) Restore(state map[string]bool) error {
	for id := range state {
		if _, ok := s.sectionOf[id]; !ok {
			return fmt.Errorf("%w: %q", ErrUnknownItem, id)
		}
	}
	s.checked = make(map[string]bool, len(state))
	for id, v := range state {
		if v {
			s.checked[id] = true
		}
	}
	return nil
}

// Toggle flips the checked state of itemID. Checking an item that would
// push its section past the section cap is refused as a silent no-op:
// applied is false and the state is unchanged. Unknown ids are an error.
func (s *Scorer) Toggle(itemID string) (applied bool, err error) {
	idx, ok := s.sectionOf[itemID]
	if !ok {
		return false, fmt.Errorf("%w: %q", ErrUnknownItem, itemID)
	}

	if s.checked[itemID] {
		delete(s.checked, itemID)
		return true, nil
	}

	sec := s.sections[idx]
	total := s.sectionTotal(sec)
	var value int
	for _, item := range sec.Items {
		if item.ID == itemID {
			value = item.Value
			break
		}
	}
	if total+value > sec.MaxScore {
		return false, nil
	}

	s.checked[itemID] = true
	return true, nil
}

// Scores returns the per-section totals in section declaration order and
// the grand total across all sections.
func (s *Scorer) Scores() ([]SectionScore, int) {
	out := make([]SectionScore, 0, len(s.sections))
	total := 0
	for _, sec := range s.sections {
		score := s.sectionTotal(sec)
		total += score
		out = append(out, SectionScore{
			SectionID: sec.ID,
			Title:     sec.Title,
			Score:     score,
			MaxScore:  sec.MaxScore,
		})
	}
	return out, total
}

// Total returns the grand total score
func (s *Scorer) Total() int {
	_, total := s.Scores()
	return total
}

// Status scans the bands in declaration order and returns the first whose
// inclusive [Min, Max] range contains totalScore. Declared order is the
// tie-break for overlapping boundaries. No match returns FallbackBand.
func (s *Scorer) Status(totalScore int) StatusBand {
	for _, b := range s.bands {
		if totalScore >= b.Min && totalScore <= b.Max {
			return b
		}
	}
	return FallbackBand
}

// Details lists every checked item grouped by section in declaration
// order, items in item declaration order within a section. The ordering
// drives display grouping and is independent of toggle order.
func (s *Scorer) Details() []Detail {
	var out []Detail
	for _, sec := range s.sections {
		for _, item := range sec.Items {
			if s.checked[item.ID] {
				out = append(out, Detail{
					SectionID:    sec.ID,
					SectionTitle: sec.Title,
					ItemID:       item.ID,
					Label:        item.Label,
					Value:        item.Value,
				})
			}
		}
	}
	return out
}

// State returns a copy of the checked-item map for persistence
func (s *Scorer) State() map[string]bool {
	out := make(map[string]bool, len(s.checked))
	for id := range s.checked {
		out[id] = true
	}
	return out
}

func (s *Scorer) sectionTotal(sec Section) int {
	total := 0
	for _, item := range sec.Items {
		if s.checked[item.ID] {
			total += item.Value
		}
	}
	return total
}
