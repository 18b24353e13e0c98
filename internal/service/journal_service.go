package service

import (
	"context"
	"errors"
	"fmt"
	"log"
	"strings"
	"sync"
	"time"

	"github.com/trade-journal/internal/confluence"
	"github.com/trade-journal/internal/journal"
	"github.com/trade-journal/internal/models"
	"github.com/trade-journal/internal/pnl"
	"github.com/trade-journal/internal/session"
	"github.com/trade-journal/internal/store"
)

var (
	ErrEntryNotFound = errors.New("journal entry not found")
	ErrInvalidEntry  = errors.New("invalid journal entry")
	ErrNotPlanned    = errors.New("entry is not a planned trade")
)

// EventPublisher receives journal change notifications for live clients
type EventPublisher interface {
	PublishJournalEvent(userID uint, event string, entry *models.JournalEntry)
}

// JournalService orchestrates entry validation, derived-field computation
// and persistence. It owns one journal.Store per user and serializes all
// mutations, satisfying the store's single-writer assumption.
type JournalService struct {
	kv        store.KV
	keyPrefix string
	sections  []confluence.Section
	bands     []confluence.StatusBand

	mu        sync.Mutex
	stores    map[uint]*journal.Store
	publisher EventPublisher
}

// NewJournalService creates a JournalService over the given KV backend
func NewJournalService(kv store.KV, keyPrefix string) *JournalService {
	return &JournalService{
		kv:        kv,
		keyPrefix: keyPrefix,
		sections:  confluence.DefaultSections,
		bands:     confluence.DefaultStatusBands,
		stores:    make(map[uint]*journal.Store),
	}
}

// SetPublisher attaches a live-event publisher. Optional.
func (s *JournalService) SetPublisher(p EventPublisher) {
	s.publisher = p
}

// EntryRequest carries the raw form input for a create or update
type EntryRequest struct {
	Pair        string             `json:"pair" binding:"required"`
	Type        models.TradeType   `json:"type" binding:"required"`
	TradeStatus models.TradeStatus `json:"tradeStatus"`
	Date        *time.Time         `json:"date"`
	Outcome     string             `json:"outcome"`
	Tags        []string           `json:"tags"`
	Notes       string             `json:"notes"`
	EntryPrice  *float64           `json:"entryPrice"`
	ExitPrice   *float64           `json:"exitPrice"`
}

// PlanRequest creates a Planned entry from a checklist scoring session
type PlanRequest struct {
	Pair    string           `json:"pair" binding:"required"`
	Type    models.TradeType `json:"type" binding:"required"`
	Notes   string           `json:"notes"`
	Tags    []string         `json:"tags"`
	Checked map[string]bool  `json:"checked" binding:"required"`
}

// TakeRequest transitions a Planned entry to Taken with execution prices
type TakeRequest struct {
	EntryPrice *float64   `json:"entryPrice" binding:"required"`
	ExitPrice  *float64   `json:"exitPrice" binding:"required"`
	Date       *time.Time `json:"date"`
}

// Create validates the request, derives pnl/session fields when the trade
// is Taken, and persists a new entry at the front of the user's journal.
func (s *JournalService) Create(ctx context.Context, userID uint, req *EntryRequest) (models.JournalEntry, error) {
	entry, err := s.buildEntry(req, models.JournalEntry{})
	if err != nil {
		return models.JournalEntry{}, err
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	st, err := s.storeFor(ctx, userID)
	if err != nil {
		return models.JournalEntry{}, err
	}
	created, err := st.Create(ctx, entry)
	if err != nil {
		return created, err
	}
	s.publish(userID, "created", &created)
	return created, nil
}

// Update replaces an existing entry, recomputing derived fields from the
// submitted inputs. Confluence fields on the stored entry are preserved.
func (s *JournalService) Update(ctx context.Context, userID uint, id string, req *EntryRequest) (models.JournalEntry, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	st, err := s.storeFor(ctx, userID)
	if err != nil {
		return models.JournalEntry{}, err
	}

	existing, ok := st.Get(id)
	if !ok {
		return models.JournalEntry{}, ErrEntryNotFound
	}

	entry, err := s.buildEntry(req, existing)
	if err != nil {
		return models.JournalEntry{}, err
	}
	entry.ID = existing.ID

	if err := st.Update(ctx, entry); err != nil {
		return entry, err
	}
	s.publish(userID, "updated", &entry)
	return entry, nil
}

// Delete removes an entry; deleting an unknown id is a no-op
func (s *JournalService) Delete(ctx context.Context, userID uint, id string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	st, err := s.storeFor(ctx, userID)
	if err != nil {
		return err
	}

	entry, ok := st.Get(id)
	if !ok {
		return nil
	}
	if err := st.Delete(ctx, id); err != nil {
		return err
	}
	s.publish(userID, "deleted", &entry)
	return nil
}

// Get returns one entry by id
func (s *JournalService) Get(ctx context.Context, userID uint, id string) (models.JournalEntry, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	st, err := s.storeFor(ctx, userID)
	if err != nil {
		return models.JournalEntry{}, err
	}
	entry, ok := st.Get(id)
	if !ok {
		return models.JournalEntry{}, ErrEntryNotFound
	}
	return entry, nil
}

// List returns the user's entries matching filter in the given order
func (s *JournalService) List(ctx context.Context, userID uint, filter journal.Filter, order journal.Sort) ([]models.JournalEntry, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	st, err := s.storeFor(ctx, userID)
	if err != nil {
		return nil, err
	}
	return st.Query(filter, order), nil
}

// CreatePlan scores the submitted checklist state and persists a Planned
// entry carrying the score, band, details and raw state.
func (s *JournalService) CreatePlan(ctx context.Context, userID uint, req *PlanRequest) (models.JournalEntry, error) {
	if !req.Type.Valid() {
		return models.JournalEntry{}, fmt.Errorf("%w: unknown type %q", ErrInvalidEntry, req.Type)
	}

	scorer := confluence.NewScorer(s.sections, s.bands)
	if err := scorer.Restore(req.Checked); err != nil {
		return models.JournalEntry{}, fmt.Errorf("%w: %v", ErrInvalidEntry, err)
	}

	_, total := scorer.Scores()
	band := scorer.Status(total)
	details := scorer.Details()

	entry := models.JournalEntry{
		TradeStatus:       models.TradeStatusPlanned,
		Pair:              req.Pair,
		Type:              req.Type,
		CreatedAt:         time.Now(),
		Tags:              normalizeTags(req.Tags),
		Notes:             req.Notes,
		ConfluenceScore:   models.NewScore(total),
		ConfluenceStatus:  band.Label,
		ConfluenceColor:   band.Color,
		ConfluenceDetails: toModelDetails(details),
		ChecklistState:    scorer.State(),
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	st, err := s.storeFor(ctx, userID)
	if err != nil {
		return models.JournalEntry{}, err
	}
	created, err := st.Create(ctx, entry)
	if err != nil {
		return created, err
	}
	s.publish(userID, "created", &created)
	return created, nil
}

// MarkTaken transitions a Planned entry to Taken, attaching execution
// prices and freshly derived pnl/session fields. The entry's createdAt is
// overwritten with the take date: it records when the trade happened, not
// when it was planned.
func (s *JournalService) MarkTaken(ctx context.Context, userID uint, id string, req *TakeRequest) (models.JournalEntry, error) {
	if req.EntryPrice == nil || req.ExitPrice == nil {
		return models.JournalEntry{}, fmt.Errorf("%w: entryPrice and exitPrice are required to take a trade", ErrInvalidEntry)
	}
	if *req.EntryPrice <= 0 || *req.ExitPrice <= 0 {
		return models.JournalEntry{}, fmt.Errorf("%w: prices must be positive", ErrInvalidEntry)
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	st, err := s.storeFor(ctx, userID)
	if err != nil {
		return models.JournalEntry{}, err
	}

	entry, ok := st.Get(id)
	if !ok {
		return models.JournalEntry{}, ErrEntryNotFound
	}
	if entry.TradeStatus != models.TradeStatusPlanned {
		return models.JournalEntry{}, ErrNotPlanned
	}

	entry.TradeStatus = models.TradeStatusTaken
	entry.EntryPrice = req.EntryPrice
	entry.ExitPrice = req.ExitPrice
	if req.Date != nil {
		entry.CreatedAt = *req.Date
	} else {
		entry.CreatedAt = time.Now()
	}

	if err := s.derive(&entry); err != nil {
		return models.JournalEntry{}, err
	}

	if err := st.Update(ctx, entry); err != nil {
		return entry, err
	}
	s.publish(userID, "updated", &entry)
	return entry, nil
}

// buildEntry validates raw input and assembles an entry, carrying over
// the confluence fields of base (zero base for a fresh create).
func (s *JournalService) buildEntry(req *EntryRequest, base models.JournalEntry) (models.JournalEntry, error) {
	status := req.TradeStatus
	if status == "" {
		status = models.TradeStatusTaken
	}
	if !status.Valid() {
		return models.JournalEntry{}, fmt.Errorf("%w: unknown tradeStatus %q", ErrInvalidEntry, req.TradeStatus)
	}
	if !req.Type.Valid() {
		return models.JournalEntry{}, fmt.Errorf("%w: unknown type %q", ErrInvalidEntry, req.Type)
	}
	if status == models.TradeStatusTaken {
		if req.EntryPrice == nil || req.ExitPrice == nil {
			return models.JournalEntry{}, fmt.Errorf("%w: entryPrice and exitPrice are required for taken trades", ErrInvalidEntry)
		}
		if *req.EntryPrice <= 0 || *req.ExitPrice <= 0 {
			return models.JournalEntry{}, fmt.Errorf("%w: prices must be positive", ErrInvalidEntry)
		}
	}

	date := time.Now()
	if req.Date != nil {
		date = *req.Date
	}

	entry := models.JournalEntry{
		TradeStatus:       status,
		Pair:              req.Pair,
		Type:              req.Type,
		CreatedAt:         date,
		Outcome:           req.Outcome,
		Tags:              normalizeTags(req.Tags),
		Notes:             req.Notes,
		ConfluenceScore:   base.ConfluenceScore,
		ConfluenceStatus:  base.ConfluenceStatus,
		ConfluenceColor:   base.ConfluenceColor,
		ConfluenceDetails: base.ConfluenceDetails,
		ChecklistState:    base.ChecklistState,
	}

	if status == models.TradeStatusTaken {
		entry.EntryPrice = req.EntryPrice
		entry.ExitPrice = req.ExitPrice
		if err := s.derive(&entry); err != nil {
			return models.JournalEntry{}, err
		}
	}
	return entry, nil
}

// derive recomputes pnlStatus and tradingSession from the entry's own
// type/prices/date. Called on every write of a Taken entry, never on read.
func (s *JournalService) derive(entry *models.JournalEntry) error {
	status, err := pnl.Classify(entry.Type, entry.EntryPrice, entry.ExitPrice)
	if err != nil {
		return fmt.Errorf("%w: %v", ErrInvalidEntry, err)
	}
	entry.PnLStatus = status
	entry.TradingSession = session.Classify(entry.CreatedAt)
	return nil
}

// storeFor lazily opens the user's collection. A failed load is logged
// and an empty in-memory store is used so a corrupt collection does not
// lock the user out.
func (s *JournalService) storeFor(ctx context.Context, userID uint) (*journal.Store, error) {
	if st, ok := s.stores[userID]; ok {
		return st, nil
	}

	key := fmt.Sprintf("%s:%d", s.keyPrefix, userID)
	st, err := journal.Open(ctx, s.kv, key)
	if err != nil {
		log.Printf("[JournalService] load for user %d: %v", userID, err)
	}
	s.stores[userID] = st
	return st, nil
}

func (s *JournalService) publish(userID uint, event string, entry *models.JournalEntry) {
	if s.publisher != nil {
		s.publisher.PublishJournalEvent(userID, event, entry)
	}
}

func toModelDetails(details []confluence.Detail) []models.ConfluenceDetail {
	out := make([]models.ConfluenceDetail, 0, len(details))
	for _, d := range details {
		out = append(out, models.ConfluenceDetail{
			SectionID:    d.SectionID,
			SectionTitle: d.SectionTitle,
			ItemID:       d.ItemID,
			Label:        d.Label,
			Value:        d.Value,
		})
	}
	return out
}

// normalizeTags strips blank and duplicate tags, preserving order
func normalizeTags(tags []string) []string {
	var out []string
	seen := make(map[string]bool)
	for _, tag := range tags {
		tag = strings.TrimSpace(tag)
		if tag == "" || seen[tag] {
			continue
		}
		seen[tag] = true
		out = append(out, tag)
	}
	return out
}
