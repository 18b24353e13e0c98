package journal_test

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/trade-journal/internal/journal"
	"github.com/trade-journal/internal/models"
	"github.com/trade-journal/internal/store"
)

// failingKV loads fine but refuses every save
type failingKV struct {
	*store.Memory
}

var errDiskFull = errors.New("quota exceeded")

func (f *failingKV) Save(context.Context, string, []byte) error {
	return errDiskFull
}

func newStore(t *testing.T) *journal.Store {
	t.Helper()
	s, err := journal.Open(context.Background(), store.NewMemory(), journal.DefaultKey)
	require.NoError(t, err)
	return s
}

func entry(pair string, typ models.TradeType, at time.Time) models.JournalEntry {
	return models.JournalEntry{
		TradeStatus: models.TradeStatusTaken,
		Pair:        pair,
		Type:        typ,
		CreatedAt:   at,
	}
}

func TestCreateAssignsIDAndPrepends(t *testing.T) {
	ctx := context.Background()
	s := newStore(t)

	first, err := s.Create(ctx, entry("EUR/USD", models.TradeTypeBuy, time.Now()))
	require.NoError(t, err)
	assert.NotEmpty(t, first.ID)

	second, err := s.Create(ctx, entry("GBP/USD", models.TradeTypeSell, time.Now()))
	require.NoError(t, err)

	// Newest-first insertion order: an unfiltered, unsorted-by-equal-dates
	// view starts with the latest create
	got, ok := s.Get(second.ID)
	require.True(t, ok)
	assert.Equal(t, "GBP/USD", got.Pair)
	assert.Equal(t, 2, s.Len())
}

func TestUpdateReplacesMatchingID(t *testing.T) {
	ctx := context.Background()
	s := newStore(t)

	created, err := s.Create(ctx, entry("EUR/USD", models.TradeTypeBuy, time.Now()))
	require.NoError(t, err)

	created.Notes = "revised"
	require.NoError(t, s.Update(ctx, created))

	got, ok := s.Get(created.ID)
	require.True(t, ok)
	assert.Equal(t, "revised", got.Notes)
}

func TestUpdateUnknownIDIsSilentNoOp(t *testing.T) {
	ctx := context.Background()
	s := newStore(t)

	created, err := s.Create(ctx, entry("EUR/USD", models.TradeTypeBuy, time.Now()))
	require.NoError(t, err)

	ghost := created
	ghost.ID = "missing"
	ghost.Notes = "should not land"
	require.NoError(t, s.Update(ctx, ghost))

	got, _ := s.Get(created.ID)
	assert.Empty(t, got.Notes)
	assert.Equal(t, 1, s.Len())
}

func TestDeleteUnknownIDIsNoOp(t *testing.T) {
	ctx := context.Background()
	s := newStore(t)

	_, err := s.Create(ctx, entry("EUR/USD", models.TradeTypeBuy, time.Now()))
	require.NoError(t, err)

	require.NoError(t, s.Delete(ctx, "missing"))
	assert.Equal(t, 1, s.Len())
}

func TestQueryDoesNotMutate(t *testing.T) {
	ctx := context.Background()
	s := newStore(t)

	base := time.Date(2025, 6, 1, 12, 0, 0, 0, time.UTC)
	for i := 0; i < 3; i++ {
		_, err := s.Create(ctx, entry("EUR/USD", models.TradeTypeBuy, base.Add(time.Duration(i)*time.Hour)))
		require.NoError(t, err)
	}

	first := s.Query(journal.Filter{}, journal.SortDateAsc)
	second := s.Query(journal.Filter{}, journal.SortDateAsc)
	assert.Equal(t, first, second)

	// Sorting a result must not reorder the collection itself
	desc := s.Query(journal.Filter{}, journal.SortDateDesc)
	assert.Equal(t, first, s.Query(journal.Filter{}, journal.SortDateAsc))
	assert.NotEqual(t, first, desc)
}

func TestQueryTagSubstringCaseInsensitive(t *testing.T) {
	ctx := context.Background()
	s := newStore(t)

	e := entry("EUR/USD", models.TradeTypeBuy, time.Now())
	e.Tags = []string{"Breakout", "London-Open"}
	_, err := s.Create(ctx, e)
	require.NoError(t, err)

	assert.Len(t, s.Query(journal.Filter{Tag: "break"}, journal.SortDateDesc), 1)
	assert.Len(t, s.Query(journal.Filter{Tag: "LONDON"}, journal.SortDateDesc), 1)
	assert.Empty(t, s.Query(journal.Filter{Tag: "scalp"}, journal.SortDateDesc))
}

func TestQueryANDSemantics(t *testing.T) {
	ctx := context.Background()
	s := newStore(t)

	_, err := s.Create(ctx, entry("GBP/USD", models.TradeTypeBuy, time.Now()))
	require.NoError(t, err)

	// Contradictory constraints exclude the record
	got := s.Query(journal.Filter{Pair: "EUR/USD", Type: models.TradeTypeSell}, journal.SortDateDesc)
	assert.Empty(t, got)

	// One matching constraint is not enough
	got = s.Query(journal.Filter{Pair: "GBP/USD", Type: models.TradeTypeSell}, journal.SortDateDesc)
	assert.Empty(t, got)

	got = s.Query(journal.Filter{Pair: "GBP/USD", Type: models.TradeTypeBuy}, journal.SortDateDesc)
	assert.Len(t, got, 1)
}

func TestQuerySessionAndDateRange(t *testing.T) {
	ctx := context.Background()
	s := newStore(t)

	at := time.Date(2025, 6, 1, 14, 0, 0, 0, time.UTC)
	e := entry("EUR/USD", models.TradeTypeBuy, at)
	e.TradingSession = []string{"Tokyo", "London"}
	_, err := s.Create(ctx, e)
	require.NoError(t, err)

	assert.Len(t, s.Query(journal.Filter{Session: "London"}, journal.SortDateDesc), 1)
	assert.Empty(t, s.Query(journal.Filter{Session: "Sydney"}, journal.SortDateDesc))

	// Date bounds are inclusive
	from, to := at, at
	assert.Len(t, s.Query(journal.Filter{From: &from, To: &to}, journal.SortDateDesc), 1)

	before := at.Add(-time.Minute)
	assert.Empty(t, s.Query(journal.Filter{To: &before}, journal.SortDateDesc))
	after := at.Add(time.Minute)
	assert.Empty(t, s.Query(journal.Filter{From: &after}, journal.SortDateDesc))
}

func TestQuerySortReversal(t *testing.T) {
	ctx := context.Background()
	s := newStore(t)

	base := time.Date(2025, 6, 1, 0, 0, 0, 0, time.UTC)
	for i := 0; i < 4; i++ {
		_, err := s.Create(ctx, entry("EUR/USD", models.TradeTypeBuy, base.AddDate(0, 0, i)))
		require.NoError(t, err)
	}

	asc := s.Query(journal.Filter{}, journal.SortDateAsc)
	desc := s.Query(journal.Filter{}, journal.SortDateDesc)
	require.Len(t, asc, 4)

	for i := range asc {
		assert.Equal(t, asc[i].ID, desc[len(desc)-1-i].ID)
	}
}

func TestLegacyRecordsDefaultScoreToNA(t *testing.T) {
	ctx := context.Background()
	kv := store.NewMemory()

	// A record written before confluence fields existed
	legacy := []byte(`[{"id":"old-1","tradeStatus":"Taken","pair":"EUR/USD","type":"Buy","createdAt":"2024-01-05T10:00:00Z"}]`)
	require.NoError(t, kv.Save(ctx, journal.DefaultKey, legacy))

	s, err := journal.Open(ctx, kv, journal.DefaultKey)
	require.NoError(t, err)

	got, ok := s.Get("old-1")
	require.True(t, ok)
	assert.False(t, got.ConfluenceScore.Valid)
	assert.Equal(t, "NA", got.ConfluenceScore.String())
}

func TestSaveFailureSurfacedButStateUsable(t *testing.T) {
	ctx := context.Background()
	kv := &failingKV{Memory: store.NewMemory()}

	s, err := journal.Open(ctx, kv, journal.DefaultKey)
	require.NoError(t, err)

	created, err := s.Create(ctx, entry("EUR/USD", models.TradeTypeBuy, time.Now()))
	assert.ErrorIs(t, err, errDiskFull)

	// The entry survives in memory despite the failed write
	_, ok := s.Get(created.ID)
	assert.True(t, ok)
	assert.Len(t, s.Query(journal.Filter{}, journal.SortDateDesc), 1)
}

func TestOpenRoundTrip(t *testing.T) {
	ctx := context.Background()
	kv := store.NewMemory()

	s, err := journal.Open(ctx, kv, journal.DefaultKey)
	require.NoError(t, err)
	created, err := s.Create(ctx, entry("USD/JPY", models.TradeTypeSell, time.Now().UTC()))
	require.NoError(t, err)

	reopened, err := journal.Open(ctx, kv, journal.DefaultKey)
	require.NoError(t, err)
	got, ok := reopened.Get(created.ID)
	require.True(t, ok)
	assert.Equal(t, "USD/JPY", got.Pair)
}

func TestEndToEndFilterAndDelete(t *testing.T) {
	ctx := context.Background()
	s := newStore(t)

	// Three taken trades across two pairs, each spanning two sessions
	base := time.Date(2025, 6, 2, 0, 0, 0, 0, time.UTC)
	mk := func(pair string, day int, sessions []string) models.JournalEntry {
		e := entry(pair, models.TradeTypeBuy, base.AddDate(0, 0, day))
		e.TradingSession = sessions
		return e
	}

	a, err := s.Create(ctx, mk("EUR/USD", 0, []string{"Tokyo", "London"}))
	require.NoError(t, err)
	_, err = s.Create(ctx, mk("GBP/USD", 1, []string{"London", "New York"}))
	require.NoError(t, err)
	c, err := s.Create(ctx, mk("EUR/USD", 2, []string{"London", "New York"}))
	require.NoError(t, err)

	got := s.Query(journal.Filter{Pair: "EUR/USD"}, journal.SortDateDesc)
	require.Len(t, got, 2)
	assert.Equal(t, c.ID, got[0].ID, "newest first")
	assert.Equal(t, a.ID, got[1].ID)

	require.NoError(t, s.Delete(ctx, c.ID))
	got = s.Query(journal.Filter{Pair: "EUR/USD"}, journal.SortDateDesc)
	require.Len(t, got, 1)
	assert.Equal(t, a.ID, got[0].ID)
}
