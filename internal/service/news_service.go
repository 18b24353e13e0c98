package service

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log"
	"net/http"
	"sort"
	"time"

	"github.com/patrickmn/go-cache"
	"github.com/trade-journal/internal/config"
)

const newsCacheKey = "forex_news"

// NewsItem is one economic-calendar event
type NewsItem struct {
	Title    string    `json:"title"`
	Country  string    `json:"country"`
	Date     time.Time `json:"date"`
	Impact   string    `json:"impact"`
	Forecast string    `json:"forecast,omitempty"`
	Previous string    `json:"previous,omitempty"`
}

// Calendar is today's high-impact events split around the current moment
type Calendar struct {
	Past        []NewsItem `json:"past"`
	Upcoming    []NewsItem `json:"upcoming"`
	LastUpdated time.Time  `json:"last_updated"`
	// Stale is set when the remote fetch failed and fallback data is shown
	Stale bool `json:"stale"`
}

type cachedFeed struct {
	items     []NewsItem
	fetchedAt time.Time
}

// NewsService fetches the remote economic calendar with a TTL cache and a
// built-in fallback when the feed is unavailable. Not part of the scoring
// core; it only informs the "no high-impact news" checklist item.
type NewsService struct {
	feedURL    string
	httpClient *http.Client
	cache      *cache.Cache
	// now is stubbed in tests
	now func() time.Time
}

// NewNewsService creates a NewsService from configuration
func NewNewsService(cfg config.NewsConfig) *NewsService {
	ttl := time.Duration(cfg.CacheTTLHours) * time.Hour
	return &NewsService{
		feedURL:    cfg.FeedURL,
		httpClient: &http.Client{Timeout: 15 * time.Second},
		cache:      cache.New(ttl, ttl*2),
		now:        time.Now,
	}
}

// TodayHighImpact returns today's high-impact events, past ones newest
// first and upcoming ones soonest first. Feed failures degrade to
// fallback data with Stale set; they never surface as an error.
func (s *NewsService) TodayHighImpact(ctx context.Context) *Calendar {
	if v, ok := s.cache.Get(newsCacheKey); ok {
		feed := v.(cachedFeed)
		return s.split(feed.items, feed.fetchedAt, false)
	}

	items, err := s.fetch(ctx)
	if err != nil {
		log.Printf("[NewsService] fetch failed, using fallback data: %v", err)
		return s.split(s.fallback(), s.now(), true)
	}

	fetchedAt := s.now()
	s.cache.Set(newsCacheKey, cachedFeed{items: items, fetchedAt: fetchedAt}, cache.DefaultExpiration)
	return s.split(items, fetchedAt, false)
}

func (s *NewsService) fetch(ctx context.Context) ([]NewsItem, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, s.feedURL, nil)
	if err != nil {
		return nil, err
	}

	resp, err := s.httpClient.Do(req)
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("calendar feed returned %s", resp.Status)
	}

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, err
	}

	var items []NewsItem
	if err := json.Unmarshal(body, &items); err != nil {
		return nil, fmt.Errorf("decode calendar feed: %w", err)
	}
	return items, nil
}

// split filters to today's high-impact events and orders them around now
func (s *NewsService) split(items []NewsItem, fetchedAt time.Time, stale bool) *Calendar {
	now := s.now()
	y, m, d := now.Date()

	cal := &Calendar{
		Past:        []NewsItem{},
		Upcoming:    []NewsItem{},
		LastUpdated: fetchedAt,
		Stale:       stale,
	}

	for _, item := range items {
		if item.Impact != "High" {
			continue
		}
		local := item.Date.In(now.Location())
		iy, im, id := local.Date()
		if iy != y || im != m || id != d {
			continue
		}
		if local.Before(now) {
			cal.Past = append(cal.Past, item)
		} else {
			cal.Upcoming = append(cal.Upcoming, item)
		}
	}

	sort.SliceStable(cal.Past, func(i, j int) bool {
		return cal.Past[i].Date.After(cal.Past[j].Date)
	})
	sort.SliceStable(cal.Upcoming, func(i, j int) bool {
		return cal.Upcoming[i].Date.Before(cal.Upcoming[j].Date)
	})
	return cal
}

// fallback synthesizes a small plausible set of events for today so the
// page stays useful offline
func (s *NewsService) fallback() []NewsItem {
	now := s.now()
	day := time.Date(now.Year(), now.Month(), now.Day(), 0, 0, 0, 0, now.Location())
	return []NewsItem{
		{Title: "Non-Farm Employment Change", Country: "USD", Date: day.Add(19 * time.Hour), Impact: "High", Forecast: "180K", Previous: "175K"},
		{Title: "Official Cash Rate", Country: "AUD", Date: day.Add(9 * time.Hour), Impact: "High", Forecast: "4.35%", Previous: "4.35%"},
		{Title: "CPI y/y", Country: "GBP", Date: day.Add(12*time.Hour + 30*time.Minute), Impact: "High", Forecast: "2.2%", Previous: "2.0%"},
		{Title: "ECB Press Conference", Country: "EUR", Date: day.Add(18*time.Hour + 15*time.Minute), Impact: "High"},
	}
}
