package handler_test

import (
	"bytes"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/trade-journal/internal/handler"
	"github.com/trade-journal/internal/middleware"
	"github.com/trade-journal/internal/service"
	"github.com/trade-journal/internal/store"
)

func init() {
	gin.SetMode(gin.TestMode)
}

// stubAuth injects a fixed user without a real token
func stubAuth(userID uint) gin.HandlerFunc {
	return func(c *gin.Context) {
		c.Set(middleware.ContextKeyUserID, userID)
		c.Next()
	}
}

func newRouter() *gin.Engine {
	journalService := service.NewJournalService(store.NewMemory(), "journal_entries")

	r := gin.New()
	v1 := r.Group("/api/v1")
	handler.NewJournalHandler(journalService).RegisterRoutes(v1, stubAuth(1))
	handler.NewChecklistHandler(journalService).RegisterRoutes(v1, stubAuth(1))
	return r
}

type envelope struct {
	Code    int             `json:"code"`
	Message string          `json:"message"`
	Data    json.RawMessage `json:"data"`
}

func do(t *testing.T, r *gin.Engine, method, path string, body interface{}) (*httptest.ResponseRecorder, envelope) {
	t.Helper()

	var buf bytes.Buffer
	if body != nil {
		require.NoError(t, json.NewEncoder(&buf).Encode(body))
	}
	req := httptest.NewRequest(method, path, &buf)
	req.Header.Set("Content-Type", "application/json")

	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)

	var env envelope
	if w.Body.Len() > 0 {
		require.NoError(t, json.Unmarshal(w.Body.Bytes(), &env))
	}
	return w, env
}

func TestCreateAndListJournal(t *testing.T) {
	r := newRouter()

	w, env := do(t, r, http.MethodPost, "/api/v1/journal", gin.H{
		"pair":       "EUR/USD",
		"type":       "Buy",
		"date":       "2025-06-02T14:00:00Z",
		"entryPrice": 1.1000,
		"exitPrice":  1.1050,
		"tags":       []string{"breakout"},
	})
	require.Equal(t, http.StatusCreated, w.Code)

	var created struct {
		ID             string   `json:"id"`
		PnLStatus      string   `json:"pnlStatus"`
		TradingSession []string `json:"tradingSession"`
		Score          any      `json:"confluenceScore"`
	}
	require.NoError(t, json.Unmarshal(env.Data, &created))
	assert.NotEmpty(t, created.ID)
	assert.Equal(t, "Profit", created.PnLStatus)
	assert.NotEmpty(t, created.TradingSession)
	assert.Equal(t, "NA", created.Score)

	w, env = do(t, r, http.MethodGet, "/api/v1/journal?pair=EUR/USD&sortBy=dateDesc", nil)
	require.Equal(t, http.StatusOK, w.Code)

	var list struct {
		Entries []json.RawMessage `json:"entries"`
		Total   int               `json:"total"`
	}
	require.NoError(t, json.Unmarshal(env.Data, &list))
	assert.Equal(t, 1, list.Total)

	// A contradictory filter excludes the entry
	w, env = do(t, r, http.MethodGet, "/api/v1/journal?pair=EUR/USD&type=Sell", nil)
	require.Equal(t, http.StatusOK, w.Code)
	require.NoError(t, json.Unmarshal(env.Data, &list))
	assert.Equal(t, 0, list.Total)
}

func TestCreateJournalValidation(t *testing.T) {
	r := newRouter()

	// Taken trade without prices
	w, _ := do(t, r, http.MethodPost, "/api/v1/journal", gin.H{
		"pair": "EUR/USD",
		"type": "Buy",
	})
	assert.Equal(t, http.StatusBadRequest, w.Code)

	// Unknown trade type
	w, _ = do(t, r, http.MethodPost, "/api/v1/journal", gin.H{
		"pair":       "EUR/USD",
		"type":       "Hold",
		"entryPrice": 1.0,
		"exitPrice":  1.1,
	})
	assert.Equal(t, http.StatusBadRequest, w.Code)
}

func TestGetUnknownEntryReturns404(t *testing.T) {
	r := newRouter()

	w, _ := do(t, r, http.MethodGet, "/api/v1/journal/nope", nil)
	assert.Equal(t, http.StatusNotFound, w.Code)
}

func TestChecklistScoreAndPlanFlow(t *testing.T) {
	r := newRouter()

	w, env := do(t, r, http.MethodPost, "/api/v1/checklist/score", gin.H{
		"checked": gin.H{"trend_htf": true, "risk_rr": true},
	})
	require.Equal(t, http.StatusOK, w.Code)

	var score struct {
		Total  int `json:"total"`
		Status struct {
			Label string `json:"label"`
		} `json:"status"`
	}
	require.NoError(t, json.Unmarshal(env.Data, &score))
	assert.Equal(t, 140, score.Total)
	assert.Equal(t, "Weak Setup", score.Status.Label)

	// Unknown item ids are a caller error
	w, _ = do(t, r, http.MethodPost, "/api/v1/checklist/score", gin.H{
		"checked": gin.H{"ghost": true},
	})
	assert.Equal(t, http.StatusBadRequest, w.Code)

	// Persist the plan, then take it
	w, env = do(t, r, http.MethodPost, "/api/v1/checklist/plan", gin.H{
		"pair":    "GBP/USD",
		"type":    "Sell",
		"checked": gin.H{"trend_htf": true, "risk_rr": true},
	})
	require.Equal(t, http.StatusCreated, w.Code)

	var plan struct {
		ID          string `json:"id"`
		TradeStatus string `json:"tradeStatus"`
	}
	require.NoError(t, json.Unmarshal(env.Data, &plan))
	assert.Equal(t, "Planned", plan.TradeStatus)

	w, env = do(t, r, http.MethodPost, "/api/v1/journal/"+plan.ID+"/take", gin.H{
		"entryPrice": 1.2700,
		"exitPrice":  1.2650,
	})
	require.Equal(t, http.StatusOK, w.Code)

	var taken struct {
		TradeStatus string `json:"tradeStatus"`
		PnLStatus   string `json:"pnlStatus"`
	}
	require.NoError(t, json.Unmarshal(env.Data, &taken))
	assert.Equal(t, "Taken", taken.TradeStatus)
	assert.Equal(t, "Profit", taken.PnLStatus)
}

func TestDeleteEntry(t *testing.T) {
	r := newRouter()

	_, env := do(t, r, http.MethodPost, "/api/v1/journal", gin.H{
		"pair":       "USD/JPY",
		"type":       "Buy",
		"entryPrice": 150.10,
		"exitPrice":  150.20,
	})
	var created struct {
		ID string `json:"id"`
	}
	require.NoError(t, json.Unmarshal(env.Data, &created))

	w, _ := do(t, r, http.MethodDelete, "/api/v1/journal/"+created.ID, nil)
	assert.Equal(t, http.StatusOK, w.Code)

	w, _ = do(t, r, http.MethodGet, "/api/v1/journal/"+created.ID, nil)
	assert.Equal(t, http.StatusNotFound, w.Code)
}
