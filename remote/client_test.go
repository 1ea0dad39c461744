package remote

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/rustyeddy/tradesync/trade"
)

func strPtr(s string) *string                   { return &s }
func fPtr(f float64) *float64                   { return &f }
func dirPtr(d trade.Direction) *trade.Direction { return &d }

func TestClientSetsBearerHeader(t *testing.T) {
	t.Parallel()

	var gotAuth string
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotAuth = r.Header.Get("Authorization")
		_ = json.NewEncoder(w).Encode(map[string]any{"data": []Trade{}})
	}))
	t.Cleanup(srv.Close)

	c := NewClient(srv.URL, StaticToken("secret-token"))
	_, err := c.ListTrades(context.Background(), "u1", nil)
	require.NoError(t, err)
	assert.Equal(t, "Bearer secret-token", gotAuth)
}

func TestClientNotAuthenticated(t *testing.T) {
	t.Parallel()

	called := false
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		called = true
	}))
	t.Cleanup(srv.Close)

	c := NewClient(srv.URL, StaticToken(""))
	_, err := c.ListTrades(context.Background(), "u1", nil)
	require.Error(t, err)
	assert.ErrorIs(t, err, ErrNotAuthenticated)
	assert.False(t, called, "no request may leave the client without a credential")

	assert.ErrorIs(t, c.Authenticated(context.Background()), ErrNotAuthenticated)
}

func TestClientCreateTrade(t *testing.T) {
	t.Parallel()

	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		require.Equal(t, http.MethodPost, r.Method)
		require.Equal(t, "/trades", r.URL.Path)

		var body map[string]any
		require.NoError(t, json.NewDecoder(r.Body).Decode(&body))
		assert.Equal(t, "u1", body["owner_id"])
		assert.Equal(t, "EUR_USD", body["instrument"])
		// Unset optional fields stay off the wire entirely.
		assert.NotContains(t, body, "exit_price")
		assert.NotContains(t, body, "close_time")

		w.WriteHeader(http.StatusCreated)
		_ = json.NewEncoder(w).Encode(map[string]any{"data": map[string]any{
			"id":          "r9",
			"owner_id":    "u1",
			"instrument":  "EUR_USD",
			"direction":   "long",
			"entry_price": 1.21,
			"units":       1000,
			"open_time":   "2026-02-01T09:30:00Z",
			"created_at":  "2026-02-01T10:00:00Z",
			"updated_at":  "2026-02-01T10:00:00Z",
		}})
	}))
	t.Cleanup(srv.Close)

	c := NewClient(srv.URL, StaticToken("tok"))
	open := time.Date(2026, 2, 1, 9, 30, 0, 0, time.UTC)
	got, err := c.CreateTrade(context.Background(), "u1", trade.FieldDelta{
		Instrument: strPtr("EUR_USD"),
		Direction:  dirPtr(trade.Long),
		EntryPrice: fPtr(1.21),
		Units:      fPtr(1000),
		OpenTime:   &open,
	})
	require.NoError(t, err)
	assert.Equal(t, "r9", got.ID)
	assert.Equal(t, 1.21, got.EntryPrice)
	assert.True(t, got.UpdatedAt.Equal(time.Date(2026, 2, 1, 10, 0, 0, 0, time.UTC)))
}

func TestClientCreateTradeRejectsMissingID(t *testing.T) {
	t.Parallel()

	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		_ = json.NewEncoder(w).Encode(map[string]any{"data": map[string]any{"instrument": "EUR_USD"}})
	}))
	t.Cleanup(srv.Close)

	c := NewClient(srv.URL, StaticToken("tok"))
	_, err := c.CreateTrade(context.Background(), "u1", trade.FieldDelta{Instrument: strPtr("EUR_USD")})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "without id")
}

func TestClientUpdateTrade(t *testing.T) {
	t.Parallel()

	var gotPath string
	var gotBody map[string]any
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		require.Equal(t, http.MethodPut, r.Method)
		gotPath = r.URL.Path
		require.NoError(t, json.NewDecoder(r.Body).Decode(&gotBody))
	}))
	t.Cleanup(srv.Close)

	c := NewClient(srv.URL, StaticToken("tok"))
	err := c.UpdateTrade(context.Background(), "r9", trade.FieldDelta{ExitPrice: fPtr(1.35)})
	require.NoError(t, err)
	assert.Equal(t, "/trades/r9", gotPath)
	assert.Equal(t, 1.35, gotBody["exit_price"])
	assert.Len(t, gotBody, 1, "partial update carries only changed fields")
}

func TestClientUpdateTradeEmptyDeltaSkipsNetwork(t *testing.T) {
	t.Parallel()

	called := false
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		called = true
	}))
	t.Cleanup(srv.Close)

	c := NewClient(srv.URL, StaticToken("tok"))
	require.NoError(t, c.UpdateTrade(context.Background(), "r9", trade.FieldDelta{}))
	assert.False(t, called)
}

func TestClientListTradesCursor(t *testing.T) {
	t.Parallel()

	var gotQuery string
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotQuery = r.URL.RawQuery
		_ = json.NewEncoder(w).Encode(map[string]any{"data": []Trade{{ID: "r1"}, {ID: "r2"}}})
	}))
	t.Cleanup(srv.Close)

	c := NewClient(srv.URL, StaticToken("tok"))
	cursor := time.Date(2026, 2, 1, 10, 0, 0, 0, time.UTC)
	got, err := c.ListTrades(context.Background(), "u1", &cursor)
	require.NoError(t, err)
	assert.Len(t, got, 2)
	assert.Contains(t, gotQuery, "owner_id=u1")
	assert.Contains(t, gotQuery, "updated_after=2026-02-01T10%3A00%3A00Z")
}

func TestClientSurfacesAPIError(t *testing.T) {
	t.Parallel()

	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, `{"error":"boom"}`, http.StatusBadGateway)
	}))
	t.Cleanup(srv.Close)

	c := NewClient(srv.URL, StaticToken("tok"))
	_, err := c.ListTrades(context.Background(), "u1", nil)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "status 502")
	assert.Contains(t, err.Error(), "boom")
}
