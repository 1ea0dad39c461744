// Package remote is the HTTP client for the authoritative trades
// backend. It only speaks the three endpoints the sync engine needs:
// create, update and list. Every request carries a bearer credential
// from a TokenProvider.
package remote

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"time"

	"github.com/rustyeddy/tradesync/trade"
)

// Trade is a remote trade record as the backend returns it. ID is
// backend-assigned; no client ever fabricates one.
type Trade struct {
	ID         string          `json:"id"`
	OwnerID    string          `json:"owner_id"`
	Instrument string          `json:"instrument"`
	Direction  trade.Direction `json:"direction"`
	EntryPrice float64         `json:"entry_price"`
	ExitPrice  *float64        `json:"exit_price,omitempty"`
	Units      float64         `json:"units"`
	StopLoss   *float64        `json:"stop_loss,omitempty"`
	TakeProfit *float64        `json:"take_profit,omitempty"`
	OpenTime   time.Time       `json:"open_time"`
	CloseTime  *time.Time      `json:"close_time,omitempty"`
	CreatedAt  time.Time       `json:"created_at"`
	UpdatedAt  time.Time       `json:"updated_at"`
}

// Client talks to the trades backend.
type Client struct {
	baseURL    string
	tokens     TokenProvider
	httpClient *http.Client
}

// NewClient creates a client for the backend at baseURL.
func NewClient(baseURL string, tokens TokenProvider) *Client {
	return &Client{
		baseURL: baseURL,
		tokens:  tokens,
		httpClient: &http.Client{
			Timeout: 30 * time.Second,
		},
	}
}

// Authenticated checks that a bearer credential can be obtained. The
// sync engine calls this before touching the store or the network.
func (c *Client) Authenticated(ctx context.Context) error {
	_, err := c.token(ctx)
	return err
}

func (c *Client) token(ctx context.Context) (string, error) {
	tok, err := c.tokens.Token(ctx)
	if err != nil {
		if errors.Is(err, ErrNotAuthenticated) {
			return "", err
		}
		return "", fmt.Errorf("%w: %v", ErrNotAuthenticated, err)
	}
	if tok == "" {
		return "", ErrNotAuthenticated
	}
	return tok, nil
}

type createRequest struct {
	OwnerID string `json:"owner_id"`
	trade.FieldDelta
}

type dataEnvelope struct {
	Data json.RawMessage `json:"data"`
}

// CreateTrade creates a remote record from the given field set and
// returns the backend's view of it, including the assigned id.
func (c *Client) CreateTrade(ctx context.Context, ownerID string, fields trade.FieldDelta) (Trade, error) {
	var env dataEnvelope
	err := c.do(ctx, http.MethodPost, "/trades", nil, createRequest{OwnerID: ownerID, FieldDelta: fields}, &env)
	if err != nil {
		return Trade{}, err
	}

	var t Trade
	if err := json.Unmarshal(env.Data, &t); err != nil {
		return Trade{}, fmt.Errorf("decode created trade: %w", err)
	}
	if t.ID == "" {
		return Trade{}, fmt.Errorf("backend returned trade without id")
	}
	return t, nil
}

// UpdateTrade sends a partial update for an existing remote record.
// Only the fields present in delta travel in the body.
func (c *Client) UpdateTrade(ctx context.Context, remoteID string, delta trade.FieldDelta) error {
	if remoteID == "" {
		return fmt.Errorf("remote id is required")
	}
	if delta.IsEmpty() {
		return nil
	}
	return c.do(ctx, http.MethodPut, "/trades/"+url.PathEscape(remoteID), nil, delta, nil)
}

// ListTrades fetches the owner's remote records, optionally limited
// server-side to those modified after the cursor.
func (c *Client) ListTrades(ctx context.Context, ownerID string, updatedAfter *time.Time) ([]Trade, error) {
	params := url.Values{}
	params.Set("owner_id", ownerID)
	if updatedAfter != nil {
		params.Set("updated_after", updatedAfter.UTC().Format(time.RFC3339))
	}

	var env struct {
		Data []Trade `json:"data"`
	}
	if err := c.do(ctx, http.MethodGet, "/trades", params, nil, &env); err != nil {
		return nil, err
	}
	return env.Data, nil
}

// do executes one authenticated request. Non-2xx responses become
// errors carrying the status and response body.
func (c *Client) do(ctx context.Context, method, path string, params url.Values, body, out any) error {
	tok, err := c.token(ctx)
	if err != nil {
		return err
	}

	apiURL := c.baseURL + path
	if len(params) > 0 {
		apiURL += "?" + params.Encode()
	}

	var rdr io.Reader
	if body != nil {
		buf, err := json.Marshal(body)
		if err != nil {
			return fmt.Errorf("encode request: %w", err)
		}
		rdr = bytes.NewReader(buf)
	}

	req, err := http.NewRequestWithContext(ctx, method, apiURL, rdr)
	if err != nil {
		return fmt.Errorf("create request: %w", err)
	}
	req.Header.Set("Authorization", "Bearer "+tok)
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return fmt.Errorf("execute request: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		raw, _ := io.ReadAll(resp.Body)
		return fmt.Errorf("API error (status %d): %s", resp.StatusCode, string(raw))
	}

	if out != nil {
		if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
			return fmt.Errorf("decode response: %w", err)
		}
	}
	return nil
}
