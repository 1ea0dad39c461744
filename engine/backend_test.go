package engine

import (
	"encoding/json"
	"fmt"
	"net/http"
	"sync"
	"time"

	"github.com/rustyeddy/tradesync/remote"
	"github.com/rustyeddy/tradesync/trade"
)

const testToken = "token-ok"

// fakeBackend is an in-memory trades backend for engine tests. It
// counts requests so tests can assert exactly how much network a sync
// pass generated.
type fakeBackend struct {
	mu     sync.Mutex
	nextID int
	trades map[string]remote.Trade

	creates int
	updates int
	lists   int

	// failInstrument makes create/update calls for that instrument
	// return 500, to exercise per-record failure handling.
	failInstrument string
}

func newFakeBackend() *fakeBackend {
	return &fakeBackend{trades: map[string]remote.Trade{}}
}

func (b *fakeBackend) handler() http.Handler {
	mux := http.NewServeMux()
	mux.HandleFunc("POST /trades", b.create)
	mux.HandleFunc("PUT /trades/{id}", b.update)
	mux.HandleFunc("GET /trades", b.list)

	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.Header.Get("Authorization") != "Bearer "+testToken {
			http.Error(w, `{"error":"unauthorized"}`, http.StatusUnauthorized)
			return
		}
		mux.ServeHTTP(w, r)
	})
}

// seed installs a remote trade directly, as if another device created it.
func (b *fakeBackend) seed(t remote.Trade) remote.Trade {
	b.mu.Lock()
	defer b.mu.Unlock()

	b.nextID++
	t.ID = fmt.Sprintf("r%d", b.nextID)
	b.trades[t.ID] = t
	return t
}

func (b *fakeBackend) get(id string) (remote.Trade, bool) {
	b.mu.Lock()
	defer b.mu.Unlock()
	t, ok := b.trades[id]
	return t, ok
}

func (b *fakeBackend) put(t remote.Trade) {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.trades[t.ID] = t
}

func (b *fakeBackend) delete(id string) {
	b.mu.Lock()
	defer b.mu.Unlock()
	delete(b.trades, id)
}

func (b *fakeBackend) requests() int {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.creates + b.updates + b.lists
}

func (b *fakeBackend) create(w http.ResponseWriter, r *http.Request) {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.creates++

	var req struct {
		OwnerID string `json:"owner_id"`
		trade.FieldDelta
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		http.Error(w, err.Error(), http.StatusBadRequest)
		return
	}
	if b.failInstrument != "" && req.Instrument != nil && *req.Instrument == b.failInstrument {
		http.Error(w, `{"error":"backend exploded"}`, http.StatusInternalServerError)
		return
	}

	b.nextID++
	now := time.Now().UTC()
	t := remote.Trade{
		ID:        fmt.Sprintf("r%d", b.nextID),
		OwnerID:   req.OwnerID,
		CreatedAt: now,
		UpdatedAt: now,
	}
	applyDelta(&t, req.FieldDelta)
	b.trades[t.ID] = t

	w.WriteHeader(http.StatusCreated)
	writeData(w, t)
}

func (b *fakeBackend) update(w http.ResponseWriter, r *http.Request) {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.updates++

	t, ok := b.trades[r.PathValue("id")]
	if !ok {
		http.Error(w, `{"error":"not found"}`, http.StatusNotFound)
		return
	}

	var delta trade.FieldDelta
	if err := json.NewDecoder(r.Body).Decode(&delta); err != nil {
		http.Error(w, err.Error(), http.StatusBadRequest)
		return
	}
	if b.failInstrument != "" && delta.Instrument != nil && *delta.Instrument == b.failInstrument {
		http.Error(w, `{"error":"backend exploded"}`, http.StatusInternalServerError)
		return
	}

	applyDelta(&t, delta)
	t.UpdatedAt = time.Now().UTC()
	b.trades[t.ID] = t

	writeData(w, t)
}

func (b *fakeBackend) list(w http.ResponseWriter, r *http.Request) {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.lists++

	owner := r.URL.Query().Get("owner_id")
	var after *time.Time
	if raw := r.URL.Query().Get("updated_after"); raw != "" {
		t, err := time.Parse(time.RFC3339, raw)
		if err != nil {
			http.Error(w, err.Error(), http.StatusBadRequest)
			return
		}
		after = &t
	}

	out := []remote.Trade{}
	for _, t := range b.trades {
		if t.OwnerID != owner {
			continue
		}
		if after != nil && !t.UpdatedAt.After(*after) {
			continue
		}
		out = append(out, t)
	}

	_ = json.NewEncoder(w).Encode(map[string]any{"data": out})
}

func applyDelta(t *remote.Trade, d trade.FieldDelta) {
	if d.Instrument != nil {
		t.Instrument = *d.Instrument
	}
	if d.Direction != nil {
		t.Direction = *d.Direction
	}
	if d.EntryPrice != nil {
		t.EntryPrice = *d.EntryPrice
	}
	if d.ExitPrice != nil {
		t.ExitPrice = d.ExitPrice
	}
	if d.Units != nil {
		t.Units = *d.Units
	}
	if d.StopLoss != nil {
		t.StopLoss = d.StopLoss
	}
	if d.TakeProfit != nil {
		t.TakeProfit = d.TakeProfit
	}
	if d.OpenTime != nil {
		t.OpenTime = *d.OpenTime
	}
	if d.CloseTime != nil {
		t.CloseTime = d.CloseTime
	}
}

func writeData(w http.ResponseWriter, t remote.Trade) {
	_ = json.NewEncoder(w).Encode(map[string]any{"data": t})
}
