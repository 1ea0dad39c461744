// Package engine reconciles local trade records with the remote
// backend. Push walks local records and creates or updates their remote
// counterparts; pull walks remote records and inserts or merges them
// locally. A mapping table inside the local store correlates the two
// sides and remembers the timestamp of their last reconciliation.
//
// All record processing is sequential. Execution yields at every store
// and network call, but no two operations ever run interleaved against
// the same store handle, which keeps each record's read-then-write
// sequence race-free and naturally respects small remote rate limits.
package engine

import (
	"context"

	"github.com/rs/zerolog"

	"github.com/rustyeddy/tradesync/remote"
	"github.com/rustyeddy/tradesync/store"
)

// Engine is the sync engine. Construct with New; all entry points are
// safe to call from a single logical thread of control.
type Engine struct {
	stores *store.Manager
	remote *remote.Client
	log    zerolog.Logger
}

// New wires an Engine from its collaborators. The store manager and
// remote client are owned by the composing application.
func New(stores *store.Manager, client *remote.Client, logger zerolog.Logger) *Engine {
	return &Engine{
		stores: stores,
		remote: client,
		log:    logger,
	}
}

// PushResult counts the outcome of one push pass.
type PushResult struct {
	Created int `json:"created"`
	Updated int `json:"updated"`
	Failed  int `json:"failed"`
}

// PullResult counts the outcome of one pull pass. Pulled is the total
// number of remote records examined.
type PullResult struct {
	Pulled   int `json:"pulled"`
	Inserted int `json:"inserted"`
	Merged   int `json:"merged"`
	Skipped  int `json:"skipped"`
	Failed   int `json:"failed"`
}

// SyncResult aggregates one bidirectional sync.
type SyncResult struct {
	Push PushResult `json:"push"`
	Pull PullResult `json:"pull"`
}

// SyncBidirectional pushes local state to the backend, then pulls
// remote state back. Push strictly precedes pull: every local edit
// reaches the backend before any remote data is merged back, so a pull
// can never regress an offline edit on an already-mapped record.
func (e *Engine) SyncBidirectional(ctx context.Context, ownerID string) (SyncResult, error) {
	if err := e.remote.Authenticated(ctx); err != nil {
		return SyncResult{}, err
	}

	var res SyncResult

	push, err := e.PushAll(ctx, ownerID)
	res.Push = push
	if err != nil {
		return res, err
	}

	cursor, err := e.pullWatermark(ctx, ownerID)
	if err != nil {
		return res, err
	}

	pull, newest, err := e.pullPass(ctx, ownerID, cursor)
	res.Pull = pull
	if err != nil {
		return res, err
	}

	// Advance the watermark only after a pull pass with no failures,
	// so a failed record stays inside the next pull's window.
	if pull.Failed == 0 && !newest.IsZero() {
		if err := e.advancePullWatermark(ctx, ownerID, newest); err != nil {
			return res, err
		}
	}

	e.log.Info().
		Str("owner", ownerID).
		Int("created", push.Created).
		Int("updated", push.Updated).
		Int("inserted", pull.Inserted).
		Int("merged", pull.Merged).
		Int("failed", push.Failed+pull.Failed).
		Msg("bidirectional sync complete")

	return res, nil
}

// Reset discards the local store, mappings included: the current
// handle is closed and the durable store files are deleted.
// Destructive recovery action, not a normal sync path: the next
// operation re-initializes an empty store.
func (e *Engine) Reset() error {
	return e.stores.Destroy()
}
