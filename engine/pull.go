package engine

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/rustyeddy/tradesync/remote"
	"github.com/rustyeddy/tradesync/store"
)

// PullAll fetches all of the owner's remote records and applies them
// locally. Equivalent to PullAfter with no cursor.
func (e *Engine) PullAll(ctx context.Context, ownerID string) (PullResult, error) {
	return e.PullAfter(ctx, ownerID, nil)
}

// PullAfter fetches the owner's remote records, optionally filtered
// server-side by the modification cursor, and applies each one: insert
// when unknown, merge when newer than the last sync, skip otherwise.
// Pull never deletes local records; a vanished remote record is simply
// never seen again.
func (e *Engine) PullAfter(ctx context.Context, ownerID string, updatedAfter *time.Time) (PullResult, error) {
	res, _, err := e.pullPass(ctx, ownerID, updatedAfter)
	return res, err
}

// pullPass runs one pull and reports the newest remote updated_at it
// examined, zero when the backend returned nothing.
func (e *Engine) pullPass(ctx context.Context, ownerID string, updatedAfter *time.Time) (PullResult, time.Time, error) {
	if err := e.remote.Authenticated(ctx); err != nil {
		return PullResult{}, time.Time{}, err
	}

	remotes, err := e.remote.ListTrades(ctx, ownerID, updatedAfter)
	if err != nil {
		return PullResult{}, time.Time{}, err
	}

	var res PullResult
	var newest time.Time
	err = e.stores.With(ctx, func(h *store.Handle) error {
		res = PullResult{Pulled: len(remotes)}
		newest = time.Time{}

		for _, rt := range remotes {
			if rt.UpdatedAt.After(newest) {
				newest = rt.UpdatedAt
			}
			if err := e.pullOne(ctx, h, rt, &res); err != nil {
				res.Failed++
				e.log.Warn().Err(err).
					Str("remote_id", rt.ID).
					Str("instrument", rt.Instrument).
					Msg("pull failed for record")
			}
		}
		return nil
	})
	return res, newest, err
}

// pullOne reconciles a single remote record local-ward.
func (e *Engine) pullOne(ctx context.Context, h *store.Handle, rt remote.Trade, res *PullResult) error {
	m, err := getMappingByRemote(ctx, h, rt.ID)
	if err != nil {
		return err
	}

	if m == nil {
		localID, err := insertLocal(ctx, h, rt)
		if err != nil {
			return err
		}
		if err := upsertMapping(ctx, h, rt.ID, localID, rt.UpdatedAt); err != nil {
			return err
		}
		res.Inserted++
		return nil
	}

	if !rt.UpdatedAt.After(m.LastSyncedAt) {
		res.Skipped++
		return nil
	}

	if err := overwriteLocal(ctx, h, m.LocalID, rt); err != nil {
		return err
	}
	if err := touchMapping(ctx, h, m.LocalID, rt.UpdatedAt); err != nil {
		return err
	}
	res.Merged++
	return nil
}

// pullWatermark reads the owner's last completed pull point. Nil means
// the owner has never finished a pull, so the next one is unfiltered:
// remote records that predate this store must still come in.
func (e *Engine) pullWatermark(ctx context.Context, ownerID string) (*time.Time, error) {
	var wm *time.Time
	err := e.stores.With(ctx, func(h *store.Handle) error {
		wm = nil
		var ts time.Time
		err := h.GetContext(ctx, &ts,
			`SELECT last_pulled_at FROM sync_state WHERE owner_id = ?`, ownerID)
		if errors.Is(err, sql.ErrNoRows) {
			return nil
		}
		if err != nil {
			return fmt.Errorf("pull watermark: %w", err)
		}
		wm = &ts
		return nil
	})
	if err != nil {
		return nil, err
	}
	return wm, nil
}

// advancePullWatermark records a completed pull pass. It never
// regresses: an older timestamp leaves the row alone.
func (e *Engine) advancePullWatermark(ctx context.Context, ownerID string, pulledAt time.Time) error {
	return e.stores.With(ctx, func(h *store.Handle) error {
		_, err := h.ExecContext(ctx, `
			INSERT INTO sync_state (owner_id, last_pulled_at) VALUES (?, ?)
			ON CONFLICT(owner_id) DO UPDATE SET last_pulled_at = excluded.last_pulled_at
			WHERE excluded.last_pulled_at > sync_state.last_pulled_at`,
			ownerID, pulledAt.UTC())
		if err != nil {
			return fmt.Errorf("advance pull watermark: %w", err)
		}
		return nil
	})
}
