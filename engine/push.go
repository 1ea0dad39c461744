package engine

import (
	"context"
	"time"

	"github.com/rustyeddy/tradesync/store"
	"github.com/rustyeddy/tradesync/trade"
)

// PushAll walks the owner's local records sequentially and creates or
// updates their remote counterparts. Records with no mapping go first.
// A failure on one record is counted and the loop moves on; only
// storage faults abort the pass (and take the single reset-and-retry
// through the store manager). Local records are never mutated.
func (e *Engine) PushAll(ctx context.Context, ownerID string) (PushResult, error) {
	if err := e.remote.Authenticated(ctx); err != nil {
		return PushResult{}, err
	}

	var res PushResult
	err := e.stores.With(ctx, func(h *store.Handle) error {
		res = PushResult{}

		recs, err := listLocal(ctx, h, ownerID)
		if err != nil {
			return err
		}

		for _, rec := range recs {
			if err := e.pushOne(ctx, h, rec, &res); err != nil {
				res.Failed++
				e.log.Warn().Err(err).
					Int64("local_id", rec.LocalID).
					Str("instrument", rec.Instrument).
					Msg("push failed for record")
			}
		}
		return nil
	})
	return res, err
}

// pushOne reconciles a single record remote-ward. After a confirmed
// remote write the mapping advances to the latest timestamp observed at
// that moment, local or remote, so the pull that follows does not see
// our own write as new remote data.
func (e *Engine) pushOne(ctx context.Context, h *store.Handle, rec trade.Record, res *PushResult) error {
	m, err := getMapping(ctx, h, rec.LocalID)
	if err != nil {
		return err
	}

	if m == nil {
		return e.pushCreate(ctx, h, rec, res)
	}

	if !rec.UpdatedAt.After(m.LastSyncedAt) {
		// Already current, no network call.
		return nil
	}

	if err := e.remote.UpdateTrade(ctx, m.RemoteID, rec.Fields()); err != nil {
		return err
	}
	if err := touchMapping(ctx, h, rec.LocalID, laterOf(rec.UpdatedAt, time.Now().UTC())); err != nil {
		return err
	}
	res.Updated++
	return nil
}

// pushCreate creates the remote counterpart of a never-synced record.
// The mapping is written as soon as the create is confirmed, before any
// follow-up call, so a later retry can never create a duplicate remote.
func (e *Engine) pushCreate(ctx context.Context, h *store.Handle, rec trade.Record, res *PushResult) error {
	rt, err := e.remote.CreateTrade(ctx, rec.OwnerID, rec.Fields())
	if err != nil {
		return err
	}
	if err := upsertMapping(ctx, h, rt.ID, rec.LocalID, laterOf(rec.UpdatedAt, rt.UpdatedAt)); err != nil {
		return err
	}
	res.Created++

	if !rec.Closed() {
		return nil
	}

	// Created and closed before its first sync: send the close fields
	// now and advance the mapping past this write, so the following
	// pull does not see its own close data as newer than last sync.
	if err := e.remote.UpdateTrade(ctx, rt.ID, rec.CloseFields()); err != nil {
		return err
	}
	return touchMapping(ctx, h, rec.LocalID, time.Now().UTC())
}

func laterOf(a, b time.Time) time.Time {
	if a.After(b) {
		return a
	}
	return b
}
