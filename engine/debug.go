package engine

import (
	"context"
	"fmt"

	"github.com/rustyeddy/tradesync/store"
)

// State is a read-only diagnostic snapshot for one owner.
type State struct {
	Unsynced int  `json:"unsynced"` // local records with no mapping
	Mappings int  `json:"mappings"` // total mappings for the owner's records
	Dangling int  `json:"dangling"` // mappings whose local record is gone
	InMemory bool `json:"in_memory"`
}

// DebugState counts unsynced records and mappings and flags mismatches.
// It performs no writes and no network calls.
func (e *Engine) DebugState(ctx context.Context, ownerID string) (State, error) {
	var st State
	err := e.stores.With(ctx, func(h *store.Handle) error {
		st = State{InMemory: h.InMemory()}

		if err := h.GetContext(ctx, &st.Unsynced, `
			SELECT COUNT(*)
			FROM trades t
			LEFT JOIN sync_mappings m ON m.local_id = t.local_id
			WHERE t.owner_id = ? AND m.local_id IS NULL`, ownerID); err != nil {
			return fmt.Errorf("count unsynced: %w", err)
		}

		if err := h.GetContext(ctx, &st.Mappings, `
			SELECT COUNT(*)
			FROM sync_mappings m
			JOIN trades t ON t.local_id = m.local_id
			WHERE t.owner_id = ?`, ownerID); err != nil {
			return fmt.Errorf("count mappings: %w", err)
		}

		if err := h.GetContext(ctx, &st.Dangling, `
			SELECT COUNT(*)
			FROM sync_mappings m
			LEFT JOIN trades t ON t.local_id = m.local_id
			WHERE t.local_id IS NULL`); err != nil {
			return fmt.Errorf("count dangling: %w", err)
		}
		return nil
	})
	return st, err
}
