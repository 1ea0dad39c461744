package engine

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/rustyeddy/tradesync/store"
)

// Mapping is one reconciliation ledger entry: exactly one per synced
// (local, remote) pair. LastSyncedAt only ever advances, and only after
// the corresponding local or remote write has been confirmed.
type Mapping struct {
	RemoteID     string    `db:"remote_id"`
	LocalID      int64     `db:"local_id"`
	LastSyncedAt time.Time `db:"last_synced_at"`
}

// getMapping returns the mapping for a local record, or nil when the
// record has never been synced.
func getMapping(ctx context.Context, h *store.Handle, localID int64) (*Mapping, error) {
	var m Mapping
	err := h.GetContext(ctx, &m,
		`SELECT remote_id, local_id, last_synced_at FROM sync_mappings WHERE local_id = ?`, localID)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("get mapping for local %d: %w", localID, err)
	}
	return &m, nil
}

// getMappingByRemote returns the mapping for a remote record, or nil.
func getMappingByRemote(ctx context.Context, h *store.Handle, remoteID string) (*Mapping, error) {
	var m Mapping
	err := h.GetContext(ctx, &m,
		`SELECT remote_id, local_id, last_synced_at FROM sync_mappings WHERE remote_id = ?`, remoteID)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("get mapping for remote %s: %w", remoteID, err)
	}
	return &m, nil
}

// upsertMapping records a synced pair. Repeating the same arguments is
// a no-op; binding a remote id to a different local record (or vice
// versa) is a logic error and fails loudly instead of overwriting.
func upsertMapping(ctx context.Context, h *store.Handle, remoteID string, localID int64, syncedAt time.Time) error {
	existing, err := getMappingByRemote(ctx, h, remoteID)
	if err != nil {
		return err
	}
	if existing == nil {
		// UNIQUE on local_id rejects a second remote for the same record.
		_, err := h.ExecContext(ctx,
			`INSERT INTO sync_mappings (remote_id, local_id, last_synced_at) VALUES (?, ?, ?)`,
			remoteID, localID, syncedAt.UTC())
		if err != nil {
			return fmt.Errorf("insert mapping %s -> %d: %w", remoteID, localID, err)
		}
		return nil
	}
	if existing.LocalID != localID {
		return fmt.Errorf("mapping conflict: remote %s already bound to local %d, refusing local %d",
			remoteID, existing.LocalID, localID)
	}
	if !syncedAt.After(existing.LastSyncedAt) {
		return nil
	}
	_, err = h.ExecContext(ctx,
		`UPDATE sync_mappings SET last_synced_at = ? WHERE remote_id = ?`,
		syncedAt.UTC(), remoteID)
	if err != nil {
		return fmt.Errorf("advance mapping %s: %w", remoteID, err)
	}
	return nil
}

// touchMapping advances last_synced_at for an already-mapped local
// record. It never regresses: an older timestamp leaves the row alone.
func touchMapping(ctx context.Context, h *store.Handle, localID int64, syncedAt time.Time) error {
	_, err := h.ExecContext(ctx,
		`UPDATE sync_mappings SET last_synced_at = ? WHERE local_id = ? AND last_synced_at < ?`,
		syncedAt.UTC(), localID, syncedAt.UTC())
	if err != nil {
		return fmt.Errorf("touch mapping for local %d: %w", localID, err)
	}
	return nil
}
