package engine

import (
	"context"
	"fmt"
	"time"

	"github.com/rustyeddy/tradesync/remote"
	"github.com/rustyeddy/tradesync/store"
	"github.com/rustyeddy/tradesync/trade"
)

const localColumns = `t.local_id, t.owner_id, t.instrument, t.direction, t.entry_price, t.exit_price,
	t.units, t.stop_loss, t.take_profit, t.open_time, t.close_time, t.created_at, t.updated_at`

// listLocal returns the owner's records in push order: never-synced
// records first, then mapped ones, oldest first within each group.
func listLocal(ctx context.Context, h *store.Handle, ownerID string) ([]trade.Record, error) {
	var recs []trade.Record
	err := h.SelectContext(ctx, &recs, fmt.Sprintf(`
		SELECT %s
		FROM trades t
		LEFT JOIN sync_mappings m ON m.local_id = t.local_id
		WHERE t.owner_id = ?
		ORDER BY (m.local_id IS NULL) DESC, t.local_id ASC`, localColumns), ownerID)
	if err != nil {
		return nil, fmt.Errorf("list local records: %w", err)
	}
	return recs, nil
}

// insertLocal creates a local record from a remote one and returns the
// store-assigned local id. The local timestamps mirror the remote's so
// the next push sees the record as already current.
func insertLocal(ctx context.Context, h *store.Handle, rt remote.Trade) (int64, error) {
	res, err := h.ExecContext(ctx, `
		INSERT INTO trades
		(owner_id, instrument, direction, entry_price, exit_price, units, stop_loss, take_profit,
		 open_time, close_time, created_at, updated_at)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		rt.OwnerID, rt.Instrument, rt.Direction, rt.EntryPrice, rt.ExitPrice, rt.Units,
		rt.StopLoss, rt.TakeProfit, rt.OpenTime.UTC(), nullTime(rt.CloseTime),
		rt.CreatedAt.UTC(), rt.UpdatedAt.UTC())
	if err != nil {
		return 0, fmt.Errorf("insert local record for remote %s: %w", rt.ID, err)
	}
	localID, err := res.LastInsertId()
	if err != nil {
		return 0, fmt.Errorf("local id for remote %s: %w", rt.ID, err)
	}
	return localID, nil
}

// overwriteLocal replaces a local record's domain fields with the
// remote's. Last-writer-wins: the caller has already established the
// remote side is newer.
func overwriteLocal(ctx context.Context, h *store.Handle, localID int64, rt remote.Trade) error {
	_, err := h.ExecContext(ctx, `
		UPDATE trades
		SET instrument = ?, direction = ?, entry_price = ?, exit_price = ?, units = ?,
		    stop_loss = ?, take_profit = ?, open_time = ?, close_time = ?, updated_at = ?
		WHERE local_id = ?`,
		rt.Instrument, rt.Direction, rt.EntryPrice, rt.ExitPrice, rt.Units,
		rt.StopLoss, rt.TakeProfit, rt.OpenTime.UTC(), nullTime(rt.CloseTime),
		rt.UpdatedAt.UTC(), localID)
	if err != nil {
		return fmt.Errorf("overwrite local %d from remote %s: %w", localID, rt.ID, err)
	}
	return nil
}

// LocalRecords lists the owner's local records, unsynced first. Used by
// the export command and diagnostics.
func (e *Engine) LocalRecords(ctx context.Context, ownerID string) ([]trade.Record, error) {
	var recs []trade.Record
	err := e.stores.With(ctx, func(h *store.Handle) error {
		var ferr error
		recs, ferr = listLocal(ctx, h, ownerID)
		return ferr
	})
	if err != nil {
		return nil, err
	}
	return recs, nil
}

func nullTime(t *time.Time) any {
	if t == nil {
		return nil
	}
	return t.UTC()
}
