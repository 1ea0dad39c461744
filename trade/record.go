// Package trade holds the domain model shared by the local store, the
// remote API client and the sync engine: one trade position and the
// field delta used for partial remote updates.
package trade

import "time"

// Direction is the side of a position.
type Direction string

const (
	Long  Direction = "long"
	Short Direction = "short"
)

// Valid reports whether d is a known direction.
func (d Direction) Valid() bool {
	return d == Long || d == Short
}

// Record is one trade position as stored locally. LocalID is assigned by
// the store and never reused within a store instance. CreatedAt and
// UpdatedAt are maintained by whoever writes the row; UpdatedAt is
// non-decreasing across successive mutations of the same record.
type Record struct {
	LocalID    int64      `db:"local_id"`
	OwnerID    string     `db:"owner_id"`
	Instrument string     `db:"instrument"`
	Direction  Direction  `db:"direction"`
	EntryPrice float64    `db:"entry_price"`
	ExitPrice  *float64   `db:"exit_price"`
	Units      float64    `db:"units"`
	StopLoss   *float64   `db:"stop_loss"`
	TakeProfit *float64   `db:"take_profit"`
	OpenTime   time.Time  `db:"open_time"`
	CloseTime  *time.Time `db:"close_time"`
	CreatedAt  time.Time  `db:"created_at"`
	UpdatedAt  time.Time  `db:"updated_at"`
}

// Closed reports whether the record carries close data. A record closed
// before its first sync needs a follow-up remote update right after the
// remote create.
func (r Record) Closed() bool {
	return r.ExitPrice != nil || r.CloseTime != nil
}

// Fields returns the full domain field set as a delta, suitable for a
// remote create or a full remote update.
func (r Record) Fields() FieldDelta {
	instrument := r.Instrument
	direction := r.Direction
	entry := r.EntryPrice
	units := r.Units
	open := r.OpenTime
	return FieldDelta{
		Instrument: &instrument,
		Direction:  &direction,
		EntryPrice: &entry,
		ExitPrice:  r.ExitPrice,
		Units:      &units,
		StopLoss:   r.StopLoss,
		TakeProfit: r.TakeProfit,
		OpenTime:   &open,
		CloseTime:  r.CloseTime,
	}
}

// CloseFields returns only the close-related fields as a delta.
func (r Record) CloseFields() FieldDelta {
	return FieldDelta{
		ExitPrice: r.ExitPrice,
		CloseTime: r.CloseTime,
	}
}
