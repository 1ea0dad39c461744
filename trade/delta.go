package trade

import "time"

// FieldDelta is a partial update of a record's domain fields. The field
// list is fixed: only fields enumerated here can travel in a remote
// update body. Nil means "not changed" and is omitted from the wire.
type FieldDelta struct {
	Instrument *string    `json:"instrument,omitempty"`
	Direction  *Direction `json:"direction,omitempty"`
	EntryPrice *float64   `json:"entry_price,omitempty"`
	ExitPrice  *float64   `json:"exit_price,omitempty"`
	Units      *float64   `json:"units,omitempty"`
	StopLoss   *float64   `json:"stop_loss,omitempty"`
	TakeProfit *float64   `json:"take_profit,omitempty"`
	OpenTime   *time.Time `json:"open_time,omitempty"`
	CloseTime  *time.Time `json:"close_time,omitempty"`
}

// IsEmpty reports whether the delta carries no fields at all.
func (d FieldDelta) IsEmpty() bool {
	return d.Instrument == nil &&
		d.Direction == nil &&
		d.EntryPrice == nil &&
		d.ExitPrice == nil &&
		d.Units == nil &&
		d.StopLoss == nil &&
		d.TakeProfit == nil &&
		d.OpenTime == nil &&
		d.CloseTime == nil
}
