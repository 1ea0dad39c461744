// Package export writes local trade records to CSV for backup and
// offline inspection.
package export

import (
	"encoding/csv"
	"io"
	"strconv"
	"time"

	"github.com/rustyeddy/tradesync/trade"
)

var header = []string{
	"local_id", "owner_id", "instrument", "direction",
	"entry_price", "exit_price", "units", "stop_loss", "take_profit",
	"open_time", "close_time", "created_at", "updated_at",
}

// WriteCSV writes a header plus one row per record. Null optional
// fields become empty cells; times are RFC3339.
func WriteCSV(w io.Writer, recs []trade.Record) error {
	cw := csv.NewWriter(w)

	if err := cw.Write(header); err != nil {
		return err
	}

	for _, r := range recs {
		row := []string{
			strconv.FormatInt(r.LocalID, 10),
			r.OwnerID,
			r.Instrument,
			string(r.Direction),
			f(r.EntryPrice),
			fp(r.ExitPrice),
			f(r.Units),
			fp(r.StopLoss),
			fp(r.TakeProfit),
			r.OpenTime.UTC().Format(time.RFC3339),
			tp(r.CloseTime),
			r.CreatedAt.UTC().Format(time.RFC3339),
			r.UpdatedAt.UTC().Format(time.RFC3339),
		}
		if err := cw.Write(row); err != nil {
			return err
		}
	}

	cw.Flush()
	return cw.Error()
}

func f(x float64) string {
	return strconv.FormatFloat(x, 'f', 6, 64)
}

func fp(x *float64) string {
	if x == nil {
		return ""
	}
	return f(*x)
}

func tp(t *time.Time) string {
	if t == nil {
		return ""
	}
	return t.UTC().Format(time.RFC3339)
}
