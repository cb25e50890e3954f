package sim

import (
	"encoding/csv"
	"io"
	"os"
	"strconv"
	"time"
)

var ledgerHeader = []string{
	"index",
	"time",
	"load_w",
	"irradiance_wm2",
	"wind_speed_ms",
	"pv_w",
	"action",
	"requested_battery_w",
	"battery_w",
	"net_w",
	"soc_start",
	"soc_end",
}

func WriteLedgerCSV(path string, ledger []LedgerRow) error {
	f, err := os.Create(path)
	if err != nil {
		return err
	}
	if err := WriteLedger(f, ledger); err != nil {
		f.Close()
		return err
	}
	return f.Close()
}

// WriteLedger writes the ledger as CSV with a header row.
func WriteLedger(out io.Writer, ledger []LedgerRow) error {
	w := csv.NewWriter(out)

	if err := w.Write(ledgerHeader); err != nil {
		return err
	}

	for _, r := range ledger {
		row := []string{
			strconv.Itoa(r.Index),
			fmtTime(r.Time),
			fmtFloat(r.LoadW),
			fmtFloat(r.IrradianceWm2),
			fmtFloat(r.WindSpeedMs),
			fmtFloat(r.PVW),
			string(r.Action),
			fmtFloat(r.RequestedBatteryW),
			fmtFloat(r.BatteryW),
			fmtFloat(r.NetW),
			fmtFloat(r.SOCStart),
			fmtFloat(r.SOCEnd),
		}
		if err := w.Write(row); err != nil {
			return err
		}
	}

	w.Flush()
	return w.Error()
}

func fmtTime(t time.Time) string {
	if t.IsZero() {
		return ""
	}
	return t.Format(time.RFC3339)
}

func fmtFloat(x float64) string {
	return strconv.FormatFloat(x, 'f', 6, 64)
}
