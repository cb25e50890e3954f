package sim

import (
	"time"

	"microgrid-sim/internal/model"
)

// LedgerRow is one row of per-step output.
// This is the primary artifact for "what happened" in a run.
type LedgerRow struct {
	Index int
	Time  time.Time

	LoadW         float64
	IrradianceWm2 float64
	WindSpeedMs   float64
	PVW           float64

	Action model.Action

	RequestedBatteryW float64
	BatteryW          float64 // realised, after limits and SOC bounds

	// NetW = PV + battery - load. Positive exports to the grid, negative imports.
	NetW float64

	SOCStart float64
	SOCEnd   float64
}

type Result struct {
	Ledger   []LedgerRow
	FinalSOC float64
	Strategy string
}

// Series is the five aligned output series consumed by the plots.
type Series struct {
	Time    []time.Time
	Load    []float64
	PV      []float64
	Battery []float64
	Net     []float64
	SOC     []float64
}

func (s Series) Len() int { return len(s.SOC) }

// Series flattens the ledger column-wise.
func (r *Result) Series() Series {
	n := len(r.Ledger)
	s := Series{
		Time:    make([]time.Time, n),
		Load:    make([]float64, n),
		PV:      make([]float64, n),
		Battery: make([]float64, n),
		Net:     make([]float64, n),
		SOC:     make([]float64, n),
	}
	for i, row := range r.Ledger {
		s.Time[i] = row.Time
		s.Load[i] = row.LoadW
		s.PV[i] = row.PVW
		s.Battery[i] = row.BatteryW
		s.Net[i] = row.NetW
		s.SOC[i] = row.SOCEnd
	}
	return s
}
