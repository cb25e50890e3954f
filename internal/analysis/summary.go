package analysis

import (
	"math"
	"sort"
	"time"

	"gonum.org/v1/gonum/floats"
	"gonum.org/v1/gonum/stat"

	"microgrid-sim/internal/sim"
)

// Summary condenses a run into energy totals and SOC/net statistics.
// Energies are in Wh and are all non-negative.
type Summary struct {
	Strategy string

	StartUTC time.Time
	EndUTC   time.Time
	Steps    int

	LoadWh             float64
	PVWh               float64
	BatteryDischargeWh float64
	BatteryChargeWh    float64
	GridImportWh       float64
	GridExportWh       float64

	// SelfSufficiency is the share of load not drawn from the grid, in [0, 1].
	SelfSufficiency float64
	// ImportSteps counts steps where the battery could not cover the deficit.
	ImportSteps int

	MinSOC   float64
	MaxSOC   float64
	MeanSOC  float64
	FinalSOC float64

	NetP05W float64
	NetP95W float64
}

// Summarize computes a Summary with rectangle-rule energies (power * dtHours per step).
func Summarize(r *sim.Result, dtHours float64) Summary {
	s := Summary{}
	if r == nil || len(r.Ledger) == 0 {
		return s
	}
	series := r.Series()
	n := series.Len()

	s.Strategy = r.Strategy
	s.Steps = n
	s.StartUTC = series.Time[0].UTC()
	s.EndUTC = series.Time[n-1].UTC()
	s.FinalSOC = r.FinalSOC

	s.LoadWh = floats.Sum(series.Load) * dtHours
	s.PVWh = floats.Sum(series.PV) * dtHours
	for i := 0; i < n; i++ {
		if b := series.Battery[i]; b > 0 {
			s.BatteryDischargeWh += b * dtHours
		} else {
			s.BatteryChargeWh += -b * dtHours
		}
		if net := series.Net[i]; net > 0 {
			s.GridExportWh += net * dtHours
		} else if net < 0 {
			s.GridImportWh += -net * dtHours
			s.ImportSteps++
		}
	}
	if s.LoadWh > 0 {
		s.SelfSufficiency = math.Max(0, 1-s.GridImportWh/s.LoadWh)
	}

	s.MinSOC = floats.Min(series.SOC)
	s.MaxSOC = floats.Max(series.SOC)
	s.MeanSOC = stat.Mean(series.SOC, nil)

	net := append([]float64(nil), series.Net...)
	sort.Float64s(net)
	s.NetP05W = stat.Quantile(0.05, stat.Empirical, net, nil)
	s.NetP95W = stat.Quantile(0.95, stat.Empirical, net, nil)
	return s
}
