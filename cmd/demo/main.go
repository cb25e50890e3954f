package main

import (
	"flag"
	"fmt"
	"math"
	"os"
	"path/filepath"
	"time"

	"microgrid-sim/internal/config"
	"microgrid-sim/internal/model"
	"microgrid-sim/internal/plot"
	"microgrid-sim/internal/sim"
	"microgrid-sim/internal/strategy"
)

// Demo:
// - Build a synthetic clear-sky day at one-minute resolution
// - Instantiate the reference battery and PV array
// - Run the net-load strategy and print the first rows
func main() {
	cfgPath := flag.String("config", "", "Path to YAML config (optional; only battery, pv and simulation are used)")
	n := flag.Int("n", 12, "Number of rows to print")
	from := flag.String("from", "11:00", "Time of day of the first printed row (HH:MM, UTC)")
	outCSV := flag.String("out", "", "Optional path to write ledger CSV (e.g. results/demo.csv)")
	outPlot := flag.String("plot", "", "Optional path to write the plot (e.g. results/demo.png)")
	flag.Parse()

	// Reference scenario defaults (can be overridden via --config).
	params := model.BatteryParams{
		CapacityWh:         20000,
		MaxChargePowerW:    -10000,
		MaxDischargePowerW: 10000,
		TimestepHours:      1.0 / 60,
	}
	initialSOC := 80.0
	pvParams := model.PVParams{Efficiency: 0.15, AreaM2: 100}
	loadScale := 0.5

	if *cfgPath != "" {
		cfg, err := config.Load(*cfgPath)
		if err != nil {
			exit(err)
		}
		params = cfg.Battery.ToModelParams(cfg.TimestepHours())
		initialSOC = cfg.Battery.InitialSOC
		pvParams = model.PVParams{Efficiency: cfg.PV.Efficiency, AreaM2: cfg.PV.AreaM2}
		loadScale = cfg.Simulation.LoadScale
	}

	batt, err := model.NewBattery(params, initialSOC)
	if err != nil {
		exit(err)
	}
	pv, err := model.NewPVArray(pvParams)
	if err != nil {
		exit(err)
	}

	day := time.Date(2014, 11, 9, 0, 0, 0, 0, time.UTC)
	samples := clearSkyDay(day, time.Duration(params.TimestepHours*float64(time.Hour)))

	engine := sim.New(sim.WithLoadScale(loadScale))
	result, err := engine.Run(samples, batt, pv, strategy.NetLoad{})
	if err != nil {
		exit(err)
	}

	fmt.Printf("Simulated %d steps of %s\n", len(result.Ledger), day.Format("2006-01-02"))
	fmt.Printf("Strategy=%s\n", result.Strategy)
	fmt.Printf("Starting SOC=%.3f\n\n", result.Ledger[0].SOCStart)

	start := 0
	if t, err := time.Parse("15:04", *from); err == nil {
		for i, r := range result.Ledger {
			if r.Time.Hour()*60+r.Time.Minute() >= t.Hour()*60+t.Minute() {
				start = i
				break
			}
		}
	}
	for i := start; i < min(start+*n, len(result.Ledger)); i++ {
		r := result.Ledger[i]
		fmt.Printf(
			"%s load=%7.1f  pv=%8.1f  action=%-11s  batt=%8.1f  net=%8.1f  soc=%.3f→%.3f\n",
			r.Time.Format("2006-01-02 15:04"),
			r.LoadW,
			r.PVW,
			string(r.Action),
			r.BatteryW,
			r.NetW,
			r.SOCStart,
			r.SOCEnd,
		)
	}

	if *outCSV != "" {
		if err := os.MkdirAll(filepath.Dir(*outCSV), 0o755); err != nil {
			exit(err)
		}
		if err := sim.WriteLedgerCSV(*outCSV, result.Ledger); err != nil {
			exit(err)
		}
		fmt.Printf("\nWrote CSV: %s\n", *outCSV)
	}
	if *outPlot != "" {
		if err := plot.Save(*outPlot, result.Series(), plot.Options{Resolution: "1 minute"}); err != nil {
			exit(err)
		}
		fmt.Printf("Wrote plot: %s\n", *outPlot)
	}

	fmt.Printf("\nDone. Final SOC=%.3f\n", result.FinalSOC)
}

// clearSkyDay builds one day of samples: a half-sine irradiance between 06:00 and
// 18:00 peaking at 800 W/m2, and a household-like load with morning and evening peaks.
func clearSkyDay(day time.Time, step time.Duration) model.Samples {
	steps := int(24 * time.Hour / step)
	out := make(model.Samples, steps)
	for i := range out {
		t := day.Add(time.Duration(i) * step)
		h := float64(t.Hour()) + float64(t.Minute())/60

		irr := 0.0
		if h > 6 && h < 18 {
			irr = 800 * math.Sin(math.Pi*(h-6)/12)
		}
		load := 1500 +
			2500*math.Exp(-math.Pow(h-7.5, 2)/2) +
			4000*math.Exp(-math.Pow(h-19, 2)/3)

		out[i] = model.Sample{Time: t, LoadW: load, IrradianceWm2: irr, WindSpeedMs: 3}
	}
	return out
}

func exit(err error) {
	fmt.Fprintln(os.Stderr, "error:", err)
	os.Exit(1)
}
