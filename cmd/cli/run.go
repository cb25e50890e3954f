package main

import (
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/spf13/cobra"

	"microgrid-sim/internal/analysis"
	"microgrid-sim/internal/config"
	"microgrid-sim/internal/logger"
	"microgrid-sim/internal/model"
	"microgrid-sim/internal/plot"
	"microgrid-sim/internal/sim"
	"microgrid-sim/internal/strategy"
)

var (
	outPath  string
	plotPath string
	limit    int
)

var runCmd = &cobra.Command{
	Use:   "run",
	Short: "Run the simulation and write the ledger and plot",
	RunE:  runSimulation,
}

var validateCmd = &cobra.Command{
	Use:   "validate",
	Short: "Check the configuration and input files without running",
	RunE:  validateInputs,
}

var configCmd = &cobra.Command{
	Use:   "config",
	Short: "Print the effective configuration (file, env overrides and defaults)",
	RunE:  printConfig,
}

func init() {
	runCmd.Flags().StringVarP(&outPath, "out", "o", "", "ledger CSV path (overrides output.ledger_csv)")
	runCmd.Flags().StringVarP(&plotPath, "plot", "p", "", "plot path, format by extension (overrides output.plot)")
	runCmd.Flags().IntVarP(&limit, "steps", "n", 0, "limit to the first N steps (0=all)")

	rootCmd.AddCommand(runCmd, validateCmd, configCmd)
}

func loadConfig() (*config.Config, error) {
	cfg, err := config.Load(cfgPath)
	if err != nil {
		return nil, fmt.Errorf("load config: %w", err)
	}
	if err := logger.SetLevel(cfg.Logging.Level); err != nil {
		return nil, err
	}
	return cfg, nil
}

func loadSamples(cfg *config.Config) (model.Samples, error) {
	if err := cfg.ValidateData(); err != nil {
		return nil, err
	}
	samples, err := cfg.Data.Load(cfg.BaseDir)
	if err != nil {
		return nil, fmt.Errorf("load data: %w", err)
	}
	return samples, nil
}

func runSimulation(cmd *cobra.Command, args []string) error {
	log := logger.New("cli")

	cfg, err := loadConfig()
	if err != nil {
		return err
	}
	samples, err := loadSamples(cfg)
	if err != nil {
		return err
	}
	if limit > 0 && limit < len(samples) {
		samples = samples[:limit]
	}

	batt, err := cfg.NewBattery()
	if err != nil {
		return err
	}
	pv, err := cfg.NewPVArray()
	if err != nil {
		return err
	}
	strat, err := strategy.New(cfg.Strategy.Name)
	if err != nil {
		return err
	}

	engine := sim.New(sim.WithLoadScale(cfg.Simulation.LoadScale), sim.WithLogger(logger.New("sim")))
	res, err := engine.Run(samples, batt, pv, strat)
	if err != nil {
		return err
	}

	if outPath == "" {
		outPath = cfg.Output.LedgerCSV
	}
	if outPath != "" {
		// ensure output dir exists
		if err := os.MkdirAll(filepath.Dir(outPath), 0o755); err != nil {
			return err
		}
		if err := sim.WriteLedgerCSV(outPath, res.Ledger); err != nil {
			return fmt.Errorf("write ledger: %w", err)
		}
		log.Infof("wrote %d rows to %s", len(res.Ledger), outPath)
	}

	if plotPath == "" {
		plotPath = cfg.Output.Plot
	}
	if plotPath != "" {
		loc, err := time.LoadLocation(cfg.Output.PlotTimezone)
		if err != nil {
			return fmt.Errorf("output.plot_timezone: %w", err)
		}
		if err := os.MkdirAll(filepath.Dir(plotPath), 0o755); err != nil {
			return err
		}
		err = plot.Save(plotPath, res.Series(), plot.Options{
			Location:   loc,
			Resolution: resolutionLabel(cfg.Simulation.TimestepSeconds),
		})
		if err != nil {
			return fmt.Errorf("plot: %w", err)
		}
		log.Infof("wrote plot to %s", plotPath)
	}

	s := analysis.Summarize(res, cfg.TimestepHours())
	out := cmd.OutOrStdout()
	fmt.Fprintf(out, "Steps=%d Strategy=%s Final SOC=%.3f%%\n", s.Steps, s.Strategy, s.FinalSOC)
	fmt.Fprintf(out, "Load=%.1f Wh PV=%.1f Wh Import=%.1f Wh Export=%.1f Wh Self-sufficiency=%.1f%%\n",
		s.LoadWh, s.PVWh, s.GridImportWh, s.GridExportWh, s.SelfSufficiency*100)
	return nil
}

func validateInputs(cmd *cobra.Command, args []string) error {
	cfg, err := loadConfig()
	if err != nil {
		return err
	}
	samples, err := loadSamples(cfg)
	if err != nil {
		return err
	}
	start, end := samples.Span()
	fmt.Fprintf(cmd.OutOrStdout(), "ok: %d samples from %s to %s\n", len(samples), start.UTC().Format(time.RFC3339), end.UTC().Format(time.RFC3339))
	return nil
}

func printConfig(cmd *cobra.Command, args []string) error {
	cfg, err := config.Load(cfgPath)
	if err != nil {
		return fmt.Errorf("load config: %w", err)
	}
	raw, err := cfg.YAML()
	if err != nil {
		return err
	}
	_, err = cmd.OutOrStdout().Write(raw)
	return err
}

// resolutionLabel renders a timestep for the plot, e.g. 60 -> "1 minute".
func resolutionLabel(seconds float64) string {
	d := time.Duration(seconds * float64(time.Second))
	switch {
	case d == time.Minute:
		return "1 minute"
	case d == time.Hour:
		return "1 hour"
	case d%time.Hour == 0:
		return fmt.Sprintf("%d hours", d/time.Hour)
	case d%time.Minute == 0:
		return fmt.Sprintf("%d minutes", d/time.Minute)
	default:
		return d.String()
	}
}
