package sim

import (
	"errors"
	"fmt"

	"microgrid-sim/internal/logger"
	"microgrid-sim/internal/model"
	"microgrid-sim/internal/strategy"
)

type Engine struct {
	loadScale float64
	log       logger.Logger
}

type Option func(*Engine)

// WithLoadScale multiplies every load sample before it enters the step.
func WithLoadScale(f float64) Option {
	return func(e *Engine) { e.loadScale = f }
}

func WithLogger(l logger.Logger) Option {
	return func(e *Engine) { e.log = l }
}

func New(opts ...Option) *Engine {
	e := &Engine{loadScale: 1, log: logger.NopLogger{}}
	for _, opt := range opts {
		opt(e)
	}
	return e
}

// Run executes the simulation over the sample series, strictly in index order.
// The battery is mutated once per sample; pass a freshly constructed one per run.
func (e *Engine) Run(samples model.Samples, batt *model.Battery, pv *model.PVArray, strat strategy.Strategy) (*Result, error) {
	if batt == nil {
		return nil, fmt.Errorf("battery is nil")
	}
	if pv == nil {
		return nil, fmt.Errorf("pv array is nil")
	}
	if strat == nil {
		return nil, fmt.Errorf("strategy is nil")
	}
	if len(samples) == 0 {
		return nil, &model.InputError{Series: "samples", Index: -1, Reason: "no samples"}
	}
	if err := samples.Validate(); err != nil {
		return nil, err
	}

	e.log.Infof("run start: steps=%d strategy=%s soc=%.3f policy=%s", len(samples), strat.Name(), batt.State.SOC, batt.Policy)

	ledger := make([]LedgerRow, 0, len(samples))
	for idx, s := range samples {
		load := s.LoadW * e.loadScale

		pvW, err := pv.Output(s.IrradianceWm2)
		if err != nil {
			return nil, fmt.Errorf("step %d: %w", idx, withIndex(err, idx))
		}

		req := strat.Decide(strategy.Context{
			Index:   idx,
			Sample:  s,
			LoadW:   load,
			PVW:     pvW,
			Battery: batt,
		})

		res, err := batt.Apply(req)
		if err != nil {
			return nil, fmt.Errorf("step %d: %w", idx, withIndex(err, idx))
		}

		row := LedgerRow{
			Index: idx,
			Time:  s.Time,

			LoadW:         load,
			IrradianceWm2: s.IrradianceWm2,
			WindSpeedMs:   s.WindSpeedMs,
			PVW:           pvW,

			Action: model.ActionFromPowerW(res.PowerW),

			RequestedBatteryW: req,
			BatteryW:          res.PowerW,
			NetW:              pvW + res.PowerW - load,

			SOCStart: res.SOCStart,
			SOCEnd:   res.SOCEnd,
		}
		ledger = append(ledger, row)

		e.log.Debugw("step", map[string]any{
			"index":     idx,
			"load_w":    load,
			"pv_w":      pvW,
			"battery_w": res.PowerW,
			"soc":       res.SOCEnd,
		})
	}

	e.log.Infof("run done: steps=%d final_soc=%.3f", len(ledger), batt.State.SOC)

	return &Result{
		Ledger:   ledger,
		FinalSOC: batt.State.SOC,
		Strategy: strat.Name(),
	}, nil
}

// withIndex stamps the step index onto input errors raised without one.
func withIndex(err error, idx int) error {
	var inErr *model.InputError
	if errors.As(err, &inErr) && inErr.Index < 0 {
		cp := *inErr
		cp.Index = idx
		return &cp
	}
	return err
}
