package model

import (
	"fmt"
	"math"
)

// BatteryParams defines the physical parameters of the battery.
// Units must be consistent: capacity in Wh, power in W, timestep in hours.
// Sign convention: negative power charges the battery, positive discharges it.
type BatteryParams struct {
	CapacityWh         float64
	MaxChargePowerW    float64 // <= 0
	MaxDischargePowerW float64 // >= 0
	TimestepHours      float64
}

// SOCPolicy decides what happens when the integrated state of charge leaves [0, 100].
type SOCPolicy string

const (
	// SOCClamp keeps SOC in [0, 100] and reduces the realised power accordingly.
	SOCClamp SOCPolicy = "clamp"
	// SOCStrict rejects a step that would leave [0, 100].
	SOCStrict SOCPolicy = "strict"
	// SOCUnbounded lets SOC drift outside [0, 100].
	SOCUnbounded SOCPolicy = "unbounded"
)

// ParseSOCPolicy maps a config string to a policy. Empty means SOCClamp.
func ParseSOCPolicy(s string) (SOCPolicy, error) {
	switch SOCPolicy(s) {
	case "":
		return SOCClamp, nil
	case SOCClamp, SOCStrict, SOCUnbounded:
		return SOCPolicy(s), nil
	default:
		return "", &ConfigError{Field: "soc_policy", Reason: fmt.Sprintf("unknown policy %q", s)}
	}
}

// BatteryState captures mutable state.
type BatteryState struct {
	// SOC is the state of charge in percent.
	SOC float64
}

// Battery bundles params + state. Each Battery owns its state; nothing is shared
// between instances.
type Battery struct {
	Params BatteryParams
	State  BatteryState
	Policy SOCPolicy
}

// BatteryOption customises a Battery at construction.
type BatteryOption func(*Battery)

// WithSOCPolicy overrides the default SOCClamp policy.
func WithSOCPolicy(p SOCPolicy) BatteryOption {
	return func(b *Battery) { b.Policy = p }
}

func NewBattery(params BatteryParams, initialSOC float64, opts ...BatteryOption) (*Battery, error) {
	b := &Battery{
		Params: params,
		State:  BatteryState{SOC: initialSOC},
		Policy: SOCClamp,
	}
	for _, opt := range opts {
		opt(b)
	}
	if err := b.Validate(); err != nil {
		return nil, err
	}
	return b, nil
}

func (b *Battery) Validate() error {
	p := b.Params
	if !finite(p.CapacityWh) || p.CapacityWh <= 0 {
		return &ConfigError{Field: "capacity_wh", Reason: "must be finite and > 0"}
	}
	if !finite(p.MaxChargePowerW) || p.MaxChargePowerW > 0 {
		return &ConfigError{Field: "max_charge_power_w", Reason: "must be finite and <= 0"}
	}
	if !finite(p.MaxDischargePowerW) || p.MaxDischargePowerW < 0 {
		return &ConfigError{Field: "max_discharge_power_w", Reason: "must be finite and >= 0"}
	}
	if !finite(p.TimestepHours) || p.TimestepHours <= 0 {
		return &ConfigError{Field: "timestep_hours", Reason: "must be finite and > 0"}
	}
	if !finite(b.State.SOC) || b.State.SOC < 0 || b.State.SOC > 100 {
		return &ConfigError{Field: "initial_soc", Reason: "must be within [0, 100]"}
	}
	if _, err := ParseSOCPolicy(string(b.Policy)); err != nil {
		return err
	}
	return nil
}

// StepResult captures what happened in one timestep.
type StepResult struct {
	RequestedPowerW float64 // as asked by the strategy
	ClippedPowerW   float64 // after charge/discharge limits
	PowerW          float64 // realised; differs from ClippedPowerW only when SOC was clamped
	SOCStart        float64
	SOCEnd          float64
	Clamped         bool
}

// ClipPower enforces the power limits: [MaxChargePowerW, MaxDischargePowerW].
func (b *Battery) ClipPower(p float64) float64 {
	if p > b.Params.MaxDischargePowerW {
		p = b.Params.MaxDischargePowerW
	}
	if p < b.Params.MaxChargePowerW {
		p = b.Params.MaxChargePowerW
	}
	return p
}

// UpdateStateOfCharge integrates one timestep of requested power and returns the new SOC.
// It must be called once per timestep, in time order.
func (b *Battery) UpdateStateOfCharge(requestedPowerW float64) (float64, error) {
	res, err := b.Apply(requestedPowerW)
	if err != nil {
		return b.State.SOC, err
	}
	return res.SOCEnd, nil
}

// Apply is UpdateStateOfCharge with the full per-step bookkeeping.
// On error the state is left untouched.
func (b *Battery) Apply(requestedPowerW float64) (StepResult, error) {
	if !finite(requestedPowerW) {
		return StepResult{}, &InputError{Series: "battery_power", Index: -1, Reason: "requested power is not finite"}
	}

	clipped := b.ClipPower(requestedPowerW)
	res := StepResult{
		RequestedPowerW: requestedPowerW,
		ClippedPowerW:   clipped,
		PowerW:          clipped,
		SOCStart:        b.State.SOC,
	}

	delta := -clipped * b.Params.TimestepHours / b.Params.CapacityWh * 100
	soc := b.State.SOC + delta

	if soc < 0 || soc > 100 {
		switch b.Policy {
		case SOCStrict:
			return StepResult{}, &BoundsError{SOC: soc}
		case SOCClamp:
			soc = math.Max(0, math.Min(100, soc))
			// Only the energy the battery could actually absorb or supply was exchanged.
			res.PowerW = -(soc - b.State.SOC) / 100 * b.Params.CapacityWh / b.Params.TimestepHours
			res.Clamped = true
		}
	}

	b.State.SOC = soc
	res.SOCEnd = soc
	return res, nil
}

// StepEnergyWh converts a power held for one timestep into energy.
func (b *Battery) StepEnergyWh(powerW float64) float64 {
	return powerW * b.Params.TimestepHours
}

func finite(x float64) bool {
	return !math.IsNaN(x) && !math.IsInf(x, 0)
}
