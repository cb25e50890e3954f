package model

import (
	"errors"
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var referenceParams = BatteryParams{
	CapacityWh:         20000,
	MaxChargePowerW:    -10000,
	MaxDischargePowerW: 10000,
	TimestepHours:      1.0 / 60,
}

func newReferenceBattery(t *testing.T, opts ...BatteryOption) *Battery {
	t.Helper()
	b, err := NewBattery(referenceParams, 80, opts...)
	require.NoError(t, err)
	return b
}

func TestBattery_ReferenceDischargeStep(t *testing.T) {
	b := newReferenceBattery(t)

	p, dt, capWh := 5000.0, referenceParams.TimestepHours, referenceParams.CapacityWh
	soc, err := b.UpdateStateOfCharge(p)
	require.NoError(t, err)

	assert.Equal(t, 80-p*dt/capWh*100, soc)
	assert.InDelta(t, 79.583333, soc, 1e-6)
	assert.Equal(t, soc, b.State.SOC)
}

func TestBattery_ClipsAboveDischargeLimit(t *testing.T) {
	over := newReferenceBattery(t)
	atLimit := newReferenceBattery(t)

	got, err := over.UpdateStateOfCharge(15000)
	require.NoError(t, err)
	want, err := atLimit.UpdateStateOfCharge(10000)
	require.NoError(t, err)

	assert.Equal(t, want, got)
}

func TestBattery_ClipsBelowChargeLimit(t *testing.T) {
	b, err := NewBattery(referenceParams, 50)
	require.NoError(t, err)

	res, err := b.Apply(-25000)
	require.NoError(t, err)

	assert.Equal(t, -25000.0, res.RequestedPowerW)
	assert.Equal(t, -10000.0, res.ClippedPowerW)
	limit, dt, capWh := referenceParams.MaxChargePowerW, referenceParams.TimestepHours, referenceParams.CapacityWh
	assert.Equal(t, 50-limit*dt/capWh*100, res.SOCEnd)
}

func TestBattery_ZeroPowerKeepsSOC(t *testing.T) {
	b := newReferenceBattery(t)
	soc, err := b.UpdateStateOfCharge(0)
	require.NoError(t, err)
	assert.Equal(t, 80.0, soc)
}

func TestBattery_ExactDeltaWithinLimits(t *testing.T) {
	for _, p := range []float64{-10000, -7321.5, -1, 0, 0.25, 999.9, 10000} {
		b := newReferenceBattery(t)
		start := b.State.SOC
		soc, err := b.UpdateStateOfCharge(p)
		require.NoError(t, err)
		assert.Equal(t, start-p*referenceParams.TimestepHours/referenceParams.CapacityWh*100, soc, "p=%v", p)
	}
}

func TestBattery_InstancesDoNotShareState(t *testing.T) {
	a := newReferenceBattery(t)
	b, err := NewBattery(referenceParams, 20)
	require.NoError(t, err)

	_, err = a.UpdateStateOfCharge(10000)
	require.NoError(t, err)

	assert.Equal(t, 20.0, b.State.SOC)
	assert.Less(t, a.State.SOC, 80.0)
}

func TestBattery_Deterministic(t *testing.T) {
	powers := []float64{1200, -3400, 9999, 15000, -18000, 0, 42.42, -0.5}
	run := func() []float64 {
		b := newReferenceBattery(t)
		out := make([]float64, 0, len(powers))
		for _, p := range powers {
			soc, err := b.UpdateStateOfCharge(p)
			require.NoError(t, err)
			out = append(out, soc)
		}
		return out
	}
	assert.Equal(t, run(), run())
}

func TestBattery_EulerConsistency(t *testing.T) {
	// p(t) = 4000 sin(pi t) W over one hour; exact energy is 8000/pi Wh.
	exact := 80 - 8000/math.Pi/referenceParams.CapacityWh*100

	prevErr := math.Inf(1)
	for _, steps := range []int{6, 60, 600, 6000} {
		params := referenceParams
		params.TimestepHours = 1.0 / float64(steps)
		b, err := NewBattery(params, 80)
		require.NoError(t, err)

		for i := 0; i < steps; i++ {
			tH := float64(i) * params.TimestepHours
			_, err := b.UpdateStateOfCharge(4000 * math.Sin(math.Pi*tH))
			require.NoError(t, err)
		}
		errAbs := math.Abs(b.State.SOC - exact)
		assert.Less(t, errAbs, prevErr, "steps=%d", steps)
		prevErr = errAbs
	}
	assert.Less(t, prevErr, 1e-3)
}

func TestBattery_RejectsNonFinitePower(t *testing.T) {
	b := newReferenceBattery(t)
	for _, p := range []float64{math.NaN(), math.Inf(1), math.Inf(-1)} {
		_, err := b.UpdateStateOfCharge(p)
		require.Error(t, err)
		assert.True(t, errors.Is(err, ErrInput))
	}
	assert.Equal(t, 80.0, b.State.SOC)
}

func TestBattery_SOCPolicies(t *testing.T) {
	params := referenceParams
	params.TimestepHours = 1 // one full-power hour moves SOC by 50 points

	t.Run("clamp", func(t *testing.T) {
		b, err := NewBattery(params, 30)
		require.NoError(t, err)
		res, err := b.Apply(10000)
		require.NoError(t, err)
		assert.True(t, res.Clamped)
		assert.Equal(t, 0.0, res.SOCEnd)
		assert.InDelta(t, 6000, res.PowerW, 1e-9)
		assert.Equal(t, 10000.0, res.ClippedPowerW)
	})

	t.Run("clamp_top", func(t *testing.T) {
		b, err := NewBattery(params, 90)
		require.NoError(t, err)
		res, err := b.Apply(-10000)
		require.NoError(t, err)
		assert.Equal(t, 100.0, res.SOCEnd)
		assert.InDelta(t, -2000, res.PowerW, 1e-9)
	})

	t.Run("strict", func(t *testing.T) {
		b, err := NewBattery(params, 30, WithSOCPolicy(SOCStrict))
		require.NoError(t, err)
		_, err = b.Apply(10000)
		require.Error(t, err)
		assert.True(t, errors.Is(err, ErrBounds))
		assert.Equal(t, 30.0, b.State.SOC)
	})

	t.Run("unbounded", func(t *testing.T) {
		b, err := NewBattery(params, 30, WithSOCPolicy(SOCUnbounded))
		require.NoError(t, err)
		soc, err := b.UpdateStateOfCharge(10000)
		require.NoError(t, err)
		assert.Equal(t, -20.0, soc)
	})
}

func TestNewBattery_Validation(t *testing.T) {
	cases := []struct {
		name   string
		mutate func(*BatteryParams)
		soc    float64
		field  string
	}{
		{"zero capacity", func(p *BatteryParams) { p.CapacityWh = 0 }, 50, "capacity_wh"},
		{"nan capacity", func(p *BatteryParams) { p.CapacityWh = math.NaN() }, 50, "capacity_wh"},
		{"positive charge limit", func(p *BatteryParams) { p.MaxChargePowerW = 1 }, 50, "max_charge_power_w"},
		{"negative discharge limit", func(p *BatteryParams) { p.MaxDischargePowerW = -1 }, 50, "max_discharge_power_w"},
		{"zero timestep", func(p *BatteryParams) { p.TimestepHours = 0 }, 50, "timestep_hours"},
		{"inf timestep", func(p *BatteryParams) { p.TimestepHours = math.Inf(1) }, 50, "timestep_hours"},
		{"soc above 100", func(p *BatteryParams) {}, 100.5, "initial_soc"},
		{"soc below 0", func(p *BatteryParams) {}, -1, "initial_soc"},
	}
	for _, c := range cases {
		t.Run(c.name, func(t *testing.T) {
			params := referenceParams
			c.mutate(&params)
			_, err := NewBattery(params, c.soc)
			require.Error(t, err)
			var cfgErr *ConfigError
			require.True(t, errors.As(err, &cfgErr))
			assert.Equal(t, c.field, cfgErr.Field)
			assert.True(t, errors.Is(err, ErrConfig))
		})
	}

	_, err := NewBattery(referenceParams, 50, WithSOCPolicy("sometimes"))
	assert.True(t, errors.Is(err, ErrConfig))
}

func TestParseSOCPolicy(t *testing.T) {
	p, err := ParseSOCPolicy("")
	require.NoError(t, err)
	assert.Equal(t, SOCClamp, p)

	p, err = ParseSOCPolicy("strict")
	require.NoError(t, err)
	assert.Equal(t, SOCStrict, p)

	_, err = ParseSOCPolicy("loose")
	assert.Error(t, err)
}
