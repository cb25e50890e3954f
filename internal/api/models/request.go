package models

import "time"

// SimulateRequest represents the request body for running a simulation.
// Exactly one of DatasetID or Series must be set.
type SimulateRequest struct {
	DatasetID string          `json:"dataset_id,omitempty"`
	Series    *InlineSeries   `json:"series,omitempty"`
	Config    RunConfig       `json:"config" binding:"required"`
	Options   SimulateOptions `json:"options,omitempty"`
}

// InlineSeries carries the input series in the request itself.
// Time and WindSpeedMs are optional; when present they must match LoadW in length.
type InlineSeries struct {
	Time          []time.Time `json:"time,omitempty"`
	LoadW         []float64   `json:"load_w"`
	IrradianceWm2 []float64   `json:"irradiance_wm2"`
	WindSpeedMs   []float64   `json:"wind_speed_ms,omitempty"`
}

// RunConfig contains battery, PV and driver configuration
type RunConfig struct {
	BatteryFile     string         `json:"battery_file,omitempty"` // preset ID, e.g. "reference_20kwh"
	Battery         BatteryConfig  `json:"battery,omitempty"`
	PV              PVConfig       `json:"pv"`
	TimestepSeconds float64        `json:"timestep_seconds,omitempty"` // default: 60
	LoadScale       float64        `json:"load_scale,omitempty"`       // default: 1
	Strategy        StrategyConfig `json:"strategy,omitempty"`
}

// BatteryConfig defines battery parameters (W, Wh, percent)
type BatteryConfig struct {
	Name               string  `json:"name,omitempty"`
	CapacityWh         float64 `json:"capacity_wh"`
	MaxChargePowerW    float64 `json:"max_charge_power_w"`
	MaxDischargePowerW float64 `json:"max_discharge_power_w"`
	InitialSOC         float64 `json:"initial_soc"`
	SOCPolicy          string  `json:"soc_policy,omitempty"` // "clamp" (default), "strict", "unbounded"
}

type PVConfig struct {
	Efficiency float64 `json:"efficiency"`
	AreaM2     float64 `json:"area_m2"`
}

type StrategyConfig struct {
	Name string `json:"name,omitempty"` // default: "net_load"
}

// SimulateOptions contains optional run parameters
type SimulateOptions struct {
	LimitSteps    int  `json:"limit_steps,omitempty"`    // 0 = all
	IncludeLedger bool `json:"include_ledger,omitempty"` // default: false
}

// CompareRequest runs several configurations over one input series
type CompareRequest struct {
	DatasetID  string          `json:"dataset_id,omitempty"`
	Series     *InlineSeries   `json:"series,omitempty"`
	BaseConfig RunConfig       `json:"base_config" binding:"required"`
	Variations []Variation     `json:"variations" binding:"required,min=1"`
	Options    SimulateOptions `json:"options,omitempty"`
}

// Variation overrides non-zero fields of the base config
type Variation struct {
	Name   string    `json:"name" binding:"required"`
	Config RunConfig `json:"config"`
}
