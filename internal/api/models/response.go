package models

import "time"

// SimulateResponse represents the response from a simulation run
type SimulateResponse struct {
	ID      string      `json:"id"`
	Status  string      `json:"status"`
	Summary RunSummary  `json:"summary"`
	Ledger  []LedgerRow `json:"ledger,omitempty"`
}

// RunSummary contains aggregated run results. Energies are in Wh.
type RunSummary struct {
	Strategy        string     `json:"strategy"`
	TotalSteps      int        `json:"total_steps"`
	Window          TimeWindow `json:"window"`
	FinalSOC        float64    `json:"final_soc"`
	MinSOC          float64    `json:"min_soc"`
	MaxSOC          float64    `json:"max_soc"`
	MeanSOC         float64    `json:"mean_soc"`
	LoadWh          float64    `json:"load_wh"`
	PVWh            float64    `json:"pv_wh"`
	ChargedWh       float64    `json:"battery_charged_wh"`
	DischargedWh    float64    `json:"battery_discharged_wh"`
	ImportWh        float64    `json:"grid_import_wh"`
	ExportWh        float64    `json:"grid_export_wh"`
	ImportSteps     int        `json:"import_steps"`
	SelfSufficiency float64    `json:"self_sufficiency"`
	NetP05W         float64    `json:"net_p05_w"`
	NetP95W         float64    `json:"net_p95_w"`
}

// TimeWindow represents a time range
type TimeWindow struct {
	Start time.Time `json:"start"`
	End   time.Time `json:"end"`
}

// LedgerRow represents one step in the run ledger
type LedgerRow struct {
	Index             int       `json:"index"`
	Time              time.Time `json:"time"`
	LoadW             float64   `json:"load_w"`
	IrradianceWm2     float64   `json:"irradiance_wm2"`
	WindSpeedMs       float64   `json:"wind_speed_ms"`
	PVW               float64   `json:"pv_w"`
	Action            string    `json:"action"` // "CHARGING", "DISCHARGING", "IDLE"
	RequestedBatteryW float64   `json:"requested_battery_w"`
	BatteryW          float64   `json:"battery_w"`
	NetW              float64   `json:"net_w"`
	SOCStart          float64   `json:"soc_start"`
	SOCEnd            float64   `json:"soc_end"`
}

// CompareResponse represents the response from a comparison
type CompareResponse struct {
	ID         string             `json:"id"`
	Comparison []ComparisonResult `json:"comparison"`
}

// ComparisonResult contains results for one variation.
// Failed variations keep Rank 0 and carry Error instead of a summary.
type ComparisonResult struct {
	Rank    int          `json:"rank,omitempty"`
	Name    string       `json:"name"`
	Summary *RunSummary  `json:"summary,omitempty"`
	Error   *ErrorDetail `json:"error,omitempty"`
}

// BatteryInfo represents information about a battery preset
type BatteryInfo struct {
	ID    string       `json:"id"`
	Name  string       `json:"name"`
	File  string       `json:"file"`
	Specs BatterySpecs `json:"specs"`
}

// BatterySpecs contains battery specifications
type BatterySpecs struct {
	CapacityWh         float64 `json:"capacity_wh"`
	MaxChargePowerW    float64 `json:"max_charge_power_w"`
	MaxDischargePowerW float64 `json:"max_discharge_power_w"`
	InitialSOC         float64 `json:"initial_soc"`
}

// StrategyInfo represents information about a strategy
type StrategyInfo struct {
	Name        string `json:"name"`
	Description string `json:"description"`
}

// DatasetInfo represents information about a local dataset
type DatasetInfo struct {
	ID                string `json:"id"`
	Name              string `json:"name"`
	Description       string `json:"description,omitempty"`
	ResolutionSeconds int    `json:"resolution_seconds,omitempty"`
}

// ErrorResponse represents an error response
type ErrorResponse struct {
	Error ErrorDetail `json:"error"`
}

// ErrorDetail contains error information
type ErrorDetail struct {
	Code    string                 `json:"code"`
	Message string                 `json:"message"`
	Details map[string]interface{} `json:"details,omitempty"`
}
