package model

// Action labels what the battery did during one step. The values appear in
// the ledger CSV and API responses.
type Action string

const (
	ActionCharging    Action = "CHARGING"
	ActionIdle        Action = "IDLE"
	ActionDischarging Action = "DISCHARGING"
)

// IdleToleranceW is the magnitude below which realised battery power counts
// as idle, so that load minus PV rounding noise is not reported as activity.
const IdleToleranceW = 1e-6

// ActionFromPowerW classifies realised battery power (positive = discharge).
func ActionFromPowerW(powerW float64) Action {
	switch {
	case powerW <= -IdleToleranceW:
		return ActionCharging
	case powerW >= IdleToleranceW:
		return ActionDischarging
	default:
		return ActionIdle
	}
}
