package model

// PVParams describes a PV array.
// Units:
// - Efficiency: 0..1 (irradiance to electrical conversion)
// - AreaM2: m2
type PVParams struct {
	Efficiency float64
	AreaM2     float64
}

// PVArray converts irradiance (W/m2) into electrical output (W). It holds no state.
type PVArray struct {
	Params PVParams
}

func NewPVArray(params PVParams) (*PVArray, error) {
	if !finite(params.Efficiency) || params.Efficiency <= 0 || params.Efficiency > 1 {
		return nil, &ConfigError{Field: "efficiency", Reason: "must be in (0, 1]"}
	}
	if !finite(params.AreaM2) || params.AreaM2 <= 0 {
		return nil, &ConfigError{Field: "area_m2", Reason: "must be finite and > 0"}
	}
	return &PVArray{Params: params}, nil
}

// Output returns the instantaneous power for one irradiance sample.
func (pv *PVArray) Output(irradianceWm2 float64) (float64, error) {
	if !finite(irradianceWm2) {
		return 0, &InputError{Series: "irradiance", Index: -1, Reason: "not finite"}
	}
	if irradianceWm2 < 0 {
		return 0, &InputError{Series: "irradiance", Index: -1, Reason: "negative irradiance"}
	}
	return pv.Params.Efficiency * pv.Params.AreaM2 * irradianceWm2, nil
}
