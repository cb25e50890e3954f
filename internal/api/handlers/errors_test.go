package handlers

import (
	"errors"
	"fmt"
	"net/http"
	"testing"

	"github.com/stretchr/testify/assert"

	"microgrid-sim/internal/api/models"
	"microgrid-sim/internal/data"
	"microgrid-sim/internal/model"
)

func TestClassify(t *testing.T) {
	cases := []struct {
		err    error
		status int
		code   string
	}{
		{fmt.Errorf("step 3: %w", &model.BoundsError{SOC: -1}), http.StatusUnprocessableEntity, "SOC_OUT_OF_BOUNDS"},
		{&model.InputError{Series: "load", Index: 1, Reason: "not finite"}, http.StatusBadRequest, "INVALID_INPUT"},
		{fmt.Errorf("battery: %w", &model.ConfigError{Field: "capacity_wh", Reason: "x"}), http.StatusBadRequest, "INVALID_CONFIG"},
		{fmt.Errorf("%w: x", data.ErrNotFound), http.StatusNotFound, "DATASET_NOT_FOUND"},
		{fmt.Errorf("%w: x", errBadRequest), http.StatusBadRequest, "INVALID_REQUEST"},
		{errors.New("disk on fire"), http.StatusInternalServerError, "SIMULATION_ERROR"},
	}
	for _, c := range cases {
		status, code := classify(c.err)
		assert.Equal(t, c.status, status, c.err.Error())
		assert.Equal(t, c.code, code, c.err.Error())
	}
}

func TestErrorDetail_Fields(t *testing.T) {
	d := errorDetail("INVALID_CONFIG", &model.ConfigError{Field: "area_m2", Reason: "must be > 0"})
	assert.Equal(t, "area_m2", d.Details["field"])
	assert.Equal(t, "area_m2: must be > 0", d.Message)

	d = errorDetail("SIMULATION_ERROR", errors.New("boom"))
	assert.Nil(t, d.Details)
}

func TestMergeRunConfig(t *testing.T) {
	base := models.RunConfig{
		Battery:   models.BatteryConfig{CapacityWh: 100, MaxChargePowerW: -10, MaxDischargePowerW: 10, InitialSOC: 50},
		PV:        models.PVConfig{Efficiency: 0.15, AreaM2: 10},
		LoadScale: 0.5,
	}
	merged := mergeRunConfig(base, models.RunConfig{
		Battery:  models.BatteryConfig{CapacityWh: 200},
		PV:       models.PVConfig{AreaM2: 20},
		Strategy: models.StrategyConfig{Name: "net_load"},
	})
	assert.Equal(t, 200.0, merged.Battery.CapacityWh)
	assert.Equal(t, 50.0, merged.Battery.InitialSOC)
	assert.Equal(t, 0.15, merged.PV.Efficiency)
	assert.Equal(t, 20.0, merged.PV.AreaM2)
	assert.Equal(t, 0.5, merged.LoadScale)
	assert.Equal(t, "net_load", merged.Strategy.Name)
}
