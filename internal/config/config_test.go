package config

import (
	"errors"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gopkg.in/yaml.v3"

	"microgrid-sim/internal/model"
)

const referenceYAML = `
battery:
  name: reference
  capacity_wh: 20000
  max_charge_power_w: -10000
  max_discharge_power_w: 10000
  initial_soc: 80
pv:
  efficiency: 0.15
  area_m2: 100
simulation:
  timestep_seconds: 60
  load_scale: 0.5
data:
  load_file: load.csv
  weather_file: weather.csv
  trim_weather: true
output:
  plot_timezone: CET
`

func writeFile(t *testing.T, dir, name, body string) string {
	t.Helper()
	p := filepath.Join(dir, name)
	require.NoError(t, os.WriteFile(p, []byte(body), 0o644))
	return p
}

func TestLoad_ReferenceConfig(t *testing.T) {
	dir := t.TempDir()
	path := writeFile(t, dir, "config.yaml", referenceYAML)

	c, err := Load(path)
	require.NoError(t, err)

	assert.Equal(t, 20000.0, c.Battery.CapacityWh)
	assert.Equal(t, -10000.0, c.Battery.MaxChargePowerW)
	assert.Equal(t, 80.0, c.Battery.InitialSOC)
	assert.Equal(t, "clamp", c.Battery.SOCPolicy)
	assert.Equal(t, 0.5, c.Simulation.LoadScale)
	assert.Equal(t, "net_load", c.Strategy.Name)
	assert.Equal(t, "info", c.Logging.Level)
	assert.Equal(t, "CET", c.Output.PlotTimezone)
	assert.True(t, c.Data.TrimWeather)
	assert.Equal(t, 20, c.Data.WeatherColumns.Irradiance)
	assert.Equal(t, dir, c.BaseDir)
	assert.InDelta(t, 1.0/60, c.TimestepHours(), 1e-15)
	require.NoError(t, c.ValidateData())

	b, err := c.NewBattery()
	require.NoError(t, err)
	assert.Equal(t, 80.0, b.State.SOC)
	assert.Equal(t, model.SOCClamp, b.Policy)

	pv, err := c.NewPVArray()
	require.NoError(t, err)
	out, err := pv.Output(1000)
	require.NoError(t, err)
	assert.InDelta(t, 15000, out, 1e-9)
}

func TestLoad_EnvOverrides(t *testing.T) {
	dir := t.TempDir()
	path := writeFile(t, dir, "config.yaml", referenceYAML)

	t.Setenv("MGSIM_BATTERY__CAPACITY_WH", "40000")
	t.Setenv("MGSIM_BATTERY__SOC_POLICY", "strict")
	t.Setenv("MGSIM_LOGGING__LEVEL", "debug")

	c, err := Load(path)
	require.NoError(t, err)
	assert.Equal(t, 40000.0, c.Battery.CapacityWh)
	assert.Equal(t, "strict", c.Battery.SOCPolicy)
	assert.Equal(t, "debug", c.Logging.Level)
}

func TestLoad_JSON(t *testing.T) {
	dir := t.TempDir()
	path := writeFile(t, dir, "config.json", `{
  "battery": {"capacity_wh": 1000, "max_charge_power_w": -500, "max_discharge_power_w": 500, "initial_soc": 50},
  "pv": {"efficiency": 0.2, "area_m2": 10}
}`)
	c, err := Load(path)
	require.NoError(t, err)
	assert.Equal(t, 1000.0, c.Battery.CapacityWh)
	assert.Equal(t, 60.0, c.Simulation.TimestepSeconds)
	assert.Equal(t, 1.0, c.Simulation.LoadScale)
}

func TestLoad_BatteryFileMerge(t *testing.T) {
	dir := t.TempDir()
	require.NoError(t, os.MkdirAll(filepath.Join(dir, "batteries"), 0o755))
	writeFile(t, filepath.Join(dir, "batteries"), "home.yaml", `
battery:
  name: home
  capacity_wh: 13500
  max_charge_power_w: -5000
  max_discharge_power_w: 5000
  initial_soc: 50
`)
	path := writeFile(t, dir, "config.yaml", `
battery_file: batteries/home.yaml
battery:
  initial_soc: 90
pv:
  efficiency: 0.2
  area_m2: 30
`)

	c, err := Load(path)
	require.NoError(t, err)
	assert.Equal(t, "home", c.Battery.Name)
	assert.Equal(t, 13500.0, c.Battery.CapacityWh)
	assert.Equal(t, 90.0, c.Battery.InitialSOC)
}

func TestLoad_Invalid(t *testing.T) {
	dir := t.TempDir()

	cases := map[string]string{
		"bad strategy":  referenceYAML + "strategy:\n  name: oracle\n",
		"bad log level": referenceYAML + "logging:\n  level: loud\n",
		"bad pv": `
battery: {capacity_wh: 100, max_charge_power_w: -1, max_discharge_power_w: 1, initial_soc: 10}
pv: {efficiency: 1.5, area_m2: 1}
`,
	}
	for name, body := range cases {
		t.Run(name, func(t *testing.T) {
			path := writeFile(t, dir, "c.yaml", body)
			_, err := Load(path)
			assert.Error(t, err)
		})
	}

	t.Run("battery config error keeps its kind", func(t *testing.T) {
		path := writeFile(t, dir, "c.yaml", `
battery: {capacity_wh: 0, max_charge_power_w: -1, max_discharge_power_w: 1, initial_soc: 10}
pv: {efficiency: 0.1, area_m2: 1}
`)
		_, err := Load(path)
		require.Error(t, err)
		assert.True(t, errors.Is(err, model.ErrConfig))
	})

	t.Run("unsupported extension", func(t *testing.T) {
		path := writeFile(t, dir, "c.toml", "")
		_, err := Load(path)
		assert.Error(t, err)
	})
}

func TestMergeBattery(t *testing.T) {
	base := BatteryConfig{Name: "a", CapacityWh: 100, MaxChargePowerW: -10, MaxDischargePowerW: 10, InitialSOC: 50}
	got := MergeBattery(base, BatteryConfig{MaxDischargePowerW: 20, SOCPolicy: "strict"})
	assert.Equal(t, "a", got.Name)
	assert.Equal(t, 20.0, got.MaxDischargePowerW)
	assert.Equal(t, -10.0, got.MaxChargePowerW)
	assert.Equal(t, "strict", got.SOCPolicy)
}

func TestConfig_YAMLRoundTrip(t *testing.T) {
	dir := t.TempDir()
	c, err := Load(writeFile(t, dir, "config.yaml", referenceYAML))
	require.NoError(t, err)

	raw, err := c.YAML()
	require.NoError(t, err)

	var back Config
	require.NoError(t, yaml.Unmarshal(raw, &back))
	back.BaseDir = c.BaseDir
	assert.Equal(t, *c, back)
}
