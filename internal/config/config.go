package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/knadh/koanf/parsers/json"
	kyaml "github.com/knadh/koanf/parsers/yaml"
	"github.com/knadh/koanf/providers/env"
	"github.com/knadh/koanf/providers/file"
	"github.com/knadh/koanf/v2"
	"github.com/rs/zerolog"
	"gopkg.in/yaml.v3"

	"microgrid-sim/internal/data"
	"microgrid-sim/internal/model"
	"microgrid-sim/internal/strategy"
)

// EnvPrefix marks environment overrides, e.g. MGSIM_BATTERY__CAPACITY_WH=40000.
// A double underscore separates nesting levels.
const EnvPrefix = "MGSIM_"

// Config is the on-disk configuration shape (YAML or JSON).
type Config struct {
	// Optional: load battery parameters from a separate YAML (e.g. examples/batteries/*.yaml).
	// If both BatteryFile and Battery are provided, Battery overrides BatteryFile.
	BatteryFile string           `yaml:"battery_file,omitempty"`
	Battery     BatteryConfig    `yaml:"battery"`
	PV          PVConfig         `yaml:"pv"`
	Simulation  SimulationConfig `yaml:"simulation"`
	Strategy    StrategyConfig   `yaml:"strategy"`
	Data        data.Source      `yaml:"data"`
	Output      OutputConfig     `yaml:"output"`
	Logging     LoggingConfig    `yaml:"logging"`

	// BaseDir is the directory relative data paths are resolved against.
	BaseDir string `yaml:"-"`
}

// BatteryConfig uses W, Wh and percent. The charge limit is negative.
type BatteryConfig struct {
	Name               string  `yaml:"name,omitempty"`
	CapacityWh         float64 `yaml:"capacity_wh"`
	MaxChargePowerW    float64 `yaml:"max_charge_power_w"`
	MaxDischargePowerW float64 `yaml:"max_discharge_power_w"`
	InitialSOC         float64 `yaml:"initial_soc"`
	SOCPolicy          string  `yaml:"soc_policy,omitempty"`
}

type PVConfig struct {
	Efficiency float64 `yaml:"efficiency"`
	AreaM2     float64 `yaml:"area_m2"`
}

type SimulationConfig struct {
	TimestepSeconds float64 `yaml:"timestep_seconds"`
	// LoadScale multiplies every load sample (the reference site halves its meter readings).
	LoadScale float64 `yaml:"load_scale"`
}

type StrategyConfig struct {
	Name string `yaml:"name"`
}

type OutputConfig struct {
	LedgerCSV    string `yaml:"ledger_csv,omitempty"`
	Plot         string `yaml:"plot,omitempty"`
	PlotTimezone string `yaml:"plot_timezone,omitempty"`
}

type LoggingConfig struct {
	Level string `yaml:"level"`
}

func Load(path string) (*Config, error) {
	c, err := LoadUnchecked(path)
	if err != nil {
		return nil, err
	}
	c.SetDefaults()
	if err := c.Validate(); err != nil {
		return nil, err
	}
	return c, nil
}

// LoadUnchecked loads and merges config, but does not apply defaults or validate it.
// Useful for debugging/printing partial configs.
func LoadUnchecked(path string) (*Config, error) {
	var parser koanf.Parser
	switch strings.ToLower(filepath.Ext(path)) {
	case ".yaml", ".yml":
		parser = kyaml.Parser()
	case ".json":
		parser = json.Parser()
	default:
		return nil, fmt.Errorf("unsupported config format: %s", filepath.Ext(path))
	}

	k := koanf.New(".")
	if err := k.Load(file.Provider(path), parser); err != nil {
		return nil, err
	}
	if err := k.Load(env.Provider(EnvPrefix, ".", envKey), nil); err != nil {
		return nil, err
	}

	var c Config
	if err := k.UnmarshalWithConf("", &c, koanf.UnmarshalConf{Tag: "yaml"}); err != nil {
		return nil, err
	}
	c.BaseDir = filepath.Dir(path)

	// If battery_file is set, load it and merge in any explicit overrides from c.Battery.
	if c.BatteryFile != "" {
		batteryPath := c.BatteryFile
		if !filepath.IsAbs(batteryPath) {
			// Prefer interpreting relative paths as relative to the config file directory,
			// but fall back to the provided path (relative to cwd) if that doesn't exist.
			cand := filepath.Join(c.BaseDir, batteryPath)
			if _, err := os.Stat(cand); err == nil {
				batteryPath = cand
			}
		}
		loaded, err := LoadBatteryFile(batteryPath)
		if err != nil {
			return nil, err
		}
		c.Battery = MergeBattery(loaded, c.Battery)
	}
	return &c, nil
}

func envKey(s string) string {
	s = strings.ToLower(strings.TrimPrefix(s, EnvPrefix))
	return strings.ReplaceAll(s, "__", ".")
}

// SetDefaults applies sane defaults.
func (c *Config) SetDefaults() {
	if c.Simulation.TimestepSeconds == 0 {
		c.Simulation.TimestepSeconds = 60
	}
	if c.Simulation.LoadScale == 0 {
		c.Simulation.LoadScale = 1
	}
	if c.Strategy.Name == "" {
		c.Strategy.Name = strategy.NetLoadName
	}
	if c.Battery.SOCPolicy == "" {
		c.Battery.SOCPolicy = string(model.SOCClamp)
	}
	if c.Output.PlotTimezone == "" {
		c.Output.PlotTimezone = "UTC"
	}
	if c.Logging.Level == "" {
		c.Logging.Level = "info"
	}
	c.Data.SetDefaults()
}

func (c *Config) Validate() error {
	if c == nil {
		return errors.New("config is nil")
	}
	if _, err := strategy.New(c.Strategy.Name); err != nil {
		return fmt.Errorf("strategy config invalid: %w", err)
	}
	if c.Simulation.LoadScale < 0 {
		return errors.New("simulation.load_scale must be >= 0")
	}
	// Validate battery and PV params by constructing the models.
	if _, err := c.NewBattery(); err != nil {
		return fmt.Errorf("battery config invalid: %w", err)
	}
	if _, err := c.NewPVArray(); err != nil {
		return fmt.Errorf("pv config invalid: %w", err)
	}
	if _, err := zerolog.ParseLevel(c.Logging.Level); err != nil {
		return fmt.Errorf("logging.level invalid: %w", err)
	}
	return nil
}

// ValidateData checks the data section; runs fed from the API skip it.
func (c *Config) ValidateData() error {
	return c.Data.Validate()
}

// TimestepHours converts the configured timestep for the battery model.
func (c *Config) TimestepHours() float64 {
	return c.Simulation.TimestepSeconds / 3600
}

func (b BatteryConfig) ToModelParams(timestepHours float64) model.BatteryParams {
	return model.BatteryParams{
		CapacityWh:         b.CapacityWh,
		MaxChargePowerW:    b.MaxChargePowerW,
		MaxDischargePowerW: b.MaxDischargePowerW,
		TimestepHours:      timestepHours,
	}
}

// NewBattery builds a fresh battery at the configured initial SOC.
func (c *Config) NewBattery() (*model.Battery, error) {
	policy, err := model.ParseSOCPolicy(c.Battery.SOCPolicy)
	if err != nil {
		return nil, err
	}
	return model.NewBattery(c.Battery.ToModelParams(c.TimestepHours()), c.Battery.InitialSOC, model.WithSOCPolicy(policy))
}

func (c *Config) NewPVArray() (*model.PVArray, error) {
	return model.NewPVArray(model.PVParams{Efficiency: c.PV.Efficiency, AreaM2: c.PV.AreaM2})
}

// YAML renders the effective configuration.
func (c *Config) YAML() ([]byte, error) {
	return yaml.Marshal(c)
}

type batteryFileWrapper struct {
	Battery BatteryConfig `yaml:"battery"`
}

// LoadBatteryFile reads a battery preset file ("battery:" at the top level).
func LoadBatteryFile(path string) (BatteryConfig, error) {
	raw, err := os.ReadFile(path)
	if err != nil {
		return BatteryConfig{}, err
	}
	var w batteryFileWrapper
	if err := yaml.Unmarshal(raw, &w); err != nil {
		return BatteryConfig{}, err
	}
	return w.Battery, nil
}

// MergeBattery overlays non-zero fields from override onto base.
// This is used when loading a battery file and then applying overrides from the request.
func MergeBattery(base, override BatteryConfig) BatteryConfig {
	out := base
	if override.Name != "" {
		out.Name = override.Name
	}
	if override.CapacityWh != 0 {
		out.CapacityWh = override.CapacityWh
	}
	if override.MaxChargePowerW != 0 {
		out.MaxChargePowerW = override.MaxChargePowerW
	}
	if override.MaxDischargePowerW != 0 {
		out.MaxDischargePowerW = override.MaxDischargePowerW
	}
	// Note: 0 is a legal initial SOC, but an explicit 0 cannot be told apart from "unset" here.
	if override.InitialSOC != 0 {
		out.InitialSOC = override.InitialSOC
	}
	if override.SOCPolicy != "" {
		out.SOCPolicy = override.SOCPolicy
	}
	return out
}
