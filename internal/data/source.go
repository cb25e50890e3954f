package data

import (
	"fmt"
	"path/filepath"

	"microgrid-sim/internal/model"
)

// Source describes where a run's input series come from.
type Source struct {
	LoadFile       string         `yaml:"load_file" json:"load_file"`
	LoadColumn     int            `yaml:"load_column" json:"load_column"`
	LoadHasHeader  bool           `yaml:"load_has_header" json:"load_has_header"`
	WeatherFile    string         `yaml:"weather_file" json:"weather_file"`
	WeatherColumns WeatherColumns `yaml:"weather_columns" json:"weather_columns"`
	TrimWeather    bool           `yaml:"trim_weather" json:"trim_weather"`
}

// SetDefaults fills in the weather station column layout when none is given.
func (s *Source) SetDefaults() {
	if s.WeatherColumns.IsZero() {
		s.WeatherColumns = DefaultWeatherColumns
	}
}

func (s Source) Validate() error {
	if s.LoadFile == "" {
		return fmt.Errorf("data.load_file is required")
	}
	if s.WeatherFile == "" {
		return fmt.Errorf("data.weather_file is required")
	}
	if s.LoadColumn < 0 || s.WeatherColumns.Time < 0 || s.WeatherColumns.Irradiance < 0 {
		return fmt.Errorf("data columns must be >= 0")
	}
	return nil
}

// Resolve returns the load and weather paths, joining relative ones onto baseDir.
func (s Source) Resolve(baseDir string) (string, string) {
	return resolve(baseDir, s.LoadFile), resolve(baseDir, s.WeatherFile)
}

// Load reads both files and aligns them.
func (s Source) Load(baseDir string) (model.Samples, error) {
	if err := s.Validate(); err != nil {
		return nil, err
	}
	loadPath, weatherPath := s.Resolve(baseDir)

	load, err := LoadSeriesCSV(loadPath, LoadCSVOptions{Column: s.LoadColumn, HasHeader: s.LoadHasHeader})
	if err != nil {
		return nil, fmt.Errorf("load series: %w", err)
	}
	weather, err := LoadWeatherCSV(weatherPath, s.WeatherColumns)
	if err != nil {
		return nil, fmt.Errorf("weather series: %w", err)
	}
	return Align(load, weather, AlignOptions{TrimWeather: s.TrimWeather})
}

func resolve(baseDir, p string) string {
	if p == "" || filepath.IsAbs(p) || baseDir == "" {
		return p
	}
	return filepath.Join(baseDir, p)
}
