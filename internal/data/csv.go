package data

import (
	"fmt"
	"io"
	"math"
	"os"
	"time"

	"github.com/go-gota/gota/dataframe"
	"github.com/go-gota/gota/series"

	"microgrid-sim/internal/model"
)

// Cells matching one of these are treated as missing.
var naValues = []string{"NA", "NaN", ""}

// WeatherColumns are zero-based column positions in the weather file.
// A negative WindSpeed skips that column.
type WeatherColumns struct {
	Time       int `yaml:"time" json:"time"`
	WindSpeed  int `yaml:"wind_speed" json:"wind_speed"`
	Irradiance int `yaml:"irradiance" json:"irradiance"`
}

// DefaultWeatherColumns matches the weather station export: epoch seconds,
// wind speed in column 10 and global irradiance in column 20.
var DefaultWeatherColumns = WeatherColumns{Time: 0, WindSpeed: 10, Irradiance: 20}

// IsZero reports whether no column was configured.
func (c WeatherColumns) IsZero() bool { return c == WeatherColumns{} }

// Weather holds the columns read from a weather file, aligned by row.
type Weather struct {
	Time       []time.Time
	WindSpeed  []float64
	Irradiance []float64
}

func (w *Weather) Len() int { return len(w.Irradiance) }

type LoadCSVOptions struct {
	Column    int
	HasHeader bool
}

// LoadSeriesCSV reads one numeric column from a CSV file.
func LoadSeriesCSV(path string, opts LoadCSVOptions) ([]float64, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer f.Close()
	return ReadSeries(f, path, opts)
}

// ReadSeries reads one numeric column from CSV. name labels errors.
func ReadSeries(r io.Reader, name string, opts LoadCSVOptions) ([]float64, error) {
	df, err := readFrame(r, name, opts.HasHeader)
	if err != nil {
		return nil, err
	}
	return floatColumn(df, name, opts.Column)
}

// LoadWeatherCSV reads time, wind speed and irradiance from a weather file with a header row.
func LoadWeatherCSV(path string, cols WeatherColumns) (*Weather, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer f.Close()
	return ReadWeather(f, path, cols)
}

func ReadWeather(r io.Reader, name string, cols WeatherColumns) (*Weather, error) {
	df, err := readFrame(r, name, true)
	if err != nil {
		return nil, err
	}

	epochs, err := floatColumn(df, name+" time", cols.Time)
	if err != nil {
		return nil, err
	}
	irr, err := floatColumn(df, name+" irradiance", cols.Irradiance)
	if err != nil {
		return nil, err
	}
	wind := make([]float64, len(irr))
	if cols.WindSpeed >= 0 {
		if wind, err = floatColumn(df, name+" wind_speed", cols.WindSpeed); err != nil {
			return nil, err
		}
	}

	w := &Weather{
		Time:       make([]time.Time, len(epochs)),
		WindSpeed:  wind,
		Irradiance: irr,
	}
	for i, e := range epochs {
		sec, frac := math.Modf(e)
		w.Time[i] = time.Unix(int64(sec), int64(frac*1e9)).UTC()
	}
	return w, nil
}

func readFrame(r io.Reader, name string, header bool) (dataframe.DataFrame, error) {
	df := dataframe.ReadCSV(r,
		dataframe.HasHeader(header),
		dataframe.DetectTypes(false),
		dataframe.DefaultType(series.Float),
		dataframe.NaNValues(naValues),
	)
	if df.Err != nil {
		return df, fmt.Errorf("read %s: %w", name, df.Err)
	}
	return df, nil
}

// floatColumn extracts column idx, rejecting missing or non-numeric cells.
func floatColumn(df dataframe.DataFrame, name string, idx int) ([]float64, error) {
	names := df.Names()
	if idx < 0 || idx >= len(names) {
		return nil, &model.InputError{
			Series: name,
			Index:  -1,
			Reason: fmt.Sprintf("column %d out of range (file has %d columns)", idx, len(names)),
		}
	}
	vals := df.Col(names[idx]).Float()
	for i, v := range vals {
		if math.IsNaN(v) || math.IsInf(v, 0) {
			return nil, &model.InputError{Series: name, Index: i, Reason: "missing or non-numeric value"}
		}
	}
	return vals, nil
}
