package data

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"microgrid-sim/internal/model"
)

const epoch0 = 1415491200 // 2014-11-09T00:00:00Z

// weatherCSV builds a 21-column weather export with a header row.
func weatherCSV(rows int) string {
	var b strings.Builder
	header := make([]string, 21)
	for i := range header {
		header[i] = fmt.Sprintf("c%d", i)
	}
	header[0], header[10], header[20] = "time", "wind", "ghi"
	b.WriteString(strings.Join(header, ",") + "\n")

	for r := 0; r < rows; r++ {
		cols := make([]string, 21)
		for i := range cols {
			cols[i] = "0"
		}
		cols[0] = fmt.Sprint(epoch0 + 60*r)
		cols[10] = fmt.Sprintf("%.1f", 3.5+float64(r))
		cols[20] = fmt.Sprint(100 * r)
		b.WriteString(strings.Join(cols, ",") + "\n")
	}
	return b.String()
}

func writeFile(t *testing.T, dir, name, content string) string {
	t.Helper()
	p := filepath.Join(dir, name)
	require.NoError(t, os.WriteFile(p, []byte(content), 0o644))
	return p
}

func TestReadSeries(t *testing.T) {
	vals, err := ReadSeries(strings.NewReader("1000,x\n1100.5,y\n900,z\n"), "load.csv", LoadCSVOptions{Column: 0})
	require.NoError(t, err)
	assert.Equal(t, []float64{1000, 1100.5, 900}, vals)
}

func TestReadSeries_MissingValue(t *testing.T) {
	_, err := ReadSeries(strings.NewReader("1000\n1100\nNA\n"), "load.csv", LoadCSVOptions{})
	require.Error(t, err)

	var inErr *model.InputError
	require.True(t, errors.As(err, &inErr))
	assert.Equal(t, 2, inErr.Index)
	assert.Equal(t, "load.csv", inErr.Series)
}

func TestReadSeries_ColumnOutOfRange(t *testing.T) {
	_, err := ReadSeries(strings.NewReader("1\n2\n"), "load.csv", LoadCSVOptions{Column: 3})
	assert.True(t, errors.Is(err, model.ErrInput))
}

func TestReadWeather(t *testing.T) {
	w, err := ReadWeather(strings.NewReader(weatherCSV(3)), "weather.csv", DefaultWeatherColumns)
	require.NoError(t, err)
	require.Equal(t, 3, w.Len())

	assert.Equal(t, time.Date(2014, 11, 9, 0, 2, 0, 0, time.UTC), w.Time[2])
	assert.Equal(t, []float64{3.5, 4.5, 5.5}, w.WindSpeed)
	assert.Equal(t, []float64{0, 100, 200}, w.Irradiance)
}

func TestReadWeather_SkipWind(t *testing.T) {
	cols := DefaultWeatherColumns
	cols.WindSpeed = -1
	w, err := ReadWeather(strings.NewReader(weatherCSV(2)), "weather.csv", cols)
	require.NoError(t, err)
	assert.Equal(t, []float64{0, 0}, w.WindSpeed)
}

func TestAlign(t *testing.T) {
	w, err := ReadWeather(strings.NewReader(weatherCSV(4)), "weather.csv", DefaultWeatherColumns)
	require.NoError(t, err)

	_, err = Align([]float64{1, 2, 3}, w, AlignOptions{})
	assert.True(t, errors.Is(err, model.ErrInput))

	samples, err := Align([]float64{1, 2, 3}, w, AlignOptions{TrimWeather: true})
	require.NoError(t, err)
	require.Len(t, samples, 3)
	assert.Equal(t, 200.0, samples[2].IrradianceWm2)
	assert.Equal(t, 3.0, samples[2].LoadW)

	_, err = Align([]float64{1, 2, 3, 4, 5}, w, AlignOptions{TrimWeather: true})
	assert.True(t, errors.Is(err, model.ErrInput))

	_, err = Align(nil, w, AlignOptions{})
	assert.True(t, errors.Is(err, model.ErrInput))
}

func TestSourceLoad(t *testing.T) {
	dir := t.TempDir()
	writeFile(t, dir, "load.csv", "2000\n2100\n2200\n")
	writeFile(t, dir, "weather.csv", weatherCSV(4))

	src := Source{LoadFile: "load.csv", WeatherFile: "weather.csv", TrimWeather: true}
	src.SetDefaults()
	assert.Equal(t, DefaultWeatherColumns, src.WeatherColumns)

	samples, err := src.Load(dir)
	require.NoError(t, err)
	require.Len(t, samples, 3)
	assert.Equal(t, 2100.0, samples[1].LoadW)

	_, err = Source{WeatherFile: "weather.csv"}.Load(dir)
	assert.Error(t, err)
}

func TestCacheLoad(t *testing.T) {
	dir := t.TempDir()
	loadPath := writeFile(t, dir, "load.csv", "2000\n2100\n")
	writeFile(t, dir, "weather.csv", weatherCSV(2))
	src := Source{LoadFile: "load.csv", WeatherFile: "weather.csv", WeatherColumns: DefaultWeatherColumns}

	c := NewCache(time.Minute)
	first, err := c.Load(src, dir)
	require.NoError(t, err)
	assert.Equal(t, 1, c.Len())

	second, err := c.Load(src, dir)
	require.NoError(t, err)
	assert.Equal(t, first, second)
	assert.Equal(t, 1, c.Len())

	// A rewritten file (different size) produces a different key.
	require.NoError(t, os.WriteFile(loadPath, []byte("3000.5\n3100\n"), 0o644))
	third, err := c.Load(src, dir)
	require.NoError(t, err)
	assert.Equal(t, 3000.5, third[0].LoadW)
	assert.Equal(t, 2, c.Len())
}

func TestCacheExpiry(t *testing.T) {
	c := NewCache(time.Minute)
	now := time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)
	c.now = func() time.Time { return now }

	c.Set("k", model.Samples{{LoadW: 1}})
	_, ok := c.Get("k")
	assert.True(t, ok)

	now = now.Add(2 * time.Minute)
	_, ok = c.Get("k")
	assert.False(t, ok)

	c.Prune()
	assert.Equal(t, 0, c.Len())

	c.Set("a", nil)
	c.Set("b", nil)
	assert.Equal(t, 2, c.Len())
	c.Clear()
	assert.Equal(t, 0, c.Len())

	var nilCache *Cache
	_, ok = nilCache.Get("k")
	assert.False(t, ok)
	nilCache.Set("k", nil)
}

func TestListDatasets(t *testing.T) {
	dir := t.TempDir()

	empty, err := ListDatasets(dir)
	require.NoError(t, err)
	assert.Empty(t, empty)

	writeFile(t, dir, "datasets.yaml", `datasets:
  - id: nov9
    name: Weather station, 9 Nov 2014
    resolution_seconds: 60
    load_file: load.csv
    weather_file: weather_2014_nov_9.csv
    trim_weather: true
  - id: custom
    load_file: l.csv
    weather_file: w.csv
    weather_columns: {time: 0, wind_speed: -1, irradiance: 2}
`)
	all, err := ListDatasets(dir)
	require.NoError(t, err)
	require.Len(t, all, 2)

	assert.Equal(t, "load.csv", all[0].LoadFile)
	assert.True(t, all[0].TrimWeather)
	assert.Equal(t, DefaultWeatherColumns, all[0].WeatherColumns)
	assert.Equal(t, "custom", all[1].Name)
	assert.Equal(t, 2, all[1].WeatherColumns.Irradiance)

	ds, err := FindDataset(dir, "custom")
	require.NoError(t, err)
	assert.Equal(t, "w.csv", ds.WeatherFile)

	_, err = FindDataset(dir, "missing")
	assert.True(t, errors.Is(err, ErrNotFound))
}
