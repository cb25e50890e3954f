package data

import (
	"fmt"

	"microgrid-sim/internal/model"
)

type AlignOptions struct {
	// TrimWeather drops weather rows beyond the load length instead of failing.
	TrimWeather bool
}

// Align zips the load and weather series into one sample series.
// Both must have the same length unless opts.TrimWeather allows a longer weather file.
func Align(load []float64, w *Weather, opts AlignOptions) (model.Samples, error) {
	if w == nil {
		return nil, fmt.Errorf("weather is nil")
	}
	n := len(load)
	if n == 0 {
		return nil, &model.InputError{Series: "load", Index: -1, Reason: "empty series"}
	}
	switch {
	case w.Len() == n:
	case w.Len() > n && opts.TrimWeather:
	default:
		return nil, &model.InputError{
			Series: "weather",
			Index:  -1,
			Reason: fmt.Sprintf("length %d does not match load length %d", w.Len(), n),
		}
	}

	out := make(model.Samples, n)
	for i := range out {
		out[i] = model.Sample{
			Time:          w.Time[i],
			LoadW:         load[i],
			IrradianceWm2: w.Irradiance[i],
			WindSpeedMs:   w.WindSpeed[i],
		}
	}
	if err := out.Validate(); err != nil {
		return nil, err
	}
	return out, nil
}
