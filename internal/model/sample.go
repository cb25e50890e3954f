package model

import "time"

// Sample is one aligned row of the input series.
// Index i of every input series refers to the same timestamp.
type Sample struct {
	Time          time.Time
	LoadW         float64
	IrradianceWm2 float64
	WindSpeedMs   float64
}

// Samples is an ordered input series.
type Samples []Sample

// Span returns the first and last timestamps. Zero values for an empty series.
func (s Samples) Span() (time.Time, time.Time) {
	if len(s) == 0 {
		return time.Time{}, time.Time{}
	}
	return s[0].Time, s[len(s)-1].Time
}

// Validate checks every numeric field is finite and time never goes backwards.
func (s Samples) Validate() error {
	for i, it := range s {
		if !finite(it.LoadW) {
			return &InputError{Series: "load", Index: i, Reason: "not finite"}
		}
		if !finite(it.IrradianceWm2) {
			return &InputError{Series: "irradiance", Index: i, Reason: "not finite"}
		}
		if !finite(it.WindSpeedMs) {
			return &InputError{Series: "wind_speed", Index: i, Reason: "not finite"}
		}
		if i > 0 && !it.Time.IsZero() && it.Time.Before(s[i-1].Time) {
			return &InputError{Series: "time", Index: i, Reason: "timestamps must be non-decreasing"}
		}
	}
	return nil
}
