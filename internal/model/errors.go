package model

import (
	"errors"
	"fmt"
)

// Sentinel kinds, usable with errors.Is on any of the typed errors below.
var (
	ErrConfig = errors.New("invalid configuration")
	ErrInput  = errors.New("invalid input")
	ErrBounds = errors.New("state of charge out of bounds")
)

// ConfigError reports a parameter rejected at construction time.
type ConfigError struct {
	Field  string
	Reason string
}

func (e *ConfigError) Error() string {
	return fmt.Sprintf("%s: %s", e.Field, e.Reason)
}

func (e *ConfigError) Is(target error) bool { return target == ErrConfig }

// InputError reports a bad sample in an input series.
// Index is -1 when the error concerns the series as a whole (e.g. length).
type InputError struct {
	Series string
	Index  int
	Reason string
}

func (e *InputError) Error() string {
	if e.Index < 0 {
		return fmt.Sprintf("%s: %s", e.Series, e.Reason)
	}
	return fmt.Sprintf("%s[%d]: %s", e.Series, e.Index, e.Reason)
}

func (e *InputError) Is(target error) bool { return target == ErrInput }

// BoundsError is returned under SOCStrict when a step would leave [0, 100].
type BoundsError struct {
	SOC float64 // the SOC the step would have produced
}

func (e *BoundsError) Error() string {
	return fmt.Sprintf("state of charge would reach %.4f%%, outside [0, 100]", e.SOC)
}

func (e *BoundsError) Is(target error) bool { return target == ErrBounds }
