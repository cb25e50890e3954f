package strategy

import (
	"fmt"

	"microgrid-sim/internal/model"
)

type Context struct {
	Index   int
	Sample  model.Sample
	LoadW   float64 // scaled load for this step
	PVW     float64
	Battery *model.Battery
}

// Strategy picks the battery power to request for one step.
// Positive requests discharge, negative requests charge.
type Strategy interface {
	Name() string
	Decide(ctx Context) float64
}

// New returns the strategy registered under name. Empty selects NetLoadName.
func New(name string) (Strategy, error) {
	switch name {
	case "", NetLoadName:
		return NetLoad{}, nil
	default:
		return nil, fmt.Errorf("unsupported strategy: %q", name)
	}
}

// Names lists the available strategies.
func Names() []string { return []string{NetLoadName} }
