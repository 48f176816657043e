package evaluation

import (
	"fmt"
	"math"
)

// Decay lowers a scalar over dt seconds without going below zero.
type Decay interface {
	Apply(v, dt float64) float64
}

// LinearDecay subtracts a fixed amount per second.
type LinearDecay struct {
	PerSecond float64
}

func (d LinearDecay) Apply(v, dt float64) float64 {
	return math.Max(0, v-d.PerSecond*dt)
}

// ExponentialDecay halves the value every HalfLife seconds.
type ExponentialDecay struct {
	HalfLife float64
}

func (d ExponentialDecay) Apply(v, dt float64) float64 {
	if d.HalfLife <= 0 {
		return 0
	}
	return v * math.Exp2(-dt/d.HalfLife)
}

// NewDecay builds a strategy from its config name: "linear" takes a per-second
// rate, "exponential" a half-life in seconds.
func NewDecay(kind string, param float64) (Decay, error) {
	switch kind {
	case "linear":
		return LinearDecay{PerSecond: param}, nil
	case "exponential":
		return ExponentialDecay{HalfLife: param}, nil
	default:
		return nil, fmt.Errorf("unknown decay strategy %q", kind)
	}
}
