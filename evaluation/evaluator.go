// Package evaluation keeps decaying force and value estimates per region for
// the player and the enemy.
package evaluation

import (
	"log/slog"

	"github.com/nstehr/vimy/vimy-terrain/model"
	"github.com/nstehr/vimy/vimy-terrain/regions"
)

const (
	// Unknown is returned for lookups of an untracked alliance or region.
	Unknown = -1.0

	// Intriguing separates scalars that react instantly to rises from
	// scalars that are still ramping up.
	Intriguing = 1.0
)

type Config struct {
	ValueDecay Decay
	ForceDecay Decay

	// RiseRate caps how fast a scalar at or below Intriguing may grow, per second.
	RiseRate float64

	// UnknownValue is added to enemy value for a region with no visible cell.
	UnknownValue float64
}

func DefaultConfig() Config {
	return Config{
		ValueDecay:   LinearDecay{PerSecond: 0.5},
		ForceDecay:   ExponentialDecay{HalfLife: 20},
		RiseRate:     2,
		UnknownValue: 2,
	}
}

type scalars struct {
	force []float64
	value []float64
}

// Evaluator owns the per-alliance scalars. Self includes allied units; the
// enemy is seen through the visibility grid only.
type Evaluator struct {
	data *regions.Data
	cfg  Config

	state    map[model.Alliance]*scalars
	lastLoop int
	started  bool
}

func New(d *regions.Data, cfg Config) *Evaluator {
	e := &Evaluator{
		data:  d,
		cfg:   cfg,
		state: make(map[model.Alliance]*scalars),
	}
	for _, a := range []model.Alliance{model.Self, model.Enemy} {
		e.state[a] = &scalars{
			force: make([]float64, len(d.Regions)),
			value: make([]float64, len(d.Regions)),
		}
	}
	return e
}

// Update folds one frame of observations into the scalars.
func (e *Evaluator) Update(f model.Frame) {
	dt := 0.0
	if e.started {
		dt = float64(f.GameLoop-e.lastLoop) / model.GameLoopsPerSecond
		if dt < 0 {
			dt = 0
		}
	}

	observed := map[model.Alliance]*scalars{
		model.Self:  {force: make([]float64, len(e.data.Regions)), value: make([]float64, len(e.data.Regions))},
		model.Enemy: {force: make([]float64, len(e.data.Regions)), value: make([]float64, len(e.data.Regions))},
	}
	for _, u := range f.Units {
		a := u.Alliance
		if a == model.Ally {
			a = model.Self
		}
		obs, ok := observed[a]
		if !ok {
			continue
		}
		r, ok := e.data.RegionAt(u.Cell())
		if !ok {
			continue
		}
		obs.force[r.ID] += ForceOf(u)
		obs.value[r.ID] += ValueOf(u)
	}

	enemy := observed[model.Enemy]
	for _, r := range e.data.Regions {
		enemy.value[r.ID] += e.cfg.UnknownValue * hiddenFraction(f, e.data.Width, r)
	}

	for a, s := range e.state {
		obs := observed[a]
		for i := range s.force {
			if !e.started {
				s.force[i] = obs.force[i]
				s.value[i] = obs.value[i]
				continue
			}
			s.force[i] = e.accumulate(s.force[i], obs.force[i], e.cfg.ForceDecay, dt)
			s.value[i] = e.accumulate(s.value[i], obs.value[i], e.cfg.ValueDecay, dt)
		}
	}
	e.lastLoop = f.GameLoop
	e.started = true
}

// accumulate applies the two-sided policy: above Intriguing a rise registers
// at once and a drop is limited by decay; at or below Intriguing a drop
// registers at once and a rise is limited by RiseRate.
func (e *Evaluator) accumulate(prev, observed float64, decay Decay, dt float64) float64 {
	if prev > Intriguing {
		return max(observed, decay.Apply(prev, dt))
	}
	return min(observed, prev+e.cfg.RiseRate*dt)
}

func hiddenFraction(f model.Frame, width int, r *regions.Region) float64 {
	if len(r.Cells) == 0 {
		return 0
	}
	hidden := 0
	for _, c := range r.Cells {
		if f.VisibilityAt(width, c) != model.Visible {
			hidden++
		}
	}
	return float64(hidden) / float64(len(r.Cells))
}

func (e *Evaluator) lookup(a model.Alliance, id int) (*scalars, bool) {
	s, ok := e.state[a]
	if !ok {
		slog.Error("evaluation lookup for untracked alliance", "alliance", a, "region", id)
		return nil, false
	}
	if id < 0 || id >= len(s.force) {
		slog.Error("evaluation lookup for unknown region", "alliance", a, "region", id)
		return nil, false
	}
	return s, true
}

// Force returns the alliance's current force in a region, or Unknown.
func (e *Evaluator) Force(a model.Alliance, id int) float64 {
	s, ok := e.lookup(a, id)
	if !ok {
		return Unknown
	}
	return s.force[id]
}

// Value returns the alliance's current value in a region, or Unknown.
func (e *Evaluator) Value(a model.Alliance, id int) float64 {
	s, ok := e.lookup(a, id)
	if !ok {
		return Unknown
	}
	return s.value[id]
}
