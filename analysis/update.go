package analysis

import (
	"log/slog"
	"slices"

	"github.com/zyedidia/generic/mapset"

	"github.com/nstehr/vimy/vimy-terrain/evaluation"
	"github.com/nstehr/vimy/vimy-terrain/model"
	"github.com/nstehr/vimy/vimy-terrain/regions"
	"github.com/nstehr/vimy/vimy-terrain/rules"
)

// ExpandStatus is the per-frame state of one expansion location.
type ExpandStatus struct {
	RegionID  int        `json:"regionId"` // -1 when the anchor has no expand region
	Position  model.Cell `json:"position"`
	Type      string     `json:"type"`
	EnemySide bool       `json:"enemySide"` // Type is relative to the enemy start
	Depleted  bool       `json:"depleted"`
	Blocked   bool       `json:"blocked"`
}

// Report is the outcome of one frame.
type Report struct {
	GameLoop   int            `json:"gameLoop"`
	Ready      bool           `json:"ready"`
	Obstructed []int          `json:"obstructed"`
	Expands    []ExpandStatus `json:"expands"`
	Alerts     []rules.Alert  `json:"alerts"`
	// Route is the region path from our start to the first enemy start that
	// avoids obstructed ramps; empty when none exists.
	Route []int `json:"route"`
}

// Update folds a frame into the analysis. It never fails: before setup it
// reports not ready, and problems inside a frame are logged.
func (e *Engine) Update(f model.Frame) Report {
	rep := Report{GameLoop: f.GameLoop}
	if !e.ready {
		return rep
	}

	if !e.setupFresh || f.GameLoop != e.setupLoop {
		e.tracker.Update(f)
	}
	e.setupFresh = false
	if changed := e.updateObstacles(f.Blocked); len(changed) > 0 {
		slog.Debug("obstacle overlay changed", "cells", len(changed))
		e.oracle.InvalidateAround(changed)
	}
	e.oracle.Update()
	e.eval.Update(f)

	rep.Ready = true
	rep.Obstructed = e.oracle.Obstructed()
	rep.Expands = e.expandStatuses()
	rep.Route = e.route()
	if e.deps.Rules != nil {
		rep.Alerts = e.deps.Rules.Evaluate(e.snapshot(f))
	}
	return rep
}

// updateObstacles installs the frame's blocked cells and returns the cells
// that became blocked or free since the last frame.
func (e *Engine) updateObstacles(blocked []model.Cell) []model.Cell {
	next := mapset.New[model.Cell]()
	var changed []model.Cell
	for _, c := range blocked {
		if next.Has(c) {
			continue
		}
		next.Put(c)
		if !e.obstacles.Has(c) {
			changed = append(changed, c)
		}
	}
	e.obstacles.Each(func(c model.Cell) {
		if !next.Has(c) {
			changed = append(changed, c)
		}
	})
	e.obstacles = next
	e.deps.Terrain.SetObstacles(blocked)
	return changed
}

func (e *Engine) expandStatuses() []ExpandStatus {
	out := make([]ExpandStatus, 0, len(e.locations))
	for _, loc := range e.locations {
		id := -1
		if r, ok := e.data.RegionAt(loc.Position); ok && r.ExpandLocation == loc {
			id = r.ID
		}
		out = append(out, ExpandStatus{
			RegionID:  id,
			Position:  loc.Position,
			Type:      loc.Type.String(),
			EnemySide: loc.EnemySide,
			Depleted:  loc.IsDepleted(),
			Blocked:   loc.IsBlocked(),
		})
	}
	return out
}

func (e *Engine) route() []int {
	if len(e.deps.EnemyStarts) == 0 {
		return nil
	}
	from, ok := e.data.RegionAt(e.deps.Start)
	if !ok {
		return nil
	}
	to, ok := e.data.RegionAt(e.deps.EnemyStarts[0])
	if !ok {
		return nil
	}
	return e.paths.FindRegionPath(e.data, from.ID, to.ID)
}

// snapshot builds the rule environment for every region.
func (e *Engine) snapshot(f model.Frame) []rules.RegionEnv {
	out := make([]rules.RegionEnv, 0, len(e.data.Regions))
	for _, r := range e.data.Regions {
		env := rules.RegionEnv{
			ID:           r.ID,
			Type:         r.Type.String(),
			IsObstructed: r.IsObstructed,
			SelfForce:    e.eval.Force(model.Self, r.ID),
			SelfValue:    e.eval.Value(model.Self, r.ID),
			EnemyForce:   e.eval.Force(model.Enemy, r.ID),
			EnemyValue:   e.eval.Value(model.Enemy, r.ID),
			Visible:      visibleFraction(f, e.data.Width, r),
			GameLoop:     f.GameLoop,
		}
		if loc := r.ExpandLocation; loc != nil {
			env.ExpandType = loc.Type.String()
			env.EnemySide = loc.EnemySide
			env.IsDepleted = loc.IsDepleted()
			env.IsBlocked = loc.IsBlocked()
		}
		out = append(out, env)
	}
	return out
}

func visibleFraction(f model.Frame, width int, r *regions.Region) float64 {
	if len(r.Cells) == 0 {
		return 0
	}
	seen := 0
	for _, c := range r.Cells {
		if f.VisibilityAt(width, c) == model.Visible {
			seen++
		}
	}
	return float64(seen) / float64(len(r.Cells))
}

// Force and Value expose the evaluator to callers outside the frame loop.
func (e *Engine) Force(a model.Alliance, regionID int) float64 {
	if !e.ready {
		return evaluation.Unknown
	}
	return e.eval.Force(a, regionID)
}

func (e *Engine) Value(a model.Alliance, regionID int) float64 {
	if !e.ready {
		return evaluation.Unknown
	}
	return e.eval.Value(a, regionID)
}

// Summary describes the region graph, sent once when analysis becomes ready.
type Summary struct {
	MapName     string         `json:"mapName"`
	Regions     []RegionInfo   `json:"regions"`
	Chokepoints []model.Cell   `json:"chokepoints"`
	Expands     []ExpandStatus `json:"expands"`
}

type RegionInfo struct {
	ID        int        `json:"id"`
	Type      string     `json:"type"`
	Center    model.Cell `json:"center"`
	Radius    float64    `json:"radius"`
	Cells     int        `json:"cells"`
	Neighbors []int      `json:"neighbors"`
}

func (e *Engine) Summary() *Summary {
	if !e.ready {
		return nil
	}
	s := &Summary{
		MapName:     e.data.MapName,
		Chokepoints: slices.Clone(e.data.Chokepoints),
		Expands:     e.expandStatuses(),
	}
	for _, r := range e.data.Regions {
		s.Regions = append(s.Regions, RegionInfo{
			ID:        r.ID,
			Type:      r.Type.String(),
			Center:    r.Center,
			Radius:    r.ApproximatedRadius,
			Cells:     len(r.Cells),
			Neighbors: r.NeighborIDs(),
		})
	}
	return s
}
