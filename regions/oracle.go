package regions

import (
	"log/slog"

	"github.com/nstehr/vimy/vimy-terrain/model"
)

// Terrain is the walkability view the oracle needs.
type Terrain interface {
	IsWalkable(c model.Cell, considerObstacles bool) bool
	SearchRadius(center model.Cell, radius float64) []model.Cell
}

// Pathfinder returns the ordered cells from -> to, or nil when no path exists.
type Pathfinder interface {
	FindPath(from, to model.Cell, considerObstacles bool) []model.Cell
}

type rampState int

const (
	unchecked rampState = iota
	clear
	obstructed
)

// Oracle decides, frame by frame, whether ramps are passable. Ramps last seen
// obstructed are re-checked every frame; ramps seen clear are skipped until
// Invalidate is called for them.
type Oracle struct {
	data    *Data
	terrain Terrain
	paths   Pathfinder

	state map[int]rampState
	ends  map[int][][]model.Cell
}

func NewOracle(d *Data, t Terrain, p Pathfinder) *Oracle {
	o := &Oracle{
		data:    d,
		terrain: t,
		paths:   p,
		state:   make(map[int]rampState),
		ends:    make(map[int][][]model.Cell),
	}
	for _, r := range d.OfType(Ramp) {
		o.state[r.ID] = unchecked
	}
	return o
}

// Update re-derives IsObstructed for every ramp that needs it.
func (o *Oracle) Update() {
	for _, r := range o.data.OfType(Ramp) {
		if o.state[r.ID] == clear {
			continue
		}
		was := r.IsObstructed
		r.IsObstructed = o.check(r)
		if r.IsObstructed {
			o.state[r.ID] = obstructed
		} else {
			o.state[r.ID] = clear
		}
		if was != r.IsObstructed {
			slog.Info("ramp obstruction changed", "region", r.ID, "obstructed", r.IsObstructed)
		}
	}
}

// Invalidate schedules a ramp for re-checking on the next Update.
func (o *Oracle) Invalidate(id int) {
	if _, ok := o.state[id]; ok {
		o.state[id] = unchecked
	}
}

func (o *Oracle) InvalidateAll() {
	for id := range o.state {
		o.state[id] = unchecked
	}
}

// InvalidateAround invalidates every ramp that contains, or borders, one of the cells.
func (o *Oracle) InvalidateAround(cells []model.Cell) {
	for _, c := range cells {
		r, ok := o.data.RegionAt(c)
		if !ok {
			continue
		}
		o.Invalidate(r.ID)
		for _, n := range r.Neighbors {
			o.Invalidate(n.RegionID)
		}
	}
}

// Obstructed lists the ids of ramps currently flagged obstructed.
func (o *Oracle) Obstructed() []int {
	var out []int
	for _, r := range o.data.OfType(Ramp) {
		if r.IsObstructed {
			out = append(out, r.ID)
		}
	}
	return out
}

func (o *Oracle) check(r *Region) bool {
	walkable := false
	for _, c := range r.Cells {
		if o.terrain.IsWalkable(c, true) {
			walkable = true
			break
		}
	}
	if !walkable {
		return true
	}

	ends, ok := o.ends[r.ID]
	if !ok {
		ends = RampEnds(o.data, r)
		o.ends[r.ID] = ends
	}
	if len(ends) != 2 {
		slog.Error("ramp does not have exactly two ends, assuming passable", "region", r.ID, "ends", len(ends))
		return false
	}

	from, okFrom := o.walkableNear(ends[0])
	to, okTo := o.walkableNear(ends[1])
	if !okFrom || !okTo {
		return true
	}

	path := o.paths.FindPath(from, to, true)
	if path == nil {
		return true
	}
	return !mostlyInside(r, path)
}

// mostlyInside reports whether at least half of the path runs through the region.
func mostlyInside(r *Region, path []model.Cell) bool {
	inside := 0
	for _, c := range path {
		if r.Contains(c) {
			inside++
		}
	}
	return inside*2 >= len(path)
}

// walkableNear picks the walkable cell closest to the center of a frontier
// group, widening to a small radius search when the whole group is blocked.
func (o *Oracle) walkableNear(group []model.Cell) (model.Cell, bool) {
	cx, cy := model.Centroid(group)
	center, _ := model.Nearest(group, cx, cy)

	best, found := model.Cell{}, false
	for _, c := range group {
		if !o.terrain.IsWalkable(c, true) {
			continue
		}
		if !found || c.Dist2(center) < best.Dist2(center) {
			best, found = c, true
		}
	}
	if found {
		return best, true
	}
	for _, c := range o.terrain.SearchRadius(center, 3) {
		if o.terrain.IsWalkable(c, true) {
			return c, true
		}
	}
	return model.Cell{}, false
}
