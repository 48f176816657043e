package regions

import (
	"log/slog"

	"github.com/zyedidia/generic/mapset"

	"github.com/nstehr/vimy/vimy-terrain/cluster"
	"github.com/nstehr/vimy/vimy-terrain/model"
)

// Build turns a partition into the region arena. Noise cells are absorbed by
// an adjacent candidate when one exists; isolated noise becomes its own
// OpenArea region, so every partitioned cell ends up in exactly one region.
// Unknown candidates containing an expansion anchor become Expand regions
// centered on the anchor; the rest become OpenArea.
func Build(mapName string, width, height int, p Partition, anchors []model.Cell) *Data {
	groups := make([][]model.Cell, 0, len(p.Candidates))
	types := make([]RegionType, 0, len(p.Candidates))
	owner := make(map[model.Cell]int)
	for _, cand := range p.Candidates {
		if len(cand.Cells) == 0 {
			continue
		}
		cells := make([]model.Cell, 0, len(cand.Cells))
		for _, c := range cand.Cells {
			if _, dup := owner[c]; dup {
				slog.Warn("cell claimed by two partition candidates", "cell", c)
				continue
			}
			owner[c] = len(groups)
			cells = append(cells, c)
		}
		groups = append(groups, cells)
		types = append(types, cand.Type)
	}

	pending := make([]model.Cell, 0, len(p.Noise))
	for _, c := range p.Noise {
		if _, ok := owner[c]; !ok {
			pending = append(pending, c)
		}
	}
	for progress := true; progress && len(pending) > 0; {
		progress = false
		rest := pending[:0]
		for _, c := range pending {
			if g, ok := adjacentGroup(owner, c, types); ok {
				owner[c] = g
				groups[g] = append(groups[g], c)
				progress = true
				continue
			}
			rest = append(rest, c)
		}
		pending = rest
	}
	for _, comp := range cluster.ConnectedComponents(pending) {
		groups = append(groups, comp)
		types = append(types, OpenArea)
	}

	d := &Data{
		SchemaVersion: SchemaVersion,
		MapName:       mapName,
		Width:         width,
		Height:        height,
		Ramps:         p.Ramps,
		Noise:         p.Noise,
		Chokepoints:   p.Chokepoints,
		ExpandAnchors: anchors,
	}
	for i, cells := range groups {
		d.Regions = append(d.Regions, finalize(i, cells, types[i], anchors))
	}
	d.Reindex()
	return d
}

// adjacentGroup finds a group next to c, preferring non-ramp groups so ramps
// keep their exact shape.
func adjacentGroup(owner map[model.Cell]int, c model.Cell, types []RegionType) (int, bool) {
	found, ok := -1, false
	for _, n := range c.Neighbors4() {
		g, has := owner[n]
		if !has {
			continue
		}
		if types[g] != Ramp {
			return g, true
		}
		if !ok {
			found, ok = g, true
		}
	}
	return found, ok
}

func finalize(id int, cells []model.Cell, t RegionType, anchors []model.Cell) *Region {
	if t != Unknown {
		return newRegion(id, cells, t)
	}

	members := mapset.New[model.Cell]()
	for _, c := range cells {
		members.Put(c)
	}
	for _, a := range anchors {
		if !members.Has(a) {
			continue
		}
		r := newRegion(id, cells, Expand)
		r.Center = a
		anchor := a
		r.ExpandPosition = &anchor
		return r
	}
	return newRegion(id, cells, OpenArea)
}
