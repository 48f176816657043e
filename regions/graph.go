package regions

import (
	"math"
	"slices"

	"github.com/zyedidia/generic/mapset"

	"github.com/nstehr/vimy/vimy-terrain/cluster"
	"github.com/nstehr/vimy/vimy-terrain/model"
)

// ConnectGraph computes every region's neighbors. A cell of region A whose
// non-diagonal neighbor lies in region B joins A's frontier toward B; the
// edge B->A gets its own frontier from B's cells. Adjacency is therefore
// symmetric while the two frontiers are disjoint.
// The centers of each ramp's two ends are added to the chokepoints once;
// running it again on the same data changes nothing.
func ConnectGraph(d *Data) {
	d.Reindex()
	for _, r := range d.Regions {
		frontiers := make(map[int][]model.Cell)
		seen := make(map[int]mapset.Set[model.Cell])
		for _, c := range r.Cells {
			for _, n := range c.Neighbors4() {
				id, ok := d.index[n]
				if !ok || id == r.ID {
					continue
				}
				s, ok := seen[id]
				if !ok {
					s = mapset.New[model.Cell]()
					seen[id] = s
				}
				if s.Has(c) {
					continue
				}
				s.Put(c)
				frontiers[id] = append(frontiers[id], c)
			}
		}

		r.Neighbors = make([]NeighboringRegion, 0, len(frontiers))
		for id, frontier := range frontiers {
			model.SortCells(frontier)
			r.Neighbors = append(r.Neighbors, NeighboringRegion{RegionID: id, Frontier: frontier})
		}
		slices.SortFunc(r.Neighbors, func(a, b NeighboringRegion) int { return a.RegionID - b.RegionID })
	}

	known := mapset.New[model.Cell]()
	for _, c := range d.Chokepoints {
		known.Put(c)
	}
	for _, r := range d.OfType(Ramp) {
		for _, end := range RampEnds(d, r) {
			cx, cy := model.Centroid(end)
			if c, ok := model.Nearest(end, cx, cy); ok && !known.Has(c) {
				known.Put(c)
				d.Chokepoints = append(d.Chokepoints, c)
			}
		}
	}
}

// RampEnds clusters the cells just outside a ramp, taken from its neighbors'
// frontiers toward it. A well-formed ramp has exactly two ends.
func RampEnds(d *Data, ramp *Region) [][]model.Cell {
	var outside []model.Cell
	for _, n := range ramp.Neighbors {
		other, ok := d.Region(n.RegionID)
		if !ok {
			continue
		}
		if back, ok := other.Neighbor(ramp.ID); ok {
			outside = append(outside, back.Frontier...)
		}
	}
	model.SortCells(outside)
	ends, noise := cluster.DBSCANCells(outside, math.Sqrt2, 1)
	for _, c := range noise {
		ends = append(ends, []model.Cell{c})
	}
	return ends
}
