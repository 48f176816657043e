package regions

import (
	"math"

	"github.com/zyedidia/generic/mapset"

	"github.com/nstehr/vimy/vimy-terrain/cluster"
	"github.com/nstehr/vimy/vimy-terrain/model"
)

// Candidate is one raw cell group handed to the builder, typed Ramp, OpenArea
// or Unknown (to be resolved against expansion anchors).
type Candidate struct {
	Cells []model.Cell
	Type  RegionType
}

// Partition is the upstream split of the walkable map into candidate regions.
type Partition struct {
	Candidates  []Candidate
	Ramps       [][]model.Cell
	Noise       []model.Cell
	Chokepoints []model.Cell
}

// PartitionTerrain is what the partitioner reads from the terrain provider.
type PartitionTerrain interface {
	WalkableCells() []model.Cell
	IsBuildable(c model.Cell) bool
	HeightAt(c model.Cell) float64
}

type PartitionConfig struct {
	MinRampCells  int
	MaxRampCells  int
	OpenEpsilon   float64 // DBSCAN radius over open ground cells
	OpenMinPoints int     // neighbors needed to be interior; narrower corridors become noise
	HeightStep    float64 // height difference between two cliff levels
}

func DefaultPartitionConfig() PartitionConfig {
	return PartitionConfig{
		MinRampCells:  4,
		MaxRampCells:  200,
		OpenEpsilon:   1,
		OpenMinPoints: 4,
		HeightStep:    1,
	}
}

// Split partitions the walkable cells, plus extra cells (under starting
// buildings, raw obstructed cells), into candidates.
//
// Ramps are walkable, unbuildable 4-connected groups whose buildable border
// spans at least two height levels. The remaining ground is clustered with
// DBSCAN so that corridors narrower than the density threshold fall out as
// noise; a cluster holding several expansion anchors is split between them
// by breadth-first distance.
func Split(t PartitionTerrain, extra []model.Cell, anchors []model.Cell, cfg PartitionConfig) Partition {
	all := mapset.New[model.Cell]()
	var cells []model.Cell
	for _, c := range append(t.WalkableCells(), extra...) {
		if all.Has(c) {
			continue
		}
		all.Put(c)
		cells = append(cells, c)
	}
	model.SortCells(cells)

	var p Partition
	rampCells := mapset.New[model.Cell]()

	var unbuildable []model.Cell
	for _, c := range cells {
		if !t.IsBuildable(c) {
			unbuildable = append(unbuildable, c)
		}
	}
	for _, comp := range cluster.ConnectedComponents(unbuildable) {
		if len(comp) < cfg.MinRampCells || len(comp) > cfg.MaxRampCells {
			continue
		}
		if borderHeightLevels(t, all, comp, cfg.HeightStep) < 2 {
			continue
		}
		p.Ramps = append(p.Ramps, comp)
		p.Candidates = append(p.Candidates, Candidate{Cells: comp, Type: Ramp})
		for _, c := range comp {
			rampCells.Put(c)
		}
	}

	var open []model.Cell
	for _, c := range cells {
		if !rampCells.Has(c) {
			open = append(open, c)
		}
	}

	groups, noise := cluster.DBSCANCells(open, cfg.OpenEpsilon, cfg.OpenMinPoints)
	for _, g := range groups {
		for _, part := range splitByAnchors(g, anchors) {
			p.Candidates = append(p.Candidates, Candidate{Cells: part, Type: Unknown})
		}
	}
	model.SortCells(noise)
	p.Noise = noise
	p.Chokepoints = chokepoints(p.Candidates, noise)
	return p
}

// borderHeightLevels counts distinct height levels among the buildable cells
// bordering a group.
func borderHeightLevels(t PartitionTerrain, all mapset.Set[model.Cell], group []model.Cell, step float64) int {
	if step <= 0 {
		step = 1
	}
	inGroup := mapset.New[model.Cell]()
	for _, c := range group {
		inGroup.Put(c)
	}
	levels := mapset.New[int]()
	for _, c := range group {
		for _, n := range c.Neighbors4() {
			if inGroup.Has(n) || !all.Has(n) || !t.IsBuildable(n) {
				continue
			}
			levels.Put(int(math.Round(t.HeightAt(n) / step)))
		}
	}
	return levels.Size()
}

// splitByAnchors divides a connected group between the anchors it contains by
// multi-source BFS. Groups with fewer than two anchors are returned whole.
func splitByAnchors(group []model.Cell, anchors []model.Cell) [][]model.Cell {
	members := mapset.New[model.Cell]()
	for _, c := range group {
		members.Put(c)
	}
	var seeds []model.Cell
	for _, a := range anchors {
		if members.Has(a) {
			seeds = append(seeds, a)
		}
	}
	if len(seeds) < 2 {
		return [][]model.Cell{group}
	}

	owner := make(map[model.Cell]int, len(group))
	queue := make([]model.Cell, 0, len(group))
	for i, s := range seeds {
		owner[s] = i
		queue = append(queue, s)
	}
	neighbors := cluster.Within(group)
	for len(queue) > 0 {
		c := queue[0]
		queue = queue[1:]
		for _, n := range neighbors(c) {
			if _, ok := owner[n]; ok {
				continue
			}
			owner[n] = owner[c]
			queue = append(queue, n)
		}
	}

	parts := make([][]model.Cell, len(seeds))
	for _, c := range group {
		i, ok := owner[c]
		if !ok {
			i = 0
		}
		parts[i] = append(parts[i], c)
	}
	return parts
}

// chokepoints groups noise cells and keeps the center of every group that
// touches at least two different candidates.
func chokepoints(candidates []Candidate, noise []model.Cell) []model.Cell {
	owner := make(map[model.Cell]int)
	for i, cand := range candidates {
		for _, c := range cand.Cells {
			owner[c] = i
		}
	}

	groups, singles := cluster.DBSCANCells(noise, math.Sqrt2, 1)
	for _, c := range singles {
		groups = append(groups, []model.Cell{c})
	}
	var out []model.Cell
	for _, g := range groups {
		touched := mapset.New[int]()
		for _, c := range g {
			for _, n := range c.Neighbors4() {
				if i, ok := owner[n]; ok {
					touched.Put(i)
				}
			}
		}
		if touched.Size() < 2 {
			continue
		}
		cx, cy := model.Centroid(g)
		if center, ok := model.Nearest(g, cx, cy); ok {
			out = append(out, center)
		}
	}
	return out
}
