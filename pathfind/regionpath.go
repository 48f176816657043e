package pathfind

import (
	"container/heap"
	"math"
	"slices"

	"github.com/nstehr/vimy/vimy-terrain/regions"
)

type regionKey struct {
	from, to int
}

// FindRegionPath returns the region ids along the shortest route from one
// region to another through the region graph, both ends included. Edge cost
// is the distance between region centers. Excluded regions are never entered;
// obstructed ramps are skipped as well. Returns nil when no route exists.
//
// Unrestricted results are cached per (from, to). Obstruction flags change
// during the game, so the cache is only used while no ramp is obstructed.
func (p *Pathfinder) FindRegionPath(d *regions.Data, from, to int, excluded ...int) []int {
	if _, ok := d.Region(from); !ok {
		return nil
	}
	if _, ok := d.Region(to); !ok {
		return nil
	}

	cacheable := len(excluded) == 0 && !anyObstructed(d)
	key := regionKey{from, to}
	if cacheable {
		if path, ok := p.regionCache[key]; ok {
			return path
		}
	}
	path := dijkstra(d, from, to, excluded)
	if cacheable {
		p.regionCache[key] = path
	}
	return path
}

func anyObstructed(d *regions.Data) bool {
	for _, r := range d.Regions {
		if r.IsObstructed {
			return true
		}
	}
	return false
}

func dijkstra(d *regions.Data, from, to int, excluded []int) []int {
	if slices.Contains(excluded, from) || slices.Contains(excluded, to) {
		return nil
	}
	dist := make([]float64, len(d.Regions))
	prev := make([]int, len(d.Regions))
	for i := range dist {
		dist[i] = math.Inf(1)
		prev[i] = -1
	}
	dist[from] = 0

	open := &regionHeap{{id: from}}
	for open.Len() > 0 {
		cur := heap.Pop(open).(regionItem)
		if cur.cost > dist[cur.id] {
			continue
		}
		if cur.id == to {
			break
		}
		r := d.Regions[cur.id]
		for _, n := range r.Neighbors {
			next := d.Regions[n.RegionID]
			if next.IsObstructed || slices.Contains(excluded, next.ID) {
				continue
			}
			cost := cur.cost + r.Center.Dist(next.Center)
			if cost < dist[next.ID] {
				dist[next.ID] = cost
				prev[next.ID] = cur.id
				heap.Push(open, regionItem{id: next.ID, cost: cost})
			}
		}
	}
	if math.IsInf(dist[to], 1) {
		return nil
	}

	var path []int
	for id := to; id != -1; id = prev[id] {
		path = append(path, id)
	}
	slices.Reverse(path)
	return path
}

type regionItem struct {
	id   int
	cost float64
}

type regionHeap []regionItem

func (h regionHeap) Len() int           { return len(h) }
func (h regionHeap) Less(i, j int) bool { return h[i].cost < h[j].cost }
func (h regionHeap) Swap(i, j int)      { h[i], h[j] = h[j], h[i] }
func (h *regionHeap) Push(x any)        { *h = append(*h, x.(regionItem)) }
func (h *regionHeap) Pop() any {
	old := *h
	n := len(old)
	item := old[n-1]
	*h = old[:n-1]
	return item
}
