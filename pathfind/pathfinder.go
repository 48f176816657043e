// Package pathfind answers cell-to-cell and region-to-region path queries for
// the expand analyzer and the obstruction oracle.
package pathfind

import (
	"log/slog"

	"github.com/nstehr/vimy/vimy-terrain/model"
)

type pathKey struct {
	from, to model.Cell
}

type cachedPath struct {
	path []model.Cell
}

// Pathfinder runs A* on the terrain grid. Static-terrain queries are memoized
// by (origin, destination) for the lifetime of the game; queries that consider
// dynamic obstacles always run fresh because the overlay changes every frame.
type Pathfinder struct {
	terrain Terrain
	cache   map[pathKey]cachedPath

	regionCache map[regionKey][]int

	hits, misses int
}

func New(t Terrain) *Pathfinder {
	return &Pathfinder{
		terrain:     t,
		cache:       make(map[pathKey]cachedPath),
		regionCache: make(map[regionKey][]int),
	}
}

// FindPath returns the ordered cells from -> to inclusive, or nil when no path exists.
func (p *Pathfinder) FindPath(from, to model.Cell, considerObstacles bool) []model.Cell {
	if considerObstacles {
		return astar(p.terrain, from, to, true)
	}

	key := pathKey{from, to}
	if cp, ok := p.cache[key]; ok {
		p.hits++
		return cp.path
	}
	p.misses++
	path := astar(p.terrain, from, to, false)
	p.cache[key] = cachedPath{path: path}
	return path
}

// Distance is the path length between two cells on static terrain, or -1 when unreachable.
func (p *Pathfinder) Distance(from, to model.Cell) float64 {
	path := p.FindPath(from, to, false)
	if path == nil {
		return -1
	}
	return Length(path)
}

// LogStats reports cache effectiveness at debug level.
func (p *Pathfinder) LogStats() {
	slog.Debug("pathfinder cache", "entries", len(p.cache), "hits", p.hits, "misses", p.misses, "regionEntries", len(p.regionCache))
}
