// Package expand finds expansion sites: it groups neutral resources into
// clusters, searches a town hall anchor next to each cluster and ranks the
// anchors relative to both start locations.
package expand

import (
	"errors"
	"fmt"
	"log/slog"
	"math"
	"slices"

	"github.com/zyedidia/generic/mapset"

	"github.com/nstehr/vimy/vimy-terrain/cluster"
	"github.com/nstehr/vimy/vimy-terrain/model"
)

var (
	// ErrNotReady means the placement oracle cannot answer yet; retry on a later frame.
	ErrNotReady = errors.New("placement queries not available yet")
	// ErrIncomplete means some resource cluster got no anchor; nothing is committed.
	ErrIncomplete = errors.New("expand analysis incomplete")
)

// Terrain is what the analyzer needs from the terrain provider.
type Terrain interface {
	IsBuildable(c model.Cell) bool
	IsWalkable(c model.Cell, considerObstacles bool) bool
	SearchGrid(center model.Cell, radius int) []model.Cell
	SearchRadius(center model.Cell, radius float64) []model.Cell
}

// Pathfinder supplies static path distances, -1 when unreachable.
type Pathfinder interface {
	Distance(from, to model.Cell) float64
}

type Config struct {
	ClusterEpsilon   float64 // DBSCAN radius between resources of one base
	ClusterMinPoints int
	SearchRadius     int     // half-size of the anchor search grid
	PocketThreshold  int     // fewer resources than this makes a Pocket
	BlockerRadius    float64 // neutral units this close to an anchor block it
}

func DefaultConfig() Config {
	return Config{
		ClusterEpsilon:   8,
		ClusterMinPoints: 2,
		SearchRadius:     12,
		PocketThreshold:  6,
		BlockerRadius:    4,
	}
}

// Analyzer runs the expand analysis for one game. The exclusion zone is built
// on first use and kept for the analyzer's lifetime.
type Analyzer struct {
	cfg       Config
	terrain   Terrain
	placement Placement
	paths     Pathfinder

	zone      mapset.Set[model.Cell]
	zoneBuilt bool
}

func NewAnalyzer(cfg Config, terrain Terrain, placement Placement, paths Pathfinder) *Analyzer {
	return &Analyzer{cfg: cfg, terrain: terrain, placement: placement, paths: paths}
}

// Analyze returns one Location per resource cluster. known anchors (from a
// persisted map document) are tried before the grid search. It fails with
// ErrNotReady or ErrIncomplete and returns no partial result.
func (a *Analyzer) Analyze(neutral []model.Unit, start model.Cell, enemyStarts []model.Cell, known []model.Cell) ([]*Location, error) {
	var resources, others []model.Unit
	for _, u := range neutral {
		if Classify(u.Type).IsExpansionResource() {
			resources = append(resources, u)
		} else {
			others = append(others, u)
		}
	}
	if len(resources) == 0 {
		return nil, fmt.Errorf("no resources visible: %w", ErrNotReady)
	}

	clusters, stray := cluster.DBSCAN(resources, unitVector, a.cfg.ClusterEpsilon, a.cfg.ClusterMinPoints)
	if len(stray) > 0 {
		slog.Debug("resources outside any cluster", "count", len(stray))
	}

	if !a.zoneBuilt {
		all := slices.Clone(resources)
		for _, u := range others {
			if Classify(u.Type) == DecorativeMineral {
				all = append(all, u)
			}
		}
		a.zone = buildExclusionZone(all)
		a.zoneBuilt = true
	}

	locations := make([]*Location, 0, len(clusters))
	for i, group := range clusters {
		anchor, found, err := a.findAnchor(group, known)
		if err != nil {
			return nil, err
		}
		if !found {
			slog.Warn("no anchor for resource cluster", "cluster", i, "resources", len(group))
			continue
		}
		loc := newLocation(anchor)
		for _, u := range group {
			loc.Resources[u.ID] = u
			if Classify(u.Type).IsRare() {
				loc.hasRare = true
			}
		}
		for _, u := range others {
			if isBlocker(u) && distanceTo(u, anchor) <= a.cfg.BlockerRadius {
				loc.Blockers[u.ID] = u
			}
		}
		locations = append(locations, loc)
	}

	if len(locations) != len(clusters) {
		return nil, fmt.Errorf("found %d anchors for %d resource clusters: %w", len(locations), len(clusters), ErrIncomplete)
	}

	a.classify(locations, start, enemyStarts)
	return locations, nil
}

func (a *Analyzer) findAnchor(group []model.Unit, known []model.Cell) (model.Cell, bool, error) {
	center := boundingCenter(group)

	for _, k := range known {
		if abs(k.X-center.X) > a.cfg.SearchRadius || abs(k.Y-center.Y) > a.cfg.SearchRadius {
			continue
		}
		switch a.placement.CanPlace(k) {
		case PlacementOK:
			return k, true, nil
		case PlacementUnavailable:
			return model.Cell{}, false, ErrNotReady
		}
	}

	for _, c := range a.terrain.SearchGrid(center, a.cfg.SearchRadius) {
		if !a.footprintClear(c) {
			continue
		}
		switch a.placement.CanPlace(c) {
		case PlacementOK:
			return c, true, nil
		case PlacementUnavailable:
			return model.Cell{}, false, ErrNotReady
		}
	}
	return model.Cell{}, false, nil
}

func (a *Analyzer) footprintClear(anchor model.Cell) bool {
	for _, c := range townHallFootprint(anchor) {
		if !a.terrain.IsBuildable(c) || a.zone.Has(c) {
			return false
		}
	}
	return true
}

// classify assigns Gold and Pocket first, then ranks the remaining locations
// by path distance from our start and from the enemy start. The enemy pass
// only fills in locations the first pass left as Far and marks them EnemySide,
// so an enemy Main is never mistaken for ours.
func (a *Analyzer) classify(locations []*Location, start model.Cell, enemyStarts []model.Cell) {
	from := a.walkableNear(start)
	var enemy *model.Cell
	if len(enemyStarts) > 0 {
		e := a.walkableNear(enemyStarts[0])
		enemy = &e
	}

	var ranked []*Location
	for _, l := range locations {
		l.DistanceFromStart = a.paths.Distance(from, l.Position)
		if enemy != nil {
			l.DistanceFromEnemy = a.paths.Distance(*enemy, l.Position)
		}
		switch {
		case l.hasRare:
			l.Type = Gold
		case len(l.Resources) < a.cfg.PocketThreshold || l.IsBlocked():
			l.Type = Pocket
		default:
			l.Type = Far
			ranked = append(ranked, l)
		}
	}

	byDistance(ranked, func(l *Location) float64 { return l.DistanceFromStart })
	for i, l := range ranked {
		l.Type = rankType(i)
	}

	if enemy == nil {
		return
	}
	byDistance(ranked, func(l *Location) float64 { return l.DistanceFromEnemy })
	for i, l := range ranked {
		if l.Type == Far && rankType(i) != Far {
			l.Type = rankType(i)
			l.EnemySide = true
		}
	}
}

// walkableNear resolves a start location, usually covered by a town hall, to
// the closest walkable cell.
func (a *Analyzer) walkableNear(c model.Cell) model.Cell {
	for _, n := range a.terrain.SearchRadius(c, 8) {
		if a.terrain.IsWalkable(n, false) {
			return n
		}
	}
	return c
}

// byDistance sorts ascending; unreachable (-1) sorts last.
func byDistance(locs []*Location, dist func(*Location) float64) {
	key := func(l *Location) float64 {
		if d := dist(l); d >= 0 {
			return d
		}
		return math.Inf(1)
	}
	slices.SortStableFunc(locs, func(x, y *Location) int {
		dx, dy := key(x), key(y)
		switch {
		case dx < dy:
			return -1
		case dx > dy:
			return 1
		}
		return 0
	})
}

func isBlocker(u model.Unit) bool {
	return Classify(u.Type).IsBlocker()
}

func unitVector(u model.Unit) cluster.Vector {
	return cluster.Vector{X: u.X, Y: u.Y}
}

func boundingCenter(units []model.Unit) model.Cell {
	minX, minY := math.MaxFloat64, math.MaxFloat64
	maxX, maxY := -math.MaxFloat64, -math.MaxFloat64
	for _, u := range units {
		minX, maxX = math.Min(minX, u.X), math.Max(maxX, u.X)
		minY, maxY = math.Min(minY, u.Y), math.Max(maxY, u.Y)
	}
	return model.CellAt((minX+maxX)/2, (minY+maxY)/2)
}

func distanceTo(u model.Unit, c model.Cell) float64 {
	cx, cy := c.Center()
	return math.Hypot(u.X-cx, u.Y-cy)
}

func abs(x int) int {
	if x < 0 {
		return -x
	}
	return x
}
