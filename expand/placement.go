package expand

import (
	"math"

	"github.com/zyedidia/generic/mapset"

	"github.com/nstehr/vimy/vimy-terrain/model"
)

// PlacementResult is the placement oracle's answer for a town hall footprint.
type PlacementResult int

const (
	PlacementOK PlacementResult = iota
	PlacementTooCloseToResources
	PlacementNotBuildable
	// PlacementUnavailable means the oracle cannot answer yet (early game frames).
	PlacementUnavailable
)

// Placement answers whether a town hall can be placed with its center on anchor.
type Placement interface {
	CanPlace(anchor model.Cell) PlacementResult
}

const (
	// townHallHalf is half the 5x5 town hall footprint.
	townHallHalf = 2
	// resourceGap is the minimum number of free cells the game requires
	// between a town hall and any resource footprint.
	resourceGap = 3
)

// resourceSafetyDistance is the empirical keep-out radius around every
// resource footprint cell used to prune anchor candidates.
var resourceSafetyDistance = math.Sqrt(1*1 + 3*3)

// townHallFootprint returns the 25 cells under a town hall centered on anchor.
func townHallFootprint(anchor model.Cell) []model.Cell {
	out := make([]model.Cell, 0, 25)
	for dy := -townHallHalf; dy <= townHallHalf; dy++ {
		for dx := -townHallHalf; dx <= townHallHalf; dx++ {
			out = append(out, anchor.Add(dx, dy))
		}
	}
	return out
}

// buildExclusionZone marks every cell within the safety distance of a resource footprint cell.
func buildExclusionZone(resources []model.Unit) mapset.Set[model.Cell] {
	zone := mapset.New[model.Cell]()
	r := int(math.Ceil(resourceSafetyDistance))
	limit := resourceSafetyDistance * resourceSafetyDistance
	for _, u := range resources {
		for _, f := range footprint(u) {
			for dy := -r; dy <= r; dy++ {
				for dx := -r; dx <= r; dx++ {
					if float64(dx*dx+dy*dy) <= limit {
						zone.Put(f.Add(dx, dy))
					}
				}
			}
		}
	}
	return zone
}

// Buildable is the terrain query GridPlacement needs.
type Buildable interface {
	IsBuildable(c model.Cell) bool
}

// GridPlacement is the host-side placement oracle. It answers from the
// placement grid sent by the mod plus the game's resource gap rule, and
// reports PlacementUnavailable until the grid has arrived.
type GridPlacement struct {
	terrain   Buildable
	resources mapset.Set[model.Cell]
	ready     bool
}

func NewGridPlacement(terrain Buildable, resources []model.Unit, ready bool) *GridPlacement {
	cells := mapset.New[model.Cell]()
	for _, u := range resources {
		if Classify(u.Type) == NotResource {
			continue
		}
		for _, f := range footprint(u) {
			cells.Put(f)
		}
	}
	return &GridPlacement{terrain: terrain, resources: cells, ready: ready}
}

func (p *GridPlacement) CanPlace(anchor model.Cell) PlacementResult {
	if !p.ready {
		return PlacementUnavailable
	}
	for _, c := range townHallFootprint(anchor) {
		if !p.terrain.IsBuildable(c) {
			return PlacementNotBuildable
		}
	}
	reach := townHallHalf + resourceGap
	for dy := -reach; dy <= reach; dy++ {
		for dx := -reach; dx <= reach; dx++ {
			if p.resources.Has(anchor.Add(dx, dy)) {
				return PlacementTooCloseToResources
			}
		}
	}
	return PlacementOK
}
