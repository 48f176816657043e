package cluster

import (
	"github.com/zyedidia/generic/mapset"

	"github.com/nstehr/vimy/vimy-terrain/model"
)

// NeighborFunc returns the cells reachable in one step from c. Callers decide
// what reachable means (in-set, walkable, not obstructed).
type NeighborFunc func(c model.Cell) []model.Cell

// FloodFill walks breadth-first from start and returns every cell it reaches,
// in visit order. start itself is not part of the result. Each cell is
// visited once and the walk ends when the frontier is exhausted.
func FloodFill(start model.Cell, neighbors NeighborFunc) []model.Cell {
	visited := mapset.New[model.Cell]()
	visited.Put(start)

	var reached []model.Cell
	queue := []model.Cell{start}
	for len(queue) > 0 {
		current := queue[0]
		queue = queue[1:]
		for _, n := range neighbors(current) {
			if visited.Has(n) {
				continue
			}
			visited.Put(n)
			reached = append(reached, n)
			queue = append(queue, n)
		}
	}
	return reached
}

// Within returns a NeighborFunc with 4-directional adjacency restricted to cells.
func Within(cells []model.Cell) NeighborFunc {
	set := mapset.New[model.Cell]()
	for _, c := range cells {
		set.Put(c)
	}
	return func(c model.Cell) []model.Cell {
		out := make([]model.Cell, 0, 4)
		for _, n := range c.Neighbors4() {
			if set.Has(n) {
				out = append(out, n)
			}
		}
		return out
	}
}

// FloodFillWithin is FloodFill over a fixed cell set.
func FloodFillWithin(cells []model.Cell, start model.Cell) []model.Cell {
	return FloodFill(start, Within(cells))
}

// ConnectedComponents splits cells into 4-connected groups. Groups appear in
// the order of their first cell in the input; members are sorted row-major.
func ConnectedComponents(cells []model.Cell) [][]model.Cell {
	neighbors := Within(cells)
	assigned := mapset.New[model.Cell]()

	var components [][]model.Cell
	for _, c := range cells {
		if assigned.Has(c) {
			continue
		}
		component := append([]model.Cell{c}, FloodFill(c, neighbors)...)
		for _, m := range component {
			assigned.Put(m)
		}
		model.SortCells(component)
		components = append(components, component)
	}
	return components
}
