package model

import (
	"math"
	"slices"
)

// Cell is one square of the terrain grid. Cells are the unit of every region,
// frontier and path in the sidecar.
type Cell struct {
	X int `json:"x"`
	Y int `json:"y"`
}

// CellAt returns the cell containing the world position (x, y).
func CellAt(x, y float64) Cell {
	return Cell{X: int(math.Floor(x)), Y: int(math.Floor(y))}
}

func (c Cell) Add(dx, dy int) Cell {
	return Cell{X: c.X + dx, Y: c.Y + dy}
}

// Neighbors4 returns the non-diagonal neighbors of c. Bounds are not checked.
func (c Cell) Neighbors4() [4]Cell {
	return [4]Cell{
		{c.X + 1, c.Y},
		{c.X - 1, c.Y},
		{c.X, c.Y + 1},
		{c.X, c.Y - 1},
	}
}

// Dist2 is the squared Euclidean distance between two cells.
func (c Cell) Dist2(o Cell) int {
	dx := c.X - o.X
	dy := c.Y - o.Y
	return dx*dx + dy*dy
}

func (c Cell) Dist(o Cell) float64 {
	return math.Sqrt(float64(c.Dist2(o)))
}

// Center returns the world position at the middle of the cell.
func (c Cell) Center() (float64, float64) {
	return float64(c.X) + 0.5, float64(c.Y) + 0.5
}

// CompareCells orders cells row-major (Y, then X).
func CompareCells(a, b Cell) int {
	if a.Y != b.Y {
		return a.Y - b.Y
	}
	return a.X - b.X
}

// SortCells sorts cells in place, row-major.
func SortCells(cells []Cell) {
	slices.SortFunc(cells, CompareCells)
}

// Centroid returns the mean position of cells. Returns (0, 0) for an empty set.
func Centroid(cells []Cell) (float64, float64) {
	if len(cells) == 0 {
		return 0, 0
	}
	var sx, sy float64
	for _, c := range cells {
		sx += float64(c.X)
		sy += float64(c.Y)
	}
	n := float64(len(cells))
	return sx / n, sy / n
}

// Nearest returns the cell of cells closest to (x, y). Ties go to the first
// cell in slice order. ok is false for an empty slice.
func Nearest(cells []Cell, x, y float64) (Cell, bool) {
	if len(cells) == 0 {
		return Cell{}, false
	}
	best := cells[0]
	bestDist := math.MaxFloat64
	for _, c := range cells {
		dx := float64(c.X) - x
		dy := float64(c.Y) - y
		if d := dx*dx + dy*dy; d < bestDist {
			bestDist = d
			best = c
		}
	}
	return best, true
}
