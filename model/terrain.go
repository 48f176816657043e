package model

import (
	"math"
	"slices"

	"github.com/zyedidia/generic/mapset"
)

// TerrainGrid is the full-resolution terrain received in the hello handshake.
// Static pathing/placement/height layers never change during a game; the
// obstacle overlay is replaced every frame from the blocked cells the mod
// reports (structures, rocks, force fields).
type TerrainGrid struct {
	Width     int
	Height    int
	Pathing   []bool    // row-major: Pathing[y*Width + x]
	Placement []bool    // buildable cells
	Heights   []float64 // terrain height per cell

	obstacles mapset.Set[Cell]
}

// NewTerrainGrid returns an all-blocked grid of the given size.
func NewTerrainGrid(width, height int) *TerrainGrid {
	n := width * height
	return &TerrainGrid{
		Width:     width,
		Height:    height,
		Pathing:   make([]bool, n),
		Placement: make([]bool, n),
		Heights:   make([]float64, n),
		obstacles: mapset.New[Cell](),
	}
}

func (g *TerrainGrid) InBounds(c Cell) bool {
	return c.X >= 0 && c.Y >= 0 && c.X < g.Width && c.Y < g.Height
}

func (g *TerrainGrid) index(c Cell) int {
	return c.Y*g.Width + c.X
}

// IsWalkable reports static walkability, optionally also requiring that no
// dynamic obstacle covers the cell. Out-of-bounds cells are never walkable.
func (g *TerrainGrid) IsWalkable(c Cell, considerObstacles bool) bool {
	if !g.InBounds(c) || !g.Pathing[g.index(c)] {
		return false
	}
	if considerObstacles && g.obstacles.Has(c) {
		return false
	}
	return true
}

func (g *TerrainGrid) IsBuildable(c Cell) bool {
	return g.InBounds(c) && g.Placement[g.index(c)]
}

// HeightAt returns the terrain height, or 0 out of bounds.
func (g *TerrainGrid) HeightAt(c Cell) float64 {
	if !g.InBounds(c) {
		return 0
	}
	return g.Heights[g.index(c)]
}

// SetWalkable and SetBuildable are used when decoding the hello payload and in tests.
func (g *TerrainGrid) SetWalkable(c Cell, v bool) {
	if g.InBounds(c) {
		g.Pathing[g.index(c)] = v
	}
}

func (g *TerrainGrid) SetBuildable(c Cell, v bool) {
	if g.InBounds(c) {
		g.Placement[g.index(c)] = v
	}
}

func (g *TerrainGrid) SetHeight(c Cell, h float64) {
	if g.InBounds(c) {
		g.Heights[g.index(c)] = h
	}
}

// SetObstacles replaces the dynamic obstacle overlay.
func (g *TerrainGrid) SetObstacles(cells []Cell) {
	g.obstacles = mapset.New[Cell]()
	for _, c := range cells {
		g.obstacles.Put(c)
	}
}

// ObstacleCount is the size of the current dynamic overlay.
func (g *TerrainGrid) ObstacleCount() int {
	return g.obstacles.Size()
}

// WalkableCells lists every statically walkable cell, row-major.
func (g *TerrainGrid) WalkableCells() []Cell {
	var out []Cell
	for y := 0; y < g.Height; y++ {
		for x := 0; x < g.Width; x++ {
			if g.Pathing[y*g.Width+x] {
				out = append(out, Cell{x, y})
			}
		}
	}
	return out
}

// Neighbors returns the walkable non-diagonal neighbors of c.
func (g *TerrainGrid) Neighbors(c Cell, considerObstacles bool) []Cell {
	out := make([]Cell, 0, 4)
	for _, n := range c.Neighbors4() {
		if g.IsWalkable(n, considerObstacles) {
			out = append(out, n)
		}
	}
	return out
}

// SearchRadius returns the in-bounds cells within radius of center, closest first.
func (g *TerrainGrid) SearchRadius(center Cell, radius float64) []Cell {
	r := int(math.Ceil(radius))
	r2 := radius * radius
	var out []Cell
	for y := center.Y - r; y <= center.Y+r; y++ {
		for x := center.X - r; x <= center.X+r; x++ {
			c := Cell{x, y}
			if !g.InBounds(c) || float64(c.Dist2(center)) > r2 {
				continue
			}
			out = append(out, c)
		}
	}
	sortByDistance(out, center)
	return out
}

// SearchGrid returns the in-bounds cells of the square of half-size radius
// around center, closest first.
func (g *TerrainGrid) SearchGrid(center Cell, radius int) []Cell {
	var out []Cell
	for y := center.Y - radius; y <= center.Y+radius; y++ {
		for x := center.X - radius; x <= center.X+radius; x++ {
			if c := (Cell{x, y}); g.InBounds(c) {
				out = append(out, c)
			}
		}
	}
	sortByDistance(out, center)
	return out
}

func sortByDistance(cells []Cell, center Cell) {
	slices.SortStableFunc(cells, func(a, b Cell) int {
		if d := a.Dist2(center) - b.Dist2(center); d != 0 {
			return d
		}
		return CompareCells(a, b)
	})
}
