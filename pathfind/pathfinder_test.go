package pathfind

import (
	"math"
	"testing"

	"github.com/nstehr/vimy/vimy-terrain/model"
)

// grid builds terrain from rows: '.' walkable, '#' blocked.
func grid(rows ...string) *model.TerrainGrid {
	g := model.NewTerrainGrid(len(rows[0]), len(rows))
	for y, row := range rows {
		for x, ch := range row {
			if ch == '.' {
				g.SetWalkable(model.Cell{x, y}, true)
			}
		}
	}
	return g
}

func TestFindPathStraight(t *testing.T) {
	g := grid(
		".....",
		".....",
	)
	p := New(g)
	path := p.FindPath(model.Cell{0, 0}, model.Cell{4, 0}, false)
	if len(path) != 5 {
		t.Fatalf("path = %v, want 5 cells", path)
	}
	if path[0] != (model.Cell{0, 0}) || path[4] != (model.Cell{4, 0}) {
		t.Errorf("path endpoints = %v, %v", path[0], path[4])
	}
	if got := p.Distance(model.Cell{0, 0}, model.Cell{4, 0}); got != 4 {
		t.Errorf("Distance = %v, want 4", got)
	}
}

func TestFindPathDiagonalAndCorners(t *testing.T) {
	g := grid(
		"...",
		"...",
		"...",
	)
	p := New(g)
	got := p.Distance(model.Cell{0, 0}, model.Cell{2, 2})
	if math.Abs(got-2*math.Sqrt2) > 1e-9 {
		t.Errorf("diagonal distance = %v, want 2*sqrt2", got)
	}

	// The only diagonal move would cut the corner of a wall.
	g = grid(
		".#",
		"..",
	)
	p = New(g)
	path := p.FindPath(model.Cell{0, 0}, model.Cell{1, 1}, false)
	if len(path) != 3 {
		t.Errorf("path = %v, want the 3-cell detour around the corner", path)
	}
}

func TestFindPathUnreachable(t *testing.T) {
	g := grid(
		"..#..",
		"..#..",
	)
	p := New(g)
	if path := p.FindPath(model.Cell{0, 0}, model.Cell{4, 0}, false); path != nil {
		t.Errorf("path = %v, want nil", path)
	}
	if got := p.Distance(model.Cell{0, 0}, model.Cell{4, 1}); got != -1 {
		t.Errorf("Distance = %v, want -1", got)
	}
	if path := p.FindPath(model.Cell{2, 0}, model.Cell{0, 0}, false); path != nil {
		t.Errorf("path from a blocked cell = %v, want nil", path)
	}
}

func TestFindPathObstaclesNotCached(t *testing.T) {
	g := grid(
		".....",
	)
	p := New(g)
	from, to := model.Cell{0, 0}, model.Cell{4, 0}

	if p.FindPath(from, to, true) == nil {
		t.Fatalf("open corridor should have a path")
	}
	g.SetObstacles([]model.Cell{{2, 0}})
	if path := p.FindPath(from, to, true); path != nil {
		t.Errorf("obstacle-aware path = %v, want nil once blocked", path)
	}
	if p.FindPath(from, to, false) == nil {
		t.Errorf("static path should ignore the obstacle overlay")
	}
	if len(p.cache) != 1 {
		t.Errorf("cache entries = %d, want only the static query", len(p.cache))
	}
}

func TestFindPathCachesStaticQueries(t *testing.T) {
	g := grid("....")
	p := New(g)
	p.FindPath(model.Cell{0, 0}, model.Cell{3, 0}, false)
	p.FindPath(model.Cell{0, 0}, model.Cell{3, 0}, false)
	if p.hits != 1 || p.misses != 1 {
		t.Errorf("hits/misses = %d/%d, want 1/1", p.hits, p.misses)
	}
}

func TestLength(t *testing.T) {
	tests := []struct {
		path []model.Cell
		want float64
	}{
		{nil, 0},
		{[]model.Cell{{0, 0}}, 0},
		{[]model.Cell{{0, 0}, {1, 0}, {2, 1}}, 1 + math.Sqrt2},
	}
	for _, tt := range tests {
		if got := Length(tt.path); math.Abs(got-tt.want) > 1e-9 {
			t.Errorf("Length(%v) = %v, want %v", tt.path, got, tt.want)
		}
	}
}
