package pathfind

import (
	"slices"
	"testing"

	"github.com/nstehr/vimy/vimy-terrain/model"
	"github.com/nstehr/vimy/vimy-terrain/regions"
)

// blocks lays out a 3x3 arrangement of 2x2-cell regions, ids row-major:
//
//	0 1 2
//	3 4 5
//	6 7 8
func blocks() *regions.Data {
	var p regions.Partition
	for by := 0; by < 3; by++ {
		for bx := 0; bx < 3; bx++ {
			var cells []model.Cell
			for y := 0; y < 2; y++ {
				for x := 0; x < 2; x++ {
					cells = append(cells, model.Cell{bx*2 + x, by*2 + y})
				}
			}
			p.Candidates = append(p.Candidates, regions.Candidate{Cells: cells, Type: regions.OpenArea})
		}
	}
	d := regions.Build("blocks", 6, 6, p, nil)
	regions.ConnectGraph(d)
	return d
}

func checkRoute(t *testing.T, d *regions.Data, path []int, from, to int) {
	t.Helper()
	if len(path) == 0 || path[0] != from || path[len(path)-1] != to {
		t.Fatalf("path = %v, want %d..%d", path, from, to)
	}
	for i := 1; i < len(path); i++ {
		if !d.Regions[path[i-1]].IsNeighbor(path[i]) {
			t.Errorf("path step %d -> %d is not an edge", path[i-1], path[i])
		}
	}
}

func TestFindRegionPath(t *testing.T) {
	d := blocks()
	p := New(model.NewTerrainGrid(6, 6))

	path := p.FindRegionPath(d, 0, 2)
	if !slices.Equal(path, []int{0, 1, 2}) {
		t.Errorf("path = %v, want [0 1 2]", path)
	}
	checkRoute(t, d, p.FindRegionPath(d, 0, 8), 0, 8)

	if got := p.FindRegionPath(d, 4, 4); !slices.Equal(got, []int{4}) {
		t.Errorf("path to self = %v, want [4]", got)
	}
	if got := p.FindRegionPath(d, 0, 99); got != nil {
		t.Errorf("path to missing region = %v, want nil", got)
	}
}

func TestFindRegionPathExcluded(t *testing.T) {
	d := blocks()
	p := New(model.NewTerrainGrid(6, 6))

	path := p.FindRegionPath(d, 1, 7, 4)
	checkRoute(t, d, path, 1, 7)
	if slices.Contains(path, 4) {
		t.Errorf("path %v enters excluded region 4", path)
	}
	if len(p.regionCache) != 0 {
		t.Errorf("restricted queries should not be cached")
	}

	if got := p.FindRegionPath(d, 0, 2, 1, 4, 7); got != nil {
		t.Errorf("path through a cut column = %v, want nil", got)
	}
	if got := p.FindRegionPath(d, 0, 2, 0); got != nil {
		t.Errorf("path from an excluded region = %v, want nil", got)
	}
}

func TestFindRegionPathAvoidsObstructed(t *testing.T) {
	d := blocks()
	p := New(model.NewTerrainGrid(6, 6))

	if got := p.FindRegionPath(d, 3, 5); !slices.Equal(got, []int{3, 4, 5}) {
		t.Fatalf("path = %v, want [3 4 5]", got)
	}
	d.Regions[4].IsObstructed = true
	path := p.FindRegionPath(d, 3, 5)
	checkRoute(t, d, path, 3, 5)
	if slices.Contains(path, 4) {
		t.Errorf("path %v crosses obstructed region 4", path)
	}
}
