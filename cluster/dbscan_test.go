package cluster

import (
	"slices"
	"testing"

	"github.com/nstehr/vimy/vimy-terrain/model"
)

// membership turns clusters into a comparable form that ignores cluster order.
func membership(clusters [][]model.Cell) map[model.Cell]int {
	sorted := make([][]model.Cell, len(clusters))
	for i, c := range clusters {
		s := slices.Clone(c)
		model.SortCells(s)
		sorted[i] = s
	}
	slices.SortFunc(sorted, func(a, b []model.Cell) int {
		return model.CompareCells(a[0], b[0])
	})
	out := make(map[model.Cell]int)
	for i, c := range sorted {
		for _, cell := range c {
			out[cell] = i
		}
	}
	return out
}

func TestDBSCANSeparatesGroups(t *testing.T) {
	cells := []model.Cell{
		{0, 0}, {1, 0}, {0, 1},
		{10, 10}, {11, 10},
		{30, 30},
	}
	clusters, noise := DBSCANCells(cells, 1.5, 1)
	if len(clusters) != 2 {
		t.Fatalf("clusters = %d, want 2", len(clusters))
	}
	if len(noise) != 1 || noise[0] != (model.Cell{30, 30}) {
		t.Errorf("noise = %v, want [(30,30)]", noise)
	}
}

func TestDBSCANMinPointsCountsOthers(t *testing.T) {
	// Two points within epsilon: each has exactly one other neighbor.
	pair := []model.Cell{{0, 0}, {1, 0}}

	clusters, noise := DBSCANCells(pair, 1, 1)
	if len(clusters) != 1 || len(noise) != 0 {
		t.Errorf("minPoints=1: clusters=%d noise=%d, want 1/0", len(clusters), len(noise))
	}

	clusters, noise = DBSCANCells(pair, 1, 2)
	if len(clusters) != 0 || len(noise) != 2 {
		t.Errorf("minPoints=2: clusters=%d noise=%d, want 0/2", len(clusters), len(noise))
	}
}

func TestDBSCANBorderPointsJoinCluster(t *testing.T) {
	// A plus shape: the center is the only core point for minPoints=4,
	// the arms are border points.
	plus := []model.Cell{{5, 5}, {4, 5}, {6, 5}, {5, 4}, {5, 6}}
	clusters, noise := DBSCANCells(plus, 1, 4)
	if len(clusters) != 1 || len(clusters[0]) != 5 {
		t.Fatalf("clusters = %v, want one cluster of 5", clusters)
	}
	if len(noise) != 0 {
		t.Errorf("noise = %v, want none", noise)
	}
}

func TestDBSCANIgnoresInputOrder(t *testing.T) {
	cells := []model.Cell{
		{0, 0}, {1, 0}, {2, 0}, {2, 1},
		{8, 0}, {9, 0},
		{20, 5}, {20, 6}, {21, 6}, {22, 6},
	}
	reversed := slices.Clone(cells)
	slices.Reverse(reversed)

	a, _ := DBSCANCells(cells, 1, 1)
	b, _ := DBSCANCells(reversed, 1, 1)

	ma, mb := membership(a), membership(b)
	if len(ma) != len(mb) {
		t.Fatalf("membership sizes differ: %d vs %d", len(ma), len(mb))
	}
	for cell, ga := range ma {
		if gb, ok := mb[cell]; !ok || gb != ga {
			t.Errorf("cell %v in group %d, reversed input put it in %d", cell, ga, gb)
		}
	}
}

func TestDBSCANThreeDimensions(t *testing.T) {
	type point struct{ x, y, z float64 }
	points := []point{{0, 0, 0}, {0, 0, 1}, {0, 0, 5}}
	clusters, noise := DBSCAN(points, func(p point) Vector {
		return Vector{X: p.x, Y: p.y, Z: p.z}
	}, 1, 1)
	if len(clusters) != 1 || len(clusters[0]) != 2 {
		t.Errorf("clusters = %v, want one pair", clusters)
	}
	if len(noise) != 1 {
		t.Errorf("noise = %v, want the far point", noise)
	}
}

func TestDBSCANEmpty(t *testing.T) {
	clusters, noise := DBSCANCells(nil, 1, 1)
	if clusters != nil || noise != nil {
		t.Errorf("DBSCAN(nil) = %v, %v; want nil, nil", clusters, noise)
	}
}
