package regions

import (
	"image/color"
	"slices"
	"testing"

	"github.com/nstehr/vimy/vimy-terrain/model"
)

func TestConnectGraphSymmetricNeighbors(t *testing.T) {
	_, d := buildTwoPlateaus()
	for _, r := range d.Regions {
		for _, n := range r.Neighbors {
			other, ok := d.Region(n.RegionID)
			if !ok {
				t.Fatalf("region %d lists missing neighbor %d", r.ID, n.RegionID)
			}
			if !other.IsNeighbor(r.ID) {
				t.Errorf("region %d neighbors %d but not the reverse", r.ID, n.RegionID)
			}
		}
	}
}

func TestConnectGraphFrontiers(t *testing.T) {
	_, d := buildTwoPlateaus()
	for _, r := range d.Regions {
		for _, n := range r.Neighbors {
			if len(n.Frontier) == 0 {
				t.Errorf("region %d -> %d has an empty frontier", r.ID, n.RegionID)
			}
			other := d.Regions[n.RegionID]
			for _, c := range n.Frontier {
				if !r.Contains(c) {
					t.Errorf("frontier cell %v of %d -> %d is not in region %d", c, r.ID, n.RegionID, r.ID)
				}
				touches := false
				for _, adj := range c.Neighbors4() {
					if other.Contains(adj) {
						touches = true
					}
				}
				if !touches {
					t.Errorf("frontier cell %v of %d does not touch region %d", c, r.ID, n.RegionID)
				}
			}
		}
	}

	low := d.OfType(Expand)[0]
	ramp := d.OfType(Ramp)[0]
	n, ok := low.Neighbor(ramp.ID)
	if !ok {
		t.Fatalf("low ground is not connected to the ramp")
	}
	want := []model.Cell{{11, 4}, {11, 5}, {11, 6}, {11, 7}}
	if !slices.Equal(n.Frontier, want) {
		t.Errorf("frontier = %v, want %v", n.Frontier, want)
	}
	if low.IsNeighbor(d.OfType(OpenArea)[0].ID) {
		t.Errorf("plateaus separated by cliffs should not be neighbors")
	}
}

func TestNeighborIDsSorted(t *testing.T) {
	_, d := buildTwoPlateaus()
	ramp := d.OfType(Ramp)[0]
	ids := ramp.NeighborIDs()
	if len(ids) != 2 || !slices.IsSorted(ids) {
		t.Errorf("ramp neighbor ids = %v, want two sorted ids", ids)
	}
}

func TestRampEndsAndChokepoints(t *testing.T) {
	_, d := buildTwoPlateaus()
	ramp := d.OfType(Ramp)[0]
	ends := RampEnds(d, ramp)
	if len(ends) != 2 {
		t.Fatalf("ramp ends = %d, want 2", len(ends))
	}
	want := []model.Cell{{11, 5}, {16, 5}}
	if !slices.Equal(d.Chokepoints, want) {
		t.Errorf("chokepoints = %v, want %v", d.Chokepoints, want)
	}
}

func TestConnectGraphTwiceChangesNothing(t *testing.T) {
	_, d := buildTwoPlateaus()
	chokepoints := slices.Clone(d.Chokepoints)
	neighbors := make([][]int, len(d.Regions))
	for i, r := range d.Regions {
		neighbors[i] = r.NeighborIDs()
	}

	ConnectGraph(d)

	if !slices.Equal(d.Chokepoints, chokepoints) {
		t.Errorf("chokepoints = %v after a second pass, want %v", d.Chokepoints, chokepoints)
	}
	for i, r := range d.Regions {
		if !slices.Equal(r.NeighborIDs(), neighbors[i]) {
			t.Errorf("region %d neighbors = %v, want %v", r.ID, r.NeighborIDs(), neighbors[i])
		}
	}
}

func TestAssignColorsDiffersFromNeighbors(t *testing.T) {
	_, d := buildTwoPlateaus()
	for _, r := range d.Regions {
		if r.Color.A != 255 {
			t.Errorf("region %d color %v is not opaque", r.ID, r.Color)
		}
		for _, n := range r.Neighbors {
			if d.Regions[n.RegionID].Color == r.Color {
				t.Errorf("regions %d and %d share color %v", r.ID, n.RegionID, r.Color)
			}
		}
	}
}

func TestPickFallsBackPastPalette(t *testing.T) {
	pal := palette()
	used := make(map[color.RGBA]bool)
	for _, c := range pal {
		used[c] = true
	}
	got := pick(pal, used, 7)
	if used[got] {
		t.Errorf("pick returned palette color %v although all are taken", got)
	}
	if got.A != 255 {
		t.Errorf("fallback color %v is not opaque", got)
	}
}
