package regions

import (
	"encoding/json"
	"testing"

	"github.com/nstehr/vimy/vimy-terrain/model"
)

func TestRegionAt(t *testing.T) {
	_, d := buildTwoPlateaus()
	r, ok := d.RegionAt(model.Cell{13, 6})
	if !ok || r.Type != Ramp {
		t.Errorf("RegionAt(13,6) = %v, want the ramp", r)
	}
	if _, ok := d.RegionAt(model.Cell{13, 0}); ok {
		t.Errorf("cliff cell should not belong to a region")
	}
	if _, ok := d.Region(len(d.Regions)); ok {
		t.Errorf("Region(out of range) should miss")
	}
}

func TestCloneIsIndependent(t *testing.T) {
	_, d := buildTwoPlateaus()
	ramp := d.OfType(Ramp)[0]
	ramp.IsObstructed = true

	c := d.Clone()
	if err := c.Validate(); err != nil {
		t.Fatalf("clone invalid: %v", err)
	}
	if c.Regions[ramp.ID].IsObstructed {
		t.Errorf("clone should start with runtime state reset")
	}
	c.Regions[0].Cells[0] = model.Cell{99, 99}
	c.Regions[0].Neighbors[0].Frontier[0] = model.Cell{99, 99}
	if d.Regions[0].Cells[0] == (model.Cell{99, 99}) || d.Regions[0].Neighbors[0].Frontier[0] == (model.Cell{99, 99}) {
		t.Errorf("mutating the clone changed the original")
	}
}

func TestValidate(t *testing.T) {
	_, d := buildTwoPlateaus()
	if err := d.Validate(); err != nil {
		t.Fatalf("Validate() = %v", err)
	}

	stale := d.Clone()
	stale.SchemaVersion = SchemaVersion + 1
	if stale.Validate() == nil {
		t.Errorf("schema mismatch should fail validation")
	}

	broken := d.Clone()
	broken.Regions[0].Neighbors = append(broken.Regions[0].Neighbors, NeighboringRegion{RegionID: 42})
	if broken.Validate() == nil {
		t.Errorf("dangling neighbor should fail validation")
	}
}

func TestDataJSONKeepsGraph(t *testing.T) {
	_, d := buildTwoPlateaus()
	b, err := json.Marshal(d)
	if err != nil {
		t.Fatal(err)
	}
	var got Data
	if err := json.Unmarshal(b, &got); err != nil {
		t.Fatal(err)
	}
	if err := got.Validate(); err != nil {
		t.Fatalf("decoded document invalid: %v", err)
	}
	r, ok := got.RegionAt(lowAnchor)
	if !ok || r.Type != Expand {
		t.Fatalf("decoded RegionAt(anchor) = %v, want the expand region", r)
	}
	if r.ExpandPosition == nil || *r.ExpandPosition != lowAnchor {
		t.Errorf("expand position lost in round trip: %v", r.ExpandPosition)
	}
	if !r.IsNeighbor(got.OfType(Ramp)[0].ID) {
		t.Errorf("neighbors lost in round trip")
	}
}

func TestRegionTypeText(t *testing.T) {
	var rt RegionType
	if err := rt.UnmarshalText([]byte("Ramp")); err != nil || rt != Ramp {
		t.Errorf("UnmarshalText(Ramp) = %v, %v", rt, err)
	}
	if err := rt.UnmarshalText([]byte("Lake")); err == nil {
		t.Errorf("UnmarshalText(Lake) should fail")
	}
}
