package analysis

import (
	"context"
	"errors"
	"slices"
	"testing"

	"github.com/nstehr/vimy/vimy-terrain/model"
	"github.com/nstehr/vimy/vimy-terrain/regions"
	"github.com/nstehr/vimy/vimy-terrain/rules"
	"github.com/nstehr/vimy/vimy-terrain/store"
)

const (
	mapW = 60
	mapH = 30
)

var (
	ownStart   = model.Cell{10, 20}
	enemyStart = model.Cell{50, 20}
)

// valley is two plateaus joined by a ramp at x 25-28, y 12-17. Low ground
// (height 0) on the left, high ground (height 2) on the right.
func valley() *model.TerrainGrid {
	g := model.NewTerrainGrid(mapW, mapH)
	for y := 0; y < mapH; y++ {
		for x := 0; x < mapW; x++ {
			c := model.Cell{x, y}
			switch {
			case x <= 24:
				g.SetWalkable(c, true)
				g.SetBuildable(c, true)
			case x >= 29:
				g.SetWalkable(c, true)
				g.SetBuildable(c, true)
				g.SetHeight(c, 2)
			case y >= 12 && y <= 17:
				g.SetWalkable(c, true)
				g.SetHeight(c, 1)
			}
		}
	}
	return g
}

func minerals(firstID int64, x, y float64) []model.Unit {
	out := make([]model.Unit, 8)
	for i := range out {
		out[i] = model.Unit{ID: firstID + int64(i), Type: "MineralField", Alliance: model.Neutral, X: x + float64(i), Y: y}
	}
	return out
}

func neutralUnits() []model.Unit {
	return append(minerals(100, 6, 3), minerals(200, 45, 3)...)
}

func placementOf(g *model.TerrainGrid) []int {
	out := make([]int, g.Width*g.Height)
	for y := 0; y < g.Height; y++ {
		for x := 0; x < g.Width; x++ {
			if g.IsBuildable(model.Cell{x, y}) {
				out[y*g.Width+x] = 1
			}
		}
	}
	return out
}

func newEngine(t *testing.T, maps *MapCache, ruleSet *rules.Engine) (*Engine, *model.TerrainGrid) {
	t.Helper()
	g := valley()
	e := New(Deps{
		MapName:     "Valley LE",
		Terrain:     g,
		Start:       ownStart,
		EnemyStarts: []model.Cell{enemyStart},
		Maps:        maps,
		Rules:       ruleSet,
	}, DefaultConfig())
	return e, g
}

func setupFrame(g *model.TerrainGrid) model.Frame {
	return model.Frame{GameLoop: 1, Units: neutralUnits(), Placement: placementOf(g)}
}

func mustSetup(t *testing.T, e *Engine, g *model.TerrainGrid) {
	t.Helper()
	if err := e.Setup(context.Background(), setupFrame(g)); err != nil {
		t.Fatalf("Setup: %v", err)
	}
}

func wallAcrossRamp() []model.Cell {
	var out []model.Cell
	for y := 12; y <= 17; y++ {
		out = append(out, model.Cell{26, y})
	}
	return out
}

func TestSetupNotReadyWithoutPlacement(t *testing.T) {
	e, _ := newEngine(t, nil, nil)
	err := e.Setup(context.Background(), model.Frame{Units: neutralUnits()})
	if !errors.Is(err, ErrNotReady) {
		t.Fatalf("err = %v, want ErrNotReady", err)
	}
	if rep := e.Update(model.Frame{GameLoop: 5}); rep.Ready {
		t.Errorf("Update before setup reported ready")
	}
	if e.Summary() != nil {
		t.Errorf("Summary before setup should be nil")
	}
}

func TestSetupNotReadyWithoutResources(t *testing.T) {
	e, g := newEngine(t, nil, nil)
	err := e.Setup(context.Background(), model.Frame{Placement: placementOf(g)})
	if !errors.Is(err, ErrNotReady) {
		t.Errorf("err = %v, want ErrNotReady", err)
	}
}

func TestSetupBuildsRegions(t *testing.T) {
	e, g := newEngine(t, nil, nil)
	mustSetup(t, e, g)

	if !e.Ready() {
		t.Fatalf("engine not ready after Setup")
	}
	d := e.Regions()
	expands := d.OfType(regions.Expand)
	if len(expands) != 2 {
		t.Fatalf("expand regions = %d, want 2", len(expands))
	}
	for _, r := range expands {
		if r.ExpandLocation == nil {
			t.Errorf("expand region %d has no bound location", r.ID)
		}
	}
	if len(d.OfType(regions.Ramp)) != 1 {
		t.Errorf("ramps = %d, want 1", len(d.OfType(regions.Ramp)))
	}
	if len(e.Locations()) != 2 {
		t.Errorf("locations = %d, want 2", len(e.Locations()))
	}

	// Setup is idempotent once ready.
	if err := e.Setup(context.Background(), model.Frame{}); err != nil {
		t.Errorf("second Setup: %v", err)
	}
}

func TestUpdateTracksRampObstruction(t *testing.T) {
	ruleSet, err := rules.NewEngine(rules.DefaultRules())
	if err != nil {
		t.Fatal(err)
	}
	e, g := newEngine(t, nil, ruleSet)
	mustSetup(t, e, g)
	ramp := e.Regions().OfType(regions.Ramp)[0]

	rep := e.Update(model.Frame{GameLoop: 10})
	if !rep.Ready || len(rep.Obstructed) != 0 {
		t.Fatalf("report = %+v, want ready with no obstruction", rep)
	}
	if len(rep.Route) != 3 || rep.Route[1] != ramp.ID {
		t.Errorf("route = %v, want start -> ramp -> enemy", rep.Route)
	}

	rep = e.Update(model.Frame{GameLoop: 20, Blocked: wallAcrossRamp()})
	if !slices.Equal(rep.Obstructed, []int{ramp.ID}) {
		t.Fatalf("obstructed = %v, want [%d]", rep.Obstructed, ramp.ID)
	}
	if rep.Route != nil {
		t.Errorf("route = %v, want none through a blocked ramp", rep.Route)
	}
	found := false
	for _, a := range rep.Alerts {
		if a.Rule == "ramp-obstructed" && a.RegionID == ramp.ID {
			found = true
		}
	}
	if !found {
		t.Errorf("alerts = %+v, want ramp-obstructed for region %d", rep.Alerts, ramp.ID)
	}

	rep = e.Update(model.Frame{GameLoop: 30})
	if len(rep.Obstructed) != 0 {
		t.Errorf("obstructed = %v after the wall is gone, want none", rep.Obstructed)
	}
}

func TestUpdateReportsDepletion(t *testing.T) {
	e, g := newEngine(t, nil, nil)
	mustSetup(t, e, g)

	var dead []int64
	for id := int64(100); id < 108; id++ {
		dead = append(dead, id)
	}
	rep := e.Update(model.Frame{GameLoop: 40, DeadUnits: dead})

	depleted := 0
	for _, s := range rep.Expands {
		if s.RegionID < 0 {
			t.Errorf("expand %v not bound to a region", s.Position)
		}
		if s.Depleted {
			depleted++
		}
	}
	if depleted != 1 {
		t.Errorf("depleted expands = %d, want 1", depleted)
	}
}

func TestForceFollowsUnits(t *testing.T) {
	e, g := newEngine(t, nil, nil)
	mustSetup(t, e, g)
	enemyRegion, ok := e.Regions().RegionAt(enemyStart)
	if !ok {
		t.Fatalf("no region at the enemy start")
	}

	e.Update(model.Frame{GameLoop: 50, Units: []model.Unit{
		{ID: 900, Type: "Zealot", Alliance: model.Enemy, X: 50.5, Y: 20.5, Supply: 2},
	}})
	if got := e.Force(model.Enemy, enemyRegion.ID); got != 2 {
		t.Errorf("Force(enemy) = %v, want 2", got)
	}
	if got := e.Force(model.Neutral, enemyRegion.ID); got != -1 {
		t.Errorf("Force(neutral) = %v, want Unknown", got)
	}
}

func TestSummary(t *testing.T) {
	e, g := newEngine(t, nil, nil)
	mustSetup(t, e, g)
	s := e.Summary()
	if s == nil || len(s.Regions) != len(e.Regions().Regions) {
		t.Fatalf("summary = %+v", s)
	}
	if len(s.Chokepoints) < 2 {
		t.Errorf("chokepoints = %v, want at least the two ramp ends", s.Chokepoints)
	}
}

func TestSetupReusesStoredDocument(t *testing.T) {
	fs := store.NewFileStore(t.TempDir())

	first, g := newEngine(t, NewMapCache(fs), nil)
	mustSetup(t, first, g)

	// A fresh cache forces a load from disk.
	second, g2 := newEngine(t, NewMapCache(fs), nil)
	mustSetup(t, second, g2)

	if len(second.Regions().Regions) != len(first.Regions().Regions) {
		t.Errorf("reloaded regions = %d, want %d", len(second.Regions().Regions), len(first.Regions().Regions))
	}
	for _, r := range second.Regions().OfType(regions.Expand) {
		if r.ExpandLocation == nil {
			t.Errorf("reloaded expand region %d has no bound location", r.ID)
		}
	}
}

// rewatcher keeps watching its unit so every dispatch is counted.
type rewatcher struct {
	tracker *model.UnitTracker
	deaths  int
}

func (w *rewatcher) ReportUnitDeath(u model.Unit) {
	w.deaths++
	w.tracker.Watch(u.ID, w)
}

func TestSetupFrameDeathsDispatchedOnce(t *testing.T) {
	e, g := newEngine(t, nil, nil)
	w := &rewatcher{tracker: e.tracker}
	e.tracker.Watch(500, w)

	f := setupFrame(g)
	f.DeadUnits = []int64{500}
	if err := e.Setup(context.Background(), f); err != nil {
		t.Fatalf("Setup: %v", err)
	}
	e.Update(f)
	if w.deaths != 1 {
		t.Errorf("deaths dispatched = %d, want 1", w.deaths)
	}

	e.Update(model.Frame{GameLoop: 2, DeadUnits: []int64{500}})
	if w.deaths != 2 {
		t.Errorf("deaths dispatched = %d after the next frame, want 2", w.deaths)
	}
}
