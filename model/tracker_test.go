package model

import "testing"

type recordingWatcher struct {
	dead []int64
}

func (w *recordingWatcher) ReportUnitDeath(u Unit) {
	w.dead = append(w.dead, u.ID)
}

func TestUnitTrackerReportsDeaths(t *testing.T) {
	tr := NewUnitTracker()
	tr.Update(Frame{Units: []Unit{
		{ID: 1, Type: "MineralField", Alliance: Neutral},
		{ID: 2, Type: "MineralField", Alliance: Neutral},
	}})

	w := &recordingWatcher{}
	tr.Watch(1, w)
	tr.Watch(2, w)

	tr.Update(Frame{DeadUnits: []int64{2}})
	if len(w.dead) != 1 || w.dead[0] != 2 {
		t.Fatalf("dead = %v, want [2]", w.dead)
	}
	if _, ok := tr.Get(2); ok {
		t.Error("dead unit should be forgotten")
	}

	// A second report of the same death must not notify twice.
	tr.Update(Frame{DeadUnits: []int64{2}})
	if len(w.dead) != 1 {
		t.Errorf("dead = %v, want a single notification", w.dead)
	}
}

func TestUnitTrackerKeepsUnitsOutOfVision(t *testing.T) {
	tr := NewUnitTracker()
	tr.Update(Frame{Units: []Unit{{ID: 7, Alliance: Neutral}, {ID: 3, Alliance: Neutral}}})
	tr.Update(Frame{})

	got := tr.Of(Neutral)
	if len(got) != 2 {
		t.Fatalf("Of(Neutral) = %d units, want 2", len(got))
	}
	if got[0].ID != 3 {
		t.Errorf("Of should order by id, first = %d", got[0].ID)
	}
}
