package model

import "slices"

// DeathWatcher receives a callback when a watched unit dies.
type DeathWatcher interface {
	ReportUnitDeath(u Unit)
}

// UnitTracker is the units provider: it keeps the latest known state of every
// unit and notifies watchers about deaths reported in a frame.
type UnitTracker struct {
	units    map[int64]Unit
	watchers map[int64][]DeathWatcher
}

func NewUnitTracker() *UnitTracker {
	return &UnitTracker{
		units:    make(map[int64]Unit),
		watchers: make(map[int64][]DeathWatcher),
	}
}

// Update records the units seen this frame and dispatches death notifications.
// Units not present in the frame keep their last known state until they are
// reported dead; neutral units outside vision are still on the map.
func (t *UnitTracker) Update(f Frame) {
	for _, u := range f.Units {
		t.units[u.ID] = u
	}
	for _, id := range f.DeadUnits {
		u, ok := t.units[id]
		if !ok {
			u = Unit{ID: id}
		}
		delete(t.units, id)
		for _, w := range t.watchers[id] {
			w.ReportUnitDeath(u)
		}
		delete(t.watchers, id)
	}
}

// Watch registers w for the death of the unit with the given id.
func (t *UnitTracker) Watch(id int64, w DeathWatcher) {
	t.watchers[id] = append(t.watchers[id], w)
}

func (t *UnitTracker) Get(id int64) (Unit, bool) {
	u, ok := t.units[id]
	return u, ok
}

// Of returns every known unit of the alliance, ordered by id.
func (t *UnitTracker) Of(a Alliance) []Unit {
	var out []Unit
	for _, u := range t.units {
		if u.Alliance == a {
			out = append(out, u)
		}
	}
	slices.SortFunc(out, func(x, y Unit) int {
		switch {
		case x.ID < y.ID:
			return -1
		case x.ID > y.ID:
			return 1
		}
		return 0
	})
	return out
}

func (t *UnitTracker) Len() int { return len(t.units) }
