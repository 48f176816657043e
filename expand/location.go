package expand

import (
	"slices"

	"github.com/nstehr/vimy/vimy-terrain/model"
)

// Type ranks an expansion by how it relates to the two start locations.
type Type int

const (
	Main Type = iota
	Natural
	Third
	Fourth
	Fifth
	Far
	Gold
	Pocket
)

var typeNames = [...]string{"Main", "Natural", "Third", "Fourth", "Fifth", "Far", "Gold", "Pocket"}

func (t Type) String() string {
	if t < 0 || int(t) >= len(typeNames) {
		return "Unknown"
	}
	return typeNames[t]
}

func (t Type) MarshalText() ([]byte, error) {
	return []byte(t.String()), nil
}

// rankType converts a 0-based distance rank into Main..Fifth, or Far.
func rankType(rank int) Type {
	if rank < int(Far) {
		return Type(rank)
	}
	return Far
}

// Location is a town hall anchor next to one resource cluster. Resources and
// Blockers are kept current by death notifications from the unit tracker.
type Location struct {
	Position          model.Cell
	Type              Type
	Resources         map[int64]model.Unit
	Blockers          map[int64]model.Unit
	DistanceFromStart float64 // path distance, -1 when unreachable
	DistanceFromEnemy float64
	// EnemySide is set when Type was ranked from the enemy start.
	EnemySide bool

	hasRare bool
}

func newLocation(pos model.Cell) *Location {
	return &Location{
		Position:          pos,
		Type:              Far,
		Resources:         make(map[int64]model.Unit),
		Blockers:          make(map[int64]model.Unit),
		DistanceFromStart: -1,
		DistanceFromEnemy: -1,
	}
}

// ReportUnitDeath implements model.DeathWatcher.
func (l *Location) ReportUnitDeath(u model.Unit) {
	delete(l.Resources, u.ID)
	delete(l.Blockers, u.ID)
}

func (l *Location) IsDepleted() bool { return len(l.Resources) == 0 }

func (l *Location) IsBlocked() bool { return len(l.Blockers) > 0 }

// Watch registers the location for the deaths of all its resources and blockers.
func (l *Location) Watch(t *model.UnitTracker) {
	for id := range l.Resources {
		t.Watch(id, l)
	}
	for id := range l.Blockers {
		t.Watch(id, l)
	}
}

// ResourceIDs returns the remaining resource unit ids in ascending order.
func (l *Location) ResourceIDs() []int64 {
	ids := make([]int64, 0, len(l.Resources))
	for id := range l.Resources {
		ids = append(ids, id)
	}
	slices.Sort(ids)
	return ids
}
