package model

// GameLoopsPerSecond is the simulation rate at "faster" game speed.
const GameLoopsPerSecond = 22.4

// Alliance is the relationship of a unit's owner to the player running the sidecar.
type Alliance string

const (
	Self    Alliance = "self"
	Ally    Alliance = "ally"
	Enemy   Alliance = "enemy"
	Neutral Alliance = "neutral"
)

// Visibility of a cell for the player, matching the mod's visibility grid values.
type Visibility byte

const (
	Hidden   Visibility = 0
	Snapshot Visibility = 1 // explored, not currently observed
	Visible  Visibility = 2
)

// Frame is one game_state message: everything the sidecar learns per game loop.
type Frame struct {
	GameLoop   int     `json:"gameLoop"`
	Units      []Unit  `json:"units"`
	DeadUnits  []int64 `json:"deadUnits"`
	Visibility []int   `json:"visibility"` // row-major, one entry per terrain cell
	Blocked    []Cell  `json:"blocked"`    // cells currently blocked by structures, rocks or force fields
	Placement  []int   `json:"placement,omitempty"`
}

// VisibilityAt returns the visibility of c for a grid of the given width.
// Missing data counts as Hidden.
func (f Frame) VisibilityAt(width int, c Cell) Visibility {
	if c.X < 0 || c.Y < 0 || c.X >= width {
		return Hidden
	}
	i := c.Y*width + c.X
	if i >= len(f.Visibility) {
		return Hidden
	}
	return Visibility(f.Visibility[i])
}

// UnitsOf returns the frame's units owned by the given alliance.
func (f Frame) UnitsOf(a Alliance) []Unit {
	var out []Unit
	for _, u := range f.Units {
		if u.Alliance == a {
			out = append(out, u)
		}
	}
	return out
}

type Unit struct {
	ID          int64    `json:"id"`
	Type        string   `json:"type"`
	Alliance    Alliance `json:"alliance"`
	X           float64  `json:"x"`
	Y           float64  `json:"y"`
	Radius      float64  `json:"radius"`
	Supply      float64  `json:"supply"`
	IsStructure bool     `json:"isStructure"`
	IsWorker    bool     `json:"isWorker"`
	IsFlying    bool     `json:"isFlying"`
}

func (u Unit) TypeName() string { return u.Type }

// Cell returns the cell under the unit's position.
func (u Unit) Cell() Cell { return CellAt(u.X, u.Y) }
