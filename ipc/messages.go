package ipc

import (
	"fmt"

	"github.com/nstehr/vimy/vimy-terrain/model"
)

// These constants must stay in sync with the bot-side MessageType enum.
const (
	TypeHello        = "hello"
	TypeAck          = "ack"
	TypeGameState    = "game_state"
	TypeRegionReport = "region_report"
)

type HelloMessage struct {
	Player              string       `json:"player"`
	Race                string       `json:"race"`
	MapName             string       `json:"mapName"`
	Terrain             *TerrainData `json:"terrain,omitempty"`
	StartLocation       model.Cell   `json:"startLocation"`
	EnemyStartLocations []model.Cell `json:"enemyStartLocations"`
	StartBuildings      []model.Cell `json:"startBuildings"`
}

// TerrainData carries the static map grids, row-major, one entry per cell.
// Required: without it no analysis can run.
type TerrainData struct {
	Width     int       `json:"width"`
	Height    int       `json:"height"`
	Pathing   []int     `json:"pathing"`
	Placement []int     `json:"placement"`
	Heights   []float64 `json:"heights"`
}

// Grid validates the grids and converts them into a TerrainGrid.
func (t *TerrainData) Grid() (*model.TerrainGrid, error) {
	if t.Width <= 0 || t.Height <= 0 {
		return nil, fmt.Errorf("invalid terrain size %dx%d", t.Width, t.Height)
	}
	n := t.Width * t.Height
	if len(t.Pathing) != n || len(t.Placement) != n {
		return nil, fmt.Errorf("terrain grids have %d/%d cells, want %d", len(t.Pathing), len(t.Placement), n)
	}
	if len(t.Heights) != 0 && len(t.Heights) != n {
		return nil, fmt.Errorf("height grid has %d cells, want %d", len(t.Heights), n)
	}
	g := model.NewTerrainGrid(t.Width, t.Height)
	for i := 0; i < n; i++ {
		c := model.Cell{X: i % t.Width, Y: i / t.Width}
		g.SetWalkable(c, t.Pathing[i] != 0)
		g.SetBuildable(c, t.Placement[i] != 0)
		if len(t.Heights) == n {
			g.SetHeight(c, t.Heights[i])
		}
	}
	return g, nil
}

type AckMessage struct {
	Status string `json:"status"`
}
