package regions

import "github.com/nstehr/vimy/vimy-terrain/model"

// twoPlateaus builds a 30x12 map: low ground on the left (x 0-11, height 0),
// high ground on the right (x 16-29, height 2), joined by a 4x4 ramp at
// x 12-15, y 4-7. Everything else in the middle columns is cliff.
func twoPlateaus() *model.TerrainGrid {
	g := model.NewTerrainGrid(30, 12)
	for y := 0; y < 12; y++ {
		for x := 0; x < 30; x++ {
			c := model.Cell{x, y}
			switch {
			case x <= 11:
				g.SetWalkable(c, true)
				g.SetBuildable(c, true)
			case x >= 16:
				g.SetWalkable(c, true)
				g.SetBuildable(c, true)
				g.SetHeight(c, 2)
			case y >= 4 && y <= 7:
				g.SetWalkable(c, true)
				g.SetHeight(c, 1)
			}
		}
	}
	return g
}

var lowAnchor = model.Cell{5, 5}

func buildTwoPlateaus() (*model.TerrainGrid, *Data) {
	g := twoPlateaus()
	anchors := []model.Cell{lowAnchor}
	p := Split(g, nil, anchors, DefaultPartitionConfig())
	d := Build("TwoPlateaus", g.Width, g.Height, p, anchors)
	ConnectGraph(d)
	AssignColors(d)
	return g, d
}
