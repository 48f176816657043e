package expand

import (
	"strings"

	"github.com/nstehr/vimy/vimy-terrain/model"
)

// ResourceKind is the closed classification of neutral units the analyzer cares about.
type ResourceKind int

const (
	NotResource ResourceKind = iota // critters, towers, anything unknown
	Mineral
	RichMineral
	DecorativeMineral // small mineral walls, never part of an expansion
	Gas
	RichGas
	Rock // destructible rocks and debris
)

// rockPrefixes name the neutral obstacle families that must be destroyed
// before a town hall fits.
var rockPrefixes = []string{
	"destructiblerock",
	"destructibledebris",
	"destructiblecitydebris",
	"destructibleice",
	"unbuildablerocks",
	"unbuildablebricks",
	"unbuildableplates",
	"collapsiblerocktower",
	"collapsibleterrantower",
}

// Classify maps a unit type name to its resource kind.
func Classify(unitType string) ResourceKind {
	name := strings.ToLower(unitType)
	for _, prefix := range rockPrefixes {
		if strings.HasPrefix(name, prefix) {
			return Rock
		}
	}
	switch name {
	case "mineralfield", "mineralfield750",
		"labmineralfield", "labmineralfield750",
		"purifiermineralfield", "purifiermineralfield750",
		"battlestationmineralfield", "battlestationmineralfield750":
		return Mineral
	case "richmineralfield", "richmineralfield750",
		"purifierrichmineralfield", "purifierrichmineralfield750":
		return RichMineral
	case "mineralfield450":
		return DecorativeMineral
	case "vespenegeyser", "spaceplatformgeyser",
		"protossvespenegeyser", "purifiervespenegeyser", "shakurasvespenegeyser":
		return Gas
	case "richvespenegeyser":
		return RichGas
	default:
		return NotResource
	}
}

// IsExpansionResource reports whether the kind belongs in a resource cluster.
func (k ResourceKind) IsExpansionResource() bool {
	switch k {
	case Mineral, RichMineral, Gas, RichGas:
		return true
	}
	return false
}

// IsBlocker reports whether a unit of this kind keeps a nearby expansion
// unusable until it is destroyed or mined out.
func (k ResourceKind) IsBlocker() bool {
	return k == Rock || k == DecorativeMineral
}

func (k ResourceKind) IsRare() bool {
	return k == RichMineral || k == RichGas
}

func (k ResourceKind) IsMineral() bool {
	return k == Mineral || k == RichMineral || k == DecorativeMineral
}

func (k ResourceKind) IsGas() bool {
	return k == Gas || k == RichGas
}

// footprint returns the cells covered by a resource unit: minerals are 2x1
// centered on a cell edge, geysers are 3x3 centered on a cell.
func footprint(u model.Unit) []model.Cell {
	k := Classify(u.Type)
	c := u.Cell()
	switch {
	case k.IsMineral():
		left := model.CellAt(u.X-0.5, u.Y)
		return []model.Cell{left, left.Add(1, 0)}
	case k.IsGas():
		out := make([]model.Cell, 0, 9)
		for dy := -1; dy <= 1; dy++ {
			for dx := -1; dx <= 1; dx++ {
				out = append(out, c.Add(dx, dy))
			}
		}
		return out
	}
	return []model.Cell{c}
}
