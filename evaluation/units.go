package evaluation

import (
	"strings"

	"github.com/nstehr/vimy/vimy-terrain/model"
)

// staticDefenseForce weights structures that fight, in supply-equivalents.
var staticDefenseForce = map[string]float64{
	"photoncannon":      4,
	"shieldbattery":     2,
	"bunker":            4,
	"missileturret":     2,
	"planetaryfortress": 8,
	"spinecrawler":      4,
	"sporecrawler":      2,
}

var townHalls = map[string]bool{
	"commandcenter":       true,
	"commandcenterflying": true,
	"orbitalcommand":      true,
	"planetaryfortress":   true,
	"nexus":               true,
	"hatchery":            true,
	"lair":                true,
	"hive":                true,
}

// ForceOf is the military threat a unit contributes to its region: army supply
// for mobile units, fixed weights for static defense, nothing for workers and
// other structures.
func ForceOf(u model.Unit) float64 {
	name := strings.ToLower(u.TypeName())
	if w, ok := staticDefenseForce[name]; ok {
		return w
	}
	if u.IsStructure || u.IsWorker {
		return 0
	}
	return u.Supply
}

// ValueOf is the strategic worth a unit adds to its region.
func ValueOf(u model.Unit) float64 {
	name := strings.ToLower(u.TypeName())
	switch {
	case townHalls[name]:
		return 10
	case u.IsStructure:
		return 2
	case u.IsWorker:
		return 1
	default:
		return 0
	}
}
