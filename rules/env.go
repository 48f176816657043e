package rules

import (
	"strings"

	"github.com/nstehr/vimy/vimy-terrain/model"
)

// RegionEnv is the per-region view a rule condition is evaluated against.
// Fields and methods are callable from expr expressions.
type RegionEnv struct {
	ID           int
	Type         string // OpenArea, Ramp or Expand
	IsObstructed bool

	// Expansion state, empty/false for regions without an expansion.
	// EnemySide means ExpandType ranks the site from the enemy start.
	ExpandType string
	EnemySide  bool
	IsDepleted bool
	IsBlocked  bool

	SelfForce  float64
	SelfValue  float64
	EnemyForce float64
	EnemyValue float64

	// Visible is the fraction of the region's cells currently in vision.
	Visible  float64
	GameLoop int
}

func (e RegionEnv) IsRamp() bool   { return e.Type == "Ramp" }
func (e RegionEnv) IsExpand() bool { return e.Type == "Expand" }

// IsExpandType matches the expansion classification (Main, Natural, Gold...).
func (e RegionEnv) IsExpandType(t string) bool {
	return e.ExpandType != "" && strings.EqualFold(e.ExpandType, t)
}

// IsHome is true for the player's main and natural.
func (e RegionEnv) IsHome() bool {
	return !e.EnemySide && (e.IsExpandType("Main") || e.IsExpandType("Natural"))
}

// IsEnemyHome is true for the enemy's main and natural.
func (e RegionEnv) IsEnemyHome() bool {
	return e.EnemySide && (e.IsExpandType("Main") || e.IsExpandType("Natural"))
}

// Contested is true when both sides have force in the region.
func (e RegionEnv) Contested() bool {
	return e.SelfForce > 0 && e.EnemyForce > 0
}

// Outgunned is true when enemy force exceeds ours by the given ratio.
func (e RegionEnv) Outgunned(ratio float64) bool {
	return e.EnemyForce > 0 && e.EnemyForce > ratio*e.SelfForce
}

func (e RegionEnv) Seconds() float64 {
	return float64(e.GameLoop) / model.GameLoopsPerSecond
}
