package rules

import (
	"github.com/expr-lang/expr/vm"
)

// Rule is one watch condition over a region. The engine evaluates rules by
// priority and uses Category + Exclusive so that, for a single region, a
// stronger alert suppresses weaker alerts of the same kind.
type Rule struct {
	Name         string      `json:"name"`      // human-readable identifier
	Priority     int         `json:"priority"`  // higher = evaluated first
	Category     string      `json:"category"`  // grouping for exclusive semantics
	Exclusive    bool        `json:"exclusive"` // if true, blocks lower-priority rules in same category
	ConditionSrc string      `json:"condition"` // expr source
	program      *vm.Program // compiled bytecode
}

// Alert is a rule that matched a region on a given frame.
type Alert struct {
	Rule     string `json:"rule"`
	Category string `json:"category"`
	Priority int    `json:"priority"`
	RegionID int    `json:"regionId"`
}
