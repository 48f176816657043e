package rules

import (
	"fmt"
	"log/slog"
	"sort"
	"sync"

	"github.com/expr-lang/expr"
	"github.com/expr-lang/expr/vm"
)

// Engine runs compiled rules against every region each frame.
// Rules fire in priority order; exclusive rules block lower-priority rules
// in the same category for that region, so a region reports only its most
// severe alert of each kind.
//
// One engine may be shared by several sessions; Swap replaces the rule set
// for all of them.
type Engine struct {
	mu    sync.RWMutex
	rules []*Rule
}

// NewEngine compiles all rule conditions into expr bytecode and sorts by priority.
func NewEngine(rules []*Rule) (*Engine, error) {
	compiled, err := compileRules(rules)
	if err != nil {
		return nil, err
	}
	return &Engine{rules: compiled}, nil
}

// Evaluate runs all rules against each region of the snapshot.
func (e *Engine) Evaluate(snapshot []RegionEnv) []Alert {
	e.mu.RLock()
	rules := e.rules
	e.mu.RUnlock()

	var alerts []Alert
	for _, env := range snapshot {
		fired := make(map[string]bool) // category → exclusive rule already fired
		for _, r := range rules {
			if fired[r.Category] {
				continue
			}

			result, err := vm.Run(r.program, env)
			if err != nil {
				slog.Warn("rule condition error", "rule", r.Name, "region", env.ID, "error", err)
				continue
			}

			match, ok := result.(bool)
			if !ok || !match {
				continue
			}

			slog.Debug("rule fired", "rule", r.Name, "region", env.ID, "priority", r.Priority, "category", r.Category)
			alerts = append(alerts, Alert{Rule: r.Name, Category: r.Category, Priority: r.Priority, RegionID: env.ID})

			if r.Exclusive {
				fired[r.Category] = true
			}
		}
	}
	return alerts
}

// Swap atomically replaces the rule set. Compiles first; if compilation fails
// the old rules remain active.
func (e *Engine) Swap(newRules []*Rule) error {
	compiled, err := compileRules(newRules)
	if err != nil {
		return err
	}
	names := make([]string, len(compiled))
	for i, r := range compiled {
		names[i] = r.Name
	}
	e.mu.Lock()
	e.rules = compiled
	e.mu.Unlock()

	slog.Info("rule set swapped", "count", len(compiled), "rules", names)
	return nil
}

// Rules returns the active rule names in evaluation order.
func (e *Engine) Rules() []string {
	e.mu.RLock()
	defer e.mu.RUnlock()
	names := make([]string, len(e.rules))
	for i, r := range e.rules {
		names[i] = r.Name
	}
	return names
}

func compileRules(rules []*Rule) ([]*Rule, error) {
	out := make([]*Rule, 0, len(rules))
	for _, r := range rules {
		prog, err := expr.Compile(r.ConditionSrc, expr.Env(RegionEnv{}), expr.AsBool())
		if err != nil {
			return nil, fmt.Errorf("compile rule %q: %w", r.Name, err)
		}
		c := *r
		c.program = prog
		out = append(out, &c)
	}
	sort.SliceStable(out, func(i, j int) bool {
		return out[i].Priority > out[j].Priority
	})
	return out, nil
}
