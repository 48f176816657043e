package agent

import (
	"fmt"
	"slices"
	"strings"

	"github.com/nstehr/vimy/vimy-terrain/analysis"
	"github.com/nstehr/vimy/vimy-terrain/model"
)

// EventKind identifies a change in the terrain picture between two frames.
type EventKind string

const (
	EventRampBlocked     EventKind = "ramp_blocked"
	EventRampCleared     EventKind = "ramp_cleared"
	EventExpandDepleted  EventKind = "expand_depleted"
	EventExpandUnblocked EventKind = "expand_unblocked"
	EventRouteChanged    EventKind = "route_changed"
	EventRouteLost       EventKind = "route_lost"
	EventAlertRaised     EventKind = "alert_raised"
)

// Event is a change detected by diffing consecutive reports. The bot gets
// these so it can react to transitions without diffing reports itself.
type Event struct {
	Kind     EventKind `json:"kind"`
	GameLoop int       `json:"gameLoop"`
	RegionID int       `json:"regionId"`
	Detail   string    `json:"detail"`
}

type alertKey struct {
	rule     string
	regionID int
}

// stateSnapshot captures the diffable fields of one report.
type stateSnapshot struct {
	obstructed map[int]bool
	depleted   map[model.Cell]bool
	blocked    map[model.Cell]bool
	expandIDs  map[model.Cell]int
	route      []int
	alerts     map[alertKey]bool
}

func takeSnapshot(rep analysis.Report) stateSnapshot {
	snap := stateSnapshot{
		obstructed: make(map[int]bool, len(rep.Obstructed)),
		depleted:   make(map[model.Cell]bool),
		blocked:    make(map[model.Cell]bool),
		expandIDs:  make(map[model.Cell]int, len(rep.Expands)),
		route:      slices.Clone(rep.Route),
		alerts:     make(map[alertKey]bool, len(rep.Alerts)),
	}
	for _, id := range rep.Obstructed {
		snap.obstructed[id] = true
	}
	for _, x := range rep.Expands {
		snap.expandIDs[x.Position] = x.RegionID
		if x.Depleted {
			snap.depleted[x.Position] = true
		}
		if x.Blocked {
			snap.blocked[x.Position] = true
		}
	}
	for _, a := range rep.Alerts {
		snap.alerts[alertKey{a.Rule, a.RegionID}] = true
	}
	return snap
}

// detectEvents compares a report against the previous snapshot. Returns nil
// if prev is nil (first ready frame).
func detectEvents(rep analysis.Report, prev *stateSnapshot) []Event {
	if prev == nil || !rep.Ready {
		return nil
	}

	var events []Event
	cur := takeSnapshot(rep)
	add := func(kind EventKind, region int, format string, args ...any) {
		events = append(events, Event{
			Kind:     kind,
			GameLoop: rep.GameLoop,
			RegionID: region,
			Detail:   fmt.Sprintf(format, args...),
		})
	}

	for _, id := range sortedKeys(cur.obstructed) {
		if !prev.obstructed[id] {
			add(EventRampBlocked, id, "ramp %d obstructed", id)
		}
	}
	for _, id := range sortedKeys(prev.obstructed) {
		if !cur.obstructed[id] {
			add(EventRampCleared, id, "ramp %d passable again", id)
		}
	}

	// Expands are walked in report order so events come out stable.
	for _, x := range rep.Expands {
		if x.Depleted && !prev.depleted[x.Position] {
			add(EventExpandDepleted, x.RegionID, "expansion at %d,%d mined out", x.Position.X, x.Position.Y)
		}
		if !x.Blocked && prev.blocked[x.Position] {
			add(EventExpandUnblocked, x.RegionID, "expansion at %d,%d no longer blocked", x.Position.X, x.Position.Y)
		}
	}

	switch {
	case len(cur.route) == 0 && len(prev.route) > 0:
		add(EventRouteLost, -1, "no passable route to the enemy start")
	case len(cur.route) > 0 && !slices.Equal(cur.route, prev.route):
		add(EventRouteChanged, -1, "route now %s", formatRoute(cur.route))
	}

	for _, a := range rep.Alerts {
		if !prev.alerts[alertKey{a.Rule, a.RegionID}] {
			add(EventAlertRaised, a.RegionID, "%s (%s, priority %d)", a.Rule, a.Category, a.Priority)
		}
	}

	return events
}

func sortedKeys(m map[int]bool) []int {
	keys := make([]int, 0, len(m))
	for k := range m {
		keys = append(keys, k)
	}
	slices.Sort(keys)
	return keys
}

// formatRoute renders a region path as "3 → 7 → 12".
func formatRoute(route []int) string {
	parts := make([]string, len(route))
	for i, id := range route {
		parts[i] = fmt.Sprint(id)
	}
	return strings.Join(parts, " → ")
}

// formatEvents renders events as a log-friendly block.
func formatEvents(events []Event) string {
	if len(events) == 0 {
		return ""
	}
	var b strings.Builder
	for _, e := range events {
		fmt.Fprintf(&b, "- [loop %d] %s: %s\n", e.GameLoop, e.Kind, e.Detail)
	}
	return b.String()
}
