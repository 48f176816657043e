package agent

import "github.com/nstehr/vimy/vimy-terrain/analysis"

// RegionReport is the reply to every game_state. Summary is set once, on the
// first frame the analysis is ready, so the bot can cache the region graph.
type RegionReport struct {
	analysis.Report
	Events  []Event           `json:"events"`
	Summary *analysis.Summary `json:"summary,omitempty"`
}
