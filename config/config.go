// Package config holds the sidecar settings: defaults, overlaid by an
// optional JSON file.
package config

import (
	"encoding/json"
	"fmt"
	"log/slog"
	"os"
	"strings"

	"github.com/nstehr/vimy/vimy-terrain/analysis"
	"github.com/nstehr/vimy/vimy-terrain/evaluation"
	"github.com/nstehr/vimy/vimy-terrain/rules"
)

// DecayConfig names an evaluation decay strategy and its parameter: a
// per-second rate for "linear", a half-life in seconds for "exponential".
type DecayConfig struct {
	Kind  string  `json:"kind"`
	Param float64 `json:"param"`
}

// Config holds the sidecar settings.
type Config struct {
	SocketPath string `json:"socket_path"`
	DataDir    string `json:"data_dir"`
	Store      string `json:"store"` // file | sqlite | none
	LogLevel   string `json:"log_level"`

	// Expansion analysis.
	ClusterEpsilon   float64 `json:"cluster_epsilon"`
	ClusterMinPoints int     `json:"cluster_min_points"`
	AnchorSearch     int     `json:"anchor_search_radius"`
	PocketThreshold  int     `json:"pocket_threshold"`
	BlockerRadius    float64 `json:"blocker_radius"`

	// Region partitioning.
	MinRampCells  int     `json:"min_ramp_cells"`
	MaxRampCells  int     `json:"max_ramp_cells"`
	OpenMinPoints int     `json:"open_min_points"`
	HeightStep    float64 `json:"height_step"`

	// Force/value evaluation.
	ValueDecay   DecayConfig `json:"value_decay"`
	ForceDecay   DecayConfig `json:"force_decay"`
	RiseRate     float64     `json:"rise_rate"`
	UnknownValue float64     `json:"unknown_value"`

	// Rules replaces the built-in watch rules when non-empty.
	Rules []*rules.Rule `json:"rules"`
}

// Default returns a Config with sensible defaults.
func Default() *Config {
	a := analysis.DefaultConfig()
	return &Config{
		SocketPath: "/tmp/vimy-terrain.sock",
		DataDir:    "data",
		Store:      "file",
		LogLevel:   "info",

		ClusterEpsilon:   a.Expand.ClusterEpsilon,
		ClusterMinPoints: a.Expand.ClusterMinPoints,
		AnchorSearch:     a.Expand.SearchRadius,
		PocketThreshold:  a.Expand.PocketThreshold,
		BlockerRadius:    a.Expand.BlockerRadius,

		MinRampCells:  a.Partition.MinRampCells,
		MaxRampCells:  a.Partition.MaxRampCells,
		OpenMinPoints: a.Partition.OpenMinPoints,
		HeightStep:    a.Partition.HeightStep,

		ValueDecay:   DecayConfig{Kind: "linear", Param: 0.5},
		ForceDecay:   DecayConfig{Kind: "exponential", Param: 20},
		RiseRate:     a.Evaluation.RiseRate,
		UnknownValue: a.Evaluation.UnknownValue,
	}
}

// Load reads a JSON file over the defaults. Keys missing from the file keep
// their default value. An empty path returns the defaults.
func Load(path string) (*Config, error) {
	cfg := Default()
	if path == "" {
		return cfg, nil
	}
	raw, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read config: %w", err)
	}
	if err := json.Unmarshal(raw, cfg); err != nil {
		return nil, fmt.Errorf("parse config %s: %w", path, err)
	}
	if _, err := cfg.Analysis(); err != nil {
		return nil, fmt.Errorf("config %s: %w", path, err)
	}
	return cfg, nil
}

// Analysis converts the settings into the analysis engine configuration.
func (c *Config) Analysis() (analysis.Config, error) {
	a := analysis.DefaultConfig()
	a.Expand.ClusterEpsilon = c.ClusterEpsilon
	a.Expand.ClusterMinPoints = c.ClusterMinPoints
	a.Expand.SearchRadius = c.AnchorSearch
	a.Expand.PocketThreshold = c.PocketThreshold
	a.Expand.BlockerRadius = c.BlockerRadius

	a.Partition.MinRampCells = c.MinRampCells
	a.Partition.MaxRampCells = c.MaxRampCells
	a.Partition.OpenMinPoints = c.OpenMinPoints
	a.Partition.HeightStep = c.HeightStep

	var err error
	if a.Evaluation.ValueDecay, err = evaluation.NewDecay(c.ValueDecay.Kind, c.ValueDecay.Param); err != nil {
		return analysis.Config{}, fmt.Errorf("value_decay: %w", err)
	}
	if a.Evaluation.ForceDecay, err = evaluation.NewDecay(c.ForceDecay.Kind, c.ForceDecay.Param); err != nil {
		return analysis.Config{}, fmt.Errorf("force_decay: %w", err)
	}
	a.Evaluation.RiseRate = c.RiseRate
	a.Evaluation.UnknownValue = c.UnknownValue
	return a, nil
}

// RuleSet returns the configured watch rules, or the built-in ones.
func (c *Config) RuleSet() []*rules.Rule {
	if len(c.Rules) > 0 {
		return c.Rules
	}
	return rules.DefaultRules()
}

// Level maps LogLevel to a slog level; unknown names mean info.
func (c *Config) Level() slog.Level {
	switch strings.ToLower(c.LogLevel) {
	case "debug":
		return slog.LevelDebug
	case "warn", "warning":
		return slog.LevelWarn
	case "error":
		return slog.LevelError
	default:
		return slog.LevelInfo
	}
}
