// Package analysis runs the terrain pipeline for one game: expansion
// analysis, region decomposition (or reuse of a stored decomposition), and
// the per-frame obstruction and force/value updates.
package analysis

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/zyedidia/generic/mapset"

	"github.com/nstehr/vimy/vimy-terrain/evaluation"
	"github.com/nstehr/vimy/vimy-terrain/expand"
	"github.com/nstehr/vimy/vimy-terrain/model"
	"github.com/nstehr/vimy/vimy-terrain/pathfind"
	"github.com/nstehr/vimy/vimy-terrain/regions"
	"github.com/nstehr/vimy/vimy-terrain/rules"
)

// ErrNotReady wraps every transient setup failure; retry on a later frame.
var ErrNotReady = errors.New("analysis not ready")

type Config struct {
	Expand     expand.Config
	Partition  regions.PartitionConfig
	Evaluation evaluation.Config
}

func DefaultConfig() Config {
	return Config{
		Expand:     expand.DefaultConfig(),
		Partition:  regions.DefaultPartitionConfig(),
		Evaluation: evaluation.DefaultConfig(),
	}
}

// Deps is everything an engine needs from the host for one game.
type Deps struct {
	MapName     string
	Terrain     *model.TerrainGrid
	Start       model.Cell
	EnemyStarts []model.Cell
	// StartBuildings are the cells under the player's starting buildings;
	// they belong to the map even though the pathing grid marks them blocked.
	StartBuildings []model.Cell

	Maps  *MapCache     // nil: every game builds its own document
	Rules *rules.Engine // nil: no alerts
}

// Engine owns all per-game analysis state. A new game gets a new Engine.
type Engine struct {
	deps Deps
	cfg  Config

	paths   *pathfind.Pathfinder
	tracker *model.UnitTracker

	data      *regions.Data
	locations []*expand.Location
	oracle    *regions.Oracle
	eval      *evaluation.Evaluator
	ready     bool

	// setupLoop is the game loop of the frame Setup already fed to the
	// tracker; Update skips the tracker for that frame.
	setupLoop  int
	setupFresh bool

	obstacles mapset.Set[model.Cell]
}

func New(deps Deps, cfg Config) *Engine {
	if deps.Maps == nil {
		deps.Maps = NewMapCache(nil)
	}
	return &Engine{
		deps:      deps,
		cfg:       cfg,
		paths:     pathfind.New(deps.Terrain),
		tracker:   model.NewUnitTracker(),
		obstacles: mapset.New[model.Cell](),
	}
}

func (e *Engine) Ready() bool { return e.ready }

// Regions returns the region document, nil before setup completes.
func (e *Engine) Regions() *regions.Data { return e.data }

// Locations returns the expansion locations, nil before setup completes.
func (e *Engine) Locations() []*expand.Location { return e.locations }

// Setup runs the one-time analysis. It returns an error wrapping ErrNotReady
// while the game cannot answer placement queries or expansions are not all
// resolved yet; the caller retries on the next frame. Calling Setup after it
// succeeded is a no-op.
func (e *Engine) Setup(ctx context.Context, f model.Frame) error {
	if e.ready {
		return nil
	}
	started := time.Now()
	e.tracker.Update(f)

	t := e.deps.Terrain
	if len(f.Placement) != t.Width*t.Height {
		return fmt.Errorf("placement grid missing: %w", ErrNotReady)
	}
	neutral := e.tracker.Of(model.Neutral)
	placement := expand.NewGridPlacement(placementGrid{width: t.Width, cells: f.Placement}, neutral, true)
	analyzer := expand.NewAnalyzer(e.cfg.Expand, t, placement, e.paths)

	known, err := e.deps.Maps.Load(ctx, e.deps.MapName)
	if err != nil {
		// A broken document is rebuilt rather than blocking the game.
		slog.Error("stored region document unusable", "map", e.deps.MapName, "error", err)
		known = nil
	}
	var knownAnchors []model.Cell
	if known != nil {
		knownAnchors = known.ExpandAnchors
	}

	locations, err := analyzer.Analyze(neutral, e.deps.Start, e.deps.EnemyStarts, knownAnchors)
	if errors.Is(err, expand.ErrNotReady) || errors.Is(err, expand.ErrIncomplete) {
		return fmt.Errorf("%w: %w", ErrNotReady, err)
	}
	if err != nil {
		return fmt.Errorf("expand analysis: %w", err)
	}

	anchors := make([]model.Cell, len(locations))
	for i, loc := range locations {
		anchors[i] = loc.Position
	}

	d := known
	if d == nil {
		d, err = e.deps.Maps.Build(ctx, e.deps.MapName, func() (*regions.Data, error) {
			return e.buildRegions(f, anchors), nil
		})
		if err != nil {
			return fmt.Errorf("build regions: %w", err)
		}
	}

	e.bind(d, locations)
	e.data = d
	e.locations = locations
	e.oracle = regions.NewOracle(d, t, e.paths)
	e.eval = evaluation.New(d, e.cfg.Evaluation)
	e.ready = true
	e.setupLoop, e.setupFresh = f.GameLoop, true

	slog.Info("analysis ready",
		"map", e.deps.MapName,
		"regions", len(d.Regions),
		"ramps", len(d.OfType(regions.Ramp)),
		"expansions", len(locations),
		"reused", known != nil,
		"elapsed", time.Since(started),
	)
	e.paths.LogStats()
	return nil
}

func (e *Engine) buildRegions(f model.Frame, anchors []model.Cell) *regions.Data {
	t := e.deps.Terrain
	extra := append([]model.Cell{}, e.deps.StartBuildings...)
	extra = append(extra, f.Blocked...)

	p := regions.Split(t, extra, anchors, e.cfg.Partition)
	d := regions.Build(e.deps.MapName, t.Width, t.Height, p, anchors)
	regions.ConnectGraph(d)
	regions.AssignColors(d)
	return d
}

// bind attaches each expansion location to the Expand region holding its
// anchor and registers it for resource and blocker deaths.
func (e *Engine) bind(d *regions.Data, locations []*expand.Location) {
	for _, loc := range locations {
		loc.Watch(e.tracker)
		r, ok := d.RegionAt(loc.Position)
		if !ok || r.Type != regions.Expand {
			slog.Warn("expansion anchor outside an expand region", "anchor", loc.Position, "type", loc.Type)
			continue
		}
		r.ExpandLocation = loc
	}
}

// placementGrid answers buildability from the mod's placement grid.
type placementGrid struct {
	width int
	cells []int
}

func (g placementGrid) IsBuildable(c model.Cell) bool {
	if c.X < 0 || c.Y < 0 || c.X >= g.width {
		return false
	}
	i := c.Y*g.width + c.X
	return i < len(g.cells) && g.cells[i] != 0
}
