package agent

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"runtime/debug"

	"github.com/nstehr/vimy/vimy-terrain/analysis"
	"github.com/nstehr/vimy/vimy-terrain/ipc"
	"github.com/nstehr/vimy/vimy-terrain/model"
	"github.com/nstehr/vimy/vimy-terrain/rules"
)

// Session owns the terrain analysis for a single player connection.
type Session struct {
	Conn    *ipc.Connection
	Player  string
	Race    string
	MapName string

	ctx    context.Context
	cfg    analysis.Config
	maps   *analysis.MapCache
	rules  *rules.Engine
	engine *analysis.Engine

	prev        *stateSnapshot
	summarySent bool
}

func New(ctx context.Context, conn *ipc.Connection, cfg analysis.Config, maps *analysis.MapCache, re *rules.Engine) *Session {
	return &Session{Conn: conn, ctx: ctx, cfg: cfg, maps: maps, rules: re}
}

// Register installs the session's handlers on its connection.
func (s *Session) Register() {
	s.Conn.RegisterHandler(ipc.TypeHello, s.HandleHello)
	s.Conn.RegisterHandler(ipc.TypeGameState, s.HandleGameState)
}

// HandleHello takes the static map description and starts a fresh analysis.
// A second hello on the same connection means a new game.
func (s *Session) HandleHello(env ipc.Envelope) (*ipc.Envelope, error) {
	var hello ipc.HelloMessage
	if err := env.Decode(&hello); err != nil {
		return nil, err
	}
	if hello.Terrain == nil {
		return nil, fmt.Errorf("hello from %q carries no terrain", hello.Player)
	}
	grid, err := hello.Terrain.Grid()
	if err != nil {
		return nil, fmt.Errorf("terrain: %w", err)
	}

	s.Player = hello.Player
	s.Race = hello.Race
	s.MapName = hello.MapName
	if s.Conn != nil {
		s.Conn.Player = hello.Player
	}
	s.engine = analysis.New(analysis.Deps{
		MapName:        hello.MapName,
		Terrain:        grid,
		Start:          hello.StartLocation,
		EnemyStarts:    hello.EnemyStartLocations,
		StartBuildings: hello.StartBuildings,
		Maps:           s.maps,
		Rules:          s.rules,
	}, s.cfg)
	s.prev = nil
	s.summarySent = false

	slog.Info("player identified",
		"player", s.Player,
		"race", s.Race,
		"map", s.MapName,
		"size", fmt.Sprintf("%dx%d", grid.Width, grid.Height),
	)

	ack, err := ipc.NewEnvelope(ipc.TypeAck, ipc.AckMessage{Status: "ok"})
	if err != nil {
		return nil, err
	}
	return &ack, nil
}

func (s *Session) HandleGameState(env ipc.Envelope) (resp *ipc.Envelope, err error) {
	if s.engine == nil {
		return nil, errors.New("game_state before hello")
	}
	var f model.Frame
	if err := env.Decode(&f); err != nil {
		return nil, err
	}

	defer func() {
		if r := recover(); r != nil {
			slog.Error("analysis panicked", "player", s.Player, "loop", f.GameLoop, "panic", r, "stack", string(debug.Stack()))
			resp, err = nil, fmt.Errorf("analysis panicked at loop %d: %v", f.GameLoop, r)
		}
	}()

	report := s.step(f)
	out, err := ipc.NewEnvelope(ipc.TypeRegionReport, report)
	if err != nil {
		return nil, err
	}
	return &out, nil
}

// step runs setup until it succeeds, then the per-frame update.
func (s *Session) step(f model.Frame) RegionReport {
	if !s.engine.Ready() {
		err := s.engine.Setup(s.ctx, f)
		switch {
		case errors.Is(err, analysis.ErrNotReady):
			slog.Debug("analysis not ready", "player", s.Player, "loop", f.GameLoop, "reason", err)
		case err != nil:
			slog.Warn("analysis setup failed", "player", s.Player, "loop", f.GameLoop, "error", err)
		}
	}

	rep := RegionReport{Report: s.engine.Update(f)}
	if !rep.Ready {
		return rep
	}

	rep.Events = detectEvents(rep.Report, s.prev)
	snap := takeSnapshot(rep.Report)
	s.prev = &snap

	if len(rep.Events) > 0 {
		slog.Info("region events", "player", s.Player, "loop", f.GameLoop, "count", len(rep.Events))
		slog.Debug("region event detail\n" + formatEvents(rep.Events))
	}
	if !s.summarySent {
		rep.Summary = s.engine.Summary()
		s.summarySent = true
	}
	return rep
}
