package main

import (
	"context"
	"flag"
	"fmt"
	"log/slog"
	"net"
	"os"
	"os/signal"
	"path/filepath"
	"sync/atomic"
	"syscall"

	"github.com/nstehr/vimy/vimy-terrain/agent"
	"github.com/nstehr/vimy/vimy-terrain/analysis"
	"github.com/nstehr/vimy/vimy-terrain/config"
	"github.com/nstehr/vimy/vimy-terrain/ipc"
	"github.com/nstehr/vimy/vimy-terrain/rules"
	"github.com/nstehr/vimy/vimy-terrain/store"
)

const banner = `
██╗   ██╗██╗███╗   ███╗██╗   ██╗
██║   ██║██║████╗ ████║╚██╗ ██╔╝
██║   ██║██║██╔████╔██║ ╚████╔╝
╚██╗ ██╔╝██║██║╚██╔╝██║  ╚██╔╝
 ╚████╔╝ ██║██║ ╚═╝ ██║   ██║
  ╚═══╝  ╚═╝╚═╝     ╚═╝   ╚═╝

Terrain Regions & Obstruction Analysis`

// server holds what every connection shares.
type server struct {
	maps     *analysis.MapCache
	rules    *rules.Engine
	analysis atomic.Pointer[analysis.Config]
}

func main() {
	configPath := flag.String("config", "", "path to a JSON config file")
	socketPath := flag.String("socket", "", "unix socket to listen on (overrides config)")
	dataDir := flag.String("data", "", "directory for stored region documents (overrides config)")
	storeKind := flag.String("store", "", "region store: file, sqlite or none (overrides config)")
	flag.Parse()

	level := new(slog.LevelVar)
	logger := slog.New(slog.NewTextHandler(os.Stdout, &slog.HandlerOptions{
		Level: level,
	}))
	slog.SetDefault(logger)

	fmt.Println(banner)

	cfg, err := loadConfig(*configPath, *socketPath, *dataDir, *storeKind)
	if err != nil {
		slog.Error("failed to load config", "path", *configPath, "error", err)
		os.Exit(1)
	}
	level.Set(cfg.Level())
	slog.Info("starting vimy-terrain", "store", cfg.Store, "data", cfg.DataDir)

	st, closeStore, err := openStore(cfg)
	if err != nil {
		slog.Error("failed to open region store", "kind", cfg.Store, "error", err)
		os.Exit(1)
	}
	defer closeStore()

	ruleSet, err := rules.NewEngine(cfg.RuleSet())
	if err != nil {
		slog.Error("failed to compile rules", "error", err)
		os.Exit(1)
	}
	slog.Info("rules loaded", "rules", ruleSet.Rules())

	srv := &server{maps: analysis.NewMapCache(st), rules: ruleSet}
	acfg, _ := cfg.Analysis() // validated by loadConfig
	srv.analysis.Store(&acfg)

	// Unix sockets leave behind a file on unclean shutdown; remove it so we can rebind.
	if err := os.RemoveAll(cfg.SocketPath); err != nil {
		slog.Error("failed to clean up socket", "path", cfg.SocketPath, "error", err)
		os.Exit(1)
	}

	listener, err := net.Listen("unix", cfg.SocketPath)
	if err != nil {
		slog.Error("failed to listen on socket", "path", cfg.SocketPath, "error", err)
		os.Exit(1)
	}
	defer listener.Close()
	defer os.Remove(cfg.SocketPath)

	slog.Info("listening on domain socket", "path", cfg.SocketPath)

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	hup := make(chan os.Signal, 1)
	signal.Notify(hup, syscall.SIGHUP)
	go func() {
		for range hup {
			srv.reload(*configPath, level)
		}
	}()

	go func() {
		for {
			conn, err := listener.Accept()
			if err != nil {
				select {
				case <-ctx.Done():
					return
				default:
					slog.Error("failed to accept connection", "error", err)
					continue
				}
			}
			slog.Info("new connection accepted")
			go srv.handleConn(ctx, conn)
		}
	}()

	<-ctx.Done()
	slog.Info("shutting down")
}

func loadConfig(path, socket, data, storeKind string) (*config.Config, error) {
	cfg, err := config.Load(path)
	if err != nil {
		return nil, err
	}
	if socket != "" {
		cfg.SocketPath = socket
	}
	if data != "" {
		cfg.DataDir = data
	}
	if storeKind != "" {
		cfg.Store = storeKind
	}
	return cfg, nil
}

// openStore returns the configured region store and its cleanup. A nil store
// means every game analyzes its map from scratch.
func openStore(cfg *config.Config) (store.Store, func(), error) {
	switch cfg.Store {
	case "file":
		return store.NewFileStore(cfg.DataDir), func() {}, nil
	case "sqlite":
		if err := os.MkdirAll(cfg.DataDir, 0o755); err != nil {
			return nil, nil, fmt.Errorf("create data dir: %w", err)
		}
		db, err := store.OpenSQLite(filepath.Join(cfg.DataDir, "regions.db"))
		if err != nil {
			return nil, nil, err
		}
		return db, func() { db.Close() }, nil
	case "none", "":
		return nil, func() {}, nil
	default:
		return nil, nil, fmt.Errorf("unknown store %q", cfg.Store)
	}
}

// reload re-reads the config file. Rules and log level apply immediately;
// analysis settings apply to games that start afterwards. The socket and
// store are fixed for the life of the process.
func (s *server) reload(path string, level *slog.LevelVar) {
	cfg, err := config.Load(path)
	if err != nil {
		slog.Error("config reload failed, keeping current settings", "error", err)
		return
	}
	acfg, err := cfg.Analysis()
	if err != nil {
		slog.Error("config reload failed, keeping current settings", "error", err)
		return
	}
	if err := s.rules.Swap(cfg.RuleSet()); err != nil {
		slog.Error("rule reload failed, keeping current rules", "error", err)
		return
	}
	s.analysis.Store(&acfg)
	level.Set(cfg.Level())
	slog.Info("config reloaded", "rules", s.rules.Rules(), "level", cfg.Level())
}

func (s *server) handleConn(ctx context.Context, conn net.Conn) {
	c := ipc.NewConnection(conn)
	sess := agent.New(ctx, c, *s.analysis.Load(), s.maps, s.rules)
	sess.Register()
	c.Serve(ctx)
}
