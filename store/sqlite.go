package store

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"time"

	_ "modernc.org/sqlite"

	"github.com/nstehr/vimy/vimy-terrain/regions"
)

// SQLiteStore keeps region documents in a single SQLite table, one row per map.
type SQLiteStore struct {
	sql *sql.DB
}

// OpenSQLite opens (or creates) the database at path and runs migrations.
// ":memory:" gives a private in-memory database.
func OpenSQLite(path string) (*SQLiteStore, error) {
	db, err := sql.Open("sqlite", path+"?_pragma=journal_mode(WAL)&_pragma=busy_timeout(5000)")
	if err != nil {
		return nil, fmt.Errorf("open db: %w", err)
	}
	// One connection: every ":memory:" connection would be its own database.
	db.SetMaxOpenConns(1)
	if err := db.Ping(); err != nil {
		db.Close()
		return nil, fmt.Errorf("ping db: %w", err)
	}
	s := &SQLiteStore{sql: db}
	if err := s.migrate(); err != nil {
		db.Close()
		return nil, fmt.Errorf("migrate db: %w", err)
	}
	slog.Info("opened region database", "path", path)
	return s, nil
}

func (s *SQLiteStore) Close() error {
	return s.sql.Close()
}

func (s *SQLiteStore) migrate() error {
	version := 0
	// Missing table on a fresh database leaves version at 0.
	s.sql.QueryRow("SELECT version FROM schema_version ORDER BY version DESC LIMIT 1").Scan(&version)

	if version < 1 {
		_, err := s.sql.Exec(`
			CREATE TABLE IF NOT EXISTS schema_version (version INTEGER PRIMARY KEY);

			CREATE TABLE IF NOT EXISTS region_documents (
				map_name       TEXT PRIMARY KEY,
				schema_version INTEGER NOT NULL,
				document       TEXT NOT NULL,
				updated_at     TEXT NOT NULL
			);

			INSERT OR IGNORE INTO schema_version (version) VALUES (1);
		`)
		if err != nil {
			return fmt.Errorf("migration v1: %w", err)
		}
	}
	return nil
}

func (s *SQLiteStore) Load(ctx context.Context, mapName string) (*regions.Data, error) {
	var version int
	var doc string
	err := s.sql.QueryRowContext(ctx,
		"SELECT schema_version, document FROM region_documents WHERE map_name = ?",
		NormalizeMapName(mapName),
	).Scan(&version, &doc)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("load region document: %w", err)
	}
	if version != regions.SchemaVersion {
		slog.Warn("ignoring region document with stale schema", "map", mapName, "version", version, "want", regions.SchemaVersion)
		return nil, nil
	}
	return decode(mapName, []byte(doc))
}

func (s *SQLiteStore) Save(ctx context.Context, d *regions.Data) error {
	raw, err := json.Marshal(d)
	if err != nil {
		return fmt.Errorf("encode region document: %w", err)
	}
	_, err = s.sql.ExecContext(ctx, `
		INSERT INTO region_documents (map_name, schema_version, document, updated_at)
		VALUES (?, ?, ?, ?)
		ON CONFLICT(map_name) DO UPDATE SET
			schema_version = excluded.schema_version,
			document       = excluded.document,
			updated_at     = excluded.updated_at`,
		NormalizeMapName(d.MapName), d.SchemaVersion, string(raw), time.Now().UTC().Format(time.RFC3339),
	)
	if err != nil {
		return fmt.Errorf("save region document: %w", err)
	}
	slog.Info("saved region document", "map", d.MapName, "regions", len(d.Regions))
	return nil
}
