// Package store persists region documents keyed by map so a map is only
// decomposed once.
package store

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"strings"
	"unicode"

	"github.com/nstehr/vimy/vimy-terrain/regions"
)

// Store loads and saves region documents. Load returns nil, nil when no usable
// document exists for the map.
type Store interface {
	Load(ctx context.Context, mapName string) (*regions.Data, error)
	Save(ctx context.Context, d *regions.Data) error
}

// NormalizeMapName turns a map name into a storage key: the ".SC2Map"
// extension is dropped and only letters and digits are kept.
func NormalizeMapName(name string) string {
	name = strings.TrimSuffix(name, ".SC2Map")
	var b strings.Builder
	for _, r := range name {
		if unicode.IsLetter(r) || unicode.IsDigit(r) {
			b.WriteRune(r)
		}
	}
	return b.String()
}

// decode parses a document. Stale schema versions are reported as absent.
func decode(mapName string, raw []byte) (*regions.Data, error) {
	var d regions.Data
	if err := json.Unmarshal(raw, &d); err != nil {
		return nil, fmt.Errorf("decode region document for %s: %w", mapName, err)
	}
	if d.SchemaVersion != regions.SchemaVersion {
		slog.Warn("ignoring region document with stale schema", "map", mapName, "version", d.SchemaVersion, "want", regions.SchemaVersion)
		return nil, nil
	}
	if err := d.Validate(); err != nil {
		return nil, fmt.Errorf("invalid region document for %s: %w", mapName, err)
	}
	d.Reindex()
	return &d, nil
}
