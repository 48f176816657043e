package analysis

import (
	"context"
	"fmt"
	"log/slog"
	"sync"

	"golang.org/x/sync/singleflight"

	"github.com/nstehr/vimy/vimy-terrain/regions"
	"github.com/nstehr/vimy/vimy-terrain/store"
)

// MapCache shares region documents between sessions playing the same map.
// Documents are kept in memory once loaded or built; a singleflight.Group
// makes concurrent sessions wait for one load or build instead of each
// running their own. Callers always receive a deep copy, so per-game runtime
// state never leaks across sessions.
type MapCache struct {
	store store.Store // nil disables persistence

	mu    sync.RWMutex
	docs  map[string]*regions.Data
	group singleflight.Group
}

func NewMapCache(s store.Store) *MapCache {
	return &MapCache{
		store: s,
		docs:  make(map[string]*regions.Data),
	}
}

func (c *MapCache) get(key string) (*regions.Data, bool) {
	c.mu.RLock()
	defer c.mu.RUnlock()
	d, ok := c.docs[key]
	return d, ok
}

func (c *MapCache) put(key string, d *regions.Data) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.docs[key] = d
}

// Load returns a copy of the map's document from memory or the store, or nil
// when none exists yet.
func (c *MapCache) Load(ctx context.Context, mapName string) (*regions.Data, error) {
	key := store.NormalizeMapName(mapName)
	if d, ok := c.get(key); ok {
		return d.Clone(), nil
	}
	if c.store == nil {
		return nil, nil
	}

	result, err, _ := c.group.Do("load:"+key, func() (any, error) {
		if d, ok := c.get(key); ok {
			return d, nil
		}
		d, err := c.store.Load(ctx, mapName)
		if err != nil {
			return nil, err
		}
		if d != nil {
			slog.Info("region document loaded", "map", mapName, "regions", len(d.Regions))
			c.put(key, d)
		}
		return d, nil
	})
	if err != nil {
		return nil, fmt.Errorf("load map %s: %w", mapName, err)
	}
	d, _ := result.(*regions.Data)
	if d == nil {
		return nil, nil
	}
	return d.Clone(), nil
}

// Build returns a copy of the map's document, running build and saving its
// result when the map is not cached. A failed save is logged; the document is
// still cached for this process.
func (c *MapCache) Build(ctx context.Context, mapName string, build func() (*regions.Data, error)) (*regions.Data, error) {
	key := store.NormalizeMapName(mapName)
	result, err, shared := c.group.Do("build:"+key, func() (any, error) {
		if d, ok := c.get(key); ok {
			return d, nil
		}
		d, err := build()
		if err != nil {
			return nil, err
		}
		if c.store != nil {
			if err := c.store.Save(ctx, d); err != nil {
				slog.Error("saving region document failed", "map", mapName, "error", err)
			}
		}
		c.put(key, d)
		return d, nil
	})
	if err != nil {
		return nil, fmt.Errorf("build map %s: %w", mapName, err)
	}
	if shared {
		slog.Debug("region build shared between sessions", "map", mapName)
	}
	return result.(*regions.Data).Clone(), nil
}
