// Package cache provides the Type Mapper's optional memoization cache.
// spec.md §9 notes that "global mutable state appears only as a cache in
// the Type Mapper if the implementer chooses to memoize; since mapping is
// pure, this is optional." Adapted from the teacher's file-hash incremental
// compilation cache (internal/cache/cache.go): same sha256+JSON persistence
// shape, keyed by surface type text instead of by file path.
package cache

import (
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"

	"github.com/google/uuid"
)

// entry is one memoized mapping, tagged with the run that produced it so a
// downstream warning can be traced back to the translation call that
// derived it (descriptors, per spec.md §3, live only for one translation).
type entry struct {
	WGSL    string `json:"wgsl"`
	Warning string `json:"warning,omitempty"`
	RunID   string `json:"run_id"`
}

// Cache memoizes Type Mapper results keyed by the sha256 of the surface
// type text. It is safe to share across calls within one translation run;
// the Driver creates one per run and discards it afterward.
type Cache struct {
	RunID   string
	entries map[string]entry
	path    string
}

// New creates an empty, unpersisted cache tagged with a fresh run id.
func New() *Cache {
	return &Cache{
		RunID:   uuid.NewString(),
		entries: make(map[string]entry),
	}
}

// Load reads a previously persisted cache from disk, starting a new run id
// for entries added during this load (existing entries keep the run id
// they were recorded under).
func Load(cachePath string) (*Cache, error) {
	c := New()
	c.path = cachePath

	data, err := os.ReadFile(cachePath)
	if err != nil {
		if os.IsNotExist(err) {
			return c, nil
		}
		return nil, fmt.Errorf("failed to read type mapper cache: %w", err)
	}

	if err := json.Unmarshal(data, &c.entries); err != nil {
		return nil, fmt.Errorf("failed to parse type mapper cache: %w", err)
	}
	return c, nil
}

// Save persists the cache to disk, creating its directory if needed.
func (c *Cache) Save() error {
	if c.path == "" {
		return nil
	}
	dir := filepath.Dir(c.path)
	if err := os.MkdirAll(dir, 0755); err != nil {
		return fmt.Errorf("failed to create cache directory: %w", err)
	}

	data, err := json.MarshalIndent(c.entries, "", "  ")
	if err != nil {
		return fmt.Errorf("failed to marshal type mapper cache: %w", err)
	}
	if err := os.WriteFile(c.path, data, 0644); err != nil {
		return fmt.Errorf("failed to write type mapper cache: %w", err)
	}
	return nil
}

func key(surfaceType string) string {
	h := sha256.Sum256([]byte(surfaceType))
	return hex.EncodeToString(h[:])
}

// Lookup returns a memoized (wgsl, warning) pair for surfaceType, if any.
func (c *Cache) Lookup(surfaceType string) (wgsl, warning string, ok bool) {
	e, ok := c.entries[key(surfaceType)]
	if !ok {
		return "", "", false
	}
	return e.WGSL, e.Warning, true
}

// Store records a mapping result under the current run id.
func (c *Cache) Store(surfaceType, wgsl, warning string) {
	c.entries[key(surfaceType)] = entry{WGSL: wgsl, Warning: warning, RunID: c.RunID}
}

// Clear discards all memoized entries.
func (c *Cache) Clear() {
	c.entries = make(map[string]entry)
}
