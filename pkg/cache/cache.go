// Package cache provides the byte cache used by the pipeline and the Jira
// fetcher.
//
// # Backends
//
//   - [NullCache]: never stores anything (caching disabled)
//   - [FileCache]: one file per entry under a directory, for the CLI
//   - [RedisCache]: a shared Redis instance, for servers
//
// # Keys
//
// A [Keyer] derives cache keys from content hashes and options, so a
// change in input or settings never reads a stale entry:
//
//	k := cache.NewDefaultKeyer()
//	key := k.LayoutKey(graphHash, cache.LayoutKeyOpts{Mode: "tree", Width: 960})
package cache

import (
	"context"
	"time"
)

// Default lifetimes per entry type.
const (
	TTLHTTP     = 24 * time.Hour
	TTLGraph    = 24 * time.Hour
	TTLLayout   = 7 * 24 * time.Hour
	TTLArtifact = 7 * 24 * time.Hour
)

// Cache stores opaque bytes under string keys.
type Cache interface {
	// Get returns the value for key. A miss is (nil, false, nil).
	Get(ctx context.Context, key string) ([]byte, bool, error)
	// Set stores data for ttl. A non-positive ttl never expires.
	Set(ctx context.Context, key string, data []byte, ttl time.Duration) error
	// Delete removes key. Deleting a missing key is not an error.
	Delete(ctx context.Context, key string) error
	// Close releases the backend.
	Close() error
}

// Clearer is implemented by caches that can drop every entry.
type Clearer interface {
	Clear(ctx context.Context) error
}

// GraphKeyOpts are the build settings that change a graph.
type GraphKeyOpts struct {
	ActiveOnly bool   `json:"active_only"`
	RootID     string `json:"root_id,omitempty"`
}

// LayoutKeyOpts are the settings that change a layout.
type LayoutKeyOpts struct {
	Mode   string  `json:"mode"`
	Width  float64 `json:"width"`
	Height float64 `json:"height"`
	Seed   int64   `json:"seed,omitempty"`
	// Params is a hash of the engine configuration.
	Params string `json:"params,omitempty"`
}

// ArtifactKeyOpts are the settings that change a rendered artifact.
type ArtifactKeyOpts struct {
	Format      string  `json:"format"`
	Detailed    bool    `json:"detailed,omitempty"`
	Interactive bool    `json:"interactive,omitempty"`
	Scale       float64 `json:"scale,omitempty"`
	Title       string  `json:"title,omitempty"`
}

// Keyer generates cache keys.
type Keyer interface {
	HTTPKey(namespace, key string) string
	GraphKey(rowsHash string, opts GraphKeyOpts) string
	LayoutKey(graphHash string, opts LayoutKeyOpts) string
	ArtifactKey(layoutHash string, opts ArtifactKeyOpts) string
}

// DefaultKeyer is the standard [Keyer].
type DefaultKeyer struct{}

// NewDefaultKeyer returns the standard keyer.
func NewDefaultKeyer() Keyer { return DefaultKeyer{} }

// HTTPKey generates a key for an HTTP response.
func (DefaultKeyer) HTTPKey(namespace, key string) string {
	return "http:" + namespace + ":" + key
}

// GraphKey generates a key for a graph built from rows.
func (DefaultKeyer) GraphKey(rowsHash string, opts GraphKeyOpts) string {
	return hashKey("graph", rowsHash, opts)
}

// LayoutKey generates a key for a layout of a graph.
func (DefaultKeyer) LayoutKey(graphHash string, opts LayoutKeyOpts) string {
	return hashKey("layout", graphHash, opts)
}

// ArtifactKey generates a key for a rendered layout.
func (DefaultKeyer) ArtifactKey(layoutHash string, opts ArtifactKeyOpts) string {
	return hashKey("artifact", layoutHash, opts)
}

var _ Keyer = DefaultKeyer{}
