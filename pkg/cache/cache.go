// Package cache provides caching for rendered chart artifacts.
//
// Rendering is cheap for small datasets but PNG/PDF conversion shells out to
// rsvg-convert, so the CLI and API cache finished artifacts keyed by a hash
// of the dataset plus the render options. Three backends are provided:
//
//   - FileCache: directory-backed cache for CLI usage
//   - RedisCache: shared cache for the HTTP API
//   - NullCache: disables caching entirely
//
// Keys are generated through the Keyer interface so that backends can be
// swapped without changing key layout, and ScopedKeyer prefixes keys for
// namespace isolation.
package cache

import (
	"context"
	"time"
)

// TTLs applied by the pipeline when caching stage results.
const (
	// TTLDataset bounds how long a loaded dataset snapshot stays valid.
	TTLDataset = 24 * time.Hour

	// TTLArtifact bounds how long rendered artifacts stay valid. Artifacts
	// are content-addressed so a long TTL is safe.
	TTLArtifact = 7 * 24 * time.Hour
)

// Cache is the interface implemented by all cache backends.
type Cache interface {
	// Get retrieves a value. The second return value reports whether the
	// key was present and unexpired.
	Get(ctx context.Context, key string) ([]byte, bool, error)

	// Set stores a value with the given TTL. A zero TTL means no expiration.
	Set(ctx context.Context, key string, data []byte, ttl time.Duration) error

	// Delete removes a value. Deleting a missing key is not an error.
	Delete(ctx context.Context, key string) error

	// Close releases any resources held by the backend.
	Close() error
}

// ArtifactKeyOpts fingerprints the render options that affect output bytes.
type ArtifactKeyOpts struct {
	Format  string  `json:"format"`
	Width   float64 `json:"width"`
	Height  float64 `json:"height"`
	Labels  bool    `json:"labels"`
	Legend  bool    `json:"legend"`
	Palette string  `json:"palette"`
	Title   string  `json:"title"`
}

// Keyer generates cache keys for the different cached object types.
type Keyer interface {
	// DatasetKey generates a key for a loaded dataset identified by its
	// source (file path, collection URI) and content hash.
	DatasetKey(source, contentHash string) string

	// ArtifactKey generates a key for a rendered artifact.
	ArtifactKey(datasetHash string, opts ArtifactKeyOpts) string
}

// DefaultKeyer is the standard key generator.
type DefaultKeyer struct{}

// NewDefaultKeyer creates the standard key generator.
func NewDefaultKeyer() Keyer {
	return &DefaultKeyer{}
}

// DatasetKey generates a key for dataset caching.
func (k *DefaultKeyer) DatasetKey(source, contentHash string) string {
	return hashKey("dataset", source, contentHash)
}

// ArtifactKey generates a key for artifact caching.
func (k *DefaultKeyer) ArtifactKey(datasetHash string, opts ArtifactKeyOpts) string {
	return hashKey("artifact", datasetHash, opts)
}
