// Package cache stores rendered chart artifacts between CLI runs.
//
// Rendering a large chart through Graphviz takes noticeably longer than
// reading it, so the render command keys each artifact by the chart's
// records, the template and the render options, scoped to the build with a
// [VersionedKeyer]. [FileCache] keeps entries under the user cache directory;
// [NullCache] disables caching.
package cache

import (
	"context"
	"time"

	"github.com/matzehuels/orgchart/pkg/observability"
)

// Cache is a byte store with per-entry expiry.
type Cache interface {
	// Get returns the entry for key. A miss is reported with ok == false and
	// a nil error.
	Get(ctx context.Context, key string) (data []byte, ok bool, err error)

	// Set stores data under key. A ttl of zero never expires.
	Set(ctx context.Context, key string, data []byte, ttl time.Duration) error

	// Delete removes key. Deleting a missing key is not an error.
	Delete(ctx context.Context, key string) error

	Close() error
}

// ArtifactKeyOpts are the render options that change an artifact's bytes.
type ArtifactKeyOpts struct {
	Format    string   `json:"format"`
	Detailed  bool     `json:"detailed,omitempty"`
	Selected  string   `json:"selected,omitempty"`
	Collapsed []string `json:"collapsed,omitempty"`
}

// Keyer derives cache keys.
type Keyer interface {
	// ArtifactKey returns the key of a rendered artifact. datasetHash and
	// templateHash identify the inputs, usually via [DatasetHash] and [Hash].
	ArtifactKey(datasetHash, templateHash string, opts ArtifactKeyOpts) string
}

// DefaultKeyer hashes every key component.
type DefaultKeyer struct{}

// NewDefaultKeyer returns the default keyer.
func NewDefaultKeyer() Keyer { return DefaultKeyer{} }

// ArtifactKey implements Keyer.
func (DefaultKeyer) ArtifactKey(datasetHash, templateHash string, opts ArtifactKeyOpts) string {
	return hashKey("artifact", datasetHash, templateHash, opts)
}

// GetOrCompute returns the entry for key, or calls compute and stores its
// result. The second return value reports a cache hit. Errors from the cache
// itself degrade to recomputation; only compute errors are returned.
func GetOrCompute(ctx context.Context, c Cache, key, keyType string, ttl time.Duration, compute func() ([]byte, error)) ([]byte, bool, error) {
	hooks := observability.Cache()
	if data, ok, err := c.Get(ctx, key); err == nil && ok {
		hooks.OnCacheHit(ctx, keyType)
		return data, true, nil
	}
	hooks.OnCacheMiss(ctx, keyType)

	data, err := compute()
	if err != nil {
		return nil, false, err
	}
	if err := c.Set(ctx, key, data, ttl); err == nil {
		hooks.OnCacheSet(ctx, keyType, len(data))
	}
	return data, false, nil
}
