package cache

import (
	"context"
	"time"
)

// NullCache stores nothing, so every render goes through Graphviz. The render
// command falls back to it for --no-cache and when no cache directory can be
// resolved.
type NullCache struct {
	// Reason says why artifacts are not cached.
	Reason string
}

// NewNullCache returns a cache that is disabled for reason.
func NewNullCache(reason string) *NullCache {
	return &NullCache{Reason: reason}
}

func (*NullCache) Get(context.Context, string) ([]byte, bool, error) { return nil, false, nil }

func (*NullCache) Set(context.Context, string, []byte, time.Duration) error { return nil }

func (*NullCache) Delete(context.Context, string) error { return nil }

func (*NullCache) Close() error { return nil }

func (c *NullCache) String() string { return "disabled (" + c.Reason + ")" }

var _ Cache = (*NullCache)(nil)
