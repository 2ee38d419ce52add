package cache

import (
	"context"
	"time"
)

// NullCache discards everything: every Get is a miss, Set and Delete are
// no-ops. It stands in when caching is disabled or a backend fails to open.
type NullCache struct{}

// NewNullCache creates a null cache.
func NewNullCache() Cache { return NullCache{} }

func (NullCache) Get(context.Context, string) ([]byte, bool, error)      { return nil, false, nil }
func (NullCache) Set(context.Context, string, []byte, time.Duration) error { return nil }
func (NullCache) Delete(context.Context, string) error                   { return nil }
func (NullCache) Close() error                                           { return nil }

var _ Cache = NullCache{}
