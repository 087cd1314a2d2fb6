package ports

import (
	"context"
	"time"
)

// Cache is a string keyed cache with TTLs. Implementations: Redis for
// deployments, an in-memory map for tests and degraded mode.
type Cache interface {
	Get(ctx context.Context, key string) (string, error)
	Set(ctx context.Context, key string, value interface{}, expiration time.Duration) error
	Delete(ctx context.Context, key string) error
	Ping() error
	Close() error
}
