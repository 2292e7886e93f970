package cache

import (
	"context"
	"time"
)

// StatsCache stores JSON-encodable report snapshots.
type StatsCache interface {
	Get(ctx context.Context, key string, dest any) (bool, error)
	Set(ctx context.Context, key string, value any, ttl time.Duration) error
	Delete(ctx context.Context, keys ...string) error
}

type NoopStatsCache struct{}

func (NoopStatsCache) Get(_ context.Context, _ string, _ any) (bool, error) {
	return false, nil
}

func (NoopStatsCache) Set(_ context.Context, _ string, _ any, _ time.Duration) error {
	return nil
}

func (NoopStatsCache) Delete(_ context.Context, _ ...string) error {
	return nil
}
