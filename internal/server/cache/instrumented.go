package cache

import (
	"context"
	"errors"
	"time"

	"github.com/dmitrijs2005/accountd/internal/common"
	"github.com/dmitrijs2005/accountd/internal/server/metrics"
)

type instrumented struct {
	Cache
	m *metrics.Metrics
}

// WithMetrics counts hits, misses and failures of c.
func WithMetrics(c Cache, m *metrics.Metrics) Cache {
	if m == nil {
		return c
	}
	return &instrumented{Cache: c, m: m}
}

func (c *instrumented) SetWithExpiry(ctx context.Context, key, value string, ttl time.Duration) error {
	err := c.Cache.SetWithExpiry(ctx, key, value, ttl)
	if err != nil {
		c.m.CacheOp("set", "error")
	} else {
		c.m.CacheOp("set", "ok")
	}
	return err
}

func (c *instrumented) Get(ctx context.Context, key string) (string, error) {
	v, err := c.Cache.Get(ctx, key)
	switch {
	case err == nil:
		c.m.CacheOp("get", "hit")
	case errors.Is(err, common.ErrCacheMiss):
		c.m.CacheOp("get", "miss")
	default:
		c.m.CacheOp("get", "error")
	}
	return v, err
}
