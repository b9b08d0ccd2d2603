// Package cache is the key-value store for session markers and profile
// documents. Entries always carry an expiry.
package cache

import (
	"context"
	"time"

	"github.com/dmitrijs2005/accountd/internal/common"
)

const (
	tokenPrefix = "token:"
	userPrefix  = "user:"
)

// Cache stores string values with a time-to-live. Get returns
// common.ErrCacheMiss for absent or expired keys.
type Cache interface {
	SetWithExpiry(ctx context.Context, key, value string, ttl time.Duration) error
	Get(ctx context.Context, key string) (string, error)
	Ping(ctx context.Context) error
	Close() error
}

// TokenKey is the key of the validity marker mirrored for a session token.
func TokenKey(token string) string {
	return tokenPrefix + token
}

// UserKey is the key of a cached profile document.
func UserKey(id string) string {
	return userPrefix + id
}

// New returns a Redis cache for url, or a NopCache when url is empty.
func New(url string) (Cache, error) {
	if url == "" {
		return NopCache{}, nil
	}
	return NewRedisCache(url)
}

// NopCache never stores anything; every Get is a miss.
type NopCache struct{}

func (NopCache) SetWithExpiry(context.Context, string, string, time.Duration) error { return nil }
func (NopCache) Get(context.Context, string) (string, error)                       { return "", common.ErrCacheMiss }
func (NopCache) Ping(context.Context) error                                        { return nil }
func (NopCache) Close() error                                                      { return nil }
