package domain

import (
	"context"
	"time"
)

// CacheError represents an error originating from the cache.
type CacheError string

func (e CacheError) Error() string {
	return string(e)
}

// ErrCacheMiss is returned when a key is not found in the cache.
const ErrCacheMiss = CacheError("cache: key not found")

// Cache is the key/value port used for OTP state, lockouts and cached
// upstream responses.
type Cache interface {
	// Get returns ErrCacheMiss if the key is not found.
	Get(ctx context.Context, key string) (string, error)

	// Set overwrites key. A zero expiration keeps the item indefinitely.
	Set(ctx context.Context, key string, value string, expiration time.Duration) error

	// Delete removes key; a missing key is not an error.
	Delete(ctx context.Context, key string) error

	Ping(ctx context.Context) error

	// HGet returns ErrCacheMiss if the field is not set.
	HGet(ctx context.Context, key, field string) (string, error)

	// HGetAll returns ErrCacheMiss if the hash does not exist.
	HGetAll(ctx context.Context, key string) (map[string]string, error)

	HSet(ctx context.Context, key string, field string, value string) error

	// HIncrBy atomically adds incr to an integer hash field and returns the new value.
	HIncrBy(ctx context.Context, key, field string, incr int64) (int64, error)

	Expire(ctx context.Context, key string, expiration time.Duration) error

	// TTL returns the remaining lifetime of key, or ErrCacheMiss if it does not exist.
	TTL(ctx context.Context, key string) (time.Duration, error)
}
