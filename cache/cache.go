// Package cache stores upstream responses for a fixed time so repeated page
// views do not hit WordPress on every request.
package cache

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"
)

// ErrMiss is returned by Get when the key is absent or expired.
var ErrMiss = errors.New("cache: miss")

// DefaultTTL is how long a cached response stays fresh.
const DefaultTTL = 5 * time.Minute

// Cache is a byte-oriented key/value store with per-entry expiry.
// Implementations are safe for concurrent use.
type Cache interface {
	Get(ctx context.Context, key string) ([]byte, error)
	Set(ctx context.Context, key string, value []byte, ttl time.Duration) error
	Delete(ctx context.Context, key string) error
	Close() error
}

// Backend names accepted by Open.
const (
	BackendMemory = "memory"
	BackendSQLite = "sqlite"
	BackendRedis  = "redis"
	BackendNone   = "none"
)

// Options configures Open.
type Options struct {
	Backend      string
	TTL          time.Duration
	DatabasePath string // sqlite
	RedisAddr    string
	RedisDB      int
}

// Open returns the backend named by opts.Backend. An empty name selects memory.
func Open(opts Options) (Cache, error) {
	if opts.TTL <= 0 {
		opts.TTL = DefaultTTL
	}
	switch strings.ToLower(opts.Backend) {
	case "", BackendMemory:
		return NewMemory(opts.TTL), nil
	case BackendSQLite:
		s, err := NewSQLite(opts.DatabasePath)
		if err != nil {
			return nil, err
		}
		s.PurgeEvery(opts.TTL)
		return s, nil
	case BackendRedis:
		r, err := NewRedis(opts.RedisAddr, opts.RedisDB)
		if err != nil {
			return nil, err
		}
		return r, nil
	case BackendNone, "nop", "off":
		return Nop{}, nil
	}
	return nil, fmt.Errorf("cache: unknown backend %q", opts.Backend)
}

// Nop never stores anything. Every Get is a miss.
type Nop struct{}

func (Nop) Get(context.Context, string) ([]byte, error) {
	return nil, ErrMiss
}

func (Nop) Set(context.Context, string, []byte, time.Duration) error {
	return nil
}

func (Nop) Delete(context.Context, string) error {
	return nil
}

func (Nop) Close() error {
	return nil
}
