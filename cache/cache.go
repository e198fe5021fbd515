// Package cache provides persistent translation stores for the gateway.
package cache

import (
	"context"
	"io"
	"time"

	"github.com/ZaguanLabs/wordcache"
)

// Store is the interface for translation caching.
// This is an alias to the main package interface for convenience.
type Store = wordcache.CacheStore

// ClosableStore is a Store that owns a connection to release on shutdown.
type ClosableStore interface {
	Store
	io.Closer
}

// Lister is implemented by stores that can enumerate every entry.
type Lister interface {
	Entries(ctx context.Context) ([]wordcache.CacheEntry, error)
}

// Option configures a store.
type Option func(*options)

type options struct {
	now func() time.Time
}

// WithClock sets the clock used to stamp created_at on writes.
func WithClock(now func() time.Time) Option {
	return func(o *options) {
		if now != nil {
			o.now = now
		}
	}
}

func newOptions(opts []Option) options {
	o := options{
		now: func() time.Time { return time.Now().UTC() },
	}
	for _, opt := range opts {
		opt(&o)
	}
	return o
}

func storageError(op string, key wordcache.Key, err error) error {
	return &wordcache.StorageError{Op: op, Key: key, Cause: err}
}
