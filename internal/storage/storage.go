// Package storage provides the local cache for pinned content documents.
// Content references are content-addressed, so a cached payload can never go
// stale; the TTL only bounds disk usage.
package storage

import (
	"fmt"
	"strings"
	"time"
)

// Store caches fetched content payloads keyed by content reference.
type Store interface {
	Close() error
	Get(ref string) ([]byte, bool, error)
	Put(ref string, payload []byte) error
}

// Options controls retention characteristics for concrete store implementations.
type Options struct {
	ContentTTL      time.Duration
	CleanupInterval time.Duration
}

const (
	defaultContentTTL      = 5 * 24 * time.Hour
	defaultCleanupInterval = 12 * time.Hour
)

// NewStore creates the configured storage backend.
func NewStore(typ, path string, opts Options) (Store, error) {
	typ = strings.TrimSpace(strings.ToLower(typ))
	opts = normalizeOptions(opts)

	switch typ {
	case "", "none", "disabled":
		return noopStore{}, nil
	case "bbolt":
		if strings.TrimSpace(path) == "" {
			return nil, fmt.Errorf("bbolt storage requires a path")
		}
		return openBolt(path, opts)
	default:
		return nil, fmt.Errorf("unsupported storage type %q", typ)
	}
}

func normalizeOptions(opts Options) Options {
	if opts.ContentTTL <= 0 {
		opts.ContentTTL = defaultContentTTL
	}
	if opts.CleanupInterval <= 0 {
		opts.CleanupInterval = defaultCleanupInterval
	}
	return opts
}

type noopStore struct{}

func (noopStore) Close() error                     { return nil }
func (noopStore) Get(string) ([]byte, bool, error) { return nil, false, nil }
func (noopStore) Put(string, []byte) error         { return nil }
