// Package cache stores raw upstream response bodies between analysis runs.
//
// Registry lookups, deps.dev dependency graphs and OSV advisory records are
// stable for hours, so repeated scans of the same project can skip most of
// the network. Batch vulnerability queries are paginated and never cached.
//
// Four backends implement [Cache]:
//   - [FileCache]: one JSON file per entry under a local directory (CLI default)
//   - [RedisCache]: shared cache for several `riskgraph serve` instances
//   - [MongoCache]: document store with a TTL index
//   - [NullCache]: disables caching
//
// Use [Open] to build one from a [Config].
package cache

import (
	"context"
	"fmt"
	"time"
)

// Default TTLs per kind of cached response.
const (
	TTLRegistry = 24 * time.Hour     // latest-version lookups
	TTLGraph    = 7 * 24 * time.Hour // dependency graphs for a pinned version
	TTLAdvisory = 24 * time.Hour     // OSV vulnerability records
)

// Backend names accepted by Open.
const (
	BackendFile  = "file"
	BackendRedis = "redis"
	BackendMongo = "mongo"
	BackendNone  = "none"
)

// Cache is a byte-oriented key/value store with per-entry expiry.
type Cache interface {
	// Get returns the stored bytes and true on a hit. A miss is not an error.
	Get(ctx context.Context, key string) ([]byte, bool, error)

	// Set stores data under key. A zero ttl means no expiry.
	Set(ctx context.Context, key string, data []byte, ttl time.Duration) error

	// Delete removes key. Deleting a missing key is not an error.
	Delete(ctx context.Context, key string) error

	// Close releases backend resources.
	Close() error
}

// Config selects and configures a backend.
type Config struct {
	Backend       string `toml:"backend"`
	Dir           string `toml:"dir"`
	RedisURL      string `toml:"redis_url"`
	MongoURI      string `toml:"mongo_uri"`
	MongoDatabase string `toml:"mongo_database"`
}

// Open builds the backend named by cfg.Backend. An empty backend means file.
func Open(ctx context.Context, cfg Config) (Cache, error) {
	var (
		c   Cache
		err error
	)
	switch cfg.Backend {
	case "", BackendFile:
		if cfg.Dir == "" {
			return nil, fmt.Errorf("cache: file backend needs a directory")
		}
		c, err = NewFileCache(cfg.Dir)
	case BackendRedis:
		c, err = NewRedisCache(ctx, cfg.RedisURL)
	case BackendMongo:
		c, err = NewMongoCache(ctx, cfg.MongoURI, cfg.MongoDatabase)
	case BackendNone:
		return NewNullCache(), nil
	default:
		return nil, fmt.Errorf("cache: unknown backend %q", cfg.Backend)
	}
	if err != nil {
		return nil, err
	}
	return c, nil
}
