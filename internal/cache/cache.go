// Package cache memoizes analysis artifacts keyed by patient, analysis kind
// and request parameters. Entries expire after a configured TTL and the
// in-process backend evicts least-recently-used entries beyond capacity.
package cache

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"fmt"
	"sort"
	"strings"
	"time"

	"github.com/tensioapp/tensio/internal/config"
)

// Stats reports the current cache occupancy and configuration.
type Stats struct {
	Size     int
	Capacity int
	TTL      time.Duration
}

// Cache is the artifact cache shared by all analysis calls. Values are
// JSON-serialized artifacts. Concurrent use is safe; a racing Set on the
// same key resolves last-write-wins.
type Cache interface {
	// Get returns the cached artifact for the key tuple, or ok=false.
	Get(ctx context.Context, patientID, kind string, params map[string]any) ([]byte, bool)
	// Set stores the artifact for the key tuple.
	Set(ctx context.Context, patientID, kind string, params map[string]any, artifact []byte)
	// Invalidate removes every entry derived from the patient id and
	// returns the number of removed entries.
	Invalidate(ctx context.Context, patientID string) int
	// Stats reports size, capacity and TTL.
	Stats(ctx context.Context) Stats
	// Close releases backend resources.
	Close() error
}

// New constructs the cache backend selected by configuration.
func New(cfg config.CacheConfig) (Cache, error) {
	switch cfg.Backend {
	case "", "memory":
		return NewMemory(cfg.MaxSize, cfg.TTL), nil
	case "redis":
		return NewRedis(cfg)
	default:
		return nil, fmt.Errorf("unknown cache backend: %s", cfg.Backend)
	}
}

// Key derives the deterministic cache key for a (patient, kind, params)
// tuple. Parameters are hashed order-independently so that equal parameter
// sets always collide and differing ones never do. The patient id prefixes
// the key so per-patient invalidation can match entries without decoding.
func Key(patientID, kind string, params map[string]any) string {
	parts := make([]string, 0, len(params))
	for k, v := range params {
		parts = append(parts, fmt.Sprintf("%s=%v", k, v))
	}
	sort.Strings(parts)

	sum := sha256.Sum256([]byte(kind + "|" + strings.Join(parts, "|")))
	return patientID + ":" + kind + ":" + hex.EncodeToString(sum[:16])
}

// patientPrefix is the key prefix owned by one patient.
func patientPrefix(patientID string) string {
	return patientID + ":"
}
