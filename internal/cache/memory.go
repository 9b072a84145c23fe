package cache

import (
	"context"
	"strings"
	"time"

	"github.com/hashicorp/golang-lru/v2/expirable"
)

// Memory is the default in-process backend: a bounded LRU with per-entry
// TTL expiry.
type Memory struct {
	lru      *expirable.LRU[string, []byte]
	capacity int
	ttl      time.Duration
}

// NewMemory creates an in-process cache with the given capacity and TTL.
func NewMemory(capacity int, ttl time.Duration) *Memory {
	return &Memory{
		lru:      expirable.NewLRU[string, []byte](capacity, nil, ttl),
		capacity: capacity,
		ttl:      ttl,
	}
}

func (m *Memory) Get(_ context.Context, patientID, kind string, params map[string]any) ([]byte, bool) {
	return m.lru.Get(Key(patientID, kind, params))
}

func (m *Memory) Set(_ context.Context, patientID, kind string, params map[string]any, artifact []byte) {
	m.lru.Add(Key(patientID, kind, params), artifact)
}

func (m *Memory) Invalidate(_ context.Context, patientID string) int {
	prefix := patientPrefix(patientID)
	removed := 0
	for _, key := range m.lru.Keys() {
		if strings.HasPrefix(key, prefix) {
			if m.lru.Remove(key) {
				removed++
			}
		}
	}
	return removed
}

func (m *Memory) Stats(_ context.Context) Stats {
	return Stats{Size: m.lru.Len(), Capacity: m.capacity, TTL: m.ttl}
}

func (m *Memory) Close() error {
	return nil
}
