package cache

import (
	"context"
	"fmt"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/tensioapp/tensio/internal/config"
)

func TestKey_Deterministic(t *testing.T) {
	a := Key("patient-1", "insights", map[string]any{"days": 30})
	b := Key("patient-1", "insights", map[string]any{"days": 30})
	assert.Equal(t, a, b)
}

func TestKey_ParamOrderIndependent(t *testing.T) {
	a := Key("patient-1", "forecast", map[string]any{"days": 30, "metric": "systolic"})
	b := Key("patient-1", "forecast", map[string]any{"metric": "systolic", "days": 30})
	assert.Equal(t, a, b)
}

func TestKey_DistinguishesTuples(t *testing.T) {
	base := Key("patient-1", "insights", map[string]any{"days": 30})

	assert.NotEqual(t, base, Key("patient-2", "insights", map[string]any{"days": 30}))
	assert.NotEqual(t, base, Key("patient-1", "patterns", map[string]any{"days": 30}))
	assert.NotEqual(t, base, Key("patient-1", "insights", map[string]any{"days": 7}))
}

func TestMemory_GetSet(t *testing.T) {
	ctx := context.Background()
	c := NewMemory(10, time.Minute)

	_, ok := c.Get(ctx, "patient-1", "insights", map[string]any{"days": 30})
	assert.False(t, ok)

	c.Set(ctx, "patient-1", "insights", map[string]any{"days": 30}, []byte(`{"insights":[]}`))

	artifact, ok := c.Get(ctx, "patient-1", "insights", map[string]any{"days": 30})
	assert.True(t, ok)
	assert.Equal(t, []byte(`{"insights":[]}`), artifact)
}

func TestMemory_InvalidatePerPatient(t *testing.T) {
	ctx := context.Background()
	c := NewMemory(10, time.Minute)

	c.Set(ctx, "patient-1", "insights", map[string]any{"days": 30}, []byte("a"))
	c.Set(ctx, "patient-1", "patterns", map[string]any{"days": 30}, []byte("b"))
	c.Set(ctx, "patient-2", "insights", map[string]any{"days": 30}, []byte("c"))

	removed := c.Invalidate(ctx, "patient-1")
	assert.Equal(t, 2, removed)

	_, ok := c.Get(ctx, "patient-1", "insights", map[string]any{"days": 30})
	assert.False(t, ok)
	_, ok = c.Get(ctx, "patient-1", "patterns", map[string]any{"days": 30})
	assert.False(t, ok)

	// The other patient is untouched.
	artifact, ok := c.Get(ctx, "patient-2", "insights", map[string]any{"days": 30})
	assert.True(t, ok)
	assert.Equal(t, []byte("c"), artifact)
}

func TestMemory_LRUEviction(t *testing.T) {
	ctx := context.Background()
	c := NewMemory(3, time.Minute)

	for i := 0; i < 4; i++ {
		c.Set(ctx, fmt.Sprintf("patient-%d", i), "insights", map[string]any{"days": 30}, []byte("x"))
	}

	// Oldest entry is gone, the rest survive.
	_, ok := c.Get(ctx, "patient-0", "insights", map[string]any{"days": 30})
	assert.False(t, ok)
	for i := 1; i < 4; i++ {
		_, ok := c.Get(ctx, fmt.Sprintf("patient-%d", i), "insights", map[string]any{"days": 30})
		assert.True(t, ok, "patient-%d should still be cached", i)
	}

	stats := c.Stats(ctx)
	assert.Equal(t, 3, stats.Size)
	assert.Equal(t, 3, stats.Capacity)
}

func TestMemory_TTLExpiry(t *testing.T) {
	ctx := context.Background()
	c := NewMemory(10, 20*time.Millisecond)

	c.Set(ctx, "patient-1", "insights", map[string]any{"days": 30}, []byte("x"))
	time.Sleep(60 * time.Millisecond)

	_, ok := c.Get(ctx, "patient-1", "insights", map[string]any{"days": 30})
	assert.False(t, ok)
}

func TestNew_BackendSelection(t *testing.T) {
	c, err := New(config.CacheConfig{Backend: "memory", MaxSize: 10, TTL: time.Minute})
	assert.NoError(t, err)
	assert.IsType(t, &Memory{}, c)

	_, err = New(config.CacheConfig{Backend: "memcached"})
	assert.Error(t, err)
}
