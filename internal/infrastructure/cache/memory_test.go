package cache

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestMemoryStore_SetGet(t *testing.T) {
	s := NewMemoryStore()
	defer s.Close()
	ctx := context.Background()

	_, found, err := s.Get(ctx, "brands:x")
	require.NoError(t, err)
	assert.False(t, found)

	require.NoError(t, s.Set(ctx, "brands:x", Entry{Value: []byte(`[1]`)}, time.Minute))
	e, found, err := s.Get(ctx, "brands:x")
	require.NoError(t, err)
	assert.True(t, found)
	assert.Equal(t, `[1]`, string(e.Value))

	hits, misses, size := s.Stats()
	assert.EqualValues(t, 1, hits)
	assert.EqualValues(t, 1, misses)
	assert.Equal(t, 1, size)
}

func TestMemoryStore_Expiry(t *testing.T) {
	s := NewMemoryStore()
	defer s.Close()
	ctx := context.Background()

	require.NoError(t, s.Set(ctx, "brands:x", Entry{Value: []byte(`1`)}, -time.Second))
	_, found, err := s.Get(ctx, "brands:x")
	require.NoError(t, err)
	assert.False(t, found)
}

func TestMemoryStore_InvalidateGroups(t *testing.T) {
	s := NewMemoryStore()
	defer s.Close()
	ctx := context.Background()

	for _, k := range []string{"brands:a", "brands:b", "brand_models:a", "categories:a"} {
		require.NoError(t, s.Set(ctx, k, Entry{Value: []byte(`1`)}, time.Minute))
	}

	require.NoError(t, s.InvalidateGroups(ctx, GroupBrands, GroupCategories))

	for k, want := range map[string]bool{
		"brands:a":       false,
		"brands:b":       false,
		"brand_models:a": true,
		"categories:a":   false,
	} {
		_, found, err := s.Get(ctx, k)
		require.NoError(t, err)
		assert.Equal(t, want, found, k)
	}
}

func TestMemoryStore_CleanupLoop(t *testing.T) {
	s := NewMemoryStore(WithCleanupInterval(10 * time.Millisecond))
	defer s.Close()

	require.NoError(t, s.Set(context.Background(), "brands:a", Entry{}, 5*time.Millisecond))
	assert.Eventually(t, func() bool {
		_, _, size := s.Stats()
		return size == 0
	}, time.Second, 10*time.Millisecond)
}

func TestMemoryStore_CloseIsIdempotent(t *testing.T) {
	s := NewMemoryStore()
	assert.NoError(t, s.Close())
	assert.NoError(t, s.Close())
}
