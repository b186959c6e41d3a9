package cache

import (
	"context"
	"testing"
	"time"

	"encomendas_backend/internal/models"

	"github.com/alicebob/miniredis/v2"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestCache(t *testing.T) (*RedisResidentCache, *miniredis.Miniredis) {
	t.Helper()
	mr := miniredis.RunT(t)
	client := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	t.Cleanup(func() { _ = client.Close() })
	return NewRedisResidentCache(client, time.Minute), mr
}

func TestRedisResidentCache_RoundTrip(t *testing.T) {
	ctx := context.Background()
	c, mr := newTestCache(t)

	_, ok, err := c.Get(ctx, "c1")
	require.NoError(t, err)
	assert.False(t, ok)

	phone := "+5511999998888"
	residents := []models.Resident{
		{FullName: "Maria Silva", Block: "A", Apartment: "53", Phone: &phone, IsActive: true, CondominiumID: "c1"},
	}
	residents[0].ID = "r1"
	require.NoError(t, c.Set(ctx, "c1", residents))

	got, ok, err := c.Get(ctx, "c1")
	require.NoError(t, err)
	require.True(t, ok)
	require.Len(t, got, 1)
	assert.Equal(t, "r1", got[0].ID)
	assert.Equal(t, "Maria Silva", got[0].FullName)
	assert.True(t, got[0].HasPhone())

	mr.FastForward(2 * time.Minute)
	_, ok, err = c.Get(ctx, "c1")
	require.NoError(t, err)
	assert.False(t, ok)
}

func TestRedisResidentCache_EmptySnapshotIsAHit(t *testing.T) {
	ctx := context.Background()
	c, _ := newTestCache(t)

	require.NoError(t, c.Set(ctx, "c1", nil))
	got, ok, err := c.Get(ctx, "c1")
	require.NoError(t, err)
	assert.True(t, ok)
	assert.Empty(t, got)
}

func TestRedisResidentCache_Invalidate(t *testing.T) {
	ctx := context.Background()
	c, mr := newTestCache(t)

	require.NoError(t, c.Set(ctx, "c1", []models.Resident{{FullName: "A"}}))
	require.NoError(t, c.Set(ctx, "c2", []models.Resident{{FullName: "B"}}))
	require.NoError(t, c.Invalidate(ctx, "c1"))

	assert.False(t, mr.Exists(residentsKey("c1")))
	assert.True(t, mr.Exists(residentsKey("c2")))
}

func TestRedisResidentCache_CorruptEntryIsMiss(t *testing.T) {
	ctx := context.Background()
	c, mr := newTestCache(t)
	require.NoError(t, mr.Set(residentsKey("c1"), "{not json"))

	_, ok, err := c.Get(ctx, "c1")
	require.NoError(t, err)
	assert.False(t, ok)
}
