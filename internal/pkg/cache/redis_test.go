package cache

import (
	"context"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func setupRedisCache(t *testing.T) (*RedisCache, *miniredis.Miniredis) {
	t.Helper()
	mr := miniredis.RunT(t)
	client := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	c := NewRedisCache(client, time.Minute, "technohack")
	t.Cleanup(func() { _ = c.Close() })
	return c, mr
}

func TestRedisCache_SetGet(t *testing.T) {
	// Arrange
	ctx := context.Background()
	c, mr := setupRedisCache(t)

	// Act
	require.NoError(t, c.Set(ctx, ClubKey(1), club{ID: 1, Members: []int64{2, 3}}))
	var out club
	found, err := c.Get(ctx, ClubKey(1), &out)

	// Assert
	require.NoError(t, err)
	assert.True(t, found)
	assert.Equal(t, []int64{2, 3}, out.Members)
	assert.True(t, mr.Exists("technohack:clubs:1"))
}

func TestRedisCache_Miss(t *testing.T) {
	c, _ := setupRedisCache(t)

	var out club
	found, err := c.Get(context.Background(), EventKey(9), &out)

	require.NoError(t, err)
	assert.False(t, found)
}

func TestRedisCache_TTL(t *testing.T) {
	ctx := context.Background()
	c, mr := setupRedisCache(t)
	require.NoError(t, c.Set(ctx, EventListKey, []club{}))

	mr.FastForward(2 * time.Minute)

	var out []club
	found, err := c.Get(ctx, EventListKey, &out)
	require.NoError(t, err)
	assert.False(t, found)
}

func TestRedisCache_DeletePrefix(t *testing.T) {
	ctx := context.Background()
	c, mr := setupRedisCache(t)
	for i := int64(1); i <= 250; i++ {
		require.NoError(t, c.Set(ctx, ClubKey(i), club{ID: i}))
	}
	require.NoError(t, c.Set(ctx, EventKey(1), club{ID: 1}))

	require.NoError(t, c.DeletePrefix(ctx, ClubsPrefix))

	assert.ElementsMatch(t, []string{"technohack:events:1", "technohack:generation:clubs"}, mr.Keys())
	gen, err := c.Generation(ctx, "clubs")
	require.NoError(t, err)
	assert.Equal(t, uint64(1), gen)
}

func TestRedisCache_SetIfGeneration(t *testing.T) {
	// Arrange
	ctx := context.Background()
	c, mr := setupRedisCache(t)
	gen, err := c.Generation(ctx, "clubs")
	require.NoError(t, err)
	require.Equal(t, uint64(0), gen)

	// Act
	stored, err := c.SetIfGeneration(ctx, ClubListKey, []club{{ID: 1}}, gen)
	require.NoError(t, err)
	require.NoError(t, c.DeletePrefix(ctx, ClubsPrefix))
	stale, err := c.SetIfGeneration(ctx, ClubListKey, []club{{ID: 1}}, gen)
	require.NoError(t, err)

	// Assert
	assert.True(t, stored)
	assert.False(t, stale)
	assert.False(t, mr.Exists("technohack:clubs:list"))
}

func TestRedisCache_BackendDown(t *testing.T) {
	c, mr := setupRedisCache(t)
	mr.Close()

	var out club
	_, err := c.Get(context.Background(), ClubKey(1), &out)

	assert.Error(t, err)
}
