package view

import (
	"context"
	"testing"

	miniredis "github.com/alicebob/miniredis/v2"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/require"
)

func newTestCache(t *testing.T) *redis.Client {
	t.Helper()

	server, err := miniredis.Run()
	require.NoError(t, err)
	t.Cleanup(server.Close)

	client := redis.NewClient(&redis.Options{Addr: server.Addr()})
	t.Cleanup(func() { client.Close() })
	return client
}

func TestHideListRoundTrip(t *testing.T) {
	cache := newTestCache(t)
	ctx := context.Background()

	list := NewHideList(cache, "abc", testLogger())
	list.Hide(ctx, 9)
	list.Hide(ctx, 7)

	reloaded := NewHideList(cache, "abc", testLogger())
	require.NoError(t, reloaded.Load(ctx))
	require.Equal(t, []int{7, 9}, reloaded.IDs())
	require.True(t, reloaded.Contains(7))
	require.False(t, reloaded.Contains(8))
}

func TestHideListMissingKeyStartsEmpty(t *testing.T) {
	list := NewHideList(newTestCache(t), "abc", testLogger())
	require.NoError(t, list.Load(context.Background()))
	require.Empty(t, list.IDs())
}

func TestHideListDiscardsMalformedPayload(t *testing.T) {
	cache := newTestCache(t)
	ctx := context.Background()
	require.NoError(t, cache.Set(ctx, "hidden_tasks:abc", "not json", 0).Err())

	list := NewHideList(cache, "abc", testLogger())
	require.NoError(t, list.Load(ctx))
	require.Empty(t, list.IDs())
}

func TestHideListKeysScopedByClassroom(t *testing.T) {
	cache := newTestCache(t)
	ctx := context.Background()

	NewHideList(cache, "abc", testLogger()).Hide(ctx, 1)

	other := NewHideList(cache, "xyz", testLogger())
	require.NoError(t, other.Load(ctx))
	require.Empty(t, other.IDs())
}

func TestHideListShowAndClear(t *testing.T) {
	cache := newTestCache(t)
	ctx := context.Background()

	list := NewHideList(cache, "abc", testLogger())
	list.HideAll(ctx, []int{1, 2, 3})
	list.Show(ctx, 2)
	require.Equal(t, []int{1, 3}, list.IDs())

	list.Clear(ctx)
	require.Empty(t, list.IDs())

	reloaded := NewHideList(cache, "abc", testLogger())
	require.NoError(t, reloaded.Load(ctx))
	require.Empty(t, reloaded.IDs())
}

func TestHideListSurvivesWithoutCache(t *testing.T) {
	list := NewHideList(nil, "abc", testLogger())
	ctx := context.Background()

	require.NoError(t, list.Load(ctx))
	list.Hide(ctx, 5)
	require.True(t, list.Contains(5))
}
