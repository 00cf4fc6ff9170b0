package storage

import (
	"context"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/require"
)

func newRedisPair(t *testing.T) (*RedisStore, *RedisStore) {
	t.Helper()
	mr := miniredis.RunT(t)

	c1 := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	c2 := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	s1 := NewRedisStoreWithClient(c1, "test", discardLogger())
	s2 := NewRedisStoreWithClient(c2, "test", discardLogger())
	t.Cleanup(func() {
		_ = s1.Close()
		_ = s2.Close()
	})
	return s1, s2
}

func TestRedisStore_GetSetRemove(t *testing.T) {
	ctx := context.Background()
	s, _ := newRedisPair(t)

	_, ok, err := s.Get(ctx, KeyAuthUser)
	require.NoError(t, err)
	require.False(t, ok)

	require.NoError(t, s.Set(ctx, KeyAuthUser, `{"id":7}`))
	v, ok, err := s.Get(ctx, KeyAuthUser)
	require.NoError(t, err)
	require.True(t, ok)
	require.Equal(t, `{"id":7}`, v)

	require.NoError(t, s.Remove(ctx, KeyAuthUser))
	_, ok, err = s.Get(ctx, KeyAuthUser)
	require.NoError(t, err)
	require.False(t, ok)
}

func TestRedisStore_WatchSkipsOwnOrigin(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	s1, s2 := newRedisPair(t)

	own, err := s1.Watch(ctx)
	require.NoError(t, err)
	other, err := s2.Watch(ctx)
	require.NoError(t, err)

	require.NoError(t, s1.Set(ctx, KeySimulatedDate, "2024-07-04"))

	select {
	case c := <-other:
		require.Equal(t, KeySimulatedDate, c.Key)
		require.Equal(t, "2024-07-04", *c.NewValue)
	case <-time.After(2 * time.Second):
		t.Fatal("other instance did not observe write")
	}

	select {
	case c := <-own:
		t.Fatalf("writer observed its own write: %+v", c)
	case <-time.After(200 * time.Millisecond):
	}

	require.NoError(t, s1.Remove(ctx, KeySimulatedDate))
	select {
	case c := <-other:
		require.Equal(t, KeySimulatedDate, c.Key)
		require.Nil(t, c.NewValue)
	case <-time.After(2 * time.Second):
		t.Fatal("other instance did not observe removal")
	}
}
