package repos_test

import (
	"context"
	"testing"

	"github.com/alicebob/miniredis/v2"
	"github.com/go-redis/redis/v8"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"mercacomp/internal/repos"
)

func adapters(t *testing.T) map[string]repos.KV {
	t.Helper()

	db, err := repos.OpenDB(":memory:")
	require.NoError(t, err)
	t.Cleanup(func() { _ = db.Close() })

	mr := miniredis.RunT(t)
	client := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	t.Cleanup(func() { _ = client.Close() })

	return map[string]repos.KV{
		"memory": repos.NewMemoryKV(),
		"sqlite": repos.NewSQLiteKV(db),
		"redis":  repos.NewRedisKV(client, "test:"),
	}
}

func TestAdaptersBehaveAlike(t *testing.T) {
	ctx := context.Background()
	for name, kv := range adapters(t) {
		t.Run(name, func(t *testing.T) {
			_, ok, err := kv.Get(ctx, "missing")
			require.NoError(t, err)
			assert.False(t, ok)

			require.NoError(t, kv.Set(ctx, "a", "1"))
			require.NoError(t, kv.Set(ctx, "a", "2"))
			require.NoError(t, kv.Set(ctx, "b", "3"))

			v, ok, err := kv.Get(ctx, "a")
			require.NoError(t, err)
			assert.True(t, ok)
			assert.Equal(t, "2", v)

			require.NoError(t, kv.Delete(ctx, "a", "b", "never-set"))
			_, ok, _ = kv.Get(ctx, "b")
			assert.False(t, ok)

			require.NoError(t, kv.Delete(ctx))
		})
	}
}

func TestRedisNamespace(t *testing.T) {
	mr := miniredis.RunT(t)
	client := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	defer client.Close()

	kv := repos.NewRedisKV(client, "mercacomp:")
	require.NoError(t, kv.Set(context.Background(), "session/x/cart", "[]"))

	got, err := mr.Get("mercacomp:session/x/cart")
	require.NoError(t, err)
	assert.Equal(t, "[]", got)
}

func TestHubPublishesMatchingPrefix(t *testing.T) {
	ctx := context.Background()
	hub := repos.NewHub(repos.NewMemoryKV())

	var seen []repos.Event
	cancel := hub.Subscribe("session/a/", func(ev repos.Event) { seen = append(seen, ev) })

	require.NoError(t, hub.Set(ctx, "session/a/cart", "[]"))
	require.NoError(t, hub.Set(ctx, "session/b/cart", "[]"))
	require.NoError(t, hub.Delete(ctx, "session/a/cart"))

	require.Len(t, seen, 2)
	assert.Equal(t, "session/a/cart", seen[0].Key)
	assert.False(t, seen[0].Deleted)
	assert.True(t, seen[1].Deleted)

	cancel()
	require.NoError(t, hub.Set(ctx, "session/a/cart", "[]"))
	assert.Len(t, seen, 2)
}

func TestSessionKeys(t *testing.T) {
	k := repos.SessionKey("abc", "cart")
	assert.Equal(t, "session/abc/cart", k)
	assert.Equal(t, "abc", repos.SessionOf(k))
	assert.Equal(t, "", repos.SessionOf("other"))
}

func TestOpenUnknownDriver(t *testing.T) {
	_, _, err := repos.Open(context.Background(), "mongo", "", "")
	assert.Error(t, err)
}
