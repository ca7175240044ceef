package repos_test

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"mercacomp/internal/domain"
	"mercacomp/internal/repos"
)

func TestCartRepoRoundTripAndWatch(t *testing.T) {
	ctx := context.Background()
	hub := repos.NewHub(repos.NewMemoryKV())
	carts := repos.NewCartRepo(hub)

	var changed []string
	defer carts.Watch(func(sid string, _ repos.Event) { changed = append(changed, sid) })()

	lines, err := carts.Load(ctx, "s1")
	require.NoError(t, err)
	assert.Empty(t, lines)

	in := []domain.CartLine{{
		Product:  domain.Product{ID: 7, Name: "Arroz"},
		Store:    domain.StoreRef{ID: 2, Name: "Super Bom"},
		Quantity: 3,
	}}
	require.NoError(t, carts.Save(ctx, "s1", in))

	out, err := carts.Load(ctx, "s1")
	require.NoError(t, err)
	require.Len(t, out, 1)
	assert.Equal(t, 3, out[0].Quantity)
	assert.Equal(t, "Super Bom", out[0].Store.Name)

	require.NoError(t, carts.Clear(ctx, "s1"))
	out, err = carts.Load(ctx, "s1")
	require.NoError(t, err)
	assert.Empty(t, out)

	// one save plus two deleted keys
	assert.Equal(t, []string{"s1", "s1"}, changed)
}

func TestCheckoutClearRemovesLegacyKeys(t *testing.T) {
	ctx := context.Background()
	kv := repos.NewMemoryKV()
	hub := repos.NewHub(kv)
	checkouts := repos.NewCheckoutRepo(hub)

	require.NoError(t, kv.Set(ctx, repos.SessionKey("s", "checkoutCart"), "[]"))
	require.NoError(t, checkouts.Save(ctx, "s", domain.CheckoutSnapshot{Stores: []int64{1}}))

	snap, ok, err := checkouts.Load(ctx, "s")
	require.NoError(t, err)
	require.True(t, ok)
	assert.Equal(t, []int64{1}, snap.Stores)

	require.NoError(t, checkouts.Clear(ctx, "s"))
	_, ok, _ = checkouts.Load(ctx, "s")
	assert.False(t, ok)
	_, ok, _ = kv.Get(ctx, repos.SessionKey("s", "checkoutCart"))
	assert.False(t, ok)
}

func TestSessionRepoPurgeKeepsCart(t *testing.T) {
	ctx := context.Background()
	hub := repos.NewHub(repos.NewMemoryKV())
	sessions := repos.NewSessionRepo(hub)
	carts := repos.NewCartRepo(hub)

	require.NoError(t, sessions.SignIn(ctx, "s", "tok", domain.User{ID: 1, Name: "Ana", Role: "CLIENTE"}))
	require.NoError(t, carts.Save(ctx, "s", []domain.CartLine{{Quantity: 1}}))

	tok, err := sessions.Token(ctx, "s")
	require.NoError(t, err)
	assert.Equal(t, "tok", tok)

	require.NoError(t, sessions.Purge(ctx, "s"))
	tok, _ = sessions.Token(ctx, "s")
	assert.Empty(t, tok)
	_, ok, _ := sessions.User(ctx, "s")
	assert.False(t, ok)

	lines, _ := carts.Load(ctx, "s")
	assert.Len(t, lines, 1)
}
