package services_test

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"mercacomp/internal/domain"
	"mercacomp/internal/errs"
	"mercacomp/internal/remote"
	"mercacomp/internal/services"
)

func TestCompareSortsAndDropsUnknownStores(t *testing.T) {
	f := newFixture()
	svc := services.NewCatalogService(f.sessions, f.api)

	cmp, err := svc.Compare(context.Background(), "s", 10)
	require.NoError(t, err)
	require.Len(t, cmp.Offers, 3)
	assert.Equal(t, "Super Bom", cmp.Offers[0].Store.Name)
	assert.Equal(t, "Mercado Central", cmp.Offers[1].Store.Name)
	assert.Equal(t, "Atacadão", cmp.Offers[2].Store.Name)
}

func TestHomeLoadsEverything(t *testing.T) {
	f := newFixture()
	svc := services.NewCatalogService(f.sessions, f.api)

	home, err := svc.Home(context.Background(), "s")
	require.NoError(t, err)
	assert.Len(t, home.Categories, 8)
	assert.Len(t, home.Products, 3)
	assert.Len(t, home.Stores, 3)
}

func TestShelfOnlyPricedProducts(t *testing.T) {
	f := newFixture()
	svc := services.NewCatalogService(f.sessions, f.api)

	shelf, err := svc.Shelf(context.Background(), "s", 2, "")
	require.NoError(t, err)
	require.Len(t, shelf.Products, 2)
	assert.Equal(t, "1.8", shelf.Products[0].Price.String())
}

func TestLoginStoresSessionAndLogoutPurges(t *testing.T) {
	ctx := context.Background()
	f := newFixture()
	f.api.loginUser = domain.User{ID: 3, Name: "Ana", Role: "CLIENTE"}
	auth := services.NewAuthService(f.sessions, f.carts, f.addrs, f.api)

	_, err := auth.Login(ctx, "s", "", "")
	assert.ErrorIs(t, err, services.ErrBadCreds)

	u, err := auth.Login(ctx, "s", "ana@example.com", "segredo1")
	require.NoError(t, err)
	assert.Equal(t, "ana@example.com", u.Email)
	tok, _ := f.sessions.Token(ctx, "s")
	assert.Equal(t, "tok-ana@example.com", tok)

	require.NoError(t, f.carts.Save(ctx, "s", []domain.CartLine{{Quantity: 1}}))
	require.NoError(t, auth.Logout(ctx, "s"))
	tok, _ = f.sessions.Token(ctx, "s")
	assert.Empty(t, tok)
	lines, _ := f.carts.Load(ctx, "s")
	assert.Empty(t, lines)
}

func TestLoginSurfacesAPIMessage(t *testing.T) {
	f := newFixture()
	f.api.loginErr = &remote.APIError{Status: 401, Msg: "ERRO: E-mail ou Senha incorretos."}
	auth := services.NewAuthService(f.sessions, f.carts, f.addrs, f.api)

	_, err := auth.Login(context.Background(), "s", "ana@example.com", "x")
	ae, ok := errs.From(err)
	require.True(t, ok)
	assert.Equal(t, "ERRO: E-mail ou Senha incorretos.", ae.Message())
}

func TestRegisterNormalizesAndValidates(t *testing.T) {
	f := newFixture()
	auth := services.NewAuthService(f.sessions, f.carts, f.addrs, f.api)

	err := auth.Register(context.Background(), remote.Registration{
		Name: " Ana ", CPF: "123.456.789-09", Phone: "(81) 99999-0000", Email: "ana@example.com", Password: "segredo1",
	})
	require.NoError(t, err)
	require.Len(t, f.api.regs, 1)
	assert.Equal(t, "12345678909", f.api.regs[0].CPF)
	assert.Equal(t, "81999990000", f.api.regs[0].Phone)

	err = auth.Register(context.Background(), remote.Registration{Name: "Ana"})
	ae, ok := errs.From(err)
	require.True(t, ok)
	assert.Equal(t, 400, ae.HTTPCode())
}

func TestUpdateProfileKeepsRole(t *testing.T) {
	ctx := context.Background()
	f := newFixture()
	auth := services.NewAuthService(f.sessions, f.carts, f.addrs, f.api)
	require.NoError(t, f.sessions.SignIn(ctx, "s", "tok", domain.User{ID: 3, Name: "Ana", Role: "ADMIN"}))

	u, err := auth.UpdateProfile(ctx, "s", remote.ProfileUpdate{Name: "Ana Maria", Email: "am@example.com"})
	require.NoError(t, err)
	assert.Equal(t, "Ana Maria", u.Name)
	assert.True(t, u.IsAdmin())

	_, err = auth.UpdateProfile(ctx, "anon", remote.ProfileUpdate{Name: "X", Email: "x@example.com"})
	assert.True(t, errs.Is(err, errs.ErrUnauthorized))
}

func TestAdminRequiresRole(t *testing.T) {
	ctx := context.Background()
	f := newFixture()
	admin := services.NewAdminService(f.sessions, f.api)

	_, err := admin.Clients(ctx, "s")
	assert.True(t, errs.Is(err, errs.ErrUnauthorized))

	require.NoError(t, f.sessions.SignIn(ctx, "s", "tok", domain.User{ID: 1, Role: "CLIENTE"}))
	_, err = admin.Clients(ctx, "s")
	assert.True(t, errs.Is(err, errs.ErrForbidden))

	require.NoError(t, f.sessions.SignIn(ctx, "s", "tok", domain.User{ID: 1, Role: "ADMIN"}))
	clients, err := admin.Clients(ctx, "s")
	require.NoError(t, err)
	assert.Len(t, clients, 1)
	_, err = admin.Companies(ctx, "s")
	assert.NoError(t, err)
}

func TestCompareStopsStoreListingWhenProductFails(t *testing.T) {
	f := newFixture()
	api := &stalledStoreAPI{fakeAPI: f.api, stopped: make(chan struct{})}
	svc := services.NewCatalogService(f.sessions, api)

	_, err := svc.Compare(context.Background(), "s", 10)
	require.Error(t, err)

	select {
	case <-api.stopped:
	case <-time.After(time.Second):
		t.Fatal("store listing kept running after the product lookup failed")
	}
}
