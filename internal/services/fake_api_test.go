package services_test

import (
	"context"
	"errors"
	"sync"

	"github.com/shopspring/decimal"

	"mercacomp/internal/domain"
	"mercacomp/internal/errs"
	"mercacomp/internal/remote"
	"mercacomp/internal/repos"
)

// fakeAPI is an in-memory commerce API.
type fakeAPI struct {
	mu       sync.Mutex
	products map[int64]domain.Product
	stores   map[int64]domain.Store

	orders    []remote.OrderRequest
	orderErr  error
	block     chan struct{} // when set, CreateOrder waits on it
	started   chan struct{}
	loginUser domain.User
	loginErr  error
	regs      []remote.Registration
	updates   []remote.ProfileUpdate
	authErr   bool
}

func newFakeAPI() *fakeAPI {
	f := &fakeAPI{products: map[int64]domain.Product{}, stores: map[int64]domain.Store{}}
	f.stores[1] = domain.Store{ID: 1, Name: "Mercado Central"}
	f.stores[2] = domain.Store{ID: 2, Name: "Super Bom"}
	f.stores[3] = domain.Store{ID: 3, Name: "Atacadão"}
	f.products[10] = domain.Product{ID: 10, Name: "Arroz", Offers: []domain.Offer{
		{StoreID: 1, Price: decimal.RequireFromString("2.00")},
		{StoreID: 2, Price: decimal.RequireFromString("1.80")},
		{StoreID: 3, Price: decimal.RequireFromString("2.10")},
		{StoreID: 9, Price: decimal.RequireFromString("0.50")},
	}}
	f.products[11] = domain.Product{ID: 11, Name: "Feijão", Offers: []domain.Offer{
		{StoreID: 1, Price: decimal.RequireFromString("5.00")},
	}}
	f.products[12] = domain.Product{ID: 12, Name: "Café", Offers: []domain.Offer{
		{StoreID: 2, Price: decimal.RequireFromString("10.00")},
	}}
	return f
}

func (f *fakeAPI) check() error {
	if f.authErr {
		return errs.ErrUnauthorized
	}
	return nil
}

func (f *fakeAPI) Products(_ context.Context, _ string, q remote.ProductQuery) ([]domain.Product, error) {
	if err := f.check(); err != nil {
		return nil, err
	}
	var out []domain.Product
	for id := int64(10); id < 20; id++ {
		if p, ok := f.products[id]; ok {
			out = append(out, p)
		}
	}
	return out, nil
}

func (f *fakeAPI) Product(_ context.Context, _ string, id int64) (domain.Product, error) {
	if err := f.check(); err != nil {
		return domain.Product{}, err
	}
	p, ok := f.products[id]
	if !ok {
		return domain.Product{}, &remote.APIError{Status: 404, Msg: "Produto não encontrado"}
	}
	return p, nil
}

func (f *fakeAPI) Stores(context.Context, string) ([]domain.Store, error) {
	if err := f.check(); err != nil {
		return nil, err
	}
	return []domain.Store{f.stores[1], f.stores[2], f.stores[3]}, nil
}

func (f *fakeAPI) Store(_ context.Context, _ string, id int64) (domain.Store, error) {
	if err := f.check(); err != nil {
		return domain.Store{}, err
	}
	s, ok := f.stores[id]
	if !ok {
		return domain.Store{}, &remote.APIError{Status: 404, Msg: "Empresa não encontrada"}
	}
	return s, nil
}

func (f *fakeAPI) Login(_ context.Context, c remote.Credentials) (remote.LoginResult, error) {
	if f.loginErr != nil {
		return remote.LoginResult{}, f.loginErr
	}
	return remote.LoginResult{Token: "tok-" + c.Email, User: f.loginUser}, nil
}

func (f *fakeAPI) Register(_ context.Context, r remote.Registration) error {
	f.regs = append(f.regs, r)
	return nil
}

func (f *fakeAPI) UpdateClient(_ context.Context, _ string, id int64, p remote.ProfileUpdate) (domain.User, error) {
	f.updates = append(f.updates, p)
	return domain.User{ID: id, Name: p.Name, Email: p.Email}, f.check()
}

func (f *fakeAPI) Clients(context.Context, string) ([]domain.User, error) {
	return []domain.User{{ID: 1, Name: "Ana"}}, f.check()
}

func (f *fakeAPI) Orders(context.Context, string) ([]domain.Order, error) {
	return []domain.Order{{ID: 5}}, f.check()
}

func (f *fakeAPI) Reviews(context.Context, string) ([]domain.Review, error) {
	return nil, f.check()
}

func (f *fakeAPI) CreateOrder(_ context.Context, _ string, req remote.OrderRequest) (remote.OrderReceipt, error) {
	if f.started != nil {
		close(f.started)
	}
	if f.block != nil {
		<-f.block
	}
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.orderErr != nil {
		return remote.OrderReceipt{}, f.orderErr
	}
	f.orders = append(f.orders, req)
	return remote.OrderReceipt{ID: int64(len(f.orders))}, nil
}

type fakePostal struct{}

func (fakePostal) Lookup(_ context.Context, cep string) (remote.PostalAddress, error) {
	if cep == "01001000" {
		return remote.PostalAddress{Street: "Praça da Sé", Neighborhood: "Sé", City: "São Paulo", State: "SP"}, nil
	}
	return remote.PostalAddress{}, remote.ErrPostalNotFound
}

type fixture struct {
	hub       *repos.Hub
	carts     *repos.CartRepo
	addrs     *repos.AddressRepo
	checkouts *repos.CheckoutRepo
	sessions  *repos.SessionRepo
	api       *fakeAPI
}

func newFixture() *fixture {
	return newFixtureOn(repos.NewMemoryKV())
}

func newFixtureOn(kv repos.KV) *fixture {
	hub := repos.NewHub(kv)
	return &fixture{
		hub:       hub,
		carts:     repos.NewCartRepo(hub),
		addrs:     repos.NewAddressRepo(hub),
		checkouts: repos.NewCheckoutRepo(hub),
		sessions:  repos.NewSessionRepo(hub),
		api:       newFakeAPI(),
	}
}

// flakyKV fails every Delete while failDelete is set.
type flakyKV struct {
	*repos.MemoryKV

	mu         sync.Mutex
	failDelete bool
}

func (k *flakyKV) setFailDelete(v bool) {
	k.mu.Lock()
	k.failDelete = v
	k.mu.Unlock()
}

func (k *flakyKV) Delete(ctx context.Context, keys ...string) error {
	k.mu.Lock()
	fail := k.failDelete
	k.mu.Unlock()
	if fail {
		return errors.New("store down")
	}
	return k.MemoryKV.Delete(ctx, keys...)
}

// stalledStoreAPI fails product lookups and holds store lookups until their
// context ends, reporting the cancellation on stopped.
type stalledStoreAPI struct {
	*fakeAPI
	stopped chan struct{}
}

func (a *stalledStoreAPI) Product(context.Context, string, int64) (domain.Product, error) {
	return domain.Product{}, &remote.APIError{Status: 404, Msg: "Produto não encontrado"}
}

func (a *stalledStoreAPI) Store(ctx context.Context, _ string, _ int64) (domain.Store, error) {
	<-ctx.Done()
	close(a.stopped)
	return domain.Store{}, ctx.Err()
}

func (a *stalledStoreAPI) Stores(ctx context.Context, _ string) ([]domain.Store, error) {
	<-ctx.Done()
	close(a.stopped)
	return nil, ctx.Err()
}
