package services

import (
	"context"
	"sort"

	"github.com/shopspring/decimal"

	"mercacomp/internal/async"
	"mercacomp/internal/domain"
	"mercacomp/internal/errs"
	"mercacomp/internal/remote"
	"mercacomp/internal/repos"
)

// HomeProductLimit is how many products the landing page shows.
const HomeProductLimit = 8

type CatalogService struct {
	Sessions *repos.SessionRepo
	API      API
}

func NewCatalogService(sessions *repos.SessionRepo, api API) *CatalogService {
	return &CatalogService{Sessions: sessions, API: api}
}

func (s *CatalogService) Categories() []domain.Category {
	return domain.Categories
}

type HomeView struct {
	Categories []domain.Category `json:"categories"`
	Products   []domain.Product  `json:"products"`
	Stores     []domain.Store    `json:"stores"`
}

// Home loads products and stores in parallel.
func (s *CatalogService) Home(ctx context.Context, sid string) (HomeView, error) {
	token, err := tokenFor(ctx, s.Sessions, sid)
	if err != nil {
		return HomeView{}, err
	}
	ctx, cancel := context.WithCancel(ctx)
	defer cancel()
	pOp := async.Go(ctx, func(ctx context.Context) ([]domain.Product, error) {
		return s.API.Products(ctx, token, remote.ProductQuery{})
	})
	sOp := async.Go(ctx, func(ctx context.Context) ([]domain.Store, error) {
		return s.API.Stores(ctx, token)
	})

	products, err := pOp.Wait(ctx)
	if err != nil {
		return HomeView{}, err
	}
	stores, err := sOp.Wait(ctx)
	if err != nil {
		return HomeView{}, err
	}
	if len(products) > HomeProductLimit {
		products = products[:HomeProductLimit]
	}
	return HomeView{Categories: domain.Categories, Products: products, Stores: stores}, nil
}

func (s *CatalogService) Products(ctx context.Context, sid, category, q string) ([]domain.Product, error) {
	token, err := tokenFor(ctx, s.Sessions, sid)
	if err != nil {
		return nil, err
	}
	return s.API.Products(ctx, token, remote.ProductQuery{Category: category, Q: q})
}

func (s *CatalogService) Product(ctx context.Context, sid string, id int64) (domain.Product, error) {
	token, err := tokenFor(ctx, s.Sessions, sid)
	if err != nil {
		return domain.Product{}, err
	}
	return s.API.Product(ctx, token, id)
}

func (s *CatalogService) Stores(ctx context.Context, sid string) ([]domain.Store, error) {
	token, err := tokenFor(ctx, s.Sessions, sid)
	if err != nil {
		return nil, err
	}
	return s.API.Stores(ctx, token)
}

func (s *CatalogService) Store(ctx context.Context, sid string, id int64) (domain.Store, error) {
	token, err := tokenFor(ctx, s.Sessions, sid)
	if err != nil {
		return domain.Store{}, err
	}
	return s.API.Store(ctx, token, id)
}

type StoreOffer struct {
	Store domain.Store    `json:"supermarket"`
	Price decimal.Decimal `json:"preco"`
}

type Comparison struct {
	Product domain.Product `json:"product"`
	Offers  []StoreOffer   `json:"offers"`
}

// Compare lists a product's offers cheapest first. Offers from stores the API
// does not know are dropped.
func (s *CatalogService) Compare(ctx context.Context, sid string, productID int64) (Comparison, error) {
	token, err := tokenFor(ctx, s.Sessions, sid)
	if err != nil {
		return Comparison{}, err
	}
	ctx, cancel := context.WithCancel(ctx)
	defer cancel()
	pOp := async.Go(ctx, func(ctx context.Context) (domain.Product, error) { return s.API.Product(ctx, token, productID) })
	sOp := async.Go(ctx, func(ctx context.Context) ([]domain.Store, error) { return s.API.Stores(ctx, token) })

	product, err := pOp.Wait(ctx)
	if err != nil {
		return Comparison{}, err
	}
	stores, err := sOp.Wait(ctx)
	if err != nil {
		return Comparison{}, err
	}

	byID := make(map[int64]domain.Store, len(stores))
	for _, st := range stores {
		byID[st.ID] = st
	}
	offers := make([]StoreOffer, 0, len(product.Offers))
	for _, o := range product.Offers {
		st, ok := byID[o.StoreID]
		if !ok {
			continue
		}
		offers = append(offers, StoreOffer{Store: st, Price: o.Price})
	}
	sort.SliceStable(offers, func(i, j int) bool { return offers[i].Price.LessThan(offers[j].Price) })
	return Comparison{Product: product, Offers: offers}, nil
}

type StoreShelf struct {
	Store    domain.Store   `json:"supermarket"`
	Products []ShelfProduct `json:"products"`
}

type ShelfProduct struct {
	domain.Product
	Price decimal.Decimal `json:"preco"`
}

// Shelf lists the products a store has a price for.
func (s *CatalogService) Shelf(ctx context.Context, sid string, storeID int64, category string) (StoreShelf, error) {
	token, err := tokenFor(ctx, s.Sessions, sid)
	if err != nil {
		return StoreShelf{}, err
	}
	ctx, cancel := context.WithCancel(ctx)
	defer cancel()
	sOp := async.Go(ctx, func(ctx context.Context) (domain.Store, error) { return s.API.Store(ctx, token, storeID) })
	pOp := async.Go(ctx, func(ctx context.Context) ([]domain.Product, error) {
		return s.API.Products(ctx, token, remote.ProductQuery{Category: category})
	})

	store, err := sOp.Wait(ctx)
	if err != nil {
		return StoreShelf{}, err
	}
	if store.ID == 0 {
		return StoreShelf{}, errs.ErrNotFound
	}
	products, err := pOp.Wait(ctx)
	if err != nil {
		return StoreShelf{}, err
	}
	shelf := StoreShelf{Store: store, Products: []ShelfProduct{}}
	for _, p := range products {
		if price, ok := p.PriceAt(storeID); ok {
			shelf.Products = append(shelf.Products, ShelfProduct{Product: p, Price: price})
		}
	}
	return shelf, nil
}
