package services

import (
	"context"
	"fmt"

	"github.com/pkg/errors"
	"github.com/shopspring/decimal"

	"mercacomp/internal/async"
	"mercacomp/internal/cart"
	"mercacomp/internal/domain"
	"mercacomp/internal/repos"
)

// CartService is the cart store: every call reloads the persisted lines, runs
// the rule engine and writes the result back.
type CartService struct {
	Carts    *repos.CartRepo
	Sessions *repos.SessionRepo
	API      API
	Cfg      cart.Config
}

func NewCartService(carts *repos.CartRepo, sessions *repos.SessionRepo, api API, cfg cart.Config) *CartService {
	return &CartService{Carts: carts, Sessions: sessions, API: api, Cfg: cfg}
}

type CartView struct {
	Lines    []domain.PricedLine `json:"lines"`
	Stores   []domain.StoreRef   `json:"stores"`
	Count    int                 `json:"count"`
	Subtotal decimal.Decimal     `json:"subtotal"`
	Shipping decimal.Decimal     `json:"shipping"`
	Total    decimal.Decimal     `json:"total"`
	Feedback string              `json:"feedback,omitempty"`
}

func (s *CartService) load(ctx context.Context, sid string) (*cart.Cart, error) {
	lines, err := s.Carts.Load(ctx, sid)
	if err != nil {
		return nil, err
	}
	return cart.New(lines, s.Cfg), nil
}

func (s *CartService) save(ctx context.Context, sid string, c *cart.Cart) error {
	return s.Carts.Save(ctx, sid, c.Lines())
}

func view(c *cart.Cart) (CartView, error) {
	priced, err := c.Priced()
	if err != nil {
		return CartView{}, err
	}
	sub := decimal.Zero
	for _, p := range priced {
		sub = sub.Add(p.LineTotal)
	}
	ship := c.Shipping()
	return CartView{
		Lines:    priced,
		Stores:   c.Stores(),
		Count:    c.Count(),
		Subtotal: sub,
		Shipping: ship,
		Total:    sub.Add(ship),
	}, nil
}

func (s *CartService) View(ctx context.Context, sid string) (CartView, error) {
	c, err := s.load(ctx, sid)
	if err != nil {
		return CartView{}, err
	}
	return view(c)
}

// Count is the badge number; it does not need prices.
func (s *CartService) Count(ctx context.Context, sid string) (int, error) {
	c, err := s.load(ctx, sid)
	if err != nil {
		return 0, err
	}
	return c.Count(), nil
}

// Add fetches the product and store from the commerce API and adds one unit.
func (s *CartService) Add(ctx context.Context, sid string, productID, storeID int64) (CartView, error) {
	token, err := tokenFor(ctx, s.Sessions, sid)
	if err != nil {
		return CartView{}, err
	}
	// the sibling call stops as soon as one of them fails
	ctx, cancel := context.WithCancel(ctx)
	defer cancel()
	pOp := async.Go(ctx, func(ctx context.Context) (domain.Product, error) { return s.API.Product(ctx, token, productID) })
	sOp := async.Go(ctx, func(ctx context.Context) (domain.Store, error) { return s.API.Store(ctx, token, storeID) })

	product, err := pOp.Wait(ctx)
	if err != nil {
		return CartView{}, errors.Wrapf(err, "load product %d", productID)
	}
	store, err := sOp.Wait(ctx)
	if err != nil {
		return CartView{}, errors.Wrapf(err, "load store %d", storeID)
	}
	return s.AddResolved(ctx, sid, product, store.Ref())
}

// AddResolved adds one unit of an already loaded product.
func (s *CartService) AddResolved(ctx context.Context, sid string, product domain.Product, store domain.StoreRef) (CartView, error) {
	c, err := s.load(ctx, sid)
	if err != nil {
		return CartView{}, err
	}
	if err := c.Add(product, store); err != nil {
		return CartView{}, err
	}
	if err := s.save(ctx, sid, c); err != nil {
		return CartView{}, err
	}
	v, err := view(c)
	if err != nil {
		return CartView{}, err
	}
	v.Feedback = fmt.Sprintf("\"%s\" adicionado ao carrinho!", product.Name)
	return v, nil
}

func (s *CartService) ChangeQuantity(ctx context.Context, sid string, productID, storeID int64, delta int) (CartView, error) {
	c, err := s.load(ctx, sid)
	if err != nil {
		return CartView{}, err
	}
	if err := c.ChangeQuantity(productID, storeID, delta); err != nil {
		return CartView{}, err
	}
	if err := s.save(ctx, sid, c); err != nil {
		return CartView{}, err
	}
	return view(c)
}

// Remove drops a line; removing an absent line still succeeds.
func (s *CartService) Remove(ctx context.Context, sid string, productID, storeID int64) (CartView, error) {
	c, err := s.load(ctx, sid)
	if err != nil {
		return CartView{}, err
	}
	if c.Remove(productID, storeID) {
		if err := s.save(ctx, sid, c); err != nil {
			return CartView{}, err
		}
	}
	return view(c)
}

func (s *CartService) Clear(ctx context.Context, sid string) error {
	return s.Carts.Clear(ctx, sid)
}
