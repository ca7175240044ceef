package services

import (
	"context"
	"net/http"
	"time"

	"mercacomp/internal/async"
	"mercacomp/internal/cart"
	"mercacomp/internal/domain"
	"mercacomp/internal/errs"
	applog "mercacomp/internal/log"
	"mercacomp/internal/remote"
	"mercacomp/internal/repos"
	"mercacomp/internal/validate"
)

var (
	ErrCartEmpty         = errs.New(http.StatusBadRequest, "cart_empty", "Seu carrinho está vazio.")
	ErrNoAddressSelected = errs.New(http.StatusBadRequest, "no_address", "Selecione um endereço de entrega antes de continuar.")
	ErrNoCheckout        = errs.New(http.StatusConflict, "no_checkout", "Nenhum pedido em andamento. Volte ao carrinho.")
	ErrSubmitInFlight    = errs.New(http.StatusConflict, "submit_in_flight", "Seu pedido já está sendo processado.")
	ErrPaymentMethod     = errs.Validation("Selecione uma forma de pagamento.")
	ErrCardData          = errs.Validation("Preencha os dados do cartão de crédito corretamente.")
)

// RedirectDelay is how long the confirmation stays on screen before going home.
const RedirectDelay = 2 * time.Second

type CheckoutService struct {
	Carts     *repos.CartRepo
	Addresses *repos.AddressRepo
	Checkouts *repos.CheckoutRepo
	Sessions  *repos.SessionRepo
	API       API
	Cfg       cart.Config
	Guard     *async.Guard
	Now       func() time.Time
}

func NewCheckoutService(carts *repos.CartRepo, addrs *repos.AddressRepo, checkouts *repos.CheckoutRepo,
	sessions *repos.SessionRepo, api API, cfg cart.Config) *CheckoutService {
	return &CheckoutService{
		Carts: carts, Addresses: addrs, Checkouts: checkouts, Sessions: sessions,
		API: api, Cfg: cfg, Guard: async.NewGuard(), Now: time.Now,
	}
}

// Begin freezes the current cart and selected address. Later cart edits do
// not change the snapshot.
func (s *CheckoutService) Begin(ctx context.Context, sid string) (domain.CheckoutSnapshot, error) {
	lines, err := s.Carts.Load(ctx, sid)
	if err != nil {
		return domain.CheckoutSnapshot{}, err
	}
	if len(lines) == 0 {
		return domain.CheckoutSnapshot{}, ErrCartEmpty
	}
	addr, ok, err := selectedAddress(ctx, s.Addresses, sid)
	if err != nil {
		return domain.CheckoutSnapshot{}, err
	}
	if !ok {
		return domain.CheckoutSnapshot{}, ErrNoAddressSelected
	}

	c := cart.New(lines, s.Cfg)
	priced, err := c.Priced()
	if err != nil {
		return domain.CheckoutSnapshot{}, err
	}
	sub, err := c.Subtotal()
	if err != nil {
		return domain.CheckoutSnapshot{}, err
	}
	stores := make([]int64, 0, len(c.Stores()))
	for _, st := range c.Stores() {
		stores = append(stores, st.ID)
	}
	snap := domain.CheckoutSnapshot{
		Lines:      priced,
		Address:    addr,
		Stores:     stores,
		Subtotal:   sub,
		Shipping:   c.Shipping(),
		Total:      sub.Add(c.Shipping()),
		CapturedAt: s.Now().UTC(),
	}
	if err := s.Checkouts.Save(ctx, sid, snap); err != nil {
		return domain.CheckoutSnapshot{}, err
	}
	return snap, nil
}

func (s *CheckoutService) Snapshot(ctx context.Context, sid string) (domain.CheckoutSnapshot, error) {
	snap, ok, err := s.Checkouts.Load(ctx, sid)
	if err != nil {
		return domain.CheckoutSnapshot{}, err
	}
	if !ok || len(snap.Lines) == 0 {
		return domain.CheckoutSnapshot{}, ErrNoCheckout
	}
	return snap, nil
}

type Payment struct {
	Method     string `json:"method"`
	CardNumber string `json:"cardNumber,omitempty"`
	CardHolder string `json:"cardName,omitempty"`
	CardExpiry string `json:"cardExpiry,omitempty"`
	CardCVV    string `json:"cardCvv,omitempty"`
}

func (p Payment) check() (string, error) {
	method, ok := validate.PaymentMethod(p.Method)
	if !ok {
		return "", ErrPaymentMethod
	}
	if method != validate.PaymentCreditCard {
		return method, nil
	}
	_, okNum := validate.CardNumber(p.CardNumber)
	_, okExp := validate.CardExpiry(p.CardExpiry)
	_, okCVV := validate.CVV(p.CardCVV)
	_, okName := validate.Name(p.CardHolder)
	if !okNum || !okExp || !okCVV || !okName {
		return "", ErrCardData
	}
	return method, nil
}

type Receipt struct {
	OrderID    int64         `json:"orderId,omitempty"`
	Message    string        `json:"message"`
	Redirect   string        `json:"redirect"`
	RedirectIn time.Duration `json:"-"`
}

// Submit sends the snapshot as an order. Only one submission per session runs
// at a time; on failure nothing is cleared so the shopper can retry.
func (s *CheckoutService) Submit(ctx context.Context, sid string, p Payment) (Receipt, error) {
	if !s.Guard.TryAcquire(sid) {
		return Receipt{}, ErrSubmitInFlight
	}
	defer s.Guard.Release(sid)

	method, err := p.check()
	if err != nil {
		return Receipt{}, err
	}
	snap, err := s.Snapshot(ctx, sid)
	if err != nil {
		return Receipt{}, err
	}
	token, err := tokenFor(ctx, s.Sessions, sid)
	if err != nil {
		return Receipt{}, err
	}
	if token == "" {
		return Receipt{}, errs.ErrUnauthorized
	}

	req := remote.OrderRequest{
		Total:         snap.Total,
		Address:       snap.Address,
		PaymentMethod: method,
		Stores:        snap.Stores,
	}
	for _, l := range snap.Lines {
		req.Items = append(req.Items, remote.OrderItem{
			ProductID: l.Product.ID,
			StoreID:   l.Store.ID,
			Quantity:  l.Quantity,
			UnitPrice: l.UnitPrice,
		})
	}

	rc, err := s.API.CreateOrder(ctx, token, req)
	if err != nil {
		return Receipt{}, err
	}

	// The order is placed; cleanup failures are logged, not returned.
	if err := s.Checkouts.Clear(ctx, sid); err != nil {
		applog.Event("order.cleanup.fail", sid, map[string]any{"order_id": rc.ID, "key": "checkout", "err": err.Error()})
	}
	if err := s.Carts.Clear(ctx, sid); err != nil {
		applog.Event("order.cleanup.fail", sid, map[string]any{"order_id": rc.ID, "key": "cart", "err": err.Error()})
	}
	return Receipt{
		OrderID:    rc.ID,
		Message:    "Pedido confirmado com sucesso! Redirecionando para a Home.",
		Redirect:   "/",
		RedirectIn: RedirectDelay,
	}, nil
}

// Orders lists the signed-in client's orders.
func (s *CheckoutService) Orders(ctx context.Context, sid string) ([]domain.Order, error) {
	token, err := tokenFor(ctx, s.Sessions, sid)
	if err != nil {
		return nil, err
	}
	if token == "" {
		return nil, errs.ErrUnauthorized
	}
	return s.API.Orders(ctx, token)
}
