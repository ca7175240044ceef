// Package cart implements the cart rules: which stores may share a cart, how
// quantities change, and how subtotal, shipping and total are computed from the
// per-store price lists. It does no I/O; callers load and persist the lines.
package cart

import (
	"fmt"
	"net/http"

	"github.com/shopspring/decimal"

	"mercacomp/internal/domain"
	"mercacomp/internal/errs"
)

// Config holds the pricing and admission knobs.
type Config struct {
	BaseFee       decimal.Decimal
	InterStoreFee decimal.Decimal
	// MinDistinctStoresBeforeLock is the number of distinct stores a cart may
	// hold before a new store needs UnitsToUnlock units in every present store.
	MinDistinctStoresBeforeLock int
	UnitsToUnlock               int
}

func DefaultConfig() Config {
	return Config{
		BaseFee:                     decimal.RequireFromString("5.00"),
		InterStoreFee:               decimal.RequireFromString("2.00"),
		MinDistinctStoresBeforeLock: 1,
		UnitsToUnlock:               5,
	}
}

var (
	ErrPriceUnavailable = errs.New(http.StatusUnprocessableEntity, "price_unavailable", "Preço não encontrado para este supermercado.")
	ErrLineNotFound     = errs.New(http.StatusNotFound, "line_not_found", "Item não encontrado no carrinho.")
)

// AdmissionError reports the store that blocks a new store from entering the cart.
type AdmissionError struct {
	Store    domain.StoreRef
	Units    int
	Required int
}

func (e *AdmissionError) Error() string { return e.Message() }
func (e *AdmissionError) HTTPCode() int { return http.StatusConflict }
func (e *AdmissionError) ErrorCode() string {
	return "store_admission"
}
func (e *AdmissionError) Message() string {
	return fmt.Sprintf("Adição bloqueada. Você precisa ter pelo menos %d itens do supermercado \"%s\" antes de adicionar de uma nova loja.", e.Required, e.Store.Name)
}

// Cart is an ordered set of lines plus the rules that govern them.
type Cart struct {
	lines []domain.CartLine
	cfg   Config
}

// New copies lines so the caller's slice is never mutated.
func New(lines []domain.CartLine, cfg Config) *Cart {
	cp := make([]domain.CartLine, len(lines))
	copy(cp, lines)
	return &Cart{lines: cp, cfg: cfg}
}

// Lines returns a copy of the current lines.
func (c *Cart) Lines() []domain.CartLine {
	out := make([]domain.CartLine, len(c.lines))
	copy(out, c.lines)
	return out
}

func (c *Cart) IsEmpty() bool { return len(c.lines) == 0 }

// Count is the badge number: total units across lines.
func (c *Cart) Count() int {
	n := 0
	for _, l := range c.lines {
		n += l.Quantity
	}
	return n
}

// Stores lists distinct stores in order of first appearance.
func (c *Cart) Stores() []domain.StoreRef {
	seen := map[int64]bool{}
	var out []domain.StoreRef
	for _, l := range c.lines {
		if seen[l.Store.ID] {
			continue
		}
		seen[l.Store.ID] = true
		out = append(out, l.Store)
	}
	return out
}

// UnitsFor sums quantities of every line bought from storeID.
func (c *Cart) UnitsFor(storeID int64) int {
	n := 0
	for _, l := range c.lines {
		if l.Store.ID == storeID {
			n += l.Quantity
		}
	}
	return n
}

// CanAddStore returns nil when store may contribute lines, or an
// *AdmissionError naming the first present store below the unlock threshold.
func (c *Cart) CanAddStore(store domain.StoreRef) error {
	present := c.Stores()
	for _, s := range present {
		if s.ID == store.ID {
			return nil
		}
	}
	if len(present) < c.cfg.MinDistinctStoresBeforeLock {
		return nil
	}
	for _, s := range present {
		if units := c.UnitsFor(s.ID); units < c.cfg.UnitsToUnlock {
			return &AdmissionError{Store: s, Units: units, Required: c.cfg.UnitsToUnlock}
		}
	}
	return nil
}

// Add puts one unit of product from store into the cart. Nothing changes when
// the store is not admitted or the product has no price there.
func (c *Cart) Add(product domain.Product, store domain.StoreRef) error {
	if _, ok := product.PriceAt(store.ID); !ok {
		return ErrPriceUnavailable
	}
	if err := c.CanAddStore(store); err != nil {
		return err
	}
	for i := range c.lines {
		if c.lines[i].Matches(product.ID, store.ID) {
			c.lines[i].Quantity++
			return nil
		}
	}
	c.lines = append(c.lines, domain.CartLine{Product: product, Store: store, Quantity: 1})
	return nil
}

// ChangeQuantity adds delta to a line; a line reaching zero or below is removed.
// Admission is not re-checked.
func (c *Cart) ChangeQuantity(productID, storeID int64, delta int) error {
	for i := range c.lines {
		if !c.lines[i].Matches(productID, storeID) {
			continue
		}
		c.lines[i].Quantity += delta
		if c.lines[i].Quantity <= 0 {
			c.lines = append(c.lines[:i], c.lines[i+1:]...)
		}
		return nil
	}
	return ErrLineNotFound
}

// Remove drops a line. It reports whether a line was removed.
func (c *Cart) Remove(productID, storeID int64) bool {
	for i := range c.lines {
		if c.lines[i].Matches(productID, storeID) {
			c.lines = append(c.lines[:i], c.lines[i+1:]...)
			return true
		}
	}
	return false
}

// Priced resolves every line's unit price for its store.
func (c *Cart) Priced() ([]domain.PricedLine, error) {
	out := make([]domain.PricedLine, 0, len(c.lines))
	for _, l := range c.lines {
		price, ok := l.Product.PriceAt(l.Store.ID)
		if !ok {
			return nil, ErrPriceUnavailable
		}
		out = append(out, domain.PricedLine{
			CartLine:  l,
			UnitPrice: price,
			LineTotal: price.Mul(decimal.NewFromInt(int64(l.Quantity))),
		})
	}
	return out, nil
}

func (c *Cart) Subtotal() (decimal.Decimal, error) {
	priced, err := c.Priced()
	if err != nil {
		return decimal.Zero, err
	}
	sum := decimal.Zero
	for _, p := range priced {
		sum = sum.Add(p.LineTotal)
	}
	return sum, nil
}

// Shipping is BaseFee per store plus InterStoreFee per extra store.
func (c *Cart) Shipping() decimal.Decimal {
	return ShippingFor(len(c.Stores()), c.cfg)
}

func (c *Cart) Total() (decimal.Decimal, error) {
	sub, err := c.Subtotal()
	if err != nil {
		return decimal.Zero, err
	}
	return sub.Add(c.Shipping()), nil
}

// ShippingFor computes the fee for a number of distinct stores.
func ShippingFor(stores int, cfg Config) decimal.Decimal {
	if stores <= 0 {
		return decimal.Zero
	}
	fee := cfg.BaseFee.Mul(decimal.NewFromInt(int64(stores)))
	if stores > 1 {
		fee = fee.Add(cfg.InterStoreFee.Mul(decimal.NewFromInt(int64(stores - 1))))
	}
	return fee
}
