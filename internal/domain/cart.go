package domain

import (
	"time"

	"github.com/shopspring/decimal"
)

// CartLine is a product snapshot bought from one store. Lines are unique per
// (product id, store id) and quantity never drops below 1 while stored.
type CartLine struct {
	Product  Product  `json:"product"`
	Store    StoreRef `json:"supermarket"`
	Quantity int      `json:"quantity"`
}

func (l CartLine) Matches(productID, storeID int64) bool {
	return l.Product.ID == productID && l.Store.ID == storeID
}

// PricedLine is a cart line with its unit price resolved for its store.
type PricedLine struct {
	CartLine
	UnitPrice decimal.Decimal `json:"unitPrice"`
	LineTotal decimal.Decimal `json:"lineTotal"`
}

// CheckoutSnapshot is the frozen cart + address handed to the payment step.
type CheckoutSnapshot struct {
	Lines      []PricedLine    `json:"lines"`
	Address    Address         `json:"address"`
	Stores     []int64         `json:"stores"`
	Subtotal   decimal.Decimal `json:"subtotal"`
	Shipping   decimal.Decimal `json:"shipping"`
	Total      decimal.Decimal `json:"total"`
	CapturedAt time.Time       `json:"capturedAt"`
}
