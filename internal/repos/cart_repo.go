package repos

import (
	"context"

	"mercacomp/internal/domain"
)

const (
	keyCart = "cart"

	// Older pages wrote the cart and checkout under these names.
	keyLegacyCart            = "shoppingCart"
	keyLegacyCheckoutCart    = "checkoutCart"
	keyLegacyCheckoutAddress = "checkoutAddress"
)

type CartRepo struct{ kv Store }

func NewCartRepo(kv Store) *CartRepo { return &CartRepo{kv: kv} }

// Load returns the persisted lines; a missing key is an empty cart.
func (r *CartRepo) Load(ctx context.Context, sessionID string) ([]domain.CartLine, error) {
	var lines []domain.CartLine
	if _, err := getJSON(ctx, r.kv, SessionKey(sessionID, keyCart), &lines); err != nil {
		return nil, err
	}
	return lines, nil
}

func (r *CartRepo) Save(ctx context.Context, sessionID string, lines []domain.CartLine) error {
	if lines == nil {
		lines = []domain.CartLine{}
	}
	return setJSON(ctx, r.kv, SessionKey(sessionID, keyCart), lines)
}

// Clear drops the live cart and the legacy cart key.
func (r *CartRepo) Clear(ctx context.Context, sessionID string) error {
	return r.kv.Delete(ctx, SessionKey(sessionID, keyCart), SessionKey(sessionID, keyLegacyCart))
}

// Watch calls fn with the session id every time a cart is written or cleared.
func (r *CartRepo) Watch(fn func(sessionID string, ev Event)) (cancel func()) {
	return r.kv.Subscribe(SessionPrefix(""), func(ev Event) {
		if !isKey(ev.Key, keyCart) {
			return
		}
		fn(SessionOf(ev.Key), ev)
	})
}

func isKey(full, name string) bool {
	sid := SessionOf(full)
	return sid != "" && full == SessionKey(sid, name)
}
