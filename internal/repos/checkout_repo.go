package repos

import (
	"context"

	"mercacomp/internal/domain"
)

const keyCheckout = "checkout"

type CheckoutRepo struct{ kv Store }

func NewCheckoutRepo(kv Store) *CheckoutRepo { return &CheckoutRepo{kv: kv} }

func (r *CheckoutRepo) Save(ctx context.Context, sessionID string, snap domain.CheckoutSnapshot) error {
	return setJSON(ctx, r.kv, SessionKey(sessionID, keyCheckout), snap)
}

func (r *CheckoutRepo) Load(ctx context.Context, sessionID string) (domain.CheckoutSnapshot, bool, error) {
	var snap domain.CheckoutSnapshot
	ok, err := getJSON(ctx, r.kv, SessionKey(sessionID, keyCheckout), &snap)
	return snap, ok, err
}

// Clear removes the snapshot plus the legacy checkout keys.
func (r *CheckoutRepo) Clear(ctx context.Context, sessionID string) error {
	return r.kv.Delete(ctx,
		SessionKey(sessionID, keyCheckout),
		SessionKey(sessionID, keyLegacyCheckoutCart),
		SessionKey(sessionID, keyLegacyCheckoutAddress),
	)
}
