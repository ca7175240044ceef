package repos

import (
	"context"

	"mercacomp/internal/domain"
)

const (
	keyAddresses       = "userAddresses"
	keySelectedAddress = "selectedAddressId"
)

type AddressRepo struct{ kv Store }

func NewAddressRepo(kv Store) *AddressRepo { return &AddressRepo{kv: kv} }

func (r *AddressRepo) List(ctx context.Context, sessionID string) ([]domain.Address, error) {
	var out []domain.Address
	if _, err := getJSON(ctx, r.kv, SessionKey(sessionID, keyAddresses), &out); err != nil {
		return nil, err
	}
	return out, nil
}

func (r *AddressRepo) SaveAll(ctx context.Context, sessionID string, list []domain.Address) error {
	if list == nil {
		list = []domain.Address{}
	}
	return setJSON(ctx, r.kv, SessionKey(sessionID, keyAddresses), list)
}

// SelectedID returns "" when nothing is selected.
func (r *AddressRepo) SelectedID(ctx context.Context, sessionID string) (string, error) {
	v, _, err := r.kv.Get(ctx, SessionKey(sessionID, keySelectedAddress))
	return v, err
}

// Select stores id as the selection; an empty id clears it.
func (r *AddressRepo) Select(ctx context.Context, sessionID, id string) error {
	key := SessionKey(sessionID, keySelectedAddress)
	if id == "" {
		return r.kv.Delete(ctx, key)
	}
	return r.kv.Set(ctx, key, id)
}

func (r *AddressRepo) Clear(ctx context.Context, sessionID string) error {
	return r.kv.Delete(ctx, SessionKey(sessionID, keyAddresses), SessionKey(sessionID, keySelectedAddress))
}
