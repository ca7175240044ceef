package services

import (
	"context"
	"net/http"
	"strings"

	"github.com/google/uuid"
	"github.com/pkg/errors"

	"mercacomp/internal/domain"
	"mercacomp/internal/errs"
	"mercacomp/internal/remote"
	"mercacomp/internal/repos"
	"mercacomp/internal/validate"
)

var (
	ErrAddressNotFound = errs.New(http.StatusNotFound, "address_not_found", "Endereço não encontrado.")
	ErrInvalidCEP      = errs.Validation("CEP inválido. Informe 8 dígitos.")
)

// AddressService manages the delivery address book and its single selection.
type AddressService struct {
	Addresses *repos.AddressRepo
	Postal    PostalLookup
	NewID     func() (string, error)
}

func NewAddressService(addrs *repos.AddressRepo, postal PostalLookup) *AddressService {
	return &AddressService{Addresses: addrs, Postal: postal, NewID: newAddressID}
}

// newAddressID returns a time-ordered id.
func newAddressID() (string, error) {
	id, err := uuid.NewV7()
	if err != nil {
		return "", err
	}
	return id.String(), nil
}

func normalize(a domain.Address) (domain.Address, error) {
	a.Street = strings.TrimSpace(a.Street)
	a.Number = strings.TrimSpace(a.Number)
	a.Complement = strings.TrimSpace(a.Complement)
	a.Neighborhood = strings.TrimSpace(a.Neighborhood)
	a.City = strings.TrimSpace(a.City)
	a.State = strings.ToUpper(strings.TrimSpace(a.State))
	if strings.TrimSpace(a.Zipcode) != "" {
		cep, ok := validate.CEP(a.Zipcode)
		if !ok {
			return a, ErrInvalidCEP
		}
		a.Zipcode = cep
	}
	return a, validate.Struct(a)
}

func (s *AddressService) List(ctx context.Context, sid string) ([]domain.Address, error) {
	return s.Addresses.List(ctx, sid)
}

// Selected returns the selected address; ok is false when none is selected
// or the stored id no longer exists.
func (s *AddressService) Selected(ctx context.Context, sid string) (domain.Address, bool, error) {
	return selectedAddress(ctx, s.Addresses, sid)
}

func selectedAddress(ctx context.Context, addrs *repos.AddressRepo, sid string) (domain.Address, bool, error) {
	id, err := addrs.SelectedID(ctx, sid)
	if err != nil || id == "" {
		return domain.Address{}, false, err
	}
	list, err := addrs.List(ctx, sid)
	if err != nil {
		return domain.Address{}, false, err
	}
	for _, a := range list {
		if a.ID == id {
			return a, true, nil
		}
	}
	return domain.Address{}, false, nil
}

// Create appends a validated address; the first address becomes selected.
func (s *AddressService) Create(ctx context.Context, sid string, in domain.Address) (domain.Address, error) {
	a, err := normalize(in)
	if err != nil {
		return domain.Address{}, err
	}
	if a.ID, err = s.NewID(); err != nil {
		return domain.Address{}, errors.Wrap(err, "address id")
	}

	list, err := s.Addresses.List(ctx, sid)
	if err != nil {
		return domain.Address{}, err
	}
	list = append(list, a)
	if err := s.Addresses.SaveAll(ctx, sid, list); err != nil {
		return domain.Address{}, err
	}
	if len(list) == 1 {
		if err := s.Addresses.Select(ctx, sid, a.ID); err != nil {
			return domain.Address{}, err
		}
	}
	return a, nil
}

// Update replaces the address with the same id in place.
func (s *AddressService) Update(ctx context.Context, sid, id string, in domain.Address) (domain.Address, error) {
	a, err := normalize(in)
	if err != nil {
		return domain.Address{}, err
	}
	a.ID = id

	list, err := s.Addresses.List(ctx, sid)
	if err != nil {
		return domain.Address{}, err
	}
	for i := range list {
		if list[i].ID == id {
			list[i] = a
			return a, s.Addresses.SaveAll(ctx, sid, list)
		}
	}
	return domain.Address{}, ErrAddressNotFound
}

// Delete removes an address. Deleting the selected one moves the selection to
// the first remaining address, or clears it.
func (s *AddressService) Delete(ctx context.Context, sid, id string) error {
	list, err := s.Addresses.List(ctx, sid)
	if err != nil {
		return err
	}
	idx := -1
	for i := range list {
		if list[i].ID == id {
			idx = i
			break
		}
	}
	if idx < 0 {
		return ErrAddressNotFound
	}
	list = append(list[:idx], list[idx+1:]...)
	if err := s.Addresses.SaveAll(ctx, sid, list); err != nil {
		return err
	}

	selected, err := s.Addresses.SelectedID(ctx, sid)
	if err != nil {
		return err
	}
	if selected != id {
		return nil
	}
	next := ""
	if len(list) > 0 {
		next = list[0].ID
	}
	return s.Addresses.Select(ctx, sid, next)
}

func (s *AddressService) Select(ctx context.Context, sid, id string) error {
	list, err := s.Addresses.List(ctx, sid)
	if err != nil {
		return err
	}
	for _, a := range list {
		if a.ID == id {
			return s.Addresses.Select(ctx, sid, id)
		}
	}
	return ErrAddressNotFound
}

// LookupPostal pre-fills an address from a postal code. A failure only means
// the form must be filled by hand.
func (s *AddressService) LookupPostal(ctx context.Context, raw string) (domain.Address, error) {
	cep, ok := validate.CEP(raw)
	if !ok {
		return domain.Address{}, ErrInvalidCEP
	}
	if s.Postal == nil {
		return domain.Address{}, remote.ErrPostalNotFound
	}
	pa, err := s.Postal.Lookup(ctx, cep)
	if err != nil {
		return domain.Address{}, err
	}
	return domain.Address{
		Street:       pa.Street,
		Neighborhood: pa.Neighborhood,
		City:         pa.City,
		State:        pa.State,
		Zipcode:      cep,
	}, nil
}
