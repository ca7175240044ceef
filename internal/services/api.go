package services

import (
	"context"

	"mercacomp/internal/domain"
	"mercacomp/internal/remote"
	"mercacomp/internal/repos"
)

// API is the part of the commerce API the services use. *remote.Client implements it.
type API interface {
	Products(ctx context.Context, token string, q remote.ProductQuery) ([]domain.Product, error)
	Product(ctx context.Context, token string, id int64) (domain.Product, error)
	Stores(ctx context.Context, token string) ([]domain.Store, error)
	Store(ctx context.Context, token string, id int64) (domain.Store, error)

	Login(ctx context.Context, cred remote.Credentials) (remote.LoginResult, error)
	Register(ctx context.Context, r remote.Registration) error
	UpdateClient(ctx context.Context, token string, id int64, p remote.ProfileUpdate) (domain.User, error)

	Clients(ctx context.Context, token string) ([]domain.User, error)
	Orders(ctx context.Context, token string) ([]domain.Order, error)
	CreateOrder(ctx context.Context, token string, req remote.OrderRequest) (remote.OrderReceipt, error)
	Reviews(ctx context.Context, token string) ([]domain.Review, error)
}

// PostalLookup resolves a normalized postal code. *remote.PostalClient implements it.
type PostalLookup interface {
	Lookup(ctx context.Context, cep string) (remote.PostalAddress, error)
}

var (
	_ API          = (*remote.Client)(nil)
	_ PostalLookup = (*remote.PostalClient)(nil)
)

// tokenFor returns the session's API token, "" for anonymous sessions.
func tokenFor(ctx context.Context, sessions *repos.SessionRepo, sid string) (string, error) {
	if sessions == nil {
		return "", nil
	}
	return sessions.Token(ctx, sid)
}
