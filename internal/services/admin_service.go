package services

import (
	"context"

	"mercacomp/internal/domain"
	"mercacomp/internal/errs"
	"mercacomp/internal/repos"
)

// AdminService backs the admin tables. Every call needs an ADMIN profile.
type AdminService struct {
	Sessions *repos.SessionRepo
	API      API
}

func NewAdminService(sessions *repos.SessionRepo, api API) *AdminService {
	return &AdminService{Sessions: sessions, API: api}
}

func (s *AdminService) token(ctx context.Context, sid string) (string, error) {
	u, ok, err := s.Sessions.User(ctx, sid)
	if err != nil {
		return "", err
	}
	if !ok {
		return "", errs.ErrUnauthorized
	}
	if !u.IsAdmin() {
		return "", errs.ErrForbidden
	}
	token, err := s.Sessions.Token(ctx, sid)
	if err != nil {
		return "", err
	}
	if token == "" {
		return "", errs.ErrUnauthorized
	}
	return token, nil
}

func (s *AdminService) Clients(ctx context.Context, sid string) ([]domain.User, error) {
	token, err := s.token(ctx, sid)
	if err != nil {
		return nil, err
	}
	return s.API.Clients(ctx, token)
}

func (s *AdminService) Orders(ctx context.Context, sid string) ([]domain.Order, error) {
	token, err := s.token(ctx, sid)
	if err != nil {
		return nil, err
	}
	return s.API.Orders(ctx, token)
}

func (s *AdminService) Reviews(ctx context.Context, sid string) ([]domain.Review, error) {
	token, err := s.token(ctx, sid)
	if err != nil {
		return nil, err
	}
	return s.API.Reviews(ctx, token)
}

func (s *AdminService) Companies(ctx context.Context, sid string) ([]domain.Store, error) {
	token, err := s.token(ctx, sid)
	if err != nil {
		return nil, err
	}
	return s.API.Stores(ctx, token)
}
