package services

import (
	"context"
	"strings"

	"mercacomp/internal/domain"
	"mercacomp/internal/errs"
	"mercacomp/internal/remote"
	"mercacomp/internal/repos"
	"mercacomp/internal/validate"
)

var ErrBadCreds = errs.Validation("Preencha e-mail e senha.")

// AuthService binds a commerce API login to the browser session.
type AuthService struct {
	Sessions  *repos.SessionRepo
	Carts     *repos.CartRepo
	Addresses *repos.AddressRepo
	API       API
}

func NewAuthService(sessions *repos.SessionRepo, carts *repos.CartRepo, addrs *repos.AddressRepo, api API) *AuthService {
	return &AuthService{Sessions: sessions, Carts: carts, Addresses: addrs, API: api}
}

func (s *AuthService) Login(ctx context.Context, sid, email, password string) (domain.User, error) {
	email, okEmail := validate.Email(email)
	if !okEmail || password == "" {
		return domain.User{}, ErrBadCreds
	}
	res, err := s.API.Login(ctx, remote.Credentials{Email: email, Password: password})
	if err != nil {
		return domain.User{}, err
	}
	if res.Token == "" {
		return domain.User{}, errs.ErrUpstream
	}
	u := res.User
	if u.Email == "" {
		u.Email = email
	}
	if err := s.Sessions.SignIn(ctx, sid, res.Token, u); err != nil {
		return domain.User{}, err
	}
	return u, nil
}

func (s *AuthService) Register(ctx context.Context, r remote.Registration) error {
	r.Name = strings.TrimSpace(r.Name)
	r.Email = strings.TrimSpace(r.Email)
	r.CPF, _ = validate.CPF(r.CPF)
	r.Phone, _ = validate.Phone(r.Phone)
	if err := validate.Struct(r); err != nil {
		return err
	}
	return s.API.Register(ctx, r)
}

// Logout forgets the credentials together with the addresses and cart of the session.
func (s *AuthService) Logout(ctx context.Context, sid string) error {
	if err := s.Sessions.Purge(ctx, sid); err != nil {
		return err
	}
	if err := s.Addresses.Clear(ctx, sid); err != nil {
		return err
	}
	return s.Carts.Clear(ctx, sid)
}

// HandleUnauthorized is called whenever the commerce API rejected the
// session's token.
func (s *AuthService) HandleUnauthorized(ctx context.Context, sid string) error {
	return s.Sessions.Purge(ctx, sid)
}

func (s *AuthService) CurrentUser(ctx context.Context, sid string) (domain.User, bool, error) {
	return s.Sessions.User(ctx, sid)
}

func (s *AuthService) UpdateProfile(ctx context.Context, sid string, p remote.ProfileUpdate) (domain.User, error) {
	cur, ok, err := s.Sessions.User(ctx, sid)
	if err != nil {
		return domain.User{}, err
	}
	token, err := s.Sessions.Token(ctx, sid)
	if err != nil {
		return domain.User{}, err
	}
	if !ok || token == "" {
		return domain.User{}, errs.ErrUnauthorized
	}
	p.Name = strings.TrimSpace(p.Name)
	p.Email = strings.TrimSpace(p.Email)
	if p.Phone != "" {
		p.Phone, _ = validate.Phone(p.Phone)
	}
	if err := validate.Struct(p); err != nil {
		return domain.User{}, err
	}

	got, err := s.API.UpdateClient(ctx, token, cur.ID, p)
	if err != nil {
		return domain.User{}, err
	}
	cur.Name, cur.Email = p.Name, p.Email
	if p.Phone != "" {
		cur.Phone = p.Phone
	}
	if got.Name != "" {
		cur.Name = got.Name
	}
	if err := s.Sessions.SaveUser(ctx, sid, cur); err != nil {
		return domain.User{}, err
	}
	return cur, nil
}
