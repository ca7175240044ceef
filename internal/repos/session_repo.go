package repos

import (
	"context"

	"mercacomp/internal/domain"
)

const (
	keyAuthToken = "authToken"
	keyUser      = "user"
	keyUserName  = "userName"
	keyUserEmail = "userEmail"
)

// SessionRepo holds the remote API token and the client profile of a session.
type SessionRepo struct{ kv Store }

func NewSessionRepo(kv Store) *SessionRepo { return &SessionRepo{kv: kv} }

func (r *SessionRepo) Token(ctx context.Context, sessionID string) (string, error) {
	v, _, err := r.kv.Get(ctx, SessionKey(sessionID, keyAuthToken))
	return v, err
}

func (r *SessionRepo) User(ctx context.Context, sessionID string) (domain.User, bool, error) {
	var u domain.User
	ok, err := getJSON(ctx, r.kv, SessionKey(sessionID, keyUser), &u)
	return u, ok, err
}

func (r *SessionRepo) SignIn(ctx context.Context, sessionID, token string, u domain.User) error {
	if err := r.kv.Set(ctx, SessionKey(sessionID, keyAuthToken), token); err != nil {
		return err
	}
	return r.SaveUser(ctx, sessionID, u)
}

func (r *SessionRepo) SaveUser(ctx context.Context, sessionID string, u domain.User) error {
	return setJSON(ctx, r.kv, SessionKey(sessionID, keyUser), u)
}

// Purge forgets the credentials and profile, leaving cart and addresses alone.
func (r *SessionRepo) Purge(ctx context.Context, sessionID string) error {
	return r.kv.Delete(ctx,
		SessionKey(sessionID, keyAuthToken),
		SessionKey(sessionID, keyUser),
		SessionKey(sessionID, keyUserName),
		SessionKey(sessionID, keyUserEmail),
	)
}
