package auth

import (
	"context"
	"errors"

	"github.com/princinho/elearnbackend/apperr"
	"github.com/princinho/elearnbackend/database"
	"github.com/princinho/elearnbackend/models"
	"github.com/princinho/elearnbackend/session"
	"golang.org/x/sync/singleflight"
)

// SessionCache holds the user snapshot that keeps a session alive.
type SessionCache interface {
	Get(ctx context.Context, userID string) (models.User, error)
	Put(ctx context.Context, user models.User) error
	Replace(ctx context.Context, user models.User) (bool, error)
	Delete(ctx context.Context, userID string) error
}

// UserFinder is the credential store fallback used by the auth gate.
type UserFinder interface {
	FindByID(ctx context.Context, id string) (models.User, error)
}

const loginRequired = "Please login to access this resource"

// SessionManager ties the token issuer to the session cache.
type SessionManager struct {
	issuer *Issuer
	cache  SessionCache
	users  UserFinder
	group  singleflight.Group
}

func NewSessionManager(issuer *Issuer, cache SessionCache, users UserFinder) *SessionManager {
	return &SessionManager{issuer: issuer, cache: cache, users: users}
}

// Establish starts a session for user: a fresh token pair plus a snapshot.
func (m *SessionManager) Establish(ctx context.Context, user models.User) (TokenPair, error) {
	pair, err := m.issuer.IssuePair(user.ID.Hex())
	if err != nil {
		return TokenPair{}, apperr.Wrap(apperr.Internal, "could not issue tokens", err)
	}
	if err := m.cache.Put(ctx, user); err != nil {
		return TokenPair{}, apperr.Upstream("Session cache unavailable", err)
	}
	return pair, nil
}

// Sync rewrites the snapshot after the stored user changed. A user without
// a live session stays logged out.
func (m *SessionManager) Sync(ctx context.Context, user models.User) error {
	if _, err := m.cache.Replace(ctx, user); err != nil {
		return apperr.Upstream("Session cache unavailable", err)
	}
	return nil
}

// Revoke deletes the snapshot. Outstanding refresh tokens stop working.
func (m *SessionManager) Revoke(ctx context.Context, userID string) error {
	if err := m.cache.Delete(ctx, userID); err != nil {
		return apperr.Upstream("Session cache unavailable", err)
	}
	return nil
}

type refreshResult struct {
	user models.User
	pair TokenPair
}

// Refresh consumes a refresh token and returns the reloaded user with a new
// token pair. The snapshot TTL is re-armed. The presented refresh token is
// not revoked and stays valid until its own expiry. Concurrent refreshes of
// the same user are coalesced into one, which outlives any single caller's
// cancellation. A session revoked mid-refresh stays revoked.
func (m *SessionManager) Refresh(ctx context.Context, refreshToken string) (Identity, TokenPair, error) {
	if refreshToken == "" {
		return Identity{}, TokenPair{}, apperr.New(apperr.MissingCredential, "Refresh token is missing")
	}
	userID, err := m.issuer.ParseRefresh(refreshToken)
	if err != nil {
		return Identity{}, TokenPair{}, apperr.Wrap(apperr.InvalidCredential, "Could not refresh token", err)
	}

	shared := context.WithoutCancel(ctx)
	v, err, _ := m.group.Do(userID, func() (any, error) {
		user, err := m.cache.Get(shared, userID)
		if err != nil {
			if errors.Is(err, session.ErrNotFound) || errors.Is(err, session.ErrCorrupt) {
				return nil, apperr.Wrap(apperr.SessionExpired, loginRequired, err)
			}
			return nil, apperr.Upstream("Session cache unavailable", err)
		}
		pair, err := m.issuer.IssuePair(userID)
		if err != nil {
			return nil, apperr.Wrap(apperr.Internal, "could not issue tokens", err)
		}
		live, err := m.cache.Replace(shared, user)
		if err != nil {
			return nil, apperr.Upstream("Session cache unavailable", err)
		}
		if !live {
			return nil, apperr.New(apperr.SessionExpired, loginRequired)
		}
		return refreshResult{user: user, pair: pair}, nil
	})
	if err != nil {
		return Identity{}, TokenPair{}, err
	}

	res := v.(refreshResult)
	return Identity{User: res.user, AccessToken: res.pair.AccessToken}, res.pair, nil
}

// Resolve authenticates an access token. The user comes from the session
// cache, or from the credential store when the snapshot is gone. Every token
// failure reads the same to the caller.
func (m *SessionManager) Resolve(ctx context.Context, accessToken string) (Identity, error) {
	if accessToken == "" {
		return Identity{}, apperr.New(apperr.Unauthenticated, loginRequired)
	}
	userID, err := m.issuer.ParseAccess(accessToken)
	if err != nil {
		return Identity{}, apperr.Wrap(apperr.Unauthenticated, "Access token is not valid", err)
	}

	user, err := m.cache.Get(ctx, userID)
	switch {
	case err == nil:
		return Identity{User: user, AccessToken: accessToken}, nil
	case errors.Is(err, session.ErrNotFound), errors.Is(err, session.ErrCorrupt):
	default:
		return Identity{}, apperr.Upstream("Session cache unavailable", err)
	}

	user, err = m.users.FindByID(ctx, userID)
	if err != nil {
		if errors.Is(err, database.ErrNotFound) {
			return Identity{}, apperr.Wrap(apperr.Unauthenticated, loginRequired, err)
		}
		return Identity{}, apperr.Upstream("Credential store unavailable", err)
	}
	return Identity{User: user, AccessToken: accessToken}, nil
}
