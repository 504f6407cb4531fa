package parentauth

import (
	"context"
	"errors"

	"github.com/tinytalkers/parentauth/session"
)

// SessionInfo pairs a live session with its bound account for convenience
// lookups.
type SessionInfo struct {
	Session *session.Session
	Account *Account
}

// GetSession resolves an access token and its bound account. Unknown,
// revoked, or lazily-expired tokens return [ErrSessionNotFound].
func (e *Engine) GetSession(ctx context.Context, accessToken string) (*SessionInfo, error) {
	s, err := e.sessions.Lookup(ctx, accessToken)
	if err != nil {
		return nil, err
	}
	return e.withAccount(ctx, s)
}

// RefreshSession rotates the token pair holding refreshToken. The previous
// access token is invalid the moment this returns.
func (e *Engine) RefreshSession(ctx context.Context, refreshToken string) (*SessionInfo, error) {
	s, err := e.sessions.Rotate(ctx, refreshToken)
	if err != nil {
		if errors.Is(err, session.ErrNotFound) {
			e.emit(ctx, EventSessionRefresh, "", false, err, nil)
		}
		return nil, err
	}
	e.emit(ctx, EventSessionRefresh, s.AccountID, true, nil, nil)
	return e.withAccount(ctx, s)
}

// SignOut revokes the session for accessToken. Idempotent.
func (e *Engine) SignOut(ctx context.Context, accessToken string) error {
	if err := e.sessions.Revoke(ctx, accessToken); err != nil {
		return err
	}
	e.emit(ctx, EventSignOut, "", true, nil, nil)
	return nil
}

func (e *Engine) withAccount(ctx context.Context, s *session.Session) (*SessionInfo, error) {
	account, err := e.loadAccount(ctx, s.AccountID)
	if err != nil && !errors.Is(err, ErrAccountNotFound) {
		return nil, err
	}
	return &SessionInfo{Session: s, Account: account}, nil
}
