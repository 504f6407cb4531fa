package session

import (
	"context"
	"errors"
	"strings"
	"time"

	"github.com/tinytalkers/parentauth/internal"
	"github.com/tinytalkers/parentauth/store"
)

// ErrNotFound is returned for unknown, revoked, or lazily-expired tokens.
// Callers treat it as "not authenticated", never as a fault.
var ErrNotFound = errors.New("session not found")

// indexPrefix marks refresh-token index entries inside the sessions
// namespace. Index keys never collide with access-token row keys.
const indexPrefix = "ri:"

// Config holds session policy. Zero TTL takes the 7-day default.
type Config struct {
	TTL time.Duration
}

// Engine issues, resolves, rotates, and revokes sessions. It is the only
// writer of the sessions namespace.
type Engine struct {
	store store.Store
	ttl   time.Duration
	now   func() time.Time
}

// NewEngine returns a session engine writing through st.
func NewEngine(st store.Store, cfg Config) *Engine {
	if cfg.TTL <= 0 {
		cfg.TTL = 7 * 24 * time.Hour
	}
	return &Engine{
		store: st,
		ttl:   cfg.TTL,
		now:   time.Now,
	}
}

// Issue creates a fresh session bound to accountID and fingerprint. The
// row and its refresh index entry are two single-key writes; a crash
// between them leaves an orphan the sweeper reclaims.
func (e *Engine) Issue(ctx context.Context, accountID, fingerprint string) (*Session, error) {
	access, err := internal.NewToken("at")
	if err != nil {
		return nil, err
	}
	refresh, err := internal.NewToken("rt")
	if err != nil {
		return nil, err
	}

	now := e.now()
	s := &Session{
		AccessToken:  access,
		RefreshToken: refresh,
		AccountID:    accountID,
		Fingerprint:  fingerprint,
		CreatedAt:    now.UnixMilli(),
		ExpiresAt:    now.Add(e.ttl).UnixMilli(),
	}

	data, err := encodeSession(s)
	if err != nil {
		return nil, err
	}
	if err := e.store.Set(ctx, store.Sessions, s.AccessToken, data); err != nil {
		return nil, err
	}
	if err := e.store.Set(ctx, store.Sessions, indexPrefix+s.RefreshToken, []byte(s.AccessToken)); err != nil {
		return nil, err
	}

	return s, nil
}

// Lookup resolves an access token. An expired row is deleted on the spot
// and reported as [ErrNotFound].
func (e *Engine) Lookup(ctx context.Context, accessToken string) (*Session, error) {
	s, err := e.loadRow(ctx, accessToken)
	if err != nil {
		return nil, err
	}
	if e.now().UnixMilli() > s.ExpiresAt {
		if err := e.deleteRow(ctx, s); err != nil {
			return nil, err
		}
		return nil, ErrNotFound
	}
	return s, nil
}

// Rotate retires the session holding refreshToken and issues a brand-new
// pair bound to the same account and fingerprint. No grace period: the old
// access token is invalid immediately.
func (e *Engine) Rotate(ctx context.Context, refreshToken string) (*Session, error) {
	accessBytes, err := e.store.Get(ctx, store.Sessions, indexPrefix+refreshToken)
	if err != nil {
		if errors.Is(err, store.ErrNotFound) {
			return nil, ErrNotFound
		}
		return nil, err
	}

	old, err := e.loadRow(ctx, string(accessBytes))
	if err != nil {
		if errors.Is(err, ErrNotFound) {
			// Dangling index entry; drop it.
			if derr := e.store.Delete(ctx, store.Sessions, indexPrefix+refreshToken); derr != nil {
				return nil, derr
			}
		}
		return nil, err
	}

	if err := e.deleteRow(ctx, old); err != nil {
		return nil, err
	}
	if e.now().UnixMilli() > old.ExpiresAt {
		return nil, ErrNotFound
	}

	return e.Issue(ctx, old.AccountID, old.Fingerprint)
}

// Revoke deletes the session for accessToken. Idempotent: an absent token
// is not an error.
func (e *Engine) Revoke(ctx context.Context, accessToken string) error {
	s, err := e.loadRow(ctx, accessToken)
	if err != nil {
		if errors.Is(err, ErrNotFound) {
			return nil
		}
		return err
	}
	return e.deleteRow(ctx, s)
}

// Sweep deletes expired session rows, their index entries, and any index
// entry whose row is gone. For the external maintenance task only.
func (e *Engine) Sweep(ctx context.Context) (int, error) {
	all, err := e.store.GetAll(ctx, store.Sessions)
	if err != nil {
		return 0, err
	}

	now := e.now().UnixMilli()
	removed := 0
	for key, data := range all {
		if strings.HasPrefix(key, indexPrefix) {
			continue
		}
		s, err := decodeSession(data)
		if err != nil || now > s.ExpiresAt {
			if err := e.store.Delete(ctx, store.Sessions, key); err != nil {
				return removed, err
			}
			if s != nil {
				if err := e.store.Delete(ctx, store.Sessions, indexPrefix+s.RefreshToken); err != nil {
					return removed, err
				}
			}
			removed++
		}
	}

	// Orphaned index entries: rows already deleted out from under them.
	for key, access := range all {
		if !strings.HasPrefix(key, indexPrefix) {
			continue
		}
		if _, live := all[string(access)]; !live {
			if err := e.store.Delete(ctx, store.Sessions, key); err != nil {
				return removed, err
			}
			removed++
		}
	}

	return removed, nil
}

func (e *Engine) loadRow(ctx context.Context, accessToken string) (*Session, error) {
	data, err := e.store.Get(ctx, store.Sessions, accessToken)
	if err != nil {
		if errors.Is(err, store.ErrNotFound) {
			return nil, ErrNotFound
		}
		return nil, err
	}
	return decodeSession(data)
}

func (e *Engine) deleteRow(ctx context.Context, s *Session) error {
	if err := e.store.Delete(ctx, store.Sessions, s.AccessToken); err != nil {
		return err
	}
	return e.store.Delete(ctx, store.Sessions, indexPrefix+s.RefreshToken)
}
