package parentauth

import (
	"context"
	"errors"
	"time"

	"github.com/tinytalkers/parentauth/session"
)

// SignupChallenge is the StartSignup result. Code is populated only under
// [Config.ExposeCode]; delivery otherwise goes through [Config.Sender].
type SignupChallenge struct {
	Email     string
	ExpiresAt time.Time
	Code      string
}

// SignupResult is the CompleteSignup result.
type SignupResult struct {
	Account *Account
	Session *session.Session
}

// StartSignup validates email and issues a signup code for it.
//
// Validation failure ([ErrInvalidEmail], [ErrDisposableEmail]) is terminal
// and touches no OTP state. [ErrThrottled] from the OTP engine surfaces
// verbatim.
func (e *Engine) StartSignup(ctx context.Context, email string) (*SignupChallenge, error) {
	email = normalizeEmail(email)

	if err := e.validator.Validate(email); err != nil {
		e.emit(ctx, EventSignupStart, email, false, err, nil)
		return nil, err
	}

	code, expiresAt, err := e.otp.RequestCode(ctx, email)
	if err != nil {
		e.emit(ctx, EventSignupStart, email, false, err, nil)
		return nil, err
	}

	if e.cfg.Sender != nil {
		if err := e.cfg.Sender.SendCode(email, code, expiresAt); err != nil {
			// The code stays live; the caller may retry StartSignup or
			// the user may still receive a delayed delivery.
			e.emit(ctx, EventSignupStart, email, false, err, nil)
			return nil, err
		}
	}

	challenge := &SignupChallenge{Email: email, ExpiresAt: expiresAt}
	if e.cfg.ExposeCode {
		challenge.Code = code
	}

	e.emit(ctx, EventSignupStart, email, true, nil, nil)
	return challenge, nil
}

// CompleteSignup verifies the submitted code and, on success, upserts the
// account and issues a session bound to the caller's device fingerprint.
//
// Any verification outcome other than success returns the corresponding
// error with no account or session mutation. Re-signup for an existing
// account only bumps its update timestamp; set profile fields are left
// untouched.
func (e *Engine) CompleteSignup(ctx context.Context, email, submittedCode string) (*SignupResult, error) {
	email = normalizeEmail(email)

	if err := e.otp.VerifyCode(ctx, email, submittedCode); err != nil {
		e.emit(ctx, EventSignupComplete, email, false, err, nil)
		return nil, err
	}

	now := time.Now().UnixMilli()
	account, err := e.loadAccount(ctx, email)
	switch {
	case err == nil:
		account.UpdatedAt = now
	case errors.Is(err, ErrAccountNotFound):
		account = &Account{Email: email, CreatedAt: now, UpdatedAt: now}
	default:
		return nil, err
	}
	if err := e.saveAccount(ctx, account); err != nil {
		return nil, err
	}

	s, err := e.sessions.Issue(ctx, email, fingerprintFromContext(ctx))
	if err != nil {
		return nil, err
	}

	e.emit(ctx, EventSignupComplete, email, true, nil, map[string]string{
		"fingerprint": s.Fingerprint,
	})
	return &SignupResult{Account: account, Session: s}, nil
}

// AttemptsLeft reports how many verification attempts remain for email in
// the current rolling window.
func (e *Engine) AttemptsLeft(ctx context.Context, email string) (int, error) {
	return e.otp.RemainingAttempts(ctx, normalizeEmail(email))
}
