package otp

import (
	"context"
	"crypto/subtle"
	"errors"
	"strings"
	"time"

	"github.com/tinytalkers/parentauth/internal"
	"github.com/tinytalkers/parentauth/store"
)

// Config holds the passcode policy. Zero values take the defaults below.
type Config struct {
	Digits        int           // code length, default 6
	TTL           time.Duration // code validity window, default 10m
	MaxAttempts   int           // verification attempts per window, default 5
	AttemptWindow time.Duration // rolling window, default 1h
}

func (c *Config) normalize() {
	if c.Digits <= 0 {
		c.Digits = 6
	}
	if c.TTL <= 0 {
		c.TTL = 10 * time.Minute
	}
	if c.MaxAttempts <= 0 {
		c.MaxAttempts = 5
	}
	if c.AttemptWindow <= 0 {
		c.AttemptWindow = time.Hour
	}
}

// Engine owns all OTP record mutation. No other component writes the OTP
// namespace. Read-modify-write sequences here are not atomic across
// concurrent calls for the same email; the deployment adds per-key locking
// at the store boundary if it needs that.
type Engine struct {
	store store.Store
	cfg   Config
	now   func() time.Time
}

// NewEngine returns an OTP engine writing through st.
func NewEngine(st store.Store, cfg Config) *Engine {
	cfg.normalize()
	return &Engine{
		store: st,
		cfg:   cfg,
		now:   time.Now,
	}
}

// RequestCode generates a fresh code for email, invalidating any live one.
// Fails with [ErrThrottled] before any mutation when the rolling attempt
// cap is already met. Returns the code and its absolute expiry.
func (e *Engine) RequestCode(ctx context.Context, email string) (string, time.Time, error) {
	email = normalizeEmail(email)
	now := e.now()

	rec, err := e.load(ctx, email)
	if err != nil {
		return "", time.Time{}, err
	}
	if rec == nil {
		rec = &Record{Email: email}
	}

	if e.inWindow(rec, now) >= e.cfg.MaxAttempts {
		return "", time.Time{}, ErrThrottled
	}

	code, err := internal.NewOTP(e.cfg.Digits)
	if err != nil {
		return "", time.Time{}, err
	}

	rec.Code = code
	rec.GeneratedAt = now.UnixMilli()
	if err := e.save(ctx, rec); err != nil {
		return "", time.Time{}, err
	}

	return code, now.Add(e.cfg.TTL), nil
}

// VerifyCode checks submitted against the live code for email.
//
// Outcomes, in evaluation order: [ErrCodeNotFound] when no live code
// exists (the only outcome that records nothing), [ErrCodeExpired],
// [ErrThrottled], nil on match, [ErrCodeInvalid]. Every recorded outcome
// appends one attempt; a match clears the live code in the same write.
// A failing attempt that newly meets the cap is reported as throttled even
// though the attempt itself is recorded under its own reason.
func (e *Engine) VerifyCode(ctx context.Context, email, submitted string) error {
	email = normalizeEmail(email)
	now := e.now()

	rec, err := e.load(ctx, email)
	if err != nil {
		return err
	}
	if rec == nil || rec.Code == "" {
		return ErrCodeNotFound
	}

	if now.UnixMilli()-rec.GeneratedAt > e.cfg.TTL.Milliseconds() {
		return e.recordFailure(ctx, rec, submitted, now, ReasonExpired, ErrCodeExpired)
	}

	if e.inWindow(rec, now) >= e.cfg.MaxAttempts {
		rec.Attempts = append(rec.Attempts, Attempt{
			Submitted: submitted,
			At:        now.UnixMilli(),
			Reason:    ReasonThrottled,
		})
		if err := e.save(ctx, rec); err != nil {
			return err
		}
		return ErrThrottled
	}

	if subtle.ConstantTimeCompare([]byte(rec.Code), []byte(submitted)) == 1 {
		rec.Attempts = append(rec.Attempts, Attempt{
			Submitted: submitted,
			At:        now.UnixMilli(),
			Success:   true,
		})
		rec.Code = ""
		rec.GeneratedAt = 0
		return e.save(ctx, rec)
	}

	return e.recordFailure(ctx, rec, submitted, now, ReasonInvalid, ErrCodeInvalid)
}

// RemainingAttempts reports how many verification attempts the email has
// left in the current window, floored at zero.
func (e *Engine) RemainingAttempts(ctx context.Context, email string) (int, error) {
	rec, err := e.load(ctx, normalizeEmail(email))
	if err != nil {
		return 0, err
	}
	if rec == nil {
		return e.cfg.MaxAttempts, nil
	}

	left := e.cfg.MaxAttempts - e.inWindow(rec, e.now())
	if left < 0 {
		left = 0
	}
	return left, nil
}

// Sweep deletes OTP records that hold no live code and no attempt still in
// the rolling window. Meant for the external maintenance task, not the
// request path.
func (e *Engine) Sweep(ctx context.Context) (int, error) {
	all, err := e.store.GetAll(ctx, store.OTP)
	if err != nil {
		return 0, err
	}

	now := e.now()
	removed := 0
	for key, data := range all {
		rec, err := decodeRecord(data)
		if err != nil {
			// Undecodable rows are dead weight either way.
			if err := e.store.Delete(ctx, store.OTP, key); err != nil {
				return removed, err
			}
			removed++
			continue
		}
		if rec.Code != "" || e.inWindow(rec, now) > 0 {
			continue
		}
		if err := e.store.Delete(ctx, store.OTP, key); err != nil {
			return removed, err
		}
		removed++
	}
	return removed, nil
}

// recordFailure appends a failed attempt under its own reason, then
// upgrades the returned error to ErrThrottled when that append meets the
// cap. The audit trail keeps the original reason either way.
func (e *Engine) recordFailure(ctx context.Context, rec *Record, submitted string, now time.Time, reason string, outcome error) error {
	rec.Attempts = append(rec.Attempts, Attempt{
		Submitted: submitted,
		At:        now.UnixMilli(),
		Reason:    reason,
	})
	if err := e.save(ctx, rec); err != nil {
		return err
	}
	if e.inWindow(rec, now) >= e.cfg.MaxAttempts {
		return ErrThrottled
	}
	return outcome
}

func (e *Engine) inWindow(rec *Record, now time.Time) int {
	cutoff := now.UnixMilli() - e.cfg.AttemptWindow.Milliseconds()
	count := 0
	for _, a := range rec.Attempts {
		if a.At > cutoff {
			count++
		}
	}
	return count
}

func (e *Engine) load(ctx context.Context, email string) (*Record, error) {
	data, err := e.store.Get(ctx, store.OTP, email)
	if err != nil {
		if errors.Is(err, store.ErrNotFound) {
			return nil, nil
		}
		return nil, err
	}
	return decodeRecord(data)
}

func (e *Engine) save(ctx context.Context, rec *Record) error {
	data, err := encodeRecord(rec)
	if err != nil {
		return err
	}
	return e.store.Set(ctx, store.OTP, rec.Email, data)
}

func normalizeEmail(email string) string {
	return strings.ToLower(strings.TrimSpace(email))
}
