package parentauth

import (
	"errors"

	"github.com/tinytalkers/parentauth/otp"
	"github.com/tinytalkers/parentauth/session"
	"github.com/tinytalkers/parentauth/store"
)

var (
	// ErrInvalidEmail is returned when an email fails syntactic validation.
	// Caller's fault; resubmission with a corrected address recovers.
	ErrInvalidEmail = errors.New("invalid email address")
	// ErrDisposableEmail is returned when the email's domain is on the
	// disposable-provider deny list.
	ErrDisposableEmail = errors.New("disposable email addresses are not allowed")
	// ErrInvalidProfile is returned when a profile update fails the simple
	// field checks.
	ErrInvalidProfile = errors.New("invalid profile field")
	// ErrAccountNotFound is returned when a session's bound account row is gone.
	ErrAccountNotFound = errors.New("account not found")
)

// Convenience re-exports so callers can errors.Is against this package
// alone.
var (
	ErrThrottled        = otp.ErrThrottled
	ErrCodeExpired      = otp.ErrCodeExpired
	ErrCodeInvalid      = otp.ErrCodeInvalid
	ErrCodeNotFound     = otp.ErrCodeNotFound
	ErrSessionNotFound  = session.ErrNotFound
	ErrStoreUnavailable = store.ErrUnavailable
)
