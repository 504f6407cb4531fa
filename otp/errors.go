package otp

import "errors"

var (
	// ErrThrottled is returned when the rolling attempt cap for the email
	// identity is already met. The caller must wait, not retry.
	ErrThrottled = errors.New("too many verification attempts")
	// ErrCodeExpired is returned when the live code's validity window has passed.
	ErrCodeExpired = errors.New("verification code expired")
	// ErrCodeInvalid is returned when the submitted code does not match the live code.
	ErrCodeInvalid = errors.New("verification code invalid")
	// ErrCodeNotFound is returned when no live code exists for the email identity.
	ErrCodeNotFound = errors.New("no verification code found")
)
