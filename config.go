package parentauth

import (
	"time"

	"github.com/tinytalkers/parentauth/otp"
	"github.com/tinytalkers/parentauth/session"
)

// Config configures an [Engine]. The zero value is a working production
// configuration; set fields to override.
type Config struct {
	OTP     otp.Config
	Session session.Config
	Events  EventConfig

	// Validator replaces the built-in email validator (RFC-shaped format
	// check plus disposable-domain deny list) when non-nil.
	Validator EmailValidator

	// Sender, when non-nil, receives every freshly issued code. Delivery
	// is external to the engine: a Sender failure fails the StartSignup
	// call, but the code stays live.
	Sender CodeSender

	// ExposeCode makes StartSignup return the raw code in the challenge.
	// Testing aid only. Must never be enabled when serving real traffic.
	ExposeCode bool
}

// EventConfig tunes the fire-and-forget event recorder.
type EventConfig struct {
	Enabled    bool
	BufferSize int
	DropIfFull bool
	// Sink overrides the default sink (event rows in the store's events
	// namespace) when non-nil.
	Sink EventSink
	// Retention bounds how long swept event rows are kept. Default 30 days.
	Retention time.Duration
}

func (c *EventConfig) normalize() {
	if c.BufferSize <= 0 {
		c.BufferSize = 64
	}
	if c.Retention <= 0 {
		c.Retention = 30 * 24 * time.Hour
	}
}

// CodeSender delivers a freshly issued passcode to its email identity.
// Implementations talk to the mail provider; the engine never does.
type CodeSender interface {
	SendCode(email, code string, expiresAt time.Time) error
}

// EmailValidator is the external validation collaborator consulted before
// any OTP work. A non-nil return is terminal for the call.
type EmailValidator interface {
	Validate(email string) error
}
