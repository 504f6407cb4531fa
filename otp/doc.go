// Package otp issues and verifies numeric one-time passcodes per email
// identity, with a validity window on each code and a rolling-window cap on
// verification attempts.
//
// # Window semantics
//
// An attempt counts against the cap iff now − attempt time < the attempt
// window, evaluated fresh on every call. Attempts are never rewritten in
// place; the list only grows, and stale entries fall out of every count the
// moment they age past the window. Physical cleanup is the sweeper's job,
// never this package's.
//
// # What this package must NOT do
//
//   - Deliver codes anywhere (the caller owns dispatch).
//   - Touch any namespace other than [store.OTP].
//   - Draw randomness from anything but crypto/rand (via internal.NewOTP).
package otp
