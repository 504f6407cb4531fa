// Package session manages opaque access/refresh token pairs bound to an
// account and a device fingerprint.
//
// Each live session is one row in the sessions namespace keyed by its
// access token, plus one index entry mapping the refresh token back to the
// access token so rotation never scans the namespace. Expiry is lazy: an
// expired row is deleted by the read that finds it, and otherwise waits for
// the sweeper.
//
// Rotation retires the old pair with no grace period. The old access token
// is invalid the moment Rotate returns.
package session
