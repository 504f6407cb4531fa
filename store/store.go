package store

import (
	"context"
	"errors"
)

// Namespace selects one of the engine's record families. Namespaces are
// isolated from each other: identical keys in two namespaces never collide.
type Namespace string

const (
	// Accounts holds one record per parental account, keyed by lowercase email.
	Accounts Namespace = "accounts"
	// Sessions holds session rows keyed by access token, plus the
	// refresh-token index entries the session engine maintains.
	Sessions Namespace = "sessions"
	// OTP holds one record per email identity that ever requested a code.
	OTP Namespace = "otp"
	// Events holds the append-only audit event log, keyed by event ID.
	Events Namespace = "events"
)

// ErrNotFound reports that the requested key has no record in the namespace.
var ErrNotFound = errors.New("record not found")

// ErrUnavailable reports that the backing medium failed. It wraps the
// backend error; callers decide whether to retry or propagate.
var ErrUnavailable = errors.New("record store unavailable")

// Store is the persistence boundary every engine component writes through.
// Implementations must keep single-key writes atomic within a namespace and
// must report backend failure instead of defaulting to empty results.
type Store interface {
	// Get returns the record bytes for key, or ErrNotFound.
	Get(ctx context.Context, ns Namespace, key string) ([]byte, error)
	// Set writes the record bytes for key, creating or replacing it.
	Set(ctx context.Context, ns Namespace, key string, value []byte) error
	// Delete removes the record for key. Deleting an absent key is not an error.
	Delete(ctx context.Context, ns Namespace, key string) error
	// List returns every key currently present in the namespace.
	List(ctx context.Context, ns Namespace) ([]string, error)
	// GetAll returns every record in the namespace keyed by its key.
	GetAll(ctx context.Context, ns Namespace) (map[string][]byte, error)
}
