// Package store defines the keyed persistence contract the authentication
// engine runs on, plus the two shipped backends (Redis, Postgres).
//
// # Contract
//
// Records live in four independent namespaces (accounts, sessions, otp,
// events). Every operation addresses exactly one namespace and, except for
// List/GetAll, exactly one key. A single-key write is atomic within its
// namespace; nothing spans namespaces. There is no locking: callers that
// read-modify-write the same key concurrently race, and the engine documents
// where that is acceptable.
//
// # What this package must NOT do
//
//   - Interpret record bytes (codecs belong to the record owners).
//   - Retry failed operations (retries are a caller policy).
//   - Swallow backend failures; everything maps onto [ErrNotFound] or
//     [ErrUnavailable].
package store
