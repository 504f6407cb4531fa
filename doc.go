// Package parentauth is the parental-account authentication engine for the
// tinytalkers speech-practice app: email one-time-passcode signup, abuse
// throttling, and opaque session token lifecycle (issue, validate, rotate,
// revoke).
//
// The package is the public surface. It exposes [Engine], [Config],
// [Sweeper], and the result types; code/token policy lives in the otp and
// session sub-packages, and all durable state flows through the
// [store.Store] contract — the engine holds no state of its own and no
// process-wide session pointer.
//
// # Architecture boundaries
//
//   - The OTP engine is the only writer of the otp namespace; the session
//     engine is the only writer of the sessions namespace; this package
//     owns accounts and events.
//   - No component retries storage failures or falls back to empty state;
//     every failure surfaces to the caller.
//   - Code and token dispatch (email, SMS) is the caller's job. The engine
//     only hands values back, and the raw code only when [Config.ExposeCode]
//     is set — a test aid that must never be on in production.
//
// # Concurrency
//
// Engine methods are safe to call from multiple goroutines, but
// read-modify-write sequences for the same email or token are not atomic
// across concurrent calls. Deployments that need stronger guarantees add
// per-key locking at the store boundary; last writer wins otherwise.
package parentauth
