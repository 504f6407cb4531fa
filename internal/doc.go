// Package internal holds the randomness and fingerprint primitives shared
// by the engine packages. Everything security-sensitive that needs random
// bytes goes through here, and here only crypto/rand is used.
package internal
