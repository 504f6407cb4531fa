package parentauth

import (
	"context"

	"github.com/tinytalkers/parentauth/internal"
)

type clientIPContextKey struct{}
type userAgentContextKey struct{}
type localeContextKey struct{}

// WithClientIP attaches the caller's IP address to ctx. Used for the device
// fingerprint and for event records.
func WithClientIP(ctx context.Context, ip string) context.Context {
	return context.WithValue(ctx, clientIPContextKey{}, ip)
}

// WithUserAgent attaches the client's user-agent string to ctx. Used for
// the device fingerprint.
func WithUserAgent(ctx context.Context, userAgent string) context.Context {
	return context.WithValue(ctx, userAgentContextKey{}, userAgent)
}

// WithLocale attaches the client's locale to ctx. Used for the device
// fingerprint.
func WithLocale(ctx context.Context, locale string) context.Context {
	return context.WithValue(ctx, localeContextKey{}, locale)
}

func clientIPFromContext(ctx context.Context) string {
	if ctx == nil {
		return ""
	}
	ip, _ := ctx.Value(clientIPContextKey{}).(string)
	return ip
}

func userAgentFromContext(ctx context.Context) string {
	if ctx == nil {
		return ""
	}
	ua, _ := ctx.Value(userAgentContextKey{}).(string)
	return ua
}

func localeFromContext(ctx context.Context) string {
	if ctx == nil {
		return ""
	}
	locale, _ := ctx.Value(localeContextKey{}).(string)
	return locale
}

// fingerprintFromContext derives the descriptive device fingerprint from
// whatever client signals the caller attached. Never a trust boundary.
func fingerprintFromContext(ctx context.Context) string {
	return internal.FingerprintSignals(
		clientIPFromContext(ctx),
		userAgentFromContext(ctx),
		localeFromContext(ctx),
	)
}
