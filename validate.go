package parentauth

import (
	"regexp"
	"strings"
)

// emailPattern is deliberately RFC-shaped rather than RFC-complete: local
// part, one @, dotted domain with a 2+ letter TLD.
var emailPattern = regexp.MustCompile(`^[a-zA-Z0-9.!#$%&'*+/=?^_` + "`" + `{|}~-]+@[a-zA-Z0-9](?:[a-zA-Z0-9-]{0,61}[a-zA-Z0-9])?(?:\.[a-zA-Z0-9](?:[a-zA-Z0-9-]{0,61}[a-zA-Z0-9])?)*\.[a-zA-Z]{2,}$`)

// disposableDomains is a fixed deny list of throwaway-mail providers.
// Parental accounts anchor a child's data, so burner addresses are refused
// up front.
var disposableDomains = map[string]struct{}{
	"10minutemail.com":  {},
	"dispostable.com":   {},
	"fakeinbox.com":     {},
	"getnada.com":       {},
	"guerrillamail.com": {},
	"maildrop.cc":       {},
	"mailinator.com":    {},
	"sharklasers.com":   {},
	"temp-mail.org":     {},
	"tempmail.com":      {},
	"trashmail.com":     {},
	"yopmail.com":       {},
}

type denyListValidator struct{}

func (denyListValidator) Validate(email string) error {
	email = strings.ToLower(strings.TrimSpace(email))
	if email == "" || len(email) > 254 || !emailPattern.MatchString(email) {
		return ErrInvalidEmail
	}
	domain := email[strings.LastIndexByte(email, '@')+1:]
	if _, blocked := disposableDomains[domain]; blocked {
		return ErrDisposableEmail
	}
	return nil
}
