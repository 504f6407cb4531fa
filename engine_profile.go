package parentauth

import (
	"context"
	"time"
	"unicode/utf8"
)

const maxNameLen = 100

// UpdateProfile applies the non-empty fields of p to the account behind
// accessToken. Field checks are deliberately simple: bounded string
// lengths and a plausible birthdate. The profile-completion flag flips on
// once every field is set and never back off here.
func (e *Engine) UpdateProfile(ctx context.Context, accessToken string, p Profile) (*Account, error) {
	if err := validateProfile(p); err != nil {
		return nil, err
	}

	s, err := e.sessions.Lookup(ctx, accessToken)
	if err != nil {
		return nil, err
	}
	account, err := e.loadAccount(ctx, s.AccountID)
	if err != nil {
		return nil, err
	}

	if p.ParentName != "" {
		account.Profile.ParentName = p.ParentName
	}
	if p.ChildName != "" {
		account.Profile.ChildName = p.ChildName
	}
	if p.ChildBirthdate != "" {
		account.Profile.ChildBirthdate = p.ChildBirthdate
	}
	if account.Profile.complete() {
		account.ProfileComplete = true
	}
	account.UpdatedAt = time.Now().UnixMilli()

	if err := e.saveAccount(ctx, account); err != nil {
		return nil, err
	}

	e.emit(ctx, EventProfileUpdate, account.Email, true, nil, nil)
	return account, nil
}

func validateProfile(p Profile) error {
	for _, name := range []string{p.ParentName, p.ChildName} {
		if utf8.RuneCountInString(name) > maxNameLen {
			return ErrInvalidProfile
		}
	}
	if p.ChildBirthdate != "" {
		birth, err := time.Parse("2006-01-02", p.ChildBirthdate)
		if err != nil {
			return ErrInvalidProfile
		}
		now := time.Now()
		if birth.After(now) || birth.Before(now.AddDate(-18, 0, 0)) {
			return ErrInvalidProfile
		}
	}
	return nil
}
