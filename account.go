package parentauth

import (
	"context"
	"encoding/json"
	"errors"
	"strings"

	"github.com/tinytalkers/parentauth/store"
)

// Profile holds the parent-entered fields. Empty strings mean "not set".
type Profile struct {
	ParentName     string `json:"parent_name,omitempty"`
	ChildName      string `json:"child_name,omitempty"`
	ChildBirthdate string `json:"child_birthdate,omitempty"` // YYYY-MM-DD
}

func (p Profile) complete() bool {
	return p.ParentName != "" && p.ChildName != "" && p.ChildBirthdate != ""
}

// Account is one parental account, keyed in the accounts namespace by its
// lowercase email. Created on first successful code verification; never
// hard-deleted in normal flow.
type Account struct {
	Email           string  `json:"email"`
	CreatedAt       int64   `json:"created_at"` // unix milliseconds
	UpdatedAt       int64   `json:"updated_at"` // unix milliseconds
	ProfileComplete bool    `json:"profile_complete"`
	Profile         Profile `json:"profile"`
}

func normalizeEmail(email string) string {
	return strings.ToLower(strings.TrimSpace(email))
}

func (e *Engine) loadAccount(ctx context.Context, email string) (*Account, error) {
	data, err := e.store.Get(ctx, store.Accounts, normalizeEmail(email))
	if err != nil {
		if errors.Is(err, store.ErrNotFound) {
			return nil, ErrAccountNotFound
		}
		return nil, err
	}
	var a Account
	if err := json.Unmarshal(data, &a); err != nil {
		return nil, err
	}
	return &a, nil
}

func (e *Engine) saveAccount(ctx context.Context, a *Account) error {
	data, err := json.Marshal(a)
	if err != nil {
		return err
	}
	return e.store.Set(ctx, store.Accounts, a.Email, data)
}
