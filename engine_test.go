package parentauth

import (
	"context"
	"errors"
	"regexp"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/redis/go-redis/v9"

	"github.com/tinytalkers/parentauth/store"
)

var sixDigits = regexp.MustCompile(`^\d{6}$`)

func newTestEngine(t *testing.T, cfg Config) (*Engine, store.Store) {
	t.Helper()

	mr, err := miniredis.Run()
	if err != nil {
		t.Fatalf("miniredis run failed: %v", err)
	}
	t.Cleanup(mr.Close)

	rdb := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	t.Cleanup(func() { _ = rdb.Close() })

	st := store.NewRedis(rdb, "t")
	e := New(st, cfg)
	t.Cleanup(e.Close)

	return e, st
}

func wrongCode(code string) string {
	if code == "000000" {
		return "000001"
	}
	return "000000"
}

func mustSignup(t *testing.T, e *Engine, email string) *SignupResult {
	t.Helper()

	ctx := context.Background()
	challenge, err := e.StartSignup(ctx, email)
	if err != nil {
		t.Fatalf("start signup failed: %v", err)
	}
	result, err := e.CompleteSignup(ctx, email, challenge.Code)
	if err != nil {
		t.Fatalf("complete signup failed: %v", err)
	}
	return result
}

func TestSignupFlow(t *testing.T) {
	ctx := context.Background()
	e, _ := newTestEngine(t, Config{ExposeCode: true})

	before := time.Now()
	challenge, err := e.StartSignup(ctx, "User@Example.com")
	if err != nil {
		t.Fatalf("start signup failed: %v", err)
	}
	if challenge.Email != "user@example.com" {
		t.Fatalf("challenge email = %q, want normalized lowercase", challenge.Email)
	}
	if !sixDigits.MatchString(challenge.Code) {
		t.Fatalf("code %q is not six digits", challenge.Code)
	}
	wantExpiry := before.Add(10 * time.Minute)
	if challenge.ExpiresAt.Before(wantExpiry.Add(-5*time.Second)) || challenge.ExpiresAt.After(wantExpiry.Add(5*time.Second)) {
		t.Fatalf("expiresAt = %v, want about %v", challenge.ExpiresAt, wantExpiry)
	}

	result, err := e.CompleteSignup(ctx, "user@example.com", challenge.Code)
	if err != nil {
		t.Fatalf("complete signup failed: %v", err)
	}
	if result.Account.Email != "user@example.com" {
		t.Fatalf("account email = %q", result.Account.Email)
	}
	if result.Session.AccessToken == "" || result.Session.RefreshToken == "" {
		t.Fatal("missing session tokens")
	}
	sessionExpiry := time.UnixMilli(result.Session.ExpiresAt)
	wantExpiry = before.Add(7 * 24 * time.Hour)
	if sessionExpiry.Before(wantExpiry.Add(-5*time.Second)) || sessionExpiry.After(wantExpiry.Add(5*time.Second)) {
		t.Fatalf("session expiry = %v, want about %v", sessionExpiry, wantExpiry)
	}

	info, err := e.GetSession(ctx, result.Session.AccessToken)
	if err != nil {
		t.Fatalf("get session failed: %v", err)
	}
	if info.Account == nil || info.Account.Email != "user@example.com" {
		t.Fatalf("get session account = %+v", info.Account)
	}

	// The code was consumed by the successful verification.
	if _, err := e.CompleteSignup(ctx, "user@example.com", challenge.Code); !errors.Is(err, ErrCodeNotFound) {
		t.Fatalf("reused code = %v, want ErrCodeNotFound", err)
	}
}

func TestStartSignupValidation(t *testing.T) {
	ctx := context.Background()
	e, st := newTestEngine(t, Config{ExposeCode: true})

	tests := []struct {
		name  string
		email string
		want  error
	}{
		{"empty", "", ErrInvalidEmail},
		{"no at", "userexample.com", ErrInvalidEmail},
		{"no tld", "user@example", ErrInvalidEmail},
		{"spaces", "user name@example.com", ErrInvalidEmail},
		{"disposable", "user@mailinator.com", ErrDisposableEmail},
		{"disposable mixed case", "User@YOPMAIL.com", ErrDisposableEmail},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if _, err := e.StartSignup(ctx, tt.email); !errors.Is(err, tt.want) {
				t.Fatalf("StartSignup(%q) = %v, want %v", tt.email, err, tt.want)
			}
		})
	}

	// Validation failure is terminal before any OTP work.
	keys, err := st.List(ctx, store.OTP)
	if err != nil {
		t.Fatalf("list failed: %v", err)
	}
	if len(keys) != 0 {
		t.Fatalf("otp namespace touched on validation failure: %v", keys)
	}
}

func TestCodeHiddenWithoutExposeFlag(t *testing.T) {
	ctx := context.Background()
	e, _ := newTestEngine(t, Config{})

	challenge, err := e.StartSignup(ctx, "user@example.com")
	if err != nil {
		t.Fatalf("start signup failed: %v", err)
	}
	if challenge.Code != "" {
		t.Fatal("raw code leaked without ExposeCode")
	}
}

type capturingSender struct {
	email string
	code  string
}

func (s *capturingSender) SendCode(email, code string, _ time.Time) error {
	s.email = email
	s.code = code
	return nil
}

func TestSenderReceivesCode(t *testing.T) {
	ctx := context.Background()
	sender := &capturingSender{}
	e, _ := newTestEngine(t, Config{Sender: sender})

	if _, err := e.StartSignup(ctx, "user@example.com"); err != nil {
		t.Fatalf("start signup failed: %v", err)
	}
	if sender.email != "user@example.com" || !sixDigits.MatchString(sender.code) {
		t.Fatalf("sender got %q / %q", sender.email, sender.code)
	}

	// The dispatched code verifies even though the challenge hid it.
	if _, err := e.CompleteSignup(ctx, "user@example.com", sender.code); err != nil {
		t.Fatalf("complete signup failed: %v", err)
	}
}

func TestSixWrongSubmissionsThrottled(t *testing.T) {
	ctx := context.Background()
	e, _ := newTestEngine(t, Config{ExposeCode: true})

	challenge, err := e.StartSignup(ctx, "user@example.com")
	if err != nil {
		t.Fatalf("start signup failed: %v", err)
	}

	var last error
	for i := 0; i < 6; i++ {
		_, last = e.CompleteSignup(ctx, "user@example.com", wrongCode(challenge.Code))
	}
	if !errors.Is(last, ErrThrottled) {
		t.Fatalf("sixth wrong submission = %v, want ErrThrottled", last)
	}
	// Correctness no longer matters under throttle.
	if _, err := e.CompleteSignup(ctx, "user@example.com", challenge.Code); !errors.Is(err, ErrThrottled) {
		t.Fatalf("correct code under throttle = %v, want ErrThrottled", err)
	}

	left, err := e.AttemptsLeft(ctx, "user@example.com")
	if err != nil || left != 0 {
		t.Fatalf("attempts left = %d, %v; want 0, nil", left, err)
	}
}

func TestResignupKeepsProfile(t *testing.T) {
	ctx := context.Background()
	e, _ := newTestEngine(t, Config{ExposeCode: true})

	first := mustSignup(t, e, "user@example.com")
	if _, err := e.UpdateProfile(ctx, first.Session.AccessToken, Profile{
		ParentName:     "Jamie",
		ChildName:      "Robin",
		ChildBirthdate: "2020-06-15",
	}); err != nil {
		t.Fatalf("update profile failed: %v", err)
	}

	second := mustSignup(t, e, "user@example.com")
	if second.Account.CreatedAt != first.Account.CreatedAt {
		t.Fatal("re-signup changed CreatedAt")
	}
	if second.Account.UpdatedAt < first.Account.UpdatedAt {
		t.Fatal("re-signup did not bump UpdatedAt")
	}
	if !second.Account.ProfileComplete || second.Account.Profile.ChildName != "Robin" {
		t.Fatalf("re-signup lost profile fields: %+v", second.Account)
	}
}

func TestUpdateProfileValidation(t *testing.T) {
	ctx := context.Background()
	e, _ := newTestEngine(t, Config{ExposeCode: true})
	result := mustSignup(t, e, "user@example.com")

	tests := []struct {
		name    string
		profile Profile
	}{
		{"bad date format", Profile{ChildBirthdate: "15/06/2020"}},
		{"future birthdate", Profile{ChildBirthdate: time.Now().AddDate(1, 0, 0).Format("2006-01-02")}},
		{"too old", Profile{ChildBirthdate: "1990-01-01"}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if _, err := e.UpdateProfile(ctx, result.Session.AccessToken, tt.profile); !errors.Is(err, ErrInvalidProfile) {
				t.Fatalf("UpdateProfile = %v, want ErrInvalidProfile", err)
			}
		})
	}

	if _, err := e.UpdateProfile(ctx, "at_unknown", Profile{ParentName: "Jamie"}); !errors.Is(err, ErrSessionNotFound) {
		t.Fatalf("unauthenticated update = %v, want ErrSessionNotFound", err)
	}
}

func TestRefreshAndSignOut(t *testing.T) {
	ctx := context.Background()
	e, _ := newTestEngine(t, Config{ExposeCode: true})
	result := mustSignup(t, e, "user@example.com")

	fresh, err := e.RefreshSession(ctx, result.Session.RefreshToken)
	if err != nil {
		t.Fatalf("refresh failed: %v", err)
	}
	if fresh.Account == nil || fresh.Account.Email != "user@example.com" {
		t.Fatalf("refresh did not resolve account: %+v", fresh.Account)
	}
	if _, err := e.GetSession(ctx, result.Session.AccessToken); !errors.Is(err, ErrSessionNotFound) {
		t.Fatalf("pre-rotation access token = %v, want ErrSessionNotFound", err)
	}

	if _, err := e.RefreshSession(ctx, "rt_unknown"); !errors.Is(err, ErrSessionNotFound) {
		t.Fatalf("unknown refresh token = %v, want ErrSessionNotFound", err)
	}

	if err := e.SignOut(ctx, fresh.Session.AccessToken); err != nil {
		t.Fatalf("sign out failed: %v", err)
	}
	if _, err := e.GetSession(ctx, fresh.Session.AccessToken); !errors.Is(err, ErrSessionNotFound) {
		t.Fatalf("get session after sign out = %v, want ErrSessionNotFound", err)
	}
	if err := e.SignOut(ctx, fresh.Session.AccessToken); err != nil {
		t.Fatalf("second sign out failed: %v", err)
	}
}

func TestEventsRecorded(t *testing.T) {
	sink := NewChannelSink(16)
	e, _ := newTestEngine(t, Config{
		ExposeCode: true,
		Events:     EventConfig{Enabled: true, Sink: sink},
	})

	mustSignup(t, e, "user@example.com")
	e.Close()

	var types []string
	for {
		select {
		case event := <-sink.Events():
			if event.ID == "" || event.Timestamp.IsZero() {
				t.Fatalf("event missing identity: %+v", event)
			}
			types = append(types, event.EventType)
			continue
		default:
		}
		break
	}
	if len(types) != 2 || types[0] != EventSignupStart || types[1] != EventSignupComplete {
		t.Fatalf("event types = %v", types)
	}
}

func TestEventsWrittenToStore(t *testing.T) {
	ctx := context.Background()
	e, st := newTestEngine(t, Config{
		ExposeCode: true,
		Events:     EventConfig{Enabled: true},
	})

	mustSignup(t, e, "user@example.com")
	e.Close()

	keys, err := st.List(ctx, store.Events)
	if err != nil {
		t.Fatalf("list failed: %v", err)
	}
	if len(keys) != 2 {
		t.Fatalf("event rows = %d, want 2", len(keys))
	}
}
