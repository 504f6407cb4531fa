package parentauth

import (
	"context"
	"encoding/json"
	"time"

	"github.com/tinytalkers/parentauth/otp"
	"github.com/tinytalkers/parentauth/session"
	"github.com/tinytalkers/parentauth/store"
)

// SweepReport counts what one sweep pass removed.
type SweepReport struct {
	Sessions   int
	OTPRecords int
	Events     int
}

// Sweeper reclaims rows whose logical expiry has passed: expired sessions
// and their index entries, OTP records with nothing live or in-window, and
// event rows past retention. It runs as an external maintenance task —
// never inside the request path, which only expires lazily.
type Sweeper struct {
	store     store.Store
	otp       *otp.Engine
	sessions  *session.Engine
	retention time.Duration
	now       func() time.Time
}

// NewSweeper builds a sweeper for the same store and configuration the
// engine runs on.
func NewSweeper(st store.Store, cfg Config) *Sweeper {
	cfg.Events.normalize()
	return &Sweeper{
		store:     st,
		otp:       otp.NewEngine(st, cfg.OTP),
		sessions:  session.NewEngine(st, cfg.Session),
		retention: cfg.Events.Retention,
		now:       time.Now,
	}
}

// Run performs one full pass. A partial pass still reports what it removed
// alongside the error.
func (s *Sweeper) Run(ctx context.Context) (SweepReport, error) {
	var report SweepReport
	var err error

	if report.Sessions, err = s.sessions.Sweep(ctx); err != nil {
		return report, err
	}
	if report.OTPRecords, err = s.otp.Sweep(ctx); err != nil {
		return report, err
	}
	if report.Events, err = s.sweepEvents(ctx); err != nil {
		return report, err
	}
	return report, nil
}

func (s *Sweeper) sweepEvents(ctx context.Context) (int, error) {
	all, err := s.store.GetAll(ctx, store.Events)
	if err != nil {
		return 0, err
	}

	cutoff := s.now().Add(-s.retention)
	removed := 0
	for key, data := range all {
		var event Event
		if err := json.Unmarshal(data, &event); err == nil && event.Timestamp.After(cutoff) {
			continue
		}
		if err := s.store.Delete(ctx, store.Events, key); err != nil {
			return removed, err
		}
		removed++
	}
	return removed, nil
}
