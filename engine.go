package parentauth

import (
	"context"
	"time"

	"github.com/tinytalkers/parentauth/otp"
	"github.com/tinytalkers/parentauth/session"
	"github.com/tinytalkers/parentauth/store"
)

// Engine composes the OTP and session engines over one record store.
// Configure once via [New]; treat as immutable afterwards.
type Engine struct {
	cfg       Config
	store     store.Store
	otp       *otp.Engine
	sessions  *session.Engine
	validator EmailValidator
	events    *eventDispatcher
}

// New returns an engine writing through st.
func New(st store.Store, cfg Config) *Engine {
	validator := cfg.Validator
	if validator == nil {
		validator = denyListValidator{}
	}

	sink := cfg.Events.Sink
	if sink == nil {
		sink = storeSink{store: st}
	}

	return &Engine{
		cfg:       cfg,
		store:     st,
		otp:       otp.NewEngine(st, cfg.OTP),
		sessions:  session.NewEngine(st, cfg.Session),
		validator: validator,
		events:    newEventDispatcher(cfg.Events, sink),
	}
}

// Close drains the event dispatcher. The engine is unusable afterwards.
func (e *Engine) Close() {
	if e == nil {
		return
	}
	e.events.Close()
}

// EventsDropped reports how many events the dispatcher shed under
// backpressure.
func (e *Engine) EventsDropped() uint64 {
	if e == nil {
		return 0
	}
	return e.events.Dropped()
}

func (e *Engine) emit(ctx context.Context, eventType, email string, success bool, cause error, metadata map[string]string) {
	if e.events == nil {
		return
	}
	event := Event{
		Timestamp: time.Now(),
		EventType: eventType,
		Email:     email,
		IP:        clientIPFromContext(ctx),
		Success:   success,
		Metadata:  metadata,
	}
	if cause != nil {
		event.Error = cause.Error()
	}
	e.events.Emit(ctx, event)
}
