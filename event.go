package parentauth

import (
	"context"
	"encoding/json"
	"io"
	"sync"
	"time"

	"github.com/tinytalkers/parentauth/store"
)

// Event types emitted by the engine.
const (
	EventSignupStart    = "signup_start"
	EventSignupComplete = "signup_complete"
	EventSessionRefresh = "session_refresh"
	EventSignOut        = "sign_out"
	EventProfileUpdate  = "profile_update"
)

// Event is one fire-and-forget analytics/audit record. Emission never
// blocks or fails the operation that produced it.
type Event struct {
	ID        string            `json:"id"`
	Timestamp time.Time         `json:"timestamp"`
	EventType string            `json:"event_type"`
	Email     string            `json:"email,omitempty"`
	IP        string            `json:"ip,omitempty"`
	Success   bool              `json:"success"`
	Error     string            `json:"error,omitempty"`
	Metadata  map[string]string `json:"metadata,omitempty"`
}

// EventSink receives dispatched events.
type EventSink interface {
	Emit(ctx context.Context, event Event)
}

// NoOpSink discards every event.
type NoOpSink struct{}

func (NoOpSink) Emit(context.Context, Event) {}

// ChannelSink forwards events to a channel, for tests and embedding hosts.
type ChannelSink struct {
	events chan Event
}

func NewChannelSink(buffer int) *ChannelSink {
	if buffer <= 0 {
		buffer = 1
	}
	return &ChannelSink{events: make(chan Event, buffer)}
}

func (s *ChannelSink) Emit(ctx context.Context, event Event) {
	select {
	case s.events <- event:
	case <-ctx.Done():
	}
}

func (s *ChannelSink) Events() <-chan Event {
	return s.events
}

// JSONWriterSink writes one JSON line per event.
type JSONWriterSink struct {
	writer io.Writer
	mu     sync.Mutex
}

func NewJSONWriterSink(w io.Writer) *JSONWriterSink {
	return &JSONWriterSink{writer: w}
}

func (s *JSONWriterSink) Emit(_ context.Context, event Event) {
	data, err := json.Marshal(event)
	if err != nil {
		return
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	_, _ = s.writer.Write(append(data, '\n'))
}

// storeSink appends events to the store's events namespace, keyed by event
// ID. Write failures are swallowed: the event log has no consistency
// requirement.
type storeSink struct {
	store store.Store
}

func (s storeSink) Emit(ctx context.Context, event Event) {
	data, err := json.Marshal(event)
	if err != nil {
		return
	}
	_ = s.store.Set(ctx, store.Events, event.ID, data)
}
