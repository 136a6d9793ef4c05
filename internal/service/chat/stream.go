// Package chat orchestrates one edit-and-deliver request end to end and
// exposes its progress as an ordered stream of typed events.
package chat

import (
	"sync"
	"time"

	"draftpad-backend/internal/domain"
)

// EventType discriminates the events a request emits.
type EventType string

const (
	EventStatus    EventType = "status"
	EventDelta     EventType = "delta"
	EventDocs      EventType = "docs"
	EventError     EventType = "error"
	EventFinal     EventType = "final"
	EventHeartbeat EventType = "heartbeat"
)

// Stages of a docs event. Draft is emitted before persistence confirms the
// changes, final after.
const (
	StageDraft = "draft"
	StageFinal = "final"
)

// FinalPayload is the terminal success payload.
type FinalPayload struct {
	Reply       string                  `json:"reply"`
	UpdatedDocs []domain.Document       `json:"updated_docs"`
	Changes     []domain.DocumentChange `json:"changes"`
	TaskID      string                  `json:"task_id"`
	CreditsUsed int                     `json:"credits_used"`
}

// Event is one entry of the delivery stream.
type Event struct {
	Type          EventType               `json:"type"`
	Label         string                  `json:"label,omitempty"`
	Text          string                  `json:"text,omitempty"`
	Stage         string                  `json:"stage,omitempty"`
	Changes       []domain.DocumentChange `json:"changes,omitempty"`
	Message       string                  `json:"message,omitempty"`
	CorrelationID string                  `json:"correlation_id,omitempty"`
	Final         *FinalPayload           `json:"final,omitempty"`
}

// Terminal reports whether the event ends the stream.
func (e Event) Terminal() bool {
	return e.Type == EventError || e.Type == EventFinal
}

// Stream is the single-writer event queue between the pipeline and the
// transport. The pipeline emits at most one terminal event (error or final)
// and must call Close when done; a reader that goes away never blocks the
// writer past Close.
type Stream struct {
	events chan Event
	done   chan struct{}

	mu     sync.Mutex
	closed bool

	closeOnce    sync.Once
	terminalOnce sync.Once
}

// NewStream creates a stream with the given event buffer.
func NewStream(buffer int) *Stream {
	return &Stream{
		events: make(chan Event, buffer),
		done:   make(chan struct{}),
	}
}

// Events is the reader side of the stream. It is closed by Close.
func (s *Stream) Events() <-chan Event {
	return s.events
}

// Status emits a progress or degradation label.
func (s *Stream) Status(label string) {
	s.send(Event{Type: EventStatus, Label: label})
}

// Delta emits one increment of reply text.
func (s *Stream) Delta(text string) {
	s.send(Event{Type: EventDelta, Text: text})
}

// Docs emits the document changes at the given stage.
func (s *Stream) Docs(stage string, changes []domain.DocumentChange) {
	s.send(Event{Type: EventDocs, Stage: stage, Changes: changes})
}

// Error emits the terminal failure event. Later terminal events are dropped.
func (s *Stream) Error(message, correlationID string) {
	s.terminalOnce.Do(func() {
		s.send(Event{Type: EventError, Message: message, CorrelationID: correlationID})
	})
}

// Final emits the terminal success event. Later terminal events are dropped.
func (s *Stream) Final(payload FinalPayload) {
	s.terminalOnce.Do(func() {
		s.send(Event{Type: EventFinal, Final: &payload})
	})
}

// StartHeartbeat emits heartbeat events at the given interval until the
// returned stop function is called or the stream closes. Heartbeats keep
// proxies from cutting an idle connection during long model calls.
func (s *Stream) StartHeartbeat(interval time.Duration) func() {
	stop := make(chan struct{})
	go func() {
		ticker := time.NewTicker(interval)
		defer ticker.Stop()
		for {
			select {
			case <-ticker.C:
				s.send(Event{Type: EventHeartbeat})
			case <-stop:
				return
			case <-s.done:
				return
			}
		}
	}()
	var once sync.Once
	return func() { once.Do(func() { close(stop) }) }
}

// Close ends the stream. Safe to call more than once; unblocks any pending
// send first so the writer cannot deadlock against a gone reader.
func (s *Stream) Close() {
	s.closeOnce.Do(func() {
		close(s.done)
		s.mu.Lock()
		s.closed = true
		close(s.events)
		s.mu.Unlock()
	})
}

func (s *Stream) send(ev Event) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.closed {
		return
	}
	select {
	case s.events <- ev:
	case <-s.done:
	}
}
