package chat

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func drain(s *Stream) []Event {
	var events []Event
	for ev := range s.Events() {
		events = append(events, ev)
	}
	return events
}

func TestStreamEmitsExactlyOneTerminalEvent(t *testing.T) {
	t.Run("ErrorThenFinal", func(t *testing.T) {
		s := NewStream(8)
		s.Error("boom", "task-1")
		s.Final(FinalPayload{Reply: "late"})
		s.Close()

		events := drain(s)
		require.Len(t, events, 1)
		assert.Equal(t, EventError, events[0].Type)
		assert.Equal(t, "task-1", events[0].CorrelationID)
	})

	t.Run("FinalThenError", func(t *testing.T) {
		s := NewStream(8)
		s.Final(FinalPayload{Reply: "done", TaskID: "task-2"})
		s.Error("late", "task-2")
		s.Close()

		events := drain(s)
		require.Len(t, events, 1)
		assert.Equal(t, EventFinal, events[0].Type)
		require.NotNil(t, events[0].Final)
		assert.Equal(t, "done", events[0].Final.Reply)
	})
}

func TestStreamOrderingIsPreserved(t *testing.T) {
	s := NewStream(8)
	s.Status("assembling_context")
	s.Delta("hel")
	s.Delta("lo")
	s.Final(FinalPayload{Reply: "hello"})
	s.Close()

	events := drain(s)
	require.Len(t, events, 4)
	assert.Equal(t, EventStatus, events[0].Type)
	assert.Equal(t, EventDelta, events[1].Type)
	assert.Equal(t, "hel", events[1].Text)
	assert.Equal(t, EventDelta, events[2].Type)
	assert.Equal(t, EventFinal, events[3].Type)
	assert.True(t, events[3].Terminal())
}

func TestStreamCloseUnblocksWriter(t *testing.T) {
	s := NewStream(0)

	sent := make(chan struct{})
	go func() {
		// No reader; this blocks until Close.
		s.Delta("stuck")
		close(sent)
	}()

	time.Sleep(10 * time.Millisecond)
	s.Close()

	select {
	case <-sent:
	case <-time.After(time.Second):
		t.Fatal("writer stayed blocked after Close")
	}

	// Sends after Close are dropped, not panics.
	s.Status("ignored")
	s.Close()
}

func TestStreamHeartbeat(t *testing.T) {
	s := NewStream(8)
	stop := s.StartHeartbeat(5 * time.Millisecond)
	defer stop()

	select {
	case ev := <-s.Events():
		assert.Equal(t, EventHeartbeat, ev.Type)
	case <-time.After(time.Second):
		t.Fatal("no heartbeat arrived")
	}
	stop()
	s.Close()
}
