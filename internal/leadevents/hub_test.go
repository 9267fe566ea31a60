package leadevents

import (
	"fmt"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func receiveEvent(t *testing.T, sub *Subscription) Event {
	t.Helper()
	select {
	case event := <-sub.Events():
		return event
	case <-time.After(time.Second):
		t.Fatal("timed out waiting for event")
		return Event{}
	}
}

func TestHubFanOut(t *testing.T) {
	hub := NewHub()

	first, _, err := hub.Subscribe("42")
	require.NoError(t, err)
	defer first.Close()
	second, _, err := hub.Subscribe("42")
	require.NoError(t, err)
	defer second.Close()

	hub.Publish("42", NewEvent("42", TypeProcessing, SourcePipeline))

	assert.Equal(t, TypeProcessing, receiveEvent(t, first).Type)
	assert.Equal(t, TypeProcessing, receiveEvent(t, second).Type)
}

func TestHubReplaysHistoryToLateSubscribers(t *testing.T) {
	hub := NewHub()

	hub.Publish("42", NewEvent("42", TypeProcessing, SourcePipeline))
	completed := NewEvent("42", TypeCompleted, SourcePipeline)
	completed.LeadsCount = 10
	hub.Publish("42", completed)

	sub, backlog, err := hub.Subscribe("42")
	require.NoError(t, err)
	defer sub.Close()

	require.Len(t, backlog, 2)
	assert.Equal(t, TypeProcessing, backlog[0].Type)
	assert.Equal(t, TypeCompleted, backlog[1].Type)
	assert.Equal(t, 10, backlog[1].LeadsCount)
}

func TestHubBoundsReplayBuffer(t *testing.T) {
	hub := NewHub()

	for i := 0; i < DefaultBufferSize+25; i++ {
		event := NewEvent("42", TypeProcessing, SourcePipeline)
		event.Message = fmt.Sprintf("event-%d", i)
		hub.Publish("42", event)
	}

	_, backlog, err := hub.Subscribe("42")
	require.NoError(t, err)
	require.Len(t, backlog, DefaultBufferSize)
	assert.Equal(t, "event-25", backlog[0].Message, "oldest events are dropped first")
}

func TestHubStreamsAreIsolated(t *testing.T) {
	hub := NewHub()

	sub, _, err := hub.Subscribe("a")
	require.NoError(t, err)
	defer sub.Close()

	hub.Publish("b", NewEvent("b", TypeCompleted, SourcePipeline))

	select {
	case event := <-sub.Events():
		t.Fatalf("unexpected event %+v", event)
	case <-time.After(50 * time.Millisecond):
	}
}

func TestHubSlowSubscriberDoesNotBlockPublish(t *testing.T) {
	hub := NewHub()
	sub, _, err := hub.Subscribe("42")
	require.NoError(t, err)
	defer sub.Close()

	done := make(chan struct{})
	go func() {
		defer close(done)
		for i := 0; i < DefaultSubscriberBuffer*3; i++ {
			hub.Publish("42", NewEvent("42", TypeProcessing, SourcePipeline))
		}
	}()

	select {
	case <-done:
	case <-time.After(2 * time.Second):
		t.Fatal("publish blocked on a full subscriber")
	}
}

func TestHubCloseIsIdempotent(t *testing.T) {
	hub := NewHub()
	sub, _, err := hub.Subscribe("42")
	require.NoError(t, err)

	sub.Close()
	sub.Close()

	// Publishing after close must not panic.
	hub.Publish("42", NewEvent("42", TypeCompleted, SourcePipeline))
}

func TestHubRejectsEmptySearchID(t *testing.T) {
	hub := NewHub()
	_, _, err := hub.Subscribe("  ")
	assert.Error(t, err)
}
