package notify_test

import (
	"testing"

	"github.com/google/uuid"
	"github.com/intermeet/backend/internal/notify"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestHub_PublishToRoomSubscribers(t *testing.T) {
	hub := notify.NewHub()
	roomA := uuid.New()
	roomB := uuid.New()

	subA := hub.Subscribe(roomA)
	subB := hub.Subscribe(roomB)
	defer hub.Unsubscribe(roomB, subB)

	hub.Publish(notify.Event{Type: notify.EventEntryRequested, RoomID: roomA, DisplayName: "bob"})

	select {
	case event := <-subA.Events:
		assert.Equal(t, notify.EventEntryRequested, event.Type)
		assert.Equal(t, "bob", event.DisplayName)
	default:
		t.Fatal("expected an event for the subscribed room")
	}

	select {
	case <-subB.Events:
		t.Fatal("event leaked into another room")
	default:
	}

	hub.Unsubscribe(roomA, subA)
	_, open := <-subA.Events
	assert.False(t, open, "unsubscribe closes the channel")
}

func TestHub_SlowSubscriberDoesNotBlock(t *testing.T) {
	hub := notify.NewHub()
	roomID := uuid.New()
	sub := hub.Subscribe(roomID)
	defer hub.Unsubscribe(roomID, sub)

	// Overflow the buffer; Publish must not block or panic.
	for i := 0; i < 100; i++ {
		hub.Publish(notify.Event{Type: notify.EventDecision, RoomID: roomID})
	}

	received := 0
	for {
		select {
		case <-sub.Events:
			received++
			continue
		default:
		}
		break
	}
	require.Greater(t, received, 0)
	assert.LessOrEqual(t, received, 16)
}

func TestHub_PublishDuringUnsubscribeDoesNotPanic(t *testing.T) {
	hub := notify.NewHub()
	roomID := uuid.New()

	done := make(chan struct{})
	go func() {
		defer close(done)
		for i := 0; i < 2000; i++ {
			hub.Publish(notify.Event{Type: notify.EventDecision, RoomID: roomID})
		}
	}()

	// Churn subscribers while publishes are in flight. A send racing a
	// channel close panics, so surviving the churn is the assertion.
	for i := 0; i < 500; i++ {
		sub := hub.Subscribe(roomID)
		hub.Unsubscribe(roomID, sub)
	}
	<-done
}

func TestHub_UnsubscribeTwiceIsSafe(t *testing.T) {
	hub := notify.NewHub()
	roomID := uuid.New()
	sub := hub.Subscribe(roomID)

	hub.Unsubscribe(roomID, sub)
	hub.Unsubscribe(roomID, sub)

	hub.Publish(notify.Event{Type: notify.EventRoomEnded, RoomID: roomID})
}
