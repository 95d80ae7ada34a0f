package realtime

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// Hubs in tests run without Redis, which exercises the process-local
// delivery path used whenever Redis is unavailable.

func recvOne(t *testing.T, sub *Subscriber) Event {
	t.Helper()
	select {
	case ev := <-sub.C:
		return ev
	case <-time.After(time.Second):
		t.Fatal("no event received")
		return Event{}
	}
}

func TestPublishReachesAllShowViewers(t *testing.T) {
	h := NewHub(nil)
	a := h.Subscribe(1, "conn-a")
	b := h.Subscribe(1, "conn-b")

	h.Publish(context.Background(), Event{Type: SeatsBlocked, ShowID: 1, Seats: []string{"A1"}, HolderID: 9})

	for _, sub := range []*Subscriber{a, b} {
		ev := recvOne(t, sub)
		assert.Equal(t, SeatsBlocked, ev.Type)
		assert.Equal(t, []string{"A1"}, ev.Seats)
		assert.Equal(t, uint64(9), ev.HolderID)
	}
}

func TestPublishIsScopedToTheShow(t *testing.T) {
	h := NewHub(nil)
	viewer1 := h.Subscribe(1, "c1")
	viewer2 := h.Subscribe(2, "c2")

	h.Publish(context.Background(), Event{Type: BookingConfirmed, ShowID: 2, Seats: []string{"B2"}})

	recvOne(t, viewer2)
	select {
	case ev := <-viewer1.C:
		t.Fatalf("show 1 viewer received event for show 2: %+v", ev)
	case <-time.After(50 * time.Millisecond):
	}
}

func TestOriginConnectionIsExcluded(t *testing.T) {
	h := NewHub(nil)
	origin := h.Subscribe(5, "origin-conn")
	other := h.Subscribe(5, "other-conn")

	h.Publish(context.Background(), Event{
		Type: SeatsUnblocked, ShowID: 5, Seats: []string{"C3"}, Origin: "origin-conn",
	})

	recvOne(t, other)
	select {
	case ev := <-origin.C:
		t.Fatalf("origin received its own echo: %+v", ev)
	case <-time.After(50 * time.Millisecond):
	}
}

func TestUnsubscribeClosesChannelAndStopsDelivery(t *testing.T) {
	h := NewHub(nil)
	sub := h.Subscribe(3, "c")
	h.Unsubscribe(sub)

	_, open := <-sub.C
	require.False(t, open, "channel must be closed on unsubscribe")

	// Publishing afterwards must not panic or deliver.
	h.Publish(context.Background(), Event{Type: BookingCancelled, ShowID: 3, Seats: []string{"D1"}})
}

func TestSlowSubscriberDropsInsteadOfBlocking(t *testing.T) {
	h := NewHub(nil)
	sub := h.Subscribe(8, "slow")

	done := make(chan struct{})
	go func() {
		// Overfill the buffer; Publish must never block.
		for i := 0; i < subscriberBuffer+10; i++ {
			h.Publish(context.Background(), Event{Type: SeatsBlocked, ShowID: 8, Seats: []string{"A1"}})
		}
		close(done)
	}()

	select {
	case <-done:
	case <-time.After(2 * time.Second):
		t.Fatal("publish blocked on a slow subscriber")
	}
	assert.Len(t, sub.C, subscriberBuffer)
}
