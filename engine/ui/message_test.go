package ui

import (
	"testing"
	"time"
)

// fakePoster records pushed user events and signals each arrival.
type fakePoster struct {
	events chan [2]uint32
}

func newFakePoster() *fakePoster {
	return &fakePoster{events: make(chan [2]uint32, 16)}
}

func (p *fakePoster) PushUserEvent(id, data uint32) {
	p.events <- [2]uint32{id, data}
}

func (p *fakePoster) next(t *testing.T) (uint32, uint32) {
	t.Helper()
	select {
	case e := <-p.events:
		return e[0], e[1]
	case <-time.After(2 * time.Second):
		t.Fatal("timed out waiting for a user event")
		return 0, 0
	}
}

func TestEmitSetsMessageAndPostsExpiry(t *testing.T) {
	poster := newFakePoster()
	n := NewNotifier(7, poster)
	n.setTimeout(time.Millisecond)

	n.Emit("hello")
	if got := n.Message(); got != "hello" {
		t.Fatalf("Message() = %q, want %q", got, "hello")
	}

	id, epoch := poster.next(t)
	if id != 7 {
		t.Fatalf("expiry posted with id %d, want 7", id)
	}
	if !n.Expire(id, epoch) {
		t.Fatal("matching expiry must clear the message")
	}
	if n.Message() != "" {
		t.Fatal("message not cleared after matching expiry")
	}
}

func TestEmptyMessageIsNoOp(t *testing.T) {
	poster := newFakePoster()
	n := NewNotifier(1, poster)
	n.setTimeout(time.Millisecond)

	n.Emit("")
	select {
	case <-poster.events:
		t.Fatal("empty message must not schedule an expiry")
	case <-time.After(20 * time.Millisecond):
	}
}

func TestSupersededTimerIsIgnored(t *testing.T) {
	poster := newFakePoster()
	n := NewNotifier(3, poster)
	n.setTimeout(time.Millisecond)

	n.Emit("first")
	n.Emit("second")

	// Both timers fire; only the second epoch is live.
	_, epochA := poster.next(t)
	_, epochB := poster.next(t)
	stale, live := epochA, epochB
	if epochB < epochA {
		stale, live = epochB, epochA
	}

	if n.Expire(3, stale) {
		t.Fatal("stale epoch must not clear the message")
	}
	if got := n.Message(); got != "second" {
		t.Fatalf("message after stale expiry = %q, want %q", got, "second")
	}
	if !n.Expire(3, live) {
		t.Fatal("live epoch must clear the message")
	}
}

func TestExpireChecksEventID(t *testing.T) {
	poster := newFakePoster()
	n := NewNotifier(5, poster)
	n.setTimeout(time.Millisecond)

	n.Emit("text")
	_, epoch := poster.next(t)
	if n.Expire(99, epoch) {
		t.Fatal("mismatched event id must not clear the message")
	}
	if n.Message() != "text" {
		t.Fatal("message cleared by a foreign event id")
	}
}

func TestVisibilityAndBackgroundCycle(t *testing.T) {
	v := VisibilityNone
	seen := map[Visibility]bool{}
	for i := 0; i < 3; i++ {
		seen[v] = true
		v = v.Next()
	}
	if v != VisibilityNone || len(seen) != 3 {
		t.Fatalf("visibility cycle broken: landed on %v after 3 steps", v)
	}

	b := BackgroundNone
	for i := 0; i < 3; i++ {
		b = b.Next()
	}
	if b != BackgroundNone {
		t.Fatalf("background cycle broken: landed on %v after 3 steps", b)
	}

	if BackgroundDark.Color() == BackgroundLight.Color() {
		t.Fatal("dark and light backgrounds must differ")
	}
}
