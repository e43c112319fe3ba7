// package ui holds the demo's lightweight UI state: the transient status
// message with its epoch-guarded expiry timer, visibility levels, background
// selection, and the event/action types exchanged with the frame controller.
package ui

import (
	"sync"
	"time"
)

// messageTimeout is how long a transient message stays visible.
const messageTimeout = 5 * time.Second

// Poster delivers an asynchronous user event back to the control thread's
// event queue. Implemented by the platform window.
type Poster interface {
	// PushUserEvent enqueues a user event carrying an identifier and payload.
	//
	// Parameters:
	//   - id: the user event identifier
	//   - data: the event payload
	PushUserEvent(id, data uint32)
}

// Notifier owns the transient UI message and its expiry bookkeeping. Each
// Emit advances a monotonic epoch and starts an independent timer carrying
// the epoch it expects to expire; a timer whose epoch no longer matches the
// live one is ignored at consumption time. No timer is ever cancelled — the
// epoch comparison is the cancellation mechanism, so any number of timers may
// be in flight concurrently.
type Notifier struct {
	mu      *sync.Mutex
	message string
	epoch   uint32

	eventID uint32
	poster  Poster
	timeout time.Duration
}

// NewNotifier creates a Notifier that posts expiry events with the given
// user-event id through the poster.
//
// Parameters:
//   - eventID: the user event identifier allocated for message expiry
//   - poster: the window-side user event queue
//
// Returns:
//   - *Notifier: the newly created notifier
func NewNotifier(eventID uint32, poster Poster) *Notifier {
	return &Notifier{
		mu:      &sync.Mutex{},
		eventID: eventID,
		poster:  poster,
		timeout: messageTimeout,
	}
}

// Emit sets the current message text and schedules its expiry. An empty
// message is a no-op. The spawned timer fires after the notifier's timeout
// and posts a user event carrying the epoch captured at emission; it does not
// clear anything itself.
func (n *Notifier) Emit(message string) {
	if message == "" {
		return
	}

	n.mu.Lock()
	n.message = message
	n.epoch++
	expectedEpoch := n.epoch
	n.mu.Unlock()

	go func() {
		time.Sleep(n.timeout)
		n.poster.PushUserEvent(n.eventID, expectedEpoch)
	}()
}

// Expire handles a message-expiry user event. The message is cleared only if
// both the event id and the carried epoch match the live state; an event from
// a superseded message's timer is a no-op.
//
// Parameters:
//   - eventID: the id carried by the user event
//   - epoch: the expected epoch carried by the user event
//
// Returns:
//   - bool: true if the message was cleared
func (n *Notifier) Expire(eventID, epoch uint32) bool {
	n.mu.Lock()
	defer n.mu.Unlock()
	if eventID != n.eventID || epoch != n.epoch {
		return false
	}
	n.message = ""
	return true
}

// Message returns the current message text, or the empty string if none is
// live.
func (n *Notifier) Message() string {
	n.mu.Lock()
	defer n.mu.Unlock()
	return n.message
}

// EventID returns the user-event identifier this notifier posts with.
func (n *Notifier) EventID() uint32 {
	return n.eventID
}

// setTimeout adjusts the expiry window. Used by tests to avoid real sleeps.
func (n *Notifier) setTimeout(d time.Duration) {
	n.timeout = d
}
