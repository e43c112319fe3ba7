package window

import (
	"github.com/vectra-gfx/vectra/common"
)

// EventKind discriminates window events.
type EventKind int

const (
	// EventQuit signals that the window was asked to close.
	EventQuit EventKind = iota

	// EventResized signals a framebuffer size change.
	EventResized

	// EventKeyDown is a key press or repeat.
	EventKeyDown

	// EventKeyUp is a key release.
	EventKeyUp

	// EventMouseDown is a left mouse button press.
	EventMouseDown

	// EventMouseMoved is cursor motion with no button held.
	EventMouseMoved

	// EventMouseDragged is cursor motion with the left button held.
	EventMouseDragged

	// EventZoom is a scroll wheel movement over the window.
	EventZoom

	// EventOpenScene is a file dropped onto the window.
	EventOpenScene

	// EventUser is an application-defined event posted through PushUserEvent.
	EventUser
)

// Event is one window event. Payload fields are populated according to Kind;
// events are delivered strictly in the order they occurred.
type Event struct {
	Kind EventKind

	// Size is the new framebuffer size for EventResized.
	Size common.Vec2i

	// Key is the key code for EventKeyDown and EventKeyUp.
	Key uint32

	// Position is the cursor position in pixels for mouse events.
	Position common.Vec2i

	// ZoomDelta is the scroll amount for EventZoom. Positive zooms in.
	ZoomDelta float32

	// Path is the dropped file path for EventOpenScene.
	Path string

	// UserID and UserData carry the payload of an EventUser.
	UserID   uint32
	UserData uint32
}
