// package window provides platform windowing and input collection. Events are
// pulled once per frame through PollEvents rather than dispatched through
// callbacks, so the frame controller sees one ordered batch per tick.
package window

import (
	"fmt"
	"sync"

	"github.com/cogentcore/webgpu/wgpu"

	"github.com/vectra-gfx/vectra/common"
)

// defaultBarrelDistortion are lens distortion coefficients in the range of
// common cardboard-style viewers.
var defaultBarrelDistortion = common.DistortionCoefficients{K1: 0.34, K2: 0.55}

// Window provides platform windowing and input event handling.
// Wraps platform-specific window implementations with a common interface.
type Window interface {
	// PollEvents processes pending platform messages and returns every event
	// that occurred since the previous call, in order. User events posted from
	// other goroutines are included.
	//
	// Returns:
	//   - []Event: the ordered events for this tick (may be empty)
	PollEvents() []Event

	// Size returns the current framebuffer size in pixels.
	//
	// Returns:
	//   - common.Vec2i: the framebuffer size
	Size() common.Vec2i

	// Viewport returns the pixel rectangle for the viewport at the given index
	// under the given camera mode. Stereo modes split the framebuffer into a
	// left and right half.
	//
	// Parameters:
	//   - mode: the camera mode
	//   - index: the viewport index, in [0, mode.ViewportCount())
	//
	// Returns:
	//   - common.RectI: the viewport rectangle in pixels
	Viewport(mode common.Mode, index int) common.RectI

	// CreateUserEventID allocates a unique identifier for user events.
	//
	// Returns:
	//   - uint32: the allocated identifier
	CreateUserEventID() uint32

	// PushUserEvent enqueues a user event from any goroutine. The event is
	// delivered by a later PollEvents call on the main thread.
	//
	// Parameters:
	//   - id: the user event identifier
	//   - data: the event payload
	PushUserEvent(id, data uint32)

	// BarrelDistortion returns the lens distortion coefficients for stereo
	// rendering on this window.
	//
	// Returns:
	//   - common.DistortionCoefficients: the distortion coefficients
	BarrelDistortion() common.DistortionCoefficients

	// SurfaceDescriptor returns a wgpu.SurfaceDescriptor suitable for creating a WebGPU surface.
	// The descriptor is platform-appropriate (Windows HWND, X11 Xlib, Wayland, macOS Metal, etc.)
	// and is created by the wgpuglfw bridge from the underlying GLFW window.
	//
	// Returns:
	//   - *wgpu.SurfaceDescriptor: the platform-specific surface descriptor, or nil if window is not initialized
	SurfaceDescriptor() *wgpu.SurfaceDescriptor

	// IsRunning returns true if the window is still active.
	//
	// Returns:
	//   - bool: true if window is running, false if closed
	IsRunning() bool

	// Close closes the window and releases platform resources.
	//
	// Returns:
	//   - error: error if close operation fails
	Close() error
}

// engineWindow is the implementation of the Window interface.
// Holds window configuration, GLFW state, and the pending event queue.
type engineWindow struct {
	// title is the window title displayed in the title bar.
	title string

	// width is the current framebuffer width in pixels.
	width int

	// height is the current framebuffer height in pixels.
	height int

	// internalWindow holds the platform-specific window data (glfwWindow).
	internalWindow any

	// pending is the ordered event queue filled by platform callbacks. Only
	// touched on the main thread during PollEvents.
	pending []Event

	// userMu guards userEvents, which may be appended from any goroutine.
	userMu     sync.Mutex
	userEvents []Event

	// nextUserEventID is the next identifier handed out by CreateUserEventID.
	nextUserEventID uint32

	// leftButtonHeld tracks whether cursor motion is a drag.
	leftButtonHeld bool

	distortion common.DistortionCoefficients
}

var _ Window = &engineWindow{}

// NewWindow creates a new Window with the specified options.
// Applies default values first, then each option in order.
//
// Parameters:
//   - options: functional options to configure the window
//
// Returns:
//   - Window: the configured window
func NewWindow(options ...WindowBuilderOption) Window {
	w := &engineWindow{
		title:      "Vectra",
		width:      1067,
		height:     800,
		distortion: defaultBarrelDistortion,
	}
	for _, opt := range options {
		opt(w)
	}
	if err := newPlatformWindow(w); err != nil {
		panic(fmt.Sprintf("failed to create platform window: %v", err))
	}
	return w
}

func (w *engineWindow) PollEvents() []Event {
	platformProcessMessages(w)

	events := w.pending
	w.pending = nil

	w.userMu.Lock()
	if len(w.userEvents) > 0 {
		events = append(events, w.userEvents...)
		w.userEvents = nil
	}
	w.userMu.Unlock()

	if !platformIsRunningCheck(w) {
		events = append(events, Event{Kind: EventQuit})
	}
	return events
}

func (w *engineWindow) Size() common.Vec2i {
	return common.Vec2i{X: w.width, Y: w.height}
}

func (w *engineWindow) Viewport(mode common.Mode, index int) common.RectI {
	size := w.Size()
	if mode.ViewportCount() == 1 {
		return common.RectI{Size: size}
	}
	half := common.Vec2i{X: size.X / 2, Y: size.Y}
	return common.RectI{
		Origin: common.Vec2i{X: index * half.X},
		Size:   half,
	}
}

func (w *engineWindow) CreateUserEventID() uint32 {
	w.userMu.Lock()
	defer w.userMu.Unlock()
	w.nextUserEventID++
	return w.nextUserEventID
}

func (w *engineWindow) PushUserEvent(id, data uint32) {
	w.userMu.Lock()
	w.userEvents = append(w.userEvents, Event{Kind: EventUser, UserID: id, UserData: data})
	w.userMu.Unlock()
	platformWake()
}

func (w *engineWindow) BarrelDistortion() common.DistortionCoefficients {
	return w.distortion
}

func (w *engineWindow) SurfaceDescriptor() *wgpu.SurfaceDescriptor {
	return platformGetSurfaceDescriptor(w)
}

func (w *engineWindow) IsRunning() bool {
	return platformIsRunningCheck(w)
}

func (w *engineWindow) Close() error {
	return platformCloseWindow(w)
}
