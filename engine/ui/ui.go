package ui

import (
	"github.com/vectra-gfx/vectra/common"
)

// Visibility controls how much UI is computed and drawn each frame.
type Visibility int

const (
	// VisibilityNone draws no overlay and skips stats accumulation.
	VisibilityNone Visibility = iota

	// VisibilityStats accumulates and reports render statistics only.
	VisibilityStats

	// VisibilityAll additionally processes overlay interactions.
	VisibilityAll
)

// Next cycles to the following visibility level, wrapping around.
func (v Visibility) Next() Visibility {
	switch v {
	case VisibilityNone:
		return VisibilityStats
	case VisibilityStats:
		return VisibilityAll
	default:
		return VisibilityNone
	}
}

// Background selects the clear color scheme behind the scene.
type Background int

const (
	// BackgroundNone clears to black and suppresses environment drawing.
	BackgroundNone Background = iota

	// BackgroundDark clears to a dark gray.
	BackgroundDark

	// BackgroundLight clears to a light gray. This is the default.
	BackgroundLight
)

// Next cycles to the following background, wrapping around.
func (b Background) Next() Background {
	switch b {
	case BackgroundNone:
		return BackgroundDark
	case BackgroundDark:
		return BackgroundLight
	default:
		return BackgroundNone
	}
}

// Color returns the clear color for the background as normalized RGBA.
func (b Background) Color() [4]float32 {
	switch b {
	case BackgroundDark:
		return [4]float32{32.0 / 255, 32.0 / 255, 32.0 / 255, 1}
	case BackgroundLight:
		return [4]float32{248.0 / 255, 248.0 / 255, 248.0 / 255, 1}
	default:
		return [4]float32{0, 0, 0, 1}
	}
}

// MousePosition is a mouse location in device pixels, along with the motion
// relative to the previously observed position.
type MousePosition struct {
	Absolute common.Vec2i
	Relative common.Vec2i
}

// EventKind discriminates UI events collected during a tick.
type EventKind int

const (
	// EventMouseDown is an unhandled mouse press.
	EventMouseDown EventKind = iota

	// EventMouseDragged is mouse motion with a button held.
	EventMouseDragged
)

// Event is a UI event gathered while preparing a frame and dispatched back
// into camera/mouselook state when the frame finishes.
type Event struct {
	Kind     EventKind
	Position MousePosition
}

// ActionKind discriminates deferred UI actions.
type ActionKind int

const (
	// ActionNone is the zero action.
	ActionNone ActionKind = iota

	// ActionTakeScreenshot requests a framebuffer capture to the given path.
	ActionTakeScreenshot

	// ActionZoomIn zooms the 2D camera in about the viewport center.
	ActionZoomIn

	// ActionZoomOut zooms the 2D camera out about the viewport center.
	ActionZoomOut

	// ActionRotate sets the 2D camera rotation about the viewport center.
	ActionRotate
)

// Action is a deferred UI action raised during overlay interaction and
// consumed when the frame finishes.
type Action struct {
	Kind           ActionKind
	ScreenshotPath string
	RotationAngle  float32
}

// State is the mutable UI state owned by the control thread.
type State struct {
	// Mode is the camera mode the UI requests. The frame controller performs
	// the actual (deferred) switch when it differs from the live camera.
	Mode common.Mode

	// Visibility is the current overlay level.
	Visibility Visibility

	// Background is the current clear color scheme.
	Background Background

	// StemDarkening enables the stem darkening text effect.
	StemDarkening bool

	// SubpixelAA enables subpixel antialiasing.
	SubpixelAA bool

	// GammaCorrection enables gamma-corrected monochrome rendering.
	GammaCorrection bool
}
