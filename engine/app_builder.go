package engine

import (
	"github.com/vectra-gfx/vectra/engine/renderer"
	"github.com/vectra-gfx/vectra/engine/window"
)

// AppBuilderOption is a functional option applied to an App during construction via NewApp.
type AppBuilderOption func(*App)

// WithWindow sets the platform window the app reads events from and presents to.
//
// Parameters:
//   - w: the window
//
// Returns:
//   - AppBuilderOption: a function that applies the window option to an app
func WithWindow(w window.Window) AppBuilderOption {
	return func(a *App) {
		a.window = w
	}
}

// WithRenderer sets the renderer the app draws through.
//
// Parameters:
//   - r: the renderer
//
// Returns:
//   - AppBuilderOption: a function that applies the renderer option to an app
func WithRenderer(r renderer.Renderer) AppBuilderOption {
	return func(a *App) {
		a.renderer = r
	}
}

// WithOptions sets the app configuration. When not given, DefaultOptions is used.
//
// Parameters:
//   - o: the options
//
// Returns:
//   - AppBuilderOption: a function that applies the options to an app
func WithOptions(o Options) AppBuilderOption {
	return func(a *App) {
		a.options = o
	}
}
