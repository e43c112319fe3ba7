// package renderer draws built vector scenes through a WebGPU backend: it
// owns the surface, the line pipelines, and the per-frame encoder state, and
// exposes a viewport-oriented frame lifecycle to the frame controller.
package renderer

import (
	"github.com/cogentcore/webgpu/wgpu"

	"github.com/vectra-gfx/vectra/common"
	"github.com/vectra-gfx/vectra/engine/scene"
)

// PresentMode controls how rendered frames are presented to the display surface.
type PresentMode int

const (
	// PresentModeVSync waits for the next vertical blank before presenting, capping frame rate
	// to the monitor's refresh rate. Eliminates tearing.
	PresentModeVSync PresentMode = iota

	// PresentModeUncapped presents frames immediately without waiting for vertical blank.
	// May cause screen tearing but provides the lowest latency.
	PresentModeUncapped
)

// MSAASampleCount controls the number of samples used for multisample anti-aliasing (MSAA).
// WebGPU guarantees support for 1 (off) and 4; higher values are adapter-dependent.
type MSAASampleCount uint32

const (
	// MSAAOff disables multisample anti-aliasing (sample count 1).
	MSAAOff MSAASampleCount = 1

	// MSAA4x enables 4× multisample anti-aliasing. This is the default.
	MSAA4x MSAASampleCount = 4
)

// Renderer is the drawing surface abstraction used by the frame controller.
// A frame is bracketed by BeginFrame and Present; between them the controller
// selects viewports and issues draws, in order.
type Renderer interface {
	// ConfigureSurface (re)configures the swapchain and frame attachments for
	// the given surface size in pixels. Must be called before the first frame
	// and after every resize.
	//
	// Parameters:
	//   - size: the new surface size in pixels
	ConfigureSurface(size common.Vec2i)

	// SetPresentMode sets the surface present mode. Takes effect at the next
	// ConfigureSurface call.
	//
	// Parameters:
	//   - mode: the PresentMode to use (VSync or Uncapped)
	SetPresentMode(mode PresentMode)

	// BeginFrame acquires the next swapchain texture, clears it to the given
	// color, and begins the frame's render pass. Must be paired with EndFrame.
	//
	// Parameters:
	//   - clearColor: normalized RGBA clear color
	//
	// Returns:
	//   - error: an error if the swapchain texture could not be acquired
	BeginFrame(clearColor [4]float32) error

	// SetViewport restricts subsequent draws to the given pixel rectangle.
	// Scene vertices are interpreted relative to this rectangle's origin.
	//
	// Parameters:
	//   - viewport: the viewport rectangle in surface pixels
	SetViewport(viewport common.RectI)

	// DrawGround draws the ground plane (solid fill plus gridlines) under the
	// given clip-space transform within the current viewport.
	//
	// Parameters:
	//   - transform: the combined perspective and placement transform
	DrawGround(transform common.Transform3D)

	// DrawScene draws one built scene into the current viewport as stroked
	// contours with per-vertex color.
	//
	// Parameters:
	//   - built: the built scene to draw
	DrawScene(built *scene.BuiltScene)

	// EndFrame ends the render pass and submits the command buffer to the GPU.
	// Does not present — call Present after any readback.
	EndFrame()

	// ReadPixels reads the current frame's surface contents back to the CPU as
	// tightly packed RGBA bytes. Only valid between EndFrame and Present.
	//
	// Returns:
	//   - []byte: the pixel data, 4 bytes per pixel, rows top to bottom
	//   - int: image width in pixels
	//   - int: image height in pixels
	//   - error: an error if the readback failed
	ReadPixels() ([]byte, int, int, error)

	// Present presents the surface to the display and releases the swapchain
	// texture. Must be called once per frame after EndFrame.
	Present()

	// Release frees all GPU resources held by the renderer.
	Release()
}

// NewRenderer creates a WebGPU renderer targeting the given surface.
//
// Parameters:
//   - surfaceDescriptor: the platform surface to render into
//   - opts: functional options applied during construction
//
// Returns:
//   - Renderer: the newly created renderer
func NewRenderer(surfaceDescriptor *wgpu.SurfaceDescriptor, opts ...RendererBuilderOption) Renderer {
	return newWGPURenderer(surfaceDescriptor, opts...)
}
