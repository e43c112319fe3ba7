// package engine ties the demo together: it owns the per-tick frame contract
// (prepare, draw viewports, finish), the camera and UI state on the control
// thread, and the proxy to the scene build worker. Exactly one build result is
// consumed per tick; with pipelining enabled the worker runs one tick ahead.
package engine

import (
	"fmt"
	"image"
	"image/png"
	"log"
	"os"
	"time"

	"github.com/vectra-gfx/vectra/common"
	"github.com/vectra-gfx/vectra/engine/camera"
	"github.com/vectra-gfx/vectra/engine/profiler"
	"github.com/vectra-gfx/vectra/engine/renderer"
	"github.com/vectra-gfx/vectra/engine/scene"
	"github.com/vectra-gfx/vectra/engine/ui"
	"github.com/vectra-gfx/vectra/engine/window"
)

const (
	// mouselookRotationSpeed converts dragged pixels to radians of yaw/pitch.
	mouselookRotationSpeed = 0.007

	// cameraVelocity is the per-tick camera speed in normalized world units.
	cameraVelocity = 0.02

	// cameraZoomAmount2D is the zoom step per scroll notch or zoom action.
	cameraZoomAmount2D = 0.1

	// approxFontSize approximates the scene's text size in points for the stem
	// darkening dilation.
	approxFontSize = 16

	// groundScale sizes the ground plane relative to the view box's larger side.
	groundScale = 2.0
)

// Frame is the in-flight frame between PrepareFrame and FinishFrame: the
// build result being drawn, the tick's UI events awaiting dispatch, and the
// render statistics accumulated per viewport.
type Frame struct {
	built     *scene.BuiltFrame
	uiEvents  []ui.Event
	stats     scene.Stats
	drawStart time.Time
}

// App is the frame controller. It owns the window, renderer, camera and UI
// state on the control thread, and talks to the build worker through a proxy.
// Methods must be called from the main thread, once per tick, in the order
// PrepareFrame, DrawViewport × count, FinishFrame.
type App struct {
	window   window.Window
	renderer renderer.Renderer
	options  Options

	proxy    *scene.Proxy
	camera   *camera.Camera
	uiState  ui.State
	notifier *ui.Notifier
	profiler *profiler.Profiler

	// sceneViewBox is the control thread's copy of the loaded scene's logical
	// extents; the worker-owned scene's view box tracks the viewport instead.
	sceneViewBox common.RectF

	frameCounter uint64
	dirty        bool
	exit         bool

	currentFrame *Frame

	lastMousePosition common.Vec2i
	pressedVelocity   common.Vec3

	// mouselookEnabled is toggled by an unhandled mouse press in the 3D modes;
	// while set, plain mouse motion accumulates yaw and pitch.
	mouselookEnabled bool

	pendingActions []ui.Action
	pendingScenes  []string

	// fatalf terminates the process on unrecoverable worker conditions.
	// Swapped out by tests so the boundary can be observed without exiting.
	fatalf func(format string, args ...any)
}

// NewApp builds the frame controller from its collaborators and starts the
// scene build worker.
//
// Parameters:
//   - opts: functional options; WithWindow, WithRenderer and WithOptions are required
//
// Returns:
//   - *App: the newly created app
func NewApp(opts ...AppBuilderOption) *App {
	a := &App{
		options: DefaultOptions(),
		fatalf:  log.Fatalf,
	}
	for _, opt := range opts {
		opt(a)
	}
	if a.window == nil || a.renderer == nil {
		panic("app requires a window and a renderer")
	}

	sc, warnings := a.loadInitialScene()

	a.uiState = ui.State{
		Mode:       a.options.Mode,
		Visibility: a.options.UI,
		Background: a.options.Background,
	}
	a.notifier = ui.NewNotifier(a.window.CreateUserEventID(), a.window)
	a.profiler = profiler.NewProfiler()

	a.adoptScene(sc, warnings)
	a.renderer.ConfigureSurface(a.window.Size())
	a.dirty = true

	return a
}

// loadInitialScene loads the configured input path, falling back to the
// built-in scene when no path is given.
func (a *App) loadInitialScene() (*scene.Scene, []string) {
	if a.options.InputPath == "" {
		return scene.DefaultScene(), nil
	}
	sc, warnings, err := scene.LoadFile(a.options.InputPath)
	if err != nil {
		log.Printf("failed to load %s: %v; using built-in scene", a.options.InputPath, err)
		return scene.DefaultScene(), nil
	}
	return sc, warnings
}

// adoptScene takes ownership of a freshly loaded scene: it records the
// logical view box, rebuilds the camera, hands the scene to the worker (whose
// copy gets a viewport-space view box), and reports load warnings.
func (a *App) adoptScene(sc *scene.Scene, warnings []string) {
	a.sceneViewBox = sc.ViewBox
	viewportSize := a.window.Viewport(a.uiState.Mode, 0).Size
	a.camera = camera.NewCamera(a.uiState.Mode, a.sceneViewBox, viewportSize)

	if a.proxy == nil {
		sc.ViewBox = common.RectF{Size: viewportSize.ToVec2()}
		a.proxy = scene.StartWorker(sc, a.options.Jobs)
	} else {
		a.proxy.LoadScene(sc, viewportSize)
	}

	if len(warnings) > 0 {
		a.notifier.Emit(fmt.Sprintf("Warning: these features in the scene are unsupported: %v", warnings))
	} else if color, ok := sc.MonochromeColor(); ok {
		a.notifier.Emit(fmt.Sprintf("Monochrome scene (#%02x%02x%02x); gamma correction available", color.R, color.G, color.B))
	}
}

// ShouldExit reports whether a quit event or Escape was consumed.
func (a *App) ShouldExit() bool {
	return a.exit
}

// Dirty reports whether camera or UI state changed during the last tick (or
// since construction). Hosts that redraw on demand rather than continuously
// can poll it between FinishFrame and the next PrepareFrame.
func (a *App) Dirty() bool {
	return a.dirty
}

// PostAction queues a deferred UI action for the end of the current tick.
func (a *App) PostAction(action ui.Action) {
	a.pendingActions = append(a.pendingActions, action)
}

// PrepareFrame consumes the tick's input events, requests the next build, and
// blocks until a build result is available. Exactly one result is consumed per
// call; on the very first tick with pipelining enabled, two Build commands are
// sent before the receive so the worker stays one frame ahead.
//
// Parameters:
//   - events: the ordered window events for this tick
//
// Returns:
//   - int: the number of viewports to draw this tick
func (a *App) PrepareFrame(events []window.Event) int {
	if a.currentFrame != nil {
		panic("PrepareFrame called while a frame is still live")
	}

	a.dirty = false
	uiEvents := a.handleEvents(events)

	options := a.buildOptions()
	a.proxy.Build(options)
	if a.options.Pipeline && a.frameCounter == 0 {
		a.proxy.Build(options)
	}

	result, ok := <-a.proxy.Results()
	if !ok {
		a.fatalf("scene build worker terminated unexpectedly")
		return 0
	}
	if result.Fault != nil {
		a.fatalf("scene build fault: %v\n%s", result.Fault.Recovered, result.Fault.Dump)
		return 0
	}

	a.currentFrame = &Frame{
		built:     result.Frame,
		uiEvents:  uiEvents,
		drawStart: time.Now(),
	}

	if err := a.renderer.BeginFrame(a.uiState.Background.Color()); err != nil {
		log.Printf("failed to begin frame: %v", err)
	}

	return a.camera.ViewportCount()
}

// DrawViewport draws the built scene for one viewport, preceded by the ground
// plane in the perspective modes.
//
// Parameters:
//   - index: the viewport index, in [0, PrepareFrame's return value)
func (a *App) DrawViewport(index int) {
	frame := a.currentFrame
	if frame == nil {
		panic("DrawViewport called without a prepared frame")
	}
	if index >= len(frame.built.Scenes) {
		return
	}

	viewport := a.window.Viewport(a.uiState.Mode, index)
	a.renderer.SetViewport(viewport)

	if a.camera.Is3D() && a.uiState.Background != ui.BackgroundNone {
		a.renderer.DrawGround(a.groundTransform(a.camera.Eyes[index]))
	}

	built := frame.built.Scenes[index].Built
	a.renderer.DrawScene(built)
	frame.stats = frame.stats.Add(built.Stats)
}

// FinishFrame consumes the current frame: it submits the draws, captures any
// requested screenshot, updates the stats overlay, dispatches the tick's UI
// events and deferred actions back into camera state, performs a deferred
// mode switch, presents, and advances the frame counter.
func (a *App) FinishFrame() {
	frame := a.currentFrame
	if frame == nil {
		panic("FinishFrame called without a prepared frame")
	}

	renderTime := time.Since(frame.drawStart)
	a.renderer.EndFrame()

	actions := a.pendingActions
	a.pendingActions = nil
	for _, action := range actions {
		if action.Kind == ui.ActionTakeScreenshot {
			a.takeScreenshot(action.ScreenshotPath)
		}
	}

	if a.uiState.Visibility >= ui.VisibilityStats {
		a.profiler.AddSample(frame.stats, frame.built.BuildTime, renderTime)
		a.profiler.Tick()
	}

	for _, event := range frame.uiEvents {
		a.dispatchUIEvent(event)
	}
	for _, action := range actions {
		a.applyAction(action)
	}

	if a.uiState.Mode != a.camera.Mode {
		a.switchMode(a.uiState.Mode)
	}

	for _, path := range a.pendingScenes {
		a.openScene(path)
	}
	a.pendingScenes = nil

	if a.camera.Offset(a.pressedVelocity) {
		a.dirty = true
	}

	a.renderer.Present()
	a.currentFrame = nil
	a.frameCounter++
}

// handleEvents runs the per-tick event state machine. Camera-affecting window
// events (zoom, WASD, resize, mouselook motion) apply immediately; mouse
// presses and drags are collected as UI events and dispatched when the frame
// finishes.
func (a *App) handleEvents(events []window.Event) []ui.Event {
	var uiEvents []ui.Event

	for _, event := range events {
		switch event.Kind {
		case window.EventQuit:
			a.exit = true

		case window.EventResized:
			// A resize only propagates the new size; the camera keeps its
			// accumulated state.
			a.renderer.ConfigureSurface(event.Size)
			a.proxy.SetViewportSize(a.window.Viewport(a.uiState.Mode, 0).Size)
			a.dirty = true

		case window.EventKeyDown:
			a.handleKeyDown(event.Key)

		case window.EventKeyUp:
			a.handleKeyUp(event.Key)

		case window.EventMouseDown:
			position := a.trackMouse(event.Position)
			uiEvents = append(uiEvents, ui.Event{Kind: ui.EventMouseDown, Position: position})

		case window.EventMouseDragged:
			position := a.trackMouse(event.Position)
			uiEvents = append(uiEvents, ui.Event{Kind: ui.EventMouseDragged, Position: position})
			a.dirty = true

		case window.EventMouseMoved:
			position := a.trackMouse(event.Position)
			if a.mouselookEnabled && a.camera.Is3D() {
				a.camera.Placement.Yaw += float32(position.Relative.X) * mouselookRotationSpeed
				a.camera.Placement.Pitch += float32(position.Relative.Y) * mouselookRotationSpeed
				a.dirty = true
			}

		case window.EventZoom:
			if a.camera.Mode == common.ModeTwoD {
				a.zoomAbout(1+event.ZoomDelta*cameraZoomAmount2D, event.Position.ToVec2())
			}

		case window.EventOpenScene:
			a.pendingScenes = append(a.pendingScenes, event.Path)

		case window.EventUser:
			if event.UserID == a.notifier.EventID() {
				a.notifier.Expire(event.UserID, event.UserData)
			}
		}
	}

	return uiEvents
}

func (a *App) handleKeyDown(key uint32) {
	switch key {
	case common.KeyEsc:
		a.exit = true
	case common.KeyW:
		a.setVelocityAxis(&a.pressedVelocity.Z, -1)
	case common.KeyS:
		a.setVelocityAxis(&a.pressedVelocity.Z, 1)
	case common.KeyA:
		a.setVelocityAxis(&a.pressedVelocity.X, -1)
	case common.KeyD:
		a.setVelocityAxis(&a.pressedVelocity.X, 1)
	case common.KeyM:
		a.uiState.Mode = a.uiState.Mode.Next()
		a.notifier.Emit(fmt.Sprintf("Switched to %s mode", a.uiState.Mode))
	case common.KeyB:
		a.uiState.Background = a.uiState.Background.Next()
		a.dirty = true
	case common.KeyT:
		a.uiState.StemDarkening = !a.uiState.StemDarkening
		a.notifier.Emit(toggleMessage("Stem darkening", a.uiState.StemDarkening))
		a.dirty = true
	case common.KeyX:
		a.uiState.SubpixelAA = !a.uiState.SubpixelAA
		a.notifier.Emit(toggleMessage("Subpixel antialiasing", a.uiState.SubpixelAA))
		a.dirty = true
	case common.KeyG:
		a.uiState.GammaCorrection = !a.uiState.GammaCorrection
		a.notifier.Emit(toggleMessage("Gamma correction", a.uiState.GammaCorrection))
		a.dirty = true
	case common.KeyTab:
		a.uiState.Visibility = a.uiState.Visibility.Next()
	case common.KeyF12:
		a.PostAction(ui.Action{
			Kind:           ui.ActionTakeScreenshot,
			ScreenshotPath: fmt.Sprintf("screenshot-%d.png", a.frameCounter),
		})
	}
}

func (a *App) handleKeyUp(key uint32) {
	switch key {
	case common.KeyW, common.KeyS:
		a.pressedVelocity.Z = 0
	case common.KeyA, common.KeyD:
		a.pressedVelocity.X = 0
	}
}

// setVelocityAxis sets one velocity axis, scaled inversely by the view box
// size so motion speed is independent of scene resolution.
func (a *App) setVelocityAxis(axis *float32, direction float32) {
	if !a.camera.Is3D() {
		return
	}
	*axis = direction * cameraVelocity / camera.ScaleFactorForViewBox(a.sceneViewBox)
}

// trackMouse updates the last observed mouse position and returns it together
// with the motion relative to the previous one.
func (a *App) trackMouse(absolute common.Vec2i) ui.MousePosition {
	relative := absolute.Sub(a.lastMousePosition)
	a.lastMousePosition = absolute
	return ui.MousePosition{Absolute: absolute, Relative: relative}
}

// dispatchUIEvent feeds a collected UI event back into camera state. An
// unhandled press toggles mouselook in the 3D modes; a drag pans the 2D
// camera.
func (a *App) dispatchUIEvent(event ui.Event) {
	switch event.Kind {
	case ui.EventMouseDown:
		if a.camera.Is3D() {
			a.mouselookEnabled = !a.mouselookEnabled
		}
	case ui.EventMouseDragged:
		if !a.camera.Is3D() {
			a.camera.Transform2D = a.camera.Transform2D.PostTranslate(event.Position.Relative.ToVec2())
			a.dirty = true
		}
	}
}

// applyAction applies a deferred UI action to the 2D camera.
func (a *App) applyAction(action ui.Action) {
	if a.camera.Mode != common.ModeTwoD {
		return
	}
	center := a.window.Viewport(a.uiState.Mode, 0).Size.ToVec2().Scale(0.5)
	switch action.Kind {
	case ui.ActionZoomIn:
		a.zoomAbout(1+cameraZoomAmount2D, center)
	case ui.ActionZoomOut:
		a.zoomAbout(1-cameraZoomAmount2D, center)
	case ui.ActionRotate:
		a.rotateAbout(action.RotationAngle, center)
	}
}

// zoomAbout scales the 2D transform about a pivot point: translate the pivot
// to the origin, scale, translate back.
func (a *App) zoomAbout(factor float32, pivot common.Vec2) {
	a.camera.Transform2D = a.camera.Transform2D.
		PostTranslate(pivot.Neg()).
		PostScale(common.Vec2{X: factor, Y: factor}).
		PostTranslate(pivot)
	a.dirty = true
}

// rotateAbout sets the 2D rotation about a pivot to the given absolute angle.
func (a *App) rotateAbout(angle float32, pivot common.Vec2) {
	delta := angle - a.camera.Transform2D.Rotation()
	a.camera.Transform2D = a.camera.Transform2D.
		PostTranslate(pivot.Neg()).
		PostRotate(delta).
		PostTranslate(pivot)
	a.dirty = true
}

// switchMode rebuilds the camera for a new mode. All accumulated pan, zoom,
// rotation and mouselook state is discarded on every switch.
func (a *App) switchMode(mode common.Mode) {
	viewportSize := a.window.Viewport(mode, 0).Size
	a.camera = camera.NewCamera(mode, a.sceneViewBox, viewportSize)
	a.pressedVelocity = common.Vec3{}
	a.mouselookEnabled = false
	a.proxy.SetViewportSize(viewportSize)
	a.dirty = true
}

// openScene loads a scene file dropped onto the window and hands it to the
// worker, resetting camera and view box state.
func (a *App) openScene(path string) {
	sc, warnings, err := scene.LoadFile(path)
	if err != nil {
		a.notifier.Emit(fmt.Sprintf("Failed to open %s: %v", path, err))
		return
	}
	a.adoptScene(sc, warnings)
	a.dirty = true
}

// buildOptions derives the next build request from the current camera,
// recomputing every viewport's render transform fresh each tick.
func (a *App) buildOptions() scene.BuildOptions {
	options := scene.BuildOptions{
		SubpixelAA: a.uiState.SubpixelAA,
	}
	if a.uiState.StemDarkening {
		options.StemDarkeningFontSize = approxFontSize
	}

	if a.camera.Mode == common.ModeTwoD {
		options.RenderTransforms = []scene.RenderTransform{
			scene.Transform2D(a.camera.Transform2D),
		}
		return options
	}

	model := a.camera.Placement.ToTransform()
	transforms := make([]scene.RenderTransform, len(a.camera.Eyes))
	for i, eye := range a.camera.Eyes {
		combined := eye.Perspective.Transform.PostMul(eye.View).PostMul(model)
		transforms[i] = scene.TransformPerspective(common.Perspective{
			Transform:    combined,
			ViewportSize: eye.Perspective.ViewportSize,
		})
	}
	options.RenderTransforms = transforms

	if a.camera.Mode == common.ModeVR {
		distortion := a.window.BarrelDistortion()
		options.BarrelDistortion = &distortion
	}
	return options
}

// groundTransform composes the clip-space transform for the ground plane: the
// camera's world chain (without the scene Y flip) times the plane's model
// transform, sized to twice the view box and centered under the scene.
func (a *App) groundTransform(eye common.EyeTransform) common.Transform3D {
	p := a.camera.Placement
	world := common.Rotation3D(p.Yaw, p.Pitch, 0).
		PostMul(common.UniformScale3D(2 * p.Scale)).
		PostMul(common.Translation3D(-p.Position.X, -p.Position.Y, -p.Position.Z))

	side := a.sceneViewBox.Size.X
	if a.sceneViewBox.Size.Y > side {
		side = a.sceneViewBox.Size.Y
	}
	side *= groundScale
	center := a.sceneViewBox.Origin.Add(a.sceneViewBox.Size.Scale(0.5))
	model := common.Translation3D(center.X-side/2, 0, -side/2).
		PostMul(common.Scale3D(side, 1, side))

	return eye.Perspective.Transform.
		PostMul(eye.View).
		PostMul(world).
		PostMul(model)
}

// takeScreenshot reads the presented framebuffer back and writes it as a PNG.
// Runs before any overlay drawing so the capture shows only the scene.
func (a *App) takeScreenshot(path string) {
	pixels, width, height, err := a.renderer.ReadPixels()
	if err != nil {
		a.notifier.Emit(fmt.Sprintf("Screenshot failed: %v", err))
		return
	}

	img := &image.RGBA{
		Pix:    pixels,
		Stride: width * 4,
		Rect:   image.Rect(0, 0, width, height),
	}
	f, err := os.Create(path)
	if err != nil {
		a.notifier.Emit(fmt.Sprintf("Screenshot failed: %v", err))
		return
	}
	defer f.Close()
	if err := png.Encode(f, img); err != nil {
		a.notifier.Emit(fmt.Sprintf("Screenshot failed: %v", err))
		return
	}
	a.notifier.Emit(fmt.Sprintf("Saved screenshot to %s", path))
}

// Close shuts the worker down and releases GPU and window resources.
func (a *App) Close() {
	a.proxy.Close()
	for range a.proxy.Results() {
		// Drain any queued results so the worker can exit.
	}
	a.renderer.Release()
	if err := a.window.Close(); err != nil {
		log.Printf("failed to close window: %v", err)
	}
}

func toggleMessage(name string, enabled bool) string {
	if enabled {
		return name + " enabled"
	}
	return name + " disabled"
}
