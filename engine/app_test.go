package engine

import (
	"image/png"
	"os"
	"path/filepath"
	"sync"
	"testing"

	"github.com/cogentcore/webgpu/wgpu"

	"github.com/vectra-gfx/vectra/common"
	"github.com/vectra-gfx/vectra/engine/renderer"
	"github.com/vectra-gfx/vectra/engine/scene"
	"github.com/vectra-gfx/vectra/engine/ui"
	"github.com/vectra-gfx/vectra/engine/window"
)

// fakeWindow is a headless stand-in for the platform window.
type fakeWindow struct {
	size   common.Vec2i
	nextID uint32

	// pushMu guards pushed; notifier expiry timers push from their own
	// goroutines.
	pushMu sync.Mutex
	pushed [][2]uint32

	distortion common.DistortionCoefficients
	closed     bool
}

var _ window.Window = &fakeWindow{}

func (w *fakeWindow) PollEvents() []window.Event { return nil }

func (w *fakeWindow) Size() common.Vec2i { return w.size }

func (w *fakeWindow) Viewport(mode common.Mode, index int) common.RectI {
	if mode.ViewportCount() == 1 {
		return common.RectI{Size: w.size}
	}
	half := common.Vec2i{X: w.size.X / 2, Y: w.size.Y}
	return common.RectI{Origin: common.Vec2i{X: index * half.X}, Size: half}
}

func (w *fakeWindow) CreateUserEventID() uint32 {
	w.nextID++
	return w.nextID
}

func (w *fakeWindow) PushUserEvent(id, data uint32) {
	w.pushMu.Lock()
	w.pushed = append(w.pushed, [2]uint32{id, data})
	w.pushMu.Unlock()
}

func (w *fakeWindow) BarrelDistortion() common.DistortionCoefficients { return w.distortion }

func (w *fakeWindow) SurfaceDescriptor() *wgpu.SurfaceDescriptor { return nil }

func (w *fakeWindow) IsRunning() bool { return !w.closed }

func (w *fakeWindow) Close() error {
	w.closed = true
	return nil
}

// fakeRenderer records the frame lifecycle calls made against it.
type fakeRenderer struct {
	calls     []string
	viewports []common.RectI
	scenes    int
	grounds   int
	presents  int
	released  bool
}

var _ renderer.Renderer = &fakeRenderer{}

func (r *fakeRenderer) ConfigureSurface(size common.Vec2i) { r.calls = append(r.calls, "configure") }

func (r *fakeRenderer) SetPresentMode(mode renderer.PresentMode) {}

func (r *fakeRenderer) BeginFrame(clearColor [4]float32) error {
	r.calls = append(r.calls, "begin")
	return nil
}

func (r *fakeRenderer) SetViewport(viewport common.RectI) {
	r.calls = append(r.calls, "viewport")
	r.viewports = append(r.viewports, viewport)
}

func (r *fakeRenderer) DrawGround(transform common.Transform3D) {
	r.calls = append(r.calls, "ground")
	r.grounds++
}

func (r *fakeRenderer) DrawScene(built *scene.BuiltScene) {
	r.calls = append(r.calls, "scene")
	r.scenes++
}

func (r *fakeRenderer) EndFrame() { r.calls = append(r.calls, "end") }

func (r *fakeRenderer) ReadPixels() ([]byte, int, int, error) {
	r.calls = append(r.calls, "read")
	const w, h = 2, 2
	pixels := make([]byte, w*h*4)
	for i := 3; i < len(pixels); i += 4 {
		pixels[i] = 255
	}
	return pixels, w, h, nil
}

func (r *fakeRenderer) Present() {
	r.calls = append(r.calls, "present")
	r.presents++
}

func (r *fakeRenderer) Release() { r.released = true }

func testOptions() Options {
	return Options{
		Jobs:       1,
		Mode:       common.ModeTwoD,
		Pipeline:   false,
		UI:         ui.VisibilityNone,
		Background: ui.BackgroundLight,
	}
}

func newTestApp(t *testing.T, options Options) (*App, *fakeWindow, *fakeRenderer) {
	t.Helper()
	win := &fakeWindow{size: common.Vec2i{X: 640, Y: 480}}
	r := &fakeRenderer{}
	a := NewApp(
		WithWindow(win),
		WithRenderer(r),
		WithOptions(options),
	)
	return a, win, r
}

func tick(a *App, events []window.Event) {
	count := a.PrepareFrame(events)
	for i := 0; i < count; i++ {
		a.DrawViewport(i)
	}
	a.FinishFrame()
}

func TestPipelinePrimesWorkerOnFirstTickOnly(t *testing.T) {
	cases := []struct {
		name     string
		pipeline bool
		leftover int
	}{
		{"pipelined", true, 1},
		{"unpipelined", false, 0},
	}
	for _, c := range cases {
		t.Run(c.name, func(t *testing.T) {
			options := testOptions()
			options.Pipeline = c.pipeline
			a, _, _ := newTestApp(t, options)

			// Two ticks each consume exactly one result. With pipelining the
			// first tick requested two builds, so one result stays queued.
			tick(a, nil)
			tick(a, nil)

			a.proxy.Close()
			leftover := 0
			for range a.proxy.Results() {
				leftover++
			}
			if leftover != c.leftover {
				t.Fatalf("worker had %d queued results after two ticks, want %d", leftover, c.leftover)
			}
		})
	}
}

func TestFrameLifecycleOrdering(t *testing.T) {
	a, _, r := newTestApp(t, testOptions())
	defer a.Close()

	tick(a, nil)

	want := []string{"configure", "begin", "viewport", "scene", "end", "present"}
	if len(r.calls) != len(want) {
		t.Fatalf("renderer calls = %v, want %v", r.calls, want)
	}
	for i := range want {
		if r.calls[i] != want[i] {
			t.Fatalf("renderer calls = %v, want %v", r.calls, want)
		}
	}
}

func TestPrepareFramePanicsWhileFrameIsLive(t *testing.T) {
	a, _, _ := newTestApp(t, testOptions())
	defer a.Close()

	a.PrepareFrame(nil)
	func() {
		defer func() {
			if recover() == nil {
				t.Error("PrepareFrame with a live frame must panic")
			}
		}()
		a.PrepareFrame(nil)
	}()
	a.FinishFrame()
}

func TestDrawAndFinishPanicWithoutFrame(t *testing.T) {
	a, _, _ := newTestApp(t, testOptions())
	defer a.Close()

	func() {
		defer func() {
			if recover() == nil {
				t.Error("DrawViewport without a frame must panic")
			}
		}()
		a.DrawViewport(0)
	}()
	func() {
		defer func() {
			if recover() == nil {
				t.Error("FinishFrame without a frame must panic")
			}
		}()
		a.FinishFrame()
	}()
}

func TestBuildFaultIsFatalAndCarriesDump(t *testing.T) {
	a, win, _ := newTestApp(t, testOptions())

	var fatal string
	a.fatalf = func(format string, args ...any) { fatal = format }

	faulty := &scene.Scene{Objects: []scene.PathObject{{Name: "empty"}}}
	a.proxy.LoadScene(faulty, win.Size())

	if count := a.PrepareFrame(nil); count != 0 {
		t.Fatalf("faulted PrepareFrame returned %d viewports, want 0", count)
	}
	if fatal == "" {
		t.Fatal("a build fault must be treated as fatal")
	}
	if a.currentFrame != nil {
		t.Fatal("faulted tick must not leave a live frame")
	}

	a.proxy.Close()
	for range a.proxy.Results() {
	}
}

func TestEscapeAndQuitRequestExit(t *testing.T) {
	a, _, _ := newTestApp(t, testOptions())
	defer a.Close()

	tick(a, []window.Event{{Kind: window.EventKeyDown, Key: common.KeyEsc}})
	if !a.ShouldExit() {
		t.Fatal("Escape must request exit")
	}

	b, _, _ := newTestApp(t, testOptions())
	defer b.Close()
	tick(b, []window.Event{{Kind: window.EventQuit}})
	if !b.ShouldExit() {
		t.Fatal("a quit event must request exit")
	}
}

func TestModeSwitchIsDeferredToFinishFrame(t *testing.T) {
	a, _, _ := newTestApp(t, testOptions())
	defer a.Close()

	a.pressedVelocity = common.Vec3{X: 1}

	count := a.PrepareFrame([]window.Event{{Kind: window.EventKeyDown, Key: common.KeyM}})
	if a.camera.Mode != common.ModeTwoD {
		t.Fatal("camera mode changed before the frame finished")
	}
	if a.uiState.Mode != common.ModeThreeD {
		t.Fatalf("requested mode = %v, want 3D", a.uiState.Mode)
	}
	for i := 0; i < count; i++ {
		a.DrawViewport(i)
	}
	a.FinishFrame()

	if a.camera.Mode != common.ModeThreeD {
		t.Fatalf("camera mode after FinishFrame = %v, want 3D", a.camera.Mode)
	}
	if a.pressedVelocity != (common.Vec3{}) {
		t.Fatal("mode switch must clear the held-key velocity")
	}
}

func TestZoomAppliesOnlyIn2D(t *testing.T) {
	a, _, _ := newTestApp(t, testOptions())
	defer a.Close()

	before := a.camera.Transform2D
	zoom := []window.Event{{
		Kind:      window.EventZoom,
		ZoomDelta: 1,
		Position:  common.Vec2i{X: 320, Y: 240},
	}}
	tick(a, zoom)
	if a.camera.Transform2D == before {
		t.Fatal("scroll zoom must change the 2D transform")
	}

	options := testOptions()
	options.Mode = common.ModeThreeD
	b, _, _ := newTestApp(t, options)
	defer b.Close()

	placement := b.camera.Placement
	transform := b.camera.Transform2D
	tick(b, zoom)
	if b.camera.Placement != placement || b.camera.Transform2D != transform {
		t.Fatal("scroll zoom must be ignored outside 2D mode")
	}
}

func TestGroundDrawsIn3DUnlessBackgroundIsNone(t *testing.T) {
	options := testOptions()
	options.Mode = common.ModeThreeD
	a, _, r := newTestApp(t, options)
	defer a.Close()

	tick(a, nil)
	if r.grounds != 1 {
		t.Fatalf("ground drawn %d times in 3D, want 1", r.grounds)
	}

	options.Background = ui.BackgroundNone
	b, _, rb := newTestApp(t, options)
	defer b.Close()

	tick(b, nil)
	if rb.grounds != 0 {
		t.Fatal("ground must not draw with no background")
	}
	if rb.scenes != 1 {
		t.Fatalf("scene drawn %d times, want 1", rb.scenes)
	}
}

func TestVRModeDrawsTwoViewports(t *testing.T) {
	options := testOptions()
	options.Mode = common.ModeVR
	a, win, r := newTestApp(t, options)
	defer a.Close()

	count := a.PrepareFrame(nil)
	if count != 2 {
		t.Fatalf("VR PrepareFrame returned %d viewports, want 2", count)
	}
	for i := 0; i < count; i++ {
		a.DrawViewport(i)
	}
	a.FinishFrame()

	if len(r.viewports) != 2 {
		t.Fatalf("renderer saw %d viewports, want 2", len(r.viewports))
	}
	half := win.size.X / 2
	if r.viewports[0].Origin.X != 0 || r.viewports[1].Origin.X != half {
		t.Fatalf("stereo viewports = %+v, want adjacent halves", r.viewports)
	}
}

func TestScreenshotIsCapturedBeforePresent(t *testing.T) {
	a, _, r := newTestApp(t, testOptions())
	defer a.Close()

	path := filepath.Join(t.TempDir(), "capture.png")
	a.PostAction(ui.Action{Kind: ui.ActionTakeScreenshot, ScreenshotPath: path})
	tick(a, nil)

	f, err := os.Open(path)
	if err != nil {
		t.Fatalf("screenshot was not written: %v", err)
	}
	defer f.Close()
	img, err := png.Decode(f)
	if err != nil {
		t.Fatalf("screenshot is not a valid PNG: %v", err)
	}
	if img.Bounds().Dx() != 2 || img.Bounds().Dy() != 2 {
		t.Fatalf("screenshot bounds = %v, want 2x2", img.Bounds())
	}

	readAt, presentAt := -1, -1
	for i, call := range r.calls {
		switch call {
		case "read":
			readAt = i
		case "present":
			presentAt = i
		}
	}
	if readAt == -1 || presentAt == -1 || readAt > presentAt {
		t.Fatalf("readback must happen before present: calls %v", r.calls)
	}
}

func TestMouseDragPansThe2DCamera(t *testing.T) {
	a, _, _ := newTestApp(t, testOptions())
	defer a.Close()

	before := a.camera.Transform2D
	events := []window.Event{
		{Kind: window.EventMouseDown, Position: common.Vec2i{X: 100, Y: 100}},
		{Kind: window.EventMouseDragged, Position: common.Vec2i{X: 130, Y: 80}},
	}
	tick(a, events)

	moved := a.camera.Transform2D.Apply(common.Vec2{}).Sub(before.Apply(common.Vec2{}))
	if moved.X != 30 || moved.Y != -20 {
		t.Fatalf("drag panned by %+v, want {30 -20}", moved)
	}
	if !a.Dirty() {
		t.Fatal("a drag must leave the frame dirty")
	}

	tick(a, nil)
	if a.Dirty() {
		t.Fatal("an idle tick must clear the dirty flag")
	}
}

func TestMouseDownTogglesMouselookIn3D(t *testing.T) {
	options := testOptions()
	options.Mode = common.ModeThreeD
	a, _, _ := newTestApp(t, options)
	defer a.Close()

	// The toggle dispatches when the frame finishes, so motion rotates from
	// the next tick onward.
	tick(a, []window.Event{{Kind: window.EventMouseDown, Position: common.Vec2i{X: 100, Y: 100}}})
	tick(a, []window.Event{{Kind: window.EventMouseMoved, Position: common.Vec2i{X: 200, Y: 100}}})

	want := float32(100) * mouselookRotationSpeed
	if a.camera.Placement.Yaw != want {
		t.Fatalf("yaw after mouselook motion = %v, want %v", a.camera.Placement.Yaw, want)
	}
	if a.camera.Placement.Pitch != 0 {
		t.Fatalf("pitch after horizontal motion = %v, want 0", a.camera.Placement.Pitch)
	}

	// A second press turns mouselook back off.
	tick(a, []window.Event{{Kind: window.EventMouseDown, Position: common.Vec2i{X: 200, Y: 100}}})
	tick(a, []window.Event{{Kind: window.EventMouseMoved, Position: common.Vec2i{X: 300, Y: 100}}})
	if a.camera.Placement.Yaw != want {
		t.Fatal("mouse motion rotated the camera after mouselook was toggled off")
	}
}

func TestMouseMotionIsInertWithoutMouselook(t *testing.T) {
	options := testOptions()
	options.Mode = common.ModeThreeD
	a, _, _ := newTestApp(t, options)
	defer a.Close()

	events := []window.Event{
		{Kind: window.EventMouseMoved, Position: common.Vec2i{X: 150, Y: 150}},
		{Kind: window.EventMouseDragged, Position: common.Vec2i{X: 250, Y: 150}},
	}
	tick(a, events)

	if a.camera.Placement.Yaw != 0 || a.camera.Placement.Pitch != 0 {
		t.Fatalf("motion without mouselook rotated the camera: yaw=%v pitch=%v",
			a.camera.Placement.Yaw, a.camera.Placement.Pitch)
	}
}

func TestResizePreservesCameraState(t *testing.T) {
	a, _, _ := newTestApp(t, testOptions())
	defer a.Close()

	drag := []window.Event{
		{Kind: window.EventMouseDown, Position: common.Vec2i{X: 100, Y: 100}},
		{Kind: window.EventMouseDragged, Position: common.Vec2i{X: 150, Y: 120}},
	}
	tick(a, drag)

	panned := a.camera.Transform2D
	tick(a, []window.Event{{Kind: window.EventResized, Size: common.Vec2i{X: 800, Y: 600}}})

	if a.camera.Transform2D != panned {
		t.Fatalf("resize discarded accumulated 2D pan: %+v -> %+v", panned, a.camera.Transform2D)
	}
}

func TestCloseReleasesCollaborators(t *testing.T) {
	a, win, r := newTestApp(t, testOptions())
	a.Close()

	if !r.released {
		t.Fatal("Close must release the renderer")
	}
	if !win.closed {
		t.Fatal("Close must close the window")
	}
}
