package scene

import (
	"fmt"
	"runtime"
	"sync"
	"time"

	"github.com/Carmen-Shannon/automation/tools/worker"
	"github.com/vectra-gfx/vectra/common"
)

// proxyQueueDepth buffers the proxy channels so the control thread can queue
// the next build (and receive the previous result) without rendezvousing with
// the worker. Pipelining depends on this: the first tick sends two builds
// before its first receive.
const proxyQueueDepth = 16

// Command is a unit of work sent to the build worker. Commands are consumed
// strictly in send order.
type Command interface {
	isCommand()
}

// LoadSceneCommand replaces the worker's owned scene and resets its view box
// to (0,0)–ViewportSize. Ownership of the scene moves to the worker; the
// sender must not touch it afterwards.
type LoadSceneCommand struct {
	Scene        *Scene
	ViewportSize common.Vec2i
}

// SetViewportSizeCommand resets only the view box of the current scene.
type SetViewportSizeCommand struct {
	Size common.Vec2i
}

// BuildSceneCommand builds one renderable scene per render transform.
type BuildSceneCommand struct {
	Options BuildOptions
}

func (LoadSceneCommand) isCommand()       {}
func (SetViewportSizeCommand) isCommand() {}
func (BuildSceneCommand) isCommand()      {}

// BuildFault describes an internal fault caught at the build boundary. The
// scene is considered unrecoverable once a build has faulted; the receiver is
// expected to print the dump and terminate the process.
type BuildFault struct {
	// Recovered is the value recovered from the faulting build.
	Recovered any

	// Dump is the full diagnostic dump of the scene at fault time.
	Dump string
}

// Error implements the error interface.
func (f *BuildFault) Error() string {
	return fmt.Sprintf("scene build fault: %v", f.Recovered)
}

// Result is one message from the worker back to the control thread: either a
// built frame or a build fault, never both.
type Result struct {
	Frame *BuiltFrame
	Fault *BuildFault
}

// Proxy is the control thread's handle to the build worker: a command channel
// in and a result channel out. Both channels preserve order, and there is no
// shared mutable state behind them — the worker owns the scene exclusively.
type Proxy struct {
	commands chan Command
	results  chan Result
}

// buildWorker runs on its own goroutine and exclusively owns the scene.
type buildWorker struct {
	scene    *Scene
	jobs     int
	pool     worker.DynamicWorkerPool
	commands <-chan Command
	results  chan<- Result

	taskCounter int
	taskMu      sync.Mutex
}

// StartWorker spawns the scene build worker that takes ownership of the given
// scene. The jobs count sizes the build pool: 0 uses all available execution
// units, 1 forces strictly sequential builds, and any other value sets the
// pool size directly.
//
// Parameters:
//   - initial: the scene the worker takes ownership of
//   - jobs: the configured job count
//
// Returns:
//   - *Proxy: the control thread's handle to the worker
func StartWorker(initial *Scene, jobs int) *Proxy {
	p := &Proxy{
		commands: make(chan Command, proxyQueueDepth),
		results:  make(chan Result, proxyQueueDepth),
	}

	w := &buildWorker{
		scene:    initial,
		jobs:     jobs,
		commands: p.commands,
		results:  p.results,
	}
	if jobs != 1 {
		size := jobs
		if size <= 0 {
			size = runtime.NumCPU()
		}
		w.pool = worker.NewDynamicWorkerPool(size, 256, 1*time.Second)
	}

	go w.run()
	return p
}

// LoadScene transfers ownership of a new scene to the worker.
func (p *Proxy) LoadScene(s *Scene, viewportSize common.Vec2i) {
	p.commands <- LoadSceneCommand{Scene: s, ViewportSize: viewportSize}
}

// SetViewportSize resets the owned scene's view box to the given size.
func (p *Proxy) SetViewportSize(size common.Vec2i) {
	p.commands <- SetViewportSizeCommand{Size: size}
}

// Build requests one build. A sent build is never cancelled: it always
// eventually produces exactly one Result.
func (p *Proxy) Build(options BuildOptions) {
	p.commands <- BuildSceneCommand{Options: options}
}

// Results returns the channel build results arrive on, in command order. The
// channel is closed when the worker terminates.
func (p *Proxy) Results() <-chan Result {
	return p.results
}

// Close shuts the command channel down, terminating the worker once it has
// drained any queued commands.
func (p *Proxy) Close() {
	close(p.commands)
}

// run is the worker loop: receive the next command, or terminate when the
// command channel is closed.
func (w *buildWorker) run() {
	defer close(w.results)

	for cmd := range w.commands {
		switch c := cmd.(type) {
		case LoadSceneCommand:
			w.scene = c.Scene
			w.scene.ViewBox = common.RectF{Size: c.ViewportSize.ToVec2()}
		case SetViewportSizeCommand:
			w.scene.ViewBox = common.RectF{Size: c.Size.ToVec2()}
		case BuildSceneCommand:
			w.results <- w.build(c.Options)
		}
	}
}

// build produces one Result for a build command. With jobs == 1 the
// per-viewport builds run strictly sequentially in request order; otherwise
// they run concurrently, but the result slice is indexed by request position
// so output order always equals input order regardless of completion order.
func (w *buildWorker) build(options BuildOptions) Result {
	start := time.Now()
	transforms := options.RenderTransforms
	scenes := make([]RenderScene, len(transforms))
	faults := make([]*BuildFault, len(transforms))

	if w.pool == nil {
		for i, transform := range transforms {
			scenes[i], faults[i] = w.buildRenderScene(options, transform)
		}
	} else {
		var wg sync.WaitGroup
		for i, transform := range transforms {
			wg.Add(1)
			idx, tr := i, transform
			go func() {
				defer wg.Done()
				scenes[idx], faults[idx] = w.buildRenderScene(options, tr)
			}()
		}
		wg.Wait()
	}

	for _, fault := range faults {
		if fault != nil {
			return Result{Fault: fault}
		}
	}

	return Result{Frame: &BuiltFrame{Scenes: scenes, BuildTime: time.Since(start)}}
}

// buildRenderScene is the fallible build boundary: any panic while building
// is caught here and converted into a BuildFault carrying the scene dump. It
// is never silently swallowed and never allowed to unwind past the worker.
func (w *buildWorker) buildRenderScene(options BuildOptions, transform RenderTransform) (rs RenderScene, fault *BuildFault) {
	defer func() {
		if r := recover(); r != nil {
			fault = &BuildFault{Recovered: r, Dump: w.scene.Dump()}
		}
	}()

	prepared := prepare(options, transform)

	var objects []BuiltObject
	if w.pool == nil {
		objects = w.scene.buildObjectsSequentially(prepared)
	} else {
		objects = w.scene.buildObjects(prepared, w.pool, w.nextTaskID)
	}

	stats := Stats{ObjectCount: len(objects)}
	for _, obj := range objects {
		stats.VertexCount += len(obj.Vertices)
	}

	return RenderScene{
		Built: &BuiltScene{
			ViewBox: w.scene.ViewBox,
			Objects: objects,
			Stats:   stats,
		},
		Transform: transform,
	}, nil
}

func (w *buildWorker) nextTaskID() int {
	w.taskMu.Lock()
	defer w.taskMu.Unlock()
	w.taskCounter++
	return w.taskCounter
}
