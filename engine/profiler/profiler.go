// package profiler aggregates per-frame timing and scene statistics and
// periodically reports them, both to the log and to the stats overlay.
package profiler

import (
	"fmt"
	"log"
	"runtime"
	"time"

	"github.com/vectra-gfx/vectra/engine/scene"
)

// Report is one aggregated stats window, refreshed every update interval.
type Report struct {
	FPS            float64
	SceneStats     scene.Stats
	MeanBuildTime  time.Duration
	MeanRenderTime time.Duration
	HeapMB         float64
	GCCount        uint32
}

// String formats the report for the stats overlay.
func (r Report) String() string {
	return fmt.Sprintf("%.1f fps | %d objects, %d vertices | build %s, render %s",
		r.FPS, r.SceneStats.ObjectCount, r.SceneStats.VertexCount,
		r.MeanBuildTime.Round(10*time.Microsecond), r.MeanRenderTime.Round(10*time.Microsecond))
}

// Profiler tracks frame rate, scene statistics, and memory usage.
// Outputs stats to the log at a configurable interval.
type Profiler struct {
	frameCount     int
	lastTime       time.Time
	updateInterval time.Duration
	memStats       runtime.MemStats
	lastTotalAlloc uint64

	sampleCount int
	sceneStats  scene.Stats
	buildTime   time.Duration
	renderTime  time.Duration

	lastReport Report
}

// NewProfiler creates a new Profiler with default settings.
// Update interval defaults to 1 second.
//
// Returns:
//   - *Profiler: the newly created profiler instance
func NewProfiler() *Profiler {
	return &Profiler{
		lastTime:       time.Now(),
		updateInterval: time.Second,
	}
}

// AddSample records one frame's scene statistics and timings. Samples are
// aggregated until the next report.
//
// Parameters:
//   - stats: the combined stats of every scene built this frame
//   - buildTime: how long the frame's build took
//   - renderTime: how long the frame's draw calls took
func (p *Profiler) AddSample(stats scene.Stats, buildTime, renderTime time.Duration) {
	p.sampleCount++
	p.sceneStats = stats
	p.buildTime += buildTime
	p.renderTime += renderTime
}

// LastReport returns the most recently computed report.
func (p *Profiler) LastReport() Report {
	return p.lastReport
}

// Tick should be called once per frame to track frame timing.
// Logs performance statistics when the update interval has elapsed.
//
// Returns:
//   - bool: true if stats were logged this tick, false otherwise
func (p *Profiler) Tick() bool {
	p.frameCount++
	currentTime := time.Now()
	elapsed := currentTime.Sub(p.lastTime)

	if elapsed < p.updateInterval {
		return false
	}

	fps := float64(p.frameCount) / elapsed.Seconds()

	runtime.ReadMemStats(&p.memStats)
	// Alloc: Bytes of allocated heap objects (live memory)
	// TotalAlloc: Cumulative bytes allocated for heap objects (increases forever, tracks churn)
	allocMB := float64(p.memStats.Alloc) / 1024 / 1024
	allocDelta := p.memStats.TotalAlloc - p.lastTotalAlloc
	allocRateMB := float64(allocDelta) / 1024 / 1024 / elapsed.Seconds()

	report := Report{
		FPS:        fps,
		SceneStats: p.sceneStats,
		HeapMB:     allocMB,
		GCCount:    p.memStats.NumGC,
	}
	if p.sampleCount > 0 {
		report.MeanBuildTime = p.buildTime / time.Duration(p.sampleCount)
		report.MeanRenderTime = p.renderTime / time.Duration(p.sampleCount)
	}
	p.lastReport = report

	log.Printf("[Profiler] FPS: %.2f | Objects: %d | Vertices: %d | Build: %s | Render: %s | Heap: %.2f MB | Alloc Rate: %.2f MB/s | GC: %d",
		fps, report.SceneStats.ObjectCount, report.SceneStats.VertexCount,
		report.MeanBuildTime, report.MeanRenderTime, allocMB, allocRateMB, report.GCCount)

	p.frameCount = 0
	p.sampleCount = 0
	p.buildTime = 0
	p.renderTime = 0
	p.lastTime = currentTime
	p.lastTotalAlloc = p.memStats.TotalAlloc
	return true
}
