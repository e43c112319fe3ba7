package scene

import (
	"testing"

	"github.com/vectra-gfx/vectra/common"
)

func testScene(objects int) *Scene {
	s := &Scene{ViewBox: common.NewRectF(0, 0, 640, 480)}
	for i := 0; i < objects; i++ {
		f := float32(i)
		s.Objects = append(s.Objects, PathObject{
			Name:   "object",
			Color:  Color{R: uint8(i), A: 255},
			Closed: i%2 == 0,
			Points: []common.Vec2{
				{X: f, Y: f}, {X: f + 10, Y: f}, {X: f + 10, Y: f + 10},
			},
		})
	}
	s.Bounds = boundsOf(s.Objects)
	return s
}

func TestBuildResultsArriveInCommandOrder(t *testing.T) {
	proxy := StartWorker(testScene(4), 1)
	defer proxy.Close()

	const builds = 8
	transforms := make([]RenderTransform, builds)
	for i := range transforms {
		scale := float32(i + 1)
		transforms[i] = Transform2D(common.Scale2D(scale, scale))
		proxy.Build(BuildOptions{RenderTransforms: []RenderTransform{transforms[i]}})
	}

	for i := 0; i < builds; i++ {
		result := <-proxy.Results()
		if result.Fault != nil {
			t.Fatalf("build %d faulted: %v", i, result.Fault)
		}
		got := result.Frame.Scenes[0].Transform
		if got != transforms[i] {
			t.Fatalf("result %d carries transform %+v, want %+v", i, got, transforms[i])
		}
	}
}

func TestParallelViewportBuildPreservesRequestOrder(t *testing.T) {
	transforms := []RenderTransform{
		Transform2D(common.Scale2D(1, 1)),
		Transform2D(common.Scale2D(2, 2)),
		Transform2D(common.Scale2D(3, 3)),
		Transform2D(common.Scale2D(4, 4)),
	}

	sequential := StartWorker(testScene(32), 1)
	defer sequential.Close()
	parallel := StartWorker(testScene(32), 4)
	defer parallel.Close()

	options := BuildOptions{RenderTransforms: transforms}
	sequential.Build(options)
	parallel.Build(options)

	seq := <-sequential.Results()
	par := <-parallel.Results()
	if seq.Fault != nil || par.Fault != nil {
		t.Fatalf("unexpected fault: sequential=%v parallel=%v", seq.Fault, par.Fault)
	}
	if len(par.Frame.Scenes) != len(transforms) {
		t.Fatalf("parallel build returned %d scenes, want %d", len(par.Frame.Scenes), len(transforms))
	}

	for i := range transforms {
		if par.Frame.Scenes[i].Transform != transforms[i] {
			t.Errorf("parallel scene %d carries transform %+v, want %+v", i, par.Frame.Scenes[i].Transform, transforms[i])
		}
		seqObjects := seq.Frame.Scenes[i].Built.Objects
		parObjects := par.Frame.Scenes[i].Built.Objects
		if len(seqObjects) != len(parObjects) {
			t.Fatalf("scene %d object count differs: sequential=%d parallel=%d", i, len(seqObjects), len(parObjects))
		}
		for j := range seqObjects {
			if len(seqObjects[j].Vertices) != len(parObjects[j].Vertices) {
				t.Fatalf("scene %d object %d vertex count differs", i, j)
			}
			for k := range seqObjects[j].Vertices {
				if seqObjects[j].Vertices[k] != parObjects[j].Vertices[k] {
					t.Fatalf("scene %d object %d vertex %d differs: sequential=%+v parallel=%+v",
						i, j, k, seqObjects[j].Vertices[k], parObjects[j].Vertices[k])
				}
			}
		}
	}
}

func TestLoadSceneResetsViewBoxToViewport(t *testing.T) {
	proxy := StartWorker(testScene(1), 1)
	defer proxy.Close()

	replacement := testScene(2)
	replacement.ViewBox = common.NewRectF(100, 100, 50, 50)
	proxy.LoadScene(replacement, common.Vec2i{X: 800, Y: 600})
	proxy.Build(BuildOptions{RenderTransforms: []RenderTransform{Transform2D(common.Identity2D())}})

	result := <-proxy.Results()
	if result.Fault != nil {
		t.Fatalf("build faulted: %v", result.Fault)
	}
	want := common.RectF{Size: common.Vec2{X: 800, Y: 600}}
	if got := result.Frame.Scenes[0].Built.ViewBox; got != want {
		t.Fatalf("view box after LoadScene = %+v, want %+v", got, want)
	}
}

func TestSetViewportSizeResetsViewBoxOnly(t *testing.T) {
	proxy := StartWorker(testScene(3), 1)
	defer proxy.Close()

	proxy.SetViewportSize(common.Vec2i{X: 320, Y: 240})
	proxy.Build(BuildOptions{RenderTransforms: []RenderTransform{Transform2D(common.Identity2D())}})

	result := <-proxy.Results()
	if result.Fault != nil {
		t.Fatalf("build faulted: %v", result.Fault)
	}
	built := result.Frame.Scenes[0].Built
	want := common.RectF{Size: common.Vec2{X: 320, Y: 240}}
	if built.ViewBox != want {
		t.Fatalf("view box after SetViewportSize = %+v, want %+v", built.ViewBox, want)
	}
	if len(built.Objects) != 3 {
		t.Fatalf("SetViewportSize replaced the scene: %d objects, want 3", len(built.Objects))
	}
}

func TestBuildFaultCarriesSceneDump(t *testing.T) {
	faulty := testScene(2)
	faulty.Objects = append(faulty.Objects, PathObject{Name: "empty"})

	proxy := StartWorker(faulty, 1)
	defer proxy.Close()

	proxy.Build(BuildOptions{RenderTransforms: []RenderTransform{Transform2D(common.Identity2D())}})

	result := <-proxy.Results()
	if result.Fault == nil {
		t.Fatal("expected a build fault for an empty contour")
	}
	if result.Frame != nil {
		t.Fatal("faulted result must not carry a frame")
	}
	if result.Fault.Dump == "" {
		t.Fatal("fault is missing the scene dump")
	}
	if result.Fault.Error() == "" {
		t.Fatal("fault Error() must describe the recovered value")
	}
}

func TestBuildFaultSurfacesFromPooledBuild(t *testing.T) {
	faulty := testScene(16)
	faulty.Objects = append(faulty.Objects, PathObject{Name: "empty"})

	proxy := StartWorker(faulty, 4)
	defer proxy.Close()

	proxy.Build(BuildOptions{RenderTransforms: []RenderTransform{Transform2D(common.Identity2D())}})

	result := <-proxy.Results()
	if result.Fault == nil {
		t.Fatal("expected a build fault from the pooled build path")
	}
}

func TestCloseTerminatesWorkerAndClosesResults(t *testing.T) {
	proxy := StartWorker(testScene(1), 1)
	proxy.Close()

	if _, ok := <-proxy.Results(); ok {
		t.Fatal("results channel should be closed after Close with no queued builds")
	}
}

func TestStemDarkeningDilatesBounds(t *testing.T) {
	s := testScene(1)

	plain := s.buildObjectsSequentially(prepare(BuildOptions{}, Transform2D(common.Identity2D())))
	darkened := s.buildObjectsSequentially(prepare(
		BuildOptions{StemDarkeningFontSize: 16},
		Transform2D(common.Identity2D()),
	))

	if darkened[0].Bounds.Size.X <= plain[0].Bounds.Size.X {
		t.Fatal("stem darkening should dilate object bounds horizontally")
	}
	if darkened[0].Bounds.Size.Y <= plain[0].Bounds.Size.Y {
		t.Fatal("stem darkening should dilate object bounds vertically")
	}
}
