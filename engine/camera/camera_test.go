package camera

import (
	"math"
	"testing"

	"github.com/vectra-gfx/vectra/common"
)

var (
	testViewBox  = common.NewRectF(0, 0, 640, 480)
	testViewport = common.Vec2i{X: 1280, Y: 960}
)

func TestNewCameraViewportCounts(t *testing.T) {
	cases := []struct {
		mode common.Mode
		want int
	}{
		{common.ModeTwoD, 1},
		{common.ModeThreeD, 1},
		{common.ModeVR, 2},
	}
	for _, c := range cases {
		cam := NewCamera(c.mode, testViewBox, testViewport)
		if got := cam.ViewportCount(); got != c.want {
			t.Errorf("%s camera reports %d viewports, want %d", c.mode, got, c.want)
		}
		if c.mode != common.ModeTwoD && len(cam.Eyes) != c.want {
			t.Errorf("%s camera has %d eyes, want %d", c.mode, len(cam.Eyes), c.want)
		}
	}
}

func TestNewCamera2DCentersViewBox(t *testing.T) {
	cam := NewCamera(common.ModeTwoD, testViewBox, testViewport)

	center := common.Vec2{X: testViewBox.Size.X / 2, Y: testViewBox.Size.Y / 2}
	got := cam.Transform2D.Apply(center)
	want := testViewport.ToVec2().Scale(0.5)

	const eps = 1e-3
	if math.Abs(float64(got.X-want.X)) > eps || math.Abs(float64(got.Y-want.Y)) > eps {
		t.Fatalf("view box center maps to %+v, want viewport center %+v", got, want)
	}
}

func TestModeSwitchDiscardsAccumulatedState(t *testing.T) {
	cam := NewCamera(common.ModeTwoD, testViewBox, testViewport)
	cam.Transform2D = cam.Transform2D.PostTranslate(common.Vec2{X: 123, Y: -45}).PostRotate(0.5)

	threeD := NewCamera(common.ModeThreeD, testViewBox, testViewport)
	threeD.Placement.Yaw = 1.2
	threeD.Placement.Pitch = -0.4

	// Rebuilding for a mode always starts from the view box alone.
	back := NewCamera(common.ModeThreeD, testViewBox, testViewport)
	if back.Placement.Yaw != 0 || back.Placement.Pitch != 0 {
		t.Fatal("rebuilt 3D camera kept mouselook state")
	}

	fresh := NewCamera(common.ModeTwoD, testViewBox, testViewport)
	if fresh.Transform2D != NewCamera(common.ModeTwoD, testViewBox, testViewport).Transform2D {
		t.Fatal("2D construction is not deterministic")
	}
	if fresh.Transform2D == cam.Transform2D {
		t.Fatal("rebuilt 2D camera kept pan/rotate state")
	}
}

func TestOffsetIsNoOpIn2DAndForZeroVelocity(t *testing.T) {
	cam := NewCamera(common.ModeTwoD, testViewBox, testViewport)
	if cam.Offset(common.Vec3{X: 1}) {
		t.Fatal("2D camera must ignore velocity")
	}

	threeD := NewCamera(common.ModeThreeD, testViewBox, testViewport)
	if threeD.Offset(common.Vec3{}) {
		t.Fatal("zero velocity must not mark the frame dirty")
	}
}

func TestOffsetIntegratesAlongViewDirection(t *testing.T) {
	cam := NewCamera(common.ModeThreeD, testViewBox, testViewport)
	start := cam.Placement.Position

	if !cam.Offset(common.Vec3{Z: -1}) {
		t.Fatal("nonzero velocity must report movement")
	}
	moved := cam.Placement.Position
	if moved.Z >= start.Z {
		t.Fatalf("forward velocity should decrease Z with no rotation: %v -> %v", start.Z, moved.Z)
	}

	// Yaw by π/2 turns forward motion onto the X axis.
	cam.Placement.Yaw = math.Pi / 2
	before := cam.Placement.Position
	cam.Offset(common.Vec3{Z: -1})
	after := cam.Placement.Position

	const eps = 1e-4
	if math.Abs(float64(after.Z-before.Z)) > eps {
		t.Fatalf("yawed forward motion should not change Z: %v -> %v", before.Z, after.Z)
	}
	if math.Abs(float64(after.X-before.X)) < 0.5 {
		t.Fatalf("yawed forward motion should move along X: %v -> %v", before.X, after.X)
	}
}

func TestPlacementToTransformFlipsY(t *testing.T) {
	p := Placement{Scale: 1}
	transform := p.ToTransform()

	up := transform.TransformVec3(common.Vec3{Y: 1})
	origin := transform.TransformVec3(common.Vec3{})
	if up.Y >= origin.Y {
		t.Fatal("scene Y should grow downward after the model transform")
	}
}

func TestScaleFactorNormalizesSmallerSide(t *testing.T) {
	if got := ScaleFactorForViewBox(common.NewRectF(0, 0, 200, 100)); got != 0.01 {
		t.Fatalf("scale factor = %v, want 0.01", got)
	}
}
