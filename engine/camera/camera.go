// package camera holds the demo's camera state machine: either a 2D affine
// transform, or a 3D/VR camera with per-viewport eye transforms and a world
// placement. It is pure data plus transform math and performs no I/O.
package camera

import (
	"math"

	"github.com/vectra-gfx/vectra/common"
)

const (
	// NearClipPlane is the near clipping distance for perspective projection.
	NearClipPlane = 0.01

	// FarClipPlane is the far clipping distance for perspective projection.
	FarClipPlane = 10.0
)

// fieldOfView is the vertical field of view for the 3D and VR modes.
const fieldOfView = math.Pi / 4

// Placement is the world placement of a 3D camera: position, orientation and
// the uniform scale that normalizes the scene view box to unit size.
type Placement struct {
	Position common.Vec3
	Yaw      float32
	Pitch    float32
	Scale    float32
}

// Camera is a tagged variant over the demo's camera modes. The Mode
// discriminant controls which payload fields are meaningful: Transform2D for
// ModeTwoD; Eyes and Placement for ModeThreeD and ModeVR. The length of Eyes
// always equals Mode.ViewportCount().
type Camera struct {
	Mode common.Mode

	// Transform2D is the accumulated pan/zoom/rotation transform (2D only).
	Transform2D common.Matrix2D

	// Eyes holds one projection/view pair per viewport (3D/VR only).
	Eyes []common.EyeTransform

	// Placement is the model transform state from world space to scene space (3D/VR only).
	Placement Placement
}

// NewCamera constructs a fresh camera for the given mode from the scene view
// box and the current viewport size. Any prior pan/zoom/rotation or mouselook
// state is discarded: this is the only constructor, and every mode switch
// goes through it.
//
// Parameters:
//   - mode: the camera mode (2D, 3D, or VR)
//   - viewBox: the scene's logical bounding rectangle
//   - viewportSize: the viewport size in pixels
//
// Returns:
//   - *Camera: the newly constructed camera
func NewCamera(mode common.Mode, viewBox common.RectF, viewportSize common.Vec2i) *Camera {
	if mode == common.ModeTwoD {
		return newCamera2D(viewBox, viewportSize)
	}
	return newCamera3D(mode, viewBox, viewportSize)
}

// newCamera2D centers the view box in the viewport at a scale that fits the
// smaller viewport dimension.
func newCamera2D(viewBox common.RectF, viewportSize common.Vec2i) *Camera {
	minSide := viewportSize.ToVec2().Min()
	scale := minSide * ScaleFactorForViewBox(viewBox)
	origin := viewportSize.ToVec2().Scale(0.5).Sub(viewBox.Size.Scale(scale * 0.5))
	return &Camera{
		Mode:        common.ModeTwoD,
		Transform2D: common.Scale2D(scale, scale).PostTranslate(origin),
	}
}

func newCamera3D(mode common.Mode, viewBox common.RectF, viewportSize common.Vec2i) *Camera {
	aspect := float32(viewportSize.X) / float32(viewportSize.Y)
	projection := common.Perspective3D(fieldOfView, aspect, NearClipPlane, FarClipPlane)
	eye := common.EyeTransform{
		Perspective: common.NewPerspective(projection, viewportSize),
		View:        common.Identity3D(),
	}

	eyes := make([]common.EyeTransform, mode.ViewportCount())
	for i := range eyes {
		eyes[i] = eye
	}

	scale := ScaleFactorForViewBox(viewBox)
	return &Camera{
		Mode: mode,
		Eyes: eyes,
		Placement: Placement{
			Position: common.Vec3{
				X: 0.5 * viewBox.MaxX(),
				Y: -0.5 * viewBox.MaxY(),
				Z: 1.5 / scale,
			},
			Scale: scale,
		},
	}
}

// Is3D reports whether the camera is in one of the perspective modes.
func (c *Camera) Is3D() bool {
	return c.Mode != common.ModeTwoD
}

// ViewportCount returns the number of viewports rendered with this camera.
func (c *Camera) ViewportCount() int {
	return c.Mode.ViewportCount()
}

// Offset integrates the camera's world position by the given velocity vector,
// rotated into the world frame by the inverse of the current yaw and pitch.
// Meaningful in the 3D modes only. Returns whether any movement occurred, so
// the caller can mark the frame dirty.
func (c *Camera) Offset(velocity common.Vec3) bool {
	if !c.Is3D() || velocity.IsZero() {
		return false
	}
	rotation := common.Rotation3D(-c.Placement.Yaw, -c.Placement.Pitch, 0)
	c.Placement.Position = c.Placement.Position.Add(rotation.TransformVec3(velocity))
	return true
}

// ToTransform composes the placement's rotation, uniform scale, translation,
// and a Y flip into the model transform for this frame's perspective chain.
func (p Placement) ToTransform() common.Transform3D {
	transform := common.Rotation3D(p.Yaw, p.Pitch, 0)
	transform = transform.PostMul(common.UniformScale3D(2.0 * p.Scale))
	transform = transform.PostMul(common.Translation3D(-p.Position.X, -p.Position.Y, -p.Position.Z))

	// Flip Y: scene coordinates grow downward, world coordinates grow upward.
	transform = transform.PostMul(common.Scale3D(1, -1, 1))

	return transform
}

// ScaleFactorForViewBox returns the uniform scale that normalizes the view
// box's smaller dimension to unit size. Camera motion is scaled by this so
// movement speed is independent of scene resolution.
func ScaleFactorForViewBox(viewBox common.RectF) float32 {
	return 1.0 / viewBox.Size.Min()
}
