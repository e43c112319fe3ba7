package common

import "math"

// Transform3D is a 4x4 transform stored in column-major order
// (OpenGL/WebGPU convention), the same layout the flat matrix helpers in this
// package have always used, packaged as a value type so transform chains can
// be composed with methods.
type Transform3D [16]float32

// Identity3D returns the identity transform.
func Identity3D() Transform3D {
	var t Transform3D
	t[0], t[5], t[10], t[15] = 1, 1, 1, 1
	return t
}

// Translation3D returns a translation transform.
func Translation3D(x, y, z float32) Transform3D {
	t := Identity3D()
	t[12], t[13], t[14] = x, y, z
	return t
}

// Scale3D returns a scaling transform with independent axis factors.
func Scale3D(sx, sy, sz float32) Transform3D {
	var t Transform3D
	t[0], t[5], t[10], t[15] = sx, sy, sz, 1
	return t
}

// UniformScale3D returns a scaling transform with the same factor on all axes.
func UniformScale3D(s float32) Transform3D {
	return Scale3D(s, s, s)
}

// Rotation3D returns a rotation transform composed as R = Ry(yaw) * Rx(pitch) * Rz(roll).
// All angles are in radians.
//
// Parameters:
//   - yaw: rotation around the Y axis
//   - pitch: rotation around the X axis
//   - roll: rotation around the Z axis
//
// Returns:
//   - Transform3D: the combined rotation
func Rotation3D(yaw, pitch, roll float32) Transform3D {
	cy := float32(math.Cos(float64(yaw)))
	sy := float32(math.Sin(float64(yaw)))
	cx := float32(math.Cos(float64(pitch)))
	sx := float32(math.Sin(float64(pitch)))
	cz := float32(math.Cos(float64(roll)))
	sz := float32(math.Sin(float64(roll)))

	var t Transform3D
	t[0] = cy*cz + sy*sx*sz
	t[1] = cx * sz
	t[2] = -sy*cz + cy*sx*sz
	t[4] = cy*-sz + sy*sx*cz
	t[5] = cx * cz
	t[6] = sy*sz + cy*sx*cz
	t[8] = sy * cx
	t[9] = -sx
	t[10] = cy * cx
	t[15] = 1
	return t
}

// Perspective3D returns a perspective projection matrix with a [0, 1] depth
// range, matching the WebGPU clip space convention.
//
// Parameters:
//   - fovY: vertical field of view in radians
//   - aspect: viewport aspect ratio (width/height)
//   - near: near clipping plane distance (must be > 0)
//   - far: far clipping plane distance (must be > near)
//
// Returns:
//   - Transform3D: the projection matrix
func Perspective3D(fovY, aspect, near, far float32) Transform3D {
	f := 1.0 / float32(math.Tan(float64(fovY)/2.0))
	var t Transform3D
	t[0] = f / aspect
	t[5] = f
	t[10] = far / (near - far)
	t[11] = -1.0
	t[14] = (near * far) / (near - far)
	return t
}

// PostMul returns t * o, the transform that applies o first and t second
// when multiplying column vectors.
func (t Transform3D) PostMul(o Transform3D) Transform3D {
	var out Transform3D
	for i := 0; i < 4; i++ { // column of o
		for j := 0; j < 4; j++ { // row of t
			sum := float32(0)
			for k := 0; k < 4; k++ {
				sum += t[k*4+j] * o[i*4+k]
			}
			out[i*4+j] = sum
		}
	}
	return out
}

// TransformVec3 transforms v as a direction-style point (w = 1) and returns
// the result without perspective division. Used for moving positions through
// rotation/translation chains.
func (t Transform3D) TransformVec3(v Vec3) Vec3 {
	return Vec3{
		X: t[0]*v.X + t[4]*v.Y + t[8]*v.Z + t[12],
		Y: t[1]*v.X + t[5]*v.Y + t[9]*v.Z + t[13],
		Z: t[2]*v.X + t[6]*v.Y + t[10]*v.Z + t[14],
	}
}

// ProjectPoint transforms the 2D point p (treated as (x, y, 0, 1)) through the
// full projective transform, performing the perspective divide. The result is
// in normalized device coordinates.
func (t Transform3D) ProjectPoint(p Vec2) Vec3 {
	x := t[0]*p.X + t[4]*p.Y + t[12]
	y := t[1]*p.X + t[5]*p.Y + t[13]
	z := t[2]*p.X + t[6]*p.Y + t[14]
	w := t[3]*p.X + t[7]*p.Y + t[15]
	if w != 0 {
		inv := 1.0 / w
		x, y, z = x*inv, y*inv, z*inv
	}
	return Vec3{x, y, z}
}

// Perspective pairs a projective transform with the viewport size it projects
// into, so normalized device coordinates can be mapped to pixels.
type Perspective struct {
	Transform    Transform3D
	ViewportSize Vec2i
}

// NewPerspective creates a Perspective from a projection and viewport size.
func NewPerspective(transform Transform3D, viewportSize Vec2i) Perspective {
	return Perspective{Transform: transform, ViewportSize: viewportSize}
}

// Apply projects the 2D scene point p into viewport pixel coordinates,
// flipping Y so the origin lands at the top-left.
func (p Perspective) Apply(point Vec2) Vec2 {
	ndc := p.Transform.ProjectPoint(point)
	size := p.ViewportSize.ToVec2()
	return Vec2{
		X: (ndc.X + 1) * 0.5 * size.X,
		Y: (1 - (ndc.Y+1)*0.5) * size.Y,
	}
}

// EyeTransform is the per-viewport camera description used in the 3D and VR
// modes: the projection from camera space to clip space, and the view
// transform from world space to camera space. In VR both eyes carry their own
// pair, typically supplied by the display each frame.
type EyeTransform struct {
	Perspective Perspective
	View        Transform3D
}

// DistortionCoefficients are the radial barrel distortion terms applied when
// building scenes for a lens-distorted (VR) display.
type DistortionCoefficients struct {
	K1, K2 float32
}
