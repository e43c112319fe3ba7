// package common contains common types that are used throughout this demo. They are not interface-wrapped structs, just plain structs that express
// commonly used data-types.
package common

import "math"

// Vec2 is a 2D point or vector with float32 components.
type Vec2 struct {
	X, Y float32
}

// Add returns the component-wise sum of v and o.
func (v Vec2) Add(o Vec2) Vec2 {
	return Vec2{v.X + o.X, v.Y + o.Y}
}

// Sub returns the component-wise difference of v and o.
func (v Vec2) Sub(o Vec2) Vec2 {
	return Vec2{v.X - o.X, v.Y - o.Y}
}

// Scale returns v scaled uniformly by f.
func (v Vec2) Scale(f float32) Vec2 {
	return Vec2{v.X * f, v.Y * f}
}

// Neg returns the negation of v.
func (v Vec2) Neg() Vec2 {
	return Vec2{-v.X, -v.Y}
}

// Min returns the smaller of the two components.
func (v Vec2) Min() float32 {
	if v.X < v.Y {
		return v.X
	}
	return v.Y
}

// Vec2i is a 2D point or size with integer components, typically pixels.
type Vec2i struct {
	X, Y int
}

// ToVec2 converts the integer vector to float components.
func (v Vec2i) ToVec2() Vec2 {
	return Vec2{float32(v.X), float32(v.Y)}
}

// Sub returns the component-wise difference of v and o.
func (v Vec2i) Sub(o Vec2i) Vec2i {
	return Vec2i{v.X - o.X, v.Y - o.Y}
}

// Vec3 is a 3D point or vector with float32 components.
type Vec3 struct {
	X, Y, Z float32
}

// Add returns the component-wise sum of v and o.
func (v Vec3) Add(o Vec3) Vec3 {
	return Vec3{v.X + o.X, v.Y + o.Y, v.Z + o.Z}
}

// IsZero reports whether all components are exactly zero.
func (v Vec3) IsZero() bool {
	return v.X == 0 && v.Y == 0 && v.Z == 0
}

// RectF is an axis-aligned rectangle described by an origin and a size.
type RectF struct {
	Origin Vec2
	Size   Vec2
}

// NewRectF creates a rectangle from origin and size components.
func NewRectF(x, y, w, h float32) RectF {
	return RectF{Origin: Vec2{x, y}, Size: Vec2{w, h}}
}

// MaxX returns the right edge of the rectangle.
func (r RectF) MaxX() float32 {
	return r.Origin.X + r.Size.X
}

// MaxY returns the bottom edge of the rectangle.
func (r RectF) MaxY() float32 {
	return r.Origin.Y + r.Size.Y
}

// Union returns the smallest rectangle containing both r and o.
func (r RectF) Union(o RectF) RectF {
	minX := float32(math.Min(float64(r.Origin.X), float64(o.Origin.X)))
	minY := float32(math.Min(float64(r.Origin.Y), float64(o.Origin.Y)))
	maxX := float32(math.Max(float64(r.MaxX()), float64(o.MaxX())))
	maxY := float32(math.Max(float64(r.MaxY()), float64(o.MaxY())))
	return NewRectF(minX, minY, maxX-minX, maxY-minY)
}

// Dilate returns the rectangle grown by d on every side.
func (r RectF) Dilate(d Vec2) RectF {
	return NewRectF(r.Origin.X-d.X, r.Origin.Y-d.Y, r.Size.X+2*d.X, r.Size.Y+2*d.Y)
}

// RectI is an axis-aligned rectangle with integer pixel coordinates.
type RectI struct {
	Origin Vec2i
	Size   Vec2i
}

// Matrix2D is a 2D affine transform:
//
//	| XX XY X0 |   | x |
//	| YX YY Y0 | * | y |
//	            	| 1 |
//
// Composition helpers follow the post-multiplication convention: the receiver
// is applied first and the new operation second.
type Matrix2D struct {
	XX, XY, X0 float32
	YX, YY, Y0 float32
}

// Identity2D returns the identity affine transform.
func Identity2D() Matrix2D {
	return Matrix2D{XX: 1, YY: 1}
}

// Scale2D returns a uniform or non-uniform scaling transform.
//
// Parameters:
//   - sx, sy: scale factors along each axis
//
// Returns:
//   - Matrix2D: the scaling transform
func Scale2D(sx, sy float32) Matrix2D {
	return Matrix2D{XX: sx, YY: sy}
}

// Rotation2D returns a rotation transform by theta radians.
func Rotation2D(theta float32) Matrix2D {
	c := float32(math.Cos(float64(theta)))
	s := float32(math.Sin(float64(theta)))
	return Matrix2D{XX: c, XY: -s, YX: s, YY: c}
}

// Apply transforms the point p by the matrix.
func (m Matrix2D) Apply(p Vec2) Vec2 {
	return Vec2{
		X: m.XX*p.X + m.XY*p.Y + m.X0,
		Y: m.YX*p.X + m.YY*p.Y + m.Y0,
	}
}

// PostMul returns the transform that applies m first and o second.
func (m Matrix2D) PostMul(o Matrix2D) Matrix2D {
	return Matrix2D{
		XX: o.XX*m.XX + o.XY*m.YX,
		XY: o.XX*m.XY + o.XY*m.YY,
		X0: o.XX*m.X0 + o.XY*m.Y0 + o.X0,
		YX: o.YX*m.XX + o.YY*m.YX,
		YY: o.YX*m.XY + o.YY*m.YY,
		Y0: o.YX*m.X0 + o.YY*m.Y0 + o.Y0,
	}
}

// PostTranslate returns the transform that applies m first, then translates by v.
func (m Matrix2D) PostTranslate(v Vec2) Matrix2D {
	t := Identity2D()
	t.X0, t.Y0 = v.X, v.Y
	return m.PostMul(t)
}

// PostScale returns the transform that applies m first, then scales by s.
func (m Matrix2D) PostScale(s Vec2) Matrix2D {
	return m.PostMul(Scale2D(s.X, s.Y))
}

// PostRotate returns the transform that applies m first, then rotates by theta radians.
func (m Matrix2D) PostRotate(theta float32) Matrix2D {
	return m.PostMul(Rotation2D(theta))
}

// Rotation extracts the rotation angle in radians from the transform.
func (m Matrix2D) Rotation() float32 {
	return float32(math.Atan2(float64(m.YX), float64(m.XX)))
}
