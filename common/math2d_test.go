package common

import (
	"math"
	"testing"
)

const eps = 1e-4

func vecNear(a, b Vec2) bool {
	return math.Abs(float64(a.X-b.X)) < eps && math.Abs(float64(a.Y-b.Y)) < eps
}

func TestMatrix2DPostMulAppliesReceiverFirst(t *testing.T) {
	// Scale then translate: the origin should land on the translation.
	m := Scale2D(2, 2).PostTranslate(Vec2{X: 10, Y: 20})

	if got := m.Apply(Vec2{}); !vecNear(got, Vec2{X: 10, Y: 20}) {
		t.Fatalf("origin maps to %+v, want the translation", got)
	}
	if got := m.Apply(Vec2{X: 1, Y: 1}); !vecNear(got, Vec2{X: 12, Y: 22}) {
		t.Fatalf("(1,1) maps to %+v, want {12 22}", got)
	}

	// Reversed order scales the translation too.
	reversed := Identity2D().PostTranslate(Vec2{X: 10, Y: 20}).PostScale(Vec2{X: 2, Y: 2})
	if got := reversed.Apply(Vec2{}); !vecNear(got, Vec2{X: 20, Y: 40}) {
		t.Fatalf("origin maps to %+v under translate-then-scale, want {20 40}", got)
	}
}

func TestMatrix2DRotationRoundTrip(t *testing.T) {
	angles := []float32{0, 0.3, math.Pi / 2, -1.2}
	for _, angle := range angles {
		m := Identity2D().PostRotate(angle)
		if got := m.Rotation(); math.Abs(float64(got-angle)) > eps {
			t.Errorf("Rotation() after PostRotate(%v) = %v", angle, got)
		}
	}

	quarter := Rotation2D(math.Pi / 2)
	if got := quarter.Apply(Vec2{X: 1}); !vecNear(got, Vec2{Y: 1}) {
		t.Fatalf("quarter turn maps (1,0) to %+v, want (0,1)", got)
	}
}

func TestRectFUnionAndDilate(t *testing.T) {
	a := NewRectF(0, 0, 10, 10)
	b := NewRectF(5, -5, 10, 10)

	u := a.Union(b)
	if u != NewRectF(0, -5, 15, 15) {
		t.Fatalf("union = %+v, want 0 -5 15 15", u)
	}

	d := a.Dilate(Vec2{X: 1, Y: 2})
	if d != NewRectF(-1, -2, 12, 14) {
		t.Fatalf("dilated = %+v, want -1 -2 12 14", d)
	}
}
