package geometry

import (
	"math"
	"testing"
)

func TestPointArithmetic(t *testing.T) {
	a := Point2D{X: 3, Y: 4}
	b := Point2D{X: 1, Y: 2}

	if got := a.Add(b); got != (Point2D{X: 4, Y: 6}) {
		t.Errorf("Add: got %+v", got)
	}
	if got := a.Sub(b); got != (Point2D{X: 2, Y: 2}) {
		t.Errorf("Sub: got %+v", got)
	}
	if got := a.Scale(2); got != (Point2D{X: 6, Y: 8}) {
		t.Errorf("Scale: got %+v", got)
	}
	if got := a.Norm(); got != 5 {
		t.Errorf("Norm: got %g, want 5", got)
	}
	if got := a.Distance(Point2D{}); got != 5 {
		t.Errorf("Distance: got %g, want 5", got)
	}
}

func TestNormalizeRoundTrip(t *testing.T) {
	size := Size{Width: 640, Height: 480}
	p := Point2D{X: 320, Y: 120}

	n := Normalize(p, size)
	if n.X != 0.5 || n.Y != 0.25 {
		t.Fatalf("Normalize: got %+v", n)
	}

	back := Denormalize(n, size)
	if math.Abs(back.X-p.X) > 1e-12 || math.Abs(back.Y-p.Y) > 1e-12 {
		t.Errorf("Denormalize: got %+v, want %+v", back, p)
	}
}

func TestMinSide(t *testing.T) {
	if got := (Size{Width: 640, Height: 480}).MinSide(); got != 480 {
		t.Errorf("got %g, want 480", got)
	}
	if got := (Size{Width: 200, Height: 900}).MinSide(); got != 200 {
		t.Errorf("got %g, want 200", got)
	}
}

func TestCentroidAndBoundingBox(t *testing.T) {
	pts := []Point2D{
		{X: 0, Y: 0},
		{X: 4, Y: 0},
		{X: 4, Y: 2},
		{X: 0, Y: 2},
	}

	c := Centroid(pts)
	if c.X != 2 || c.Y != 1 {
		t.Errorf("Centroid: got %+v", c)
	}

	box := BoundingBox(pts)
	if box.X != 0 || box.Y != 0 || box.Width != 4 || box.Height != 2 {
		t.Errorf("BoundingBox: got %+v", box)
	}
	if !box.Contains(c) {
		t.Error("centroid should be inside the bounding box")
	}
}

func TestCentroidEmpty(t *testing.T) {
	if got := Centroid(nil); got != (Point2D{}) {
		t.Errorf("got %+v, want origin", got)
	}
	if got := BoundingBox(nil); got != (Rect{}) {
		t.Errorf("got %+v, want zero rect", got)
	}
}

func TestHomographyIdentity(t *testing.T) {
	h := IdentityHomography()
	p := Point2D{X: 0.3, Y: 0.7}
	if got := h.Apply(p); got != p {
		t.Errorf("identity should map points to themselves, got %+v", got)
	}
}

func TestHomographyTranslation(t *testing.T) {
	h := Homography{M: [3][3]float64{
		{1, 0, 5},
		{0, 1, -2},
		{0, 0, 1},
	}}

	got := h.Apply(Point2D{X: 1, Y: 1})
	if got != (Point2D{X: 6, Y: -1}) {
		t.Errorf("got %+v, want (6,-1)", got)
	}

	all := h.ApplyAll([]Point2D{{X: 0, Y: 0}, {X: 2, Y: 3}})
	if all[0] != (Point2D{X: 5, Y: -2}) || all[1] != (Point2D{X: 7, Y: 1}) {
		t.Errorf("ApplyAll: got %+v", all)
	}
}

func TestHomographyProjectiveDivide(t *testing.T) {
	// Bottom row scales the homogeneous coordinate, so the result must be
	// divided through by w = x + y + 1.
	h := Homography{M: [3][3]float64{
		{1, 0, 0},
		{0, 1, 0},
		{1, 1, 1},
	}}

	got := h.Apply(Point2D{X: 1, Y: 2})
	want := Point2D{X: 0.25, Y: 0.5}
	if math.Abs(got.X-want.X) > 1e-12 || math.Abs(got.Y-want.Y) > 1e-12 {
		t.Errorf("got %+v, want %+v", got, want)
	}
}
