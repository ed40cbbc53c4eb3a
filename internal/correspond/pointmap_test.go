package correspond

import (
	"errors"
	"math"
	"testing"

	"route-stitcher/internal/graph"
	"route-stitcher/pkg/geometry"
)

// affineCorrs builds noise-free correspondences under an exact affine map.
func affineCorrs(n int) []graph.Correspondence {
	apply := func(p geometry.Point2D) geometry.Point2D {
		return geometry.Point2D{
			X: 0.5*p.X + 0.1*p.Y + 0.05,
			Y: -0.05*p.X + 0.6*p.Y + 0.1,
		}
	}
	// Well-spread base points keep every 4-point sample far from
	// degenerate configurations.
	base := []geometry.Point2D{
		{X: 0.1, Y: 0.1}, {X: 0.9, Y: 0.15}, {X: 0.85, Y: 0.9}, {X: 0.15, Y: 0.8},
		{X: 0.5, Y: 0.3}, {X: 0.3, Y: 0.55}, {X: 0.7, Y: 0.6}, {X: 0.45, Y: 0.85},
	}
	var corrs []graph.Correspondence
	for i := 0; i < n; i++ {
		b := base[i%len(base)]
		off := 0.03 * float64(i/len(base))
		p := geometry.NewPoint2D(b.X+off, b.Y-off)
		corrs = append(corrs, graph.NewCorrespondence(p, apply(p)))
	}
	return corrs
}

func TestHomographicPointMap_ExactOnAffine(t *testing.T) {
	for _, n := range []int{4, 8, 16} {
		corrs := affineCorrs(n)
		pm, err := NewHomographicPointMap(corrs)
		if err != nil {
			t.Fatalf("n=%d: NewHomographicPointMap: %v", n, err)
		}
		for _, c := range corrs {
			got, conf := pm.Map(c.P1)
			if conf != nil {
				t.Fatal("confidence is reserved and must be nil")
			}
			if math.Abs(got.X-c.P2.X) > 1e-6 || math.Abs(got.Y-c.P2.Y) > 1e-6 {
				t.Errorf("n=%d: Map(%v) = %v, want %v", n, c.P1, got, c.P2)
			}
		}
	}
}

func TestHomographicPointMap_TooFew(t *testing.T) {
	_, err := NewHomographicPointMap(affineCorrs(3))
	if !errors.Is(err, ErrInsufficientCorrespondences) {
		t.Fatalf("got %v, want ErrInsufficientCorrespondences", err)
	}
}

func TestHomographicPointMap_Collinear(t *testing.T) {
	var corrs []graph.Correspondence
	for i := 0; i < 8; i++ {
		v := 0.1 * float64(i+1)
		corrs = append(corrs, graph.NewCorrespondence(
			geometry.NewPoint2D(v, v),
			geometry.NewPoint2D(v+0.05, v+0.05),
		))
	}

	_, err := NewHomographicPointMap(corrs)
	if !errors.Is(err, ErrDegenerateConfiguration) {
		t.Fatalf("got %v, want ErrDegenerateConfiguration", err)
	}
}
