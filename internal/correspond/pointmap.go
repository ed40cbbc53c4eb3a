package correspond

import (
	"errors"
	"fmt"

	"route-stitcher/internal/graph"
	"route-stitcher/internal/match"
	"route-stitcher/pkg/geometry"
)

var (
	// ErrInsufficientCorrespondences indicates fewer correspondences than
	// the four a homography needs.
	ErrInsufficientCorrespondences = errors.New("insufficient correspondences")
	// ErrDegenerateConfiguration indicates the fit failed, e.g. on
	// collinear points.
	ErrDegenerateConfiguration = errors.New("degenerate configuration")
)

// PointMap maps points from the first image of a pair to the second. The
// returned confidence is nil when the implementation cannot quantify it.
type PointMap interface {
	Map(p geometry.Point2D) (geometry.Point2D, *float64)
}

const (
	minCorrespondences = 4
	// The correspondences are normalized, so the RANSAC inlier threshold
	// is in normalized units: 1% of the image extent.
	fitThreshold = 0.01
)

// HomographicPointMap maps points through a homography fitted to a set of
// correspondences via RANSAC.
type HomographicPointMap struct {
	h geometry.Homography
}

// NewHomographicPointMap fits a homography from the P1 space to the P2
// space of the given correspondences.
func NewHomographicPointMap(corrs []graph.Correspondence) (*HomographicPointMap, error) {
	if len(corrs) < minCorrespondences {
		return nil, fmt.Errorf("need %d correspondences, got %d: %w",
			minCorrespondences, len(corrs), ErrInsufficientCorrespondences)
	}

	src := make([]geometry.Point2D, len(corrs))
	dst := make([]geometry.Point2D, len(corrs))
	for i, c := range corrs {
		src[i] = c.P1
		dst[i] = c.P2
	}

	est := match.NewRANSACEstimator(match.DefaultRANSACIterations, fitThreshold)
	h, err := est.Estimate(src, dst)
	if err != nil {
		return nil, fmt.Errorf("fitting point map: %v: %w", err, ErrDegenerateConfiguration)
	}
	return &HomographicPointMap{h: h}, nil
}

// Map projects a point from the first image's plane to the second's.
// Confidence is reserved and currently always nil.
func (m *HomographicPointMap) Map(p geometry.Point2D) (geometry.Point2D, *float64) {
	return m.h.Apply(p), nil
}

// Homography exposes the fitted transform.
func (m *HomographicPointMap) Homography() geometry.Homography {
	return m.h
}
