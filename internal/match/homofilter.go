package match

import (
	"fmt"

	"route-stitcher/pkg/geometry"
)

// HomographyFilter wraps another matcher and discards matches that
// disagree with the dominant homography between the two images. With
// fewer than MinMatchCount matches there are too few points to fit a
// reliable model, and the inner result passes through unfiltered.
//
// Threshold is a fraction of the destination image size, not a pixel
// count, which keeps the filter scale-invariant.
type HomographyFilter struct {
	Inner         Matcher
	Estimator     HomographyEstimator
	Threshold     float64
	MinMatchCount int
}

// NewHomographyFilter creates a filter with the default threshold and
// minimum match count.
func NewHomographyFilter(inner Matcher, est HomographyEstimator) *HomographyFilter {
	return &HomographyFilter{
		Inner:         inner,
		Estimator:     est,
		Threshold:     DefaultFilterThreshold,
		MinMatchCount: DefaultMinMatchCount,
	}
}

// Match runs the inner matcher and keeps only matches whose train point
// lies close to the homography projection of their query point.
func (f *HomographyFilter) Match(img1, img2 Image) ([]DMatch, []Keypoint, []Keypoint, error) {
	matches, kp1, kp2, err := f.Inner.Match(img1, img2)
	if err != nil {
		return nil, nil, nil, err
	}
	if len(matches) < f.MinMatchCount {
		return matches, kp1, kp2, nil
	}

	h, err := f.Estimator.Estimate(points1(matches, kp1), points2(matches, kp2))
	if err != nil {
		return nil, nil, nil, fmt.Errorf("fitting consistency model: %w", err)
	}

	size2 := img2.Size()
	var kept []DMatch
	for _, m := range matches {
		projected := h.Apply(kp1[m.Query].Pt)
		diff := kp2[m.Train].Pt.Sub(projected)
		residual := geometry.Point2D{X: diff.X / size2.Width, Y: diff.Y / size2.Height}
		if residual.Norm() < f.Threshold {
			kept = append(kept, m)
		}
	}
	return kept, kp1, kp2, nil
}
