package match

import (
	"fmt"
	"sort"

	"route-stitcher/pkg/geometry"
)

// TwoStageMatcher is the geometry-guided matching strategy. A coarse
// ratio-test pass over a modest keypoint budget yields a global alignment
// prior; a homography fitted to it then restricts the search for a much
// denser keypoint population to geometrically plausible neighborhoods.
// This is both faster than exhaustive dense matching and more robust
// against spurious far-away matches.
//
// Geometry failure in stage one is a hard error: without a trustworthy
// prior the guided search has nothing to stand on.
type TwoStageMatcher struct {
	Coarse    FeatureDetector // Modest budget, stage one
	Dense     FeatureDetector // Large budget, stage two; independent of Coarse
	Estimator HomographyEstimator
	Index     IndexBuilder
	Distance  DistanceFunc
	Config    Config
}

// NewTwoStageMatcher assembles the strategy from its capabilities with
// default parameters.
func NewTwoStageMatcher(coarse, dense FeatureDetector, est HomographyEstimator, index IndexBuilder, dist DistanceFunc) *TwoStageMatcher {
	return &TwoStageMatcher{
		Coarse:    coarse,
		Dense:     dense,
		Estimator: est,
		Index:     index,
		Distance:  dist,
		Config:    DefaultConfig(),
	}
}

// Match runs both stages and returns the surviving matches together with
// the dense keypoint sets they index into.
func (m *TwoStageMatcher) Match(img1, img2 Image) ([]DMatch, []Keypoint, []Keypoint, error) {
	// Stage one: sparse, higher-precision matches for the alignment prior.
	coarse := &RatioMatcher{Detector: m.Coarse, Distance: m.Distance, Ratio: m.Config.Ratio}
	coarseMatches, ckp1, ckp2, err := coarse.Match(img1, img2)
	if err != nil {
		return nil, nil, nil, fmt.Errorf("coarse pass: %w", err)
	}

	h, err := m.Estimator.Estimate(points1(coarseMatches, ckp1), points2(coarseMatches, ckp2))
	if err != nil {
		return nil, nil, nil, fmt.Errorf("coarse alignment: %v: %w", err, ErrGeometryEstimation)
	}

	// Stage two: independent dense re-detection in both images.
	kp1, err := m.Dense.DetectAndCompute(img1)
	if err != nil {
		return nil, nil, nil, fmt.Errorf("dense detection, image 1: %w", err)
	}
	kp2, err := m.Dense.DetectAndCompute(img2)
	if err != nil {
		return nil, nil, nil, fmt.Errorf("dense detection, image 2: %w", err)
	}

	index := m.Index(keypointPositions(kp2))

	// The search radius scales with image 2 so the matcher is
	// resolution-independent.
	radius := m.Config.MaxDisplacement * img2.Size().MinSide()

	var matches []DMatch
	for qi := range kp1 {
		projected := h.Apply(kp1[qi].Pt)
		best, second := nearestAmong(kp1[qi].Descriptor, kp2, index.Within(projected, radius), m.Distance)
		if best.Train < 0 {
			continue
		}
		// Re-apply the ratio test, restricted to the plausible
		// neighborhood. A lone candidate is accepted outright.
		if second.Train < 0 || best.Distance < m.Config.Ratio*second.Distance {
			matches = append(matches, DMatch{Query: qi, Train: best.Train, Distance: best.Distance})
		}
	}

	sort.SliceStable(matches, func(i, j int) bool { return matches[i].Distance < matches[j].Distance })

	// Greedy spatial non-maximum suppression on the image-1 keypoints:
	// walking best-first, keep a match only if it is far enough from every
	// previously kept one, so near-duplicate matches on one highly
	// textured feature cannot cluster.
	minDist := m.Config.MinKeypointDistance * img1.Size().MinSide()
	var final []DMatch
	var chosen []geometry.Point2D
	for _, cand := range matches {
		pt := kp1[cand.Query].Pt
		if tooClose(pt, chosen, minDist) {
			continue
		}
		final = append(final, cand)
		chosen = append(chosen, pt)
	}

	return final, kp1, kp2, nil
}

// nearestAmong finds the best and second-best descriptor distance to d
// among the train keypoints named by idxs.
func nearestAmong(d Descriptor, train []Keypoint, idxs []int, dist DistanceFunc) (best, second candidate) {
	best = candidate{Train: -1}
	second = candidate{Train: -1}
	for _, ti := range idxs {
		dd := dist(d, train[ti].Descriptor)
		switch {
		case best.Train < 0 || dd < best.Distance:
			second = best
			best = candidate{Train: ti, Distance: dd}
		case second.Train < 0 || dd < second.Distance:
			second = candidate{Train: ti, Distance: dd}
		}
	}
	return best, second
}

func keypointPositions(kps []Keypoint) []geometry.Point2D {
	pts := make([]geometry.Point2D, len(kps))
	for i, kp := range kps {
		pts[i] = kp.Pt
	}
	return pts
}

func tooClose(pt geometry.Point2D, chosen []geometry.Point2D, minDist float64) bool {
	for _, c := range chosen {
		if pt.Distance(c) <= minDist {
			return true
		}
	}
	return false
}
