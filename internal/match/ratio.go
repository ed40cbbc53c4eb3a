package match

import (
	"fmt"
	"sort"
)

// RatioMatcher is the single-pass ratio-test strategy: every query
// descriptor is compared against all train descriptors, and a pair is
// accepted only if the nearest neighbor beats the second-nearest by
// Lowe's ratio.
type RatioMatcher struct {
	Detector FeatureDetector
	Distance DistanceFunc
	Ratio    float64
}

// NewRatioMatcher creates a matcher with the default ratio threshold.
func NewRatioMatcher(det FeatureDetector, dist DistanceFunc) *RatioMatcher {
	return &RatioMatcher{Detector: det, Distance: dist, Ratio: DefaultRatio}
}

// Match detects keypoints in both images and returns the ratio-test
// survivors. Images with fewer than two train keypoints yield no matches,
// since the test needs a second-best candidate.
func (m *RatioMatcher) Match(img1, img2 Image) ([]DMatch, []Keypoint, []Keypoint, error) {
	kp1, err := m.Detector.DetectAndCompute(img1)
	if err != nil {
		return nil, nil, nil, fmt.Errorf("detecting image 1: %w", err)
	}
	kp2, err := m.Detector.DetectAndCompute(img2)
	if err != nil {
		return nil, nil, nil, fmt.Errorf("detecting image 2: %w", err)
	}

	var matches []DMatch
	for qi := range kp1 {
		best, second := nearestTwo(kp1[qi].Descriptor, kp2, m.Distance)
		if best.Train < 0 || second.Train < 0 {
			continue
		}
		if best.Distance < m.Ratio*second.Distance {
			matches = append(matches, DMatch{Query: qi, Train: best.Train, Distance: best.Distance})
		}
	}
	return matches, kp1, kp2, nil
}

// BruteForceMatcher pairs every query keypoint with its nearest train
// keypoint, no ratio test, sorted ascending by distance. Kept as a
// diagnostic strategy; too noisy for real use.
type BruteForceMatcher struct {
	Detector FeatureDetector
	Distance DistanceFunc
}

// Match returns the nearest-neighbor match for every query keypoint.
func (m *BruteForceMatcher) Match(img1, img2 Image) ([]DMatch, []Keypoint, []Keypoint, error) {
	kp1, err := m.Detector.DetectAndCompute(img1)
	if err != nil {
		return nil, nil, nil, fmt.Errorf("detecting image 1: %w", err)
	}
	kp2, err := m.Detector.DetectAndCompute(img2)
	if err != nil {
		return nil, nil, nil, fmt.Errorf("detecting image 2: %w", err)
	}

	var matches []DMatch
	for qi := range kp1 {
		best, _ := nearestTwo(kp1[qi].Descriptor, kp2, m.Distance)
		if best.Train < 0 {
			continue
		}
		matches = append(matches, DMatch{Query: qi, Train: best.Train, Distance: best.Distance})
	}
	sort.SliceStable(matches, func(i, j int) bool { return matches[i].Distance < matches[j].Distance })
	return matches, kp1, kp2, nil
}

// candidate is a train index with its descriptor distance; Train < 0 means
// no candidate.
type candidate struct {
	Train    int
	Distance float64
}

// nearestTwo scans all train keypoints for the best and second-best
// descriptor distance to d.
func nearestTwo(d Descriptor, train []Keypoint, dist DistanceFunc) (best, second candidate) {
	best = candidate{Train: -1}
	second = candidate{Train: -1}
	for ti := range train {
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
