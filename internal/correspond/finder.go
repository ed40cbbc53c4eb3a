// Package correspond converts raw matcher output into the normalized
// correspondences the graph store holds, and maps points across image
// pairs through a fitted homography.
package correspond

import (
	"route-stitcher/internal/graph"
	"route-stitcher/internal/match"
	"route-stitcher/pkg/geometry"
)

// Finder wraps a matcher and emits graph-ready correspondences: each
// accepted match's keypoints are converted from pixel space to normalized
// space by each image's own dimensions.
type Finder struct {
	Matcher match.Matcher
}

// NewFinder creates a Finder over the given matcher.
func NewFinder(m match.Matcher) *Finder {
	return &Finder{Matcher: m}
}

// Find matches the two images and returns one correspondence per accepted
// match. Output order follows the matcher and is not guaranteed stable
// across descriptor-search implementations; treat the result as a set.
func (f *Finder) Find(img1, img2 match.Image) ([]graph.Correspondence, error) {
	matches, kp1, kp2, err := f.Matcher.Match(img1, img2)
	if err != nil {
		return nil, err
	}

	size1 := img1.Size()
	size2 := img2.Size()

	result := make([]graph.Correspondence, 0, len(matches))
	for _, m := range matches {
		result = append(result, graph.NewCorrespondence(
			geometry.Normalize(kp1[m.Query].Pt, size1),
			geometry.Normalize(kp2[m.Train].Pt, size2),
		))
	}
	return result, nil
}
