// Package match implements the feature-matching engine: composable
// strategies that propose candidate point matches between two overlapping
// images. Detection, spatial indexing and robust homography fitting are
// injected capabilities, so the engine itself stays independent of any
// particular vision backend.
package match

import (
	"errors"

	"route-stitcher/pkg/geometry"
)

// ErrGeometryEstimation indicates that robust homography fitting could not
// produce a model (too few inliers or a degenerate configuration).
var ErrGeometryEstimation = errors.New("geometry estimation failed")

// Image is the engine's view of one input image: its pixel dimensions plus
// whatever concrete representation the injected detector understands.
type Image interface {
	// Size returns the pixel dimensions of the image.
	Size() geometry.Size
}

// Keypoint is a detected salient image location in pixel space together
// with its descriptor.
type Keypoint struct {
	Pt         geometry.Point2D
	Descriptor Descriptor
}

// DMatch records that query keypoint Query of the first image matches train
// keypoint Train of the second, at the given descriptor distance.
type DMatch struct {
	Query    int
	Train    int
	Distance float64
}

// Matcher proposes candidate matches between two images. The returned
// keypoint slices are indexed by the Query and Train fields of the matches.
type Matcher interface {
	Match(img1, img2 Image) (matches []DMatch, kp1, kp2 []Keypoint, err error)
}

// FeatureDetector extracts keypoints and descriptors from an image.
type FeatureDetector interface {
	DetectAndCompute(img Image) ([]Keypoint, error)
}

// HomographyEstimator fits a homography mapping src[i] to dst[i],
// tolerating outlier pairs. Implementations fix their robust method and
// inlier threshold at construction.
type HomographyEstimator interface {
	Estimate(src, dst []geometry.Point2D) (geometry.Homography, error)
}

// SpatialIndex answers radius queries over a fixed set of 2D points.
type SpatialIndex interface {
	// Within returns the indices of all indexed points at distance <= r
	// from q, in no particular order.
	Within(q geometry.Point2D, r float64) []int
}

// IndexBuilder constructs a SpatialIndex over the given points. Indices
// returned by Within refer to positions in this slice.
type IndexBuilder func(points []geometry.Point2D) SpatialIndex

// points1 extracts the pixel positions of the query keypoints of a match set.
func points1(matches []DMatch, kp1 []Keypoint) []geometry.Point2D {
	pts := make([]geometry.Point2D, len(matches))
	for i, m := range matches {
		pts[i] = kp1[m.Query].Pt
	}
	return pts
}

// points2 extracts the pixel positions of the train keypoints of a match set.
func points2(matches []DMatch, kp2 []Keypoint) []geometry.Point2D {
	pts := make([]geometry.Point2D, len(matches))
	for i, m := range matches {
		pts[i] = kp2[m.Train].Pt
	}
	return pts
}
