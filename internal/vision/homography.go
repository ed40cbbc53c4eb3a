package vision

import (
	"fmt"

	"route-stitcher/internal/match"
	"route-stitcher/pkg/geometry"

	"gocv.io/x/gocv"
)

// OpenCVEstimator fits homographies with OpenCV's robust solvers. The
// method and inlier threshold are fixed at construction, per the
// HomographyEstimator contract.
type OpenCVEstimator struct {
	method    gocv.HomographyMethod
	threshold float64
}

// NewRANSACEstimator creates a RANSAC-based estimator with the given
// reprojection threshold in the units of the input points.
func NewRANSACEstimator(threshold float64) *OpenCVEstimator {
	return &OpenCVEstimator{method: gocv.HomograpyMethodRANSAC, threshold: threshold}
}

// NewLMedSEstimator creates a least-median-of-squares estimator. LMedS
// needs no threshold but requires a majority of inliers.
func NewLMedSEstimator() *OpenCVEstimator {
	return &OpenCVEstimator{method: gocv.HomograpyMethodLMEDS, threshold: 0}
}

// Estimate fits a homography mapping src[i] to dst[i].
func (e *OpenCVEstimator) Estimate(src, dst []geometry.Point2D) (geometry.Homography, error) {
	if len(src) != len(dst) {
		return geometry.Homography{}, fmt.Errorf("point count mismatch: %d vs %d: %w",
			len(src), len(dst), match.ErrGeometryEstimation)
	}
	if len(src) < 4 {
		return geometry.Homography{}, fmt.Errorf("need at least 4 points, got %d: %w",
			len(src), match.ErrGeometryEstimation)
	}

	srcMat := matFromPoints(src)
	defer srcMat.Close()
	dstMat := matFromPoints(dst)
	defer dstMat.Close()
	mask := gocv.NewMat()
	defer mask.Close()

	hm := gocv.FindHomography(srcMat, &dstMat, e.method, e.threshold, &mask, 2000, 0.995)
	defer hm.Close()

	if hm.Empty() || hm.Rows() != 3 || hm.Cols() != 3 {
		return geometry.Homography{}, fmt.Errorf("no consistent model for %d pairs: %w",
			len(src), match.ErrGeometryEstimation)
	}

	var h geometry.Homography
	for r := 0; r < 3; r++ {
		for c := 0; c < 3; c++ {
			h.M[r][c] = hm.GetDoubleAt(r, c)
		}
	}
	return h, nil
}

// matFromPoints packs points into the Nx1 two-channel matrix layout the
// calib3d functions expect.
func matFromPoints(pts []geometry.Point2D) gocv.Mat {
	m := gocv.NewMatWithSize(len(pts), 1, gocv.MatTypeCV64FC2)
	for i, p := range pts {
		m.SetDoubleAt(i, 0, p.X)
		m.SetDoubleAt(i, 1, p.Y)
	}
	return m
}
