package match

import (
	"fmt"
	"math/rand"

	"route-stitcher/pkg/geometry"

	"gonum.org/v1/gonum/mat"
)

// RANSACEstimator is a pure Go robust homography estimator. It exists so
// the engine works without an OpenCV installation and so tests can
// exercise the geometry pipeline directly; the gocv-backed estimator is
// preferred when available.
type RANSACEstimator struct {
	Iterations int
	Threshold  float64 // Inlier reprojection distance, in the units of the input points
}

// NewRANSACEstimator creates an estimator with the given inlier threshold.
func NewRANSACEstimator(iterations int, threshold float64) *RANSACEstimator {
	return &RANSACEstimator{Iterations: iterations, Threshold: threshold}
}

// Estimate fits a homography mapping src[i] to dst[i] by random sampling,
// then refits on the best inlier set by least squares.
func (e *RANSACEstimator) Estimate(src, dst []geometry.Point2D) (geometry.Homography, error) {
	if len(src) != len(dst) {
		return geometry.Homography{}, fmt.Errorf("point count mismatch: %d vs %d: %w", len(src), len(dst), ErrGeometryEstimation)
	}
	if len(src) < 4 {
		return geometry.Homography{}, fmt.Errorf("need at least 4 points, got %d: %w", len(src), ErrGeometryEstimation)
	}

	n := len(src)
	var bestInliers []int
	var bestH geometry.Homography

	for iter := 0; iter < e.Iterations; iter++ {
		// Randomly sample 4 point pairs (minimum for a homography).
		indices := rand.Perm(n)[:4]

		sample := make([]geometry.Point2D, 4)
		target := make([]geometry.Point2D, 4)
		for i, idx := range indices {
			sample[i] = src[idx]
			target[i] = dst[idx]
		}

		h, err := homographyFromFour(sample, target)
		if err != nil {
			continue
		}

		var inliers []int
		for i := range src {
			if h.Apply(src[i]).Distance(dst[i]) < e.Threshold {
				inliers = append(inliers, i)
			}
		}

		if len(inliers) > len(bestInliers) {
			bestInliers = inliers
			bestH = h
		}
	}

	if len(bestInliers) < 4 {
		return geometry.Homography{}, fmt.Errorf("RANSAC found only %d inliers: %w", len(bestInliers), ErrGeometryEstimation)
	}

	// Refit on all inliers for a better-conditioned model.
	inlierSrc := make([]geometry.Point2D, len(bestInliers))
	inlierDst := make([]geometry.Point2D, len(bestInliers))
	for i, idx := range bestInliers {
		inlierSrc[i] = src[idx]
		inlierDst[i] = dst[idx]
	}

	refined, err := homographyLeastSquares(inlierSrc, inlierDst)
	if err != nil {
		return bestH, nil
	}
	return refined, nil
}

// homographyFromFour solves the exact 8x8 system for a homography through
// four point pairs, with h22 fixed to 1.
func homographyFromFour(src, dst []geometry.Point2D) (geometry.Homography, error) {
	A := mat.NewDense(8, 8, nil)
	b := mat.NewVecDense(8, nil)

	for i := 0; i < 4; i++ {
		fillHomographyRows(A, b, i, src[i], dst[i])
	}

	var params mat.VecDense
	if err := params.SolveVec(A, b); err != nil {
		return geometry.Homography{}, err
	}
	return homographyFromParams(&params), nil
}

// homographyLeastSquares solves the overdetermined 2n x 8 system via QR.
func homographyLeastSquares(src, dst []geometry.Point2D) (geometry.Homography, error) {
	n := len(src)
	if n < 4 {
		return geometry.Homography{}, fmt.Errorf("need at least 4 points, got %d", n)
	}

	A := mat.NewDense(n*2, 8, nil)
	b := mat.NewVecDense(n*2, nil)
	for i := 0; i < n; i++ {
		fillHomographyRows(A, b, i, src[i], dst[i])
	}

	var qr mat.QR
	qr.Factorize(A)

	var params mat.VecDense
	if err := qr.SolveVecTo(&params, false, b); err != nil {
		return geometry.Homography{}, err
	}
	return homographyFromParams(&params), nil
}

// fillHomographyRows writes the two equations contributed by one point
// pair into rows 2i and 2i+1:
//
//	x' = (h00 x + h01 y + h02) / (h20 x + h21 y + 1)
//	y' = (h10 x + h11 y + h12) / (h20 x + h21 y + 1)
func fillHomographyRows(A *mat.Dense, b *mat.VecDense, i int, s, d geometry.Point2D) {
	x, y := s.X, s.Y
	xp, yp := d.X, d.Y

	A.Set(i*2, 0, x)
	A.Set(i*2, 1, y)
	A.Set(i*2, 2, 1)
	A.Set(i*2, 6, -x*xp)
	A.Set(i*2, 7, -y*xp)
	b.SetVec(i*2, xp)

	A.Set(i*2+1, 3, x)
	A.Set(i*2+1, 4, y)
	A.Set(i*2+1, 5, 1)
	A.Set(i*2+1, 6, -x*yp)
	A.Set(i*2+1, 7, -y*yp)
	b.SetVec(i*2+1, yp)
}

func homographyFromParams(params *mat.VecDense) geometry.Homography {
	return geometry.Homography{M: [3][3]float64{
		{params.AtVec(0), params.AtVec(1), params.AtVec(2)},
		{params.AtVec(3), params.AtVec(4), params.AtVec(5)},
		{params.AtVec(6), params.AtVec(7), 1},
	}}
}
