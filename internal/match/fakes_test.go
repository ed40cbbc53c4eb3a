package match

import (
	"route-stitcher/pkg/geometry"
)

// fakeImage carries its size; the detector funcs below decide what it
// "contains".
type fakeImage struct {
	size geometry.Size
}

func (f *fakeImage) Size() geometry.Size { return f.size }

// detectorFunc adapts a function to FeatureDetector.
type detectorFunc func(Image) ([]Keypoint, error)

func (f detectorFunc) DetectAndCompute(img Image) ([]Keypoint, error) { return f(img) }

// fixedKeypoints returns a detector that yields preset keypoints per image.
func fixedKeypoints(byImage map[Image][]Keypoint) detectorFunc {
	return func(img Image) ([]Keypoint, error) {
		return byImage[img], nil
	}
}

// estimatorFunc adapts a function to HomographyEstimator.
type estimatorFunc func(src, dst []geometry.Point2D) (geometry.Homography, error)

func (f estimatorFunc) Estimate(src, dst []geometry.Point2D) (geometry.Homography, error) {
	return f(src, dst)
}

func fixedHomography(h geometry.Homography) estimatorFunc {
	return func(_, _ []geometry.Point2D) (geometry.Homography, error) {
		return h, nil
	}
}

// translation returns the homography that shifts points by (dx, dy).
func translation(dx, dy float64) geometry.Homography {
	h := geometry.IdentityHomography()
	h.M[0][2] = dx
	h.M[1][2] = dy
	return h
}

// fakeMatcher returns a preset result, for exercising decorating matchers.
type fakeMatcher struct {
	matches []DMatch
	kp1     []Keypoint
	kp2     []Keypoint
	err     error
}

func (f *fakeMatcher) Match(_, _ Image) ([]DMatch, []Keypoint, []Keypoint, error) {
	return f.matches, f.kp1, f.kp2, f.err
}

// kp makes a descriptor-less keypoint at a pixel position.
func kp(x, y float64) Keypoint {
	return Keypoint{Pt: geometry.NewPoint2D(x, y)}
}

// dkp makes a keypoint with a descriptor.
func dkp(x, y float64, desc Descriptor) Keypoint {
	return Keypoint{Pt: geometry.NewPoint2D(x, y), Descriptor: desc}
}

// bitsDescriptor builds a two-byte descriptor with exactly n low bits set,
// so HammingDistance to the zero descriptor is n.
func bitsDescriptor(n int) Descriptor {
	d := Descriptor{0, 0}
	for i := 0; i < n; i++ {
		d[i/8] |= 1 << (i % 8)
	}
	return d
}
