package vision

import (
	"fmt"

	"route-stitcher/internal/match"
	"route-stitcher/pkg/geometry"

	"gocv.io/x/gocv"
)

// ORBDetector detects ORB keypoints and their 256-bit binary descriptors.
// It is not safe for concurrent use; construct one per goroutine.
type ORBDetector struct {
	orb gocv.ORB
}

// NewORBDetector creates a detector with the given keypoint budget and
// the standard 1.2x scale pyramid.
func NewORBDetector(nfeatures int) *ORBDetector {
	return &ORBDetector{
		orb: gocv.NewORBWithParams(nfeatures, 1.2, 8, 31, 0, 2, gocv.ORBScoreTypeHarris, 31, 20),
	}
}

// DetectAndCompute extracts keypoints and descriptors from a vision.Image.
func (d *ORBDetector) DetectAndCompute(img match.Image) ([]match.Keypoint, error) {
	im, ok := img.(*Image)
	if !ok {
		return nil, fmt.Errorf("ORB detector needs a vision image, got %T", img)
	}

	mask := gocv.NewMat()
	defer mask.Close()

	kps, desc := d.orb.DetectAndCompute(im.Mat(), mask)
	defer desc.Close()

	if len(kps) == 0 || desc.Empty() {
		return nil, nil
	}

	// Descriptors are one row of bytes per keypoint.
	data := desc.ToBytes()
	rowLen := desc.Cols()

	result := make([]match.Keypoint, len(kps))
	for i, kp := range kps {
		result[i] = match.Keypoint{
			Pt:         geometry.NewPoint2D(kp.X, kp.Y),
			Descriptor: match.Descriptor(data[i*rowLen : (i+1)*rowLen]),
		}
	}
	return result, nil
}

// Close releases the detector.
func (d *ORBDetector) Close() error {
	return d.orb.Close()
}
