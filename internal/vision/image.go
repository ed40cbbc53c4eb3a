// Package vision implements the engine's external capabilities on top of
// OpenCV: image loading, ORB feature detection, and robust homography
// estimation.
package vision

import (
	"fmt"
	"image"
	_ "image/jpeg"
	_ "image/png"
	"os"

	"route-stitcher/pkg/geometry"

	"gocv.io/x/gocv"
	_ "golang.org/x/image/tiff"
)

// DefaultMaxPixels caps each image dimension before matching. Detection
// cost grows fast with resolution and matching quality does not.
const DefaultMaxPixels = 1000

// Image wraps an OpenCV matrix together with its pixel dimensions. It
// implements match.Image. Callers own the image and must Close it.
type Image struct {
	mat  gocv.Mat
	size geometry.Size
}

func newImage(mat gocv.Mat) *Image {
	return &Image{
		mat:  mat,
		size: geometry.NewSize(float64(mat.Cols()), float64(mat.Rows())),
	}
}

// Size returns the pixel dimensions of the image.
func (im *Image) Size() geometry.Size { return im.size }

// Mat exposes the underlying matrix to detectors.
func (im *Image) Mat() gocv.Mat { return im.mat }

// Close releases the underlying matrix.
func (im *Image) Close() error { return im.mat.Close() }

// Load reads an image from disk. OpenCV's reader is tried first; formats
// it was built without (commonly TIFF) fall back to the Go decoders.
func Load(path string) (*Image, error) {
	mat := gocv.IMRead(path, gocv.IMReadColor)
	if !mat.Empty() {
		return newImage(mat), nil
	}
	mat.Close()

	f, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer f.Close()

	decoded, _, err := image.Decode(f)
	if err != nil {
		return nil, fmt.Errorf("decoding %s: %w", path, err)
	}
	mat, err = gocv.ImageToMatRGB(decoded)
	if err != nil {
		return nil, fmt.Errorf("converting %s: %w", path, err)
	}
	return newImage(mat), nil
}

// Grayscale returns a single-channel copy of the image. Feature detection
// operates on grayscale.
func (im *Image) Grayscale() *Image {
	if im.mat.Channels() == 1 {
		return newImage(im.mat.Clone())
	}
	dst := gocv.NewMat()
	gocv.CvtColor(im.mat, &dst, gocv.ColorBGRToGray)
	return newImage(dst)
}

// ScaleDown resizes the image so that each dimension is at most maxPixels,
// preserving the aspect ratio. Images already within bounds are copied
// unchanged.
func (im *Image) ScaleDown(maxPixels int) *Image {
	limit := float64(maxPixels)
	scale := 1.0
	if limit/im.size.Width < scale {
		scale = limit / im.size.Width
	}
	if limit/im.size.Height < scale {
		scale = limit / im.size.Height
	}
	if scale >= 1.0 {
		return newImage(im.mat.Clone())
	}
	dst := gocv.NewMat()
	gocv.Resize(im.mat, &dst, image.Point{}, scale, scale, gocv.InterpolationArea)
	return newImage(dst)
}
