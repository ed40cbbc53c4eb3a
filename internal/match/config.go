package match

// Defaults for the matching strategies. Ratio is Lowe's criterion; the two
// displacement fractions scale with image size so the algorithms behave the
// same across resolutions.
const (
	DefaultRatio               = 0.75
	DefaultFilterThreshold     = 0.2
	DefaultMinMatchCount       = 10
	DefaultMaxDisplacement     = 0.01
	DefaultMinKeypointDistance = 0.15
	DefaultReprojThreshold     = 5.0
	DefaultCoarseFeatures      = 1000
	DefaultDenseFeatures       = 3000
	DefaultRANSACIterations    = 2000
)

// Config holds the tunable parameters of the two-stage matcher.
type Config struct {
	CoarseFeatures      int     // Keypoint budget for the coarse alignment pass
	DenseFeatures       int     // Keypoint budget for the dense guided pass
	Ratio               float64 // Lowe's ratio-test threshold
	MaxDisplacement     float64 // Search radius as a fraction of min(w,h) of image 2
	MinKeypointDistance float64 // NMS spacing as a fraction of min(w,h) of image 1
	ReprojThreshold     float64 // RANSAC reprojection threshold in pixels
}

// DefaultConfig returns the parameters the matcher was tuned with.
func DefaultConfig() Config {
	return Config{
		CoarseFeatures:      DefaultCoarseFeatures,
		DenseFeatures:       DefaultDenseFeatures,
		Ratio:               DefaultRatio,
		MaxDisplacement:     DefaultMaxDisplacement,
		MinKeypointDistance: DefaultMinKeypointDistance,
		ReprojThreshold:     DefaultReprojThreshold,
	}
}
