package match

import (
	"math"
	"math/bits"
)

// Descriptor is a fixed-size feature vector. Binary descriptors (ORB,
// BRIEF) are compared with Hamming distance; byte-quantized float
// descriptors with L2.
type Descriptor []byte

// DistanceFunc measures how dissimilar two descriptors are.
type DistanceFunc func(a, b Descriptor) float64

// HammingDistance counts differing bits between two binary descriptors.
// Descriptors of unequal length compare only over the common prefix.
func HammingDistance(a, b Descriptor) float64 {
	n := len(a)
	if len(b) < n {
		n = len(b)
	}
	count := 0
	for i := 0; i < n; i++ {
		count += bits.OnesCount8(a[i] ^ b[i])
	}
	return float64(count)
}

// L2Distance is the Euclidean distance between byte-quantized descriptors.
func L2Distance(a, b Descriptor) float64 {
	n := len(a)
	if len(b) < n {
		n = len(b)
	}
	var sum float64
	for i := 0; i < n; i++ {
		d := float64(a[i]) - float64(b[i])
		sum += d * d
	}
	return math.Sqrt(sum)
}
