package geometry

// Homography represents a 3x3 projective transform between image planes.
// It maps points from a source plane to a destination plane; unlike an
// affine transform it can model perspective foreshortening.
type Homography struct {
	M [3][3]float64
}

// IdentityHomography returns the identity transform.
func IdentityHomography() Homography {
	return Homography{M: [3][3]float64{
		{1, 0, 0},
		{0, 1, 0},
		{0, 0, 1},
	}}
}

// Apply applies the transform to a point, performing the projective divide.
func (h Homography) Apply(p Point2D) Point2D {
	x := h.M[0][0]*p.X + h.M[0][1]*p.Y + h.M[0][2]
	y := h.M[1][0]*p.X + h.M[1][1]*p.Y + h.M[1][2]
	w := h.M[2][0]*p.X + h.M[2][1]*p.Y + h.M[2][2]
	return Point2D{X: x / w, Y: y / w}
}

// ApplyAll applies the transform to every point in the slice.
func (h Homography) ApplyAll(points []Point2D) []Point2D {
	result := make([]Point2D, len(points))
	for i, p := range points {
		result[i] = h.Apply(p)
	}
	return result
}
