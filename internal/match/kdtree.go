package match

import (
	"route-stitcher/pkg/geometry"

	"gonum.org/v1/gonum/spatial/kdtree"
)

// KDTreeIndex is the default SpatialIndex, a k-d tree over 2D keypoint
// positions built once per Match call.
type KDTreeIndex struct {
	tree  *kdtree.Tree
	count int
}

// NewKDTreeIndex builds a k-d tree over the given points. It satisfies
// IndexBuilder.
func NewKDTreeIndex(points []geometry.Point2D) SpatialIndex {
	if len(points) == 0 {
		return &KDTreeIndex{}
	}
	data := make(kdPoints, len(points))
	for i, pt := range points {
		data[i] = kdPoint{pt: pt, idx: i}
	}
	return &KDTreeIndex{tree: kdtree.New(data, false), count: len(points)}
}

// Within returns the indices of all points at distance <= r from q.
func (ix *KDTreeIndex) Within(q geometry.Point2D, r float64) []int {
	if ix.count == 0 {
		return nil
	}
	// The tree works in squared distances.
	keeper := kdtree.NewDistKeeper(r * r)
	ix.tree.NearestSet(keeper, kdPoint{pt: q, idx: -1})

	var idxs []int
	for _, c := range keeper.Heap {
		if c.Comparable == nil {
			continue
		}
		idxs = append(idxs, c.Comparable.(kdPoint).idx)
	}
	return idxs
}

// kdPoint is one indexed keypoint position. It implements
// kdtree.Comparable; distances are squared Euclidean, as the kdtree
// package expects.
type kdPoint struct {
	pt  geometry.Point2D
	idx int
}

func (p kdPoint) Compare(c kdtree.Comparable, d kdtree.Dim) float64 {
	q := c.(kdPoint)
	if d == 0 {
		return p.pt.X - q.pt.X
	}
	return p.pt.Y - q.pt.Y
}

func (p kdPoint) Dims() int { return 2 }

func (p kdPoint) Distance(c kdtree.Comparable) float64 {
	q := c.(kdPoint)
	dx := p.pt.X - q.pt.X
	dy := p.pt.Y - q.pt.Y
	return dx*dx + dy*dy
}

// kdPoints implements kdtree.Interface for tree construction.
type kdPoints []kdPoint

func (p kdPoints) Index(i int) kdtree.Comparable        { return p[i] }
func (p kdPoints) Len() int                             { return len(p) }
func (p kdPoints) Pivot(d kdtree.Dim) int               { return kdPlane{kdPoints: p, Dim: d}.Pivot() }
func (p kdPoints) Slice(start, end int) kdtree.Interface { return p[start:end] }

// kdPlane sorts kdPoints along a dimension for pivoting.
type kdPlane struct {
	kdPoints
	kdtree.Dim
}

func (p kdPlane) Less(i, j int) bool {
	if p.Dim == 0 {
		return p.kdPoints[i].pt.X < p.kdPoints[j].pt.X
	}
	return p.kdPoints[i].pt.Y < p.kdPoints[j].pt.Y
}

func (p kdPlane) Pivot() int { return kdtree.Partition(p, kdtree.MedianOfMedians(p)) }

func (p kdPlane) Slice(start, end int) kdtree.SortSlicer {
	p.kdPoints = p.kdPoints[start:end]
	return p
}

func (p kdPlane) Swap(i, j int) {
	p.kdPoints[i], p.kdPoints[j] = p.kdPoints[j], p.kdPoints[i]
}
