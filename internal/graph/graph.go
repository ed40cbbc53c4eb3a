// Package graph implements the in-memory correspondence graph: images as
// nodes, and for each pair of overlapping images a set of point
// correspondences believed to depict the same physical feature.
package graph

import (
	"fmt"
	"sort"

	"route-stitcher/pkg/geometry"
)

// NodeID identifies an image in the graph, typically its filename.
type NodeID string

// Node is an image in the graph. Identity and equality are by ID only;
// Attributes carry free-form metadata.
type Node struct {
	ID         NodeID
	Attributes map[string]string
}

// NewNode creates a node with an empty attribute map.
func NewNode(id NodeID) Node {
	return Node{ID: id, Attributes: map[string]string{}}
}

// Correspondence is an ordered pair of normalized-space points. P1 belongs
// to the first image of the pair, P2 to the second. It is a comparable
// value type: two correspondences are equal iff both points are equal.
type Correspondence struct {
	P1 geometry.Point2D
	P2 geometry.Point2D
}

// NewCorrespondence creates a correspondence between two normalized points.
func NewCorrespondence(p1, p2 geometry.Point2D) Correspondence {
	return Correspondence{P1: p1, P2: p2}
}

// Swapped returns the correspondence with its points exchanged.
func (c Correspondence) Swapped() Correspondence {
	return Correspondence{P1: c.P2, P2: c.P1}
}

// pairKey is the canonical unordered-pair key: A is always the smaller id.
type pairKey struct {
	A, B NodeID
}

// pairOf canonicalizes an id pair. The second return reports whether the
// arguments were swapped to reach canonical order; stored correspondences
// are oriented so that P1 always belongs to the smaller id, so swapped
// callers have their correspondences flipped at the boundary.
func pairOf(a, b NodeID) (pairKey, bool) {
	if b < a {
		return pairKey{A: b, B: a}, true
	}
	return pairKey{A: a, B: b}, false
}

// Graph is the correspondence graph store.
//
// It maintains three invariants: an edge only exists between ids present in
// the node set; an edge whose correspondence set becomes empty through
// removal ceases to exist; and correspondence sets are value sets, so
// inserting an identical correspondence twice is a no-op.
//
// The Graph owns all values it holds and has no internal locking: callers
// mutating it from multiple goroutines must serialize externally. Accessors
// return snapshots that remain valid after further mutation.
type Graph struct {
	nodes map[NodeID]Node
	edges map[pairKey]map[Correspondence]struct{}
}

// New creates an empty graph.
func New() *Graph {
	return &Graph{
		nodes: make(map[NodeID]Node),
		edges: make(map[pairKey]map[Correspondence]struct{}),
	}
}

// AddNode inserts the node, replacing any existing node with the same id.
func (g *Graph) AddNode(node Node) {
	if node.Attributes == nil {
		node.Attributes = map[string]string{}
	}
	g.nodes[node.ID] = node
}

// RemoveNode removes the node and every edge incident to it.
func (g *Graph) RemoveNode(id NodeID) error {
	if _, ok := g.nodes[id]; !ok {
		return fmt.Errorf("removing node %q: %w", id, ErrNodeNotFound)
	}
	delete(g.nodes, id)
	for key := range g.edges {
		if key.A == id || key.B == id {
			delete(g.edges, key)
		}
	}
	return nil
}

// HasNode reports whether a node with the given id exists.
func (g *Graph) HasNode(id NodeID) bool {
	_, ok := g.nodes[id]
	return ok
}

// HasEdge reports whether an edge exists between the two ids. Symmetric in
// its arguments.
func (g *Graph) HasEdge(a, b NodeID) bool {
	key, _ := pairOf(a, b)
	_, ok := g.edges[key]
	return ok
}

// AddEdge ensures an (initially empty) correspondence set exists for the
// pair. Idempotent; fails if either id is absent from the node set.
func (g *Graph) AddEdge(a, b NodeID) error {
	if err := g.checkNodes(a, b); err != nil {
		return err
	}
	key, _ := pairOf(a, b)
	if _, ok := g.edges[key]; !ok {
		g.edges[key] = make(map[Correspondence]struct{})
	}
	return nil
}

// RemoveEdge deletes the edge and all its correspondences. Removing an
// absent edge fails with ErrEdgeNotFound.
func (g *Graph) RemoveEdge(a, b NodeID) error {
	key, _ := pairOf(a, b)
	if _, ok := g.edges[key]; !ok {
		return fmt.Errorf("removing edge %q-%q: %w", a, b, ErrEdgeNotFound)
	}
	delete(g.edges, key)
	return nil
}

// SetCorrespondences replaces the entire correspondence set for the pair.
// An empty set removes the edge (or never creates it).
func (g *Graph) SetCorrespondences(a, b NodeID, corrs []Correspondence) error {
	if err := g.checkNodes(a, b); err != nil {
		return err
	}
	key, swapped := pairOf(a, b)
	if len(corrs) == 0 {
		delete(g.edges, key)
		return nil
	}
	set := make(map[Correspondence]struct{}, len(corrs))
	for _, c := range corrs {
		if swapped {
			c = c.Swapped()
		}
		set[c] = struct{}{}
	}
	g.edges[key] = set
	return nil
}

// AddCorrespondence ensures the edge exists and inserts the correspondence
// into its set. Inserting a correspondence already present is a no-op.
func (g *Graph) AddCorrespondence(a, b NodeID, corr Correspondence) error {
	if err := g.AddEdge(a, b); err != nil {
		return err
	}
	key, swapped := pairOf(a, b)
	if swapped {
		corr = corr.Swapped()
	}
	g.edges[key][corr] = struct{}{}
	return nil
}

// RemoveCorrespondence removes the correspondence from the pair's set. If
// the set becomes empty the edge itself ceases to exist.
func (g *Graph) RemoveCorrespondence(a, b NodeID, corr Correspondence) error {
	key, swapped := pairOf(a, b)
	if swapped {
		corr = corr.Swapped()
	}
	set, ok := g.edges[key]
	if !ok {
		return fmt.Errorf("removing correspondence on %q-%q: %w", a, b, ErrCorrespondenceNotFound)
	}
	if _, ok := set[corr]; !ok {
		return fmt.Errorf("removing correspondence on %q-%q: %w", a, b, ErrCorrespondenceNotFound)
	}
	delete(set, corr)
	if len(set) == 0 {
		delete(g.edges, key)
	}
	return nil
}

// Nodes returns a snapshot of the node set, sorted by id.
func (g *Graph) Nodes() []Node {
	nodes := make([]Node, 0, len(g.nodes))
	for _, n := range g.nodes {
		attrs := make(map[string]string, len(n.Attributes))
		for k, v := range n.Attributes {
			attrs[k] = v
		}
		nodes = append(nodes, Node{ID: n.ID, Attributes: attrs})
	}
	sort.Slice(nodes, func(i, j int) bool { return nodes[i].ID < nodes[j].ID })
	return nodes
}

// Correspondences returns a snapshot of the pair's correspondence set,
// oriented for the given argument order. If no edge exists the result is
// empty; this is never an error.
func (g *Graph) Correspondences(a, b NodeID) []Correspondence {
	key, swapped := pairOf(a, b)
	set, ok := g.edges[key]
	if !ok {
		return nil
	}
	corrs := make([]Correspondence, 0, len(set))
	for c := range set {
		if swapped {
			c = c.Swapped()
		}
		corrs = append(corrs, c)
	}
	sortCorrespondences(corrs)
	return corrs
}

// EdgePairs returns the id pairs of all existing edges, each with the
// smaller id first, sorted for deterministic iteration.
func (g *Graph) EdgePairs() [][2]NodeID {
	pairs := make([][2]NodeID, 0, len(g.edges))
	for key := range g.edges {
		pairs = append(pairs, [2]NodeID{key.A, key.B})
	}
	sort.Slice(pairs, func(i, j int) bool {
		if pairs[i][0] != pairs[j][0] {
			return pairs[i][0] < pairs[j][0]
		}
		return pairs[i][1] < pairs[j][1]
	})
	return pairs
}

func (g *Graph) checkNodes(a, b NodeID) error {
	if _, ok := g.nodes[a]; !ok {
		return fmt.Errorf("node %q: %w", a, ErrNodeNotFound)
	}
	if _, ok := g.nodes[b]; !ok {
		return fmt.Errorf("node %q: %w", b, ErrNodeNotFound)
	}
	return nil
}

func sortCorrespondences(corrs []Correspondence) {
	sort.Slice(corrs, func(i, j int) bool {
		a, b := corrs[i], corrs[j]
		if a.P1.X != b.P1.X {
			return a.P1.X < b.P1.X
		}
		if a.P1.Y != b.P1.Y {
			return a.P1.Y < b.P1.Y
		}
		if a.P2.X != b.P2.X {
			return a.P2.X < b.P2.X
		}
		return a.P2.Y < b.P2.Y
	})
}
