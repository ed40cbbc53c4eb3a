package graph

import (
	"encoding/json"
	"fmt"
	"os"

	"route-stitcher/pkg/geometry"
)

// Document is the persisted JSON form of a graph. All coordinates are
// normalized floats in [0,1]. Emitted documents list src before dest in
// id order; readers accept either order.
type Document struct {
	Nodes []NodeDocument `json:"nodes"`
	Edges []EdgeDocument `json:"edges"`
}

// NodeDocument is one node entry in a Document.
type NodeDocument struct {
	ID         string            `json:"id"`
	Attributes map[string]string `json:"attributes"`
}

// EdgeDocument is one edge entry in a Document.
type EdgeDocument struct {
	Src             string                   `json:"src"`
	Dest            string                   `json:"dest"`
	Correspondences []CorrespondenceDocument `json:"correspondences"`
}

// CorrespondenceDocument is one correspondence entry in an EdgeDocument.
type CorrespondenceDocument struct {
	Point1 geometry.Point2D `json:"point1"`
	Point2 geometry.Point2D `json:"point2"`
}

// ToDocument converts the graph to its wire form. Output is deterministic:
// nodes, edges and correspondences are emitted in sorted order.
func (g *Graph) ToDocument() Document {
	doc := Document{
		Nodes: make([]NodeDocument, 0, len(g.nodes)),
		Edges: make([]EdgeDocument, 0, len(g.edges)),
	}
	for _, n := range g.Nodes() {
		doc.Nodes = append(doc.Nodes, NodeDocument{ID: string(n.ID), Attributes: n.Attributes})
	}
	for _, pair := range g.EdgePairs() {
		edge := EdgeDocument{
			Src:             string(pair[0]),
			Dest:            string(pair[1]),
			Correspondences: []CorrespondenceDocument{},
		}
		for _, c := range g.Correspondences(pair[0], pair[1]) {
			edge.Correspondences = append(edge.Correspondences, CorrespondenceDocument{
				Point1: c.P1,
				Point2: c.P2,
			})
		}
		doc.Edges = append(doc.Edges, edge)
	}
	return doc
}

// FromDocument builds a graph from its wire form, validating the document
// against the store's invariants. Edges referring to undeclared nodes or
// entries with missing ids fail with ErrSerialization.
func FromDocument(doc Document) (*Graph, error) {
	g := New()
	for i, n := range doc.Nodes {
		if n.ID == "" {
			return nil, fmt.Errorf("node %d has no id: %w", i, ErrSerialization)
		}
		attrs := n.Attributes
		if attrs == nil {
			attrs = map[string]string{}
		}
		g.AddNode(Node{ID: NodeID(n.ID), Attributes: attrs})
	}
	for i, e := range doc.Edges {
		if e.Src == "" || e.Dest == "" {
			return nil, fmt.Errorf("edge %d has missing endpoints: %w", i, ErrSerialization)
		}
		src, dest := NodeID(e.Src), NodeID(e.Dest)
		if !g.HasNode(src) || !g.HasNode(dest) {
			return nil, fmt.Errorf("edge %q-%q refers to undeclared node: %w", src, dest, ErrSerialization)
		}
		if err := g.AddEdge(src, dest); err != nil {
			return nil, err
		}
		for _, c := range e.Correspondences {
			if err := g.AddCorrespondence(src, dest, Correspondence{P1: c.Point1, P2: c.Point2}); err != nil {
				return nil, err
			}
		}
	}
	return g, nil
}

// Load reads a graph from a JSON file.
func Load(path string) (*Graph, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}
	var doc Document
	if err := json.Unmarshal(data, &doc); err != nil {
		return nil, fmt.Errorf("parsing %s: %v: %w", path, err, ErrSerialization)
	}
	return FromDocument(doc)
}

// Save writes the graph to a JSON file.
func (g *Graph) Save(path string) error {
	data, err := json.MarshalIndent(g.ToDocument(), "", "  ")
	if err != nil {
		return err
	}
	return os.WriteFile(path, data, 0644)
}
