package graph

import (
	"encoding/json"
	"errors"
	"os"
	"path/filepath"
	"testing"
)

func sampleGraph(t *testing.T) *Graph {
	t.Helper()
	g := New()
	for _, id := range []NodeID{"node1", "node2", "node3"} {
		g.AddNode(NewNode(id))
	}
	mustAdd(t, g, "node1", "node2", corr(0.1, 0.2, 0.2, 0.3))
	mustAdd(t, g, "node1", "node2", corr(0.2, 0.1, 0.3, 0.2))
	mustAdd(t, g, "node1", "node3", corr(0.1, 0.6, 0.3, 0.3))
	mustAdd(t, g, "node2", "node3", corr(0, 0, 0, 0))
	return g
}

func assertGraphsMatch(t *testing.T, a, b *Graph) {
	t.Helper()
	an, bn := a.Nodes(), b.Nodes()
	if len(an) != len(bn) {
		t.Fatalf("node counts differ: %d vs %d", len(an), len(bn))
	}
	for i := range an {
		if an[i].ID != bn[i].ID {
			t.Fatalf("node sets differ: %v vs %v", an, bn)
		}
	}
	for _, na := range an {
		for _, nb := range an {
			ca := a.Correspondences(na.ID, nb.ID)
			cb := b.Correspondences(na.ID, nb.ID)
			if len(ca) != len(cb) {
				t.Fatalf("correspondence counts for %s-%s differ: %d vs %d", na.ID, nb.ID, len(ca), len(cb))
			}
			for i := range ca {
				if ca[i] != cb[i] {
					t.Fatalf("correspondence sets for %s-%s differ: %v vs %v", na.ID, nb.ID, ca, cb)
				}
			}
		}
	}
}

func TestDocumentRoundTrip(t *testing.T) {
	g := sampleGraph(t)

	reconstructed, err := FromDocument(g.ToDocument())
	if err != nil {
		t.Fatalf("FromDocument: %v", err)
	}
	assertGraphsMatch(t, g, reconstructed)
}

func TestDocumentRoundTrip_ThroughJSON(t *testing.T) {
	g := sampleGraph(t)

	data, err := json.Marshal(g.ToDocument())
	if err != nil {
		t.Fatalf("marshal: %v", err)
	}
	var doc Document
	if err := json.Unmarshal(data, &doc); err != nil {
		t.Fatalf("unmarshal: %v", err)
	}
	reconstructed, err := FromDocument(doc)
	if err != nil {
		t.Fatalf("FromDocument: %v", err)
	}
	assertGraphsMatch(t, g, reconstructed)
}

// A document with nodes and edges in arbitrary order, and src/dest not in
// canonical order, must still load into the same graph.
func TestFromDocument_OrderIndependent(t *testing.T) {
	raw := `{
	  "nodes": [
	    {"id": "node2", "attributes": {}},
	    {"id": "node1", "attributes": {}},
	    {"id": "node3", "attributes": {}}
	  ],
	  "edges": [
	    {"src": "node2", "dest": "node1", "correspondences": [
	      {"point1": {"x": 0.2, "y": 0.3}, "point2": {"x": 0.1, "y": 0.2}},
	      {"point1": {"x": 0.3, "y": 0.2}, "point2": {"x": 0.2, "y": 0.1}}
	    ]},
	    {"src": "node1", "dest": "node3", "correspondences": [
	      {"point1": {"x": 0.1, "y": 0.6}, "point2": {"x": 0.3, "y": 0.3}}
	    ]},
	    {"src": "node2", "dest": "node3", "correspondences": [
	      {"point1": {"x": 0, "y": 0}, "point2": {"x": 0, "y": 0}}
	    ]}
	  ]
	}`

	var doc Document
	if err := json.Unmarshal([]byte(raw), &doc); err != nil {
		t.Fatalf("unmarshal: %v", err)
	}
	g, err := FromDocument(doc)
	if err != nil {
		t.Fatalf("FromDocument: %v", err)
	}
	assertGraphsMatch(t, sampleGraph(t), g)
}

func TestFromDocument_EmptyEdgeSurvives(t *testing.T) {
	g := New()
	g.AddNode(NewNode("a"))
	g.AddNode(NewNode("b"))
	if err := g.AddEdge("a", "b"); err != nil {
		t.Fatalf("AddEdge: %v", err)
	}

	reconstructed, err := FromDocument(g.ToDocument())
	if err != nil {
		t.Fatalf("FromDocument: %v", err)
	}
	if !reconstructed.HasEdge("a", "b") {
		t.Fatal("empty edge lost in round trip")
	}
}

func TestFromDocument_Malformed(t *testing.T) {
	cases := []struct {
		name string
		doc  Document
	}{
		{
			name: "node without id",
			doc:  Document{Nodes: []NodeDocument{{ID: ""}}},
		},
		{
			name: "edge without endpoints",
			doc: Document{
				Nodes: []NodeDocument{{ID: "a"}},
				Edges: []EdgeDocument{{Src: "a", Dest: ""}},
			},
		},
		{
			name: "edge to undeclared node",
			doc: Document{
				Nodes: []NodeDocument{{ID: "a"}},
				Edges: []EdgeDocument{{Src: "a", Dest: "ghost"}},
			},
		},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			if _, err := FromDocument(tc.doc); !errors.Is(err, ErrSerialization) {
				t.Fatalf("got %v, want ErrSerialization", err)
			}
		})
	}
}

func TestSaveLoad(t *testing.T) {
	g := sampleGraph(t)
	path := filepath.Join(t.TempDir(), "routes.json")

	if err := g.Save(path); err != nil {
		t.Fatalf("Save: %v", err)
	}
	loaded, err := Load(path)
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	assertGraphsMatch(t, g, loaded)
}

func TestLoad_MissingFile(t *testing.T) {
	if _, err := Load(filepath.Join(t.TempDir(), "no-such.json")); err == nil {
		t.Fatal("expected error for missing file")
	}
}

func TestLoad_InvalidJSON(t *testing.T) {
	path := filepath.Join(t.TempDir(), "bad.json")
	if err := os.WriteFile(path, []byte("{not json"), 0644); err != nil {
		t.Fatalf("write fixture: %v", err)
	}
	if _, err := Load(path); !errors.Is(err, ErrSerialization) {
		t.Fatalf("got %v, want ErrSerialization", err)
	}
}
