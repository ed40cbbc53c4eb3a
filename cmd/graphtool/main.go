// Command graphtool inspects a correspondence graph JSON file.
package main

import (
	"flag"
	"fmt"
	"os"

	"route-stitcher/internal/graph"
	"route-stitcher/pkg/geometry"
)

func main() {
	graphPath := flag.String("g", "", "Graph JSON file to inspect")
	rmNode := flag.String("rm-node", "", "Remove a node (and its edges) before printing, then save")
	flag.Parse()

	if *graphPath == "" {
		fmt.Println("Usage: graphtool -g graph.json [-rm-node <id>]")
		os.Exit(1)
	}

	g, err := graph.Load(*graphPath)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Failed to load graph: %v\n", err)
		os.Exit(1)
	}

	if *rmNode != "" {
		if err := g.RemoveNode(graph.NodeID(*rmNode)); err != nil {
			fmt.Fprintf(os.Stderr, "Failed to remove node %s: %v\n", *rmNode, err)
			os.Exit(1)
		}
		if err := g.Save(*graphPath); err != nil {
			fmt.Fprintf(os.Stderr, "Failed to save graph: %v\n", err)
			os.Exit(1)
		}
		fmt.Printf("Removed node %s\n\n", *rmNode)
	}

	nodes := g.Nodes()
	pairs := g.EdgePairs()

	fmt.Printf("=== Nodes (%d) ===\n", len(nodes))
	for _, n := range nodes {
		fmt.Printf("%s\n", n.ID)
		for k, v := range n.Attributes {
			fmt.Printf("  %s: %s\n", k, v)
		}
	}

	fmt.Printf("\n=== Edges (%d) ===\n", len(pairs))
	for _, pair := range pairs {
		corrs := g.Correspondences(pair[0], pair[1])
		fmt.Printf("%s - %s: %d correspondences\n", pair[0], pair[1], len(corrs))
		if len(corrs) == 0 {
			continue
		}

		p1 := make([]geometry.Point2D, len(corrs))
		p2 := make([]geometry.Point2D, len(corrs))
		for i, c := range corrs {
			p1[i] = c.P1
			p2[i] = c.P2
		}
		r1 := geometry.BoundingBox(p1)
		r2 := geometry.BoundingBox(p2)
		c1 := geometry.Centroid(p1)
		c2 := geometry.Centroid(p2)
		fmt.Printf("  %s: coverage %.3fx%.3f at (%.3f,%.3f), centroid (%.3f,%.3f)\n",
			pair[0], r1.Width, r1.Height, r1.X, r1.Y, c1.X, c1.Y)
		fmt.Printf("  %s: coverage %.3fx%.3f at (%.3f,%.3f), centroid (%.3f,%.3f)\n",
			pair[1], r2.Width, r2.Height, r2.X, r2.Y, c2.X, c2.Y)
	}
}
