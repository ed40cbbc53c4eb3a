// Command pairmatch discovers point correspondences between two overlapping
// images and optionally records them in a graph JSON file.
package main

import (
	"flag"
	"fmt"
	"os"
	"path/filepath"

	"route-stitcher/internal/config"
	"route-stitcher/internal/correspond"
	"route-stitcher/internal/graph"
	"route-stitcher/internal/match"
	"route-stitcher/internal/vision"
)

func main() {
	pathA := flag.String("a", "", "Path to first image")
	pathB := flag.String("b", "", "Path to second image")
	graphPath := flag.String("g", "", "Graph JSON file to update with the discovered correspondences")
	cfgPath := flag.String("c", "", "Matcher config YAML (defaults used when empty)")
	simple := flag.Bool("simple", false, "Use the single-pass matcher with homography filtering instead of the two-stage matcher")
	flag.Parse()

	if *pathA == "" || *pathB == "" {
		fmt.Println("Usage: pairmatch -a <image> -b <image> [-g graph.json] [-c config.yaml] [-simple]")
		os.Exit(1)
	}

	cfg := config.Default()
	if *cfgPath != "" {
		loaded, err := config.Load(*cfgPath)
		if err != nil {
			fmt.Fprintf(os.Stderr, "Failed to load config: %v\n", err)
			os.Exit(1)
		}
		cfg = loaded
	}

	fmt.Printf("=== Loading images ===\n")
	img1, err := loadForMatching(*pathA, cfg.Matcher.MaxPixels)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Failed to load %s: %v\n", *pathA, err)
		os.Exit(1)
	}
	defer img1.Close()
	img2, err := loadForMatching(*pathB, cfg.Matcher.MaxPixels)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Failed to load %s: %v\n", *pathB, err)
		os.Exit(1)
	}
	defer img2.Close()
	fmt.Printf("%s: %.0fx%.0f, %s: %.0fx%.0f\n",
		filepath.Base(*pathA), img1.Size().Width, img1.Size().Height,
		filepath.Base(*pathB), img2.Size().Width, img2.Size().Height)

	fmt.Printf("\n=== Matching ===\n")
	matcher, cleanup := buildMatcher(cfg, *simple)
	defer cleanup()

	corrs, err := correspond.NewFinder(matcher).Find(img1, img2)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Matching failed: %v\n", err)
		os.Exit(1)
	}
	fmt.Printf("Found %d correspondences\n", len(corrs))

	if *graphPath == "" {
		return
	}

	fmt.Printf("\n=== Updating graph ===\n")
	g, err := loadOrNewGraph(*graphPath)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Failed to load graph: %v\n", err)
		os.Exit(1)
	}

	idA := graph.NodeID(filepath.Base(*pathA))
	idB := graph.NodeID(filepath.Base(*pathB))
	if !g.HasNode(idA) {
		g.AddNode(graph.NewNode(idA))
	}
	if !g.HasNode(idB) {
		g.AddNode(graph.NewNode(idB))
	}
	if err := g.SetCorrespondences(idA, idB, corrs); err != nil {
		fmt.Fprintf(os.Stderr, "Failed to store correspondences: %v\n", err)
		os.Exit(1)
	}
	if err := g.Save(*graphPath); err != nil {
		fmt.Fprintf(os.Stderr, "Failed to save graph: %v\n", err)
		os.Exit(1)
	}
	fmt.Printf("Wrote %s: pair %s - %s with %d correspondences\n", *graphPath, idA, idB, len(corrs))
}

// loadForMatching reads an image, caps its resolution and converts it to
// grayscale for detection.
func loadForMatching(path string, maxPixels int) (*vision.Image, error) {
	img, err := vision.Load(path)
	if err != nil {
		return nil, err
	}
	defer img.Close()

	scaled := img.ScaleDown(maxPixels)
	defer scaled.Close()

	return scaled.Grayscale(), nil
}

// buildMatcher assembles the configured strategy and returns a cleanup
// func releasing the detectors.
func buildMatcher(cfg *config.Config, simple bool) (match.Matcher, func()) {
	if simple {
		det := vision.NewORBDetector(cfg.Matcher.CoarseFeatures)
		inner := match.NewRatioMatcher(det, match.HammingDistance)
		inner.Ratio = cfg.Matcher.Ratio

		filter := match.NewHomographyFilter(inner, vision.NewLMedSEstimator())
		filter.Threshold = cfg.Filter.Threshold
		filter.MinMatchCount = cfg.Filter.MinMatchCount
		return filter, func() { det.Close() }
	}

	coarse := vision.NewORBDetector(cfg.Matcher.CoarseFeatures)
	dense := vision.NewORBDetector(cfg.Matcher.DenseFeatures)
	est := vision.NewRANSACEstimator(cfg.Matcher.ReprojThreshold)

	m := match.NewTwoStageMatcher(coarse, dense, est, match.NewKDTreeIndex, match.HammingDistance)
	m.Config = cfg.Matcher.Engine()
	return m, func() {
		coarse.Close()
		dense.Close()
	}
}

func loadOrNewGraph(path string) (*graph.Graph, error) {
	if _, err := os.Stat(path); os.IsNotExist(err) {
		return graph.New(), nil
	}
	return graph.Load(path)
}
