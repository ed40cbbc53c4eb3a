// Package config loads and validates the matching parameters from a YAML
// file, so pair batches can be re-run with tuned settings.
package config

import (
	"fmt"
	"os"

	"route-stitcher/internal/match"

	"gopkg.in/yaml.v3"
)

// Config is the on-disk configuration document.
type Config struct {
	Matcher MatcherConfig `yaml:"matcher"`
	Filter  FilterConfig  `yaml:"filter"`
}

// MatcherConfig holds the two-stage matcher parameters.
type MatcherConfig struct {
	CoarseFeatures      int     `yaml:"coarse_features"`
	DenseFeatures       int     `yaml:"dense_features"`
	Ratio               float64 `yaml:"ratio"`
	MaxDisplacement     float64 `yaml:"max_displacement"`
	MinKeypointDistance float64 `yaml:"min_keypoint_distance"`
	ReprojThreshold     float64 `yaml:"reproj_threshold"`
	MaxPixels           int     `yaml:"max_pixels"`
}

// FilterConfig holds the homography consistency filter parameters.
type FilterConfig struct {
	Threshold     float64 `yaml:"threshold"`
	MinMatchCount int     `yaml:"min_match_count"`
}

// Default returns the configuration the matcher was tuned with.
func Default() *Config {
	return &Config{
		Matcher: MatcherConfig{
			CoarseFeatures:      match.DefaultCoarseFeatures,
			DenseFeatures:       match.DefaultDenseFeatures,
			Ratio:               match.DefaultRatio,
			MaxDisplacement:     match.DefaultMaxDisplacement,
			MinKeypointDistance: match.DefaultMinKeypointDistance,
			ReprojThreshold:     match.DefaultReprojThreshold,
			MaxPixels:           1000,
		},
		Filter: FilterConfig{
			Threshold:     match.DefaultFilterThreshold,
			MinMatchCount: match.DefaultMinMatchCount,
		},
	}
}

// Load reads and validates a configuration file.
func Load(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, fmt.Errorf("config file not found: %s", path)
		}
		return nil, fmt.Errorf("reading config file: %w", err)
	}

	var cfg Config
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return nil, fmt.Errorf("parsing config YAML: %w", err)
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return &cfg, nil
}

// Save writes the configuration to a YAML file.
func Save(path string, cfg *Config) error {
	data, err := yaml.Marshal(cfg)
	if err != nil {
		return fmt.Errorf("marshaling config YAML: %w", err)
	}
	if err := os.WriteFile(path, data, 0644); err != nil {
		return fmt.Errorf("writing config file: %w", err)
	}
	return nil
}

// Validate checks every parameter is in its meaningful range.
func (c *Config) Validate() error {
	m := c.Matcher
	if m.CoarseFeatures < 4 {
		return fmt.Errorf("matcher.coarse_features must be at least 4, got %d", m.CoarseFeatures)
	}
	if m.DenseFeatures < m.CoarseFeatures {
		return fmt.Errorf("matcher.dense_features (%d) must be at least matcher.coarse_features (%d)",
			m.DenseFeatures, m.CoarseFeatures)
	}
	if m.Ratio <= 0 || m.Ratio >= 1 {
		return fmt.Errorf("matcher.ratio must be in (0, 1), got %g", m.Ratio)
	}
	if m.MaxDisplacement <= 0 || m.MaxDisplacement > 1 {
		return fmt.Errorf("matcher.max_displacement must be in (0, 1], got %g", m.MaxDisplacement)
	}
	if m.MinKeypointDistance < 0 || m.MinKeypointDistance > 1 {
		return fmt.Errorf("matcher.min_keypoint_distance must be in [0, 1], got %g", m.MinKeypointDistance)
	}
	if m.ReprojThreshold <= 0 {
		return fmt.Errorf("matcher.reproj_threshold must be positive, got %g", m.ReprojThreshold)
	}
	if m.MaxPixels < 100 {
		return fmt.Errorf("matcher.max_pixels must be at least 100, got %d", m.MaxPixels)
	}
	if c.Filter.Threshold <= 0 || c.Filter.Threshold > 1 {
		return fmt.Errorf("filter.threshold must be in (0, 1], got %g", c.Filter.Threshold)
	}
	if c.Filter.MinMatchCount < 4 {
		return fmt.Errorf("filter.min_match_count must be at least 4, got %d", c.Filter.MinMatchCount)
	}
	return nil
}

// Engine converts the matcher section to the engine's parameter struct.
func (m MatcherConfig) Engine() match.Config {
	return match.Config{
		CoarseFeatures:      m.CoarseFeatures,
		DenseFeatures:       m.DenseFeatures,
		Ratio:               m.Ratio,
		MaxDisplacement:     m.MaxDisplacement,
		MinKeypointDistance: m.MinKeypointDistance,
		ReprojThreshold:     m.ReprojThreshold,
	}
}
