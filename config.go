package closest

import (
	"errors"
	"fmt"
	"os"

	"gopkg.in/yaml.v3"
)

// Config holds the query engine's tunables.
type Config struct {
	// K is the number of nearest triangle corner samples examined per query.
	// The nearest corner does not always belong to the triangle holding the
	// nearest surface point so several are examined. A corner shared by N
	// triangles is sampled N times, so K should cover a few vertex
	// neighbourhoods of the mesh: too small and queries over dense or
	// uneven regions can miss the true nearest triangle, too large and
	// queries waste time projecting onto far triangles.
	// Query cost is O(log n + K).
	K int `yaml:"k"`
	// ExhaustiveBelow is the triangle count at or under which queries
	// skip the spatial index and project onto every triangle. The result
	// is then exact regardless of K.
	ExhaustiveBelow int `yaml:"exhaustive_below"`
	// Dedupe projects onto each triangle once per query even when several
	// of its corners are among the K nearest samples. It does not change results.
	Dedupe bool `yaml:"dedupe"`
}

// DefaultConfig returns a Config suited to meshes with roughly uniform
// triangle density.
func DefaultConfig() Config {
	return Config{
		K:               32,
		ExhaustiveBelow: 64,
		Dedupe:          true,
	}
}

// Validate returns an error if c can not configure a query engine.
func (c Config) Validate() error {
	if c.K < 1 {
		return fmt.Errorf("invalid K=%d, must be at least 1", c.K)
	}
	if c.ExhaustiveBelow < 0 {
		return errors.New("negative exhaustive search threshold")
	}
	return nil
}

// LoadConfig reads a YAML file and merges it over DefaultConfig.
func LoadConfig(path string) (Config, error) {
	cfg := DefaultConfig()
	data, err := os.ReadFile(path)
	if err != nil {
		return cfg, err
	}
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return cfg, fmt.Errorf("parsing %s: %w", path, err)
	}
	if err := cfg.Validate(); err != nil {
		return cfg, fmt.Errorf("%s: %w", path, err)
	}
	return cfg, nil
}
