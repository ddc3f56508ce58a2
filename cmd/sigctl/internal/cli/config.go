// Package cli is the sigctl command tree: a thin operational front-end
// over package sig, for running and tracing canned propagation scenarios
// against a configured Domain without writing Go.
package cli

import (
	"fmt"
	"os"

	"gopkg.in/yaml.v3"

	"github.com/AnatoleLucet/sig"
)

// DomainConfig describes how to construct a Domain from a YAML file (§6
// configuration table: engine, worker count, merge policy).
type DomainConfig struct {
	Engine      string `yaml:"engine"`       // "sequential" | "parallel" | "relaxed_parallel"
	Workers     int    `yaml:"workers"`      // ignored outside parallel engines
	MergePolicy string `yaml:"merge_policy"` // "none" | "adjacent"
}

// DefaultDomainConfig mirrors sig.NewDomain's own zero-value defaults.
func DefaultDomainConfig() *DomainConfig {
	return &DomainConfig{Engine: "sequential", MergePolicy: "none"}
}

// LoadDomainConfig reads and parses a YAML domain config from path.
func LoadDomainConfig(path string) (*DomainConfig, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read config: %w", err)
	}
	cfg := DefaultDomainConfig()
	if err := yaml.Unmarshal(data, cfg); err != nil {
		return nil, fmt.Errorf("parse config: %w", err)
	}
	return cfg, nil
}

// Build constructs a sig.Domain from the config.
func (c *DomainConfig) Build() (*sig.Domain, error) {
	var opts []sig.DomainOption

	switch c.Engine {
	case "", "sequential":
		opts = append(opts, sig.WithEngine(sig.EngineSequential))
	case "parallel":
		opts = append(opts, sig.WithEngine(sig.EngineParallel))
	case "relaxed_parallel":
		opts = append(opts, sig.WithEngine(sig.EngineRelaxedParallel))
	default:
		return nil, fmt.Errorf("unknown engine %q", c.Engine)
	}

	if c.Workers > 0 {
		opts = append(opts, sig.WithWorkerCount(c.Workers))
	}

	switch c.MergePolicy {
	case "", "none":
		opts = append(opts, sig.WithMergePolicy(sig.MergeNone))
	case "adjacent":
		opts = append(opts, sig.WithMergePolicy(sig.MergeAdjacent))
	default:
		return nil, fmt.Errorf("unknown merge_policy %q", c.MergePolicy)
	}

	return sig.NewDomain(opts...), nil
}
