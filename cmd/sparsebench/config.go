package main

import (
	"fmt"
	"os"

	"gopkg.in/yaml.v3"

	"github.com/sparsekit/sparsekit/lu"
)

// config is the YAML shape of a solver options file. Pointer fields
// distinguish "absent" from "zero": only keys present in the file override
// the solver defaults.
//
//	pivot_tolerance: 0.001
//	scaling: max            # max | sum | none
//	ordering: amd           # amd | natural
//	btf: true
//	halt_if_singular: true
//	growth_threshold: 1e-4
type config struct {
	PivotTolerance  *float64 `yaml:"pivot_tolerance"`
	Scaling         string   `yaml:"scaling"`
	Ordering        string   `yaml:"ordering"`
	BTF             *bool    `yaml:"btf"`
	HaltIfSingular  *bool    `yaml:"halt_if_singular"`
	GrowthThreshold *float64 `yaml:"growth_threshold"`
}

func loadConfig(path string) (*config, error) {
	raw, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("reading config: %w", err)
	}
	cfg := &config{}
	if err := yaml.Unmarshal(raw, cfg); err != nil {
		return nil, fmt.Errorf("parsing config %s: %w", path, err)
	}

	return cfg, nil
}

// options converts the file contents into lu functional options.
func (c *config) options() ([]lu.Option, error) {
	var opts []lu.Option

	if c.PivotTolerance != nil {
		opts = append(opts, lu.WithPivotTolerance(*c.PivotTolerance))
	}
	switch c.Scaling {
	case "":
	case "max":
		opts = append(opts, lu.WithScaling(lu.ScaleMax))
	case "sum":
		opts = append(opts, lu.WithScaling(lu.ScaleSum))
	case "none":
		opts = append(opts, lu.WithScaling(lu.ScaleNone))
	default:
		return nil, fmt.Errorf("unknown scaling %q (want max, sum, or none)", c.Scaling)
	}
	switch c.Ordering {
	case "":
	case "amd":
		opts = append(opts, lu.WithOrdering(lu.OrderingAMD))
	case "natural":
		opts = append(opts, lu.WithOrdering(lu.OrderingNatural))
	default:
		return nil, fmt.Errorf("unknown ordering %q (want amd or natural)", c.Ordering)
	}
	if c.BTF != nil {
		opts = append(opts, lu.WithBTF(*c.BTF))
	}
	if c.HaltIfSingular != nil {
		opts = append(opts, lu.WithHaltIfSingular(*c.HaltIfSingular))
	}
	if c.GrowthThreshold != nil {
		opts = append(opts, lu.WithGrowthThreshold(*c.GrowthThreshold))
	}

	return opts, nil
}
