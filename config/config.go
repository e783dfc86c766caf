// Package config loads a RunConfig from YAML using an
// outer-config-selects-kind / inner-config-re-marshalled idiom: an
// outer envelope names a "kind" and carries the real config as a
// free-form blob, which is then re-marshalled to YAML and decoded into
// a concrete struct. The only concrete kind is RunConfig; FromYaml does
// not check the kind name.
package config

import (
	"context"
	"fmt"
	"path/filepath"
	"time"

	"github.com/spf13/viper"
	"gopkg.in/yaml.v3"
)

// OuterConfig is the envelope read off disk: Kind names the config
// kind, and Def carries the config itself. FromYaml does not read Kind;
// it always decodes Def as a RunConfig.
type OuterConfig struct {
	Kind string      `mapstructure:"kind"`
	Def  interface{} `mapstructure:"def"`
}

// RunConfig configures one responsibility-engine invocation: which
// weighting, responsibility flavour, grouping mode, and engine to use,
// plus concurrency and reproducibility knobs.
type RunConfig struct {
	WeightType            string `mapstructure:"weightType" yaml:"weightType"`
	ResponsibilityVersion string `mapstructure:"responsibilityVersion" yaml:"responsibilityVersion"`
	GroupingMode          string `mapstructure:"groupingMode" yaml:"groupingMode"`

	Engine EngineConfig `mapstructure:"engine" yaml:"engine"`

	Threads int    `mapstructure:"threads" yaml:"threads"`
	Seed    *int64 `mapstructure:"seed" yaml:"seed"`

	// Deadline, if set, bounds a stochastic run's wall-clock budget.
	Deadline map[string]string `mapstructure:"deadline" yaml:"deadline"`
}

// EngineConfig selects Exact or Stochastic. Samples is the stochastic
// sample budget; zero leaves the sampler unbounded, so that only
// RunConfig.Deadline (if set) stops it. Nothing checks that only one of
// the two budgets is set.
type EngineConfig struct {
	Kind    string `mapstructure:"kind" yaml:"kind"` // "Exact" or "Stochastic"
	Samples int    `mapstructure:"samples" yaml:"samples"`
}

// FromYaml reads path as an OuterConfig, then re-decodes its Def blob
// as a RunConfig.
func FromYaml(path string) (*RunConfig, error) {
	vp := viper.New()
	vp.SetConfigFile(filepath.Base(path))
	vp.SetConfigType("yaml")
	vp.AddConfigPath(filepath.Dir(path))
	if err := vp.ReadInConfig(); err != nil {
		return nil, err
	}

	outer := &OuterConfig{}
	if err := vp.Unmarshal(outer); err != nil {
		return nil, err
	}

	blob, err := yaml.Marshal(outer.Def)
	if err != nil {
		return nil, err
	}

	cfg := &RunConfig{}
	if err := yaml.Unmarshal(blob, cfg); err != nil {
		return nil, err
	}
	if cfg.Threads <= 0 {
		cfg.Threads = 1
	}

	return cfg, nil
}

// WithDeadline returns a context extended by cfg.Deadline's duration,
// if one is specified.
func (cfg *RunConfig) WithDeadline(ctx context.Context) (context.Context, context.CancelFunc, error) {
	if val, ok := cfg.Deadline["duration"]; ok {
		duration, err := time.ParseDuration(val)
		if err != nil {
			return nil, nil, fmt.Errorf("config: invalid deadline duration %q: %w", val, err)
		}
		innerCtx, cancel := context.WithTimeout(ctx, duration)
		return innerCtx, cancel, nil
	}
	innerCtx, cancel := context.WithCancel(ctx)
	return innerCtx, cancel, nil
}
