// Copyright (c) 2014 AKUALAB INC., All rights reserved.
//
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package hmmsel

import (
	"fmt"
	"os"

	"gopkg.in/yaml.v3"
)

// SelectorKinds lists the model selection strategies by config name.
var SelectorKinds = []string{"constant", "bic", "dic", "cv"}

// Config holds the parameters of a selection and recognition run.
type Config struct {
	Selector    string `yaml:"selector" json:"selector"`
	MinStates   int    `yaml:"min_states" json:"min_states"`
	MaxStates   int    `yaml:"max_states" json:"max_states"`
	Constant    int    `yaml:"constant_states" json:"constant_states"`
	Seed        int64  `yaml:"seed" json:"seed"`
	Folds       int    `yaml:"folds" json:"folds"`
	Workers     int    `yaml:"workers,omitempty" json:"workers,omitempty"`
	TrainFile   string `yaml:"train_file,omitempty" json:"train_file,omitempty"`
	TestFile    string `yaml:"test_file,omitempty" json:"test_file,omitempty"`
	ResultsFile string `yaml:"results_file,omitempty" json:"results_file,omitempty"`

	HMM HMM `yaml:"hmm" json:"hmm"`
}

// HMM holds the parameters of the Gaussian HMM fitter.
type HMM struct {
	MaxIter     int     `yaml:"max_iter,omitempty" json:"max_iter,omitempty"`
	Tolerance   float64 `yaml:"tolerance,omitempty" json:"tolerance,omitempty"`
	MinVariance float64 `yaml:"min_variance,omitempty" json:"min_variance,omitempty"`
}

// DefaultConfig returns a config with default values.
func DefaultConfig() *Config {
	return &Config{
		Selector:  "bic",
		MinStates: 2,
		MaxStates: 10,
		Constant:  3,
		Seed:      14,
		Folds:     3,
		Workers:   1,
		HMM: HMM{
			MaxIter:     1000,
			Tolerance:   0.01,
			MinVariance: 0.001,
		},
	}
}

// ReadConfig reads a yaml config file. Fields missing in the file keep
// their default values.
func ReadConfig(fn string) (*Config, error) {

	b, e := os.ReadFile(fn)
	if e != nil {
		return nil, e
	}
	config := DefaultConfig()
	if e = yaml.Unmarshal(b, config); e != nil {
		return nil, fmt.Errorf("can't parse config file %s: %w", fn, e)
	}
	return config, config.Validate()
}

// Validate checks that the config values are consistent.
func (c *Config) Validate() error {

	known := false
	for _, k := range SelectorKinds {
		if k == c.Selector {
			known = true
		}
	}
	switch {
	case !known:
		return fmt.Errorf("unknown selector [%s], must be one of %v", c.Selector, SelectorKinds)
	case c.MinStates < 1:
		return fmt.Errorf("min_states must be positive, got [%d]", c.MinStates)
	case c.MaxStates < c.MinStates:
		return fmt.Errorf("max_states [%d] is less than min_states [%d]", c.MaxStates, c.MinStates)
	case c.Constant < 1:
		return fmt.Errorf("constant_states must be positive, got [%d]", c.Constant)
	case c.Folds < 2:
		return fmt.Errorf("folds must be at least 2, got [%d]", c.Folds)
	case c.Workers < 1:
		return fmt.Errorf("workers must be positive, got [%d]", c.Workers)
	case c.HMM.MaxIter < 1:
		return fmt.Errorf("hmm.max_iter must be positive, got [%d]", c.HMM.MaxIter)
	case c.HMM.MinVariance <= 0:
		return fmt.Errorf("hmm.min_variance must be positive, got [%f]", c.HMM.MinVariance)
	}
	return nil
}
