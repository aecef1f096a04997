// Copyright 2016 Google Inc. All Rights Reserved.
//
// Licensed under the Apache License, Version 2.0 (the "License");
// you may not use this file except in compliance with the License.
// You may obtain a copy of the License at
//
//     http://www.apache.org/licenses/LICENSE-2.0
//
// Unless required by applicable law or agreed to in writing, software
// distributed under the License is distributed on an "AS IS" BASIS,
// WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
// See the License for the specific language governing permissions and
// limitations under the License.

package pibridge

import (
	"bytes"
	"errors"
	"fmt"
	"io"
	"os"

	"gopkg.in/yaml.v3"
)

// Config controls how the bridge validates and dispatches calls. A Config is
// attached to a root Frame and shared by every frame on that stack.
type Config struct {
	// StrictNoArgs rejects arguments passed to a noargs callable. When false
	// the extra arguments are dropped.
	StrictNoArgs bool `yaml:"strict_noargs"`
	// TrapPanics turns a panic inside a native entry point into a
	// RuntimeError instead of unwinding the caller.
	TrapPanics bool `yaml:"trap_panics"`
	// TraceCalls logs each state transition of the call adapter at debug
	// level.
	TraceCalls bool `yaml:"trace_calls"`
	// MaxCallDepth bounds nested bridge calls. Zero means unlimited.
	MaxCallDepth int `yaml:"max_call_depth"`
}

// DefaultConfig returns the configuration used by NewRootFrame.
func DefaultConfig() *Config {
	return &Config{
		StrictNoArgs: true,
		TrapPanics:   true,
		MaxCallDepth: 1000,
	}
}

// Validate reports the first invalid setting in c.
func (c *Config) Validate() error {
	if c.MaxCallDepth < 0 {
		return fmt.Errorf("max_call_depth must not be negative, got %d", c.MaxCallDepth)
	}
	return nil
}

// ParseConfig decodes a YAML document over the defaults. Unknown keys are
// rejected. An empty document yields DefaultConfig.
func ParseConfig(data []byte) (*Config, error) {
	cfg := DefaultConfig()
	dec := yaml.NewDecoder(bytes.NewReader(data))
	dec.KnownFields(true)
	if err := dec.Decode(cfg); err != nil && !errors.Is(err, io.EOF) {
		return nil, fmt.Errorf("parse config: %w", err)
	}
	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("parse config: %w", err)
	}
	return cfg, nil
}

// LoadConfig reads and parses the YAML config file at path.
func LoadConfig(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("load config: %w", err)
	}
	return ParseConfig(data)
}
