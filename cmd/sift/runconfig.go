// Copyright 2025 Poiesic Systems
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


package main

import (
	"fmt"
	"os"

	"github.com/pelletier/go-toml/v2"
)

// RunConfig is the TOML run description accepted by `sift ingest
// --config`. Command-line flags override file values.
type RunConfig struct {
	Source      string            `toml:"source"`
	Destination string            `toml:"destination"`
	PoolSize    int               `toml:"pool_size"`
	MaxItems    int               `toml:"max_items"`
	MaxRetries  int               `toml:"max_retries"`
	RetryDelay  string            `toml:"retry_delay"`
	RunID       string            `toml:"run_id"`
	Checkpoints string            `toml:"checkpoint_db"`
	Strategies  map[string]string `toml:"strategies"`
	Options     map[string]any    `toml:"options"`
}

// loadRunConfig reads a TOML run description.
func loadRunConfig(path string) (*RunConfig, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read config: %w", err)
	}

	cfg := &RunConfig{}
	if err := toml.Unmarshal(data, cfg); err != nil {
		return nil, fmt.Errorf("failed to parse config: %w", err)
	}
	return cfg, nil
}
