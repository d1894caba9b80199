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


package connector

import (
	"bufio"
	"context"
	"fmt"
	"os"
	"strings"

	"github.com/poiesic/sift/component"
)

// StaticSeeder yields the run's source identifier itself, plus any
// extra identifiers listed under the "seeds" option. It is the right
// seeder when the caller already knows every starting point.
type StaticSeeder struct {
	component.Base
	ids []string
}

// NewStaticSeeder creates an unconfigured static seeder.
func NewStaticSeeder() *StaticSeeder {
	return &StaticSeeder{Base: component.NewBase(component.RoleSeeder, "static")}
}

func (s *StaticSeeder) Configure(cfg component.Config) error {
	source, err := cfg.RequireString("source")
	if err != nil {
		return err
	}

	s.ids = []string{source}
	for _, extra := range stringList(cfg["seeds"]) {
		if extra != "" {
			s.ids = append(s.ids, extra)
		}
	}
	return nil
}

// Seed returns the configured identifiers.
func (s *StaticSeeder) Seed(ctx context.Context) ([]string, error) {
	out := make([]string, len(s.ids))
	copy(out, s.ids)
	return out, nil
}

// ManifestSeeder reads identifiers from a manifest file, one per line.
// Blank lines and lines starting with # are skipped, so a manifest can
// carry comments.
type ManifestSeeder struct {
	component.Base
	path string
}

// NewManifestSeeder creates an unconfigured manifest seeder.
func NewManifestSeeder() *ManifestSeeder {
	return &ManifestSeeder{Base: component.NewBase(component.RoleSeeder, "manifest")}
}

func (s *ManifestSeeder) Configure(cfg component.Config) error {
	path, err := cfg.RequireString("source")
	if err != nil {
		return err
	}
	if _, statErr := os.Stat(path); statErr != nil {
		return fmt.Errorf("manifest %s: %w", path, statErr)
	}
	s.path = path
	return nil
}

// Seed reads the manifest and returns its identifiers in file order.
func (s *ManifestSeeder) Seed(ctx context.Context) ([]string, error) {
	f, err := os.Open(s.path)
	if err != nil {
		return nil, err
	}
	defer f.Close()

	var ids []string
	scanner := bufio.NewScanner(f)
	for scanner.Scan() {
		line := strings.TrimSpace(scanner.Text())
		if line == "" || strings.HasPrefix(line, "#") {
			continue
		}
		ids = append(ids, line)
	}
	if err := scanner.Err(); err != nil {
		return nil, err
	}
	return ids, nil
}

// stringList coerces the shapes option decoders produce ([]string,
// []any, or a comma-separated string) into a string slice.
func stringList(v any) []string {
	switch list := v.(type) {
	case []string:
		return list
	case []any:
		out := make([]string, 0, len(list))
		for _, item := range list {
			if s, ok := item.(string); ok {
				out = append(out, s)
			}
		}
		return out
	case string:
		if list == "" {
			return nil
		}
		parts := strings.Split(list, ",")
		out := make([]string, 0, len(parts))
		for _, p := range parts {
			if trimmed := strings.TrimSpace(p); trimmed != "" {
				out = append(out, trimmed)
			}
		}
		return out
	}
	return nil
}
