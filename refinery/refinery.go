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


// Package refinery provides the built-in refine-stage adapters, which
// clean parsed content blocks before chunking.
package refinery

import (
	"context"
	"strings"
	"unicode"

	"github.com/poiesic/sift/component"
	"github.com/poiesic/sift/core"
)

// WhitespaceRefiner normalizes block content: control characters are
// stripped, runs of spaces and tabs collapse to single spaces, line
// breaks survive, and blocks left empty or shorter than "min_length"
// are dropped.
type WhitespaceRefiner struct {
	component.Base
	minLength int
}

// NewWhitespaceRefiner creates an unconfigured whitespace refiner.
func NewWhitespaceRefiner() *WhitespaceRefiner {
	return &WhitespaceRefiner{Base: component.NewBase(component.RoleRefiner, "whitespace")}
}

func (r *WhitespaceRefiner) Configure(cfg component.Config) error {
	r.minLength = cfg.Int("min_length", 0)
	return nil
}

// Transform cleans the blocks of every document atom. Atoms without
// blocks pass through untouched; an atom whose blocks all get dropped
// is removed from the batch.
func (r *WhitespaceRefiner) Transform(ctx context.Context, atoms []*core.Atom) ([]*core.Atom, error) {
	out := make([]*core.Atom, 0, len(atoms))
	for _, a := range atoms {
		blocks := core.BlocksFromAtom(a)
		if blocks == nil {
			out = append(out, a)
			continue
		}

		refined := make([]core.ContentBlock, 0, len(blocks))
		for _, b := range blocks {
			b.Content = normalize(b.Content)
			if b.Content == "" || len(b.Content) < r.minLength {
				continue
			}
			refined = append(refined, b)
		}
		if len(refined) == 0 {
			continue
		}
		out = append(out, core.AtomWithBlocks(a, refined))
	}
	return out, nil
}

// normalize strips control characters, collapses horizontal whitespace
// runs within each line, and trims the result, leaving single newlines
// intact.
func normalize(content string) string {
	content = strings.ReplaceAll(content, "\r\n", "\n")
	content = strings.Map(func(r rune) rune {
		if unicode.IsControl(r) && r != '\n' && r != '\t' {
			return -1
		}
		return r
	}, content)
	lines := strings.Split(content, "\n")

	cleaned := lines[:0]
	for _, line := range lines {
		line = strings.Join(strings.Fields(line), " ")
		if line != "" {
			cleaned = append(cleaned, line)
		}
	}
	return strings.Join(cleaned, "\n")
}
