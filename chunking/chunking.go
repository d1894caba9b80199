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


// Package chunking provides the built-in chunk-stage adapters. A
// splitter turns each document atom into chunk atoms sized for
// downstream embedding or indexing, carrying the parent document's ID
// and the chunk's position.
package chunking

import (
	"context"
	"strings"

	"github.com/poiesic/sift/component"
	"github.com/poiesic/sift/core"
	"github.com/tmc/langchaingo/textsplitter"
)

// Payload keys carried by chunk atoms.
const (
	PayloadKeyChunkIndex = "chunk_index"
	PayloadKeyParentID   = "parent_id"
)

const (
	defaultChunkSize    = 512
	defaultChunkOverlap = 64
)

// splitterFunc adapts a langchaingo text splitter to the transform hook.
type splitterFunc func(text string) ([]string, error)

// splitDocuments is the shared chunk-stage body: every document atom's
// blocks are joined, split, and re-emitted as chunk atoms. Atoms
// without blocks pass through untouched.
func splitDocuments(atoms []*core.Atom, split splitterFunc) ([]*core.Atom, error) {
	out := make([]*core.Atom, 0, len(atoms))
	for _, a := range atoms {
		blocks := core.BlocksFromAtom(a)
		if blocks == nil {
			out = append(out, a)
			continue
		}

		parts := make([]string, 0, len(blocks))
		for _, b := range blocks {
			parts = append(parts, b.Content)
		}

		chunks, err := split(strings.Join(parts, "\n\n"))
		if err != nil {
			return nil, err
		}

		for i, chunk := range chunks {
			chunk = strings.TrimSpace(chunk)
			if chunk == "" {
				continue
			}
			out = append(out, a.Derive(core.AtomTypeChunk, map[string]any{
				core.PayloadKeyContent: chunk,
				PayloadKeyChunkIndex:   i,
				PayloadKeyParentID:     a.AtomID,
			}))
		}
	}
	return out, nil
}

// RecursiveSplitter chunks documents by recursive character splitting:
// it prefers paragraph breaks, then line breaks, then spaces, keeping
// chunks under "chunk_size" with "chunk_overlap" of shared context.
type RecursiveSplitter struct {
	component.Base
	splitter textsplitter.RecursiveCharacter
}

// NewRecursiveSplitter creates an unconfigured recursive splitter.
func NewRecursiveSplitter() *RecursiveSplitter {
	return &RecursiveSplitter{Base: component.NewBase(component.RoleSplitter, "recursive")}
}

func (s *RecursiveSplitter) Configure(cfg component.Config) error {
	s.splitter = textsplitter.NewRecursiveCharacter(
		textsplitter.WithChunkSize(cfg.Int("chunk_size", defaultChunkSize)),
		textsplitter.WithChunkOverlap(cfg.Int("chunk_overlap", defaultChunkOverlap)),
	)
	return nil
}

func (s *RecursiveSplitter) Transform(ctx context.Context, atoms []*core.Atom) ([]*core.Atom, error) {
	return splitDocuments(atoms, s.splitter.SplitText)
}

// TokenSplitter chunks documents by model token count rather than
// characters, which keeps chunks aligned with embedding-model limits.
//
// Options: chunk_size and chunk_overlap in tokens, plus "model" naming
// the tokenizer's model.
type TokenSplitter struct {
	component.Base
	splitter textsplitter.TokenSplitter
}

// NewTokenSplitter creates an unconfigured token splitter.
func NewTokenSplitter() *TokenSplitter {
	return &TokenSplitter{Base: component.NewBase(component.RoleSplitter, "token")}
}

func (s *TokenSplitter) Configure(cfg component.Config) error {
	opts := []textsplitter.Option{
		textsplitter.WithChunkSize(cfg.Int("chunk_size", defaultChunkSize)),
		textsplitter.WithChunkOverlap(cfg.Int("chunk_overlap", defaultChunkOverlap)),
	}
	if model := cfg.String("model", ""); model != "" {
		opts = append(opts, textsplitter.WithModelName(model))
	}
	s.splitter = textsplitter.NewTokenSplitter(opts...)
	return nil
}

func (s *TokenSplitter) Transform(ctx context.Context, atoms []*core.Atom) ([]*core.Atom, error) {
	return splitDocuments(atoms, s.splitter.SplitText)
}
