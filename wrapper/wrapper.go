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


// Package wrapper provides the built-in wrap-stage adapters, which turn
// chunk atoms into graph-ready node records for the assemble stage.
package wrapper

import (
	"context"
	"unicode/utf8"

	"github.com/poiesic/sift/component"
	"github.com/poiesic/sift/core"
	"github.com/poiesic/sift/graph"
)

// Node classes and relationship predicates emitted by the graph mapper.
const (
	ClassDocument = "document"
	ClassChunk    = "chunk"

	RelHasChunk  = "has_chunk"
	RelBelongsTo = "belongs_to"
)

// GraphMapper turns each chunk atom into a chunk node linked to a
// document node derived from the chunk's source. Node IDs are content
// hashes, so re-running a pipeline over unchanged input produces the
// same graph.
type GraphMapper struct {
	component.Base
}

// NewGraphMapper creates an unconfigured graph mapper.
func NewGraphMapper() *GraphMapper {
	return &GraphMapper{Base: component.NewBase(component.RoleMapper, "graph")}
}

func (m *GraphMapper) Configure(cfg component.Config) error { return nil }

// Transform maps chunk atoms to graph-ready atoms: one per chunk node,
// plus one per distinct source carrying the document node with its
// has_chunk edges. Non-chunk atoms pass through untouched.
func (m *GraphMapper) Transform(ctx context.Context, atoms []*core.Atom) ([]*core.Atom, error) {
	out := make([]*core.Atom, 0, len(atoms))

	type document struct {
		node *graph.Node
		atom *core.Atom // a representative chunk atom to derive from
	}
	docs := make(map[string]*document)
	var docOrder []string

	for _, a := range atoms {
		content, _ := a.Payload[core.PayloadKeyContent].(string)
		if a.Type != core.AtomTypeChunk || content == "" {
			out = append(out, a)
			continue
		}

		docID := core.ContentID(a.Source)
		doc, ok := docs[docID]
		if !ok {
			doc = &document{
				node: &graph.Node{
					ID:            docID,
					Class:         ClassDocument,
					Name:          a.Source,
					Attributes:    map[string]any{"source": a.Source},
					Relationships: map[string][]string{},
				},
				atom: a,
			}
			docs[docID] = doc
			docOrder = append(docOrder, docID)
		}

		chunkNode := &graph.Node{
			ID:    core.ContentID(content),
			Class: ClassChunk,
			Name:  chunkName(content),
			Attributes: map[string]any{
				"content": content,
				"index":   a.Payload[chunkIndexKey],
			},
			Relationships: map[string][]string{
				RelBelongsTo: {docID},
			},
		}
		doc.node.Relationships[RelHasChunk] = append(doc.node.Relationships[RelHasChunk], chunkNode.ID)

		out = append(out, a.Derive(core.AtomTypeGraphReady, map[string]any{
			core.PayloadKeyNode: chunkNode.ToRecord(),
		}))
	}

	for _, docID := range docOrder {
		doc := docs[docID]
		out = append(out, doc.atom.Derive(core.AtomTypeGraphReady, map[string]any{
			core.PayloadKeyNode: doc.node.ToRecord(),
		}))
	}

	return out, nil
}

// chunkIndexKey mirrors the chunk-stage payload key without importing
// the chunking package; the mapper must not depend on which splitter
// produced its input.
const chunkIndexKey = "chunk_index"

const maxChunkNameLen = 60

// chunkName derives a short display name from chunk content, cutting on
// a rune boundary so a multi-byte character is never split.
func chunkName(content string) string {
	if len(content) <= maxChunkNameLen {
		return content
	}
	cut := maxChunkNameLen
	for cut > 0 && !utf8.RuneStart(content[cut]) {
		cut--
	}
	return content[:cut]
}
