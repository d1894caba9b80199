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


// Package assembler provides the built-in assemble-stage adapters,
// which fold graph-ready atoms into the built object handed to the
// store stage.
package assembler

import (
	"context"
	"fmt"

	"github.com/poiesic/sift/component"
	"github.com/poiesic/sift/core"
	"github.com/poiesic/sift/graph"
)

// KGBuilder folds graph-ready atoms into a knowledge graph. Atoms of
// other types are ignored; a graph-ready atom without a valid node
// record aborts the build, since a half-assembled graph must never
// reach a writer.
type KGBuilder struct {
	component.Base
}

// NewKGBuilder creates an unconfigured knowledge graph builder.
func NewKGBuilder() *KGBuilder {
	return &KGBuilder{Base: component.NewBase(component.RoleBuilder, "kg")}
}

func (b *KGBuilder) Configure(cfg component.Config) error { return nil }

// Build returns a *graph.KnowledgeGraph accumulated from the batch.
func (b *KGBuilder) Build(ctx context.Context, atoms []*core.Atom) (any, error) {
	kg := graph.NewKnowledgeGraph()

	for _, a := range atoms {
		if a.Type != core.AtomTypeGraphReady {
			continue
		}

		rec, ok := a.Payload[core.PayloadKeyNode].(map[string]any)
		if !ok {
			return nil, fmt.Errorf("atom %s: %w", a.AtomID, core.ErrInvalidAtom)
		}

		node, err := graph.NodeFromRecord(rec)
		if err != nil {
			return nil, fmt.Errorf("atom %s: %w", a.AtomID, err)
		}
		if err := kg.AddNode(node); err != nil {
			return nil, fmt.Errorf("atom %s: %w", a.AtomID, err)
		}
	}

	return kg, nil
}
