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


// Package graph provides the in-memory knowledge graph accumulated by
// the assemble stage and consumed by the store stage.
package graph

import (
	"encoding/json"
	"errors"
	"fmt"
)

// ErrEmptyNodeID indicates a node without an identifier.
var ErrEmptyNodeID = errors.New("node id cannot be empty")

// Node is one typed entity in the knowledge graph. Relationships are
// directed edges keyed by predicate name; targets per predicate are
// ordered and may contain duplicates. Collapsing duplicates is a
// writer's concern, not the accumulator's.
type Node struct {
	ID            string
	Class         string
	Name          string
	Attributes    map[string]any
	Relationships map[string][]string
}

// ToRecord converts the node to its record form.
func (n *Node) ToRecord() map[string]any {
	rels := make(map[string]any, len(n.Relationships))
	for predicate, targets := range n.Relationships {
		rels[predicate] = targets
	}
	return map[string]any{
		"id":            n.ID,
		"class":         n.Class,
		"name":          n.Name,
		"attributes":    n.Attributes,
		"relationships": rels,
	}
}

// NodeFromRecord reconstructs a Node from its record form, as emitted by
// mappers into graph-ready atom payloads.
func NodeFromRecord(rec map[string]any) (*Node, error) {
	id, _ := rec["id"].(string)
	if id == "" {
		return nil, ErrEmptyNodeID
	}

	node := &Node{
		ID:            id,
		Attributes:    map[string]any{},
		Relationships: map[string][]string{},
	}
	node.Class, _ = rec["class"].(string)
	node.Name, _ = rec["name"].(string)

	if attrs, ok := rec["attributes"].(map[string]any); ok {
		for k, v := range attrs {
			node.Attributes[k] = v
		}
	}

	switch rels := rec["relationships"].(type) {
	case map[string][]string:
		for predicate, targets := range rels {
			node.Relationships[predicate] = append([]string(nil), targets...)
		}
	case map[string]any:
		for predicate, raw := range rels {
			targets, err := toStringList(raw)
			if err != nil {
				return nil, fmt.Errorf("relationship %q: %w", predicate, err)
			}
			node.Relationships[predicate] = targets
		}
	}

	return node, nil
}

func toStringList(raw any) ([]string, error) {
	switch v := raw.(type) {
	case []string:
		return append([]string(nil), v...), nil
	case []any:
		out := make([]string, 0, len(v))
		for _, item := range v {
			s, ok := item.(string)
			if !ok {
				return nil, fmt.Errorf("target %v is not a string", item)
			}
			out = append(out, s)
		}
		return out, nil
	}
	return nil, fmt.Errorf("targets %v are not a string list", raw)
}

// KnowledgeGraph is the entity map built incrementally by the assemble
// stage. It never removes entries during a run; its lifetime is exactly
// one pipeline invocation, and ownership transfers fully to the writer
// at the store boundary.
type KnowledgeGraph struct {
	nodes map[string]*Node
	order []string
}

// NewKnowledgeGraph creates an empty graph.
func NewKnowledgeGraph() *KnowledgeGraph {
	return &KnowledgeGraph{
		nodes: make(map[string]*Node),
	}
}

// AddNode merges a node into the graph by ID. A new ID inserts; an
// existing ID merges key-wise: new attribute values overwrite old ones,
// relationship lists are concatenated with duplicates preserved, and a
// non-empty class or name replaces the stored one.
func (g *KnowledgeGraph) AddNode(node *Node) error {
	if node == nil || node.ID == "" {
		return ErrEmptyNodeID
	}

	existing, ok := g.nodes[node.ID]
	if !ok {
		stored := &Node{
			ID:            node.ID,
			Class:         node.Class,
			Name:          node.Name,
			Attributes:    map[string]any{},
			Relationships: map[string][]string{},
		}
		for k, v := range node.Attributes {
			stored.Attributes[k] = v
		}
		for predicate, targets := range node.Relationships {
			stored.Relationships[predicate] = append([]string(nil), targets...)
		}
		g.nodes[node.ID] = stored
		g.order = append(g.order, node.ID)
		return nil
	}

	if node.Class != "" {
		existing.Class = node.Class
	}
	if node.Name != "" {
		existing.Name = node.Name
	}
	for k, v := range node.Attributes {
		existing.Attributes[k] = v
	}
	for predicate, targets := range node.Relationships {
		existing.Relationships[predicate] = append(existing.Relationships[predicate], targets...)
	}
	return nil
}

// Node returns the node stored under id.
func (g *KnowledgeGraph) Node(id string) (*Node, bool) {
	node, ok := g.nodes[id]
	return node, ok
}

// Len returns the number of nodes in the graph.
func (g *KnowledgeGraph) Len() int {
	return len(g.nodes)
}

// Nodes returns the graph's nodes in insertion order.
func (g *KnowledgeGraph) Nodes() []*Node {
	out := make([]*Node, 0, len(g.order))
	for _, id := range g.order {
		out = append(out, g.nodes[id])
	}
	return out
}

// ToRecord converts the graph to its record form for serialization.
func (g *KnowledgeGraph) ToRecord() map[string]any {
	nodes := make([]map[string]any, 0, len(g.order))
	edgeCount := 0
	for _, node := range g.Nodes() {
		nodes = append(nodes, node.ToRecord())
		for _, targets := range node.Relationships {
			edgeCount += len(targets)
		}
	}
	return map[string]any{
		"nodes": nodes,
		"summary": map[string]any{
			"node_count": len(nodes),
			"edge_count": edgeCount,
		},
	}
}

// MarshalJSON serializes the graph in its record form.
func (g *KnowledgeGraph) MarshalJSON() ([]byte, error) {
	return json.Marshal(g.ToRecord())
}
