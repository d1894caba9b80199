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


package loader

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/dgraph-io/badger/v4"
	"github.com/poiesic/sift/component"
	"github.com/poiesic/sift/graph"
)

// BadgerWriter persists the built knowledge graph into a BadgerDB
// database at the run's destination path, one entry per node keyed by
// node ID. A node that fails to serialize or write is logged and
// skipped; the rest of the graph still lands, and Store returns nil.
// Callers detect partial writes by comparing the returned count against
// the graph's node count; the writer also logs a summary warning with
// the skipped total.
//
// Options: in_memory opens a throwaway database, for tests.
type BadgerWriter struct {
	component.Base
	path     string
	inMemory bool
}

// NewBadgerWriter creates an unconfigured badger writer.
func NewBadgerWriter() *BadgerWriter {
	return &BadgerWriter{Base: component.NewBase(component.RoleWriter, "badger")}
}

func (w *BadgerWriter) Configure(cfg component.Config) error {
	w.inMemory = cfg.Bool("in_memory", false)
	if w.inMemory {
		return nil
	}
	path, err := cfg.RequireString("destination")
	if err != nil {
		return err
	}
	w.path = path
	return nil
}

// Store writes each graph node and returns the number stored.
func (w *BadgerWriter) Store(ctx context.Context, built any) (int, error) {
	kg, ok := built.(*graph.KnowledgeGraph)
	if !ok {
		return 0, fmt.Errorf("%w: %T", ErrUnsupportedBuilt, built)
	}

	backend, err := OpenBackend(w.path, w.inMemory, w.Logger())
	if err != nil {
		return 0, err
	}
	defer backend.Close()

	written, skipped := 0, 0
	err = backend.WithTx(func(tx *badger.Txn) error {
		for _, node := range kg.Nodes() {
			data, merr := json.Marshal(node.ToRecord())
			if merr != nil {
				w.Logger().Warn("node serialization failed", "node", node.ID, "err", merr)
				skipped++
				continue
			}
			if serr := tx.Set(makeNodeKey(node.ID), data); serr != nil {
				w.Logger().Warn("node write failed", "node", node.ID, "err", serr)
				skipped++
				continue
			}
			written++
		}
		return tx.Commit()
	}, true)
	if err != nil {
		return 0, err
	}
	if skipped > 0 {
		w.Logger().Warn("graph stored with skipped nodes",
			"written", written, "skipped", skipped)
	}

	return written, nil
}
