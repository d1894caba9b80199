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
	"os"
	"path/filepath"

	"github.com/poiesic/sift/component"
	"github.com/poiesic/sift/graph"
)

// ErrUnsupportedBuilt indicates a writer received a built object of a
// type it cannot store.
var ErrUnsupportedBuilt = fmt.Errorf("unsupported built object")

// FileWriter serializes the built knowledge graph to a JSON file at
// the run's destination path. The write goes through a temp file and
// rename, so a crashed run never leaves a half-written graph behind.
type FileWriter struct {
	component.Base
	path   string
	indent bool
}

// NewFileWriter creates an unconfigured file writer.
func NewFileWriter() *FileWriter {
	return &FileWriter{Base: component.NewBase(component.RoleWriter, "file")}
}

func (w *FileWriter) Configure(cfg component.Config) error {
	path, err := cfg.RequireString("destination")
	if err != nil {
		return err
	}
	w.path = path
	w.indent = cfg.Bool("indent", true)
	return nil
}

// Store writes the graph and returns its node count.
func (w *FileWriter) Store(ctx context.Context, built any) (int, error) {
	kg, ok := built.(*graph.KnowledgeGraph)
	if !ok {
		return 0, fmt.Errorf("%w: %T", ErrUnsupportedBuilt, built)
	}

	var (
		data []byte
		err  error
	)
	if w.indent {
		data, err = json.MarshalIndent(kg, "", "  ")
	} else {
		data, err = json.Marshal(kg)
	}
	if err != nil {
		return 0, err
	}

	if dir := filepath.Dir(w.path); dir != "." {
		if err := os.MkdirAll(dir, 0755); err != nil {
			return 0, err
		}
	}

	tmp := w.path + ".tmp"
	if err := os.WriteFile(tmp, data, 0644); err != nil {
		return 0, err
	}
	if err := os.Rename(tmp, w.path); err != nil {
		return 0, err
	}

	return kg.Len(), nil
}
