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


package document

import (
	"context"
	"encoding/json"
	"fmt"
	"sort"
	"strings"

	"github.com/poiesic/sift/component"
	"github.com/poiesic/sift/core"
)

// JSONParser turns JSON payloads into field blocks, one per top-level
// key with scalar values rendered inline and nested structures
// flattened with dotted paths. A top-level array produces one block
// set per element.
type JSONParser struct {
	component.Base
}

// NewJSONParser creates an unconfigured JSON parser.
func NewJSONParser() *JSONParser {
	return &JSONParser{Base: component.NewBase(component.RoleParser, "json")}
}

func (p *JSONParser) Configure(cfg component.Config) error { return nil }

// Transform converts raw JSON atoms into document atoms. Atoms whose
// content type is not JSON pass through untouched; malformed JSON
// aborts the batch.
func (p *JSONParser) Transform(ctx context.Context, atoms []*core.Atom) ([]*core.Atom, error) {
	out := make([]*core.Atom, 0, len(atoms))
	for _, a := range atoms {
		contentType, _ := a.Payload[core.PayloadKeyContentType].(string)
		content, _ := a.Payload[core.PayloadKeyContent].(string)
		if a.Type != core.AtomTypeRaw || content == "" || !strings.Contains(contentType, "json") {
			out = append(out, a)
			continue
		}

		var decoded any
		if err := json.Unmarshal([]byte(content), &decoded); err != nil {
			return nil, fmt.Errorf("atom %s: %w", a.AtomID, err)
		}

		var blocks []core.ContentBlock
		switch v := decoded.(type) {
		case []any:
			for i, elem := range v {
				blocks = append(blocks, fieldBlocks(elem, fmt.Sprintf("[%d]", i))...)
			}
		default:
			blocks = fieldBlocks(decoded, "")
		}
		out = append(out, core.AtomWithBlocks(a, blocks))
	}
	return out, nil
}

// fieldBlocks flattens a decoded JSON value into field blocks with
// dotted key paths, in sorted key order for deterministic output.
func fieldBlocks(v any, prefix string) []core.ContentBlock {
	obj, ok := v.(map[string]any)
	if !ok {
		return []core.ContentBlock{{
			Type:     core.BlockTypeField,
			Content:  renderScalar(v),
			Metadata: map[string]any{"path": prefix},
		}}
	}

	keys := make([]string, 0, len(obj))
	for k := range obj {
		keys = append(keys, k)
	}
	sort.Strings(keys)

	var blocks []core.ContentBlock
	for _, k := range keys {
		path := k
		if prefix != "" {
			path = prefix + "." + k
		}
		switch val := obj[k].(type) {
		case map[string]any:
			blocks = append(blocks, fieldBlocks(val, path)...)
		case []any:
			for i, elem := range val {
				blocks = append(blocks, fieldBlocks(elem, fmt.Sprintf("%s[%d]", path, i))...)
			}
		default:
			blocks = append(blocks, core.ContentBlock{
				Type:     core.BlockTypeField,
				Content:  fmt.Sprintf("%s: %s", path, renderScalar(val)),
				Metadata: map[string]any{"path": path},
			})
		}
	}
	return blocks
}

func renderScalar(v any) string {
	switch val := v.(type) {
	case nil:
		return "null"
	case string:
		return val
	case float64:
		// Render integers without a decimal point.
		if val == float64(int64(val)) {
			return fmt.Sprintf("%d", int64(val))
		}
		return fmt.Sprintf("%g", val)
	case bool:
		return fmt.Sprintf("%t", val)
	}
	return fmt.Sprintf("%v", v)
}
