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
	"strings"

	"github.com/poiesic/sift/component"
	"github.com/poiesic/sift/core"
)

// TextParser turns plain-text payloads into paragraph blocks, splitting
// on blank lines. When "first_line_title" is set (the default) a single
// leading line followed by a blank line becomes a title block.
type TextParser struct {
	component.Base
	firstLineTitle bool
}

// NewTextParser creates an unconfigured text parser.
func NewTextParser() *TextParser {
	return &TextParser{Base: component.NewBase(component.RoleParser, "text")}
}

func (p *TextParser) Configure(cfg component.Config) error {
	p.firstLineTitle = cfg.Bool("first_line_title", true)
	return nil
}

// Transform converts raw atoms with textual content into document
// atoms. Atoms that are not raw, or carry no content, pass through
// untouched.
func (p *TextParser) Transform(ctx context.Context, atoms []*core.Atom) ([]*core.Atom, error) {
	out := make([]*core.Atom, 0, len(atoms))
	for _, a := range atoms {
		content, _ := a.Payload[core.PayloadKeyContent].(string)
		if a.Type != core.AtomTypeRaw || content == "" {
			out = append(out, a)
			continue
		}
		out = append(out, core.AtomWithBlocks(a, p.parse(content)))
	}
	return out, nil
}

func (p *TextParser) parse(content string) []core.ContentBlock {
	paragraphs := splitParagraphs(content)
	blocks := make([]core.ContentBlock, 0, len(paragraphs))

	for i, para := range paragraphs {
		blockType := core.BlockTypeParagraph
		if i == 0 && p.firstLineTitle && len(paragraphs) > 1 && !strings.Contains(para, "\n") {
			blockType = core.BlockTypeTitle
		}
		blocks = append(blocks, core.ContentBlock{Type: blockType, Content: para})
	}
	return blocks
}

// splitParagraphs splits text on blank lines, trimming each paragraph
// and dropping empty ones.
func splitParagraphs(content string) []string {
	content = strings.ReplaceAll(content, "\r\n", "\n")
	var out []string
	for _, part := range strings.Split(content, "\n\n") {
		if trimmed := strings.TrimSpace(part); trimmed != "" {
			out = append(out, trimmed)
		}
	}
	return out
}
