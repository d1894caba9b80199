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
	"golang.org/x/net/html"
)

// HTMLParser turns HTML payloads into content blocks: headings become
// title blocks, paragraphs and list items become paragraph blocks.
// Script and style subtrees are dropped entirely.
type HTMLParser struct {
	component.Base
}

// NewHTMLParser creates an unconfigured HTML parser.
func NewHTMLParser() *HTMLParser {
	return &HTMLParser{Base: component.NewBase(component.RoleParser, "html")}
}

func (p *HTMLParser) Configure(cfg component.Config) error { return nil }

// Transform converts raw HTML atoms into document atoms. Atoms whose
// content type is not HTML pass through untouched.
func (p *HTMLParser) Transform(ctx context.Context, atoms []*core.Atom) ([]*core.Atom, error) {
	out := make([]*core.Atom, 0, len(atoms))
	for _, a := range atoms {
		contentType, _ := a.Payload[core.PayloadKeyContentType].(string)
		content, _ := a.Payload[core.PayloadKeyContent].(string)
		if a.Type != core.AtomTypeRaw || content == "" || !strings.Contains(contentType, "html") {
			out = append(out, a)
			continue
		}

		root, err := html.Parse(strings.NewReader(content))
		if err != nil {
			return nil, err
		}
		out = append(out, core.AtomWithBlocks(a, collectBlocks(root)))
	}
	return out, nil
}

var headingTags = map[string]bool{
	"h1": true, "h2": true, "h3": true, "h4": true, "h5": true, "h6": true,
}

func collectBlocks(root *html.Node) []core.ContentBlock {
	var blocks []core.ContentBlock

	var walk func(n *html.Node)
	walk = func(n *html.Node) {
		if n.Type == html.ElementNode {
			switch {
			case n.Data == "script" || n.Data == "style":
				return
			case headingTags[n.Data]:
				if text := nodeText(n); text != "" {
					blocks = append(blocks, core.ContentBlock{
						Type:     core.BlockTypeTitle,
						Content:  text,
						Metadata: map[string]any{"tag": n.Data},
					})
				}
				return
			case n.Data == "p" || n.Data == "li":
				if text := nodeText(n); text != "" {
					blocks = append(blocks, core.ContentBlock{
						Type:    core.BlockTypeParagraph,
						Content: text,
					})
				}
				return
			}
		}
		for c := n.FirstChild; c != nil; c = c.NextSibling {
			walk(c)
		}
	}
	walk(root)

	return blocks
}

// nodeText flattens the text content of a subtree, collapsing runs of
// whitespace to single spaces.
func nodeText(n *html.Node) string {
	var sb strings.Builder

	var walk func(n *html.Node)
	walk = func(n *html.Node) {
		if n.Type == html.TextNode {
			sb.WriteString(n.Data)
			return
		}
		if n.Type == html.ElementNode && (n.Data == "script" || n.Data == "style") {
			return
		}
		for c := n.FirstChild; c != nil; c = c.NextSibling {
			walk(c)
		}
	}
	walk(n)

	return strings.Join(strings.Fields(sb.String()), " ")
}
