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


package core

// Block types produced by the built-in parsers.
const (
	BlockTypeTitle     = "title"
	BlockTypeParagraph = "paragraph"
	BlockTypeField     = "field"
)

// ContentBlock is the normalized unit of content exchanged between the
// parse, refine, and chunk stages. Content is plain text; any structure
// the parser recovered lives in Metadata.
type ContentBlock struct {
	Type     string
	Content  string
	Metadata map[string]any
}

// BlocksFromAtom extracts the content block list embedded in an Atom's
// payload. Returns nil when the payload carries no blocks.
func BlocksFromAtom(a *Atom) []ContentBlock {
	blocks, _ := a.Payload[PayloadKeyBlocks].([]ContentBlock)
	return blocks
}

// AtomWithBlocks derives a document Atom carrying the given blocks.
func AtomWithBlocks(a *Atom, blocks []ContentBlock) *Atom {
	return a.Derive(AtomTypeDocument, map[string]any{
		PayloadKeyBlocks: blocks,
	})
}
