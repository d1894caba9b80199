package chunking

import (
	"context"
	"strings"
	"testing"

	"github.com/poiesic/sift/component"
	"github.com/poiesic/sift/core"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func docAtom(contents ...string) *core.Atom {
	blocks := make([]core.ContentBlock, len(contents))
	for i, c := range contents {
		blocks[i] = core.ContentBlock{Type: core.BlockTypeParagraph, Content: c}
	}
	return core.New("test", core.AtomTypeDocument, map[string]any{
		core.PayloadKeyBlocks: blocks,
	})
}

func TestRecursiveSplitterSmallDocumentSingleChunk(t *testing.T) {
	s := NewRecursiveSplitter()
	require.NoError(t, component.Init(s, component.Config{}))

	parent := docAtom("short paragraph")
	atoms, err := s.Transform(context.Background(), []*core.Atom{parent})
	require.NoError(t, err)
	require.Len(t, atoms, 1)

	chunk := atoms[0]
	assert.Equal(t, core.AtomTypeChunk, chunk.Type)
	assert.Equal(t, "short paragraph", chunk.Payload[core.PayloadKeyContent])
	assert.Equal(t, 0, chunk.Payload[PayloadKeyChunkIndex])
	assert.Equal(t, parent.AtomID, chunk.Payload[PayloadKeyParentID])
	assert.Equal(t, parent.Source, chunk.Source)
}

func TestRecursiveSplitterSplitsLongDocument(t *testing.T) {
	s := NewRecursiveSplitter()
	require.NoError(t, component.Init(s, component.Config{
		"chunk_size":    80,
		"chunk_overlap": 0,
	}))

	paragraphs := make([]string, 6)
	for i := range paragraphs {
		paragraphs[i] = strings.Repeat("word ", 10)
	}
	parent := docAtom(paragraphs...)

	atoms, err := s.Transform(context.Background(), []*core.Atom{parent})
	require.NoError(t, err)
	require.Greater(t, len(atoms), 1)

	for i, chunk := range atoms {
		assert.Equal(t, core.AtomTypeChunk, chunk.Type)
		assert.Equal(t, i, chunk.Payload[PayloadKeyChunkIndex])
		assert.Equal(t, parent.AtomID, chunk.Payload[PayloadKeyParentID])
		assert.LessOrEqual(t, len(chunk.Payload[core.PayloadKeyContent].(string)), 80)
	}
}

func TestSplitterPassesThroughBlockless(t *testing.T) {
	s := NewRecursiveSplitter()
	require.NoError(t, component.Init(s, component.Config{}))

	raw := core.New("test", core.AtomTypeRaw, map[string]any{core.PayloadKeyContent: "x"})
	atoms, err := s.Transform(context.Background(), []*core.Atom{raw})
	require.NoError(t, err)
	require.Len(t, atoms, 1)
	assert.Same(t, raw, atoms[0])
}

func TestTokenSplitter(t *testing.T) {
	s := NewTokenSplitter()
	require.NoError(t, component.Init(s, component.Config{
		"chunk_size":    16,
		"chunk_overlap": 0,
	}))

	parent := docAtom(strings.Repeat("the quick brown fox jumps over the lazy dog ", 20))
	atoms, err := s.Transform(context.Background(), []*core.Atom{parent})
	require.NoError(t, err)
	require.Greater(t, len(atoms), 1)

	for _, chunk := range atoms {
		assert.Equal(t, core.AtomTypeChunk, chunk.Type)
		assert.Equal(t, parent.AtomID, chunk.Payload[PayloadKeyParentID])
	}
}
