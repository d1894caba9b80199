package core

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewAtom(t *testing.T) {
	payload := map[string]any{PayloadKeyContent: "hello"}
	atom := New("https://example.com", AtomTypeRaw, payload)

	assert.Equal(t, "https://example.com", atom.Source)
	assert.Equal(t, AtomTypeRaw, atom.Type)
	assert.Equal(t, payload, atom.Payload)
	assert.NotEmpty(t, atom.AtomID)
	assert.False(t, atom.Timestamp.IsZero())
	assert.Equal(t, time.UTC, atom.Timestamp.Location())
}

func TestNewAtom_UniqueIDs(t *testing.T) {
	seen := make(map[string]bool)
	for i := 0; i < 100; i++ {
		atom := New("src", AtomTypeRaw, map[string]any{})
		require.False(t, seen[atom.AtomID], "duplicate atom ID %s", atom.AtomID)
		seen[atom.AtomID] = true
	}
}

func TestAtomRoundTrip(t *testing.T) {
	tests := []struct {
		name string
		atom *Atom
	}{
		{
			name: "raw atom",
			atom: New("file:///tmp/a.txt", AtomTypeRaw, map[string]any{
				PayloadKeyContent:     "some text",
				PayloadKeyContentType: "text/plain",
			}),
		},
		{
			name: "empty payload",
			atom: New("https://example.com", AtomTypeDocument, map[string]any{}),
		},
		{
			name: "nested payload",
			atom: New("s", AtomTypeGraphReady, map[string]any{
				PayloadKeyNode: map[string]any{"id": "n1", "class": "Document"},
			}),
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			rec := tt.atom.ToRecord()
			decoded, err := FromRecord(rec)
			require.NoError(t, err)
			assert.Equal(t, tt.atom.Source, decoded.Source)
			assert.Equal(t, tt.atom.Type, decoded.Type)
			assert.Equal(t, tt.atom.Payload, decoded.Payload)
			assert.Equal(t, tt.atom.AtomID, decoded.AtomID)
			assert.True(t, tt.atom.Timestamp.Equal(decoded.Timestamp))
		})
	}
}

func TestFromRecord_MissingFields(t *testing.T) {
	tests := []struct {
		name string
		rec  map[string]any
	}{
		{"missing source", map[string]any{"type": "raw", "payload": map[string]any{}}},
		{"missing type", map[string]any{"source": "s", "payload": map[string]any{}}},
		{"missing payload", map[string]any{"source": "s", "type": "raw"}},
		{"empty record", map[string]any{}},
		{"wrong payload type", map[string]any{"source": "s", "type": "raw", "payload": "nope"}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := FromRecord(tt.rec)
			require.Error(t, err)
			assert.ErrorIs(t, err, ErrInvalidRecord)
		})
	}
}

func TestFromRecord_RegeneratesMissingID(t *testing.T) {
	rec := map[string]any{
		"source":  "s",
		"type":    AtomTypeRaw,
		"payload": map[string]any{},
	}
	atom, err := FromRecord(rec)
	require.NoError(t, err)
	assert.NotEmpty(t, atom.AtomID)
	assert.False(t, atom.Timestamp.IsZero())
}

func TestFromRecord_BadTimestamp(t *testing.T) {
	rec := map[string]any{
		"source":    "s",
		"type":      AtomTypeRaw,
		"payload":   map[string]any{},
		"timestamp": "not-a-time",
	}
	_, err := FromRecord(rec)
	assert.ErrorIs(t, err, ErrInvalidRecord)
}

func TestDerive(t *testing.T) {
	parent := New("https://example.com", AtomTypeRaw, map[string]any{})
	child := parent.Derive(AtomTypeChunk, map[string]any{PayloadKeyContent: "c"})

	assert.Equal(t, parent.Source, child.Source)
	assert.Equal(t, AtomTypeChunk, child.Type)
	assert.NotEqual(t, parent.AtomID, child.AtomID)
}

func TestContentID(t *testing.T) {
	a := ContentID("the same content")
	b := ContentID("the same content")
	c := ContentID("different content")

	assert.Equal(t, a, b)
	assert.NotEqual(t, a, c)
	assert.Len(t, a, 16)
}

func TestValidateAtom(t *testing.T) {
	tests := []struct {
		name    string
		atom    *Atom
		wantErr error
	}{
		{"valid", New("s", AtomTypeRaw, map[string]any{}), nil},
		{"nil atom", nil, ErrInvalidAtom},
		{"empty source", &Atom{Type: AtomTypeRaw, Payload: map[string]any{}}, ErrEmptySource},
		{"empty type", &Atom{Source: "s", Payload: map[string]any{}}, ErrEmptyType},
		{"nil payload", &Atom{Source: "s", Type: AtomTypeRaw}, ErrNilPayload},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := ValidateAtom(tt.atom)
			if tt.wantErr == nil {
				assert.NoError(t, err)
			} else {
				assert.ErrorIs(t, err, tt.wantErr)
			}
		})
	}
}

func TestValidateAtoms(t *testing.T) {
	atoms := []*Atom{
		New("s", AtomTypeRaw, map[string]any{}),
		{Source: "s", Type: "", Payload: map[string]any{}},
	}
	err := ValidateAtoms(atoms)
	require.Error(t, err)
	assert.ErrorIs(t, err, ErrEmptyType)
	assert.Contains(t, err.Error(), "atom 1")
}

func TestBlocksRoundTrip(t *testing.T) {
	raw := New("s", AtomTypeRaw, map[string]any{})
	blocks := []ContentBlock{
		{Type: BlockTypeTitle, Content: "Title"},
		{Type: BlockTypeParagraph, Content: "Body", Metadata: map[string]any{"lang": "en"}},
	}

	doc := AtomWithBlocks(raw, blocks)
	assert.Equal(t, AtomTypeDocument, doc.Type)
	assert.Equal(t, blocks, BlocksFromAtom(doc))

	assert.Nil(t, BlocksFromAtom(raw))
}
