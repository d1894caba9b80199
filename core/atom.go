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

import (
	"encoding/binary"
	"fmt"
	"time"

	"github.com/go-crypt/x/blake2b"
	"github.com/google/uuid"
)

// Well-known atom types exchanged between pipeline stages.
// Payload shape is determined by the type but remains opaque to the core;
// schema enforcement is the consuming adapter's responsibility.
const (
	// AtomTypeRaw carries an unparsed payload straight from a fetcher.
	AtomTypeRaw = "raw"

	// AtomTypeDocument carries parsed content blocks.
	AtomTypeDocument = "document"

	// AtomTypeChunk carries a single chunk of refined content.
	AtomTypeChunk = "chunk"

	// AtomTypeGraphReady carries a graph node record produced by a mapper.
	AtomTypeGraphReady = "graph_ready"
)

// Payload keys recognized across the built-in adapters.
const (
	PayloadKeyContent     = "content"
	PayloadKeyContentType = "content_type"
	PayloadKeyBlocks      = "blocks"
	PayloadKeyNode        = "node"
)

// Atom is the standard record exchanged between every pipeline stage.
// An Atom is immutable after creation: stages produce new Atoms rather
// than editing existing ones, so a retried stage always sees the same input.
type Atom struct {
	Source    string
	Type      string
	Payload   map[string]any
	AtomID    string
	Timestamp time.Time
}

// New creates an Atom with a fresh unique ID and the current UTC time.
func New(source, atomType string, payload map[string]any) *Atom {
	return &Atom{
		Source:    source,
		Type:      atomType,
		Payload:   payload,
		AtomID:    uuid.NewString(),
		Timestamp: time.Now().UTC(),
	}
}

// Derive creates a new Atom carrying forward the source of the receiver.
// It is the standard way for a transform stage to emit output records.
func (a *Atom) Derive(atomType string, payload map[string]any) *Atom {
	return New(a.Source, atomType, payload)
}

// FromRecord reconstructs an Atom from its record form.
// Returns ErrInvalidRecord if source, type, or payload is absent.
// A missing atom_id or timestamp is regenerated, matching New.
func FromRecord(rec map[string]any) (*Atom, error) {
	source, ok := rec["source"].(string)
	if !ok || source == "" {
		return nil, fmt.Errorf("%w: missing source", ErrInvalidRecord)
	}
	atomType, ok := rec["type"].(string)
	if !ok || atomType == "" {
		return nil, fmt.Errorf("%w: missing type", ErrInvalidRecord)
	}
	payload, ok := rec["payload"].(map[string]any)
	if !ok {
		return nil, fmt.Errorf("%w: missing payload", ErrInvalidRecord)
	}

	atom := &Atom{
		Source:  source,
		Type:    atomType,
		Payload: payload,
	}

	if id, ok := rec["atom_id"].(string); ok && id != "" {
		atom.AtomID = id
	} else {
		atom.AtomID = uuid.NewString()
	}

	if ts, ok := rec["timestamp"].(string); ok && ts != "" {
		parsed, err := time.Parse(time.RFC3339Nano, ts)
		if err != nil {
			return nil, fmt.Errorf("%w: bad timestamp %q", ErrInvalidRecord, ts)
		}
		atom.Timestamp = parsed
	} else {
		atom.Timestamp = time.Now().UTC()
	}

	return atom, nil
}

// ToRecord converts the Atom to its record form.
// FromRecord(ToRecord(a)) reconstructs an equal Atom for every valid a.
func (a *Atom) ToRecord() map[string]any {
	return map[string]any{
		"source":    a.Source,
		"type":      a.Type,
		"payload":   a.Payload,
		"atom_id":   a.AtomID,
		"timestamp": a.Timestamp.Format(time.RFC3339Nano),
	}
}

// ContentID generates a deterministic 64-bit identifier from text content
// using BLAKE2b hashing, rendered as a fixed-width hex string. Identical
// content always produces the identical ID, which keeps re-runs idempotent.
func ContentID(text string) string {
	h, _ := blake2b.New(8, nil) // 8 bytes = 64 bits
	h.Write([]byte(text))
	sum := h.Sum(nil)
	return fmt.Sprintf("%016x", binary.LittleEndian.Uint64(sum))
}
