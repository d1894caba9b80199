// Package core defines the data model shared by every pipeline stage.
//
// The central type is Atom, the standard immutable record exchanged
// between stages. Fetch and generate stages create Atoms; every later
// stage consumes a list of Atoms and produces a new list rather than
// mutating in place. ContentBlock is the normalized content unit used
// between the parse, refine, and chunk stages, carried inside Atom
// payloads.
//
// Payload shapes are determined by the atom type but are opaque to the
// core; adapters that produce a type are responsible for its schema.
package core
