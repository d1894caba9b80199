// Package component defines the contract every pipeline adapter
// implements: a free-form Config validated at Init time, a three-state
// lifecycle (uninitialized, ready, failed), and a fixed execute template
// applied by Do around every operation.
//
// Leaf adapters embed Base, implement Configure and one role interface
// (Seeder, Fetcher, Generator, Transformer, Builder, Writer), and get
// request validation, role-typed error wrapping, and uniform operation
// logging from the template rather than re-implementing them.
package component
