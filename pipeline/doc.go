// Package pipeline provides the staged ETL orchestrator.
//
// A run resolves one component per role from a registry, initializes
// each with the run options (failing fast before any I/O), seeds a
// frontier of resource identifiers, and crawls it on a bounded worker
// pool with visited-set de-duplication. The fetched atoms then pass
// through the parse, refine, chunk, and wrap stages as whole-batch
// barriers, are folded into a built object, and handed to a writer.
//
// Per-item fetch and generate failures are contained and counted;
// initialization and batch-stage failures abort the run. Cancellation
// lets in-flight workers finish, dispatches nothing new, and returns
// partial RunStats without error.
package pipeline
