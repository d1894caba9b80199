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


package pipeline

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"runtime"
	"sync"
	"time"

	"github.com/panjf2000/ants/v2"
	"github.com/poiesic/sift/component"
	"github.com/poiesic/sift/core"
	"github.com/poiesic/sift/registry"
	"github.com/poiesic/sift/resilience"
)

// Orchestrator resolves one concrete component per pipeline role, drives
// records through the execution chain, and aggregates run statistics.
// Frontier traversal (fetch and generate) runs on a bounded worker pool;
// every later stage is a single-threaded batch barrier.
type Orchestrator struct {
	registry    *registry.Registry
	pool        *ants.Pool
	logger      *slog.Logger
	maxAttempts int
	retryDelay  time.Duration
	maxItems    int
	checkpoints CheckpointStore
	runID       string
}

// Option configures an Orchestrator.
type Option func(*Orchestrator) error

// WithPoolSize sets the frontier worker pool size.
// Default is runtime.NumCPU() / 2, with a minimum of 1.
func WithPoolSize(size int) Option {
	return func(o *Orchestrator) error {
		if size < 1 {
			size = 1
		}
		if o.pool != nil {
			o.pool.Release()
		}
		pool, err := ants.NewPool(size)
		if err != nil {
			return err
		}
		o.pool = pool
		return nil
	}
}

// WithLogger sets a custom logger.
// Default is slog.Default().
func WithLogger(logger *slog.Logger) Option {
	return func(o *Orchestrator) error {
		if logger == nil {
			logger = slog.Default()
		}
		o.logger = logger
		return nil
	}
}

// WithRetry configures the retry wrapper applied to every fetch:
// maxAttempts invocations with a fixed delay between attempts.
// Default is 3 attempts with a 1s delay.
func WithRetry(maxAttempts int, delay time.Duration) Option {
	return func(o *Orchestrator) error {
		if maxAttempts < 1 {
			return resilience.ErrInvalidMaxAttempts
		}
		o.maxAttempts = maxAttempts
		o.retryDelay = delay
		return nil
	}
}

// WithMaxItems caps the number of identifiers fetched in one run.
// Zero means unbounded. Default is unbounded.
func WithMaxItems(n int) Option {
	return func(o *Orchestrator) error {
		if n < 0 {
			n = 0
		}
		o.maxItems = n
		return nil
	}
}

// WithCheckpoints persists crawl progress under runID so an interrupted
// run can resume without refetching completed identifiers.
func WithCheckpoints(store CheckpointStore, runID string) Option {
	return func(o *Orchestrator) error {
		o.checkpoints = store
		o.runID = runID
		return nil
	}
}

// New creates an Orchestrator resolving components from the given
// registry. A nil registry uses the process-wide default.
func New(reg *registry.Registry, opts ...Option) (*Orchestrator, error) {
	if reg == nil {
		reg = registry.Default()
	}

	poolSize := runtime.NumCPU() / 2
	if poolSize < 1 {
		poolSize = 1
	}
	pool, err := ants.NewPool(poolSize)
	if err != nil {
		return nil, err
	}

	o := &Orchestrator{
		registry:    reg,
		pool:        pool,
		logger:      slog.Default(),
		maxAttempts: 3,
		retryDelay:  time.Second,
	}

	for _, opt := range opts {
		if optErr := opt(o); optErr != nil {
			o.Release()
			return nil, optErr
		}
	}

	return o, nil
}

// Release releases the worker pool. The orchestrator must not be used
// after calling Release.
func (o *Orchestrator) Release() {
	if o.pool != nil {
		o.pool.Release()
	}
}

// stage is one batch-barrier transform of the execution chain.
type stage struct {
	op string
	t  component.Transformer
}

// chain is the concrete execution chain resolved for one run.
type chain struct {
	seeder    component.Seeder
	fetcher   component.Fetcher
	generator component.Generator // nil when no strategy selects one
	stages    []stage
	builder   component.Builder
	writer    component.Writer
}

// resolveAs resolves, wires, and initializes one component, asserting
// its role capability interface.
func resolveAs[T any](o *Orchestrator, role, name string, options component.Config) (T, error) {
	var zero T

	factory, err := o.registry.Resolve(role, name)
	if err != nil {
		return zero, err
	}

	c := factory()
	if ls, ok := c.(interface{ SetLogger(*slog.Logger) }); ok {
		ls.SetLogger(o.logger)
	}

	typed, ok := c.(T)
	if !ok {
		return zero, fmt.Errorf("%w: %s/%s", ErrWrongComponentKind, role, c.Name())
	}

	if err := component.Init(c, options); err != nil {
		return zero, err
	}
	return typed, nil
}

// resolveChain builds the execution chain for a run. Any resolution or
// initialization error aborts before any I/O occurs: partial pipelines
// never execute.
func (o *Orchestrator) resolveChain(strategies map[string]string, options component.Config) (*chain, error) {
	ch := &chain{}
	var err error

	if ch.seeder, err = resolveAs[component.Seeder](o, component.RoleSeeder, strategies[component.RoleSeeder], options); err != nil {
		return nil, err
	}
	if ch.fetcher, err = resolveAs[component.Fetcher](o, component.RoleFetcher, strategies[component.RoleFetcher], options); err != nil {
		return nil, err
	}

	// The generator role is optional: it participates only when a run
	// names a strategy or the registry carries a default.
	if strategies[component.RoleGenerator] != "" || o.registry.Default(component.RoleGenerator) != "" {
		if ch.generator, err = resolveAs[component.Generator](o, component.RoleGenerator, strategies[component.RoleGenerator], options); err != nil {
			return nil, err
		}
	}

	for _, s := range []struct {
		role string
		op   string
	}{
		{component.RoleParser, "parse"},
		{component.RoleRefiner, "refine"},
		{component.RoleSplitter, "chunk"},
		{component.RoleMapper, "wrap"},
	} {
		t, terr := resolveAs[component.Transformer](o, s.role, strategies[s.role], options)
		if terr != nil {
			return nil, terr
		}
		ch.stages = append(ch.stages, stage{op: s.op, t: t})
	}

	if ch.builder, err = resolveAs[component.Builder](o, component.RoleBuilder, strategies[component.RoleBuilder], options); err != nil {
		return nil, err
	}
	if ch.writer, err = resolveAs[component.Writer](o, component.RoleWriter, strategies[component.RoleWriter], options); err != nil {
		return nil, err
	}

	return ch, nil
}

// atomBatch collects the atoms produced by concurrent frontier workers.
type atomBatch struct {
	mu    sync.Mutex
	atoms []*core.Atom
}

func (b *atomBatch) append(atoms ...*core.Atom) {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.atoms = append(b.atoms, atoms...)
}

func (b *atomBatch) list() []*core.Atom {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.atoms
}

// Process executes one pipeline run: resolve and initialize the chain,
// seed, crawl the frontier on the worker pool, then run the batch
// stages through build and store. Per-item fetch and generate failures
// are contained in the stats; resolution, initialization, and batch
// stage errors abort the run. On cancellation, in-flight workers finish,
// no new frontier item is dispatched, and the partial stats are returned
// without error.
func (o *Orchestrator) Process(ctx context.Context, source, destination string, strategies map[string]string, options component.Config) (RunStats, error) {
	stats := &counters{}

	if source == "" {
		return stats.snapshot(), ErrMissingSource
	}

	runOptions := component.Config{}
	for k, v := range options {
		runOptions[k] = v
	}
	runOptions["source"] = source
	runOptions["destination"] = destination

	ch, err := o.resolveChain(strategies, runOptions)
	if err != nil {
		return stats.snapshot(), err
	}

	o.logger.Info("starting run", "source", source, "destination", destination)

	seeds, err := component.Do(ctx, ch.seeder, "seed", source, nil,
		func(ctx context.Context, _ string) ([]string, error) {
			return ch.seeder.Seed(ctx)
		})
	if err != nil {
		return stats.snapshot(), err
	}
	stats.seeded.Add(int64(len(seeds)))

	fr := newFrontier(o.maxItems)
	o.restoreCheckpoint(ctx, fr, &seeds)

	batch := &atomBatch{}
	var wg sync.WaitGroup

	var enqueue func(id string) bool
	enqueue = func(id string) bool {
		if ctx.Err() != nil {
			return false
		}
		if !fr.admit(id) {
			return false
		}
		wg.Add(1)
		if submitErr := o.pool.Submit(func() {
			defer wg.Done()
			o.crawlOne(ctx, ch, fr, batch, stats, enqueue, id)
		}); submitErr != nil {
			wg.Done()
			fr.done(id)
			stats.failed.Add(1)
			o.logger.Error("worker submit failed", "identifier", id, "err", submitErr)
			return false
		}
		return true
	}

	for _, id := range seeds {
		if !enqueue(id) {
			stats.skipped.Add(1)
		}
	}
	wg.Wait()

	o.saveCheckpoint(ctx, fr, stats)

	if ctx.Err() != nil {
		o.logger.Warn("run cancelled during crawl", "stats", stats.snapshot())
		return stats.snapshot(), nil
	}

	atoms := batch.list()
	o.logger.Info("crawl complete", "atoms", len(atoms))

	for _, s := range ch.stages {
		atoms, err = component.Do(ctx, s.t, s.op, atoms, core.ValidateAtoms,
			func(ctx context.Context, in []*core.Atom) ([]*core.Atom, error) {
				return s.t.Transform(ctx, in)
			})
		if err != nil {
			return stats.snapshot(), err
		}
	}

	built, err := component.Do(ctx, ch.builder, "build", atoms, core.ValidateAtoms,
		func(ctx context.Context, in []*core.Atom) (any, error) {
			return ch.builder.Build(ctx, in)
		})
	if err != nil {
		return stats.snapshot(), err
	}

	// Store failures are contained: a bad batch yields failed counts,
	// not an aborted run.
	written, storeErr := component.Do(ctx, ch.writer, "store", built, nil,
		func(ctx context.Context, in any) (int, error) {
			return ch.writer.Store(ctx, in)
		})
	stats.written.Add(int64(written))
	if storeErr != nil {
		stats.failed.Add(1)
		o.logger.Error("store failed", "err", storeErr)
	} else {
		o.clearCheckpoint(ctx)
	}

	final := stats.snapshot()
	o.logger.Info("run complete",
		"seeded", final.Seeded, "fetched", final.Fetched,
		"generated", final.Generated, "written", final.Written,
		"failed", final.Failed, "skipped", final.Skipped)
	return final, nil
}

// crawlOne processes a single admitted frontier identifier: fetch with
// retry, wrap the payload into an atom, and expand the frontier through
// the generator. Failures are contained per item.
func (o *Orchestrator) crawlOne(ctx context.Context, ch *chain, fr *frontier, batch *atomBatch, stats *counters, enqueue func(string) bool, id string) {
	defer fr.done(id)

	if ctx.Err() != nil {
		stats.skipped.Add(1)
		return
	}

	fetchOp := resilience.Retry(func(ctx context.Context) (map[string]any, error) {
		return component.Do(ctx, ch.fetcher, "fetch", id, nil,
			func(ctx context.Context, identifier string) (map[string]any, error) {
				return ch.fetcher.Fetch(ctx, identifier)
			})
	}, o.maxAttempts, o.retryDelay)

	payload, err := fetchOp(ctx)
	if err != nil {
		stats.failed.Add(1)
		o.logger.Warn("fetch failed", "identifier", id, "err", err)
		return
	}
	stats.fetched.Add(1)

	batch.append(core.New(id, core.AtomTypeRaw, payload))

	if ch.generator == nil {
		return
	}

	// A generator failure must not abort the item; the fetched atom
	// already made it into the batch.
	generateOp := resilience.SafeDefault(func(ctx context.Context) ([]string, error) {
		return component.Do(ctx, ch.generator, "generate", payload, nil,
			func(ctx context.Context, p map[string]any) ([]string, error) {
				return ch.generator.Generate(ctx, p)
			})
	}, nil, o.logger)

	discovered, _ := generateOp(ctx)
	for _, next := range discovered {
		if ctx.Err() != nil {
			return
		}
		if enqueue(next) {
			stats.generated.Add(1)
		} else {
			stats.skipped.Add(1)
		}
	}
}

func (o *Orchestrator) restoreCheckpoint(ctx context.Context, fr *frontier, seeds *[]string) {
	if o.checkpoints == nil {
		return
	}
	cp, err := o.checkpoints.LoadCheckpoint(ctx, o.runID)
	if err != nil {
		if !errors.Is(err, ErrNoCheckpoint) {
			o.logger.Warn("checkpoint load failed", "run", o.runID, "err", err)
		}
		return
	}
	fr.preload(cp.Visited, cp.Pending)
	*seeds = append(*seeds, cp.Pending...)
	o.logger.Info("resuming from checkpoint",
		"run", o.runID, "visited", len(cp.Visited), "pending", len(cp.Pending))
}

func (o *Orchestrator) saveCheckpoint(ctx context.Context, fr *frontier, stats *counters) {
	if o.checkpoints == nil {
		return
	}
	cp := &Checkpoint{
		RunID:     o.runID,
		Visited:   fr.visitedList(),
		Pending:   fr.pendingList(),
		Stats:     stats.snapshot(),
		UpdatedAt: time.Now().UTC(),
	}
	if err := o.checkpoints.SaveCheckpoint(context.WithoutCancel(ctx), cp); err != nil {
		o.logger.Warn("checkpoint save failed", "run", o.runID, "err", err)
	}
}

func (o *Orchestrator) clearCheckpoint(ctx context.Context) {
	if o.checkpoints == nil {
		return
	}
	if err := o.checkpoints.DeleteCheckpoint(context.WithoutCancel(ctx), o.runID); err != nil {
		o.logger.Warn("checkpoint delete failed", "run", o.runID, "err", err)
	}
}
