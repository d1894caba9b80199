package pipeline

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"testing"
	"time"

	"github.com/poiesic/sift/component"
	"github.com/poiesic/sift/core"
	"github.com/poiesic/sift/registry"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// fakeSeeder emits a fixed identifier list and counts invocations.
type fakeSeeder struct {
	component.Base
	ids   []string
	calls int
	mu    sync.Mutex
}

func (s *fakeSeeder) Configure(cfg component.Config) error { return nil }

func (s *fakeSeeder) Seed(ctx context.Context) ([]string, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.calls++
	return s.ids, nil
}

// fakeFetcher serves canned payloads, optionally failing permanently for
// selected identifiers, and counts per-identifier invocations.
type fakeFetcher struct {
	component.Base
	failing map[string]bool
	mu      sync.Mutex
	calls   map[string]int
	delay   time.Duration
}

func (f *fakeFetcher) Configure(cfg component.Config) error { return nil }

func (f *fakeFetcher) Fetch(ctx context.Context, id string) (map[string]any, error) {
	f.mu.Lock()
	if f.calls == nil {
		f.calls = make(map[string]int)
	}
	f.calls[id]++
	f.mu.Unlock()

	if f.delay > 0 {
		time.Sleep(f.delay)
	}
	if f.failing[id] {
		return nil, errors.New("permanent failure")
	}
	return map[string]any{core.PayloadKeyContent: "content of " + id}, nil
}

func (f *fakeFetcher) fetchCount(id string) int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.calls[id]
}

// fakeGenerator expands identifiers from a fixed edge map.
type fakeGenerator struct {
	component.Base
	edges map[string][]string
}

func (g *fakeGenerator) Configure(cfg component.Config) error { return nil }

func (g *fakeGenerator) Generate(ctx context.Context, payload map[string]any) ([]string, error) {
	content, _ := payload[core.PayloadKeyContent].(string)
	// The canned payload is "content of <id>".
	id := ""
	if len(content) > len("content of ") {
		id = content[len("content of "):]
	}
	return g.edges[id], nil
}

// passthrough is a transformer that tags atoms as it forwards them.
type passthrough struct {
	component.Base
	err error
}

func (p *passthrough) Configure(cfg component.Config) error { return nil }

func (p *passthrough) Transform(ctx context.Context, atoms []*core.Atom) ([]*core.Atom, error) {
	if p.err != nil {
		return nil, p.err
	}
	out := make([]*core.Atom, 0, len(atoms))
	for _, a := range atoms {
		payload := map[string]any{}
		for k, v := range a.Payload {
			payload[k] = v
		}
		payload["via_"+p.Name()] = true
		out = append(out, a.Derive(a.Type, payload))
	}
	return out, nil
}

// fakeBuilder collects atom sources into a slice built object.
type fakeBuilder struct {
	component.Base
}

func (b *fakeBuilder) Configure(cfg component.Config) error { return nil }

func (b *fakeBuilder) Build(ctx context.Context, atoms []*core.Atom) (any, error) {
	sources := make([]string, 0, len(atoms))
	for _, a := range atoms {
		sources = append(sources, a.Source)
	}
	return sources, nil
}

// fakeWriter records the built object it received.
type fakeWriter struct {
	component.Base
	mu     sync.Mutex
	stored []any
	err    error
}

func (w *fakeWriter) Configure(cfg component.Config) error { return nil }

func (w *fakeWriter) Store(ctx context.Context, built any) (int, error) {
	w.mu.Lock()
	defer w.mu.Unlock()
	if w.err != nil {
		return 0, w.err
	}
	w.stored = append(w.stored, built)
	if sources, ok := built.([]string); ok {
		return len(sources), nil
	}
	return 1, nil
}

// testChain is the set of fakes wired into an isolated registry.
type testChain struct {
	reg     *registry.Registry
	seeder  *fakeSeeder
	fetcher *fakeFetcher
	writer  *fakeWriter
}

func newTestChain(t *testing.T, seeds []string) *testChain {
	t.Helper()
	tc := &testChain{
		reg:     registry.New(),
		seeder:  &fakeSeeder{Base: component.NewBase(component.RoleSeeder, "fake"), ids: seeds},
		fetcher: &fakeFetcher{Base: component.NewBase(component.RoleFetcher, "fake")},
		writer:  &fakeWriter{Base: component.NewBase(component.RoleWriter, "fake")},
	}

	tc.reg.MustRegister(component.RoleSeeder, "fake", func() component.Component { return tc.seeder })
	tc.reg.MustRegister(component.RoleFetcher, "fake", func() component.Component { return tc.fetcher })
	tc.reg.MustRegister(component.RoleBuilder, "fake", func() component.Component {
		return &fakeBuilder{Base: component.NewBase(component.RoleBuilder, "fake")}
	})
	tc.reg.MustRegister(component.RoleWriter, "fake", func() component.Component { return tc.writer })

	for _, role := range []string{component.RoleParser, component.RoleRefiner, component.RoleSplitter, component.RoleMapper} {
		role := role
		tc.reg.MustRegister(role, "pass", func() component.Component {
			return &passthrough{Base: component.NewBase(role, "pass")}
		})
		require.NoError(t, tc.reg.SetDefault(role, "pass"))
	}

	require.NoError(t, tc.reg.SetDefault(component.RoleSeeder, "fake"))
	require.NoError(t, tc.reg.SetDefault(component.RoleFetcher, "fake"))
	require.NoError(t, tc.reg.SetDefault(component.RoleBuilder, "fake"))
	require.NoError(t, tc.reg.SetDefault(component.RoleWriter, "fake"))
	return tc
}

func newTestOrchestrator(t *testing.T, reg *registry.Registry, opts ...Option) *Orchestrator {
	t.Helper()
	opts = append([]Option{WithRetry(2, time.Millisecond), WithPoolSize(4)}, opts...)
	o, err := New(reg, opts...)
	require.NoError(t, err)
	t.Cleanup(o.Release)
	return o
}

func TestProcess_HappyPath(t *testing.T) {
	tc := newTestChain(t, []string{"a", "b", "c"})
	o := newTestOrchestrator(t, tc.reg)

	stats, err := o.Process(context.Background(), "manifest", "out", nil, nil)
	require.NoError(t, err)

	assert.Equal(t, int64(3), stats.Seeded)
	assert.Equal(t, int64(3), stats.Fetched)
	assert.Equal(t, int64(3), stats.Written)
	assert.Zero(t, stats.Failed)

	require.Len(t, tc.writer.stored, 1)
	assert.ElementsMatch(t, []string{"a", "b", "c"}, tc.writer.stored[0].([]string))
}

func TestProcess_PermanentFetchFailureIsContained(t *testing.T) {
	tc := newTestChain(t, []string{"a", "b", "c", "d", "e"})
	tc.fetcher.failing = map[string]bool{"c": true}
	o := newTestOrchestrator(t, tc.reg)

	stats, err := o.Process(context.Background(), "manifest", "out", nil, nil)
	require.NoError(t, err)

	assert.Equal(t, int64(5), stats.Seeded)
	assert.Equal(t, int64(4), stats.Fetched)
	assert.Equal(t, int64(1), stats.Failed)
	assert.Equal(t, int64(4), stats.Written)

	// Retry made exactly maxAttempts calls against the failing identifier.
	assert.Equal(t, 2, tc.fetcher.fetchCount("c"))
	assert.Equal(t, 1, tc.fetcher.fetchCount("a"))
}

func TestProcess_FailsFastOnUnresolvedStrategy(t *testing.T) {
	tc := newTestChain(t, []string{"a"})
	o := newTestOrchestrator(t, tc.reg)

	_, err := o.Process(context.Background(), "manifest", "out",
		map[string]string{component.RoleFetcher: "not-registered"}, nil)
	require.Error(t, err)
	assert.ErrorIs(t, err, registry.ErrUnresolvedComponent)

	// No seed, no fetch: the pipeline never started.
	assert.Zero(t, tc.seeder.calls)
	assert.Zero(t, tc.fetcher.fetchCount("a"))
}

func TestProcess_FailsFastOnInitError(t *testing.T) {
	tc := newTestChain(t, []string{"a"})
	tc.reg.MustRegister(component.RoleWriter, "strict", func() component.Component {
		return &strictWriter{Base: component.NewBase(component.RoleWriter, "strict")}
	})
	o := newTestOrchestrator(t, tc.reg)

	_, err := o.Process(context.Background(), "manifest", "out",
		map[string]string{component.RoleWriter: "strict"}, nil)
	require.Error(t, err)

	var initErr *component.InitError
	require.ErrorAs(t, err, &initErr)
	assert.Zero(t, tc.seeder.calls, "no I/O before a fully initialized chain")
}

type strictWriter struct {
	component.Base
}

func (w *strictWriter) Configure(cfg component.Config) error {
	_, err := cfg.RequireString("token")
	return err
}

func (w *strictWriter) Store(ctx context.Context, built any) (int, error) { return 0, nil }

func TestProcess_MissingSource(t *testing.T) {
	tc := newTestChain(t, nil)
	o := newTestOrchestrator(t, tc.reg)

	_, err := o.Process(context.Background(), "", "out", nil, nil)
	assert.ErrorIs(t, err, ErrMissingSource)
}

func TestProcess_GeneratorExpansionDeduplicates(t *testing.T) {
	tc := newTestChain(t, []string{"root"})
	tc.reg.MustRegister(component.RoleGenerator, "edges", func() component.Component {
		return &fakeGenerator{
			Base: component.NewBase(component.RoleGenerator, "edges"),
			edges: map[string][]string{
				// Every page links back to root and to each other.
				"root": {"p1", "p2", "root"},
				"p1":   {"p2", "root", "p3"},
				"p2":   {"p1", "p3"},
				"p3":   {"root", "p1", "p2"},
			},
		}
	})
	o := newTestOrchestrator(t, tc.reg)

	stats, err := o.Process(context.Background(), "crawl", "out",
		map[string]string{component.RoleGenerator: "edges"}, nil)
	require.NoError(t, err)

	assert.Equal(t, int64(4), stats.Fetched)
	assert.Equal(t, int64(3), stats.Generated)
	assert.Positive(t, stats.Skipped, "duplicate discoveries are skipped")

	// The hard invariant: no identifier fetched twice, ever.
	for _, id := range []string{"root", "p1", "p2", "p3"} {
		assert.Equal(t, 1, tc.fetcher.fetchCount(id), "identifier %s", id)
	}
}

func TestProcess_ConcurrentDeduplication(t *testing.T) {
	// Dense link graph, larger pool: exercise racy admit interleavings.
	const n = 30
	ids := make([]string, n)
	edges := make(map[string][]string)
	for i := 0; i < n; i++ {
		ids[i] = fmt.Sprintf("page-%02d", i)
	}
	for i := 0; i < n; i++ {
		edges[ids[i]] = ids // every page links to every page
	}

	tc := newTestChain(t, ids[:3])
	tc.reg.MustRegister(component.RoleGenerator, "dense", func() component.Component {
		return &fakeGenerator{Base: component.NewBase(component.RoleGenerator, "dense"), edges: edges}
	})
	o := newTestOrchestrator(t, tc.reg, WithPoolSize(8))

	stats, err := o.Process(context.Background(), "crawl", "out",
		map[string]string{component.RoleGenerator: "dense"}, nil)
	require.NoError(t, err)

	assert.Equal(t, int64(n), stats.Fetched)
	for _, id := range ids {
		assert.Equal(t, 1, tc.fetcher.fetchCount(id), "identifier %s", id)
	}
}

func TestProcess_MaxItemsCapsCrawl(t *testing.T) {
	tc := newTestChain(t, []string{"a", "b", "c", "d", "e"})
	o := newTestOrchestrator(t, tc.reg, WithMaxItems(2))

	stats, err := o.Process(context.Background(), "manifest", "out", nil, nil)
	require.NoError(t, err)

	assert.Equal(t, int64(2), stats.Fetched)
	assert.Equal(t, int64(3), stats.Skipped)
}

func TestProcess_StageErrorAbortsRun(t *testing.T) {
	tc := newTestChain(t, []string{"a"})
	stageErr := errors.New("refine exploded")
	tc.reg.MustRegister(component.RoleRefiner, "boom", func() component.Component {
		return &passthrough{Base: component.NewBase(component.RoleRefiner, "boom"), err: stageErr}
	})
	o := newTestOrchestrator(t, tc.reg)

	_, err := o.Process(context.Background(), "manifest", "out",
		map[string]string{component.RoleRefiner: "boom"}, nil)
	require.Error(t, err)
	assert.ErrorIs(t, err, stageErr)
	assert.Empty(t, tc.writer.stored, "store never runs after a stage abort")
}

func TestProcess_StoreErrorIsContained(t *testing.T) {
	tc := newTestChain(t, []string{"a", "b"})
	tc.writer.err = errors.New("disk full")
	o := newTestOrchestrator(t, tc.reg)

	stats, err := o.Process(context.Background(), "manifest", "out", nil, nil)
	require.NoError(t, err, "store failure is counted, not raised")
	assert.Zero(t, stats.Written)
	assert.Equal(t, int64(1), stats.Failed)
}

func TestProcess_CancellationReturnsPartialStats(t *testing.T) {
	tc := newTestChain(t, []string{"a", "b", "c", "d", "e", "f", "g", "h"})
	tc.fetcher.delay = 20 * time.Millisecond

	o := newTestOrchestrator(t, tc.reg, WithPoolSize(2))

	ctx, cancel := context.WithCancel(context.Background())
	go func() {
		time.Sleep(30 * time.Millisecond)
		cancel()
	}()

	stats, err := o.Process(ctx, "manifest", "out", nil, nil)
	require.NoError(t, err, "cancellation yields partial stats, not an error")

	assert.Less(t, stats.Fetched, int64(8), "crawl stopped early")
	assert.Empty(t, tc.writer.stored, "batch stages do not run after cancellation")
}

// memoryCheckpoints is an in-memory CheckpointStore.
type memoryCheckpoints struct {
	mu    sync.Mutex
	saved map[string]*Checkpoint
}

func newMemoryCheckpoints() *memoryCheckpoints {
	return &memoryCheckpoints{saved: make(map[string]*Checkpoint)}
}

func (m *memoryCheckpoints) SaveCheckpoint(ctx context.Context, cp *Checkpoint) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.saved[cp.RunID] = cp
	return nil
}

func (m *memoryCheckpoints) LoadCheckpoint(ctx context.Context, runID string) (*Checkpoint, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	cp, ok := m.saved[runID]
	if !ok {
		return nil, ErrNoCheckpoint
	}
	return cp, nil
}

func (m *memoryCheckpoints) DeleteCheckpoint(ctx context.Context, runID string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	delete(m.saved, runID)
	return nil
}

func TestProcess_CompletedRunClearsCheckpoint(t *testing.T) {
	tc := newTestChain(t, []string{"a", "b"})
	store := newMemoryCheckpoints()
	o := newTestOrchestrator(t, tc.reg, WithCheckpoints(store, "run-1"))

	_, err := o.Process(context.Background(), "manifest", "out", nil, nil)
	require.NoError(t, err)

	_, err = store.LoadCheckpoint(context.Background(), "run-1")
	assert.ErrorIs(t, err, ErrNoCheckpoint)
}

func TestProcess_ResumesFromCheckpoint(t *testing.T) {
	tc := newTestChain(t, []string{"a", "b", "c"})
	store := newMemoryCheckpoints()
	require.NoError(t, store.SaveCheckpoint(context.Background(), &Checkpoint{
		RunID:   "run-2",
		Visited: []string{"a", "b"},
		Pending: []string{"b"}, // b was admitted but never completed
	}))

	o := newTestOrchestrator(t, tc.reg, WithCheckpoints(store, "run-2"))
	stats, err := o.Process(context.Background(), "manifest", "out", nil, nil)
	require.NoError(t, err)

	// a is already visited; b and c get fetched.
	assert.Equal(t, int64(2), stats.Fetched)
	assert.Equal(t, 0, tc.fetcher.fetchCount("a"))
	assert.Equal(t, 1, tc.fetcher.fetchCount("b"))
	assert.Equal(t, 1, tc.fetcher.fetchCount("c"))
}
