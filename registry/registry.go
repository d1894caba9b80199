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


package registry

import (
	"fmt"
	"sort"
	"sync"

	"github.com/poiesic/sift/component"
)

// Factory builds a fresh, uninitialized component instance. The
// orchestrator rebuilds from the factory whenever an instance reaches
// the failed state.
type Factory func() component.Component

// Registry maps (role, name) to a component factory. Roles are a fixed,
// pre-declared closed set; registering under an undeclared role fails.
//
// Concurrency contract: Register and Resolve may be called concurrently;
// lookups never observe a partially-updated entry. Re-registering the
// same (role, name) overwrites the prior factory (last writer wins),
// which is how plugin layering overrides a built-in.
type Registry struct {
	mu         sync.RWMutex
	components map[string]map[string]Factory
	defaults   map[string]string
}

// New constructs a registry with every declared role pre-created and no
// components registered. Tests construct isolated registries this way.
func New() *Registry {
	components := make(map[string]map[string]Factory)
	for _, role := range component.Roles() {
		components[role] = make(map[string]Factory)
	}
	return &Registry{
		components: components,
		defaults:   make(map[string]string),
	}
}

// Register adds a factory under (role, name). Idempotent: a second
// registration of the same pair replaces the first.
func (r *Registry) Register(role, name string, factory Factory) error {
	if name == "" {
		return fmt.Errorf("register %s: component name cannot be empty", role)
	}
	if factory == nil {
		return fmt.Errorf("register %s/%s: factory cannot be nil", role, name)
	}

	r.mu.Lock()
	defer r.mu.Unlock()

	byName, ok := r.components[role]
	if !ok {
		return fmt.Errorf("%w: %q", ErrUnknownRole, role)
	}
	byName[name] = factory
	return nil
}

// MustRegister is Register for process-start wiring; it panics on error.
func (r *Registry) MustRegister(role, name string, factory Factory) {
	if err := r.Register(role, name, factory); err != nil {
		panic(err)
	}
}

// Resolve returns the factory registered under (role, name). An empty
// name falls back to the role's default. Resolution failures are always
// fatal to a run: they are configuration bugs, not data bugs.
func (r *Registry) Resolve(role, name string) (Factory, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	byName, ok := r.components[role]
	if !ok {
		return nil, fmt.Errorf("%w: %q", ErrUnknownRole, role)
	}

	if name == "" {
		name = r.defaults[role]
		if name == "" {
			return nil, fmt.Errorf("%w: no strategy and no default for role %q", ErrUnresolvedComponent, role)
		}
	}

	factory, ok := byName[name]
	if !ok {
		return nil, fmt.Errorf("%w: %s/%s", ErrUnresolvedComponent, role, name)
	}
	return factory, nil
}

// SetDefault selects the component name a role falls back to when a run
// specifies no strategy for it.
func (r *Registry) SetDefault(role, name string) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	if _, ok := r.components[role]; !ok {
		return fmt.Errorf("%w: %q", ErrUnknownRole, role)
	}
	r.defaults[role] = name
	return nil
}

// Default returns the default component name for a role, or "" when the
// role has none.
func (r *Registry) Default(role string) string {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return r.defaults[role]
}

// Names lists the registered component names for a role, sorted.
func (r *Registry) Names(role string) []string {
	r.mu.RLock()
	defer r.mu.RUnlock()

	byName, ok := r.components[role]
	if !ok {
		return nil
	}
	names := make([]string, 0, len(byName))
	for name := range byName {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// defaultRegistry is the process-wide registry, initialized once at
// process start and never torn down mid-run.
var defaultRegistry = New()

// Default returns the process-wide registry.
func Default() *Registry {
	return defaultRegistry
}

// Register adds a factory to the process-wide registry.
func Register(role, name string, factory Factory) error {
	return defaultRegistry.Register(role, name, factory)
}

// MustRegister adds a factory to the process-wide registry, panicking on
// error.
func MustRegister(role, name string, factory Factory) {
	defaultRegistry.MustRegister(role, name, factory)
}

// Resolve looks up a factory in the process-wide registry.
func Resolve(role, name string) (Factory, error) {
	return defaultRegistry.Resolve(role, name)
}
