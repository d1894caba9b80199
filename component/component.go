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


package component

import (
	"log/slog"
	"sync/atomic"
)

// State is the lifecycle state of a component instance.
// Transitions: Uninitialized -> Ready on Init success,
// Uninitialized -> Failed on Init failure. A Failed instance is never
// reused; the orchestrator discards it and rebuilds from the factory.
type State int32

const (
	// StateUninitialized is the state of a freshly constructed component.
	StateUninitialized State = iota
	// StateReady means Init succeeded and operations may execute.
	StateReady
	// StateFailed means Init failed; the instance must be discarded.
	StateFailed
)

func (s State) String() string {
	switch s {
	case StateUninitialized:
		return "uninitialized"
	case StateReady:
		return "ready"
	case StateFailed:
		return "failed"
	}
	return "unknown"
}

// Component is the capability set every adapter implements regardless of
// role. Configure is the adapter-specific initialization hook; it is
// called exactly once, by Init, which supplies the lifecycle bookkeeping
// around it.
type Component interface {
	// Name is the unique component name within its role.
	Name() string

	// Role is the capability role the component registers under.
	Role() string

	// State reports the current lifecycle state.
	State() State

	// Configure validates the adapter's required config keys and
	// establishes any external resource handle. Called once by Init;
	// never call it directly.
	Configure(cfg Config) error
}

// stateSetter is satisfied by *Base; Init uses it to drive lifecycle
// transitions without exposing a public mutator.
type stateSetter interface {
	setState(s State)
}

// Base carries the bookkeeping every adapter needs: identity, lifecycle
// state, and a logger. Adapters embed it and implement Configure plus
// their role's operation hook. State is a plain int32 accessed through
// the atomic functions so Base stays copyable at construction time.
type Base struct {
	role   string
	name   string
	state  int32
	logger *slog.Logger
}

// NewBase creates the embedded bookkeeping for an adapter of the given
// role and name.
func NewBase(role, name string) Base {
	return Base{
		role:   role,
		name:   name,
		logger: slog.Default(),
	}
}

// Role returns the component's capability role.
func (b *Base) Role() string { return b.role }

// Name returns the component's registered name.
func (b *Base) Name() string { return b.name }

// State returns the current lifecycle state.
func (b *Base) State() State { return State(atomic.LoadInt32(&b.state)) }

// Logger returns the component's logger.
func (b *Base) Logger() *slog.Logger { return b.logger }

// SetLogger replaces the component's logger. A nil logger restores the
// process default.
func (b *Base) SetLogger(logger *slog.Logger) {
	if logger == nil {
		logger = slog.Default()
	}
	b.logger = logger
}

func (b *Base) setState(s State) {
	atomic.StoreInt32(&b.state, int32(s))
}

// Init drives a component through initialization. It is safe to call
// more than once: a Ready component is left untouched, a Failed one is
// rejected. On hook failure the component moves to Failed and the error
// is wrapped as an InitError.
func Init(c Component, cfg Config) error {
	switch c.State() {
	case StateReady:
		return nil
	case StateFailed:
		return &InitError{Role: c.Role(), Name: c.Name(), Err: ErrFailedComponent}
	}

	if err := c.Configure(cfg); err != nil {
		if s, ok := c.(stateSetter); ok {
			s.setState(StateFailed)
		}
		return &InitError{Role: c.Role(), Name: c.Name(), Err: err}
	}

	if s, ok := c.(stateSetter); ok {
		s.setState(StateReady)
	}
	return nil
}
