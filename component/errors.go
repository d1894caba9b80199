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
	"errors"
	"fmt"
)

var (
	// ErrNotInitialized indicates an operation was invoked before Init succeeded.
	ErrNotInitialized = errors.New("component not initialized")

	// ErrFailedComponent indicates the component is in the failed state and
	// must be rebuilt from its factory before reuse.
	ErrFailedComponent = errors.New("component is in failed state")

	// ErrMissingConfig indicates a required configuration key is absent.
	ErrMissingConfig = errors.New("missing required config key")

	// ErrInvalidRequest indicates a request failed template validation.
	ErrInvalidRequest = errors.New("invalid request")
)

// InitError reports a failed component initialization. Initialization
// failures are always fatal to a run: the orchestrator aborts before any
// I/O occurs.
type InitError struct {
	Role string
	Name string
	Err  error
}

func (e *InitError) Error() string {
	return fmt.Sprintf("initialize %s/%s: %v", e.Role, e.Name, e.Err)
}

func (e *InitError) Unwrap() error {
	return e.Err
}

// Error wraps a failure raised by a component operation with the role,
// component name, and operation that produced it. It is the per-role
// error kind of the taxonomy: callers match the role field or unwrap
// the cause.
type Error struct {
	Role string
	Name string
	Op   string
	Err  error
}

func (e *Error) Error() string {
	return fmt.Sprintf("%s/%s: %s: %v", e.Role, e.Name, e.Op, e.Err)
}

func (e *Error) Unwrap() error {
	return e.Err
}

// Wrap wraps err with the component's role, name, and operation.
// Returns nil when err is nil. An already-wrapped error passes through
// so nesting template layers does not stack wrappers.
func Wrap(c Component, op string, err error) error {
	if err == nil {
		return nil
	}
	var ce *Error
	if errors.As(err, &ce) {
		return err
	}
	return &Error{Role: c.Role(), Name: c.Name(), Op: op, Err: err}
}
