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

import "errors"

var (
	// ErrMissingSource is returned when Process is called without a source.
	ErrMissingSource = errors.New("source is required")

	// ErrRegistryRequired is returned when an orchestrator is constructed
	// without a registry.
	ErrRegistryRequired = errors.New("registry required")

	// ErrNoCheckpoint indicates no checkpoint exists for a run ID.
	ErrNoCheckpoint = errors.New("no checkpoint found")

	// ErrWrongComponentKind indicates a registered factory produced a
	// component that does not implement its role's capability interface.
	ErrWrongComponentKind = errors.New("component does not implement role interface")
)
