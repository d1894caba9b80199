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

import "errors"

// Domain validation errors
var (
	// ErrInvalidRecord indicates a record is missing required Atom fields.
	ErrInvalidRecord = errors.New("invalid atom record")

	// ErrInvalidAtom indicates an Atom failed validation.
	ErrInvalidAtom = errors.New("invalid atom")

	// ErrEmptySource indicates the Source field is empty.
	ErrEmptySource = errors.New("atom source cannot be empty")

	// ErrEmptyType indicates the Type field is empty.
	ErrEmptyType = errors.New("atom type cannot be empty")

	// ErrNilPayload indicates the Payload field is nil.
	ErrNilPayload = errors.New("atom payload cannot be nil")
)
