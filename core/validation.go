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

import "fmt"

// ValidateAtom validates an Atom according to domain rules.
//
// Validation rules:
//   - Source must not be empty
//   - Type must not be empty
//   - Payload must not be nil
//
// NOT validated (opaque to the core):
//   - Payload shape (determined by Type, enforced by consuming adapters)
func ValidateAtom(atom *Atom) error {
	if atom == nil {
		return fmt.Errorf("%w: atom is nil", ErrInvalidAtom)
	}

	if atom.Source == "" {
		return fmt.Errorf("%w: %w", ErrInvalidAtom, ErrEmptySource)
	}

	if atom.Type == "" {
		return fmt.Errorf("%w: %w", ErrInvalidAtom, ErrEmptyType)
	}

	if atom.Payload == nil {
		return fmt.Errorf("%w: %w", ErrInvalidAtom, ErrNilPayload)
	}

	return nil
}

// ValidateAtoms validates every atom in a batch, failing on the first
// invalid entry.
func ValidateAtoms(atoms []*Atom) error {
	for i, atom := range atoms {
		if err := ValidateAtom(atom); err != nil {
			return fmt.Errorf("atom %d: %w", i, err)
		}
	}
	return nil
}
