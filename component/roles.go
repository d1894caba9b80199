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
	"context"

	"github.com/poiesic/sift/core"
)

// The closed set of capability roles adapters register under.
const (
	RoleSeeder    = "seeder"
	RoleFetcher   = "fetcher"
	RoleGenerator = "generator"
	RoleParser    = "parser"
	RoleRefiner   = "refiner"
	RoleSplitter  = "splitter"
	RoleMapper    = "mapper"
	RoleBuilder   = "builder"
	RoleWriter    = "writer"
)

// Roles lists every declared role, in pipeline order.
func Roles() []string {
	return []string{
		RoleSeeder, RoleFetcher, RoleGenerator,
		RoleParser, RoleRefiner, RoleSplitter, RoleMapper,
		RoleBuilder, RoleWriter,
	}
}

// Seeder emits the initial set of resource identifiers for a run.
type Seeder interface {
	Component

	// Seed returns zero or more resource identifiers (URIs, paths, keys).
	Seed(ctx context.Context) ([]string, error)
}

// Fetcher retrieves the raw payload behind one resource identifier.
// Fetch is the pipeline's network/file suspension point and is
// retry-wrapped by the orchestrator.
type Fetcher interface {
	Component

	// Fetch returns the raw payload for the identifier. The payload map
	// becomes the body of a raw Atom.
	Fetch(ctx context.Context, identifier string) (map[string]any, error)
}

// Generator discovers additional resource identifiers from a fetched
// payload (link expansion). Discovered identifiers are subject to the
// orchestrator's visited-set de-duplication.
type Generator interface {
	Component

	Generate(ctx context.Context, payload map[string]any) ([]string, error)
}

// Transformer is the shared contract of the parse, refine, chunk, and
// wrap stages: consume a full Atom batch, produce a new one. Implementations
// must not mutate the input atoms.
type Transformer interface {
	Component

	Transform(ctx context.Context, atoms []*core.Atom) ([]*core.Atom, error)
}

// Builder folds a batch of wrapped atoms into the target-specific built
// object (a knowledge graph, a vector batch).
type Builder interface {
	Component

	Build(ctx context.Context, atoms []*core.Atom) (any, error)
}

// Writer persists a built object and reports how many units were
// persisted. Ownership of the built object transfers fully to the writer
// at the store boundary.
type Writer interface {
	Component

	Store(ctx context.Context, built any) (int, error)
}
