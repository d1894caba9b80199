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


// Package sift turns heterogeneous sources into a typed-record
// knowledge graph through a staged, pluggable ETL pipeline.
//
// Importing the package registers every built-in adapter in the
// process-wide registry with sensible defaults, so the smallest useful
// program is:
//
//	stats, err := sift.Process(ctx, "corpus/manifest.txt", "out/graph.json", nil, nil)
//
// Custom adapters register through the registry package and are
// selected per run by naming them in the strategies map.
package sift

import (
	"context"

	"github.com/poiesic/sift/assembler"
	"github.com/poiesic/sift/chunking"
	"github.com/poiesic/sift/component"
	"github.com/poiesic/sift/connector"
	"github.com/poiesic/sift/document"
	"github.com/poiesic/sift/loader"
	"github.com/poiesic/sift/pipeline"
	"github.com/poiesic/sift/refinery"
	"github.com/poiesic/sift/registry"
	"github.com/poiesic/sift/wrapper"
)

func init() {
	registry.MustRegister(component.RoleSeeder, "static", func() component.Component { return connector.NewStaticSeeder() })
	registry.MustRegister(component.RoleSeeder, "manifest", func() component.Component { return connector.NewManifestSeeder() })

	registry.MustRegister(component.RoleFetcher, "file", func() component.Component { return connector.NewFileFetcher() })
	registry.MustRegister(component.RoleFetcher, "http", func() component.Component { return connector.NewHTTPFetcher() })

	// No default generator: frontier expansion only happens when a run
	// names a generator strategy.
	registry.MustRegister(component.RoleGenerator, "weblinks", func() component.Component { return connector.NewWebLinksGenerator() })

	registry.MustRegister(component.RoleParser, "text", func() component.Component { return document.NewTextParser() })
	registry.MustRegister(component.RoleParser, "html", func() component.Component { return document.NewHTMLParser() })
	registry.MustRegister(component.RoleParser, "json", func() component.Component { return document.NewJSONParser() })

	registry.MustRegister(component.RoleRefiner, "whitespace", func() component.Component { return refinery.NewWhitespaceRefiner() })

	registry.MustRegister(component.RoleSplitter, "recursive", func() component.Component { return chunking.NewRecursiveSplitter() })
	registry.MustRegister(component.RoleSplitter, "token", func() component.Component { return chunking.NewTokenSplitter() })

	registry.MustRegister(component.RoleMapper, "graph", func() component.Component { return wrapper.NewGraphMapper() })

	registry.MustRegister(component.RoleBuilder, "kg", func() component.Component { return assembler.NewKGBuilder() })

	registry.MustRegister(component.RoleWriter, "file", func() component.Component { return loader.NewFileWriter() })
	registry.MustRegister(component.RoleWriter, "badger", func() component.Component { return loader.NewBadgerWriter() })

	reg := registry.Default()
	for role, name := range map[string]string{
		component.RoleSeeder:   "static",
		component.RoleFetcher:  "file",
		component.RoleParser:   "text",
		component.RoleRefiner:  "whitespace",
		component.RoleSplitter: "recursive",
		component.RoleMapper:   "graph",
		component.RoleBuilder:  "kg",
		component.RoleWriter:   "file",
	} {
		if err := reg.SetDefault(role, name); err != nil {
			panic(err)
		}
	}
}

// Process runs one pipeline from source to destination using the
// default registry. The strategies map selects a registered component
// per role; absent roles use the registry defaults. Options are handed
// to every component's initialization.
func Process(ctx context.Context, source, destination string, strategies map[string]string, options component.Config, opts ...pipeline.Option) (pipeline.RunStats, error) {
	o, err := pipeline.New(nil, opts...)
	if err != nil {
		return pipeline.RunStats{}, err
	}
	defer o.Release()

	return o.Process(ctx, source, destination, strategies, options)
}
