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


package connector

import (
	"context"
	"os"
	"path/filepath"
	"strings"

	"github.com/poiesic/sift/component"
	"github.com/poiesic/sift/core"
)

// FileFetcher retrieves payloads from the local filesystem. A relative
// identifier is resolved against the optional "base_dir" option. The
// content type is inferred from the file extension.
type FileFetcher struct {
	component.Base
	baseDir string
}

// NewFileFetcher creates an unconfigured file fetcher.
func NewFileFetcher() *FileFetcher {
	return &FileFetcher{Base: component.NewBase(component.RoleFetcher, "file")}
}

func (f *FileFetcher) Configure(cfg component.Config) error {
	f.baseDir = cfg.String("base_dir", "")
	return nil
}

// Fetch reads the file named by identifier and returns its content and
// inferred content type.
func (f *FileFetcher) Fetch(ctx context.Context, identifier string) (map[string]any, error) {
	path := identifier
	if f.baseDir != "" && !filepath.IsAbs(path) {
		path = filepath.Join(f.baseDir, path)
	}

	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}

	return map[string]any{
		core.PayloadKeyContent:     string(data),
		core.PayloadKeyContentType: contentTypeForPath(path),
		"path":                     path,
	}, nil
}

func contentTypeForPath(path string) string {
	switch strings.ToLower(filepath.Ext(path)) {
	case ".html", ".htm":
		return "text/html"
	case ".json":
		return "application/json"
	case ".md":
		return "text/markdown"
	default:
		return "text/plain"
	}
}
