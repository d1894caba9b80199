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

import (
	"sort"
	"sync"
)

// frontier tracks the identifiers of one crawl: the visited set plus the
// in-flight (admitted but not yet fetched) set. It is the only structure
// shared across frontier workers; every access is serialized under one
// mutex so no identifier is admitted or marked visited twice.
type frontier struct {
	mu       sync.Mutex
	visited  map[string]struct{}
	inflight map[string]struct{}
	admitted int
	maxItems int // 0 means unbounded
}

func newFrontier(maxItems int) *frontier {
	return &frontier{
		visited:  make(map[string]struct{}),
		inflight: make(map[string]struct{}),
		maxItems: maxItems,
	}
}

// admit marks the identifier visited and reports whether the caller owns
// its processing. An identifier is admitted at most once per run; empty
// identifiers and admissions beyond the item cap are rejected.
func (f *frontier) admit(id string) bool {
	if id == "" {
		return false
	}

	f.mu.Lock()
	defer f.mu.Unlock()

	if _, seen := f.visited[id]; seen {
		return false
	}
	if f.maxItems > 0 && f.admitted >= f.maxItems {
		return false
	}

	f.visited[id] = struct{}{}
	f.inflight[id] = struct{}{}
	f.admitted++
	return true
}

// done marks an admitted identifier as no longer in flight.
func (f *frontier) done(id string) {
	f.mu.Lock()
	defer f.mu.Unlock()
	delete(f.inflight, id)
}

// preload seeds the visited set, minus the identifiers that were still
// pending, so a resumed run refetches only unfinished work.
func (f *frontier) preload(visited, pending []string) {
	f.mu.Lock()
	defer f.mu.Unlock()

	skip := make(map[string]struct{}, len(pending))
	for _, id := range pending {
		skip[id] = struct{}{}
	}
	for _, id := range visited {
		if _, ok := skip[id]; ok {
			continue
		}
		f.visited[id] = struct{}{}
	}
}

// visitedList returns the visited identifiers, sorted for stable
// checkpoints.
func (f *frontier) visitedList() []string {
	f.mu.Lock()
	defer f.mu.Unlock()

	out := make([]string, 0, len(f.visited))
	for id := range f.visited {
		out = append(out, id)
	}
	sort.Strings(out)
	return out
}

// pendingList returns the identifiers admitted but not yet completed,
// sorted.
func (f *frontier) pendingList() []string {
	f.mu.Lock()
	defer f.mu.Unlock()

	out := make([]string, 0, len(f.inflight))
	for id := range f.inflight {
		out = append(out, id)
	}
	sort.Strings(out)
	return out
}
