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

import "sync/atomic"

// RunStats is the report of one pipeline run, serializable to JSON.
type RunStats struct {
	Seeded    int64 `json:"seeded"`
	Fetched   int64 `json:"fetched"`
	Generated int64 `json:"generated"`
	Written   int64 `json:"written"`
	Failed    int64 `json:"failed"`
	Skipped   int64 `json:"skipped"`
}

// counters accumulates run statistics. Frontier workers update it
// concurrently via atomic increments; it is owned by the orchestrator
// for the lifetime of one Process invocation.
type counters struct {
	seeded    atomic.Int64
	fetched   atomic.Int64
	generated atomic.Int64
	written   atomic.Int64
	failed    atomic.Int64
	skipped   atomic.Int64
}

func (c *counters) snapshot() RunStats {
	return RunStats{
		Seeded:    c.seeded.Load(),
		Fetched:   c.fetched.Load(),
		Generated: c.generated.Load(),
		Written:   c.written.Load(),
		Failed:    c.failed.Load(),
		Skipped:   c.skipped.Load(),
	}
}
