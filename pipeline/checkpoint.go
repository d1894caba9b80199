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
	"context"
	"time"
)

// Checkpoint captures a run's crawl progress: the visited set, the
// identifiers still pending, and the counters at save time. A resumed
// run refetches only the pending identifiers; de-duplication remains
// scoped to one logical run.
type Checkpoint struct {
	RunID     string
	Visited   []string
	Pending   []string
	Stats     RunStats
	UpdatedAt time.Time
}

// CheckpointStore persists crawl progress so an interrupted run can
// resume. Implementations must be safe for use from the orchestrator
// goroutine only; the orchestrator never saves concurrently.
type CheckpointStore interface {
	// SaveCheckpoint persists the checkpoint, overwriting any prior
	// checkpoint with the same run ID.
	SaveCheckpoint(ctx context.Context, cp *Checkpoint) error

	// LoadCheckpoint retrieves the checkpoint for a run ID.
	// Returns ErrNoCheckpoint if none exists.
	LoadCheckpoint(ctx context.Context, runID string) (*Checkpoint, error)

	// DeleteCheckpoint removes the checkpoint for a run ID, if any.
	// Called when a run completes so the next run starts clean.
	DeleteCheckpoint(ctx context.Context, runID string) error
}
