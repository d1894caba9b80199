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


package loader

import (
	"context"
	"errors"

	"github.com/dgraph-io/badger/v4"
	"github.com/poiesic/sift/pipeline"
)

// BadgerCheckpoints persists pipeline checkpoints in a BadgerDB
// backend. The caller owns the backend's lifetime; one backend can
// serve checkpoints for any number of runs.
type BadgerCheckpoints struct {
	backend *Backend
}

var _ pipeline.CheckpointStore = (*BadgerCheckpoints)(nil)

// NewBadgerCheckpoints creates a checkpoint store over an open backend.
func NewBadgerCheckpoints(backend *Backend) *BadgerCheckpoints {
	return &BadgerCheckpoints{backend: backend}
}

// SaveCheckpoint persists the checkpoint, overwriting any prior one
// with the same run ID.
func (s *BadgerCheckpoints) SaveCheckpoint(ctx context.Context, cp *pipeline.Checkpoint) error {
	return s.backend.WithTx(func(tx *badger.Txn) error {
		if err := tx.Set(makeCheckpointKey(cp.RunID), MarshalCheckpoint(cp)); err != nil {
			return err
		}
		return tx.Commit()
	}, true)
}

// LoadCheckpoint retrieves the checkpoint for a run ID.
func (s *BadgerCheckpoints) LoadCheckpoint(ctx context.Context, runID string) (*pipeline.Checkpoint, error) {
	var cp *pipeline.Checkpoint
	err := s.backend.WithTx(func(tx *badger.Txn) error {
		item, err := tx.Get(makeCheckpointKey(runID))
		if err != nil {
			if errors.Is(err, badger.ErrKeyNotFound) {
				return pipeline.ErrNoCheckpoint
			}
			return err
		}
		return item.Value(func(val []byte) error {
			cp, err = UnmarshalCheckpoint(val)
			return err
		})
	}, false)
	if err != nil {
		return nil, err
	}
	return cp, nil
}

// DeleteCheckpoint removes the checkpoint for a run ID, if any.
func (s *BadgerCheckpoints) DeleteCheckpoint(ctx context.Context, runID string) error {
	return s.backend.WithTx(func(tx *badger.Txn) error {
		if err := tx.Delete(makeCheckpointKey(runID)); err != nil {
			if errors.Is(err, badger.ErrKeyNotFound) {
				return nil
			}
			return err
		}
		return tx.Commit()
	}, true)
}
