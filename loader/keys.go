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

import "fmt"

// Key prefixes for different data types
const (
	nodePrefix       = "kgnode"
	checkpointPrefix = "chkpt"
)

// makeNodeKey generates a key for a graph node by ID.
func makeNodeKey(id string) []byte {
	return []byte(fmt.Sprintf("%s:%s", nodePrefix, id))
}

// makeCheckpointKey generates a key for a run's checkpoint.
func makeCheckpointKey(runID string) []byte {
	return []byte(fmt.Sprintf("%s:%s", checkpointPrefix, runID))
}
