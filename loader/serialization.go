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
	"fmt"
	"time"

	"github.com/mus-format/mus-go/ord"
	"github.com/mus-format/mus-go/varint"
	"github.com/poiesic/sift/pipeline"
)

// ErrCorruptCheckpoint indicates checkpoint bytes that cannot be a
// valid envelope.
var ErrCorruptCheckpoint = fmt.Errorf("corrupt checkpoint record")

// MarshalCheckpoint serializes a Checkpoint to bytes.
func MarshalCheckpoint(cp *pipeline.Checkpoint) []byte {
	buf := make([]byte, sizeCheckpoint(cp))
	n := ord.String.Marshal(cp.RunID, buf)
	n += marshalStrings(cp.Visited, buf[n:])
	n += marshalStrings(cp.Pending, buf[n:])
	n += marshalStats(&cp.Stats, buf[n:])
	varint.Int64.Marshal(cp.UpdatedAt.UnixMicro(), buf[n:])
	return buf
}

// UnmarshalCheckpoint deserializes a Checkpoint from bytes.
func UnmarshalCheckpoint(data []byte) (*pipeline.Checkpoint, error) {
	cp := &pipeline.Checkpoint{}

	runID, n, err := ord.String.Unmarshal(data)
	if err != nil {
		return nil, err
	}
	cp.RunID = runID

	visited, vn, err := unmarshalStrings(data[n:])
	if err != nil {
		return nil, err
	}
	n += vn
	cp.Visited = visited

	pending, pn, err := unmarshalStrings(data[n:])
	if err != nil {
		return nil, err
	}
	n += pn
	cp.Pending = pending

	sn, err := unmarshalStats(&cp.Stats, data[n:])
	if err != nil {
		return nil, err
	}
	n += sn

	micros, _, err := varint.Int64.Unmarshal(data[n:])
	if err != nil {
		return nil, err
	}
	cp.UpdatedAt = time.UnixMicro(micros).UTC()

	return cp, nil
}

func sizeCheckpoint(cp *pipeline.Checkpoint) int {
	return ord.String.Size(cp.RunID) +
		sizeStrings(cp.Visited) +
		sizeStrings(cp.Pending) +
		sizeStats(&cp.Stats) +
		varint.Int64.Size(cp.UpdatedAt.UnixMicro())
}

func marshalStrings(list []string, buf []byte) int {
	n := varint.Int.Marshal(len(list), buf)
	for _, s := range list {
		n += ord.String.Marshal(s, buf[n:])
	}
	return n
}

func unmarshalStrings(data []byte) ([]string, int, error) {
	count, n, err := varint.Int.Unmarshal(data)
	if err != nil {
		return nil, 0, err
	}
	if count == 0 {
		return nil, n, nil
	}
	// A decoded count is untrusted input: reject it before it sizes an
	// allocation. Every encoded string costs at least one length byte,
	// so the count can never exceed the remaining payload.
	if count < 0 || count > len(data)-n {
		return nil, 0, fmt.Errorf("%w: string count %d with %d bytes left",
			ErrCorruptCheckpoint, count, len(data)-n)
	}

	out := make([]string, 0, count)
	for i := 0; i < count; i++ {
		s, sn, err := ord.String.Unmarshal(data[n:])
		if err != nil {
			return nil, 0, err
		}
		n += sn
		out = append(out, s)
	}
	return out, n, nil
}

func sizeStrings(list []string) int {
	size := varint.Int.Size(len(list))
	for _, s := range list {
		size += ord.String.Size(s)
	}
	return size
}

func marshalStats(stats *pipeline.RunStats, buf []byte) int {
	n := varint.Int64.Marshal(stats.Seeded, buf)
	n += varint.Int64.Marshal(stats.Fetched, buf[n:])
	n += varint.Int64.Marshal(stats.Generated, buf[n:])
	n += varint.Int64.Marshal(stats.Written, buf[n:])
	n += varint.Int64.Marshal(stats.Failed, buf[n:])
	n += varint.Int64.Marshal(stats.Skipped, buf[n:])
	return n
}

func unmarshalStats(stats *pipeline.RunStats, data []byte) (int, error) {
	fields := []*int64{
		&stats.Seeded, &stats.Fetched, &stats.Generated,
		&stats.Written, &stats.Failed, &stats.Skipped,
	}
	n := 0
	for _, field := range fields {
		v, fn, err := varint.Int64.Unmarshal(data[n:])
		if err != nil {
			return 0, err
		}
		*field = v
		n += fn
	}
	return n, nil
}

func sizeStats(stats *pipeline.RunStats) int {
	return varint.Int64.Size(stats.Seeded) +
		varint.Int64.Size(stats.Fetched) +
		varint.Int64.Size(stats.Generated) +
		varint.Int64.Size(stats.Written) +
		varint.Int64.Size(stats.Failed) +
		varint.Int64.Size(stats.Skipped)
}
