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
	"fmt"
	"time"
)

// Config is the free-form option map passed to every component's Init.
// Recognized keys are adapter-specific and validated locally by each
// adapter's Configure hook, not centrally.
type Config map[string]any

// Option keys recognized by more than one adapter.
const (
	// ConfigKeyTimeout is the per-call I/O timeout advisory, honored by
	// network-bound adapters and propagated by the retry wrapper on
	// every attempt.
	ConfigKeyTimeout = "timeout"
)

// String returns the string value for key, or def when absent or not a
// string.
func (c Config) String(key, def string) string {
	if v, ok := c[key].(string); ok {
		return v
	}
	return def
}

// Int returns the integer value for key, or def when absent. Accepts
// int, int64, and float64 (the types TOML and JSON decoders produce).
func (c Config) Int(key string, def int) int {
	switch v := c[key].(type) {
	case int:
		return v
	case int64:
		return int(v)
	case float64:
		return int(v)
	}
	return def
}

// Bool returns the boolean value for key, or def when absent or not a
// bool.
func (c Config) Bool(key string, def bool) bool {
	if v, ok := c[key].(bool); ok {
		return v
	}
	return def
}

// Duration returns the duration value for key, or def when absent.
// Accepts time.Duration, a parseable string like "500ms", or a number
// of seconds.
func (c Config) Duration(key string, def time.Duration) time.Duration {
	switch v := c[key].(type) {
	case time.Duration:
		return v
	case string:
		if d, err := time.ParseDuration(v); err == nil {
			return d
		}
	case int:
		return time.Duration(v) * time.Second
	case int64:
		return time.Duration(v) * time.Second
	case float64:
		return time.Duration(v * float64(time.Second))
	}
	return def
}

// RequireString returns the string value for key, or ErrMissingConfig
// when the key is absent or empty. Adapters use it for the keys they
// cannot run without.
func (c Config) RequireString(key string) (string, error) {
	v, ok := c[key].(string)
	if !ok || v == "" {
		return "", fmt.Errorf("%w: %s", ErrMissingConfig, key)
	}
	return v, nil
}
