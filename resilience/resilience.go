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


// Package resilience provides composable wrappers for component
// operations: retry with fixed backoff, safe-default error containment,
// and duration measurement. Wrappers take an operation and return an
// operation, so they nest around any component call without changing
// its signature, e.g. Timed(Retry(op, 3, time.Second), observe).
package resilience

import (
	"context"
	"errors"
	"log/slog"
	"time"
)

// Op is any component operation producing a value of type T.
type Op[T any] func(ctx context.Context) (T, error)

// ErrInvalidMaxAttempts indicates a retry configured with a non-positive
// attempt count.
var ErrInvalidMaxAttempts = errors.New("max attempts must be greater than zero")

// Retry wraps op so it is re-invoked on any error, up to maxAttempts
// times, sleeping delay between attempts (fixed backoff, no jitter).
// A success short-circuits the remaining attempts; if every attempt
// fails, the error from the last attempt is returned. The context is
// checked before each attempt and honored while sleeping, so a per-call
// timeout advisory propagates to every attempt.
func Retry[T any](op Op[T], maxAttempts int, delay time.Duration) Op[T] {
	return func(ctx context.Context) (T, error) {
		var zero T
		if maxAttempts <= 0 {
			return zero, ErrInvalidMaxAttempts
		}

		var lastErr error
		for attempt := 1; attempt <= maxAttempts; attempt++ {
			// Check context before attempting
			select {
			case <-ctx.Done():
				return zero, ctx.Err()
			default:
			}

			result, err := op(ctx)
			if err == nil {
				if attempt > 1 {
					slog.Debug("operation succeeded after retry", "attempt", attempt)
				}
				return result, nil
			}
			lastErr = err

			slog.Debug("operation failed, will retry",
				"attempt", attempt, "maxAttempts", maxAttempts, "error", err)

			// Don't sleep after the last attempt
			if attempt == maxAttempts {
				break
			}

			// Sleep with context awareness
			timer := time.NewTimer(delay)
			select {
			case <-ctx.Done():
				timer.Stop()
				return zero, ctx.Err()
			case <-timer.C:
			}
		}

		return zero, lastErr
	}
}

// SafeDefault wraps op so any error is logged and swallowed, returning
// the caller-supplied fallback instead. Used where a single item's
// failure must not abort the run. A nil logger falls back to the process
// default.
func SafeDefault[T any](op Op[T], fallback T, logger *slog.Logger) Op[T] {
	if logger == nil {
		logger = slog.Default()
	}
	return func(ctx context.Context) (T, error) {
		result, err := op(ctx)
		if err != nil {
			logger.Error("operation failed, using default", "err", err)
			return fallback, nil
		}
		return result, nil
	}
}

// Timed wraps op so elapsed wall-clock time is reported to observe,
// unconditionally, on success and failure alike. The measurement is an
// observability side channel: the operation's result and error pass
// through untouched. A nil observe logs at debug level instead.
func Timed[T any](op Op[T], observe func(elapsed time.Duration)) Op[T] {
	if observe == nil {
		observe = func(elapsed time.Duration) {
			slog.Debug("operation timed", "duration", elapsed)
		}
	}
	return func(ctx context.Context) (T, error) {
		start := time.Now()
		defer func() {
			observe(time.Since(start))
		}()
		return op(ctx)
	}
}
