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
	"context"
	"fmt"
	"log/slog"
	"time"
)

// loggerProvider lets Do reach the embedded Base logger without widening
// the Component interface.
type loggerProvider interface {
	Logger() *slog.Logger
}

// Do runs one component operation through the shared execute template:
//
//  1. the component must be Ready,
//  2. the request is validated (validate may be nil to skip),
//  3. the adapter hook runs,
//  4. any hook error is wrapped with the component's role and name,
//  5. the elapsed duration is logged, success or failure.
//
// The hook is the only piece a leaf adapter supplies; validation, error
// wrapping, and logging live here and are never duplicated per adapter.
func Do[Req, Resp any](
	ctx context.Context,
	c Component,
	op string,
	req Req,
	validate func(Req) error,
	hook func(context.Context, Req) (Resp, error),
) (Resp, error) {
	var zero Resp

	if state := c.State(); state != StateReady {
		if state == StateFailed {
			return zero, &Error{Role: c.Role(), Name: c.Name(), Op: op, Err: ErrFailedComponent}
		}
		return zero, &Error{Role: c.Role(), Name: c.Name(), Op: op, Err: ErrNotInitialized}
	}

	if validate != nil {
		if err := validate(req); err != nil {
			return zero, &Error{
				Role: c.Role(),
				Name: c.Name(),
				Op:   op,
				Err:  fmt.Errorf("%w: %w", ErrInvalidRequest, err),
			}
		}
	}

	logger := slog.Default()
	if lp, ok := c.(loggerProvider); ok {
		logger = lp.Logger()
	}

	start := time.Now()
	resp, err := hook(ctx, req)
	elapsed := time.Since(start)

	if err != nil {
		logger.Debug("operation failed",
			"role", c.Role(), "component", c.Name(), "op", op,
			"duration", elapsed, "err", err)
		return zero, Wrap(c, op, err)
	}

	logger.Debug("operation complete",
		"role", c.Role(), "component", c.Name(), "op", op,
		"duration", elapsed)
	return resp, nil
}
