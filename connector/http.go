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
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"github.com/poiesic/sift/component"
	"github.com/poiesic/sift/core"
	"golang.org/x/time/rate"
)

const defaultMaxBodyBytes = 8 << 20

// ErrHTTPStatus indicates a fetch completed with a non-success status.
var ErrHTTPStatus = fmt.Errorf("unexpected http status")

// HTTPFetcher retrieves payloads over HTTP GET. Requests honor the
// shared timeout option and are paced by a token-bucket limiter when
// "requests_per_second" is set, so a crawl cannot hammer one host.
//
// Options: timeout (default 30s), requests_per_second (default
// unlimited), user_agent, max_body_bytes (default 8 MiB).
type HTTPFetcher struct {
	component.Base
	client    *http.Client
	limiter   *rate.Limiter
	userAgent string
	maxBody   int64
}

// NewHTTPFetcher creates an unconfigured HTTP fetcher.
func NewHTTPFetcher() *HTTPFetcher {
	return &HTTPFetcher{Base: component.NewBase(component.RoleFetcher, "http")}
}

func (f *HTTPFetcher) Configure(cfg component.Config) error {
	timeout := cfg.Duration(component.ConfigKeyTimeout, 30*time.Second)
	f.client = &http.Client{Timeout: timeout}

	limit := rate.Inf
	if rps := cfg.Int("requests_per_second", 0); rps > 0 {
		limit = rate.Limit(rps)
	}
	f.limiter = rate.NewLimiter(limit, 1)

	f.userAgent = cfg.String("user_agent", "sift/1.0")
	f.maxBody = int64(cfg.Int("max_body_bytes", defaultMaxBodyBytes))
	if f.maxBody < 1 {
		f.maxBody = defaultMaxBodyBytes
	}
	return nil
}

// Fetch GETs the identifier URL and returns the body, content type,
// status code, and final URL after redirects.
func (f *HTTPFetcher) Fetch(ctx context.Context, identifier string) (map[string]any, error) {
	if err := f.limiter.Wait(ctx); err != nil {
		return nil, err
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, identifier, nil)
	if err != nil {
		return nil, err
	}
	req.Header.Set("User-Agent", f.userAgent)

	resp, err := f.client.Do(req)
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return nil, fmt.Errorf("%w: %d for %s", ErrHTTPStatus, resp.StatusCode, identifier)
	}

	body, err := io.ReadAll(io.LimitReader(resp.Body, f.maxBody))
	if err != nil {
		return nil, err
	}

	contentType := resp.Header.Get("Content-Type")
	if i := strings.IndexByte(contentType, ';'); i >= 0 {
		contentType = strings.TrimSpace(contentType[:i])
	}
	if contentType == "" {
		contentType = "text/html"
	}

	return map[string]any{
		core.PayloadKeyContent:     string(body),
		core.PayloadKeyContentType: contentType,
		"url":                      resp.Request.URL.String(),
		"status":                   resp.StatusCode,
	}, nil
}
