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
	"net/url"
	"strings"

	"github.com/poiesic/sift/component"
	"github.com/poiesic/sift/core"
	"golang.org/x/net/html"
)

// WebLinksGenerator discovers new frontier identifiers by extracting
// anchor hrefs from fetched HTML payloads. Relative links resolve
// against the payload's "url" entry; fragments are stripped so the
// same page is never discovered twice under different anchors.
//
// Options: same_host_only (default true) restricts discovery to the
// host of the fetched page.
type WebLinksGenerator struct {
	component.Base
	sameHostOnly bool
}

// NewWebLinksGenerator creates an unconfigured web link generator.
func NewWebLinksGenerator() *WebLinksGenerator {
	return &WebLinksGenerator{Base: component.NewBase(component.RoleGenerator, "weblinks")}
}

func (g *WebLinksGenerator) Configure(cfg component.Config) error {
	g.sameHostOnly = cfg.Bool("same_host_only", true)
	return nil
}

// Generate extracts absolute page URLs from an HTML payload. Non-HTML
// payloads and payloads without a base URL yield nothing.
func (g *WebLinksGenerator) Generate(ctx context.Context, payload map[string]any) ([]string, error) {
	contentType, _ := payload[core.PayloadKeyContentType].(string)
	if !strings.Contains(contentType, "html") {
		return nil, nil
	}
	content, _ := payload[core.PayloadKeyContent].(string)
	if content == "" {
		return nil, nil
	}

	pageURL, _ := payload["url"].(string)
	base, err := url.Parse(pageURL)
	if err != nil || !base.IsAbs() {
		return nil, nil
	}

	seen := make(map[string]struct{})
	var links []string

	tokenizer := html.NewTokenizer(strings.NewReader(content))
	for {
		tt := tokenizer.Next()
		if tt == html.ErrorToken {
			// Includes EOF; truncated HTML still yields the links
			// found so far.
			break
		}
		if tt != html.StartTagToken && tt != html.SelfClosingTagToken {
			continue
		}

		name, hasAttr := tokenizer.TagName()
		if string(name) != "a" || !hasAttr {
			continue
		}

		for {
			key, val, more := tokenizer.TagAttr()
			if string(key) == "href" {
				if link, ok := g.resolve(base, string(val)); ok {
					if _, dup := seen[link]; !dup {
						seen[link] = struct{}{}
						links = append(links, link)
					}
				}
			}
			if !more {
				break
			}
		}
	}

	return links, nil
}

func (g *WebLinksGenerator) resolve(base *url.URL, href string) (string, bool) {
	href = strings.TrimSpace(href)
	if href == "" || strings.HasPrefix(href, "#") {
		return "", false
	}

	ref, err := url.Parse(href)
	if err != nil {
		return "", false
	}

	resolved := base.ResolveReference(ref)
	if resolved.Scheme != "http" && resolved.Scheme != "https" {
		return "", false
	}
	if g.sameHostOnly && resolved.Host != base.Host {
		return "", false
	}

	resolved.Fragment = ""
	return resolved.String(), true
}
