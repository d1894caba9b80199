// Package connector provides the built-in extraction adapters: seeders
// that enumerate starting identifiers, fetchers that retrieve raw
// payloads from the local filesystem or HTTP, and a link generator that
// expands a crawl frontier from fetched HTML.
package connector
