// Package document provides the built-in parse-stage adapters. Each
// parser turns raw fetched payloads into document atoms carrying
// normalized content blocks; downstream stages never see raw bytes.
package document
