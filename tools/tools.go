//go:build tools
// +build tools

// Package tools pins the development tooling used while working on the
// session core. Nothing here is a runtime dependency; each tool is
// installed globally with `go install` rather than tracked in go.mod.
package tools

// Air, live reload during local development of cmd/fixify-core:
//
//	go install github.com/air-verse/air@v1.63.0
//
// Pinned at v1.63.0 (2025-08). See https://github.com/air-verse/air.
