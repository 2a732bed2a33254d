//go:build tools
// +build tools

// Package tools documents development tool dependencies.
// These tools are installed globally via `go install` and are not tracked in go.mod
// since they are development tools, not runtime dependencies.
package tools

// Development tools (install via `go install`):
//
// Air - Live reload for the server while editing templates and handlers
//   Install: go install github.com/air-verse/air@v1.63.0
//   Run:     DEV=true GATEWAY_DRIVER=memory SESSION_STORE=memory air --build.cmd "go build -o ./tmp/eventdesk ./cmd/eventdesk" --build.bin ./tmp/eventdesk
//
// mockgen - Regenerates internal/mocks; go generate pins the same version
//   Install: go install go.uber.org/mock/mockgen@v0.6.0
