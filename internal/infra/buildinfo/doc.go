// Package buildinfo provides build information for refstore.
//
// Version, Commit and BuildTime are injected via ldflags:
//
//	go build -ldflags "-X github.com/yndnr/refstore/internal/infra/buildinfo.Version=v1.0.0"
//
// When ldflags are absent, Get falls back to the VCS stamp the Go
// toolchain embeds in the binary.
package buildinfo
