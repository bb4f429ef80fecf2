// Package command provides CLI command definitions for refstore.
//
// This package defines all CLI commands using urfave/cli/v2:
//
//   - root.go: Root command, global flags, store setup
//   - record.go: get, save, incref, decref, list
//   - system.go: stats, gc, version
//
// Each command opens the store, runs one operation, closes the store
// and formats the result with internal/cli/output.
package command
