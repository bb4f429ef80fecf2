// Package output provides output formatting for the refstore CLI.
//
//   - formatter.go: Formatter interface and factory
//   - table.go: Table rendering with wide mode support
//   - json.go: JSON output formatting
//   - yaml.go: YAML output formatting
//
// Table output is for people; json and yaml are for scripts.
package output
