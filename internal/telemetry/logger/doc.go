// Package logger provides structured logging for refstore.
//
// It configures a log/slog logger:
//
//   - logger.go: handler selection (json, text) and a process-wide level
//     that can be changed at runtime
//   - context.go: carrying a request-scoped logger through context.Context
package logger
