// Package domain defines the core domain models for refstore.
//
// Domain models are pure value objects without any IO dependencies.
// This package contains:
//
//   - Record: the persisted (reference count, value) pair and its codec
//   - Errors: domain-specific error definitions
//
// The record encoding is fixed little-endian and does not depend on the
// host byte order, so databases are portable between platforms.
package domain
