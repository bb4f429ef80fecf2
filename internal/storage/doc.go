// Package storage provides the transactional key-value engines that back
// refstore, and the single-use transaction handle every mutation runs in.
//
// Engines:
//
//   - badger: LSM engine (github.com/dgraph-io/badger/v3), stored in a directory
//   - bbolt: B+tree engine (go.etcd.io/bbolt), stored in a single file
//
// Both expose the same narrow capability through KVEngine: a point read and
// write transactions that group single-key puts and deletes into one
// commit-or-abort unit. Commits are synchronous; a nil error from Commit
// means the write is durable per the engine's sync settings.
package storage
