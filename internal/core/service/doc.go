// Package service provides the reference-counted blob store.
//
// RefStore maps caller-supplied hash keys to (reference count, value)
// records kept in a transactional KV engine. SaveValue and
// IncrementReference add owners to a record. DeleteValue releases one,
// and the last release removes the record.
//
// Every mutation reads the current record, decides the new count, and
// writes the result in its own single-key transaction. Read and write are
// separate engine calls; concurrent mutations of one key are made safe by
// the per-key lock table, which is on by default (WithSerializedKeys).
package service
