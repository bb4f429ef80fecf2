// Package keylock provides per-key mutual exclusion for byte-string keys.
//
// Keys are spread over a fixed number of shards by murmur3 hash. Each shard
// holds a map of reference-counted mutexes, so holders of different keys
// never block each other and idle keys cost nothing.
package keylock
