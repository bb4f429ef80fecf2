// Package benchmark provides performance benchmarks for refstore.
//
// Run benchmarks with:
//
//	go test -bench=. -benchmem ./internal/tests/benchmark/...
//
// Compare engines only:
//
//	go test -bench='Save/(badger|bbolt)' -benchmem ./internal/tests/benchmark/...
//
// Compare results:
//
//	benchstat old.txt new.txt
package benchmark
