// Package main provides the entry point for refstore.
//
// refstore is the command-line tool for a local reference-counted blob
// store. Each invocation opens the database, runs one command and
// closes it again.
//
// Examples:
//
//	refstore --path ./data save 9f86d081 hello
//	refstore --path ./data -o json get 9f86d081
//	refstore --engine bbolt --path ./refs.db list --prefix 9f
package main
