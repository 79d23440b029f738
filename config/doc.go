// Package config is the read-facing facade over a built configuration tree.
//
// A Config holds a shared handle to the tree's root Node, a cursor Node
// locating the facade's current view, and the Separator used to split
// dotted paths. Once configbuild.Build has produced a root, every Config
// derived from it is safe for concurrent read-only use: no method here
// mutates a Node, so no synchronization is required between goroutines
// holding independent Config values over the same tree.
//
// A missing path is never an error: Get returns its zero value and false,
// GetAll and GetRef return an empty slice, and Scope returns a Config
// whose Valid reports false and which answers empty/none to every further
// read (spec "MissingPath is not an error").
package config
