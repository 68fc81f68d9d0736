// Package vfs exposes an in-memory, possibly cyclic object graph as a
// virtual hierarchical filesystem.
//
// Paths resolve to transient Node views over a shared value graph. A Node
// supports list, read, append, write and delete; the operation dispatched
// depends on the kind of value the path resolved to. Three out-of-band
// sentinel keys shape resolution:
//   - Index:  per-folder fallback, substitutes for any absent key
//   - Global: root-level fallback, declared on the root's top folder only
//   - Parent: navigational back-reference to the owning node
//
// Resolution has two phases. While keys land on folders the walk descends
// the graph; the first key that lands on a non-folder value stops descent
// and every remaining key accumulates on the node's leftover path. Leftover
// keys are never reinterpreted as graph descent for that chain.
//
// Folders and lists are held by pointer, so a graph may alias or reference
// itself freely. Mutation through any path is visible through every alias.
// The engine is synchronous and performs no internal locking; callers must
// serialize concurrent mutation against the same Root.
package vfs
