// Package dataflow is the pipeline's data model: Nodes wrapping plugins and
// the Graph that connects them.
//
// The Graph is an arena. It owns every Node and hands out NodeID handles;
// edges are stored as handle lists in two adjacency maps (parents and
// children) that are always kept as mutual inverses. Nodes never point at
// each other.
//
// The Graph enforces acyclicity on every AddEdge and propagates dirtiness to
// descendants whenever a node's configuration or inputs change, so the
// engine can recompute only what is stale.
//
// A Graph is not safe for concurrent use. All mutation happens on the
// editor's event loop; the engine reads a snapshot taken there and posts its
// results back.
package dataflow
