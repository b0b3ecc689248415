package dataflow

import (
	"fmt"
	"slices"

	mapset "github.com/deckarep/golang-set"
	"github.com/vk/pipegraph/internal/plugin"
)

// Edge is a parent to child dependency.
type Edge struct {
	Parent NodeID
	Child  NodeID
}

// Graph owns the nodes of one pipeline session and their edges.
type Graph struct {
	nodes    map[NodeID]*Node
	order    []NodeID
	parents  map[NodeID][]NodeID
	children map[NodeID][]NodeID
	nextID   NodeID
}

// New creates an empty graph.
func New() *Graph {
	return &Graph{
		nodes:    make(map[NodeID]*Node),
		parents:  make(map[NodeID][]NodeID),
		children: make(map[NodeID][]NodeID),
	}
}

// AddNode inserts a detached node and assigns its handle.
func (g *Graph) AddNode(n *Node) error {
	if n.id != 0 {
		if g.nodes[n.id] == n {
			return fmt.Errorf("%w: %s", ErrDuplicateNode, n)
		}
		return fmt.Errorf("%w: %s", ErrForeignNode, n)
	}
	g.nextID++
	n.id = g.nextID
	g.nodes[n.id] = n
	g.order = append(g.order, n.id)
	return nil
}

// Add creates a node and inserts it.
func (g *Graph) Add(name string, pos Position) *Node {
	n := NewNode(name, pos)
	// A fresh node cannot be a duplicate.
	_ = g.AddNode(n)
	return n
}

// NextName returns the "NEW n" name used for nodes created from the canvas.
func (g *Graph) NextName() string {
	return fmt.Sprintf("NEW %d", len(g.order)+1)
}

// RemoveNode deletes a node that has no remaining edges. The node is
// detached and may be added again, under a new handle.
func (g *Graph) RemoveNode(id NodeID) error {
	n, ok := g.nodes[id]
	if !ok {
		return fmt.Errorf("%w: %d", ErrNodeNotFound, id)
	}
	if len(g.parents[id]) > 0 || len(g.children[id]) > 0 {
		return fmt.Errorf("%w: %s", ErrNodeConnected, n)
	}
	n.id = 0
	delete(g.nodes, id)
	delete(g.parents, id)
	delete(g.children, id)
	g.order = slices.DeleteFunc(g.order, func(o NodeID) bool { return o == id })
	return nil
}

// Node returns the node for a handle.
func (g *Graph) Node(id NodeID) (*Node, bool) {
	n, ok := g.nodes[id]
	return n, ok
}

// Len returns the number of nodes.
func (g *Graph) Len() int {
	return len(g.order)
}

// Nodes returns every node in insertion order.
func (g *Graph) Nodes() []*Node {
	out := make([]*Node, 0, len(g.order))
	for _, id := range g.order {
		out = append(out, g.nodes[id])
	}
	return out
}

// AddEdge makes child depend on parent. Adding an existing edge is a no-op.
// The child is marked dirty because its inputs changed.
func (g *Graph) AddEdge(parent, child NodeID) error {
	if err := g.require(parent, child); err != nil {
		return err
	}
	if g.HasEdge(parent, child) {
		return nil
	}
	if parent == child || g.IsAncestorOf(child, parent) {
		return fmt.Errorf("%w: %s -> %s", ErrCycle, g.nodes[parent], g.nodes[child])
	}
	g.children[parent] = append(g.children[parent], child)
	g.parents[child] = append(g.parents[child], parent)
	g.MarkDirty(child)
	return nil
}

// RemoveEdge deletes an existing edge and marks the child dirty.
func (g *Graph) RemoveEdge(parent, child NodeID) error {
	if err := g.require(parent, child); err != nil {
		return err
	}
	if !g.HasEdge(parent, child) {
		return fmt.Errorf("%w: %s -> %s", ErrEdgeNotFound, g.nodes[parent], g.nodes[child])
	}
	g.unlink(parent, child)
	g.MarkDirty(child)
	return nil
}

// HasEdge reports whether parent -> child exists.
func (g *Graph) HasEdge(parent, child NodeID) bool {
	return slices.Contains(g.children[parent], child)
}

// Connected reports whether an edge exists between a and b in either direction.
func (g *Graph) Connected(a, b NodeID) bool {
	return g.HasEdge(a, b) || g.HasEdge(b, a)
}

// Parents returns the parents of id in edge insertion order.
func (g *Graph) Parents(id NodeID) []NodeID {
	return slices.Clone(g.parents[id])
}

// Children returns the children of id in edge insertion order.
func (g *Graph) Children(id NodeID) []NodeID {
	return slices.Clone(g.children[id])
}

// Edges lists every edge, grouped by parent in node insertion order.
func (g *Graph) Edges() []Edge {
	var out []Edge
	for _, p := range g.order {
		for _, c := range g.children[p] {
			out = append(out, Edge{Parent: p, Child: c})
		}
	}
	return out
}

// IsAncestorOf reports whether b is reachable from a through child edges.
// A node is not its own ancestor.
func (g *Graph) IsAncestorOf(a, b NodeID) bool {
	found := false
	g.walk(a, g.children, func(id NodeID) bool {
		found = id == b
		return !found
	})
	return found
}

// Descendants returns every node reachable from id, breadth first.
func (g *Graph) Descendants(id NodeID) []NodeID {
	var out []NodeID
	g.walk(id, g.children, func(d NodeID) bool {
		out = append(out, d)
		return true
	})
	return out
}

// Ancestors returns every node id is reachable from, breadth first.
func (g *Graph) Ancestors(id NodeID) []NodeID {
	var out []NodeID
	g.walk(id, g.parents, func(a NodeID) bool {
		out = append(out, a)
		return true
	})
	return out
}

// MarkDirty invalidates id and every descendant. Ancestors are untouched.
func (g *Graph) MarkDirty(id NodeID) {
	n, ok := g.nodes[id]
	if !ok {
		return
	}
	n.markDirty()
	g.walk(id, g.children, func(d NodeID) bool {
		g.nodes[d].markDirty()
		return true
	})
}

// Rename changes a node's display name. Like every configuration change it
// invalidates the node's output.
func (g *Graph) Rename(id NodeID, name string) error {
	n, ok := g.nodes[id]
	if !ok {
		return fmt.Errorf("%w: %d", ErrNodeNotFound, id)
	}
	n.Name = name
	g.MarkDirty(id)
	return nil
}

// SetPlugin attaches a plugin instance and records its catalog id.
func (g *Graph) SetPlugin(id NodeID, pluginID string, p plugin.Plugin) error {
	n, ok := g.nodes[id]
	if !ok {
		return fmt.Errorf("%w: %d", ErrNodeNotFound, id)
	}
	n.pluginID = pluginID
	n.plugin = p
	g.MarkDirty(id)
	return nil
}

// SetPosition moves a node. Layout never affects results.
func (g *Graph) SetPosition(id NodeID, pos Position) {
	if n, ok := g.nodes[id]; ok {
		n.Position = pos
	}
}

// Sever removes every edge of id and returns its former parents and children.
func (g *Graph) Sever(id NodeID) (parents, children []NodeID) {
	parents = g.Parents(id)
	children = g.Children(id)
	for _, p := range parents {
		g.unlink(p, id)
	}
	for _, c := range children {
		g.unlink(id, c)
		g.MarkDirty(c)
	}
	if len(parents) > 0 {
		g.MarkDirty(id)
	}
	return parents, children
}

func (g *Graph) unlink(parent, child NodeID) {
	g.children[parent] = slices.DeleteFunc(g.children[parent], func(c NodeID) bool { return c == child })
	g.parents[child] = slices.DeleteFunc(g.parents[child], func(p NodeID) bool { return p == parent })
}

func (g *Graph) require(ids ...NodeID) error {
	for _, id := range ids {
		if _, ok := g.nodes[id]; !ok {
			return fmt.Errorf("%w: %d", ErrNodeNotFound, id)
		}
	}
	return nil
}

// walk visits nodes reachable from start through adj, excluding start unless
// a cycle leads back to it. visit returns false to stop.
func (g *Graph) walk(start NodeID, adj map[NodeID][]NodeID, visit func(NodeID) bool) {
	seen := mapset.NewSet()
	queue := slices.Clone(adj[start])
	for len(queue) > 0 {
		id := queue[0]
		queue = queue[1:]
		if !seen.Add(id) {
			continue
		}
		if !visit(id) {
			return
		}
		queue = append(queue, adj[id]...)
	}
}
