package dataflow

import (
	"fmt"

	"github.com/vk/pipegraph/internal/plugin"
	"github.com/vk/pipegraph/internal/table"
)

// NodeID is a node's handle within its Graph. The zero value is never
// assigned and means "no node".
type NodeID int

// State is a node's position in the run lifecycle.
type State int

const (
	// Dirty nodes have a stale or missing result.
	Dirty State = iota
	// Running nodes are being computed by a worker.
	Running
	// Clean nodes hold an up-to-date result.
	Clean
	// Failed nodes raised during their last run. They are rerun like Dirty ones.
	Failed
)

func (s State) String() string {
	switch s {
	case Dirty:
		return "dirty"
	case Running:
		return "running"
	case Clean:
		return "clean"
	case Failed:
		return "failed"
	}
	return fmt.Sprintf("State(%d)", int(s))
}

// Position is a normalized canvas coordinate in [0,1]x[0,1].
type Position struct {
	X, Y float64
}

// Node is a single pipeline step.
type Node struct {
	id NodeID

	Name     string
	Position Position

	pluginID string
	plugin   plugin.Plugin

	// Result is the last computed output. It may be nil even when Clean, for
	// nodes without a plugin.
	Result *table.Table
	// Output holds the failure message and details shown instead of a preview.
	Output string

	state    State
	revision uint64
}

// NewNode returns a detached node. It gets its handle from Graph.AddNode.
func NewNode(name string, pos Position) *Node {
	return &Node{Name: name, Position: pos, state: Dirty}
}

func (n *Node) ID() NodeID            { return n.id }
func (n *Node) State() State          { return n.state }
func (n *Node) Plugin() plugin.Plugin { return n.plugin }
func (n *Node) PluginID() string      { return n.pluginID }
func (n *Node) HasPlugin() bool       { return n.plugin != nil }
func (n *Node) String() string        { return fmt.Sprintf("%s#%d", n.Name, n.id) }

// Revision increases every time the node is marked dirty. The engine uses it
// to discard results computed from a configuration that has since changed.
func (n *Node) Revision() uint64 { return n.revision }

// NeedsRun reports whether the engine must recompute the node.
func (n *Node) NeedsRun() bool {
	return n.state == Dirty || n.state == Failed
}

// MarkRunning records that a worker picked the node up.
func (n *Node) MarkRunning() {
	n.state = Running
}

// MarkCompleted stores a fresh result.
func (n *Node) MarkCompleted(result *table.Table) {
	n.Result = result
	n.Output = ""
	n.state = Clean
}

// MarkFailed stores the failure description in place of a result.
func (n *Node) MarkFailed(output string) {
	n.Result = nil
	n.Output = output
	n.state = Failed
}

func (n *Node) markDirty() {
	n.revision++
	n.state = Dirty
}
