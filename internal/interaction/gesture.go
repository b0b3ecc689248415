package interaction

import (
	"errors"
	"fmt"
	"time"

	"github.com/vk/pipegraph/internal/dataflow"
)

// HoldDelay is how long a press must stay still before it becomes a
// connect gesture.
const HoldDelay = 500 * time.Millisecond

// Mode is a node's gesture state.
type Mode int

const (
	Idle Mode = iota
	// Pressed: button down, no motion yet, hold timer armed.
	Pressed
	// Moving: the node follows the pointer.
	Moving
	// Connecting: the ghost follows the pointer; the node stays put.
	Connecting
)

func (m Mode) String() string {
	switch m {
	case Idle:
		return "idle"
	case Pressed:
		return "pressed"
	case Moving:
		return "moving"
	case Connecting:
		return "connecting"
	}
	return fmt.Sprintf("Mode(%d)", int(m))
}

type gesture struct {
	node    dataflow.NodeID
	mode    Mode
	offset  Point
	preview dataflow.Position
	ghost   dataflow.Position
}

// Outcome classifies what a Release did.
type Outcome int

const (
	// NoChange: a click, a release on the source, or no gesture at all.
	NoChange Outcome = iota
	// Moved: a new position was committed.
	Moved
	// Connected: an edge was added between existing nodes.
	Connected
	// Disconnected: an existing edge was toggled off.
	Disconnected
	// Created: a new node was created under the pointer and connected.
	Created
	// Rejected: the edge would have formed a cycle and was dropped.
	Rejected
)

func (o Outcome) String() string {
	switch o {
	case NoChange:
		return "no_change"
	case Moved:
		return "moved"
	case Connected:
		return "connected"
	case Disconnected:
		return "disconnected"
	case Created:
		return "created"
	case Rejected:
		return "rejected"
	}
	return fmt.Sprintf("Outcome(%d)", int(o))
}

// ReleaseResult reports the graph edit a Release performed.
type ReleaseResult struct {
	Outcome Outcome
	Parent  dataflow.NodeID
	Child   dataflow.NodeID
	// Created is the node made by a release over empty space.
	Created dataflow.NodeID
}

// Mode returns the gesture state of id.
func (c *Canvas) Mode(id dataflow.NodeID) Mode {
	if c.active == nil || c.active.node != id {
		return Idle
	}
	return c.active.mode
}

// Press starts a gesture on id with the pointer at p and selects the node.
// The caller arms HoldDelay and calls HoldElapsed when it fires.
func (c *Canvas) Press(id dataflow.NodeID, p Point) error {
	if c.active != nil {
		return ErrGestureActive
	}
	n, err := c.node(id)
	if err != nil {
		return err
	}
	c.active = &gesture{
		node:    id,
		mode:    Pressed,
		offset:  p.Sub(c.boxAt(n.Position).Center()),
		preview: n.Position,
	}
	c.Select(id)
	return nil
}

// HoldElapsed switches a still pressed gesture on id into connect mode and
// spawns the ghost on the node. It reports whether the switch happened.
func (c *Canvas) HoldElapsed(id dataflow.NodeID) bool {
	if c.active == nil || c.active.node != id || c.active.mode != Pressed {
		return false
	}
	n, err := c.node(id)
	if err != nil {
		c.active = nil
		return false
	}
	c.active.mode = Connecting
	c.active.ghost = n.Position
	return true
}

// Motion moves the node (before the hold fires) or the ghost (after), snapped
// to the grid.
func (c *Canvas) Motion(p Point) {
	if c.active == nil {
		return
	}
	pos := snapped(p.Sub(c.active.offset), c.size)
	switch c.active.mode {
	case Pressed, Moving:
		c.active.mode = Moving
		c.active.preview = pos
	case Connecting:
		c.active.ghost = pos
	}
}

// Ghost returns the ghost marker's position while connecting.
func (c *Canvas) Ghost() (dataflow.Position, bool) {
	if c.active == nil || c.active.mode != Connecting {
		return dataflow.Position{}, false
	}
	return c.active.ghost, true
}

// GhostRect returns the box the ghost marker is drawn in.
func (c *Canvas) GhostRect() (Rect, bool) {
	pos, ok := c.Ghost()
	if !ok {
		return Rect{}, false
	}
	return c.boxAt(pos), true
}

// Cancel abandons the current gesture without editing anything. It reports
// whether there was one.
func (c *Canvas) Cancel() bool {
	active := c.active != nil
	c.active = nil
	return active
}

// Release ends the gesture with the pointer at p.
func (c *Canvas) Release(p Point) ReleaseResult {
	g := c.active
	c.active = nil
	if g == nil {
		return ReleaseResult{}
	}
	if _, ok := c.graph.Node(g.node); !ok {
		return ReleaseResult{}
	}

	switch g.mode {
	case Moving:
		c.graph.SetPosition(g.node, g.preview)
		return ReleaseResult{Outcome: Moved}
	case Connecting:
		return c.connect(g.node, p)
	}
	return ReleaseResult{}
}

func (c *Canvas) connect(source dataflow.NodeID, p Point) ReleaseResult {
	target, hit := c.NodeAt(p)
	created := dataflow.NodeID(0)
	if !hit {
		n := c.graph.Add(c.graph.NextName(), normalize(p, c.size))
		target, created = n.ID(), n.ID()
	}
	if target == source {
		return ReleaseResult{}
	}

	if c.graph.HasEdge(source, target) {
		_ = c.graph.RemoveEdge(source, target)
		c.logger.Debug("Edge toggled off.", "parent", source, "child", target)
		return ReleaseResult{Outcome: Disconnected, Parent: source, Child: target}
	}
	if c.graph.HasEdge(target, source) {
		_ = c.graph.RemoveEdge(target, source)
		c.Select(source)
		c.logger.Debug("Edge toggled off.", "parent", target, "child", source)
		return ReleaseResult{Outcome: Disconnected, Parent: target, Child: source}
	}

	parent, child := c.direction(source, target, p)
	if err := c.graph.AddEdge(parent, child); err != nil {
		if errors.Is(err, dataflow.ErrCycle) {
			c.logger.Debug("Edge rejected.", "error", err)
			return ReleaseResult{Outcome: Rejected, Parent: parent, Child: child, Created: created}
		}
		c.logger.Warn("Edge could not be added.", "error", err)
		return ReleaseResult{Created: created}
	}
	c.Select(target)

	outcome := Connected
	if created != 0 {
		outcome = Created
	}
	c.logger.Debug("Edge added.", "parent", parent, "child", child, "outcome", outcome.String())
	return ReleaseResult{Outcome: outcome, Parent: parent, Child: child, Created: created}
}

// direction orders source and target. Existing ancestry always wins; only
// unrelated nodes fall back to the policy.
func (c *Canvas) direction(source, target dataflow.NodeID, release Point) (parent, child dataflow.NodeID) {
	switch {
	case c.graph.IsAncestorOf(target, source):
		return target, source
	case c.graph.IsAncestorOf(source, target):
		return source, target
	}
	rect, _ := c.NodeRect(source)
	if c.policy(c.orientation, rect, release) {
		return source, target
	}
	return target, source
}
