package interaction

import (
	"github.com/vk/pipegraph/internal/dataflow"
)

// Modifiers are the keys held while deleting.
type Modifiers uint8

const (
	// ModShift deletes without reconnecting parents to children.
	ModShift Modifiers = 1 << iota
	// ModCtrl severs the node's edges but keeps the node.
	ModCtrl
)

// EmptyCanvasPosition is where the replacement node goes when the last node
// is deleted.
var EmptyCanvasPosition = dataflow.Position{X: 0.5, Y: 0.5}

// Delete removes id according to mods:
//
//   - plain: sever, reconnect every parent to every child, remove
//   - shift: sever and remove, leaving a break in the pipeline
//   - ctrl: sever and reconnect, keeping the node as an orphan
//
// Deleting the last node leaves one fresh empty node on the canvas, selected.
func (c *Canvas) Delete(id dataflow.NodeID, mods Modifiers) error {
	if _, err := c.node(id); err != nil {
		return err
	}
	if c.active != nil && c.active.node == id {
		c.active = nil
	}

	parents, children := c.graph.Sever(id)
	if mods&ModShift == 0 {
		for _, p := range parents {
			for _, ch := range children {
				// Cannot cycle: p already reached ch through id.
				_ = c.graph.AddEdge(p, ch)
			}
		}
	}
	if mods&ModCtrl == 0 {
		if err := c.graph.RemoveNode(id); err != nil {
			return err
		}
		if c.selected == id {
			c.selected = 0
		}
	}
	c.logger.Debug("Node deleted.", "node", id, "reconnect", mods&ModShift == 0, "keep", mods&ModCtrl != 0)

	if c.graph.Len() == 0 {
		c.AddNode(EmptyCanvasPosition)
	}
	return nil
}
