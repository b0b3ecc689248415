package interaction

import "github.com/vk/pipegraph/internal/dataflow"

// connectorLead is the straight run, in pixels, before a connector meets
// its child.
const connectorLead = 50

// Line is a connector polyline from a parent box to a child box.
type Line struct {
	Parent dataflow.NodeID
	// Child is zero for the ghost line.
	Child  dataflow.NodeID
	Ghost  bool
	Points [3]Point
}

// Lines returns a connector for every edge, plus the ghost line while
// connecting, computed from the current layout.
func (c *Canvas) Lines() []Line {
	var out []Line
	for _, e := range c.graph.Edges() {
		from, _ := c.NodeRect(e.Parent)
		to, _ := c.NodeRect(e.Child)
		out = append(out, Line{Parent: e.Parent, Child: e.Child, Points: connector(c.orientation, from, to)})
	}

	if ghost, ok := c.GhostRect(); ok {
		from, _ := c.NodeRect(c.active.node)
		to := ghost
		if (c.orientation == Wide && from.X > to.X) || (c.orientation == Tall && from.Y > to.Y) {
			from, to = to, from
		}
		out = append(out, Line{Parent: c.active.node, Ghost: true, Points: connector(c.orientation, from, to)})
	}
	return out
}

// connector leaves the centre of from and enters to from its near side.
func connector(o Orientation, from, to Rect) [3]Point {
	start := from.Center()
	if o == Tall {
		return [3]Point{
			start,
			{X: to.X + to.W/2, Y: to.Y - connectorLead},
			{X: to.X + to.W/2, Y: to.Y},
		}
	}
	return [3]Point{
		start,
		{X: to.X - connectorLead, Y: to.Y + to.H/2},
		{X: to.X, Y: to.Y + to.H/2},
	}
}
