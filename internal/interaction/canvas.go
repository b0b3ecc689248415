package interaction

import (
	"errors"
	"fmt"
	"log/slog"

	"github.com/vk/pipegraph/internal/dataflow"
)

// ErrGestureActive is returned by Press while another gesture is running.
var ErrGestureActive = errors.New("another gesture is in progress")

// Canvas lays a graph out in a container and edits it from gestures.
// It must only be used from the goroutine that owns the graph.
type Canvas struct {
	graph       *dataflow.Graph
	size        Size
	orientation Orientation
	nodeSize    Size
	policy      DirectionPolicy
	logger      *slog.Logger
	onSelect    func(dataflow.NodeID)

	active   *gesture
	selected dataflow.NodeID
}

// Option configures a Canvas.
type Option func(*Canvas)

// WithDirectionPolicy replaces GeometricDirection.
func WithDirectionPolicy(p DirectionPolicy) Option {
	return func(c *Canvas) { c.policy = p }
}

// WithNodeSize sets the rendered node box size.
func WithNodeSize(s Size) Option {
	return func(c *Canvas) { c.nodeSize = s }
}

// WithLogger sets the canvas logger.
func WithLogger(l *slog.Logger) Option {
	return func(c *Canvas) { c.logger = l }
}

// WithSelectHook is called whenever the selection changes to a node.
func WithSelectHook(f func(dataflow.NodeID)) Option {
	return func(c *Canvas) { c.onSelect = f }
}

// NewCanvas lays g out in a container of the given size.
func NewCanvas(g *dataflow.Graph, size Size, opts ...Option) *Canvas {
	c := &Canvas{
		graph:       g,
		size:        size,
		orientation: OrientationOf(size),
		nodeSize:    DefaultNodeSize,
		policy:      GeometricDirection,
		logger:      slog.Default(),
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

func (c *Canvas) Graph() *dataflow.Graph    { return c.graph }
func (c *Canvas) Size() Size                { return c.size }
func (c *Canvas) Orientation() Orientation  { return c.orientation }
func (c *Canvas) Selected() dataflow.NodeID { return c.selected }

// SetGraph swaps the displayed graph and resets gesture and selection state.
func (c *Canvas) SetGraph(g *dataflow.Graph) {
	c.graph = g
	c.active = nil
	c.selected = 0
}

// Select makes id the selected node.
func (c *Canvas) Select(id dataflow.NodeID) {
	if _, ok := c.graph.Node(id); !ok {
		return
	}
	c.selected = id
	if c.onSelect != nil {
		c.onSelect(id)
	}
}

// AddNode creates a "NEW n" node at pos and selects it.
func (c *Canvas) AddNode(pos dataflow.Position) *dataflow.Node {
	n := c.graph.Add(c.graph.NextName(), pos)
	c.Select(n.ID())
	return n
}

// Resize records the container's new size. If the orientation flips, every
// stored position has its axes swapped so the flow turns with the container.
// It reports whether a flip happened.
func (c *Canvas) Resize(size Size) bool {
	c.size = size
	o := OrientationOf(size)
	if o == c.orientation {
		return false
	}
	c.orientation = o
	for _, n := range c.graph.Nodes() {
		c.graph.SetPosition(n.ID(), swapAxes(n.Position))
	}
	if c.active != nil {
		c.active.preview = swapAxes(c.active.preview)
		c.active.ghost = swapAxes(c.active.ghost)
	}
	c.logger.Debug("Canvas orientation flipped.", "orientation", o.String())
	return true
}

// position returns where id is drawn, including an uncommitted move.
func (c *Canvas) position(n *dataflow.Node) dataflow.Position {
	if c.active != nil && c.active.node == n.ID() && c.active.mode == Moving {
		return c.active.preview
	}
	return n.Position
}

func (c *Canvas) boxAt(pos dataflow.Position) Rect {
	cx, cy := pos.X*c.size.W, pos.Y*c.size.H
	return Rect{X: cx - c.nodeSize.W/2, Y: cy - c.nodeSize.H/2, W: c.nodeSize.W, H: c.nodeSize.H}
}

// NodeRect returns the box a node is drawn in.
func (c *Canvas) NodeRect(id dataflow.NodeID) (Rect, bool) {
	n, ok := c.graph.Node(id)
	if !ok {
		return Rect{}, false
	}
	return c.boxAt(c.position(n)), true
}

// NodeAt returns the topmost node under p. Later nodes are drawn on top.
func (c *Canvas) NodeAt(p Point) (dataflow.NodeID, bool) {
	nodes := c.graph.Nodes()
	for i := len(nodes) - 1; i >= 0; i-- {
		if c.boxAt(c.position(nodes[i])).Contains(p) {
			return nodes[i].ID(), true
		}
	}
	return 0, false
}

func (c *Canvas) node(id dataflow.NodeID) (*dataflow.Node, error) {
	n, ok := c.graph.Node(id)
	if !ok {
		return nil, fmt.Errorf("%w: %d", dataflow.ErrNodeNotFound, id)
	}
	return n, nil
}
