package interaction

import (
	"testing"

	"github.com/stretchr/testify/require"
	"github.com/vk/pipegraph/internal/dataflow"
)

func requirePoints(t *testing.T, want, got [3]Point) {
	t.Helper()
	for i := range want {
		require.InDelta(t, want[i].X, got[i].X, 1e-9, "point %d x", i)
		require.InDelta(t, want[i].Y, got[i].Y, 1e-9, "point %d y", i)
	}
}

func TestLines(t *testing.T) {
	box := WithNodeSize(Size{W: 100, H: 40})

	t.Run("wide connectors enter the child from the left", func(t *testing.T) {
		c, g := newCanvas(t, Size{W: 600, H: 300}, box)
		a := g.Add("a", dataflow.Position{X: 0.25, Y: 0.5})
		b := g.Add("b", dataflow.Position{X: 0.75, Y: 0.5})
		require.NoError(t, g.AddEdge(a.ID(), b.ID()))

		lines := c.Lines()

		require.Len(t, lines, 1)
		require.Equal(t, a.ID(), lines[0].Parent)
		require.Equal(t, b.ID(), lines[0].Child)
		requirePoints(t, [3]Point{{150, 150}, {350, 150}, {400, 150}}, lines[0].Points)
	})

	t.Run("tall connectors enter the child from above", func(t *testing.T) {
		c, g := newCanvas(t, Size{W: 300, H: 600}, box)
		a := g.Add("a", dataflow.Position{X: 0.5, Y: 0.25})
		b := g.Add("b", dataflow.Position{X: 0.5, Y: 0.75})
		require.NoError(t, g.AddEdge(a.ID(), b.ID()))

		requirePoints(t, [3]Point{{150, 150}, {150, 380}, {150, 430}}, c.Lines()[0].Points)
	})

	t.Run("ghost line points along the flow", func(t *testing.T) {
		c, g := newCanvas(t, Size{W: 600, H: 300}, box)
		a := g.Add("a", dataflow.Position{X: 0.75, Y: 0.5})

		require.NoError(t, c.Press(a.ID(), Point{X: 450, Y: 150}))
		require.True(t, c.HoldElapsed(a.ID()))
		c.Motion(Point{X: 100, Y: 150})

		lines := c.Lines()
		require.Len(t, lines, 1)
		require.True(t, lines[0].Ghost)
		ghost, _ := c.GhostRect()
		source, _ := c.NodeRect(a.ID())
		// The ghost lies left of the source, so the line runs ghost -> source.
		require.InDelta(t, ghost.Center().X, lines[0].Points[0].X, 1e-9)
		require.InDelta(t, source.X, lines[0].Points[2].X, 1e-9)
	})
}

func TestResize(t *testing.T) {
	t.Run("flip swaps every stored position", func(t *testing.T) {
		// --- Arrange ---
		c, g := newCanvas(t, Size{W: 300, H: 600})
		a := g.Add("a", dataflow.Position{X: 0.2, Y: 0.7})
		b := g.Add("b", dataflow.Position{X: 0.9, Y: 0.1})
		require.NoError(t, g.AddEdge(a.ID(), b.ID()))
		require.Equal(t, Tall, c.Orientation())
		edgesBefore := g.Edges()

		// --- Act ---
		flipped := c.Resize(Size{W: 600, H: 300})

		// --- Assert ---
		require.True(t, flipped)
		require.Equal(t, Wide, c.Orientation())
		require.Equal(t, dataflow.Position{X: 0.7, Y: 0.2}, a.Position)
		require.Equal(t, dataflow.Position{X: 0.1, Y: 0.9}, b.Position)
		require.Equal(t, edgesBefore, g.Edges())
		require.Equal(t, 2, g.Len())
		require.Len(t, c.Lines(), 1)
	})

	t.Run("resizing within an orientation keeps positions", func(t *testing.T) {
		c, g := newCanvas(t, Size{W: 600, H: 300})
		a := g.Add("a", dataflow.Position{X: 0.2, Y: 0.7})

		require.False(t, c.Resize(Size{W: 800, H: 500}))
		require.Equal(t, dataflow.Position{X: 0.2, Y: 0.7}, a.Position)
		require.Equal(t, Size{W: 800, H: 500}, c.Size())
	})

	t.Run("flip mid-connect carries the ghost along", func(t *testing.T) {
		c, g := newCanvas(t, Size{W: 600, H: 300})
		a := g.Add("a", dataflow.Position{X: 0.25, Y: 0.5})
		require.NoError(t, c.Press(a.ID(), Point{X: 150, Y: 150}))
		require.True(t, c.HoldElapsed(a.ID()))

		c.Resize(Size{W: 300, H: 600})

		ghost, ok := c.Ghost()
		require.True(t, ok)
		require.Equal(t, dataflow.Position{X: 0.5, Y: 0.25}, ghost)
	})
}
