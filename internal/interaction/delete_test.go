package interaction

import (
	"testing"

	"github.com/stretchr/testify/require"
	"github.com/vk/pipegraph/internal/dataflow"
)

// diamond builds P1,P2 -> X -> C1,C2.
func diamond(t *testing.T, g *dataflow.Graph) map[string]dataflow.NodeID {
	t.Helper()
	ids := map[string]dataflow.NodeID{}
	for _, name := range []string{"P1", "P2", "X", "C1", "C2"} {
		ids[name] = g.Add(name, dataflow.Position{X: 0.5, Y: 0.5}).ID()
	}
	for _, e := range [][2]string{{"P1", "X"}, {"P2", "X"}, {"X", "C1"}, {"X", "C2"}} {
		require.NoError(t, g.AddEdge(ids[e[0]], ids[e[1]]))
	}
	return ids
}

func TestDelete(t *testing.T) {
	t.Run("plain reconnects every parent to every child", func(t *testing.T) {
		c, g := newCanvas(t, wideSize)
		ids := diamond(t, g)
		c.Select(ids["X"])

		require.NoError(t, c.Delete(ids["X"], 0))

		_, ok := g.Node(ids["X"])
		require.False(t, ok)
		require.ElementsMatch(t, []dataflow.Edge{
			{Parent: ids["P1"], Child: ids["C1"]},
			{Parent: ids["P1"], Child: ids["C2"]},
			{Parent: ids["P2"], Child: ids["C1"]},
			{Parent: ids["P2"], Child: ids["C2"]},
		}, g.Edges())
		require.Zero(t, c.Selected())
	})

	t.Run("shift removes without reconnecting", func(t *testing.T) {
		c, g := newCanvas(t, wideSize)
		ids := diamond(t, g)

		require.NoError(t, c.Delete(ids["X"], ModShift))

		_, ok := g.Node(ids["X"])
		require.False(t, ok)
		require.Empty(t, g.Edges())
		require.Equal(t, 4, g.Len())
	})

	t.Run("ctrl keeps an orphaned node", func(t *testing.T) {
		c, g := newCanvas(t, wideSize)
		ids := diamond(t, g)

		require.NoError(t, c.Delete(ids["X"], ModCtrl))

		_, ok := g.Node(ids["X"])
		require.True(t, ok)
		require.Empty(t, g.Parents(ids["X"]))
		require.Empty(t, g.Children(ids["X"]))
		require.Len(t, g.Edges(), 4, "parents are reconnected to children")
	})

	t.Run("ctrl and shift together only disconnect", func(t *testing.T) {
		c, g := newCanvas(t, wideSize)
		ids := diamond(t, g)

		require.NoError(t, c.Delete(ids["X"], ModCtrl|ModShift))

		require.Equal(t, 5, g.Len())
		require.Empty(t, g.Edges())
	})

	t.Run("deleting the only node leaves one fresh node", func(t *testing.T) {
		c, g := newCanvas(t, wideSize)
		only := g.Add("only", dataflow.Position{X: 0.1, Y: 0.1})

		require.NoError(t, c.Delete(only.ID(), 0))

		nodes := g.Nodes()
		require.Len(t, nodes, 1)
		require.NotEqual(t, only.ID(), nodes[0].ID())
		require.Equal(t, "NEW 1", nodes[0].Name)
		require.Equal(t, EmptyCanvasPosition, nodes[0].Position)
		require.False(t, nodes[0].HasPlugin())
		require.Equal(t, nodes[0].ID(), c.Selected(), "the replacement node is selected")
	})

	t.Run("unknown node", func(t *testing.T) {
		c, _ := newCanvas(t, wideSize)
		require.ErrorIs(t, c.Delete(42, 0), dataflow.ErrNodeNotFound)
	})

	t.Run("children of the deleted node become dirty", func(t *testing.T) {
		c, g := newCanvas(t, wideSize)
		ids := diamond(t, g)
		for _, n := range g.Nodes() {
			n.MarkCompleted(nil)
		}

		require.NoError(t, c.Delete(ids["X"], 0))

		c1, _ := g.Node(ids["C1"])
		p1, _ := g.Node(ids["P1"])
		require.Equal(t, dataflow.Dirty, c1.State())
		require.Equal(t, dataflow.Clean, p1.State())
	})
}
