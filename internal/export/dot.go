// Package export renders a graph's topology as a Graphviz diagram.
package export

import (
	"fmt"
	"io"

	"github.com/emicklei/dot"
	"github.com/vk/pipegraph/internal/dataflow"
)

// Graphviz returns g as DOT: one box per node, labelled with its name, and
// one arrow per parent to child edge. Run state is not exported.
func Graphviz(g *dataflow.Graph) string {
	out := dot.NewGraph(dot.Directed)
	out.Attr("rankdir", "LR")

	nodes := make(map[dataflow.NodeID]dot.Node, g.Len())
	for _, n := range g.Nodes() {
		label := n.Name
		if n.PluginID() != "" {
			label = fmt.Sprintf("%s\n(%s)", n.Name, n.PluginID())
		}
		nodes[n.ID()] = out.Node(fmt.Sprintf("n%d", n.ID())).Label(label).Box()
	}
	for _, e := range g.Edges() {
		out.Edge(nodes[e.Parent], nodes[e.Child])
	}
	return out.String()
}

// WriteGraphviz writes the DOT rendering of g to w.
func WriteGraphviz(w io.Writer, g *dataflow.Graph) error {
	_, err := io.WriteString(w, Graphviz(g))
	return err
}
