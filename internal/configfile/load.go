package configfile

import (
	"context"
	"fmt"
	"math/rand/v2"
	"os"
	"sort"

	"github.com/hashicorp/hcl/v2"
	"github.com/hashicorp/hcl/v2/gohcl"
	"github.com/hashicorp/hcl/v2/hclparse"
	"github.com/vk/pipegraph/internal/ctxlog"
	"github.com/vk/pipegraph/internal/dataflow"
	"github.com/vk/pipegraph/internal/plugin"
)

// fileRoot is the top level of a pipeline file.
type fileRoot struct {
	Nodes  []*nodeBlock `hcl:"node,block"`
	Remain hcl.Body     `hcl:",remain"`
}

type nodeBlock struct {
	Key      string       `hcl:"key,label"`
	Name     *string      `hcl:"name,optional"`
	Position []float64    `hcl:"position,optional"`
	Plugin   string       `hcl:"plugin,optional"`
	Parents  []string     `hcl:"parents,optional"`
	Config   *configBlock `hcl:"config,block"`
}

type configBlock struct {
	Body hcl.Body `hcl:",remain"`
}

// LoadFile reads and parses the pipeline at path.
func LoadFile(ctx context.Context, path string, catalog *plugin.Catalog) (*dataflow.Graph, error) {
	src, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read config %s: %w", path, err)
	}
	g, err := Parse(src, path, catalog)
	if err != nil {
		return nil, err
	}
	ctxlog.FromContext(ctx).Debug("Pipeline loaded.", "path", path, "nodes", g.Len())
	return g, nil
}

// Parse builds a graph from HCL source. Plugins are instantiated from
// catalog and their parameters filled from each node's config block.
func Parse(src []byte, filename string, catalog *plugin.Catalog) (*dataflow.Graph, error) {
	parser := hclparse.NewParser()
	file, diags := parser.ParseHCL(src, filename)
	if diags.HasErrors() {
		return nil, fmt.Errorf("failed to parse %s: %w", filename, diags)
	}

	var root fileRoot
	if diags := gohcl.DecodeBody(file.Body, nil, &root); diags.HasErrors() {
		return nil, fmt.Errorf("failed to decode %s: %w", filename, diags)
	}

	g := dataflow.New()
	ids := make(map[string]dataflow.NodeID, len(root.Nodes))
	for _, blk := range root.Nodes {
		if _, dup := ids[blk.Key]; dup {
			return nil, fmt.Errorf("%s: node %q declared twice", filename, blk.Key)
		}
		n, err := buildNode(g, blk, catalog)
		if err != nil {
			return nil, fmt.Errorf("%s: %w", filename, err)
		}
		ids[blk.Key] = n.ID()
	}

	for _, blk := range root.Nodes {
		child := ids[blk.Key]
		for _, ref := range blk.Parents {
			parent, ok := ids[ref]
			if !ok {
				return nil, fmt.Errorf("%s: node %q references unknown parent %q", filename, blk.Key, ref)
			}
			if err := g.AddEdge(parent, child); err != nil {
				return nil, fmt.Errorf("%s: node %q: %w", filename, blk.Key, err)
			}
		}
	}
	return g, nil
}

func buildNode(g *dataflow.Graph, blk *nodeBlock, catalog *plugin.Catalog) (*dataflow.Node, error) {
	name := blk.Key
	if blk.Name != nil {
		name = *blk.Name
	}

	var pos dataflow.Position
	switch len(blk.Position) {
	case 0:
		pos = dataflow.Position{X: rand.Float64()*0.8 + 0.1, Y: rand.Float64()*0.8 + 0.1}
	case 2:
		pos = dataflow.Position{X: blk.Position[0], Y: blk.Position[1]}
	default:
		return nil, fmt.Errorf("node %q: position needs exactly two numbers", blk.Key)
	}

	n := g.Add(name, pos)
	if blk.Plugin == "" {
		if blk.Config != nil {
			return nil, fmt.Errorf("node %q: config block without a plugin", blk.Key)
		}
		return n, nil
	}

	inst, err := catalog.New(blk.Plugin)
	if err != nil {
		return nil, fmt.Errorf("node %q: %w", blk.Key, err)
	}
	if blk.Config != nil {
		attrs, diags := blk.Config.Body.JustAttributes()
		if diags.HasErrors() {
			return nil, fmt.Errorf("node %q: %w", blk.Key, diags)
		}
		names := make([]string, 0, len(attrs))
		for k := range attrs {
			names = append(names, k)
		}
		sort.Strings(names)
		for _, k := range names {
			val, diags := attrs[k].Expr.Value(nil)
			if diags.HasErrors() {
				return nil, fmt.Errorf("node %q: %w", blk.Key, diags)
			}
			if err := inst.Params().Set(k, val); err != nil {
				return nil, fmt.Errorf("node %q: %w", blk.Key, err)
			}
		}
	}
	if err := g.SetPlugin(n.ID(), blk.Plugin, inst); err != nil {
		return nil, err
	}
	return n, nil
}
