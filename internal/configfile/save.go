package configfile

import (
	"fmt"
	"os"

	"github.com/hashicorp/hcl/v2/hclwrite"
	"github.com/vk/pipegraph/internal/dataflow"
	"github.com/zclconf/go-cty/cty"
)

// Keys assigns every node a unique, deterministic block label.
func Keys(g *dataflow.Graph) map[dataflow.NodeID]string {
	keys := make(map[dataflow.NodeID]string, g.Len())
	used := make(map[string]bool, g.Len())
	for _, n := range g.Nodes() {
		base := n.Name
		if base == "" {
			base = "node"
		}
		key := base
		for k := 2; used[key]; k++ {
			key = fmt.Sprintf("%s #%d", base, k)
		}
		used[key] = true
		keys[n.ID()] = key
	}
	return keys
}

// Encode renders g as HCL.
func Encode(g *dataflow.Graph) []byte {
	keys := Keys(g)
	f := hclwrite.NewEmptyFile()
	root := f.Body()

	for i, n := range g.Nodes() {
		if i > 0 {
			root.AppendNewline()
		}
		body := root.AppendNewBlock("node", []string{keys[n.ID()]}).Body()
		if n.Name != keys[n.ID()] {
			body.SetAttributeValue("name", cty.StringVal(n.Name))
		}
		body.SetAttributeValue("position", cty.TupleVal([]cty.Value{
			cty.NumberFloatVal(n.Position.X),
			cty.NumberFloatVal(n.Position.Y),
		}))
		if n.PluginID() != "" {
			body.SetAttributeValue("plugin", cty.StringVal(n.PluginID()))
		}
		if parents := g.Parents(n.ID()); len(parents) > 0 {
			refs := make([]cty.Value, len(parents))
			for j, p := range parents {
				refs[j] = cty.StringVal(keys[p])
			}
			body.SetAttributeValue("parents", cty.ListVal(refs))
		}
		if !n.HasPlugin() {
			continue
		}

		var cfg *hclwrite.Body
		for _, param := range n.Plugin().Params().All() {
			if !param.IsSet() {
				continue
			}
			if cfg == nil {
				body.AppendNewline()
				cfg = body.AppendNewBlock("config", nil).Body()
			}
			cfg.SetAttributeValue(param.Key, param.Current())
		}
	}
	return hclwrite.Format(f.Bytes())
}

// WriteFile saves g to path.
func WriteFile(path string, g *dataflow.Graph) error {
	if err := os.WriteFile(path, Encode(g), 0o644); err != nil {
		return fmt.Errorf("failed to write config %s: %w", path, err)
	}
	return nil
}
