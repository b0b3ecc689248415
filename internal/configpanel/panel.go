// Package configpanel backs the per-node configuration form: naming the
// node, picking its plugin, editing parameters and previewing the result.
package configpanel

import (
	"fmt"

	"github.com/vk/pipegraph/internal/dataflow"
	"github.com/vk/pipegraph/internal/plugin"
	"github.com/vk/pipegraph/internal/table"
	"github.com/zclconf/go-cty/cty"
	ctyjson "github.com/zclconf/go-cty/cty/json"
)

// PreviewRows caps how many rows a preview shows.
const PreviewRows = 1000

// Field is one rendered form entry.
type Field struct {
	Key     string   `json:"key"`
	Label   string   `json:"label"`
	Type    string   `json:"type"`
	Value   string   `json:"value"`
	Choices []string `json:"choices,omitempty"`
}

// PreviewKind says what the preview area shows.
type PreviewKind string

const (
	PreviewEmpty PreviewKind = "empty"
	PreviewTable PreviewKind = "table"
	PreviewError PreviewKind = "error"
)

// Preview is the node's current output or failure.
type Preview struct {
	Kind  PreviewKind
	Table *table.Table
	Text  string
}

// JSON encodes a table preview as an array of row objects.
func (p Preview) JSON() ([]byte, error) {
	if p.Kind != PreviewTable {
		return []byte("[]"), nil
	}
	v := p.Table.ToCty()
	return ctyjson.Marshal(v, v.Type())
}

// Prerun recomputes a node and its ancestors after an edit.
type Prerun func(id dataflow.NodeID)

// Panel edits one node. It must be used from the goroutine that owns the
// graph.
type Panel struct {
	graph   *dataflow.Graph
	id      dataflow.NodeID
	catalog *plugin.Catalog
	prerun  Prerun
}

// Open builds a panel for id. prerun may be nil.
func Open(g *dataflow.Graph, id dataflow.NodeID, catalog *plugin.Catalog, prerun Prerun) (*Panel, error) {
	if _, ok := g.Node(id); !ok {
		return nil, fmt.Errorf("%w: %d", dataflow.ErrNodeNotFound, id)
	}
	return &Panel{graph: g, id: id, catalog: catalog, prerun: prerun}, nil
}

// NodeID returns the edited node.
func (p *Panel) NodeID() dataflow.NodeID { return p.id }

func (p *Panel) node() (*dataflow.Node, error) {
	n, ok := p.graph.Node(p.id)
	if !ok {
		return nil, fmt.Errorf("%w: %d", dataflow.ErrNodeNotFound, p.id)
	}
	return n, nil
}

// Name returns the node's display name.
func (p *Panel) Name() string {
	if n, err := p.node(); err == nil {
		return n.Name
	}
	return ""
}

// Rename changes the node's name.
func (p *Panel) Rename(name string) error {
	if err := p.graph.Rename(p.id, name); err != nil {
		return err
	}
	p.changed()
	return nil
}

// Choices lists the plugins a node without a plugin can pick from. Once a
// plugin is chosen the list is empty.
func (p *Panel) Choices() []plugin.Entry {
	n, err := p.node()
	if err != nil || n.HasPlugin() {
		return nil
	}
	return p.catalog.Entries()
}

// ChoosePlugin attaches a fresh instance of the catalog entry id.
func (p *Panel) ChoosePlugin(id string) error {
	inst, err := p.catalog.New(id)
	if err != nil {
		return err
	}
	if err := p.graph.SetPlugin(p.id, id, inst); err != nil {
		return err
	}
	p.changed()
	return nil
}

// Describe returns the chosen plugin's metadata.
func (p *Panel) Describe() (plugin.Metadata, bool) {
	n, err := p.node()
	if err != nil || !n.HasPlugin() {
		return plugin.Metadata{}, false
	}
	return n.Plugin().Metadata(), true
}

// Form renders the parameter schema with current values.
func (p *Panel) Form() []Field {
	n, err := p.node()
	if err != nil || !n.HasPlugin() {
		return nil
	}
	var out []Field
	for _, param := range n.Plugin().Params().All() {
		f := Field{
			Key:   param.Key,
			Label: param.Label,
			Type:  plugin.TypeName(param.Type),
			Value: plugin.Format(param.Current()),
		}
		for _, c := range param.Choices {
			f.Choices = append(f.Choices, plugin.Format(c))
		}
		out = append(out, f)
	}
	return out
}

// SetParam assigns raw form input to key.
func (p *Panel) SetParam(key, raw string) error {
	n, err := p.node()
	if err != nil {
		return err
	}
	if !n.HasPlugin() {
		return fmt.Errorf("node '%s' has no plugin", n.Name)
	}
	if err := n.Plugin().Params().SetString(key, raw); err != nil {
		return err
	}
	p.graph.MarkDirty(p.id)
	p.changed()
	return nil
}

// SetValue assigns an already typed value to key.
func (p *Panel) SetValue(key string, v cty.Value) error {
	n, err := p.node()
	if err != nil {
		return err
	}
	if !n.HasPlugin() {
		return fmt.Errorf("node '%s' has no plugin", n.Name)
	}
	if err := n.Plugin().Params().Set(key, v); err != nil {
		return err
	}
	p.graph.MarkDirty(p.id)
	p.changed()
	return nil
}

// Preview shows the node's output, its failure, or nothing yet.
func (p *Panel) Preview() Preview {
	n, err := p.node()
	if err != nil {
		return Preview{Kind: PreviewEmpty}
	}
	switch {
	case n.State() == dataflow.Failed:
		return Preview{Kind: PreviewError, Text: n.Output}
	case n.Result != nil:
		return Preview{Kind: PreviewTable, Table: n.Result.Crop(PreviewRows)}
	}
	return Preview{Kind: PreviewEmpty}
}

func (p *Panel) changed() {
	if p.prerun != nil {
		p.prerun(p.id)
	}
}
