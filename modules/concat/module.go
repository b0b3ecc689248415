// Package concat provides the "concat" plugin, which stacks every input
// table into one.
package concat

import (
	"context"

	"github.com/vk/pipegraph/internal/plugin"
	"github.com/vk/pipegraph/internal/table"
)

// ID is the catalog identifier of the plugin.
const ID = "concat"

// Module implements the plugin.Module interface for this package.
type Module struct{}

// Register registers the plugin with the catalog.
func (m *Module) Register(c *plugin.Catalog) {
	c.Register(ID, func() plugin.Plugin { return &Concat{params: plugin.NewParamSet()} })
}

// Concat appends the rows of its inputs in parent order. Columns are matched
// by name.
type Concat struct {
	params *plugin.ParamSet
}

func (p *Concat) Metadata() plugin.Metadata {
	return plugin.Metadata{
		Name:        "Concatenate",
		Title:       "Concatenate tables",
		Description: "Stacks all inputs into one table, aligning columns by name.",
	}
}

func (p *Concat) Params() *plugin.ParamSet { return p.params }

func (p *Concat) Run(_ context.Context, inputs []*table.Table) (*table.Table, error) {
	return table.Concat(inputs...), nil
}
