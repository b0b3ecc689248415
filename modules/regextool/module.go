// Package regextool provides the "regextool" plugin. It matches a regular
// expression against one column and writes the capture groups into new
// columns.
package regextool

import (
	"context"
	"errors"
	"fmt"
	"regexp"
	"slices"

	"github.com/vk/pipegraph/internal/ctxlog"
	"github.com/vk/pipegraph/internal/plugin"
	"github.com/vk/pipegraph/internal/table"
	"github.com/zclconf/go-cty/cty"
)

// ID is the catalog identifier of the plugin.
const ID = "regextool"

// Module implements the plugin.Module interface for this package.
type Module struct{}

// Register registers the plugin with the catalog.
func (m *Module) Register(c *plugin.Catalog) {
	c.Register(ID, func() plugin.Plugin { return New() })
}

// Tool applies a regular expression to a column. The expression is anchored
// at the start of the value. Rows that do not match get null group columns.
type Tool struct {
	params *plugin.ParamSet
}

// New returns a tool with default parameters.
func New() *Tool {
	return &Tool{params: plugin.NewParamSet(
		&plugin.Param{Key: "column", Label: "Input column", Type: cty.String},
		&plugin.Param{Key: "regex", Label: "Regular expression", Type: cty.String, Default: cty.StringVal(".*")},
		&plugin.Param{Key: "output", Label: "Output columns", Type: cty.List(cty.String)},
		&plugin.Param{Key: "drop_column", Label: "Drop input column", Type: cty.Bool, Default: cty.False},
	)}
}

func (t *Tool) Metadata() plugin.Metadata {
	return plugin.Metadata{
		Name:        "Regex Tool",
		Title:       "Apply a regular expression to a column to make new columns",
		Description: "Each capture group becomes a column. Unnamed groups are called column_N.",
	}
}

func (t *Tool) Params() *plugin.ParamSet { return t.params }

func (t *Tool) Run(ctx context.Context, inputs []*table.Table) (*table.Table, error) {
	column := t.params.String("column")
	if column == "" {
		return nil, errors.New("no input column selected")
	}
	re, err := regexp.Compile("^(?:" + t.params.String("regex") + ")")
	if err != nil {
		return nil, fmt.Errorf("invalid regular expression: %w", err)
	}

	in := table.Concat(inputs...)
	src := in.ColumnIndex(column)
	if src < 0 {
		return nil, fmt.Errorf("column '%s' not found", column)
	}

	names := outputNames(t.params.Strings("output"), re.NumSubexp())
	drop := t.params.Bool("drop_column")

	var columns []string
	for i, c := range in.Columns {
		if drop && i == src {
			continue
		}
		columns = append(columns, c)
	}
	// An output named like an existing column overwrites it.
	target := make([]int, len(names))
	for i, name := range names {
		target[i] = slices.Index(columns, name)
		if target[i] < 0 {
			columns = append(columns, name)
			target[i] = len(columns) - 1
		}
	}
	out := table.New(columns...)

	missed := 0
	for _, row := range in.Rows {
		cells := make([]cty.Value, 0, len(columns))
		for i, v := range row {
			if drop && i == src {
				continue
			}
			cells = append(cells, v)
		}
		for len(cells) < len(columns) {
			cells = append(cells, cty.NullVal(cty.String))
		}

		groups := match(re, row[src])
		if groups == nil {
			missed++
		}
		for i, col := range target {
			if groups == nil {
				cells[col] = cty.NullVal(cty.String)
			} else {
				cells[col] = cty.StringVal(groups[i+1])
			}
		}
		out.Rows = append(out.Rows, cells)
	}
	if missed > 0 {
		ctxlog.FromContext(ctx).Warn("Rows did not match.", "column", column, "count", missed)
	}
	return out, nil
}

func match(re *regexp.Regexp, v cty.Value) []string {
	if v.IsNull() || !v.IsKnown() {
		return nil
	}
	return re.FindStringSubmatch(plugin.Format(v))
}

// outputNames names every capture group, filling gaps with column_N.
func outputNames(given []string, groups int) []string {
	names := make([]string, groups)
	for i := range names {
		if i < len(given) && given[i] != "" {
			names[i] = given[i]
		} else {
			names[i] = fmt.Sprintf("column_%d", i+1)
		}
	}
	return names
}
