// Package csvsave provides the "csvsave" plugin, which writes its input to
// a CSV file and passes it on unchanged.
package csvsave

import (
	"context"
	"encoding/csv"
	"errors"
	"fmt"
	"os"

	"github.com/vk/pipegraph/internal/ctxlog"
	"github.com/vk/pipegraph/internal/plugin"
	"github.com/vk/pipegraph/internal/table"
	"github.com/zclconf/go-cty/cty"
)

// ID is the catalog identifier of the plugin.
const ID = "csvsave"

// Module implements the plugin.Module interface for this package.
type Module struct{}

// Register registers the plugin with the catalog.
func (m *Module) Register(c *plugin.Catalog) {
	c.Register(ID, func() plugin.Plugin { return New() })
}

// Saver writes a single input table.
type Saver struct {
	params *plugin.ParamSet
}

// New returns a saver with default parameters.
func New() *Saver {
	return &Saver{params: plugin.NewParamSet(
		&plugin.Param{Key: "path", Label: "Output file", Type: cty.String},
		&plugin.Param{Key: "delimiter", Label: "Delimiter", Type: cty.String, Default: cty.StringVal(","),
			Choices: []cty.Value{cty.StringVal(","), cty.StringVal(";"), cty.StringVal("|")}},
	)}
}

func (s *Saver) Metadata() plugin.Metadata {
	return plugin.Metadata{
		Name:        "CSV Save",
		Title:       "Save as CSV",
		Description: "Writes the input table to a CSV file.",
		MaxInputs:   1,
	}
}

func (s *Saver) Params() *plugin.ParamSet { return s.params }

func (s *Saver) Run(ctx context.Context, inputs []*table.Table) (*table.Table, error) {
	path := s.params.String("path")
	if path == "" {
		return nil, errors.New("no output file set")
	}
	if len(inputs) == 0 {
		return nil, errors.New("nothing to save: no input")
	}
	in := inputs[0]

	f, err := os.Create(path)
	if err != nil {
		return nil, fmt.Errorf("failed to create '%s': %w", path, err)
	}
	w := csv.NewWriter(f)
	w.Comma = []rune(s.params.String("delimiter"))[0]
	_ = w.Write(in.Columns)
	rec := make([]string, len(in.Columns))
	for _, row := range in.Rows {
		for i, v := range row {
			rec[i] = plugin.Format(v)
		}
		_ = w.Write(rec)
	}
	w.Flush()
	if err := w.Error(); err != nil {
		f.Close()
		return nil, fmt.Errorf("failed to write '%s': %w", path, err)
	}
	if err := f.Close(); err != nil {
		return nil, fmt.Errorf("failed to write '%s': %w", path, err)
	}

	ctxlog.FromContext(ctx).Info("CSV file written.", "path", path, "rows", in.Len())
	return in, nil
}
