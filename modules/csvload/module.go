// Package csvload provides the "csvload" plugin, which reads one or more CSV
// files into a single table.
package csvload

import (
	"context"
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"

	"github.com/vk/pipegraph/internal/ctxlog"
	"github.com/vk/pipegraph/internal/plugin"
	"github.com/vk/pipegraph/internal/table"
	"github.com/zclconf/go-cty/cty"
)

// ID is the catalog identifier of the loader.
const ID = "csvload"

// Module implements the plugin.Module interface for this package.
type Module struct{}

// Register registers the loader with the catalog.
func (m *Module) Register(c *plugin.Catalog) {
	c.Register(ID, func() plugin.Plugin { return New() })
}

// Loader reads CSV files. Inputs from parent nodes, if any, come first in
// the output followed by the rows of each file in order.
type Loader struct {
	params *plugin.ParamSet
}

// New returns a loader with default parameters.
func New() *Loader {
	return &Loader{params: plugin.NewParamSet(
		&plugin.Param{Key: "paths", Label: "Files", Type: cty.List(cty.String)},
		&plugin.Param{Key: "header", Label: "First row is a header", Type: cty.Bool, Default: cty.True},
		&plugin.Param{Key: "delimiter", Label: "Delimiter", Type: cty.String, Default: cty.StringVal(",")},
		&plugin.Param{Key: "filename_column", Label: "Filename column", Type: cty.String},
	)}
}

func (l *Loader) Metadata() plugin.Metadata {
	return plugin.Metadata{
		Name:        "CSV Load",
		Title:       "Load CSV files",
		Description: "Reads comma separated files. Files with different columns are aligned by column name.",
	}
}

func (l *Loader) Params() *plugin.ParamSet { return l.params }

func (l *Loader) Run(ctx context.Context, inputs []*table.Table) (*table.Table, error) {
	return l.RunWithProgress(ctx, inputs, func(int, int, string) {})
}

// RunWithProgress reports one step per file.
func (l *Loader) RunWithProgress(ctx context.Context, inputs []*table.Table, progress plugin.ProgressFunc) (*table.Table, error) {
	logger := ctxlog.FromContext(ctx)
	paths := l.params.Strings("paths")
	if len(paths) == 0 {
		return nil, errors.New("no files selected")
	}
	delim, err := delimiter(l.params.String("delimiter"))
	if err != nil {
		return nil, err
	}
	header := l.params.Bool("header")
	filenameCol := l.params.String("filename_column")

	parts := append([]*table.Table(nil), inputs...)
	for i, path := range paths {
		if err := ctx.Err(); err != nil {
			return nil, err
		}
		progress(i, len(paths), "reading "+filepath.Base(path))

		t, err := readFile(path, delim, header)
		if err != nil {
			return nil, err
		}
		if filenameCol != "" {
			t = withConstant(t, filenameCol, cty.StringVal(filepath.Base(path)))
		}
		logger.Debug("CSV file loaded.", "path", path, "rows", t.Len())
		parts = append(parts, t)
	}
	progress(len(paths), len(paths), "done")
	return table.Concat(parts...), nil
}

func delimiter(s string) (rune, error) {
	switch s {
	case "", ",":
		return ',', nil
	case `\t`, "tab":
		return '\t', nil
	}
	r := []rune(s)
	if len(r) != 1 {
		return 0, fmt.Errorf("delimiter must be a single character, got %q", s)
	}
	return r[0], nil
}

func readFile(path string, delim rune, header bool) (*table.Table, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("failed to open '%s': %w", path, err)
	}
	defer f.Close()

	r := csv.NewReader(f)
	r.Comma = delim
	r.FieldsPerRecord = -1

	var t *table.Table
	for line := 1; ; line++ {
		rec, err := r.Read()
		if errors.Is(err, io.EOF) {
			break
		}
		if err != nil {
			return nil, fmt.Errorf("failed to read '%s': %w", path, err)
		}
		if t == nil {
			if header {
				t = table.New(rec...)
				continue
			}
			t = table.New(numbered(len(rec))...)
		}
		if len(rec) > len(t.Columns) {
			return nil, fmt.Errorf("%s:%d: %d fields, header has %d", path, line, len(rec), len(t.Columns))
		}
		// Short records are padded with nulls.
		row := make([]cty.Value, len(t.Columns))
		for i := range row {
			if i < len(rec) {
				row[i] = cty.StringVal(rec[i])
			} else {
				row[i] = cty.NullVal(cty.String)
			}
		}
		_ = t.Append(row...)
	}
	if t == nil {
		t = table.New()
	}
	return t, nil
}

func numbered(n int) []string {
	names := make([]string, n)
	for i := range names {
		names[i] = fmt.Sprintf("column_%d", i+1)
	}
	return names
}

func withConstant(t *table.Table, column string, v cty.Value) *table.Table {
	out := table.New(append(append([]string(nil), t.Columns...), column)...)
	for _, row := range t.Rows {
		out.Rows = append(out.Rows, append(append([]cty.Value(nil), row...), v))
	}
	return out
}
