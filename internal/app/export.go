package app

import (
	"context"
	"fmt"
	"io"
	"os"

	"github.com/vk/pipegraph/internal/configfile"
	"github.com/vk/pipegraph/internal/export"
)

// ExportFile writes the topology of the pipeline at path as Graphviz DOT to
// out, or to the application's output when out is empty.
func (a *App) ExportFile(ctx context.Context, path, out string) error {
	ctx = a.context(ctx)
	g, err := configfile.LoadFile(ctx, path, a.catalog)
	if err != nil {
		return err
	}

	if out == "" {
		return export.WriteGraphviz(a.outW, g)
	}
	f, err := os.Create(out)
	if err != nil {
		return fmt.Errorf("failed to create %s: %w", out, err)
	}
	if err := export.WriteGraphviz(f, g); err != nil {
		f.Close()
		return err
	}
	if err := f.Close(); err != nil {
		return err
	}
	a.logger.Info("Graph exported.", "path", out, "nodes", g.Len())
	return nil
}

// ListPlugins prints the catalog.
func (a *App) ListPlugins(w io.Writer) {
	for _, e := range a.catalog.Entries() {
		fmt.Fprintf(w, "%-12s %s\n", e.ID, e.Metadata.Title)
	}
}
