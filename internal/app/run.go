package app

import (
	"context"
	"fmt"
	"io"
	"strings"
	"text/tabwriter"

	"github.com/vk/pipegraph/internal/configfile"
	"github.com/vk/pipegraph/internal/dataflow"
	"github.com/vk/pipegraph/internal/engine"
	"github.com/vk/pipegraph/internal/plugin"
	"github.com/vk/pipegraph/internal/progress"
	"github.com/vk/pipegraph/internal/table"
)

// previewRows is how many rows RunFile prints per leaf node.
const previewRows = 10

// RunFile loads the pipeline at path, runs it to completion and prints the
// output of every leaf node. Node failures are printed in place of their
// output and make the returned error non-nil.
func (a *App) RunFile(ctx context.Context, path string) error {
	ctx = a.context(ctx)
	a.logger.Debug("App.RunFile started.", "path", path)

	g, err := configfile.LoadFile(ctx, path, a.catalog)
	if err != nil {
		return err
	}

	obs, closeObs := a.observers(ctx, progress.NewBarObserver(a.outW))
	defer closeObs()

	a.logger.Info("🚀 Starting pipeline run...", "nodes", g.Len())
	summary := engine.Run(ctx, g, obs)
	a.logger.Info("🏁 Run finished.", "invoked", summary.Invoked, "failed", summary.Failed, "skipped", summary.Skipped)

	printResults(a.outW, g)
	if summary.Err != nil {
		return fmt.Errorf("run failed: %w", summary.Err)
	}
	return nil
}

func printResults(w io.Writer, g *dataflow.Graph) {
	for _, n := range g.Nodes() {
		switch {
		case n.State() == dataflow.Failed:
			fmt.Fprintf(w, "\n!! %s\n%s\n", n.Name, n.Output)
		case len(g.Children(n.ID())) == 0 && n.Result != nil:
			fmt.Fprintf(w, "\n== %s (%d rows)\n", n.Name, n.Result.Len())
			printTable(w, n.Result.Crop(previewRows))
		}
	}
}

func printTable(w io.Writer, t *table.Table) {
	tw := tabwriter.NewWriter(w, 0, 4, 2, ' ', 0)
	fmt.Fprintln(tw, strings.Join(t.Columns, "\t"))
	for _, row := range t.Rows {
		cells := make([]string, len(row))
		for i, v := range row {
			cells[i] = plugin.Format(v)
		}
		fmt.Fprintln(tw, strings.Join(cells, "\t"))
	}
	tw.Flush()
}

// observers combines the log observer, extra and, when configured, the
// socket.io observer. The returned func closes the socket.
func (a *App) observers(ctx context.Context, extra ...progress.Observer) (progress.Observer, func()) {
	all := append([]progress.Observer{progress.LogObserver{Logger: a.logger}}, extra...)
	if a.config.ProgressURL == "" {
		return progress.Multi(all...), func() {}
	}

	sock, err := progress.DialSocket(ctx, progress.SocketConfig{
		URL:       a.config.ProgressURL,
		Namespace: a.config.ProgressNamespace,
		Timeout:   a.config.ProgressTimeout,
	})
	if err != nil {
		a.logger.Warn("Progress socket unavailable, continuing without it.", "error", err)
		return progress.Multi(all...), func() {}
	}
	return progress.Multi(append(all, sock)...), sock.Close
}
