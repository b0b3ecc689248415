package engine

import (
	"context"
	"errors"
	"fmt"
	"runtime/debug"

	"github.com/vk/pipegraph/internal/ctxlog"
	"github.com/vk/pipegraph/internal/dataflow"
	"github.com/vk/pipegraph/internal/plugin"
	"github.com/vk/pipegraph/internal/progress"
	"github.com/vk/pipegraph/internal/table"
)

// UpdateKind classifies an Update.
type UpdateKind int

const (
	Started UpdateKind = iota
	Completed
	Failed
	Skipped
)

func (k UpdateKind) String() string {
	switch k {
	case Started:
		return "started"
	case Completed:
		return "ok"
	case Failed:
		return "failed"
	case Skipped:
		return "skipped"
	}
	return fmt.Sprintf("UpdateKind(%d)", int(k))
}

// Update is a state change produced by Execute for Apply to commit.
type Update struct {
	Node     dataflow.NodeID
	Revision uint64
	Kind     UpdateKind
	Result   *table.Table
	Err      error
}

// Summary describes a finished run.
type Summary struct {
	// Invoked counts steps handed to a plugin, successful or not.
	Invoked int
	Failed  int
	Skipped int
	// Err joins every node failure; nil when the run was clean.
	Err error
}

// Execute runs every pending step of plan in order. It never touches the
// graph: results leave only through commit. The observer sees one Progress
// call per finished step, any plugin sub-progress, and a final Finished.
func Execute(ctx context.Context, plan *Plan, obs progress.Observer, commit func(Update)) Summary {
	logger := ctxlog.FromContext(ctx)
	if obs == nil {
		obs = progress.Nop{}
	}

	outputs := make(map[dataflow.NodeID]*table.Table, len(plan.Steps))
	for id, t := range plan.cached {
		outputs[id] = t
	}
	blocked := make(map[dataflow.NodeID]bool)

	var summary Summary
	var failures []error
	total := plan.Pending()
	current := 0

	report := func(step Step, kind UpdateKind) {
		current++
		obs.Progress(current, total, fmt.Sprintf("%s: %s", step.Name, kind))
	}

	for _, step := range plan.Steps {
		if !step.Run {
			continue
		}
		stepLogger := logger.With("node", step.Name)

		if upstreamBlocked(step, blocked) {
			stepLogger.Warn("Skipping node due to upstream failure.")
			blocked[step.ID] = true
			summary.Skipped++
			commit(Update{Node: step.ID, Revision: step.Revision, Kind: Skipped})
			report(step, Skipped)
			continue
		}

		if step.Plugin == nil {
			outputs[step.ID] = nil
			commit(Update{Node: step.ID, Revision: step.Revision, Kind: Completed})
			report(step, Completed)
			continue
		}

		inputs := make([]*table.Table, 0, len(step.Parents))
		for _, p := range step.Parents {
			if out := outputs[p]; out != nil {
				inputs = append(inputs, out)
			}
		}

		commit(Update{Node: step.ID, Revision: step.Revision, Kind: Started})
		stepLogger.Debug("Running node.", "inputs", len(inputs))

		summary.Invoked++
		result, err := invoke(ctx, step, inputs, obs)
		if err != nil {
			stepLogger.Error("Node execution failed.", "error", err)
			blocked[step.ID] = true
			summary.Failed++
			failures = append(failures, err)
			commit(Update{Node: step.ID, Revision: step.Revision, Kind: Failed, Err: err})
			report(step, Failed)
			continue
		}

		outputs[step.ID] = result
		stepLogger.Debug("Node execution succeeded.", "rows", result.Len())
		commit(Update{Node: step.ID, Revision: step.Revision, Kind: Completed, Result: result})
		report(step, Completed)
	}

	summary.Err = errors.Join(failures...)
	obs.Finished(summary.Err)
	return summary
}

func upstreamBlocked(step Step, blocked map[dataflow.NodeID]bool) bool {
	for _, p := range step.Parents {
		if blocked[p] {
			return true
		}
	}
	return false
}

// invoke calls the plugin, turning arity violations, errors and panics into
// execution errors.
func invoke(ctx context.Context, step Step, inputs []*table.Table, obs progress.Observer) (result *table.Table, err error) {
	meta := step.Plugin.Metadata()
	// Arity is a property of the wiring, so plugin-less parents count too.
	if meta.MaxInputs > 0 && len(step.Parents) > meta.MaxInputs {
		return nil, &InputArityError{Node: step.Name, Plugin: meta.Name, Max: meta.MaxInputs, Got: len(step.Parents)}
	}

	defer func() {
		if r := recover(); r != nil {
			err = &PluginExecutionError{Node: step.Name, Err: fmt.Errorf("panic: %v", r), Details: string(debug.Stack())}
		}
	}()

	if pr, ok := step.Plugin.(plugin.ProgressRunner); ok {
		sub := func(current, total int, label string) {
			obs.Progress(current, total, fmt.Sprintf("%s: %s", step.Name, label))
		}
		result, err = pr.RunWithProgress(ctx, inputs, sub)
	} else {
		result, err = step.Plugin.Run(ctx, inputs)
	}
	if err != nil {
		return nil, &PluginExecutionError{Node: step.Name, Err: err}
	}
	if result == nil {
		result = table.New()
	}
	return result, nil
}

// Apply commits an Update to g. It must run on the goroutine that owns g.
// Updates for deleted nodes, or nodes edited since the plan was taken, are
// ignored.
func Apply(g *dataflow.Graph, u Update) {
	n, ok := g.Node(u.Node)
	if !ok || n.Revision() != u.Revision {
		return
	}
	switch u.Kind {
	case Started:
		n.MarkRunning()
	case Completed:
		n.MarkCompleted(u.Result)
	case Failed:
		n.MarkFailed(FailureOutput(u.Err))
	}
}

// Run plans and executes synchronously on the calling goroutine, which must
// own g.
func Run(ctx context.Context, g *dataflow.Graph, obs progress.Observer, targets ...dataflow.NodeID) Summary {
	plan := NewPlan(g, targets...)
	return Execute(ctx, plan, obs, func(u Update) { Apply(g, u) })
}
