package engine

import (
	mapset "github.com/deckarep/golang-set"
	"github.com/vk/pipegraph/internal/dataflow"
	"github.com/vk/pipegraph/internal/plugin"
	"github.com/vk/pipegraph/internal/table"
)

// Step is the frozen view of one node that a worker needs.
type Step struct {
	ID       dataflow.NodeID
	Name     string
	Plugin   plugin.Plugin
	Parents  []dataflow.NodeID
	Revision uint64
	// Run is false for clean nodes whose cached result is reused.
	Run bool
}

// Plan is an ordered list of steps plus the cached outputs of clean nodes.
type Plan struct {
	Steps  []Step
	cached map[dataflow.NodeID]*table.Table
}

// NewPlan snapshots g for a run. With no targets every node is planned;
// otherwise only the targets and their ancestors are.
func NewPlan(g *dataflow.Graph, targets ...dataflow.NodeID) *Plan {
	var scope mapset.Set
	if len(targets) > 0 {
		scope = mapset.NewSet()
		for _, id := range targets {
			scope.Add(id)
			for _, a := range g.Ancestors(id) {
				scope.Add(a)
			}
		}
	}

	p := &Plan{cached: make(map[dataflow.NodeID]*table.Table)}
	for n := range g.TopologicalOrder() {
		if scope != nil && !scope.Contains(n.ID()) {
			continue
		}
		p.Steps = append(p.Steps, Step{
			ID:       n.ID(),
			Name:     n.Name,
			Plugin:   n.Plugin(),
			Parents:  g.Parents(n.ID()),
			Revision: n.Revision(),
			Run:      n.NeedsRun(),
		})
		if !n.NeedsRun() {
			p.cached[n.ID()] = n.Result
		}
	}
	return p
}

// Pending counts the steps that will run.
func (p *Plan) Pending() int {
	count := 0
	for _, s := range p.Steps {
		if s.Run {
			count++
		}
	}
	return count
}
