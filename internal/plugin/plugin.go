package plugin

import (
	"context"

	"github.com/vk/pipegraph/internal/table"
)

// Metadata describes a plugin to users.
type Metadata struct {
	Name        string
	Title       string
	Description string
	// MaxInputs caps the number of parent outputs the plugin accepts.
	// Zero means any number.
	MaxInputs int
}

// Plugin is a configurable processing unit.
type Plugin interface {
	Metadata() Metadata
	Params() *ParamSet
	Run(ctx context.Context, inputs []*table.Table) (*table.Table, error)
}

// ProgressFunc receives sub-progress from long running plugins. A total of
// zero means the amount of work is unknown.
type ProgressFunc func(current, total int, label string)

// ProgressRunner is implemented by plugins that can report progress while
// they run. The engine prefers it over Run when present.
type ProgressRunner interface {
	RunWithProgress(ctx context.Context, inputs []*table.Table, progress ProgressFunc) (*table.Table, error)
}
