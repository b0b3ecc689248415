package testutil

import (
	"context"
	"errors"
	"sync"

	"github.com/vk/pipegraph/internal/plugin"
	"github.com/vk/pipegraph/internal/table"
	"github.com/zclconf/go-cty/cty"
)

// FakePlugin is a scriptable plugin. Its output is a one-column table
// ("source") listing, row by row, the sources of its inputs followed by its
// own Tag, which makes data flow visible in assertions.
type FakePlugin struct {
	Tag       string
	MaxInputs int
	// Err, when set, is returned from Run.
	Err error
	// Panic, when set, is raised from Run.
	Panic string
	// Steps, when positive, makes RunWithProgress report that many ticks of
	// indeterminate progress.
	Steps int
	// Block, when set, makes Run wait until it is closed.
	Block chan struct{}

	params *plugin.ParamSet

	mu     sync.Mutex
	calls  int
	inputs [][]*table.Table
}

// NewFakePlugin returns a plugin tagged tag with a single "note" parameter.
func NewFakePlugin(tag string) *FakePlugin {
	return &FakePlugin{
		Tag: tag,
		params: plugin.NewParamSet(
			&plugin.Param{Key: "note", Label: "Note", Type: cty.String, Default: cty.StringVal("")},
			&plugin.Param{Key: "mode", Label: "Mode", Type: cty.String, Choices: []cty.Value{cty.StringVal("fast"), cty.StringVal("slow")}},
		),
	}
}

func (p *FakePlugin) Metadata() plugin.Metadata {
	return plugin.Metadata{Name: "fake", Title: "Fake " + p.Tag, Description: "records its calls", MaxInputs: p.MaxInputs}
}

func (p *FakePlugin) Params() *plugin.ParamSet { return p.params }

func (p *FakePlugin) Run(ctx context.Context, inputs []*table.Table) (*table.Table, error) {
	p.mu.Lock()
	p.calls++
	p.inputs = append(p.inputs, inputs)
	p.mu.Unlock()

	if p.Block != nil {
		select {
		case <-p.Block:
		case <-ctx.Done():
			return nil, ctx.Err()
		}
	}
	if p.Panic != "" {
		panic(p.Panic)
	}
	if p.Err != nil {
		return nil, p.Err
	}

	out := table.New("source")
	for _, in := range inputs {
		col, _ := in.Column("source")
		for _, v := range col {
			_ = out.Append(v)
		}
	}
	_ = out.Append(cty.StringVal(p.Tag))
	return out, nil
}

// Calls returns how many times Run was invoked.
func (p *FakePlugin) Calls() int {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.calls
}

// Inputs returns the inputs of every call.
func (p *FakePlugin) Inputs() [][]*table.Table {
	p.mu.Lock()
	defer p.mu.Unlock()
	return append([][]*table.Table(nil), p.inputs...)
}

// ProgressFakePlugin is a FakePlugin that also reports sub-progress.
type ProgressFakePlugin struct {
	*FakePlugin
}

func (p ProgressFakePlugin) RunWithProgress(ctx context.Context, inputs []*table.Table, progress plugin.ProgressFunc) (*table.Table, error) {
	for i := 1; i <= p.Steps; i++ {
		progress(i, 0, "tick")
	}
	return p.Run(ctx, inputs)
}

// Sources extracts the "source" column of a FakePlugin output.
func Sources(t *table.Table) []string {
	col, ok := t.Column("source")
	if !ok {
		return nil
	}
	out := make([]string, len(col))
	for i, v := range col {
		out[i] = v.AsString()
	}
	return out
}

// FakeModule registers "fake" and "fake_single" factories. Every created
// instance is appended to Created.
type FakeModule struct {
	mu      sync.Mutex
	Created []*FakePlugin
}

func (m *FakeModule) Register(c *plugin.Catalog) {
	c.Register("fake", func() plugin.Plugin { return m.track(NewFakePlugin("fake")) })
	c.Register("fake_single", func() plugin.Plugin {
		p := NewFakePlugin("fake_single")
		p.MaxInputs = 1
		return m.track(p)
	})
	c.Register("fake_broken", func() plugin.Plugin {
		p := NewFakePlugin("fake_broken")
		p.Err = ErrFake
		return m.track(p)
	})
}

func (m *FakeModule) track(p *FakePlugin) *FakePlugin {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.Created = append(m.Created, p)
	return p
}

// ErrFake is the error returned by "fake_broken" plugins.
var ErrFake = errors.New("fake failure")
