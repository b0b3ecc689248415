package plugin

import (
	"context"
	"testing"

	"github.com/stretchr/testify/require"
	"github.com/vk/pipegraph/internal/table"
)

type stubPlugin struct{ name string }

func (p *stubPlugin) Metadata() Metadata { return Metadata{Name: p.name, Title: "Stub " + p.name} }
func (p *stubPlugin) Params() *ParamSet  { return NewParamSet() }
func (p *stubPlugin) Run(context.Context, []*table.Table) (*table.Table, error) {
	return table.New(), nil
}

type stubModule struct{}

func (stubModule) Register(c *Catalog) {
	c.Register("zeta", func() Plugin { return &stubPlugin{name: "zeta"} })
	c.Register("alpha", func() Plugin { return &stubPlugin{name: "alpha"} })
}

func TestCatalog(t *testing.T) {
	c := NewCatalog(stubModule{})

	t.Run("entries are sorted by id", func(t *testing.T) {
		entries := c.Entries()
		require.Len(t, entries, 2)
		require.Equal(t, "alpha", entries[0].ID)
		require.Equal(t, "Stub zeta", entries[1].Metadata.Title)
	})

	t.Run("new returns fresh instances", func(t *testing.T) {
		a, err := c.New("alpha")
		require.NoError(t, err)
		b, err := c.New("alpha")
		require.NoError(t, err)
		require.NotSame(t, a, b)
		require.True(t, c.Has("alpha"))
	})

	t.Run("unknown id", func(t *testing.T) {
		_, err := c.New("missing")
		require.ErrorIs(t, err, ErrUnknownPlugin)
	})

	t.Run("duplicate registration panics", func(t *testing.T) {
		require.Panics(t, func() { NewCatalog(stubModule{}, stubModule{}) })
	})
}
