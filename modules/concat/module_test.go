package concat

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/vk/pipegraph/internal/plugin"
	"github.com/vk/pipegraph/internal/table"
	"github.com/zclconf/go-cty/cty"
)

func TestConcat_Run(t *testing.T) {
	// --- Arrange ---
	c := plugin.NewCatalog(&Module{})
	p, err := c.New(ID)
	require.NoError(t, err)

	a := table.New("x")
	require.NoError(t, a.Append(cty.StringVal("1")))
	b := table.New("y", "x")
	require.NoError(t, b.Append(cty.StringVal("2"), cty.StringVal("3")))

	// --- Act ---
	out, err := p.Run(context.Background(), []*table.Table{a, b})

	// --- Assert ---
	require.NoError(t, err)
	assert.Equal(t, []string{"x", "y"}, out.Columns)
	assert.Equal(t, [][]cty.Value{
		{cty.StringVal("1"), cty.NullVal(cty.String)},
		{cty.StringVal("3"), cty.StringVal("2")},
	}, out.Rows)
	assert.Zero(t, p.Metadata().MaxInputs)
}
