package regextool

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/vk/pipegraph/internal/table"
	"github.com/zclconf/go-cty/cty"
)

func input(t *testing.T) *table.Table {
	t.Helper()
	in := table.New("id", "variant")
	require.NoError(t, in.Append(cty.StringVal("1"), cty.StringVal("A12G")))
	require.NoError(t, in.Append(cty.StringVal("2"), cty.StringVal("C7T")))
	require.NoError(t, in.Append(cty.StringVal("3"), cty.StringVal("junk")))
	return in
}

func values(t *testing.T, tbl *table.Table, column string) []string {
	t.Helper()
	col, ok := tbl.Column(column)
	require.True(t, ok, "column %s", column)
	out := make([]string, len(col))
	for i, v := range col {
		if !v.IsNull() {
			out[i] = v.AsString()
		}
	}
	return out
}

func TestTool_Run(t *testing.T) {
	t.Run("groups become columns", func(t *testing.T) {
		// --- Arrange ---
		tool := New()
		require.NoError(t, tool.Params().SetString("column", "variant"))
		require.NoError(t, tool.Params().SetString("regex", `([ACGT])(\d+)([ACGT])`))
		require.NoError(t, tool.Params().SetString("output", "ref, pos"))

		// --- Act ---
		out, err := tool.Run(context.Background(), []*table.Table{input(t)})

		// --- Assert ---
		require.NoError(t, err)
		assert.Equal(t, []string{"id", "variant", "ref", "pos", "column_3"}, out.Columns)
		assert.Equal(t, []string{"A", "C", ""}, values(t, out, "ref"))
		assert.Equal(t, []string{"12", "7", ""}, values(t, out, "pos"))
		assert.Equal(t, []string{"G", "T", ""}, values(t, out, "column_3"))
		col, _ := out.Column("ref")
		assert.True(t, col[2].IsNull(), "a row that does not match gets nulls")
	})

	t.Run("the match is anchored at the start", func(t *testing.T) {
		tool := New()
		require.NoError(t, tool.Params().SetString("column", "variant"))
		require.NoError(t, tool.Params().SetString("regex", `(\d+)`))

		out, err := tool.Run(context.Background(), []*table.Table{input(t)})

		require.NoError(t, err)
		assert.Equal(t, []string{"", "", ""}, values(t, out, "column_1"))
	})

	t.Run("drop column", func(t *testing.T) {
		tool := New()
		require.NoError(t, tool.Params().SetString("column", "variant"))
		require.NoError(t, tool.Params().SetString("regex", `(.)`))
		require.NoError(t, tool.Params().SetString("output", "first"))
		require.NoError(t, tool.Params().SetString("drop_column", "true"))

		out, err := tool.Run(context.Background(), []*table.Table{input(t)})

		require.NoError(t, err)
		assert.Equal(t, []string{"id", "first"}, out.Columns)
		assert.Equal(t, []string{"A", "C", "j"}, values(t, out, "first"))
	})

	t.Run("an output named like an input column replaces it", func(t *testing.T) {
		tool := New()
		require.NoError(t, tool.Params().SetString("column", "variant"))
		require.NoError(t, tool.Params().SetString("regex", `[ACGT](\d+)`))
		require.NoError(t, tool.Params().SetString("output", "id"))

		out, err := tool.Run(context.Background(), []*table.Table{input(t)})

		require.NoError(t, err)
		assert.Equal(t, []string{"id", "variant"}, out.Columns)
		assert.Equal(t, []string{"12", "7", ""}, values(t, out, "id"))
	})

	t.Run("multiple inputs are concatenated", func(t *testing.T) {
		tool := New()
		require.NoError(t, tool.Params().SetString("column", "variant"))

		out, err := tool.Run(context.Background(), []*table.Table{input(t), input(t)})

		require.NoError(t, err)
		assert.Equal(t, 6, out.Len())
	})
}

func TestTool_RunErrors(t *testing.T) {
	testCases := []struct {
		name    string
		column  string
		regex   string
		wantErr string
	}{
		{name: "no column", column: "", regex: ".*", wantErr: "no input column"},
		{name: "missing column", column: "nope", regex: ".*", wantErr: "column 'nope' not found"},
		{name: "bad regex", column: "variant", regex: "(", wantErr: "invalid regular expression"},
	}
	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			tool := New()
			require.NoError(t, tool.Params().SetString("column", tc.column))
			require.NoError(t, tool.Params().SetString("regex", tc.regex))

			_, err := tool.Run(context.Background(), []*table.Table{input(t)})

			require.ErrorContains(t, err, tc.wantErr)
		})
	}
}
