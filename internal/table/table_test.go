package table

import (
	"testing"

	"github.com/stretchr/testify/require"
	"github.com/zclconf/go-cty/cty"
	ctyjson "github.com/zclconf/go-cty/cty/json"
)

func sample(t *testing.T, n int) *Table {
	t.Helper()
	tbl := New("seq", "count")
	for i := 0; i < n; i++ {
		require.NoError(t, tbl.Append(cty.StringVal("AC"), cty.NumberIntVal(int64(i))))
	}
	return tbl
}

func TestAppend_RejectsWrongWidth(t *testing.T) {
	tbl := New("a", "b")
	require.Error(t, tbl.Append(cty.StringVal("only one")))
	require.Equal(t, 0, tbl.Len())
}

func TestCrop(t *testing.T) {
	tbl := sample(t, 5)

	cropped := tbl.Crop(2)
	require.Equal(t, 2, cropped.Len())
	require.Equal(t, 5, tbl.Len(), "the source table must be untouched")

	require.Equal(t, 5, tbl.Crop(0).Len())
	require.Nil(t, (*Table)(nil).Crop(3))
}

func TestConcat(t *testing.T) {
	t.Run("unions columns and fills gaps with null", func(t *testing.T) {
		a := New("seq", "count")
		require.NoError(t, a.Append(cty.StringVal("AC"), cty.NumberIntVal(1)))
		b := New("seq", "sample")
		require.NoError(t, b.Append(cty.StringVal("GT"), cty.StringVal("s1")))

		out := Concat(a, nil, b)

		require.Equal(t, []string{"seq", "count", "sample"}, out.Columns)
		require.Equal(t, 2, out.Len())
		require.True(t, out.Rows[0][2].IsNull())
		require.True(t, out.Rows[1][1].IsNull())
		require.Equal(t, "GT", out.Rows[1][0].AsString())
	})

	t.Run("no inputs gives an empty table", func(t *testing.T) {
		out := Concat()
		require.Empty(t, out.Columns)
		require.Equal(t, 0, out.Len())
	})
}

func TestColumn(t *testing.T) {
	tbl := sample(t, 3)
	col, ok := tbl.Column("count")
	require.True(t, ok)
	require.Len(t, col, 3)

	_, ok = tbl.Column("missing")
	require.False(t, ok)
}

func TestToCty_EncodesAsJSON(t *testing.T) {
	tbl := sample(t, 1)
	v := tbl.ToCty()

	raw, err := ctyjson.Marshal(v, v.Type())

	require.NoError(t, err)
	require.JSONEq(t, `[{"seq":"AC","count":0}]`, string(raw))
}
