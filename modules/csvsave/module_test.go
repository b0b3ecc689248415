package csvsave

import (
	"context"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/vk/pipegraph/internal/table"
	"github.com/zclconf/go-cty/cty"
)

func TestSaver_Run(t *testing.T) {
	// --- Arrange ---
	path := filepath.Join(t.TempDir(), "out.csv")
	in := table.New("seq", "count")
	require.NoError(t, in.Append(cty.StringVal("AAA"), cty.NumberIntVal(3)))
	require.NoError(t, in.Append(cty.StringVal("C,C"), cty.NullVal(cty.Number)))
	s := New()
	require.NoError(t, s.Params().SetString("path", path))

	// --- Act ---
	out, err := s.Run(context.Background(), []*table.Table{in})

	// --- Assert ---
	require.NoError(t, err)
	assert.Same(t, in, out, "the input is passed through")
	data, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.Equal(t, "seq,count\nAAA,3\n\"C,C\",\n", string(data))
}

func TestSaver_Metadata(t *testing.T) {
	assert.Equal(t, 1, New().Metadata().MaxInputs)
}

func TestSaver_RunErrors(t *testing.T) {
	t.Run("no path", func(t *testing.T) {
		_, err := New().Run(context.Background(), []*table.Table{table.New("a")})
		require.ErrorContains(t, err, "no output file")
	})

	t.Run("no input", func(t *testing.T) {
		s := New()
		require.NoError(t, s.Params().SetString("path", filepath.Join(t.TempDir(), "x.csv")))
		_, err := s.Run(context.Background(), nil)
		require.ErrorContains(t, err, "no input")
	})

	t.Run("unwritable path", func(t *testing.T) {
		s := New()
		require.NoError(t, s.Params().SetString("path", filepath.Join(t.TempDir(), "missing", "x.csv")))
		_, err := s.Run(context.Background(), []*table.Table{table.New("a")})
		require.ErrorContains(t, err, "failed to create")
	})

	t.Run("delimiter must be a known choice", func(t *testing.T) {
		require.Error(t, New().Params().SetString("delimiter", "#"))
	})
}
