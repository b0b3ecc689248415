package httpapi

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/gofiber/fiber/v3"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/vk/pipegraph/internal/configstore"
	"github.com/vk/pipegraph/internal/eventloop"
	"github.com/vk/pipegraph/internal/interaction"
	"github.com/vk/pipegraph/internal/plugin"
	"github.com/vk/pipegraph/internal/session"
	"github.com/vk/pipegraph/internal/testutil"
)

func newTestApp(t *testing.T, store configstore.Store) *fiber.App {
	t.Helper()
	logger, _ := testutil.NewLogger(t)
	loop := eventloop.New()
	ctx, cancel := context.WithCancel(context.Background())
	t.Cleanup(cancel)
	go func() { _ = loop.Run(ctx) }()

	s := session.New(ctx, session.Config{
		Loop:    loop,
		Catalog: plugin.NewCatalog(&testutil.FakeModule{}),
		Size:    interaction.Size{W: 630, H: 420},
		Store:   store,
		Logger:  logger,
	})
	return New(loop, s, logger)
}

func do(t *testing.T, app *fiber.App, method, target, body string) (int, string) {
	t.Helper()
	var r io.Reader
	if body != "" {
		r = strings.NewReader(body)
	}
	req := httptest.NewRequest(method, target, r)
	if body != "" {
		req.Header.Set("Content-Type", "application/json")
	}
	resp, err := app.Test(req)
	require.NoError(t, err)
	defer resp.Body.Close()
	out, err := io.ReadAll(resp.Body)
	require.NoError(t, err)
	return resp.StatusCode, string(out)
}

func TestHealth(t *testing.T) {
	app := newTestApp(t, nil)

	status, body := do(t, app, http.MethodGet, "/health", "")

	assert.Equal(t, http.StatusOK, status)
	assert.Equal(t, "OK", body)
}

func TestGraph(t *testing.T) {
	app := newTestApp(t, nil)

	status, body := do(t, app, http.MethodGet, "/graph", "")

	require.Equal(t, http.StatusOK, status)
	var v session.View
	require.NoError(t, json.Unmarshal([]byte(body), &v))
	require.Len(t, v.Nodes, 1)
	assert.Equal(t, "NEW 1", v.Nodes[0].Name)
	assert.Equal(t, "wide", v.Orientation)
}

func TestNodes(t *testing.T) {
	app := newTestApp(t, nil)

	t.Run("add", func(t *testing.T) {
		status, body := do(t, app, http.MethodPost, "/nodes", `{"x":0.75,"y":0.5}`)
		require.Equal(t, http.StatusCreated, status)
		assert.JSONEq(t, `{"id":2}`, body)
	})

	t.Run("add outside the canvas", func(t *testing.T) {
		status, _ := do(t, app, http.MethodPost, "/nodes", `{"x":1.5,"y":0.5}`)
		assert.Equal(t, http.StatusBadRequest, status)
	})

	t.Run("rename", func(t *testing.T) {
		status, _ := do(t, app, http.MethodPut, "/nodes/2/name", `{"name":"load"}`)
		require.Equal(t, http.StatusNoContent, status)
		_, body := do(t, app, http.MethodGet, "/nodes/2/panel", "")
		assert.Contains(t, body, `"name":"load"`)
	})

	t.Run("choose an unknown plugin", func(t *testing.T) {
		status, _ := do(t, app, http.MethodPut, "/nodes/2/plugin", `{"plugin":"nope"}`)
		assert.Equal(t, http.StatusUnprocessableEntity, status)
	})

	t.Run("choose a plugin and set parameters", func(t *testing.T) {
		status, _ := do(t, app, http.MethodPut, "/nodes/2/plugin", `{"plugin":"fake"}`)
		require.Equal(t, http.StatusNoContent, status)

		status, _ = do(t, app, http.MethodPut, "/nodes/2/params/note", `{"value":"hi"}`)
		assert.Equal(t, http.StatusNoContent, status)
		status, _ = do(t, app, http.MethodPut, "/nodes/2/params/missing", `{"value":"hi"}`)
		assert.Equal(t, http.StatusNotFound, status)
		status, _ = do(t, app, http.MethodPut, "/nodes/2/params/mode", `{"value":"median"}`)
		assert.Equal(t, http.StatusUnprocessableEntity, status)

		_, body := do(t, app, http.MethodGet, "/nodes/2/panel", "")
		var v session.PanelView
		require.NoError(t, json.Unmarshal([]byte(body), &v))
		assert.Equal(t, "fake", v.Plugin)
		require.NotEmpty(t, v.Fields)
		assert.Equal(t, "note", v.Fields[0].Key)
		assert.Equal(t, "hi", v.Fields[0].Value)
	})

	t.Run("typed param values", func(t *testing.T) {
		status, _ := do(t, app, http.MethodPut, "/nodes/2/params/note", `{"value":42}`)
		assert.Equal(t, http.StatusNoContent, status)
		_, body := do(t, app, http.MethodGet, "/nodes/2/panel", "")
		var v session.PanelView
		require.NoError(t, json.Unmarshal([]byte(body), &v))
		assert.Equal(t, "42", v.Fields[0].Value)

		status, _ = do(t, app, http.MethodPut, "/nodes/2/params/note", `{"value":["a","b"]}`)
		assert.Equal(t, http.StatusUnprocessableEntity, status)
		status, _ = do(t, app, http.MethodPut, "/nodes/2/params/note", `{}`)
		assert.Equal(t, http.StatusBadRequest, status)

		status, _ = do(t, app, http.MethodPut, "/nodes/2/params/note", `{"value":"hi"}`)
		assert.Equal(t, http.StatusNoContent, status)
	})

	t.Run("bad ids", func(t *testing.T) {
		status, _ := do(t, app, http.MethodDelete, "/nodes/abc", "")
		assert.Equal(t, http.StatusBadRequest, status)
		status, _ = do(t, app, http.MethodGet, "/nodes/99/panel", "")
		assert.Equal(t, http.StatusNotFound, status)
	})

	t.Run("ctrl delete keeps the node", func(t *testing.T) {
		status, _ := do(t, app, http.MethodDelete, "/nodes/2?ctrl=true", "")
		require.Equal(t, http.StatusNoContent, status)
		_, body := do(t, app, http.MethodGet, "/graph", "")
		assert.Contains(t, body, `"name":"load"`)
	})

	t.Run("delete", func(t *testing.T) {
		status, _ := do(t, app, http.MethodDelete, "/nodes/2", "")
		require.Equal(t, http.StatusNoContent, status)
		_, body := do(t, app, http.MethodGet, "/graph", "")
		assert.NotContains(t, body, `"name":"load"`)
	})
}

func TestPointer(t *testing.T) {
	app := newTestApp(t, nil)

	status, body := do(t, app, http.MethodPost, "/pointer", `{"kind":"release","x":1,"y":1}`)
	require.Equal(t, http.StatusOK, status)
	assert.Contains(t, body, `"outcome":"no_change"`)

	status, _ = do(t, app, http.MethodPost, "/pointer", `{"kind":"wheel","x":1,"y":1}`)
	assert.Equal(t, http.StatusBadRequest, status)
}

func TestPointer_RepeatedPressIsNotWedged(t *testing.T) {
	// --- Arrange ---
	app := newTestApp(t, nil)
	_, body := do(t, app, http.MethodGet, "/graph", "")
	var v session.View
	require.NoError(t, json.Unmarshal([]byte(body), &v))
	box := v.Nodes[0].Box
	press := fmt.Sprintf(`{"kind":"press","x":%g,"y":%g}`, box.X+box.W/2, box.Y+box.H/2)

	// --- Act ---
	first, _ := do(t, app, http.MethodPost, "/pointer", press)
	second, _ := do(t, app, http.MethodPost, "/pointer", press)
	cancel, _ := do(t, app, http.MethodPost, "/pointer", `{"kind":"cancel"}`)

	// --- Assert ---
	assert.Equal(t, http.StatusOK, first)
	assert.Equal(t, http.StatusOK, second, "a press without a release must not block the next one")
	assert.Equal(t, http.StatusOK, cancel)
}

func TestResize(t *testing.T) {
	app := newTestApp(t, nil)

	status, body := do(t, app, http.MethodPost, "/resize", `{"w":300,"h":900}`)
	require.Equal(t, http.StatusOK, status)
	assert.JSONEq(t, `{"flipped":true}`, body)

	status, _ = do(t, app, http.MethodPost, "/resize", `{"w":0,"h":900}`)
	assert.Equal(t, http.StatusBadRequest, status)
}

func TestRunAndReset(t *testing.T) {
	app := newTestApp(t, nil)

	status, _ := do(t, app, http.MethodPost, "/run", "")
	assert.Contains(t, []int{http.StatusAccepted, http.StatusConflict}, status)

	status, _ = do(t, app, http.MethodPost, "/reset", "")
	assert.Equal(t, http.StatusNoContent, status)
}

func TestConfigs(t *testing.T) {
	t.Run("without a store", func(t *testing.T) {
		app := newTestApp(t, nil)
		status, _ := do(t, app, http.MethodGet, "/configs", "")
		assert.Equal(t, http.StatusNotImplemented, status)
	})

	t.Run("save list load", func(t *testing.T) {
		app := newTestApp(t, configstore.NewFSStore(t.TempDir()))

		status, body := do(t, app, http.MethodGet, "/configs", "")
		require.Equal(t, http.StatusOK, status)
		assert.JSONEq(t, `[]`, body)

		status, _ = do(t, app, http.MethodPost, "/configs/demo/save", "")
		require.Equal(t, http.StatusNoContent, status)
		_, body = do(t, app, http.MethodGet, "/configs", "")
		assert.JSONEq(t, `["demo"]`, body)

		status, _ = do(t, app, http.MethodPost, "/configs/demo/load", "")
		assert.Equal(t, http.StatusNoContent, status)
		status, _ = do(t, app, http.MethodPost, "/configs/other/load", "")
		assert.Equal(t, http.StatusNotFound, status)
	})
}

func TestExportDot(t *testing.T) {
	app := newTestApp(t, nil)

	req := httptest.NewRequest(http.MethodGet, "/export.dot", nil)
	resp, err := app.Test(req)
	require.NoError(t, err)
	defer resp.Body.Close()
	body, err := io.ReadAll(resp.Body)
	require.NoError(t, err)

	assert.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Equal(t, "text/vnd.graphviz", resp.Header.Get("Content-Type"))
	assert.Contains(t, string(body), "digraph")
}
