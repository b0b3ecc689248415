package httpapi

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"log/slog"
	"strconv"

	"github.com/gofiber/fiber/v3"
	"github.com/vk/pipegraph/internal/configstore"
	"github.com/vk/pipegraph/internal/dataflow"
	"github.com/vk/pipegraph/internal/engine"
	"github.com/vk/pipegraph/internal/interaction"
	"github.com/vk/pipegraph/internal/plugin"
	"github.com/vk/pipegraph/internal/session"
)

// Caller runs f on the goroutine that owns the session.
type Caller interface {
	Call(ctx context.Context, f func()) error
}

type server struct {
	loop    Caller
	session *session.Session
	logger  *slog.Logger
}

// New builds the fiber app serving s.
func New(loop Caller, s *session.Session, logger *slog.Logger) *fiber.App {
	srv := &server{loop: loop, session: s, logger: logger}
	app := fiber.New(fiber.Config{AppName: "pipegraph", Immutable: true})

	app.Get("/health", srv.health)
	app.Get("/graph", srv.graph)
	app.Post("/pointer", srv.pointer)
	app.Post("/resize", srv.resize)
	app.Post("/reset", srv.reset)

	app.Post("/nodes", srv.addNode)
	app.Delete("/nodes/:id", srv.deleteNode)
	app.Get("/nodes/:id/panel", srv.panel)
	app.Put("/nodes/:id/name", srv.rename)
	app.Put("/nodes/:id/plugin", srv.choosePlugin)
	app.Put("/nodes/:id/params/:key", srv.setParam)

	app.Post("/run", srv.run)
	app.Get("/plugins", srv.plugins)

	app.Get("/configs", srv.listConfigs)
	app.Post("/configs/:name/save", srv.saveConfig)
	app.Post("/configs/:name/load", srv.loadConfig)
	app.Get("/export.dot", srv.exportDot)
	return app
}

// do runs f on the session loop. It fails only when the request is gone
// before the loop got to f.
func (s *server) do(c fiber.Ctx, f func()) error {
	return s.loop.Call(c.Context(), f)
}

func unavailable(c fiber.Ctx, err error) error {
	return c.Status(fiber.StatusServiceUnavailable).JSON(fiber.Map{"error": err.Error()})
}

func badRequest(c fiber.Ctx, msg string) error {
	return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": msg})
}

// fail maps session errors onto HTTP statuses.
func (s *server) fail(c fiber.Ctx, err error) error {
	status := fiber.StatusInternalServerError
	switch {
	case errors.Is(err, session.ErrInvalidEvent):
		status = fiber.StatusBadRequest
	case errors.Is(err, dataflow.ErrNodeNotFound),
		errors.Is(err, configstore.ErrNotFound),
		errors.Is(err, plugin.ErrUnknownParam):
		status = fiber.StatusNotFound
	case errors.Is(err, configstore.ErrInvalidName),
		errors.Is(err, plugin.ErrUnknownPlugin),
		errors.Is(err, plugin.ErrInvalidValue),
		errors.Is(err, plugin.ErrInvalidChoice),
		errors.Is(err, dataflow.ErrCycle):
		status = fiber.StatusUnprocessableEntity
	case errors.Is(err, engine.ErrRunInProgress),
		errors.Is(err, interaction.ErrGestureActive):
		status = fiber.StatusConflict
	case errors.Is(err, session.ErrNoStore):
		status = fiber.StatusNotImplemented
	}
	if status == fiber.StatusInternalServerError {
		s.logger.Error("Request failed.", "path", c.Path(), "error", err)
	}
	return c.Status(status).JSON(fiber.Map{"error": err.Error()})
}

func nodeID(c fiber.Ctx) (dataflow.NodeID, bool) {
	id, err := strconv.Atoi(c.Params("id"))
	if err != nil || id <= 0 {
		return 0, false
	}
	return dataflow.NodeID(id), true
}

func (s *server) health(c fiber.Ctx) error {
	return c.SendString("OK")
}

func (s *server) graph(c fiber.Ctx) error {
	var v session.View
	if err := s.do(c, func() { v = s.session.View() }); err != nil {
		return unavailable(c, err)
	}
	return c.JSON(v)
}

func (s *server) pointer(c fiber.Ctx) error {
	var ev session.PointerEvent
	if err := c.Bind().JSON(&ev); err != nil {
		return badRequest(c, "invalid body")
	}
	var res interaction.ReleaseResult
	var opErr error
	if err := s.do(c, func() { res, opErr = s.session.Pointer(ev) }); err != nil {
		return unavailable(c, err)
	}
	if opErr != nil {
		return s.fail(c, opErr)
	}
	return c.JSON(fiber.Map{
		"outcome": res.Outcome.String(),
		"parent":  res.Parent,
		"child":   res.Child,
		"created": res.Created,
	})
}

type sizeRequest struct {
	W float64 `json:"w"`
	H float64 `json:"h"`
}

func (s *server) resize(c fiber.Ctx) error {
	var req sizeRequest
	if err := c.Bind().JSON(&req); err != nil || req.W <= 0 || req.H <= 0 {
		return badRequest(c, "invalid body")
	}
	var flipped bool
	if err := s.do(c, func() { flipped = s.session.Resize(interaction.Size{W: req.W, H: req.H}) }); err != nil {
		return unavailable(c, err)
	}
	return c.JSON(fiber.Map{"flipped": flipped})
}

func (s *server) reset(c fiber.Ctx) error {
	if err := s.do(c, s.session.Reset); err != nil {
		return unavailable(c, err)
	}
	return c.SendStatus(fiber.StatusNoContent)
}

type positionRequest struct {
	X float64 `json:"x"`
	Y float64 `json:"y"`
}

func (s *server) addNode(c fiber.Ctx) error {
	var req positionRequest
	if err := c.Bind().JSON(&req); err != nil || req.X < 0 || req.X > 1 || req.Y < 0 || req.Y > 1 {
		return badRequest(c, "position must lie in [0,1]")
	}
	var id dataflow.NodeID
	if err := s.do(c, func() { id = s.session.AddNode(dataflow.Position{X: req.X, Y: req.Y}) }); err != nil {
		return unavailable(c, err)
	}
	return c.Status(fiber.StatusCreated).JSON(fiber.Map{"id": id})
}

func (s *server) deleteNode(c fiber.Ctx) error {
	id, ok := nodeID(c)
	if !ok {
		return badRequest(c, "invalid node id")
	}
	var opErr error
	var mods interaction.Modifiers
	if b, _ := strconv.ParseBool(c.Query("shift", "false")); b {
		mods |= interaction.ModShift
	}
	if b, _ := strconv.ParseBool(c.Query("ctrl", "false")); b {
		mods |= interaction.ModCtrl
	}
	if err := s.do(c, func() { opErr = s.session.Delete(id, mods) }); err != nil {
		return unavailable(c, err)
	}
	if opErr != nil {
		return s.fail(c, opErr)
	}
	return c.SendStatus(fiber.StatusNoContent)
}

func (s *server) panel(c fiber.Ctx) error {
	id, ok := nodeID(c)
	if !ok {
		return badRequest(c, "invalid node id")
	}
	var opErr error
	var v session.PanelView
	if err := s.do(c, func() { v, opErr = s.session.Panel(id) }); err != nil {
		return unavailable(c, err)
	}
	if opErr != nil {
		return s.fail(c, opErr)
	}
	return c.JSON(v)
}

func (s *server) rename(c fiber.Ctx) error {
	id, ok := nodeID(c)
	if !ok {
		return badRequest(c, "invalid node id")
	}
	var opErr error
	var req struct {
		Name string `json:"name"`
	}
	if err := c.Bind().JSON(&req); err != nil {
		return badRequest(c, "invalid body")
	}
	if err := s.do(c, func() { opErr = s.session.Rename(id, req.Name) }); err != nil {
		return unavailable(c, err)
	}
	if opErr != nil {
		return s.fail(c, opErr)
	}
	return c.SendStatus(fiber.StatusNoContent)
}

func (s *server) choosePlugin(c fiber.Ctx) error {
	id, ok := nodeID(c)
	if !ok {
		return badRequest(c, "invalid node id")
	}
	var opErr error
	var req struct {
		Plugin string `json:"plugin"`
	}
	if err := c.Bind().JSON(&req); err != nil || req.Plugin == "" {
		return badRequest(c, "invalid body")
	}
	if err := s.do(c, func() { opErr = s.session.ChoosePlugin(id, req.Plugin) }); err != nil {
		return unavailable(c, err)
	}
	if opErr != nil {
		return s.fail(c, opErr)
	}
	return c.SendStatus(fiber.StatusNoContent)
}

func (s *server) setParam(c fiber.Ctx) error {
	id, ok := nodeID(c)
	if !ok {
		return badRequest(c, "invalid node id")
	}
	var opErr error
	var req struct {
		Value json.RawMessage `json:"value"`
	}
	if err := c.Bind().JSON(&req); err != nil || len(req.Value) == 0 {
		return badRequest(c, "invalid body")
	}
	key := c.Params("key")
	// Strings are form text; any other JSON value is already typed.
	set := func() { opErr = s.session.SetParamJSON(id, key, req.Value) }
	var text string
	if json.Unmarshal(req.Value, &text) == nil {
		set = func() { opErr = s.session.SetParam(id, key, text) }
	}
	if err := s.do(c, set); err != nil {
		return unavailable(c, err)
	}
	if opErr != nil {
		return s.fail(c, opErr)
	}
	return c.SendStatus(fiber.StatusNoContent)
}

func (s *server) run(c fiber.Ctx) error {
	var opErr error
	if err := s.do(c, func() { opErr = s.session.Run() }); err != nil {
		return unavailable(c, err)
	}
	if opErr != nil {
		return s.fail(c, opErr)
	}
	return c.SendStatus(fiber.StatusAccepted)
}

func (s *server) plugins(c fiber.Ctx) error {
	var out []session.PluginChoice
	if err := s.do(c, func() {
		for _, e := range s.session.Plugins() {
			out = append(out, session.PluginChoice{ID: e.ID, Title: e.Metadata.Title, Description: e.Metadata.Description})
		}
	}); err != nil {
		return unavailable(c, err)
	}
	return c.JSON(out)
}

func (s *server) listConfigs(c fiber.Ctx) error {
	ctx := c.Context()
	var names []string
	var opErr error
	if err := s.do(c, func() { names, opErr = s.session.List(ctx) }); err != nil {
		return unavailable(c, err)
	}
	if opErr != nil {
		return s.fail(c, opErr)
	}
	if names == nil {
		names = []string{}
	}
	return c.JSON(names)
}

func (s *server) saveConfig(c fiber.Ctx) error {
	ctx, name := c.Context(), c.Params("name")
	var opErr error
	if err := s.do(c, func() { opErr = s.session.Save(ctx, name) }); err != nil {
		return unavailable(c, err)
	}
	if opErr != nil {
		return s.fail(c, opErr)
	}
	return c.SendStatus(fiber.StatusNoContent)
}

func (s *server) loadConfig(c fiber.Ctx) error {
	ctx, name := c.Context(), c.Params("name")
	var opErr error
	if err := s.do(c, func() { opErr = s.session.Load(ctx, name) }); err != nil {
		return unavailable(c, err)
	}
	if opErr != nil {
		return s.fail(c, opErr)
	}
	return c.SendStatus(fiber.StatusNoContent)
}

func (s *server) exportDot(c fiber.Ctx) error {
	var buf bytes.Buffer
	var opErr error
	if err := s.do(c, func() { opErr = s.session.Export(&buf) }); err != nil {
		return unavailable(c, err)
	}
	if opErr != nil {
		return s.fail(c, opErr)
	}
	c.Set(fiber.HeaderContentType, "text/vnd.graphviz")
	return c.Send(buf.Bytes())
}
