package session

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"time"

	"github.com/vk/pipegraph/internal/configfile"
	"github.com/vk/pipegraph/internal/configpanel"
	"github.com/vk/pipegraph/internal/configstore"
	"github.com/vk/pipegraph/internal/ctxlog"
	"github.com/vk/pipegraph/internal/dataflow"
	"github.com/vk/pipegraph/internal/engine"
	"github.com/vk/pipegraph/internal/eventloop"
	"github.com/vk/pipegraph/internal/export"
	"github.com/vk/pipegraph/internal/interaction"
	"github.com/vk/pipegraph/internal/plugin"
	"github.com/vk/pipegraph/internal/progress"
)

// ErrNoStore is returned by the configuration methods when the session was
// built without a store.
var ErrNoStore = errors.New("no configuration store")

// StartPosition is where "config new" places its single node.
var StartPosition = dataflow.Position{X: 0.25, Y: 0.5}

// Loop is the part of eventloop.Loop a session schedules work on.
type Loop interface {
	eventloop.Poster
	After(d time.Duration, f func()) *time.Timer
}

// Config holds a session's collaborators.
type Config struct {
	Loop    Loop
	Catalog *plugin.Catalog
	Size    interaction.Size
	// Store may be nil; Save, Load and List then return ErrNoStore.
	Store configstore.Store
	// Observer receives run progress in addition to the session's own status.
	Observer progress.Observer
	Policy   interaction.DirectionPolicy
	Logger   *slog.Logger
}

// Session is one open editor.
type Session struct {
	ctx     context.Context
	loop    Loop
	catalog *plugin.Catalog
	store   configstore.Store
	logger  *slog.Logger

	graph  *dataflow.Graph
	canvas *interaction.Canvas
	panel  *configpanel.Panel

	runner   *engine.Runner
	observer progress.Observer
	status   RunStatus
	queued   dataflow.NodeID

	hold    *time.Timer
	holdSeq uint64
}

// New creates a session holding a fresh "config new" graph. ctx is used for
// every run the session starts.
func New(ctx context.Context, cfg Config) *Session {
	logger := cfg.Logger
	if logger == nil {
		logger = ctxlog.FromContext(ctx)
	}
	s := &Session{
		ctx:     ctxlog.WithLogger(ctx, logger),
		loop:    cfg.Loop,
		catalog: cfg.Catalog,
		store:   cfg.Store,
		logger:  logger,
		runner:  engine.NewRunner(cfg.Loop),
	}

	track := progress.Func{
		OnProgress: func(current, total int, label string) {
			s.status.Current, s.status.Total, s.status.Label = current, total, label
		},
	}
	s.observer = progress.Multi(track, cfg.Observer)

	opts := []interaction.Option{
		interaction.WithLogger(logger),
		interaction.WithSelectHook(s.openPanel),
	}
	if cfg.Policy != nil {
		opts = append(opts, interaction.WithDirectionPolicy(cfg.Policy))
	}
	s.graph = newGraph()
	s.canvas = interaction.NewCanvas(s.graph, cfg.Size, opts...)
	return s
}

func newGraph() *dataflow.Graph {
	g := dataflow.New()
	g.Add(g.NextName(), StartPosition)
	return g
}

// Graph returns the edited graph.
func (s *Session) Graph() *dataflow.Graph { return s.graph }

// Canvas returns the layout of the edited graph.
func (s *Session) Canvas() *interaction.Canvas { return s.canvas }

// Reset discards the current graph and starts over with a single node.
func (s *Session) Reset() {
	s.replace(newGraph())
	s.logger.Info("Started new configuration.")
}

func (s *Session) replace(g *dataflow.Graph) {
	s.stopHold()
	s.graph = g
	s.canvas.SetGraph(g)
	s.panel = nil
	s.queued = 0
}

// AddNode creates a "NEW n" node at pos and selects it.
func (s *Session) AddNode(pos dataflow.Position) dataflow.NodeID {
	return s.canvas.AddNode(pos).ID()
}

// Select selects id, which opens its panel and recomputes it.
func (s *Session) Select(id dataflow.NodeID) error {
	if _, ok := s.graph.Node(id); !ok {
		return fmt.Errorf("%w: %d", dataflow.ErrNodeNotFound, id)
	}
	s.canvas.Select(id)
	return nil
}

// Resize tells the canvas about a new container size.
func (s *Session) Resize(size interaction.Size) bool {
	return s.canvas.Resize(size)
}

// Delete removes or detaches id depending on mods.
func (s *Session) Delete(id dataflow.NodeID, mods interaction.Modifiers) error {
	if err := s.canvas.Delete(id, mods); err != nil {
		return err
	}
	if s.panel != nil && s.panel.NodeID() == id && mods&interaction.ModCtrl == 0 {
		s.panel = nil
	}
	return nil
}

// Run starts a background run of every dirty node.
func (s *Session) Run() error {
	return s.start()
}

// Running reports whether a background run is in flight.
func (s *Session) Running() bool { return s.runner.Running() }

// Status returns the latest run progress.
func (s *Session) Status() RunStatus {
	st := s.status
	st.Running = s.runner.Running()
	return st
}

func (s *Session) start(targets ...dataflow.NodeID) error {
	s.status = RunStatus{}
	err := s.runner.Start(s.ctx, s.graph, s.observer, s.finished, targets...)
	if err != nil {
		return err
	}
	s.logger.Debug("Run started.", "targets", len(targets))
	return nil
}

func (s *Session) finished(sum engine.Summary) {
	s.status.Invoked, s.status.Failed, s.status.Skipped = sum.Invoked, sum.Failed, sum.Skipped
	if sum.Err != nil {
		s.status.Error = sum.Err.Error()
	}
	if id := s.queued; id != 0 {
		s.queued = 0
		s.prerun(id)
	}
}

// prerun recomputes id and its ancestors. A request made while another run
// is in flight is kept and started when that run finishes.
func (s *Session) prerun(id dataflow.NodeID) {
	if _, ok := s.graph.Node(id); !ok {
		return
	}
	err := s.start(id)
	if errors.Is(err, engine.ErrRunInProgress) {
		s.queued = id
		return
	}
	if err != nil {
		s.logger.Error("Prerun failed to start.", "node", id, "error", err)
	}
}

func (s *Session) openPanel(id dataflow.NodeID) {
	p, err := configpanel.Open(s.graph, id, s.catalog, s.prerun)
	if err != nil {
		s.logger.Warn("Cannot open panel.", "node", id, "error", err)
		return
	}
	s.panel = p
	s.prerun(id)
}

// Save stores the current graph under name.
func (s *Session) Save(ctx context.Context, name string) error {
	if s.store == nil {
		return ErrNoStore
	}
	if err := s.store.Save(ctx, name, configfile.Encode(s.graph)); err != nil {
		return err
	}
	s.logger.Info("Configuration saved.", "name", name, "nodes", s.graph.Len())
	return nil
}

// Load replaces the current graph with the stored configuration name.
func (s *Session) Load(ctx context.Context, name string) error {
	if s.store == nil {
		return ErrNoStore
	}
	body, err := s.store.Load(ctx, name)
	if err != nil {
		return err
	}
	g, err := configfile.Parse(body, name+".hcl", s.catalog)
	if err != nil {
		return err
	}
	s.replace(g)
	s.logger.Info("Configuration loaded.", "name", name, "nodes", g.Len())
	return nil
}

// List returns the stored configuration names.
func (s *Session) List(ctx context.Context) ([]string, error) {
	if s.store == nil {
		return nil, ErrNoStore
	}
	return s.store.List(ctx)
}

// Export writes the graph topology as Graphviz DOT.
func (s *Session) Export(w io.Writer) error {
	return export.WriteGraphviz(w, s.graph)
}
