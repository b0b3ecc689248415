package session

import "github.com/vk/pipegraph/internal/interaction"

// RunStatus is the progress of the latest run.
type RunStatus struct {
	Running bool   `json:"running"`
	Current int    `json:"current"`
	Total   int    `json:"total"`
	Label   string `json:"label,omitempty"`
	Invoked int    `json:"invoked"`
	Failed  int    `json:"failed"`
	Skipped int    `json:"skipped"`
	Error   string `json:"error,omitempty"`
}

// View is a render-ready snapshot of the editor.
type View struct {
	Width       float64    `json:"width"`
	Height      float64    `json:"height"`
	Orientation string     `json:"orientation"`
	Selected    int        `json:"selected,omitempty"`
	Nodes       []NodeView `json:"nodes"`
	Edges       []EdgeView `json:"edges"`
	Lines       []LineView `json:"lines"`
	Ghost       *RectView  `json:"ghost,omitempty"`
	Status      RunStatus  `json:"status"`
}

// NodeView is one node box.
type NodeView struct {
	ID     int      `json:"id"`
	Name   string   `json:"name"`
	Plugin string   `json:"plugin,omitempty"`
	State  string   `json:"state"`
	Mode   string   `json:"mode"`
	X      float64  `json:"x"`
	Y      float64  `json:"y"`
	Box    RectView `json:"box"`
}

// EdgeView is a parent to child dependency.
type EdgeView struct {
	Parent int `json:"parent"`
	Child  int `json:"child"`
}

// LineView is a connector polyline in pixels.
type LineView struct {
	Parent int           `json:"parent"`
	Child  int           `json:"child,omitempty"`
	Ghost  bool          `json:"ghost,omitempty"`
	Points [3][2]float64 `json:"points"`
}

// RectView is a pixel box.
type RectView struct {
	X float64 `json:"x"`
	Y float64 `json:"y"`
	W float64 `json:"w"`
	H float64 `json:"h"`
}

func rectView(r interaction.Rect) RectView {
	return RectView{X: r.X, Y: r.Y, W: r.W, H: r.H}
}

// View snapshots the graph and its layout.
func (s *Session) View() View {
	size := s.canvas.Size()
	v := View{
		Width:       size.W,
		Height:      size.H,
		Orientation: s.canvas.Orientation().String(),
		Selected:    int(s.canvas.Selected()),
		Nodes:       []NodeView{},
		Edges:       []EdgeView{},
		Lines:       []LineView{},
		Status:      s.Status(),
	}

	for _, n := range s.graph.Nodes() {
		box, _ := s.canvas.NodeRect(n.ID())
		v.Nodes = append(v.Nodes, NodeView{
			ID:     int(n.ID()),
			Name:   n.Name,
			Plugin: n.PluginID(),
			State:  n.State().String(),
			Mode:   s.canvas.Mode(n.ID()).String(),
			X:      n.Position.X,
			Y:      n.Position.Y,
			Box:    rectView(box),
		})
	}
	for _, e := range s.graph.Edges() {
		v.Edges = append(v.Edges, EdgeView{Parent: int(e.Parent), Child: int(e.Child)})
	}
	for _, l := range s.canvas.Lines() {
		lv := LineView{Parent: int(l.Parent), Child: int(l.Child), Ghost: l.Ghost}
		for i, p := range l.Points {
			lv.Points[i] = [2]float64{p.X, p.Y}
		}
		v.Lines = append(v.Lines, lv)
	}
	if r, ok := s.canvas.GhostRect(); ok {
		rv := rectView(r)
		v.Ghost = &rv
	}
	return v
}
