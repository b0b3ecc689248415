package session

import (
	"encoding/json"
	"fmt"

	"github.com/vk/pipegraph/internal/configpanel"
	"github.com/vk/pipegraph/internal/dataflow"
	"github.com/vk/pipegraph/internal/plugin"
	"github.com/zclconf/go-cty/cty"
	ctyjson "github.com/zclconf/go-cty/cty/json"
)

// PanelView is the configuration panel of one node, ready to encode.
type PanelView struct {
	Node        dataflow.NodeID     `json:"node"`
	Name        string              `json:"name"`
	Plugin      string              `json:"plugin,omitempty"`
	Title       string              `json:"title,omitempty"`
	Description string              `json:"description,omitempty"`
	Choices     []PluginChoice      `json:"choices,omitempty"`
	Fields      []configpanel.Field `json:"fields,omitempty"`
	State       string              `json:"state"`
	Preview     PreviewView         `json:"preview"`
}

// PluginChoice is one entry of the plugin chooser.
type PluginChoice struct {
	ID          string `json:"id"`
	Title       string `json:"title"`
	Description string `json:"description,omitempty"`
}

// PreviewView is a node's output rows or failure text.
type PreviewView struct {
	Kind configpanel.PreviewKind `json:"kind"`
	Text string                  `json:"text,omitempty"`
	Rows json.RawMessage         `json:"rows,omitempty"`
}

// panelFor selects id if its panel is not the open one and returns the panel.
func (s *Session) panelFor(id dataflow.NodeID) (*configpanel.Panel, error) {
	if s.panel != nil && s.panel.NodeID() == id {
		if _, ok := s.graph.Node(id); ok {
			return s.panel, nil
		}
	}
	if err := s.Select(id); err != nil {
		return nil, err
	}
	return s.panel, nil
}

// Panel returns the configuration panel of id, opening it if needed.
func (s *Session) Panel(id dataflow.NodeID) (PanelView, error) {
	p, err := s.panelFor(id)
	if err != nil {
		return PanelView{}, err
	}
	n, _ := s.graph.Node(id)

	v := PanelView{
		Node:   id,
		Name:   p.Name(),
		Plugin: n.PluginID(),
		Fields: p.Form(),
		State:  n.State().String(),
	}
	if md, ok := p.Describe(); ok {
		v.Title, v.Description = md.Title, md.Description
	}
	for _, e := range p.Choices() {
		v.Choices = append(v.Choices, PluginChoice{ID: e.ID, Title: e.Metadata.Title, Description: e.Metadata.Description})
	}

	pv := p.Preview()
	v.Preview = PreviewView{Kind: pv.Kind, Text: pv.Text}
	if pv.Kind == configpanel.PreviewTable {
		rows, err := pv.JSON()
		if err != nil {
			return PanelView{}, err
		}
		v.Preview.Rows = rows
	}
	return v, nil
}

// Rename renames id.
func (s *Session) Rename(id dataflow.NodeID, name string) error {
	p, err := s.panelFor(id)
	if err != nil {
		return err
	}
	return p.Rename(name)
}

// ChoosePlugin attaches the catalog plugin pluginID to id.
func (s *Session) ChoosePlugin(id dataflow.NodeID, pluginID string) error {
	p, err := s.panelFor(id)
	if err != nil {
		return err
	}
	return p.ChoosePlugin(pluginID)
}

// SetParam assigns raw form input to a parameter of id's plugin.
func (s *Session) SetParam(id dataflow.NodeID, key, raw string) error {
	p, err := s.panelFor(id)
	if err != nil {
		return err
	}
	return p.SetParam(key, raw)
}

// SetParamJSON assigns a JSON encoded value to a parameter of id's plugin.
// The value is converted to the parameter's type; null resets it.
func (s *Session) SetParamJSON(id dataflow.NodeID, key string, raw json.RawMessage) error {
	v, err := decodeJSONValue(raw)
	if err != nil {
		return fmt.Errorf("parameter '%s': %w: %w", key, plugin.ErrInvalidValue, err)
	}
	p, err := s.panelFor(id)
	if err != nil {
		return err
	}
	return p.SetValue(key, v)
}

func decodeJSONValue(raw json.RawMessage) (cty.Value, error) {
	ty, err := ctyjson.ImpliedType(raw)
	if err != nil {
		return cty.NilVal, err
	}
	if ty == cty.DynamicPseudoType {
		return cty.NullVal(cty.DynamicPseudoType), nil
	}
	return ctyjson.Unmarshal(raw, ty)
}

// Plugins lists the catalog.
func (s *Session) Plugins() []plugin.Entry {
	return s.catalog.Entries()
}
