package plugin

import (
	"errors"
	"fmt"
	"strings"
	"sync"

	"github.com/zclconf/go-cty/cty"
	"github.com/zclconf/go-cty/cty/convert"
	"github.com/zclconf/go-cty/cty/gocty"
)

var (
	ErrUnknownParam  = errors.New("unknown parameter")
	ErrInvalidValue  = errors.New("invalid parameter value")
	ErrInvalidChoice = errors.New("value is not one of the allowed choices")
)

// Param is one entry of a plugin's parameter schema.
type Param struct {
	Key     string
	Label   string
	Type    cty.Type
	Default cty.Value
	Choices []cty.Value

	value cty.Value
}

// ParamSet is an ordered parameter schema together with the current values.
// Values may be read by a running worker while the editor assigns new ones.
type ParamSet struct {
	mu     sync.RWMutex
	params []*Param
	index  map[string]*Param
}

// NewParamSet builds a schema. Duplicate keys are a programming error.
func NewParamSet(params ...*Param) *ParamSet {
	s := &ParamSet{index: make(map[string]*Param, len(params))}
	for _, p := range params {
		if _, exists := s.index[p.Key]; exists {
			panic(fmt.Sprintf("parameter '%s' declared twice", p.Key))
		}
		if p.Type == cty.NilType {
			p.Type = cty.String
		}
		if p.Label == "" {
			p.Label = p.Key
		}
		p.value = cty.NilVal
		s.params = append(s.params, p)
		s.index[p.Key] = p
	}
	return s
}

// All returns the schema in declaration order.
func (s *ParamSet) All() []*Param {
	if s == nil {
		return nil
	}
	return s.params
}

// Get looks up a parameter by key.
func (s *ParamSet) Get(key string) (*Param, bool) {
	if s == nil {
		return nil, false
	}
	p, ok := s.index[key]
	return p, ok
}

// Value returns the current value of key, falling back to its default and
// then to a typed null.
func (s *ParamSet) Value(key string) cty.Value {
	p, ok := s.Get(key)
	if !ok {
		return cty.NullVal(cty.DynamicPseudoType)
	}
	s.mu.RLock()
	defer s.mu.RUnlock()
	return p.Current()
}

// Current returns the value the parameter would be run with.
func (p *Param) Current() cty.Value {
	if p.value != cty.NilVal {
		return p.value
	}
	if p.Default != cty.NilVal {
		return p.Default
	}
	return cty.NullVal(p.Type)
}

// IsSet reports whether a value was assigned explicitly.
func (p *Param) IsSet() bool {
	return p.value != cty.NilVal
}

// Set assigns v to key after converting it to the declared type. A null
// value resets the parameter to its default.
func (s *ParamSet) Set(key string, v cty.Value) error {
	p, ok := s.Get(key)
	if !ok {
		return fmt.Errorf("%w: %s", ErrUnknownParam, key)
	}
	if v.IsNull() {
		s.mu.Lock()
		p.value = cty.NilVal
		s.mu.Unlock()
		return nil
	}

	converted, err := convert.Convert(v, p.Type)
	if err != nil {
		return fmt.Errorf("parameter '%s': %w: %w", key, ErrInvalidValue, err)
	}
	if len(p.Choices) > 0 && !containsValue(p.Choices, converted) {
		return fmt.Errorf("parameter '%s': %w", key, ErrInvalidChoice)
	}
	s.mu.Lock()
	p.value = converted
	s.mu.Unlock()
	return nil
}

// SetString parses raw form input for key. List parameters take comma
// separated items; an empty string resets the parameter.
func (s *ParamSet) SetString(key, raw string) error {
	p, ok := s.Get(key)
	if !ok {
		return fmt.Errorf("%w: %s", ErrUnknownParam, key)
	}
	raw = strings.TrimSpace(raw)
	if raw == "" {
		return s.Set(key, cty.NullVal(p.Type))
	}
	if p.Type.IsListType() || p.Type.IsSetType() {
		var items []cty.Value
		for _, part := range strings.Split(raw, ",") {
			if part = strings.TrimSpace(part); part != "" {
				items = append(items, cty.StringVal(part))
			}
		}
		if len(items) == 0 {
			return s.Set(key, cty.NullVal(p.Type))
		}
		return s.Set(key, cty.TupleVal(items))
	}
	return s.Set(key, cty.StringVal(raw))
}

// String returns a string parameter, or "" when unset.
func (s *ParamSet) String(key string) string {
	var out string
	if v := s.Value(key); !v.IsNull() {
		if sv, err := convert.Convert(v, cty.String); err == nil {
			_ = gocty.FromCtyValue(sv, &out)
		}
	}
	return out
}

// Bool returns a boolean parameter, or false when unset.
func (s *ParamSet) Bool(key string) bool {
	var out bool
	if v := s.Value(key); !v.IsNull() && v.Type() == cty.Bool {
		_ = gocty.FromCtyValue(v, &out)
	}
	return out
}

// Number returns a numeric parameter, or 0 when unset.
func (s *ParamSet) Number(key string) float64 {
	if v := s.Value(key); !v.IsNull() && v.Type() == cty.Number {
		f, _ := v.AsBigFloat().Float64()
		return f
	}
	return 0
}

// Strings returns a list parameter, or nil when unset.
func (s *ParamSet) Strings(key string) []string {
	v := s.Value(key)
	if v.IsNull() || !v.CanIterateElements() {
		return nil
	}
	var out []string
	if err := gocty.FromCtyValue(v, &out); err != nil {
		return nil
	}
	return out
}

// Format renders a value the way forms display it.
func Format(v cty.Value) string {
	if v == cty.NilVal || v.IsNull() || !v.IsKnown() {
		return ""
	}
	switch {
	case v.Type() == cty.String:
		return v.AsString()
	case v.Type() == cty.Bool:
		if v.True() {
			return "true"
		}
		return "false"
	case v.Type() == cty.Number:
		return v.AsBigFloat().Text('g', -1)
	case v.CanIterateElements():
		var parts []string
		for it := v.ElementIterator(); it.Next(); {
			_, el := it.Element()
			parts = append(parts, Format(el))
		}
		return strings.Join(parts, ", ")
	}
	return v.GoString()
}

// TypeName is the friendly name of a parameter type.
func TypeName(t cty.Type) string {
	return t.FriendlyName()
}

func containsValue(choices []cty.Value, v cty.Value) bool {
	for _, c := range choices {
		if c.Type().Equals(v.Type()) && c.Equals(v).True() {
			return true
		}
	}
	return false
}
