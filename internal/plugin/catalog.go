package plugin

import (
	"errors"
	"fmt"
	"log/slog"
	"sort"
)

var ErrUnknownPlugin = errors.New("unknown plugin")

// Module is implemented by every package that contributes plugins.
type Module interface {
	Register(c *Catalog)
}

// Factory returns a fresh plugin instance with default parameters.
type Factory func() Plugin

// Entry describes one catalog item for plugin choosers.
type Entry struct {
	ID       string
	Metadata Metadata
}

// Catalog maps plugin identifiers to factories. It is filled once at startup
// and only read afterwards.
type Catalog struct {
	factories map[string]Factory
}

// NewCatalog creates a catalog and registers every module into it.
func NewCatalog(modules ...Module) *Catalog {
	c := &Catalog{factories: make(map[string]Factory)}
	for _, m := range modules {
		m.Register(c)
	}
	return c
}

// Register adds a factory under id.
func (c *Catalog) Register(id string, f Factory) {
	if _, exists := c.factories[id]; exists {
		panic(fmt.Sprintf("plugin with id '%s' already registered", id))
	}
	slog.Debug("Registering plugin.", "id", id)
	c.factories[id] = f
}

// New instantiates the plugin registered under id.
func (c *Catalog) New(id string) (Plugin, error) {
	f, ok := c.factories[id]
	if !ok {
		return nil, fmt.Errorf("%w: %s", ErrUnknownPlugin, id)
	}
	return f(), nil
}

// Has reports whether id is registered.
func (c *Catalog) Has(id string) bool {
	_, ok := c.factories[id]
	return ok
}

// Entries lists the catalog sorted by id.
func (c *Catalog) Entries() []Entry {
	ids := make([]string, 0, len(c.factories))
	for id := range c.factories {
		ids = append(ids, id)
	}
	sort.Strings(ids)

	out := make([]Entry, 0, len(ids))
	for _, id := range ids {
		out = append(out, Entry{ID: id, Metadata: c.factories[id]().Metadata()})
	}
	return out
}
