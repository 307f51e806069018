package tool

import (
	"fmt"
	"sync"
)

// Catalog is the registry of executable tools. Definitions are loaded once
// at construction and the mapping from name to definition never changes;
// the mutex only guards late registration of extension tools.
type Catalog struct {
	mu    sync.RWMutex
	order []string
	tools map[string]Executor
}

// NewCatalog returns an empty catalog. Builtins are registered by the
// tools/builtin package so this package stays dependency-free.
func NewCatalog() *Catalog {
	return &Catalog{tools: make(map[string]Executor)}
}

// Register adds a tool to the catalog. Registering a duplicate name fails.
func (c *Catalog) Register(executor Executor) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	name := executor.Definition().Name
	if name == "" {
		return fmt.Errorf("tool definition has empty name")
	}
	if _, exists := c.tools[name]; exists {
		return fmt.Errorf("tool already exists: %s", name)
	}
	c.tools[name] = executor
	c.order = append(c.order, name)
	return nil
}

// Get returns the definition for name.
func (c *Catalog) Get(name string) (Definition, error) {
	c.mu.RLock()
	defer c.mu.RUnlock()
	executor, ok := c.tools[name]
	if !ok {
		return Definition{}, NewUnknownTool(name)
	}
	return executor.Definition(), nil
}

// Runner returns the executor for name.
func (c *Catalog) Runner(name string) (Executor, error) {
	c.mu.RLock()
	defer c.mu.RUnlock()
	executor, ok := c.tools[name]
	if !ok {
		return nil, NewUnknownTool(name)
	}
	return executor, nil
}

// All returns every definition in registration order.
func (c *Catalog) All() []Definition {
	c.mu.RLock()
	defer c.mu.RUnlock()
	defs := make([]Definition, 0, len(c.order))
	for _, name := range c.order {
		defs = append(defs, c.tools[name].Definition())
	}
	return defs
}

// Validate checks that name is registered and that every required parameter
// is present. It deliberately does no deep type checking; tools coerce their
// own arguments.
func (c *Catalog) Validate(name string, args map[string]any) error {
	def, err := c.Get(name)
	if err != nil {
		return err
	}
	for _, param := range def.Params {
		if !param.Required {
			continue
		}
		if _, ok := args[param.Name]; !ok {
			return NewMissingParameter(name, param.Name)
		}
	}
	return nil
}
