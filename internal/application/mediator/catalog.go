package mediator

import (
	"fmt"
	"sort"
)

// Catalog maps decorator names, as they appear in configuration, to factories
type Catalog struct {
	factories map[string]DecoratorFactory
}

// NewCatalog creates an empty catalog
func NewCatalog() *Catalog {
	return &Catalog{factories: make(map[string]DecoratorFactory)}
}

// Add registers factory under name, replacing any previous entry
func (c *Catalog) Add(name string, factory DecoratorFactory) *Catalog {
	c.factories[name] = factory
	return c
}

// Resolve returns the factories for names, in the same order.
// Unknown names are reported all at once.
func (c *Catalog) Resolve(names ...string) ([]DecoratorFactory, error) {
	factories := make([]DecoratorFactory, 0, len(names))
	var unknown []string
	for _, name := range names {
		f, ok := c.factories[name]
		if !ok || f == nil {
			unknown = append(unknown, name)
			continue
		}
		factories = append(factories, f)
	}
	if len(unknown) > 0 {
		return nil, fmt.Errorf("unknown decorators %v (known: %v)", unknown, c.Names())
	}
	return factories, nil
}

// Names returns the registered decorator names, sorted
func (c *Catalog) Names() []string {
	names := make([]string, 0, len(c.factories))
	for name := range c.factories {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}
