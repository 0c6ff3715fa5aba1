package ability

import (
	"bytes"
	"fmt"
	"os"

	"gopkg.in/yaml.v3"

	"github.com/cory-johannsen/cardclash/internal/game/ruleset"
)

// Catalog is a read-only registry of ability definitions keyed by ability key.
// A Catalog is immutable after construction and safe for concurrent use.
type Catalog struct {
	defs  map[string]*Definition
	order []string
}

// NewCatalog builds a Catalog from defs. A later definition with the same key
// replaces an earlier one but keeps its original position.
//
// Precondition: every def must be non-nil.
// Postcondition: Returns a Catalog containing every def, or an error if any def is invalid.
func NewCatalog(defs ...*Definition) (*Catalog, error) {
	c := &Catalog{defs: make(map[string]*Definition, len(defs))}
	for _, d := range defs {
		if err := d.Validate(); err != nil {
			return nil, err
		}
		if _, exists := c.defs[d.Key]; !exists {
			c.order = append(c.order, d.Key)
		}
		c.defs[d.Key] = d
	}
	return c, nil
}

// Get returns the definition for key.
//
// Postcondition: Returns a non-nil definition, or an error wrapping ErrUnknownAbility.
func (c *Catalog) Get(key string) (*Definition, error) {
	d, ok := c.defs[key]
	if !ok {
		return nil, fmt.Errorf("%w: %q", ErrUnknownAbility, key)
	}
	return d, nil
}

// Validate reports whether key names an ability in the catalog.
func (c *Catalog) Validate(key string) error {
	_, err := c.Get(key)
	return err
}

// ListForClass returns every definition whose allowed classes include class,
// in catalog order.
func (c *Catalog) ListForClass(class ruleset.Class) []*Definition {
	var out []*Definition
	for _, k := range c.order {
		if d := c.defs[k]; d.AllowedFor(class) {
			out = append(out, d)
		}
	}
	return out
}

// All returns every definition in catalog order.
func (c *Catalog) All() []*Definition {
	out := make([]*Definition, 0, len(c.order))
	for _, k := range c.order {
		out = append(out, c.defs[k])
	}
	return out
}

// Len returns the number of definitions.
func (c *Catalog) Len() int { return len(c.order) }

// LoadDirectory reads every YAML file in dir as a Definition. Unknown fields
// are rejected. A definition without a cooldown receives DefaultCooldown; any
// other cooldown is refused.
//
// Precondition: dir must be a readable directory.
// Postcondition: Returns the parsed definitions in directory order, or a non-nil error.
func LoadDirectory(dir string) ([]*Definition, error) {
	files, err := ruleset.YAMLFiles(dir)
	if err != nil {
		return nil, fmt.Errorf("reading ability dir %q: %w", dir, err)
	}
	defs := make([]*Definition, 0, len(files))
	for _, path := range files {
		data, err := os.ReadFile(path)
		if err != nil {
			return nil, fmt.Errorf("reading %q: %w", path, err)
		}
		var def Definition
		dec := yaml.NewDecoder(bytes.NewReader(data))
		dec.KnownFields(true)
		if err := dec.Decode(&def); err != nil {
			return nil, fmt.Errorf("parsing %q: %w", path, err)
		}
		if def.Cooldown == 0 {
			def.Cooldown = DefaultCooldown
		}
		if err := def.Validate(); err != nil {
			return nil, fmt.Errorf("%q: %w", path, err)
		}
		defs = append(defs, &def)
	}
	return defs, nil
}

// LoadCatalog returns Default overlaid with every definition found in dir.
// An empty dir returns Default unchanged.
func LoadCatalog(dir string) (*Catalog, error) {
	if dir == "" {
		return Default(), nil
	}
	overrides, err := LoadDirectory(dir)
	if err != nil {
		return nil, err
	}
	return NewCatalog(append(Default().All(), overrides...)...)
}
