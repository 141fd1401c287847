package material

import (
	"fmt"
	"os"

	"gopkg.in/yaml.v3"
)

// Catalog is a registry of named Specs, the pre-parsed input the kernel's
// spawn/restore operations resolve material references against. It never
// parses a document itself beyond decoding YAML into the typed Spec below —
// any richer material-definition grammar is the caller's concern.
type Catalog struct {
	specs map[string]*Spec
}

// NewCatalog returns an empty catalog.
func NewCatalog() *Catalog {
	return &Catalog{specs: make(map[string]*Spec)}
}

// Register adds or replaces a Spec under its own ID.
func (c *Catalog) Register(s *Spec) {
	c.specs[s.ID] = s
}

// Get looks up a Spec by id.
func (c *Catalog) Get(id string) (*Spec, bool) {
	s, ok := c.specs[id]
	return s, ok
}

// LoadFile decodes a YAML document containing a list of material specs and
// registers each one. The document shape is:
//
//	materials:
//	  - id: ember
//	    essence: "a mote of warm light"
//	    physics: { friction: 0.04 }
func (c *Catalog) LoadFile(path string) error {
	data, err := os.ReadFile(path)
	if err != nil {
		return fmt.Errorf("material: load %s: %w", path, err)
	}
	return c.LoadBytes(data)
}

// LoadBytes decodes and registers a catalog document held in memory.
func (c *Catalog) LoadBytes(data []byte) error {
	var doc struct {
		Materials []*Spec `yaml:"materials"`
	}
	if err := yaml.Unmarshal(data, &doc); err != nil {
		return fmt.Errorf("material: decode catalog: %w", err)
	}
	for _, s := range doc.Materials {
		if s.ID == "" {
			return fmt.Errorf("material: catalog entry missing id")
		}
		c.Register(s)
	}
	return nil
}
