// Package hardware builds the in-memory catalog of boards, shields, and
// interconnects available in a workspace by scanning module metadata files.
// The catalog is a derived, read-only view: it is recomputed on every scan
// and never persisted.
package hardware

import (
	"sort"
	"strings"
)

// Kind classifies a hardware definition.
type Kind string

// Hardware kinds found in metadata files.
const (
	KindBoard        Kind = "board"
	KindShield       Kind = "shield"
	KindInterconnect Kind = "interconnect"
)

// Hardware is one hardware definition parsed from a metadata file.
type Hardware struct {
	ID   string `yaml:"id"`
	Name string `yaml:"name"`
	Kind Kind   `yaml:"type"`

	FileFormat   string `yaml:"file_format"`
	URL          string `yaml:"url"`
	Description  string `yaml:"description"`
	Manufacturer string `yaml:"manufacturer"`
	Version      string `yaml:"version"`

	// Siblings lists the board/shield IDs of a split keyboard's halves.
	Siblings []string `yaml:"siblings"`
	// Exposes lists interconnect IDs this board/shield provides.
	Exposes []string `yaml:"exposes"`
	// Requires lists interconnect IDs a shield attaches to. A shield with a
	// non-empty Requires needs a controller board.
	Requires []string `yaml:"requires"`
	// Features lists capabilities such as "keys" or "display".
	Features []string `yaml:"features"`

	Arch    string   `yaml:"arch"`    // boards only
	Outputs []string `yaml:"outputs"` // boards only

	// Directory is where the metadata file was found. Not part of the file.
	Directory string `yaml:"-"`
	// Module names the module that contributed this definition. Not part of
	// the file.
	Module string `yaml:"-"`
}

// HasFeature reports whether the hardware declares the given feature.
func (h *Hardware) HasFeature(feature string) bool {
	for _, f := range h.Features {
		if f == feature {
			return true
		}
	}
	return false
}

// IsKeyboard reports whether the hardware is a keyboard PCB (a board or
// shield with the "keys" feature).
func (h *Hardware) IsKeyboard() bool {
	return (h.Kind == KindBoard || h.Kind == KindShield) && h.HasFeature("keys")
}

// IsController reports whether the hardware is a controller board (a board
// that is not itself a keyboard).
func (h *Hardware) IsController() bool {
	return h.Kind == KindBoard && !h.IsKeyboard()
}

// RequiresController reports whether the hardware is a shield that must be
// paired with a controller board.
func (h *Hardware) RequiresController() bool {
	return h.Kind == KindShield && len(h.Requires) > 0
}

// Compatible reports whether every interconnect required by shield is
// exposed by at least one of the base hardware items. It does not account
// for two shields competing for the same interconnect.
func Compatible(shield *Hardware, base ...*Hardware) bool {
	if len(shield.Requires) == 0 {
		return true
	}

	exposed := make(map[string]bool)
	for _, b := range base {
		for _, ic := range b.Exposes {
			exposed[ic] = true
		}
	}
	for _, ic := range shield.Requires {
		if !exposed[ic] {
			return false
		}
	}
	return true
}

// Warning records a metadata file that could not be parsed. Scanning
// continues past these; one bad contributor never blocks the catalog.
type Warning struct {
	Path string
	Err  error
}

// Catalog is the scanned hardware index: by kind, then by identifier.
// Identifier lookups are case-insensitive.
type Catalog struct {
	byKind   map[Kind]map[string]*Hardware
	Warnings []Warning
}

func newCatalog() *Catalog {
	return &Catalog{byKind: make(map[Kind]map[string]*Hardware)}
}

// put inserts a definition, overwriting any earlier definition of the same
// (kind, id). Callers insert in module order, so later modules win.
func (c *Catalog) put(h *Hardware) {
	m := c.byKind[h.Kind]
	if m == nil {
		m = make(map[string]*Hardware)
		c.byKind[h.Kind] = m
	}
	m[strings.ToLower(h.ID)] = h
}

// Lookup finds a definition by kind and identifier.
func (c *Catalog) Lookup(kind Kind, id string) (*Hardware, bool) {
	h, ok := c.byKind[kind][strings.ToLower(id)]
	return h, ok
}

// Board finds a board by identifier.
func (c *Catalog) Board(id string) (*Hardware, bool) {
	return c.Lookup(KindBoard, id)
}

// Shield finds a shield by identifier. A split shield's individual halves
// are found through their parent's Siblings list.
func (c *Catalog) Shield(id string) (*Hardware, bool) {
	if h, ok := c.Lookup(KindShield, id); ok {
		return h, true
	}
	for _, h := range c.byKind[KindShield] {
		for _, sib := range h.Siblings {
			if strings.EqualFold(sib, id) {
				return h, true
			}
		}
	}
	return nil, false
}

// Interconnect finds an interconnect by identifier.
func (c *Catalog) Interconnect(id string) (*Hardware, bool) {
	return c.Lookup(KindInterconnect, id)
}

// Keyboards returns all keyboard PCBs sorted by identifier.
func (c *Catalog) Keyboards() []*Hardware {
	return c.collect(func(h *Hardware) bool { return h.IsKeyboard() })
}

// Controllers returns all controller boards sorted by identifier.
func (c *Catalog) Controllers() []*Hardware {
	return c.collect(func(h *Hardware) bool { return h.IsController() })
}

// Interconnects returns all interconnect definitions sorted by identifier.
func (c *Catalog) Interconnects() []*Hardware {
	return c.collect(func(h *Hardware) bool { return h.Kind == KindInterconnect })
}

// ByModule returns all definitions contributed by the named module, sorted
// by identifier.
func (c *Catalog) ByModule(module string) []*Hardware {
	return c.collect(func(h *Hardware) bool { return h.Module == module })
}

func (c *Catalog) collect(keep func(*Hardware) bool) []*Hardware {
	var out []*Hardware
	for _, m := range c.byKind {
		for _, h := range m {
			if keep(h) {
				out = append(out, h)
			}
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return out
}
