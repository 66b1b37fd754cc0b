// Package catalog holds the code-defined prompt blocks, compositions and
// library contexts that overrides are layered on top of.
//
// A Catalog is immutable once built. Callers construct one at startup (from
// the embedded defaults or a YAML file) and inject it into the engine; a
// reload produces a new Catalog rather than mutating the old one.
package catalog

import (
	"errors"
	"fmt"
	"sort"
	"strings"
)

// Tier is the editability tier of a block. Lower tiers are riskier to change.
type Tier int

const (
	TierLocked  Tier = 1
	TierCaution Tier = 2
	TierOpen    Tier = 3
)

// Valid reports whether t is one of the known tiers.
func (t Tier) Valid() bool {
	return t >= TierLocked && t <= TierOpen
}

func (t Tier) String() string {
	switch t {
	case TierLocked:
		return "locked"
	case TierCaution:
		return "caution"
	case TierOpen:
		return "open"
	default:
		return fmt.Sprintf("tier(%d)", int(t))
	}
}

// Source identifies where a block originates.
type Source string

const (
	SourceCore           Source = "v2-core"
	SourceLegacy         Source = "legacy"
	SourceChatLibrary    Source = "chat-library"
	SourceLibraryContext Source = "library-context"
	SourceCustom         Source = "custom"
)

// Valid reports whether s is a known source.
func (s Source) Valid() bool {
	switch s {
	case SourceCore, SourceLegacy, SourceChatLibrary, SourceLibraryContext, SourceCustom:
		return true
	}
	return false
}

// LibraryContextPrefix prefixes the synthetic block id of a library context.
const LibraryContextPrefix = "library-context-"

// LibraryContextID returns the synthetic block id for a library's context.
func LibraryContextID(libraryID string) string {
	return LibraryContextPrefix + libraryID
}

// LibraryIDFromContextID extracts the library id from a synthetic context id.
func LibraryIDFromContextID(id string) (string, bool) {
	if !strings.HasPrefix(id, LibraryContextPrefix) {
		return "", false
	}
	libID := strings.TrimPrefix(id, LibraryContextPrefix)
	return libID, libID != ""
}

// Block is a default block definition.
type Block struct {
	ID          string            `yaml:"id" json:"id"`
	Name        string            `yaml:"name" json:"name"`
	Description string            `yaml:"description,omitempty" json:"description,omitempty"`
	Tier        Tier              `yaml:"tier" json:"tier"`
	Source      Source            `yaml:"source,omitempty" json:"source"`
	Content     string            `yaml:"content" json:"content"`
	Variants    map[string]string `yaml:"variants,omitempty" json:"variants,omitempty"`
}

// Composition is an ordered list of block ids assembled into one document.
type Composition struct {
	ID             string   `yaml:"id" json:"id"`
	Name           string   `yaml:"name" json:"name"`
	Description    string   `yaml:"description,omitempty" json:"description,omitempty"`
	Category       string   `yaml:"category,omitempty" json:"category,omitempty"`
	OutputFormat   string   `yaml:"output_format,omitempty" json:"outputFormat,omitempty"`
	BlockIDs       []string `yaml:"block_ids" json:"blockIds"`
	LibraryID      string   `yaml:"library_id,omitempty" json:"libraryId,omitempty"`
	VariantContext string   `yaml:"variant_context,omitempty" json:"variantContext,omitempty"`
}

// Library is a named library with its default context text.
type Library struct {
	ID      string `yaml:"id" json:"id"`
	Name    string `yaml:"name" json:"name"`
	Context string `yaml:"context" json:"context"`
}

// ErrInvalid is wrapped by every catalog construction error.
var ErrInvalid = errors.New("invalid catalog")

// Catalog is an immutable set of blocks, compositions and libraries.
type Catalog struct {
	blocks       []Block
	blockIdx     map[string]int
	compositions []Composition
	compIdx      map[string]int
	libraries    []Library
	libIdx       map[string]int
}

// New validates the definitions and builds a Catalog.
// Block ids must be unique and must not use the library context prefix.
func New(blocks []Block, compositions []Composition, libraries []Library) (*Catalog, error) {
	c := &Catalog{
		blockIdx: make(map[string]int, len(blocks)),
		compIdx:  make(map[string]int, len(compositions)),
		libIdx:   make(map[string]int, len(libraries)),
	}

	for _, b := range blocks {
		if b.ID == "" {
			return nil, fmt.Errorf("%w: block with empty id", ErrInvalid)
		}
		if strings.HasPrefix(b.ID, LibraryContextPrefix) {
			return nil, fmt.Errorf("%w: block %q uses reserved prefix %q", ErrInvalid, b.ID, LibraryContextPrefix)
		}
		if _, dup := c.blockIdx[b.ID]; dup {
			return nil, fmt.Errorf("%w: duplicate block id %q", ErrInvalid, b.ID)
		}
		if !b.Tier.Valid() {
			return nil, fmt.Errorf("%w: block %q has invalid tier %d", ErrInvalid, b.ID, b.Tier)
		}
		if b.Source == "" {
			b.Source = SourceCore
		}
		switch b.Source {
		case SourceCore, SourceLegacy, SourceChatLibrary:
		default:
			return nil, fmt.Errorf("%w: block %q has source %q", ErrInvalid, b.ID, b.Source)
		}
		b.Variants = cloneVariants(b.Variants)
		c.blockIdx[b.ID] = len(c.blocks)
		c.blocks = append(c.blocks, b)
	}

	for _, l := range libraries {
		if l.ID == "" {
			return nil, fmt.Errorf("%w: library with empty id", ErrInvalid)
		}
		if _, dup := c.libIdx[l.ID]; dup {
			return nil, fmt.Errorf("%w: duplicate library id %q", ErrInvalid, l.ID)
		}
		c.libIdx[l.ID] = len(c.libraries)
		c.libraries = append(c.libraries, l)
	}

	for _, comp := range compositions {
		if comp.ID == "" {
			return nil, fmt.Errorf("%w: composition with empty id", ErrInvalid)
		}
		if _, dup := c.compIdx[comp.ID]; dup {
			return nil, fmt.Errorf("%w: duplicate composition id %q", ErrInvalid, comp.ID)
		}
		if comp.LibraryID != "" {
			if _, ok := c.libIdx[comp.LibraryID]; !ok {
				return nil, fmt.Errorf("%w: composition %q references unknown library %q", ErrInvalid, comp.ID, comp.LibraryID)
			}
		}
		comp.BlockIDs = append([]string(nil), comp.BlockIDs...)
		c.compIdx[comp.ID] = len(c.compositions)
		c.compositions = append(c.compositions, comp)
	}

	return c, nil
}

// Block returns the block definition for id.
func (c *Catalog) Block(id string) (Block, bool) {
	i, ok := c.blockIdx[id]
	if !ok {
		return Block{}, false
	}
	b := c.blocks[i]
	b.Variants = cloneVariants(b.Variants)
	return b, true
}

// Blocks returns all block definitions in declaration order.
func (c *Catalog) Blocks() []Block {
	out := make([]Block, len(c.blocks))
	for i, b := range c.blocks {
		b.Variants = cloneVariants(b.Variants)
		out[i] = b
	}
	return out
}

// Composition returns the composition for id.
func (c *Catalog) Composition(id string) (Composition, bool) {
	i, ok := c.compIdx[id]
	if !ok {
		return Composition{}, false
	}
	comp := c.compositions[i]
	comp.BlockIDs = append([]string(nil), comp.BlockIDs...)
	return comp, true
}

// Compositions returns all compositions in declaration order.
func (c *Catalog) Compositions() []Composition {
	out := make([]Composition, len(c.compositions))
	for i, comp := range c.compositions {
		comp.BlockIDs = append([]string(nil), comp.BlockIDs...)
		out[i] = comp
	}
	return out
}

// Library returns the library for id.
func (c *Catalog) Library(id string) (Library, bool) {
	i, ok := c.libIdx[id]
	if !ok {
		return Library{}, false
	}
	return c.libraries[i], true
}

// Libraries returns all libraries in declaration order.
func (c *Catalog) Libraries() []Library {
	return append([]Library(nil), c.libraries...)
}

// LibraryIDs returns the configured library ids in declaration order.
func (c *Catalog) LibraryIDs() []string {
	ids := make([]string, len(c.libraries))
	for i, l := range c.libraries {
		ids[i] = l.ID
	}
	return ids
}

// Reserved reports whether id is taken by a catalog block or a library context.
func (c *Catalog) Reserved(id string) bool {
	if _, ok := c.blockIdx[id]; ok {
		return true
	}
	if libID, ok := LibraryIDFromContextID(id); ok {
		_, known := c.libIdx[libID]
		return known
	}
	return false
}

// Stats summarizes catalog size.
type Stats struct {
	Blocks       int            `json:"blocks" yaml:"blocks"`
	Compositions int            `json:"compositions" yaml:"compositions"`
	Libraries    int            `json:"libraries" yaml:"libraries"`
	ByTier       map[string]int `json:"byTier" yaml:"by_tier"`
	Categories   []string       `json:"categories,omitempty" yaml:"categories,omitempty"`
}

// Stats returns counts for display.
func (c *Catalog) Stats() Stats {
	s := Stats{
		Blocks:       len(c.blocks),
		Compositions: len(c.compositions),
		Libraries:    len(c.libraries),
		ByTier:       make(map[string]int),
	}
	for _, b := range c.blocks {
		s.ByTier[b.Tier.String()]++
	}
	seen := make(map[string]bool)
	for _, comp := range c.compositions {
		if comp.Category != "" && !seen[comp.Category] {
			seen[comp.Category] = true
			s.Categories = append(s.Categories, comp.Category)
		}
	}
	sort.Strings(s.Categories)
	return s
}

func cloneVariants(v map[string]string) map[string]string {
	if len(v) == 0 {
		return nil
	}
	out := make(map[string]string, len(v))
	for k, val := range v {
		out[k] = val
	}
	return out
}
