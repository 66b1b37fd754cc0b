package prompts

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/jackzampolin/promptshelf/internal/catalog"
)

// DefaultActor is recorded as changedBy when a caller does not name one.
const DefaultActor = "anonymous"

// Engine resolves blocks and applies versioned edits. It holds no cache and
// takes no locks; every call reads the store fresh, and concurrent writers
// are arbitrated by the store's version check.
type Engine struct {
	store   Store
	catalog *catalog.Catalog
	logger  *slog.Logger
	now     func() time.Time
}

// NewEngine creates an engine over store and an immutable catalog.
func NewEngine(store Store, cat *catalog.Catalog, logger *slog.Logger) *Engine {
	if logger == nil {
		logger = slog.Default()
	}
	return &Engine{
		store:   store,
		catalog: cat,
		logger:  logger,
		now:     func() time.Time { return time.Now().UTC() },
	}
}

// Catalog returns the catalog the engine resolves against.
func (e *Engine) Catalog() *catalog.Catalog {
	return e.catalog
}

// baseline is the code-defined default behind an id: a catalog block or a
// library's context.
type baseline struct {
	id          string
	name        string
	description string
	content     string
	tier        catalog.Tier
	source      catalog.Source
	variants    map[string]string
	libraryID   string
}

func (e *Engine) baseline(id string) (*baseline, bool) {
	if b, ok := e.catalog.Block(id); ok {
		return &baseline{
			id:          b.ID,
			name:        b.Name,
			description: b.Description,
			content:     b.Content,
			tier:        b.Tier,
			source:      b.Source,
			variants:    b.Variants,
		}, true
	}
	if libID, ok := catalog.LibraryIDFromContextID(id); ok {
		if lib, ok := e.catalog.Library(libID); ok {
			return &baseline{
				id:          id,
				name:        lib.Name + " Library Context",
				description: fmt.Sprintf("Context appended to compositions built for the %s library", lib.Name),
				content:     lib.Context,
				tier:        catalog.TierOpen,
				source:      catalog.SourceLibraryContext,
				libraryID:   lib.ID,
			}, true
		}
	}
	return nil, false
}

// lookup loads the override and baseline for id. It fails with ErrNotFound
// only when neither exists.
func (e *Engine) lookup(ctx context.Context, id string) (*Override, *baseline, error) {
	o, err := e.store.Get(ctx, id)
	if err != nil {
		return nil, nil, err
	}
	base, _ := e.baseline(id)
	if o == nil && base == nil {
		return nil, nil, fmt.Errorf("%w: %s", ErrNotFound, id)
	}
	return o, base, nil
}

func effective(id string, o *Override, base *baseline) EffectiveBlock {
	if o == nil {
		return EffectiveBlock{
			ID:          base.id,
			Name:        base.name,
			Description: base.description,
			Content:     base.content,
			Tier:        base.tier,
			Source:      base.source,
			Variants:    cloneMap(base.variants),
			Version:     1,
			ContentHash: HashText(base.content),
		}
	}

	b := EffectiveBlock{
		ID:          id,
		Name:        o.Title,
		Description: o.Description,
		Content:     o.Content,
		Tier:        o.Tier,
		Source:      o.Source,
		Variants:    cloneMap(o.Variants),
		Version:     o.Version,
		IsOverride:  true,
		ContentHash: HashText(o.Content),
	}
	if base != nil {
		b.Tier = base.tier
		b.Source = base.source
		if b.Name == "" {
			b.Name = base.name
		}
		if b.Description == "" {
			b.Description = base.description
		}
	}
	if b.Name == "" {
		b.Name = id
	}
	return b
}

func managed(id string, o *Override, base *baseline) ManagedPrompt {
	eb := effective(id, o, base)
	p := ManagedPrompt{
		ID:          id,
		Title:       eb.Name,
		Description: eb.Description,
		Content:     eb.Content,
		Tier:        eb.Tier,
		Source:      eb.Source,
		Variants:    eb.Variants,
		Version:     eb.Version,
		HasOverride: o != nil,
		ContentHash: eb.ContentHash,
	}
	if base != nil {
		p.LibraryID = base.libraryID
		if base.libraryID == "" {
			p.OverridesBlockID = base.id
		}
		if o != nil {
			p.DefaultContent = base.content
		}
	}
	if o != nil {
		p.DocID = o.DocID
		p.Categories = append([]string(nil), o.Categories...)
		p.IsCustom = base == nil && o.IsCustom()
		if !o.UpdatedAt.IsZero() {
			t := o.UpdatedAt
			p.UpdatedAt = &t
		}
	}
	return p
}
