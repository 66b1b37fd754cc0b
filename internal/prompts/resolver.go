package prompts

import (
	"context"
	"fmt"
	"slices"
	"sort"

	"github.com/jackzampolin/promptshelf/internal/catalog"
)

// ResolveBlock returns the effective block for id: the active override when
// one exists, else the catalog or library default.
func (e *Engine) ResolveBlock(ctx context.Context, id string) (*EffectiveBlock, error) {
	o, base, err := e.lookup(ctx, id)
	if err != nil {
		return nil, err
	}
	b := effective(id, o, base)
	return &b, nil
}

// ResolveBlocks resolves ids with a single store query. The result follows
// input order, duplicates included. Ids that resolve to nothing are logged
// and left out.
func (e *Engine) ResolveBlocks(ctx context.Context, ids []string) ([]EffectiveBlock, error) {
	if len(ids) == 0 {
		return []EffectiveBlock{}, nil
	}

	unique := make([]string, 0, len(ids))
	seen := make(map[string]bool, len(ids))
	for _, id := range ids {
		if !seen[id] {
			seen[id] = true
			unique = append(unique, id)
		}
	}

	overrides, err := e.store.GetMany(ctx, unique)
	if err != nil {
		return nil, fmt.Errorf("failed to resolve blocks: %w", err)
	}

	out := make([]EffectiveBlock, 0, len(ids))
	for _, id := range ids {
		o := overrides[id]
		base, _ := e.baseline(id)
		if o == nil && base == nil {
			e.logger.Warn("block not found", "id", id)
			continue
		}
		out = append(out, effective(id, o, base))
	}
	return out, nil
}

// ListAll returns one ManagedPrompt per distinct id across the catalog,
// library contexts and stored overrides.
//
// The merge runs in three passes over an id-keyed map: catalog blocks (with
// their overrides applied), then library contexts, then whatever overrides
// remain (custom blocks, and overrides whose catalog entry is gone). An id
// claimed twice is an error.
func (e *Engine) ListAll(ctx context.Context, filter ListFilter) ([]ManagedPrompt, error) {
	stored, err := e.store.List(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to list overrides: %w", err)
	}

	pending := make(map[string]*Override, len(stored))
	for i := range stored {
		o := &stored[i]
		if _, dup := pending[o.Slug]; dup {
			e.logger.Warn("duplicate active override", "slug", o.Slug, "doc_id", o.DocID)
			continue
		}
		pending[o.Slug] = o
	}

	merged := make(map[string]ManagedPrompt, len(stored)+len(e.catalog.Blocks()))
	order := make([]string, 0, len(stored)+len(e.catalog.Blocks())+len(e.catalog.LibraryIDs()))
	add := func(p ManagedPrompt) error {
		if _, exists := merged[p.ID]; exists {
			return fmt.Errorf("prompt id %q listed twice", p.ID)
		}
		merged[p.ID] = p
		order = append(order, p.ID)
		return nil
	}

	// Pass 1: catalog blocks.
	for _, b := range e.catalog.Blocks() {
		base, _ := e.baseline(b.ID)
		if err := add(managed(b.ID, pending[b.ID], base)); err != nil {
			return nil, err
		}
		delete(pending, b.ID)
	}

	// Pass 2: library contexts.
	for _, libID := range e.catalog.LibraryIDs() {
		id := catalog.LibraryContextID(libID)
		base, _ := e.baseline(id)
		if err := add(managed(id, pending[id], base)); err != nil {
			return nil, err
		}
		delete(pending, id)
	}

	// Pass 3: everything else.
	rest := make([]string, 0, len(pending))
	for slug := range pending {
		rest = append(rest, slug)
	}
	sort.Strings(rest)
	for _, slug := range rest {
		if err := add(managed(slug, pending[slug], nil)); err != nil {
			return nil, err
		}
	}

	out := make([]ManagedPrompt, 0, len(order))
	for _, id := range order {
		p := merged[id]
		if filter.matches(p) {
			out = append(out, p)
		}
	}
	return out, nil
}

func (f ListFilter) matches(p ManagedPrompt) bool {
	if f.Source != "" && p.Source != f.Source {
		return false
	}
	if f.Category != "" && !slices.Contains(p.Categories, f.Category) {
		return false
	}
	return true
}

// GetBySlug returns the merged view of id.
func (e *Engine) GetBySlug(ctx context.Context, id string) (*ManagedPrompt, error) {
	o, base, err := e.lookup(ctx, id)
	if err != nil {
		return nil, err
	}
	p := managed(id, o, base)
	return &p, nil
}

// GetByID looks id up as a stored document id first, then as a slug.
func (e *Engine) GetByID(ctx context.Context, id string) (*ManagedPrompt, error) {
	o, err := e.store.GetByDocID(ctx, id)
	if err != nil {
		return nil, err
	}
	if o == nil {
		return e.GetBySlug(ctx, id)
	}
	base, _ := e.baseline(o.Slug)
	p := managed(o.Slug, o, base)
	return &p, nil
}
