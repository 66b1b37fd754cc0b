package prompts

import (
	"context"
	"fmt"
	"strings"

	"github.com/jackzampolin/promptshelf/internal/catalog"
)

const libraryContextHeading = "Library Context"

// BuildOptions adjusts how a composition is assembled. Empty fields fall
// back to the composition's own settings.
type BuildOptions struct {
	LibraryID      string `json:"libraryId,omitempty"`
	VariantContext string `json:"variantContext,omitempty"`
}

// BuildComposition assembles comp into one document. Each resolved block
// becomes a "## {name}" section; blocks with only whitespace are skipped and
// ids that resolve to nothing are reported in MissingBlockIDs rather than
// failing the build. A non-empty library context is appended last.
func (e *Engine) BuildComposition(ctx context.Context, comp catalog.Composition, opts BuildOptions) (*CompositionResult, error) {
	variant := opts.VariantContext
	if variant == "" {
		variant = comp.VariantContext
	}
	libraryID := opts.LibraryID
	if libraryID == "" {
		libraryID = comp.LibraryID
	}

	blocks, err := e.ResolveBlocks(ctx, comp.BlockIDs)
	if err != nil {
		return nil, err
	}

	resolved := make(map[string]bool, len(blocks))
	sections := make([]string, 0, len(blocks)+1)
	for _, b := range blocks {
		resolved[b.ID] = true
		content := b.ContentFor(variant)
		if strings.TrimSpace(content) == "" {
			continue
		}
		sections = append(sections, section(b.Name, content))
	}

	missing := []string{}
	reported := make(map[string]bool)
	for _, id := range comp.BlockIDs {
		if !resolved[id] && !reported[id] {
			reported[id] = true
			missing = append(missing, id)
		}
	}

	if libraryID != "" {
		libCtx, err := e.ResolveLibraryContext(ctx, libraryID)
		if err != nil {
			return nil, err
		}
		if strings.TrimSpace(libCtx) != "" {
			sections = append(sections, section(libraryContextHeading, libCtx))
		}
	}

	return &CompositionResult{
		CompositionID:   comp.ID,
		Text:            strings.Join(sections, "\n\n"),
		ResolvedBlocks:  blocks,
		MissingBlockIDs: missing,
		LibraryID:       libraryID,
		VariantContext:  variant,
	}, nil
}

// BuildCompositionByID looks up a catalog composition and builds it.
func (e *Engine) BuildCompositionByID(ctx context.Context, id string, opts BuildOptions) (*CompositionResult, error) {
	comp, ok := e.catalog.Composition(id)
	if !ok {
		return nil, fmt.Errorf("%w: composition %s", ErrNotFound, id)
	}
	return e.BuildComposition(ctx, comp, opts)
}

// ResolveLibraryContext returns the context text for a library: its
// override when one exists, else the catalog default, else "".
func (e *Engine) ResolveLibraryContext(ctx context.Context, libraryID string) (string, error) {
	o, err := e.store.Get(ctx, catalog.LibraryContextID(libraryID))
	if err != nil {
		return "", fmt.Errorf("failed to resolve library context %s: %w", libraryID, err)
	}
	if o != nil {
		return o.Content, nil
	}
	if lib, ok := e.catalog.Library(libraryID); ok {
		return lib.Context, nil
	}
	return "", nil
}

func section(heading, content string) string {
	return "## " + heading + "\n\n" + content
}
