package prompts

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/google/uuid"
	"github.com/jackzampolin/promptshelf/internal/catalog"
	"github.com/jackzampolin/promptshelf/internal/defra"
)

const maxSlugLength = 200

// Create stores a new custom block at version 1. Its id may not collide with
// a catalog block, a library context or an existing override.
func (e *Engine) Create(ctx context.Context, in CreateInput) (*ManagedPrompt, error) {
	if err := requireMessage(in.CommitMessage); err != nil {
		return nil, err
	}

	slug := strings.TrimSpace(in.Slug)
	if slug == "" {
		slug = "custom-" + uuid.NewString()
	}
	if err := validateSlug(slug); err != nil {
		return nil, err
	}
	if e.catalog.Reserved(slug) || strings.HasPrefix(slug, catalog.LibraryContextPrefix) {
		return nil, fmt.Errorf("%w: %s is reserved by the catalog", ErrValidation, slug)
	}

	existing, err := e.store.Get(ctx, slug)
	if err != nil {
		return nil, err
	}
	if existing != nil {
		return nil, fmt.Errorf("%w: %s already exists", ErrValidation, slug)
	}

	tier := in.Tier
	if tier == 0 {
		tier = catalog.TierOpen
	}
	if !tier.Valid() {
		return nil, fmt.Errorf("%w: tier %d is not 1, 2 or 3", ErrValidation, tier)
	}
	title := in.Title
	if title == "" {
		title = slug
	}

	o := &Override{
		Slug:        slug,
		Title:       title,
		Description: in.Description,
		Content:     in.Content,
		Tier:        tier,
		Source:      catalog.SourceCustom,
		Categories:  append([]string(nil), in.Categories...),
		Status:      StatusActive,
		Variants:    cloneMap(in.Variants),
	}

	p, err := e.commit(ctx, o, nil, true, Diff("", o.Content), in.CommitMessage, in.Actor)
	if errors.Is(err, ErrConflict) {
		return nil, fmt.Errorf("%w: %s already exists", ErrValidation, slug)
	}
	return p, err
}

// ResetToDefault deletes the override of a catalog block or library context,
// discarding its entire history. Custom blocks have no default to return to.
func (e *Engine) ResetToDefault(ctx context.Context, id string) (*ResetResult, error) {
	o, base, err := e.lookup(ctx, id)
	if err != nil {
		return nil, err
	}
	if o == nil {
		return nil, fmt.Errorf("%w: %s has no override to reset", ErrInvalidOperation, id)
	}
	if o.IsCustom() {
		return nil, fmt.Errorf("%w: %s is a custom block with no default; use delete instead of resetToDefault", ErrInvalidOperation, id)
	}

	if err := e.store.Delete(ctx, o.Slug); err != nil {
		return nil, fmt.Errorf("failed to reset %s: %w", id, err)
	}

	discarded := len(o.History)
	e.logger.Warn("override reset to default", "id", id, "discarded_versions", discarded)

	// An override whose catalog entry has since been removed resets to nothing.
	prompt := ManagedPrompt{ID: id}
	if base != nil {
		prompt = managed(id, nil, base)
	}
	return &ResetResult{
		Prompt:            prompt,
		DiscardedVersions: discarded,
		Warning:           fmt.Sprintf("discarded %d version(s) of %s; this history cannot be recovered", discarded, id),
	}, nil
}

// Delete removes a custom block. Overrides of catalog blocks are reset, not
// deleted.
func (e *Engine) Delete(ctx context.Context, id string) error {
	o, base, err := e.lookup(ctx, id)
	if err != nil {
		return err
	}
	if base != nil {
		if o == nil {
			return fmt.Errorf("%w: %s is a catalog default and cannot be deleted", ErrInvalidOperation, id)
		}
		return fmt.Errorf("%w: %s overrides a catalog block; use resetToDefault instead of delete", ErrInvalidOperation, id)
	}
	if !o.IsCustom() {
		return fmt.Errorf("%w: %s overrides a catalog block; use resetToDefault instead of delete", ErrInvalidOperation, id)
	}

	if err := e.store.Delete(ctx, o.Slug); err != nil {
		return fmt.Errorf("failed to delete %s: %w", id, err)
	}
	e.logger.Info("custom block deleted", "id", id, "versions", len(o.History))
	return nil
}

func validateSlug(slug string) error {
	if len(slug) > maxSlugLength {
		return fmt.Errorf("%w: id longer than %d characters", ErrValidation, maxSlugLength)
	}
	if !defra.IDPattern.MatchString(slug) {
		return fmt.Errorf("%w: id %q may only contain letters, digits, '-' and '_'", ErrValidation, slug)
	}
	return nil
}
