package prompts

import (
	"context"
	"errors"
	"fmt"
	"strings"
)

// Update applies in to id and records one new version.
//
// The first edit of a catalog block (or library context) creates its
// override: the catalog default counts as version 1, so the override starts
// at version 2 with a single history entry. Later edits are written only if
// the stored version is still the one read here; otherwise ErrConflict.
func (e *Engine) Update(ctx context.Context, id string, in UpdateInput) (*ManagedPrompt, error) {
	if err := requireMessage(in.CommitMessage); err != nil {
		return nil, err
	}

	o, base, err := e.lookup(ctx, id)
	if err != nil {
		return nil, err
	}

	isNew := o == nil
	if isNew {
		o = seedFromBaseline(base)
	}

	if in.Tier != nil {
		if !in.Tier.Valid() {
			return nil, fmt.Errorf("%w: tier %d is not 1, 2 or 3", ErrValidation, *in.Tier)
		}
		if base != nil && *in.Tier != base.tier {
			return nil, fmt.Errorf("%w: %s inherits tier %s from the catalog", ErrValidation, id, base.tier)
		}
		o.Tier = *in.Tier
	}

	prev := o.Content
	if in.Content != nil {
		o.Content = *in.Content
	}
	if in.Variants != nil {
		o.Variants = cloneMap(in.Variants)
	}
	if in.Title != nil {
		o.Title = *in.Title
	}
	if in.Description != nil {
		o.Description = *in.Description
	}
	if in.Categories != nil {
		o.Categories = append([]string(nil), in.Categories...)
	}

	return e.commit(ctx, o, base, isNew, Diff(prev, o.Content), in.CommitMessage, in.Actor)
}

// UpdateVariant sets the content of one context variant. Empty content
// removes the variant. The recorded diff compares the variant text.
func (e *Engine) UpdateVariant(ctx context.Context, id, variant, content, message, actor string) (*ManagedPrompt, error) {
	if strings.TrimSpace(variant) == "" {
		return nil, fmt.Errorf("%w: variant context is required", ErrValidation)
	}
	if err := requireMessage(message); err != nil {
		return nil, err
	}

	o, base, err := e.lookup(ctx, id)
	if err != nil {
		return nil, err
	}
	isNew := o == nil
	if isNew {
		o = seedFromBaseline(base)
	}

	prev := o.Variants[variant]
	if content == "" {
		delete(o.Variants, variant)
	} else {
		if o.Variants == nil {
			o.Variants = make(map[string]string)
		}
		o.Variants[variant] = content
	}

	return e.commit(ctx, o, base, isNew, Diff(prev, content), message, actor)
}

// Rollback restores the content and variants recorded at target as a new
// version with the message "Rollback to version N". History is never
// rewritten.
func (e *Engine) Rollback(ctx context.Context, id string, target int, actor string) (*ManagedPrompt, error) {
	o, base, err := e.lookup(ctx, id)
	if err != nil {
		return nil, err
	}
	if o == nil {
		return nil, fmt.Errorf("%w: %s has no history", ErrVersionNotFound, id)
	}

	var entry *VersionEntry
	for i := range o.History {
		if o.History[i].Version == target {
			entry = &o.History[i]
			break
		}
	}
	if entry == nil {
		if target == 1 && base != nil {
			return nil, fmt.Errorf("%w: version 1 of %s is the catalog default; use resetToDefault", ErrVersionNotFound, id)
		}
		return nil, fmt.Errorf("%w: %s has no version %d", ErrVersionNotFound, id, target)
	}

	if target == o.Version {
		return nil, fmt.Errorf("%w: %s is already at version %d; edit it instead of rolling back", ErrInvalidOperation, id, target)
	}

	prev := o.Content
	o.Content = entry.Content
	o.Variants = cloneMap(entry.VariantsSnapshot)

	msg := fmt.Sprintf("Rollback to version %d", target)
	return e.commit(ctx, o, base, false, Diff(prev, o.Content), msg, actor)
}

// History returns the version entries of id, oldest first. A block that
// was never edited has an empty history.
func (e *Engine) History(ctx context.Context, id string) ([]VersionEntry, error) {
	o, _, err := e.lookup(ctx, id)
	if err != nil {
		return nil, err
	}
	if o == nil {
		return []VersionEntry{}, nil
	}
	return cloneOverride(o).History, nil
}

// commit appends a version entry to o, bumps its version and persists it:
// Create for a new override, a version-checked Update otherwise.
func (e *Engine) commit(ctx context.Context, o *Override, base *baseline, isNew bool, diff, message, actor string) (*ManagedPrompt, error) {
	if actor == "" {
		actor = DefaultActor
	}
	expected := o.Version
	o.Version++
	o.History = append(o.History, VersionEntry{
		Version:          o.Version,
		Content:          o.Content,
		VariantsSnapshot: cloneMap(o.Variants),
		CommitMessage:    message,
		ChangedBy:        actor,
		ChangedAt:        e.now(),
		Diff:             diff,
	})

	if isNew {
		if err := e.store.Create(ctx, o); err != nil {
			return nil, e.writeError(o.Slug, err)
		}
	} else {
		if err := e.store.Update(ctx, o, expected); err != nil {
			return nil, e.writeError(o.Slug, err)
		}
	}

	e.logger.Info("prompt version committed", "id", o.Slug, "version", o.Version, "actor", actor)
	p := managed(o.Slug, o, base)
	return &p, nil
}

func (e *Engine) writeError(slug string, err error) error {
	if errors.Is(err, ErrConflict) {
		e.logger.Warn("concurrent edit rejected", "id", slug, "error", err)
		return err
	}
	return fmt.Errorf("failed to save %s: %w", slug, err)
}

// seedFromBaseline builds the override a first edit starts from: the
// catalog default at version 1 with no history.
func seedFromBaseline(base *baseline) *Override {
	return &Override{
		Slug:             base.id,
		Title:            base.name,
		Description:      base.description,
		Content:          base.content,
		Tier:             base.tier,
		Source:           base.source,
		OverridesBlockID: base.id,
		Version:          1,
		Status:           StatusActive,
		Variants:         cloneMap(base.variants),
	}
}

func requireMessage(msg string) error {
	if strings.TrimSpace(msg) == "" {
		return fmt.Errorf("%w: commit message is required", ErrValidation)
	}
	return nil
}
