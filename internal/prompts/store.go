package prompts

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/jackzampolin/promptshelf/internal/catalog"
)

// Store persists overrides. Only ACTIVE rows are visible through it.
//
// Lookups return (nil, nil) when nothing matches. Create fails with
// ErrConflict when an ACTIVE row already holds the slug; Update fails with
// ErrConflict when the stored version no longer equals expectedVersion.
type Store interface {
	Get(ctx context.Context, slug string) (*Override, error)
	GetMany(ctx context.Context, slugs []string) (map[string]*Override, error)
	GetByDocID(ctx context.Context, docID string) (*Override, error)
	List(ctx context.Context) ([]Override, error)
	Create(ctx context.Context, o *Override) error
	Update(ctx context.Context, o *Override, expectedVersion int) error
	Delete(ctx context.Context, slug string) error
	Close() error
}

// attributes is the JSON document stored alongside the flat columns.
type attributes struct {
	PromptTier       catalog.Tier      `json:"promptTier"`
	PromptSource     catalog.Source    `json:"promptSource"`
	OverridesBlockID string            `json:"overridesBlockId,omitempty"`
	ContextVariants  map[string]string `json:"contextVariants,omitempty"`
	VersionHistory   []VersionEntry    `json:"versionHistory"`
}

func encodeAttributes(o *Override) (string, error) {
	attrs := attributes{
		PromptTier:       o.Tier,
		PromptSource:     o.Source,
		OverridesBlockID: o.OverridesBlockID,
		ContextVariants:  o.Variants,
		VersionHistory:   o.History,
	}
	if attrs.VersionHistory == nil {
		attrs.VersionHistory = []VersionEntry{}
	}
	if o.IsCustom() {
		attrs.OverridesBlockID = ""
	}
	b, err := json.Marshal(attrs)
	if err != nil {
		return "", fmt.Errorf("failed to encode attributes: %w", err)
	}
	return string(b), nil
}

// decodeAttributes fills the attribute-backed fields of o. The flat tier
// column wins over promptTier when both are present.
func decodeAttributes(raw string, o *Override) error {
	var attrs attributes
	if raw != "" {
		if err := json.Unmarshal([]byte(raw), &attrs); err != nil {
			return fmt.Errorf("failed to decode attributes for %s: %w", o.Slug, err)
		}
	}

	if !o.Tier.Valid() {
		o.Tier = attrs.PromptTier
	}
	if !o.Tier.Valid() {
		o.Tier = catalog.TierOpen
	}
	o.Source = attrs.PromptSource
	o.OverridesBlockID = attrs.OverridesBlockID
	if o.Source == "" {
		if o.OverridesBlockID != "" {
			o.Source = catalog.SourceCore
		} else {
			o.Source = catalog.SourceCustom
		}
	}
	o.Variants = attrs.ContextVariants
	o.History = attrs.VersionHistory
	return nil
}

// normalize applies the legacy-row rules shared by every backend.
func normalize(o *Override) {
	if o.Slug == "" {
		o.Slug = o.DocID
	}
	if o.Status == "" {
		o.Status = StatusActive
	}
}

// cloneOverride deep-copies o so callers never share maps or slices with a store.
func cloneOverride(o *Override) *Override {
	if o == nil {
		return nil
	}
	c := *o
	c.Categories = append([]string(nil), o.Categories...)
	c.Variants = cloneMap(o.Variants)
	if o.History != nil {
		c.History = make([]VersionEntry, len(o.History))
		for i, e := range o.History {
			e.VariantsSnapshot = cloneMap(e.VariantsSnapshot)
			c.History[i] = e
		}
	}
	return &c
}

func cloneMap(m map[string]string) map[string]string {
	if m == nil {
		return nil
	}
	out := make(map[string]string, len(m))
	for k, v := range m {
		out[k] = v
	}
	return out
}

func formatTime(t time.Time) string {
	return t.UTC().Format(time.RFC3339Nano)
}

func parseTime(s string) time.Time {
	t, err := time.Parse(time.RFC3339Nano, s)
	if err != nil {
		return time.Time{}
	}
	return t
}
