// Package prompts resolves prompt blocks against persisted overrides and
// manages their version history.
//
// Resolution order for a block id:
//  1. An ACTIVE override stored under that slug
//  2. The catalog default (or the library default for library-context ids)
//
// Every content-changing operation appends one VersionEntry to the override
// and bumps its version by one. Writes are compare-and-swap on version, so two
// editors racing on the same block cannot both succeed.
package prompts

import (
	"crypto/sha256"
	"encoding/hex"
	"time"

	"github.com/jackzampolin/promptshelf/internal/catalog"
)

// StatusActive marks rows visible to resolution.
const StatusActive = "ACTIVE"

// Override is a persisted block record, either overriding a catalog block or
// standing alone as a custom block.
type Override struct {
	DocID            string
	Slug             string
	Title            string
	Description      string
	Content          string
	Tier             catalog.Tier
	Source           catalog.Source
	OverridesBlockID string
	Categories       []string
	Version          int
	Status           string
	Variants         map[string]string
	History          []VersionEntry
	UpdatedAt        time.Time
}

// IsCustom reports whether the override has no catalog counterpart.
func (o *Override) IsCustom() bool {
	return o.Source == catalog.SourceCustom
}

// VersionEntry is one immutable step in a block's history.
type VersionEntry struct {
	Version          int               `json:"version"`
	Content          string            `json:"content"`
	VariantsSnapshot map[string]string `json:"variantsSnapshot,omitempty"`
	CommitMessage    string            `json:"commitMessage"`
	ChangedBy        string            `json:"changedBy"`
	ChangedAt        time.Time         `json:"changedAt"`
	Diff             string            `json:"diff,omitempty"`
}

// EffectiveBlock is the resolved state of a block.
type EffectiveBlock struct {
	ID          string            `json:"id"`
	Name        string            `json:"name"`
	Description string            `json:"description,omitempty"`
	Content     string            `json:"content"`
	Tier        catalog.Tier      `json:"tier"`
	Source      catalog.Source    `json:"source"`
	Variants    map[string]string `json:"variants,omitempty"`
	Version     int               `json:"version"`
	IsOverride  bool              `json:"isOverride"`
	ContentHash string            `json:"contentHash"`
}

// ContentFor returns the variant for context when one exists, else Content.
func (b EffectiveBlock) ContentFor(context string) string {
	if context != "" {
		if v, ok := b.Variants[context]; ok {
			return v
		}
	}
	return b.Content
}

// ManagedPrompt is the merged catalog/override view used for listing and editing.
type ManagedPrompt struct {
	ID               string            `json:"id"`
	DocID            string            `json:"docId,omitempty"`
	Title            string            `json:"title"`
	Description      string            `json:"description,omitempty"`
	Content          string            `json:"content"`
	DefaultContent   string            `json:"defaultContent,omitempty"`
	Tier             catalog.Tier      `json:"tier"`
	Source           catalog.Source    `json:"source"`
	OverridesBlockID string            `json:"overridesBlockId,omitempty"`
	LibraryID        string            `json:"libraryId,omitempty"`
	Categories       []string          `json:"categories,omitempty"`
	Variants         map[string]string `json:"variants,omitempty"`
	Version          int               `json:"version"`
	HasOverride      bool              `json:"hasOverride"`
	IsCustom         bool              `json:"isCustom"`
	ContentHash      string            `json:"contentHash"`
	UpdatedAt        *time.Time        `json:"updatedAt,omitempty"`
}

// CompositionResult is the output of assembling a composition.
type CompositionResult struct {
	CompositionID   string           `json:"compositionId"`
	Text            string           `json:"text"`
	ResolvedBlocks  []EffectiveBlock `json:"resolvedBlocks"`
	MissingBlockIDs []string         `json:"missingBlockIds"`
	LibraryID       string           `json:"libraryId,omitempty"`
	VariantContext  string           `json:"variantContext,omitempty"`
}

// ResetResult reports what a reset discarded.
type ResetResult struct {
	Prompt            ManagedPrompt `json:"prompt"`
	DiscardedVersions int           `json:"discardedVersions"`
	Warning           string        `json:"warning"`
}

// CreateInput describes a new custom block.
type CreateInput struct {
	Slug          string            `json:"slug,omitempty"`
	Title         string            `json:"title"`
	Description   string            `json:"description,omitempty"`
	Content       string            `json:"content"`
	Tier          catalog.Tier      `json:"tier,omitempty"`
	Categories    []string          `json:"categories,omitempty"`
	Variants      map[string]string `json:"variants,omitempty"`
	CommitMessage string            `json:"commitMessage"`
	Actor         string            `json:"actor,omitempty"`
}

// UpdateInput describes an edit. Nil fields keep their current value.
type UpdateInput struct {
	Content       *string           `json:"content,omitempty"`
	Variants      map[string]string `json:"variants,omitempty"`
	Title         *string           `json:"title,omitempty"`
	Description   *string           `json:"description,omitempty"`
	Categories    []string          `json:"categories,omitempty"`
	Tier          *catalog.Tier     `json:"tier,omitempty"`
	CommitMessage string            `json:"commitMessage"`
	Actor         string            `json:"actor,omitempty"`
}

// ListFilter narrows ListAll.
type ListFilter struct {
	Category string
	Source   catalog.Source
}

// HashText returns a SHA256 hash of the text for change detection.
func HashText(text string) string {
	h := sha256.Sum256([]byte(text))
	return hex.EncodeToString(h[:])
}
